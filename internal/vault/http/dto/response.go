package dto

import (
	"time"

	"github.com/runavault/runavault/internal/vault/domain"
)

// SharePolicyResponse summarizes who a secret is shared with.
type SharePolicyResponse struct {
	Users  []string          `json:"users"`
	Groups []string          `json:"groups"`
	Roles  map[string]string `json:"roles"`
}

// SecretResponse represents a secret in API responses.
// SECURITY: the Password field holds plaintext and is only populated on
// reveal requests. Must be transmitted over HTTPS in production.
type SecretResponse struct {
	ID           string              `json:"id"`
	Owner        string              `json:"owner"`
	Site         string              `json:"site"`
	Subdirectory string              `json:"subdirectory"`
	Username     string              `json:"username"`
	Password     string              `json:"password,omitempty"`
	Notes        string              `json:"notes"`
	Tags         []string            `json:"tags"`
	Favorite     bool                `json:"favorite"`
	Version      uint                `json:"version"`
	LastModified time.Time           `json:"last_modified"`
	SharedWith   SharePolicyResponse `json:"sharedWith"`
}

// ListSecretsResponse wraps a paginated secret listing.
type ListSecretsResponse struct {
	Secrets []SecretResponse `json:"secrets"`
	Offset  int              `json:"offset"`
	Limit   int              `json:"limit"`
}

// MapSecretToResponse converts a domain secret to an API response. The
// plaintext password is included only when the domain object carries one.
// SECURITY: callers must zero secret.Plaintext after mapping.
func MapSecretToResponse(secret *domain.Secret) SecretResponse {
	response := SecretResponse{
		ID:           secret.ID.String(),
		Owner:        secret.Owner,
		Site:         secret.Site,
		Subdirectory: secret.Subdirectory,
		Username:     secret.Username,
		Notes:        secret.Notes,
		Tags:         secret.Tags,
		Favorite:     secret.Favorite,
		Version:      secret.Version,
		LastModified: secret.LastModified,
		SharedWith:   mapPolicy(secret.Envelope),
	}
	if response.Tags == nil {
		response.Tags = []string{}
	}
	if len(secret.Plaintext) > 0 {
		response.Password = string(secret.Plaintext)
	}
	return response
}

// MapSecretsToListResponse converts a page of domain secrets.
func MapSecretsToListResponse(secrets []*domain.Secret, offset, limit int) ListSecretsResponse {
	responses := make([]SecretResponse, 0, len(secrets))
	for _, secret := range secrets {
		responses = append(responses, MapSecretToResponse(secret))
	}
	return ListSecretsResponse{Secrets: responses, Offset: offset, Limit: limit}
}

// ShareDirectoryResponse lists the secrets updated by a bulk re-share.
type ShareDirectoryResponse struct {
	Subdirectory string           `json:"subdirectory"`
	Secrets      []SecretResponse `json:"secrets"`
}

// MapSecretsToShareDirectoryResponse converts the secrets touched by a bulk
// re-share.
func MapSecretsToShareDirectoryResponse(subdirectory string, secrets []*domain.Secret) ShareDirectoryResponse {
	responses := make([]SecretResponse, 0, len(secrets))
	for _, secret := range secrets {
		responses = append(responses, MapSecretToResponse(secret))
	}
	return ShareDirectoryResponse{Subdirectory: subdirectory, Secrets: responses}
}

// mapPolicy exposes share principals and roles, never ciphertexts.
func mapPolicy(envelope *domain.Envelope) SharePolicyResponse {
	policy := domain.PolicyOf(envelope)
	roles := make(map[string]string, len(policy.Roles))
	for groupID, role := range policy.Roles {
		roles[groupID] = string(role)
	}
	return SharePolicyResponse{Users: policy.Users, Groups: policy.Groups, Roles: roles}
}
