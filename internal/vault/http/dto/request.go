// Package dto provides data transfer objects for HTTP request and response handling.
package dto

import (
	validation "github.com/jellydator/validation"

	customValidation "github.com/runavault/runavault/internal/validation"
	"github.com/runavault/runavault/internal/vault/domain"
)

// SharePolicyRequest describes the principals a secret is shared with.
type SharePolicyRequest struct {
	Users  []string          `json:"users"`
	Groups []string          `json:"groups"`
	Roles  map[string]string `json:"roles"`
}

// Validate checks the share policy fields.
func (r *SharePolicyRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Users, validation.Each(customValidation.NotBlank)),
		validation.Field(&r.Groups, validation.Each(customValidation.GroupName)),
		validation.Field(&r.Roles, validation.Each(validation.In("viewer", "editor"))),
	)
}

// ToPolicy converts the request into a domain share policy.
func (r *SharePolicyRequest) ToPolicy() domain.SharePolicy {
	policy := domain.NewSharePolicy()
	policy.Users = append(policy.Users, r.Users...)
	policy.Groups = append(policy.Groups, r.Groups...)
	for groupID, role := range r.Roles {
		policy.Roles[groupID] = domain.Role(role)
	}
	return policy
}

// CreateSecretRequest contains the parameters for creating a secret.
type CreateSecretRequest struct {
	Site         string             `json:"site" binding:"required"`
	Subdirectory string             `json:"subdirectory"`
	Username     string             `json:"username"`
	Password     string             `json:"password" binding:"required"`
	Notes        string             `json:"notes"`
	Tags         []string           `json:"tags"`
	Favorite     bool               `json:"favorite"`
	SharedWith   SharePolicyRequest `json:"sharedWith"`
}

// Validate checks if the create secret request is valid.
func (r *CreateSecretRequest) Validate() error {
	if err := validation.ValidateStruct(r,
		validation.Field(&r.Site, validation.Required, customValidation.NotBlank),
		validation.Field(&r.Password, validation.Required),
		validation.Field(&r.Notes, validation.Length(0, domain.MaxNotesLength)),
	); err != nil {
		return err
	}
	return r.SharedWith.Validate()
}

// EditSecretRequest contains the parameters for editing a secret. Absent
// fields are left unchanged.
type EditSecretRequest struct {
	Username   *string             `json:"username"`
	Password   *string             `json:"password"`
	Notes      *string             `json:"notes"`
	Tags       []string            `json:"tags"`
	SharedWith *SharePolicyRequest `json:"sharedWith"`
}

// Validate checks if the edit secret request is valid.
func (r *EditSecretRequest) Validate() error {
	if r.Notes != nil {
		if err := validation.Validate(*r.Notes, validation.Length(0, domain.MaxNotesLength)); err != nil {
			return err
		}
	}
	if r.Password != nil {
		if err := validation.Validate(*r.Password, validation.Required); err != nil {
			return err
		}
	}
	if r.SharedWith != nil {
		return r.SharedWith.Validate()
	}
	return nil
}

// ShareDirectoryRequest contains the parameters for re-sharing every secret
// the caller owns in a subdirectory.
type ShareDirectoryRequest struct {
	Subdirectory string             `json:"subdirectory" binding:"required"`
	SharedWith   SharePolicyRequest `json:"sharedWith"`
}

// Validate checks if the share directory request is valid.
func (r *ShareDirectoryRequest) Validate() error {
	if err := validation.ValidateStruct(r,
		validation.Field(&r.Subdirectory, validation.Required, customValidation.NotBlank),
	); err != nil {
		return err
	}
	return r.SharedWith.Validate()
}

// FavoriteRequest toggles the favorite flag.
type FavoriteRequest struct {
	Favorite *bool `json:"favorite" binding:"required"`
}

// Validate checks if the favorite request is valid.
func (r *FavoriteRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Favorite, validation.NotNil),
	)
}
