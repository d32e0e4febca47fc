// Package repository implements secret persistence for PostgreSQL and MySQL.
//
// The envelope JSON column is the source of truth for ciphertexts and roles;
// the secret_shares table is a queryable index of the same share state, kept
// in sync transactionally by the use case layer.
package repository

import (
	"encoding/json"

	apperrors "github.com/runavault/runavault/internal/errors"
	"github.com/runavault/runavault/internal/vault/domain"
)

// secretRow mirrors the secrets table columns that need conversion before
// they can populate a domain.Secret.
type secretRow struct {
	envelope string
	tags     string
}

// hydrate converts raw column values into their domain representations.
func (r *secretRow) hydrate(secret *domain.Secret) error {
	envelope, err := domain.ParseEnvelope([]byte(r.envelope))
	if err != nil {
		return err
	}
	secret.Envelope = envelope

	secret.Tags = []string{}
	if r.tags != "" {
		if err := json.Unmarshal([]byte(r.tags), &secret.Tags); err != nil {
			return apperrors.Wrap(err, "failed to decode tags")
		}
	}
	return nil
}

// encodeEnvelope serializes the envelope for storage.
func encodeEnvelope(secret *domain.Secret) (string, error) {
	if secret.Envelope == nil {
		return "", domain.ErrInvalidEnvelope
	}
	encoded, err := secret.Envelope.Encode()
	if err != nil {
		return "", err
	}
	return string(encoded), nil
}

// encodeTags serializes the tag list for storage.
func encodeTags(secret *domain.Secret) (string, error) {
	tags := secret.Tags
	if tags == nil {
		tags = []string{}
	}
	encoded, err := json.Marshal(tags)
	if err != nil {
		return "", apperrors.Wrap(err, "failed to encode tags")
	}
	return string(encoded), nil
}

// Principal types used in the secret_shares index table.
const (
	principalUser  = "user"
	principalGroup = "group"
)

// shareRow is one row of the secret_shares index table.
type shareRow struct {
	Type string
	ID   string
	Role domain.Role
}

// shareRows flattens a share policy into index table rows. Direct user shares
// are always viewers.
func shareRows(policy domain.SharePolicy) []shareRow {
	rows := make([]shareRow, 0, len(policy.Users)+len(policy.Groups))
	for _, userID := range policy.Users {
		rows = append(rows, shareRow{principalUser, userID, domain.RoleViewer})
	}
	for _, groupID := range policy.Groups {
		role := domain.RoleViewer
		if r, ok := policy.Roles[groupID]; ok && r.Valid() {
			role = r
		}
		rows = append(rows, shareRow{principalGroup, groupID, role})
	}
	return rows
}
