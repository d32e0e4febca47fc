// Package usecase implements business logic orchestration for vault secrets.
// It coordinates the key oracle flows, repositories and access rules to store
// passwords encrypted once per principal that may read them.
package usecase

import (
	"context"

	"github.com/google/uuid"

	"github.com/runavault/runavault/internal/identity"
	"github.com/runavault/runavault/internal/vault/domain"
)

// SecretRepository defines the interface for secret persistence operations.
type SecretRepository interface {
	Create(ctx context.Context, secret *domain.Secret) error
	Update(ctx context.Context, secret *domain.Secret) error
	Delete(ctx context.Context, secretID uuid.UUID) error
	Get(ctx context.Context, secretID uuid.UUID) (*domain.Secret, error)
	GetByLocation(ctx context.Context, owner, site, subdirectory string) (*domain.Secret, error)
	ListByOwner(ctx context.Context, owner string, offset, limit int) ([]*domain.Secret, error)
	ListByOwnerSubdirectory(ctx context.Context, owner, subdirectory string) ([]*domain.Secret, error)
	ListSharedWithUser(ctx context.Context, userID string, offset, limit int) ([]*domain.Secret, error)
	ListSharedWithGroups(ctx context.Context, owner string, groupIDs []string, offset, limit int) ([]*domain.Secret, error)
	ReplaceShares(ctx context.Context, secretID uuid.UUID, policy domain.SharePolicy) error
	SetFavorite(ctx context.Context, secretID uuid.UUID, favorite bool) error
}

// CreateSecretInput carries the fields for creating a secret.
type CreateSecretInput struct {
	Site         string
	Subdirectory string
	Username     string
	Password     []byte
	Notes        string
	Tags         []string
	Favorite     bool
	Policy       domain.SharePolicy
}

// EditSecretInput carries the fields for editing a secret. Nil pointers and
// nil slices mean "leave unchanged".
type EditSecretInput struct {
	Username *string
	Password []byte
	Notes    *string
	Tags     []string
	Policy   *domain.SharePolicy
}

// ListScope selects which slice of the vault a listing returns.
type ListScope string

// Listing scopes.
const (
	ScopeOwned       ListScope = "owned"
	ScopeSharedUser  ListScope = "shared-user"
	ScopeSharedGroup ListScope = "shared-group"
)

// SecretUseCase defines the interface for vault secret business logic.
//
// Every method takes the caller's claims; authorization happens here, before
// any oracle or repository mutation.
type SecretUseCase interface {
	// Create seals and stores a new secret owned by the caller.
	Create(ctx context.Context, claims identity.Claims, input CreateSecretInput) (*domain.Secret, error)

	// Get retrieves a secret the caller can view. With reveal set, the
	// caller's envelope entry is decrypted into the Plaintext field.
	//
	// Security Note: when revealed, callers MUST zero the plaintext after use
	// by calling domain.Zero(secret.Plaintext).
	Get(ctx context.Context, claims identity.Claims, secretID uuid.UUID, scopeGroup string, reveal bool) (*domain.Secret, error)

	// List retrieves secrets in the given scope without decrypting anything.
	// In the shared-group scope a non-empty scopeGroup narrows the listing to
	// that single group; groups the caller does not belong to yield an empty
	// listing. Other scopes ignore scopeGroup.
	List(ctx context.Context, claims identity.Claims, scope ListScope, scopeGroup string, offset, limit int) ([]*domain.Secret, error)

	// Edit updates a secret's fields and reseals its envelope. Owners and
	// group editors only.
	Edit(ctx context.Context, claims identity.Claims, secretID uuid.UUID, input EditSecretInput) (*domain.Secret, error)

	// Delete removes a secret. Owner only.
	Delete(ctx context.Context, claims identity.Claims, secretID uuid.UUID) error

	// SetFavorite toggles the owner's favorite flag. Owner only.
	SetFavorite(ctx context.Context, claims identity.Claims, secretID uuid.UUID, favorite bool) error

	// Share grants additional users and groups access by minting ciphertexts
	// for them. Existing shares are kept. Owner only.
	Share(ctx context.Context, claims identity.Claims, secretID uuid.UUID, policy domain.SharePolicy) (*domain.Secret, error)

	// ShareDirectory grants the given principals access to every secret the
	// caller owns in a subdirectory. Existing ciphertexts are kept; new ones
	// are minted only for principals a secret does not already cover.
	ShareDirectory(ctx context.Context, claims identity.Claims, subdirectory string, policy domain.SharePolicy) ([]*domain.Secret, error)
}
