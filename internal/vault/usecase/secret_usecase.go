package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/runavault/runavault/internal/database"
	"github.com/runavault/runavault/internal/identity"
	"github.com/runavault/runavault/internal/vault/domain"
	"github.com/runavault/runavault/internal/vault/service"
)

// DefaultSubdirectory groups secrets that were created without one.
const DefaultSubdirectory = "default"

// secretUseCase implements the SecretUseCase interface.
type secretUseCase struct {
	txManager  database.TxManager
	secretRepo SecretRepository
	sealer     service.Sealer
	resolver   service.Resolver
}

// NewSecretUseCase creates a new secret use case instance with the provided dependencies.
func NewSecretUseCase(
	txManager database.TxManager,
	secretRepo SecretRepository,
	sealer service.Sealer,
	resolver service.Resolver,
) SecretUseCase {
	return &secretUseCase{
		txManager:  txManager,
		secretRepo: secretRepo,
		sealer:     sealer,
		resolver:   resolver,
	}
}

// Create seals and stores a new secret owned by the caller.
func (s *secretUseCase) Create(
	ctx context.Context, claims identity.Claims, input CreateSecretInput,
) (*domain.Secret, error) {
	if err := domain.ValidateNotes(input.Notes); err != nil {
		return nil, err
	}

	subdirectory := input.Subdirectory
	if subdirectory == "" {
		subdirectory = DefaultSubdirectory
	}

	policy := stripOwner(input.Policy, claims.Subject).Normalize()

	envelope, err := s.sealer.Seal(ctx, input.Password, policy)
	if err != nil {
		return nil, err
	}

	secret := &domain.Secret{
		ID:           uuid.Must(uuid.NewV7()),
		Owner:        claims.Subject,
		Site:         input.Site,
		Subdirectory: subdirectory,
		Username:     input.Username,
		Envelope:     envelope,
		Notes:        input.Notes,
		Tags:         input.Tags,
		Favorite:     input.Favorite,
		Version:      1,
		LastModified: time.Now().UTC(),
	}

	err = s.txManager.WithTx(ctx, func(txCtx context.Context) error {
		if err := s.secretRepo.Create(txCtx, secret); err != nil {
			return err
		}
		return s.secretRepo.ReplaceShares(txCtx, secret.ID, policy)
	})
	if err != nil {
		return nil, err
	}
	return secret, nil
}

// Get retrieves a secret the caller can view, optionally decrypting it.
func (s *secretUseCase) Get(
	ctx context.Context,
	claims identity.Claims,
	secretID uuid.UUID,
	scopeGroup string,
	reveal bool,
) (*domain.Secret, error) {
	secret, err := s.secretRepo.Get(ctx, secretID)
	if err != nil {
		return nil, err
	}

	access := domain.AccessOf(secret, claims.Subject, claims.Groups, scopeGroup)
	if !access.CanView() {
		// Hide existence from callers with no access at all
		return nil, domain.ErrSecretNotFound
	}

	if reveal {
		plaintext, err := s.resolver.Open(
			ctx, secret.Envelope, claims.Subject, claims.Groups, scopeGroup,
			secret.Owner == claims.Subject,
		)
		if err != nil {
			return nil, err
		}
		secret.Plaintext = plaintext
	}
	return secret, nil
}

// List retrieves secrets in the given scope. A scopeGroup in the shared-group
// scope narrows the listing to that group alone.
func (s *secretUseCase) List(
	ctx context.Context, claims identity.Claims, scope ListScope, scopeGroup string, offset, limit int,
) ([]*domain.Secret, error) {
	switch scope {
	case ScopeSharedUser:
		return s.secretRepo.ListSharedWithUser(ctx, claims.Subject, offset, limit)
	case ScopeSharedGroup:
		groups := claims.Groups
		if scopeGroup != "" {
			if !claims.MemberOf(scopeGroup) {
				// Same shape as a group with no shares, so membership in
				// other groups reveals nothing about this one.
				return []*domain.Secret{}, nil
			}
			groups = []string{scopeGroup}
		}
		return s.secretRepo.ListSharedWithGroups(ctx, claims.Subject, groups, offset, limit)
	default:
		return s.secretRepo.ListByOwner(ctx, claims.Subject, offset, limit)
	}
}

// Edit updates a secret's fields and reseals its envelope.
func (s *secretUseCase) Edit(
	ctx context.Context, claims identity.Claims, secretID uuid.UUID, input EditSecretInput,
) (*domain.Secret, error) {
	secret, err := s.secretRepo.Get(ctx, secretID)
	if err != nil {
		return nil, err
	}
	if !domain.CanEdit(secret, claims.Subject, claims.Groups) {
		if domain.AccessOf(secret, claims.Subject, claims.Groups, "") == domain.AccessNone {
			return nil, domain.ErrSecretNotFound
		}
		return nil, domain.ErrUnauthorizedAction
	}

	if input.Username != nil {
		secret.Username = *input.Username
	}
	if input.Notes != nil {
		if err := domain.ValidateNotes(*input.Notes); err != nil {
			return nil, err
		}
		secret.Notes = *input.Notes
	}
	if input.Tags != nil {
		secret.Tags = input.Tags
	}

	policy := domain.PolicyOf(secret.Envelope)
	if input.Policy != nil {
		policy = stripOwner(*input.Policy, secret.Owner).Normalize()
	}

	// A changed password or share set invalidates every ciphertext, so the
	// envelope is rebuilt from plaintext.
	plaintext := input.Password
	if plaintext == nil {
		plaintext, err = s.resolver.Open(
			ctx, secret.Envelope, claims.Subject, claims.Groups, "",
			secret.Owner == claims.Subject,
		)
		if err != nil {
			return nil, err
		}
	}
	defer domain.Zero(plaintext)

	envelope, err := s.sealer.Seal(ctx, plaintext, policy)
	if err != nil {
		return nil, err
	}

	secret.Envelope = envelope
	secret.Version++
	secret.LastModified = time.Now().UTC()

	err = s.txManager.WithTx(ctx, func(txCtx context.Context) error {
		if err := s.secretRepo.Update(txCtx, secret); err != nil {
			return err
		}
		return s.secretRepo.ReplaceShares(txCtx, secret.ID, policy)
	})
	if err != nil {
		return nil, err
	}
	return secret, nil
}

// Delete removes a secret. Owner only.
func (s *secretUseCase) Delete(ctx context.Context, claims identity.Claims, secretID uuid.UUID) error {
	secret, err := s.secretRepo.Get(ctx, secretID)
	if err != nil {
		return err
	}
	if !domain.CanDelete(secret, claims.Subject) {
		if domain.AccessOf(secret, claims.Subject, claims.Groups, "") == domain.AccessNone {
			return domain.ErrSecretNotFound
		}
		return domain.ErrUnauthorizedAction
	}
	return s.secretRepo.Delete(ctx, secretID)
}

// SetFavorite toggles the owner's favorite flag. Owner only.
func (s *secretUseCase) SetFavorite(
	ctx context.Context, claims identity.Claims, secretID uuid.UUID, favorite bool,
) error {
	secret, err := s.secretRepo.Get(ctx, secretID)
	if err != nil {
		return err
	}
	if !domain.CanFavorite(secret, claims.Subject) {
		if domain.AccessOf(secret, claims.Subject, claims.Groups, "") == domain.AccessNone {
			return domain.ErrSecretNotFound
		}
		return domain.ErrUnauthorizedAction
	}
	return s.secretRepo.SetFavorite(ctx, secretID, favorite)
}

// Share grants additional principals access without disturbing existing shares.
func (s *secretUseCase) Share(
	ctx context.Context, claims identity.Claims, secretID uuid.UUID, policy domain.SharePolicy,
) (*domain.Secret, error) {
	secret, err := s.secretRepo.Get(ctx, secretID)
	if err != nil {
		return nil, err
	}
	if secret.Owner != claims.Subject {
		if domain.AccessOf(secret, claims.Subject, claims.Groups, "") == domain.AccessNone {
			return nil, domain.ErrSecretNotFound
		}
		return nil, domain.ErrUnauthorizedAction
	}

	policy = stripOwner(policy, secret.Owner).Normalize()

	// The owner's primary copy is the plaintext source for the new shares
	plaintext, err := s.resolver.Open(ctx, secret.Envelope, claims.Subject, nil, "", true)
	if err != nil {
		return nil, err
	}
	defer domain.Zero(plaintext)

	envelope, err := s.sealer.Extend(ctx, plaintext, secret.Envelope, policy)
	if err != nil {
		return nil, err
	}

	secret.Envelope = envelope
	secret.Version++
	secret.LastModified = time.Now().UTC()

	err = s.txManager.WithTx(ctx, func(txCtx context.Context) error {
		if err := s.secretRepo.Update(txCtx, secret); err != nil {
			return err
		}
		return s.secretRepo.ReplaceShares(txCtx, secret.ID, domain.PolicyOf(envelope))
	})
	if err != nil {
		return nil, err
	}
	return secret, nil
}

// ShareDirectory grants principals access to every secret the caller owns in
// a subdirectory. Each affected secret keeps its existing ciphertexts and gets
// new ones minted only for principals it does not already cover.
func (s *secretUseCase) ShareDirectory(
	ctx context.Context, claims identity.Claims, subdirectory string, policy domain.SharePolicy,
) ([]*domain.Secret, error) {
	secrets, err := s.secretRepo.ListByOwnerSubdirectory(ctx, claims.Subject, subdirectory)
	if err != nil {
		return nil, err
	}
	if len(secrets) == 0 {
		// The caller owns nothing here, so the subdirectory does not exist
		// from their point of view.
		return nil, domain.ErrSecretNotFound
	}

	updated := make([]*domain.Secret, 0, len(secrets))
	for _, secret := range secrets {
		extension := stripOwner(policy, secret.Owner).Normalize()

		plaintext, err := s.resolver.Open(ctx, secret.Envelope, claims.Subject, nil, "", true)
		if err != nil {
			return nil, err
		}

		envelope, err := s.sealer.Extend(ctx, plaintext, secret.Envelope, extension)
		domain.Zero(plaintext)
		if err != nil {
			return nil, err
		}

		secret.Envelope = envelope
		secret.Version++
		secret.LastModified = time.Now().UTC()

		err = s.txManager.WithTx(ctx, func(txCtx context.Context) error {
			if err := s.secretRepo.Update(txCtx, secret); err != nil {
				return err
			}
			return s.secretRepo.ReplaceShares(txCtx, secret.ID, domain.PolicyOf(envelope))
		})
		if err != nil {
			return nil, err
		}
		updated = append(updated, secret)
	}
	return updated, nil
}

// stripOwner removes the owner from the direct user share list. The owner
// always decrypts through the primary ciphertext.
func stripOwner(policy domain.SharePolicy, owner string) domain.SharePolicy {
	users := make([]string, 0, len(policy.Users))
	for _, userID := range policy.Users {
		if userID != owner {
			users = append(users, userID)
		}
	}
	policy.Users = users
	return policy
}
