package service

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/runavault/runavault/internal/errors"
	"github.com/runavault/runavault/internal/vault/domain"
)

// Sealer builds envelopes by encrypting one plaintext once per principal.
type Sealer interface {
	// Seal encrypts plaintext for the owner and every principal in the policy,
	// producing a complete envelope. All-or-nothing: if any single encrypt
	// call fails, no envelope is returned.
	Seal(ctx context.Context, plaintext []byte, policy domain.SharePolicy) (*domain.Envelope, error)

	// Extend mints ciphertexts for principals in the policy that the envelope
	// does not already cover and merges the policy's roles. Existing entries
	// are kept untouched; principals absent from the policy are not removed.
	Extend(ctx context.Context, plaintext []byte, envelope *domain.Envelope, policy domain.SharePolicy) (*domain.Envelope, error)
}

type sealer struct {
	oracle KeyOracle
	logger *slog.Logger
}

// NewSealer creates a Sealer backed by the given key oracle.
func NewSealer(oracle KeyOracle, logger *slog.Logger) Sealer {
	return &sealer{oracle: oracle, logger: logger}
}

// Seal encrypts the plaintext under the primary context plus one context per
// user and group in the policy. Encrypt calls run concurrently; the first
// failure cancels the rest and the whole seal fails.
func (s *sealer) Seal(
	ctx context.Context, plaintext []byte, policy domain.SharePolicy,
) (*domain.Envelope, error) {
	policy = policy.Normalize()

	envelope := domain.NewEnvelope("")
	envelope.SharedWithUsers = make([]domain.UserShare, len(policy.Users))
	envelope.SharedWithGroups = make([]domain.GroupShare, len(policy.Groups))
	for groupID, role := range policy.Roles {
		envelope.Roles[groupID] = role
	}

	group, groupCtx := errgroup.WithContext(ctx)

	group.Go(func() error {
		ciphertext, err := s.oracle.Encrypt(groupCtx, plaintext, PrimaryContext())
		if err != nil {
			return err
		}
		envelope.Primary = ciphertext
		return nil
	})

	for i, userID := range policy.Users {
		group.Go(func() error {
			ciphertext, err := s.oracle.Encrypt(groupCtx, plaintext, UserContext(userID))
			if err != nil {
				return err
			}
			envelope.SharedWithUsers[i] = domain.UserShare{UserID: userID, Ciphertext: ciphertext}
			return nil
		})
	}

	for i, groupID := range policy.Groups {
		group.Go(func() error {
			ciphertext, err := s.oracle.Encrypt(groupCtx, plaintext, GroupContext(groupID))
			if err != nil {
				return err
			}
			envelope.SharedWithGroups[i] = domain.GroupShare{GroupID: groupID, Ciphertext: ciphertext}
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		s.logger.Error("envelope seal failed", slog.Any("error", err))
		return nil, errors.Wrap(domain.ErrPartialEncryption, err.Error())
	}
	return envelope, nil
}

// Extend adds ciphertexts for newly shared principals without re-encrypting
// entries that already exist. Existing group roles are overwritten by the
// policy's role entries.
func (s *sealer) Extend(
	ctx context.Context, plaintext []byte, envelope *domain.Envelope, policy domain.SharePolicy,
) (*domain.Envelope, error) {
	policy = policy.Normalize()

	newUsers := make([]string, 0, len(policy.Users))
	for _, userID := range policy.Users {
		if _, ok := envelope.FindUserShare(userID); !ok {
			newUsers = append(newUsers, userID)
		}
	}
	newGroups := make([]string, 0, len(policy.Groups))
	for _, groupID := range policy.Groups {
		if _, ok := envelope.FindGroupShare(groupID); !ok {
			newGroups = append(newGroups, groupID)
		}
	}

	addedUsers := make([]domain.UserShare, len(newUsers))
	addedGroups := make([]domain.GroupShare, len(newGroups))

	group, groupCtx := errgroup.WithContext(ctx)
	for i, userID := range newUsers {
		group.Go(func() error {
			ciphertext, err := s.oracle.Encrypt(groupCtx, plaintext, UserContext(userID))
			if err != nil {
				return err
			}
			addedUsers[i] = domain.UserShare{UserID: userID, Ciphertext: ciphertext}
			return nil
		})
	}
	for i, groupID := range newGroups {
		group.Go(func() error {
			ciphertext, err := s.oracle.Encrypt(groupCtx, plaintext, GroupContext(groupID))
			if err != nil {
				return err
			}
			addedGroups[i] = domain.GroupShare{GroupID: groupID, Ciphertext: ciphertext}
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		s.logger.Error("envelope extend failed", slog.Any("error", err))
		return nil, errors.Wrap(domain.ErrPartialEncryption, err.Error())
	}

	extended := &domain.Envelope{
		Primary:          envelope.Primary,
		SharedWithUsers:  append(append([]domain.UserShare{}, envelope.SharedWithUsers...), addedUsers...),
		SharedWithGroups: append(append([]domain.GroupShare{}, envelope.SharedWithGroups...), addedGroups...),
		Roles:            map[string]domain.Role{},
	}
	for groupID, role := range envelope.Roles {
		extended.Roles[groupID] = role
	}
	for groupID, role := range policy.Roles {
		extended.Roles[groupID] = role
	}
	return extended, nil
}
