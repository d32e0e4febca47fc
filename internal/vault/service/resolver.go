package service

import (
	"context"
	"log/slog"

	"github.com/runavault/runavault/internal/errors"
	"github.com/runavault/runavault/internal/vault/domain"
)

// Resolver picks the right ciphertext out of an envelope for a caller and
// decrypts it through the key oracle.
type Resolver interface {
	// Open decrypts the envelope entry selected for the caller. Exactly one
	// oracle call is made; a failed decrypt is never retried against other
	// entries, since the failure may reflect revoked access.
	Open(ctx context.Context, envelope *domain.Envelope, subject string, groups []string, scopeGroup string, isOwner bool) ([]byte, error)
}

type resolver struct {
	oracle KeyOracle
	logger *slog.Logger
}

// NewResolver creates a Resolver backed by the given key oracle.
func NewResolver(oracle KeyOracle, logger *slog.Logger) Resolver {
	return &resolver{oracle: oracle, logger: logger}
}

// SelectCiphertext chooses the envelope entry and encryption context for a
// caller. Selection order:
//
//  1. the scope-hinted group share, when the caller belongs to that group
//  2. the first group share, in stored order, whose group the caller belongs to
//  3. the caller's direct user share
//  4. the primary ciphertext, owners only
//
// Returns domain.ErrNoAccessibleCiphertext when nothing matches. Selection is
// pure: no oracle call is made here.
func SelectCiphertext(
	envelope *domain.Envelope, subject string, groups []string, scopeGroup string, isOwner bool,
) (string, map[string]string, error) {
	if envelope == nil {
		return "", nil, domain.ErrNoAccessibleCiphertext
	}

	if scopeGroup != "" && contains(groups, scopeGroup) {
		if share, ok := envelope.FindGroupShare(scopeGroup); ok {
			return share.Ciphertext, GroupContext(scopeGroup), nil
		}
	}

	for _, share := range envelope.SharedWithGroups {
		if contains(groups, share.GroupID) {
			return share.Ciphertext, GroupContext(share.GroupID), nil
		}
	}

	if share, ok := envelope.FindUserShare(subject); ok {
		return share.Ciphertext, UserContext(subject), nil
	}

	if isOwner && envelope.Primary != "" {
		return envelope.Primary, PrimaryContext(), nil
	}

	return "", nil, domain.ErrNoAccessibleCiphertext
}

// Open selects and decrypts the caller's envelope entry.
func (r *resolver) Open(
	ctx context.Context,
	envelope *domain.Envelope,
	subject string,
	groups []string,
	scopeGroup string,
	isOwner bool,
) ([]byte, error) {
	ciphertext, encryptionContext, err := SelectCiphertext(envelope, subject, groups, scopeGroup, isOwner)
	if err != nil {
		return nil, err
	}

	plaintext, err := r.oracle.Decrypt(ctx, ciphertext, encryptionContext)
	if err != nil {
		r.logger.Warn("envelope decrypt failed",
			slog.String("subject", subject),
			slog.Any("error", err),
		)
		return nil, errors.Wrap(domain.ErrDecryptionFailed, err.Error())
	}
	return plaintext, nil
}

func contains(values []string, target string) bool {
	for _, v := range values {
		if v == target {
			return true
		}
	}
	return false
}
