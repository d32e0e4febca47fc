package service

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/runavault/runavault/internal/vault/domain"
)

func TestSelectCiphertext(t *testing.T) {
	envelope := &domain.Envelope{
		Primary: "ct-primary",
		SharedWithUsers: []domain.UserShare{
			{UserID: "user-1", Ciphertext: "ct-user-1"},
		},
		SharedWithGroups: []domain.GroupShare{
			{GroupID: "group-a", Ciphertext: "ct-group-a"},
			{GroupID: "group-b", Ciphertext: "ct-group-b"},
		},
		Roles: map[string]domain.Role{},
	}

	t.Run("ScopeHintWinsWhenMember", func(t *testing.T) {
		ciphertext, encCtx, err := SelectCiphertext(envelope, "user-1", []string{"group-a", "group-b"}, "group-b", false)
		require.NoError(t, err)
		assert.Equal(t, "ct-group-b", ciphertext)
		assert.Equal(t, GroupContext("group-b"), encCtx)
	})

	t.Run("ScopeHintIgnoredWhenNotMember", func(t *testing.T) {
		ciphertext, _, err := SelectCiphertext(envelope, "user-1", []string{"group-b"}, "group-a", false)
		require.NoError(t, err)
		assert.Equal(t, "ct-group-b", ciphertext)
	})

	t.Run("FirstMatchingGroupInStoredOrder", func(t *testing.T) {
		// Caller groups listed b-first, but envelope order decides
		ciphertext, _, err := SelectCiphertext(envelope, "other", []string{"group-b", "group-a"}, "", false)
		require.NoError(t, err)
		assert.Equal(t, "ct-group-a", ciphertext)
	})

	t.Run("GroupShareBeforeUserShare", func(t *testing.T) {
		ciphertext, _, err := SelectCiphertext(envelope, "user-1", []string{"group-b"}, "", false)
		require.NoError(t, err)
		assert.Equal(t, "ct-group-b", ciphertext)
	})

	t.Run("UserShareBeforePrimary", func(t *testing.T) {
		ciphertext, encCtx, err := SelectCiphertext(envelope, "user-1", nil, "", true)
		require.NoError(t, err)
		assert.Equal(t, "ct-user-1", ciphertext)
		assert.Equal(t, UserContext("user-1"), encCtx)
	})

	t.Run("OwnerFallsBackToPrimary", func(t *testing.T) {
		ciphertext, encCtx, err := SelectCiphertext(envelope, "owner", nil, "", true)
		require.NoError(t, err)
		assert.Equal(t, "ct-primary", ciphertext)
		assert.Equal(t, PrimaryContext(), encCtx)
	})

	t.Run("NonOwnerWithoutShareIsRefused", func(t *testing.T) {
		_, _, err := SelectCiphertext(envelope, "stranger", []string{"unrelated"}, "", false)
		assert.ErrorIs(t, err, domain.ErrNoAccessibleCiphertext)
	})

	t.Run("NilEnvelopeIsRefused", func(t *testing.T) {
		_, _, err := SelectCiphertext(nil, "user-1", nil, "", true)
		assert.ErrorIs(t, err, domain.ErrNoAccessibleCiphertext)
	})
}

func TestResolver_Open(t *testing.T) {
	ctx := context.Background()
	logger := slog.New(slog.DiscardHandler)

	oracle, err := NewLocalOracle(testKey())
	require.NoError(t, err)
	sealer := NewSealer(oracle, logger)
	resolver := NewResolver(oracle, logger)

	envelope, err := sealer.Seal(ctx, []byte("hunter2"), domain.SharePolicy{
		Users:  []string{"user-1"},
		Groups: []string{"group-a"},
	})
	require.NoError(t, err)

	t.Run("OwnerOpensPrimary", func(t *testing.T) {
		plaintext, err := resolver.Open(ctx, envelope, "owner", nil, "", true)
		require.NoError(t, err)
		assert.Equal(t, []byte("hunter2"), plaintext)
	})

	t.Run("SharedUserOpensOwnShare", func(t *testing.T) {
		plaintext, err := resolver.Open(ctx, envelope, "user-1", nil, "", false)
		require.NoError(t, err)
		assert.Equal(t, []byte("hunter2"), plaintext)
	})

	t.Run("GroupMemberOpensGroupShare", func(t *testing.T) {
		plaintext, err := resolver.Open(ctx, envelope, "member", []string{"group-a"}, "group-a", false)
		require.NoError(t, err)
		assert.Equal(t, []byte("hunter2"), plaintext)
	})

	t.Run("NoEntryIsForbiddenBeforeAnyOracleCall", func(t *testing.T) {
		_, err := resolver.Open(ctx, envelope, "stranger", nil, "", false)
		assert.ErrorIs(t, err, domain.ErrNoAccessibleCiphertext)
	})

	t.Run("CorruptedShareFailsWithoutRetry", func(t *testing.T) {
		corrupted := &domain.Envelope{
			Primary: envelope.Primary,
			SharedWithUsers: []domain.UserShare{
				{UserID: "user-1", Ciphertext: "AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA"},
			},
			Roles: map[string]domain.Role{},
		}

		// user-1's share is broken; the valid primary must not be tried
		_, err := resolver.Open(ctx, corrupted, "user-1", nil, "", false)
		assert.ErrorIs(t, err, domain.ErrDecryptionFailed)
	})
}
