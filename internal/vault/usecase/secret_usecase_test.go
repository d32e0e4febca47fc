package usecase

import (
	"context"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/runavault/runavault/internal/identity"
	"github.com/runavault/runavault/internal/vault/domain"
	"github.com/runavault/runavault/internal/vault/service"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// MockTxManager is a mock implementation of database.TxManager
type MockTxManager struct {
	mock.Mock
}

func (m *MockTxManager) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	args := m.Called(ctx, fn)
	if args.Get(0) != nil {
		return args.Error(0)
	}
	// Execute the function to test the logic inside
	return fn(ctx)
}

// MockSecretRepository is a mock implementation of SecretRepository
type MockSecretRepository struct {
	mock.Mock
}

func (m *MockSecretRepository) Create(ctx context.Context, secret *domain.Secret) error {
	args := m.Called(ctx, secret)
	return args.Error(0)
}

func (m *MockSecretRepository) Update(ctx context.Context, secret *domain.Secret) error {
	args := m.Called(ctx, secret)
	return args.Error(0)
}

func (m *MockSecretRepository) Delete(ctx context.Context, secretID uuid.UUID) error {
	args := m.Called(ctx, secretID)
	return args.Error(0)
}

func (m *MockSecretRepository) Get(ctx context.Context, secretID uuid.UUID) (*domain.Secret, error) {
	args := m.Called(ctx, secretID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Secret), args.Error(1)
}

func (m *MockSecretRepository) GetByLocation(
	ctx context.Context, owner, site, subdirectory string,
) (*domain.Secret, error) {
	args := m.Called(ctx, owner, site, subdirectory)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Secret), args.Error(1)
}

func (m *MockSecretRepository) ListByOwner(
	ctx context.Context, owner string, offset, limit int,
) ([]*domain.Secret, error) {
	args := m.Called(ctx, owner, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Secret), args.Error(1)
}

func (m *MockSecretRepository) ListByOwnerSubdirectory(
	ctx context.Context, owner, subdirectory string,
) ([]*domain.Secret, error) {
	args := m.Called(ctx, owner, subdirectory)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Secret), args.Error(1)
}

func (m *MockSecretRepository) ListSharedWithUser(
	ctx context.Context, userID string, offset, limit int,
) ([]*domain.Secret, error) {
	args := m.Called(ctx, userID, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Secret), args.Error(1)
}

func (m *MockSecretRepository) ListSharedWithGroups(
	ctx context.Context, owner string, groupIDs []string, offset, limit int,
) ([]*domain.Secret, error) {
	args := m.Called(ctx, owner, groupIDs, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Secret), args.Error(1)
}

func (m *MockSecretRepository) ReplaceShares(
	ctx context.Context, secretID uuid.UUID, policy domain.SharePolicy,
) error {
	args := m.Called(ctx, secretID, policy)
	return args.Error(0)
}

func (m *MockSecretRepository) SetFavorite(ctx context.Context, secretID uuid.UUID, favorite bool) error {
	args := m.Called(ctx, secretID, favorite)
	return args.Error(0)
}

// testFixture wires a use case with mocked persistence and a real local key oracle.
type testFixture struct {
	useCase  SecretUseCase
	repo     *MockSecretRepository
	tx       *MockTxManager
	oracle   service.KeyOracle
	sealer   service.Sealer
	resolver service.Resolver
}

func newFixture(t *testing.T) *testFixture {
	t.Helper()

	key := make([]byte, 32)
	for i := range key {
		key[i] = byte(i)
	}
	oracle, err := service.NewLocalOracle(key)
	require.NoError(t, err)

	logger := slog.New(slog.DiscardHandler)
	repo := new(MockSecretRepository)
	tx := new(MockTxManager)
	sealer := service.NewSealer(oracle, logger)
	resolver := service.NewResolver(oracle, logger)

	return &testFixture{
		useCase:  NewSecretUseCase(tx, repo, sealer, resolver),
		repo:     repo,
		tx:       tx,
		oracle:   oracle,
		sealer:   sealer,
		resolver: resolver,
	}
}

// sealedSecret builds a stored secret with a real envelope for the given policy.
func (f *testFixture) sealedSecret(t *testing.T, owner string, password []byte, policy domain.SharePolicy) *domain.Secret {
	t.Helper()

	envelope, err := f.sealer.Seal(context.Background(), password, policy)
	require.NoError(t, err)

	return &domain.Secret{
		ID:           uuid.Must(uuid.NewV7()),
		Owner:        owner,
		Site:         "example.com",
		Subdirectory: "default",
		Username:     "alice@example.com",
		Envelope:     envelope,
		Tags:         []string{},
		Version:      1,
	}
}

func TestSecretUseCase_Create(t *testing.T) {
	ctx := context.Background()
	ownerClaims := identity.Claims{Subject: "owner-1"}

	t.Run("SealsAndPersistsInOneTransaction", func(t *testing.T) {
		f := newFixture(t)
		f.tx.On("WithTx", ctx, mock.Anything).Return(nil)
		f.repo.On("Create", ctx, mock.Anything).Return(nil)
		f.repo.On("ReplaceShares", ctx, mock.Anything, mock.Anything).Return(nil)

		secret, err := f.useCase.Create(ctx, ownerClaims, CreateSecretInput{
			Site:     "example.com",
			Username: "alice@example.com",
			Password: []byte("hunter2"),
			Policy: domain.SharePolicy{
				Users:  []string{"user-1"},
				Groups: []string{"engineering"},
				Roles:  map[string]domain.Role{"engineering": domain.RoleEditor},
			},
		})
		require.NoError(t, err)
		assert.Equal(t, "owner-1", secret.Owner)
		assert.Equal(t, DefaultSubdirectory, secret.Subdirectory)
		assert.Equal(t, uint(1), secret.Version)

		// The stored envelope decrypts for every principal
		plaintext, err := f.resolver.Open(ctx, secret.Envelope, "owner-1", nil, "", true)
		require.NoError(t, err)
		assert.Equal(t, []byte("hunter2"), plaintext)

		plaintext, err = f.resolver.Open(ctx, secret.Envelope, "user-1", nil, "", false)
		require.NoError(t, err)
		assert.Equal(t, []byte("hunter2"), plaintext)

		f.repo.AssertExpectations(t)
		f.tx.AssertExpectations(t)
	})

	t.Run("OwnerIsNotGivenADirectShare", func(t *testing.T) {
		f := newFixture(t)
		f.tx.On("WithTx", ctx, mock.Anything).Return(nil)
		f.repo.On("Create", ctx, mock.Anything).Return(nil)
		f.repo.On("ReplaceShares", ctx, mock.Anything, mock.Anything).Return(nil)

		secret, err := f.useCase.Create(ctx, ownerClaims, CreateSecretInput{
			Site:     "example.com",
			Password: []byte("hunter2"),
			Policy:   domain.SharePolicy{Users: []string{"owner-1", "user-1"}},
		})
		require.NoError(t, err)

		_, ok := secret.Envelope.FindUserShare("owner-1")
		assert.False(t, ok)
		_, ok = secret.Envelope.FindUserShare("user-1")
		assert.True(t, ok)
	})

	t.Run("OverlongNotesAreRejectedBeforeSealing", func(t *testing.T) {
		f := newFixture(t)

		notes := make([]byte, domain.MaxNotesLength+1)
		for i := range notes {
			notes[i] = 'a'
		}
		_, err := f.useCase.Create(ctx, ownerClaims, CreateSecretInput{
			Site:     "example.com",
			Password: []byte("hunter2"),
			Notes:    string(notes),
		})
		assert.ErrorIs(t, err, domain.ErrNotesTooLong)
		f.repo.AssertNotCalled(t, "Create")
	})

	t.Run("DuplicateLocationConflicts", func(t *testing.T) {
		f := newFixture(t)
		f.tx.On("WithTx", ctx, mock.Anything).Return(nil)
		f.repo.On("Create", ctx, mock.Anything).Return(domain.ErrSecretAlreadyExists)

		_, err := f.useCase.Create(ctx, ownerClaims, CreateSecretInput{
			Site:     "example.com",
			Password: []byte("hunter2"),
		})
		assert.ErrorIs(t, err, domain.ErrSecretAlreadyExists)
	})
}

func TestSecretUseCase_Get(t *testing.T) {
	ctx := context.Background()

	t.Run("OwnerRevealsPrimary", func(t *testing.T) {
		f := newFixture(t)
		secret := f.sealedSecret(t, "owner-1", []byte("hunter2"), domain.NewSharePolicy())
		f.repo.On("Get", ctx, secret.ID).Return(secret, nil)

		got, err := f.useCase.Get(ctx, identity.Claims{Subject: "owner-1"}, secret.ID, "", true)
		require.NoError(t, err)
		assert.Equal(t, []byte("hunter2"), got.Plaintext)
	})

	t.Run("MetadataOnlyWithoutReveal", func(t *testing.T) {
		f := newFixture(t)
		secret := f.sealedSecret(t, "owner-1", []byte("hunter2"), domain.NewSharePolicy())
		f.repo.On("Get", ctx, secret.ID).Return(secret, nil)

		got, err := f.useCase.Get(ctx, identity.Claims{Subject: "owner-1"}, secret.ID, "", false)
		require.NoError(t, err)
		assert.Nil(t, got.Plaintext)
	})

	t.Run("GroupMemberRevealsThroughScope", func(t *testing.T) {
		f := newFixture(t)
		secret := f.sealedSecret(t, "owner-1", []byte("hunter2"), domain.SharePolicy{
			Groups: []string{"engineering"},
		})
		f.repo.On("Get", ctx, secret.ID).Return(secret, nil)

		claims := identity.Claims{Subject: "member", Groups: []string{"engineering"}}
		got, err := f.useCase.Get(ctx, claims, secret.ID, "engineering", true)
		require.NoError(t, err)
		assert.Equal(t, []byte("hunter2"), got.Plaintext)
	})

	t.Run("StrangerSeesNotFound", func(t *testing.T) {
		f := newFixture(t)
		secret := f.sealedSecret(t, "owner-1", []byte("hunter2"), domain.NewSharePolicy())
		f.repo.On("Get", ctx, secret.ID).Return(secret, nil)

		_, err := f.useCase.Get(ctx, identity.Claims{Subject: "stranger"}, secret.ID, "", true)
		assert.ErrorIs(t, err, domain.ErrSecretNotFound)
	})

	t.Run("CorruptedEnvelopeFailsClosed", func(t *testing.T) {
		f := newFixture(t)
		secret := f.sealedSecret(t, "owner-1", []byte("hunter2"), domain.NewSharePolicy())
		secret.Envelope.Primary = "AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA"
		f.repo.On("Get", ctx, secret.ID).Return(secret, nil)

		_, err := f.useCase.Get(ctx, identity.Claims{Subject: "owner-1"}, secret.ID, "", true)
		assert.ErrorIs(t, err, domain.ErrDecryptionFailed)
	})
}

func TestSecretUseCase_List(t *testing.T) {
	ctx := context.Background()
	claims := identity.Claims{Subject: "owner-1", Groups: []string{"engineering", "ops"}}

	t.Run("AllScopes", func(t *testing.T) {
		f := newFixture(t)
		f.repo.On("ListByOwner", ctx, "owner-1", 0, 50).Return([]*domain.Secret{}, nil)
		f.repo.On("ListSharedWithUser", ctx, "owner-1", 0, 50).Return([]*domain.Secret{}, nil)
		f.repo.On("ListSharedWithGroups", ctx, "owner-1", []string{"engineering", "ops"}, 0, 50).
			Return([]*domain.Secret{}, nil)

		for _, scope := range []ListScope{ScopeOwned, ScopeSharedUser, ScopeSharedGroup} {
			_, err := f.useCase.List(ctx, claims, scope, "", 0, 50)
			require.NoError(t, err)
		}
		f.repo.AssertExpectations(t)
	})

	t.Run("GroupFilterNarrowsToOneGroup", func(t *testing.T) {
		f := newFixture(t)
		f.repo.On("ListSharedWithGroups", ctx, "owner-1", []string{"ops"}, 0, 50).
			Return([]*domain.Secret{}, nil)

		_, err := f.useCase.List(ctx, claims, ScopeSharedGroup, "ops", 0, 50)
		require.NoError(t, err)
		f.repo.AssertExpectations(t)
	})

	t.Run("GroupFilterOutsideMembershipIsEmpty", func(t *testing.T) {
		f := newFixture(t)

		secrets, err := f.useCase.List(ctx, claims, ScopeSharedGroup, "finance", 0, 50)
		require.NoError(t, err)
		assert.Empty(t, secrets)
		f.repo.AssertNotCalled(t, "ListSharedWithGroups",
			mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("OwnedScopeIgnoresGroupFilter", func(t *testing.T) {
		f := newFixture(t)
		f.repo.On("ListByOwner", ctx, "owner-1", 0, 50).Return([]*domain.Secret{}, nil)

		_, err := f.useCase.List(ctx, claims, ScopeOwned, "finance", 0, 50)
		require.NoError(t, err)
		f.repo.AssertExpectations(t)
	})
}

func TestSecretUseCase_Edit(t *testing.T) {
	ctx := context.Background()

	t.Run("OwnerChangesPasswordAndPolicy", func(t *testing.T) {
		f := newFixture(t)
		secret := f.sealedSecret(t, "owner-1", []byte("hunter2"), domain.SharePolicy{
			Users: []string{"user-1"},
		})
		f.repo.On("Get", ctx, secret.ID).Return(secret, nil)
		f.tx.On("WithTx", ctx, mock.Anything).Return(nil)
		f.repo.On("Update", ctx, mock.Anything).Return(nil)
		f.repo.On("ReplaceShares", ctx, secret.ID, mock.Anything).Return(nil)

		newPolicy := domain.SharePolicy{Users: []string{"user-2"}}
		updated, err := f.useCase.Edit(ctx, identity.Claims{Subject: "owner-1"}, secret.ID, EditSecretInput{
			Password: []byte("correct horse"),
			Policy:   &newPolicy,
		})
		require.NoError(t, err)
		assert.Equal(t, uint(2), updated.Version)

		// Old principal lost access, new principal gained it
		_, err = f.resolver.Open(ctx, updated.Envelope, "user-1", nil, "", false)
		assert.ErrorIs(t, err, domain.ErrNoAccessibleCiphertext)

		plaintext, err := f.resolver.Open(ctx, updated.Envelope, "user-2", nil, "", false)
		require.NoError(t, err)
		assert.Equal(t, []byte("correct horse"), plaintext)
	})

	t.Run("GroupEditorEditsWithoutKnowingPassword", func(t *testing.T) {
		f := newFixture(t)
		secret := f.sealedSecret(t, "owner-1", []byte("hunter2"), domain.SharePolicy{
			Groups: []string{"engineering"},
			Roles:  map[string]domain.Role{"engineering": domain.RoleEditor},
		})
		f.repo.On("Get", ctx, secret.ID).Return(secret, nil)
		f.tx.On("WithTx", ctx, mock.Anything).Return(nil)
		f.repo.On("Update", ctx, mock.Anything).Return(nil)
		f.repo.On("ReplaceShares", ctx, secret.ID, mock.Anything).Return(nil)

		claims := identity.Claims{Subject: "member", Groups: []string{"engineering"}}
		username := "bob@example.com"
		updated, err := f.useCase.Edit(ctx, claims, secret.ID, EditSecretInput{Username: &username})
		require.NoError(t, err)
		assert.Equal(t, "bob@example.com", updated.Username)

		// Password survives the reseal: the owner can still decrypt
		plaintext, err := f.resolver.Open(ctx, updated.Envelope, "owner-1", nil, "", true)
		require.NoError(t, err)
		assert.Equal(t, []byte("hunter2"), plaintext)
	})

	t.Run("ViewerCannotEdit", func(t *testing.T) {
		f := newFixture(t)
		secret := f.sealedSecret(t, "owner-1", []byte("hunter2"), domain.SharePolicy{
			Users: []string{"user-1"},
		})
		f.repo.On("Get", ctx, secret.ID).Return(secret, nil)

		username := "evil@example.com"
		_, err := f.useCase.Edit(ctx, identity.Claims{Subject: "user-1"}, secret.ID, EditSecretInput{
			Username: &username,
		})
		assert.ErrorIs(t, err, domain.ErrUnauthorizedAction)
		f.repo.AssertNotCalled(t, "Update")
	})

	t.Run("StrangerSeesNotFound", func(t *testing.T) {
		f := newFixture(t)
		secret := f.sealedSecret(t, "owner-1", []byte("hunter2"), domain.NewSharePolicy())
		f.repo.On("Get", ctx, secret.ID).Return(secret, nil)

		_, err := f.useCase.Edit(ctx, identity.Claims{Subject: "stranger"}, secret.ID, EditSecretInput{})
		assert.ErrorIs(t, err, domain.ErrSecretNotFound)
	})
}

func TestSecretUseCase_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("OwnerDeletes", func(t *testing.T) {
		f := newFixture(t)
		secret := f.sealedSecret(t, "owner-1", []byte("hunter2"), domain.NewSharePolicy())
		f.repo.On("Get", ctx, secret.ID).Return(secret, nil)
		f.repo.On("Delete", ctx, secret.ID).Return(nil)

		err := f.useCase.Delete(ctx, identity.Claims{Subject: "owner-1"}, secret.ID)
		assert.NoError(t, err)
	})

	t.Run("GroupEditorCannotDelete", func(t *testing.T) {
		f := newFixture(t)
		secret := f.sealedSecret(t, "owner-1", []byte("hunter2"), domain.SharePolicy{
			Groups: []string{"engineering"},
			Roles:  map[string]domain.Role{"engineering": domain.RoleEditor},
		})
		f.repo.On("Get", ctx, secret.ID).Return(secret, nil)

		claims := identity.Claims{Subject: "member", Groups: []string{"engineering"}}
		err := f.useCase.Delete(ctx, claims, secret.ID)
		assert.ErrorIs(t, err, domain.ErrUnauthorizedAction)
		f.repo.AssertNotCalled(t, "Delete")
	})
}

func TestSecretUseCase_SetFavorite(t *testing.T) {
	ctx := context.Background()

	t.Run("OwnerTogglesFavorite", func(t *testing.T) {
		f := newFixture(t)
		secret := f.sealedSecret(t, "owner-1", []byte("hunter2"), domain.NewSharePolicy())
		f.repo.On("Get", ctx, secret.ID).Return(secret, nil)
		f.repo.On("SetFavorite", ctx, secret.ID, true).Return(nil)

		err := f.useCase.SetFavorite(ctx, identity.Claims{Subject: "owner-1"}, secret.ID, true)
		assert.NoError(t, err)
	})

	t.Run("SharedViewerCannotToggle", func(t *testing.T) {
		f := newFixture(t)
		secret := f.sealedSecret(t, "owner-1", []byte("hunter2"), domain.SharePolicy{
			Users: []string{"user-1"},
		})
		f.repo.On("Get", ctx, secret.ID).Return(secret, nil)

		err := f.useCase.SetFavorite(ctx, identity.Claims{Subject: "user-1"}, secret.ID, true)
		assert.ErrorIs(t, err, domain.ErrUnauthorizedAction)
	})
}

func TestSecretUseCase_Share(t *testing.T) {
	ctx := context.Background()

	t.Run("OwnerGrantsNewShares", func(t *testing.T) {
		f := newFixture(t)
		secret := f.sealedSecret(t, "owner-1", []byte("hunter2"), domain.SharePolicy{
			Users: []string{"user-1"},
		})
		originalShare, _ := secret.Envelope.FindUserShare("user-1")
		f.repo.On("Get", ctx, secret.ID).Return(secret, nil)
		f.tx.On("WithTx", ctx, mock.Anything).Return(nil)
		f.repo.On("Update", ctx, mock.Anything).Return(nil)
		f.repo.On("ReplaceShares", ctx, secret.ID, mock.Anything).Return(nil)

		updated, err := f.useCase.Share(ctx, identity.Claims{Subject: "owner-1"}, secret.ID, domain.SharePolicy{
			Users:  []string{"user-2"},
			Groups: []string{"engineering"},
		})
		require.NoError(t, err)
		assert.Equal(t, uint(2), updated.Version)

		// Existing share is byte-for-byte untouched
		kept, ok := updated.Envelope.FindUserShare("user-1")
		require.True(t, ok)
		assert.Equal(t, originalShare.Ciphertext, kept.Ciphertext)

		plaintext, err := f.resolver.Open(ctx, updated.Envelope, "user-2", nil, "", false)
		require.NoError(t, err)
		assert.Equal(t, []byte("hunter2"), plaintext)

		plaintext, err = f.resolver.Open(ctx, updated.Envelope, "member", []string{"engineering"}, "", false)
		require.NoError(t, err)
		assert.Equal(t, []byte("hunter2"), plaintext)
	})

	t.Run("NonOwnerCannotShare", func(t *testing.T) {
		f := newFixture(t)
		secret := f.sealedSecret(t, "owner-1", []byte("hunter2"), domain.SharePolicy{
			Groups: []string{"engineering"},
			Roles:  map[string]domain.Role{"engineering": domain.RoleEditor},
		})
		f.repo.On("Get", ctx, secret.ID).Return(secret, nil)

		claims := identity.Claims{Subject: "member", Groups: []string{"engineering"}}
		_, err := f.useCase.Share(ctx, claims, secret.ID, domain.SharePolicy{Users: []string{"user-9"}})
		assert.ErrorIs(t, err, domain.ErrUnauthorizedAction)
	})
}

func TestSecretUseCase_ShareDirectory(t *testing.T) {
	ctx := context.Background()
	ownerClaims := identity.Claims{Subject: "owner-1"}

	t.Run("GrantsAccessToEverySecretInSubdirectory", func(t *testing.T) {
		f := newFixture(t)
		first := f.sealedSecret(t, "owner-1", []byte("hunter2"), domain.SharePolicy{
			Users: []string{"user-1"},
		})
		second := f.sealedSecret(t, "owner-1", []byte("swordfish"), domain.NewSharePolicy())
		second.Site = "other.example.com"
		firstShare, _ := first.Envelope.FindUserShare("user-1")

		f.repo.On("ListByOwnerSubdirectory", ctx, "owner-1", "work").
			Return([]*domain.Secret{first, second}, nil)
		f.tx.On("WithTx", ctx, mock.Anything).Return(nil)
		f.repo.On("Update", ctx, mock.Anything).Return(nil)
		f.repo.On("ReplaceShares", ctx, mock.Anything, mock.Anything).Return(nil)

		updated, err := f.useCase.ShareDirectory(ctx, ownerClaims, "work", domain.SharePolicy{
			Users:  []string{"user-2"},
			Groups: []string{"engineering"},
		})
		require.NoError(t, err)
		require.Len(t, updated, 2)
		assert.Equal(t, uint(2), updated[0].Version)
		assert.Equal(t, uint(2), updated[1].Version)

		// The pre-existing share is byte-for-byte untouched
		kept, ok := updated[0].Envelope.FindUserShare("user-1")
		require.True(t, ok)
		assert.Equal(t, firstShare.Ciphertext, kept.Ciphertext)

		// Every secret in the subdirectory decrypts for the new principals
		plaintext, err := f.resolver.Open(ctx, updated[0].Envelope, "user-2", nil, "", false)
		require.NoError(t, err)
		assert.Equal(t, []byte("hunter2"), plaintext)

		plaintext, err = f.resolver.Open(ctx, updated[1].Envelope, "member", []string{"engineering"}, "", false)
		require.NoError(t, err)
		assert.Equal(t, []byte("swordfish"), plaintext)

		f.repo.AssertExpectations(t)
	})

	t.Run("EmptySubdirectoryIsNotFound", func(t *testing.T) {
		f := newFixture(t)
		f.repo.On("ListByOwnerSubdirectory", ctx, "owner-1", "nope").
			Return([]*domain.Secret{}, nil)

		_, err := f.useCase.ShareDirectory(ctx, ownerClaims, "nope", domain.SharePolicy{
			Users: []string{"user-2"},
		})
		assert.ErrorIs(t, err, domain.ErrSecretNotFound)
		f.repo.AssertNotCalled(t, "Update")
	})

	t.Run("OwnerInPolicyIsIgnored", func(t *testing.T) {
		f := newFixture(t)
		secret := f.sealedSecret(t, "owner-1", []byte("hunter2"), domain.NewSharePolicy())
		f.repo.On("ListByOwnerSubdirectory", ctx, "owner-1", "default").
			Return([]*domain.Secret{secret}, nil)
		f.tx.On("WithTx", ctx, mock.Anything).Return(nil)
		f.repo.On("Update", ctx, mock.Anything).Return(nil)
		f.repo.On("ReplaceShares", ctx, mock.Anything, mock.Anything).Return(nil)

		updated, err := f.useCase.ShareDirectory(ctx, ownerClaims, "default", domain.SharePolicy{
			Users: []string{"owner-1", "user-2"},
		})
		require.NoError(t, err)
		require.Len(t, updated, 1)

		_, ok := updated[0].Envelope.FindUserShare("owner-1")
		assert.False(t, ok)
		_, ok = updated[0].Envelope.FindUserShare("user-2")
		assert.True(t, ok)
	})
}
