package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/runavault/runavault/internal/testutil"
	"github.com/runavault/runavault/internal/vault/domain"
)

func TestMySQLSecretRepository_CreateAndGet(t *testing.T) {
	db := testutil.SetupMySQLDB(t)
	defer testutil.TeardownDB(t, db)
	defer testutil.CleanupMySQLDB(t, db)

	repo := NewMySQLSecretRepository(db)
	ctx := context.Background()

	secret := testSecret("owner-1", "example.com")
	require.NoError(t, repo.Create(ctx, secret))

	read, err := repo.Get(ctx, secret.ID)
	require.NoError(t, err)
	assert.Equal(t, secret.ID, read.ID)
	assert.Equal(t, secret.Envelope, read.Envelope)
	assert.Equal(t, secret.Tags, read.Tags)
	assert.WithinDuration(t, secret.LastModified, read.LastModified, time.Second)

	byLocation, err := repo.GetByLocation(ctx, "owner-1", "example.com", "default")
	require.NoError(t, err)
	assert.Equal(t, secret.ID, byLocation.ID)
}

func TestMySQLSecretRepository_CreateDuplicateLocation(t *testing.T) {
	db := testutil.SetupMySQLDB(t)
	defer testutil.TeardownDB(t, db)
	defer testutil.CleanupMySQLDB(t, db)

	repo := NewMySQLSecretRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, testSecret("owner-1", "example.com")))

	err := repo.Create(ctx, testSecret("owner-1", "example.com"))
	assert.ErrorIs(t, err, domain.ErrSecretAlreadyExists)
}

func TestMySQLSecretRepository_UpdateAndDelete(t *testing.T) {
	db := testutil.SetupMySQLDB(t)
	defer testutil.TeardownDB(t, db)
	defer testutil.CleanupMySQLDB(t, db)

	repo := NewMySQLSecretRepository(db)
	ctx := context.Background()

	secret := testSecret("owner-1", "example.com")
	require.NoError(t, repo.Create(ctx, secret))

	secret.Envelope = domain.NewEnvelope("ct-primary-v2")
	secret.Version = 2
	require.NoError(t, repo.Update(ctx, secret))

	read, err := repo.Get(ctx, secret.ID)
	require.NoError(t, err)
	assert.Equal(t, "ct-primary-v2", read.Envelope.Primary)
	assert.Equal(t, uint(2), read.Version)

	require.NoError(t, repo.Delete(ctx, secret.ID))
	_, err = repo.Get(ctx, secret.ID)
	assert.ErrorIs(t, err, domain.ErrSecretNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, secret.ID), domain.ErrSecretNotFound)
}

func TestMySQLSecretRepository_SharesAndListing(t *testing.T) {
	db := testutil.SetupMySQLDB(t)
	defer testutil.TeardownDB(t, db)
	defer testutil.CleanupMySQLDB(t, db)

	repo := NewMySQLSecretRepository(db)
	ctx := context.Background()

	shared := testSecret("owner-2", "b.example.com")
	require.NoError(t, repo.Create(ctx, shared))
	require.NoError(t, repo.ReplaceShares(ctx, shared.ID, domain.SharePolicy{
		Users:  []string{"owner-1"},
		Groups: []string{"engineering"},
		Roles:  map[string]domain.Role{"engineering": domain.RoleEditor},
	}))

	byUser, err := repo.ListSharedWithUser(ctx, "owner-1", 0, 50)
	require.NoError(t, err)
	require.Len(t, byUser, 1)
	assert.Equal(t, shared.ID, byUser[0].ID)

	byGroup, err := repo.ListSharedWithGroups(ctx, "owner-1", []string{"engineering"}, 0, 50)
	require.NoError(t, err)
	require.Len(t, byGroup, 1)
	assert.Equal(t, shared.ID, byGroup[0].ID)

	empty, err := repo.ListSharedWithGroups(ctx, "owner-1", nil, 0, 50)
	require.NoError(t, err)
	assert.Empty(t, empty)

	work := testSecret("owner-1", "c.example.com")
	work.Subdirectory = "work"
	require.NoError(t, repo.Create(ctx, work))

	bySubdirectory, err := repo.ListByOwnerSubdirectory(ctx, "owner-1", "work")
	require.NoError(t, err)
	require.Len(t, bySubdirectory, 1)
	assert.Equal(t, work.ID, bySubdirectory[0].ID)
}

func TestMySQLSecretRepository_ListingSkipsCorruptEnvelope(t *testing.T) {
	db := testutil.SetupMySQLDB(t)
	defer testutil.TeardownDB(t, db)
	defer testutil.CleanupMySQLDB(t, db)

	repo := NewMySQLSecretRepository(db)
	ctx := context.Background()

	healthy := testSecret("owner-3", "a.example.com")
	require.NoError(t, repo.Create(ctx, healthy))

	// Bypass the repository to store a row whose envelope column is empty,
	// the shape a botched migration or manual edit would leave behind.
	corruptID := uuid.Must(uuid.NewV7())
	_, err := db.ExecContext(ctx,
		`INSERT INTO secrets (id, owner_id, site, subdirectory, username, envelope, notes, tags,
		 favorite, version, last_modified)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		corruptID[:], "owner-3", "b.example.com", "default", "alice@example.com",
		"", "", "[]", false, 1, time.Now().UTC())
	require.NoError(t, err)

	secrets, err := repo.ListByOwner(ctx, "owner-3", 0, 50)
	require.NoError(t, err)
	require.Len(t, secrets, 1)
	assert.Equal(t, healthy.ID, secrets[0].ID)

	// Direct lookups still surface the error for the broken secret.
	_, err = repo.Get(ctx, corruptID)
	assert.ErrorIs(t, err, domain.ErrInvalidEnvelope)
}

func TestMySQLSecretRepository_SetFavorite(t *testing.T) {
	db := testutil.SetupMySQLDB(t)
	defer testutil.TeardownDB(t, db)
	defer testutil.CleanupMySQLDB(t, db)

	repo := NewMySQLSecretRepository(db)
	ctx := context.Background()

	secret := testSecret("owner-1", "example.com")
	require.NoError(t, repo.Create(ctx, secret))

	require.NoError(t, repo.SetFavorite(ctx, secret.ID, true))

	read, err := repo.Get(ctx, secret.ID)
	require.NoError(t, err)
	assert.True(t, read.Favorite)

	assert.ErrorIs(t, repo.SetFavorite(ctx, uuid.Must(uuid.NewV7()), true), domain.ErrSecretNotFound)
}
