package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/runavault/runavault/internal/database"
	apperrors "github.com/runavault/runavault/internal/errors"
	"github.com/runavault/runavault/internal/vault/domain"
)

const pgSecretColumns = `id, owner_id, site, subdirectory, username, envelope, notes, tags,
		 favorite, version, last_modified`

// PostgreSQLSecretRepository implements secret persistence for PostgreSQL databases.
type PostgreSQLSecretRepository struct {
	db *sql.DB
}

// NewPostgreSQLSecretRepository creates a new PostgreSQLSecretRepository.
func NewPostgreSQLSecretRepository(db *sql.DB) *PostgreSQLSecretRepository {
	return &PostgreSQLSecretRepository{db: db}
}

// Create inserts a new secret.
func (r *PostgreSQLSecretRepository) Create(ctx context.Context, secret *domain.Secret) error {
	querier := database.GetTx(ctx, r.db)

	envelope, err := encodeEnvelope(secret)
	if err != nil {
		return err
	}
	tags, err := encodeTags(secret)
	if err != nil {
		return err
	}

	query := `INSERT INTO secrets (id, owner_id, site, subdirectory, username, envelope, notes, tags,
			  favorite, version, last_modified)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	_, err = querier.ExecContext(
		ctx,
		query,
		secret.ID,
		secret.Owner,
		secret.Site,
		secret.Subdirectory,
		secret.Username,
		envelope,
		secret.Notes,
		tags,
		secret.Favorite,
		secret.Version,
		secret.LastModified,
	)
	if err != nil {
		if isPostgreSQLUniqueViolation(err) {
			return domain.ErrSecretAlreadyExists
		}
		return apperrors.Wrap(err, "failed to create secret")
	}
	return nil
}

// Update rewrites the mutable columns of a secret.
func (r *PostgreSQLSecretRepository) Update(ctx context.Context, secret *domain.Secret) error {
	querier := database.GetTx(ctx, r.db)

	envelope, err := encodeEnvelope(secret)
	if err != nil {
		return err
	}
	tags, err := encodeTags(secret)
	if err != nil {
		return err
	}

	query := `UPDATE secrets
			  SET username = $2, envelope = $3, notes = $4, tags = $5, favorite = $6,
			      version = $7, last_modified = $8
			  WHERE id = $1`

	result, err := querier.ExecContext(
		ctx,
		query,
		secret.ID,
		secret.Username,
		envelope,
		secret.Notes,
		tags,
		secret.Favorite,
		secret.Version,
		secret.LastModified,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to update secret")
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return apperrors.Wrap(err, "failed to update secret")
	}
	if rows == 0 {
		return domain.ErrSecretNotFound
	}
	return nil
}

// Delete removes a secret. Share index rows go with it via cascade.
func (r *PostgreSQLSecretRepository) Delete(ctx context.Context, secretID uuid.UUID) error {
	querier := database.GetTx(ctx, r.db)

	result, err := querier.ExecContext(ctx, `DELETE FROM secrets WHERE id = $1`, secretID)
	if err != nil {
		return apperrors.Wrap(err, "failed to delete secret")
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return apperrors.Wrap(err, "failed to delete secret")
	}
	if rows == 0 {
		return domain.ErrSecretNotFound
	}
	return nil
}

// Get retrieves a secret by id.
func (r *PostgreSQLSecretRepository) Get(ctx context.Context, secretID uuid.UUID) (*domain.Secret, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT ` + pgSecretColumns + ` FROM secrets WHERE id = $1`
	return r.scanOne(querier.QueryRowContext(ctx, query, secretID))
}

// GetByLocation retrieves a secret by its unique (owner, site, subdirectory) key.
func (r *PostgreSQLSecretRepository) GetByLocation(
	ctx context.Context, owner, site, subdirectory string,
) (*domain.Secret, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT ` + pgSecretColumns + `
			  FROM secrets WHERE owner_id = $1 AND site = $2 AND subdirectory = $3`
	return r.scanOne(querier.QueryRowContext(ctx, query, owner, site, subdirectory))
}

// ListByOwner retrieves secrets owned by the given subject.
func (r *PostgreSQLSecretRepository) ListByOwner(
	ctx context.Context, owner string, offset, limit int,
) ([]*domain.Secret, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT ` + pgSecretColumns + `
			  FROM secrets WHERE owner_id = $1
			  ORDER BY site, subdirectory
			  OFFSET $2 LIMIT $3`

	rows, err := querier.QueryContext(ctx, query, owner, offset, limit)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list secrets by owner")
	}
	return r.scanMany(rows)
}

// ListByOwnerSubdirectory retrieves every secret the given subject owns in a
// subdirectory. Bulk re-shares walk this list, so it is not paginated.
func (r *PostgreSQLSecretRepository) ListByOwnerSubdirectory(
	ctx context.Context, owner, subdirectory string,
) ([]*domain.Secret, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT ` + pgSecretColumns + `
			  FROM secrets WHERE owner_id = $1 AND subdirectory = $2
			  ORDER BY site`

	rows, err := querier.QueryContext(ctx, query, owner, subdirectory)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list secrets by subdirectory")
	}
	return r.scanMany(rows)
}

// ListSharedWithUser retrieves secrets directly shared with the given user,
// excluding their own.
func (r *PostgreSQLSecretRepository) ListSharedWithUser(
	ctx context.Context, userID string, offset, limit int,
) ([]*domain.Secret, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT ` + pgSecretColumns + `
			  FROM secrets
			  WHERE owner_id != $1 AND id IN (
			      SELECT secret_id FROM secret_shares
			      WHERE principal_type = 'user' AND principal_id = $1
			  )
			  ORDER BY site, subdirectory
			  OFFSET $2 LIMIT $3`

	rows, err := querier.QueryContext(ctx, query, userID, offset, limit)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list secrets shared with user")
	}
	return r.scanMany(rows)
}

// ListSharedWithGroups retrieves secrets shared with any of the given groups,
// excluding those owned by the subject.
func (r *PostgreSQLSecretRepository) ListSharedWithGroups(
	ctx context.Context, owner string, groupIDs []string, offset, limit int,
) ([]*domain.Secret, error) {
	if len(groupIDs) == 0 {
		return []*domain.Secret{}, nil
	}
	querier := database.GetTx(ctx, r.db)

	query := `SELECT ` + pgSecretColumns + `
			  FROM secrets
			  WHERE owner_id != $1 AND id IN (
			      SELECT secret_id FROM secret_shares
			      WHERE principal_type = 'group' AND principal_id = ANY($2)
			  )
			  ORDER BY site, subdirectory
			  OFFSET $3 LIMIT $4`

	rows, err := querier.QueryContext(ctx, query, owner, pq.Array(groupIDs), offset, limit)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list secrets shared with groups")
	}
	return r.scanMany(rows)
}

// ReplaceShares rewrites the share index rows for a secret. Callers run this
// inside the same transaction as the envelope update.
func (r *PostgreSQLSecretRepository) ReplaceShares(
	ctx context.Context, secretID uuid.UUID, policy domain.SharePolicy,
) error {
	querier := database.GetTx(ctx, r.db)

	if _, err := querier.ExecContext(
		ctx, `DELETE FROM secret_shares WHERE secret_id = $1`, secretID,
	); err != nil {
		return apperrors.Wrap(err, "failed to clear secret shares")
	}

	query := `INSERT INTO secret_shares (secret_id, principal_type, principal_id, role)
			  VALUES ($1, $2, $3, $4)`
	for _, row := range shareRows(policy) {
		if _, err := querier.ExecContext(ctx, query, secretID, row.Type, row.ID, string(row.Role)); err != nil {
			return apperrors.Wrap(err, "failed to insert secret share")
		}
	}
	return nil
}

// SetFavorite updates the favorite flag.
func (r *PostgreSQLSecretRepository) SetFavorite(
	ctx context.Context, secretID uuid.UUID, favorite bool,
) error {
	querier := database.GetTx(ctx, r.db)

	result, err := querier.ExecContext(
		ctx, `UPDATE secrets SET favorite = $2 WHERE id = $1`, secretID, favorite,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to set favorite")
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return apperrors.Wrap(err, "failed to set favorite")
	}
	if rows == 0 {
		return domain.ErrSecretNotFound
	}
	return nil
}

// scanOne scans a single secret row.
func (r *PostgreSQLSecretRepository) scanOne(row *sql.Row) (*domain.Secret, error) {
	var secret domain.Secret
	var raw secretRow

	err := row.Scan(
		&secret.ID,
		&secret.Owner,
		&secret.Site,
		&secret.Subdirectory,
		&secret.Username,
		&raw.envelope,
		&secret.Notes,
		&raw.tags,
		&secret.Favorite,
		&secret.Version,
		&secret.LastModified,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrSecretNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get secret")
	}
	if err := raw.hydrate(&secret); err != nil {
		return nil, err
	}
	return &secret, nil
}

// scanMany scans a result set of secret rows.
func (r *PostgreSQLSecretRepository) scanMany(rows *sql.Rows) ([]*domain.Secret, error) {
	defer rows.Close()

	secrets := []*domain.Secret{}
	for rows.Next() {
		var secret domain.Secret
		var raw secretRow

		err := rows.Scan(
			&secret.ID,
			&secret.Owner,
			&secret.Site,
			&secret.Subdirectory,
			&secret.Username,
			&raw.envelope,
			&secret.Notes,
			&raw.tags,
			&secret.Favorite,
			&secret.Version,
			&secret.LastModified,
		)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to scan secret")
		}
		if err := raw.hydrate(&secret); err != nil {
			// A corrupted envelope fails only the affected secret. Listings
			// omit the row; Get on it still reports the error.
			if errors.Is(err, domain.ErrInvalidEnvelope) {
				continue
			}
			return nil, err
		}
		secrets = append(secrets, &secret)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate secrets")
	}
	return secrets, nil
}

// isPostgreSQLUniqueViolation checks if the error is a PostgreSQL unique constraint violation.
func isPostgreSQLUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	errMsg := strings.ToLower(err.Error())
	return strings.Contains(errMsg, "duplicate key") || strings.Contains(errMsg, "unique constraint")
}
