package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/runavault/runavault/internal/database"
	apperrors "github.com/runavault/runavault/internal/errors"
	"github.com/runavault/runavault/internal/vault/domain"
)

const mysqlSecretColumns = `id, owner_id, site, subdirectory, username, envelope, notes, tags,
		 favorite, version, last_modified`

// MySQLSecretRepository implements secret persistence for MySQL databases.
//
// UUIDs are stored as BINARY(16) and converted on scan.
type MySQLSecretRepository struct {
	db *sql.DB
}

// NewMySQLSecretRepository creates a new MySQLSecretRepository.
func NewMySQLSecretRepository(db *sql.DB) *MySQLSecretRepository {
	return &MySQLSecretRepository{db: db}
}

// Create inserts a new secret.
func (r *MySQLSecretRepository) Create(ctx context.Context, secret *domain.Secret) error {
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
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err = querier.ExecContext(
		ctx,
		query,
		secret.ID[:],
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
		if isMySQLUniqueViolation(err) {
			return domain.ErrSecretAlreadyExists
		}
		return apperrors.Wrap(err, "failed to create secret")
	}
	return nil
}

// Update rewrites the mutable columns of a secret.
func (r *MySQLSecretRepository) Update(ctx context.Context, secret *domain.Secret) error {
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
			  SET username = ?, envelope = ?, notes = ?, tags = ?, favorite = ?,
			      version = ?, last_modified = ?
			  WHERE id = ?`

	result, err := querier.ExecContext(
		ctx,
		query,
		secret.Username,
		envelope,
		secret.Notes,
		tags,
		secret.Favorite,
		secret.Version,
		secret.LastModified,
		secret.ID[:],
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
func (r *MySQLSecretRepository) Delete(ctx context.Context, secretID uuid.UUID) error {
	querier := database.GetTx(ctx, r.db)

	result, err := querier.ExecContext(ctx, `DELETE FROM secrets WHERE id = ?`, secretID[:])
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
func (r *MySQLSecretRepository) Get(ctx context.Context, secretID uuid.UUID) (*domain.Secret, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT ` + mysqlSecretColumns + ` FROM secrets WHERE id = ?`
	return r.scanOne(querier.QueryRowContext(ctx, query, secretID[:]))
}

// GetByLocation retrieves a secret by its unique (owner, site, subdirectory) key.
func (r *MySQLSecretRepository) GetByLocation(
	ctx context.Context, owner, site, subdirectory string,
) (*domain.Secret, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT ` + mysqlSecretColumns + `
			  FROM secrets WHERE owner_id = ? AND site = ? AND subdirectory = ?`
	return r.scanOne(querier.QueryRowContext(ctx, query, owner, site, subdirectory))
}

// ListByOwner retrieves secrets owned by the given subject.
func (r *MySQLSecretRepository) ListByOwner(
	ctx context.Context, owner string, offset, limit int,
) ([]*domain.Secret, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT ` + mysqlSecretColumns + `
			  FROM secrets WHERE owner_id = ?
			  ORDER BY site, subdirectory
			  LIMIT ? OFFSET ?`

	rows, err := querier.QueryContext(ctx, query, owner, limit, offset)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list secrets by owner")
	}
	return r.scanMany(rows)
}

// ListByOwnerSubdirectory retrieves every secret the given subject owns in a
// subdirectory. Bulk re-shares walk this list, so it is not paginated.
func (r *MySQLSecretRepository) ListByOwnerSubdirectory(
	ctx context.Context, owner, subdirectory string,
) ([]*domain.Secret, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT ` + mysqlSecretColumns + `
			  FROM secrets WHERE owner_id = ? AND subdirectory = ?
			  ORDER BY site`

	rows, err := querier.QueryContext(ctx, query, owner, subdirectory)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list secrets by subdirectory")
	}
	return r.scanMany(rows)
}

// ListSharedWithUser retrieves secrets directly shared with the given user,
// excluding their own.
func (r *MySQLSecretRepository) ListSharedWithUser(
	ctx context.Context, userID string, offset, limit int,
) ([]*domain.Secret, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT ` + mysqlSecretColumns + `
			  FROM secrets
			  WHERE owner_id != ? AND id IN (
			      SELECT secret_id FROM secret_shares
			      WHERE principal_type = 'user' AND principal_id = ?
			  )
			  ORDER BY site, subdirectory
			  LIMIT ? OFFSET ?`

	rows, err := querier.QueryContext(ctx, query, userID, userID, limit, offset)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list secrets shared with user")
	}
	return r.scanMany(rows)
}

// ListSharedWithGroups retrieves secrets shared with any of the given groups,
// excluding those owned by the subject.
func (r *MySQLSecretRepository) ListSharedWithGroups(
	ctx context.Context, owner string, groupIDs []string, offset, limit int,
) ([]*domain.Secret, error) {
	if len(groupIDs) == 0 {
		return []*domain.Secret{}, nil
	}
	querier := database.GetTx(ctx, r.db)

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(groupIDs)), ", ")
	query := `SELECT ` + mysqlSecretColumns + `
			  FROM secrets
			  WHERE owner_id != ? AND id IN (
			      SELECT secret_id FROM secret_shares
			      WHERE principal_type = 'group' AND principal_id IN (` + placeholders + `)
			  )
			  ORDER BY site, subdirectory
			  LIMIT ? OFFSET ?`

	args := make([]any, 0, len(groupIDs)+3)
	args = append(args, owner)
	for _, groupID := range groupIDs {
		args = append(args, groupID)
	}
	args = append(args, limit, offset)

	rows, err := querier.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list secrets shared with groups")
	}
	return r.scanMany(rows)
}

// ReplaceShares rewrites the share index rows for a secret. Callers run this
// inside the same transaction as the envelope update.
func (r *MySQLSecretRepository) ReplaceShares(
	ctx context.Context, secretID uuid.UUID, policy domain.SharePolicy,
) error {
	querier := database.GetTx(ctx, r.db)

	if _, err := querier.ExecContext(
		ctx, `DELETE FROM secret_shares WHERE secret_id = ?`, secretID[:],
	); err != nil {
		return apperrors.Wrap(err, "failed to clear secret shares")
	}

	query := `INSERT INTO secret_shares (secret_id, principal_type, principal_id, role)
			  VALUES (?, ?, ?, ?)`
	for _, row := range shareRows(policy) {
		if _, err := querier.ExecContext(ctx, query, secretID[:], row.Type, row.ID, string(row.Role)); err != nil {
			return apperrors.Wrap(err, "failed to insert secret share")
		}
	}
	return nil
}

// SetFavorite updates the favorite flag.
func (r *MySQLSecretRepository) SetFavorite(
	ctx context.Context, secretID uuid.UUID, favorite bool,
) error {
	querier := database.GetTx(ctx, r.db)

	result, err := querier.ExecContext(
		ctx, `UPDATE secrets SET favorite = ? WHERE id = ?`, favorite, secretID[:],
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
func (r *MySQLSecretRepository) scanOne(row *sql.Row) (*domain.Secret, error) {
	var secret domain.Secret
	var raw secretRow
	var idBytes []byte

	err := row.Scan(
		&idBytes,
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
	if err := secret.ID.UnmarshalBinary(idBytes); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal UUID")
	}
	if err := raw.hydrate(&secret); err != nil {
		return nil, err
	}
	return &secret, nil
}

// scanMany scans a result set of secret rows.
func (r *MySQLSecretRepository) scanMany(rows *sql.Rows) ([]*domain.Secret, error) {
	defer rows.Close()

	secrets := []*domain.Secret{}
	for rows.Next() {
		var secret domain.Secret
		var raw secretRow
		var idBytes []byte

		err := rows.Scan(
			&idBytes,
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
		if err := secret.ID.UnmarshalBinary(idBytes); err != nil {
			return nil, apperrors.Wrap(err, "failed to unmarshal UUID")
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

// isMySQLUniqueViolation checks if the error is a MySQL unique constraint violation.
func isMySQLUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	errMsg := strings.ToLower(err.Error())
	return strings.Contains(errMsg, "duplicate entry") || strings.Contains(errMsg, "1062")
}
