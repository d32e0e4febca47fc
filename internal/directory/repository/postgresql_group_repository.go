package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"github.com/runavault/runavault/internal/database"
	"github.com/runavault/runavault/internal/directory/domain"

	apperrors "github.com/runavault/runavault/internal/errors"
)

const pgGroupColumns = `id, name, description, created_at, updated_at`

// PostgreSQLGroupRepository handles group and membership persistence for PostgreSQL.
type PostgreSQLGroupRepository struct {
	db *sql.DB
}

// NewPostgreSQLGroupRepository creates a new PostgreSQLGroupRepository.
func NewPostgreSQLGroupRepository(db *sql.DB) *PostgreSQLGroupRepository {
	return &PostgreSQLGroupRepository{db: db}
}

// Create inserts a new group. Name uniqueness is case-insensitive.
func (r *PostgreSQLGroupRepository) Create(ctx context.Context, group *domain.Group) error {
	querier := database.GetTx(ctx, r.db)

	query := `INSERT INTO groups (id, name, description, created_at, updated_at)
			  VALUES ($1, $2, $3, NOW(), NOW())`

	_, err := querier.ExecContext(ctx, query, group.ID, group.Name, group.Description)
	if err != nil {
		if isPostgreSQLUniqueViolation(err) {
			return domain.ErrGroupAlreadyExists
		}
		return apperrors.Wrap(err, "failed to create group")
	}
	return nil
}

// Delete removes a group. Memberships cascade at the database level.
func (r *PostgreSQLGroupRepository) Delete(ctx context.Context, id uuid.UUID) error {
	querier := database.GetTx(ctx, r.db)

	result, err := querier.ExecContext(ctx, `DELETE FROM groups WHERE id = $1`, id)
	if err != nil {
		return apperrors.Wrap(err, "failed to delete group")
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return apperrors.Wrap(err, "failed to get affected rows")
	}
	if rows == 0 {
		return domain.ErrGroupNotFound
	}
	return nil
}

// GetByName retrieves a group by name, case-insensitively.
func (r *PostgreSQLGroupRepository) GetByName(ctx context.Context, name string) (*domain.Group, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT ` + pgGroupColumns + ` FROM groups WHERE LOWER(name) = LOWER($1)`

	var group domain.Group
	err := querier.QueryRowContext(ctx, query, name).Scan(
		&group.ID, &group.Name, &group.Description, &group.CreatedAt, &group.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrGroupNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get group")
	}
	return &group, nil
}

// List retrieves groups ordered by name.
func (r *PostgreSQLGroupRepository) List(ctx context.Context, offset, limit int) ([]*domain.Group, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT ` + pgGroupColumns + ` FROM groups ORDER BY name LIMIT $1 OFFSET $2`

	rows, err := querier.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list groups")
	}
	defer func() { _ = rows.Close() }()

	groups := make([]*domain.Group, 0)
	for rows.Next() {
		var group domain.Group
		err := rows.Scan(&group.ID, &group.Name, &group.Description, &group.CreatedAt, &group.UpdatedAt)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to scan group")
		}
		groups = append(groups, &group)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate groups")
	}
	return groups, nil
}

// AddMember adds a user to a group.
func (r *PostgreSQLGroupRepository) AddMember(ctx context.Context, groupID, userID uuid.UUID) error {
	querier := database.GetTx(ctx, r.db)

	query := `INSERT INTO group_members (group_id, user_id) VALUES ($1, $2)`

	_, err := querier.ExecContext(ctx, query, groupID, userID)
	if err != nil {
		if isPostgreSQLUniqueViolation(err) {
			return domain.ErrMemberAlreadyExists
		}
		return apperrors.Wrap(err, "failed to add group member")
	}
	return nil
}

// RemoveMember removes a user from a group.
func (r *PostgreSQLGroupRepository) RemoveMember(ctx context.Context, groupID, userID uuid.UUID) error {
	querier := database.GetTx(ctx, r.db)

	query := `DELETE FROM group_members WHERE group_id = $1 AND user_id = $2`

	result, err := querier.ExecContext(ctx, query, groupID, userID)
	if err != nil {
		return apperrors.Wrap(err, "failed to remove group member")
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return apperrors.Wrap(err, "failed to get affected rows")
	}
	if rows == 0 {
		return domain.ErrMemberNotFound
	}
	return nil
}

// ListMembers retrieves the users belonging to a group, ordered by username.
func (r *PostgreSQLGroupRepository) ListMembers(ctx context.Context, groupID uuid.UUID) ([]*domain.User, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT u.id, u.username, u.email, u.display_name, u.password, u.created_at, u.updated_at
			  FROM users u
			  JOIN group_members gm ON gm.user_id = u.id
			  WHERE gm.group_id = $1
			  ORDER BY u.username`

	rows, err := querier.QueryContext(ctx, query, groupID)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list group members")
	}
	defer func() { _ = rows.Close() }()

	users := make([]*domain.User, 0)
	for rows.Next() {
		var user domain.User
		err := rows.Scan(
			&user.ID, &user.Username, &user.Email, &user.DisplayName,
			&user.Password, &user.CreatedAt, &user.UpdatedAt,
		)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to scan group member")
		}
		users = append(users, &user)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate group members")
	}
	return users, nil
}
