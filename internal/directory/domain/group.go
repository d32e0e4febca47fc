package domain

import (
	"time"

	"github.com/google/uuid"

	"github.com/runavault/runavault/internal/errors"
)

// AdminGroup is the group whose members may mutate the directory.
const AdminGroup = "Admin"

// Group represents a directory group. Names are unique case-insensitively.
type Group struct {
	ID          uuid.UUID
	Name        string
	Description string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Domain-specific errors for group operations.
var (
	// ErrGroupNotFound indicates the requested group does not exist.
	ErrGroupNotFound = errors.Wrap(errors.ErrNotFound, "group not found")

	// ErrGroupAlreadyExists indicates a group with the same name already exists.
	ErrGroupAlreadyExists = errors.Wrap(errors.ErrConflict, "group already exists")

	// ErrMemberAlreadyExists indicates the user is already a member of the group.
	ErrMemberAlreadyExists = errors.Wrap(errors.ErrConflict, "user is already a member of the group")

	// ErrMemberNotFound indicates the user is not a member of the group.
	ErrMemberNotFound = errors.Wrap(errors.ErrNotFound, "user is not a member of the group")

	// ErrAdminOnly indicates the caller does not belong to the Admin group.
	ErrAdminOnly = errors.Wrap(errors.ErrForbidden, "caller is not a directory administrator")
)
