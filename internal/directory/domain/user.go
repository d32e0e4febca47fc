// Package domain defines the directory entities: users, groups and
// group memberships.
package domain

import (
	"time"

	"github.com/google/uuid"

	"github.com/runavault/runavault/internal/errors"
)

// User represents a directory user.
// Password holds the hash of the temporary password assigned at creation;
// it never contains a plaintext password.
type User struct {
	ID          uuid.UUID
	Username    string
	Email       string
	DisplayName string
	Password    string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Domain-specific errors for user operations.
var (
	// ErrUserNotFound indicates the requested user does not exist.
	ErrUserNotFound = errors.Wrap(errors.ErrNotFound, "user not found")

	// ErrUserAlreadyExists indicates a user with the same username or email already exists.
	ErrUserAlreadyExists = errors.Wrap(errors.ErrConflict, "user already exists")
)
