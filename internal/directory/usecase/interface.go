// Package usecase implements the directory business logic for users,
// groups and memberships.
package usecase

import (
	"context"

	"github.com/google/uuid"

	"github.com/runavault/runavault/internal/directory/domain"
	"github.com/runavault/runavault/internal/identity"
)

// UserRepository defines user repository operations.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	Update(ctx context.Context, user *domain.User) error
	Delete(ctx context.Context, id uuid.UUID) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	List(ctx context.Context, offset, limit int) ([]*domain.User, error)
}

// GroupRepository defines group and membership repository operations.
type GroupRepository interface {
	Create(ctx context.Context, group *domain.Group) error
	Delete(ctx context.Context, id uuid.UUID) error
	GetByName(ctx context.Context, name string) (*domain.Group, error)
	List(ctx context.Context, offset, limit int) ([]*domain.Group, error)
	AddMember(ctx context.Context, groupID, userID uuid.UUID) error
	RemoveMember(ctx context.Context, groupID, userID uuid.UUID) error
	ListMembers(ctx context.Context, groupID uuid.UUID) ([]*domain.User, error)
}

// CreateUserInput contains the input data for user creation.
// TempPassword is hashed before storage and never persisted in clear.
type CreateUserInput struct {
	Username     string
	Email        string
	DisplayName  string
	TempPassword string
}

// EditUserInput contains the input data for user edition.
// Nil fields are left unchanged.
type EditUserInput struct {
	Email        *string
	DisplayName  *string
	TempPassword *string
}

// CreateGroupInput contains the input data for group creation.
type CreateGroupInput struct {
	Name        string
	Description string
}

// DirectoryUseCase defines the directory business logic operations.
// All mutations require the caller to belong to the Admin group; listings
// are open to any authenticated caller so share pickers can be populated.
type DirectoryUseCase interface {
	CreateUser(ctx context.Context, claims identity.Claims, input CreateUserInput) (*domain.User, error)
	EditUser(ctx context.Context, claims identity.Claims, username string, input EditUserInput) (*domain.User, error)
	DeleteUser(ctx context.Context, claims identity.Claims, username string) error
	ListUsers(ctx context.Context, claims identity.Claims, offset, limit int) ([]*domain.User, error)

	CreateGroup(ctx context.Context, claims identity.Claims, input CreateGroupInput) (*domain.Group, error)
	DeleteGroup(ctx context.Context, claims identity.Claims, name string) error
	ListGroups(ctx context.Context, claims identity.Claims, offset, limit int) ([]*domain.Group, error)

	AddMember(ctx context.Context, claims identity.Claims, groupName, username string) error
	RemoveMember(ctx context.Context, claims identity.Claims, groupName, username string) error
	ListMembers(ctx context.Context, claims identity.Claims, groupName string) ([]*domain.User, error)
}
