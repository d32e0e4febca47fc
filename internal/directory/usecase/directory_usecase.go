package usecase

import (
	"context"
	"strings"

	"github.com/allisson/go-pwdhash"
	"github.com/google/uuid"

	"github.com/runavault/runavault/internal/directory/domain"
	apperrors "github.com/runavault/runavault/internal/errors"
	"github.com/runavault/runavault/internal/identity"
)

type directoryUseCase struct {
	userRepo       UserRepository
	groupRepo      GroupRepository
	passwordHasher *pwdhash.PasswordHasher
}

// NewDirectoryUseCase creates a new DirectoryUseCase.
func NewDirectoryUseCase(userRepo UserRepository, groupRepo GroupRepository) (DirectoryUseCase, error) {
	// Interactive policy: temporary passwords are verified at login time.
	hasher, err := pwdhash.New(pwdhash.WithPolicy(pwdhash.PolicyInteractive))
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to create password hasher")
	}

	return &directoryUseCase{
		userRepo:       userRepo,
		groupRepo:      groupRepo,
		passwordHasher: hasher,
	}, nil
}

// requireAdmin gates directory mutations on Admin group membership.
func (uc *directoryUseCase) requireAdmin(claims identity.Claims) error {
	if !claims.MemberOf(domain.AdminGroup) {
		return domain.ErrAdminOnly
	}
	return nil
}

// CreateUser registers a new user with a hashed temporary password.
func (uc *directoryUseCase) CreateUser(
	ctx context.Context, claims identity.Claims, input CreateUserInput,
) (*domain.User, error) {
	if err := uc.requireAdmin(claims); err != nil {
		return nil, err
	}

	hashedPassword, err := uc.passwordHasher.Hash([]byte(input.TempPassword))
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to hash temporary password")
	}

	user := &domain.User{
		ID:          uuid.Must(uuid.NewV7()),
		Username:    strings.TrimSpace(input.Username),
		Email:       strings.TrimSpace(strings.ToLower(input.Email)),
		DisplayName: strings.TrimSpace(input.DisplayName),
		Password:    hashedPassword,
	}

	if err := uc.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// EditUser updates a user's mutable fields. A new temporary password is
// hashed before storage.
func (uc *directoryUseCase) EditUser(
	ctx context.Context, claims identity.Claims, username string, input EditUserInput,
) (*domain.User, error) {
	if err := uc.requireAdmin(claims); err != nil {
		return nil, err
	}

	user, err := uc.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}

	if input.Email != nil {
		user.Email = strings.TrimSpace(strings.ToLower(*input.Email))
	}
	if input.DisplayName != nil {
		user.DisplayName = strings.TrimSpace(*input.DisplayName)
	}
	if input.TempPassword != nil {
		hashedPassword, err := uc.passwordHasher.Hash([]byte(*input.TempPassword))
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to hash temporary password")
		}
		user.Password = hashedPassword
	}

	if err := uc.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// DeleteUser removes a user. Group memberships cascade.
func (uc *directoryUseCase) DeleteUser(ctx context.Context, claims identity.Claims, username string) error {
	if err := uc.requireAdmin(claims); err != nil {
		return err
	}

	user, err := uc.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return err
	}
	return uc.userRepo.Delete(ctx, user.ID)
}

// ListUsers retrieves a page of users.
func (uc *directoryUseCase) ListUsers(
	ctx context.Context, _ identity.Claims, offset, limit int,
) ([]*domain.User, error) {
	return uc.userRepo.List(ctx, offset, limit)
}

// CreateGroup registers a new group.
func (uc *directoryUseCase) CreateGroup(
	ctx context.Context, claims identity.Claims, input CreateGroupInput,
) (*domain.Group, error) {
	if err := uc.requireAdmin(claims); err != nil {
		return nil, err
	}

	group := &domain.Group{
		ID:          uuid.Must(uuid.NewV7()),
		Name:        strings.TrimSpace(input.Name),
		Description: strings.TrimSpace(input.Description),
	}

	if err := uc.groupRepo.Create(ctx, group); err != nil {
		return nil, err
	}
	return group, nil
}

// DeleteGroup removes a group by name. Memberships cascade.
func (uc *directoryUseCase) DeleteGroup(ctx context.Context, claims identity.Claims, name string) error {
	if err := uc.requireAdmin(claims); err != nil {
		return err
	}

	group, err := uc.groupRepo.GetByName(ctx, name)
	if err != nil {
		return err
	}
	return uc.groupRepo.Delete(ctx, group.ID)
}

// ListGroups retrieves a page of groups.
func (uc *directoryUseCase) ListGroups(
	ctx context.Context, _ identity.Claims, offset, limit int,
) ([]*domain.Group, error) {
	return uc.groupRepo.List(ctx, offset, limit)
}

// AddMember adds a user to a group, both referenced by name.
func (uc *directoryUseCase) AddMember(
	ctx context.Context, claims identity.Claims, groupName, username string,
) error {
	if err := uc.requireAdmin(claims); err != nil {
		return err
	}

	group, user, err := uc.resolveMembership(ctx, groupName, username)
	if err != nil {
		return err
	}
	return uc.groupRepo.AddMember(ctx, group.ID, user.ID)
}

// RemoveMember removes a user from a group, both referenced by name.
func (uc *directoryUseCase) RemoveMember(
	ctx context.Context, claims identity.Claims, groupName, username string,
) error {
	if err := uc.requireAdmin(claims); err != nil {
		return err
	}

	group, user, err := uc.resolveMembership(ctx, groupName, username)
	if err != nil {
		return err
	}
	return uc.groupRepo.RemoveMember(ctx, group.ID, user.ID)
}

// ListMembers retrieves the members of a group.
func (uc *directoryUseCase) ListMembers(
	ctx context.Context, _ identity.Claims, groupName string,
) ([]*domain.User, error) {
	group, err := uc.groupRepo.GetByName(ctx, groupName)
	if err != nil {
		return nil, err
	}
	return uc.groupRepo.ListMembers(ctx, group.ID)
}

func (uc *directoryUseCase) resolveMembership(
	ctx context.Context, groupName, username string,
) (*domain.Group, *domain.User, error) {
	group, err := uc.groupRepo.GetByName(ctx, groupName)
	if err != nil {
		return nil, nil, err
	}
	user, err := uc.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, nil, err
	}
	return group, user, nil
}
