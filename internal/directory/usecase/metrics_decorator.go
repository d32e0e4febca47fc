package usecase

import (
	"context"
	"time"

	"github.com/runavault/runavault/internal/directory/domain"
	"github.com/runavault/runavault/internal/identity"
	"github.com/runavault/runavault/internal/metrics"
)

// directoryUseCaseWithMetrics decorates DirectoryUseCase with metrics instrumentation.
type directoryUseCaseWithMetrics struct {
	next    DirectoryUseCase
	metrics metrics.BusinessMetrics
}

// NewDirectoryUseCaseWithMetrics wraps a DirectoryUseCase with metrics recording.
func NewDirectoryUseCaseWithMetrics(useCase DirectoryUseCase, m metrics.BusinessMetrics) DirectoryUseCase {
	return &directoryUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

// record emits the operation counter and duration for one call.
func (d *directoryUseCaseWithMetrics) record(ctx context.Context, operation string, start time.Time, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	d.metrics.RecordOperation(ctx, "directory", operation, status)
	d.metrics.RecordDuration(ctx, "directory", operation, time.Since(start), status)
}

// CreateUser records metrics for user creation operations.
func (d *directoryUseCaseWithMetrics) CreateUser(
	ctx context.Context, claims identity.Claims, input CreateUserInput,
) (*domain.User, error) {
	start := time.Now()
	user, err := d.next.CreateUser(ctx, claims, input)
	d.record(ctx, "user_create", start, err)
	return user, err
}

// EditUser records metrics for user edit operations.
func (d *directoryUseCaseWithMetrics) EditUser(
	ctx context.Context, claims identity.Claims, username string, input EditUserInput,
) (*domain.User, error) {
	start := time.Now()
	user, err := d.next.EditUser(ctx, claims, username, input)
	d.record(ctx, "user_edit", start, err)
	return user, err
}

// DeleteUser records metrics for user deletion operations.
func (d *directoryUseCaseWithMetrics) DeleteUser(
	ctx context.Context, claims identity.Claims, username string,
) error {
	start := time.Now()
	err := d.next.DeleteUser(ctx, claims, username)
	d.record(ctx, "user_delete", start, err)
	return err
}

// ListUsers records metrics for user listing operations.
func (d *directoryUseCaseWithMetrics) ListUsers(
	ctx context.Context, claims identity.Claims, offset, limit int,
) ([]*domain.User, error) {
	start := time.Now()
	users, err := d.next.ListUsers(ctx, claims, offset, limit)
	d.record(ctx, "user_list", start, err)
	return users, err
}

// CreateGroup records metrics for group creation operations.
func (d *directoryUseCaseWithMetrics) CreateGroup(
	ctx context.Context, claims identity.Claims, input CreateGroupInput,
) (*domain.Group, error) {
	start := time.Now()
	group, err := d.next.CreateGroup(ctx, claims, input)
	d.record(ctx, "group_create", start, err)
	return group, err
}

// DeleteGroup records metrics for group deletion operations.
func (d *directoryUseCaseWithMetrics) DeleteGroup(
	ctx context.Context, claims identity.Claims, name string,
) error {
	start := time.Now()
	err := d.next.DeleteGroup(ctx, claims, name)
	d.record(ctx, "group_delete", start, err)
	return err
}

// ListGroups records metrics for group listing operations.
func (d *directoryUseCaseWithMetrics) ListGroups(
	ctx context.Context, claims identity.Claims, offset, limit int,
) ([]*domain.Group, error) {
	start := time.Now()
	groups, err := d.next.ListGroups(ctx, claims, offset, limit)
	d.record(ctx, "group_list", start, err)
	return groups, err
}

// AddMember records metrics for membership addition operations.
func (d *directoryUseCaseWithMetrics) AddMember(
	ctx context.Context, claims identity.Claims, groupName, username string,
) error {
	start := time.Now()
	err := d.next.AddMember(ctx, claims, groupName, username)
	d.record(ctx, "member_add", start, err)
	return err
}

// RemoveMember records metrics for membership removal operations.
func (d *directoryUseCaseWithMetrics) RemoveMember(
	ctx context.Context, claims identity.Claims, groupName, username string,
) error {
	start := time.Now()
	err := d.next.RemoveMember(ctx, claims, groupName, username)
	d.record(ctx, "member_remove", start, err)
	return err
}

// ListMembers records metrics for membership listing operations.
func (d *directoryUseCaseWithMetrics) ListMembers(
	ctx context.Context, claims identity.Claims, groupName string,
) ([]*domain.User, error) {
	start := time.Now()
	users, err := d.next.ListMembers(ctx, claims, groupName)
	d.record(ctx, "member_list", start, err)
	return users, err
}
