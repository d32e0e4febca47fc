package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/runavault/runavault/internal/identity"
	"github.com/runavault/runavault/internal/metrics"
	"github.com/runavault/runavault/internal/vault/domain"
)

// secretUseCaseWithMetrics decorates SecretUseCase with metrics instrumentation.
type secretUseCaseWithMetrics struct {
	next    SecretUseCase
	metrics metrics.BusinessMetrics
}

// NewSecretUseCaseWithMetrics wraps a SecretUseCase with metrics recording.
func NewSecretUseCaseWithMetrics(useCase SecretUseCase, m metrics.BusinessMetrics) SecretUseCase {
	return &secretUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

// record emits the operation counter and duration for one call.
func (s *secretUseCaseWithMetrics) record(ctx context.Context, operation string, start time.Time, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	s.metrics.RecordOperation(ctx, "vault", operation, status)
	s.metrics.RecordDuration(ctx, "vault", operation, time.Since(start), status)
}

// Create records metrics for secret creation operations.
func (s *secretUseCaseWithMetrics) Create(
	ctx context.Context, claims identity.Claims, input CreateSecretInput,
) (*domain.Secret, error) {
	start := time.Now()
	secret, err := s.next.Create(ctx, claims, input)
	s.record(ctx, "secret_create", start, err)
	return secret, err
}

// Get records metrics for secret retrieval operations.
func (s *secretUseCaseWithMetrics) Get(
	ctx context.Context, claims identity.Claims, secretID uuid.UUID, scopeGroup string, reveal bool,
) (*domain.Secret, error) {
	start := time.Now()
	secret, err := s.next.Get(ctx, claims, secretID, scopeGroup, reveal)
	operation := "secret_get"
	if reveal {
		operation = "secret_reveal"
	}
	s.record(ctx, operation, start, err)
	return secret, err
}

// List records metrics for secret listing operations.
func (s *secretUseCaseWithMetrics) List(
	ctx context.Context, claims identity.Claims, scope ListScope, scopeGroup string, offset, limit int,
) ([]*domain.Secret, error) {
	start := time.Now()
	secrets, err := s.next.List(ctx, claims, scope, scopeGroup, offset, limit)
	s.record(ctx, "secret_list", start, err)
	return secrets, err
}

// Edit records metrics for secret edit operations.
func (s *secretUseCaseWithMetrics) Edit(
	ctx context.Context, claims identity.Claims, secretID uuid.UUID, input EditSecretInput,
) (*domain.Secret, error) {
	start := time.Now()
	secret, err := s.next.Edit(ctx, claims, secretID, input)
	s.record(ctx, "secret_edit", start, err)
	return secret, err
}

// Delete records metrics for secret deletion operations.
func (s *secretUseCaseWithMetrics) Delete(
	ctx context.Context, claims identity.Claims, secretID uuid.UUID,
) error {
	start := time.Now()
	err := s.next.Delete(ctx, claims, secretID)
	s.record(ctx, "secret_delete", start, err)
	return err
}

// SetFavorite records metrics for favorite toggle operations.
func (s *secretUseCaseWithMetrics) SetFavorite(
	ctx context.Context, claims identity.Claims, secretID uuid.UUID, favorite bool,
) error {
	start := time.Now()
	err := s.next.SetFavorite(ctx, claims, secretID, favorite)
	s.record(ctx, "secret_favorite", start, err)
	return err
}

// Share records metrics for share operations.
func (s *secretUseCaseWithMetrics) Share(
	ctx context.Context, claims identity.Claims, secretID uuid.UUID, policy domain.SharePolicy,
) (*domain.Secret, error) {
	start := time.Now()
	secret, err := s.next.Share(ctx, claims, secretID, policy)
	s.record(ctx, "secret_share", start, err)
	return secret, err
}

// ShareDirectory records metrics for bulk re-share operations.
func (s *secretUseCaseWithMetrics) ShareDirectory(
	ctx context.Context, claims identity.Claims, subdirectory string, policy domain.SharePolicy,
) ([]*domain.Secret, error) {
	start := time.Now()
	secrets, err := s.next.ShareDirectory(ctx, claims, subdirectory, policy)
	s.record(ctx, "secret_share_directory", start, err)
	return secrets, err
}
