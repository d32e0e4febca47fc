// Package http provides HTTP handlers for vault secret operations.
// Passwords never leave the server unencrypted except on explicit reveal
// requests by callers holding a matching envelope entry.
package http

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/runavault/runavault/internal/httputil"
	"github.com/runavault/runavault/internal/identity"
	customValidation "github.com/runavault/runavault/internal/validation"
	"github.com/runavault/runavault/internal/vault/domain"
	"github.com/runavault/runavault/internal/vault/http/dto"
	vaultUseCase "github.com/runavault/runavault/internal/vault/usecase"

	apperrors "github.com/runavault/runavault/internal/errors"
)

// SecretHandler handles HTTP requests for vault secret operations.
type SecretHandler struct {
	secretUseCase vaultUseCase.SecretUseCase
	logger        *slog.Logger
}

// NewSecretHandler creates a new secret handler with required dependencies.
func NewSecretHandler(secretUseCase vaultUseCase.SecretUseCase, logger *slog.Logger) *SecretHandler {
	return &SecretHandler{
		secretUseCase: secretUseCase,
		logger:        logger,
	}
}

// callerAndID extracts the authenticated claims and the secret id parameter.
func (h *SecretHandler) callerAndID(c *gin.Context) (identity.Claims, uuid.UUID, bool) {
	claims, ok := identity.FromContext(c.Request.Context())
	if !ok {
		httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, h.logger)
		return identity.Claims{}, uuid.Nil, false
	}

	secretID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.HandleValidationErrorGin(c, fmt.Errorf("invalid secret id: %w", err), h.logger)
		return identity.Claims{}, uuid.Nil, false
	}
	return claims, secretID, true
}

// CreateHandler creates a new secret.
// POST /v1/secrets
// Returns 201 Created with secret metadata (the plaintext is never echoed back).
func (h *SecretHandler) CreateHandler(c *gin.Context) {
	claims, ok := identity.FromContext(c.Request.Context())
	if !ok {
		httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, h.logger)
		return
	}

	var req dto.CreateSecretRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}
	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	secret, err := h.secretUseCase.Create(c.Request.Context(), claims, vaultUseCase.CreateSecretInput{
		Site:         req.Site,
		Subdirectory: req.Subdirectory,
		Username:     req.Username,
		Password:     []byte(req.Password),
		Notes:        req.Notes,
		Tags:         req.Tags,
		Favorite:     req.Favorite,
		Policy:       req.SharedWith.ToPolicy(),
	})
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusCreated, dto.MapSecretToResponse(secret))
}

// GetHandler retrieves a secret, optionally revealing the password.
// GET /v1/secrets/:id?reveal=true&group=NAME
// Returns 200 OK. SECURITY: plaintext is zeroed after the response is written.
func (h *SecretHandler) GetHandler(c *gin.Context) {
	claims, secretID, ok := h.callerAndID(c)
	if !ok {
		return
	}

	reveal := c.Query("reveal") == "true"
	scopeGroup := c.Query("group")

	secret, err := h.secretUseCase.Get(c.Request.Context(), claims, secretID, scopeGroup, reveal)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	response := dto.MapSecretToResponse(secret)
	domain.Zero(secret.Plaintext)
	c.JSON(http.StatusOK, response)
}

// ListHandler retrieves secrets in a scope. In the shared-group scope an
// optional group parameter narrows the listing to one group.
// GET /v1/secrets?scope=owned|shared-user|shared-group&group=NAME&offset=N&limit=N
// Returns 200 OK with metadata only.
func (h *SecretHandler) ListHandler(c *gin.Context) {
	claims, ok := identity.FromContext(c.Request.Context())
	if !ok {
		httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, h.logger)
		return
	}

	offset, limit, err := httputil.ParsePagination(c)
	if err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	scope := vaultUseCase.ListScope(c.DefaultQuery("scope", string(vaultUseCase.ScopeOwned)))
	switch scope {
	case vaultUseCase.ScopeOwned, vaultUseCase.ScopeSharedUser, vaultUseCase.ScopeSharedGroup:
	default:
		httputil.HandleBadRequestGin(c, fmt.Errorf("invalid scope: %s", scope), h.logger)
		return
	}

	secrets, err := h.secretUseCase.List(c.Request.Context(), claims, scope, c.Query("group"), offset, limit)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapSecretsToListResponse(secrets, offset, limit))
}

// EditHandler updates a secret's fields and reseals its envelope.
// PUT /v1/secrets/:id
// Returns 200 OK with updated metadata.
func (h *SecretHandler) EditHandler(c *gin.Context) {
	claims, secretID, ok := h.callerAndID(c)
	if !ok {
		return
	}

	var req dto.EditSecretRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}
	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	input := vaultUseCase.EditSecretInput{
		Username: req.Username,
		Notes:    req.Notes,
		Tags:     req.Tags,
	}
	if req.Password != nil {
		input.Password = []byte(*req.Password)
	}
	if req.SharedWith != nil {
		policy := req.SharedWith.ToPolicy()
		input.Policy = &policy
	}

	secret, err := h.secretUseCase.Edit(c.Request.Context(), claims, secretID, input)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapSecretToResponse(secret))
}

// DeleteHandler removes a secret.
// DELETE /v1/secrets/:id
// Returns 204 No Content.
func (h *SecretHandler) DeleteHandler(c *gin.Context) {
	claims, secretID, ok := h.callerAndID(c)
	if !ok {
		return
	}

	if err := h.secretUseCase.Delete(c.Request.Context(), claims, secretID); err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}
	c.Status(http.StatusNoContent)
}

// FavoriteHandler toggles the owner's favorite flag.
// PUT /v1/secrets/:id/favorite
// Returns 204 No Content.
func (h *SecretHandler) FavoriteHandler(c *gin.Context) {
	claims, secretID, ok := h.callerAndID(c)
	if !ok {
		return
	}

	var req dto.FavoriteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}
	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	if err := h.secretUseCase.SetFavorite(c.Request.Context(), claims, secretID, *req.Favorite); err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}
	c.Status(http.StatusNoContent)
}

// ShareHandler grants additional principals access to a secret.
// POST /v1/secrets/:id/share
// Returns 200 OK with updated metadata.
func (h *SecretHandler) ShareHandler(c *gin.Context) {
	claims, secretID, ok := h.callerAndID(c)
	if !ok {
		return
	}

	var req dto.SharePolicyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}
	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	secret, err := h.secretUseCase.Share(c.Request.Context(), claims, secretID, req.ToPolicy())
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapSecretToResponse(secret))
}

// ShareDirectoryHandler grants principals access to every secret the caller
// owns in a subdirectory.
// POST /v1/secrets/share-directory
// Returns 200 OK with the updated secrets.
func (h *SecretHandler) ShareDirectoryHandler(c *gin.Context) {
	claims, ok := identity.FromContext(c.Request.Context())
	if !ok {
		httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, h.logger)
		return
	}

	var req dto.ShareDirectoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}
	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	secrets, err := h.secretUseCase.ShareDirectory(
		c.Request.Context(), claims, req.Subdirectory, req.SharedWith.ToPolicy(),
	)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapSecretsToShareDirectoryResponse(req.Subdirectory, secrets))
}
