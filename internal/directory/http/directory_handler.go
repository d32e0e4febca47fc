// Package http provides HTTP handlers for directory operations.
package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/runavault/runavault/internal/directory/http/dto"
	directoryUseCase "github.com/runavault/runavault/internal/directory/usecase"
	"github.com/runavault/runavault/internal/httputil"
	"github.com/runavault/runavault/internal/identity"
	customValidation "github.com/runavault/runavault/internal/validation"

	apperrors "github.com/runavault/runavault/internal/errors"
)

// DirectoryHandler handles HTTP requests for user and group management.
type DirectoryHandler struct {
	directoryUseCase directoryUseCase.DirectoryUseCase
	logger           *slog.Logger
}

// NewDirectoryHandler creates a new directory handler with required dependencies.
func NewDirectoryHandler(useCase directoryUseCase.DirectoryUseCase, logger *slog.Logger) *DirectoryHandler {
	return &DirectoryHandler{
		directoryUseCase: useCase,
		logger:           logger,
	}
}

// caller extracts the authenticated claims.
func (h *DirectoryHandler) caller(c *gin.Context) (identity.Claims, bool) {
	claims, ok := identity.FromContext(c.Request.Context())
	if !ok {
		httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, h.logger)
		return identity.Claims{}, false
	}
	return claims, true
}

// CreateUserHandler creates a new user.
// POST /v1/users
// Returns 201 Created.
func (h *DirectoryHandler) CreateUserHandler(c *gin.Context) {
	claims, ok := h.caller(c)
	if !ok {
		return
	}

	var req dto.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}
	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	user, err := h.directoryUseCase.CreateUser(c.Request.Context(), claims, directoryUseCase.CreateUserInput{
		Username:     req.Username,
		Email:        req.Email,
		DisplayName:  req.DisplayName,
		TempPassword: req.TempPassword,
	})
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusCreated, dto.MapUserToResponse(user))
}

// EditUserHandler updates a user.
// PUT /v1/users/:username
// Returns 200 OK.
func (h *DirectoryHandler) EditUserHandler(c *gin.Context) {
	claims, ok := h.caller(c)
	if !ok {
		return
	}

	var req dto.EditUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}
	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	user, err := h.directoryUseCase.EditUser(c.Request.Context(), claims, c.Param("username"), directoryUseCase.EditUserInput{
		Email:        req.Email,
		DisplayName:  req.DisplayName,
		TempPassword: req.TempPassword,
	})
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapUserToResponse(user))
}

// DeleteUserHandler removes a user.
// DELETE /v1/users/:username
// Returns 204 No Content.
func (h *DirectoryHandler) DeleteUserHandler(c *gin.Context) {
	claims, ok := h.caller(c)
	if !ok {
		return
	}

	if err := h.directoryUseCase.DeleteUser(c.Request.Context(), claims, c.Param("username")); err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}
	c.Status(http.StatusNoContent)
}

// ListUsersHandler retrieves a page of users.
// GET /v1/users?offset=N&limit=N
// Returns 200 OK.
func (h *DirectoryHandler) ListUsersHandler(c *gin.Context) {
	claims, ok := h.caller(c)
	if !ok {
		return
	}

	offset, limit, err := httputil.ParsePagination(c)
	if err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	users, err := h.directoryUseCase.ListUsers(c.Request.Context(), claims, offset, limit)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapUsersToListResponse(users, offset, limit))
}

// CreateGroupHandler creates a new group.
// POST /v1/groups
// Returns 201 Created.
func (h *DirectoryHandler) CreateGroupHandler(c *gin.Context) {
	claims, ok := h.caller(c)
	if !ok {
		return
	}

	var req dto.CreateGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}
	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	group, err := h.directoryUseCase.CreateGroup(c.Request.Context(), claims, directoryUseCase.CreateGroupInput{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusCreated, dto.MapGroupToResponse(group))
}

// DeleteGroupHandler removes a group.
// DELETE /v1/groups/:name
// Returns 204 No Content.
func (h *DirectoryHandler) DeleteGroupHandler(c *gin.Context) {
	claims, ok := h.caller(c)
	if !ok {
		return
	}

	if err := h.directoryUseCase.DeleteGroup(c.Request.Context(), claims, c.Param("name")); err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}
	c.Status(http.StatusNoContent)
}

// ListGroupsHandler retrieves a page of groups.
// GET /v1/groups?offset=N&limit=N
// Returns 200 OK.
func (h *DirectoryHandler) ListGroupsHandler(c *gin.Context) {
	claims, ok := h.caller(c)
	if !ok {
		return
	}

	offset, limit, err := httputil.ParsePagination(c)
	if err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	groups, err := h.directoryUseCase.ListGroups(c.Request.Context(), claims, offset, limit)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapGroupsToListResponse(groups, offset, limit))
}

// AddMemberHandler adds a user to a group.
// POST /v1/groups/:name/members
// Returns 204 No Content.
func (h *DirectoryHandler) AddMemberHandler(c *gin.Context) {
	claims, ok := h.caller(c)
	if !ok {
		return
	}

	var req dto.MemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}
	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	if err := h.directoryUseCase.AddMember(c.Request.Context(), claims, c.Param("name"), req.Username); err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}
	c.Status(http.StatusNoContent)
}

// RemoveMemberHandler removes a user from a group.
// DELETE /v1/groups/:name/members/:username
// Returns 204 No Content.
func (h *DirectoryHandler) RemoveMemberHandler(c *gin.Context) {
	claims, ok := h.caller(c)
	if !ok {
		return
	}

	err := h.directoryUseCase.RemoveMember(c.Request.Context(), claims, c.Param("name"), c.Param("username"))
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}
	c.Status(http.StatusNoContent)
}

// ListMembersHandler retrieves the members of a group.
// GET /v1/groups/:name/members
// Returns 200 OK.
func (h *DirectoryHandler) ListMembersHandler(c *gin.Context) {
	claims, ok := h.caller(c)
	if !ok {
		return
	}

	users, err := h.directoryUseCase.ListMembers(c.Request.Context(), claims, c.Param("name"))
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapMembersToResponse(users))
}
