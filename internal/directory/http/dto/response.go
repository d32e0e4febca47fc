package dto

import (
	"time"

	"github.com/runavault/runavault/internal/directory/domain"
)

// UserResponse represents a user in API responses. The temporary password
// hash is never exposed.
type UserResponse struct {
	ID          string    `json:"id"`
	Username    string    `json:"username"`
	Email       string    `json:"email"`
	DisplayName string    `json:"displayName"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// GroupResponse represents a group in API responses.
type GroupResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ListUsersResponse wraps a paginated user listing.
type ListUsersResponse struct {
	Users  []UserResponse `json:"users"`
	Offset int            `json:"offset"`
	Limit  int            `json:"limit"`
}

// ListGroupsResponse wraps a paginated group listing.
type ListGroupsResponse struct {
	Groups []GroupResponse `json:"groups"`
	Offset int             `json:"offset"`
	Limit  int             `json:"limit"`
}

// ListMembersResponse wraps a group membership listing.
type ListMembersResponse struct {
	Members []UserResponse `json:"members"`
}

// MapUserToResponse converts a domain user to an API response.
func MapUserToResponse(user *domain.User) UserResponse {
	return UserResponse{
		ID:          user.ID.String(),
		Username:    user.Username,
		Email:       user.Email,
		DisplayName: user.DisplayName,
		CreatedAt:   user.CreatedAt,
		UpdatedAt:   user.UpdatedAt,
	}
}

// MapGroupToResponse converts a domain group to an API response.
func MapGroupToResponse(group *domain.Group) GroupResponse {
	return GroupResponse{
		ID:          group.ID.String(),
		Name:        group.Name,
		Description: group.Description,
		CreatedAt:   group.CreatedAt,
		UpdatedAt:   group.UpdatedAt,
	}
}

// MapUsersToListResponse converts a page of domain users.
func MapUsersToListResponse(users []*domain.User, offset, limit int) ListUsersResponse {
	responses := make([]UserResponse, 0, len(users))
	for _, user := range users {
		responses = append(responses, MapUserToResponse(user))
	}
	return ListUsersResponse{Users: responses, Offset: offset, Limit: limit}
}

// MapGroupsToListResponse converts a page of domain groups.
func MapGroupsToListResponse(groups []*domain.Group, offset, limit int) ListGroupsResponse {
	responses := make([]GroupResponse, 0, len(groups))
	for _, group := range groups {
		responses = append(responses, MapGroupToResponse(group))
	}
	return ListGroupsResponse{Groups: responses, Offset: offset, Limit: limit}
}

// MapMembersToResponse converts a group membership listing.
func MapMembersToResponse(users []*domain.User) ListMembersResponse {
	responses := make([]UserResponse, 0, len(users))
	for _, user := range users {
		responses = append(responses, MapUserToResponse(user))
	}
	return ListMembersResponse{Members: responses}
}
