package dto

import (
	"github.com/planlane/project_delivery_app/internal/core/domain"
)

// CreateUserRequest defines data for registering a new user.
type CreateUserRequest struct {
	Username string `json:"username" binding:"required,min=3,max=64"`
	Password string `json:"password" binding:"required,min=8"`
	Name     string `json:"name" binding:"required"`
}

// UpdateUserRequest defines the data allowed for updating a user.
// Pointers differentiate omitted fields from zero values.
type UpdateUserRequest struct {
	Name *string `json:"name"`
}

// ListUsersParams defines query parameters for listing users.
type ListUsersParams struct {
	Limit  int `form:"limit,default=20"`
	Offset int `form:"offset,default=0"`
}

// UserResponse defines data returned for a user.
type UserResponse struct {
	UserID        string `json:"userID"`
	Username      string `json:"username"`
	Name          string `json:"name"`
	IsSystemAdmin bool   `json:"isSystemAdmin"`
}

// ToUserResponse converts domain.User to DTO.
func ToUserResponse(u *domain.User) UserResponse {
	return UserResponse{
		UserID:        u.UserID,
		Username:      u.Username,
		Name:          u.Name,
		IsSystemAdmin: u.IsSystemAdmin,
	}
}

// ListUsersResponse wraps the list of users.
type ListUsersResponse struct {
	Users []UserResponse `json:"users"`
}

// ToListUsersResponse converts a slice of domain.User to DTO.
func ToListUsersResponse(users []domain.User) ListUsersResponse {
	list := make([]UserResponse, len(users))
	for i, u := range users {
		list[i] = ToUserResponse(&u)
	}
	return ListUsersResponse{Users: list}
}
