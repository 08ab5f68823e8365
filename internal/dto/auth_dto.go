package dto

import (
	"time"

	"github.com/funagig/funagig-api/internal/models"
)

// SignupRequest is the payload to create a new account.
type SignupRequest struct {
	Name     string `json:"name" validate:"required,min=2,max=255"`
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=8,max=128"`
	Type     string `json:"type" validate:"required,oneof=student business"`
}

// LoginRequest is the payload to authenticate an existing account.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// AuthResponse carries the issued token together with the account profile.
type AuthResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

// UserResponse is the public representation of an account.
type UserResponse struct {
	ID         uint      `json:"id"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	Type       string    `json:"type"`
	University string    `json:"university,omitempty"`
	Major      string    `json:"major,omitempty"`
	Industry   string    `json:"industry,omitempty"`
	Skills     string    `json:"skills,omitempty"`
	Location   string    `json:"location,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// NewUserResponse converts a user model into its DTO.
func NewUserResponse(user models.User) UserResponse {
	return UserResponse{
		ID:         user.ID,
		Name:       user.Name,
		Email:      user.Email,
		Type:       user.Type,
		University: user.University,
		Major:      user.Major,
		Industry:   user.Industry,
		Skills:     user.Skills,
		Location:   user.Location,
		CreatedAt:  user.CreatedAt,
	}
}
