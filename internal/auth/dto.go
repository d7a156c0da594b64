package auth

import (
	"github.com/atino-shop/atino-backend/internal/users"
)

// AuthDTO is the payload returned after register, login, and refresh.
type AuthDTO struct {
	User         users.UserDTO `json:"user"`
	AccessToken  string        `json:"accessToken"`
	RefreshToken string        `json:"refreshToken"`
	ExpiresIn    int64         `json:"expiresIn"`
}

// RegisterInput creates a new account.
type RegisterInput struct {
	Name     string `json:"name" validate:"required,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

// LoginInput authenticates an existing account.
type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RefreshInput rotates a session.
type RefreshInput struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

// UpdateProfileInput edits the caller's own account. Nil fields are left
// unchanged.
type UpdateProfileInput struct {
	Name    *string `json:"name" validate:"omitempty,max=100"`
	Phone   *string `json:"phone" validate:"omitempty,max=20"`
	Address *string `json:"address" validate:"omitempty,max=500"`
	Avatar  *string `json:"avatar" validate:"omitempty,url"`
}

// ChangePasswordInput rotates the caller's password.
type ChangePasswordInput struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,min=6"`
}
