package dto

import "github.com/maintsys/mro-stock-service/internal/model"

type LoginInput struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResult struct {
	Token string      `json:"token"`
	User  *model.User `json:"user"`
}

type CreateUserInput struct {
	Username string `json:"username"`
	Password string `json:"password"`
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Role     string `json:"role"`
	Actor    string `json:"-"`
}

type UpdateUserInput struct {
	ID       string `json:"-"`
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Role     string `json:"role"`
	Actor    string `json:"-"`
}

// ChangePasswordInput is self-service: the current password must verify.
type ChangePasswordInput struct {
	UserID          string `json:"-"`
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// ResetPasswordInput is the admin path: no current-password check.
type ResetPasswordInput struct {
	UserID      string `json:"-"`
	NewPassword string `json:"new_password"`
	Actor       string `json:"-"`
}
