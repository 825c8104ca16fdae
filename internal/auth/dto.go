package auth

import (
	"github.com/boxport/boxport-backend/internal/users"
)

// RegisterRequest contains the payload for creating a customer account.
type RegisterRequest struct {
	FullName string `json:"full_name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

// LoginRequest contains the credential payload.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// AuthResponse carries the minted token and the account it belongs to.
type AuthResponse struct {
	Token string         `json:"token"`
	User  *users.UserDTO `json:"user"`
}

// GuestResponse carries a freshly issued guest identity. Guest ids key
// server-side carts until the visitor registers or checks out.
type GuestResponse struct {
	GuestID string `json:"guest_id"`
}
