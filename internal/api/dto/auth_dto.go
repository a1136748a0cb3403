package dto

import (
	"strings"
	"time"

	"github.com/wardwatch/grievance-service/internal/domain"
)

// RegisterRequest payload for citizen sign-up.
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Ward     string `json:"ward"`
	Phone    string `json:"phone"`
}

// LoginRequest payload for email and password login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// StaffLoginRequest payload for admin and ward admin login. Clients send the
// account email as username; email is accepted as well.
type StaffLoginRequest struct {
	Username   string `json:"username"`
	Email      string `json:"email"`
	Password   string `json:"password"`
	WardNumber string `json:"wardNumber"`
}

// Identifier returns the login name, preferring username.
func (r StaffLoginRequest) Identifier() string {
	if name := strings.TrimSpace(r.Username); name != "" {
		return name
	}
	return strings.TrimSpace(r.Email)
}

// GoogleLoginRequest carries a Google ID token.
type GoogleLoginRequest struct {
	TokenID string `json:"tokenId"`
}

// UserResponse is the public account representation.
type UserResponse struct {
	ID        string      `json:"id"`
	Name      string      `json:"name"`
	Email     string      `json:"email"`
	Role      domain.Role `json:"role"`
	Ward      string      `json:"ward,omitempty"`
	Phone     string      `json:"phone,omitempty"`
	CreatedAt time.Time   `json:"createdAt"`
}
