package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// LoginRequest holds credentials for authenticating a user.
type LoginRequest struct {
	Username  string `json:"username" validate:"required"`
	Password  string `json:"password" validate:"required"`
	IP        string `json:"-"`
	UserAgent string `json:"-"`
}

// LoginResponse returns the issued session token and user info.
type LoginResponse struct {
	SessionToken string    `json:"session_token"`
	ExpiresIn    int64     `json:"expires_in"`
	IssuedAt     time.Time `json:"issued_at"`
	User         UserInfo  `json:"user"`
}

// ChangePasswordRequest payload for updating a password.
type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=8"`
}

// UserInfo describes the authenticated user in responses.
type UserInfo struct {
	ID        string  `json:"id"`
	Username  string  `json:"username"`
	Email     string  `json:"email"`
	FullName  string  `json:"full_name"`
	Role      Role    `json:"role"`
	ProfileID *string `json:"profile_id,omitempty"`
}

// SessionClaims is the signed session contract carried by every request:
// identity id, username, role, display name, email, and the linked
// student/teacher profile id (nil for admins).
type SessionClaims struct {
	UserID    string  `json:"user_id"`
	Username  string  `json:"username"`
	Role      Role    `json:"role"`
	FullName  string  `json:"full_name"`
	Email     string  `json:"email"`
	ProfileID *string `json:"profile_id,omitempty"`
	jwt.RegisteredClaims
}
