package models

import "time"

// Role represents the closed set of portal roles.
type Role string

const (
	RoleAdmin   Role = "ADMIN"
	RoleTeacher Role = "TEACHER"
	RoleStudent Role = "STUDENT"
)

// Valid reports whether the role is a supported value.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleTeacher, RoleStudent:
		return true
	default:
		return false
	}
}

// In reports whether the role is a member of the allowed set. It is the
// membership test behind every role-gated route.
func (r Role) In(allowed ...Role) bool {
	for _, a := range allowed {
		if r == a {
			return true
		}
	}
	return false
}

// User is the credential record stored in the users table. Admins carry
// no extended profile; students and teachers always have exactly one.
type User struct {
	ID           string     `db:"id" json:"id"`
	Username     string     `db:"username" json:"username"`
	Email        string     `db:"email" json:"email"`
	PasswordHash string     `db:"password_hash" json:"-"`
	FullName     string     `db:"full_name" json:"full_name"`
	Role         Role       `db:"role" json:"role"`
	Active       bool       `db:"active" json:"active"`
	LastLogin    *time.Time `db:"last_login" json:"last_login,omitempty"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updated_at"`
}

// UserWithProfile joins a credential record with its linked profile id.
// At most one of StudentID/TeacherID is set; both are nil for admins.
type UserWithProfile struct {
	User
	StudentID *string `db:"student_id"`
	TeacherID *string `db:"teacher_id"`
}

// ProfileID returns the linked profile id, or nil when none exists.
func (u *UserWithProfile) ProfileID() *string {
	if u.StudentID != nil {
		return u.StudentID
	}
	return u.TeacherID
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}
