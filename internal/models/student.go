package models

import "time"

// Student is the academic profile linked 1:1 to a User via UserID.
type Student struct {
	ID             string    `db:"id" json:"id"`
	UserID         string    `db:"user_id" json:"user_id"`
	RegistrationNo string    `db:"registration_no" json:"registration_no"`
	Department     string    `db:"department" json:"department"`
	Program        string    `db:"program" json:"program"`
	AdmissionDate  time.Time `db:"admission_date" json:"admission_date"`
	Phone          string    `db:"phone" json:"phone"`
	Address        string    `db:"address" json:"address"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}

// StudentDetail joins the profile with its credential record.
type StudentDetail struct {
	Student
	Username string `db:"username" json:"username"`
	Email    string `db:"email" json:"email"`
	FullName string `db:"full_name" json:"full_name"`
	Active   bool   `db:"active" json:"active"`
}

// StudentFilter captures filtering criteria for listing students.
type StudentFilter struct {
	Department string
	Program    string
	Search     string
	Page       int
	PageSize   int
	SortBy     string
	SortOrder  string
}
