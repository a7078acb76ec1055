package models

import "time"

// Teacher is the staff profile linked 1:1 to a User via UserID.
type Teacher struct {
	ID          string    `db:"id" json:"id"`
	UserID      string    `db:"user_id" json:"user_id"`
	EmployeeNo  string    `db:"employee_no" json:"employee_no"`
	Department  string    `db:"department" json:"department"`
	Designation string    `db:"designation" json:"designation"`
	HireDate    time.Time `db:"hire_date" json:"hire_date"`
	Phone       string    `db:"phone" json:"phone"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// TeacherDetail joins the profile with its credential record.
type TeacherDetail struct {
	Teacher
	Username string `db:"username" json:"username"`
	Email    string `db:"email" json:"email"`
	FullName string `db:"full_name" json:"full_name"`
	Active   bool   `db:"active" json:"active"`
}

// TeacherFilter captures filtering criteria for listing teachers.
type TeacherFilter struct {
	Department string
	Search     string
	Page       int
	PageSize   int
	SortBy     string
	SortOrder  string
}
