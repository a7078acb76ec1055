package models

import "time"

// CourseOffering is a course taught by one teacher in a given semester
// and academic year.
type CourseOffering struct {
	ID           string    `db:"id" json:"id"`
	CourseCode   string    `db:"course_code" json:"course_code"`
	Title        string    `db:"title" json:"title"`
	CreditHours  int       `db:"credit_hours" json:"credit_hours"`
	TeacherID    string    `db:"teacher_id" json:"teacher_id"`
	Semester     string    `db:"semester" json:"semester"`
	AcademicYear string    `db:"academic_year" json:"academic_year"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// CourseOfferingDetail enriches the offering with teacher info.
type CourseOfferingDetail struct {
	CourseOffering
	TeacherName string `db:"teacher_name" json:"teacher_name"`
}

// CourseFilter provides filters for listing offerings. TeacherID scopes
// the listing to a single teacher's courses.
type CourseFilter struct {
	TeacherID    string
	Semester     string
	AcademicYear string
	Search       string
	Page         int
	PageSize     int
	SortBy       string
	SortOrder    string
}
