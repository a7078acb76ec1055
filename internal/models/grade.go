package models

import "time"

// gradePoints is the fixed letter-to-point table. Unrecognized letters
// map to 0.00.
var gradePoints = map[string]float64{
	"A+": 4.00,
	"A":  4.00,
	"A-": 3.70,
	"B+": 3.30,
	"B":  3.00,
	"B-": 2.70,
	"C+": 2.30,
	"C":  2.00,
	"C-": 1.70,
	"D":  1.00,
	"F":  0.00,
}

// GradePoint returns the point value for a letter grade. Every grade
// write derives grade_point through this function; a caller-supplied
// point value is never trusted.
func GradePoint(letter string) float64 {
	return gradePoints[letter]
}

// KnownGradeLetter reports whether the letter is in the grading scale.
func KnownGradeLetter(letter string) bool {
	_, ok := gradePoints[letter]
	return ok
}

// Grade holds the single grade row for an enrollment. GradePointValue is
// always recomputed from GradeLetter at write time.
type Grade struct {
	ID              string    `db:"id" json:"id"`
	EnrollmentID    string    `db:"enrollment_id" json:"enrollment_id"`
	GradeLetter     string    `db:"grade_letter" json:"grade_letter"`
	GradePointValue float64   `db:"grade_point" json:"grade_point"`
	Remarks         *string   `db:"remarks" json:"remarks,omitempty"`
	GradedBy        string    `db:"graded_by" json:"graded_by"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time `db:"updated_at" json:"updated_at"`
}

// GradeDetail enriches a grade with the enrollment's course context.
type GradeDetail struct {
	Grade
	StudentID    string `db:"student_id" json:"student_id"`
	StudentName  string `db:"student_name" json:"student_name"`
	CourseCode   string `db:"course_code" json:"course_code"`
	CourseTitle  string `db:"course_title" json:"course_title"`
	CreditHours  int    `db:"credit_hours" json:"credit_hours"`
	Semester     string `db:"semester" json:"semester"`
	AcademicYear string `db:"academic_year" json:"academic_year"`
}
