package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/campushq/uniportal-api/internal/models"
)

// GradeRepository handles grade persistence. The grades table carries a
// unique constraint on enrollment_id so there is at most one grade per
// enrollment.
type GradeRepository struct {
	db *sqlx.DB
}

// NewGradeRepository creates a new grade repository.
func NewGradeRepository(db *sqlx.DB) *GradeRepository {
	return &GradeRepository{db: db}
}

// Upsert atomically inserts or updates the grade for an enrollment. The
// conflict target is the enrollment_id unique constraint, which closes
// the check-then-insert race between concurrent submissions.
func (r *GradeRepository) Upsert(ctx context.Context, grade *models.Grade) error {
	now := time.Now().UTC()
	if grade.ID == "" {
		grade.ID = uuid.NewString()
	}
	if grade.CreatedAt.IsZero() {
		grade.CreatedAt = now
	}
	grade.UpdatedAt = now
	const query = `INSERT INTO grades (id, enrollment_id, grade_letter, grade_point, remarks, graded_by, created_at, updated_at)
        VALUES (:id, :enrollment_id, :grade_letter, :grade_point, :remarks, :graded_by, :created_at, :updated_at)
        ON CONFLICT (enrollment_id)
        DO UPDATE SET grade_letter = EXCLUDED.grade_letter, grade_point = EXCLUDED.grade_point,
            remarks = EXCLUDED.remarks, graded_by = EXCLUDED.graded_by, updated_at = EXCLUDED.updated_at`
	if _, err := r.db.NamedExecContext(ctx, query, grade); err != nil {
		return fmt.Errorf("upsert grade: %w", err)
	}
	return nil
}

// FindByEnrollment returns the grade for an enrollment.
func (r *GradeRepository) FindByEnrollment(ctx context.Context, enrollmentID string) (*models.Grade, error) {
	const query = `SELECT id, enrollment_id, grade_letter, grade_point, remarks, graded_by, created_at, updated_at
        FROM grades WHERE enrollment_id = $1 LIMIT 1`
	var grade models.Grade
	if err := r.db.GetContext(ctx, &grade, query, enrollmentID); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find grade: %w", err)
	}
	return &grade, nil
}

// ListByStudent returns all graded enrollments for a student.
func (r *GradeRepository) ListByStudent(ctx context.Context, studentID string) ([]models.GradeDetail, error) {
	const query = `SELECT g.id, g.enrollment_id, g.grade_letter, g.grade_point, g.remarks, g.graded_by, g.created_at, g.updated_at,
        e.student_id, u.full_name AS student_name, co.course_code, co.title AS course_title, co.credit_hours, co.semester, co.academic_year
        FROM grades g
        JOIN enrollments e ON e.id = g.enrollment_id
        JOIN students s ON s.id = e.student_id
        JOIN users u ON u.id = s.user_id
        JOIN course_offerings co ON co.id = e.offering_id
        WHERE e.student_id = $1
        ORDER BY co.academic_year DESC, co.semester DESC`
	var grades []models.GradeDetail
	if err := r.db.SelectContext(ctx, &grades, query, studentID); err != nil {
		return nil, fmt.Errorf("list grades by student: %w", err)
	}
	return grades, nil
}

// ListByOffering returns all grades recorded for a course offering.
func (r *GradeRepository) ListByOffering(ctx context.Context, offeringID string) ([]models.GradeDetail, error) {
	const query = `SELECT g.id, g.enrollment_id, g.grade_letter, g.grade_point, g.remarks, g.graded_by, g.created_at, g.updated_at,
        e.student_id, u.full_name AS student_name, co.course_code, co.title AS course_title, co.credit_hours, co.semester, co.academic_year
        FROM grades g
        JOIN enrollments e ON e.id = g.enrollment_id
        JOIN students s ON s.id = e.student_id
        JOIN users u ON u.id = s.user_id
        JOIN course_offerings co ON co.id = e.offering_id
        WHERE e.offering_id = $1
        ORDER BY u.full_name ASC`
	var grades []models.GradeDetail
	if err := r.db.SelectContext(ctx, &grades, query, offeringID); err != nil {
		return nil, fmt.Errorf("list grades by offering: %w", err)
	}
	return grades, nil
}
