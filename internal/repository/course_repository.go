package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/campushq/uniportal-api/internal/models"
)

// CourseRepository handles course offering persistence.
type CourseRepository struct {
	db *sqlx.DB
}

// NewCourseRepository creates a new course repository.
func NewCourseRepository(db *sqlx.DB) *CourseRepository {
	return &CourseRepository{db: db}
}

// List returns course offerings matching the filter. TeacherID scopes
// the result to a single teacher's offerings.
func (r *CourseRepository) List(ctx context.Context, filter models.CourseFilter) ([]models.CourseOfferingDetail, int, error) {
	base := "FROM course_offerings co JOIN teachers t ON t.id = co.teacher_id JOIN users u ON u.id = t.user_id"
	conditions := []string{"1=1"}
	var args []interface{}

	if filter.TeacherID != "" {
		conditions = append(conditions, fmt.Sprintf("co.teacher_id = $%d", len(args)+1))
		args = append(args, filter.TeacherID)
	}
	if filter.Semester != "" {
		conditions = append(conditions, fmt.Sprintf("co.semester = $%d", len(args)+1))
		args = append(args, filter.Semester)
	}
	if filter.AcademicYear != "" {
		conditions = append(conditions, fmt.Sprintf("co.academic_year = $%d", len(args)+1))
		args = append(args, filter.AcademicYear)
	}
	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(LOWER(co.title) LIKE $%d OR LOWER(co.course_code) LIKE $%d)", len(args)+1, len(args)+1))
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
	}

	base = fmt.Sprintf("%s WHERE %s", base, strings.Join(conditions, " AND "))

	allowedSorts := map[string]string{
		"course_code": "co.course_code",
		"title":       "co.title",
		"created_at":  "co.created_at",
	}
	column, ok := allowedSorts[filter.SortBy]
	if !ok {
		column = "co.created_at"
	}
	order := strings.ToUpper(filter.SortOrder)
	if order != "ASC" && order != "DESC" {
		order = "DESC"
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf(`SELECT co.id, co.course_code, co.title, co.credit_hours, co.teacher_id, co.semester, co.academic_year, co.created_at, co.updated_at,
        u.full_name AS teacher_name
        %s ORDER BY %s %s LIMIT %d OFFSET %d`, base, column, order, size, offset)

	var offerings []models.CourseOfferingDetail
	if err := r.db.SelectContext(ctx, &offerings, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list course offerings: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count course offerings: %w", err)
	}
	return offerings, total, nil
}

// FindByID returns a course offering by identifier.
func (r *CourseRepository) FindByID(ctx context.Context, id string) (*models.CourseOfferingDetail, error) {
	const query = `SELECT co.id, co.course_code, co.title, co.credit_hours, co.teacher_id, co.semester, co.academic_year, co.created_at, co.updated_at,
        u.full_name AS teacher_name
        FROM course_offerings co
        JOIN teachers t ON t.id = co.teacher_id
        JOIN users u ON u.id = t.user_id
        WHERE co.id = $1`
	var detail models.CourseOfferingDetail
	if err := r.db.GetContext(ctx, &detail, query, id); err != nil {
		return nil, err
	}
	return &detail, nil
}

// Create inserts a course offering.
func (r *CourseRepository) Create(ctx context.Context, offering *models.CourseOffering) error {
	now := time.Now().UTC()
	if offering.ID == "" {
		offering.ID = uuid.NewString()
	}
	offering.CreatedAt = now
	offering.UpdatedAt = now
	const query = `INSERT INTO course_offerings (id, course_code, title, credit_hours, teacher_id, semester, academic_year, created_at, updated_at)
        VALUES (:id, :course_code, :title, :credit_hours, :teacher_id, :semester, :academic_year, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, offering); err != nil {
		return fmt.Errorf("insert course offering: %w", err)
	}
	return nil
}

// Update modifies a course offering.
func (r *CourseRepository) Update(ctx context.Context, offering *models.CourseOffering) error {
	offering.UpdatedAt = time.Now().UTC()
	const query = `UPDATE course_offerings SET course_code = :course_code, title = :title, credit_hours = :credit_hours,
        teacher_id = :teacher_id, semester = :semester, academic_year = :academic_year, updated_at = :updated_at
        WHERE id = :id`
	res, err := r.db.NamedExecContext(ctx, query, offering)
	if err != nil {
		return fmt.Errorf("update course offering: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Delete removes a course offering.
func (r *CourseRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM course_offerings WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("delete course offering: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
