package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/campushq/uniportal-api/internal/models"
)

// AttendanceRepository handles attendance persistence. The attendance
// table carries a unique constraint on (enrollment_id, date).
type AttendanceRepository struct {
	db *sqlx.DB
}

// NewAttendanceRepository constructs the repository.
func NewAttendanceRepository(db *sqlx.DB) *AttendanceRepository {
	return &AttendanceRepository{db: db}
}

// Upsert atomically inserts or updates the record for an
// (enrollment, date) pair; the latest submission wins.
func (r *AttendanceRepository) Upsert(ctx context.Context, record *models.Attendance) (*models.Attendance, error) {
	now := time.Now().UTC()
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = now
	}
	record.UpdatedAt = now
	const query = `INSERT INTO attendance (id, enrollment_id, date, status, remarks, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)
ON CONFLICT (enrollment_id, date)
DO UPDATE SET status = EXCLUDED.status, remarks = EXCLUDED.remarks, updated_at = EXCLUDED.updated_at
RETURNING id, enrollment_id, date, status, remarks, created_at, updated_at`
	var stored models.Attendance
	if err := r.db.GetContext(ctx, &stored, query,
		record.ID, record.EnrollmentID, record.Date, record.Status, record.Remarks, record.CreatedAt, record.UpdatedAt); err != nil {
		return nil, fmt.Errorf("upsert attendance: %w", err)
	}
	return &stored, nil
}

// BulkUpsert applies a batch of attendance records in one transaction.
func (r *AttendanceRepository) BulkUpsert(ctx context.Context, records []models.Attendance) error {
	if len(records) == 0 {
		return nil
	}
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin attendance tx: %w", err)
	}
	now := time.Now().UTC()
	const query = `INSERT INTO attendance (id, enrollment_id, date, status, remarks, created_at, updated_at)
VALUES (:id, :enrollment_id, :date, :status, :remarks, :created_at, :updated_at)
ON CONFLICT (enrollment_id, date)
DO UPDATE SET status = EXCLUDED.status, remarks = EXCLUDED.remarks, updated_at = EXCLUDED.updated_at`
	for i := range records {
		if records[i].ID == "" {
			records[i].ID = uuid.NewString()
		}
		if records[i].CreatedAt.IsZero() {
			records[i].CreatedAt = now
		}
		records[i].UpdatedAt = now
		if _, err := tx.NamedExecContext(ctx, query, records[i]); err != nil {
			tx.Rollback() //nolint:errcheck
			return fmt.Errorf("bulk upsert attendance: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit attendance: %w", err)
	}
	return nil
}

// List returns attendance rows matching the provided filter.
func (r *AttendanceRepository) List(ctx context.Context, filter models.AttendanceFilter) ([]models.AttendanceDetail, int, error) {
	base := `FROM attendance a
JOIN enrollments e ON e.id = a.enrollment_id
JOIN students s ON s.id = e.student_id
JOIN users u ON u.id = s.user_id
JOIN course_offerings co ON co.id = e.offering_id`
	where := []string{"1=1"}
	var args []interface{}
	if filter.EnrollmentID != "" {
		where = append(where, fmt.Sprintf("a.enrollment_id = $%d", len(args)+1))
		args = append(args, filter.EnrollmentID)
	}
	if filter.OfferingID != "" {
		where = append(where, fmt.Sprintf("e.offering_id = $%d", len(args)+1))
		args = append(args, filter.OfferingID)
	}
	if filter.StudentID != "" {
		where = append(where, fmt.Sprintf("e.student_id = $%d", len(args)+1))
		args = append(args, filter.StudentID)
	}
	if filter.Status != nil && filter.Status.Valid() {
		where = append(where, fmt.Sprintf("a.status = $%d", len(args)+1))
		args = append(args, *filter.Status)
	}
	if filter.DateFrom != nil {
		where = append(where, fmt.Sprintf("a.date >= $%d", len(args)+1))
		args = append(args, *filter.DateFrom)
	}
	if filter.DateTo != nil {
		where = append(where, fmt.Sprintf("a.date <= $%d", len(args)+1))
		args = append(args, *filter.DateTo)
	}
	whereClause := strings.Join(where, " AND ")

	allowedSort := map[string]string{
		"date":       "a.date",
		"status":     "a.status",
		"created_at": "a.created_at",
	}
	column, ok := allowedSort[filter.SortBy]
	if !ok {
		column = "a.date"
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
	if size <= 0 || size > 200 {
		size = 50
	}
	offset := (page - 1) * size

	query := fmt.Sprintf(`SELECT a.id, a.enrollment_id, a.date, a.status, a.remarks, a.created_at, a.updated_at,
        e.student_id, u.full_name AS student_name, co.course_code, co.title AS course_title
        %s WHERE %s
        ORDER BY %s %s
        LIMIT %d OFFSET %d`, base, whereClause, column, order, size, offset)

	var rows []models.AttendanceDetail
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list attendance: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s WHERE %s", base, whereClause)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count attendance: %w", err)
	}
	return rows, total, nil
}

// EnrollmentSummary aggregates attendance counts for one enrollment.
func (r *AttendanceRepository) EnrollmentSummary(ctx context.Context, enrollmentID string) (*models.AttendanceSummary, error) {
	const query = `SELECT
        COUNT(*) FILTER (WHERE status = 'PRESENT') AS present,
        COUNT(*) FILTER (WHERE status = 'ABSENT') AS absent,
        COUNT(*) FILTER (WHERE status = 'LATE') AS late,
        COUNT(*) AS total
        FROM attendance WHERE enrollment_id = $1`
	var summary models.AttendanceSummary
	if err := r.db.GetContext(ctx, &summary, query, enrollmentID); err != nil {
		return nil, fmt.Errorf("enrollment attendance summary: %w", err)
	}
	return &summary, nil
}

// StudentSummary aggregates attendance counts across all of a student's
// enrollments.
func (r *AttendanceRepository) StudentSummary(ctx context.Context, studentID string) (*models.AttendanceSummary, error) {
	const query = `SELECT
        COUNT(*) FILTER (WHERE a.status = 'PRESENT') AS present,
        COUNT(*) FILTER (WHERE a.status = 'ABSENT') AS absent,
        COUNT(*) FILTER (WHERE a.status = 'LATE') AS late,
        COUNT(*) AS total
        FROM attendance a
        JOIN enrollments e ON e.id = a.enrollment_id
        WHERE e.student_id = $1`
	var summary models.AttendanceSummary
	if err := r.db.GetContext(ctx, &summary, query, studentID); err != nil {
		return nil, fmt.Errorf("student attendance summary: %w", err)
	}
	return &summary, nil
}
