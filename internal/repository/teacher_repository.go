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
	"github.com/campushq/uniportal-api/pkg/database"
)

// TeacherRepository manages persistence for teacher profiles and their
// paired credential records.
type TeacherRepository struct {
	db *sqlx.DB
}

// NewTeacherRepository constructs a TeacherRepository.
func NewTeacherRepository(db *sqlx.DB) *TeacherRepository {
	return &TeacherRepository{db: db}
}

// List returns teachers matching the provided filters.
func (r *TeacherRepository) List(ctx context.Context, filter models.TeacherFilter) ([]models.TeacherDetail, int, error) {
	base := "FROM teachers t JOIN users u ON u.id = t.user_id"
	conditions := []string{"1=1"}
	var args []interface{}

	if filter.Department != "" {
		conditions = append(conditions, fmt.Sprintf("t.department = $%d", len(args)+1))
		args = append(args, filter.Department)
	}
	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(LOWER(u.full_name) LIKE $%d OR LOWER(t.employee_no) LIKE $%d)", len(args)+1, len(args)+1))
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
	}

	base = fmt.Sprintf("%s WHERE %s", base, strings.Join(conditions, " AND "))

	allowedSorts := map[string]string{
		"full_name":   "u.full_name",
		"employee_no": "t.employee_no",
		"hire_date":   "t.hire_date",
		"created_at":  "t.created_at",
	}
	column, ok := allowedSorts[filter.SortBy]
	if !ok {
		column = "t.created_at"
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

	query := fmt.Sprintf(`SELECT t.id, t.user_id, t.employee_no, t.department, t.designation, t.hire_date, t.phone, t.created_at, t.updated_at,
        u.username, u.email, u.full_name, u.active
        %s ORDER BY %s %s LIMIT %d OFFSET %d`, base, column, order, size, offset)

	var teachers []models.TeacherDetail
	if err := r.db.SelectContext(ctx, &teachers, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list teachers: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count teachers: %w", err)
	}
	return teachers, total, nil
}

// FindByID fetches a teacher detail by ID.
func (r *TeacherRepository) FindByID(ctx context.Context, id string) (*models.TeacherDetail, error) {
	const query = `SELECT t.id, t.user_id, t.employee_no, t.department, t.designation, t.hire_date, t.phone, t.created_at, t.updated_at,
        u.username, u.email, u.full_name, u.active
        FROM teachers t JOIN users u ON u.id = t.user_id
        WHERE t.id = $1`
	var detail models.TeacherDetail
	if err := r.db.GetContext(ctx, &detail, query, id); err != nil {
		return nil, err
	}
	return &detail, nil
}

// ExistsByEmployeeNo checks if an employee number is taken, optionally
// excluding a profile ID.
func (r *TeacherRepository) ExistsByEmployeeNo(ctx context.Context, empNo string, excludeID string) (bool, error) {
	query := "SELECT 1 FROM teachers WHERE employee_no = $1"
	args := []interface{}{empNo}
	if excludeID != "" {
		query += " AND id <> $2"
		args = append(args, excludeID)
	}
	var exists int
	if err := r.db.GetContext(ctx, &exists, query+" LIMIT 1", args...); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check employee no: %w", err)
	}
	return true, nil
}

// CreateWithUser inserts the credential record and the teacher profile
// referencing it inside one transaction. Any failure rolls back both.
func (r *TeacherRepository) CreateWithUser(ctx context.Context, user *models.User, teacher *models.Teacher) error {
	now := time.Now().UTC()
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	user.CreatedAt = now
	user.UpdatedAt = now
	if teacher.ID == "" {
		teacher.ID = uuid.NewString()
	}
	teacher.UserID = user.ID
	teacher.CreatedAt = now
	teacher.UpdatedAt = now

	return database.Transact(ctx, r.db, func(tx *sqlx.Tx) error {
		const userQuery = `INSERT INTO users (id, username, email, password_hash, full_name, role, active, created_at, updated_at)
            VALUES (:id, :username, :email, :password_hash, :full_name, :role, :active, :created_at, :updated_at)`
		if _, err := tx.NamedExecContext(ctx, userQuery, user); err != nil {
			return fmt.Errorf("insert user: %w", err)
		}
		const teacherQuery = `INSERT INTO teachers (id, user_id, employee_no, department, designation, hire_date, phone, created_at, updated_at)
            VALUES (:id, :user_id, :employee_no, :department, :designation, :hire_date, :phone, :created_at, :updated_at)`
		if _, err := tx.NamedExecContext(ctx, teacherQuery, teacher); err != nil {
			return fmt.Errorf("insert teacher: %w", err)
		}
		return nil
	})
}

// Update modifies the profile attributes of a teacher.
func (r *TeacherRepository) Update(ctx context.Context, teacher *models.Teacher) error {
	teacher.UpdatedAt = time.Now().UTC()
	const query = `UPDATE teachers SET employee_no = :employee_no, department = :department, designation = :designation,
        hire_date = :hire_date, phone = :phone, updated_at = :updated_at
        WHERE id = :id`
	res, err := r.db.NamedExecContext(ctx, query, teacher)
	if err != nil {
		return fmt.Errorf("update teacher: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// DeleteWithUser removes the profile row and then its credential record
// inside one transaction. Any failure rolls back both deletes.
func (r *TeacherRepository) DeleteWithUser(ctx context.Context, id string) error {
	return database.Transact(ctx, r.db, func(tx *sqlx.Tx) error {
		var userID string
		if err := tx.GetContext(ctx, &userID, "SELECT user_id FROM teachers WHERE id = $1", id); err != nil {
			if err == sql.ErrNoRows {
				return err
			}
			return fmt.Errorf("load teacher user id: %w", err)
		}
		if _, err := tx.ExecContext(ctx, "DELETE FROM teachers WHERE id = $1", id); err != nil {
			return fmt.Errorf("delete teacher: %w", err)
		}
		if _, err := tx.ExecContext(ctx, "DELETE FROM users WHERE id = $1", userID); err != nil {
			return fmt.Errorf("delete user: %w", err)
		}
		return nil
	})
}
