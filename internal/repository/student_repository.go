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

// StudentRepository manages persistence for student profiles and their
// paired credential records.
type StudentRepository struct {
	db *sqlx.DB
}

// NewStudentRepository constructs a StudentRepository.
func NewStudentRepository(db *sqlx.DB) *StudentRepository {
	return &StudentRepository{db: db}
}

// List returns students matching the provided filters.
func (r *StudentRepository) List(ctx context.Context, filter models.StudentFilter) ([]models.StudentDetail, int, error) {
	base := "FROM students s JOIN users u ON u.id = s.user_id"
	conditions := []string{"1=1"}
	var args []interface{}

	if filter.Department != "" {
		conditions = append(conditions, fmt.Sprintf("s.department = $%d", len(args)+1))
		args = append(args, filter.Department)
	}
	if filter.Program != "" {
		conditions = append(conditions, fmt.Sprintf("s.program = $%d", len(args)+1))
		args = append(args, filter.Program)
	}
	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(LOWER(u.full_name) LIKE $%d OR LOWER(s.registration_no) LIKE $%d)", len(args)+1, len(args)+1))
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
	}

	base = fmt.Sprintf("%s WHERE %s", base, strings.Join(conditions, " AND "))

	allowedSorts := map[string]string{
		"full_name":       "u.full_name",
		"registration_no": "s.registration_no",
		"admission_date":  "s.admission_date",
		"created_at":      "s.created_at",
	}
	column, ok := allowedSorts[filter.SortBy]
	if !ok {
		column = "s.created_at"
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

	query := fmt.Sprintf(`SELECT s.id, s.user_id, s.registration_no, s.department, s.program, s.admission_date, s.phone, s.address, s.created_at, s.updated_at,
        u.username, u.email, u.full_name, u.active
        %s ORDER BY %s %s LIMIT %d OFFSET %d`, base, column, order, size, offset)

	var students []models.StudentDetail
	if err := r.db.SelectContext(ctx, &students, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list students: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count students: %w", err)
	}
	return students, total, nil
}

// FindByID fetches a student detail by ID.
func (r *StudentRepository) FindByID(ctx context.Context, id string) (*models.StudentDetail, error) {
	const query = `SELECT s.id, s.user_id, s.registration_no, s.department, s.program, s.admission_date, s.phone, s.address, s.created_at, s.updated_at,
        u.username, u.email, u.full_name, u.active
        FROM students s JOIN users u ON u.id = s.user_id
        WHERE s.id = $1`
	var detail models.StudentDetail
	if err := r.db.GetContext(ctx, &detail, query, id); err != nil {
		return nil, err
	}
	return &detail, nil
}

// ExistsByRegistrationNo checks if a registration number is taken,
// optionally excluding a profile ID.
func (r *StudentRepository) ExistsByRegistrationNo(ctx context.Context, regNo string, excludeID string) (bool, error) {
	query := "SELECT 1 FROM students WHERE registration_no = $1"
	args := []interface{}{regNo}
	if excludeID != "" {
		query += " AND id <> $2"
		args = append(args, excludeID)
	}
	var exists int
	if err := r.db.GetContext(ctx, &exists, query+" LIMIT 1", args...); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check registration no: %w", err)
	}
	return true, nil
}

// CreateWithUser inserts the credential record and the student profile
// referencing it inside one transaction. Any failure rolls back both.
func (r *StudentRepository) CreateWithUser(ctx context.Context, user *models.User, student *models.Student) error {
	now := time.Now().UTC()
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	user.CreatedAt = now
	user.UpdatedAt = now
	if student.ID == "" {
		student.ID = uuid.NewString()
	}
	student.UserID = user.ID
	student.CreatedAt = now
	student.UpdatedAt = now

	return database.Transact(ctx, r.db, func(tx *sqlx.Tx) error {
		const userQuery = `INSERT INTO users (id, username, email, password_hash, full_name, role, active, created_at, updated_at)
            VALUES (:id, :username, :email, :password_hash, :full_name, :role, :active, :created_at, :updated_at)`
		if _, err := tx.NamedExecContext(ctx, userQuery, user); err != nil {
			return fmt.Errorf("insert user: %w", err)
		}
		const studentQuery = `INSERT INTO students (id, user_id, registration_no, department, program, admission_date, phone, address, created_at, updated_at)
            VALUES (:id, :user_id, :registration_no, :department, :program, :admission_date, :phone, :address, :created_at, :updated_at)`
		if _, err := tx.NamedExecContext(ctx, studentQuery, student); err != nil {
			return fmt.Errorf("insert student: %w", err)
		}
		return nil
	})
}

// Update modifies the profile attributes of a student.
func (r *StudentRepository) Update(ctx context.Context, student *models.Student) error {
	student.UpdatedAt = time.Now().UTC()
	const query = `UPDATE students SET registration_no = :registration_no, department = :department, program = :program,
        admission_date = :admission_date, phone = :phone, address = :address, updated_at = :updated_at
        WHERE id = :id`
	res, err := r.db.NamedExecContext(ctx, query, student)
	if err != nil {
		return fmt.Errorf("update student: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// DeleteWithUser removes the profile row and then its credential record
// inside one transaction. Any failure rolls back both deletes.
func (r *StudentRepository) DeleteWithUser(ctx context.Context, id string) error {
	return database.Transact(ctx, r.db, func(tx *sqlx.Tx) error {
		var userID string
		if err := tx.GetContext(ctx, &userID, "SELECT user_id FROM students WHERE id = $1", id); err != nil {
			if err == sql.ErrNoRows {
				return err
			}
			return fmt.Errorf("load student user id: %w", err)
		}
		if _, err := tx.ExecContext(ctx, "DELETE FROM students WHERE id = $1", id); err != nil {
			return fmt.Errorf("delete student: %w", err)
		}
		if _, err := tx.ExecContext(ctx, "DELETE FROM users WHERE id = $1", userID); err != nil {
			return fmt.Errorf("delete user: %w", err)
		}
		return nil
	})
}
