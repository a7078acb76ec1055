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

// NoticeRepository handles notice-board persistence.
type NoticeRepository struct {
	db *sqlx.DB
}

// NewNoticeRepository constructs a NoticeRepository.
func NewNoticeRepository(db *sqlx.DB) *NoticeRepository {
	return &NoticeRepository{db: db}
}

// List returns notices visible to the given audience. A notice with a
// NULL audience is visible to every role.
func (r *NoticeRepository) List(ctx context.Context, filter models.NoticeFilter) ([]models.Notice, int, error) {
	base := "FROM notices n"
	conditions := []string{"1=1"}
	var args []interface{}

	if filter.Audience != nil {
		conditions = append(conditions, fmt.Sprintf("(n.audience IS NULL OR n.audience = $%d)", len(args)+1))
		args = append(args, *filter.Audience)
	}
	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("LOWER(n.title) LIKE $%d", len(args)+1))
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
	}

	base = fmt.Sprintf("%s WHERE %s", base, strings.Join(conditions, " AND "))

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf(`SELECT n.id, n.title, n.body, n.audience, n.posted_by, n.created_at, n.updated_at
        %s ORDER BY n.created_at DESC LIMIT %d OFFSET %d`, base, size, offset)

	var notices []models.Notice
	if err := r.db.SelectContext(ctx, &notices, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list notices: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count notices: %w", err)
	}
	return notices, total, nil
}

// FindByID returns a notice by identifier.
func (r *NoticeRepository) FindByID(ctx context.Context, id string) (*models.Notice, error) {
	const query = `SELECT id, title, body, audience, posted_by, created_at, updated_at FROM notices WHERE id = $1 LIMIT 1`
	var notice models.Notice
	if err := r.db.GetContext(ctx, &notice, query, id); err != nil {
		return nil, err
	}
	return &notice, nil
}

// Create inserts a notice.
func (r *NoticeRepository) Create(ctx context.Context, notice *models.Notice) error {
	now := time.Now().UTC()
	if notice.ID == "" {
		notice.ID = uuid.NewString()
	}
	notice.CreatedAt = now
	notice.UpdatedAt = now
	const query = `INSERT INTO notices (id, title, body, audience, posted_by, created_at, updated_at)
        VALUES (:id, :title, :body, :audience, :posted_by, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, notice); err != nil {
		return fmt.Errorf("insert notice: %w", err)
	}
	return nil
}

// Update modifies a notice.
func (r *NoticeRepository) Update(ctx context.Context, notice *models.Notice) error {
	notice.UpdatedAt = time.Now().UTC()
	const query = `UPDATE notices SET title = :title, body = :body, audience = :audience, updated_at = :updated_at WHERE id = :id`
	res, err := r.db.NamedExecContext(ctx, query, notice)
	if err != nil {
		return fmt.Errorf("update notice: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Delete removes a notice.
func (r *NoticeRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM notices WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("delete notice: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
