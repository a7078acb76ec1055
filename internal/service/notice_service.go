package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/campushq/uniportal-api/internal/models"
	appErrors "github.com/campushq/uniportal-api/pkg/errors"
)

type noticeRepository interface {
	List(ctx context.Context, filter models.NoticeFilter) ([]models.Notice, int, error)
	FindByID(ctx context.Context, id string) (*models.Notice, error)
	Create(ctx context.Context, notice *models.Notice) error
	Update(ctx context.Context, notice *models.Notice) error
	Delete(ctx context.Context, id string) error
}

// NoticeRequest creates or replaces a board entry. An empty audience
// publishes the notice to everyone.
type NoticeRequest struct {
	Title    string `json:"title" validate:"required,max=200"`
	Body     string `json:"body" validate:"required"`
	Audience string `json:"audience" validate:"omitempty,oneof=ADMIN TEACHER STUDENT"`
}

// NoticeService manages the notice board.
type NoticeService struct {
	repo      noticeRepository
	activity  activityRecorder
	validator *validator.Validate
	logger    *zap.Logger
}

// NewNoticeService constructs the notice service.
func NewNoticeService(repo noticeRepository, activity activityRecorder, validate *validator.Validate, logger *zap.Logger) *NoticeService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NoticeService{repo: repo, activity: activity, validator: validate, logger: logger}
}

// ListFor returns notices visible to the given role, that is notices
// with no audience plus notices addressed to that role.
func (s *NoticeService) ListFor(ctx context.Context, role models.Role, filter models.NoticeFilter) ([]models.Notice, *models.Pagination, error) {
	if role != models.RoleAdmin {
		filter.Audience = &role
	}
	notices, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list notices")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 20
	}
	return notices, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// Get returns one notice if it is visible to the given role.
func (s *NoticeService) Get(ctx context.Context, role models.Role, id string) (*models.Notice, error) {
	notice, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "notice not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load notice")
	}
	if role != models.RoleAdmin && notice.Audience != nil && *notice.Audience != role {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "notice not found")
	}
	return notice, nil
}

// Create publishes a notice.
func (s *NoticeService) Create(ctx context.Context, req NoticeRequest, postedBy string) (*models.Notice, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid notice payload")
	}

	now := time.Now().UTC()
	notice := &models.Notice{
		ID:        uuid.NewString(),
		Title:     strings.TrimSpace(req.Title),
		Body:      req.Body,
		Audience:  parseAudience(req.Audience),
		PostedBy:  postedBy,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.Create(ctx, notice); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create notice")
	}

	if s.activity != nil {
		s.activity.Record(models.ActivityLog{UserID: &postedBy, Action: models.ActivityCreate, Resource: "notice", ResourceID: &notice.ID})
	}
	return notice, nil
}

// Update replaces a notice's content and audience.
func (s *NoticeService) Update(ctx context.Context, id string, req NoticeRequest, updatedBy string) (*models.Notice, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid notice payload")
	}

	notice, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "notice not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load notice")
	}

	notice.Title = strings.TrimSpace(req.Title)
	notice.Body = req.Body
	notice.Audience = parseAudience(req.Audience)
	notice.UpdatedAt = time.Now().UTC()
	if err := s.repo.Update(ctx, notice); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "notice not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update notice")
	}

	if s.activity != nil {
		s.activity.Record(models.ActivityLog{UserID: &updatedBy, Action: models.ActivityUpdate, Resource: "notice", ResourceID: &id})
	}
	return notice, nil
}

// Delete removes a notice.
func (s *NoticeService) Delete(ctx context.Context, id, deletedBy string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "notice not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete notice")
	}
	if s.activity != nil {
		s.activity.Record(models.ActivityLog{UserID: &deletedBy, Action: models.ActivityDelete, Resource: "notice", ResourceID: &id})
	}
	return nil
}

func parseAudience(raw string) *models.Role {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	role := models.Role(strings.ToUpper(raw))
	return &role
}
