package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/campushq/uniportal-api/internal/models"
	appErrors "github.com/campushq/uniportal-api/pkg/errors"
)

type courseRepository interface {
	List(ctx context.Context, filter models.CourseFilter) ([]models.CourseOfferingDetail, int, error)
	FindByID(ctx context.Context, id string) (*models.CourseOfferingDetail, error)
	Create(ctx context.Context, offering *models.CourseOffering) error
	Update(ctx context.Context, offering *models.CourseOffering) error
	Delete(ctx context.Context, id string) error
}

type teacherReader interface {
	FindByID(ctx context.Context, id string) (*models.TeacherDetail, error)
}

// CourseOfferingRequest holds the create/update payload.
type CourseOfferingRequest struct {
	CourseCode   string `json:"course_code" validate:"required"`
	Title        string `json:"title" validate:"required"`
	CreditHours  int    `json:"credit_hours" validate:"required,min=1,max=6"`
	TeacherID    string `json:"teacher_id" validate:"required"`
	Semester     string `json:"semester" validate:"required"`
	AcademicYear string `json:"academic_year" validate:"required"`
}

// CourseService manages course offerings.
type CourseService struct {
	repo      courseRepository
	teachers  teacherReader
	validator *validator.Validate
	logger    *zap.Logger
}

// NewCourseService constructs the course service.
func NewCourseService(repo courseRepository, teachers teacherReader, validate *validator.Validate, logger *zap.Logger) *CourseService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CourseService{repo: repo, teachers: teachers, validator: validate, logger: logger}
}

// List returns offerings and pagination metadata. Teacher sessions are
// scoped to their own offerings by the handler via filter.TeacherID.
func (s *CourseService) List(ctx context.Context, filter models.CourseFilter) ([]models.CourseOfferingDetail, *models.Pagination, error) {
	offerings, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list course offerings")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 20
	}
	return offerings, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// Get returns a single offering.
func (s *CourseService) Get(ctx context.Context, id string) (*models.CourseOfferingDetail, error) {
	offering, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course offering not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course offering")
	}
	return offering, nil
}

// Create registers a new course offering.
func (s *CourseService) Create(ctx context.Context, req CourseOfferingRequest) (*models.CourseOffering, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid course payload")
	}

	if _, err := s.teachers.FindByID(ctx, req.TeacherID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrValidation, "teacher not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to validate teacher")
	}

	offering := &models.CourseOffering{
		CourseCode:   req.CourseCode,
		Title:        req.Title,
		CreditHours:  req.CreditHours,
		TeacherID:    req.TeacherID,
		Semester:     req.Semester,
		AcademicYear: req.AcademicYear,
	}
	if err := s.repo.Create(ctx, offering); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create course offering")
	}
	return offering, nil
}

// Update modifies an existing course offering.
func (s *CourseService) Update(ctx context.Context, id string, req CourseOfferingRequest) (*models.CourseOffering, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid course payload")
	}

	detail, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course offering not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course offering")
	}

	if req.TeacherID != detail.TeacherID {
		if _, err := s.teachers.FindByID(ctx, req.TeacherID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, appErrors.Clone(appErrors.ErrValidation, "teacher not found")
			}
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to validate teacher")
		}
	}

	offering := detail.CourseOffering
	offering.CourseCode = req.CourseCode
	offering.Title = req.Title
	offering.CreditHours = req.CreditHours
	offering.TeacherID = req.TeacherID
	offering.Semester = req.Semester
	offering.AcademicYear = req.AcademicYear

	if err := s.repo.Update(ctx, &offering); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course offering not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update course offering")
	}
	return &offering, nil
}

// Delete removes a course offering.
func (s *CourseService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "course offering not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete course offering")
	}
	return nil
}
