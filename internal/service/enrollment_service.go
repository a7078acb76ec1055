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

type enrollmentRepository interface {
	List(ctx context.Context, filter models.EnrollmentFilter) ([]models.EnrollmentDetail, int, error)
	FindByID(ctx context.Context, id string) (*models.Enrollment, error)
	Exists(ctx context.Context, studentID, offeringID string) (bool, error)
	Create(ctx context.Context, enrollment *models.Enrollment) error
	Update(ctx context.Context, id, offeringID string, status models.EnrollmentStatus) error
}

type offeringReader interface {
	FindByID(ctx context.Context, id string) (*models.CourseOfferingDetail, error)
}

type studentReader interface {
	FindByID(ctx context.Context, id string) (*models.StudentDetail, error)
}

// EnrollRequest links a student to a course offering.
type EnrollRequest struct {
	StudentID  string `json:"student_id" validate:"required"`
	OfferingID string `json:"offering_id" validate:"required"`
}

// UpdateEnrollmentRequest changes the offering and/or status of an
// enrollment. Empty fields keep the current value.
type UpdateEnrollmentRequest struct {
	OfferingID string `json:"offering_id"`
	Status     string `json:"status"`
}

// EnrollmentService owns the enrollment lifecycle. Status changes pass
// through a validated one-directional transition set: DROPPED and
// COMPLETED are terminal.
type EnrollmentService struct {
	repo      enrollmentRepository
	offerings offeringReader
	students  studentReader
	activity  activityRecorder
	validator *validator.Validate
	logger    *zap.Logger
}

// NewEnrollmentService constructs the enrollment service.
func NewEnrollmentService(repo enrollmentRepository, offerings offeringReader, students studentReader, activity activityRecorder, validate *validator.Validate, logger *zap.Logger) *EnrollmentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EnrollmentService{repo: repo, offerings: offerings, students: students, activity: activity, validator: validate, logger: logger}
}

// List returns enrollments and pagination metadata.
func (s *EnrollmentService) List(ctx context.Context, filter models.EnrollmentFilter) ([]models.EnrollmentDetail, *models.Pagination, error) {
	enrollments, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list enrollments")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 20
	}
	return enrollments, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// Get returns an enrollment by identifier.
func (s *EnrollmentService) Get(ctx context.Context, id string) (*models.Enrollment, error) {
	enrollment, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "enrollment not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load enrollment")
	}
	return enrollment, nil
}

// Enroll links a student to an offering with status ENROLLED.
func (s *EnrollmentService) Enroll(ctx context.Context, req EnrollRequest, enrolledBy string) (*models.Enrollment, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid enrollment payload")
	}

	if _, err := s.students.FindByID(ctx, req.StudentID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrValidation, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to validate student")
	}
	if _, err := s.offerings.FindByID(ctx, req.OfferingID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrValidation, "course offering not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to validate course offering")
	}

	exists, err := s.repo.Exists(ctx, req.StudentID, req.OfferingID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check enrollment")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "student already enrolled in this offering")
	}

	enrollment := &models.Enrollment{
		StudentID:  req.StudentID,
		OfferingID: req.OfferingID,
		Status:     models.EnrollmentStatusEnrolled,
	}
	if err := s.repo.Create(ctx, enrollment); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create enrollment")
	}

	if s.activity != nil {
		s.activity.Record(models.ActivityLog{UserID: &enrolledBy, Action: models.ActivityCreate, Resource: "enrollment", ResourceID: &enrollment.ID})
	}
	return enrollment, nil
}

// Update changes the offering and/or status of an enrollment. This is
// the only path by which an enrollment status changes.
func (s *EnrollmentService) Update(ctx context.Context, id string, req UpdateEnrollmentRequest, updatedBy string) (*models.Enrollment, error) {
	enrollment, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "enrollment not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load enrollment")
	}

	offeringID := enrollment.OfferingID
	if req.OfferingID != "" && req.OfferingID != enrollment.OfferingID {
		if _, err := s.offerings.FindByID(ctx, req.OfferingID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, appErrors.Clone(appErrors.ErrValidation, "course offering not found")
			}
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to validate course offering")
		}
		offeringID = req.OfferingID
	}

	status := enrollment.Status
	if req.Status != "" {
		next := models.EnrollmentStatus(req.Status)
		if !next.Valid() {
			return nil, appErrors.Clone(appErrors.ErrValidation, "unknown enrollment status")
		}
		if !enrollment.Status.CanTransitionTo(next) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "enrollment status cannot move back from a terminal state")
		}
		status = next
	}

	if err := s.repo.Update(ctx, id, offeringID, status); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "enrollment not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update enrollment")
	}

	if s.activity != nil {
		s.activity.Record(models.ActivityLog{UserID: &updatedBy, Action: models.ActivityUpdate, Resource: "enrollment", ResourceID: &id})
	}

	enrollment.OfferingID = offeringID
	enrollment.Status = status
	return enrollment, nil
}
