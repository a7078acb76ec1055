package service

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/campushq/uniportal-api/internal/models"
	appErrors "github.com/campushq/uniportal-api/pkg/errors"
	"github.com/campushq/uniportal-api/pkg/export"
)

type gradeRepository interface {
	Upsert(ctx context.Context, grade *models.Grade) error
	FindByEnrollment(ctx context.Context, enrollmentID string) (*models.Grade, error)
	ListByStudent(ctx context.Context, studentID string) ([]models.GradeDetail, error)
	ListByOffering(ctx context.Context, offeringID string) ([]models.GradeDetail, error)
}

type enrollmentReader interface {
	FindByID(ctx context.Context, id string) (*models.Enrollment, error)
}

// UpsertGradeRequest represents a grade submission for one enrollment.
// The payload carries only the letter; the point value is derived.
type UpsertGradeRequest struct {
	EnrollmentID string  `json:"enrollment_id" validate:"required"`
	GradeLetter  string  `json:"grade_letter" validate:"required"`
	Remarks      *string `json:"remarks"`
}

// GradeService owns grade submission. There is at most one grade per
// enrollment and grade_point is always recomputed from the letter.
type GradeService struct {
	repo        gradeRepository
	enrollments enrollmentReader
	validator   *validator.Validate
	logger      *zap.Logger
	metrics     *MetricsService
}

// NewGradeService constructs the grade service.
func NewGradeService(repo gradeRepository, enrollments enrollmentReader, validate *validator.Validate, logger *zap.Logger) *GradeService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GradeService{repo: repo, enrollments: enrollments, validator: validate, logger: logger}
}

// UseMetrics attaches the metrics service so the joined transcript reads
// report their query timing.
func (s *GradeService) UseMetrics(m *MetricsService) {
	s.metrics = m
}

// Upsert records the grade for an enrollment, inserting or replacing in
// one atomic statement.
func (s *GradeService) Upsert(ctx context.Context, req UpsertGradeRequest, gradedBy string) (*models.Grade, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid grade payload")
	}

	if _, err := s.enrollments.FindByID(ctx, req.EnrollmentID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "enrollment not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load enrollment")
	}

	if !models.KnownGradeLetter(req.GradeLetter) {
		s.logger.Warn("unrecognized grade letter, deriving 0.00", zap.String("letter", req.GradeLetter))
	}

	grade := &models.Grade{
		EnrollmentID:    req.EnrollmentID,
		GradeLetter:     req.GradeLetter,
		GradePointValue: models.GradePoint(req.GradeLetter),
		Remarks:         req.Remarks,
		GradedBy:        gradedBy,
	}
	if err := s.repo.Upsert(ctx, grade); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to upsert grade")
	}
	return grade, nil
}

// GetByEnrollment returns the single grade for an enrollment.
func (s *GradeService) GetByEnrollment(ctx context.Context, enrollmentID string) (*models.Grade, error) {
	grade, err := s.repo.FindByEnrollment(ctx, enrollmentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "grade not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load grade")
	}
	return grade, nil
}

// ListByStudent returns all graded courses for a student.
func (s *GradeService) ListByStudent(ctx context.Context, studentID string) ([]models.GradeDetail, error) {
	start := time.Now()
	grades, err := s.repo.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list grades")
	}
	s.metrics.ObserveDBQuery("grades_by_student", time.Since(start))
	return grades, nil
}

// ListByOffering returns all grades for a course offering.
func (s *GradeService) ListByOffering(ctx context.Context, offeringID string) ([]models.GradeDetail, error) {
	start := time.Now()
	grades, err := s.repo.ListByOffering(ctx, offeringID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list grades")
	}
	s.metrics.ObserveDBQuery("grades_by_offering", time.Since(start))
	return grades, nil
}

// ExportTranscript renders a student's graded courses as CSV.
func (s *GradeService) ExportTranscript(ctx context.Context, studentID string) ([]byte, error) {
	grades, err := s.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}

	data := export.Dataset{
		Headers: []string{"course_code", "course_title", "credit_hours", "semester", "academic_year", "grade_letter", "grade_point"},
	}
	for _, g := range grades {
		data.Rows = append(data.Rows, []string{
			g.CourseCode,
			g.CourseTitle,
			strconv.Itoa(g.CreditHours),
			g.Semester,
			g.AcademicYear,
			g.GradeLetter,
			strconv.FormatFloat(g.GradePointValue, 'f', 2, 64),
		})
	}

	out, err := export.CSV(data)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render transcript")
	}
	return out, nil
}
