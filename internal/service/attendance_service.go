package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/campushq/uniportal-api/internal/models"
	appErrors "github.com/campushq/uniportal-api/pkg/errors"
)

type attendanceRepository interface {
	Upsert(ctx context.Context, record *models.Attendance) (*models.Attendance, error)
	BulkUpsert(ctx context.Context, records []models.Attendance) error
	List(ctx context.Context, filter models.AttendanceFilter) ([]models.AttendanceDetail, int, error)
	EnrollmentSummary(ctx context.Context, enrollmentID string) (*models.AttendanceSummary, error)
	StudentSummary(ctx context.Context, studentID string) (*models.AttendanceSummary, error)
}

const attendanceDateLayout = "2006-01-02"

// MarkAttendanceRequest records one enrollment for one date.
type MarkAttendanceRequest struct {
	EnrollmentID string  `json:"enrollment_id" validate:"required"`
	Date         string  `json:"date" validate:"required"`
	Status       string  `json:"status" validate:"required,attendance_status"`
	Remarks      *string `json:"remarks"`
}

// BulkAttendanceItem is one row of a batch submission. An empty status
// means no selection was made and the row is skipped.
type BulkAttendanceItem struct {
	EnrollmentID string  `json:"enrollment_id" validate:"required"`
	Status       string  `json:"status"`
	Remarks      *string `json:"remarks"`
}

// BulkMarkAttendanceRequest is a whole-class submission for one date.
type BulkMarkAttendanceRequest struct {
	Date  string               `json:"date" validate:"required"`
	Items []BulkAttendanceItem `json:"items" validate:"required,min=1,dive"`
}

// BulkMarkResult summarises a batch submission.
type BulkMarkResult struct {
	Submitted int `json:"submitted"`
	Written   int `json:"written"`
	Skipped   int `json:"skipped"`
}

// AttendanceService coordinates attendance marking and aggregation.
type AttendanceService struct {
	repo        attendanceRepository
	enrollments enrollmentReader
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewAttendanceService constructs the attendance service.
func NewAttendanceService(repo attendanceRepository, enrollments enrollmentReader, validate *validator.Validate, logger *zap.Logger) *AttendanceService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	svc := &AttendanceService{repo: repo, enrollments: enrollments, validator: validate, logger: logger}
	svc.validator.RegisterValidation("attendance_status", func(fl validator.FieldLevel) bool {
		return models.AttendanceStatus(strings.ToUpper(fl.Field().String())).Valid()
	})
	return svc
}

// Mark upserts a single attendance record; the latest submission for an
// (enrollment, date) pair wins.
func (s *AttendanceService) Mark(ctx context.Context, req MarkAttendanceRequest) (*models.Attendance, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid attendance payload")
	}

	date, err := time.Parse(attendanceDateLayout, req.Date)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "invalid date, expected YYYY-MM-DD")
	}

	if _, err := s.enrollments.FindByID(ctx, req.EnrollmentID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "enrollment not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load enrollment")
	}

	record := &models.Attendance{
		EnrollmentID: req.EnrollmentID,
		Date:         date,
		Status:       models.AttendanceStatus(strings.ToUpper(req.Status)),
		Remarks:      req.Remarks,
	}
	stored, err := s.repo.Upsert(ctx, record)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to upsert attendance")
	}
	return stored, nil
}

// BulkMark applies a whole-class submission for one date. Items with an
// empty status represent "no selection" and are skipped entirely; no
// record is written for them.
func (s *AttendanceService) BulkMark(ctx context.Context, req BulkMarkAttendanceRequest) (*BulkMarkResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid attendance batch")
	}

	date, err := time.Parse(attendanceDateLayout, req.Date)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "invalid date, expected YYYY-MM-DD")
	}

	records := make([]models.Attendance, 0, len(req.Items))
	skipped := 0
	for _, item := range req.Items {
		if strings.TrimSpace(item.Status) == "" {
			skipped++
			continue
		}
		status := models.AttendanceStatus(strings.ToUpper(item.Status))
		if !status.Valid() {
			return nil, appErrors.Clone(appErrors.ErrValidation, "unknown attendance status")
		}
		records = append(records, models.Attendance{
			EnrollmentID: item.EnrollmentID,
			Date:         date,
			Status:       status,
			Remarks:      item.Remarks,
		})
	}

	if err := s.repo.BulkUpsert(ctx, records); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to write attendance batch")
	}

	return &BulkMarkResult{Submitted: len(req.Items), Written: len(records), Skipped: skipped}, nil
}

// List returns attendance rows and pagination metadata.
func (s *AttendanceService) List(ctx context.Context, filter models.AttendanceFilter) ([]models.AttendanceDetail, *models.Pagination, error) {
	rows, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list attendance")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 50
	}
	return rows, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// EnrollmentSummary aggregates counts and percentage for an enrollment.
func (s *AttendanceService) EnrollmentSummary(ctx context.Context, enrollmentID string) (*models.AttendanceSummary, error) {
	summary, err := s.repo.EnrollmentSummary(ctx, enrollmentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load attendance summary")
	}
	summary.Percent = models.AttendancePercentage(summary.Present, summary.Total)
	return summary, nil
}

// StudentSummary aggregates counts and percentage across all of a
// student's enrollments.
func (s *AttendanceService) StudentSummary(ctx context.Context, studentID string) (*models.AttendanceSummary, error) {
	summary, err := s.repo.StudentSummary(ctx, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load attendance summary")
	}
	summary.Percent = models.AttendancePercentage(summary.Present, summary.Total)
	return summary, nil
}
