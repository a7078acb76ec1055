package service

import (
	"context"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/campushq/uniportal-api/internal/models"
	appErrors "github.com/campushq/uniportal-api/pkg/errors"
)

type mockAttendanceRepo struct {
	upserted []models.Attendance
	bulk     []models.Attendance
	summary  *models.AttendanceSummary
}

func (m *mockAttendanceRepo) Upsert(ctx context.Context, record *models.Attendance) (*models.Attendance, error) {
	m.upserted = append(m.upserted, *record)
	return record, nil
}

func (m *mockAttendanceRepo) BulkUpsert(ctx context.Context, records []models.Attendance) error {
	m.bulk = records
	return nil
}

func (m *mockAttendanceRepo) List(ctx context.Context, filter models.AttendanceFilter) ([]models.AttendanceDetail, int, error) {
	return nil, 0, nil
}

func (m *mockAttendanceRepo) EnrollmentSummary(ctx context.Context, enrollmentID string) (*models.AttendanceSummary, error) {
	return m.summary, nil
}

func (m *mockAttendanceRepo) StudentSummary(ctx context.Context, studentID string) (*models.AttendanceSummary, error) {
	return m.summary, nil
}

func newAttendanceService(repo *mockAttendanceRepo) *AttendanceService {
	enrollments := &mockEnrollmentReader{enrollments: map[string]*models.Enrollment{"e1": {ID: "e1"}}}
	return NewAttendanceService(repo, enrollments, validator.New(), zap.NewNop())
}

func TestAttendanceServiceMark(t *testing.T) {
	repo := &mockAttendanceRepo{}
	svc := newAttendanceService(repo)

	record, err := svc.Mark(context.Background(), MarkAttendanceRequest{
		EnrollmentID: "e1",
		Date:         "2026-03-02",
		Status:       "present",
	})
	require.NoError(t, err)
	assert.Equal(t, models.AttendanceStatus("PRESENT"), record.Status)
	assert.Equal(t, time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC), record.Date)
	require.Len(t, repo.upserted, 1)
}

func TestAttendanceServiceMarkInvalidDate(t *testing.T) {
	svc := newAttendanceService(&mockAttendanceRepo{})

	_, err := svc.Mark(context.Background(), MarkAttendanceRequest{
		EnrollmentID: "e1",
		Date:         "02/03/2026",
		Status:       "PRESENT",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestAttendanceServiceMarkUnknownEnrollment(t *testing.T) {
	svc := newAttendanceService(&mockAttendanceRepo{})

	_, err := svc.Mark(context.Background(), MarkAttendanceRequest{
		EnrollmentID: "ghost",
		Date:         "2026-03-02",
		Status:       "PRESENT",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestAttendanceServiceBulkMarkSkipsEmptyStatus(t *testing.T) {
	repo := &mockAttendanceRepo{}
	svc := newAttendanceService(repo)

	result, err := svc.BulkMark(context.Background(), BulkMarkAttendanceRequest{
		Date: "2026-03-02",
		Items: []BulkAttendanceItem{
			{EnrollmentID: "e1", Status: "PRESENT"},
			{EnrollmentID: "e2", Status: ""},
			{EnrollmentID: "e3", Status: "  "},
			{EnrollmentID: "e4", Status: "late"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, 4, result.Submitted)
	assert.Equal(t, 2, result.Written)
	assert.Equal(t, 2, result.Skipped)
	require.Len(t, repo.bulk, 2)
	assert.Equal(t, "e1", repo.bulk[0].EnrollmentID)
	assert.Equal(t, models.AttendanceStatus("LATE"), repo.bulk[1].Status)
}

func TestAttendanceServiceBulkMarkUnknownStatus(t *testing.T) {
	repo := &mockAttendanceRepo{}
	svc := newAttendanceService(repo)

	_, err := svc.BulkMark(context.Background(), BulkMarkAttendanceRequest{
		Date: "2026-03-02",
		Items: []BulkAttendanceItem{
			{EnrollmentID: "e1", Status: "HOLIDAY"},
		},
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
	assert.Nil(t, repo.bulk)
}

func TestAttendanceServiceStudentSummaryPercentage(t *testing.T) {
	repo := &mockAttendanceRepo{summary: &models.AttendanceSummary{Present: 3, Absent: 1, Total: 4}}
	svc := newAttendanceService(repo)

	summary, err := svc.StudentSummary(context.Background(), "s1")
	require.NoError(t, err)
	assert.Equal(t, 75.0, summary.Percent)
}

func TestAttendanceServiceSummaryNoRecords(t *testing.T) {
	repo := &mockAttendanceRepo{summary: &models.AttendanceSummary{}}
	svc := newAttendanceService(repo)

	summary, err := svc.EnrollmentSummary(context.Background(), "e1")
	require.NoError(t, err)
	assert.Equal(t, 0.0, summary.Percent)
}
