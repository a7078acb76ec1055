package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/campushq/uniportal-api/internal/models"
	appErrors "github.com/campushq/uniportal-api/pkg/errors"
)

type mockGradeRepo struct {
	upserted   *models.Grade
	byStudent  []models.GradeDetail
	byOffering []models.GradeDetail
}

func (m *mockGradeRepo) Upsert(ctx context.Context, grade *models.Grade) error {
	m.upserted = grade
	return nil
}

func (m *mockGradeRepo) FindByEnrollment(ctx context.Context, enrollmentID string) (*models.Grade, error) {
	if m.upserted != nil && m.upserted.EnrollmentID == enrollmentID {
		return m.upserted, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockGradeRepo) ListByStudent(ctx context.Context, studentID string) ([]models.GradeDetail, error) {
	return m.byStudent, nil
}

func (m *mockGradeRepo) ListByOffering(ctx context.Context, offeringID string) ([]models.GradeDetail, error) {
	return m.byOffering, nil
}

type mockEnrollmentReader struct {
	enrollments map[string]*models.Enrollment
}

func (m *mockEnrollmentReader) FindByID(ctx context.Context, id string) (*models.Enrollment, error) {
	if e, ok := m.enrollments[id]; ok {
		return e, nil
	}
	return nil, sql.ErrNoRows
}

func TestGradeServiceUpsertDerivesPoint(t *testing.T) {
	repo := &mockGradeRepo{}
	enrollments := &mockEnrollmentReader{enrollments: map[string]*models.Enrollment{"e1": {ID: "e1"}}}
	svc := NewGradeService(repo, enrollments, validator.New(), zap.NewNop())

	grade, err := svc.Upsert(context.Background(), UpsertGradeRequest{EnrollmentID: "e1", GradeLetter: "B+"}, "t1")
	require.NoError(t, err)
	assert.Equal(t, 3.30, grade.GradePointValue)
	assert.Equal(t, "t1", grade.GradedBy)
	require.NotNil(t, repo.upserted)
	assert.Equal(t, "e1", repo.upserted.EnrollmentID)
}

func TestGradeServiceUpsertOverridesCallerPoint(t *testing.T) {
	repo := &mockGradeRepo{}
	enrollments := &mockEnrollmentReader{enrollments: map[string]*models.Enrollment{"e1": {ID: "e1"}}}
	svc := NewGradeService(repo, enrollments, validator.New(), zap.NewNop())

	// A resubmission with a different letter recomputes the point.
	_, err := svc.Upsert(context.Background(), UpsertGradeRequest{EnrollmentID: "e1", GradeLetter: "A"}, "t1")
	require.NoError(t, err)
	grade, err := svc.Upsert(context.Background(), UpsertGradeRequest{EnrollmentID: "e1", GradeLetter: "C-"}, "t1")
	require.NoError(t, err)
	assert.Equal(t, 1.70, grade.GradePointValue)
}

func TestGradeServiceUpsertUnknownLetter(t *testing.T) {
	repo := &mockGradeRepo{}
	enrollments := &mockEnrollmentReader{enrollments: map[string]*models.Enrollment{"e1": {ID: "e1"}}}
	svc := NewGradeService(repo, enrollments, validator.New(), zap.NewNop())

	grade, err := svc.Upsert(context.Background(), UpsertGradeRequest{EnrollmentID: "e1", GradeLetter: "Z"}, "t1")
	require.NoError(t, err)
	assert.Equal(t, 0.00, grade.GradePointValue)
}

func TestGradeServiceUpsertMissingEnrollment(t *testing.T) {
	repo := &mockGradeRepo{}
	enrollments := &mockEnrollmentReader{enrollments: map[string]*models.Enrollment{}}
	svc := NewGradeService(repo, enrollments, validator.New(), zap.NewNop())

	_, err := svc.Upsert(context.Background(), UpsertGradeRequest{EnrollmentID: "missing", GradeLetter: "A"}, "t1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
	assert.Nil(t, repo.upserted)
}

func TestGradeServiceExportTranscript(t *testing.T) {
	repo := &mockGradeRepo{byStudent: []models.GradeDetail{
		{
			Grade:        models.Grade{GradeLetter: "A", GradePointValue: 4.00},
			CourseCode:   "CS101",
			CourseTitle:  "Intro to Computing",
			CreditHours:  3,
			Semester:     "Fall",
			AcademicYear: "2025-2026",
		},
	}}
	svc := NewGradeService(repo, &mockEnrollmentReader{}, validator.New(), zap.NewNop())

	out, err := svc.ExportTranscript(context.Background(), "stu-1")
	require.NoError(t, err)
	assert.Contains(t, string(out), "course_code")
	assert.Contains(t, string(out), "CS101")
	assert.Contains(t, string(out), "4.00")
}
