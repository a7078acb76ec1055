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

type mockEnrollmentRepo struct {
	byID     map[string]*models.Enrollment
	existing map[string]bool
	created  *models.Enrollment
	updated  bool
}

func (m *mockEnrollmentRepo) List(ctx context.Context, filter models.EnrollmentFilter) ([]models.EnrollmentDetail, int, error) {
	return nil, 0, nil
}

func (m *mockEnrollmentRepo) FindByID(ctx context.Context, id string) (*models.Enrollment, error) {
	if e, ok := m.byID[id]; ok {
		return e, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockEnrollmentRepo) Exists(ctx context.Context, studentID, offeringID string) (bool, error) {
	return m.existing[studentID+"/"+offeringID], nil
}

func (m *mockEnrollmentRepo) Create(ctx context.Context, enrollment *models.Enrollment) error {
	m.created = enrollment
	return nil
}

func (m *mockEnrollmentRepo) Update(ctx context.Context, id, offeringID string, status models.EnrollmentStatus) error {
	if _, ok := m.byID[id]; !ok {
		return sql.ErrNoRows
	}
	m.updated = true
	return nil
}

type mockOfferingReader struct {
	offerings map[string]*models.CourseOfferingDetail
}

func (m *mockOfferingReader) FindByID(ctx context.Context, id string) (*models.CourseOfferingDetail, error) {
	if o, ok := m.offerings[id]; ok {
		return o, nil
	}
	return nil, sql.ErrNoRows
}

type mockStudentReader struct {
	students map[string]*models.StudentDetail
}

func (m *mockStudentReader) FindByID(ctx context.Context, id string) (*models.StudentDetail, error) {
	if s, ok := m.students[id]; ok {
		return s, nil
	}
	return nil, sql.ErrNoRows
}

func newEnrollmentService(repo *mockEnrollmentRepo) *EnrollmentService {
	offerings := &mockOfferingReader{offerings: map[string]*models.CourseOfferingDetail{"o1": {}}}
	students := &mockStudentReader{students: map[string]*models.StudentDetail{"s1": {}}}
	return NewEnrollmentService(repo, offerings, students, nil, validator.New(), zap.NewNop())
}

func TestEnrollmentServiceEnroll(t *testing.T) {
	repo := &mockEnrollmentRepo{existing: map[string]bool{}}
	svc := newEnrollmentService(repo)

	enrollment, err := svc.Enroll(context.Background(), EnrollRequest{StudentID: "s1", OfferingID: "o1"}, "admin")
	require.NoError(t, err)
	assert.Equal(t, models.EnrollmentStatusEnrolled, enrollment.Status)
	require.NotNil(t, repo.created)
}

func TestEnrollmentServiceEnrollDuplicate(t *testing.T) {
	repo := &mockEnrollmentRepo{existing: map[string]bool{"s1/o1": true}}
	svc := newEnrollmentService(repo)

	_, err := svc.Enroll(context.Background(), EnrollRequest{StudentID: "s1", OfferingID: "o1"}, "admin")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
	assert.Nil(t, repo.created)
}

func TestEnrollmentServiceEnrollUnknownStudent(t *testing.T) {
	repo := &mockEnrollmentRepo{existing: map[string]bool{}}
	svc := newEnrollmentService(repo)

	_, err := svc.Enroll(context.Background(), EnrollRequest{StudentID: "ghost", OfferingID: "o1"}, "admin")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestEnrollmentServiceUpdateComplete(t *testing.T) {
	repo := &mockEnrollmentRepo{byID: map[string]*models.Enrollment{
		"e1": {ID: "e1", StudentID: "s1", OfferingID: "o1", Status: models.EnrollmentStatusEnrolled},
	}}
	svc := newEnrollmentService(repo)

	enrollment, err := svc.Update(context.Background(), "e1", UpdateEnrollmentRequest{Status: "COMPLETED"}, "admin")
	require.NoError(t, err)
	assert.Equal(t, models.EnrollmentStatusCompleted, enrollment.Status)
	assert.True(t, repo.updated)
}

func TestEnrollmentServiceUpdateTerminalRejected(t *testing.T) {
	repo := &mockEnrollmentRepo{byID: map[string]*models.Enrollment{
		"e1": {ID: "e1", StudentID: "s1", OfferingID: "o1", Status: models.EnrollmentStatusCompleted},
	}}
	svc := newEnrollmentService(repo)

	_, err := svc.Update(context.Background(), "e1", UpdateEnrollmentRequest{Status: "ENROLLED"}, "admin")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
	assert.False(t, repo.updated)
}

func TestEnrollmentServiceUpdateUnknownStatus(t *testing.T) {
	repo := &mockEnrollmentRepo{byID: map[string]*models.Enrollment{
		"e1": {ID: "e1", Status: models.EnrollmentStatusEnrolled, OfferingID: "o1"},
	}}
	svc := newEnrollmentService(repo)

	_, err := svc.Update(context.Background(), "e1", UpdateEnrollmentRequest{Status: "PAUSED"}, "admin")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}
