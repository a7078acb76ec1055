package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/campushq/uniportal-api/internal/models"
	appErrors "github.com/campushq/uniportal-api/pkg/errors"
)

type mockStudentRepo struct {
	byID        map[string]*models.StudentDetail
	regNoTaken  bool
	createdUser *models.User
	created     *models.Student
	deletedID   string
}

func (m *mockStudentRepo) List(ctx context.Context, filter models.StudentFilter) ([]models.StudentDetail, int, error) {
	return nil, 0, nil
}

func (m *mockStudentRepo) FindByID(ctx context.Context, id string) (*models.StudentDetail, error) {
	if s, ok := m.byID[id]; ok {
		return s, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockStudentRepo) ExistsByRegistrationNo(ctx context.Context, regNo string, excludeID string) (bool, error) {
	return m.regNoTaken, nil
}

func (m *mockStudentRepo) CreateWithUser(ctx context.Context, user *models.User, student *models.Student) error {
	m.createdUser = user
	m.created = student
	return nil
}

func (m *mockStudentRepo) Update(ctx context.Context, student *models.Student) error {
	if _, ok := m.byID[student.ID]; !ok {
		return sql.ErrNoRows
	}
	return nil
}

func (m *mockStudentRepo) DeleteWithUser(ctx context.Context, id string) error {
	if _, ok := m.byID[id]; !ok {
		return sql.ErrNoRows
	}
	m.deletedID = id
	return nil
}

type mockUsernameChecker struct {
	taken bool
}

func (m *mockUsernameChecker) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	return m.taken, nil
}

func validCreateStudentRequest() CreateStudentRequest {
	return CreateStudentRequest{
		Username:       "jdoe",
		Email:          "jdoe@example.edu",
		Password:       "password123",
		FullName:       "Jordan Doe",
		RegistrationNo: "2026-001",
		Department:     "CS",
		Program:        "BSc",
		AdmissionDate:  time.Now(),
	}
}

func TestStudentServiceCreate(t *testing.T) {
	repo := &mockStudentRepo{}
	recorder := &mockRecorder{}
	svc := NewStudentService(repo, &mockUsernameChecker{}, recorder, validator.New(), zap.NewNop())

	student, err := svc.Create(context.Background(), validCreateStudentRequest(), "admin")
	require.NoError(t, err)
	assert.Equal(t, "2026-001", student.RegistrationNo)
	assert.Equal(t, "jdoe", student.Username)
	require.NotNil(t, repo.createdUser)
	assert.Equal(t, models.RoleStudent, repo.createdUser.Role)
	assert.True(t, repo.createdUser.Active)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(repo.createdUser.PasswordHash), []byte("password123")))
	require.Len(t, recorder.logs, 1)
}

func TestStudentServiceCreateUsernameTaken(t *testing.T) {
	repo := &mockStudentRepo{}
	svc := NewStudentService(repo, &mockUsernameChecker{taken: true}, nil, validator.New(), zap.NewNop())

	_, err := svc.Create(context.Background(), validCreateStudentRequest(), "admin")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
	assert.Nil(t, repo.created)
}

func TestStudentServiceCreateRegistrationNoTaken(t *testing.T) {
	repo := &mockStudentRepo{regNoTaken: true}
	svc := NewStudentService(repo, &mockUsernameChecker{}, nil, validator.New(), zap.NewNop())

	_, err := svc.Create(context.Background(), validCreateStudentRequest(), "admin")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}

func TestStudentServiceCreateInvalidPayload(t *testing.T) {
	svc := NewStudentService(&mockStudentRepo{}, &mockUsernameChecker{}, nil, validator.New(), zap.NewNop())

	req := validCreateStudentRequest()
	req.Password = "short"
	_, err := svc.Create(context.Background(), req, "admin")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestStudentServiceDelete(t *testing.T) {
	repo := &mockStudentRepo{byID: map[string]*models.StudentDetail{"s1": {}}}
	recorder := &mockRecorder{}
	svc := NewStudentService(repo, &mockUsernameChecker{}, recorder, validator.New(), zap.NewNop())

	require.NoError(t, svc.Delete(context.Background(), "s1", "admin"))
	assert.Equal(t, "s1", repo.deletedID)
	require.Len(t, recorder.logs, 1)
	assert.Equal(t, models.ActivityDelete, recorder.logs[0].Action)
}

func TestStudentServiceDeleteMissing(t *testing.T) {
	repo := &mockStudentRepo{byID: map[string]*models.StudentDetail{}}
	svc := NewStudentService(repo, &mockUsernameChecker{}, nil, validator.New(), zap.NewNop())

	err := svc.Delete(context.Background(), "ghost", "admin")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}
