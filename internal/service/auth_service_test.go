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

type mockAuthRepo struct {
	user              *models.UserWithProfile
	findErr           error
	lastLoginUpdated  bool
	updatedHash       string
	updatePasswordErr error
}

func (m *mockAuthRepo) FindByUsernameWithProfile(ctx context.Context, username string) (*models.UserWithProfile, error) {
	if m.findErr != nil {
		return nil, m.findErr
	}
	if m.user == nil || m.user.Username != username {
		return nil, sql.ErrNoRows
	}
	return m.user, nil
}

func (m *mockAuthRepo) FindByID(ctx context.Context, id string) (*models.User, error) {
	if m.user == nil || m.user.ID != id {
		return nil, sql.ErrNoRows
	}
	return &m.user.User, nil
}

func (m *mockAuthRepo) UpdateLastLogin(ctx context.Context, id string, ts time.Time) error {
	m.lastLoginUpdated = true
	return nil
}

func (m *mockAuthRepo) UpdatePassword(ctx context.Context, id, passwordHash string, updatedAt time.Time) error {
	if m.updatePasswordErr != nil {
		return m.updatePasswordErr
	}
	m.updatedHash = passwordHash
	return nil
}

type mockSessionStore struct {
	revoked map[string]bool
}

func (m *mockSessionStore) Revoke(ctx context.Context, tokenID string, ttl time.Duration) error {
	if m.revoked == nil {
		m.revoked = make(map[string]bool)
	}
	m.revoked[tokenID] = true
	return nil
}

func (m *mockSessionStore) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	return m.revoked[tokenID], nil
}

type mockRecorder struct {
	logs []models.ActivityLog
}

func (m *mockRecorder) Record(log models.ActivityLog) {
	m.logs = append(m.logs, log)
}

func testAuthConfig() AuthConfig {
	return AuthConfig{Secret: "secret", Lifetime: time.Hour, Issuer: "uniportal"}
}

func studentUser(t *testing.T, password string) *models.UserWithProfile {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	profileID := "stu-1"
	return &models.UserWithProfile{
		User: models.User{
			ID:           "u1",
			Username:     "jdoe",
			Email:        "jdoe@example.edu",
			PasswordHash: string(hash),
			FullName:     "Jordan Doe",
			Role:         models.RoleStudent,
			Active:       true,
		},
		StudentID: &profileID,
	}
}

func TestAuthServiceLoginSuccess(t *testing.T) {
	repo := &mockAuthRepo{user: studentUser(t, "password123")}
	recorder := &mockRecorder{}
	svc := NewAuthService(repo, &mockSessionStore{}, recorder, validator.New(), zap.NewNop(), testAuthConfig())

	res, err := svc.Login(context.Background(), models.LoginRequest{Username: "jdoe", Password: "password123"})
	require.NoError(t, err)
	assert.NotEmpty(t, res.SessionToken)
	assert.Equal(t, models.RoleStudent, res.User.Role)
	require.NotNil(t, res.User.ProfileID)
	assert.Equal(t, "stu-1", *res.User.ProfileID)
	assert.True(t, repo.lastLoginUpdated)
	require.Len(t, recorder.logs, 1)
	assert.Equal(t, models.ActivityLogin, recorder.logs[0].Action)
}

func TestAuthServiceLoginBadCredentialsIdentical(t *testing.T) {
	repo := &mockAuthRepo{user: studentUser(t, "password123")}
	svc := NewAuthService(repo, &mockSessionStore{}, nil, validator.New(), zap.NewNop(), testAuthConfig())

	_, wrongPassword := svc.Login(context.Background(), models.LoginRequest{Username: "jdoe", Password: "wrong-password"})
	_, unknownUser := svc.Login(context.Background(), models.LoginRequest{Username: "nobody", Password: "password123"})

	require.Error(t, wrongPassword)
	require.Error(t, unknownUser)
	assert.Equal(t, wrongPassword, unknownUser)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErrors.FromError(wrongPassword).Code)
}

func TestAuthServiceLoginInactive(t *testing.T) {
	user := studentUser(t, "password123")
	user.Active = false
	svc := NewAuthService(&mockAuthRepo{user: user}, &mockSessionStore{}, nil, validator.New(), zap.NewNop(), testAuthConfig())

	_, err := svc.Login(context.Background(), models.LoginRequest{Username: "jdoe", Password: "password123"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInactiveAccount.Code, appErrors.FromError(err).Code)
}

func TestAuthServiceValidateSession(t *testing.T) {
	repo := &mockAuthRepo{user: studentUser(t, "password123")}
	svc := NewAuthService(repo, &mockSessionStore{}, nil, validator.New(), zap.NewNop(), testAuthConfig())

	res, err := svc.Login(context.Background(), models.LoginRequest{Username: "jdoe", Password: "password123"})
	require.NoError(t, err)

	claims, err := svc.ValidateSession(context.Background(), res.SessionToken)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
	assert.Equal(t, models.RoleStudent, claims.Role)
	assert.NotEmpty(t, claims.ID)
}

func TestAuthServiceLogoutRevokesSession(t *testing.T) {
	repo := &mockAuthRepo{user: studentUser(t, "password123")}
	store := &mockSessionStore{}
	svc := NewAuthService(repo, store, nil, validator.New(), zap.NewNop(), testAuthConfig())

	res, err := svc.Login(context.Background(), models.LoginRequest{Username: "jdoe", Password: "password123"})
	require.NoError(t, err)

	claims, err := svc.ValidateSession(context.Background(), res.SessionToken)
	require.NoError(t, err)

	require.NoError(t, svc.Logout(context.Background(), claims, "127.0.0.1", "test"))

	_, err = svc.ValidateSession(context.Background(), res.SessionToken)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)
}

func TestAuthServiceValidateSessionBadSignature(t *testing.T) {
	repo := &mockAuthRepo{user: studentUser(t, "password123")}
	issuer := NewAuthService(repo, &mockSessionStore{}, nil, validator.New(), zap.NewNop(), AuthConfig{Secret: "other-secret", Lifetime: time.Hour, Issuer: "uniportal"})
	verifier := NewAuthService(repo, &mockSessionStore{}, nil, validator.New(), zap.NewNop(), testAuthConfig())

	res, err := issuer.Login(context.Background(), models.LoginRequest{Username: "jdoe", Password: "password123"})
	require.NoError(t, err)

	_, err = verifier.ValidateSession(context.Background(), res.SessionToken)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)
}

func TestAuthServiceChangePassword(t *testing.T) {
	repo := &mockAuthRepo{user: studentUser(t, "old-password")}
	svc := NewAuthService(repo, &mockSessionStore{}, nil, validator.New(), zap.NewNop(), testAuthConfig())

	err := svc.ChangePassword(context.Background(), "u1", models.ChangePasswordRequest{OldPassword: "old-password", NewPassword: "new-password"})
	require.NoError(t, err)
	assert.NotEmpty(t, repo.updatedHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(repo.updatedHash), []byte("new-password")))
}

func TestAuthServiceChangePasswordWrongOld(t *testing.T) {
	repo := &mockAuthRepo{user: studentUser(t, "old-password")}
	svc := NewAuthService(repo, &mockSessionStore{}, nil, validator.New(), zap.NewNop(), testAuthConfig())

	err := svc.ChangePassword(context.Background(), "u1", models.ChangePasswordRequest{OldPassword: "not-it", NewPassword: "new-password"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
	assert.Empty(t, repo.updatedHash)
}
