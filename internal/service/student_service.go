package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/campushq/uniportal-api/internal/models"
	appErrors "github.com/campushq/uniportal-api/pkg/errors"
)

type studentRepository interface {
	List(ctx context.Context, filter models.StudentFilter) ([]models.StudentDetail, int, error)
	FindByID(ctx context.Context, id string) (*models.StudentDetail, error)
	ExistsByRegistrationNo(ctx context.Context, regNo string, excludeID string) (bool, error)
	CreateWithUser(ctx context.Context, user *models.User, student *models.Student) error
	Update(ctx context.Context, student *models.Student) error
	DeleteWithUser(ctx context.Context, id string) error
}

type usernameChecker interface {
	ExistsByUsername(ctx context.Context, username string) (bool, error)
}

// CreateStudentRequest holds the combined credential + profile payload.
type CreateStudentRequest struct {
	Username       string    `json:"username" validate:"required,min=3"`
	Email          string    `json:"email" validate:"required,email"`
	Password       string    `json:"password" validate:"required,min=8"`
	FullName       string    `json:"full_name" validate:"required"`
	RegistrationNo string    `json:"registration_no" validate:"required"`
	Department     string    `json:"department" validate:"required"`
	Program        string    `json:"program" validate:"required"`
	AdmissionDate  time.Time `json:"admission_date" validate:"required"`
	Phone          string    `json:"phone"`
	Address        string    `json:"address"`
}

// UpdateStudentRequest holds profile attributes; credentials move
// through the auth service.
type UpdateStudentRequest struct {
	RegistrationNo string    `json:"registration_no" validate:"required"`
	Department     string    `json:"department" validate:"required"`
	Program        string    `json:"program" validate:"required"`
	AdmissionDate  time.Time `json:"admission_date" validate:"required"`
	Phone          string    `json:"phone"`
	Address        string    `json:"address"`
}

// StudentService handles student profile lifecycle. Create and Delete
// pair the profile with its credential record atomically.
type StudentService struct {
	repo      studentRepository
	users     usernameChecker
	activity  activityRecorder
	validator *validator.Validate
	logger    *zap.Logger
}

// NewStudentService constructs the student service.
func NewStudentService(repo studentRepository, users usernameChecker, activity activityRecorder, validate *validator.Validate, logger *zap.Logger) *StudentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StudentService{repo: repo, users: users, activity: activity, validator: validate, logger: logger}
}

// List returns students and pagination metadata.
func (s *StudentService) List(ctx context.Context, filter models.StudentFilter) ([]models.StudentDetail, *models.Pagination, error) {
	students, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list students")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 20
	}
	pagination := &models.Pagination{Page: page, PageSize: size, TotalCount: total}
	return students, pagination, nil
}

// Get returns detailed student information.
func (s *StudentService) Get(ctx context.Context, id string) (*models.StudentDetail, error) {
	student, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	return student, nil
}

// Create registers a student together with their credential record in
// one transaction; a failure leaves neither row behind.
func (s *StudentService) Create(ctx context.Context, req CreateStudentRequest, createdBy string) (*models.StudentDetail, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid student payload")
	}

	taken, err := s.users.ExistsByUsername(ctx, req.Username)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to validate username")
	}
	if taken {
		return nil, appErrors.Clone(appErrors.ErrConflict, "username already used")
	}

	exists, err := s.repo.ExistsByRegistrationNo(ctx, req.RegistrationNo, "")
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to validate registration no")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "registration no already used")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash password")
	}

	user := &models.User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: string(hash),
		FullName:     req.FullName,
		Role:         models.RoleStudent,
		Active:       true,
	}
	student := &models.Student{
		RegistrationNo: req.RegistrationNo,
		Department:     req.Department,
		Program:        req.Program,
		AdmissionDate:  req.AdmissionDate,
		Phone:          req.Phone,
		Address:        req.Address,
	}

	if err := s.repo.CreateWithUser(ctx, user, student); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create student")
	}

	if s.activity != nil {
		s.activity.Record(models.ActivityLog{UserID: &createdBy, Action: models.ActivityCreate, Resource: "student", ResourceID: &student.ID})
	}

	return &models.StudentDetail{
		Student:  *student,
		Username: user.Username,
		Email:    user.Email,
		FullName: user.FullName,
		Active:   user.Active,
	}, nil
}

// Update modifies a student's profile attributes.
func (s *StudentService) Update(ctx context.Context, id string, req UpdateStudentRequest) (*models.StudentDetail, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid student payload")
	}

	detail, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}

	exists, err := s.repo.ExistsByRegistrationNo(ctx, req.RegistrationNo, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to validate registration no")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "registration no already used")
	}

	student := detail.Student
	student.RegistrationNo = req.RegistrationNo
	student.Department = req.Department
	student.Program = req.Program
	student.AdmissionDate = req.AdmissionDate
	student.Phone = req.Phone
	student.Address = req.Address

	if err := s.repo.Update(ctx, &student); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update student")
	}

	detail.Student = student
	return detail, nil
}

// Delete removes the student profile and its credential record in one
// transaction.
func (s *StudentService) Delete(ctx context.Context, id string, deletedBy string) error {
	if err := s.repo.DeleteWithUser(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete student")
	}
	if s.activity != nil {
		s.activity.Record(models.ActivityLog{UserID: &deletedBy, Action: models.ActivityDelete, Resource: "student", ResourceID: &id})
	}
	return nil
}
