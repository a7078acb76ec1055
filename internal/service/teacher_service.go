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

type teacherRepository interface {
	List(ctx context.Context, filter models.TeacherFilter) ([]models.TeacherDetail, int, error)
	FindByID(ctx context.Context, id string) (*models.TeacherDetail, error)
	ExistsByEmployeeNo(ctx context.Context, empNo string, excludeID string) (bool, error)
	CreateWithUser(ctx context.Context, user *models.User, teacher *models.Teacher) error
	Update(ctx context.Context, teacher *models.Teacher) error
	DeleteWithUser(ctx context.Context, id string) error
}

// CreateTeacherRequest holds the combined credential + profile payload.
type CreateTeacherRequest struct {
	Username    string    `json:"username" validate:"required,min=3"`
	Email       string    `json:"email" validate:"required,email"`
	Password    string    `json:"password" validate:"required,min=8"`
	FullName    string    `json:"full_name" validate:"required"`
	EmployeeNo  string    `json:"employee_no" validate:"required"`
	Department  string    `json:"department" validate:"required"`
	Designation string    `json:"designation" validate:"required"`
	HireDate    time.Time `json:"hire_date" validate:"required"`
	Phone       string    `json:"phone"`
}

// UpdateTeacherRequest holds profile attributes only.
type UpdateTeacherRequest struct {
	EmployeeNo  string    `json:"employee_no" validate:"required"`
	Department  string    `json:"department" validate:"required"`
	Designation string    `json:"designation" validate:"required"`
	HireDate    time.Time `json:"hire_date" validate:"required"`
	Phone       string    `json:"phone"`
}

// TeacherService handles teacher profile lifecycle with the same
// atomic create/delete pairing as students.
type TeacherService struct {
	repo      teacherRepository
	users     usernameChecker
	activity  activityRecorder
	validator *validator.Validate
	logger    *zap.Logger
}

// NewTeacherService constructs the teacher service.
func NewTeacherService(repo teacherRepository, users usernameChecker, activity activityRecorder, validate *validator.Validate, logger *zap.Logger) *TeacherService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TeacherService{repo: repo, users: users, activity: activity, validator: validate, logger: logger}
}

// List returns teachers and pagination metadata.
func (s *TeacherService) List(ctx context.Context, filter models.TeacherFilter) ([]models.TeacherDetail, *models.Pagination, error) {
	teachers, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list teachers")
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
	return teachers, pagination, nil
}

// Get returns detailed teacher information.
func (s *TeacherService) Get(ctx context.Context, id string) (*models.TeacherDetail, error) {
	teacher, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "teacher not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load teacher")
	}
	return teacher, nil
}

// Create registers a teacher together with their credential record in
// one transaction.
func (s *TeacherService) Create(ctx context.Context, req CreateTeacherRequest, createdBy string) (*models.TeacherDetail, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid teacher payload")
	}

	taken, err := s.users.ExistsByUsername(ctx, req.Username)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to validate username")
	}
	if taken {
		return nil, appErrors.Clone(appErrors.ErrConflict, "username already used")
	}

	exists, err := s.repo.ExistsByEmployeeNo(ctx, req.EmployeeNo, "")
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to validate employee no")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "employee no already used")
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
		Role:         models.RoleTeacher,
		Active:       true,
	}
	teacher := &models.Teacher{
		EmployeeNo:  req.EmployeeNo,
		Department:  req.Department,
		Designation: req.Designation,
		HireDate:    req.HireDate,
		Phone:       req.Phone,
	}

	if err := s.repo.CreateWithUser(ctx, user, teacher); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create teacher")
	}

	if s.activity != nil {
		s.activity.Record(models.ActivityLog{UserID: &createdBy, Action: models.ActivityCreate, Resource: "teacher", ResourceID: &teacher.ID})
	}

	return &models.TeacherDetail{
		Teacher:  *teacher,
		Username: user.Username,
		Email:    user.Email,
		FullName: user.FullName,
		Active:   user.Active,
	}, nil
}

// Update modifies a teacher's profile attributes.
func (s *TeacherService) Update(ctx context.Context, id string, req UpdateTeacherRequest) (*models.TeacherDetail, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid teacher payload")
	}

	detail, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "teacher not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load teacher")
	}

	exists, err := s.repo.ExistsByEmployeeNo(ctx, req.EmployeeNo, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to validate employee no")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "employee no already used")
	}

	teacher := detail.Teacher
	teacher.EmployeeNo = req.EmployeeNo
	teacher.Department = req.Department
	teacher.Designation = req.Designation
	teacher.HireDate = req.HireDate
	teacher.Phone = req.Phone

	if err := s.repo.Update(ctx, &teacher); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "teacher not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update teacher")
	}

	detail.Teacher = teacher
	return detail, nil
}

// Delete removes the teacher profile and its credential record in one
// transaction.
func (s *TeacherService) Delete(ctx context.Context, id string, deletedBy string) error {
	if err := s.repo.DeleteWithUser(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "teacher not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete teacher")
	}
	if s.activity != nil {
		s.activity.Record(models.ActivityLog{UserID: &deletedBy, Action: models.ActivityDelete, Resource: "teacher", ResourceID: &id})
	}
	return nil
}
