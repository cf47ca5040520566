package service

import (
	"context"
	"database/sql"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/lms-api/internal/models"
	appErrors "github.com/noah-isme/lms-api/pkg/errors"
)

type academicClassRepository interface {
	FindByID(ctx context.Context, id string) (*models.AcademicClass, error)
	List(ctx context.Context, filter models.AcademicClassFilter) ([]models.AcademicClass, int, error)
	ExistsByCode(ctx context.Context, code, excludeID string) (bool, error)
	Create(ctx context.Context, class *models.AcademicClass) error
	Update(ctx context.Context, class *models.AcademicClass) error
	Delete(ctx context.Context, id string) error
}

type classCourseReader interface {
	ListByClass(ctx context.Context, classID string) ([]models.AcademicClassCourse, error)
}

// CreateAcademicClassRequest describes payload for creating a class.
type CreateAcademicClassRequest struct {
	ClassCode string `json:"class_code" validate:"required"`
	ClassName string `json:"class_name" validate:"required"`
	Semester  string `json:"semester" validate:"required"`
}

// UpdateAcademicClassRequest updates an existing class.
type UpdateAcademicClassRequest struct {
	ClassCode string                     `json:"class_code" validate:"required"`
	ClassName string                     `json:"class_name" validate:"required"`
	Semester  string                     `json:"semester" validate:"required"`
	Status    models.AcademicClassStatus `json:"status" validate:"required"`
}

// AcademicClassService manages the academic class catalogue.
type AcademicClassService struct {
	repo      academicClassRepository
	courses   classCourseReader
	validator *validator.Validate
	logger    *zap.Logger
}

// NewAcademicClassService instantiates AcademicClassService.
func NewAcademicClassService(repo academicClassRepository, courses classCourseReader, validate *validator.Validate, logger *zap.Logger) *AcademicClassService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AcademicClassService{repo: repo, courses: courses, validator: validate, logger: logger}
}

// List returns classes with pagination metadata.
func (s *AcademicClassService) List(ctx context.Context, filter models.AcademicClassFilter) ([]models.AcademicClass, *models.Pagination, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 || filter.PageSize > 100 {
		filter.PageSize = 20
	}
	classes, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list academic classes")
	}
	pagination := &models.Pagination{Page: filter.Page, PageSize: filter.PageSize, TotalCount: total}
	return classes, pagination, nil
}

// Get returns one class.
func (s *AcademicClassService) Get(ctx context.Context, id string) (*models.AcademicClass, error) {
	class, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "academic class not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load academic class")
	}
	return class, nil
}

// ListCourses returns the courses linked to one class.
func (s *AcademicClassService) ListCourses(ctx context.Context, classID string) ([]models.AcademicClassCourse, error) {
	if _, err := s.Get(ctx, classID); err != nil {
		return nil, err
	}
	courses, err := s.courses.ListByClass(ctx, classID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list class courses")
	}
	return courses, nil
}

// Create inserts a new class with a unique class code.
func (s *AcademicClassService) Create(ctx context.Context, req CreateAcademicClassRequest) (*models.AcademicClass, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid academic class payload")
	}

	taken, err := s.repo.ExistsByCode(ctx, req.ClassCode, "")
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check class code")
	}
	if taken {
		return nil, appErrors.Clone(appErrors.ErrConflict, "class code is already in use")
	}

	class := models.AcademicClass{
		ClassCode: req.ClassCode,
		ClassName: req.ClassName,
		Semester:  req.Semester,
		Status:    models.ClassStatusActive,
	}
	if err := s.repo.Create(ctx, &class); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create academic class")
	}
	return &class, nil
}

// Update modifies an existing class.
func (s *AcademicClassService) Update(ctx context.Context, id string, req UpdateAcademicClassRequest) (*models.AcademicClass, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid academic class payload")
	}
	if !req.Status.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "invalid class status")
	}

	class, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	taken, err := s.repo.ExistsByCode(ctx, req.ClassCode, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check class code")
	}
	if taken {
		return nil, appErrors.Clone(appErrors.ErrConflict, "class code is already in use")
	}

	class.ClassCode = req.ClassCode
	class.ClassName = req.ClassName
	class.Semester = req.Semester
	class.Status = req.Status
	if err := s.repo.Update(ctx, class); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update academic class")
	}
	return class, nil
}

// Delete removes a class.
func (s *AcademicClassService) Delete(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete academic class")
	}
	return nil
}
