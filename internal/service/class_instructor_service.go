package service

import (
	"context"
	"database/sql"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/lms-api/internal/models"
	appErrors "github.com/noah-isme/lms-api/pkg/errors"
)

type classInstructorRepository interface {
	FindByID(ctx context.Context, id string) (*models.AcademicClassInstructor, error)
	ListByClass(ctx context.Context, classID string) ([]models.AcademicClassInstructorDetail, error)
	ListByInstructor(ctx context.Context, instructorID string) ([]models.AcademicClassInstructorDetail, error)
	Exists(ctx context.Context, classID, instructorID, excludeID string) (bool, error)
	Create(ctx context.Context, assignment *models.AcademicClassInstructor) error
	Update(ctx context.Context, assignment *models.AcademicClassInstructor) error
	Delete(ctx context.Context, id string) error
}

type instructorUserReader interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
}

type assignmentScheduleCounter interface {
	CountByAssignment(ctx context.Context, assignmentID string) (int, error)
}

// AssignInstructorsRequest replaces the instructor set of one class.
type AssignInstructorsRequest struct {
	InstructorIDs []string `json:"instructor_ids" validate:"required,min=1,dive,required"`
}

// UpdateClassInstructorRequest re-points an assignment at another instructor.
type UpdateClassInstructorRequest struct {
	InstructorID string `json:"instructor_id" validate:"required"`
}

// ClassInstructorService manages which instructors teach which classes.
type ClassInstructorService struct {
	repo      classInstructorRepository
	classes   scheduleClassRepository
	users     instructorUserReader
	schedules assignmentScheduleCounter
	validator *validator.Validate
	logger    *zap.Logger
}

// NewClassInstructorService instantiates ClassInstructorService.
func NewClassInstructorService(
	repo classInstructorRepository,
	classes scheduleClassRepository,
	users instructorUserReader,
	schedules assignmentScheduleCounter,
	validate *validator.Validate,
	logger *zap.Logger,
) *ClassInstructorService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ClassInstructorService{
		repo:      repo,
		classes:   classes,
		users:     users,
		schedules: schedules,
		validator: validate,
		logger:    logger,
	}
}

// Get returns a single assignment.
func (s *ClassInstructorService) Get(ctx context.Context, id string) (*models.AcademicClassInstructor, error) {
	assignment, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "instructor assignment not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load instructor assignment")
	}
	return assignment, nil
}

// ListByClass returns the instructors assigned to one class.
func (s *ClassInstructorService) ListByClass(ctx context.Context, classID string) ([]models.AcademicClassInstructorDetail, error) {
	if _, err := s.classes.FindByID(ctx, classID); err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "academic class not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load academic class")
	}
	assignments, err := s.repo.ListByClass(ctx, classID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list class instructors")
	}
	return assignments, nil
}

// ListByInstructor returns every class an instructor is assigned to.
func (s *ClassInstructorService) ListByInstructor(ctx context.Context, instructorID string) ([]models.AcademicClassInstructorDetail, error) {
	assignments, err := s.repo.ListByInstructor(ctx, instructorID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list instructor assignments")
	}
	return assignments, nil
}

// Assign reconciles the class's instructor set against the requested
// ids: missing assignments are created, surplus ones removed. An
// assignment with dependent teaching schedules cannot be removed.
func (s *ClassInstructorService) Assign(ctx context.Context, classID string, req AssignInstructorsRequest) ([]models.AcademicClassInstructorDetail, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid instructor assignment payload")
	}
	if _, err := s.classes.FindByID(ctx, classID); err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "academic class not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load academic class")
	}

	requested := make(map[string]struct{}, len(req.InstructorIDs))
	for _, instructorID := range req.InstructorIDs {
		if _, seen := requested[instructorID]; seen {
			continue
		}
		if err := s.ensureInstructor(ctx, instructorID); err != nil {
			return nil, err
		}
		requested[instructorID] = struct{}{}
	}

	current, err := s.repo.ListByClass(ctx, classID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list class instructors")
	}
	existing := make(map[string]string, len(current))
	for _, assignment := range current {
		existing[assignment.InstructorID] = assignment.ID
	}

	// Check every removal candidate before deleting anything, so a
	// blocked candidate leaves the assignment set unchanged.
	var removals []string
	for _, assignment := range current {
		if _, keep := requested[assignment.InstructorID]; keep {
			continue
		}
		count, err := s.schedules.CountByAssignment(ctx, assignment.ID)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count assignment schedules")
		}
		if count > 0 {
			return nil, appErrors.Clone(appErrors.ErrConflict, "instructor has teaching schedules in this class")
		}
		removals = append(removals, assignment.ID)
	}
	for _, assignmentID := range removals {
		if err := s.repo.Delete(ctx, assignmentID); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to remove class instructor")
		}
	}

	for instructorID := range requested {
		if _, ok := existing[instructorID]; ok {
			continue
		}
		assignment := models.AcademicClassInstructor{ClassID: classID, InstructorID: instructorID}
		if err := s.repo.Create(ctx, &assignment); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to assign class instructor")
		}
	}

	assignments, err := s.repo.ListByClass(ctx, classID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list class instructors")
	}
	return assignments, nil
}

// Update re-points one assignment at another instructor.
func (s *ClassInstructorService) Update(ctx context.Context, id string, req UpdateClassInstructorRequest) (*models.AcademicClassInstructor, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid instructor assignment payload")
	}

	assignment, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "class instructor assignment not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load class instructor")
	}
	if err := s.ensureInstructor(ctx, req.InstructorID); err != nil {
		return nil, err
	}

	duplicate, err := s.repo.Exists(ctx, assignment.ClassID, req.InstructorID, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check class instructor")
	}
	if duplicate {
		return nil, appErrors.Clone(appErrors.ErrConflict, "instructor is already assigned to this class")
	}

	assignment.InstructorID = req.InstructorID
	if err := s.repo.Update(ctx, assignment); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update class instructor")
	}
	return assignment, nil
}

// Remove deletes one assignment unless teaching schedules depend on it.
func (s *ClassInstructorService) Remove(ctx context.Context, id string) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if err == sql.ErrNoRows {
			return appErrors.Clone(appErrors.ErrNotFound, "class instructor assignment not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load class instructor")
	}
	count, err := s.schedules.CountByAssignment(ctx, id)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count assignment schedules")
	}
	if count > 0 {
		return appErrors.Clone(appErrors.ErrConflict, "instructor has teaching schedules in this class")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to remove class instructor")
	}
	return nil
}

func (s *ClassInstructorService) ensureInstructor(ctx context.Context, instructorID string) error {
	user, err := s.users.FindByID(ctx, instructorID)
	if err != nil {
		if err == sql.ErrNoRows {
			return appErrors.Clone(appErrors.ErrNotFound, "instructor not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load instructor")
	}
	if user.Role != models.RoleInstructor {
		return appErrors.Clone(appErrors.ErrValidation, "user is not an instructor")
	}
	return nil
}
