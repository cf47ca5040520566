package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/lms-api/internal/models"
	appErrors "github.com/noah-isme/lms-api/pkg/errors"
)

type teachingScheduleRepository interface {
	FindByID(ctx context.Context, id string) (*models.TeachingSchedule, error)
	List(ctx context.Context, filter models.TeachingScheduleFilter) ([]models.TeachingSchedule, error)
	ListByInstructorOnDay(ctx context.Context, instructorID string, dayStart, dayEnd time.Time) ([]models.TeachingSchedule, error)
	Create(ctx context.Context, schedule *models.TeachingSchedule) error
	Update(ctx context.Context, schedule *models.TeachingSchedule) error
	UpdateStatus(ctx context.Context, id string, status models.ScheduleStatus) error
	UpdateRecordingURL(ctx context.Context, id, recordingURL string) error
	Delete(ctx context.Context, id string) error
}

type scheduleClassRepository interface {
	FindByID(ctx context.Context, id string) (*models.AcademicClass, error)
}

type scheduleAssignmentRepository interface {
	FindByID(ctx context.Context, id string) (*models.AcademicClassInstructor, error)
}

type scheduleCourseRepository interface {
	FindByID(ctx context.Context, id string) (*models.AcademicClassCourse, error)
}

type scheduleAttendanceReader interface {
	ListBySchedule(ctx context.Context, scheduleID string) ([]models.SessionAttendance, error)
}

type scheduleStudentReader interface {
	FindByID(ctx context.Context, id string) (*models.StudentAcademic, error)
}

// scheduleNotifier fans schedule lifecycle events out to the enrolled
// students. Failures are the notifier's problem; callers treat delivery
// as best effort.
type scheduleNotifier interface {
	NotifyScheduleCreated(ctx context.Context, schedule *models.TeachingSchedule, notifyAt *time.Time) error
	NotifyScheduleUpdated(ctx context.Context, schedule *models.TeachingSchedule) error
	NotifyScheduleCancelled(ctx context.Context, schedule *models.TeachingSchedule) error
}

// CreateTeachingScheduleRequest describes payload for creating a schedule.
// Status defaults to scheduled; a notification time defers the class
// announcement emails until then.
type CreateTeachingScheduleRequest struct {
	AcademicClassID           string                 `json:"academic_class_id" validate:"required"`
	AcademicClassInstructorID string                 `json:"academic_class_instructor_id" validate:"required"`
	AcademicClassCourseID     *string                `json:"academic_class_course_id"`
	Title                     string                 `json:"title" validate:"required"`
	Description               *string                `json:"description"`
	StartTime                 time.Time              `json:"start_time" validate:"required"`
	EndTime                   time.Time              `json:"end_time" validate:"required"`
	MeetingLink               *string                `json:"meeting_link" validate:"omitempty,url"`
	MeetingID                 *string                `json:"meeting_id"`
	MeetingPassword           *string                `json:"meeting_password"`
	Status                    *models.ScheduleStatus `json:"status"`
	IsRecurring               bool                   `json:"is_recurring"`
	RecurringPattern          models.RawJSON         `json:"recurring_pattern"`
	NotificationTime          *time.Time             `json:"notification_time"`
}

// UpdateTeachingScheduleRequest updates an existing schedule. The class
// and instructor assignment are fixed at creation.
type UpdateTeachingScheduleRequest struct {
	AcademicClassCourseID *string        `json:"academic_class_course_id"`
	Title                 string         `json:"title" validate:"required"`
	Description           *string        `json:"description"`
	StartTime             time.Time      `json:"start_time" validate:"required"`
	EndTime               time.Time      `json:"end_time" validate:"required"`
	MeetingLink           *string        `json:"meeting_link" validate:"omitempty,url"`
	MeetingID             *string        `json:"meeting_id"`
	MeetingPassword       *string        `json:"meeting_password"`
	IsRecurring           bool           `json:"is_recurring"`
	RecurringPattern      models.RawJSON `json:"recurring_pattern"`
}

// TeachingScheduleService coordinates teaching session lifecycle logic.
type TeachingScheduleService struct {
	repo        teachingScheduleRepository
	classes     scheduleClassRepository
	assignments scheduleAssignmentRepository
	courses     scheduleCourseRepository
	attendances scheduleAttendanceReader
	students    scheduleStudentReader
	notifier    scheduleNotifier
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewTeachingScheduleService instantiates TeachingScheduleService. The
// notifier may be nil, in which case lifecycle events are not announced.
func NewTeachingScheduleService(
	repo teachingScheduleRepository,
	classes scheduleClassRepository,
	assignments scheduleAssignmentRepository,
	courses scheduleCourseRepository,
	attendances scheduleAttendanceReader,
	students scheduleStudentReader,
	notifier scheduleNotifier,
	validate *validator.Validate,
	logger *zap.Logger,
) *TeachingScheduleService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TeachingScheduleService{
		repo:        repo,
		classes:     classes,
		assignments: assignments,
		courses:     courses,
		attendances: attendances,
		students:    students,
		notifier:    notifier,
		validator:   validate,
		logger:      logger,
	}
}

// List returns schedules matching the filter, each enriched with its
// attendance records.
func (s *TeachingScheduleService) List(ctx context.Context, filter models.TeachingScheduleFilter) ([]models.TeachingScheduleDetail, error) {
	schedules, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list teaching schedules")
	}
	details := make([]models.TeachingScheduleDetail, 0, len(schedules))
	for _, schedule := range schedules {
		attendances, err := s.attendances.ListBySchedule(ctx, schedule.ID)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load schedule attendances")
		}
		details = append(details, models.TeachingScheduleDetail{TeachingSchedule: schedule, Attendances: attendances})
	}
	return details, nil
}

// ListByInstructor returns every schedule taught by the given instructor,
// across all of their class assignments.
func (s *TeachingScheduleService) ListByInstructor(ctx context.Context, instructorID string) ([]models.TeachingScheduleDetail, error) {
	return s.List(ctx, models.TeachingScheduleFilter{InstructorID: instructorID})
}

// ListByStudent returns the schedules of the class the student is
// enrolled in.
func (s *TeachingScheduleService) ListByStudent(ctx context.Context, studentAcademicID string) ([]models.TeachingScheduleDetail, error) {
	student, err := s.students.FindByID(ctx, studentAcademicID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student enrollment not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student enrollment")
	}
	return s.List(ctx, models.TeachingScheduleFilter{AcademicClassID: student.ClassID})
}

// Get returns one schedule together with its attendance records.
func (s *TeachingScheduleService) Get(ctx context.Context, id string) (*models.TeachingScheduleDetail, error) {
	schedule, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "teaching schedule not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load teaching schedule")
	}
	attendances, err := s.attendances.ListBySchedule(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load schedule attendances")
	}
	return &models.TeachingScheduleDetail{TeachingSchedule: *schedule, Attendances: attendances}, nil
}

// Create inserts a new schedule after validating the class, assignment,
// course link and time window, then announces it to the class.
func (s *TeachingScheduleService) Create(ctx context.Context, req CreateTeachingScheduleRequest) (*models.TeachingSchedule, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid teaching schedule payload")
	}

	if _, err := s.classes.FindByID(ctx, req.AcademicClassID); err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "academic class not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load academic class")
	}

	assignment, err := s.assignments.FindByID(ctx, req.AcademicClassInstructorID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "class instructor assignment not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load class instructor")
	}
	if assignment.ClassID != req.AcademicClassID {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "class instructor assignment not found")
	}

	if req.AcademicClassCourseID != nil {
		course, err := s.courses.FindByID(ctx, *req.AcademicClassCourseID)
		if err != nil {
			if err == sql.ErrNoRows {
				return nil, appErrors.Clone(appErrors.ErrNotFound, "class course not found")
			}
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load class course")
		}
		if course.ClassID != req.AcademicClassID {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "class course not found")
		}
	}

	pattern, err := normalizeRecurringPattern(req.IsRecurring, req.RecurringPattern)
	if err != nil {
		return nil, err
	}

	status := models.ScheduleStatusScheduled
	if req.Status != nil {
		if !req.Status.Valid() {
			return nil, appErrors.Clone(appErrors.ErrValidation, "invalid schedule status")
		}
		status = *req.Status
	}

	if err := validateScheduleWindow(req.StartTime, req.EndTime); err != nil {
		return nil, err
	}
	if err := s.ensureNoInstructorConflict(ctx, assignment.InstructorID, req.StartTime, req.EndTime, ""); err != nil {
		return nil, err
	}

	schedule := models.TeachingSchedule{
		AcademicClassID:           req.AcademicClassID,
		AcademicClassInstructorID: req.AcademicClassInstructorID,
		AcademicClassCourseID:     req.AcademicClassCourseID,
		Title:                     req.Title,
		Description:               req.Description,
		StartTime:                 req.StartTime,
		EndTime:                   req.EndTime,
		MeetingLink:               req.MeetingLink,
		MeetingID:                 req.MeetingID,
		MeetingPassword:           req.MeetingPassword,
		Status:                    status,
		IsRecurring:               req.IsRecurring,
		RecurringPattern:          pattern,
	}
	if err := s.repo.Create(ctx, &schedule); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create teaching schedule")
	}

	if s.notifier != nil {
		s.announce(ctx, &schedule, func(ctx context.Context, sch *models.TeachingSchedule) error {
			return s.notifier.NotifyScheduleCreated(ctx, sch, req.NotificationTime)
		})
	}
	return &schedule, nil
}

// Update modifies an existing schedule and announces the change.
func (s *TeachingScheduleService) Update(ctx context.Context, id string, req UpdateTeachingScheduleRequest) (*models.TeachingSchedule, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid teaching schedule payload")
	}

	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "teaching schedule not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load teaching schedule")
	}

	if req.AcademicClassCourseID != nil {
		course, err := s.courses.FindByID(ctx, *req.AcademicClassCourseID)
		if err != nil {
			if err == sql.ErrNoRows {
				return nil, appErrors.Clone(appErrors.ErrNotFound, "class course not found")
			}
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load class course")
		}
		if course.ClassID != existing.AcademicClassID {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "class course not found")
		}
	}

	pattern, err := normalizeRecurringPattern(req.IsRecurring, req.RecurringPattern)
	if err != nil {
		return nil, err
	}

	if req.StartTime.Compare(req.EndTime) >= 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "start time must be before end time")
	}

	assignment, err := s.assignments.FindByID(ctx, existing.AcademicClassInstructorID)
	if err != nil && err != sql.ErrNoRows {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load class instructor")
	}
	if assignment != nil {
		if err := s.ensureNoInstructorConflict(ctx, assignment.InstructorID, req.StartTime, req.EndTime, existing.ID); err != nil {
			return nil, err
		}
	}

	updated := *existing
	updated.AcademicClassCourseID = req.AcademicClassCourseID
	updated.Title = req.Title
	updated.Description = req.Description
	updated.StartTime = req.StartTime
	updated.EndTime = req.EndTime
	updated.MeetingLink = req.MeetingLink
	updated.MeetingID = req.MeetingID
	updated.MeetingPassword = req.MeetingPassword
	updated.IsRecurring = req.IsRecurring
	updated.RecurringPattern = pattern

	if err := s.repo.Update(ctx, &updated); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update teaching schedule")
	}

	if s.notifier != nil {
		s.announce(ctx, &updated, s.notifier.NotifyScheduleUpdated)
	}
	return &updated, nil
}

// UpdateStatus transitions the schedule lifecycle. A scheduled session
// may complete or cancel; completed and cancelled are final. Cancelling
// announces the cancellation to the class.
func (s *TeachingScheduleService) UpdateStatus(ctx context.Context, id string, status models.ScheduleStatus) (*models.TeachingSchedule, error) {
	if !status.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "invalid schedule status")
	}

	schedule, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "teaching schedule not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load teaching schedule")
	}
	if schedule.Status != models.ScheduleStatusScheduled || status == models.ScheduleStatusScheduled {
		return nil, appErrors.Clone(appErrors.ErrValidation,
			fmt.Sprintf("cannot change schedule status from %s to %s", schedule.Status, status))
	}

	if err := s.repo.UpdateStatus(ctx, id, status); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update schedule status")
	}
	schedule.Status = status

	if status == models.ScheduleStatusCancelled {
		if s.notifier != nil {
			s.announce(ctx, schedule, s.notifier.NotifyScheduleCancelled)
		}
	}
	return schedule, nil
}

// AttachRecording stores the recording link for a finished session.
func (s *TeachingScheduleService) AttachRecording(ctx context.Context, id, recordingURL string) (*models.TeachingSchedule, error) {
	if recordingURL == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "recording url is required")
	}
	schedule, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "teaching schedule not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load teaching schedule")
	}
	if err := s.repo.UpdateRecordingURL(ctx, id, recordingURL); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to attach recording")
	}
	schedule.RecordingURL = &recordingURL
	return schedule, nil
}

// Delete removes a schedule and its attendance records.
func (s *TeachingScheduleService) Delete(ctx context.Context, id string) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if err == sql.ErrNoRows {
			return appErrors.Clone(appErrors.ErrNotFound, "teaching schedule not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load teaching schedule")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete teaching schedule")
	}
	return nil
}

func (s *TeachingScheduleService) ensureNoInstructorConflict(ctx context.Context, instructorID string, start, end time.Time, excludeID string) error {
	dayStart := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, start.Location())
	dayEnd := dayStart.Add(24 * time.Hour)

	others, err := s.repo.ListByInstructorOnDay(ctx, instructorID, dayStart, dayEnd)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check schedule conflicts")
	}
	for _, other := range others {
		if other.ID == excludeID {
			continue
		}
		if start.Before(other.EndTime) && end.After(other.StartTime) {
			return appErrors.Clone(appErrors.ErrConflict, "instructor already has a session in this time range")
		}
	}
	return nil
}

// announce delivers a lifecycle notification. Delivery failures never
// fail the originating operation.
func (s *TeachingScheduleService) announce(ctx context.Context, schedule *models.TeachingSchedule, notify func(context.Context, *models.TeachingSchedule) error) {
	if err := notify(ctx, schedule); err != nil {
		s.logger.Warn("schedule notification failed",
			zap.String("schedule_id", schedule.ID),
			zap.Error(err))
	}
}

func validateScheduleWindow(start, end time.Time) error {
	if start.Compare(end) >= 0 {
		return appErrors.Clone(appErrors.ErrValidation, "start time must be before end time")
	}
	if end.Before(time.Now()) {
		return appErrors.Clone(appErrors.ErrValidation, "schedule cannot be in the past")
	}
	return nil
}

func normalizeRecurringPattern(isRecurring bool, pattern models.RawJSON) (models.RawJSON, error) {
	if len(pattern) == 0 {
		if isRecurring {
			return nil, appErrors.Clone(appErrors.ErrValidation, "recurring pattern is required for recurring schedules")
		}
		return nil, nil
	}
	if !json.Valid([]byte(pattern)) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "invalid recurring pattern format")
	}
	return pattern, nil
}
