package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/lms-api/internal/models"
	"github.com/noah-isme/lms-api/internal/repository"
	appErrors "github.com/noah-isme/lms-api/pkg/errors"
	"github.com/noah-isme/lms-api/pkg/export"
)

type sessionAttendanceRepository interface {
	FindByID(ctx context.Context, id string) (*models.SessionAttendance, error)
	FindByScheduleAndStudent(ctx context.Context, scheduleID, studentAcademicID string) (*models.SessionAttendance, error)
	ListBySchedule(ctx context.Context, scheduleID string) ([]models.SessionAttendance, error)
	ListByStudent(ctx context.Context, studentAcademicID string) ([]models.SessionAttendance, error)
	Create(ctx context.Context, attendance *models.SessionAttendance) error
	Update(ctx context.Context, attendance *models.SessionAttendance) error
	Delete(ctx context.Context, id string) error
}

type attendanceScheduleReader interface {
	FindByID(ctx context.Context, id string) (*models.TeachingSchedule, error)
}

type attendanceStudentRepository interface {
	FindByID(ctx context.Context, id string) (*models.StudentAcademic, error)
	ListByClass(ctx context.Context, classID string) ([]models.StudentAcademic, error)
}

type attendanceUserReader interface {
	ListByIDs(ctx context.Context, ids []string) ([]models.User, error)
}

// CreateSessionAttendanceRequest records a student's attendance manually.
// When both join and leave times are given, the duration is derived from
// them.
type CreateSessionAttendanceRequest struct {
	ScheduleID        string                  `json:"schedule_id" validate:"required"`
	StudentAcademicID string                  `json:"student_academic_id" validate:"required"`
	Status            models.AttendanceStatus `json:"status" validate:"required"`
	JoinTime          *time.Time              `json:"join_time"`
	LeaveTime         *time.Time              `json:"leave_time"`
	Notes             *string                 `json:"notes"`
}

// UpdateSessionAttendanceRequest adjusts an existing attendance record.
// Omitted times keep their stored values; the duration is recomputed from
// whatever join and leave times result.
type UpdateSessionAttendanceRequest struct {
	Status    models.AttendanceStatus `json:"status" validate:"required"`
	JoinTime  *time.Time              `json:"join_time"`
	LeaveTime *time.Time              `json:"leave_time"`
	Notes     *string                 `json:"notes"`
}

// ScheduleAttendanceReport combines per-student rows with aggregate stats.
type ScheduleAttendanceReport struct {
	Attendances []models.SessionAttendance     `json:"attendances"`
	Stats       models.ScheduleAttendanceStats `json:"stats"`
}

// ExportResult carries a rendered attendance export.
type ExportResult struct {
	FileName    string
	ContentType string
	Content     []byte
}

// SessionAttendanceService coordinates attendance tracking for sessions.
type SessionAttendanceService struct {
	repo      sessionAttendanceRepository
	schedules attendanceScheduleReader
	students  attendanceStudentRepository
	users     attendanceUserReader
	csv       *export.CSVExporter
	pdf       *export.PDFExporter
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewSessionAttendanceService instantiates SessionAttendanceService.
func NewSessionAttendanceService(
	repo sessionAttendanceRepository,
	schedules attendanceScheduleReader,
	students attendanceStudentRepository,
	users attendanceUserReader,
	validate *validator.Validate,
	logger *zap.Logger,
) *SessionAttendanceService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SessionAttendanceService{
		repo:      repo,
		schedules: schedules,
		students:  students,
		users:     users,
		csv:       export.NewCSVExporter(),
		pdf:       export.NewPDFExporter(),
		validator: validate,
		logger:    logger,
		now:       time.Now,
	}
}

// Create records attendance for one student in one session. The student
// must be enrolled in the schedule's class, and at most one record per
// student and session may exist.
func (s *SessionAttendanceService) Create(ctx context.Context, req CreateSessionAttendanceRequest) (*models.SessionAttendance, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid attendance payload")
	}
	if !req.Status.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "invalid attendance status")
	}

	schedule, err := s.loadSchedule(ctx, req.ScheduleID)
	if err != nil {
		return nil, err
	}
	student, err := s.loadStudent(ctx, req.StudentAcademicID)
	if err != nil {
		return nil, err
	}
	if student.ClassID != schedule.AcademicClassID {
		return nil, appErrors.Clone(appErrors.ErrValidation, "student is not enrolled in this class")
	}

	attendance := models.SessionAttendance{
		ScheduleID:        req.ScheduleID,
		StudentAcademicID: req.StudentAcademicID,
		Status:            req.Status,
		JoinTime:          req.JoinTime,
		LeaveTime:         req.LeaveTime,
		DurationMinutes:   deriveDuration(req.JoinTime, req.LeaveTime),
		Notes:             req.Notes,
	}
	if err := s.repo.Create(ctx, &attendance); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, appErrors.Clone(appErrors.ErrValidation, "attendance already recorded for this student")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create attendance")
	}
	return &attendance, nil
}

// MarkAttendance upserts a student's live attendance at join time. The
// join timestamp is always reset to now and any previous leave data is
// cleared, so rejoining a session restarts the duration clock.
func (s *SessionAttendanceService) MarkAttendance(ctx context.Context, scheduleID, studentAcademicID string, status models.AttendanceStatus) (*models.SessionAttendance, error) {
	if !status.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "invalid attendance status")
	}
	schedule, err := s.loadSchedule(ctx, scheduleID)
	if err != nil {
		return nil, err
	}
	student, err := s.loadStudent(ctx, studentAcademicID)
	if err != nil {
		return nil, err
	}
	if student.ClassID != schedule.AcademicClassID {
		return nil, appErrors.Clone(appErrors.ErrValidation, "student is not enrolled in this class")
	}

	joinTime := s.now().UTC()
	attendance, err := s.repo.FindByScheduleAndStudent(ctx, scheduleID, studentAcademicID)
	if err != nil {
		if err != sql.ErrNoRows {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load attendance")
		}
		created := models.SessionAttendance{
			ScheduleID:        scheduleID,
			StudentAcademicID: studentAcademicID,
			Status:            status,
			JoinTime:          &joinTime,
		}
		if err := s.repo.Create(ctx, &created); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				return nil, appErrors.Clone(appErrors.ErrValidation, "attendance already recorded for this student")
			}
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create attendance")
		}
		return &created, nil
	}

	attendance.Status = status
	attendance.JoinTime = &joinTime
	attendance.LeaveTime = nil
	attendance.DurationMinutes = nil
	if err := s.repo.Update(ctx, attendance); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update attendance")
	}
	return attendance, nil
}

// MarkLeave stamps the leave time and computes the attended duration in
// whole minutes. The student must have joined first.
func (s *SessionAttendanceService) MarkLeave(ctx context.Context, scheduleID, studentAcademicID string) (*models.SessionAttendance, error) {
	attendance, err := s.repo.FindByScheduleAndStudent(ctx, scheduleID, studentAcademicID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "attendance record not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load attendance")
	}
	if attendance.JoinTime == nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "join time has not been recorded")
	}

	leaveTime := s.now().UTC()
	attendance.LeaveTime = &leaveTime
	attendance.DurationMinutes = deriveDuration(attendance.JoinTime, attendance.LeaveTime)
	if err := s.repo.Update(ctx, attendance); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update attendance")
	}
	return attendance, nil
}

// Update adjusts the status, times and notes of an existing record.
func (s *SessionAttendanceService) Update(ctx context.Context, id string, req UpdateSessionAttendanceRequest) (*models.SessionAttendance, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid attendance payload")
	}
	if !req.Status.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "invalid attendance status")
	}

	attendance, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "attendance record not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load attendance")
	}

	attendance.Status = req.Status
	attendance.Notes = req.Notes
	if req.JoinTime != nil {
		attendance.JoinTime = req.JoinTime
	}
	if req.LeaveTime != nil {
		attendance.LeaveTime = req.LeaveTime
	}
	attendance.DurationMinutes = deriveDuration(attendance.JoinTime, attendance.LeaveTime)
	if err := s.repo.Update(ctx, attendance); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update attendance")
	}
	return attendance, nil
}

// Delete removes an attendance record.
func (s *SessionAttendanceService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if err == sql.ErrNoRows {
			return appErrors.Clone(appErrors.ErrNotFound, "attendance record not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete attendance")
	}
	return nil
}

// ScheduleReport returns every record of a session plus aggregate stats.
// TotalStudents counts the recorded rows, so the per-status tallies always
// sum to it.
func (s *SessionAttendanceService) ScheduleReport(ctx context.Context, scheduleID string) (*ScheduleAttendanceReport, error) {
	if _, err := s.loadSchedule(ctx, scheduleID); err != nil {
		return nil, err
	}
	attendances, err := s.repo.ListBySchedule(ctx, scheduleID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list attendances")
	}

	stats := models.ScheduleAttendanceStats{TotalStudents: len(attendances)}
	for _, attendance := range attendances {
		switch attendance.Status {
		case models.AttendancePresent:
			stats.Present++
		case models.AttendanceAbsent:
			stats.Absent++
		case models.AttendanceLate:
			stats.Late++
		case models.AttendanceExcused:
			stats.Excused++
		}
	}
	return &ScheduleAttendanceReport{Attendances: attendances, Stats: stats}, nil
}

// StudentStats aggregates one student's attendance across all sessions.
// Present and late sessions both count toward the percentage.
func (s *SessionAttendanceService) StudentStats(ctx context.Context, studentAcademicID string) (*models.StudentAttendanceStats, error) {
	if _, err := s.loadStudent(ctx, studentAcademicID); err != nil {
		return nil, err
	}
	attendances, err := s.repo.ListByStudent(ctx, studentAcademicID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list attendances")
	}

	stats := models.StudentAttendanceStats{TotalSessions: len(attendances)}
	for _, attendance := range attendances {
		switch attendance.Status {
		case models.AttendancePresent:
			stats.Attended++
		case models.AttendanceAbsent:
			stats.Absent++
		case models.AttendanceLate:
			stats.Late++
		case models.AttendanceExcused:
			stats.Excused++
		}
	}
	if stats.TotalSessions > 0 {
		stats.AttendancePercentage = int(math.Round(float64(stats.Attended+stats.Late) / float64(stats.TotalSessions) * 100))
	}
	return &stats, nil
}

// Get returns a single attendance record.
func (s *SessionAttendanceService) Get(ctx context.Context, id string) (*models.SessionAttendance, error) {
	attendance, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "attendance record not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load attendance")
	}
	return attendance, nil
}

// ListBySchedule returns all attendance rows recorded for a session.
func (s *SessionAttendanceService) ListBySchedule(ctx context.Context, scheduleID string) ([]models.SessionAttendance, error) {
	if _, err := s.loadSchedule(ctx, scheduleID); err != nil {
		return nil, err
	}
	attendances, err := s.repo.ListBySchedule(ctx, scheduleID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list attendances")
	}
	return attendances, nil
}

// ListByStudent returns a student's attendance history.
func (s *SessionAttendanceService) ListByStudent(ctx context.Context, studentAcademicID string) ([]models.SessionAttendance, error) {
	if _, err := s.loadStudent(ctx, studentAcademicID); err != nil {
		return nil, err
	}
	attendances, err := s.repo.ListByStudent(ctx, studentAcademicID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list attendances")
	}
	return attendances, nil
}

// ExportSchedule renders the session's attendance sheet as CSV or PDF.
func (s *SessionAttendanceService) ExportSchedule(ctx context.Context, scheduleID, format string) (*ExportResult, error) {
	schedule, err := s.loadSchedule(ctx, scheduleID)
	if err != nil {
		return nil, err
	}
	attendances, err := s.repo.ListBySchedule(ctx, scheduleID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list attendances")
	}

	enrolled, err := s.students.ListByClass(ctx, schedule.AcademicClassID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list class students")
	}
	studentsByID := make(map[string]models.StudentAcademic, len(enrolled))
	userIDs := make([]string, 0, len(enrolled))
	for _, student := range enrolled {
		studentsByID[student.ID] = student
		userIDs = append(userIDs, student.UserID)
	}
	users, err := s.users.ListByIDs(ctx, userIDs)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student users")
	}
	namesByUserID := make(map[string]string, len(users))
	for _, user := range users {
		namesByUserID[user.ID] = user.FullName
	}

	data := export.Dataset{
		Headers: []string{"Student Code", "Name", "Status", "Join Time", "Leave Time", "Duration (min)", "Notes"},
	}
	for _, attendance := range attendances {
		student := studentsByID[attendance.StudentAcademicID]
		row := []string{
			student.StudentCode,
			namesByUserID[student.UserID],
			string(attendance.Status),
			formatTime(attendance.JoinTime),
			formatTime(attendance.LeaveTime),
			formatDuration(attendance.DurationMinutes),
			stringOrEmpty(attendance.Notes),
		}
		data.Rows = append(data.Rows, row)
	}

	switch format {
	case "csv", "":
		content, err := s.csv.Render(data)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv export")
		}
		return &ExportResult{
			FileName:    fmt.Sprintf("attendance-%s.csv", scheduleID),
			ContentType: "text/csv",
			Content:     content,
		}, nil
	case "pdf":
		content, err := s.pdf.Render(data, "Attendance: "+schedule.Title)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf export")
		}
		return &ExportResult{
			FileName:    fmt.Sprintf("attendance-%s.pdf", scheduleID),
			ContentType: "application/pdf",
			Content:     content,
		}, nil
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, "unsupported export format")
	}
}

func (s *SessionAttendanceService) loadSchedule(ctx context.Context, id string) (*models.TeachingSchedule, error) {
	schedule, err := s.schedules.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "teaching schedule not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load teaching schedule")
	}
	return schedule, nil
}

func (s *SessionAttendanceService) loadStudent(ctx context.Context, id string) (*models.StudentAcademic, error) {
	student, err := s.students.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	return student, nil
}

// deriveDuration computes the attended whole minutes between join and
// leave, rounding to the nearest minute. Either side missing means no
// duration.
func deriveDuration(join, leave *time.Time) *int {
	if join == nil || leave == nil {
		return nil
	}
	minutes := int(math.Round(leave.Sub(*join).Minutes()))
	return &minutes
}

func formatTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(time.RFC3339)
}

func formatDuration(minutes *int) string {
	if minutes == nil {
		return ""
	}
	return fmt.Sprintf("%d", *minutes)
}

func stringOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
