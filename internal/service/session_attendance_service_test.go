package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/lms-api/internal/models"
	"github.com/noah-isme/lms-api/internal/repository"
	appErrors "github.com/noah-isme/lms-api/pkg/errors"
)

type attendanceRepoStub struct {
	byID        map[string]*models.SessionAttendance
	byPair      map[string]*models.SessionAttendance
	byStudent   []models.SessionAttendance
	bySchedule  []models.SessionAttendance
	created     []*models.SessionAttendance
	updated     []*models.SessionAttendance
	createErr   error
	nextCreated string
}

func pairKey(scheduleID, studentAcademicID string) string {
	return scheduleID + ":" + studentAcademicID
}

func (s *attendanceRepoStub) FindByID(ctx context.Context, id string) (*models.SessionAttendance, error) {
	if attendance, ok := s.byID[id]; ok {
		cp := *attendance
		return &cp, nil
	}
	return nil, sql.ErrNoRows
}

func (s *attendanceRepoStub) FindByScheduleAndStudent(ctx context.Context, scheduleID, studentAcademicID string) (*models.SessionAttendance, error) {
	if attendance, ok := s.byPair[pairKey(scheduleID, studentAcademicID)]; ok {
		cp := *attendance
		return &cp, nil
	}
	return nil, sql.ErrNoRows
}

func (s *attendanceRepoStub) ListBySchedule(ctx context.Context, scheduleID string) ([]models.SessionAttendance, error) {
	return s.bySchedule, nil
}

func (s *attendanceRepoStub) ListByStudent(ctx context.Context, studentAcademicID string) ([]models.SessionAttendance, error) {
	return s.byStudent, nil
}

func (s *attendanceRepoStub) Create(ctx context.Context, attendance *models.SessionAttendance) error {
	if s.createErr != nil {
		return s.createErr
	}
	if s.nextCreated != "" {
		attendance.ID = s.nextCreated
	}
	s.created = append(s.created, attendance)
	return nil
}

func (s *attendanceRepoStub) Update(ctx context.Context, attendance *models.SessionAttendance) error {
	s.updated = append(s.updated, attendance)
	return nil
}

func (s *attendanceRepoStub) Delete(ctx context.Context, id string) error {
	if _, ok := s.byID[id]; !ok {
		return sql.ErrNoRows
	}
	delete(s.byID, id)
	return nil
}

type studentRepoStub struct {
	items map[string]*models.StudentAcademic
}

func (s *studentRepoStub) FindByID(ctx context.Context, id string) (*models.StudentAcademic, error) {
	if student, ok := s.items[id]; ok {
		cp := *student
		return &cp, nil
	}
	return nil, sql.ErrNoRows
}

func (s *studentRepoStub) ListByClass(ctx context.Context, classID string) ([]models.StudentAcademic, error) {
	var students []models.StudentAcademic
	for _, student := range s.items {
		if student.ClassID == classID {
			students = append(students, *student)
		}
	}
	return students, nil
}

type userReaderStub struct {
	users []models.User
}

func (s *userReaderStub) ListByIDs(ctx context.Context, ids []string) ([]models.User, error) {
	return s.users, nil
}

func newAttendanceFixture() (*attendanceRepoStub, *SessionAttendanceService) {
	repo := &attendanceRepoStub{
		byID:   map[string]*models.SessionAttendance{},
		byPair: map[string]*models.SessionAttendance{},
	}
	schedules := &scheduleRepoStub{items: map[string]*models.TeachingSchedule{
		"sched-1": {ID: "sched-1", AcademicClassID: "class-1", Title: "Week 1"},
	}}
	students := &studentRepoStub{items: map[string]*models.StudentAcademic{
		"student-1": {ID: "student-1", UserID: "user-1", ClassID: "class-1", StudentCode: "S001"},
		"student-2": {ID: "student-2", UserID: "user-2", ClassID: "class-other", StudentCode: "S002"},
	}}
	users := &userReaderStub{users: []models.User{
		{ID: "user-1", FullName: "Student One", Email: "one@example.com"},
	}}
	svc := NewSessionAttendanceService(repo, schedules, students, users, nil, nil)
	return repo, svc
}

func TestSessionAttendanceServiceCreate(t *testing.T) {
	repo, svc := newAttendanceFixture()

	attendance, err := svc.Create(context.Background(), CreateSessionAttendanceRequest{
		ScheduleID:        "sched-1",
		StudentAcademicID: "student-1",
		Status:            models.AttendanceAbsent,
	})
	require.NoError(t, err)
	assert.Equal(t, models.AttendanceAbsent, attendance.Status)
	assert.Len(t, repo.created, 1)
}

func TestSessionAttendanceServiceCreateDerivesDuration(t *testing.T) {
	_, svc := newAttendanceFixture()
	join := time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC)
	leave := time.Date(2026, 3, 10, 10, 25, 30, 0, time.UTC)

	attendance, err := svc.Create(context.Background(), CreateSessionAttendanceRequest{
		ScheduleID:        "sched-1",
		StudentAcademicID: "student-1",
		Status:            models.AttendancePresent,
		JoinTime:          &join,
		LeaveTime:         &leave,
	})
	require.NoError(t, err)
	require.NotNil(t, attendance.DurationMinutes)
	assert.Equal(t, 26, *attendance.DurationMinutes)
}

func TestSessionAttendanceServiceCreateWithoutTimesLeavesDurationNil(t *testing.T) {
	_, svc := newAttendanceFixture()
	join := time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC)

	attendance, err := svc.Create(context.Background(), CreateSessionAttendanceRequest{
		ScheduleID:        "sched-1",
		StudentAcademicID: "student-1",
		Status:            models.AttendancePresent,
		JoinTime:          &join,
	})
	require.NoError(t, err)
	assert.Nil(t, attendance.DurationMinutes)
}

func TestSessionAttendanceServiceCreateWrongClass(t *testing.T) {
	_, svc := newAttendanceFixture()

	_, err := svc.Create(context.Background(), CreateSessionAttendanceRequest{
		ScheduleID:        "sched-1",
		StudentAcademicID: "student-2",
		Status:            models.AttendancePresent,
	})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
	assert.Equal(t, "student is not enrolled in this class", appErr.Message)
}

func TestSessionAttendanceServiceCreateDuplicate(t *testing.T) {
	repo, svc := newAttendanceFixture()
	repo.createErr = repository.ErrDuplicate

	_, err := svc.Create(context.Background(), CreateSessionAttendanceRequest{
		ScheduleID:        "sched-1",
		StudentAcademicID: "student-1",
		Status:            models.AttendancePresent,
	})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
	assert.Equal(t, "attendance already recorded for this student", appErr.Message)
}

func TestSessionAttendanceServiceMarkAttendanceNew(t *testing.T) {
	repo, svc := newAttendanceFixture()
	fixed := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return fixed }

	attendance, err := svc.MarkAttendance(context.Background(), "sched-1", "student-1", models.AttendancePresent)
	require.NoError(t, err)
	require.NotNil(t, attendance.JoinTime)
	assert.Equal(t, fixed, *attendance.JoinTime)
	assert.Nil(t, attendance.LeaveTime)
	assert.Len(t, repo.created, 1)
}

func TestSessionAttendanceServiceMarkAttendanceRejoinResets(t *testing.T) {
	repo, svc := newAttendanceFixture()
	earlier := time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)
	leave := earlier.Add(30 * time.Minute)
	duration := 30
	repo.byPair[pairKey("sched-1", "student-1")] = &models.SessionAttendance{
		ID:                "att-1",
		ScheduleID:        "sched-1",
		StudentAcademicID: "student-1",
		Status:            models.AttendanceLate,
		JoinTime:          &earlier,
		LeaveTime:         &leave,
		DurationMinutes:   &duration,
	}
	fixed := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return fixed }

	attendance, err := svc.MarkAttendance(context.Background(), "sched-1", "student-1", models.AttendancePresent)
	require.NoError(t, err)
	assert.Equal(t, models.AttendancePresent, attendance.Status)
	assert.Equal(t, fixed, *attendance.JoinTime)
	assert.Nil(t, attendance.LeaveTime)
	assert.Nil(t, attendance.DurationMinutes)
	assert.Len(t, repo.updated, 1)
}

func TestSessionAttendanceServiceMarkLeave(t *testing.T) {
	repo, svc := newAttendanceFixture()
	join := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	repo.byPair[pairKey("sched-1", "student-1")] = &models.SessionAttendance{
		ID:                "att-1",
		ScheduleID:        "sched-1",
		StudentAcademicID: "student-1",
		Status:            models.AttendancePresent,
		JoinTime:          &join,
	}
	svc.now = func() time.Time { return join.Add(92*time.Minute + 40*time.Second) }

	attendance, err := svc.MarkLeave(context.Background(), "sched-1", "student-1")
	require.NoError(t, err)
	require.NotNil(t, attendance.DurationMinutes)
	assert.Equal(t, 93, *attendance.DurationMinutes)
	require.NotNil(t, attendance.LeaveTime)
}

func TestSessionAttendanceServiceMarkLeaveWithoutJoin(t *testing.T) {
	repo, svc := newAttendanceFixture()
	repo.byPair[pairKey("sched-1", "student-1")] = &models.SessionAttendance{
		ID:                "att-1",
		ScheduleID:        "sched-1",
		StudentAcademicID: "student-1",
		Status:            models.AttendanceAbsent,
	}

	_, err := svc.MarkLeave(context.Background(), "sched-1", "student-1")
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
	assert.Equal(t, "join time has not been recorded", appErr.Message)
}

func TestSessionAttendanceServiceUpdateRecomputesDuration(t *testing.T) {
	repo, svc := newAttendanceFixture()
	join := time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC)
	repo.byID["att-1"] = &models.SessionAttendance{
		ID:                "att-1",
		ScheduleID:        "sched-1",
		StudentAcademicID: "student-1",
		Status:            models.AttendancePresent,
		JoinTime:          &join,
	}
	leave := time.Date(2026, 3, 10, 10, 25, 30, 0, time.UTC)

	attendance, err := svc.Update(context.Background(), "att-1", UpdateSessionAttendanceRequest{
		Status:    models.AttendancePresent,
		LeaveTime: &leave,
	})
	require.NoError(t, err)
	require.NotNil(t, attendance.JoinTime)
	assert.Equal(t, join, *attendance.JoinTime)
	require.NotNil(t, attendance.DurationMinutes)
	assert.Equal(t, 26, *attendance.DurationMinutes)
	assert.Len(t, repo.updated, 1)
}

func TestSessionAttendanceServiceScheduleReport(t *testing.T) {
	repo, svc := newAttendanceFixture()
	repo.bySchedule = []models.SessionAttendance{
		{Status: models.AttendancePresent},
		{Status: models.AttendancePresent},
		{Status: models.AttendanceLate},
		{Status: models.AttendanceAbsent},
	}

	report, err := svc.ScheduleReport(context.Background(), "sched-1")
	require.NoError(t, err)
	assert.Equal(t, 4, report.Stats.TotalStudents)
	assert.Equal(t, 2, report.Stats.Present)
	assert.Equal(t, 1, report.Stats.Late)
	assert.Equal(t, 1, report.Stats.Absent)
}

func TestSessionAttendanceServiceStudentStats(t *testing.T) {
	repo, svc := newAttendanceFixture()
	repo.byStudent = []models.SessionAttendance{
		{Status: models.AttendancePresent},
		{Status: models.AttendanceLate},
		{Status: models.AttendanceAbsent},
	}

	stats, err := svc.StudentStats(context.Background(), "student-1")
	require.NoError(t, err)
	assert.Equal(t, 3, stats.TotalSessions)
	assert.Equal(t, 67, stats.AttendancePercentage)
}

func TestSessionAttendanceServiceStudentStatsEmpty(t *testing.T) {
	_, svc := newAttendanceFixture()

	stats, err := svc.StudentStats(context.Background(), "student-1")
	require.NoError(t, err)
	assert.Equal(t, 0, stats.TotalSessions)
	assert.Equal(t, 0, stats.AttendancePercentage)
}

func TestSessionAttendanceServiceExportCSV(t *testing.T) {
	repo, svc := newAttendanceFixture()
	join := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	repo.bySchedule = []models.SessionAttendance{
		{StudentAcademicID: "student-1", Status: models.AttendancePresent, JoinTime: &join},
	}

	result, err := svc.ExportSchedule(context.Background(), "sched-1", "csv")
	require.NoError(t, err)
	assert.Equal(t, "text/csv", result.ContentType)
	assert.Contains(t, string(result.Content), "S001")
	assert.Contains(t, string(result.Content), "Student One")
}

func TestSessionAttendanceServiceExportUnsupported(t *testing.T) {
	_, svc := newAttendanceFixture()

	_, err := svc.ExportSchedule(context.Background(), "sched-1", "xlsx")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}
