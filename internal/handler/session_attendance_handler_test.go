package handler

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/lms-api/internal/models"
	"github.com/noah-isme/lms-api/internal/service"
	appErrors "github.com/noah-isme/lms-api/pkg/errors"
)

type attendanceServiceMock struct {
	attendance *models.SessionAttendance
	list       []models.SessionAttendance
	report     *service.ScheduleAttendanceReport
	stats      *models.StudentAttendanceStats
	export     *service.ExportResult
	err        error

	listByScheduleCalled bool
	listByStudentCalled  bool
	markCalled           bool
	markStatus           models.AttendanceStatus
	leaveCalled          bool
}

func (m *attendanceServiceMock) Create(ctx context.Context, req service.CreateSessionAttendanceRequest) (*models.SessionAttendance, error) {
	return m.attendance, m.err
}

func (m *attendanceServiceMock) Get(ctx context.Context, id string) (*models.SessionAttendance, error) {
	return m.attendance, m.err
}

func (m *attendanceServiceMock) ListBySchedule(ctx context.Context, scheduleID string) ([]models.SessionAttendance, error) {
	m.listByScheduleCalled = true
	return m.list, m.err
}

func (m *attendanceServiceMock) ListByStudent(ctx context.Context, studentAcademicID string) ([]models.SessionAttendance, error) {
	m.listByStudentCalled = true
	return m.list, m.err
}

func (m *attendanceServiceMock) MarkAttendance(ctx context.Context, scheduleID, studentAcademicID string, status models.AttendanceStatus) (*models.SessionAttendance, error) {
	m.markCalled = true
	m.markStatus = status
	return m.attendance, m.err
}

func (m *attendanceServiceMock) MarkLeave(ctx context.Context, scheduleID, studentAcademicID string) (*models.SessionAttendance, error) {
	m.leaveCalled = true
	return m.attendance, m.err
}

func (m *attendanceServiceMock) Update(ctx context.Context, id string, req service.UpdateSessionAttendanceRequest) (*models.SessionAttendance, error) {
	return m.attendance, m.err
}

func (m *attendanceServiceMock) Delete(ctx context.Context, id string) error {
	return m.err
}

func (m *attendanceServiceMock) ScheduleReport(ctx context.Context, scheduleID string) (*service.ScheduleAttendanceReport, error) {
	return m.report, m.err
}

func (m *attendanceServiceMock) StudentStats(ctx context.Context, studentAcademicID string) (*models.StudentAttendanceStats, error) {
	return m.stats, m.err
}

func (m *attendanceServiceMock) ExportSchedule(ctx context.Context, scheduleID, format string) (*service.ExportResult, error) {
	return m.export, m.err
}

func attendanceTestContext(t *testing.T, method, target string, body []byte) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, err := http.NewRequest(method, target, bytes.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	return c, w
}

func TestSessionAttendanceHandlerListRequiresFilter(t *testing.T) {
	mockSvc := &attendanceServiceMock{}
	handler := NewSessionAttendanceHandler(mockSvc)

	c, w := attendanceTestContext(t, http.MethodGet, "/session-attendances", nil)

	handler.List(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.False(t, mockSvc.listByScheduleCalled)
	assert.False(t, mockSvc.listByStudentCalled)
}

func TestSessionAttendanceHandlerListBySchedule(t *testing.T) {
	mockSvc := &attendanceServiceMock{list: []models.SessionAttendance{{ID: "att-1"}}}
	handler := NewSessionAttendanceHandler(mockSvc)

	c, w := attendanceTestContext(t, http.MethodGet, "/session-attendances?scheduleId=sched-1", nil)

	handler.List(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, mockSvc.listByScheduleCalled)
	assert.False(t, mockSvc.listByStudentCalled)
}

func TestSessionAttendanceHandlerMarkAttendance(t *testing.T) {
	mockSvc := &attendanceServiceMock{attendance: &models.SessionAttendance{ID: "att-1"}}
	handler := NewSessionAttendanceHandler(mockSvc)

	body := []byte(`{"schedule_id":"sched-1","student_academic_id":"student-1","status":"late"}`)
	c, w := attendanceTestContext(t, http.MethodPost, "/session-attendances/mark-attendance", body)

	handler.MarkAttendance(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, mockSvc.markCalled)
	assert.Equal(t, models.AttendanceLate, mockSvc.markStatus)
}

func TestSessionAttendanceHandlerMarkAttendanceInvalidBody(t *testing.T) {
	mockSvc := &attendanceServiceMock{}
	handler := NewSessionAttendanceHandler(mockSvc)

	c, w := attendanceTestContext(t, http.MethodPost, "/session-attendances/mark-attendance", []byte(`{"schedule_id":"sched-1"}`))

	handler.MarkAttendance(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.False(t, mockSvc.markCalled)
}

func TestSessionAttendanceHandlerMarkLeaveServiceError(t *testing.T) {
	mockSvc := &attendanceServiceMock{err: appErrors.Clone(appErrors.ErrValidation, "join time has not been recorded")}
	handler := NewSessionAttendanceHandler(mockSvc)

	body := []byte(`{"schedule_id":"sched-1","student_academic_id":"student-1"}`)
	c, w := attendanceTestContext(t, http.MethodPost, "/session-attendances/mark-leave", body)

	handler.MarkLeave(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.True(t, mockSvc.leaveCalled)
	assert.Contains(t, w.Body.String(), "join time has not been recorded")
}

func TestSessionAttendanceHandlerExport(t *testing.T) {
	mockSvc := &attendanceServiceMock{export: &service.ExportResult{
		FileName:    "attendance-sched-1.csv",
		ContentType: "text/csv",
		Content:     []byte("Student Code,Name\n"),
	}}
	handler := NewSessionAttendanceHandler(mockSvc)

	c, w := attendanceTestContext(t, http.MethodGet, "/session-attendances/schedule/sched-1/export?format=csv", nil)
	c.Params = gin.Params{{Key: "scheduleId", Value: "sched-1"}}

	handler.Export(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/csv", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "attendance-sched-1.csv")
	assert.Contains(t, w.Body.String(), "Student Code")
}
