package handler

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/lms-api/internal/models"
	"github.com/noah-isme/lms-api/internal/service"
	appErrors "github.com/noah-isme/lms-api/pkg/errors"
	"github.com/noah-isme/lms-api/pkg/response"
)

type sessionAttendanceService interface {
	Create(ctx context.Context, req service.CreateSessionAttendanceRequest) (*models.SessionAttendance, error)
	Get(ctx context.Context, id string) (*models.SessionAttendance, error)
	ListBySchedule(ctx context.Context, scheduleID string) ([]models.SessionAttendance, error)
	ListByStudent(ctx context.Context, studentAcademicID string) ([]models.SessionAttendance, error)
	MarkAttendance(ctx context.Context, scheduleID, studentAcademicID string, status models.AttendanceStatus) (*models.SessionAttendance, error)
	MarkLeave(ctx context.Context, scheduleID, studentAcademicID string) (*models.SessionAttendance, error)
	Update(ctx context.Context, id string, req service.UpdateSessionAttendanceRequest) (*models.SessionAttendance, error)
	Delete(ctx context.Context, id string) error
	ScheduleReport(ctx context.Context, scheduleID string) (*service.ScheduleAttendanceReport, error)
	StudentStats(ctx context.Context, studentAcademicID string) (*models.StudentAttendanceStats, error)
	ExportSchedule(ctx context.Context, scheduleID, format string) (*service.ExportResult, error)
}

// SessionAttendanceHandler manages attendance endpoints.
type SessionAttendanceHandler struct {
	service sessionAttendanceService
}

// NewSessionAttendanceHandler constructs handler.
func NewSessionAttendanceHandler(svc sessionAttendanceService) *SessionAttendanceHandler {
	return &SessionAttendanceHandler{service: svc}
}

// List godoc
// @Summary List attendance records
// @Tags SessionAttendances
// @Produce json
// @Param scheduleId query string false "Filter by schedule"
// @Param studentAcademicId query string false "Filter by student"
// @Success 200 {object} response.Envelope
// @Router /session-attendances [get]
func (h *SessionAttendanceHandler) List(c *gin.Context) {
	scheduleID := c.Query("scheduleId")
	studentID := c.Query("studentAcademicId")

	var (
		attendances []models.SessionAttendance
		err         error
	)
	switch {
	case scheduleID != "":
		attendances, err = h.service.ListBySchedule(c.Request.Context(), scheduleID)
	case studentID != "":
		attendances, err = h.service.ListByStudent(c.Request.Context(), studentID)
	default:
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "scheduleId or studentAcademicId filter is required"))
		return
	}
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, attendances, nil)
}

// Get godoc
// @Summary Get attendance record
// @Tags SessionAttendances
// @Produce json
// @Param id path string true "Attendance ID"
// @Success 200 {object} response.Envelope
// @Router /session-attendances/{id} [get]
func (h *SessionAttendanceHandler) Get(c *gin.Context) {
	attendance, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, attendance, nil)
}

// Create godoc
// @Summary Create attendance record
// @Tags SessionAttendances
// @Accept json
// @Produce json
// @Param payload body service.CreateSessionAttendanceRequest true "Attendance payload"
// @Success 201 {object} response.Envelope
// @Router /session-attendances [post]
func (h *SessionAttendanceHandler) Create(c *gin.Context) {
	var req service.CreateSessionAttendanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	attendance, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, attendance)
}

// MarkAttendance godoc
// @Summary Mark a student's attendance for a session
// @Tags SessionAttendances
// @Accept json
// @Produce json
// @Param payload body object true "Mark payload"
// @Success 200 {object} response.Envelope
// @Router /session-attendances/mark-attendance [post]
func (h *SessionAttendanceHandler) MarkAttendance(c *gin.Context) {
	var payload struct {
		ScheduleID        string                  `json:"schedule_id" binding:"required"`
		StudentAcademicID string                  `json:"student_academic_id" binding:"required"`
		Status            models.AttendanceStatus `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&payload); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	attendance, err := h.service.MarkAttendance(c.Request.Context(), payload.ScheduleID, payload.StudentAcademicID, payload.Status)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, attendance, nil)
}

// MarkLeave godoc
// @Summary Record a student leaving a session
// @Tags SessionAttendances
// @Accept json
// @Produce json
// @Param payload body object true "Leave payload"
// @Success 200 {object} response.Envelope
// @Router /session-attendances/mark-leave [post]
func (h *SessionAttendanceHandler) MarkLeave(c *gin.Context) {
	var payload struct {
		ScheduleID        string `json:"schedule_id" binding:"required"`
		StudentAcademicID string `json:"student_academic_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&payload); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	attendance, err := h.service.MarkLeave(c.Request.Context(), payload.ScheduleID, payload.StudentAcademicID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, attendance, nil)
}

// Update godoc
// @Summary Update attendance record
// @Tags SessionAttendances
// @Accept json
// @Produce json
// @Param id path string true "Attendance ID"
// @Param payload body service.UpdateSessionAttendanceRequest true "Attendance payload"
// @Success 200 {object} response.Envelope
// @Router /session-attendances/{id} [put]
func (h *SessionAttendanceHandler) Update(c *gin.Context) {
	var req service.UpdateSessionAttendanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	attendance, err := h.service.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, attendance, nil)
}

// Delete godoc
// @Summary Delete attendance record
// @Tags SessionAttendances
// @Produce json
// @Param id path string true "Attendance ID"
// @Success 204
// @Router /session-attendances/{id} [delete]
func (h *SessionAttendanceHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// ScheduleStats godoc
// @Summary Attendance report for a session
// @Tags SessionAttendances
// @Produce json
// @Param scheduleId path string true "Schedule ID"
// @Success 200 {object} response.Envelope
// @Router /session-attendances/schedule/{scheduleId}/stats [get]
func (h *SessionAttendanceHandler) ScheduleStats(c *gin.Context) {
	report, err := h.service.ScheduleReport(c.Request.Context(), c.Param("scheduleId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, report, nil)
}

// StudentStats godoc
// @Summary Attendance statistics for a student
// @Tags SessionAttendances
// @Produce json
// @Param studentAcademicId path string true "Student academic ID"
// @Success 200 {object} response.Envelope
// @Router /session-attendances/student/{studentAcademicId}/stats [get]
func (h *SessionAttendanceHandler) StudentStats(c *gin.Context) {
	stats, err := h.service.StudentStats(c.Request.Context(), c.Param("studentAcademicId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, stats, nil)
}

// Export godoc
// @Summary Export a session's attendance sheet
// @Tags SessionAttendances
// @Produce octet-stream
// @Param scheduleId path string true "Schedule ID"
// @Param format query string false "csv or pdf" default(csv)
// @Success 200 {file} binary
// @Router /session-attendances/schedule/{scheduleId}/export [get]
func (h *SessionAttendanceHandler) Export(c *gin.Context) {
	result, err := h.service.ExportSchedule(c.Request.Context(), c.Param("scheduleId"), c.DefaultQuery("format", "csv"))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", result.FileName))
	c.Data(http.StatusOK, result.ContentType, result.Content)
}
