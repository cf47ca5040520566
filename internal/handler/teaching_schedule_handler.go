package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/lms-api/internal/models"
	"github.com/noah-isme/lms-api/internal/service"
	appErrors "github.com/noah-isme/lms-api/pkg/errors"
	"github.com/noah-isme/lms-api/pkg/response"
)

// TeachingScheduleHandler manages teaching schedule endpoints.
type TeachingScheduleHandler struct {
	service *service.TeachingScheduleService
}

// NewTeachingScheduleHandler constructs handler.
func NewTeachingScheduleHandler(svc *service.TeachingScheduleService) *TeachingScheduleHandler {
	return &TeachingScheduleHandler{service: svc}
}

// List godoc
// @Summary List teaching schedules
// @Tags TeachingSchedules
// @Produce json
// @Param academicClassId query string false "Filter by class"
// @Param academicClassInstructorId query string false "Filter by assignment"
// @Param instructorId query string false "Filter by instructor"
// @Param startDate query string false "Range start (RFC3339 or YYYY-MM-DD)"
// @Param endDate query string false "Range end (RFC3339 or YYYY-MM-DD)"
// @Param status query string false "Filter by status"
// @Success 200 {object} response.Envelope
// @Router /teaching-schedules [get]
func (h *TeachingScheduleHandler) List(c *gin.Context) {
	var filter models.TeachingScheduleFilter
	filter.AcademicClassID = c.Query("academicClassId")
	filter.AcademicClassInstructorID = c.Query("academicClassInstructorId")
	filter.InstructorID = c.Query("instructorId")
	if status := c.Query("status"); status != "" {
		s := models.ScheduleStatus(status)
		filter.Status = &s
	}
	if start, ok := parseDateQuery(c.Query("startDate")); ok {
		filter.StartDate = &start
	}
	if end, ok := parseDateQuery(c.Query("endDate")); ok {
		filter.EndDate = &end
	}

	schedules, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, schedules, nil)
}

// Get godoc
// @Summary Get teaching schedule with attendances
// @Tags TeachingSchedules
// @Produce json
// @Param id path string true "Schedule ID"
// @Success 200 {object} response.Envelope
// @Router /teaching-schedules/{id} [get]
func (h *TeachingScheduleHandler) Get(c *gin.Context) {
	schedule, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, schedule, nil)
}

// ListByInstructor godoc
// @Summary List schedules by instructor
// @Tags TeachingSchedules
// @Produce json
// @Param instructorId path string true "Instructor user ID"
// @Success 200 {object} response.Envelope
// @Router /teaching-schedules/instructor/{instructorId} [get]
func (h *TeachingScheduleHandler) ListByInstructor(c *gin.Context) {
	schedules, err := h.service.ListByInstructor(c.Request.Context(), c.Param("instructorId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, schedules, nil)
}

// ListByStudent godoc
// @Summary List schedules by student enrollment
// @Tags TeachingSchedules
// @Produce json
// @Param studentAcademicId path string true "Student academic ID"
// @Success 200 {object} response.Envelope
// @Router /teaching-schedules/student/{studentAcademicId} [get]
func (h *TeachingScheduleHandler) ListByStudent(c *gin.Context) {
	schedules, err := h.service.ListByStudent(c.Request.Context(), c.Param("studentAcademicId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, schedules, nil)
}

// Create godoc
// @Summary Create teaching schedule
// @Tags TeachingSchedules
// @Accept json
// @Produce json
// @Param payload body service.CreateTeachingScheduleRequest true "Schedule payload"
// @Success 201 {object} response.Envelope
// @Router /teaching-schedules [post]
func (h *TeachingScheduleHandler) Create(c *gin.Context) {
	var req service.CreateTeachingScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	schedule, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, schedule)
}

// Update godoc
// @Summary Update teaching schedule
// @Tags TeachingSchedules
// @Accept json
// @Produce json
// @Param id path string true "Schedule ID"
// @Param payload body service.UpdateTeachingScheduleRequest true "Schedule payload"
// @Success 200 {object} response.Envelope
// @Router /teaching-schedules/{id} [patch]
func (h *TeachingScheduleHandler) Update(c *gin.Context) {
	var req service.UpdateTeachingScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	schedule, err := h.service.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, schedule, nil)
}

// UpdateStatus godoc
// @Summary Update schedule status
// @Tags TeachingSchedules
// @Accept json
// @Produce json
// @Param id path string true "Schedule ID"
// @Param payload body object true "Status payload"
// @Success 200 {object} response.Envelope
// @Router /teaching-schedules/{id}/status [patch]
func (h *TeachingScheduleHandler) UpdateStatus(c *gin.Context) {
	var payload struct {
		Status models.ScheduleStatus `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&payload); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "status is required"))
		return
	}
	schedule, err := h.service.UpdateStatus(c.Request.Context(), c.Param("id"), payload.Status)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, schedule, nil)
}

// AttachRecording godoc
// @Summary Attach session recording URL
// @Tags TeachingSchedules
// @Accept json
// @Produce json
// @Param id path string true "Schedule ID"
// @Param payload body object true "Recording payload"
// @Success 200 {object} response.Envelope
// @Router /teaching-schedules/{id}/recording [patch]
func (h *TeachingScheduleHandler) AttachRecording(c *gin.Context) {
	var payload struct {
		RecordingURL string `json:"recording_url" binding:"required"`
	}
	if err := c.ShouldBindJSON(&payload); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "recording_url is required"))
		return
	}
	schedule, err := h.service.AttachRecording(c.Request.Context(), c.Param("id"), payload.RecordingURL)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, schedule, nil)
}

// Delete godoc
// @Summary Delete teaching schedule
// @Tags TeachingSchedules
// @Produce json
// @Param id path string true "Schedule ID"
// @Success 204
// @Router /teaching-schedules/{id} [delete]
func (h *TeachingScheduleHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

func parseDateQuery(value string) (time.Time, bool) {
	if value == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, true
	}
	if t, err := time.Parse("2006-01-02", value); err == nil {
		return t, true
	}
	return time.Time{}, false
}
