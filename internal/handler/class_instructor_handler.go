package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/lms-api/internal/service"
	appErrors "github.com/noah-isme/lms-api/pkg/errors"
	"github.com/noah-isme/lms-api/pkg/response"
)

// ClassInstructorHandler manages class instructor assignment endpoints.
type ClassInstructorHandler struct {
	service *service.ClassInstructorService
}

// NewClassInstructorHandler constructs handler.
func NewClassInstructorHandler(svc *service.ClassInstructorService) *ClassInstructorHandler {
	return &ClassInstructorHandler{service: svc}
}

// Assign godoc
// @Summary Replace the instructor set of a class
// @Tags ClassInstructors
// @Accept json
// @Produce json
// @Param payload body object true "Assignment payload"
// @Success 200 {object} response.Envelope
// @Router /academic-class-instructors [post]
func (h *ClassInstructorHandler) Assign(c *gin.Context) {
	var payload struct {
		ClassID       string   `json:"class_id" binding:"required"`
		InstructorID  string   `json:"instructor_id"`
		InstructorIDs []string `json:"instructor_ids"`
	}
	if err := c.ShouldBindJSON(&payload); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	ids := payload.InstructorIDs
	if payload.InstructorID != "" {
		ids = append(ids, payload.InstructorID)
	}

	assignments, err := h.service.Assign(c.Request.Context(), payload.ClassID, service.AssignInstructorsRequest{InstructorIDs: ids})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, assignments, nil)
}

// Get godoc
// @Summary Get one assignment
// @Tags ClassInstructors
// @Produce json
// @Param id path string true "Assignment ID"
// @Success 200 {object} response.Envelope
// @Router /academic-class-instructors/{id} [get]
func (h *ClassInstructorHandler) Get(c *gin.Context) {
	assignment, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, assignment, nil)
}

// ListByClass godoc
// @Summary List instructors assigned to a class
// @Tags ClassInstructors
// @Produce json
// @Param classId path string true "Class ID"
// @Success 200 {object} response.Envelope
// @Router /academic-class-instructors/class/{classId} [get]
func (h *ClassInstructorHandler) ListByClass(c *gin.Context) {
	assignments, err := h.service.ListByClass(c.Request.Context(), c.Param("classId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, assignments, nil)
}

// ListByInstructor godoc
// @Summary List classes an instructor is assigned to
// @Tags ClassInstructors
// @Produce json
// @Param instructorId path string true "Instructor user ID"
// @Success 200 {object} response.Envelope
// @Router /academic-class-instructors/instructor/{instructorId} [get]
func (h *ClassInstructorHandler) ListByInstructor(c *gin.Context) {
	assignments, err := h.service.ListByInstructor(c.Request.Context(), c.Param("instructorId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, assignments, nil)
}

// Update godoc
// @Summary Re-point an assignment at another instructor
// @Tags ClassInstructors
// @Accept json
// @Produce json
// @Param id path string true "Assignment ID"
// @Param payload body service.UpdateClassInstructorRequest true "Assignment payload"
// @Success 200 {object} response.Envelope
// @Router /academic-class-instructors/{id} [patch]
func (h *ClassInstructorHandler) Update(c *gin.Context) {
	var req service.UpdateClassInstructorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	assignment, err := h.service.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, assignment, nil)
}

// Remove godoc
// @Summary Remove an assignment
// @Tags ClassInstructors
// @Produce json
// @Param id path string true "Assignment ID"
// @Success 204
// @Router /academic-class-instructors/{id} [delete]
func (h *ClassInstructorHandler) Remove(c *gin.Context) {
	if err := h.service.Remove(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
