package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/lms-api/internal/models"
	"github.com/noah-isme/lms-api/internal/service"
	appErrors "github.com/noah-isme/lms-api/pkg/errors"
	"github.com/noah-isme/lms-api/pkg/response"
)

// AcademicClassHandler manages academic class endpoints.
type AcademicClassHandler struct {
	service *service.AcademicClassService
}

// NewAcademicClassHandler constructs handler.
func NewAcademicClassHandler(svc *service.AcademicClassService) *AcademicClassHandler {
	return &AcademicClassHandler{service: svc}
}

// List godoc
// @Summary List academic classes
// @Tags AcademicClasses
// @Produce json
// @Param semester query string false "Filter by semester"
// @Param status query string false "Filter by status"
// @Param search query string false "Search by name or code"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /academic-classes [get]
func (h *AcademicClassHandler) List(c *gin.Context) {
	var filter models.AcademicClassFilter
	filter.Semester = c.Query("semester")
	filter.Search = c.Query("search")
	if status := c.Query("status"); status != "" {
		s := models.AcademicClassStatus(status)
		filter.Status = &s
	}
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if limit, err := strconv.Atoi(c.DefaultQuery("limit", "20")); err == nil {
		filter.PageSize = limit
	}

	classes, pagination, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, classes, pagination)
}

// Get godoc
// @Summary Get academic class
// @Tags AcademicClasses
// @Produce json
// @Param id path string true "Class ID"
// @Success 200 {object} response.Envelope
// @Router /academic-classes/{id} [get]
func (h *AcademicClassHandler) Get(c *gin.Context) {
	class, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, class, nil)
}

// ListCourses godoc
// @Summary List courses of an academic class
// @Tags AcademicClasses
// @Produce json
// @Param id path string true "Class ID"
// @Success 200 {object} response.Envelope
// @Router /academic-classes/{id}/courses [get]
func (h *AcademicClassHandler) ListCourses(c *gin.Context) {
	courses, err := h.service.ListCourses(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, courses, nil)
}

// Create godoc
// @Summary Create academic class
// @Tags AcademicClasses
// @Accept json
// @Produce json
// @Param payload body service.CreateAcademicClassRequest true "Class payload"
// @Success 201 {object} response.Envelope
// @Router /academic-classes [post]
func (h *AcademicClassHandler) Create(c *gin.Context) {
	var req service.CreateAcademicClassRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	class, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, class)
}

// Update godoc
// @Summary Update academic class
// @Tags AcademicClasses
// @Accept json
// @Produce json
// @Param id path string true "Class ID"
// @Param payload body service.UpdateAcademicClassRequest true "Class payload"
// @Success 200 {object} response.Envelope
// @Router /academic-classes/{id} [put]
func (h *AcademicClassHandler) Update(c *gin.Context) {
	var req service.UpdateAcademicClassRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	class, err := h.service.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, class, nil)
}

// Delete godoc
// @Summary Delete academic class
// @Tags AcademicClasses
// @Produce json
// @Param id path string true "Class ID"
// @Success 204
// @Router /academic-classes/{id} [delete]
func (h *AcademicClassHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
