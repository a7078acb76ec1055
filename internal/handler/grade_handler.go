package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/campushq/uniportal-api/internal/models"
	"github.com/campushq/uniportal-api/internal/service"
	appErrors "github.com/campushq/uniportal-api/pkg/errors"
	"github.com/campushq/uniportal-api/pkg/response"
)

// GradeHandler exposes grade endpoints.
type GradeHandler struct {
	grades *service.GradeService
}

// NewGradeHandler constructs GradeHandler.
func NewGradeHandler(grades *service.GradeService) *GradeHandler {
	return &GradeHandler{grades: grades}
}

// Upsert godoc
// @Summary Submit or replace a grade for an enrollment
// @Tags Grades
// @Accept json
// @Produce json
// @Param payload body service.UpsertGradeRequest true "Grade payload"
// @Success 200 {object} response.Envelope
// @Router /grades [put]
func (h *GradeHandler) Upsert(c *gin.Context) {
	var req service.UpsertGradeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	var gradedBy string
	if claims := claimsFromContext(c); claims != nil {
		gradedBy = claims.UserID
	}
	grade, err := h.grades.Upsert(c.Request.Context(), req, gradedBy)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, grade, nil)
}

// GetByEnrollment godoc
// @Summary Get the grade for one enrollment
// @Tags Grades
// @Produce json
// @Param id path string true "Enrollment ID"
// @Success 200 {object} response.Envelope
// @Router /enrollments/{id}/grade [get]
func (h *GradeHandler) GetByEnrollment(c *gin.Context) {
	grade, err := h.grades.GetByEnrollment(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, grade, nil)
}

// ListByStudent godoc
// @Summary List a student's grades
// @Tags Grades
// @Produce json
// @Param id path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Router /students/{id}/grades [get]
func (h *GradeHandler) ListByStudent(c *gin.Context) {
	studentID := c.Param("id")

	// Students only see their own transcript.
	if claims := claimsFromContext(c); claims != nil && claims.Role == models.RoleStudent {
		if claims.ProfileID == nil || *claims.ProfileID != studentID {
			response.Error(c, appErrors.ErrForbidden)
			return
		}
	}

	grades, err := h.grades.ListByStudent(c.Request.Context(), studentID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, grades, nil)
}

// ExportTranscript godoc
// @Summary Download a student's transcript as CSV
// @Tags Grades
// @Produce text/csv
// @Param id path string true "Student ID"
// @Success 200 {string} string "CSV transcript"
// @Router /students/{id}/grades/export [get]
func (h *GradeHandler) ExportTranscript(c *gin.Context) {
	studentID := c.Param("id")

	if claims := claimsFromContext(c); claims != nil && claims.Role == models.RoleStudent {
		if claims.ProfileID == nil || *claims.ProfileID != studentID {
			response.Error(c, appErrors.ErrForbidden)
			return
		}
	}

	out, err := h.grades.ExportTranscript(c.Request.Context(), studentID)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="transcript.csv"`)
	c.Data(http.StatusOK, "text/csv", out)
}

// ListByOffering godoc
// @Summary List grades for one offering
// @Tags Grades
// @Produce json
// @Param id path string true "Offering ID"
// @Success 200 {object} response.Envelope
// @Router /courses/{id}/grades [get]
func (h *GradeHandler) ListByOffering(c *gin.Context) {
	grades, err := h.grades.ListByOffering(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, grades, nil)
}
