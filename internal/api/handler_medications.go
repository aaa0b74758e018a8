package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"health-reminder-backend/internal/model"
)

type courseRequest struct {
	Name            string   `json:"name" binding:"required"`
	IntakeTimes     []string `json:"intakeTimes" binding:"required"`
	StartDate       string   `json:"startDate" binding:"required"`
	EndDate         string   `json:"endDate" binding:"required"`
	Notes           string   `json:"notes"`
	ConsultationID  string   `json:"consultationId"`
	PatientFullName string   `json:"patientFullName"`
}

func (r courseRequest) toModel() model.MedicationCourse {
	return model.MedicationCourse{
		Name:            r.Name,
		IntakeTimes:     r.IntakeTimes,
		StartDate:       r.StartDate,
		EndDate:         r.EndDate,
		Notes:           r.Notes,
		ConsultationID:  r.ConsultationID,
		PatientFullName: r.PatientFullName,
	}
}

// ListMedications handles GET /api/medications.
func (h *Handler) ListMedications(c *gin.Context) {
	courses, err := h.service.Courses(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, courses)
}

// CreateMedication handles POST /api/medications.
func (h *Handler) CreateMedication(c *gin.Context) {
	var req courseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}

	course, err := h.service.CreateCourse(c.Request.Context(), req.toModel())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, course)
}

// UpdateMedication handles PUT /api/medications/:id.
func (h *Handler) UpdateMedication(c *gin.Context) {
	var req courseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}

	course, err := h.service.UpdateCourse(c.Request.Context(), c.Param("id"), req.toModel())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, course)
}

// DeleteMedication handles DELETE /api/medications/:id.
func (h *Handler) DeleteMedication(c *gin.Context) {
	if err := h.service.DeleteCourse(c.Request.Context(), c.Param("id")); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
