package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"health-reminder-backend/internal/model"
)

type confirmIntakeRequest struct {
	MedicationID string              `json:"medicationId" binding:"required"`
	IntakeTime   string              `json:"intakeTime" binding:"required"`
	Outcome      model.IntakeOutcome `json:"outcome" binding:"required"`
}

// GetTodayIntakes handles GET /api/intakes/today.
func (h *Handler) GetTodayIntakes(c *gin.Context) {
	intakes, err := h.service.Today(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, intakes)
}

// ConfirmIntake handles POST /api/intakes.
func (h *Handler) ConfirmIntake(c *gin.Context) {
	var req confirmIntakeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}

	intake, err := h.service.ConfirmIntake(c.Request.Context(), req.MedicationID, req.IntakeTime, req.Outcome)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, intake)
}

// GetAdherence handles GET /api/adherence.
func (h *Handler) GetAdherence(c *gin.Context) {
	snap, err := h.service.Adherence(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, snap)
}

// GetDashboard handles GET /api/dashboard.
func (h *Handler) GetDashboard(c *gin.Context) {
	d, err := h.service.Dashboard(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, d)
}
