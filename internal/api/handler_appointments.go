package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"health-reminder-backend/internal/model"
)

type appointmentRequest struct {
	DoctorName      string `json:"doctorName" binding:"required"`
	Specialty       string `json:"specialty"`
	ContactPhone    string `json:"contactPhone"`
	DateTime        string `json:"dateTime" binding:"required"`
	Location        string `json:"location"`
	Notes           string `json:"notes"`
	ConsultationID  string `json:"consultationId"`
	PatientFullName string `json:"patientFullName"`
}

func (r appointmentRequest) toModel() model.Appointment {
	return model.Appointment{
		DoctorName:      r.DoctorName,
		Specialty:       r.Specialty,
		ContactPhone:    r.ContactPhone,
		DateTime:        r.DateTime,
		Location:        r.Location,
		Notes:           r.Notes,
		ConsultationID:  r.ConsultationID,
		PatientFullName: r.PatientFullName,
	}
}

// ListAppointments handles GET /api/appointments.
func (h *Handler) ListAppointments(c *gin.Context) {
	p, err := h.service.Appointments(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// CreateAppointment handles POST /api/appointments.
func (h *Handler) CreateAppointment(c *gin.Context) {
	var req appointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}

	appt, err := h.service.CreateAppointment(c.Request.Context(), req.toModel())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, appt)
}

// UpdateAppointment handles PUT /api/appointments/:id.
func (h *Handler) UpdateAppointment(c *gin.Context) {
	var req appointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}

	appt, err := h.service.UpdateAppointment(c.Request.Context(), c.Param("id"), req.toModel())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, appt)
}

// DeleteAppointment handles DELETE /api/appointments/:id.
func (h *Handler) DeleteAppointment(c *gin.Context) {
	if err := h.service.DeleteAppointment(c.Request.Context(), c.Param("id")); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
