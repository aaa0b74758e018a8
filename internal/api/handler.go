package api

import (
	"context"
	"net/http"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"health-reminder-backend/internal/apperr"
	"health-reminder-backend/internal/model"
	"health-reminder-backend/internal/reminder"
	"health-reminder-backend/internal/schedule"
	"health-reminder-backend/internal/store"
)

// ReminderService is the part of the reminder session the handlers use.
type ReminderService interface {
	Courses(ctx context.Context) ([]model.MedicationCourse, error)
	CreateCourse(ctx context.Context, in model.MedicationCourse) (model.MedicationCourse, error)
	UpdateCourse(ctx context.Context, id string, in model.MedicationCourse) (model.MedicationCourse, error)
	DeleteCourse(ctx context.Context, id string) error

	Today(ctx context.Context) ([]reminder.TodayIntake, error)
	ConfirmIntake(ctx context.Context, medicationID, intakeTime string, outcome model.IntakeOutcome) (reminder.TodayIntake, error)
	Adherence(ctx context.Context) (schedule.AdherenceSnapshot, error)
	Dashboard(ctx context.Context) (reminder.Dashboard, error)

	Appointments(ctx context.Context) (schedule.AppointmentPartition, error)
	CreateAppointment(ctx context.Context, in model.Appointment) (model.Appointment, error)
	UpdateAppointment(ctx context.Context, id string, in model.Appointment) (model.Appointment, error)
	DeleteAppointment(ctx context.Context, id string) error
}

// Handler holds shared dependencies for API handlers.
type Handler struct {
	service ReminderService
	store   store.Store
	webpush *webpush.Options
	logger  *zap.Logger
}

// NewHandler creates a new API handler.
func NewHandler(svc ReminderService, s store.Store, webpushOptions *webpush.Options, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		service: svc,
		store:   s,
		webpush: webpushOptions,
		logger:  logger,
	}
}

// respondError writes err as a JSON error. Internal failures are logged and
// their details kept out of the response.
func (h *Handler) respondError(c *gin.Context, err error) {
	status := apperr.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error("request failed",
			zap.String("route", c.FullPath()),
			zap.String("code", apperr.GetCode(err)),
			zap.Error(err))
	}
	_ = c.Error(err)
	c.AbortWithStatusJSON(status, gin.H{"error": apperr.PublicMessage(err), "code": apperr.GetCode(err)})
}

func (h *Handler) badRequest(c *gin.Context, err error) {
	h.respondError(c, apperr.Wrap(apperr.ErrBadRequest, "invalid request: "+err.Error(), err))
}
