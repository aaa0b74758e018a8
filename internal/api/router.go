package api

import (
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"health-reminder-backend/config"
	"health-reminder-backend/internal/metrics"
	"health-reminder-backend/internal/mw"
	"health-reminder-backend/internal/store"
)

// Dependencies are what the router wires into the handlers.
type Dependencies struct {
	Server  *config.ServerConfig
	Service ReminderService
	Store   store.Store
	WebPush *webpush.Options
	Metrics *metrics.Metrics
	Logger  *zap.Logger
}

// NewRouter creates and configures a new Gin router.
func NewRouter(deps Dependencies) *gin.Engine {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	srv := deps.Server
	if srv == nil {
		srv = &config.ServerConfig{RateLimitPerSec: 10, RateLimitBurst: 5, CacheTTLSeconds: 30}
	}

	r := gin.New()
	r.Use(gin.Recovery(), mw.Logger(logger.With(zap.String("component", "http"))))

	handler := NewHandler(deps.Service, deps.Store, deps.WebPush, logger)

	rateLimiter := mw.RateLimiter(rate.Limit(srv.RateLimitPerSec), srv.RateLimitBurst)

	// Reads are cached briefly; any successful write flushes everything.
	ttl := time.Duration(srv.CacheTTLSeconds) * time.Second
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	cacheStore := cache.New(ttl, 2*ttl)
	caching := mw.Cache(cacheStore, ttl)

	r.GET("/metrics", gin.WrapH(deps.Metrics.Handler()))

	api := r.Group("/api")
	api.Use(rateLimiter)
	{
		data := api.Group("", caching)

		data.GET("/medications", handler.ListMedications)
		data.POST("/medications", handler.CreateMedication)
		data.PUT("/medications/:id", handler.UpdateMedication)
		data.DELETE("/medications/:id", handler.DeleteMedication)

		data.GET("/intakes/today", handler.GetTodayIntakes)
		data.POST("/intakes", handler.ConfirmIntake)
		data.GET("/adherence", handler.GetAdherence)
		data.GET("/dashboard", handler.GetDashboard)

		data.GET("/appointments", handler.ListAppointments)
		data.POST("/appointments", handler.CreateAppointment)
		data.PUT("/appointments/:id", handler.UpdateAppointment)
		data.DELETE("/appointments/:id", handler.DeleteAppointment)

		api.GET("/subscriptions", handler.GetSubscription)
		api.PUT("/subscriptions", handler.PutSubscription)
		api.DELETE("/subscriptions", handler.DeleteSubscription)
		api.GET("/vapid_public_key", handler.GetVAPIDPublicKey)
	}

	return r
}
