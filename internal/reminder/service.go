package reminder

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"health-reminder-backend/config"
	"health-reminder-backend/internal/metrics"
	"health-reminder-backend/internal/schedule"
	"health-reminder-backend/internal/store"
)

// Service is the reminder session: it owns the notified sets, runs the
// medication and appointment ticks, and serialises every change to the
// schedule so the engine sees a single writer.
type Service struct {
	cfg      *config.RemindersConfig
	store    store.Store
	notifier schedule.Notifier
	logger   *zap.Logger
	metrics  *metrics.Metrics
	now      func() time.Time
	loc      *time.Location

	mu                sync.Mutex
	intakeNotified    schedule.NotifiedSet
	intakeNotifiedDay string
	apptNotified      schedule.NotifiedSet

	cron *cron.Cron
}

// Option customises a Service.
type Option func(*Service)

// WithClock replaces the wall clock.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithMetrics publishes tick results to m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// NewService creates a reminder session.
func NewService(cfg *config.RemindersConfig, st store.Store, n schedule.Notifier, logger *zap.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	loc := cfg.Location
	if loc == nil {
		loc = time.Local
	}

	s := &Service{
		cfg:            cfg,
		store:          st,
		notifier:       n,
		logger:         logger.With(zap.String("component", "reminder")),
		now:            time.Now,
		loc:            loc,
		intakeNotified: schedule.NewNotifiedSet(),
		apptNotified:   schedule.NewNotifiedSet(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) clock() time.Time {
	return s.now().In(s.loc)
}

// Start runs both ticks once, then schedules them on their own intervals until
// ctx is cancelled or Stop is called.
func (s *Service) Start(ctx context.Context) error {
	cl := cronLogger{l: s.logger.Sugar()}
	c := cron.New(
		cron.WithLocation(s.loc),
		cron.WithLogger(cl),
		cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
	)

	if _, err := c.AddFunc(every(s.cfg.MedicationInterval), func() { s.runMedicationTick(ctx) }); err != nil {
		return fmt.Errorf("failed to schedule medication tick: %w", err)
	}
	if _, err := c.AddFunc(every(s.cfg.AppointmentInterval), func() { s.runAppointmentTick(ctx) }); err != nil {
		return fmt.Errorf("failed to schedule appointment tick: %w", err)
	}

	s.runMedicationTick(ctx)
	s.runAppointmentTick(ctx)

	s.mu.Lock()
	s.cron = c
	s.mu.Unlock()
	c.Start()
	s.logger.Info("reminder scheduler started",
		zap.Duration("medication_interval", s.cfg.MedicationInterval),
		zap.Duration("appointment_interval", s.cfg.AppointmentInterval))

	go func() {
		<-ctx.Done()
		s.Stop()
	}()
	return nil
}

// Stop halts the scheduler and waits for a running tick to finish.
func (s *Service) Stop() {
	s.mu.Lock()
	c := s.cron
	s.cron = nil
	s.mu.Unlock()
	if c == nil {
		return
	}
	<-c.Stop().Done()
	s.logger.Info("reminder scheduler stopped")
}

func every(d time.Duration) string {
	if d < time.Second {
		d = time.Minute
	}
	return "@every " + d.String()
}

func (s *Service) runMedicationTick(ctx context.Context) {
	if err := s.MedicationTick(ctx); err != nil {
		s.logger.Error("medication tick failed", zap.Error(err))
	}
}

func (s *Service) runAppointmentTick(ctx context.Context) {
	if err := s.AppointmentTick(ctx); err != nil {
		s.logger.Error("appointment tick failed", zap.Error(err))
	}
}

// MedicationTick rebuilds today's intakes and sends reminders for the ones due.
func (s *Service) MedicationTick(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.metrics.RecordTick("medication")
	now := s.clock()

	courses, err := s.store.Courses(ctx)
	if err != nil {
		return fmt.Errorf("failed to load medication courses: %w", err)
	}
	log, err := s.store.IntakeLog(ctx)
	if err != nil {
		return fmt.Errorf("failed to load intake log: %w", err)
	}

	s.rollNotifiedDay(now)
	events := schedule.BuildTodaysIntakes(courses, now)

	before := s.intakeNotified.Len()
	s.intakeNotified = schedule.DispatchDueNotifications(s.notifier, events, log, s.intakeNotified, now)
	sent := s.intakeNotified.Len() - before

	s.metrics.RecordNotifications("medication", sent)
	s.metrics.SetIntakeEvents(statusNames, countByStatus(events))
	s.metrics.SetAdherence(schedule.ComputeAdherence(courses, log, now).Percentage)

	s.logger.Debug("medication tick",
		zap.Int("events", len(events)),
		zap.Int("notified", sent))
	return nil
}

// AppointmentTick reminds about appointments entering the lead window.
func (s *Service) AppointmentTick(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.metrics.RecordTick("appointment")
	now := s.clock()

	appointments, err := s.store.Appointments(ctx)
	if err != nil {
		return fmt.Errorf("failed to load appointments: %w", err)
	}

	p := schedule.PartitionAppointments(appointments, now)
	before := s.apptNotified.Len()
	s.apptNotified = schedule.DispatchAppointmentReminders(s.notifier, p.Upcoming, s.apptNotified, now, s.cfg.AppointmentLeadMinutes)
	sent := s.apptNotified.Len() - before

	s.metrics.RecordNotifications("appointment", sent)
	s.logger.Debug("appointment tick",
		zap.Int("upcoming", len(p.Upcoming)),
		zap.Int("notified", sent))
	return nil
}

// rollNotifiedDay starts a fresh intake notified set when the calendar day
// changes, since its keys carry no date.
func (s *Service) rollNotifiedDay(now time.Time) {
	day := now.Format("2006-01-02")
	if day != s.intakeNotifiedDay {
		s.intakeNotified = schedule.NewNotifiedSet()
		s.intakeNotifiedDay = day
	}
}

// NotifiedIntakes returns the intake keys reminded so far today.
func (s *Service) NotifiedIntakes() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.intakeNotified.Keys()
}

// NotifiedAppointments returns the appointment ids reminded so far.
func (s *Service) NotifiedAppointments() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.apptNotified.Keys()
}

var statusNames = []string{
	string(schedule.StatusDueNow),
	string(schedule.StatusUpcomingSoon),
	string(schedule.StatusUpcomingLater),
	string(schedule.StatusPastToday),
}

func countByStatus(events []schedule.IntakeEvent) map[string]int {
	counts := make(map[string]int, len(statusNames))
	for _, e := range events {
		counts[string(e.Status)]++
	}
	return counts
}

// cronLogger routes the scheduler's logs through zap.
type cronLogger struct {
	l *zap.SugaredLogger
}

func (c cronLogger) Info(msg string, keysAndValues ...interface{}) {
	c.l.Debugw(msg, keysAndValues...)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	c.l.Errorw(msg, append(keysAndValues, "error", err)...)
}
