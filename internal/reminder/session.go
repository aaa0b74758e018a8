package reminder

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"health-reminder-backend/internal/apperr"
	"health-reminder-backend/internal/model"
	"health-reminder-backend/internal/parse"
	"health-reminder-backend/internal/schedule"
)

// TodayIntake is an intake event together with the outcome logged for it, if any.
type TodayIntake struct {
	schedule.IntakeEvent
	Outcome model.IntakeOutcome `json:"outcome,omitempty"`
}

// Dashboard summarises the current day.
type Dashboard struct {
	Date            string                         `json:"date"`
	Pending         int                            `json:"pending"`
	NextIntake      *TodayIntake                   `json:"nextIntake"`
	Adherence       schedule.AdherenceSnapshot     `json:"adherence"`
	NextAppointment *schedule.ScheduledAppointment `json:"nextAppointment"`
}

// Today returns today's intake events with their logged outcomes.
func (s *Service) Today(ctx context.Context) ([]TodayIntake, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	courses, log, err := s.loadIntakeState(ctx)
	if err != nil {
		return nil, err
	}
	return s.todayWithOutcomes(courses, log), nil
}

func (s *Service) todayWithOutcomes(courses []model.MedicationCourse, log model.IntakeLog) []TodayIntake {
	now := s.clock()
	events := schedule.BuildTodaysIntakes(courses, now)
	out := make([]TodayIntake, 0, len(events))
	for _, e := range events {
		out = append(out, TodayIntake{
			IntakeEvent: e,
			Outcome:     log[model.IntakeLogKey(parse.DateKey(now), e.MedicationID, e.IntakeTime)],
		})
	}
	return out
}

// Adherence returns the seven-day adherence snapshot.
func (s *Service) Adherence(ctx context.Context) (schedule.AdherenceSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	courses, log, err := s.loadIntakeState(ctx)
	if err != nil {
		return schedule.AdherenceSnapshot{}, err
	}
	return schedule.ComputeAdherence(courses, log, s.clock()), nil
}

// Appointments splits stored appointments into upcoming and past.
func (s *Service) Appointments(ctx context.Context) (schedule.AppointmentPartition, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	appointments, err := s.store.Appointments(ctx)
	if err != nil {
		return schedule.AppointmentPartition{}, apperr.Wrap(apperr.ErrInternal, "failed to load appointments", err)
	}
	return schedule.PartitionAppointments(appointments, s.clock()), nil
}

// Dashboard builds the summary shown on the home screen.
func (s *Service) Dashboard(ctx context.Context) (Dashboard, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	courses, log, err := s.loadIntakeState(ctx)
	if err != nil {
		return Dashboard{}, err
	}
	appointments, err := s.store.Appointments(ctx)
	if err != nil {
		return Dashboard{}, apperr.Wrap(apperr.ErrInternal, "failed to load appointments", err)
	}

	now := s.clock()
	d := Dashboard{
		Date:      parse.DateKey(now),
		Adherence: schedule.ComputeAdherence(courses, log, now),
	}
	for _, t := range s.todayWithOutcomes(courses, log) {
		if t.Outcome != "" {
			continue
		}
		d.Pending++
		if d.NextIntake == nil && t.Status != schedule.StatusPastToday {
			next := t
			d.NextIntake = &next
		}
	}
	if p := schedule.PartitionAppointments(appointments, now); len(p.Upcoming) > 0 {
		next := p.Upcoming[0]
		d.NextAppointment = &next
	}
	return d, nil
}

// ConfirmIntake records an outcome for one of today's intakes. Only events that
// are due now or already past and have no outcome yet can be confirmed.
func (s *Service) ConfirmIntake(ctx context.Context, medicationID, intakeTime string, outcome model.IntakeOutcome) (TodayIntake, error) {
	if !outcome.Valid() {
		return TodayIntake{}, apperr.Wrap(apperr.ErrBadRequest, "outcome must be taken or skipped")
	}
	tod, err := parse.ParseTimeOfDay(intakeTime)
	if err != nil {
		return TodayIntake{}, apperr.Wrap(apperr.ErrBadRequest, "intakeTime must be HH:MM", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	courses, log, err := s.loadIntakeState(ctx)
	if err != nil {
		return TodayIntake{}, err
	}

	now := s.clock()
	var event *schedule.IntakeEvent
	events := schedule.BuildTodaysIntakes(courses, now)
	for i := range events {
		if events[i].MedicationID == medicationID && events[i].IntakeTime == tod.String() {
			event = &events[i]
			break
		}
	}
	if event == nil {
		return TodayIntake{}, apperr.Wrap(apperr.ErrNotFound, "intake is not scheduled today")
	}
	if !event.Actionable() {
		return TodayIntake{}, apperr.Wrap(apperr.ErrNotActionable, "intake is not due yet")
	}
	if _, logged := log[model.IntakeLogKey(parse.DateKey(now), event.MedicationID, event.IntakeTime)]; logged {
		return TodayIntake{}, apperr.Wrap(apperr.ErrConflict, "intake already logged")
	}

	log = schedule.LogIntakeOutcome(log, now, event.MedicationID, event.IntakeTime, outcome)
	if err := s.store.SaveIntakeLog(ctx, log); err != nil {
		return TodayIntake{}, apperr.Wrap(apperr.ErrInternal, "failed to save intake log", err)
	}
	return TodayIntake{IntakeEvent: *event, Outcome: outcome}, nil
}

func (s *Service) loadIntakeState(ctx context.Context) ([]model.MedicationCourse, model.IntakeLog, error) {
	courses, err := s.store.Courses(ctx)
	if err != nil {
		return nil, nil, apperr.Wrap(apperr.ErrInternal, "failed to load medication courses", err)
	}
	log, err := s.store.IntakeLog(ctx)
	if err != nil {
		return nil, nil, apperr.Wrap(apperr.ErrInternal, "failed to load intake log", err)
	}
	return courses, log, nil
}

// Courses lists stored medication courses, newest first.
func (s *Service) Courses(ctx context.Context) ([]model.MedicationCourse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	courses, err := s.store.Courses(ctx)
	if err != nil {
		return nil, apperr.Wrap(apperr.ErrInternal, "failed to load medication courses", err)
	}
	return courses, nil
}

// CreateCourse validates and stores a new course with a generated id.
func (s *Service) CreateCourse(ctx context.Context, in model.MedicationCourse) (model.MedicationCourse, error) {
	course, err := s.normalizeCourse(in)
	if err != nil {
		return model.MedicationCourse{}, err
	}
	course.ID = uuid.NewString()

	s.mu.Lock()
	defer s.mu.Unlock()

	courses, err := s.store.Courses(ctx)
	if err != nil {
		return model.MedicationCourse{}, apperr.Wrap(apperr.ErrInternal, "failed to load medication courses", err)
	}
	courses = append([]model.MedicationCourse{course}, courses...)
	if err := s.saveCourses(ctx, courses); err != nil {
		return model.MedicationCourse{}, err
	}
	return course, nil
}

// UpdateCourse replaces the course with the given id.
func (s *Service) UpdateCourse(ctx context.Context, id string, in model.MedicationCourse) (model.MedicationCourse, error) {
	course, err := s.normalizeCourse(in)
	if err != nil {
		return model.MedicationCourse{}, err
	}
	course.ID = id

	s.mu.Lock()
	defer s.mu.Unlock()

	courses, err := s.store.Courses(ctx)
	if err != nil {
		return model.MedicationCourse{}, apperr.Wrap(apperr.ErrInternal, "failed to load medication courses", err)
	}
	i := indexOfCourse(courses, id)
	if i < 0 {
		return model.MedicationCourse{}, apperr.Wrap(apperr.ErrNotFound, "medication course not found")
	}
	courses[i] = course
	if err := s.saveCourses(ctx, courses); err != nil {
		return model.MedicationCourse{}, err
	}
	return course, nil
}

// DeleteCourse removes the course with the given id. Logged outcomes are kept.
func (s *Service) DeleteCourse(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	courses, err := s.store.Courses(ctx)
	if err != nil {
		return apperr.Wrap(apperr.ErrInternal, "failed to load medication courses", err)
	}
	i := indexOfCourse(courses, id)
	if i < 0 {
		return apperr.Wrap(apperr.ErrNotFound, "medication course not found")
	}
	courses = append(courses[:i], courses[i+1:]...)
	return s.saveCourses(ctx, courses)
}

// saveCourses persists courses and forgets which intakes were already
// reminded, since their times may have changed.
func (s *Service) saveCourses(ctx context.Context, courses []model.MedicationCourse) error {
	if err := s.store.SaveCourses(ctx, courses); err != nil {
		return apperr.Wrap(apperr.ErrInternal, "failed to save medication courses", err)
	}
	s.intakeNotified = schedule.NewNotifiedSet()
	return nil
}

func (s *Service) normalizeCourse(in model.MedicationCourse) (model.MedicationCourse, error) {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return in, apperr.Wrap(apperr.ErrBadRequest, "name is required")
	}
	if len(in.IntakeTimes) == 0 {
		return in, apperr.Wrap(apperr.ErrBadRequest, "at least one intake time is required")
	}
	times := make([]string, 0, len(in.IntakeTimes))
	for _, raw := range in.IntakeTimes {
		tod, err := parse.ParseTimeOfDay(raw)
		if err != nil {
			return in, apperr.Wrap(apperr.ErrBadRequest, "intake times must be HH:MM", err)
		}
		times = append(times, tod.String())
	}
	in.IntakeTimes = times

	start, err := parse.ParseCalendarDate(in.StartDate, s.loc)
	if err != nil {
		return in, apperr.Wrap(apperr.ErrBadRequest, "startDate must be YYYY-MM-DD", err)
	}
	end, err := parse.ParseCalendarDate(in.EndDate, s.loc)
	if err != nil {
		return in, apperr.Wrap(apperr.ErrBadRequest, "endDate must be YYYY-MM-DD", err)
	}
	if end.Before(start) {
		return in, apperr.Wrap(apperr.ErrBadRequest, "endDate must not be before startDate")
	}
	return in, nil
}

func indexOfCourse(courses []model.MedicationCourse, id string) int {
	for i, c := range courses {
		if c.ID == id {
			return i
		}
	}
	return -1
}

// CreateAppointment validates and stores a new appointment with a generated id.
func (s *Service) CreateAppointment(ctx context.Context, in model.Appointment) (model.Appointment, error) {
	appt, err := s.normalizeAppointment(in)
	if err != nil {
		return model.Appointment{}, err
	}
	appt.ID = uuid.NewString()

	s.mu.Lock()
	defer s.mu.Unlock()

	appointments, err := s.store.Appointments(ctx)
	if err != nil {
		return model.Appointment{}, apperr.Wrap(apperr.ErrInternal, "failed to load appointments", err)
	}
	appointments = append(appointments, appt)
	if err := s.saveAppointments(ctx, appointments); err != nil {
		return model.Appointment{}, err
	}
	return appt, nil
}

// UpdateAppointment replaces the appointment with the given id.
func (s *Service) UpdateAppointment(ctx context.Context, id string, in model.Appointment) (model.Appointment, error) {
	appt, err := s.normalizeAppointment(in)
	if err != nil {
		return model.Appointment{}, err
	}
	appt.ID = id

	s.mu.Lock()
	defer s.mu.Unlock()

	appointments, err := s.store.Appointments(ctx)
	if err != nil {
		return model.Appointment{}, apperr.Wrap(apperr.ErrInternal, "failed to load appointments", err)
	}
	i := indexOfAppointment(appointments, id)
	if i < 0 {
		return model.Appointment{}, apperr.Wrap(apperr.ErrNotFound, "appointment not found")
	}
	appointments[i] = appt
	if err := s.saveAppointments(ctx, appointments); err != nil {
		return model.Appointment{}, err
	}
	return appt, nil
}

// DeleteAppointment removes the appointment with the given id.
func (s *Service) DeleteAppointment(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	appointments, err := s.store.Appointments(ctx)
	if err != nil {
		return apperr.Wrap(apperr.ErrInternal, "failed to load appointments", err)
	}
	i := indexOfAppointment(appointments, id)
	if i < 0 {
		return apperr.Wrap(apperr.ErrNotFound, "appointment not found")
	}
	appointments = append(appointments[:i], appointments[i+1:]...)
	return s.saveAppointments(ctx, appointments)
}

func (s *Service) saveAppointments(ctx context.Context, appointments []model.Appointment) error {
	if err := s.store.SaveAppointments(ctx, appointments); err != nil {
		return apperr.Wrap(apperr.ErrInternal, "failed to save appointments", err)
	}
	s.apptNotified = schedule.NewNotifiedSet()
	return nil
}

func (s *Service) normalizeAppointment(in model.Appointment) (model.Appointment, error) {
	in.DoctorName = strings.TrimSpace(in.DoctorName)
	if in.DoctorName == "" {
		return in, apperr.Wrap(apperr.ErrBadRequest, "doctorName is required")
	}
	in.DateTime = strings.TrimSpace(in.DateTime)
	if _, err := parse.ParseInstant(in.DateTime, s.loc); err != nil {
		return in, apperr.Wrap(apperr.ErrBadRequest, "dateTime must be an ISO date-time", err)
	}
	return in, nil
}

func indexOfAppointment(appointments []model.Appointment, id string) int {
	for i, a := range appointments {
		if a.ID == id {
			return i
		}
	}
	return -1
}
