package schedule

import (
	"sort"
	"time"

	"health-reminder-backend/internal/model"
	"health-reminder-backend/internal/parse"
)

// UrgencyStatus classifies an intake event by how close or overdue it is.
type UrgencyStatus string

const (
	StatusDueNow        UrgencyStatus = "due_now"
	StatusUpcomingSoon  UrgencyStatus = "upcoming_soon"
	StatusUpcomingLater UrgencyStatus = "upcoming_later"
	StatusPastToday     UrgencyStatus = "past_today"
)

// Urgency window bounds in minutes. The +5 boundary belongs to due_now.
const (
	dueNowEarliest   = -10
	dueNowLatest     = 5
	upcomingSoonEnds = 30
)

// IntakeEvent is one scheduled intake of one medication today. It is derived on
// every tick and never stored.
type IntakeEvent struct {
	MedicationID      string        `json:"medicationId"`
	MedicationName    string        `json:"medicationName"`
	IntakeTime        string        `json:"intakeTime"`
	ScheduledDateTime time.Time     `json:"scheduledDateTime"`
	MinutesUntil      int           `json:"minutesUntil"`
	Status            UrgencyStatus `json:"status"`
}

// Actionable reports whether a caregiver may record an outcome for the event.
func (e IntakeEvent) Actionable() bool {
	return e.Status == StatusDueNow || e.Status == StatusPastToday
}

// Classify maps signed minutes-until onto an urgency status.
func Classify(minutesUntil int) UrgencyStatus {
	switch {
	case minutesUntil >= dueNowEarliest && minutesUntil <= dueNowLatest:
		return StatusDueNow
	case minutesUntil > dueNowLatest && minutesUntil <= upcomingSoonEnds:
		return StatusUpcomingSoon
	case minutesUntil > upcomingSoonEnds:
		return StatusUpcomingLater
	default:
		return StatusPastToday
	}
}

// BuildTodaysIntakes expands the courses active on now's calendar date into
// intake events ordered by scheduled time. Equal times keep course then
// intake-time declaration order.
func BuildTodaysIntakes(courses []model.MedicationCourse, now time.Time) []IntakeEvent {
	today := parse.StartOfDay(now)

	var events []IntakeEvent
	for _, c := range courses {
		if !activeOn(c, today) {
			continue
		}
		for _, tod := range courseTimes(c) {
			at := tod.On(today)
			minutes := parse.MinutesBetween(at, now)
			events = append(events, IntakeEvent{
				MedicationID:      c.ID,
				MedicationName:    c.Name,
				IntakeTime:        tod.String(),
				ScheduledDateTime: at,
				MinutesUntil:      minutes,
				Status:            Classify(minutes),
			})
		}
	}

	sort.SliceStable(events, func(i, j int) bool {
		return events[i].ScheduledDateTime.Before(events[j].ScheduledDateTime)
	})
	return events
}

// activeOn reports whether day (midnight, in the caller's location) falls in
// the course's inclusive date range. Unparsable dates make the course inactive.
func activeOn(c model.MedicationCourse, day time.Time) bool {
	loc := day.Location()
	start, err := parse.ParseCalendarDate(c.StartDate, loc)
	if err != nil {
		return false
	}
	end, err := parse.ParseCalendarDate(c.EndDate, loc)
	if err != nil {
		return false
	}
	return !day.Before(start) && !day.After(end)
}

// courseTimes returns the course's valid, distinct intake times in declaration order.
func courseTimes(c model.MedicationCourse) []parse.TimeOfDay {
	seen := make(map[parse.TimeOfDay]bool, len(c.IntakeTimes))
	out := make([]parse.TimeOfDay, 0, len(c.IntakeTimes))
	for _, raw := range c.IntakeTimes {
		tod, err := parse.ParseTimeOfDay(raw)
		if err != nil || seen[tod] {
			continue
		}
		seen[tod] = true
		out = append(out, tod)
	}
	return out
}
