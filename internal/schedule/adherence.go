package schedule

import (
	"math"
	"time"

	"health-reminder-backend/internal/model"
	"health-reminder-backend/internal/parse"
)

// AdherenceWindowDays is the length of the trailing window, today included.
const AdherenceWindowDays = 7

// AdherenceSnapshot summarises confirmed intakes over the trailing window.
// Percentage is nil when nothing was scheduled, which is not the same as 0%.
type AdherenceSnapshot struct {
	Percentage     *int `json:"percentage"`
	TakenCount     int  `json:"takenCount"`
	ScheduledCount int  `json:"scheduledCount"`
}

// ComputeAdherence counts, for every day from today-6 through today, the intakes
// of each course active that day and how many of them were logged as taken.
// Skipped and unlogged intakes count as scheduled but not taken.
func ComputeAdherence(courses []model.MedicationCourse, log model.IntakeLog, now time.Time) AdherenceSnapshot {
	today := parse.StartOfDay(now)

	var snap AdherenceSnapshot
	for i := AdherenceWindowDays - 1; i >= 0; i-- {
		day := today.AddDate(0, 0, -i)
		dateKey := parse.DateKey(day)
		for _, c := range courses {
			if !activeOn(c, day) {
				continue
			}
			for _, tod := range courseTimes(c) {
				snap.ScheduledCount++
				if log[model.IntakeLogKey(dateKey, c.ID, tod.String())] == model.OutcomeTaken {
					snap.TakenCount++
				}
			}
		}
	}

	if snap.ScheduledCount > 0 {
		pct := int(math.Round(100 * float64(snap.TakenCount) / float64(snap.ScheduledCount)))
		snap.Percentage = &pct
	}
	return snap
}
