package schedule

import (
	"fmt"
	"time"

	"health-reminder-backend/internal/model"
	"health-reminder-backend/internal/parse"
)

// IntakeNotifiedKey identifies an intake reminder within a session.
func IntakeNotifiedKey(medicationID, intakeTime string) string {
	return medicationID + "-" + intakeTime
}

// DispatchDueNotifications notifies each due_now or upcoming_soon event at most
// once per session. Events already recorded in the log for today stay silent,
// whatever the outcome. Without notification permission nothing happens and the
// input set is returned.
func DispatchDueNotifications(n Notifier, events []IntakeEvent, log model.IntakeLog, notified NotifiedSet, now time.Time) NotifiedSet {
	if n == nil || !n.PermissionGranted() {
		return notified
	}

	today := parse.DateKey(now)
	next := notified.clone()
	for _, e := range events {
		if e.Status != StatusDueNow && e.Status != StatusUpcomingSoon {
			continue
		}
		if _, logged := log[model.IntakeLogKey(today, e.MedicationID, e.IntakeTime)]; logged {
			continue
		}
		key := IntakeNotifiedKey(e.MedicationID, e.IntakeTime)
		if next.Has(key) {
			continue
		}

		n.Notify(medicationTitle, intakeMessage(e), "medication-"+key)
		next.add(key)
	}
	return next
}

func intakeMessage(e IntakeEvent) string {
	if e.Status == StatusUpcomingSoon {
		return fmt.Sprintf("%s to take in %d minutes.", e.MedicationName, e.MinutesUntil)
	}
	return fmt.Sprintf("Time to take your %s.", e.MedicationName)
}

// LogIntakeOutcome returns a copy of log with the outcome recorded for the
// intake of medicationID at intakeTime on date. An existing entry is overwritten.
func LogIntakeOutcome(log model.IntakeLog, date time.Time, medicationID, intakeTime string, outcome model.IntakeOutcome) model.IntakeLog {
	next := make(model.IntakeLog, len(log)+1)
	for k, v := range log {
		next[k] = v
	}
	next[model.IntakeLogKey(parse.DateKey(date), medicationID, intakeTime)] = outcome
	return next
}
