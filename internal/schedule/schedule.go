// Package schedule computes medication intake events, adherence and reminder
// dispatch decisions. Every function here is a pure function of its inputs plus
// the Notifier it is handed; malformed stored records are skipped, never reported.
package schedule

// Notifier is the host notification sink.
type Notifier interface {
	// PermissionGranted reports whether the user allowed notifications.
	PermissionGranted() bool
	// Notify delivers a notification without waiting for confirmation.
	// Notifications sharing a tag replace each other on the client.
	Notify(title, body, tag string)
}

const (
	medicationTitle  = "Medication reminder"
	appointmentTitle = "Appointment reminder"
)
