package schedule

import (
	"fmt"
	"sort"
	"time"

	"health-reminder-backend/internal/model"
	"health-reminder-backend/internal/parse"
)

// DefaultAppointmentLeadMinutes is how long before an appointment the reminder fires.
const DefaultAppointmentLeadMinutes = 60

// ScheduledAppointment is an appointment whose date-time parsed successfully.
type ScheduledAppointment struct {
	model.Appointment
	At time.Time `json:"at"`
}

// AppointmentPartition splits appointments around "now".
type AppointmentPartition struct {
	Upcoming []ScheduledAppointment `json:"upcoming"`
	Past     []ScheduledAppointment `json:"past"`
}

// PartitionAppointments puts appointments strictly after now in Upcoming
// (soonest first) and the rest in Past (most recent first). Appointments with an
// unparsable date-time appear in neither list.
func PartitionAppointments(appointments []model.Appointment, now time.Time) AppointmentPartition {
	p := AppointmentPartition{
		Upcoming: []ScheduledAppointment{},
		Past:     []ScheduledAppointment{},
	}
	for _, a := range appointments {
		at, err := parse.ParseInstant(a.DateTime, now.Location())
		if err != nil {
			continue
		}
		sa := ScheduledAppointment{Appointment: a, At: at}
		if at.After(now) {
			p.Upcoming = append(p.Upcoming, sa)
		} else {
			p.Past = append(p.Past, sa)
		}
	}

	sort.SliceStable(p.Upcoming, func(i, j int) bool { return p.Upcoming[i].At.Before(p.Upcoming[j].At) })
	sort.SliceStable(p.Past, func(i, j int) bool { return p.Past[i].At.After(p.Past[j].At) })
	return p
}

// DispatchAppointmentReminders reminds once per appointment when it is more than
// zero and at most leadMinutes whole minutes away. A non-positive lead falls back
// to DefaultAppointmentLeadMinutes.
func DispatchAppointmentReminders(n Notifier, upcoming []ScheduledAppointment, notified NotifiedSet, now time.Time, leadMinutes int) NotifiedSet {
	if n == nil || !n.PermissionGranted() {
		return notified
	}
	if leadMinutes <= 0 {
		leadMinutes = DefaultAppointmentLeadMinutes
	}

	next := notified.clone()
	for _, a := range upcoming {
		minutes := parse.MinutesBetween(a.At, now)
		if minutes <= 0 || minutes > leadMinutes || next.Has(a.ID) {
			continue
		}
		body := fmt.Sprintf("Your appointment with %s is at %s.", a.DoctorName, a.At.In(now.Location()).Format("15:04"))
		n.Notify(appointmentTitle, body, "appointment-"+a.ID)
		next.add(a.ID)
	}
	return next
}
