package model

// MedicationCourse is a prescription with an inclusive date range and daily intake times.
// Dates are kept as stored strings; the scheduling engine parses them and treats
// unparsable values as an inactive course.
type MedicationCourse struct {
	ID              string   `json:"id"`
	Name            string   `json:"name"`
	IntakeTimes     []string `json:"intakeTimes"` // "HH:MM"
	StartDate       string   `json:"startDate"`
	EndDate         string   `json:"endDate"`
	Notes           string   `json:"notes,omitempty"`
	ConsultationID  string   `json:"consultationId,omitempty"`
	PatientFullName string   `json:"patientFullName,omitempty"`
}
