package model

// Appointment is a scheduled visit. DateTime is an RFC3339 instant or a local
// "YYYY-MM-DDTHH:MM" value.
type Appointment struct {
	ID              string `json:"id"`
	DoctorName      string `json:"doctorName"`
	Specialty       string `json:"specialty,omitempty"`
	ContactPhone    string `json:"contactPhone,omitempty"`
	DateTime        string `json:"dateTime"`
	Location        string `json:"location,omitempty"`
	Notes           string `json:"notes,omitempty"`
	ConsultationID  string `json:"consultationId,omitempty"`
	PatientFullName string `json:"patientFullName,omitempty"`
}
