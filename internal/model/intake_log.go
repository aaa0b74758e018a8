package model

import "strings"

// IntakeOutcome is the caregiver-confirmed result of one intake.
type IntakeOutcome string

const (
	OutcomeTaken   IntakeOutcome = "taken"
	OutcomeSkipped IntakeOutcome = "skipped"
)

// Valid reports whether o is a known outcome.
func (o IntakeOutcome) Valid() bool {
	return o == OutcomeTaken || o == OutcomeSkipped
}

// IntakeLog maps "{date}-{medicationId}-{intakeTime}" to an outcome.
type IntakeLog map[string]IntakeOutcome

// IntakeLogKey builds the log key for one intake on one calendar day.
func IntakeLogKey(date, medicationID, intakeTime string) string {
	return strings.Join([]string{date, medicationID, intakeTime}, "-")
}
