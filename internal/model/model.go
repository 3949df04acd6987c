package model

import (
	"encoding/json"
	"time"
)

const (
	StatusScheduled = "scheduled"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
)

type User struct {
	ID           string
	Email        string
	PasswordHash string
	Name         string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Appointment is owned by UserID. Notified flips false -> true once and
// NotifiedAt keeps the instant of the first successful mark.
type Appointment struct {
	ID         string
	UserID     string
	DoctorName string
	Specialty  string
	Location   string
	Date       time.Time
	Time       string
	Notes      string
	Status     string
	Notified   bool
	NotifiedAt *time.Time
	CreatedAt  time.Time
}

type MedicationReminder struct {
	ID             string
	UserID         string
	MedicationName string
	Dosage         string
	Frequency      string
	Time           string
	NextDose       *time.Time
	Notes          string
	CreatedAt      time.Time
}

type HealthSurvey struct {
	ID        string
	UserID    string
	Payload   json.RawMessage
	CreatedAt time.Time
}

// patches: nil field = leave unchanged. Owner and notification fields are
// not patchable.

type MedicationPatch struct {
	MedicationName *string
	Dosage         *string
	Frequency      *string
	Time           *string
	NextDose       *time.Time
	Notes          *string
}

func (p MedicationPatch) Empty() bool {
	return p.MedicationName == nil && p.Dosage == nil && p.Frequency == nil &&
		p.Time == nil && p.NextDose == nil && p.Notes == nil
}

type AppointmentPatch struct {
	DoctorName *string
	Specialty  *string
	Location   *string
	Date       *time.Time
	Time       *string
	Notes      *string
	Status     *string
}

func (p AppointmentPatch) Empty() bool {
	return p.DoctorName == nil && p.Specialty == nil && p.Location == nil &&
		p.Date == nil && p.Time == nil && p.Notes == nil && p.Status == nil
}
