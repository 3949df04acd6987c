package api

import (
	"encoding/json"
	"time"
)

// auth

type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

type RegisterResponse struct {
	UserID string `json:"userId"`
	Token  string `json:"token"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	UserID string `json:"userId"`
	Token  string `json:"token"`
	Name   string `json:"name"`
}

// callables

type CreateMedicationReminderRequest struct {
	MedicationName string `json:"medicationName"`
	Dosage         string `json:"dosage"`
	Frequency      string `json:"frequency"`
	Time           string `json:"time"`
	Notes          string `json:"notes"`
}

type ScheduleAppointmentRequest struct {
	DoctorName string `json:"doctorName"`
	Speciality string `json:"speciality"`
	Location   string `json:"location"`
	Date       string `json:"date"`
	Time       string `json:"time"`
	Notes      string `json:"notes"`
}

// CallResult is the {success, id, message} envelope of a create callable.
type CallResult struct {
	Success bool   `json:"success"`
	ID      string `json:"id,omitempty"`
	Message string `json:"message"`
}

type ExportHealthDataRequest struct {
	DataType string `json:"dataType"`
}

type ExportHealthDataResponse struct {
	Success bool   `json:"success"`
	Data    string `json:"data"`
	Message string `json:"message"`
}

// records

type Medication struct {
	ID             string     `json:"id"`
	MedicationName string     `json:"medicationName"`
	Dosage         string     `json:"dosage"`
	Frequency      string     `json:"frequency"`
	Time           string     `json:"time"`
	NextDose       *time.Time `json:"nextDose,omitempty"`
	Notes          string     `json:"notes"`
	CreatedAt      time.Time  `json:"createdAt"`
}

type Appointment struct {
	ID         string     `json:"id"`
	DoctorName string     `json:"doctorName"`
	Speciality string     `json:"speciality"`
	Location   string     `json:"location"`
	Date       time.Time  `json:"date"`
	Time       string     `json:"time"`
	Notes      string     `json:"notes"`
	Status     string     `json:"status"`
	Notified   bool       `json:"notified"`
	NotifiedAt *time.Time `json:"notifiedAt,omitempty"`
	CreatedAt  time.Time  `json:"createdAt"`
}

type ListMedicationsRequest struct{}

type ListMedicationsResponse struct {
	Medications []Medication `json:"medications"`
}

type ListAppointmentsRequest struct{}

type ListAppointmentsResponse struct {
	Appointments []Appointment `json:"appointments"`
}

// MedicationPatch: absent (nil) fields are left unchanged.
type MedicationPatch struct {
	MedicationName *string    `json:"medicationName,omitempty"`
	Dosage         *string    `json:"dosage,omitempty"`
	Frequency      *string    `json:"frequency,omitempty"`
	Time           *string    `json:"time,omitempty"`
	NextDose       *time.Time `json:"nextDose,omitempty"`
	Notes          *string    `json:"notes,omitempty"`
}

type UpdateMedicationRequest struct {
	ID    string          `json:"id"`
	Patch MedicationPatch `json:"patch"`
}

type AppointmentPatch struct {
	DoctorName *string `json:"doctorName,omitempty"`
	Speciality *string `json:"speciality,omitempty"`
	Location   *string `json:"location,omitempty"`
	// Date takes the same layouts as ScheduleAppointmentRequest.Date.
	Date   *string `json:"date,omitempty"`
	Time   *string `json:"time,omitempty"`
	Notes  *string `json:"notes,omitempty"`
	Status *string `json:"status,omitempty"`
}

type UpdateAppointmentRequest struct {
	ID    string           `json:"id"`
	Patch AppointmentPatch `json:"patch"`
}

type DeleteRequest struct {
	ID string `json:"id"`
}

type Ack struct {
	Success bool `json:"success"`
}

// SaveHealthSurveyRequest carries the client's own timestamp; the server
// stamps surveys that arrive without one.
type SaveHealthSurveyRequest struct {
	Payload   json.RawMessage `json:"payload"`
	CreatedAt *time.Time      `json:"createdAt,omitempty"`
}

type LatestHealthSurveyRequest struct{}

type HealthSurvey struct {
	ID        string          `json:"id"`
	Payload   json.RawMessage `json:"payload"`
	CreatedAt time.Time       `json:"createdAt"`
}

// LatestHealthSurveyResponse.Survey is nil when the caller has none.
type LatestHealthSurveyResponse struct {
	Survey *HealthSurvey `json:"survey,omitempty"`
}
