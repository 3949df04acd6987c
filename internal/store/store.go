// Package store defines the record store the gateway, the reminder job and
// the HTTP reports read and write. Every query is scoped by owner except the
// reminder scan, which is a system-wide read.
package store

import (
	"context"
	"errors"
	"time"

	"health-companion-api/internal/model"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("record already exists")
)

type Users interface {
	CreateUser(ctx context.Context, u *model.User) error
	UserByEmail(ctx context.Context, email string) (*model.User, error)
}

type Medications interface {
	CreateMedication(ctx context.Context, m *model.MedicationReminder) error
	// ListMedications is newest first.
	ListMedications(ctx context.Context, userID string) ([]model.MedicationReminder, error)
	UpdateMedication(ctx context.Context, userID, id string, p model.MedicationPatch) error
	DeleteMedication(ctx context.Context, userID, id string) error
}

type Appointments interface {
	CreateAppointment(ctx context.Context, a *model.Appointment) error
	// ListAppointments is ordered by date ascending.
	ListAppointments(ctx context.Context, userID string) ([]model.Appointment, error)
	UpdateAppointment(ctx context.Context, userID, id string, p model.AppointmentPatch) error
	DeleteAppointment(ctx context.Context, userID, id string) error
}

// Reminders is the scan job's view: every owner, status scheduled,
// after < date <= until.
type Reminders interface {
	ScheduledBetween(ctx context.Context, after, until time.Time) ([]model.Appointment, error)
	// MarkNotified sets notified and, if not already set, notified_at.
	MarkNotified(ctx context.Context, id string, at time.Time) error
}

type Surveys interface {
	CreateSurvey(ctx context.Context, s *model.HealthSurvey) error
	LatestSurvey(ctx context.Context, userID string) (*model.HealthSurvey, error)
}

type Store interface {
	Users
	Medications
	Appointments
	Reminders
	Surveys
	Close()
}
