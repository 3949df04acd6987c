package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"health-companion-api/internal/model"
)

const appointmentCols = `id, user_id, doctor_name, specialty, location, date, time,
	notes, status, notified, notified_at, created_at`

func (s *Store) CreateAppointment(ctx context.Context, a *model.Appointment) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO appointments
		   (id, user_id, doctor_name, specialty, location, date, time, notes, status, notified, created_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)`,
		a.ID, a.UserID, a.DoctorName, a.Specialty, a.Location, a.Date, a.Time,
		a.Notes, a.Status, a.Notified, a.CreatedAt,
	)
	return err
}

func (s *Store) ListAppointments(ctx context.Context, userID string) ([]model.Appointment, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+appointmentCols+`
		 FROM appointments
		 WHERE user_id = $1
		 ORDER BY date, id`, userID,
	)
	if err != nil {
		return nil, err
	}
	return scanAppointments(rows)
}

func (s *Store) ScheduledBetween(ctx context.Context, after, until time.Time) ([]model.Appointment, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+appointmentCols+`
		 FROM appointments
		 WHERE status = $1 AND date > $2 AND date <= $3
		 ORDER BY date, id`, model.StatusScheduled, after, until,
	)
	if err != nil {
		return nil, err
	}
	return scanAppointments(rows)
}

func (s *Store) MarkNotified(ctx context.Context, id string, at time.Time) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE appointments
		 SET notified = TRUE, notified_at = COALESCE(notified_at, $2)
		 WHERE id = $1`, id, at,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return notFound(pgx.ErrNoRows)
	}
	return nil
}

func (s *Store) UpdateAppointment(ctx context.Context, userID, id string, p model.AppointmentPatch) error {
	var up patch
	if p.DoctorName != nil {
		up.set("doctor_name", *p.DoctorName)
	}
	if p.Specialty != nil {
		up.set("specialty", *p.Specialty)
	}
	if p.Location != nil {
		up.set("location", *p.Location)
	}
	if p.Date != nil {
		up.set("date", *p.Date)
	}
	if p.Time != nil {
		up.set("time", *p.Time)
	}
	if p.Notes != nil {
		up.set("notes", *p.Notes)
	}
	if p.Status != nil {
		up.set("status", *p.Status)
	}
	return s.exec(ctx, "appointments", userID, id, &up)
}

func (s *Store) DeleteAppointment(ctx context.Context, userID, id string) error {
	_, err := s.pool.Exec(ctx,
		`DELETE FROM appointments WHERE id = $1 AND user_id = $2`, id, userID)
	return err
}

func scanAppointments(rows pgx.Rows) ([]model.Appointment, error) {
	defer rows.Close()

	var out []model.Appointment
	for rows.Next() {
		var a model.Appointment
		if err := rows.Scan(
			&a.ID, &a.UserID, &a.DoctorName, &a.Specialty, &a.Location, &a.Date, &a.Time,
			&a.Notes, &a.Status, &a.Notified, &a.NotifiedAt, &a.CreatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
