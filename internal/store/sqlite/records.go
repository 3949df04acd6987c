package sqlite

import (
	"context"
	"database/sql"
	"time"

	"health-companion-api/internal/model"
	"health-companion-api/internal/store"
)

func (s *Store) CreateUser(ctx context.Context, u *model.User) error {
	now := time.Now().UTC()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO users (id, email, password_hash, name, created_at, updated_at) VALUES (?,?,?,?,?,?)`,
		u.ID, u.Email, u.PasswordHash, u.Name, millis(now), millis(now),
	)
	if isUniqueViolation(err) {
		return store.ErrDuplicate
	}
	if err != nil {
		return err
	}
	u.CreatedAt, u.UpdatedAt = fromMillis(millis(now)), fromMillis(millis(now))
	return nil
}

func (s *Store) UserByEmail(ctx context.Context, email string) (*model.User, error) {
	u := &model.User{}
	var created, updated int64
	err := s.db.QueryRowContext(ctx,
		`SELECT id, email, password_hash, name, created_at, updated_at FROM users WHERE email = ?`, email,
	).Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Name, &created, &updated)
	if err != nil {
		return nil, notFound(err)
	}
	u.CreatedAt, u.UpdatedAt = fromMillis(created), fromMillis(updated)
	return u, nil
}

// medications

func (s *Store) CreateMedication(ctx context.Context, m *model.MedicationReminder) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO medication_reminders
		   (id, user_id, medication_name, dosage, frequency, time, next_dose, notes, created_at)
		 VALUES (?,?,?,?,?,?,?,?,?)`,
		m.ID, m.UserID, m.MedicationName, m.Dosage, m.Frequency, m.Time,
		nullMillis(m.NextDose), m.Notes, millis(m.CreatedAt),
	)
	return err
}

func (s *Store) ListMedications(ctx context.Context, userID string) ([]model.MedicationReminder, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, medication_name, dosage, frequency, time, next_dose, notes, created_at
		 FROM medication_reminders WHERE user_id = ?
		 ORDER BY created_at DESC, id`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.MedicationReminder
	for rows.Next() {
		var (
			m       model.MedicationReminder
			next    sql.NullInt64
			created int64
		)
		if err := rows.Scan(&m.ID, &m.UserID, &m.MedicationName, &m.Dosage, &m.Frequency,
			&m.Time, &next, &m.Notes, &created); err != nil {
			return nil, err
		}
		m.NextDose, m.CreatedAt = timePtr(next), fromMillis(created)
		out = append(out, m)
	}
	return out, rows.Err()
}

func (s *Store) UpdateMedication(ctx context.Context, userID, id string, p model.MedicationPatch) error {
	var up patch
	if p.MedicationName != nil {
		up.set("medication_name", *p.MedicationName)
	}
	if p.Dosage != nil {
		up.set("dosage", *p.Dosage)
	}
	if p.Frequency != nil {
		up.set("frequency", *p.Frequency)
	}
	if p.Time != nil {
		up.set("time", *p.Time)
	}
	if p.NextDose != nil {
		up.set("next_dose", millis(*p.NextDose))
	}
	if p.Notes != nil {
		up.set("notes", *p.Notes)
	}
	return s.exec(ctx, "medication_reminders", userID, id, &up)
}

func (s *Store) DeleteMedication(ctx context.Context, userID, id string) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM medication_reminders WHERE id = ? AND user_id = ?`, id, userID)
	return err
}

// appointments

const appointmentCols = `id, user_id, doctor_name, specialty, location, date, time,
	notes, status, notified, notified_at, created_at`

func (s *Store) CreateAppointment(ctx context.Context, a *model.Appointment) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO appointments
		   (id, user_id, doctor_name, specialty, location, date, time, notes, status, notified, notified_at, created_at)
		 VALUES (?,?,?,?,?,?,?,?,?,?,?,?)`,
		a.ID, a.UserID, a.DoctorName, a.Specialty, a.Location, millis(a.Date), a.Time,
		a.Notes, a.Status, a.Notified, nullMillis(a.NotifiedAt), millis(a.CreatedAt),
	)
	return err
}

func (s *Store) ListAppointments(ctx context.Context, userID string) ([]model.Appointment, error) {
	return s.queryAppointments(ctx,
		`SELECT `+appointmentCols+` FROM appointments WHERE user_id = ? ORDER BY date, id`, userID)
}

func (s *Store) ScheduledBetween(ctx context.Context, after, until time.Time) ([]model.Appointment, error) {
	return s.queryAppointments(ctx,
		`SELECT `+appointmentCols+` FROM appointments
		 WHERE status = ? AND date > ? AND date <= ?
		 ORDER BY date, id`, model.StatusScheduled, millis(after), millis(until))
}

func (s *Store) MarkNotified(ctx context.Context, id string, at time.Time) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE appointments SET notified = 1, notified_at = COALESCE(notified_at, ?) WHERE id = ?`,
		millis(at), id)
	if err != nil {
		return err
	}
	return affected(res)
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
		up.set("date", millis(*p.Date))
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
	_, err := s.db.ExecContext(ctx, `DELETE FROM appointments WHERE id = ? AND user_id = ?`, id, userID)
	return err
}

func (s *Store) queryAppointments(ctx context.Context, q string, args ...any) ([]model.Appointment, error) {
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Appointment
	for rows.Next() {
		var (
			a             model.Appointment
			date, created int64
			notifiedAt    sql.NullInt64
		)
		if err := rows.Scan(&a.ID, &a.UserID, &a.DoctorName, &a.Specialty, &a.Location, &date, &a.Time,
			&a.Notes, &a.Status, &a.Notified, &notifiedAt, &created); err != nil {
			return nil, err
		}
		a.Date, a.NotifiedAt, a.CreatedAt = fromMillis(date), timePtr(notifiedAt), fromMillis(created)
		out = append(out, a)
	}
	return out, rows.Err()
}

// surveys

func (s *Store) CreateSurvey(ctx context.Context, sv *model.HealthSurvey) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO health_surveys (id, user_id, payload, created_at) VALUES (?,?,?,?)`,
		sv.ID, sv.UserID, string(sv.Payload), millis(sv.CreatedAt))
	return err
}

func (s *Store) LatestSurvey(ctx context.Context, userID string) (*model.HealthSurvey, error) {
	sv := &model.HealthSurvey{}
	var (
		payload string
		created int64
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, user_id, payload, created_at FROM health_surveys
		 WHERE user_id = ? ORDER BY created_at DESC, rowid DESC LIMIT 1`, userID,
	).Scan(&sv.ID, &sv.UserID, &payload, &created)
	if err != nil {
		return nil, notFound(err)
	}
	sv.Payload, sv.CreatedAt = []byte(payload), fromMillis(created)
	return sv, nil
}
