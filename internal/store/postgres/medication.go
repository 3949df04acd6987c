package postgres

import (
	"context"

	"health-companion-api/internal/model"
)

func (s *Store) CreateMedication(ctx context.Context, m *model.MedicationReminder) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO medication_reminders
		   (id, user_id, medication_name, dosage, frequency, time, next_dose, notes, created_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		m.ID, m.UserID, m.MedicationName, m.Dosage, m.Frequency, m.Time, m.NextDose, m.Notes, m.CreatedAt,
	)
	return err
}

func (s *Store) ListMedications(ctx context.Context, userID string) ([]model.MedicationReminder, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, user_id, medication_name, dosage, frequency, time, next_dose, notes, created_at
		 FROM medication_reminders
		 WHERE user_id = $1
		 ORDER BY created_at DESC, id`, userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.MedicationReminder
	for rows.Next() {
		var m model.MedicationReminder
		if err := rows.Scan(
			&m.ID, &m.UserID, &m.MedicationName, &m.Dosage, &m.Frequency,
			&m.Time, &m.NextDose, &m.Notes, &m.CreatedAt,
		); err != nil {
			return nil, err
		}
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
		up.set("next_dose", *p.NextDose)
	}
	if p.Notes != nil {
		up.set("notes", *p.Notes)
	}
	return s.exec(ctx, "medication_reminders", userID, id, &up)
}

func (s *Store) DeleteMedication(ctx context.Context, userID, id string) error {
	_, err := s.pool.Exec(ctx,
		`DELETE FROM medication_reminders WHERE id = $1 AND user_id = $2`, id, userID)
	return err
}
