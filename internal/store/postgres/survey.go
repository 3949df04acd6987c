package postgres

import (
	"context"

	"health-companion-api/internal/model"
)

func (s *Store) CreateSurvey(ctx context.Context, sv *model.HealthSurvey) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO health_surveys (id, user_id, payload, created_at) VALUES ($1,$2,$3,$4)`,
		sv.ID, sv.UserID, string(sv.Payload), sv.CreatedAt,
	)
	return err
}

func (s *Store) LatestSurvey(ctx context.Context, userID string) (*model.HealthSurvey, error) {
	sv := &model.HealthSurvey{}
	var payload []byte
	err := s.pool.QueryRow(ctx,
		`SELECT id, user_id, payload, created_at
		 FROM health_surveys
		 WHERE user_id = $1
		 ORDER BY created_at DESC, id DESC
		 LIMIT 1`, userID,
	).Scan(&sv.ID, &sv.UserID, &payload, &sv.CreatedAt)
	if err != nil {
		return nil, notFound(err)
	}
	sv.Payload = payload
	return sv, nil
}
