package handler

import (
	"context"
	"encoding/json"
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"health-companion-api/internal/api"
	"health-companion-api/internal/model"
	"health-companion-api/internal/store"
)

// SaveHealthSurvey always inserts; earlier surveys are kept.
func (h *Handler) SaveHealthSurvey(ctx context.Context, req *api.SaveHealthSurveyRequest) (*api.CallResult, error) {
	userID, err := caller(ctx, "You must be logged in to save a survey")
	if err != nil {
		return nil, err
	}
	if len(req.Payload) == 0 || !json.Valid(req.Payload) {
		return nil, status.Error(codes.InvalidArgument, "survey payload must be JSON")
	}

	sv := &model.HealthSurvey{
		ID:        h.newID(),
		UserID:    userID,
		Payload:   req.Payload,
		CreatedAt: h.clock.Now(),
	}
	if req.CreatedAt != nil && !req.CreatedAt.IsZero() {
		sv.CreatedAt = *req.CreatedAt
	}
	if err := h.store.CreateSurvey(ctx, sv); err != nil {
		return nil, internal(err)
	}
	return &api.CallResult{Success: true, ID: sv.ID, Message: "Health survey saved"}, nil
}

func (h *Handler) LatestHealthSurvey(ctx context.Context, _ *api.LatestHealthSurveyRequest) (*api.LatestHealthSurveyResponse, error) {
	userID, err := caller(ctx, "You must be logged in to view surveys")
	if err != nil {
		return nil, err
	}
	sv, err := h.store.LatestSurvey(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return &api.LatestHealthSurveyResponse{}, nil
	}
	if err != nil {
		return nil, internal(err)
	}
	return &api.LatestHealthSurveyResponse{Survey: &api.HealthSurvey{
		ID:        sv.ID,
		Payload:   sv.Payload,
		CreatedAt: sv.CreatedAt,
	}}, nil
}
