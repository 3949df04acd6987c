package handler

import (
	"context"
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"health-companion-api/internal/api"
	"health-companion-api/internal/model"
	"health-companion-api/internal/store"
)

func (h *Handler) CreateMedicationReminder(ctx context.Context, req *api.CreateMedicationReminderRequest) (*api.CallResult, error) {
	userID, err := caller(ctx, "You must be logged in to create a reminder")
	if err != nil {
		return nil, err
	}

	now := h.clock.Now()
	m := &model.MedicationReminder{
		ID:             h.newID(),
		UserID:         userID,
		MedicationName: req.MedicationName,
		Dosage:         req.Dosage,
		Frequency:      req.Frequency,
		Time:           req.Time,
		Notes:          req.Notes,
		CreatedAt:      now,
	}
	if next, ok := model.NextOccurrence(req.Time, now, h.loc); ok {
		m.NextDose = &next
	}

	if err := h.store.CreateMedication(ctx, m); err != nil {
		return nil, internal(err)
	}
	return &api.CallResult{
		Success: true,
		ID:      m.ID,
		Message: "Medication reminder created successfully",
	}, nil
}

func (h *Handler) ListMedications(ctx context.Context, _ *api.ListMedicationsRequest) (*api.ListMedicationsResponse, error) {
	userID, err := caller(ctx, "You must be logged in to view medications")
	if err != nil {
		return nil, err
	}
	meds, err := h.store.ListMedications(ctx, userID)
	if err != nil {
		return nil, internal(err)
	}
	out := make([]api.Medication, len(meds))
	for i := range meds {
		out[i] = toWireMedication(&meds[i])
	}
	return &api.ListMedicationsResponse{Medications: out}, nil
}

func (h *Handler) UpdateMedication(ctx context.Context, req *api.UpdateMedicationRequest) (*api.Ack, error) {
	userID, err := caller(ctx, "You must be logged in to update a medication")
	if err != nil {
		return nil, err
	}
	if req.ID == "" {
		return nil, status.Error(codes.InvalidArgument, "id required")
	}

	p := model.MedicationPatch{
		MedicationName: req.Patch.MedicationName,
		Dosage:         req.Patch.Dosage,
		Frequency:      req.Patch.Frequency,
		Time:           req.Patch.Time,
		NextDose:       req.Patch.NextDose,
		Notes:          req.Patch.Notes,
	}
	if err := h.store.UpdateMedication(ctx, userID, req.ID, p); err != nil {
		// not yours and not there look the same
		if errors.Is(err, store.ErrNotFound) {
			return nil, status.Error(codes.NotFound, "not found")
		}
		return nil, internal(err)
	}
	return &api.Ack{Success: true}, nil
}

func (h *Handler) DeleteMedication(ctx context.Context, req *api.DeleteRequest) (*api.Ack, error) {
	userID, err := caller(ctx, "You must be logged in to delete a medication")
	if err != nil {
		return nil, err
	}
	if req.ID == "" {
		return nil, status.Error(codes.InvalidArgument, "id required")
	}
	if err := h.store.DeleteMedication(ctx, userID, req.ID); err != nil {
		return nil, internal(err)
	}
	return &api.Ack{Success: true}, nil
}

func toWireMedication(m *model.MedicationReminder) api.Medication {
	return api.Medication{
		ID:             m.ID,
		MedicationName: m.MedicationName,
		Dosage:         m.Dosage,
		Frequency:      m.Frequency,
		Time:           m.Time,
		NextDose:       m.NextDose,
		Notes:          m.Notes,
		CreatedAt:      m.CreatedAt,
	}
}
