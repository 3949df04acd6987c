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

var validStatus = map[string]bool{
	model.StatusScheduled: true,
	model.StatusCompleted: true,
	model.StatusCancelled: true,
}

func (h *Handler) ScheduleAppointment(ctx context.Context, req *api.ScheduleAppointmentRequest) (*api.CallResult, error) {
	userID, err := caller(ctx, "You must be logged in to schedule an appointment")
	if err != nil {
		return nil, err
	}

	date, err := model.ParseDate(req.Date, h.loc)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, "date must be YYYY-MM-DD, YYYY-MM-DDTHH:MM or RFC 3339")
	}

	a := &model.Appointment{
		ID:         h.newID(),
		UserID:     userID,
		DoctorName: req.DoctorName,
		Specialty:  req.Speciality,
		Location:   req.Location,
		Date:       date,
		Time:       req.Time,
		Notes:      req.Notes,
		Status:     model.StatusScheduled,
		CreatedAt:  h.clock.Now(),
	}
	if err := h.store.CreateAppointment(ctx, a); err != nil {
		return nil, internal(err)
	}
	return &api.CallResult{
		Success: true,
		ID:      a.ID,
		Message: "Appointment scheduled successfully",
	}, nil
}

func (h *Handler) ListAppointments(ctx context.Context, _ *api.ListAppointmentsRequest) (*api.ListAppointmentsResponse, error) {
	userID, err := caller(ctx, "You must be logged in to view appointments")
	if err != nil {
		return nil, err
	}
	appts, err := h.store.ListAppointments(ctx, userID)
	if err != nil {
		return nil, internal(err)
	}
	out := make([]api.Appointment, len(appts))
	for i := range appts {
		out[i] = toWireAppointment(&appts[i])
	}
	return &api.ListAppointmentsResponse{Appointments: out}, nil
}

func (h *Handler) UpdateAppointment(ctx context.Context, req *api.UpdateAppointmentRequest) (*api.Ack, error) {
	userID, err := caller(ctx, "You must be logged in to update an appointment")
	if err != nil {
		return nil, err
	}
	if req.ID == "" {
		return nil, status.Error(codes.InvalidArgument, "id required")
	}

	p := model.AppointmentPatch{
		DoctorName: req.Patch.DoctorName,
		Specialty:  req.Patch.Speciality,
		Location:   req.Patch.Location,
		Time:       req.Patch.Time,
		Notes:      req.Patch.Notes,
		Status:     req.Patch.Status,
	}
	if req.Patch.Date != nil {
		date, err := model.ParseDate(*req.Patch.Date, h.loc)
		if err != nil {
			return nil, status.Error(codes.InvalidArgument, "date must be YYYY-MM-DD, YYYY-MM-DDTHH:MM or RFC 3339")
		}
		p.Date = &date
	}
	if p.Status != nil && !validStatus[*p.Status] {
		return nil, status.Error(codes.InvalidArgument, "status must be scheduled, completed or cancelled")
	}

	if err := h.store.UpdateAppointment(ctx, userID, req.ID, p); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, status.Error(codes.NotFound, "not found")
		}
		return nil, internal(err)
	}
	return &api.Ack{Success: true}, nil
}

func (h *Handler) DeleteAppointment(ctx context.Context, req *api.DeleteRequest) (*api.Ack, error) {
	userID, err := caller(ctx, "You must be logged in to delete an appointment")
	if err != nil {
		return nil, err
	}
	if req.ID == "" {
		return nil, status.Error(codes.InvalidArgument, "id required")
	}
	if err := h.store.DeleteAppointment(ctx, userID, req.ID); err != nil {
		return nil, internal(err)
	}
	return &api.Ack{Success: true}, nil
}

func toWireAppointment(a *model.Appointment) api.Appointment {
	return api.Appointment{
		ID:         a.ID,
		DoctorName: a.DoctorName,
		Speciality: a.Specialty,
		Location:   a.Location,
		Date:       a.Date,
		Time:       a.Time,
		Notes:      a.Notes,
		Status:     a.Status,
		Notified:   a.Notified,
		NotifiedAt: a.NotifiedAt,
		CreatedAt:  a.CreatedAt,
	}
}
