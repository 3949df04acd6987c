package handler

import (
	"context"
	"fmt"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"health-companion-api/internal/api"
	"health-companion-api/internal/report"
)

const (
	DataMedications  = "medications"
	DataAppointments = "appointments"
)

func (h *Handler) ExportHealthData(ctx context.Context, req *api.ExportHealthDataRequest) (*api.ExportHealthDataResponse, error) {
	userID, err := caller(ctx, "You must be logged in to export data")
	if err != nil {
		return nil, err
	}

	var csv string
	switch req.DataType {
	case DataMedications:
		meds, err := h.store.ListMedications(ctx, userID)
		if err != nil {
			return nil, internal(err)
		}
		csv = report.MedicationsCSV(meds)
	case DataAppointments:
		appts, err := h.store.ListAppointments(ctx, userID)
		if err != nil {
			return nil, internal(err)
		}
		csv = report.AppointmentsCSV(appts)
	default:
		return nil, status.Error(codes.InvalidArgument, "Invalid data type specified")
	}

	if csv == "" {
		return &api.ExportHealthDataResponse{Success: true, Data: "", Message: "No data found to export"}, nil
	}

	if h.archiver != nil {
		key := fmt.Sprintf("exports/%s/%s-%d.csv", userID, req.DataType, h.clock.Now().Unix())
		// best effort; the caller already has the data
		if err := h.archiver.Archive(ctx, key, []byte(csv)); err != nil {
			h.logger.Printf("export archive %s: %v", key, err)
		}
	}
	return &api.ExportHealthDataResponse{Success: true, Data: csv, Message: "Data exported successfully"}, nil
}
