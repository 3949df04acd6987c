package api

import (
	"context"

	"google.golang.org/grpc"
)

const ServiceName = "health.v1.HealthService"

// full method names, used by interceptors
const (
	MethodRegister                 = "/" + ServiceName + "/Register"
	MethodLogin                    = "/" + ServiceName + "/Login"
	MethodCreateMedicationReminder = "/" + ServiceName + "/CreateMedicationReminder"
	MethodScheduleAppointment      = "/" + ServiceName + "/ScheduleAppointment"
	MethodExportHealthData         = "/" + ServiceName + "/ExportHealthData"
	MethodListMedications          = "/" + ServiceName + "/ListMedications"
	MethodUpdateMedication         = "/" + ServiceName + "/UpdateMedication"
	MethodDeleteMedication         = "/" + ServiceName + "/DeleteMedication"
	MethodListAppointments         = "/" + ServiceName + "/ListAppointments"
	MethodUpdateAppointment        = "/" + ServiceName + "/UpdateAppointment"
	MethodDeleteAppointment        = "/" + ServiceName + "/DeleteAppointment"
	MethodSaveHealthSurvey         = "/" + ServiceName + "/SaveHealthSurvey"
	MethodLatestHealthSurvey       = "/" + ServiceName + "/LatestHealthSurvey"
)

type HealthServiceServer interface {
	Register(context.Context, *RegisterRequest) (*RegisterResponse, error)
	Login(context.Context, *LoginRequest) (*LoginResponse, error)

	CreateMedicationReminder(context.Context, *CreateMedicationReminderRequest) (*CallResult, error)
	ScheduleAppointment(context.Context, *ScheduleAppointmentRequest) (*CallResult, error)
	ExportHealthData(context.Context, *ExportHealthDataRequest) (*ExportHealthDataResponse, error)

	ListMedications(context.Context, *ListMedicationsRequest) (*ListMedicationsResponse, error)
	UpdateMedication(context.Context, *UpdateMedicationRequest) (*Ack, error)
	DeleteMedication(context.Context, *DeleteRequest) (*Ack, error)
	ListAppointments(context.Context, *ListAppointmentsRequest) (*ListAppointmentsResponse, error)
	UpdateAppointment(context.Context, *UpdateAppointmentRequest) (*Ack, error)
	DeleteAppointment(context.Context, *DeleteRequest) (*Ack, error)
	SaveHealthSurvey(context.Context, *SaveHealthSurveyRequest) (*CallResult, error)
	LatestHealthSurvey(context.Context, *LatestHealthSurveyRequest) (*LatestHealthSurveyResponse, error)
}

func RegisterHealthServiceServer(s grpc.ServiceRegistrar, srv HealthServiceServer) {
	s.RegisterService(&ServiceDesc, srv)
}

// unary builds the method handler protoc would otherwise generate.
func unary[Req, Resp any](name string, call func(HealthServiceServer, context.Context, *Req) (*Resp, error)) grpc.MethodDesc {
	full := "/" + ServiceName + "/" + name
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(HealthServiceServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: full}
			return interceptor(ctx, in, info, func(ctx context.Context, req any) (any, error) {
				return call(srv.(HealthServiceServer), ctx, req.(*Req))
			})
		},
	}
}

var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*HealthServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		unary("Register", HealthServiceServer.Register),
		unary("Login", HealthServiceServer.Login),
		unary("CreateMedicationReminder", HealthServiceServer.CreateMedicationReminder),
		unary("ScheduleAppointment", HealthServiceServer.ScheduleAppointment),
		unary("ExportHealthData", HealthServiceServer.ExportHealthData),
		unary("ListMedications", HealthServiceServer.ListMedications),
		unary("UpdateMedication", HealthServiceServer.UpdateMedication),
		unary("DeleteMedication", HealthServiceServer.DeleteMedication),
		unary("ListAppointments", HealthServiceServer.ListAppointments),
		unary("UpdateAppointment", HealthServiceServer.UpdateAppointment),
		unary("DeleteAppointment", HealthServiceServer.DeleteAppointment),
		unary("SaveHealthSurvey", HealthServiceServer.SaveHealthSurvey),
		unary("LatestHealthSurvey", HealthServiceServer.LatestHealthSurvey),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "health/v1",
}
