package api

import (
	"context"
	"sync"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

// Client is the typed health.v1 client. The bearer token can be swapped after
// Login without redialling.
type Client struct {
	conn  *grpc.ClientConn
	creds *bearer
}

// Dial connects to addr. Extra options are appended after the defaults, so
// tests can override the dialer or transport.
func Dial(addr string, opts ...grpc.DialOption) (*Client, error) {
	creds := &bearer{}
	opts = append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithPerRPCCredentials(creds),
		grpc.WithDefaultCallOptions(grpc.CallContentSubtype(CodecName)),
	}, opts...)
	conn, err := grpc.NewClient(addr, opts...)
	if err != nil {
		return nil, err
	}
	return &Client{conn: conn, creds: creds}, nil
}

func (c *Client) Close() error { return c.conn.Close() }

func (c *Client) SetToken(tok string) { c.creds.set(tok) }

func (c *Client) invoke(ctx context.Context, method string, in, out any) error {
	return c.conn.Invoke(ctx, method, in, out)
}

func (c *Client) Register(ctx context.Context, in *RegisterRequest) (*RegisterResponse, error) {
	out := new(RegisterResponse)
	return out, c.invoke(ctx, MethodRegister, in, out)
}

func (c *Client) Login(ctx context.Context, in *LoginRequest) (*LoginResponse, error) {
	out := new(LoginResponse)
	return out, c.invoke(ctx, MethodLogin, in, out)
}

func (c *Client) CreateMedicationReminder(ctx context.Context, in *CreateMedicationReminderRequest) (*CallResult, error) {
	out := new(CallResult)
	return out, c.invoke(ctx, MethodCreateMedicationReminder, in, out)
}

func (c *Client) ScheduleAppointment(ctx context.Context, in *ScheduleAppointmentRequest) (*CallResult, error) {
	out := new(CallResult)
	return out, c.invoke(ctx, MethodScheduleAppointment, in, out)
}

func (c *Client) ExportHealthData(ctx context.Context, in *ExportHealthDataRequest) (*ExportHealthDataResponse, error) {
	out := new(ExportHealthDataResponse)
	return out, c.invoke(ctx, MethodExportHealthData, in, out)
}

func (c *Client) ListMedications(ctx context.Context) ([]Medication, error) {
	out := new(ListMedicationsResponse)
	if err := c.invoke(ctx, MethodListMedications, &ListMedicationsRequest{}, out); err != nil {
		return nil, err
	}
	return out.Medications, nil
}

func (c *Client) UpdateMedication(ctx context.Context, id string, p MedicationPatch) error {
	return c.invoke(ctx, MethodUpdateMedication, &UpdateMedicationRequest{ID: id, Patch: p}, new(Ack))
}

func (c *Client) DeleteMedication(ctx context.Context, id string) error {
	return c.invoke(ctx, MethodDeleteMedication, &DeleteRequest{ID: id}, new(Ack))
}

func (c *Client) ListAppointments(ctx context.Context) ([]Appointment, error) {
	out := new(ListAppointmentsResponse)
	if err := c.invoke(ctx, MethodListAppointments, &ListAppointmentsRequest{}, out); err != nil {
		return nil, err
	}
	return out.Appointments, nil
}

func (c *Client) UpdateAppointment(ctx context.Context, id string, p AppointmentPatch) error {
	return c.invoke(ctx, MethodUpdateAppointment, &UpdateAppointmentRequest{ID: id, Patch: p}, new(Ack))
}

func (c *Client) DeleteAppointment(ctx context.Context, id string) error {
	return c.invoke(ctx, MethodDeleteAppointment, &DeleteRequest{ID: id}, new(Ack))
}

func (c *Client) SaveHealthSurvey(ctx context.Context, in *SaveHealthSurveyRequest) (*CallResult, error) {
	out := new(CallResult)
	return out, c.invoke(ctx, MethodSaveHealthSurvey, in, out)
}

// LatestHealthSurvey returns nil, nil when the caller has no survey.
func (c *Client) LatestHealthSurvey(ctx context.Context) (*HealthSurvey, error) {
	out := new(LatestHealthSurveyResponse)
	if err := c.invoke(ctx, MethodLatestHealthSurvey, &LatestHealthSurveyRequest{}, out); err != nil {
		return nil, err
	}
	return out.Survey, nil
}

// bearer attaches "authorization: Bearer <jwt>" when a token is set.
type bearer struct {
	mu  sync.RWMutex
	tok string
}

func (b *bearer) set(tok string) {
	b.mu.Lock()
	b.tok = tok
	b.mu.Unlock()
}

func (b *bearer) GetRequestMetadata(context.Context, ...string) (map[string]string, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.tok == "" {
		return nil, nil
	}
	return map[string]string{"authorization": "Bearer " + b.tok}, nil
}

// plaintext transport inside the deployment
func (b *bearer) RequireTransportSecurity() bool { return false }
