// Package healthstore is the client-side cache of one user's medications,
// appointments and latest survey. Creates go through the callable gateway;
// reads, updates and deletes go through the record client. The cache is only
// ever replaced from a successful remote read, except that a confirmed delete
// removes the record locally.
package healthstore

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/samber/lo"
	"google.golang.org/grpc/status"

	"health-companion-api/internal/api"
	"health-companion-api/internal/clock"
	"health-companion-api/internal/model"
)

// Session reports the signed-in caller, if any.
type Session interface {
	Caller() (string, bool)
}

type Callables interface {
	CreateMedicationReminder(ctx context.Context, in *api.CreateMedicationReminderRequest) (*api.CallResult, error)
	ScheduleAppointment(ctx context.Context, in *api.ScheduleAppointmentRequest) (*api.CallResult, error)
	ExportHealthData(ctx context.Context, in *api.ExportHealthDataRequest) (*api.ExportHealthDataResponse, error)
}

type Records interface {
	ListMedications(ctx context.Context) ([]api.Medication, error)
	UpdateMedication(ctx context.Context, id string, p api.MedicationPatch) error
	DeleteMedication(ctx context.Context, id string) error
	ListAppointments(ctx context.Context) ([]api.Appointment, error)
	UpdateAppointment(ctx context.Context, id string, p api.AppointmentPatch) error
	DeleteAppointment(ctx context.Context, id string) error
	SaveHealthSurvey(ctx context.Context, in *api.SaveHealthSurveyRequest) (*api.CallResult, error)
	LatestHealthSurvey(ctx context.Context) (*api.HealthSurvey, error)
}

// Result is what every action hands back. A nil *Result means there was no
// signed-in caller and nothing was attempted.
type Result struct {
	Success bool
	ID      string
	Data    string
	Message string
	Error   string
}

func failed(msg string) *Result { return &Result{Success: false, Error: msg} }

type Store struct {
	session   Session
	callables Callables
	records   Records
	clock     clock.Clock
	loc       *time.Location
	logger    *log.Logger

	mu           sync.Mutex
	medications  []api.Medication
	appointments []api.Appointment
	healthSurvey *api.HealthSurvey
	inflight     int
	err          string
}

type Option func(*Store)

func WithClock(c clock.Clock) Option { return func(s *Store) { s.clock = c } }

// WithLocation sets the zone "today" is judged in.
func WithLocation(loc *time.Location) Option { return func(s *Store) { s.loc = loc } }

func WithLogger(l *log.Logger) Option { return func(s *Store) { s.logger = l } }

func New(session Session, callables Callables, records Records, opts ...Option) *Store {
	s := &Store{
		session:   session,
		callables: callables,
		records:   records,
		clock:     clock.New(),
		loc:       time.UTC,
		logger:    log.New(io.Discard, "", 0),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// begin marks an action in flight and clears the last error. The returned
// func must run on every exit path.
func (s *Store) begin() (ok bool, end func()) {
	if _, signedIn := s.session.Caller(); !signedIn {
		return false, func() {}
	}
	s.mu.Lock()
	s.inflight++
	s.err = ""
	s.mu.Unlock()
	return true, func() {
		s.mu.Lock()
		s.inflight--
		s.mu.Unlock()
	}
}

func (s *Store) fail(msg string, err error) *Result {
	s.logger.Printf("healthstore: %s: %v", msg, err)
	s.mu.Lock()
	s.err = msg
	s.mu.Unlock()
	return failed(msg)
}

// remoteMessage prefers the server's own message for gateway failures.
func remoteMessage(err error, fallback string) string {
	if st, ok := status.FromError(err); ok && st.Message() != "" {
		return st.Message()
	}
	return fallback
}

// ----- state -----

func (s *Store) Medications() []api.Medication {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]api.Medication(nil), s.medications...)
}

func (s *Store) Appointments() []api.Appointment {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]api.Appointment(nil), s.appointments...)
}

func (s *Store) HealthSurvey() *api.HealthSurvey {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.healthSurvey
}

// Loading is true while any action is in flight.
func (s *Store) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inflight > 0
}

// Err is the user-facing message of the last failed action, or "".
func (s *Store) Err() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// ----- derived views -----

// UpcomingAppointments is a date-ascending copy of the cache.
func (s *Store) UpcomingAppointments() []api.Appointment {
	out := s.Appointments()
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}

// TodayMedications are those whose next dose falls on today's calendar day.
func (s *Store) TodayMedications() []api.Medication {
	start, end := model.DayBounds(s.clock.Now(), s.loc)
	return lo.Filter(s.Medications(), func(m api.Medication, _ int) bool {
		return m.NextDose != nil && !m.NextDose.Before(start) && m.NextDose.Before(end)
	})
}

// ----- actions -----

func (s *Store) loadMedications(ctx context.Context) *Result {
	meds, err := s.records.ListMedications(ctx)
	if err != nil {
		return s.fail("Failed to load medications. Please try again.", err)
	}
	s.mu.Lock()
	s.medications = meds
	s.mu.Unlock()
	return &Result{Success: true}
}

func (s *Store) loadAppointments(ctx context.Context) *Result {
	appts, err := s.records.ListAppointments(ctx)
	if err != nil {
		return s.fail("Failed to load appointments. Please try again.", err)
	}
	s.mu.Lock()
	s.appointments = appts
	s.mu.Unlock()
	return &Result{Success: true}
}

// FetchMedications replaces the cache with the caller's medications, newest first.
func (s *Store) FetchMedications(ctx context.Context) *Result {
	ok, end := s.begin()
	defer end()
	if !ok {
		return nil
	}
	return s.loadMedications(ctx)
}

// FetchAppointments replaces the cache with the caller's appointments by date.
func (s *Store) FetchAppointments(ctx context.Context) *Result {
	ok, end := s.begin()
	defer end()
	if !ok {
		return nil
	}
	return s.loadAppointments(ctx)
}

func (s *Store) AddMedication(ctx context.Context, in *api.CreateMedicationReminderRequest) *Result {
	ok, end := s.begin()
	defer end()
	if !ok {
		return nil
	}
	res, err := s.callables.CreateMedicationReminder(ctx, in)
	if err != nil {
		return s.fail(remoteMessage(err, "Failed to add medication. Please try again."), err)
	}
	if !res.Success {
		return s.fail(lo.CoalesceOrEmpty(res.Message, "Failed to add medication"), nil)
	}
	s.loadMedications(ctx)
	return &Result{Success: true, ID: res.ID}
}

func (s *Store) AddAppointment(ctx context.Context, in *api.ScheduleAppointmentRequest) *Result {
	ok, end := s.begin()
	defer end()
	if !ok {
		return nil
	}
	res, err := s.callables.ScheduleAppointment(ctx, in)
	if err != nil {
		return s.fail(remoteMessage(err, "Failed to schedule appointment. Please try again."), err)
	}
	if !res.Success {
		return s.fail(lo.CoalesceOrEmpty(res.Message, "Failed to schedule appointment"), nil)
	}
	s.loadAppointments(ctx)
	return &Result{Success: true, ID: res.ID}
}

func (s *Store) UpdateMedication(ctx context.Context, id string, p api.MedicationPatch) *Result {
	ok, end := s.begin()
	defer end()
	if !ok {
		return nil
	}
	if err := s.records.UpdateMedication(ctx, id, p); err != nil {
		return s.fail("Failed to update medication. Please try again.", err)
	}
	s.loadMedications(ctx)
	return &Result{Success: true}
}

func (s *Store) UpdateAppointment(ctx context.Context, id string, p api.AppointmentPatch) *Result {
	ok, end := s.begin()
	defer end()
	if !ok {
		return nil
	}
	if err := s.records.UpdateAppointment(ctx, id, p); err != nil {
		return s.fail("Failed to update appointment. Please try again.", err)
	}
	s.loadAppointments(ctx)
	return &Result{Success: true}
}

// DeleteMedication removes the record remotely, then only that id locally.
func (s *Store) DeleteMedication(ctx context.Context, id string) *Result {
	ok, end := s.begin()
	defer end()
	if !ok {
		return nil
	}
	if err := s.records.DeleteMedication(ctx, id); err != nil {
		return s.fail("Failed to delete medication. Please try again.", err)
	}
	s.mu.Lock()
	s.medications = lo.Reject(s.medications, func(m api.Medication, _ int) bool { return m.ID == id })
	s.mu.Unlock()
	return &Result{Success: true}
}

func (s *Store) DeleteAppointment(ctx context.Context, id string) *Result {
	ok, end := s.begin()
	defer end()
	if !ok {
		return nil
	}
	if err := s.records.DeleteAppointment(ctx, id); err != nil {
		return s.fail("Failed to delete appointment. Please try again.", err)
	}
	s.mu.Lock()
	s.appointments = lo.Reject(s.appointments, func(a api.Appointment, _ int) bool { return a.ID == id })
	s.mu.Unlock()
	return &Result{Success: true}
}

// SaveHealthSurvey always stores a new survey; it becomes the cached one.
func (s *Store) SaveHealthSurvey(ctx context.Context, payload json.RawMessage) *Result {
	ok, end := s.begin()
	defer end()
	if !ok {
		return nil
	}
	stamp := s.clock.Now()
	res, err := s.records.SaveHealthSurvey(ctx, &api.SaveHealthSurveyRequest{Payload: payload, CreatedAt: &stamp})
	if err != nil {
		return s.fail("Failed to save health survey. Please try again.", err)
	}
	s.mu.Lock()
	s.healthSurvey = &api.HealthSurvey{ID: res.ID, Payload: payload, CreatedAt: stamp}
	s.mu.Unlock()
	return &Result{Success: true, ID: res.ID}
}

// FetchHealthSurvey loads the caller's latest survey; none leaves it nil.
func (s *Store) FetchHealthSurvey(ctx context.Context) *Result {
	ok, end := s.begin()
	defer end()
	if !ok {
		return nil
	}
	sv, err := s.records.LatestHealthSurvey(ctx)
	if err != nil {
		return s.fail("Failed to load health survey. Please try again.", err)
	}
	s.mu.Lock()
	s.healthSurvey = sv
	s.mu.Unlock()
	return &Result{Success: true}
}

// ExportData returns the CSV text for dataType ("medications" or
// "appointments"). Data is empty when there is nothing to export.
func (s *Store) ExportData(ctx context.Context, dataType string) *Result {
	ok, end := s.begin()
	defer end()
	if !ok {
		return nil
	}
	res, err := s.callables.ExportHealthData(ctx, &api.ExportHealthDataRequest{DataType: dataType})
	if err != nil {
		return s.fail(remoteMessage(err, "Failed to export data. Please try again."), err)
	}
	if !res.Success {
		return s.fail(lo.CoalesceOrEmpty(res.Message, "Export failed"), nil)
	}
	return &Result{Success: true, Data: res.Data, Message: res.Message}
}
