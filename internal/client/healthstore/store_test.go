package healthstore

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"health-companion-api/internal/api"
	"health-companion-api/internal/auth"
	"health-companion-api/internal/clock"
)

type session struct{ uid string }

func (s session) Caller() (string, bool) { return s.uid, s.uid != "" }

// fakeRemote plays both the gateway and the record service.
type fakeRemote struct {
	mu      sync.Mutex
	meds    []api.Medication
	appts   []api.Appointment
	survey  *api.HealthSurvey
	calls   []string
	err     error
	listErr error
	result  *api.CallResult
	export  *api.ExportHealthDataResponse
	// surveyStamp is the createdAt of the last SaveHealthSurvey request
	surveyStamp *time.Time
	// seen holds the store's Loading() value observed mid-call
	seen  bool
	store *Store
}

func (f *fakeRemote) record(name string) {
	f.mu.Lock()
	f.calls = append(f.calls, name)
	f.mu.Unlock()
	if f.store != nil {
		f.seen = f.store.Loading()
	}
}

func (f *fakeRemote) CreateMedicationReminder(_ context.Context, in *api.CreateMedicationReminderRequest) (*api.CallResult, error) {
	f.record("create-medication")
	if f.err != nil {
		return nil, f.err
	}
	if f.result != nil {
		return f.result, nil
	}
	f.meds = append([]api.Medication{{ID: "m-new", MedicationName: in.MedicationName}}, f.meds...)
	return &api.CallResult{Success: true, ID: "m-new", Message: "Medication reminder created successfully"}, nil
}

func (f *fakeRemote) ScheduleAppointment(_ context.Context, in *api.ScheduleAppointmentRequest) (*api.CallResult, error) {
	f.record("schedule-appointment")
	if f.err != nil {
		return nil, f.err
	}
	f.appts = append(f.appts, api.Appointment{ID: "a-new", DoctorName: in.DoctorName})
	return &api.CallResult{Success: true, ID: "a-new"}, nil
}

func (f *fakeRemote) ExportHealthData(_ context.Context, in *api.ExportHealthDataRequest) (*api.ExportHealthDataResponse, error) {
	f.record("export:" + in.DataType)
	if f.err != nil {
		return nil, f.err
	}
	return f.export, nil
}

func (f *fakeRemote) ListMedications(context.Context) ([]api.Medication, error) {
	f.record("list-medications")
	return append([]api.Medication(nil), f.meds...), f.listErr
}

func (f *fakeRemote) UpdateMedication(_ context.Context, id string, p api.MedicationPatch) error {
	f.record("update-medication:" + id)
	if f.err != nil {
		return f.err
	}
	for i := range f.meds {
		if f.meds[i].ID == id && p.Dosage != nil {
			f.meds[i].Dosage = *p.Dosage
		}
	}
	return nil
}

func (f *fakeRemote) DeleteMedication(_ context.Context, id string) error {
	f.record("delete-medication:" + id)
	return f.err
}

func (f *fakeRemote) ListAppointments(context.Context) ([]api.Appointment, error) {
	f.record("list-appointments")
	return append([]api.Appointment(nil), f.appts...), f.listErr
}

func (f *fakeRemote) UpdateAppointment(_ context.Context, id string, _ api.AppointmentPatch) error {
	f.record("update-appointment:" + id)
	return f.err
}

func (f *fakeRemote) DeleteAppointment(_ context.Context, id string) error {
	f.record("delete-appointment:" + id)
	return f.err
}

func (f *fakeRemote) SaveHealthSurvey(_ context.Context, in *api.SaveHealthSurveyRequest) (*api.CallResult, error) {
	f.record("save-survey")
	f.mu.Lock()
	f.surveyStamp = in.CreatedAt
	f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return &api.CallResult{Success: true, ID: "s1"}, nil
}

func (f *fakeRemote) LatestHealthSurvey(context.Context) (*api.HealthSurvey, error) {
	f.record("latest-survey")
	return f.survey, f.err
}

var today = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func newStore(f *fakeRemote, uid string) *Store {
	s := New(session{uid}, f, f, WithClock(clock.NewManaged(today)))
	f.store = s
	return s
}

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02T15:04", s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestNoSessionIsNoOp(t *testing.T) {
	f := &fakeRemote{}
	s := newStore(f, "")
	ctx := context.Background()

	results := []*Result{
		s.FetchMedications(ctx),
		s.FetchAppointments(ctx),
		s.AddMedication(ctx, &api.CreateMedicationReminderRequest{}),
		s.AddAppointment(ctx, &api.ScheduleAppointmentRequest{}),
		s.UpdateMedication(ctx, "m1", api.MedicationPatch{}),
		s.UpdateAppointment(ctx, "a1", api.AppointmentPatch{}),
		s.DeleteMedication(ctx, "m1"),
		s.DeleteAppointment(ctx, "a1"),
		s.SaveHealthSurvey(ctx, json.RawMessage(`{}`)),
		s.FetchHealthSurvey(ctx),
		s.ExportData(ctx, "medications"),
	}
	for i, r := range results {
		if r != nil {
			t.Errorf("action %d returned %+v", i, r)
		}
	}
	if len(f.calls) != 0 {
		t.Errorf("remote called without a session: %v", f.calls)
	}
	if s.Loading() {
		t.Error("loading left set")
	}
}

func TestFetchReplacesCache(t *testing.T) {
	f := &fakeRemote{meds: []api.Medication{{ID: "m2"}, {ID: "m1"}}}
	s := newStore(f, "u1")

	if r := s.FetchMedications(context.Background()); r == nil || !r.Success {
		t.Fatalf("fetch: %+v", r)
	}
	if !f.seen {
		t.Error("loading not set during the call")
	}
	if s.Loading() {
		t.Error("loading not reset")
	}
	if got := s.Medications(); len(got) != 2 || got[0].ID != "m2" {
		t.Errorf("cache: %+v", got)
	}

	f.meds = []api.Medication{{ID: "m3"}}
	s.FetchMedications(context.Background())
	if got := s.Medications(); len(got) != 1 || got[0].ID != "m3" {
		t.Errorf("cache not replaced: %+v", got)
	}
}

func TestFetchFailureKeepsMessage(t *testing.T) {
	f := &fakeRemote{listErr: errors.New("unavailable")}
	s := newStore(f, "u1")

	r := s.FetchAppointments(context.Background())
	if r == nil || r.Success || r.Error != "Failed to load appointments. Please try again." {
		t.Fatalf("result: %+v", r)
	}
	if s.Err() != r.Error || s.Loading() {
		t.Errorf("state: err=%q loading=%v", s.Err(), s.Loading())
	}

	// the next action starts from a clean error
	f.listErr = nil
	s.FetchAppointments(context.Background())
	if s.Err() != "" {
		t.Errorf("error not cleared: %q", s.Err())
	}
}

func TestAddRefetches(t *testing.T) {
	f := &fakeRemote{meds: []api.Medication{{ID: "m1"}}}
	s := newStore(f, "u1")

	r := s.AddMedication(context.Background(), &api.CreateMedicationReminderRequest{MedicationName: "Aspirin"})
	if r == nil || !r.Success || r.ID != "m-new" {
		t.Fatalf("add: %+v", r)
	}
	if got := s.Medications(); len(got) != 2 || got[0].ID != "m-new" {
		t.Errorf("cache after add: %+v", got)
	}
	if f.calls[len(f.calls)-1] != "list-medications" {
		t.Errorf("calls: %v", f.calls)
	}
}

func TestAddFailureMessages(t *testing.T) {
	f := &fakeRemote{err: status.Error(codes.Unauthenticated, "You must be logged in to create a reminder")}
	s := newStore(f, "u1")
	if r := s.AddMedication(context.Background(), &api.CreateMedicationReminderRequest{}); r.Error != "You must be logged in to create a reminder" {
		t.Errorf("gateway message: %+v", r)
	}

	f.err = errors.New("connection reset")
	if r := s.AddAppointment(context.Background(), &api.ScheduleAppointmentRequest{}); r.Error != "Failed to schedule appointment. Please try again." {
		t.Errorf("fallback message: %+v", r)
	}

	f.err = nil
	f.result = &api.CallResult{Success: false}
	if r := s.AddMedication(context.Background(), &api.CreateMedicationReminderRequest{}); r.Error != "Failed to add medication" {
		t.Errorf("unsuccessful result: %+v", r)
	}
	for _, c := range f.calls {
		if c == "list-medications" {
			t.Error("refetched after a failed add")
		}
	}
}

func TestUpdateRefetches(t *testing.T) {
	f := &fakeRemote{meds: []api.Medication{{ID: "m1", Dosage: "100mg"}}}
	s := newStore(f, "u1")
	s.FetchMedications(context.Background())

	dose := "200mg"
	if r := s.UpdateMedication(context.Background(), "m1", api.MedicationPatch{Dosage: &dose}); !r.Success {
		t.Fatalf("update: %+v", r)
	}
	if got := s.Medications(); got[0].Dosage != "200mg" {
		t.Errorf("cache after update: %+v", got)
	}

	f.err = errors.New("not found")
	if r := s.UpdateAppointment(context.Background(), "a1", api.AppointmentPatch{}); r.Error != "Failed to update appointment. Please try again." {
		t.Errorf("update failure: %+v", r)
	}
}

func TestDeleteSplicesLocally(t *testing.T) {
	f := &fakeRemote{meds: []api.Medication{{ID: "m1"}, {ID: "m2"}, {ID: "m3"}}}
	s := newStore(f, "u1")
	s.FetchMedications(context.Background())
	f.calls = nil

	if r := s.DeleteMedication(context.Background(), "m2"); !r.Success {
		t.Fatalf("delete: %+v", r)
	}
	got := s.Medications()
	if len(got) != 2 || got[0].ID != "m1" || got[1].ID != "m3" {
		t.Errorf("cache after delete: %+v", got)
	}
	if len(f.calls) != 1 || f.calls[0] != "delete-medication:m2" {
		t.Errorf("delete issued extra calls: %v", f.calls)
	}

	f.err = errors.New("permission denied")
	if r := s.DeleteMedication(context.Background(), "m1"); r.Success {
		t.Fatal("failed delete reported success")
	}
	if len(s.Medications()) != 2 {
		t.Error("failed delete touched the cache")
	}
}

func TestDeleteAppointment(t *testing.T) {
	f := &fakeRemote{appts: []api.Appointment{{ID: "a1"}, {ID: "a2"}}}
	s := newStore(f, "u1")
	s.FetchAppointments(context.Background())

	s.DeleteAppointment(context.Background(), "a1")
	if got := s.Appointments(); len(got) != 1 || got[0].ID != "a2" {
		t.Errorf("cache: %+v", got)
	}
}

func TestUpcomingAppointmentsSorted(t *testing.T) {
	f := &fakeRemote{appts: []api.Appointment{
		{ID: "c", Date: day("2024-05-03T00:00")},
		{ID: "a", Date: day("2024-05-01T00:00")},
		{ID: "d", Date: day("2024-05-10T00:00")},
		{ID: "b", Date: day("2024-05-01T00:00")},
	}}
	s := newStore(f, "u1")
	s.FetchAppointments(context.Background())

	got := s.UpcomingAppointments()
	want := []string{"a", "b", "c", "d"}
	for i, id := range want {
		if got[i].ID != id {
			t.Fatalf("order: got %v", got)
		}
	}
	// the cache keeps its own order
	if s.Appointments()[0].ID != "c" {
		t.Error("view mutated the cache")
	}
}

func TestTodayMedications(t *testing.T) {
	nineToday, nineTomorrow := day("2024-05-01T09:00"), day("2024-05-02T09:00")
	midnight := day("2024-05-01T00:00")
	f := &fakeRemote{meds: []api.Medication{
		{ID: "today", NextDose: &nineToday},
		{ID: "tomorrow", NextDose: &nineTomorrow},
		{ID: "midnight", NextDose: &midnight},
		{ID: "unscheduled"},
	}}
	s := newStore(f, "u1")
	s.FetchMedications(context.Background())

	got := s.TodayMedications()
	if len(got) != 2 || got[0].ID != "today" || got[1].ID != "midnight" {
		t.Errorf("today: %+v", got)
	}
}

func TestTodayMedicationsZone(t *testing.T) {
	tokyo, err := time.LoadLocation("Asia/Tokyo")
	if err != nil {
		t.Skip("no tzdata")
	}
	// 2024-05-01 20:00 UTC is already May 2nd in Tokyo
	dose := day("2024-05-01T20:00")
	f := &fakeRemote{meds: []api.Medication{{ID: "m1", NextDose: &dose}}}
	s := New(session{"u1"}, f, f, WithClock(clock.NewManaged(today)), WithLocation(tokyo))
	s.FetchMedications(context.Background())

	if got := s.TodayMedications(); len(got) != 0 {
		t.Errorf("Tokyo today: %+v", got)
	}
}

func TestHealthSurvey(t *testing.T) {
	f := &fakeRemote{}
	s := newStore(f, "u1")

	if r := s.FetchHealthSurvey(context.Background()); !r.Success || s.HealthSurvey() != nil {
		t.Fatalf("no survey: %+v %+v", r, s.HealthSurvey())
	}
	r := s.SaveHealthSurvey(context.Background(), json.RawMessage(`{"sleep":7}`))
	if !r.Success || r.ID != "s1" {
		t.Fatalf("save: %+v", r)
	}
	if sv := s.HealthSurvey(); sv == nil || string(sv.Payload) != `{"sleep":7}` || !sv.CreatedAt.Equal(today) {
		t.Errorf("cached survey: %+v", sv)
	}
	if f.surveyStamp == nil || !f.surveyStamp.Equal(today) {
		t.Errorf("sent stamp %v, want the cached %v", f.surveyStamp, today)
	}

	f.err = errors.New("quota")
	if r := s.SaveHealthSurvey(context.Background(), json.RawMessage(`{}`)); r.Error != "Failed to save health survey. Please try again." {
		t.Errorf("save failure: %+v", r)
	}
}

func TestExportData(t *testing.T) {
	f := &fakeRemote{export: &api.ExportHealthDataResponse{Success: true, Data: "", Message: "No data found to export"}}
	s := newStore(f, "u1")

	r := s.ExportData(context.Background(), "medications")
	if !r.Success || r.Data != "" || r.Message != "No data found to export" {
		t.Errorf("empty export: %+v", r)
	}

	f.err = status.Error(codes.InvalidArgument, "Invalid data type specified")
	r = s.ExportData(context.Background(), "bogus")
	if r.Success || r.Error != "Invalid data type specified" || s.Err() != r.Error {
		t.Errorf("bad type: %+v", r)
	}
}

func TestTokenSession(t *testing.T) {
	if _, ok := (TokenSession{}).Caller(); ok {
		t.Error("empty session signed in")
	}
	tok, err := auth.NewIssuer("any").Issue("user-9")
	if err != nil {
		t.Fatal(err)
	}
	if uid, ok := (TokenSession{Token: tok}).Caller(); !ok || uid != "user-9" {
		t.Errorf("caller: %q %v", uid, ok)
	}
	late := func() time.Time { return time.Now().Add(time.Hour) }
	if _, ok := (TokenSession{Token: tok, Now: late}).Caller(); ok {
		t.Error("expired session signed in")
	}
}
