package reminder

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"

	"health-companion-api/internal/clock"
	"health-companion-api/internal/model"
	"health-companion-api/internal/store/sqlite"
)

var now = time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)

type recordingNotifier struct {
	mu   sync.Mutex
	got  []Reminder
	fail map[string]bool
}

func (n *recordingNotifier) Notify(_ context.Context, r Reminder) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.fail[r.AppointmentID] {
		return errors.New("push gateway down")
	}
	n.got = append(n.got, r)
	return nil
}

func (n *recordingNotifier) ids() map[string]bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := map[string]bool{}
	for _, r := range n.got {
		out[r.AppointmentID] = true
	}
	return out
}

// fakeReminders serves a fixed set and fails MarkNotified for listed ids.
type fakeReminders struct {
	appts    []model.Appointment
	queryErr error
	fail     map[string]bool

	inflight, maxInflight atomic.Int32
	mu                    sync.Mutex
	marked                []string
}

func (f *fakeReminders) ScheduledBetween(context.Context, time.Time, time.Time) ([]model.Appointment, error) {
	return f.appts, f.queryErr
}

func (f *fakeReminders) MarkNotified(_ context.Context, id string, _ time.Time) error {
	n := f.inflight.Add(1)
	defer f.inflight.Add(-1)
	for {
		m := f.maxInflight.Load()
		if n <= m || f.maxInflight.CompareAndSwap(m, n) {
			break
		}
	}
	time.Sleep(time.Millisecond)
	if f.fail[id] {
		return errors.New("write conflict")
	}
	f.mu.Lock()
	f.marked = append(f.marked, id)
	f.mu.Unlock()
	return nil
}

func TestRunMarksWindow(t *testing.T) {
	db, err := sqlite.New(fmt.Sprintf("file:reminder_%s?mode=memory&cache=shared", uuid.NewString()[:8]))
	if err != nil {
		t.Fatalf("db: %v", err)
	}
	defer db.Close()
	ctx := context.Background()

	uid := uuid.NewString()
	if err := db.CreateUser(ctx, &model.User{ID: uid, Email: "r@test.com", PasswordHash: "x", Name: "R"}); err != nil {
		t.Fatal(err)
	}
	add := func(date time.Time, status string) string {
		a := &model.Appointment{ID: uuid.NewString(), UserID: uid, DoctorName: "Dr. A", Date: date, Status: status, CreatedAt: now}
		if err := db.CreateAppointment(ctx, a); err != nil {
			t.Fatal(err)
		}
		return a.ID
	}
	today := add(now.Add(3*time.Hour), model.StatusScheduled)
	lastMs := add(time.Date(2024, 5, 2, 23, 59, 59, 999_000_000, time.UTC), model.StatusScheduled)
	add(time.Date(2024, 5, 3, 0, 0, 0, 0, time.UTC), model.StatusScheduled)
	add(now.Add(-time.Hour), model.StatusScheduled)
	add(now.Add(4*time.Hour), model.StatusCancelled)

	clk := clock.NewManaged(now)
	n := &recordingNotifier{}
	job := NewJob(db, n, WithClock(clk))

	res := job.Run(ctx)
	if res.Matched != 2 || res.Notified != 2 || res.Failed != 0 {
		t.Fatalf("first run: %+v", res)
	}
	if ids := n.ids(); !ids[today] || !ids[lastMs] || len(ids) != 2 {
		t.Errorf("notified: %v", ids)
	}

	check := func(wantFirstMark time.Time) {
		t.Helper()
		appts, err := db.ListAppointments(ctx, uid)
		if err != nil {
			t.Fatal(err)
		}
		for _, a := range appts {
			in := a.ID == today || a.ID == lastMs
			if a.Notified != in {
				t.Errorf("%s notified=%v, want %v", a.ID, a.Notified, in)
			}
			if in && (a.NotifiedAt == nil || !a.NotifiedAt.Equal(wantFirstMark)) {
				t.Errorf("%s notifiedAt=%v, want %v", a.ID, a.NotifiedAt, wantFirstMark)
			}
			if !in && a.NotifiedAt != nil {
				t.Errorf("%s outside window was touched", a.ID)
			}
		}
	}
	check(now)

	// immediate rerun re-selects the same records; flag and first mark hold
	clk.Advance(time.Minute)
	res = job.Run(ctx)
	if res.Matched != 2 || res.Notified != 2 || res.Failed != 0 {
		t.Fatalf("second run: %+v", res)
	}
	check(now)
}

func TestRunSubMillisecondClock(t *testing.T) {
	db, err := sqlite.New(fmt.Sprintf("file:reminder_%s?mode=memory&cache=shared", uuid.NewString()[:8]))
	if err != nil {
		t.Fatalf("db: %v", err)
	}
	defer db.Close()
	ctx := context.Background()

	uid := uuid.NewString()
	if err := db.CreateUser(ctx, &model.User{ID: uid, Email: "ms@test.com", PasswordHash: "x", Name: "M"}); err != nil {
		t.Fatal(err)
	}
	start := time.Date(2024, 5, 1, 9, 0, 0, 750_500_000, time.UTC)
	add := func(date time.Time) string {
		a := &model.Appointment{ID: uuid.NewString(), UserID: uid, DoctorName: "Dr. M", Date: date, Status: model.StatusScheduled, CreatedAt: now}
		if err := db.CreateAppointment(ctx, a); err != nil {
			t.Fatal(err)
		}
		return a.ID
	}
	in := add(start.Add(time.Hour))
	add(time.Date(2024, 5, 1, 9, 0, 0, 750_000_000, time.UTC)) // just before start

	res := NewJob(db, &recordingNotifier{}, WithClock(clock.NewManaged(start))).Run(ctx)
	if res.Matched != 1 || res.Notified != 1 {
		t.Fatalf("run: %+v", res)
	}
	if res.Start.After(start) {
		t.Errorf("start %v is after clock %v", res.Start, start)
	}

	appts, err := db.ListAppointments(ctx, uid)
	if err != nil {
		t.Fatal(err)
	}
	for _, a := range appts {
		if a.ID != in {
			if a.Notified {
				t.Errorf("appointment before start was notified")
			}
			continue
		}
		if a.NotifiedAt == nil || !a.NotifiedAt.Equal(res.Start) {
			t.Errorf("notifiedAt %v, run start %v", a.NotifiedAt, res.Start)
		}
	}
}

func TestRunFailureDoesNotBlockSiblings(t *testing.T) {
	f := &fakeReminders{
		appts: []model.Appointment{{ID: "a"}, {ID: "b"}, {ID: "c"}, {ID: "d"}},
		fail:  map[string]bool{"b": true},
	}
	n := &recordingNotifier{fail: map[string]bool{"d": true}}
	var buf bytes.Buffer
	job := NewJob(f, n, WithClock(clock.NewManaged(now)), WithLogger(log.New(&buf, "", 0)))

	res := job.Run(context.Background())
	if res.Matched != 4 || res.Notified != 3 || res.Failed != 1 || res.NotifyFailed != 1 {
		t.Fatalf("result: %+v", res)
	}
	if ids := n.ids(); !ids["a"] || !ids["c"] || ids["b"] {
		t.Errorf("notified: %v", ids)
	}
	out := buf.String()
	for _, want := range []string{"mark b: write conflict", "notify d: push gateway down", "Reminder sent for appointment: a"} {
		if !strings.Contains(out, want) {
			t.Errorf("log missing %q:\n%s", want, out)
		}
	}
}

func TestRunQueryFailureIsContained(t *testing.T) {
	var buf bytes.Buffer
	job := NewJob(&fakeReminders{queryErr: errors.New("index missing")}, &recordingNotifier{},
		WithClock(clock.NewManaged(now)), WithLogger(log.New(&buf, "", 0)))

	res := job.Run(context.Background())
	if res.Matched != 0 || res.Notified != 0 {
		t.Errorf("result: %+v", res)
	}
	if !strings.Contains(buf.String(), "index missing") {
		t.Errorf("query failure not logged: %s", buf.String())
	}
}

func TestRunBoundsConcurrency(t *testing.T) {
	f := &fakeReminders{}
	for i := 0; i < 20; i++ {
		f.appts = append(f.appts, model.Appointment{ID: fmt.Sprint(i)})
	}
	job := NewJob(f, &recordingNotifier{}, WithClock(clock.NewManaged(now)), WithConcurrency(3))

	res := job.Run(context.Background())
	if res.Notified != 20 {
		t.Fatalf("result: %+v", res)
	}
	if m := f.maxInflight.Load(); m > 3 {
		t.Errorf("max in flight %d, limit 3", m)
	}
}

func TestWindowEndFollowsZone(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skip("no tzdata")
	}
	job := NewJob(&fakeReminders{}, &recordingNotifier{}, WithClock(clock.NewManaged(now)), WithLocation(ny))
	res := job.Run(context.Background())
	// 09:00 UTC is 05:00 EDT on May 1st, so the window closes at the end of May 2nd EDT
	want := time.Date(2024, 5, 2, 23, 59, 59, 999_000_000, ny)
	if !res.WindowEnd.Equal(want) {
		t.Errorf("window end %v, want %v", res.WindowEnd, want)
	}
}
