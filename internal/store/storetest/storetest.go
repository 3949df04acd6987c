// Package storetest is a behaviour suite every store backend must pass.
package storetest

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"health-companion-api/internal/model"
	"health-companion-api/internal/store"
)

// Run exercises st. It only inspects records it created, so it is safe to
// point at a shared database.
func Run(t *testing.T, st store.Store) {
	t.Run("users", func(t *testing.T) { testUsers(t, st) })
	t.Run("medications", func(t *testing.T) { testMedications(t, st) })
	t.Run("appointments", func(t *testing.T) { testAppointments(t, st) })
	t.Run("reminders", func(t *testing.T) { testReminders(t, st) })
	t.Run("surveys", func(t *testing.T) { testSurveys(t, st) })
}

func newUser(t *testing.T, st store.Store) string {
	t.Helper()
	u := &model.User{
		ID:           uuid.NewString(),
		Email:        "u-" + uuid.NewString()[:8] + "@test.com",
		PasswordHash: "hash",
		Name:         "Test User",
	}
	if err := st.CreateUser(context.Background(), u); err != nil {
		t.Fatalf("create user: %v", err)
	}
	return u.ID
}

// base is whole-second UTC so every backend round-trips it exactly.
var base = time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)

func testUsers(t *testing.T, st store.Store) {
	ctx := context.Background()
	email := "dup-" + uuid.NewString()[:8] + "@test.com"
	u := &model.User{ID: uuid.NewString(), Email: email, PasswordHash: "h", Name: "A"}
	if err := st.CreateUser(ctx, u); err != nil {
		t.Fatalf("create: %v", err)
	}
	err := st.CreateUser(ctx, &model.User{ID: uuid.NewString(), Email: email, PasswordHash: "h", Name: "B"})
	if !errors.Is(err, store.ErrDuplicate) {
		t.Errorf("duplicate email: got %v", err)
	}

	got, err := st.UserByEmail(ctx, email)
	if err != nil {
		t.Fatalf("by email: %v", err)
	}
	if got.ID != u.ID || got.Name != "A" || got.PasswordHash != "h" {
		t.Errorf("user: %+v", got)
	}
	if _, err := st.UserByEmail(ctx, "nobody-"+uuid.NewString()+"@test.com"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("missing user: got %v", err)
	}
}

func testMedications(t *testing.T, st store.Store) {
	ctx := context.Background()
	owner, other := newUser(t, st), newUser(t, st)

	next := base.Add(2 * time.Hour)
	older := &model.MedicationReminder{ID: uuid.NewString(), UserID: owner, MedicationName: "Aspirin",
		Dosage: "100mg", Frequency: "daily", Time: "10:00", NextDose: &next, CreatedAt: base}
	newer := &model.MedicationReminder{ID: uuid.NewString(), UserID: owner, MedicationName: "Zinc",
		Dosage: "1 tab", Frequency: "weekly", Time: "", CreatedAt: base.Add(time.Minute)}
	foreign := &model.MedicationReminder{ID: uuid.NewString(), UserID: other, MedicationName: "X", CreatedAt: base}
	for _, m := range []*model.MedicationReminder{older, newer, foreign} {
		if err := st.CreateMedication(ctx, m); err != nil {
			t.Fatalf("create %s: %v", m.MedicationName, err)
		}
	}

	list, err := st.ListMedications(ctx, owner)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 2 || list[0].ID != newer.ID || list[1].ID != older.ID {
		t.Fatalf("expected newest first, got %+v", list)
	}
	if list[1].NextDose == nil || !list[1].NextDose.Equal(next) {
		t.Errorf("next dose: %v", list[1].NextDose)
	}
	if list[0].NextDose != nil {
		t.Errorf("unset next dose came back as %v", list[0].NextDose)
	}

	dose := "200mg"
	if err := st.UpdateMedication(ctx, owner, older.ID, model.MedicationPatch{Dosage: &dose}); err != nil {
		t.Fatalf("update: %v", err)
	}
	list, _ = st.ListMedications(ctx, owner)
	if list[1].Dosage != "200mg" || list[1].MedicationName != "Aspirin" {
		t.Errorf("partial update: %+v", list[1])
	}

	// not the owner
	if err := st.UpdateMedication(ctx, other, older.ID, model.MedicationPatch{Dosage: &dose}); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("foreign update: got %v", err)
	}
	if err := st.UpdateMedication(ctx, owner, uuid.NewString(), model.MedicationPatch{}); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("empty patch on missing id: got %v", err)
	}

	if err := st.DeleteMedication(ctx, other, older.ID); err != nil {
		t.Fatalf("foreign delete: %v", err)
	}
	if list, _ = st.ListMedications(ctx, owner); len(list) != 2 {
		t.Fatalf("foreign delete removed a record")
	}
	if err := st.DeleteMedication(ctx, owner, older.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if list, _ = st.ListMedications(ctx, owner); len(list) != 1 || list[0].ID != newer.ID {
		t.Errorf("after delete: %+v", list)
	}
}

func testAppointments(t *testing.T, st store.Store) {
	ctx := context.Background()
	owner := newUser(t, st)

	dates := []time.Time{base.AddDate(0, 0, 2), base, base.AddDate(0, 0, 9)}
	ids := make([]string, len(dates))
	for i, d := range dates {
		ids[i] = uuid.NewString()
		err := st.CreateAppointment(ctx, &model.Appointment{
			ID: ids[i], UserID: owner, DoctorName: "Dr. Who", Specialty: "GP",
			Date: d, Time: "09:30", Status: model.StatusScheduled, CreatedAt: base,
		})
		if err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	list, err := st.ListAppointments(ctx, owner)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 3 || list[0].ID != ids[1] || list[1].ID != ids[0] || list[2].ID != ids[2] {
		t.Fatalf("expected date ascending, got %+v", list)
	}
	if list[0].Notified || list[0].NotifiedAt != nil {
		t.Errorf("new appointment already notified: %+v", list[0])
	}

	status := model.StatusCancelled
	if err := st.UpdateAppointment(ctx, owner, ids[0], model.AppointmentPatch{Status: &status}); err != nil {
		t.Fatalf("update: %v", err)
	}
	if err := st.UpdateAppointment(ctx, newUser(t, st), ids[0], model.AppointmentPatch{Status: &status}); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("foreign update: got %v", err)
	}
	list, _ = st.ListAppointments(ctx, owner)
	if list[1].Status != model.StatusCancelled || list[1].DoctorName != "Dr. Who" {
		t.Errorf("partial update: %+v", list[1])
	}

	if err := st.DeleteAppointment(ctx, owner, ids[2]); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if list, _ = st.ListAppointments(ctx, owner); len(list) != 2 {
		t.Errorf("after delete: %d records", len(list))
	}
}

func testReminders(t *testing.T, st store.Store) {
	ctx := context.Background()
	owner := newUser(t, st)
	now := base
	until := base.Add(40 * time.Hour)

	mk := func(date time.Time, status string) string {
		id := uuid.NewString()
		err := st.CreateAppointment(ctx, &model.Appointment{
			ID: id, UserID: owner, Date: date, Status: status, CreatedAt: base,
		})
		if err != nil {
			t.Fatalf("create: %v", err)
		}
		return id
	}
	inside := mk(now.Add(time.Hour), model.StatusScheduled)
	edge := mk(until, model.StatusScheduled)
	atNow := mk(now, model.StatusScheduled)
	past := mk(now.Add(-time.Hour), model.StatusScheduled)
	beyond := mk(until.Add(time.Second), model.StatusScheduled)
	cancelled := mk(now.Add(time.Hour), model.StatusCancelled)

	due, err := st.ScheduledBetween(ctx, now, until)
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	got := map[string]bool{}
	for _, a := range due {
		got[a.ID] = true
	}
	for _, id := range []string{inside, edge} {
		if !got[id] {
			t.Errorf("expected %s in window", id)
		}
	}
	for _, id := range []string{atNow, past, beyond, cancelled} {
		if got[id] {
			t.Errorf("unexpected %s in window", id)
		}
	}

	first := now.Add(time.Minute)
	if err := st.MarkNotified(ctx, inside, first); err != nil {
		t.Fatalf("mark: %v", err)
	}
	if err := st.MarkNotified(ctx, inside, first.Add(time.Hour)); err != nil {
		t.Fatalf("re-mark: %v", err)
	}
	list, _ := st.ListAppointments(ctx, owner)
	for _, a := range list {
		if a.ID != inside {
			continue
		}
		if !a.Notified || a.NotifiedAt == nil || !a.NotifiedAt.Equal(first) {
			t.Errorf("notified_at must keep the first mark: %+v", a)
		}
	}

	if err := st.MarkNotified(ctx, uuid.NewString(), first); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("mark missing: got %v", err)
	}
}

func testSurveys(t *testing.T, st store.Store) {
	ctx := context.Background()
	owner := newUser(t, st)

	if _, err := st.LatestSurvey(ctx, owner); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("no surveys: got %v", err)
	}
	for i, payload := range []string{`{"sleep":6}`, `{"sleep":8,"mood":"good"}`} {
		err := st.CreateSurvey(ctx, &model.HealthSurvey{
			ID: uuid.NewString(), UserID: owner, Payload: json.RawMessage(payload),
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		})
		if err != nil {
			t.Fatalf("create: %v", err)
		}
	}
	got, err := st.LatestSurvey(ctx, owner)
	if err != nil {
		t.Fatalf("latest: %v", err)
	}
	var body map[string]any
	if err := json.Unmarshal(got.Payload, &body); err != nil {
		t.Fatalf("payload: %v", err)
	}
	if body["mood"] != "good" {
		t.Errorf("expected newest survey, got %s", got.Payload)
	}
}
