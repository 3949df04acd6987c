package reminder

import (
	"context"
	"testing"
	"time"

	"health-companion-api/internal/clock"
)

type countingRunner struct{ ran chan struct{} }

func (r countingRunner) Run(context.Context) Result {
	r.ran <- struct{}{}
	return Result{}
}

func TestNextRun(t *testing.T) {
	s, err := NewScheduler(countingRunner{}, "08:00")
	if err != nil {
		t.Fatal(err)
	}
	tests := []struct {
		now, want time.Time
	}{
		{time.Date(2024, 5, 1, 7, 0, 0, 0, time.UTC), time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)},
		{time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC), time.Date(2024, 5, 2, 8, 0, 0, 0, time.UTC)},
		{time.Date(2024, 5, 1, 23, 30, 0, 0, time.UTC), time.Date(2024, 5, 2, 8, 0, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		if got := s.NextRun(tt.now); !got.Equal(tt.want) {
			t.Errorf("NextRun(%v) = %v, want %v", tt.now, got, tt.want)
		}
	}
}

func TestNewSchedulerRejectsBadTime(t *testing.T) {
	for _, at := range []string{"", "8am", "25:00"} {
		if _, err := NewScheduler(countingRunner{}, at); err == nil {
			t.Errorf("%q accepted", at)
		}
	}
}

func TestSchedulerRunsDailyUntilCancelled(t *testing.T) {
	clk := clock.NewManaged(time.Date(2024, 5, 1, 7, 0, 0, 0, time.UTC))
	r := countingRunner{ran: make(chan struct{}, 1)}
	s, err := NewScheduler(r, "08:00", WithClock(clk))
	if err != nil {
		t.Fatal(err)
	}
	waits := make(chan time.Duration, 1)
	fire := make(chan time.Time)
	s.after = func(d time.Duration) <-chan time.Time {
		waits <- d
		return fire
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Start(ctx)
		close(done)
	}()

	if d := <-waits; d != time.Hour {
		t.Fatalf("first wait %v, want 1h", d)
	}
	clk.Advance(time.Hour)
	fire <- clk.Now()
	<-r.ran

	if d := <-waits; d != 24*time.Hour {
		t.Fatalf("second wait %v, want 24h", d)
	}
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("scheduler did not stop")
	}
}
