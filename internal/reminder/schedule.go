package reminder

import (
	"context"
	"fmt"
	"time"

	"health-companion-api/internal/model"
)

// Runner is anything the scheduler can fire; *Job in production.
type Runner interface {
	Run(ctx context.Context) Result
}

// Scheduler fires a Runner once a day at a fixed local time.
type Scheduler struct {
	run   Runner
	at    string
	opts  options
	after func(time.Duration) <-chan time.Time
}

// NewScheduler validates at ("HH:MM").
func NewScheduler(r Runner, at string, opts ...Option) (*Scheduler, error) {
	o := buildOptions(opts)
	if _, ok := model.NextOccurrence(at, o.clock.Now(), o.loc); !ok {
		return nil, fmt.Errorf("reminder: bad run time %q", at)
	}
	return &Scheduler{run: r, at: at, opts: o, after: time.After}, nil
}

// NextRun is today at the run time if that is still ahead of now, else
// tomorrow.
func (s *Scheduler) NextRun(now time.Time) time.Time {
	next, _ := model.NextOccurrence(s.at, now, s.opts.loc)
	return next
}

// Start blocks, running the job daily until ctx is cancelled.
func (s *Scheduler) Start(ctx context.Context) {
	for {
		now := s.opts.clock.Now()
		next := s.NextRun(now)
		s.opts.logger.Printf("reminder scan: next run %s", next.Format(time.RFC3339))
		select {
		case <-ctx.Done():
			return
		case <-s.after(next.Sub(now)):
		}
		s.run.Run(ctx)
	}
}
