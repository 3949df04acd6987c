// Package reminder runs the daily appointment scan: every scheduled
// appointment dated between now and the end of tomorrow is flagged as
// notified and announced through a Notifier.
package reminder

import (
	"context"
	"io"
	"log"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"health-companion-api/internal/clock"
	"health-companion-api/internal/model"
	"health-companion-api/internal/store"
)

const defaultConcurrency = 16

type options struct {
	clock       clock.Clock
	loc         *time.Location
	logger      *log.Logger
	concurrency int
}

type Option func(*options)

func WithClock(c clock.Clock) Option { return func(o *options) { o.clock = c } }

// WithLocation sets the zone that defines "end of tomorrow" and the daily run time.
func WithLocation(loc *time.Location) Option { return func(o *options) { o.loc = loc } }

func WithLogger(l *log.Logger) Option { return func(o *options) { o.logger = l } }

// WithConcurrency bounds the number of in-flight record updates.
func WithConcurrency(n int) Option { return func(o *options) { o.concurrency = n } }

func buildOptions(opts []Option) options {
	o := options{
		clock:       clock.New(),
		loc:         time.UTC,
		logger:      log.New(io.Discard, "", 0),
		concurrency: defaultConcurrency,
	}
	for _, fn := range opts {
		fn(&o)
	}
	if o.concurrency < 1 {
		o.concurrency = 1
	}
	return o
}

// Result summarises one run.
type Result struct {
	Start        time.Time
	WindowEnd    time.Time
	Matched      int
	Notified     int
	Failed       int
	NotifyFailed int
}

type Job struct {
	store    store.Reminders
	notifier Notifier
	opts     options
}

func NewJob(st store.Reminders, n Notifier, opts ...Option) *Job {
	return &Job{store: st, notifier: n, opts: buildOptions(opts)}
}

// Run scans once. It never returns an error: a failed query or update is
// logged and counted, and sibling updates carry on.
func (j *Job) Run(ctx context.Context) Result {
	// stores keep millisecond precision; notifiedAt must not land before start
	start := j.opts.clock.Now().Truncate(time.Millisecond)
	res := Result{Start: start, WindowEnd: model.EndOfTomorrow(start, j.opts.loc)}

	appts, err := j.store.ScheduledBetween(ctx, start, res.WindowEnd)
	if err != nil {
		j.opts.logger.Printf("reminder scan: query: %v", err)
		return res
	}
	res.Matched = len(appts)

	var notified, failed, notifyFailed atomic.Int32
	var g errgroup.Group
	g.SetLimit(j.opts.concurrency)
	for i := range appts {
		a := appts[i]
		g.Go(func() error {
			if err := j.store.MarkNotified(ctx, a.ID, start); err != nil {
				failed.Add(1)
				j.opts.logger.Printf("reminder scan: mark %s: %v", a.ID, err)
				return nil
			}
			notified.Add(1)
			// the flag stays set even if delivery fails
			if err := j.notifier.Notify(ctx, reminderFor(&a)); err != nil {
				notifyFailed.Add(1)
				j.opts.logger.Printf("reminder scan: notify %s: %v", a.ID, err)
				return nil
			}
			j.opts.logger.Printf("Reminder sent for appointment: %s", a.ID)
			return nil
		})
	}
	_ = g.Wait()

	res.Notified = int(notified.Load())
	res.Failed = int(failed.Load())
	res.NotifyFailed = int(notifyFailed.Load())
	j.opts.logger.Printf("reminder scan: window (%s, %s]: matched=%d notified=%d failed=%d notify_failed=%d",
		start.Format(time.RFC3339), res.WindowEnd.Format(time.RFC3339),
		res.Matched, res.Notified, res.Failed, res.NotifyFailed)
	return res
}

func reminderFor(a *model.Appointment) Reminder {
	return Reminder{
		AppointmentID: a.ID,
		UserID:        a.UserID,
		DoctorName:    a.DoctorName,
		Date:          a.Date,
		Time:          a.Time,
		Location:      a.Location,
	}
}
