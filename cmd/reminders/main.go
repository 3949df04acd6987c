// Command reminders runs the appointment reminder scan once, for cron or a
// Kubernetes CronJob. It exits 0 whenever the scan ran, even if some records
// failed; failures are in the log.
package main

import (
	"context"
	"log"
	"time"

	"health-companion-api/internal/config"
	"health-companion-api/internal/reminder"
	"health-companion-api/internal/store/backend"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger := log.Default()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	st, err := backend.Open(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer st.Close()

	notifier, closeNotifier, err := reminder.NewNotifier(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("notifier: %v", err)
	}
	defer closeNotifier()

	job := reminder.NewJob(st, notifier,
		reminder.WithLocation(cfg.Location),
		reminder.WithLogger(logger),
		reminder.WithConcurrency(cfg.ReminderConcurrency),
	)
	res := job.Run(ctx)
	log.Printf("done: %d of %d appointments flagged", res.Notified, res.Matched)
}
