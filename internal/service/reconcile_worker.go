package service

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// ReconcileWorker drives the reconciliation sweep on a cron schedule.
type ReconcileWorker struct {
	svc      *ReconcileService
	schedule string
	cron     *cron.Cron
	log      zerolog.Logger
}

func NewReconcileWorker(svc *ReconcileService, schedule string, log zerolog.Logger) *ReconcileWorker {
	return &ReconcileWorker{svc: svc, schedule: schedule, log: log}
}

// Start registers the sweep and runs one immediately, like a fresh deploy
// catching up on whatever went stale while it was down.
func (w *ReconcileWorker) Start(ctx context.Context) error {
	w.cron = cron.New()
	_, err := w.cron.AddFunc(w.schedule, func() {
		start := time.Now()
		n := w.svc.Tick(ctx)
		w.log.Info().
			Int("processed", n).
			Dur("elapsed", time.Since(start)).
			Msg("reconcile tick complete")
	})
	if err != nil {
		return err
	}
	w.log.Info().Str("schedule", w.schedule).Msg("reconcile worker starting")
	go w.svc.Tick(ctx)
	w.cron.Start()
	return nil
}

// Stop halts the schedule and waits for a running sweep to finish.
func (w *ReconcileWorker) Stop() {
	if w.cron != nil {
		<-w.cron.Stop().Done()
	}
}
