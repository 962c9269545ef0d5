package service

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/reactioncam/rcam-go/internal/repository"
)

// recountWindow is how far back each repair pass looks for engaged content.
const recountWindow = 24 * time.Hour

// recountBatch bounds one pass.
const recountBatch = 500

// RecountWorker periodically recomputes the denormalized engagement counters
// from the vote and comment tables, repairing any drift the hot path
// accumulated (crashed transactions, manual data fixes).
type RecountWorker struct {
	contents *repository.ContentRepo
	schedule string
	cron     *cron.Cron
	log      zerolog.Logger
}

func NewRecountWorker(contents *repository.ContentRepo, schedule string, log zerolog.Logger) *RecountWorker {
	return &RecountWorker{contents: contents, schedule: schedule, log: log}
}

// Start registers the repair pass on its schedule.
func (w *RecountWorker) Start(ctx context.Context) error {
	w.cron = cron.New()
	_, err := w.cron.AddFunc(w.schedule, func() {
		w.tick(ctx)
	})
	if err != nil {
		return err
	}
	w.log.Info().Str("schedule", w.schedule).Msg("recount worker starting")
	w.cron.Start()
	return nil
}

// Stop halts the schedule and waits for a running pass to finish.
func (w *RecountWorker) Stop() {
	if w.cron != nil {
		<-w.cron.Stop().Done()
	}
}

func (w *RecountWorker) tick(ctx context.Context) {
	start := time.Now()
	cutoff := start.UTC().Add(-recountWindow)

	ids, err := w.contents.RecentlyEngagedIDs(ctx, cutoff, recountBatch)
	if err != nil {
		w.log.Error().Err(err).Msg("recount candidate query failed")
		return
	}

	repaired := 0
	for _, id := range ids {
		if ctx.Err() != nil {
			return
		}
		if _, err := w.contents.RecountEngagement(ctx, id); err != nil {
			w.log.Error().Err(err).Int64("content_id", id).Msg("recount failed")
			continue
		}
		repaired++
	}
	w.log.Info().
		Int("contents", repaired).
		Dur("elapsed", time.Since(start)).
		Msg("recount tick complete")
}
