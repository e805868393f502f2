package main

import (
	"context"
	"log"
	"time"

	"github.com/go-co-op/gocron/v2"
)

// startScheduler registers the campaign clock and periodic export jobs. It
// returns nil when neither is configured.
func startScheduler(cfg Config, stores *Stores, exp snapshotExporter) (gocron.Scheduler, error) {
	exportEvery := cfg.Export.Every
	if exp == nil {
		exportEvery = 0
	}
	if cfg.CampaignDayEvery <= 0 && exportEvery <= 0 {
		return nil, nil
	}

	sched, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}

	if cfg.CampaignDayEvery > 0 {
		_, err := sched.NewJob(
			gocron.DurationJob(cfg.CampaignDayEvery),
			gocron.NewTask(func() {
				runCampaignClock(stores.Campaign, time.Now().UTC())
			}),
			gocron.WithSingletonMode(gocron.LimitModeReschedule),
		)
		if err != nil {
			_ = sched.Shutdown()
			return nil, err
		}
		log.Printf("[Scheduler] campaign day advances every %s", cfg.CampaignDayEvery)
	}

	if exportEvery > 0 {
		_, err := sched.NewJob(
			gocron.DurationJob(exportEvery),
			gocron.NewTask(func() {
				exportAll(context.Background(), stores, exp)
			}),
			gocron.WithSingletonMode(gocron.LimitModeReschedule),
		)
		if err != nil {
			_ = sched.Shutdown()
			return nil, err
		}
		log.Printf("[Scheduler] snapshots export every %s", exportEvery)
	}

	sched.Start()
	return sched, nil
}

func runCampaignClock(s *Store, now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	runDayTickLocked(s, now)
	log.Printf("[Scheduler] campaign day %d (heat %d)", s.State.Day, s.State.Heat)
}

func exportAll(ctx context.Context, stores *Stores, exp snapshotExporter) {
	for _, s := range stores.All() {
		key, err := exportStore(ctx, s, exp)
		if err != nil {
			log.Printf("[Scheduler] export %s failed: %v", s.Mode, err)
			continue
		}
		log.Printf("[Scheduler] exported %s to %s", s.Mode, key)
	}
}
