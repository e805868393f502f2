package main

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestStartSchedulerNothingConfigured(t *testing.T) {
	stores := newTestStores(t)
	sched, err := startScheduler(Config{}, stores, nil)
	if err != nil || sched != nil {
		t.Fatalf("expected no scheduler, got %v err=%v", sched, err)
	}

	// An export interval without an exporter schedules nothing either.
	cfg := Config{Export: ExportConfig{Every: time.Minute}}
	sched, err = startScheduler(cfg, stores, nil)
	if err != nil || sched != nil {
		t.Fatalf("expected no scheduler without exporter, got %v err=%v", sched, err)
	}
}

func TestStartSchedulerRegistersJobs(t *testing.T) {
	stores := newTestStores(t)
	cfg := Config{
		CampaignDayEvery: time.Hour,
		Export:           ExportConfig{Every: time.Hour},
	}
	sched, err := startScheduler(cfg, stores, &fakeExporter{})
	if err != nil {
		t.Fatalf("startScheduler error: %v", err)
	}
	if sched == nil {
		t.Fatalf("expected a scheduler")
	}
	defer func() { _ = sched.Shutdown() }()
	if got := len(sched.Jobs()); got != 2 {
		t.Fatalf("jobs = %d, want 2", got)
	}
}

func TestCampaignClockOnlyAdvancesCampaign(t *testing.T) {
	stores := newTestStores(t)
	stores.Campaign.State.Heat = 2
	now := time.Date(2026, 5, 4, 8, 0, 0, 0, time.UTC)

	runCampaignClock(stores.Campaign, now)
	runCampaignClock(stores.Campaign, now.Add(time.Minute))

	if stores.Campaign.State.Day != 3 || stores.Campaign.State.Heat != 0 || stores.Campaign.TickCount != 2 {
		t.Fatalf("campaign clock: day=%d heat=%d ticks=%d", stores.Campaign.State.Day, stores.Campaign.State.Heat, stores.Campaign.TickCount)
	}
	if stores.Sandbox.State.Day != 1 {
		t.Fatalf("sandbox should not follow the campaign clock")
	}
}

func TestExportAllContinuesAfterFailure(t *testing.T) {
	stores := newTestStores(t)
	exp := &fakeExporter{err: errors.New("denied")}
	exportAll(context.Background(), stores, exp)
	if len(exp.calls) != 2 || exp.calls[0] != ModeCampaign || exp.calls[1] != ModeSandbox {
		t.Fatalf("export calls = %v, want both modes", exp.calls)
	}
}
