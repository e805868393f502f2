package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"syndicate-ops/game"
)

func main() {
	log.SetPrefix("[SYNDICATE] ")

	cfg, err := loadConfig(os.Args[1:])
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		log.Fatalf("%v", err)
	}
}

func run(ctx context.Context, cfg Config) error {
	shutdownTracing, err := setupTelemetry(ctx, cfg.OTel)
	if err != nil {
		return fmt.Errorf("telemetry: %w", err)
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			log.Printf("telemetry shutdown: %v", err)
		}
	}()

	stores, repo, err := newConfiguredStores(ctx, cfg)
	if err != nil {
		return err
	}
	if repo != nil {
		defer repo.Close()
	}

	var exporter snapshotExporter
	bucket, err := newBucketExporter(ctx, cfg.Export)
	if err != nil {
		return err
	}
	if bucket != nil {
		exporter = bucket
		log.Printf("export: bucket=%s prefix=%s", cfg.Export.Bucket, cfg.Export.Prefix)
	}

	sched, err := startScheduler(cfg, stores, exporter)
	if err != nil {
		return fmt.Errorf("scheduler: %w", err)
	}
	if sched != nil {
		defer func() { _ = sched.Shutdown() }()
	}

	app := newApp(stores, parseTemplates(), exporter, cfg.AdminToken)
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           newMux(app),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("listening on http://localhost%s", cfg.HTTPAddr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	log.Printf("shutting down")
	return srv.Shutdown(shutdownCtx)
}

// newConfiguredStores builds both modes and, when a database is configured,
// loads them from it.
func newConfiguredStores(ctx context.Context, cfg Config) (*Stores, *SQLRepository, error) {
	roster := game.DefaultRoster()
	if cfg.RosterPath != "" {
		var err error
		roster, err = game.LoadRosterFile(cfg.RosterPath)
		if err != nil {
			return nil, nil, err
		}
	}

	stores, err := newStores(roster, cfg.Seed)
	if err != nil {
		return nil, nil, err
	}

	repo, err := openRepository(cfg.DB)
	if err != nil {
		return nil, nil, err
	}
	if err := attachRepository(ctx, stores, repo); err != nil {
		if repo != nil {
			_ = repo.Close()
		}
		return nil, nil, err
	}
	return stores, repo, nil
}
