package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"

	"github.com/cyp0633/termplan/internal/config"
	"github.com/cyp0633/termplan/internal/logging"
	"github.com/cyp0633/termplan/internal/reload"
	"github.com/cyp0633/termplan/plan"
	"github.com/cyp0633/termplan/planner/recurrence"
	"github.com/cyp0633/termplan/server"
	"github.com/cyp0633/termplan/server/storage"
	"github.com/cyp0633/termplan/server/storage/memory"
)

func runServe(ctx context.Context, args []string, stderr io.Writer) error {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", "", "config file (YAML)")
	envPath := fs.String("env", ".env", "dotenv file exported before reading config, skipped if missing")
	plansDir := fs.String("plans", "", "directory of plan files, overrides plans.dir")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if err := config.LoadEnv(*envPath); err != nil {
		return err
	}
	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	if *plansDir != "" {
		cfg.Plans.Dir = *plansDir
	}

	logger, err := logging.New(stderr, cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return err
	}

	reg, err := loadHolidays(cfg.Holidays.File)
	if err != nil {
		return err
	}

	store := memory.New()
	n, err := loadPlans(ctx, store, cfg.Plans.Dir, logger)
	if err != nil {
		return err
	}
	logger.Info("plans loaded", "dir", cfg.Plans.Dir, "count", n, "holidays", reg.Len())

	if cfg.Plans.Reload != "" {
		reloader := reload.New(store, cfg.Plans.Dir, reload.WithLogger(logger))
		if err := reloader.Start(cfg.Plans.Reload); err != nil {
			return err
		}
		defer func() {
			stopCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
			defer cancel()
			reloader.Stop(stopCtx)
		}()
	}

	engine := recurrence.NewEngineWithConfig(cfg.RecurrenceConfig(), recurrence.WithLogger(logger))
	defer engine.Close()

	srv := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      server.NewHandler(store, reg, engine, server.WithLogger(logger)),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting server", "addr", cfg.Server.Addr)
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

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// loadPlans stores every *.yaml and *.yml file in dir under its base name.
// Unlike a scheduled reload it fails on the first bad file, so a broken
// deployment does not start.
func loadPlans(ctx context.Context, store storage.Storage, dir string, logger *slog.Logger) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, fmt.Errorf("read plans dir: %w", err)
	}

	count := 0
	for _, e := range entries {
		if e.IsDir() || !reload.IsPlanFile(e.Name()) {
			continue
		}
		path := filepath.Join(dir, e.Name())
		def, err := plan.LoadFile(path)
		if err != nil {
			return count, err
		}
		id := reload.PlanID(e.Name())
		if _, err := store.CreatePlan(ctx, id, def); err != nil {
			return count, fmt.Errorf("%s: %w", path, err)
		}
		logger.Debug("plan loaded", "id", id, "path", path)
		count++
	}
	return count, nil
}
