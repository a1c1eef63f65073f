// Package reload keeps a plan store in step with a directory of plan files
// on a cron schedule.
package reload

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cyp0633/termplan/plan"
	"github.com/cyp0633/termplan/server/storage"
	"github.com/robfig/cron/v3"
)

// Result counts what one sync pass did.
type Result struct {
	Stored  int
	Skipped int
}

// Reloader upserts every plan file of a directory into a store.
type Reloader struct {
	store   storage.Storage
	dir     string
	timeout time.Duration
	logger  *slog.Logger
	cron    *cron.Cron
}

// Option configures a Reloader.
type Option func(*Reloader)

// WithLogger sets the logger for the reloader
func WithLogger(logger *slog.Logger) Option {
	return func(r *Reloader) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithTimeout bounds a single sync pass. The default is one minute.
func WithTimeout(d time.Duration) Option {
	return func(r *Reloader) {
		if d > 0 {
			r.timeout = d
		}
	}
}

// New creates a reloader for dir.
func New(store storage.Storage, dir string, opts ...Option) *Reloader {
	r := &Reloader{
		store:   store,
		dir:     dir,
		timeout: time.Minute,
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// ValidateSchedule reports whether spec is a standard five-field cron
// expression or a descriptor such as "@every 5m".
func ValidateSchedule(spec string) error {
	if _, err := cron.ParseStandard(spec); err != nil {
		return fmt.Errorf("invalid reload schedule %q: %w", spec, err)
	}
	return nil
}

// Sync stores every *.yaml and *.yml file of the directory under its base
// name, replacing what the store holds. Files that fail to parse are logged
// and skipped so one bad edit does not block the others.
func (r *Reloader) Sync(ctx context.Context) (Result, error) {
	var res Result
	entries, err := os.ReadDir(r.dir)
	if err != nil {
		return res, fmt.Errorf("read plans dir: %w", err)
	}

	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		if e.IsDir() || !IsPlanFile(e.Name()) {
			continue
		}
		path := filepath.Join(r.dir, e.Name())
		def, err := plan.LoadFile(path)
		if err != nil {
			r.logger.Warn("skipping plan file", "path", path, "error", err)
			res.Skipped++
			continue
		}
		id := PlanID(e.Name())
		p, _, err := r.store.PutPlan(ctx, id, def)
		if err != nil {
			return res, fmt.Errorf("%s: %w", path, err)
		}
		r.logger.Debug("plan synced", "id", id, "etag", p.ETag)
		res.Stored++
	}
	return res, nil
}

// Start runs Sync on schedule until Stop. Overlapping runs are skipped.
func (r *Reloader) Start(schedule string) error {
	if r.cron != nil {
		return fmt.Errorf("reloader already started")
	}
	logger := cronLogger{r.logger}
	c := cron.New(cron.WithLogger(logger), cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)))
	if _, err := c.AddFunc(schedule, r.run); err != nil {
		return fmt.Errorf("invalid reload schedule %q: %w", schedule, err)
	}
	r.cron = c
	c.Start()
	r.logger.Info("plan reload scheduled", "dir", r.dir, "schedule", schedule)
	return nil
}

// Stop halts the schedule and waits for a running sync to finish, or for
// ctx to be done.
func (r *Reloader) Stop(ctx context.Context) {
	if r.cron == nil {
		return
	}
	select {
	case <-r.cron.Stop().Done():
	case <-ctx.Done():
	}
	r.cron = nil
}

func (r *Reloader) run() {
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()

	res, err := r.Sync(ctx)
	if err != nil {
		r.logger.Error("plan reload failed", "dir", r.dir, "error", err)
		return
	}
	r.logger.Info("plans reloaded", "dir", r.dir, "stored", res.Stored, "skipped", res.Skipped)
}

// IsPlanFile reports whether name has a plan file extension.
func IsPlanFile(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	return ext == ".yaml" || ext == ".yml"
}

// PlanID is the store id of a plan file: its base name without extension.
func PlanID(name string) string {
	base := filepath.Base(name)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// cronLogger routes cron's logging to slog.
type cronLogger struct {
	logger *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debug("cron: "+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Error("cron: "+msg, append(keysAndValues, "error", err)...)
}
