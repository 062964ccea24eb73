// Package fleet runs manufacturer jobs in registry order, isolating each one behind
// its own deadline and panic guard so a single failure never stops the rest.
package fleet

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/aluiziolira/trailer-catalog/models"
	"github.com/aluiziolira/trailer-catalog/scraper"
)

var (
	// ErrUnknownManufacturer marks a selected slug with no registry entry.
	ErrUnknownManufacturer = errors.New("fleet: unknown manufacturer")
	// ErrNoJob marks a registry entry without a job.
	ErrNoJob = errors.New("fleet: no job registered")
	// ErrTimeout marks a job that overran its wall-clock budget.
	ErrTimeout = errors.New("fleet: manufacturer timed out")
	// ErrPanic marks a job that panicked.
	ErrPanic = errors.New("fleet: manufacturer panicked")
)

const (
	defaultTimeout = 10 * time.Minute
	defaultGrace   = 30 * time.Second
)

// Job runs one manufacturer. It must report progress through stats so a timed-out
// job still yields partial counters.
type Job func(ctx context.Context, stats *models.RunStats) (models.RunResult, error)

// Entry is one registry line.
type Entry struct {
	Slug string
	Run  Job
}

// Options tune the runner.
type Options struct {
	// Timeout is the per-manufacturer wall clock. Defaults to 10 minutes.
	Timeout time.Duration
	// Grace is how long a timed-out job may take to wind down before the runner
	// moves on. Defaults to 30 seconds.
	Grace time.Duration
	// Parallelism bounds concurrent manufacturers. Defaults to 1.
	Parallelism int
	Metrics     *scraper.Metrics
	Logger      *slog.Logger
}

// Runner executes registry entries.
type Runner struct {
	entries []Entry
	opts    Options
}

// New returns a Runner over entries in run order.
func New(entries []Entry, opts Options) *Runner {
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	if opts.Grace <= 0 {
		opts.Grace = defaultGrace
	}
	if opts.Parallelism <= 0 {
		opts.Parallelism = 1
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Runner{entries: entries, opts: opts}
}

// Run executes the selected slugs in the given order, or every entry when selected
// is empty, and returns the aggregated summary.
func (r *Runner) Run(ctx context.Context, selected []string) models.FleetSummary {
	summary := models.FleetSummary{StartTime: time.Now()}
	plan := r.plan(selected)
	reports := make([]models.ManufacturerReport, len(plan))

	var g errgroup.Group
	g.SetLimit(r.opts.Parallelism)
	for i, entry := range plan {
		if entry.Run == nil {
			err := ErrNoJob
			if _, known := r.lookup(entry.Slug); !known {
				err = ErrUnknownManufacturer
			}
			reports[i] = models.ManufacturerReport{
				Slug:   entry.Slug,
				Status: models.StatusSkipped,
				Error:  err.Error(),
				Result: models.RunResult{Manufacturer: entry.Slug},
			}
			r.opts.Logger.Warn("manufacturer skipped", slog.String("manufacturer", entry.Slug), slog.Any("error", err))
			continue
		}
		g.Go(func() error {
			reports[i] = r.runOne(ctx, entry)
			return nil
		})
	}
	_ = g.Wait()

	for _, report := range reports {
		switch report.Status {
		case models.StatusSuccess:
			summary.Succeeded++
		case models.StatusFailed:
			summary.Failed++
		case models.StatusSkipped:
			summary.Skipped++
		}
		r.opts.Metrics.IncRun(string(report.Status))
	}
	summary.Reports = reports
	summary.EndTime = time.Now()
	return summary
}

func (r *Runner) plan(selected []string) []Entry {
	if len(selected) == 0 {
		return r.entries
	}
	plan := make([]Entry, 0, len(selected))
	for _, slug := range selected {
		entry, ok := r.lookup(slug)
		if !ok {
			entry = Entry{Slug: slug}
		}
		plan = append(plan, entry)
	}
	return plan
}

func (r *Runner) lookup(slug string) (Entry, bool) {
	for _, e := range r.entries {
		if e.Slug == slug {
			return e, true
		}
	}
	return Entry{}, false
}

type outcome struct {
	result models.RunResult
	err    error
}

// runOne runs entry in its own goroutine under a deadline. A panic becomes
// ErrPanic; an overrun becomes ErrTimeout with the counters gathered so far.
func (r *Runner) runOne(ctx context.Context, entry Entry) models.ManufacturerReport {
	logger := r.opts.Logger.With(slog.String("manufacturer", entry.Slug))
	start := time.Now()
	stats := &models.RunStats{}

	jctx, cancel := context.WithTimeout(ctx, r.opts.Timeout)
	defer cancel()

	done := make(chan outcome, 1)
	go func() {
		defer func() {
			if p := recover(); p != nil {
				done <- outcome{err: fmt.Errorf("%w: %v", ErrPanic, p)}
			}
		}()
		result, err := entry.Run(jctx, stats)
		done <- outcome{result: result, err: err}
	}()

	logger.Info("manufacturer started")

	var out outcome
	select {
	case out = <-done:
	case <-jctx.Done():
		// The job still reconciles after cancellation; wait up to Grace for it.
		select {
		case out = <-done:
		case <-time.After(r.opts.Grace):
			out = outcome{err: jctx.Err()}
		}
		if out.err == nil {
			out.err = jctx.Err()
		}
	}

	if out.result.Manufacturer == "" {
		partial := stats.Snapshot(entry.Slug)
		partial.ProductCount = out.result.ProductCount
		partial.StartTime, partial.EndTime = start, time.Now()
		out.result = partial
	}
	if out.err != nil && errors.Is(jctx.Err(), context.DeadlineExceeded) && !errors.Is(out.err, ErrPanic) {
		out.err = fmt.Errorf("%w after %s: %v", ErrTimeout, r.opts.Timeout, out.err)
	}

	report := models.ManufacturerReport{
		Slug:     entry.Slug,
		Status:   models.StatusSuccess,
		Result:   out.result,
		Duration: time.Since(start),
	}
	if out.err != nil {
		report.Status = models.StatusFailed
		report.Error = out.err.Error()
		logger.Error("manufacturer failed",
			slog.Any("error", out.err),
			slog.Int("upserted", out.result.Upserted),
			slog.Int("errors", out.result.Errors),
			slog.Duration("duration", report.Duration),
		)
		return report
	}

	logger.Info("manufacturer finished",
		slog.Int("scraped", out.result.Scraped),
		slog.Int("upserted", out.result.Upserted),
		slog.Int("errors", out.result.Errors),
		slog.Duration("duration", report.Duration),
	)
	return report
}
