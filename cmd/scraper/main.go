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
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/aluiziolira/trailer-catalog/catalog"
	"github.com/aluiziolira/trailer-catalog/config"
	"github.com/aluiziolira/trailer-catalog/fleet"
	"github.com/aluiziolira/trailer-catalog/manufacturers"
	"github.com/aluiziolira/trailer-catalog/models"
	"github.com/aluiziolira/trailer-catalog/pipeline"
	"github.com/aluiziolira/trailer-catalog/scraper"
)

const usageHeader = `Usage: scraper [flags]

Runs the manufacturer catalog scrapers. With no flags every registered
manufacturer runs in registry order.

Flags:
`

// registry and newNavigator are replaced in tests to run against offline sites.
var (
	registry     = manufacturers.Registry
	newNavigator = buildNavigator
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(stderr, "configuration: %v\n", err)
		return 2
	}

	fs := flag.NewFlagSet("scraper", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprint(stderr, usageHeader)
		fs.PrintDefaults()
	}

	manufacturer := fs.String("manufacturer", "", "Run a single manufacturer by slug")
	list := fs.Bool("list", false, "List registered manufacturers and exit")
	help := fs.Bool("help", false, "Show this help")
	only := fs.String("manufacturers", strings.Join(cfg.Manufacturers, ","), "Comma separated slugs to run, in order")
	fs.StringVar(&cfg.CatalogDSN, "catalog", cfg.CatalogDSN, "Catalog store: postgres://..., sqlite://path, or memory")
	fs.StringVar(&cfg.Browser, "browser", cfg.Browser, "Navigator: http or chrome")
	fs.DurationVar(&cfg.PageTimeout, "page-timeout", cfg.PageTimeout, "Per-page navigation timeout")
	fs.DurationVar(&cfg.ManufacturerTimeout, "timeout", cfg.ManufacturerTimeout, "Per-manufacturer wall clock")
	fs.IntVar(&cfg.MaxRetries, "max-retries", cfg.MaxRetries, "Retries per page for retryable failures")
	fs.DurationVar(&cfg.RetryBackoff, "retry-backoff", cfg.RetryBackoff, "Initial retry backoff")
	fs.DurationVar(&cfg.RetryBackoffMax, "retry-backoff-max", cfg.RetryBackoffMax, "Maximum retry backoff")
	fs.DurationVar(&cfg.DelayMin, "delay-min", cfg.DelayMin, "Override the minimum delay between page loads")
	fs.DurationVar(&cfg.DelayMax, "delay-max", cfg.DelayMax, "Override the maximum delay between page loads (0 keeps each profile's)")
	fs.IntVar(&cfg.CacheSize, "cache-size", cfg.CacheSize, "Pages kept in the per-run cache (0 disables)")
	fs.IntVar(&cfg.Parallelism, "parallel", cfg.Parallelism, "Manufacturers run concurrently")
	fs.StringVar(&cfg.ExportFile, "export", cfg.ExportFile, "Also export upserted products to this file")
	fs.StringVar(&cfg.ExportFormat, "format", cfg.ExportFormat, "Export format: csv, json, or both")
	fs.StringVar(&cfg.MetricsAddr, "metrics-addr", cfg.MetricsAddr, "Prometheus metrics listen address (e.g. :9090)")
	fs.BoolVar(&cfg.Verbose, "v", cfg.Verbose, "Enable verbose logging")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}
	if *help {
		fs.Usage()
		return 0
	}
	if *list {
		printManufacturers(stdout, registry())
		return 0
	}

	cfg.Manufacturers = config.SplitList(*only)
	cfg.ExportFormat = strings.ToLower(cfg.ExportFormat)
	cfg.Browser = strings.ToLower(cfg.Browser)

	logger, level := newLogger(stdout, cfg.Verbose)
	slog.SetDefault(logger)
	slog.SetLogLoggerLevel(level.Level())

	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", slog.Any("error", err))
		return 2
	}

	profiles := registry()
	selected := cfg.Manufacturers
	if *manufacturer != "" {
		if !registered(profiles, *manufacturer) {
			fmt.Fprintf(stderr, "unknown manufacturer %q\n\n", *manufacturer)
			printManufacturers(stderr, profiles)
			return 2
		}
		selected = []string{*manufacturer}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		slog.Info("shutdown signal received, finishing the current pages")
	}()

	metrics := scraper.NewMetrics()
	if cfg.MetricsAddr != "" {
		server := &http.Server{
			Addr:    cfg.MetricsAddr,
			Handler: promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}),
		}
		go func() {
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				slog.Error("metrics server failed", slog.Any("error", err))
			}
		}()
		slog.Info("metrics server enabled", slog.String("addr", cfg.MetricsAddr))
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := server.Shutdown(shutdownCtx); err != nil {
				slog.Error("metrics server shutdown failed", slog.Any("error", err))
			}
		}()
	}

	store, err := catalog.Open(ctx, cfg.CatalogDSN)
	if err != nil {
		slog.Error("opening catalog", slog.Any("error", err))
		return 1
	}
	defer store.Close()

	var (
		exporter *pipeline.Exporter
		sink     pipeline.Sink
	)
	if cfg.ExportFile != "" {
		writer, err := pipeline.OpenWriter(cfg.ExportFile, cfg.ExportFormat)
		if err != nil {
			slog.Error("creating export writer", slog.Any("error", err))
			return 1
		}
		exporter = pipeline.NewExporter(writer, 64)
		exporter.Start(1)
		sink = exporter
	}

	entries := make([]fleet.Entry, 0, len(profiles))
	for _, profile := range profiles {
		entries = append(entries, fleet.Entry{
			Slug: profile.Slug,
			Run:  job(profile, cfg, store, sink, metrics, logger),
		})
	}

	slog.Info("starting catalog run",
		slog.Int("manufacturers", planned(selected, len(entries))),
		slog.String("browser", cfg.Browser),
		slog.Int("parallel", cfg.Parallelism),
	)

	runner := fleet.New(entries, fleet.Options{
		Timeout:     cfg.ManufacturerTimeout,
		Parallelism: cfg.Parallelism,
		Metrics:     metrics,
		Logger:      logger,
	})
	summary := runner.Run(ctx, selected)

	exportFailed := false
	if exporter != nil {
		if err := exporter.Close(); err != nil {
			slog.Error("export failed", slog.Any("error", err))
			exportFailed = true
		}
		stats := exporter.Stats()
		slog.Info("export complete",
			slog.String("file", cfg.ExportFile),
			slog.Int64("exported", stats.Exported),
			slog.Any("rejected", stats.Rejected),
		)
	}

	printSummary(stdout, summary)
	if !summary.OK() || exportFailed {
		return 1
	}
	return 0
}

// job binds a profile to the shared run dependencies. Each invocation owns its
// navigator for the length of the run.
func job(profile pipeline.Profile, cfg *config.Config, store catalog.Store, sink pipeline.Sink, metrics *scraper.Metrics, logger *slog.Logger) fleet.Job {
	return func(ctx context.Context, stats *models.RunStats) (models.RunResult, error) {
		nav, err := newNavigator(cfg, metrics, logger)
		if err != nil {
			return models.RunResult{}, err
		}
		defer nav.Close()

		o, err := pipeline.New(profile, pipeline.Options{
			Store:     store,
			Navigator: nav,
			CacheSize: cfg.CacheSize,
			DelayMin:  cfg.DelayMin,
			DelayMax:  cfg.DelayMax,
			Sink:      sink,
			Metrics:   metrics,
			Logger:    logger,
			Stats:     stats,
		})
		if err != nil {
			return models.RunResult{}, err
		}
		return o.Run(ctx)
	}
}

func buildNavigator(cfg *config.Config, metrics *scraper.Metrics, logger *slog.Logger) (scraper.Navigator, error) {
	opts := scraper.Options{
		UserAgent:       cfg.UserAgent,
		Timeout:         cfg.PageTimeout,
		MaxRetries:      cfg.MaxRetries,
		RetryBackoff:    cfg.RetryBackoff,
		RetryBackoffMax: cfg.RetryBackoffMax,
		Metrics:         metrics,
		Logger:          logger,
	}
	if cfg.Browser == "chrome" {
		return scraper.NewChromeNavigator(opts)
	}
	return scraper.NewCollyNavigator(opts), nil
}

func planned(selected []string, registered int) int {
	if len(selected) > 0 {
		return len(selected)
	}
	return registered
}

func registered(profiles []pipeline.Profile, slug string) bool {
	for _, p := range profiles {
		if p.Slug == slug {
			return true
		}
	}
	return false
}

func printManufacturers(w io.Writer, profiles []pipeline.Profile) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SLUG\tNAME\tSEEDS")
	for _, p := range profiles {
		fmt.Fprintf(tw, "%s\t%s\t%d\n", p.Slug, p.Name, len(p.Seeds))
	}
	tw.Flush()
}

func printSummary(w io.Writer, summary models.FleetSummary) {
	separator := "--------------------------------------------------"
	fmt.Fprintln(w, "\n"+separator)
	fmt.Fprintln(w, "Catalog run complete")

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "  MANUFACTURER\tSTATUS\tSCRAPED\tUPSERTED\tSYNTH\tERRORS\tACTIVE\tDURATION")
	for _, r := range summary.Reports {
		fmt.Fprintf(tw, "  %s\t%s\t%d\t%d\t%d\t%d\t%d\t%s\n",
			r.Slug, r.Status,
			r.Result.Scraped, r.Result.Upserted, r.Result.Synthesized, r.Result.Errors, r.Result.ProductCount,
			r.Duration.Round(time.Millisecond),
		)
	}
	tw.Flush()

	for _, r := range summary.Reports {
		if r.Error != "" {
			fmt.Fprintf(w, "  %s: %s\n", r.Slug, r.Error)
		}
	}
	fmt.Fprintf(w, "  Succeeded:     %d\n", summary.Succeeded)
	fmt.Fprintf(w, "  Failed:        %d\n", summary.Failed)
	fmt.Fprintf(w, "  Skipped:       %d\n", summary.Skipped)
	fmt.Fprintf(w, "  Duration:      %v\n", summary.EndTime.Sub(summary.StartTime).Round(time.Millisecond))
	fmt.Fprintln(w, separator)
}

func newLogger(w io.Writer, verbose bool) (*slog.Logger, *slog.LevelVar) {
	level := &slog.LevelVar{}
	if verbose {
		level.Set(slog.LevelDebug)
	} else {
		level.Set(slog.LevelInfo)
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if f, ok := w.(*os.File); ok && isTerminal(f) {
		handler = slog.NewTextHandler(w, opts)
	} else {
		handler = slog.NewJSONHandler(w, opts)
	}

	return slog.New(handler), level
}

func isTerminal(f *os.File) bool {
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return (info.Mode() & os.ModeCharDevice) != 0
}
