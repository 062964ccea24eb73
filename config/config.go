package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds catalog pipeline configuration.
type Config struct {
	CatalogDSN          string
	Browser             string // http or chrome
	PageTimeout         time.Duration
	ManufacturerTimeout time.Duration
	MaxRetries          int
	RetryBackoff        time.Duration
	RetryBackoffMax     time.Duration
	// DelayMin and DelayMax override every profile's politeness delay when DelayMax > 0.
	DelayMin      time.Duration
	DelayMax      time.Duration
	CacheSize     int
	UserAgent     string
	Parallelism   int
	Manufacturers []string
	ExportFile    string
	ExportFormat  string // csv, json, or both
	MetricsAddr   string
	Verbose       bool
}

// DefaultConfig returns conservative defaults: one manufacturer at a time, no
// database and no export.
func DefaultConfig() *Config {
	return &Config{
		CatalogDSN:          "memory",
		Browser:             "http",
		PageTimeout:         45 * time.Second,
		ManufacturerTimeout: 10 * time.Minute,
		MaxRetries:          2,
		RetryBackoff:        2 * time.Second,
		RetryBackoffMax:     8 * time.Second,
		CacheSize:           256,
		UserAgent:           "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36",
		Parallelism:         1,
		ExportFormat:        "csv",
	}
}

// Load returns the defaults overlaid with the environment. A .env file in the
// working directory is read first when present; variables already set win.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	cfg := DefaultConfig()
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	if v, ok := EnvString("DATABASE_URL"); ok {
		c.CatalogDSN = v
	}
	if v, ok := EnvString("CATALOG_BROWSER"); ok {
		c.Browser = strings.ToLower(v)
	}
	if v, ok := EnvString("CATALOG_USER_AGENT"); ok {
		c.UserAgent = v
	}
	if v, ok := EnvString("CATALOG_MANUFACTURERS"); ok {
		c.Manufacturers = SplitList(v)
	}
	if v, ok := EnvString("CATALOG_EXPORT"); ok {
		c.ExportFile = v
	}
	if v, ok := EnvString("CATALOG_EXPORT_FORMAT"); ok {
		c.ExportFormat = strings.ToLower(v)
	}
	if v, ok := EnvString("CATALOG_METRICS_ADDR"); ok {
		c.MetricsAddr = v
	}

	ints := []struct {
		key string
		dst *int
	}{
		{"CATALOG_MAX_RETRIES", &c.MaxRetries},
		{"CATALOG_CACHE_SIZE", &c.CacheSize},
		{"CATALOG_PARALLEL", &c.Parallelism},
	}
	for _, e := range ints {
		v, ok, err := EnvInt(e.key)
		if err != nil {
			return err
		}
		if ok {
			*e.dst = v
		}
	}

	durations := []struct {
		key string
		dst *time.Duration
	}{
		{"CATALOG_PAGE_TIMEOUT", &c.PageTimeout},
		{"CATALOG_MANUFACTURER_TIMEOUT", &c.ManufacturerTimeout},
		{"CATALOG_RETRY_BACKOFF", &c.RetryBackoff},
		{"CATALOG_RETRY_BACKOFF_MAX", &c.RetryBackoffMax},
		{"CATALOG_DELAY_MIN", &c.DelayMin},
		{"CATALOG_DELAY_MAX", &c.DelayMax},
	}
	for _, e := range durations {
		v, ok, err := EnvDuration(e.key)
		if err != nil {
			return err
		}
		if ok {
			*e.dst = v
		}
	}
	return nil
}

// Validate ensures all configuration values are coherent.
func (c *Config) Validate() error {
	if c.CatalogDSN == "" {
		return fmt.Errorf("catalog DSN cannot be empty")
	}
	if c.Browser != "http" && c.Browser != "chrome" {
		return fmt.Errorf("browser must be http or chrome")
	}
	if c.PageTimeout <= 0 {
		return fmt.Errorf("page timeout must be positive")
	}
	if c.ManufacturerTimeout <= 0 {
		return fmt.Errorf("manufacturer timeout must be positive")
	}
	if c.ManufacturerTimeout < c.PageTimeout {
		return fmt.Errorf("manufacturer timeout (%s) cannot be shorter than page timeout (%s)", c.ManufacturerTimeout, c.PageTimeout)
	}
	if c.MaxRetries < 0 {
		return fmt.Errorf("max retries cannot be negative")
	}
	if c.RetryBackoff < 0 {
		return fmt.Errorf("retry backoff cannot be negative")
	}
	if c.RetryBackoffMax < 0 {
		return fmt.Errorf("retry backoff max cannot be negative")
	}
	if c.RetryBackoffMax > 0 && c.RetryBackoff > c.RetryBackoffMax {
		return fmt.Errorf("retry backoff (%s) cannot exceed retry backoff max (%s)", c.RetryBackoff, c.RetryBackoffMax)
	}
	if c.DelayMin < 0 || c.DelayMax < 0 {
		return fmt.Errorf("delay cannot be negative")
	}
	if c.DelayMax > 0 && c.DelayMin > c.DelayMax {
		return fmt.Errorf("delay min (%s) cannot exceed delay max (%s)", c.DelayMin, c.DelayMax)
	}
	if c.CacheSize < 0 {
		return fmt.Errorf("cache size cannot be negative")
	}
	if c.Parallelism <= 0 {
		return fmt.Errorf("parallelism must be positive")
	}
	if c.UserAgent == "" {
		return fmt.Errorf("user agent cannot be empty")
	}
	if c.ExportFile != "" {
		switch c.ExportFormat {
		case "csv", "json", "jsonl", "both":
		default:
			return fmt.Errorf("export format must be csv, json, or both")
		}
	}
	return nil
}
