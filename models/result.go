package models

import (
	"sync/atomic"
	"time"
)

// RunStats holds live counters for one manufacturer run. It is shared between the
// orchestrator and the fleet runner so a timed-out run still reports partial progress.
type RunStats struct {
	discovered  atomic.Int64
	scraped     atomic.Int64
	upserted    atomic.Int64
	synthesized atomic.Int64
	errors      atomic.Int64
}

func (s *RunStats) AddDiscovered(n int) { s.discovered.Add(int64(n)) }
func (s *RunStats) IncScraped()         { s.scraped.Add(1) }
func (s *RunStats) IncUpserted()        { s.upserted.Add(1) }
func (s *RunStats) IncSynthesized()     { s.synthesized.Add(1) }
func (s *RunStats) IncErrors()          { s.errors.Add(1) }

// Snapshot copies the counters into a RunResult.
func (s *RunStats) Snapshot(manufacturer string) RunResult {
	return RunResult{
		Manufacturer: manufacturer,
		Discovered:   int(s.discovered.Load()),
		Scraped:      int(s.scraped.Load()),
		Upserted:     int(s.upserted.Load()),
		Synthesized:  int(s.synthesized.Load()),
		Errors:       int(s.errors.Load()),
	}
}

// RunResult is the terminal state of one manufacturer run.
type RunResult struct {
	Manufacturer string    `json:"manufacturer"`
	Discovered   int       `json:"discovered"`
	Scraped      int       `json:"scraped"`
	Upserted     int       `json:"upserted"`
	Synthesized  int       `json:"synthesized"`
	Errors       int       `json:"errors"`
	ProductCount int       `json:"product_count"`
	StartTime    time.Time `json:"start_time"`
	EndTime      time.Time `json:"end_time"`
}

// RunStatus is the fleet-level outcome of one manufacturer.
type RunStatus string

const (
	StatusSuccess RunStatus = "success"
	StatusFailed  RunStatus = "failed"
	StatusSkipped RunStatus = "skipped"
)

// ManufacturerReport is one line of the fleet summary.
type ManufacturerReport struct {
	Slug     string        `json:"slug"`
	Status   RunStatus     `json:"status"`
	Error    string        `json:"error,omitempty"`
	Result   RunResult     `json:"result"`
	Duration time.Duration `json:"duration"`
}

// FleetSummary aggregates every manufacturer of a fleet run.
type FleetSummary struct {
	Reports   []ManufacturerReport `json:"reports"`
	Succeeded int                  `json:"succeeded"`
	Failed    int                  `json:"failed"`
	Skipped   int                  `json:"skipped"`
	StartTime time.Time            `json:"start_time"`
	EndTime   time.Time            `json:"end_time"`
}

// OK reports whether no manufacturer failed.
func (s *FleetSummary) OK() bool {
	return s.Failed == 0
}
