package pipeline

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/aluiziolira/trailer-catalog/models"
)

var (
	// ErrExporterClosed is returned when Process is called after shutdown.
	ErrExporterClosed = errors.New("export: closed")
	// ErrExporterCloseTimeout is returned when pending products could not be written in time.
	ErrExporterCloseTimeout = errors.New("export: close timed out")
)

var drainTimeout = 30 * time.Second

// OutputWriter defines the interface for product export output.
type OutputWriter interface {
	Write(products []*models.Product) error
	Close() error
	Validate() error
}

// Exporter collects upserted products in the background and writes them in batches
// to an OutputWriter on Close. It is shared by every orchestrator of a fleet run.
// A product upserted twice under the same (manufacturer, slug) is exported once,
// at its first position, with the values of the last upsert.
type Exporter struct {
	writer    OutputWriter
	productCh chan *models.Product
	batchSize int

	wg sync.WaitGroup

	pendingMu sync.Mutex
	index     map[string]int
	pending   []*models.Product

	stats exportStats

	mu     sync.Mutex // guards closed/err
	closed bool
	err    error

	closeOnce    sync.Once
	shutdown     chan struct{}
	shutdownOnce sync.Once
}

// NewExporter builds an exporter with a modest in-memory buffer.
func NewExporter(writer OutputWriter, batchSize int) *Exporter {
	if batchSize <= 0 {
		batchSize = 64
	}
	return &Exporter{
		writer:    writer,
		productCh: make(chan *models.Product, 512),
		batchSize: batchSize,
		index:     make(map[string]int),
		stats:     exportStats{rejected: make(map[string]int)},
		shutdown:  make(chan struct{}),
	}
}

// Start launches worker goroutines.
func (e *Exporter) Start(workers int) {
	if workers <= 0 {
		workers = 1
	}

	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	e.mu.Unlock()

	for i := 0; i < workers; i++ {
		e.wg.Add(1)
		go e.worker()
	}
}

// Process enqueues copies of products for export.
func (e *Exporter) Process(products ...*models.Product) error {
	if len(products) == 0 {
		return nil
	}

	closed, err := e.state()
	if err != nil {
		return err
	}
	if closed {
		return ErrExporterClosed
	}

	for _, product := range products {
		if product == nil {
			continue
		}
		cp := *product
		if err := e.enqueue(&cp); err != nil {
			return err
		}
	}
	return nil
}

// Close waits for workers to drain the queue, writes the collected products and
// prevents more submissions.
func (e *Exporter) Close() error {
	e.mu.Lock()
	e.closed = true
	e.mu.Unlock()

	e.signalShutdown()
	e.closeOnce.Do(func() {
		close(e.productCh)
	})

	done := make(chan struct{})
	go func() {
		e.wg.Wait()
		if err := e.flush(); err != nil {
			e.setErr(fmt.Errorf("write batch: %w", err))
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(drainTimeout):
		return ErrExporterCloseTimeout
	}

	closeErr := e.writer.Close()
	if err := e.Err(); err != nil {
		return err
	}
	return closeErr
}

// Err returns the first error encountered during export.
func (e *Exporter) Err() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.err
}

// Stats returns a snapshot of the export counters.
func (e *Exporter) Stats() ExportStats {
	return e.stats.snapshot()
}

func (e *Exporter) worker() {
	defer e.wg.Done()
	for product := range e.productCh {
		e.accept(product)
	}
}

// accept drops invalid rows. A repeat of the same (manufacturer, slug) replaces the
// pending copy in place.
func (e *Exporter) accept(p *models.Product) {
	if p.Name == "" || p.Slug == "" {
		e.stats.addRejected("invalid_record")
		return
	}

	key := p.ManufacturerID + "/" + p.Slug
	e.pendingMu.Lock()
	defer e.pendingMu.Unlock()
	if i, ok := e.index[key]; ok {
		e.pending[i] = p
		e.stats.addRejected("duplicate_product")
		return
	}
	e.index[key] = len(e.pending)
	e.pending = append(e.pending, p)
}

func (e *Exporter) flush() error {
	e.pendingMu.Lock()
	products := e.pending
	e.pending = nil
	e.pendingMu.Unlock()

	for start := 0; start < len(products); start += e.batchSize {
		end := min(start+e.batchSize, len(products))
		if err := e.writer.Write(products[start:end]); err != nil {
			return err
		}
		e.stats.addExported(int64(end - start))
	}
	return nil
}

func (e *Exporter) enqueue(p *models.Product) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = ErrExporterClosed
		}
	}()

	select {
	case <-e.shutdown:
		return ErrExporterClosed
	case e.productCh <- p:
		return nil
	}
}

func (e *Exporter) setErr(err error) {
	if err == nil {
		return
	}

	e.mu.Lock()
	if e.err != nil {
		e.mu.Unlock()
		return
	}
	e.err = err
	e.closed = true
	e.mu.Unlock()

	e.signalShutdown()
}

func (e *Exporter) state() (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.closed, e.err
}

func (e *Exporter) signalShutdown() {
	e.shutdownOnce.Do(func() {
		close(e.shutdown)
	})
}

// ExportStats is a snapshot of exporter counters.
type ExportStats struct {
	Exported int64
	Rejected map[string]int
}

type exportStats struct {
	mu       sync.Mutex
	exported int64
	rejected map[string]int
}

func (s *exportStats) addExported(n int64) {
	s.mu.Lock()
	s.exported += n
	s.mu.Unlock()
}

func (s *exportStats) addRejected(kind string) {
	s.mu.Lock()
	s.rejected[kind]++
	s.mu.Unlock()
}

func (s *exportStats) snapshot() ExportStats {
	s.mu.Lock()
	defer s.mu.Unlock()

	rejected := make(map[string]int, len(s.rejected))
	for k, v := range s.rejected {
		rejected[k] = v
	}
	return ExportStats{Exported: s.exported, Rejected: rejected}
}
