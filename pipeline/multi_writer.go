package pipeline

import (
	"errors"
	"fmt"

	"github.com/aluiziolira/trailer-catalog/models"
)

// MultiWriter fans every batch out to several writers in order. A failing writer
// stops the batch; Close and Validate visit every writer and join the errors.
type MultiWriter struct {
	writers []OutputWriter
}

// NewMultiWriter tees to writers.
func NewMultiWriter(writers ...OutputWriter) *MultiWriter {
	return &MultiWriter{writers: writers}
}

// NewDualWriter exports to CSV and JSONL at once.
func NewDualWriter(csvFilename, jsonFilename string) (*MultiWriter, error) {
	csvWriter, err := NewCSVWriter(csvFilename)
	if err != nil {
		return nil, err
	}
	jsonWriter, err := NewJSONWriter(jsonFilename)
	if err != nil {
		_ = csvWriter.Close()
		return nil, err
	}
	return NewMultiWriter(csvWriter, jsonWriter), nil
}

func (m *MultiWriter) Write(products []*models.Product) error {
	for i, w := range m.writers {
		if err := w.Write(products); err != nil {
			return fmt.Errorf("writer %d: %w", i, err)
		}
	}
	return nil
}

func (m *MultiWriter) Close() error {
	var errs []error
	for i, w := range m.writers {
		if err := w.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close writer %d: %w", i, err))
		}
	}
	return errors.Join(errs...)
}

func (m *MultiWriter) Validate() error {
	var errs []error
	for i, w := range m.writers {
		if err := w.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("validate writer %d: %w", i, err))
		}
	}
	return errors.Join(errs...)
}
