package pipeline

import (
	"bufio"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/aluiziolira/trailer-catalog/models"
)

func sampleProduct() *models.Product {
	tons := 55
	deck := 24.5
	series := "XT"
	return &models.Product{
		ID:               "p-1",
		ManufacturerID:   "m-1",
		Name:             "850XT Lowboy",
		Slug:             "850xt-lowboy",
		Series:           &series,
		ProductType:      models.ProductTypeLowboy,
		GooseneckType:    models.GooseneckHydraulicDetachable,
		TonnageMin:       &tons,
		TonnageMax:       &tons,
		DeckHeightInches: &deck,
		SourceURL:        "http://example.test/trailers/850xt",
		LastScrapedAt:    time.Date(2025, 11, 4, 13, 9, 13, 0, time.UTC),
		IsActive:         true,
	}
}

func TestCSVWriterWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "products.csv")

	writer, err := NewCSVWriter(path)
	if err != nil {
		t.Fatalf("create csv writer: %v", err)
	}
	if err := writer.Write([]*models.Product{sampleProduct()}); err != nil {
		t.Fatalf("write csv: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close csv: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open csv: %v", err)
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("records=%d, want 2", len(records))
	}
	if records[0][0] != "manufacturer_id" || records[0][1] != "name" {
		t.Fatalf("unexpected header: %v", records[0])
	}

	row := make(map[string]string, len(records[0]))
	for i, column := range records[0] {
		row[column] = records[1][i]
	}
	if row["tonnage_min"] != "55" || row["deck_height_inches"] != "24.5" || row["series"] != "XT" {
		t.Fatalf("unexpected row: %v", row)
	}
	if row["axle_count"] != "" || row["model_number"] != "" {
		t.Fatalf("null columns must be empty: %v", row)
	}
	if row["last_scraped_at"] != "2025-11-04T13:09:13Z" {
		t.Fatalf("last_scraped_at=%q", row["last_scraped_at"])
	}
}

func TestJSONWriterWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "products.jsonl")

	writer, err := NewJSONWriter(path)
	if err != nil {
		t.Fatalf("create json writer: %v", err)
	}
	if err := writer.Write([]*models.Product{sampleProduct(), sampleProduct()}); err != nil {
		t.Fatalf("write json: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close json: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open json: %v", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	count := 0
	for scanner.Scan() {
		var decoded models.Product
		if err := json.Unmarshal(scanner.Bytes(), &decoded); err != nil {
			t.Fatalf("invalid json line: %v", err)
		}
		if decoded.TonnageMax == nil || *decoded.TonnageMax != 55 {
			t.Fatalf("decoded tonnage=%v", decoded.TonnageMax)
		}
		count++
	}
	if err := scanner.Err(); err != nil {
		t.Fatalf("scan json: %v", err)
	}
	if count != 2 {
		t.Fatalf("json lines=%d, want 2", count)
	}
}

func TestDualWriterWrite(t *testing.T) {
	dir := t.TempDir()
	csvPath := filepath.Join(dir, "products.csv")
	jsonPath := filepath.Join(dir, "products.jsonl")

	writer, err := NewDualWriter(csvPath, jsonPath)
	if err != nil {
		t.Fatalf("create dual writer: %v", err)
	}
	if err := writer.Write([]*models.Product{sampleProduct()}); err != nil {
		t.Fatalf("write dual: %v", err)
	}
	if err := writer.Validate(); err != nil {
		t.Fatalf("validate dual: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close dual: %v", err)
	}

	if info, err := os.Stat(csvPath); err != nil || info.Size() == 0 {
		t.Fatalf("csv file missing or empty")
	}
	if info, err := os.Stat(jsonPath); err != nil || info.Size() == 0 {
		t.Fatalf("json file missing or empty")
	}
}

func TestMultiWriterStopsAtFailingWriter(t *testing.T) {
	first, last := &mockWriter{}, &mockWriter{}
	failing := &failingWriter{}
	m := NewMultiWriter(first, failing, last)

	if err := m.Write([]*models.Product{sampleProduct()}); err == nil {
		t.Fatal("expected write error")
	}
	if first.totalWritten() != 1 || last.totalWritten() != 0 {
		t.Fatalf("first=%d last=%d, want 1/0", first.totalWritten(), last.totalWritten())
	}
	if err := m.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if !first.closed || !failing.closed || !last.closed {
		t.Fatal("every writer must be closed")
	}
}

func TestOpenWriter(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		format  string
		files   []string
		wantErr bool
	}{
		{format: "csv", files: []string{"a.csv"}},
		{format: "JSON", files: []string{"a.csv"}},
		{format: "both", files: []string{"both.csv", "both.jsonl"}},
		{format: "xml", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			name := filepath.Join(dir, tt.format, "a.csv")
			if tt.format == "both" {
				name = filepath.Join(dir, tt.format, "both.out")
			}
			writer, err := OpenWriter(name, tt.format)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("open writer: %v", err)
			}
			if err := writer.Close(); err != nil {
				t.Fatalf("close: %v", err)
			}
			for _, f := range tt.files {
				if _, err := os.Stat(filepath.Join(dir, tt.format, f)); err != nil {
					t.Fatalf("missing %s: %v", f, err)
				}
			}
		})
	}
}
