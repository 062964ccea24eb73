// Package catalog persists built products keyed by (manufacturer_id, slug).
//
// Child collections (images, specs) are full-replace: a non-empty set deletes the
// existing rows and inserts the new ones, an empty set leaves them untouched. The
// delete and the insert are separate statements, so a crash between them leaves the
// product without children until the next scrape.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aluiziolira/trailer-catalog/models"
	"github.com/aluiziolira/trailer-catalog/parser"
)

// ErrNotFound is returned by lookups that match no row.
var ErrNotFound = errors.New("catalog: not found")

// Store is the catalog persistence capability used by the orchestrator.
type Store interface {
	// EnsureManufacturer returns the id of the manufacturer row for slug, creating it if needed.
	EnsureManufacturer(ctx context.Context, slug, name string) (string, error)
	// UpsertProduct writes p keyed by (manufacturerID, Slugify(p.Name)) and returns the row id.
	// It sets p.ID, p.Slug, p.LastScrapedAt and p.IsActive.
	UpsertProduct(ctx context.Context, manufacturerID string, p *models.Product) (string, error)
	UpsertImages(ctx context.Context, productID string, images []models.ProductImage) error
	UpsertSpecs(ctx context.Context, productID string, specs []models.ProductSpec) error
	// UpdateProductCount recomputes the active product count of a manufacturer and returns it.
	UpdateProductCount(ctx context.Context, manufacturerID string) (int, error)

	Manufacturer(ctx context.Context, slug string) (*models.Manufacturer, error)
	Products(ctx context.Context, manufacturerID string) ([]models.Product, error)
	Images(ctx context.Context, productID string) ([]models.ProductImage, error)
	Specs(ctx context.Context, productID string) ([]models.ProductSpec, error)

	Migrate(ctx context.Context) error
	Close() error
}

// Open returns the store addressed by dsn and migrates its schema:
// "" or "memory" for the in-memory store, postgres:// or postgresql:// for Postgres,
// sqlite://<path> (or a path ending in .db/.sqlite) for SQLite.
func Open(ctx context.Context, dsn string) (Store, error) {
	var (
		store Store
		err   error
	)
	switch {
	case dsn == "" || dsn == "memory":
		store = NewMemoryStore()
	case strings.HasPrefix(dsn, "postgres://"), strings.HasPrefix(dsn, "postgresql://"):
		store, err = NewPostgresStore(ctx, dsn)
	case strings.HasPrefix(dsn, "sqlite://"):
		store, err = NewSQLiteStore(strings.TrimPrefix(dsn, "sqlite://"))
	case strings.HasSuffix(dsn, ".db"), strings.HasSuffix(dsn, ".sqlite"):
		store, err = NewSQLiteStore(dsn)
	default:
		return nil, fmt.Errorf("catalog: unsupported dsn %q", redact(dsn))
	}
	if err != nil {
		return nil, err
	}
	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("catalog: migrate: %w", err)
	}
	return store, nil
}

// prepareProduct applies the upsert invariants shared by every store.
func prepareProduct(manufacturerID string, p *models.Product, now time.Time) error {
	slug := parser.Slugify(p.Name)
	if slug == "" {
		return fmt.Errorf("catalog: product %q has an empty slug", p.Name)
	}
	p.ManufacturerID = manufacturerID
	p.Slug = slug
	p.LastScrapedAt = now.UTC()
	p.IsActive = true
	if p.ProductType == "" {
		p.ProductType = models.ProductTypeOther
	}
	return nil
}

// positionImages sets sort order and the primary flag from array position.
func positionImages(productID string, images []models.ProductImage) []models.ProductImage {
	out := make([]models.ProductImage, len(images))
	for i, img := range images {
		img.ProductID = productID
		img.SortOrder = i
		img.IsPrimary = i == 0
		out[i] = img
	}
	return out
}

func positionSpecs(productID string, specs []models.ProductSpec) []models.ProductSpec {
	out := make([]models.ProductSpec, len(specs))
	for i, s := range specs {
		s.ProductID = productID
		s.SortOrder = i
		out[i] = s
	}
	return out
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func redact(dsn string) string {
	if i := strings.Index(dsn, "@"); i >= 0 {
		if j := strings.Index(dsn, "://"); j >= 0 && j < i {
			return dsn[:j+3] + "***" + dsn[i:]
		}
	}
	return dsn
}
