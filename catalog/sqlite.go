package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/aluiziolira/trailer-catalog/models"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS manufacturers (
	id            TEXT PRIMARY KEY,
	slug          TEXT NOT NULL UNIQUE,
	name          TEXT NOT NULL,
	product_count INTEGER NOT NULL DEFAULT 0,
	updated_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS manufacturer_products (
	id                        TEXT PRIMARY KEY,
	manufacturer_id           TEXT NOT NULL REFERENCES manufacturers(id) ON DELETE CASCADE,
	name                      TEXT NOT NULL,
	slug                      TEXT NOT NULL,
	series                    TEXT,
	model_number              TEXT,
	tagline                   TEXT NOT NULL DEFAULT '',
	description               TEXT NOT NULL DEFAULT '',
	short_description         TEXT NOT NULL DEFAULT '',
	product_type              TEXT NOT NULL DEFAULT 'other',
	tonnage_min               INTEGER,
	tonnage_max               INTEGER,
	deck_height_inches        REAL,
	deck_length_feet          REAL,
	overall_length_feet       REAL,
	axle_count                INTEGER,
	gooseneck_type            TEXT,
	empty_weight_lbs          INTEGER,
	gvwr_lbs                  INTEGER,
	concentrated_capacity_lbs INTEGER,
	source_url                TEXT NOT NULL DEFAULT '',
	last_scraped_at           DATETIME NOT NULL,
	is_active                 INTEGER NOT NULL DEFAULT 1,
	UNIQUE (manufacturer_id, slug)
);

CREATE TABLE IF NOT EXISTS manufacturer_product_images (
	id         TEXT PRIMARY KEY,
	product_id TEXT NOT NULL REFERENCES manufacturer_products(id) ON DELETE CASCADE,
	url        TEXT NOT NULL,
	alt_text   TEXT,
	sort_order INTEGER NOT NULL,
	is_primary INTEGER NOT NULL DEFAULT 0,
	source_url TEXT
);
CREATE INDEX IF NOT EXISTS manufacturer_product_images_product_idx ON manufacturer_product_images (product_id);

CREATE TABLE IF NOT EXISTS manufacturer_product_specs (
	id         TEXT PRIMARY KEY,
	product_id TEXT NOT NULL REFERENCES manufacturer_products(id) ON DELETE CASCADE,
	category   TEXT NOT NULL,
	spec_key   TEXT NOT NULL,
	spec_value TEXT NOT NULL,
	unit       TEXT,
	sort_order INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS manufacturer_product_specs_product_idx ON manufacturer_product_specs (product_id);
`

// SQLiteStore is a Store backed by a local SQLite file.
type SQLiteStore struct {
	db  *sql.DB
	now func() time.Time
}

// NewSQLiteStore opens (or creates) the database at path.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("catalog: open sqlite: %w", err)
	}
	// One connection keeps the pragma in effect and serializes writers.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(`PRAGMA foreign_keys = ON`); err != nil {
		db.Close()
		return nil, fmt.Errorf("catalog: sqlite pragma: %w", err)
	}
	return &SQLiteStore{db: db, now: time.Now}, nil
}

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteSchema)
	return err
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) EnsureManufacturer(ctx context.Context, slug, name string) (string, error) {
	var id string
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO manufacturers (id, slug, name) VALUES (?, ?, ?)
		 ON CONFLICT(slug) DO UPDATE SET name = excluded.name, updated_at = CURRENT_TIMESTAMP
		 RETURNING id`,
		uuid.NewString(), slug, name,
	).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("ensure manufacturer %s: %w", slug, err)
	}
	return id, nil
}

func (s *SQLiteStore) UpsertProduct(ctx context.Context, manufacturerID string, p *models.Product) (string, error) {
	if err := prepareProduct(manufacturerID, p, s.now()); err != nil {
		return "", err
	}

	var id string
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO manufacturer_products (`+productColumns+`)
		 VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)
		 ON CONFLICT(manufacturer_id, slug) DO UPDATE SET `+productUpdates+`
		 RETURNING id`,
		productArgs(uuid.NewString(), p)...,
	).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("upsert product %q: %w", p.Name, err)
	}
	p.ID = id
	return id, nil
}

func (s *SQLiteStore) UpsertImages(ctx context.Context, productID string, images []models.ProductImage) error {
	if len(images) == 0 {
		return nil
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM manufacturer_product_images WHERE product_id = ?`, productID); err != nil {
		return fmt.Errorf("delete images: %w", err)
	}
	for _, img := range positionImages(productID, images) {
		_, err := s.db.ExecContext(ctx,
			`INSERT INTO manufacturer_product_images (id, product_id, url, alt_text, sort_order, is_primary, source_url)
			 VALUES (?,?,?,?,?,?,?)`,
			uuid.NewString(), productID, img.URL, nullable(img.AltText), img.SortOrder, img.IsPrimary, nullable(img.SourceURL),
		)
		if err != nil {
			return fmt.Errorf("insert image: %w", err)
		}
	}
	return nil
}

func (s *SQLiteStore) UpsertSpecs(ctx context.Context, productID string, specs []models.ProductSpec) error {
	if len(specs) == 0 {
		return nil
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM manufacturer_product_specs WHERE product_id = ?`, productID); err != nil {
		return fmt.Errorf("delete specs: %w", err)
	}
	for _, spec := range positionSpecs(productID, specs) {
		_, err := s.db.ExecContext(ctx,
			`INSERT INTO manufacturer_product_specs (id, product_id, category, spec_key, spec_value, unit, sort_order)
			 VALUES (?,?,?,?,?,?,?)`,
			uuid.NewString(), productID, spec.Category, spec.Key, spec.Value, nullable(spec.Unit), spec.SortOrder,
		)
		if err != nil {
			return fmt.Errorf("insert spec: %w", err)
		}
	}
	return nil
}

func (s *SQLiteStore) UpdateProductCount(ctx context.Context, manufacturerID string) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`UPDATE manufacturers SET
			product_count = (SELECT count(*) FROM manufacturer_products WHERE manufacturer_id = ?1 AND is_active = 1),
			updated_at = CURRENT_TIMESTAMP
		 WHERE id = ?1
		 RETURNING product_count`,
		manufacturerID,
	).Scan(&count)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("update product count: %w", err)
	}
	return count, nil
}

func (s *SQLiteStore) Manufacturer(ctx context.Context, slug string) (*models.Manufacturer, error) {
	var m models.Manufacturer
	err := s.db.QueryRowContext(ctx,
		`SELECT id, slug, name, product_count FROM manufacturers WHERE slug = ?`, slug,
	).Scan(&m.ID, &m.Slug, &m.Name, &m.ProductCount)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (s *SQLiteStore) Products(ctx context.Context, manufacturerID string) ([]models.Product, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+productColumns+` FROM manufacturer_products WHERE manufacturer_id = ? ORDER BY slug`,
		manufacturerID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) Images(ctx context.Context, productID string) ([]models.ProductImage, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, product_id, url, alt_text, sort_order, is_primary, source_url
		 FROM manufacturer_product_images WHERE product_id = ? ORDER BY sort_order`,
		productID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.ProductImage
	for rows.Next() {
		img, err := scanImage(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, img)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) Specs(ctx context.Context, productID string) ([]models.ProductSpec, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, product_id, category, spec_key, spec_value, unit, sort_order
		 FROM manufacturer_product_specs WHERE product_id = ? ORDER BY sort_order`,
		productID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.ProductSpec
	for rows.Next() {
		spec, err := scanSpec(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, spec)
	}
	return out, rows.Err()
}
