package catalog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/aluiziolira/trailer-catalog/models"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS manufacturers (
	id            UUID PRIMARY KEY,
	slug          TEXT NOT NULL UNIQUE,
	name          TEXT NOT NULL,
	product_count INTEGER NOT NULL DEFAULT 0,
	updated_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS manufacturer_products (
	id                        UUID PRIMARY KEY,
	manufacturer_id           UUID NOT NULL REFERENCES manufacturers(id) ON DELETE CASCADE,
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
	deck_height_inches        DOUBLE PRECISION,
	deck_length_feet          DOUBLE PRECISION,
	overall_length_feet       DOUBLE PRECISION,
	axle_count                INTEGER,
	gooseneck_type            TEXT,
	empty_weight_lbs          INTEGER,
	gvwr_lbs                  INTEGER,
	concentrated_capacity_lbs INTEGER,
	source_url                TEXT NOT NULL DEFAULT '',
	last_scraped_at           TIMESTAMPTZ NOT NULL,
	is_active                 BOOLEAN NOT NULL DEFAULT TRUE,
	UNIQUE (manufacturer_id, slug)
);

CREATE TABLE IF NOT EXISTS manufacturer_product_images (
	id         UUID PRIMARY KEY,
	product_id UUID NOT NULL REFERENCES manufacturer_products(id) ON DELETE CASCADE,
	url        TEXT NOT NULL,
	alt_text   TEXT,
	sort_order INTEGER NOT NULL,
	is_primary BOOLEAN NOT NULL DEFAULT FALSE,
	source_url TEXT
);
CREATE INDEX IF NOT EXISTS manufacturer_product_images_product_idx ON manufacturer_product_images (product_id);

CREATE TABLE IF NOT EXISTS manufacturer_product_specs (
	id         UUID PRIMARY KEY,
	product_id UUID NOT NULL REFERENCES manufacturer_products(id) ON DELETE CASCADE,
	category   TEXT NOT NULL,
	spec_key   TEXT NOT NULL,
	spec_value TEXT NOT NULL,
	unit       TEXT,
	sort_order INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS manufacturer_product_specs_product_idx ON manufacturer_product_specs (product_id);
`

// PostgresStore is a Store backed by a pgx connection pool.
type PostgresStore struct {
	pool *pgxpool.Pool
	now  func() time.Time
}

// NewPostgresStore connects to dsn.
func NewPostgresStore(ctx context.Context, dsn string) (*PostgresStore, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("catalog: parse dsn: %w", err)
	}
	if cfg.MaxConns > 4 {
		cfg.MaxConns = 4
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("catalog: connect: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("catalog: ping: %w", err)
	}
	return &PostgresStore{pool: pool, now: time.Now}, nil
}

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresSchema)
	return err
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func (s *PostgresStore) EnsureManufacturer(ctx context.Context, slug, name string) (string, error) {
	var id string
	err := s.pool.QueryRow(ctx,
		`INSERT INTO manufacturers (id, slug, name) VALUES ($1, $2, $3)
		 ON CONFLICT (slug) DO UPDATE SET name = excluded.name, updated_at = now()
		 RETURNING id::text`,
		uuid.NewString(), slug, name,
	).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("ensure manufacturer %s: %w", slug, err)
	}
	return id, nil
}

func (s *PostgresStore) UpsertProduct(ctx context.Context, manufacturerID string, p *models.Product) (string, error) {
	if err := prepareProduct(manufacturerID, p, s.now()); err != nil {
		return "", err
	}

	var id string
	err := s.pool.QueryRow(ctx,
		`INSERT INTO manufacturer_products (`+productColumns+`)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21,$22,$23)
		 ON CONFLICT (manufacturer_id, slug) DO UPDATE SET `+productUpdates+`
		 RETURNING id::text`,
		productArgs(uuid.NewString(), p)...,
	).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("upsert product %q: %w", p.Name, err)
	}
	p.ID = id
	return id, nil
}

func (s *PostgresStore) UpsertImages(ctx context.Context, productID string, images []models.ProductImage) error {
	if len(images) == 0 {
		return nil
	}
	if _, err := s.pool.Exec(ctx, `DELETE FROM manufacturer_product_images WHERE product_id = $1`, productID); err != nil {
		return fmt.Errorf("delete images: %w", err)
	}

	b := &pgx.Batch{}
	for _, img := range positionImages(productID, images) {
		b.Queue(
			`INSERT INTO manufacturer_product_images (id, product_id, url, alt_text, sort_order, is_primary, source_url)
			 VALUES ($1,$2,$3,$4,$5,$6,$7)`,
			uuid.NewString(), productID, img.URL, nullable(img.AltText), img.SortOrder, img.IsPrimary, nullable(img.SourceURL),
		)
	}
	return s.sendBatch(ctx, b, "insert images")
}

func (s *PostgresStore) UpsertSpecs(ctx context.Context, productID string, specs []models.ProductSpec) error {
	if len(specs) == 0 {
		return nil
	}
	if _, err := s.pool.Exec(ctx, `DELETE FROM manufacturer_product_specs WHERE product_id = $1`, productID); err != nil {
		return fmt.Errorf("delete specs: %w", err)
	}

	b := &pgx.Batch{}
	for _, spec := range positionSpecs(productID, specs) {
		b.Queue(
			`INSERT INTO manufacturer_product_specs (id, product_id, category, spec_key, spec_value, unit, sort_order)
			 VALUES ($1,$2,$3,$4,$5,$6,$7)`,
			uuid.NewString(), productID, spec.Category, spec.Key, spec.Value, nullable(spec.Unit), spec.SortOrder,
		)
	}
	return s.sendBatch(ctx, b, "insert specs")
}

func (s *PostgresStore) sendBatch(ctx context.Context, b *pgx.Batch, op string) error {
	br := s.pool.SendBatch(ctx, b)
	for i := 0; i < b.Len(); i++ {
		if _, err := br.Exec(); err != nil {
			_ = br.Close()
			return fmt.Errorf("%s: %w", op, err)
		}
	}
	if err := br.Close(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (s *PostgresStore) UpdateProductCount(ctx context.Context, manufacturerID string) (int, error) {
	var count int
	err := s.pool.QueryRow(ctx,
		`UPDATE manufacturers SET
			product_count = (SELECT count(*) FROM manufacturer_products WHERE manufacturer_id = $1 AND is_active),
			updated_at = now()
		 WHERE id = $1
		 RETURNING product_count`,
		manufacturerID,
	).Scan(&count)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("update product count: %w", err)
	}
	return count, nil
}

func (s *PostgresStore) Manufacturer(ctx context.Context, slug string) (*models.Manufacturer, error) {
	var m models.Manufacturer
	err := s.pool.QueryRow(ctx,
		`SELECT id::text, slug, name, product_count FROM manufacturers WHERE slug = $1`, slug,
	).Scan(&m.ID, &m.Slug, &m.Name, &m.ProductCount)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (s *PostgresStore) Products(ctx context.Context, manufacturerID string) ([]models.Product, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id::text, manufacturer_id::text, name, slug, series, model_number, tagline, description,
			short_description, product_type, tonnage_min, tonnage_max, deck_height_inches, deck_length_feet,
			overall_length_feet, axle_count, gooseneck_type, empty_weight_lbs, gvwr_lbs,
			concentrated_capacity_lbs, source_url, last_scraped_at, is_active
		 FROM manufacturer_products WHERE manufacturer_id = $1 ORDER BY slug`,
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

func (s *PostgresStore) Images(ctx context.Context, productID string) ([]models.ProductImage, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id::text, product_id::text, url, alt_text, sort_order, is_primary, source_url
		 FROM manufacturer_product_images WHERE product_id = $1 ORDER BY sort_order`,
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

func (s *PostgresStore) Specs(ctx context.Context, productID string) ([]models.ProductSpec, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id::text, product_id::text, category, spec_key, spec_value, unit, sort_order
		 FROM manufacturer_product_specs WHERE product_id = $1 ORDER BY sort_order`,
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
