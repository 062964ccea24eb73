package catalog

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/aluiziolira/trailer-catalog/models"
)

// MemoryStore is a Store held in process memory, used for dry runs and tests.
type MemoryStore struct {
	mu            sync.Mutex
	now           func() time.Time
	manufacturers map[string]*models.Manufacturer // by slug
	products      map[string]*models.Product      // by id
	productKeys   map[string]string               // manufacturerID/slug -> id
	images        map[string][]models.ProductImage
	specs         map[string][]models.ProductSpec
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		now:           time.Now,
		manufacturers: make(map[string]*models.Manufacturer),
		products:      make(map[string]*models.Product),
		productKeys:   make(map[string]string),
		images:        make(map[string][]models.ProductImage),
		specs:         make(map[string][]models.ProductSpec),
	}
}

func (s *MemoryStore) Migrate(context.Context) error { return nil }
func (s *MemoryStore) Close() error                  { return nil }

func (s *MemoryStore) EnsureManufacturer(_ context.Context, slug, name string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if m, ok := s.manufacturers[slug]; ok {
		if name != "" {
			m.Name = name
		}
		return m.ID, nil
	}
	m := &models.Manufacturer{ID: uuid.NewString(), Slug: slug, Name: name}
	s.manufacturers[slug] = m
	return m.ID, nil
}

func (s *MemoryStore) UpsertProduct(_ context.Context, manufacturerID string, p *models.Product) (string, error) {
	if err := prepareProduct(manufacturerID, p, s.now()); err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := manufacturerID + "/" + p.Slug
	id, ok := s.productKeys[key]
	if !ok {
		id = uuid.NewString()
		s.productKeys[key] = id
	}
	p.ID = id
	row := *p
	s.products[id] = &row
	return id, nil
}

func (s *MemoryStore) UpsertImages(_ context.Context, productID string, images []models.ProductImage) error {
	if len(images) == 0 {
		return nil
	}
	rows := positionImages(productID, images)
	for i := range rows {
		rows[i].ID = uuid.NewString()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.products[productID]; !ok {
		return ErrNotFound
	}
	s.images[productID] = rows
	return nil
}

func (s *MemoryStore) UpsertSpecs(_ context.Context, productID string, specs []models.ProductSpec) error {
	if len(specs) == 0 {
		return nil
	}
	rows := positionSpecs(productID, specs)
	for i := range rows {
		rows[i].ID = uuid.NewString()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.products[productID]; !ok {
		return ErrNotFound
	}
	s.specs[productID] = rows
	return nil
}

func (s *MemoryStore) UpdateProductCount(_ context.Context, manufacturerID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var target *models.Manufacturer
	for _, m := range s.manufacturers {
		if m.ID == manufacturerID {
			target = m
			break
		}
	}
	if target == nil {
		return 0, ErrNotFound
	}

	count := 0
	for _, p := range s.products {
		if p.ManufacturerID == manufacturerID && p.IsActive {
			count++
		}
	}
	target.ProductCount = count
	return count, nil
}

func (s *MemoryStore) Manufacturer(_ context.Context, slug string) (*models.Manufacturer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.manufacturers[slug]
	if !ok {
		return nil, ErrNotFound
	}
	out := *m
	return &out, nil
}

// Products returns the manufacturer's products ordered by slug.
func (s *MemoryStore) Products(_ context.Context, manufacturerID string) ([]models.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []models.Product
	for _, p := range s.products {
		if p.ManufacturerID == manufacturerID {
			out = append(out, *p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Slug < out[j].Slug })
	return out, nil
}

func (s *MemoryStore) Images(_ context.Context, productID string) ([]models.ProductImage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.ProductImage(nil), s.images[productID]...), nil
}

func (s *MemoryStore) Specs(_ context.Context, productID string) ([]models.ProductSpec, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.ProductSpec(nil), s.specs[productID]...), nil
}
