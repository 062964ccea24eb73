package catalog

import (
	"github.com/aluiziolira/trailer-catalog/models"
)

// productColumns is the column order shared by product inserts and selects.
const productColumns = `id, manufacturer_id, name, slug, series, model_number, tagline, description,
	short_description, product_type, tonnage_min, tonnage_max, deck_height_inches, deck_length_feet,
	overall_length_feet, axle_count, gooseneck_type, empty_weight_lbs, gvwr_lbs,
	concentrated_capacity_lbs, source_url, last_scraped_at, is_active`

// productUpdates is the ON CONFLICT assignment list; it never touches id or the key.
const productUpdates = `name = excluded.name, series = excluded.series,
	model_number = excluded.model_number, tagline = excluded.tagline,
	description = excluded.description, short_description = excluded.short_description,
	product_type = excluded.product_type, tonnage_min = excluded.tonnage_min,
	tonnage_max = excluded.tonnage_max, deck_height_inches = excluded.deck_height_inches,
	deck_length_feet = excluded.deck_length_feet, overall_length_feet = excluded.overall_length_feet,
	axle_count = excluded.axle_count, gooseneck_type = excluded.gooseneck_type,
	empty_weight_lbs = excluded.empty_weight_lbs, gvwr_lbs = excluded.gvwr_lbs,
	concentrated_capacity_lbs = excluded.concentrated_capacity_lbs,
	source_url = excluded.source_url, last_scraped_at = excluded.last_scraped_at,
	is_active = excluded.is_active`

type scanner interface {
	Scan(dest ...any) error
}

func productArgs(id string, p *models.Product) []any {
	return []any{
		id, p.ManufacturerID, p.Name, p.Slug, p.Series, p.ModelNumber, p.Tagline, p.Description,
		p.ShortDescription, string(p.ProductType), p.TonnageMin, p.TonnageMax, p.DeckHeightInches,
		p.DeckLengthFeet, p.OverallLengthFeet, p.AxleCount, nullable(string(p.GooseneckType)),
		p.EmptyWeightLbs, p.GVWRLbs, p.ConcentratedCapacityLbs, p.SourceURL, p.LastScrapedAt,
		p.IsActive,
	}
}

func scanProduct(row scanner) (models.Product, error) {
	var (
		p           models.Product
		productType string
		gooseneck   *string
	)
	err := row.Scan(
		&p.ID, &p.ManufacturerID, &p.Name, &p.Slug, &p.Series, &p.ModelNumber, &p.Tagline,
		&p.Description, &p.ShortDescription, &productType, &p.TonnageMin, &p.TonnageMax,
		&p.DeckHeightInches, &p.DeckLengthFeet, &p.OverallLengthFeet, &p.AxleCount, &gooseneck,
		&p.EmptyWeightLbs, &p.GVWRLbs, &p.ConcentratedCapacityLbs, &p.SourceURL, &p.LastScrapedAt,
		&p.IsActive,
	)
	if err != nil {
		return models.Product{}, err
	}
	p.ProductType = models.ProductType(productType)
	if gooseneck != nil {
		p.GooseneckType = models.GooseneckType(*gooseneck)
	}
	return p, nil
}

func scanImage(row scanner) (models.ProductImage, error) {
	var (
		img models.ProductImage
		alt *string
		src *string
	)
	if err := row.Scan(&img.ID, &img.ProductID, &img.URL, &alt, &img.SortOrder, &img.IsPrimary, &src); err != nil {
		return models.ProductImage{}, err
	}
	if alt != nil {
		img.AltText = *alt
	}
	if src != nil {
		img.SourceURL = *src
	}
	return img, nil
}

func scanSpec(row scanner) (models.ProductSpec, error) {
	var (
		spec models.ProductSpec
		unit *string
	)
	if err := row.Scan(&spec.ID, &spec.ProductID, &spec.Category, &spec.Key, &spec.Value, &unit, &spec.SortOrder); err != nil {
		return models.ProductSpec{}, err
	}
	if unit != nil {
		spec.Unit = *unit
	}
	return spec, nil
}
