// Package models defines the catalog records produced by the extraction pipeline.
package models

import "time"

// ProductType is the trailer body style.
type ProductType string

const (
	ProductTypeLowboy        ProductType = "lowboy"
	ProductTypeExtendable    ProductType = "extendable"
	ProductTypeDoubleDrop    ProductType = "double-drop"
	ProductTypeStepDeck      ProductType = "step-deck"
	ProductTypeFlatbed       ProductType = "flatbed"
	ProductTypeRGN           ProductType = "rgn"
	ProductTypeModular       ProductType = "modular"
	ProductTypeTravelingAxle ProductType = "traveling-axle"
	ProductTypeTagAlong      ProductType = "tag-along"
	ProductTypeOther         ProductType = "other"
)

// GooseneckType is the front-coupling mechanism of a trailer.
type GooseneckType string

const (
	GooseneckFixed                GooseneckType = "fixed"
	GooseneckHydraulicDetachable  GooseneckType = "hydraulic-detachable"
	GooseneckMechanicalDetachable GooseneckType = "mechanical-detachable"
	GooseneckNonGroundBearing     GooseneckType = "non-ground-bearing"
	GooseneckFolding              GooseneckType = "folding"
	GooseneckOther                GooseneckType = "other"
)

// Product is one manufacturer catalog entry. Pointer fields are nullable columns.
type Product struct {
	ID                      string        `json:"id,omitempty"`
	ManufacturerID          string        `json:"manufacturer_id"`
	Name                    string        `json:"name"`
	Slug                    string        `json:"slug"`
	Series                  *string       `json:"series,omitempty"`
	ModelNumber             *string       `json:"model_number,omitempty"`
	Tagline                 string        `json:"tagline,omitempty"`
	Description             string        `json:"description,omitempty"`
	ShortDescription        string        `json:"short_description,omitempty"`
	ProductType             ProductType   `json:"product_type"`
	TonnageMin              *int          `json:"tonnage_min,omitempty"`
	TonnageMax              *int          `json:"tonnage_max,omitempty"`
	DeckHeightInches        *float64      `json:"deck_height_inches,omitempty"`
	DeckLengthFeet          *float64      `json:"deck_length_feet,omitempty"`
	OverallLengthFeet       *float64      `json:"overall_length_feet,omitempty"`
	AxleCount               *int          `json:"axle_count,omitempty"`
	GooseneckType           GooseneckType `json:"gooseneck_type,omitempty"`
	EmptyWeightLbs          *int          `json:"empty_weight_lbs,omitempty"`
	GVWRLbs                 *int          `json:"gvwr_lbs,omitempty"`
	ConcentratedCapacityLbs *int          `json:"concentrated_capacity_lbs,omitempty"`
	SourceURL               string        `json:"source_url"`
	LastScrapedAt           time.Time     `json:"last_scraped_at"`
	IsActive                bool          `json:"is_active"`
}

// ProductImage is an owned child row of Product. Position 0 is the primary image.
type ProductImage struct {
	ID        string `json:"id,omitempty"`
	ProductID string `json:"product_id,omitempty"`
	URL       string `json:"url"`
	AltText   string `json:"alt_text,omitempty"`
	SortOrder int    `json:"sort_order"`
	IsPrimary bool   `json:"is_primary"`
	SourceURL string `json:"source_url,omitempty"`
}

// ProductSpec is one categorized key/value row. An empty Unit is stored as NULL.
type ProductSpec struct {
	ID        string `json:"id,omitempty"`
	ProductID string `json:"product_id,omitempty"`
	Category  string `json:"category"`
	Key       string `json:"key"`
	Value     string `json:"value"`
	Unit      string `json:"unit,omitempty"`
	SortOrder int    `json:"sort_order"`
}

// Manufacturer is the summary row the catalog keeps per manufacturer.
type Manufacturer struct {
	ID           string `json:"id"`
	Slug         string `json:"slug"`
	Name         string `json:"name"`
	ProductCount int    `json:"product_count"`
}

// CatalogEntry is a built product ready for the upsert layer.
type CatalogEntry struct {
	Product *Product
	Images  []ProductImage
	Specs   []ProductSpec
}
