package builder

import (
	"errors"
	"math"
	"regexp"
	"testing"

	"github.com/aluiziolira/trailer-catalog/categorizer"
	"github.com/aluiziolira/trailer-catalog/knowledge"
	"github.com/aluiziolira/trailer-catalog/models"
)

var table = knowledge.Table{
	Lines: []knowledge.Line{
		{
			ID:      "850XT",
			Pattern: regexp.MustCompile(`(?i)850\s*xt`),
			Defaults: knowledge.Defaults{
				Name:             "850XT Lowboy",
				Series:           "XT",
				ModelNumber:      "850XT",
				Description:      "Curated 850XT description.",
				SourceURL:        "https://www.example-trailers.com/trailers/850xt",
				ProductType:      models.ProductTypeLowboy,
				GooseneckType:    models.GooseneckHydraulicDetachable,
				TonnageMin:       50,
				TonnageMax:       50,
				DeckHeightInches: 24,
				DeckLengthFeet:   26,
				AxleCount:        3,
				EmptyWeightLbs:   19500,
				Specs: []knowledge.Spec{
					{Key: "Capacity", Value: "50 Ton"},
					{Key: "Decking", Value: "Apitong"},
					{Category: categorizer.Warranty, Key: "Warranty", Value: "5 year structural"},
				},
			},
		},
	},
	Series: []knowledge.SeriesRule{
		{Pattern: regexp.MustCompile(`(?i)megamax`), Series: "MegaMAX"},
	},
}

func newBuilder() *Builder {
	return New(Options{Table: table, GenericTitles: []string{"Example Trailers"}})
}

func TestScrapedValueBeatsTableDefault(t *testing.T) {
	page := &models.PageData{
		URL:   "https://www.example-trailers.com/trailers/850xt",
		Name:  "850XT Lowboy",
		Specs: []models.RawSpecPair{{Key: "Capacity", Value: "40 Ton"}},
	}

	entry, lineID, err := newBuilder().Build("m-1", page)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if lineID != "850XT" {
		t.Fatalf("line=%q, want 850XT", lineID)
	}
	p := entry.Product
	if p.TonnageMin == nil || *p.TonnageMin != 40 || *p.TonnageMax != 40 {
		t.Fatalf("tonnage=%v/%v, want 40/40", deref(p.TonnageMin), deref(p.TonnageMax))
	}
	// Gaps are filled from the table.
	if p.AxleCount == nil || *p.AxleCount != 3 {
		t.Fatalf("axles=%v, want 3 from table", deref(p.AxleCount))
	}
	if p.DeckHeightInches == nil || *p.DeckHeightInches != 24 {
		t.Fatalf("deck height=%v, want 24 from table", p.DeckHeightInches)
	}
	if p.GooseneckType != models.GooseneckHydraulicDetachable {
		t.Fatalf("gooseneck=%q", p.GooseneckType)
	}
	if p.Series == nil || *p.Series != "XT" {
		t.Fatalf("series=%v", p.Series)
	}
	if p.Description != "Curated 850XT description." {
		t.Fatalf("description=%q", p.Description)
	}
	if p.Slug != "850xt-lowboy" || p.ManufacturerID != "m-1" || !p.IsActive {
		t.Fatalf("unexpected identity %+v", p)
	}
}

func TestSpecMergeScrapedKeysWin(t *testing.T) {
	page := &models.PageData{
		URL:  "https://www.example-trailers.com/trailers/850xt",
		Name: "850XT Lowboy",
		Specs: []models.RawSpecPair{
			{Key: "capacity", Value: "40 Ton"},
			{Key: "capacity", Value: "40 Ton"},
		},
	}

	entry, _, err := newBuilder().Build("m-1", page)
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	values := map[string]string{}
	for i, s := range entry.Specs {
		if s.SortOrder != i {
			t.Fatalf("spec %d has sort order %d", i, s.SortOrder)
		}
		if _, dup := values[s.Key]; dup {
			t.Fatalf("duplicate key %q in %+v", s.Key, entry.Specs)
		}
		values[s.Key] = s.Value
	}
	if values["capacity"] != "40 Ton" {
		t.Fatalf("scraped capacity lost: %+v", entry.Specs)
	}
	if _, ok := values["Capacity"]; ok {
		t.Fatalf("fallback Capacity must not be appended: %+v", entry.Specs)
	}
	if values["Decking"] != "Apitong" || values["Warranty"] != "5 year structural" {
		t.Fatalf("fallback specs missing: %+v", entry.Specs)
	}
	last := entry.Specs[len(entry.Specs)-1]
	if last.Category != categorizer.Warranty {
		t.Fatalf("explicit fallback category lost: %+v", last)
	}
}

func TestFieldCascadeFromText(t *testing.T) {
	page := &models.PageData{
		URL:         "https://www.example-trailers.com/trailers/magnitude-55h",
		Name:        "Magnitude 55H",
		Description: "A 55 ton hydraulic detachable lowboy with a 24\" loaded deck height and a 26' main deck. Empty weight approx. 20,100 lbs.",
		Features:    []string{"Tri-axle air ride suspension", "Built in the USA since 1938"},
	}

	entry, lineID, err := newBuilder().Build("m-1", page)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if lineID != "" {
		t.Fatalf("unexpected line %q", lineID)
	}
	p := entry.Product

	if p.TonnageMin == nil || *p.TonnageMin != 55 {
		t.Fatalf("tonnage=%v", deref(p.TonnageMin))
	}
	if p.DeckHeightInches == nil || *p.DeckHeightInches != 24 {
		t.Fatalf("deck height=%v", p.DeckHeightInches)
	}
	if p.DeckLengthFeet == nil || math.Abs(*p.DeckLengthFeet-26) > 0.001 {
		t.Fatalf("deck length=%v", p.DeckLengthFeet)
	}
	if p.AxleCount == nil || *p.AxleCount != 3 {
		t.Fatalf("axles=%v", deref(p.AxleCount))
	}
	if p.EmptyWeightLbs == nil || *p.EmptyWeightLbs != 20100 {
		t.Fatalf("empty weight=%v", deref(p.EmptyWeightLbs))
	}
	if p.ProductType != models.ProductTypeLowboy {
		t.Fatalf("type=%q", p.ProductType)
	}
	if p.GooseneckType != models.GooseneckHydraulicDetachable {
		t.Fatalf("gooseneck=%q", p.GooseneckType)
	}
	if p.GVWRLbs != nil || p.Series != nil {
		t.Fatalf("unexpected values gvwr=%v series=%v", p.GVWRLbs, p.Series)
	}

	var features []string
	for _, s := range entry.Specs {
		if s.Category == categorizer.Features {
			features = append(features, s.Value)
		}
	}
	if len(features) != 1 || features[0] != "Tri-axle air ride suspension" {
		t.Fatalf("feature specs=%v", features)
	}
}

func TestLiteralNameSignalBeatsTableDefault(t *testing.T) {
	page := &models.PageData{
		URL:  "https://www.example-trailers.com/trailers/850xt-fixed-neck",
		Name: "850XT Fixed Neck",
	}
	entry, _, err := newBuilder().Build("m-1", page)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if entry.Product.GooseneckType != models.GooseneckFixed {
		t.Fatalf("gooseneck=%q, want fixed", entry.Product.GooseneckType)
	}
	if entry.Product.ProductType != models.ProductTypeLowboy {
		t.Fatalf("type=%q, want lowboy from table", entry.Product.ProductType)
	}
}

func TestPageTextSignalBeatsTableDefault(t *testing.T) {
	acme := knowledge.Table{Lines: []knowledge.Line{{
		ID:      "ACME",
		Pattern: regexp.MustCompile(`(?i)acme`),
		Defaults: knowledge.Defaults{
			Name:          "Acme Lowboy",
			ProductType:   models.ProductTypeLowboy,
			GooseneckType: models.GooseneckHydraulicDetachable,
		},
	}}}
	page := &models.PageData{
		URL:         "https://www.example-trailers.com/trailers/acme-50",
		Name:        "Acme 50",
		Description: "The Acme 50 is a double drop trailer with a fixed gooseneck and a 26' well.",
	}

	entry, lineID, err := New(Options{Table: acme}).Build("m-1", page)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if lineID != "ACME" {
		t.Fatalf("line=%q, want ACME", lineID)
	}
	if entry.Product.GooseneckType != models.GooseneckFixed {
		t.Fatalf("gooseneck=%q, want fixed", entry.Product.GooseneckType)
	}
	if entry.Product.ProductType != models.ProductTypeDoubleDrop {
		t.Fatalf("type=%q, want double-drop", entry.Product.ProductType)
	}
}

func TestAxleCountWords(t *testing.T) {
	tests := []struct {
		name string
		page *models.PageData
	}{
		{
			name: "description",
			page: &models.PageData{Name: "Magnitude 35", Description: "Two axles on air ride suspension."},
		},
		{
			name: "spec pair",
			page: &models.PageData{Name: "Magnitude 35", Specs: []models.RawSpecPair{{Key: "Axles", Value: "Two"}}},
		},
		{
			name: "hyphenated",
			page: &models.PageData{Name: "Magnitude 35", Features: []string{"Two-axle spread configuration"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.page.URL = "https://www.example-trailers.com/trailers/magnitude-35"
			entry, _, err := newBuilder().Build("m-1", tt.page)
			if err != nil {
				t.Fatalf("build: %v", err)
			}
			if got := entry.Product.AxleCount; got == nil || *got != 2 {
				t.Fatalf("axles=%v, want 2", deref(got))
			}
		})
	}
}

func TestStructuredSpecsClassify(t *testing.T) {
	page := &models.PageData{
		URL:  "https://www.example-trailers.com/trailers/magnitude",
		Name: "Magnitude",
		Specs: []models.RawSpecPair{
			{Key: "Gooseneck", Value: "Mechanical detachable"},
			{Key: "Model", Value: "MAG-55"},
			{Key: "Type", Value: "Double drop"},
		},
	}
	entry, _, err := newBuilder().Build("m-1", page)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	p := entry.Product
	if p.GooseneckType != models.GooseneckMechanicalDetachable {
		t.Fatalf("gooseneck=%q", p.GooseneckType)
	}
	if p.ModelNumber == nil || *p.ModelNumber != "MAG-55" {
		t.Fatalf("model=%v", p.ModelNumber)
	}
	if p.ProductType != models.ProductTypeDoubleDrop {
		t.Fatalf("type=%q", p.ProductType)
	}
}

func TestTrivialNameFallsBackToTable(t *testing.T) {
	page := &models.PageData{URL: "https://www.example-trailers.com/trailers/850xt", Name: "Example Trailers"}
	entry, _, err := newBuilder().Build("m-1", page)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if entry.Product.Name != "850XT Lowboy" {
		t.Fatalf("name=%q", entry.Product.Name)
	}

	_, _, err = newBuilder().Build("m-1", &models.PageData{URL: "https://www.example-trailers.com/x", Name: "XL"})
	if !errors.Is(err, ErrNoName) {
		t.Fatalf("err=%v, want ErrNoName", err)
	}
}

func TestFeaturesBackfillDescription(t *testing.T) {
	page := &models.PageData{
		URL:      "https://www.example-trailers.com/trailers/megamax-40",
		Name:     "MegaMAX 40",
		Features: []string{"Hydraulic detachable gooseneck", "Apitong decking throughout"},
	}
	entry, _, err := newBuilder().Build("m-1", page)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	p := entry.Product
	if p.Description != "Hydraulic detachable gooseneck\nApitong decking throughout" {
		t.Fatalf("description=%q", p.Description)
	}
	if p.ShortDescription != "Hydraulic detachable gooseneck" {
		t.Fatalf("short=%q", p.ShortDescription)
	}
	if p.Series == nil || *p.Series != "MegaMAX" {
		t.Fatalf("series=%v", p.Series)
	}
}

func TestImagesArePositional(t *testing.T) {
	page := &models.PageData{
		URL:  "https://www.example-trailers.com/trailers/magnitude",
		Name: "Magnitude",
		Images: []models.ImageCandidate{
			{URL: "https://www.example-trailers.com/a.jpg", Alt: "Side"},
			{URL: "https://www.example-trailers.com/b.jpg"},
		},
	}
	entry, _, err := newBuilder().Build("m-1", page)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if len(entry.Images) != 2 {
		t.Fatalf("images=%d", len(entry.Images))
	}
	if !entry.Images[0].IsPrimary || entry.Images[1].IsPrimary || entry.Images[1].SortOrder != 1 {
		t.Fatalf("unexpected ordering %+v", entry.Images)
	}
	if entry.Images[1].AltText != "Magnitude" {
		t.Fatalf("alt fallback=%q", entry.Images[1].AltText)
	}
}

func TestSynthesize(t *testing.T) {
	entry := newBuilder().Synthesize("m-1", table.Lines[0])
	p := entry.Product
	if p.Name != "850XT Lowboy" || p.Slug != "850xt-lowboy" {
		t.Fatalf("identity=%q/%q", p.Name, p.Slug)
	}
	if p.TonnageMin == nil || *p.TonnageMin != 50 || *p.TonnageMax != 50 {
		t.Fatalf("tonnage=%v/%v", deref(p.TonnageMin), deref(p.TonnageMax))
	}
	if p.SourceURL != "https://www.example-trailers.com/trailers/850xt" {
		t.Fatalf("source=%q", p.SourceURL)
	}
	if p.ProductType != models.ProductTypeLowboy || p.GooseneckType != models.GooseneckHydraulicDetachable {
		t.Fatalf("classification=%q/%q", p.ProductType, p.GooseneckType)
	}
	if len(entry.Specs) != 3 || len(entry.Images) != 0 {
		t.Fatalf("specs=%d images=%d", len(entry.Specs), len(entry.Images))
	}
	if p.ShortDescription != "Curated 850XT description." {
		t.Fatalf("short=%q", p.ShortDescription)
	}
}

func deref(v *int) any {
	if v == nil {
		return nil
	}
	return *v
}
