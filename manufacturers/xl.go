package manufacturers

import (
	"regexp"

	"github.com/aluiziolira/trailer-catalog/discover"
	"github.com/aluiziolira/trailer-catalog/extract"
	"github.com/aluiziolira/trailer-catalog/knowledge"
	"github.com/aluiziolira/trailer-catalog/models"
	"github.com/aluiziolira/trailer-catalog/pipeline"
)

func xlSpecialized() pipeline.Profile {
	const site = "https://www.xlspecializedtrailer.com"
	return pipeline.Profile{
		Slug:  "xl-specialized",
		Name:  "XL Specialized Trailers",
		Seeds: []string{site + "/trailers/", site + "/products/"},
		Rules: discover.Rules{
			AllowedDomains: []string{"xlspecializedtrailer.com"},
			Keywords:       []string{"xl-", "hdg", "mde", "mini-deck", "lowboy"},
			Exclude:        []string{"/dealers", "/inventory"},
			MinSegments:    2,
			DeepSegments:   3,
		},
		Extract: extract.Options{
			ImageHosts: []string{"xlspecializedtrailer.com"},
			ImagePaths: []string{"/wp-content/uploads/", "/images/products/"},
		},
		Table: knowledge.Table{
			Lines: []knowledge.Line{
				line("xl120", `xl[\s-]*120`, knowledge.Defaults{
					Name:             "XL 120 HDG",
					Series:           "HDG",
					ProductType:      models.ProductTypeLowboy,
					GooseneckType:    models.GooseneckHydraulicDetachable,
					TonnageMin:       60,
					TonnageMax:       60,
					DeckHeightInches: 24,
					DeckLengthFeet:   26,
					AxleCount:        3,
					Specs: []knowledge.Spec{
						spec("Gooseneck", "Hydraulic detachable, 3 position ride height", ""),
					},
				}),
				line("xl110", `xl[\s-]*110`, knowledge.Defaults{
					Name:             "XL 110 HDG",
					Series:           "HDG",
					ProductType:      models.ProductTypeLowboy,
					GooseneckType:    models.GooseneckHydraulicDetachable,
					TonnageMin:       55,
					TonnageMax:       55,
					DeckHeightInches: 24,
					DeckLengthFeet:   26,
					AxleCount:        3,
					EmptyWeightLbs:   21500,
				}),
				line("xl90", `xl[\s-]*90\b`, knowledge.Defaults{
					Name:          "XL 90 MDE",
					Series:        "MDE",
					ProductType:   models.ProductTypeExtendable,
					GooseneckType: models.GooseneckMechanicalDetachable,
					TonnageMin:    45,
					TonnageMax:    45,
					AxleCount:     3,
				}),
				line("xl80", `xl[\s-]*80\b`, knowledge.Defaults{
					Name:             "XL 80 HDG",
					Series:           "HDG",
					ProductType:      models.ProductTypeLowboy,
					GooseneckType:    models.GooseneckHydraulicDetachable,
					TonnageMin:       40,
					TonnageMax:       40,
					DeckHeightInches: 22,
					AxleCount:        2,
				}),
			},
			Series: []knowledge.SeriesRule{
				series(`\bhdg\b`, "HDG"),
				series(`\bmde\b`, "MDE"),
			},
			ModelNumber: regexp.MustCompile(`(?i)\bxl[\s-]*\d{2,3}\b`),
		},
		GenericTitles: []string{"XL Specialized", "Products", "Trailers"},
		DelayMin:      defaultDelayMin,
		DelayMax:      defaultDelayMax,
	}
}
