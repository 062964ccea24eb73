package manufacturers

import (
	"regexp"

	"github.com/aluiziolira/trailer-catalog/discover"
	"github.com/aluiziolira/trailer-catalog/extract"
	"github.com/aluiziolira/trailer-catalog/knowledge"
	"github.com/aluiziolira/trailer-catalog/models"
	"github.com/aluiziolira/trailer-catalog/pipeline"
)

// Fontaine links model pages only from per-family category pages, so discovery
// fans out one level.
func fontaine() pipeline.Profile {
	const site = "https://www.fontaineheavyhaul.com"
	return pipeline.Profile{
		Slug:  "fontaine",
		Name:  "Fontaine Heavy-Haul",
		Seeds: []string{site + "/trailers/"},
		Rules: discover.Rules{
			AllowedDomains:   []string{"fontaineheavyhaul.com"},
			Keywords:         []string{"magnitude", "renegade", "workhorse", "infinity", "lowboy"},
			Exclude:          []string{"/specialized-", "/quote"},
			MinSegments:      2,
			DeepSegments:     3,
			FanOut:           true,
			CategoryKeywords: []string{"/heavy-haul", "/lowboys", "/series"},
		},
		Extract: extract.Options{
			TaglineSelectors: []string{".hero-subtitle", ".product-subtitle", "h1 + h2"},
			ImageHosts:       []string{"fontaineheavyhaul.com", "fontainetrailer.com"},
			ImagePaths:       []string{"/wp-content/uploads/", "/assets/images/"},
		},
		Table: knowledge.Table{
			Lines: []knowledge.Line{
				line("magnitude", `magnitude`, knowledge.Defaults{
					Name:             "Magnitude 55H",
					Series:           "Magnitude",
					Tagline:          "Hydraulic detachable lowboy built for the heaviest daily hauls",
					ProductType:      models.ProductTypeLowboy,
					GooseneckType:    models.GooseneckHydraulicDetachable,
					TonnageMin:       55,
					TonnageMax:       55,
					DeckHeightInches: 24,
					DeckLengthFeet:   26,
					AxleCount:        3,
					SourceURL:        site + "/trailers/lowboys/magnitude-55h",
					Specs: []knowledge.Spec{
						spec("Decking", "Apitong", ""),
						spec("Main Beam", "T-1 steel", ""),
						spec("Warranty", "5 year structural", ""),
					},
				}),
				line("renegade", `renegade`, knowledge.Defaults{
					Name:             "Renegade LXT",
					Series:           "Renegade",
					ProductType:      models.ProductTypeLowboy,
					GooseneckType:    models.GooseneckHydraulicDetachable,
					TonnageMin:       40,
					TonnageMax:       55,
					DeckHeightInches: 22,
					AxleCount:        3,
					SourceURL:        site + "/trailers/lowboys/renegade-lxt",
				}),
				line("workhorse", `workhorse`, knowledge.Defaults{
					Name:          "Workhorse 35",
					Series:        "Workhorse",
					ProductType:   models.ProductTypeLowboy,
					GooseneckType: models.GooseneckMechanicalDetachable,
					TonnageMin:    35,
					TonnageMax:    35,
					AxleCount:     2,
				}),
				line("infinity", `infinity`, knowledge.Defaults{
					Name:              "Infinity Flatbed",
					ProductType:       models.ProductTypeFlatbed,
					OverallLengthFeet: 53,
					AxleCount:         2,
					GVWRLbs:           80000,
				}),
			},
			Series: []knowledge.SeriesRule{
				series(`magnitude`, "Magnitude"),
				series(`renegade`, "Renegade"),
				series(`workhorse`, "Workhorse"),
			},
			ModelNumber: regexp.MustCompile(`(?i)\b(\d{2}[a-z]{0,3})\b`),
		},
		GenericTitles: []string{"Fontaine", "Heavy Haul Trailers", "Lowboys"},
		DelayMin:      defaultDelayMin,
		DelayMax:      defaultDelayMax,
	}
}
