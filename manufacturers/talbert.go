package manufacturers

import (
	"regexp"

	"github.com/aluiziolira/trailer-catalog/discover"
	"github.com/aluiziolira/trailer-catalog/extract"
	"github.com/aluiziolira/trailer-catalog/knowledge"
	"github.com/aluiziolira/trailer-catalog/models"
	"github.com/aluiziolira/trailer-catalog/pipeline"
)

func talbert() pipeline.Profile {
	const site = "https://www.talbertmfg.com"
	return pipeline.Profile{
		Slug:  "talbert",
		Name:  "Talbert Manufacturing",
		Seeds: []string{site + "/trailers/", site + "/lowboys/"},
		Rules: discover.Rules{
			AllowedDomains: []string{"talbertmfg.com"},
			Keywords:       []string{"lowboy", "55cc", "35cc", "60sa", "40fg"},
			Exclude:        []string{"/accessories", "/used-", "/rental"},
			MinSegments:    1,
			DeepSegments:   3,
			Known: []string{
				site + "/trailers/55cc-lowboy",
				site + "/trailers/60sa-lowboy",
			},
		},
		Extract: extract.Options{
			ImageHosts: []string{"talbertmfg.com"},
			ImagePaths: []string{"/wp-content/uploads/"},
		},
		Table: knowledge.Table{
			Lines: []knowledge.Line{
				line("55cc", `\b55\s*cc\b`, knowledge.Defaults{
					Name:             "55CC Lowboy",
					Series:           "Construction",
					ProductType:      models.ProductTypeLowboy,
					GooseneckType:    models.GooseneckHydraulicDetachable,
					TonnageMin:       55,
					TonnageMax:       55,
					DeckHeightInches: 22,
					DeckLengthFeet:   25,
					AxleCount:        3,
					EmptyWeightLbs:   19800,
					SourceURL:        site + "/trailers/55cc-lowboy",
					Specs: []knowledge.Spec{
						spec("Decking", "2\" Apitong", "in"),
						spec("Suspension", "Air ride", ""),
					},
				}),
				line("35cc", `\b35\s*cc\b`, knowledge.Defaults{
					Name:             "35CC Lowboy",
					Series:           "Construction",
					ProductType:      models.ProductTypeLowboy,
					GooseneckType:    models.GooseneckHydraulicDetachable,
					TonnageMin:       35,
					TonnageMax:       35,
					DeckHeightInches: 22,
					DeckLengthFeet:   24,
					AxleCount:        2,
					SourceURL:        site + "/trailers/35cc-lowboy",
				}),
				line("60sa", `\b60\s*sa\b`, knowledge.Defaults{
					Name:             "60SA Lowboy",
					Series:           "SA",
					ProductType:      models.ProductTypeLowboy,
					GooseneckType:    models.GooseneckHydraulicDetachable,
					TonnageMin:       60,
					TonnageMax:       60,
					DeckHeightInches: 24,
					DeckLengthFeet:   26,
					AxleCount:        3,
					SourceURL:        site + "/trailers/60sa-lowboy",
					Specs: []knowledge.Spec{
						spec("Outriggers", "Swing-out, 8 per side", ""),
					},
				}),
				line("40fg", `\b40\s*fg\b`, knowledge.Defaults{
					Name:           "40FG Fixed Neck Lowboy",
					ProductType:    models.ProductTypeLowboy,
					GooseneckType:  models.GooseneckFixed,
					TonnageMin:     40,
					TonnageMax:     40,
					DeckLengthFeet: 24,
					AxleCount:      2,
				}),
			},
			Series: []knowledge.SeriesRule{
				series(`\d+\s*cc\b|construction`, "Construction"),
				series(`\d+\s*sa\b`, "SA"),
			},
			ModelNumber: regexp.MustCompile(`(?i)\b(\d{2}\s?[a-z]{2,3})\b`),
		},
		GenericTitles: []string{"Talbert", "Trailers", "Lowboys"},
		DelayMin:      defaultDelayMin,
		DelayMax:      defaultDelayMax,
	}
}
