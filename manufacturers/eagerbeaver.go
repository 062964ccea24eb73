package manufacturers

import (
	"regexp"

	"github.com/aluiziolira/trailer-catalog/discover"
	"github.com/aluiziolira/trailer-catalog/extract"
	"github.com/aluiziolira/trailer-catalog/knowledge"
	"github.com/aluiziolira/trailer-catalog/models"
	"github.com/aluiziolira/trailer-catalog/pipeline"
)

// Eager Beaver's model pages are mostly script-rendered, so the known page list
// doubles as the fallback and missing lines are synthesized from the table.
func eagerBeaver() pipeline.Profile {
	const site = "https://www.eagerbeavertrailers.com"
	pages := []string{
		site + "/models/50gsl-pt",
		site + "/models/35gsl-pt",
		site + "/models/20xpt",
	}
	return pipeline.Profile{
		Slug:  "eager-beaver",
		Name:  "Eager Beaver Trailers",
		Seeds: []string{site + "/models/"},
		Rules: discover.Rules{
			AllowedDomains: []string{"eagerbeavertrailers.com"},
			Keywords:       []string{"/models/", "gsl", "xpt"},
			MinSegments:    2,
			Fallback:       pages,
		},
		Extract: extract.Options{
			ImageHosts: []string{"eagerbeavertrailers.com"},
			ImagePaths: []string{"/wp-content/uploads/"},
		},
		Table: knowledge.Table{
			Lines: []knowledge.Line{
				line("50gsl", `50\s*gsl`, knowledge.Defaults{
					Name:             "50GSL/PT Lowboy",
					ProductType:      models.ProductTypeLowboy,
					GooseneckType:    models.GooseneckHydraulicDetachable,
					TonnageMin:       50,
					TonnageMax:       50,
					DeckHeightInches: 18,
					DeckLengthFeet:   24,
					AxleCount:        3,
					SourceURL:        pages[0],
				}),
				line("35gsl", `35\s*gsl`, knowledge.Defaults{
					Name:             "35GSL/PT Lowboy",
					ProductType:      models.ProductTypeLowboy,
					GooseneckType:    models.GooseneckHydraulicDetachable,
					TonnageMin:       35,
					TonnageMax:       35,
					DeckHeightInches: 18,
					AxleCount:        2,
					SourceURL:        pages[1],
				}),
				line("20xpt", `20\s*xpt`, knowledge.Defaults{
					Name:           "20XPT Tag-Along",
					ProductType:    models.ProductTypeTagAlong,
					TonnageMin:     10,
					TonnageMax:     10,
					DeckLengthFeet: 20,
					AxleCount:      2,
					GVWRLbs:        25000,
					SourceURL:      pages[2],
					Specs: []knowledge.Spec{
						spec("Ramps", "Pierced steel, spring assisted", ""),
					},
				}),
			},
			ModelNumber: regexp.MustCompile(`(?i)\b(\d{2}[a-z]{2,4})\b`),
		},
		GenericTitles:       []string{"Eager Beaver", "Models", "Trailers"},
		DelayMin:            defaultDelayMin,
		DelayMax:            defaultDelayMax,
		SynthesizeFallbacks: true,
	}
}
