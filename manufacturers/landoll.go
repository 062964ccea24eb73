package manufacturers

import (
	"regexp"

	"github.com/aluiziolira/trailer-catalog/discover"
	"github.com/aluiziolira/trailer-catalog/extract"
	"github.com/aluiziolira/trailer-catalog/knowledge"
	"github.com/aluiziolira/trailer-catalog/models"
	"github.com/aluiziolira/trailer-catalog/pipeline"
)

func landoll() pipeline.Profile {
	const site = "https://www.landoll.com"
	return pipeline.Profile{
		Slug:  "landoll",
		Name:  "Landoll",
		Seeds: []string{site + "/trailers/"},
		Rules: discover.Rules{
			AllowedDomains:   []string{"landoll.com"},
			Keywords:         []string{"traveling-axle", "hydraulic-tail", "drop-deck", "series"},
			Exclude:          []string{"/agricultural", "/forklifts", "/tillage"},
			MinSegments:      2,
			DeepSegments:     3,
			FanOut:           true,
			CategoryKeywords: []string{"traveling-axle", "hydraulic-tail", "drop-deck"},
			Known: []string{
				site + "/trailers/traveling-axle/855e",
				site + "/trailers/traveling-axle/440b",
			},
		},
		Extract: extract.Options{
			DescriptionSelectors: []string{".product-overview", ".entry-content", "main"},
			ImageHosts:           []string{"landoll.com"},
			ImagePaths:           []string{"/media/", "/wp-content/uploads/"},
			ImageExclude:         []string{"/dealer-map"},
		},
		Table: knowledge.Table{
			Lines: []knowledge.Line{
				line("855e", `\b855`, knowledge.Defaults{
					Name:                    "855E Traveling Axle",
					Series:                  "800",
					ProductType:             models.ProductTypeTravelingAxle,
					TonnageMin:              27,
					TonnageMax:              27,
					DeckLengthFeet:          53,
					AxleCount:               2,
					ConcentratedCapacityLbs: 55000,
					SourceURL:               site + "/trailers/traveling-axle/855e",
					Specs: []knowledge.Spec{
						spec("Winch", "Hydraulic, 20,000 lb planetary", "lbs"),
					},
				}),
				line("440b", `\b440`, knowledge.Defaults{
					Name:                    "440B Traveling Axle",
					Series:                  "400",
					ProductType:             models.ProductTypeTravelingAxle,
					TonnageMin:              20,
					TonnageMax:              20,
					DeckLengthFeet:          40,
					AxleCount:               2,
					ConcentratedCapacityLbs: 40000,
					SourceURL:               site + "/trailers/traveling-axle/440b",
				}),
				line("930", `\b930`, knowledge.Defaults{
					Name:        "930 Hydraulic Tail",
					Series:      "900",
					ProductType: models.ProductTypeOther,
					TonnageMin:  25,
					TonnageMax:  25,
					AxleCount:   2,
				}),
				line("317", `\b317`, knowledge.Defaults{
					Name:          "317 Series Drop Deck",
					Series:        "300",
					ProductType:   models.ProductTypeStepDeck,
					GooseneckType: models.GooseneckFixed,
					TonnageMin:    25,
					TonnageMax:    25,
					AxleCount:     2,
				}),
			},
			ModelNumber: regexp.MustCompile(`(?i)\b(\d{3}[a-z]?)\b`),
		},
		GenericTitles:       []string{"Landoll", "Trailers", "Landoll Corporation"},
		DelayMin:            defaultDelayMin,
		DelayMax:            defaultDelayMax,
		SynthesizeFallbacks: true,
	}
}
