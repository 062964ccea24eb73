package manufacturers

import (
	"regexp"

	"github.com/aluiziolira/trailer-catalog/discover"
	"github.com/aluiziolira/trailer-catalog/extract"
	"github.com/aluiziolira/trailer-catalog/knowledge"
	"github.com/aluiziolira/trailer-catalog/models"
	"github.com/aluiziolira/trailer-catalog/pipeline"
)

func trailKing() pipeline.Profile {
	const site = "https://www.trailking.com"
	return pipeline.Profile{
		Slug:  "trail-king",
		Name:  "Trail King",
		Seeds: []string{site + "/trailers/", site + "/product-lines/"},
		Rules: discover.Rules{
			AllowedDomains:   []string{"trailking.com"},
			Keywords:         []string{"tk", "lowboy", "hydraulic-tail", "tag"},
			Exclude:          []string{"/build-your-trailer", "/service"},
			MinSegments:      2,
			DeepSegments:     3,
			FanOut:           true,
			CategoryKeywords: []string{"lowboys", "hydraulic-tails", "tag-alongs"},
		},
		Extract: extract.Options{
			NameSelectors: []string{".product-title", "h1"},
			ImageHosts:    []string{"trailking.com", "trailking.b-cdn.net"},
			ImagePaths:    []string{"/uploads/"},
		},
		Table: knowledge.Table{
			Lines: []knowledge.Line{
				line("tk110hdg", `tk\s*110`, knowledge.Defaults{
					Name:             "TK110HDG Lowboy",
					ProductType:      models.ProductTypeLowboy,
					GooseneckType:    models.GooseneckHydraulicDetachable,
					TonnageMin:       55,
					TonnageMax:       55,
					DeckHeightInches: 22,
					DeckLengthFeet:   26,
					AxleCount:        3,
					Specs: []knowledge.Spec{
						spec("Crossmembers", "Channel, 16\" centers", "in"),
					},
				}),
				line("tk80ht", `tk\s*80`, knowledge.Defaults{
					Name:          "TK80HT Hydraulic Tail",
					Series:        "Hydraulic Tail",
					ProductType:   models.ProductTypeOther,
					GooseneckType: models.GooseneckFixed,
					TonnageMin:    40,
					TonnageMax:    40,
					AxleCount:     2,
				}),
				line("tk70ht", `tk\s*70`, knowledge.Defaults{
					Name:          "TK70HT Hydraulic Tail",
					Series:        "Hydraulic Tail",
					ProductType:   models.ProductTypeOther,
					GooseneckType: models.GooseneckFixed,
					TonnageMin:    35,
					TonnageMax:    35,
					AxleCount:     2,
				}),
				line("tk40", `tk\s*40`, knowledge.Defaults{
					Name:        "TK40 Tag-Along",
					ProductType: models.ProductTypeTagAlong,
					TonnageMin:  20,
					TonnageMax:  20,
					AxleCount:   2,
				}),
			},
			Series: []knowledge.SeriesRule{
				series(`\d+ht\b|hydraulic[\s-]tail`, "Hydraulic Tail"),
			},
			ModelNumber: regexp.MustCompile(`(?i)\b(tk\s*\d{2,3}[a-z]{0,4})\b`),
		},
		GenericTitles: []string{"Trail King", "Trailers", "Product Lines"},
		DelayMin:      defaultDelayMin,
		DelayMax:      defaultDelayMax,
	}
}
