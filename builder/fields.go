package builder

import (
	"regexp"
	"strings"

	"github.com/aluiziolira/trailer-catalog/knowledge"
	"github.com/aluiziolira/trailer-catalog/models"
	"github.com/aluiziolira/trailer-catalog/parser"
)

// evidence is everything the field cascade can read for one product.
type evidence struct {
	pairs    []models.RawSpecPair
	text     string
	defaults *knowledge.Defaults
}

// field resolves one numeric attribute: structured spec pairs first, then a scan of
// the page text, then the product line default.
type field[T int | float64] struct {
	keys     *regexp.Regexp
	skipKeys *regexp.Regexp
	parse    func(string) (T, bool)
	text     []*regexp.Regexp
	valid    func(T) bool
	fallback func(knowledge.Defaults) T
}

func (f field[T]) resolve(ev evidence) *T {
	for _, pair := range ev.pairs {
		key := strings.ToLower(strings.TrimSpace(pair.Key))
		if !f.keys.MatchString(key) {
			continue
		}
		if f.skipKeys != nil && f.skipKeys.MatchString(key) {
			continue
		}
		if v, ok := f.parse(pair.Value); ok && f.accept(v) {
			return &v
		}
	}
	for _, re := range f.text {
		m := re.FindStringSubmatch(ev.text)
		if m == nil {
			continue
		}
		if v, ok := f.parse(m[1]); ok && f.accept(v) {
			return &v
		}
	}
	if ev.defaults != nil && f.fallback != nil {
		if v := f.fallback(*ev.defaults); v != 0 {
			return &v
		}
	}
	return nil
}

func (f field[T]) accept(v T) bool {
	if f.valid != nil {
		return f.valid(v)
	}
	return v > 0
}

var (
	tonnageKeys     = regexp.MustCompile(`capacity|tonnage|\bton|payload`)
	tonnageSkipKeys = regexp.MustCompile(`concentrat|axle|tire|fifth|kingpin|neck|winch|cylinder`)

	deckHeightField = field[float64]{
		keys:     regexp.MustCompile(`deck\s*height|loaded\s*height|height.*deck`),
		skipKeys: regexp.MustCompile(`gooseneck|neck|overall|rear|swing`),
		parse:    parser.ParseDeckHeight,
		text: []*regexp.Regexp{
			regexp.MustCompile(`(?i)deck\s*height\s*(?:of|:)?\s*(\d+(?:\.\d+)?)\s*(?:"|″|”|in\b|inch)`),
			regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*(?:"|″|”|in\.?|inch(?:es)?)\s*(?:loaded\s*)?deck\s*height`),
		},
		valid:    func(v float64) bool { return v > 0 && v < 120 },
		fallback: func(d knowledge.Defaults) float64 { return d.DeckHeightInches },
	}

	deckLengthField = field[float64]{
		keys:     regexp.MustCompile(`deck\s*length|main\s*deck|well\s*length|length\s*of\s*deck|deck.*length`),
		skipKeys: regexp.MustCompile(`overall|rear\s*deck|upper|gooseneck|neck`),
		parse:    parser.ParseLength,
		text: []*regexp.Regexp{
			regexp.MustCompile(`(?i)(\d+(?:\.\d+)?\s*(?:'|′|’|ft\.?|feet|foot)(?:\s*-?\s*\d{1,2}\s*(?:"|″|”|in\b))?)\s*(?:main\s*|flat\s*|loadable\s*)?deck\b`),
			regexp.MustCompile(`(?i)deck\s*length\s*(?:of|:)?\s*(\d+(?:\.\d+)?\s*(?:'|′|’|ft\.?|feet)(?:\s*-?\s*\d{1,2}\s*(?:"|″|”|in\b))?)`),
		},
		valid:    func(v float64) bool { return v > 0 && v < 200 },
		fallback: func(d knowledge.Defaults) float64 { return d.DeckLengthFeet },
	}

	overallLengthField = field[float64]{
		keys:  regexp.MustCompile(`overall\s*length|total\s*length|length\s*overall|^length$`),
		parse: parser.ParseLength,
		text: []*regexp.Regexp{
			regexp.MustCompile(`(?i)overall\s*length\s*(?:of|:)?\s*(\d+(?:\.\d+)?\s*(?:'|′|’|ft\.?|feet)(?:\s*-?\s*\d{1,2}\s*(?:"|″|”|in\b))?)`),
		},
		valid:    func(v float64) bool { return v > 0 && v < 300 },
		fallback: func(d knowledge.Defaults) float64 { return d.OverallLengthFeet },
	}

	axleCountField = field[int]{
		keys:     regexp.MustCompile(`axle`),
		skipKeys: regexp.MustCompile(`rating|capacity|spacing|spread|weight|brake|hub|seal|lift|flip|booster|gawr`),
		parse:    parseAxleCount,
		text: []*regexp.Regexp{
			regexp.MustCompile(`(?i)\b(\d{1,2}|single|two|tandem|three|tri|triple|quad|four|five|six)[\s-]?axles?\b`),
		},
		valid:    func(v int) bool { return v >= 1 && v <= 20 },
		fallback: func(d knowledge.Defaults) int { return d.AxleCount },
	}

	emptyWeightField = field[int]{
		keys:     regexp.MustCompile(`empty\s*weight|tare|curb\s*weight|shipping\s*weight|trailer\s*weight|^weight$`),
		skipKeys: regexp.MustCompile(`gross|gvwr|capacity|per\s*axle`),
		parse:    parser.ParseWeight,
		text: []*regexp.Regexp{
			regexp.MustCompile(`(?i)(?:empty|tare|shipping)\s*weight\s*(?:of|:|is)?\s*(?:approx(?:imately|\.)?\s*)?(\d[\d,]*(?:\.\d+)?\s*(?:lbs?|pounds|kgs?))`),
		},
		valid:    func(v int) bool { return v >= 500 },
		fallback: func(d knowledge.Defaults) int { return d.EmptyWeightLbs },
	}

	gvwrField = field[int]{
		keys:  regexp.MustCompile(`gvwr|gross\s*vehicle|gross\s*weight`),
		parse: parser.ParseWeight,
		text: []*regexp.Regexp{
			regexp.MustCompile(`(?i)gvwr\s*(?:of|:|is)?\s*(\d[\d,]*(?:\.\d+)?\s*(?:lbs?|pounds|kgs?)?)`),
		},
		valid:    func(v int) bool { return v >= 1000 },
		fallback: func(d knowledge.Defaults) int { return d.GVWRLbs },
	}

	concentratedField = field[int]{
		keys:  regexp.MustCompile(`concentrat`),
		parse: parser.ParseWeight,
		text: []*regexp.Regexp{
			regexp.MustCompile(`(?i)concentrated\s*(?:load|capacity)?\s*(?:of|:|is)?\s*(\d[\d,]*(?:\.\d+)?\s*(?:lbs?|pounds|kgs?))`),
			regexp.MustCompile(`(?i)(\d[\d,]*(?:\.\d+)?\s*(?:lbs?|pounds))\s*concentrated`),
		},
		valid:    func(v int) bool { return v >= 1000 },
		fallback: func(d knowledge.Defaults) int { return d.ConcentratedCapacityLbs },
	}

	modelNumberKeys = regexp.MustCompile(`^model(?:\s*(?:number|no\.?|#))?$`)
	gooseneckKeys   = regexp.MustCompile(`gooseneck|goose\s*neck|^neck|neck\s*type`)
	typeKeys        = regexp.MustCompile(`^(?:trailer\s*)?type$|^style$|^configuration$`)
)

var axleWords = map[string]int{
	"single": 1,
	"two":    2,
	"tandem": 2,
	"tri":    3,
	"triple": 3,
	"three":  3,
	"quad":   4,
	"four":   4,
	"five":   5,
	"six":    6,
}

var axleWordPattern = regexp.MustCompile(`(?i)\b(single|two|tandem|tri|triple|three|quad|four|five|six)\b`)

func parseAxleCount(s string) (int, bool) {
	if n, ok := parser.ParseInt(s); ok {
		return n, true
	}
	if m := axleWordPattern.FindStringSubmatch(s); m != nil {
		return axleWords[strings.ToLower(m[1])], true
	}
	return 0, false
}

// resolveTonnage runs the cascade for the min/max pair, which always come from one source.
func resolveTonnage(ev evidence) parser.Tonnage {
	for _, pair := range ev.pairs {
		key := strings.ToLower(strings.TrimSpace(pair.Key))
		if !tonnageKeys.MatchString(key) || tonnageSkipKeys.MatchString(key) {
			continue
		}
		if t := parser.ParseTonnage(pair.Value); t.Valid() && *t.Max > 0 {
			return t
		}
	}
	if t := parser.ParseTonPhrase(ev.text); t.Valid() && *t.Max > 0 {
		return t
	}
	if ev.defaults != nil && ev.defaults.TonnageMax > 0 {
		lo, hi := ev.defaults.TonnageMin, ev.defaults.TonnageMax
		if lo <= 0 {
			lo = hi
		}
		return parser.Tonnage{Min: &lo, Max: &hi}
	}
	return parser.Tonnage{}
}
