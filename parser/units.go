package parser

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

const (
	kgToLbs = 2.20462

	// maxMagnitude bounds every parsed figure so the int conversions cannot overflow.
	maxMagnitude = math.MaxInt32
)

// Tonnage is a rated capacity range in short tons. Both ends are nil when nothing parsed.
type Tonnage struct {
	Min *int
	Max *int
}

// Valid reports whether the range carries a value.
func (t Tonnage) Valid() bool {
	return t.Min != nil && t.Max != nil
}

var (
	weightPattern = regexp.MustCompile(`(?i)(\d[\d,]*(?:\.\d+)?)\s*(kgs?|kilograms?|lbs?\.?|pounds?|#)?`)

	tonRangePattern  = regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*(?:-|–|—|to)\s*(\d+(?:\.\d+)?)\s*-?\s*tons?\b`)
	tonSinglePattern = regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*-?\s*tons?\b`)
	tonLbsPattern    = regexp.MustCompile(`(?i)(\d[\d,]*(?:\.\d+)?)\s*(?:lbs?\b|pounds?\b)`)

	deckHeightPattern = regexp.MustCompile(`(\d+(?:\.\d+)?)`)

	feetInchesPattern = regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*(?:'|′|’|ft\.?|feet)\s*-?\s*(\d{1,2}(?:\.\d+)?)(?:\s*(?:"|″|”|''|in\b\.?|inch(?:es)?))?(?:[^\d.]|$)`)
	feetPattern       = regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*(?:'|′|’|ft\b\.?|feet|foot)`)
	bareNumberPattern = regexp.MustCompile(`(\d+(?:\.\d+)?)`)
)

// ParseWeight returns the first number in s as pounds. Kilograms are converted and
// rounded; thousands separators are ignored.
func ParseWeight(s string) (int, bool) {
	m := weightPattern.FindStringSubmatch(s)
	if m == nil {
		return 0, false
	}
	v, ok := parseNumber(m[1])
	if !ok {
		return 0, false
	}
	if strings.HasPrefix(strings.ToLower(m[2]), "k") {
		v *= kgToLbs
	}
	return roundInt(v)
}

// ParseTonnage reads a tonnage range ("35-55 ton"), a single tonnage ("55 Ton") or a
// pound figure converted to tons ("110,000 lbs"), in that order.
func ParseTonnage(s string) Tonnage {
	if t := ParseTonPhrase(s); t.Valid() {
		return t
	}
	if m := tonLbsPattern.FindStringSubmatch(s); m != nil {
		if lbs, ok := parseNumber(m[1]); ok {
			tons := lbs / 2000
			return newTonnage(tons, tons)
		}
	}
	return Tonnage{}
}

// ParseTonPhrase is ParseTonnage without the pound conversion, for free text where
// a pound figure is more likely a weight than a capacity.
func ParseTonPhrase(s string) Tonnage {
	if m := tonRangePattern.FindStringSubmatch(s); m != nil {
		lo, okLo := parseNumber(m[1])
		hi, okHi := parseNumber(m[2])
		if okLo && okHi {
			return newTonnage(lo, hi)
		}
	}
	if m := tonSinglePattern.FindStringSubmatch(s); m != nil {
		if v, ok := parseNumber(m[1]); ok {
			return newTonnage(v, v)
		}
	}
	return Tonnage{}
}

// ParseDeckHeight returns the first decimal in s, always read as inches.
func ParseDeckHeight(s string) (float64, bool) {
	m := deckHeightPattern.FindStringSubmatch(s)
	if m == nil {
		return 0, false
	}
	return parseNumber(m[1])
}

// ParseLength returns a length in feet from feet-and-inches (52'8"), feet-only (26')
// or a bare number.
func ParseLength(s string) (float64, bool) {
	if m := feetInchesPattern.FindStringSubmatch(s); m != nil {
		feet, okFeet := parseNumber(m[1])
		inches, okInches := parseNumber(m[2])
		if okFeet && okInches && inches < 12 {
			return feet + inches/12, true
		}
	}
	if m := feetPattern.FindStringSubmatch(s); m != nil {
		return parseNumber(m[1])
	}
	if m := bareNumberPattern.FindStringSubmatch(s); m != nil {
		return parseNumber(m[1])
	}
	return 0, false
}

// ParseInt returns the first integer in s.
func ParseInt(s string) (int, bool) {
	m := bareNumberPattern.FindStringSubmatch(s)
	if m == nil {
		return 0, false
	}
	v, ok := parseNumber(m[1])
	if !ok {
		return 0, false
	}
	return roundInt(v)
}

func newTonnage(lo, hi float64) Tonnage {
	min, okMin := roundInt(lo)
	max, okMax := roundInt(hi)
	if !okMin || !okMax {
		return Tonnage{}
	}
	if min > max {
		min, max = max, min
	}
	return Tonnage{Min: &min, Max: &max}
}

func parseNumber(raw string) (float64, bool) {
	raw = strings.ReplaceAll(raw, ",", "")
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || math.Abs(v) > maxMagnitude {
		return 0, false
	}
	return v, true
}

func roundInt(v float64) (int, bool) {
	r := math.Round(v)
	if math.IsNaN(r) || math.Abs(r) > maxMagnitude {
		return 0, false
	}
	return int(r), true
}
