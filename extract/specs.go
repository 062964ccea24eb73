package extract

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/aluiziolira/trailer-catalog/models"
	"github.com/aluiziolira/trailer-catalog/parser"
)

const maxLabelLength = 50

var labelValuePattern = regexp.MustCompile(`^([^:]{3,50}):\s*(.+)$`)

// SpecStrategy lifts raw spec pairs from a document.
type SpecStrategy func(doc *goquery.Document) []models.RawSpecPair

// SpecStrategies are run unconditionally and concatenated in this order.
var SpecStrategies = []SpecStrategy{
	TableSpecs,
	DefinitionListSpecs,
	ListItemSpecs,
	BoldLabelSpecs,
}

// Specs applies every spec strategy to doc.
func Specs(doc *goquery.Document) []models.RawSpecPair {
	var pairs []models.RawSpecPair
	for _, strategy := range SpecStrategies {
		pairs = append(pairs, strategy(doc)...)
	}
	return pairs
}

// TableSpecs turns every table row with at least two cells into a pair. Extra cells
// are appended to the value.
func TableSpecs(doc *goquery.Document) []models.RawSpecPair {
	var pairs []models.RawSpecPair
	doc.Find("tr").Each(func(_ int, row *goquery.Selection) {
		cells := row.ChildrenFiltered("td, th")
		if cells.Length() < 2 {
			return
		}
		key := parser.Flatten(cells.First().Text())
		var values []string
		cells.Slice(1, cells.Length()).Each(func(_ int, cell *goquery.Selection) {
			if text := parser.Flatten(cell.Text()); text != "" {
				values = append(values, text)
			}
		})
		if key == "" || len(values) == 0 {
			return
		}
		pairs = append(pairs, models.RawSpecPair{
			Key:   strings.TrimSuffix(key, ":"),
			Value: strings.Join(values, " / "),
		})
	})
	return pairs
}

// DefinitionListSpecs pairs every <dt> with the <dd> that follows it.
func DefinitionListSpecs(doc *goquery.Document) []models.RawSpecPair {
	var pairs []models.RawSpecPair
	doc.Find("dt").Each(func(_ int, dt *goquery.Selection) {
		dd := dt.NextFiltered("dd")
		if dd.Length() == 0 {
			return
		}
		pairs = append(pairs, models.RawSpecPair{
			Key:   strings.TrimSuffix(parser.Flatten(dt.Text()), ":"),
			Value: parser.Flatten(dd.Text()),
		})
	})
	return pairs
}

// ListItemSpecs reads list items shaped like "Label: value" with a 3-50 character label.
func ListItemSpecs(doc *goquery.Document) []models.RawSpecPair {
	var pairs []models.RawSpecPair
	doc.Find("li").Each(func(_ int, li *goquery.Selection) {
		m := labelValuePattern.FindStringSubmatch(parser.Flatten(li.Text()))
		if m == nil {
			return
		}
		pairs = append(pairs, models.RawSpecPair{Key: m[1], Value: m[2]})
	})
	return pairs
}

// BoldLabelSpecs reads "<strong>Label:</strong> value" runs. The value is the text
// following the bold element up to the next bold label or line break.
func BoldLabelSpecs(doc *goquery.Document) []models.RawSpecPair {
	var pairs []models.RawSpecPair
	doc.Find("strong, b").Each(func(_ int, bold *goquery.Selection) {
		rawLabel := parser.Flatten(bold.Text())
		if rawLabel == "" {
			return
		}
		rest := parser.Flatten(trailingText(bold))

		label := strings.TrimSpace(strings.TrimSuffix(rawLabel, ":"))
		if !strings.HasSuffix(rawLabel, ":") {
			if !strings.HasPrefix(rest, ":") {
				return
			}
			rest = rest[1:]
		}
		if label == "" || len(label) > maxLabelLength {
			return
		}

		value := strings.TrimSpace(rest)
		if value == "" {
			return
		}
		pairs = append(pairs, models.RawSpecPair{Key: label, Value: value})
	})
	return pairs
}

// trailingText collects the sibling content after sel, stopping at the next bold
// element or <br>.
func trailingText(sel *goquery.Selection) string {
	if len(sel.Nodes) == 0 {
		return ""
	}
	self := sel.Nodes[0]
	var sb strings.Builder
	seen := false
	sel.Parent().Contents().EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if !seen {
			seen = s.Nodes[0] == self
			return true
		}
		if s.Is("strong, b, br") {
			return false
		}
		sb.WriteString(s.Text())
		return true
	})
	return sb.String()
}
