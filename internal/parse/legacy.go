package parse

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Legacy layout (2004 to November 2008): each category is a capsule div
// holding a <b> title and a table whose right-aligned cells run
// label, bar, value in threes.
var legacyBlockRe = regexp.MustCompile(`capsule|capcontent`)

func parseLegacy(doc *goquery.Document, aggregateRAM bool) map[string]map[string]float64 {
	out := make(map[string]map[string]float64)

	blocks := doc.Find("div").FilterFunction(func(_ int, s *goquery.Selection) bool {
		class, ok := s.Attr("class")
		return ok && legacyBlockRe.MatchString(class)
	})

	blocks.Each(func(_ int, block *goquery.Selection) {
		name := strings.TrimSpace(block.Find("b").First().Text())
		if name == "" {
			return
		}

		var cells []string
		block.Find("table").First().Find(`td[align="right"]`).Each(func(_ int, td *goquery.Selection) {
			cells = append(cells, strings.TrimSpace(td.Text()))
		})

		// late-2005 pages add a fourth, aggregate column to RAM; the
		// value stays in the third cell of each group
		stride := 3
		if aggregateRAM && name == "RAM" {
			stride = 4
		}

		rows := make(map[string]float64)
		for i := 0; i+2 < len(cells); i += stride {
			value, err := strconv.ParseFloat(strings.Trim(cells[i+2], "%"), 64)
			if err != nil {
				continue
			}
			rows[cells[i]] = value
		}
		out[name] = rows
	})

	return out
}
