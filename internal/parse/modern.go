package parse

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Modern layout (December 2008 onward): each category has a collapsed
// detail div paired, in document order, with a clickable title row.
var (
	modernDetailRe = regexp.MustCompile(`(cat\d+|osversion)_details`)
	modernTitleRe  = regexp.MustCompile(`(cat\d+|osversion)_stats_row`)
	modernColRe    = regexp.MustCompile(`stats_col_(left|left_holder|mid|mid_details|right)\b`)
	percentRe      = regexp.MustCompile(`\d{1,3}\.\d{2}%`)
)

// osTotalCategory collects the Windows/OSX/Linux aggregate rows, which
// the page mixes into per-version categories.
const osTotalCategory = "OS Version (total)"

func parseModern(doc *goquery.Document) map[string]map[string]float64 {
	out := make(map[string]map[string]float64)

	details := doc.Find("div").FilterFunction(func(_ int, s *goquery.Selection) bool {
		id, ok := s.Attr("id")
		return ok && modernDetailRe.MatchString(id)
	})
	titles := doc.Find("div").FilterFunction(func(_ int, s *goquery.Selection) bool {
		id, ok := s.Attr("id")
		if !ok || !modernTitleRe.MatchString(id) {
			return false
		}
		onclick, ok := s.Attr("onclick")
		return ok && strings.Contains(onclick, "toggleRow")
	})

	n := details.Length()
	if titles.Length() < n {
		n = titles.Length()
	}

	for i := 0; i < n; i++ {
		title := titles.Eq(i)
		block := details.Eq(i)

		name := strings.TrimSpace(title.Find("div.stats_col_left").First().Text())
		if name == "" {
			continue
		}
		rows := make(map[string]float64)
		out[name] = rows

		var cells []*goquery.Selection
		block.Find("div").FilterFunction(func(_ int, s *goquery.Selection) bool {
			class, ok := s.Attr("class")
			return ok && modernColRe.MatchString(class)
		}).Each(func(_ int, s *goquery.Selection) {
			cells = append(cells, s)
		})

		for j := 0; j+2 < len(cells); j += 3 {
			label := strings.TrimSpace(cells[j].Text())
			if label == "" {
				label = strings.TrimSpace(cells[j+1].Text())
			}
			value, ok := findPercent(cells[j+2].Text())
			if !ok {
				continue
			}

			switch label {
			case "Windows", "OSX", "Linux":
				// aggregate rows move to their own category; Windows
				// creates it, and Linux sometimes appears as a distro
				// row instead of an aggregate
				if label == "Windows" {
					total := out[osTotalCategory]
					if total == nil {
						total = make(map[string]float64)
						out[osTotalCategory] = total
					}
					total[label] = value
				} else if total := out[osTotalCategory]; total != nil {
					total[label] = value
				} else {
					rows[label] = value
				}
			default:
				rows[label] = value
			}
		}
	}

	return out
}

// findPercent returns the first NN.NN% token in s that is not part of a
// month-over-month delta, which the page renders with a leading sign or
// parenthesis.
func findPercent(s string) (float64, bool) {
	for _, loc := range percentRe.FindAllStringIndex(s, -1) {
		if loc[0] > 0 {
			switch s[loc[0]-1] {
			case '-', '+', '(':
				continue
			}
		}
		value, err := strconv.ParseFloat(strings.TrimSuffix(s[loc[0]:loc[1]], "%"), 64)
		if err != nil {
			continue
		}
		return value, true
	}
	return 0, false
}
