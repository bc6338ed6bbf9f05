package parse

import (
	"errors"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// ErrLayoutUnrecognized means a document matched neither ruleset; the
// snapshot is skipped, not fatal.
var ErrLayoutUnrecognized = errors.New("page layout unrecognized")

// modernEra reports whether a month uses the post-redesign markup. The
// store switched layouts with the December 2008 survey.
func modernEra(year, month int) bool {
	return year > 2008 || (year == 2008 && month == 12)
}

// legacyRAMAggregate reports whether the RAM category carries a fourth
// aggregate column, which it did from August through December 2005.
func legacyRAMAggregate(year, month int) bool {
	return year == 2005 && month > 7
}

// Document extracts category -> label -> value from one survey page,
// choosing the ruleset by the snapshot's month.
func Document(html string, year, month int) (map[string]map[string]float64, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse HTML: %w", err)
	}

	var categories map[string]map[string]float64
	if modernEra(year, month) {
		categories = parseModern(doc)
	} else {
		categories = parseLegacy(doc, legacyRAMAggregate(year, month))
	}

	if len(categories) == 0 {
		return nil, ErrLayoutUnrecognized
	}
	return categories, nil
}
