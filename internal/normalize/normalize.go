package normalize

import (
	"regexp"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/steamhw/pipeline/internal/storage/models"
	"github.com/steamhw/pipeline/pkg/logger"
)

// categoryRenames maps legacy category titles to their canonical names.
// Hand-curated: covers naming drift across page redesigns and the
// categories affected by survey-side reporting incidents.
var categoryRenames = map[string]string{
	"RAM":               "System RAM",
	"Processor Count":   "Physical CPUs",
	"FreeHD":            "Free Hard Drive Space",
	"TotalHD":           "Total Hard Drive Space",
	"DirectX10 Systems": "DirectX 10 Systems",
}

// catSuffixRe matches a parenthesized category suffix, e.g. the unit in
// "RAM (MB)". Suffixes ending in "total" are kept: they distinguish the
// synthesized aggregate categories.
var catSuffixRe = regexp.MustCompile(`\s+\((.+)\).*$`)

// platformRewriteCutoff: before June 2010 the combined survey only
// covered Windows despite its general URL.
var platformRewriteCutoff = time.Date(2010, time.June, 1, 0, 0, 0, 0, time.UTC)

type observationKey struct {
	date     time.Time
	platform string
	category string
	label    string
}

type Normalizer struct {
	renames map[string]string
}

func New() *Normalizer {
	return &Normalizer{renames: categoryRenames}
}

// Run converts a subset's extractions into the long-form dataset:
// canonical category names, cleaned labels, plausible percentages, one
// row per (date, platform, category, label). Output order is fully
// determined by the key, so identical inputs yield identical tables.
func (n *Normalizer) Run(platform string, extractions []models.Extraction) []models.Observation {
	seen := make(map[observationKey]struct{})
	var out []models.Observation
	dropped := 0

	for _, ex := range extractions {
		date, err := time.Parse("200601", ex.DateCode)
		if err != nil {
			logger.Warn("bad date code in extraction, skipping",
				zap.String("platform", platform),
				zap.String("date_code", ex.DateCode),
			)
			continue
		}

		rowPlatform := platform
		if platform == "combined" && date.Before(platformRewriteCutoff) {
			rowPlatform = "pc"
		}

		for _, category := range sortedKeys(ex.Categories) {
			canonical := n.canonicalCategory(category)
			labels := ex.Categories[category]
			for _, label := range sortedKeys(labels) {
				value := labels[label]
				if value < 0 || value > 100 {
					dropped++
					logger.Debug("value outside percentage range, dropping",
						zap.String("category", canonical),
						zap.String("label", label),
						zap.Float64("value", value),
					)
					continue
				}

				obs := models.Observation{
					Date:     date,
					Platform: rowPlatform,
					Category: canonical,
					Label:    cleanLabel(label),
					Value:    value,
				}
				key := observationKey{obs.Date, obs.Platform, obs.Category, obs.Label}
				if _, dup := seen[key]; dup {
					continue
				}
				seen[key] = struct{}{}
				out = append(out, obs)
			}
		}
	}

	SortObservations(out)
	logger.Info("normalized subset",
		zap.String("platform", platform),
		zap.Int("rows", len(out)),
		zap.Int("dropped", dropped),
	)
	return out
}

// Merge concatenates per-subset tables into one, keeping the first row
// for any key that appears in several subsets. The combined subset's
// early months are rewritten to platform "pc" and may overlap the pc
// subset's own rows.
func Merge(tables ...[]models.Observation) []models.Observation {
	seen := make(map[observationKey]struct{})
	var out []models.Observation
	for _, table := range tables {
		for _, obs := range table {
			key := observationKey{obs.Date, obs.Platform, obs.Category, obs.Label}
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			out = append(out, obs)
		}
	}
	SortObservations(out)
	return out
}

func SortObservations(obs []models.Observation) {
	sort.Slice(obs, func(i, j int) bool {
		a, b := obs[i], obs[j]
		if !a.Date.Equal(b.Date) {
			return a.Date.Before(b.Date)
		}
		if a.Platform != b.Platform {
			return a.Platform < b.Platform
		}
		if a.Category != b.Category {
			return a.Category < b.Category
		}
		return a.Label < b.Label
	})
}

func (n *Normalizer) canonicalCategory(category string) string {
	category = stripCategorySuffix(category)
	if renamed, ok := n.renames[category]; ok {
		return renamed
	}
	return category
}

func stripCategorySuffix(category string) string {
	m := catSuffixRe.FindStringSubmatchIndex(category)
	if m == nil {
		return category
	}
	inner := category[m[2]:m[3]]
	if strings.HasSuffix(inner, "total") {
		return category
	}
	return category[:m[0]]
}

// cleanLabel undoes the double escaping some snapshots apply to
// comparison labels, e.g. "512 MB &lt; 1 GB".
func cleanLabel(label string) string {
	return strings.ReplaceAll(label, "&lt", "<")
}

func sortedKeys[M ~map[string]V, V any](m M) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
