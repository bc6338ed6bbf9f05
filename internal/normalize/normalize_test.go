package normalize

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/steamhw/pipeline/internal/storage/models"
)

func date(y int, m time.Month) time.Time {
	return time.Date(y, m, 1, 0, 0, 0, 0, time.UTC)
}

func TestRenameAppliedAcrossAllDates(t *testing.T) {
	extractions := []models.Extraction{
		{DateCode: "200503", Categories: map[string]map[string]float64{
			"RAM": {"256 MB": 33.08},
		}},
		{DateCode: "200711", Categories: map[string]map[string]float64{
			"RAM": {"1 GB": 41.00},
		}},
		{DateCode: "201205", Categories: map[string]map[string]float64{
			"System RAM (MB)": {"2 GB and above": 88.10},
		}},
	}

	observations := New().Run("combined", extractions)
	require.Len(t, observations, 3)
	for _, obs := range observations {
		require.Equal(t, "System RAM", obs.Category, "date %s", obs.Date)
	}
}

func TestCategorySuffixStripping(t *testing.T) {
	n := New()
	require.Equal(t, "Free Hard Drive Space", n.canonicalCategory("Free Hard Drive Space (GB)"))
	require.Equal(t, "Physical CPUs", n.canonicalCategory("Processor Count (of physical CPUs)"))
	// aggregate marker survives normalization
	require.Equal(t, "OS Version (total)", n.canonicalCategory("OS Version (total)"))
	require.Equal(t, "Video Card", n.canonicalCategory("Video Card"))
}

func TestLabelCleanup(t *testing.T) {
	extractions := []models.Extraction{
		{DateCode: "201205", Categories: map[string]map[string]float64{
			"System RAM (MB)": {"512 MB &lt 1 GB": 11.90},
		}},
	}

	observations := New().Run("pc", extractions)
	require.Len(t, observations, 1)
	require.Equal(t, "512 MB < 1 GB", observations[0].Label)
}

func TestCombinedPlatformRewrittenBeforeJune2010(t *testing.T) {
	extractions := []models.Extraction{
		{DateCode: "201005", Categories: map[string]map[string]float64{
			"OS Version": {"Windows 7": 30.00},
		}},
		{DateCode: "201006", Categories: map[string]map[string]float64{
			"OS Version": {"Windows 7": 31.00},
		}},
	}

	observations := New().Run("combined", extractions)
	require.Len(t, observations, 2)
	require.Equal(t, "pc", observations[0].Platform)
	require.Equal(t, "combined", observations[1].Platform)

	// other subsets keep their platform regardless of date
	observations = New().Run("mac", extractions)
	require.Equal(t, "mac", observations[0].Platform)
}

func TestImplausibleValuesDropped(t *testing.T) {
	extractions := []models.Extraction{
		{DateCode: "200601", Categories: map[string]map[string]float64{
			"RAM": {"256 MB": 133.70, "512 MB": -2.00, "1 GB": 55.00},
		}},
	}

	observations := New().Run("combined", extractions)
	require.Len(t, observations, 1)
	require.Equal(t, 55.00, observations[0].Value)
}

func TestNoDuplicateKeys(t *testing.T) {
	// "RAM" and "System RAM (MB)" normalize to the same category; the
	// first occurrence wins
	extractions := []models.Extraction{
		{DateCode: "201205", Categories: map[string]map[string]float64{
			"RAM":             {"2 GB and above": 88.10},
			"System RAM (MB)": {"2 GB and above": 99.99},
		}},
	}

	observations := New().Run("pc", extractions)
	require.Len(t, observations, 1)
	require.Equal(t, "System RAM", observations[0].Category)
	require.Equal(t, 88.10, observations[0].Value)
}

func TestRunIsDeterministic(t *testing.T) {
	extractions := []models.Extraction{
		{DateCode: "201205", Categories: map[string]map[string]float64{
			"OS Version":    {"Windows 7 64 bit": 46.11, "Windows XP 32 bit": 28.45},
			"Physical CPUs": {"1 cpu": 28.01, "2 cpus": 51.46, "4 cpus": 20.53},
		}},
		{DateCode: "201206", Categories: map[string]map[string]float64{
			"OS Version": {"Windows 7 64 bit": 46.80},
		}},
	}

	first := New().Run("pc", extractions)
	second := New().Run("pc", extractions)
	require.Equal(t, first, second)

	// sorted by key
	require.Equal(t, date(2012, time.May), first[0].Date)
	require.Equal(t, "OS Version", first[0].Category)
	require.Equal(t, date(2012, time.June), first[len(first)-1].Date)
}

func TestMergeDeduplicatesAcrossSubsets(t *testing.T) {
	combined := []models.Observation{
		{Date: date(2010, time.March), Platform: "pc", Category: "OS Version", Label: "Windows 7", Value: 25.00},
	}
	pc := []models.Observation{
		{Date: date(2010, time.March), Platform: "pc", Category: "OS Version", Label: "Windows 7", Value: 26.00},
		{Date: date(2010, time.July), Platform: "pc", Category: "OS Version", Label: "Windows 7", Value: 30.00},
	}

	merged := Merge(combined, pc)
	require.Len(t, merged, 2)
	// first table wins the overlapping key
	require.Equal(t, 25.00, merged[0].Value)
	require.Equal(t, 30.00, merged[1].Value)
}
