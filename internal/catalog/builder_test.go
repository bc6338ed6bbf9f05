package catalog

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/steamhw/pipeline/internal/archive"
	"github.com/steamhw/pipeline/pkg/config"
)

func availabilityStub(queried *[]string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ts := r.URL.Query().Get("timestamp")
		*queried = append(*queried, ts[:6])
		switch ts[:6] {
		case "201001":
			_, _ = io.WriteString(w, `{"archived_snapshots":{"closest":{"available":true,"url":"http://web.archive.org/web/20100115083000/hwsurvey","timestamp":"20100115083000","status":"200"}}}`)
		case "201002":
			// closest capture drifted into March
			_, _ = io.WriteString(w, `{"archived_snapshots":{"closest":{"available":true,"url":"http://web.archive.org/web/20100301120000/hwsurvey","timestamp":"20100301120000","status":"200"}}}`)
		default:
			_, _ = io.WriteString(w, `{"archived_snapshots":{}}`)
		}
	}
}

func testConfig(availabilityURL string) *config.Config {
	return &config.Config{
		Archive: config.ArchiveConfig{
			AvailabilityURL: availabilityURL,
			UserAgent:       "steamhw-test",
			TimeoutSec:      5,
			MaxAttempts:     1,
		},
		Survey: config.SurveyConfig{
			LegacyURL: "http://www.steampowered.com/status/survey.html",
			ModernURL: "https://store.steampowered.com/hwsurvey",
		},
		Platforms: config.PlatformsConfig{
			StartYears: map[string]int{"pc": 2010, "combined": 2004},
			EndYear:    2010,
		},
	}
}

func TestBuilderRun(t *testing.T) {
	var queried []string
	srv := httptest.NewServer(availabilityStub(&queried))
	defer srv.Close()

	cfg := testConfig(srv.URL)
	cat, err := Load(Path(t.TempDir(), "pc"))
	require.NoError(t, err)

	b := NewBuilder(cat, archive.NewClient(cfg.Archive), "pc", cfg)
	require.NoError(t, b.Run(context.Background()))

	rows := cat.Rows()
	require.Len(t, rows, 12)

	require.Equal(t, "201001", rows[0].DateCode)
	require.Equal(t, "20100115083000.txt", rows[0].FileName)
	require.NotEmpty(t, rows[0].ArchiveURL)

	// the drifted capture and the empty months are recorded as misses
	require.Equal(t, "201002", rows[1].DateCode)
	require.Empty(t, rows[1].ArchiveURL)
	require.Empty(t, rows[1].FileName)
	require.Empty(t, rows[11].ArchiveURL)
}

func TestBuilderSkipsRecordedMonths(t *testing.T) {
	var queried []string
	srv := httptest.NewServer(availabilityStub(&queried))
	defer srv.Close()

	cfg := testConfig(srv.URL)
	cat, err := Load(Path(t.TempDir(), "pc"))
	require.NoError(t, err)

	b := NewBuilder(cat, archive.NewClient(cfg.Archive), "pc", cfg)
	require.NoError(t, b.Run(context.Background()))
	firstRun := len(queried)
	require.Equal(t, 12, firstRun)

	// every month is recorded, hits and misses alike, so a second run
	// issues no queries at all
	require.NoError(t, b.Run(context.Background()))
	require.Equal(t, firstRun, len(queried))
}

func TestPageURLPerEra(t *testing.T) {
	cfg := testConfig("http://unused")

	combined := NewBuilder(nil, nil, "combined", cfg)
	require.Equal(t, cfg.Survey.LegacyURL, combined.pageURL(2008))
	require.Equal(t, cfg.Survey.ModernURL, combined.pageURL(2009))

	mac := NewBuilder(nil, nil, "mac", cfg)
	require.Equal(t, cfg.Survey.ModernURL+"?platform=mac", mac.pageURL(2012))
}
