package csvout

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/steamhw/pipeline/internal/storage/models"
)

func sampleObservations() []models.Observation {
	return []models.Observation{
		{
			Date:     time.Date(2005, time.March, 1, 0, 0, 0, 0, time.UTC),
			Platform: "pc",
			Category: "System RAM",
			Label:    "256 MB",
			Value:    33.08,
		},
		{
			Date:     time.Date(2012, time.May, 1, 0, 0, 0, 0, time.UTC),
			Platform: "combined",
			Category: "OS Version",
			Label:    "Windows 7 64 bit",
			Value:    46.11,
		},
	}
}

func TestWriteReadRoundTrip(t *testing.T) {
	path := Path(t.TempDir(), "pc")

	require.NoError(t, WriteObservations(path, sampleObservations()))

	got, err := ReadObservations(path)
	require.NoError(t, err)
	require.Equal(t, sampleObservations(), got)
}

func TestWriteIsByteIdentical(t *testing.T) {
	dir := t.TempDir()
	first := filepath.Join(dir, "first.csv")
	second := filepath.Join(dir, "second.csv")

	require.NoError(t, WriteObservations(first, sampleObservations()))
	require.NoError(t, WriteObservations(second, sampleObservations()))

	a, err := os.ReadFile(first)
	require.NoError(t, err)
	b, err := os.ReadFile(second)
	require.NoError(t, err)
	require.Equal(t, a, b)
}

func TestReadMissingFile(t *testing.T) {
	_, err := ReadObservations(filepath.Join(t.TempDir(), "steam_hw_survey_pc.csv"))
	require.Error(t, err)
	require.Contains(t, err.Error(), "run the output stage")
}
