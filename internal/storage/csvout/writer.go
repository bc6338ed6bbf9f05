package csvout

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/steamhw/pipeline/internal/storage/models"
)

var header = []string{"date", "platform", "category", "label", "percentage"}

const dateLayout = "2006-01-02"

// Path returns the per-subset dataset location.
func Path(outputDir, subset string) string {
	return filepath.Join(outputDir, fmt.Sprintf("steam_hw_survey_%s.csv", subset))
}

// MergedPath returns the combined dataset location.
func MergedPath(outputDir string) string {
	return filepath.Join(outputDir, "steam_hw_survey.csv")
}

// WriteObservations writes the long-form table, replacing any previous
// file. Rows are written in input order; callers sort for determinism.
func WriteObservations(path string, observations []models.Observation) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("dataset: create output dir: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("dataset: create %q: %w", path, err)
	}

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		_ = f.Close()
		return fmt.Errorf("dataset: write header: %w", err)
	}

	for _, obs := range observations {
		row := []string{
			obs.Date.Format(dateLayout),
			obs.Platform,
			obs.Category,
			obs.Label,
			strconv.FormatFloat(obs.Value, 'f', -1, 64),
		}
		if err := w.Write(row); err != nil {
			_ = f.Close()
			return fmt.Errorf("dataset: write row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		_ = f.Close()
		return fmt.Errorf("dataset: flush: %w", err)
	}
	return f.Close()
}

// ReadObservations reads a table written by WriteObservations.
func ReadObservations(path string) ([]models.Observation, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%s not found, run the output stage for this subset first", path)
		}
		return nil, fmt.Errorf("dataset: open %q: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = len(header)
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("dataset: read %q: %w", path, err)
	}

	var observations []models.Observation
	for i, rec := range records {
		if i == 0 {
			continue // header
		}
		date, err := time.Parse(dateLayout, rec[0])
		if err != nil {
			return nil, fmt.Errorf("dataset: row %d: bad date %q: %w", i, rec[0], err)
		}
		value, err := strconv.ParseFloat(rec[4], 64)
		if err != nil {
			return nil, fmt.Errorf("dataset: row %d: bad value %q: %w", i, rec[4], err)
		}
		observations = append(observations, models.Observation{
			Date:     date,
			Platform: rec[1],
			Category: rec[2],
			Label:    rec[3],
			Value:    value,
		})
	}
	return observations, nil
}
