package parse

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/steamhw/pipeline/internal/storage/models"
)

// DataPath returns the per-subset extraction file location.
func DataPath(outputDir, subset string) string {
	return filepath.Join(outputDir, fmt.Sprintf("survey_data_%s.json", subset))
}

func WriteExtractions(path string, extractions []models.Extraction) error {
	data, err := json.MarshalIndent(extractions, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal extractions: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write %q: %w", path, err)
	}
	return nil
}

func ReadExtractions(path string) ([]models.Extraction, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%s not found, run the parse stage for this subset first", path)
		}
		return nil, fmt.Errorf("read %q: %w", path, err)
	}

	var extractions []models.Extraction
	if err := json.Unmarshal(data, &extractions); err != nil {
		return nil, fmt.Errorf("decode %q: %w", path, err)
	}
	return extractions, nil
}
