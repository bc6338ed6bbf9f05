package parse

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/steamhw/pipeline/internal/storage/models"
	"github.com/steamhw/pipeline/pkg/logger"
)

// Runner extracts every cached snapshot of a subset into structured
// records, one JSON document per subset for inspection.
type Runner struct {
	dataDir string
}

func NewRunner(dataDir string) *Runner {
	return &Runner{dataDir: dataDir}
}

func (r *Runner) Run(ctx context.Context, subset string, rows []models.SnapshotRecord) ([]models.Extraction, error) {
	var extractions []models.Extraction

	for _, row := range rows {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if row.FileName == "" {
			continue
		}

		date, err := time.Parse("200601", row.DateCode)
		if err != nil {
			logger.Warn("bad date code in catalog, skipping",
				zap.String("subset", subset),
				zap.String("date_code", row.DateCode),
			)
			continue
		}

		path := filepath.Join(r.dataDir, subset, row.FileName)
		html, err := os.ReadFile(path)
		if err != nil {
			logger.Warn("cached snapshot unreadable, skipping",
				zap.String("subset", subset),
				zap.String("date_code", row.DateCode),
				zap.Error(err),
			)
			continue
		}

		categories, err := Document(string(html), date.Year(), int(date.Month()))
		if err != nil {
			if errors.Is(err, ErrLayoutUnrecognized) {
				logger.Warn("snapshot layout unrecognized, skipping",
					zap.String("subset", subset),
					zap.String("date_code", row.DateCode),
				)
				continue
			}
			return nil, fmt.Errorf("parse %s %s: %w", subset, row.DateCode, err)
		}

		extractions = append(extractions, models.Extraction{
			DateCode:   row.DateCode,
			Categories: categories,
		})
	}

	logger.Info("parse pass complete",
		zap.String("subset", subset),
		zap.Int("snapshots", len(extractions)),
	)
	return extractions, nil
}
