package fetch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/steamhw/pipeline/internal/archive"
	"github.com/steamhw/pipeline/internal/storage/models"
	"github.com/steamhw/pipeline/pkg/logger"
)

// Stats summarizes one fetch pass.
type Stats struct {
	Downloaded int
	Skipped    int
	Failed     int
}

// Fetcher downloads cataloged snapshots into the local HTML cache.
// Re-running on a warm cache downloads nothing.
type Fetcher struct {
	client    *archive.Client
	dataDir   string
	overwrite bool
	delay     time.Duration
}

func NewFetcher(client *archive.Client, dataDir string, overwrite bool, delay time.Duration) *Fetcher {
	return &Fetcher{
		client:    client,
		dataDir:   dataDir,
		overwrite: overwrite,
		delay:     delay,
	}
}

// Run fetches every catalog row with a recorded URL. Individual download
// failures are logged and counted, never fatal to the batch.
func (f *Fetcher) Run(ctx context.Context, subset string, rows []models.SnapshotRecord) (Stats, error) {
	dir := filepath.Join(f.dataDir, subset)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return Stats{}, fmt.Errorf("create cache dir: %w", err)
	}

	var stats Stats
	for _, row := range rows {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		if row.ArchiveURL == "" {
			continue
		}

		path := filepath.Join(dir, row.FileName)
		if _, err := os.Stat(path); err == nil && !f.overwrite {
			stats.Skipped++
			continue
		}

		body, err := f.client.FetchPage(ctx, row.ArchiveURL)
		if err != nil {
			logger.Warn("snapshot download failed",
				zap.String("subset", subset),
				zap.String("date_code", row.DateCode),
				zap.Error(err),
			)
			stats.Failed++
			continue
		}

		if err := os.WriteFile(path, []byte(body), 0644); err != nil {
			return stats, fmt.Errorf("write %q: %w", path, err)
		}
		stats.Downloaded++

		logger.Debug("snapshot cached",
			zap.String("subset", subset),
			zap.String("date_code", row.DateCode),
		)

		if err := sleep(ctx, f.delay); err != nil {
			return stats, err
		}
	}

	logger.Info("fetch pass complete",
		zap.String("subset", subset),
		zap.Int("downloaded", stats.Downloaded),
		zap.Int("skipped", stats.Skipped),
		zap.Int("failed", stats.Failed),
	)
	return stats, nil
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}
