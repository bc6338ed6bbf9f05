package catalog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/steamhw/pipeline/internal/archive"
	"github.com/steamhw/pipeline/internal/storage/models"
	"github.com/steamhw/pipeline/pkg/config"
	"github.com/steamhw/pipeline/pkg/logger"
	"github.com/steamhw/pipeline/pkg/retry"
)

// Builder extends a platform's catalog with one snapshot per month.
//
// Selection policy: the availability API is queried at the 15th of the
// month and the closest capture wins, but only when it falls inside the
// queried month. Months the archive cannot serve are recorded as misses
// so later runs do not query them again.
type Builder struct {
	catalog    *Catalog
	client     *archive.Client
	subset     string
	startYear  int
	endYear    int
	survey     config.SurveyConfig
	retryCfg   retry.Config
	queryDelay time.Duration
}

func NewBuilder(cat *Catalog, client *archive.Client, subset string, cfg *config.Config) *Builder {
	return &Builder{
		catalog:   cat,
		client:    client,
		subset:    subset,
		startYear: cfg.Platforms.StartYears[subset],
		endYear:   cfg.Platforms.EndYear,
		survey:    cfg.Survey,
		retryCfg: retry.Config{
			MaxAttempts:  cfg.Archive.MaxAttempts,
			InitialDelay: time.Duration(cfg.Archive.RetryDelaySec) * time.Second,
			Multiplier:   2.0,
			Logger:       logger.Log,
		},
		queryDelay: time.Duration(cfg.Archive.QueryDelaySec) * time.Second,
	}
}

func (b *Builder) Run(ctx context.Context) error {
	if b.startYear == 0 {
		return fmt.Errorf("no start year configured for subset %q", b.subset)
	}

	for year := b.startYear; year <= b.endYear; year++ {
		for month := 1; month <= 12; month++ {
			if err := ctx.Err(); err != nil {
				return err
			}

			dateCode := fmt.Sprintf("%d%02d", year, month)
			if b.catalog.Has(dateCode) {
				continue
			}

			if err := b.resolveMonth(ctx, dateCode, year); err != nil {
				return err
			}

			if err := sleep(ctx, b.queryDelay); err != nil {
				return err
			}
		}
	}

	return nil
}

func (b *Builder) resolveMonth(ctx context.Context, dateCode string, year int) error {
	pageURL := b.pageURL(year)
	// mid-month query keeps the closest capture inside the month
	queryTS := dateCode + "15"

	snap, err := retry.DoWithResult(ctx, b.retryCfg, func() (models.Snapshot, error) {
		return b.client.ClosestSnapshot(ctx, pageURL, queryTS)
	})
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return err
	case errors.Is(err, archive.ErrNoSnapshot):
		// the archive answered and has nothing: record the miss
		logger.Warn("no snapshot for month",
			zap.String("subset", b.subset),
			zap.String("date_code", dateCode),
		)
		return b.catalog.Append(models.SnapshotRecord{DateCode: dateCode})
	case err != nil:
		// transient failure: leave the month unrecorded so the next run
		// retries it
		logger.Error("availability query failed, skipping month",
			zap.String("subset", b.subset),
			zap.String("date_code", dateCode),
			zap.Error(err),
		)
		return nil
	}

	if len(snap.Timestamp) < 6 || snap.Timestamp[:6] != dateCode {
		// closest capture drifted into a neighboring month
		logger.Info("closest capture outside month, recording miss",
			zap.String("subset", b.subset),
			zap.String("date_code", dateCode),
			zap.String("snapshot", snap.Timestamp),
		)
		return b.catalog.Append(models.SnapshotRecord{DateCode: dateCode})
	}

	logger.Info("cataloged snapshot",
		zap.String("subset", b.subset),
		zap.String("date_code", dateCode),
		zap.String("snapshot", snap.Timestamp),
	)
	return b.catalog.Append(models.SnapshotRecord{
		DateCode:   dateCode,
		ArchiveURL: snap.URL,
		FileName:   snap.Timestamp + ".txt",
	})
}

func (b *Builder) pageURL(year int) string {
	if b.subset == "combined" {
		if year < 2009 {
			return b.survey.LegacyURL
		}
		return b.survey.ModernURL
	}
	return b.survey.ModernURL + "?platform=" + b.subset
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
