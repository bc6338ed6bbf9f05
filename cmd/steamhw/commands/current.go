package commands

import (
	"context"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/steamhw/pipeline/internal/archive"
	"github.com/steamhw/pipeline/internal/parse"
	"github.com/steamhw/pipeline/internal/storage/models"
	"github.com/steamhw/pipeline/pkg/logger"
)

func init() {
	rootCmd.AddCommand(currentCmd)
}

var currentCmd = &cobra.Command{
	Use:   "current",
	Short: "Parse the live survey page for the current month.",
	RunE: func(cmd *cobra.Command, args []string) error {
		subs, err := subsets()
		if err != nil {
			return err
		}

		client := archive.NewClient(cfg.Archive)
		now := time.Now()

		for _, subset := range subs {
			pageURL := cfg.Survey.ModernURL
			if subset != "combined" {
				pageURL += "?platform=" + subset
			}

			logger.Info("parsing live survey page",
				zap.String("run", runID),
				zap.String("subset", subset),
			)

			html, err := client.FetchPage(cmd.Context(), pageURL)
			if err != nil {
				logger.Error("live page fetch failed, skipping subset",
					zap.String("subset", subset),
					zap.Error(err),
				)
				continue
			}

			categories, err := parse.Document(html, now.Year(), int(now.Month()))
			if err != nil {
				logger.Error("live page layout unrecognized, skipping subset",
					zap.String("subset", subset),
					zap.Error(err),
				)
				continue
			}

			extractions := []models.Extraction{{
				DateCode:   now.Format("200601"),
				Categories: categories,
			}}
			if err := parse.WriteExtractions(parse.DataPath(cfg.Storage.OutputDir, subset), extractions); err != nil {
				return err
			}

			if err := sleepCtx(cmd.Context(), time.Duration(cfg.Archive.QueryDelaySec)*time.Second); err != nil {
				return err
			}
		}
		return nil
	},
}

func sleepCtx(ctx context.Context, d time.Duration) error {
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
