package commands

import (
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/steamhw/pipeline/internal/archive"
	"github.com/steamhw/pipeline/internal/catalog"
	"github.com/steamhw/pipeline/internal/fetch"
	"github.com/steamhw/pipeline/pkg/logger"
)

func init() {
	rootCmd.AddCommand(fetchCmd)
}

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Download cataloged snapshots into the local HTML cache.",
	RunE: func(cmd *cobra.Command, args []string) error {
		subs, err := subsets()
		if err != nil {
			return err
		}

		client := archive.NewClient(cfg.Archive)
		fetcher := fetch.NewFetcher(
			client,
			cfg.Storage.DataDir,
			cfg.Storage.Overwrite,
			time.Duration(cfg.Archive.FetchDelaySec)*time.Second,
		)

		for _, subset := range subs {
			logger.Info("fetching snapshots",
				zap.String("run", runID),
				zap.String("subset", subset),
			)

			cat, err := catalog.Open(catalog.Path(cfg.Storage.OutputDir, subset))
			if err != nil {
				return err
			}
			if _, err := fetcher.Run(cmd.Context(), subset, cat.Rows()); err != nil {
				return err
			}
		}
		return nil
	},
}
