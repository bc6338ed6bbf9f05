package commands

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/steamhw/pipeline/internal/archive"
	"github.com/steamhw/pipeline/internal/catalog"
	"github.com/steamhw/pipeline/pkg/logger"
)

func init() {
	rootCmd.AddCommand(metadataCmd)
}

var metadataCmd = &cobra.Command{
	Use:   "metadata",
	Short: "Build or extend the per-platform snapshot catalogs.",
	RunE: func(cmd *cobra.Command, args []string) error {
		subs, err := subsets()
		if err != nil {
			return err
		}

		client := archive.NewClient(cfg.Archive)
		for _, subset := range subs {
			logger.Info("building metadata",
				zap.String("run", runID),
				zap.String("subset", subset),
			)

			cat, err := catalog.Load(catalog.Path(cfg.Storage.OutputDir, subset))
			if err != nil {
				return err
			}
			if err := catalog.NewBuilder(cat, client, subset, cfg).Run(cmd.Context()); err != nil {
				return err
			}
		}
		return nil
	},
}
