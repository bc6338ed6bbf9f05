package commands

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/steamhw/pipeline/internal/catalog"
	"github.com/steamhw/pipeline/internal/parse"
	"github.com/steamhw/pipeline/pkg/logger"
)

func init() {
	rootCmd.AddCommand(parseCmd)
}

var parseCmd = &cobra.Command{
	Use:   "parse",
	Short: "Extract cached snapshot HTML into per-subset JSON documents.",
	RunE: func(cmd *cobra.Command, args []string) error {
		subs, err := subsets()
		if err != nil {
			return err
		}

		runner := parse.NewRunner(cfg.Storage.DataDir)
		for _, subset := range subs {
			logger.Info("parsing snapshots",
				zap.String("run", runID),
				zap.String("subset", subset),
			)

			cat, err := catalog.Open(catalog.Path(cfg.Storage.OutputDir, subset))
			if err != nil {
				return err
			}
			extractions, err := runner.Run(cmd.Context(), subset, cat.Rows())
			if err != nil {
				return err
			}
			if err := parse.WriteExtractions(parse.DataPath(cfg.Storage.OutputDir, subset), extractions); err != nil {
				return err
			}
		}
		return nil
	},
}
