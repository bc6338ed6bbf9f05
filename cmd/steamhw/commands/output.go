package commands

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/steamhw/pipeline/internal/normalize"
	"github.com/steamhw/pipeline/internal/parse"
	"github.com/steamhw/pipeline/internal/storage/csvout"
	"github.com/steamhw/pipeline/internal/storage/models"
	"github.com/steamhw/pipeline/internal/storage/sqlite"
	"github.com/steamhw/pipeline/pkg/logger"
)

func init() {
	rootCmd.AddCommand(outputCmd)
}

var outputCmd = &cobra.Command{
	Use:   "output",
	Short: "Normalize extractions into the consolidated long-form dataset.",
	RunE: func(cmd *cobra.Command, args []string) error {
		subs, err := subsets()
		if err != nil {
			return err
		}

		store, err := sqlite.NewClient(cfg.SQLite.Path)
		if err != nil {
			return err
		}
		defer store.Close()
		if err := store.InitSchema(); err != nil {
			return err
		}

		normalizer := normalize.New()
		var tables [][]models.Observation
		for _, subset := range subs {
			logger.Info("normalizing subset",
				zap.String("run", runID),
				zap.String("subset", subset),
			)

			extractions, err := parse.ReadExtractions(parse.DataPath(cfg.Storage.OutputDir, subset))
			if err != nil {
				return err
			}
			observations := normalizer.Run(subset, extractions)
			if err := csvout.WriteObservations(csvout.Path(cfg.Storage.OutputDir, subset), observations); err != nil {
				return err
			}
			tables = append(tables, observations)
		}

		if subsetFlag == "all" {
			merged := normalize.Merge(tables...)
			if err := csvout.WriteObservations(csvout.MergedPath(cfg.Storage.OutputDir), merged); err != nil {
				return err
			}
			return store.UpsertObservations(merged)
		}
		return store.UpsertObservations(tables[0])
	},
}
