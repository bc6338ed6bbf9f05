package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/steamhw/pipeline/pkg/config"
	"github.com/steamhw/pipeline/pkg/logger"
)

var (
	cfg        *config.Config
	runID      string
	subsetFlag string
)

var validSubsets = []string{"combined", "pc", "mac", "linux"}

var rootCmd = &cobra.Command{
	Use:          "steamhw",
	Short:        "steamhw archives and normalizes Steam hardware survey snapshots.",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		if err := logger.Init(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.OutputPath); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}
		runID = uuid.NewString()
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&subsetFlag, "subset", "all",
		"platform subset to process (combined|pc|mac|linux|all)")
}

func ExecuteContext(ctx context.Context) {
	err := rootCmd.ExecuteContext(ctx)
	logger.Sync()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// subsets expands the --subset flag; an unknown selector aborts the run.
func subsets() ([]string, error) {
	if subsetFlag == "all" {
		return validSubsets, nil
	}
	for _, s := range validSubsets {
		if s == subsetFlag {
			return []string{s}, nil
		}
	}
	return nil, fmt.Errorf("invalid subset %q: want combined, pc, mac, linux or all", subsetFlag)
}
