package commands

import (
	"github.com/spf13/cobra"

	"github.com/flipscope/flipscope/pkg/config"
	"github.com/flipscope/flipscope/pkg/logger"
)

var (
	// Global flags
	dataDir string
	verbose bool
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "flipscope",
	Short: "Rank housing markets by flip opportunity",
	Long: `flipscope scores ZIP-code housing markets by how likely a property
bought now can be resold profitably within a short horizon, combining home
value appreciation, sale velocity, seller distress, pricing power and value
gap signals into a weighted composite score.

Examples:
  flipscope fetch
  flipscope rank --strategy fast_flip --min-value 50000 --max-value 500000
  flipscope summary --level metro --min-regions 3
  flipscope serve`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags
// appropriately. Called once from main.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "", "dataset directory (default from DATA_DIR)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

// setup loads config and builds the logger, applying global flag overrides.
func setup() (*config.Config, *logger.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}

	if dataDir != "" {
		cfg.DataDir = dataDir
	}
	if verbose {
		cfg.LogLevel = "debug"
	}

	return cfg, logger.New(cfg), nil
}
