package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/flipscope/flipscope/internal/dataset"
	"github.com/flipscope/flipscope/internal/report"
	"github.com/flipscope/flipscope/internal/scoring"
	"github.com/flipscope/flipscope/internal/selection"
	"github.com/flipscope/flipscope/internal/strategy"
	"github.com/flipscope/flipscope/pkg/logger"
)

var (
	rankStrategy     string
	rankStrategyFile string
	rankMinValue     float64
	rankMaxValue     float64
	rankMinScore     float64
	rankStates       []string
	rankMetros       []string
	rankTop          int
	rankCSVPath      string
)

var rankCmd = &cobra.Command{
	Use:   "rank",
	Short: "Score and rank flip opportunities",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := setup()
		if err != nil {
			return err
		}

		store, err := dataset.LoadDir(cfg.DataDir)
		if err != nil {
			return err
		}

		strat, err := resolveStrategy(log)
		if err != nil {
			return err
		}

		rows, err := scoring.NewEngine(log).Score(store, strat, rankMinValue, rankMaxValue)
		if err != nil {
			return err
		}
		rows = selection.Filter(rows, rankMinScore, rankStates, rankMetros)

		if rankCSVPath != "" {
			f, err := os.Create(rankCSVPath)
			if err != nil {
				return fmt.Errorf("create output file: %w", err)
			}
			defer f.Close()
			if err := report.WriteCSV(f, rows); err != nil {
				return err
			}
			fmt.Printf("Wrote %d rows to %s\n", len(rows), rankCSVPath)
			return nil
		}

		printScored(report.TopN(rows, rankTop), len(rows))
		return nil
	},
}

func init() {
	rankCmd.Flags().StringVar(&rankStrategy, "strategy", "balanced", "preset strategy name")
	rankCmd.Flags().StringVar(&rankStrategyFile, "strategy-file", "", "custom strategy YAML file (overrides --strategy)")
	rankCmd.Flags().Float64Var(&rankMinValue, "min-value", 50000, "minimum current home value")
	rankCmd.Flags().Float64Var(&rankMaxValue, "max-value", 500000, "maximum current home value")
	rankCmd.Flags().Float64Var(&rankMinScore, "min-score", 0, "minimum composite score")
	rankCmd.Flags().StringSliceVar(&rankStates, "states", nil, "restrict to these states")
	rankCmd.Flags().StringSliceVar(&rankMetros, "metros", nil, "restrict to these metros")
	rankCmd.Flags().IntVar(&rankTop, "top", 50, "show top N rows (0 = all)")
	rankCmd.Flags().StringVar(&rankCSVPath, "csv", "", "write full filtered table to a CSV file instead of printing")

	rootCmd.AddCommand(rankCmd)
}

// resolveStrategy picks the strategy from the registry or a custom file.
func resolveStrategy(log *logger.Logger) (strategy.Strategy, error) {
	if rankStrategyFile != "" {
		strat, err := strategy.LoadFile(rankStrategyFile)
		if err != nil {
			return strategy.Strategy{}, err
		}
		log.WithField("strategy", strat.ID).Info("Loaded custom strategy")
		return strat, nil
	}

	return strategy.NewRegistry().Get(rankStrategy)
}
