package commands

import (
	"github.com/spf13/cobra"

	"github.com/flipscope/flipscope/internal/dataset"
	"github.com/flipscope/flipscope/internal/scoring"
	"github.com/flipscope/flipscope/internal/selection"
)

var (
	summaryLevel      string
	summaryMinRegions int
)

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Aggregate opportunities by state or metro",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := setup()
		if err != nil {
			return err
		}

		level, err := selection.ParseLevel(summaryLevel)
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

		printSummaries(selection.SummarizeWithFloor(rows, level, summaryMinRegions), level)
		return nil
	},
}

func init() {
	summaryCmd.Flags().StringVar(&summaryLevel, "level", "state", "geography level: state or metro")
	summaryCmd.Flags().IntVar(&summaryMinRegions, "min-regions", 1, "hide groups with fewer regions")
	summaryCmd.Flags().StringVar(&rankStrategy, "strategy", "balanced", "preset strategy name")
	summaryCmd.Flags().StringVar(&rankStrategyFile, "strategy-file", "", "custom strategy YAML file (overrides --strategy)")
	summaryCmd.Flags().Float64Var(&rankMinValue, "min-value", 50000, "minimum current home value")
	summaryCmd.Flags().Float64Var(&rankMaxValue, "max-value", 500000, "maximum current home value")
	summaryCmd.Flags().Float64Var(&rankMinScore, "min-score", 0, "minimum composite score")
	summaryCmd.Flags().StringSliceVar(&rankStates, "states", nil, "restrict to these states")
	summaryCmd.Flags().StringSliceVar(&rankMetros, "metros", nil, "restrict to these metros")

	rootCmd.AddCommand(summaryCmd)
}
