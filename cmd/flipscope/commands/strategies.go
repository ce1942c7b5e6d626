package commands

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/flipscope/flipscope/internal/strategy"
)

var strategiesCmd = &cobra.Command{
	Use:   "strategies",
	Short: "List preset weighting strategies",
	RunE: func(cmd *cobra.Command, args []string) error {
		registry := strategy.NewRegistry()

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "NAME\tAPPRECIATION\tVELOCITY\tDISTRESS\tPRICING POWER\tVALUE GAP")
		for _, name := range registry.Names() {
			s, err := registry.Get(name)
			if err != nil {
				return err
			}
			fmt.Fprintf(w, "%s\t%.0f%%\t%.0f%%\t%.0f%%\t%.0f%%\t%.0f%%\n",
				s.ID,
				s.Appreciation*100,
				s.Velocity*100,
				s.Distress*100,
				s.PricingPower*100,
				s.ValueGap*100,
			)
		}
		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(strategiesCmd)
}
