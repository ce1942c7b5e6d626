package commands

import (
	"fmt"
	"math"
	"os"
	"text/tabwriter"

	"github.com/flipscope/flipscope/internal/scoring"
	"github.com/flipscope/flipscope/internal/selection"
)

// printScored renders a scored table for the console. Rounding here is
// display-only; exports keep full precision.
func printScored(rows []scoring.ScoredRegion, total int) {
	if len(rows) == 0 {
		fmt.Println("No opportunities match the criteria.")
		return
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "RANK\tZIP\tCITY\tSTATE\tMETRO\tVALUE\tSCORE\tAPPREC\tVELOCITY\tDISTRESS\tPRICING\tGAP\t12MO%\tDAYS")
	for i, r := range rows {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t$%.0f\t%.1f\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			i+1,
			r.RegionName,
			r.City,
			r.State,
			r.Metro,
			r.CurrentValue,
			r.CompositeScore,
			fmtScore(r.AppreciationScore),
			fmtScore(r.VelocityScore),
			fmtScore(r.DistressScore),
			fmtScore(r.PricingPowerScore),
			fmtScore(r.ValueGapScore),
			fmtSigned(r.AppreciationPct),
			fmtDays(r.DaysToPending),
		)
	}
	w.Flush()

	if len(rows) < total {
		fmt.Printf("\nShowing %d of %d opportunities.\n", len(rows), total)
	}
}

// printSummaries renders geography aggregates for the console.
func printSummaries(groups []selection.GeographySummary, level selection.Level) {
	if len(groups) == 0 {
		fmt.Println("No groups match the criteria.")
		return
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "%s\tCOUNT\tAVG SCORE\tMEDIAN VALUE\tAVG 12MO%%\n", levelHeader(level))
	for _, g := range groups {
		fmt.Fprintf(w, "%s\t%d\t%.1f\t$%.0f\t%s\n",
			g.Key,
			g.NumOpportunities,
			g.AvgScore,
			g.MedianValue,
			fmtSigned(g.AvgAppreciation),
		)
	}
	w.Flush()
}

func levelHeader(level selection.Level) string {
	if level == selection.LevelMetro {
		return "METRO"
	}
	return "STATE"
}

func fmtScore(v float64) string {
	if math.IsNaN(v) {
		return "N/A"
	}
	return fmt.Sprintf("%.1f", v)
}

func fmtSigned(v float64) string {
	if math.IsNaN(v) {
		return "N/A"
	}
	return fmt.Sprintf("%+.1f", v)
}

func fmtDays(v float64) string {
	if math.IsNaN(v) {
		return "N/A"
	}
	return fmt.Sprintf("%.0f", v)
}
