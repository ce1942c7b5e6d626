package report

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/flipscope/flipscope/internal/scoring"
)

// csvHeader matches the scored-row column set. Numeric columns are exported
// unrounded; rounding is a display-only concern. Missing values export as
// empty cells.
const csvHeader = "region_name,city,state,metro,current_value,composite_score," +
	"appreciation_score,velocity_score,distress_score,pricing_power_score,value_gap_score," +
	"appreciation_pct,days_to_pending,price_cut_pct"

// WriteCSV renders a scored table as CSV.
func WriteCSV(w io.Writer, rows []scoring.ScoredRegion) error {
	var sb strings.Builder
	sb.WriteString(csvHeader)
	sb.WriteByte('\n')

	for _, r := range rows {
		sb.WriteString(csvField(r.RegionName))
		sb.WriteByte(',')
		sb.WriteString(csvField(r.City))
		sb.WriteByte(',')
		sb.WriteString(csvField(r.State))
		sb.WriteByte(',')
		sb.WriteString(csvField(r.Metro))
		for _, v := range []float64{
			r.CurrentValue, r.CompositeScore,
			r.AppreciationScore, r.VelocityScore, r.DistressScore,
			r.PricingPowerScore, r.ValueGapScore,
			r.AppreciationPct, r.DaysToPending, r.PriceCutPct,
		} {
			sb.WriteByte(',')
			sb.WriteString(csvNumber(v))
		}
		sb.WriteByte('\n')
	}

	_, err := io.WriteString(w, sb.String())
	if err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	return nil
}

// TopN truncates a scored table for display without copying row data.
func TopN(rows []scoring.ScoredRegion, n int) []scoring.ScoredRegion {
	if n <= 0 || n >= len(rows) {
		return rows
	}
	return rows[:n]
}

// csvNumber keeps full precision; missing values become empty cells.
func csvNumber(v float64) string {
	if math.IsNaN(v) {
		return ""
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// csvField quotes text fields that would break the record.
func csvField(s string) string {
	if strings.ContainsAny(s, ",\"\n") {
		return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
	}
	return s
}
