package selection

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"

	"github.com/flipscope/flipscope/internal/scoring"
)

// Level selects the geographic attribute a summary groups by.
type Level string

const (
	LevelState Level = "state"
	LevelMetro Level = "metro"
)

// ParseLevel validates a geography level name.
func ParseLevel(s string) (Level, error) {
	switch Level(s) {
	case LevelState, LevelMetro:
		return Level(s), nil
	}
	return "", fmt.Errorf("unknown geography level %q (want state or metro)", s)
}

// GeographySummary is one aggregate row per geographic group.
// AvgAppreciation is NaN when no member has an appreciation signal; it
// serializes as null.
type GeographySummary struct {
	Key              string
	NumOpportunities int
	AvgScore         float64
	MedianValue      float64
	AvgAppreciation  float64
}

// MarshalJSON implements json.Marshaler, mapping NaN to null.
func (s GeographySummary) MarshalJSON() ([]byte, error) {
	var apprec *float64
	if !math.IsNaN(s.AvgAppreciation) {
		apprec = &s.AvgAppreciation
	}
	return json.Marshal(struct {
		Key              string   `json:"key"`
		NumOpportunities int      `json:"num_opportunities"`
		AvgScore         float64  `json:"avg_score"`
		MedianValue      float64  `json:"median_value"`
		AvgAppreciation  *float64 `json:"avg_appreciation"`
	}{s.Key, s.NumOpportunities, s.AvgScore, s.MedianValue, apprec})
}

// Summarize groups a scored table by state or metro and aggregates each
// group: row count, mean composite score, median current value, mean
// appreciation over present values. Rows with a blank group key are skipped;
// no empty group is ever synthesized. Output is sorted by group key; callers
// wanting a different order re-sort.
func Summarize(rows []scoring.ScoredRegion, level Level) []GeographySummary {
	groups := make(map[string][]scoring.ScoredRegion)
	for _, row := range rows {
		key := row.State
		if level == LevelMetro {
			key = row.Metro
		}
		if key == "" {
			continue
		}
		groups[key] = append(groups[key], row)
	}

	out := make([]GeographySummary, 0, len(groups))
	for key, members := range groups {
		out = append(out, summarizeGroup(key, members))
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

// SummarizeWithFloor drops groups with fewer than minRegions rows. The metro
// view uses it to hide one-ZIP metros that make averages meaningless.
func SummarizeWithFloor(rows []scoring.ScoredRegion, level Level, minRegions int) []GeographySummary {
	all := Summarize(rows, level)
	out := make([]GeographySummary, 0, len(all))
	for _, s := range all {
		if s.NumOpportunities >= minRegions {
			out = append(out, s)
		}
	}
	return out
}

func summarizeGroup(key string, members []scoring.ScoredRegion) GeographySummary {
	var scoreSum float64
	values := make([]float64, 0, len(members))

	var apprecSum float64
	apprecCount := 0

	for _, m := range members {
		scoreSum += m.CompositeScore
		values = append(values, m.CurrentValue)
		if !math.IsNaN(m.AppreciationPct) {
			apprecSum += m.AppreciationPct
			apprecCount++
		}
	}

	summary := GeographySummary{
		Key:              key,
		NumOpportunities: len(members),
		AvgScore:         scoreSum / float64(len(members)),
		MedianValue:      medianOf(values),
		AvgAppreciation:  math.NaN(),
	}
	if apprecCount > 0 {
		summary.AvgAppreciation = apprecSum / float64(apprecCount)
	}
	return summary
}

func medianOf(vals []float64) float64 {
	sort.Float64s(vals)
	n := len(vals)
	if n%2 == 1 {
		return vals[n/2]
	}
	return (vals[n/2-1] + vals[n/2]) / 2
}
