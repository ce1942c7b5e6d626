package selection

import (
	"github.com/flipscope/flipscope/internal/scoring"
)

// Filter restricts a scored table by minimum composite score and geographic
// membership. It is pure and stateless: no score is recomputed and the
// input's sort order is preserved. A nil or empty states/metros set means
// "no restriction", never "select nothing".
func Filter(rows []scoring.ScoredRegion, minScore float64, states, metros []string) []scoring.ScoredRegion {
	stateSet := toSet(states)
	metroSet := toSet(metros)

	out := make([]scoring.ScoredRegion, 0, len(rows))
	for _, row := range rows {
		if row.CompositeScore < minScore {
			continue
		}
		if stateSet != nil && !stateSet[row.State] {
			continue
		}
		if metroSet != nil && !metroSet[row.Metro] {
			continue
		}
		out = append(out, row)
	}
	return out
}

// toSet returns nil for an empty selection so the caller can tell "no
// restriction" apart from an empty match set.
func toSet(items []string) map[string]bool {
	if len(items) == 0 {
		return nil
	}
	set := make(map[string]bool, len(items))
	for _, item := range items {
		set[item] = true
	}
	return set
}
