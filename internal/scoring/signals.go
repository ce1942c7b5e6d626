package scoring

import (
	"math"
	"sort"

	"github.com/flipscope/flipscope/internal/dataset"
)

// appreciationWindow is the trailing observation count for the appreciation
// signal: twelve observed periods back from the latest one.
const appreciationWindow = 12

// appreciationPct returns the percent change of the home value index over
// the trailing twelve observed periods. NaN when the region's history is too
// short or the base observation is zero.
func appreciationPct(series []dataset.Observation) float64 {
	if len(series) < appreciationWindow+1 {
		return math.NaN()
	}

	latest := series[len(series)-1].Value
	base := series[len(series)-1-appreciationWindow].Value
	if base == 0 {
		return math.NaN()
	}

	return (latest - base) / base * 100
}

// velocityRaw inverts days-to-pending so that faster-selling markets carry
// larger raw values. NaN propagates missing days-to-pending.
func velocityRaw(daysToPending float64) float64 {
	if math.IsNaN(daysToPending) {
		return math.NaN()
	}
	return -daysToPending
}

// valueGapRaw returns the relative spread between a region's current value
// and its metro median: positive when the region is priced below its peers.
// NaN when the metro is blank or has no peer regions to form a reference.
func valueGapRaw(currentValue, metroMedian float64) float64 {
	if math.IsNaN(metroMedian) || metroMedian == 0 {
		return math.NaN()
	}
	return (metroMedian - currentValue) / metroMedian * 100
}

// metroMedians computes the median current value per metro over the eligible
// universe. Metros with fewer than two regions yield no reference: a region
// cannot gap against itself.
func metroMedians(metros []string, values []float64) map[string]float64 {
	byMetro := make(map[string][]float64)
	for i, m := range metros {
		if m == "" {
			continue
		}
		byMetro[m] = append(byMetro[m], values[i])
	}

	medians := make(map[string]float64, len(byMetro))
	for m, vals := range byMetro {
		if len(vals) < 2 {
			continue
		}
		medians[m] = median(vals)
	}
	return medians
}

// median returns the middle value, averaging the two middle values for even
// counts. The input slice is sorted in place.
func median(vals []float64) float64 {
	sort.Float64s(vals)
	n := len(vals)
	if n%2 == 1 {
		return vals[n/2]
	}
	return (vals[n/2-1] + vals[n/2]) / 2
}
