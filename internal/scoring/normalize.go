package scoring

import "math"

// normalizeMinMax rescales raw signal values to 0-100 across the eligible
// universe. Direction is encoded upstream (every raw signal is
// higher-is-better by the time it reaches here), so normalization is always
// ascending. NaN entries stay NaN: a missing raw signal never becomes a
// score. A degenerate universe (all present values equal) maps to the
// neutral midpoint 50 so the composite stays defined.
func normalizeMinMax(raw []float64) []float64 {
	lo, hi := math.Inf(1), math.Inf(-1)
	present := 0
	for _, v := range raw {
		if math.IsNaN(v) {
			continue
		}
		present++
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}

	out := make([]float64, len(raw))
	for i, v := range raw {
		switch {
		case math.IsNaN(v):
			out[i] = math.NaN()
		case present == 0 || lo == hi:
			out[i] = 50
		default:
			out[i] = (v - lo) / (hi - lo) * 100
		}
	}
	return out
}
