package strategy

import (
	"fmt"
	"math"
)

// Tolerance allowed on the weight-sum invariant.
const sumTolerance = 1e-6

// InvalidStrategyError reports a weight vector that violates the
// non-negativity or sum-to-one invariant.
type InvalidStrategyError struct {
	Field   string
	Message string
}

func (e *InvalidStrategyError) Error() string {
	return fmt.Sprintf("invalid strategy: %s: %s", e.Field, e.Message)
}

// UnknownStrategyError reports a lookup for a name that was never registered.
type UnknownStrategyError struct {
	Name string
}

func (e *UnknownStrategyError) Error() string {
	return fmt.Sprintf("unknown strategy %q", e.Name)
}

// Strategy is an immutable named weight vector over the five score
// components. Weights are non-negative and sum to 1 within tolerance;
// validation happens at construction, never at scoring time.
type Strategy struct {
	ID string `yaml:"id"`

	Appreciation float64 `yaml:"appreciation"`
	Velocity     float64 `yaml:"velocity"`
	Distress     float64 `yaml:"distress"`
	PricingPower float64 `yaml:"pricing_power"`
	ValueGap     float64 `yaml:"value_gap"`
}

// Sum returns the total of all weights.
func (s Strategy) Sum() float64 {
	return s.Appreciation + s.Velocity + s.Distress + s.PricingPower + s.ValueGap
}

// Weights returns the weight vector in component order: appreciation,
// velocity, distress, pricing power, value gap.
func (s Strategy) Weights() [5]float64 {
	return [5]float64{s.Appreciation, s.Velocity, s.Distress, s.PricingPower, s.ValueGap}
}

// Validate enforces the weight invariants.
func (s Strategy) Validate() error {
	if s.ID == "" {
		return &InvalidStrategyError{Field: "id", Message: "required"}
	}

	fields := []struct {
		name  string
		value float64
	}{
		{"appreciation", s.Appreciation},
		{"velocity", s.Velocity},
		{"distress", s.Distress},
		{"pricing_power", s.PricingPower},
		{"value_gap", s.ValueGap},
	}
	for _, f := range fields {
		if f.value < 0 || math.IsNaN(f.value) {
			return &InvalidStrategyError{Field: f.name, Message: fmt.Sprintf("must be non-negative, got %v", f.value)}
		}
	}

	if diff := math.Abs(s.Sum() - 1.0); diff > sumTolerance {
		return &InvalidStrategyError{Field: "weights", Message: fmt.Sprintf("must sum to 1.0, got %.6f", s.Sum())}
	}

	return nil
}

// FastFlip biases toward quick resale: sale velocity and seller distress.
func FastFlip() Strategy {
	return Strategy{
		ID:           "fast_flip",
		Appreciation: 0.15,
		Velocity:     0.35,
		Distress:     0.30,
		PricingPower: 0.10,
		ValueGap:     0.10,
	}
}

// ValueAdd biases toward renovation upside: value gap and pricing power.
func ValueAdd() Strategy {
	return Strategy{
		ID:           "value_add",
		Appreciation: 0.15,
		Velocity:     0.10,
		Distress:     0.10,
		PricingPower: 0.30,
		ValueGap:     0.35,
	}
}

// Balanced spreads weight evenly across all five components.
func Balanced() Strategy {
	return Strategy{
		ID:           "balanced",
		Appreciation: 0.20,
		Velocity:     0.20,
		Distress:     0.20,
		PricingPower: 0.20,
		ValueGap:     0.20,
	}
}
