package scoring

import (
	"encoding/json"
	"fmt"
	"math"
)

// InvalidRangeError reports a price band whose lower bound exceeds its upper
// bound.
type InvalidRangeError struct {
	Min float64
	Max float64
}

func (e *InvalidRangeError) Error() string {
	return fmt.Sprintf("invalid price range: min %.0f > max %.0f", e.Min, e.Max)
}

// ScoredRegion is one row of engine output: region identity, component
// scores, and the raw signals kept for display. Missing values are carried
// as NaN and surface as null in JSON.
type ScoredRegion struct {
	RegionName string
	City       string
	State      string
	Metro      string

	CurrentValue float64

	AppreciationScore float64
	VelocityScore     float64
	DistressScore     float64
	PricingPowerScore float64
	ValueGapScore     float64
	CompositeScore    float64

	AppreciationPct float64
	DaysToPending   float64
	PriceCutPct     float64
}

// scoredRegionJSON is the wire shape; NaN maps to null in both directions.
type scoredRegionJSON struct {
	RegionName string `json:"region_name"`
	City       string `json:"city"`
	State      string `json:"state"`
	Metro      string `json:"metro"`

	CurrentValue float64 `json:"current_value"`

	AppreciationScore *float64 `json:"appreciation_score"`
	VelocityScore     *float64 `json:"velocity_score"`
	DistressScore     *float64 `json:"distress_score"`
	PricingPowerScore *float64 `json:"pricing_power_score"`
	ValueGapScore     *float64 `json:"value_gap_score"`
	CompositeScore    float64  `json:"composite_score"`

	AppreciationPct *float64 `json:"appreciation_pct"`
	DaysToPending   *float64 `json:"days_to_pending"`
	PriceCutPct     *float64 `json:"price_cut_pct"`
}

// MarshalJSON implements json.Marshaler.
func (r ScoredRegion) MarshalJSON() ([]byte, error) {
	return json.Marshal(scoredRegionJSON{
		RegionName:        r.RegionName,
		City:              r.City,
		State:             r.State,
		Metro:             r.Metro,
		CurrentValue:      r.CurrentValue,
		AppreciationScore: nullable(r.AppreciationScore),
		VelocityScore:     nullable(r.VelocityScore),
		DistressScore:     nullable(r.DistressScore),
		PricingPowerScore: nullable(r.PricingPowerScore),
		ValueGapScore:     nullable(r.ValueGapScore),
		CompositeScore:    r.CompositeScore,
		AppreciationPct:   nullable(r.AppreciationPct),
		DaysToPending:     nullable(r.DaysToPending),
		PriceCutPct:       nullable(r.PriceCutPct),
	})
}

// UnmarshalJSON implements json.Unmarshaler; nulls come back as NaN.
func (r *ScoredRegion) UnmarshalJSON(data []byte) error {
	var aux scoredRegionJSON
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	*r = ScoredRegion{
		RegionName:        aux.RegionName,
		City:              aux.City,
		State:             aux.State,
		Metro:             aux.Metro,
		CurrentValue:      aux.CurrentValue,
		AppreciationScore: fromNullable(aux.AppreciationScore),
		VelocityScore:     fromNullable(aux.VelocityScore),
		DistressScore:     fromNullable(aux.DistressScore),
		PricingPowerScore: fromNullable(aux.PricingPowerScore),
		ValueGapScore:     fromNullable(aux.ValueGapScore),
		CompositeScore:    aux.CompositeScore,
		AppreciationPct:   fromNullable(aux.AppreciationPct),
		DaysToPending:     fromNullable(aux.DaysToPending),
		PriceCutPct:       fromNullable(aux.PriceCutPct),
	}
	return nil
}

func nullable(v float64) *float64 {
	if math.IsNaN(v) {
		return nil
	}
	return &v
}

func fromNullable(p *float64) float64 {
	if p == nil {
		return math.NaN()
	}
	return *p
}
