package scoring

import (
	"math"
	"sort"

	"github.com/flipscope/flipscope/internal/dataset"
	"github.com/flipscope/flipscope/internal/strategy"
	"github.com/flipscope/flipscope/pkg/logger"
)

// Engine merges the region datasets into scored rows. It holds no state
// between calls: Score is a pure function of its inputs, safe to memoize by
// the caller.
type Engine struct {
	logger *logger.Logger
}

// NewEngine creates a new scoring engine.
func NewEngine(log *logger.Logger) *Engine {
	return &Engine{logger: log}
}

// candidate is one eligible region mid-computation.
type candidate struct {
	region       dataset.Region
	currentValue float64
	series       []dataset.Observation
}

// Score computes the composite flip-opportunity score for every eligible
// region. The price band is an eligibility gate: regions outside it never
// enter the universe that normalization is computed over. An empty eligible
// universe returns an empty slice, not an error.
func (e *Engine) Score(store *dataset.Store, strat strategy.Strategy, minValue, maxValue float64) ([]ScoredRegion, error) {
	if minValue > maxValue {
		return nil, &InvalidRangeError{Min: minValue, Max: maxValue}
	}

	homeValues, err := store.Table(dataset.HomeValues)
	if err != nil {
		return nil, err
	}
	daysToPending, err := store.Table(dataset.DaysToPending)
	if err != nil {
		return nil, err
	}
	priceCuts, err := store.Table(dataset.PriceCuts)
	if err != nil {
		return nil, err
	}
	saleToList, err := store.Table(dataset.SaleToList)
	if err != nil {
		return nil, err
	}

	// 1. Eligibility universe: latest observed home value inside the band.
	universe := make([]candidate, 0, homeValues.Len())
	for _, region := range homeValues.Regions() {
		series := homeValues.Series(region.RegionName)
		if len(series) == 0 {
			continue
		}
		current := series[len(series)-1].Value
		if current < minValue || current > maxValue {
			continue
		}
		universe = append(universe, candidate{
			region:       region,
			currentValue: current,
			series:       series,
		})
	}

	if len(universe) == 0 {
		e.logger.WithFields(map[string]interface{}{
			"strategy":  strat.ID,
			"min_value": minValue,
			"max_value": maxValue,
		}).Warn("Eligible universe is empty")
		return []ScoredRegion{}, nil
	}

	// 2. Raw signal derivation over the eligible universe.
	n := len(universe)
	apprec := make([]float64, n)
	velocity := make([]float64, n)
	distress := make([]float64, n)
	pricing := make([]float64, n)
	valueGap := make([]float64, n)

	dtpRaw := make([]float64, n)
	cutRaw := make([]float64, n)

	metros := make([]string, n)
	values := make([]float64, n)
	for i, c := range universe {
		metros[i] = c.region.Metro
		values[i] = c.currentValue
	}
	medians := metroMedians(metros, values)

	for i, c := range universe {
		code := c.region.RegionName

		apprec[i] = appreciationPct(c.series)

		dtpRaw[i] = snapshotValue(daysToPending, code, dataset.ColDaysToPending)
		velocity[i] = velocityRaw(dtpRaw[i])

		cutRaw[i] = snapshotValue(priceCuts, code, dataset.ColPriceCutPct)
		distress[i] = cutRaw[i]

		pricing[i] = snapshotValue(saleToList, code, dataset.ColSaleToListRatio)

		ref, ok := medians[c.region.Metro]
		if !ok {
			ref = math.NaN()
		}
		valueGap[i] = valueGapRaw(c.currentValue, ref)
	}

	// 3. Normalization to 0-100, relative to this universe only.
	apprecScore := normalizeMinMax(apprec)
	velocityScore := normalizeMinMax(velocity)
	distressScore := normalizeMinMax(distress)
	pricingScore := normalizeMinMax(pricing)
	valueGapScore := normalizeMinMax(valueGap)

	// 4. Weighted composite with proportional redistribution of the weight
	// held by missing components.
	weights := strat.Weights()
	rows := make([]ScoredRegion, 0, n)
	skipped := 0
	for i, c := range universe {
		components := [5]float64{
			apprecScore[i], velocityScore[i], distressScore[i],
			pricingScore[i], valueGapScore[i],
		}

		composite, ok := compositeScore(components, weights)
		if !ok {
			skipped++
			continue
		}

		rows = append(rows, ScoredRegion{
			RegionName:        c.region.RegionName,
			City:              c.region.City,
			State:             c.region.State,
			Metro:             c.region.Metro,
			CurrentValue:      c.currentValue,
			AppreciationScore: components[0],
			VelocityScore:     components[1],
			DistressScore:     components[2],
			PricingPowerScore: components[3],
			ValueGapScore:     components[4],
			CompositeScore:    composite,
			AppreciationPct:   apprec[i],
			DaysToPending:     dtpRaw[i],
			PriceCutPct:       cutRaw[i],
		})
	}

	if skipped > 0 {
		e.logger.WithFields(map[string]interface{}{
			"skipped": skipped,
		}).Warn("Regions skipped with no scorable components")
	}

	// 5. Deterministic total order.
	sortScored(rows)

	e.logger.WithFields(map[string]interface{}{
		"strategy":  strat.ID,
		"universe":  n,
		"scored":    len(rows),
		"min_value": minValue,
		"max_value": maxValue,
	}).Info("Scoring completed")

	return rows, nil
}

// snapshotValue reads one snapshot metric for a region, NaN when absent.
func snapshotValue(t *dataset.Table, code, column string) float64 {
	v, ok := t.Value(code, column)
	if !ok {
		return math.NaN()
	}
	return v
}

// compositeScore folds the present component scores under the strategy's
// weights, redistributing the weight of missing components proportionally
// across the rest. The second return is false when nothing weighable is
// present, which excludes the region rather than scoring it zero.
func compositeScore(components, weights [5]float64) (float64, bool) {
	var sum, weightSum float64
	for i, score := range components {
		if math.IsNaN(score) {
			continue
		}
		sum += score * weights[i]
		weightSum += weights[i]
	}

	if weightSum == 0 {
		return 0, false
	}
	return sum / weightSum, true
}

// sortScored applies the ranking's total order: composite descending,
// appreciation descending with missing values last, region code ascending.
func sortScored(rows []ScoredRegion) {
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].CompositeScore != rows[j].CompositeScore {
			return rows[i].CompositeScore > rows[j].CompositeScore
		}

		ai, aj := rows[i].AppreciationPct, rows[j].AppreciationPct
		aiMissing, ajMissing := math.IsNaN(ai), math.IsNaN(aj)
		switch {
		case aiMissing != ajMissing:
			return !aiMissing
		case !aiMissing && ai != aj:
			return ai > aj
		}

		return rows[i].RegionName < rows[j].RegionName
	})
}
