package scoring

import (
	"math"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flipscope/flipscope/internal/dataset"
	"github.com/flipscope/flipscope/internal/strategy"
	"github.com/flipscope/flipscope/pkg/logger"
)

// testStore builds an in-memory store with six in-band regions: three in
// the New York metro, two in Austin, one expensive outlier, and one
// thin-history region with no metro and no days-to-pending row.
func testStore(t *testing.T) *dataset.Store {
	t.Helper()

	periods := make([]string, 14)
	start := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := range periods {
		periods[i] = start.AddDate(0, i, 0).Format("2006-01-02")
	}

	zhviHeaders := append([]string{"RegionName", "City", "State", "Metro"}, periods...)

	linear := func(base, step float64) []string {
		out := make([]string, len(periods))
		for i := range out {
			out[i] = strconv.FormatFloat(base+float64(i)*step, 'f', -1, 64)
		}
		return out
	}
	flat := func(v float64) []string { return linear(v, 0) }

	// Only the last three periods observed.
	thin := make([]string, len(periods))
	thin[11], thin[12], thin[13] = "50000", "50500", "51000"

	zhviRows := [][]string{
		append([]string{"10001", "New York", "NY", "New York-Newark"}, linear(100000, 1000)...),
		append([]string{"10002", "New York", "NY", "New York-Newark"}, linear(90000, 500)...),
		append([]string{"10003", "New York", "NY", "New York-Newark"}, flat(120000)...),
		append([]string{"73301", "Austin", "TX", "Austin-Round Rock"}, linear(150000, 2000)...),
		append([]string{"73344", "Austin", "TX", "Austin-Round Rock"}, flat(140000)...),
		append([]string{"90210", "Beverly Hills", "CA", "Los Angeles"}, flat(1500000)...),
		append([]string{"00001", "Delta City", "MS", ""}, thin...),
	}

	snapshotHeaders := func(col string) []string {
		return []string{"RegionName", "City", "State", "Metro", col}
	}

	mk := func(name string, headers []string, rows [][]string) *dataset.Table {
		tbl, err := dataset.NewTable(name, headers, rows)
		require.NoError(t, err)
		return tbl
	}

	store, err := dataset.NewStore(map[string]*dataset.Table{
		dataset.HomeValues: mk(dataset.HomeValues, zhviHeaders, zhviRows),
		dataset.DaysToPending: mk(dataset.DaysToPending, snapshotHeaders(dataset.ColDaysToPending), [][]string{
			{"10001", "New York", "NY", "New York-Newark", "30"},
			{"10002", "New York", "NY", "New York-Newark", "25"},
			{"10003", "New York", "NY", "New York-Newark", "40"},
			{"73301", "Austin", "TX", "Austin-Round Rock", "15"},
			{"73344", "Austin", "TX", "Austin-Round Rock", ""},
		}),
		dataset.PriceCuts: mk(dataset.PriceCuts, snapshotHeaders(dataset.ColPriceCutPct), [][]string{
			{"10001", "New York", "NY", "New York-Newark", "10"},
			{"10002", "New York", "NY", "New York-Newark", "15"},
			{"10003", "New York", "NY", "New York-Newark", "5"},
			{"73301", "Austin", "TX", "Austin-Round Rock", "20"},
			{"73344", "Austin", "TX", "Austin-Round Rock", "8"},
			{"00001", "Delta City", "MS", "", "12"},
		}),
		dataset.SaleToList: mk(dataset.SaleToList, snapshotHeaders(dataset.ColSaleToListRatio), [][]string{
			{"10001", "New York", "NY", "New York-Newark", "0.97"},
			{"10002", "New York", "NY", "New York-Newark", "0.99"},
			{"10003", "New York", "NY", "New York-Newark", "0.95"},
			{"73301", "Austin", "TX", "Austin-Round Rock", "1.02"},
			{"73344", "Austin", "TX", "Austin-Round Rock", "0.96"},
			{"00001", "Delta City", "MS", "", "0.98"},
		}),
	})
	require.NoError(t, err)
	return store
}

func findRegion(t *testing.T, rows []ScoredRegion, code string) ScoredRegion {
	t.Helper()
	for _, r := range rows {
		if r.RegionName == code {
			return r
		}
	}
	t.Fatalf("region %s not in results", code)
	return ScoredRegion{}
}

func TestScoreRejectsInvertedRange(t *testing.T) {
	eng := NewEngine(logger.NewNop())

	_, err := eng.Score(testStore(t), strategy.Balanced(), 500000, 100000)
	require.Error(t, err)

	var rangeErr *InvalidRangeError
	require.ErrorAs(t, err, &rangeErr)
	assert.Equal(t, 500000.0, rangeErr.Min)
	assert.Equal(t, 100000.0, rangeErr.Max)
}

func TestScoreUniverseGate(t *testing.T) {
	eng := NewEngine(logger.NewNop())

	rows, err := eng.Score(testStore(t), strategy.Balanced(), 40000, 500000)
	require.NoError(t, err)
	require.Len(t, rows, 6)

	for _, r := range rows {
		assert.NotEqual(t, "90210", r.RegionName, "out-of-band region must be excluded")
		assert.GreaterOrEqual(t, r.CurrentValue, 40000.0)
		assert.LessOrEqual(t, r.CurrentValue, 500000.0)
		assert.True(t, r.CompositeScore >= 0 && r.CompositeScore <= 100,
			"composite %f out of bounds for %s", r.CompositeScore, r.RegionName)
	}
}

func TestScoreEmptyUniverse(t *testing.T) {
	eng := NewEngine(logger.NewNop())

	rows, err := eng.Score(testStore(t), strategy.Balanced(), 1, 2)
	require.NoError(t, err)
	require.NotNil(t, rows)
	assert.Empty(t, rows)
}

func TestScoreThinHistoryRegion(t *testing.T) {
	eng := NewEngine(logger.NewNop())

	rows, err := eng.Score(testStore(t), strategy.Balanced(), 40000, 500000)
	require.NoError(t, err)

	r := findRegion(t, rows, "00001")
	assert.True(t, math.IsNaN(r.AppreciationScore), "fewer than 13 observations")
	assert.True(t, math.IsNaN(r.VelocityScore), "no days-to-pending row")
	assert.True(t, math.IsNaN(r.ValueGapScore), "blank metro")
	assert.False(t, math.IsNaN(r.DistressScore))
	assert.False(t, math.IsNaN(r.PricingPowerScore))

	// Weights redistribute over the two present components.
	strat := strategy.Balanced()
	want := (r.DistressScore*strat.Distress + r.PricingPowerScore*strat.PricingPower) /
		(strat.Distress + strat.PricingPower)
	assert.InDelta(t, want, r.CompositeScore, 1e-9)
}

func TestScoreMissingSingleComponent(t *testing.T) {
	eng := NewEngine(logger.NewNop())

	rows, err := eng.Score(testStore(t), strategy.FastFlip(), 40000, 500000)
	require.NoError(t, err)

	// 73344 has a blank days-to-pending cell, everything else present.
	r := findRegion(t, rows, "73344")
	assert.True(t, math.IsNaN(r.VelocityScore))
	assert.True(t, math.IsNaN(r.DaysToPending))

	strat := strategy.FastFlip()
	sum := r.AppreciationScore*strat.Appreciation +
		r.DistressScore*strat.Distress +
		r.PricingPowerScore*strat.PricingPower +
		r.ValueGapScore*strat.ValueGap
	want := sum / (strat.Appreciation + strat.Distress + strat.PricingPower + strat.ValueGap)
	assert.InDelta(t, want, r.CompositeScore, 1e-9)
}

func TestScoreDeterministic(t *testing.T) {
	eng := NewEngine(logger.NewNop())
	store := testStore(t)

	first, err := eng.Score(store, strategy.Balanced(), 40000, 500000)
	require.NoError(t, err)
	second, err := eng.Score(store, strategy.Balanced(), 40000, 500000)
	require.NoError(t, err)

	require.Len(t, second, len(first))
	for i := range first {
		assert.Equal(t, first[i].RegionName, second[i].RegionName)
		assert.Equal(t, first[i].CompositeScore, second[i].CompositeScore)
	}
}

func TestCompositeScoreAllMissing(t *testing.T) {
	nan := math.NaN()
	_, ok := compositeScore(
		[5]float64{nan, nan, nan, nan, nan},
		strategy.Balanced().Weights(),
	)
	assert.False(t, ok)
}

func TestCompositeScoreZeroWeightOnPresent(t *testing.T) {
	nan := math.NaN()
	_, ok := compositeScore(
		[5]float64{nan, 60, nan, nan, nan},
		[5]float64{1, 0, 0, 0, 0},
	)
	assert.False(t, ok, "only present component carries zero weight")
}

func TestSortScoredTieBreaks(t *testing.T) {
	nan := math.NaN()
	rows := []ScoredRegion{
		{RegionName: "44444", CompositeScore: 40, AppreciationPct: 9.0},
		{RegionName: "22222", CompositeScore: 80, AppreciationPct: 5.0},
		{RegionName: "33333", CompositeScore: 65, AppreciationPct: 3.0},
		{RegionName: "11111", CompositeScore: 80, AppreciationPct: 7.0},
		{RegionName: "55555", CompositeScore: 65, AppreciationPct: nan},
	}

	sortScored(rows)

	got := make([]string, len(rows))
	for i, r := range rows {
		got[i] = r.RegionName
	}
	// Composite desc; within ties higher appreciation first, NaN last.
	assert.Equal(t, []string{"11111", "22222", "33333", "55555", "44444"}, got)
}

func TestSortScoredRegionCodeFinalTieBreak(t *testing.T) {
	rows := []ScoredRegion{
		{RegionName: "90002", CompositeScore: 50, AppreciationPct: 4.0},
		{RegionName: "90001", CompositeScore: 50, AppreciationPct: 4.0},
	}

	sortScored(rows)

	assert.Equal(t, "90001", rows[0].RegionName)
	assert.Equal(t, "90002", rows[1].RegionName)
}
