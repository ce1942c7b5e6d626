package selection

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flipscope/flipscope/internal/scoring"
)

func TestParseLevel(t *testing.T) {
	for _, name := range []string{"state", "metro"} {
		lvl, err := ParseLevel(name)
		require.NoError(t, err)
		assert.Equal(t, Level(name), lvl)
	}

	_, err := ParseLevel("county")
	assert.Error(t, err)
}

func TestSummarizeByState(t *testing.T) {
	rows := []scoring.ScoredRegion{
		{State: "CA", CompositeScore: 80, CurrentValue: 400000, AppreciationPct: 4},
		{State: "CA", CompositeScore: 60, CurrentValue: 300000, AppreciationPct: 6},
		{State: "CA", CompositeScore: 70, CurrentValue: 500000, AppreciationPct: math.NaN()},
		{State: "TX", CompositeScore: 50, CurrentValue: 200000, AppreciationPct: 2},
		{State: "TX", CompositeScore: 90, CurrentValue: 250000, AppreciationPct: 8},
	}

	got := Summarize(rows, LevelState)
	require.Len(t, got, 2)

	ca := got[0]
	assert.Equal(t, "CA", ca.Key)
	assert.Equal(t, 3, ca.NumOpportunities)
	assert.InDelta(t, 70.0, ca.AvgScore, 1e-9)
	assert.InDelta(t, 400000.0, ca.MedianValue, 1e-9)
	// Mean over present values only.
	assert.InDelta(t, 5.0, ca.AvgAppreciation, 1e-9)

	tx := got[1]
	assert.Equal(t, "TX", tx.Key)
	assert.Equal(t, 2, tx.NumOpportunities)
	assert.InDelta(t, 70.0, tx.AvgScore, 1e-9)
	// Even count: mean of the two middle values.
	assert.InDelta(t, 225000.0, tx.MedianValue, 1e-9)
}

func TestSummarizeSkipsBlankKeys(t *testing.T) {
	rows := []scoring.ScoredRegion{
		{Metro: "Austin-Round Rock", CompositeScore: 70, CurrentValue: 300000},
		{Metro: "", CompositeScore: 90, CurrentValue: 100000},
	}

	got := Summarize(rows, LevelMetro)
	require.Len(t, got, 1)
	assert.Equal(t, "Austin-Round Rock", got[0].Key)
}

func TestSummarizeNoAppreciationMeansNaN(t *testing.T) {
	rows := []scoring.ScoredRegion{
		{State: "MS", CompositeScore: 55, CurrentValue: 50000, AppreciationPct: math.NaN()},
	}

	got := Summarize(rows, LevelState)
	require.Len(t, got, 1)
	assert.True(t, math.IsNaN(got[0].AvgAppreciation))

	data, err := json.Marshal(got[0])
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Nil(t, raw["avg_appreciation"])
	assert.Equal(t, "MS", raw["key"])
}

func TestSummarizeWithFloor(t *testing.T) {
	rows := []scoring.ScoredRegion{
		{Metro: "Austin-Round Rock", CompositeScore: 70, CurrentValue: 300000},
		{Metro: "Austin-Round Rock", CompositeScore: 60, CurrentValue: 280000},
		{Metro: "Austin-Round Rock", CompositeScore: 80, CurrentValue: 320000},
		{Metro: "Waco", CompositeScore: 95, CurrentValue: 150000},
	}

	got := SummarizeWithFloor(rows, LevelMetro, 3)
	require.Len(t, got, 1)
	assert.Equal(t, "Austin-Round Rock", got[0].Key)

	all := SummarizeWithFloor(rows, LevelMetro, 1)
	assert.Len(t, all, 2)
}

func TestSummarizeEmptyInput(t *testing.T) {
	got := Summarize(nil, LevelState)
	require.NotNil(t, got)
	assert.Empty(t, got)
}
