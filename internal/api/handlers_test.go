package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flipscope/flipscope/internal/dataset"
	"github.com/flipscope/flipscope/internal/scoring"
	"github.com/flipscope/flipscope/internal/strategy"
	"github.com/flipscope/flipscope/pkg/cache"
	"github.com/flipscope/flipscope/pkg/config"
	"github.com/flipscope/flipscope/pkg/logger"
)

func testStore(t *testing.T) *dataset.Store {
	t.Helper()

	periods := make([]string, 14)
	for i := range periods {
		periods[i] = time.Date(2023, time.Month(i+1), 1, 0, 0, 0, 0, time.UTC).Format("2006-01-02")
	}

	zhviHeaders := append([]string{"RegionName", "City", "State", "Metro"}, periods...)
	series := func(base, step float64) []string {
		out := make([]string, len(periods))
		for i := range out {
			out[i] = strconv.FormatFloat(base+float64(i)*step, 'f', -1, 64)
		}
		return out
	}

	zhviRows := [][]string{
		append([]string{"10001", "New York", "NY", "New York-Newark"}, series(100000, 1000)...),
		append([]string{"10002", "New York", "NY", "New York-Newark"}, series(90000, 500)...),
		append([]string{"73301", "Austin", "TX", "Austin-Round Rock"}, series(150000, 2000)...),
		append([]string{"73344", "Austin", "TX", "Austin-Round Rock"}, series(140000, 100)...),
	}

	snapshot := func(name, col string, vals map[string]string) *dataset.Table {
		headers := []string{"RegionName", "City", "State", "Metro", col}
		rows := make([][]string, 0, len(vals))
		for _, code := range []string{"10001", "10002", "73301", "73344"} {
			rows = append(rows, []string{code, "", "", "", vals[code]})
		}
		tbl, err := dataset.NewTable(name, headers, rows)
		require.NoError(t, err)
		return tbl
	}

	zhvi, err := dataset.NewTable(dataset.HomeValues, zhviHeaders, zhviRows)
	require.NoError(t, err)

	store, err := dataset.NewStore(map[string]*dataset.Table{
		dataset.HomeValues: zhvi,
		dataset.DaysToPending: snapshot(dataset.DaysToPending, dataset.ColDaysToPending,
			map[string]string{"10001": "30", "10002": "25", "73301": "15", "73344": "45"}),
		dataset.PriceCuts: snapshot(dataset.PriceCuts, dataset.ColPriceCutPct,
			map[string]string{"10001": "10", "10002": "15", "73301": "20", "73344": "8"}),
		dataset.SaleToList: snapshot(dataset.SaleToList, dataset.ColSaleToListRatio,
			map[string]string{"10001": "0.97", "10002": "0.99", "73301": "1.02", "73344": "0.96"}),
	})
	require.NoError(t, err)
	return store
}

func testServer(t *testing.T) http.Handler {
	t.Helper()

	log := logger.NewNop()
	cfg := &config.Config{} // Redis disabled: cache is a no-op
	scores := NewScoreCache(cache.NewClient(cfg, log), time.Hour, log)
	metrics := NewMetrics(prometheus.NewRegistry())

	state := NewState(testStore(t), scoring.NewEngine(log), strategy.NewRegistry(), scores, metrics, log)
	return NewRouter(NewHandler(state), metrics, nil, log)
}

func doGet(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	rec := doGet(t, testServer(t), "/health")

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
}

func TestStrategiesEndpoint(t *testing.T) {
	rec := doGet(t, testServer(t), "/api/strategies")

	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Strategies []string `json:"strategies"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, []string{"balanced", "fast_flip", "value_add"}, body.Strategies)
}

func TestOpportunitiesShape(t *testing.T) {
	rec := doGet(t, testServer(t), "/api/opportunities?min_value=40000&max_value=500000&limit=2")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body struct {
		Total         int                    `json:"total"`
		Returned      int                    `json:"returned"`
		Opportunities []scoring.ScoredRegion `json:"opportunities"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 4, body.Total)
	assert.Equal(t, 2, body.Returned)
	require.Len(t, body.Opportunities, 2)
	assert.GreaterOrEqual(t, body.Opportunities[0].CompositeScore, body.Opportunities[1].CompositeScore)
}

func TestOpportunitiesStateFilter(t *testing.T) {
	rec := doGet(t, testServer(t), "/api/opportunities?states=TX")

	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Opportunities []scoring.ScoredRegion `json:"opportunities"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.NotEmpty(t, body.Opportunities)
	for _, r := range body.Opportunities {
		assert.Equal(t, "TX", r.State)
	}
}

func TestOpportunitiesUnknownStrategy(t *testing.T) {
	rec := doGet(t, testServer(t), "/api/opportunities?strategy=moonshot")

	require.Equal(t, http.StatusBadRequest, rec.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Contains(t, body["error"], "moonshot")
}

func TestOpportunitiesInvertedRange(t *testing.T) {
	rec := doGet(t, testServer(t), "/api/opportunities?min_value=500000&max_value=100000")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestOpportunitiesBadNumber(t *testing.T) {
	rec := doGet(t, testServer(t), "/api/opportunities?min_value=cheap")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestExportCSV(t *testing.T) {
	rec := doGet(t, testServer(t), "/api/opportunities/export?limit=1")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "flip_opportunities.csv")

	lines := strings.Split(strings.TrimRight(rec.Body.String(), "\n"), "\n")
	assert.True(t, strings.HasPrefix(lines[0], "region_name,city,state,metro,current_value"))
	// The display limit never truncates the export.
	assert.Len(t, lines, 5)
}

func TestSummaryEndpoint(t *testing.T) {
	rec := doGet(t, testServer(t), "/api/summary?level=metro&min_regions=2")

	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Level  string `json:"level"`
		Groups []struct {
			Key              string `json:"key"`
			NumOpportunities int    `json:"num_opportunities"`
		} `json:"groups"`
		Regions int `json:"regions"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "metro", body.Level)
	assert.Equal(t, 4, body.Regions)
	require.Len(t, body.Groups, 2)
	assert.Equal(t, "Austin-Round Rock", body.Groups[0].Key)
	assert.Equal(t, 2, body.Groups[0].NumOpportunities)
}

func TestSummaryBadLevel(t *testing.T) {
	rec := doGet(t, testServer(t), "/api/summary?level=county")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestScoreKeyIncludesFingerprint(t *testing.T) {
	key := scoreKey("abc123", 50000, 500000, "deadbeef")
	assert.Equal(t, "flipscope:scores:abc123:50000:500000:deadbeef", key)
}
