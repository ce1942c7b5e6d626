package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/flipscope/flipscope/internal/dataset"
	"github.com/flipscope/flipscope/internal/report"
	"github.com/flipscope/flipscope/internal/scoring"
	"github.com/flipscope/flipscope/internal/selection"
	"github.com/flipscope/flipscope/internal/strategy"
)

// Handler serves the presentation API over the scored tables.
type Handler struct {
	state *State
}

// NewHandler creates the API handler.
func NewHandler(state *State) *Handler {
	return &Handler{state: state}
}

// scoreParams carries the query parameters shared by every scoring endpoint.
type scoreParams struct {
	strat    strategy.Strategy
	minValue float64
	maxValue float64
	minScore float64
	states   []string
	metros   []string
	limit    int
}

// Strategies lists the registered strategy names.
func (h *Handler) Strategies(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"strategies": h.state.registry.Names(),
	})
}

// Opportunities returns the scored, filtered, top-N table as JSON.
func (h *Handler) Opportunities(w http.ResponseWriter, r *http.Request) {
	params, err := h.parseParams(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	rows, err := h.score(w, r, params)
	if err != nil {
		return
	}

	rows = selection.Filter(rows, params.minScore, params.states, params.metros)
	total := len(rows)
	rows = report.TopN(rows, params.limit)

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"total":         total,
		"returned":      len(rows),
		"opportunities": rows,
	})
}

// Export streams the scored, filtered table as a CSV attachment. The export
// is not truncated to the display limit and numerics keep full precision.
func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	params, err := h.parseParams(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	rows, err := h.score(w, r, params)
	if err != nil {
		return
	}
	rows = selection.Filter(rows, params.minScore, params.states, params.metros)

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="flip_opportunities.csv"`)
	if err := report.WriteCSV(w, rows); err != nil {
		h.state.logger.WithError(err).Error("CSV export failed mid-stream")
	}
}

// Summary returns geography-level aggregates over the filtered table.
func (h *Handler) Summary(w http.ResponseWriter, r *http.Request) {
	params, err := h.parseParams(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	level, err := selection.ParseLevel(queryDefault(r, "level", string(selection.LevelState)))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	minRegions, err := queryInt(r, "min_regions", 1)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	rows, err := h.score(w, r, params)
	if err != nil {
		return
	}
	rows = selection.Filter(rows, params.minScore, params.states, params.metros)

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"level":   level,
		"groups":  selection.SummarizeWithFloor(rows, level, minRegions),
		"regions": len(rows),
	})
}

// score runs the cached scoring pipeline and maps engine errors onto HTTP
// statuses. It writes the error response itself and returns a non-nil error
// to signal the caller to stop.
func (h *Handler) score(w http.ResponseWriter, r *http.Request, params scoreParams) ([]scoring.ScoredRegion, error) {
	rows, err := h.state.scored(r.Context(), params.strat, params.minValue, params.maxValue)
	if err == nil {
		return rows, nil
	}

	var rangeErr *scoring.InvalidRangeError
	var missingErr *dataset.MissingDatasetError
	switch {
	case errors.As(err, &rangeErr):
		writeError(w, http.StatusBadRequest, err)
	case errors.As(err, &missingErr):
		writeError(w, http.StatusServiceUnavailable, err)
	default:
		h.state.logger.WithError(err).Error("Scoring failed")
		writeError(w, http.StatusInternalServerError, errors.New("internal error"))
	}
	return nil, err
}

func (h *Handler) parseParams(r *http.Request) (scoreParams, error) {
	params := scoreParams{
		minValue: 0,
		maxValue: math.MaxFloat64,
	}

	strat, err := h.state.registry.Get(queryDefault(r, "strategy", "balanced"))
	if err != nil {
		return params, err
	}
	params.strat = strat

	if params.minValue, err = queryFloat(r, "min_value", 0); err != nil {
		return params, err
	}
	if params.maxValue, err = queryFloat(r, "max_value", math.MaxFloat64); err != nil {
		return params, err
	}
	if params.minScore, err = queryFloat(r, "min_score", 0); err != nil {
		return params, err
	}
	if params.limit, err = queryInt(r, "limit", 0); err != nil {
		return params, err
	}

	params.states = queryList(r, "states")
	params.metros = queryList(r, "metros")

	return params, nil
}

func queryDefault(r *http.Request, key, fallback string) string {
	if v := r.URL.Query().Get(key); v != "" {
		return v
	}
	return fallback
}

func queryFloat(r *http.Request, key string, fallback float64) (float64, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("parameter %q must be a number", key)
	}
	return v, nil
}

func queryInt(r *http.Request, key string, fallback int) (int, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("parameter %q must be an integer", key)
	}
	return v, nil
}

// queryList splits a comma-separated multi-value parameter. An absent
// parameter yields nil, which downstream means "no restriction".
func queryList(r *http.Request, key string) []string {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
