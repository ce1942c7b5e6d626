package api

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/flipscope/flipscope/internal/dataset"
	"github.com/flipscope/flipscope/internal/scoring"
	"github.com/flipscope/flipscope/internal/strategy"
	"github.com/flipscope/flipscope/pkg/logger"
)

// State owns the live dataset store and the scoring dependencies handlers
// share. The store pointer is swapped atomically on refresh so in-flight
// requests keep the table set they started with.
type State struct {
	store    atomic.Pointer[dataset.Store]
	engine   *scoring.Engine
	registry *strategy.Registry
	scores   *ScoreCache
	metrics  *Metrics
	logger   *logger.Logger
}

// NewState wires the shared request state.
func NewState(store *dataset.Store, engine *scoring.Engine, registry *strategy.Registry, scores *ScoreCache, metrics *Metrics, log *logger.Logger) *State {
	s := &State{
		engine:   engine,
		registry: registry,
		scores:   scores,
		metrics:  metrics,
		logger:   log,
	}
	s.store.Store(store)
	return s
}

// Store returns the current dataset store.
func (s *State) Store() *dataset.Store {
	return s.store.Load()
}

// SwapStore installs a freshly loaded dataset store.
func (s *State) SwapStore(store *dataset.Store) {
	s.store.Store(store)
	s.logger.WithField("fingerprint", store.Fingerprint()).Info("Dataset store swapped")
}

// scored runs the engine behind the score cache.
func (s *State) scored(ctx context.Context, strat strategy.Strategy, minValue, maxValue float64) ([]scoring.ScoredRegion, error) {
	store := s.Store()
	key := scoreKey(strategy.Hash(strat), minValue, maxValue, store.Fingerprint())

	if rows, ok := s.scores.Get(ctx, key); ok {
		s.logger.WithField("key", key).Debug("Score cache hit")
		return rows, nil
	}

	start := time.Now()
	rows, err := s.engine.Score(store, strat, minValue, maxValue)
	if err != nil {
		return nil, err
	}
	s.metrics.ObserveScoring(time.Since(start))

	s.scores.Set(ctx, key, rows)
	return rows, nil
}
