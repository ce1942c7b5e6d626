package api

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/flipscope/flipscope/internal/scoring"
	"github.com/flipscope/flipscope/pkg/cache"
	"github.com/flipscope/flipscope/pkg/logger"
)

// ScoreCache memoizes scoring results keyed by strategy identity, price
// band, and dataset fingerprint. The engine itself stays pure; the cache is
// owned here by the caller, and a dataset refresh changes the fingerprint so
// stale entries simply stop being addressed.
type ScoreCache struct {
	client *cache.Client
	ttl    time.Duration
	logger *logger.Logger
}

// NewScoreCache creates a score cache with the given TTL.
func NewScoreCache(client *cache.Client, ttl time.Duration, log *logger.Logger) *ScoreCache {
	return &ScoreCache{client: client, ttl: ttl, logger: log}
}

// scoreKey builds the cache key for one scoring invocation.
func scoreKey(strategyID string, minValue, maxValue float64, fingerprint string) string {
	return fmt.Sprintf("flipscope:scores:%s:%.0f:%.0f:%s", strategyID, minValue, maxValue, fingerprint)
}

// Get returns a cached scored table, or false on miss. Errors degrade to a
// miss: a broken cache must never fail a scoring request.
func (c *ScoreCache) Get(ctx context.Context, key string) ([]scoring.ScoredRegion, bool) {
	data, ok := c.client.GetBytes(ctx, key)
	if !ok {
		return nil, false
	}

	var rows []scoring.ScoredRegion
	if err := json.Unmarshal(data, &rows); err != nil {
		c.logger.WithError(err).Warn("Dropping undecodable score cache entry")
		_ = c.client.Delete(ctx, key)
		return nil, false
	}

	return rows, true
}

// Set stores a scored table. Failures are logged, not returned.
func (c *ScoreCache) Set(ctx context.Context, key string, rows []scoring.ScoredRegion) {
	data, err := json.Marshal(rows)
	if err != nil {
		c.logger.WithError(err).Warn("Score cache marshal failed")
		return
	}

	if err := c.client.SetBytes(ctx, key, data, c.ttl); err != nil {
		c.logger.WithError(err).Warn("Score cache write failed")
	}
}
