package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"occupancy-service/internal/domain/entity"
	"occupancy-service/internal/domain/repository"
	"occupancy-service/pkg/logger"

	"github.com/redis/go-redis/v9"
)

// CachedPredictor decorates a Predictor with a short-TTL Redis cache.
// Ranking and load-balancing requests hit every facility at once, so
// without the cache each request would fan out a dozen model calls.
// Cache failures degrade to the underlying predictor, never to the
// caller.
type CachedPredictor struct {
	next   repository.Predictor
	client *redis.Client
	ttl    time.Duration
	logger logger.Logger
}

// NewCachedPredictor wraps next with a Redis cache.
func NewCachedPredictor(next repository.Predictor, client *redis.Client, ttl time.Duration, logger logger.Logger) repository.Predictor {
	return &CachedPredictor{
		next:   next,
		client: client,
		ttl:    ttl,
		logger: logger,
	}
}

// Predict returns a cached prediction when fresh, otherwise asks the
// model service and caches the answer. Only the default feature set
// is cached; non-default reservation counts or exam-week flags bypass
// the cache.
func (c *CachedPredictor) Predict(ctx context.Context, facilityID int, reservationCount int, examWeek int) (*entity.Prediction, error) {
	if reservationCount != 10 || examWeek != 0 {
		return c.next.Predict(ctx, facilityID, reservationCount, examWeek)
	}

	key := fmt.Sprintf("prediction:%d", facilityID)
	if raw, err := c.client.Get(ctx, key).Result(); err == nil {
		var prediction entity.Prediction
		if err := json.Unmarshal([]byte(raw), &prediction); err == nil {
			return &prediction, nil
		}
	}

	prediction, err := c.next.Predict(ctx, facilityID, reservationCount, examWeek)
	if err != nil {
		return nil, err
	}

	if raw, err := json.Marshal(prediction); err == nil {
		if err := c.client.Set(ctx, key, raw, c.ttl).Err(); err != nil {
			c.logger.Warn("Failed to cache prediction", "facilityId", facilityID, "error", err)
		}
	}
	return prediction, nil
}

// Retrain passes through and drops cached predictions, since a new
// model invalidates them.
func (c *CachedPredictor) Retrain(ctx context.Context) error {
	if err := c.next.Retrain(ctx); err != nil {
		return err
	}

	iter := c.client.Scan(ctx, 0, "prediction:*", 100).Iterator()
	for iter.Next(ctx) {
		c.client.Del(ctx, iter.Val())
	}
	if err := iter.Err(); err != nil {
		c.logger.Warn("Failed to flush prediction cache", "error", err)
	}
	return nil
}
