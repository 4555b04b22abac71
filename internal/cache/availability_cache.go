package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/seatsurge/eventbooking/internal/domain"
	"github.com/seatsurge/eventbooking/pkg/logger"
	"github.com/seatsurge/eventbooking/pkg/redis"
	"github.com/seatsurge/eventbooking/pkg/telemetry"
	"go.opentelemetry.io/otel/attribute"
)

const keyPrefix = "availability:"

// AvailabilityCache caches event seat snapshots in Redis with a short
// TTL. Every method degrades gracefully: a Redis failure is logged and
// treated as a miss so reads fall through to the ledger.
type AvailabilityCache struct {
	client *redis.Client
	ttl    time.Duration
	log    *logger.Logger
}

// NewAvailabilityCache creates an availability cache
func NewAvailabilityCache(client *redis.Client, ttl time.Duration) *AvailabilityCache {
	if ttl <= 0 {
		ttl = 5 * time.Second
	}
	return &AvailabilityCache{
		client: client,
		ttl:    ttl,
		log:    logger.Get(),
	}
}

// Get returns the cached snapshot or (nil, false) on miss or error
func (c *AvailabilityCache) Get(ctx context.Context, eventID string) (*domain.Availability, bool) {
	if c == nil || c.client == nil {
		return nil, false
	}

	ctx, span := telemetry.StartSpan(ctx, "cache.availability.get")
	defer span.End()
	span.SetAttributes(attribute.String("event_id", eventID))

	payload, err := c.client.Client().Get(ctx, keyPrefix+eventID).Bytes()
	if err != nil {
		if !errors.Is(err, goredis.Nil) {
			c.log.Warn("availability cache read failed",
				zap.String("event_id", eventID),
				zap.Error(err),
			)
		}
		span.SetAttributes(attribute.Bool("cache.hit", false))
		return nil, false
	}

	var snapshot domain.Availability
	if err := json.Unmarshal(payload, &snapshot); err != nil {
		c.log.Warn("availability cache payload corrupt",
			zap.String("event_id", eventID),
			zap.Error(err),
		)
		span.SetAttributes(attribute.Bool("cache.hit", false))
		return nil, false
	}

	span.SetAttributes(attribute.Bool("cache.hit", true))
	return &snapshot, true
}

// Set stores the snapshot with the configured TTL
func (c *AvailabilityCache) Set(ctx context.Context, snapshot *domain.Availability) {
	if c == nil || c.client == nil || snapshot == nil {
		return
	}

	ctx, span := telemetry.StartSpan(ctx, "cache.availability.set")
	defer span.End()
	span.SetAttributes(attribute.String("event_id", snapshot.EventID))

	payload, err := json.Marshal(snapshot)
	if err != nil {
		c.log.Warn("failed to marshal availability snapshot", zap.Error(err))
		return
	}

	if err := c.client.Client().Set(ctx, keyPrefix+snapshot.EventID, payload, c.ttl).Err(); err != nil {
		c.log.Warn("availability cache write failed",
			zap.String("event_id", snapshot.EventID),
			zap.Error(err),
		)
	}
}

// Invalidate drops the cached snapshot after a committed mutation
func (c *AvailabilityCache) Invalidate(ctx context.Context, eventID string) {
	if c == nil || c.client == nil {
		return
	}

	ctx, span := telemetry.StartSpan(ctx, "cache.availability.invalidate")
	defer span.End()
	span.SetAttributes(attribute.String("event_id", eventID))

	if err := c.client.Client().Del(ctx, keyPrefix+eventID).Err(); err != nil {
		c.log.Warn("availability cache invalidation failed",
			zap.String("event_id", eventID),
			zap.Error(err),
		)
	}
}
