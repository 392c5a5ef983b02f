package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/krakatau-dev/helpdesk/internal/events"
)

const (
	dashboardKey     = "helpdesk:stats:dashboard"
	categoryStatsKey = "helpdesk:stats:category:%d"
	defaultStatsTTL  = 60 * time.Second
)

// StatsCache is a read-through Redis cache for derived reporting
// aggregates. The lifecycle engine never writes workload or stats
// values here; entries are recomputed from ticket rows on miss and
// dropped when lifecycle events land.
type StatsCache struct {
	client *redis.Client
	logger *zap.Logger
	ttl    time.Duration
}

// NewStatsCache builds a cache around an optional Redis client. A nil
// client degrades to pass-through behavior.
func NewStatsCache(client *redis.Client, logger *zap.Logger) *StatsCache {
	return &StatsCache{client: client, logger: logger, ttl: defaultStatsTTL}
}

// DashboardKey returns the cache key for the dashboard summary.
func DashboardKey() string {
	return dashboardKey
}

// CategoryKey returns the cache key for a category's stats.
func CategoryKey(categoryID int64) string {
	return fmt.Sprintf(categoryStatsKey, categoryID)
}

// GetJSON loads a cached value into dest. It reports whether the key
// was present.
func (c *StatsCache) GetJSON(ctx context.Context, key string, dest interface{}) (bool, error) {
	if c == nil || c.client == nil {
		return false, nil
	}

	raw, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	if err := json.Unmarshal(raw, dest); err != nil {
		return false, err
	}
	return true, nil
}

// SetJSON stores a value under key with the cache TTL.
func (c *StatsCache) SetJSON(ctx context.Context, key string, value interface{}) error {
	if c == nil || c.client == nil {
		return nil
	}

	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key, raw, c.ttl).Err()
}

// Delete removes cached keys.
func (c *StatsCache) Delete(ctx context.Context, keys ...string) {
	if c == nil || c.client == nil || len(keys) == 0 {
		return
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		c.logger.Warn("stats cache invalidation failed", zap.Error(err))
	}
}

// RegisterInvalidation drops cached aggregates whenever lifecycle
// events fire, so the next read recomputes from ticket rows.
func (c *StatsCache) RegisterInvalidation(dispatcher events.Dispatcher) {
	handler := func(ctx context.Context, event events.Event) error {
		keys := []string{dashboardKey}
		if payload, ok := event.Payload.(events.TicketCreatedPayload); ok {
			keys = append(keys, CategoryKey(payload.CategoryID))
		}
		c.Delete(ctx, keys...)
		return nil
	}

	dispatcher.Subscribe(events.EventTicketCreated, handler)
	dispatcher.Subscribe(events.EventTicketAssigned, handler)
	dispatcher.Subscribe(events.EventTicketStatusChanged, handler)
	dispatcher.Subscribe(events.EventTicketEscalated, handler)
	dispatcher.Subscribe(events.EventTicketResolved, handler)
	dispatcher.Subscribe(events.EventTicketClosed, handler)
}
