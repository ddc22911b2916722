package cache

import (
	"context"
	"errors"
	"time"

	"tourdesk/internal/metrics"
	"tourdesk/internal/utils"

	"github.com/redis/go-redis/v9"
)

const calendarVersionKey = "tourdesk:calendar:version"

// CalendarCache holds rendered calendar feeds keyed by a version counter.
// Bumping the version after any assignment write makes every cached range
// stale at once; old keys expire through their TTL. A nil cache, or one with
// no client, is a no-op.
type CalendarCache struct {
	Client redis.Cmdable
	TTL    time.Duration
}

func (c *CalendarCache) enabled() bool {
	return c != nil && c.Client != nil
}

func (c *CalendarCache) key(ctx context.Context, from, to string) (string, error) {
	v, err := c.Client.Get(ctx, calendarVersionKey).Result()
	if errors.Is(err, redis.Nil) {
		v = "0"
	} else if err != nil {
		return "", err
	}
	if from == "" {
		from = "*"
	}
	if to == "" {
		to = "*"
	}
	return "tourdesk:calendar:v" + v + ":" + from + ":" + to, nil
}

// Get returns the cached feed body for the range and the versioned key it
// looked under. Pass that key to Set so a feed rendered before a Bump is
// stored under the old version. key is empty when caching is off or redis
// failed. Redis errors count as misses.
func (c *CalendarCache) Get(ctx context.Context, from, to string) (body []byte, key string, hit bool) {
	if !c.enabled() {
		return nil, "", false
	}
	key, err := c.key(ctx, from, to)
	if err != nil {
		utils.LogWarn("", "cache", "calendar_get", err.Error())
		metrics.CalendarCacheMiss()
		return nil, "", false
	}
	body, err = c.Client.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			utils.LogWarn("", "cache", "calendar_get", err.Error())
		}
		metrics.CalendarCacheMiss()
		return nil, key, false
	}
	metrics.CalendarCacheHit()
	return body, key, true
}

// Set stores body under key as returned by Get. An empty key is a no-op.
func (c *CalendarCache) Set(ctx context.Context, key string, body []byte) {
	if !c.enabled() || key == "" {
		return
	}
	ttl := c.TTL
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	if err := c.Client.Set(ctx, key, body, ttl).Err(); err != nil {
		utils.LogWarn("", "cache", "calendar_set", err.Error())
	}
}

// Bump invalidates every cached range.
func (c *CalendarCache) Bump(ctx context.Context) {
	if !c.enabled() {
		return
	}
	if err := c.Client.Incr(ctx, calendarVersionKey).Err(); err != nil {
		utils.LogWarn("", "cache", "calendar_bump", err.Error())
	}
}
