// Package promo backs the landing page CRO mechanics with Redis: the
// scarcity slot counter, analytics event counters and admin session tokens.
package promo

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	slotsKey      = "promo:slots"
	eventsKey     = "promo:events"
	adminTokenTTL = 12 * time.Hour
)

// eventNamePattern bounds what POST /api/events may count, so a hostile
// client cannot grow the hash without limit.
var eventNamePattern = regexp.MustCompile(`^[a-z][a-z0-9_]{0,47}$`)

// ErrInvalidEventName is returned for names outside eventNamePattern.
var ErrInvalidEventName = errors.New("invalid event name")

// RedisStore implements the promo counters over a single Redis client.
type RedisStore struct {
	client     *redis.Client
	totalSlots int
}

// NewRedisStore connects to Redis and verifies the connection.
func NewRedisStore(redisURL string, totalSlots int) (*RedisStore, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	return NewRedisStoreWithClient(client, totalSlots), nil
}

// NewRedisStoreWithClient creates a store from an existing Redis client
func NewRedisStoreWithClient(client *redis.Client, totalSlots int) *RedisStore {
	if totalSlots < 1 {
		totalSlots = 1
	}
	return &RedisStore{client: client, totalSlots: totalSlots}
}

// Slots returns the remaining intake slots, seeding the counter with the
// configured total on first use.
func (s *RedisStore) Slots(ctx context.Context) (int, error) {
	if err := s.client.SetNX(ctx, slotsKey, s.totalSlots, 0).Err(); err != nil {
		return 0, fmt.Errorf("seed slot counter: %w", err)
	}
	remaining, err := s.client.Get(ctx, slotsKey).Int()
	if err != nil {
		return 0, fmt.Errorf("read slot counter: %w", err)
	}
	if remaining < 0 {
		remaining = 0
	}
	return remaining, nil
}

// ClaimSlot decrements the scarcity counter and returns the new remainder.
// The counter floors at zero; claiming with no slots left is not an error,
// the landing page simply shows zero.
func (s *RedisStore) ClaimSlot(ctx context.Context) (int, error) {
	if err := s.client.SetNX(ctx, slotsKey, s.totalSlots, 0).Err(); err != nil {
		return 0, fmt.Errorf("seed slot counter: %w", err)
	}
	remaining, err := s.client.Decr(ctx, slotsKey).Result()
	if err != nil {
		return 0, fmt.Errorf("claim slot: %w", err)
	}
	if remaining < 0 {
		if err := s.client.Set(ctx, slotsKey, 0, 0).Err(); err != nil {
			return 0, fmt.Errorf("floor slot counter: %w", err)
		}
		remaining = 0
	}
	return int(remaining), nil
}

// RecordEvent increments a named analytics counter. Unknown-shaped names
// are rejected rather than coerced; the landing page only sends a fixed set.
func (s *RedisStore) RecordEvent(ctx context.Context, name string) error {
	if !eventNamePattern.MatchString(name) {
		return fmt.Errorf("%w: %q", ErrInvalidEventName, name)
	}
	if err := s.client.HIncrBy(ctx, eventsKey, name, 1).Err(); err != nil {
		return fmt.Errorf("record event %s: %w", name, err)
	}
	return nil
}

// EventCounts returns every analytics counter.
func (s *RedisStore) EventCounts(ctx context.Context) (map[string]int64, error) {
	raw, err := s.client.HGetAll(ctx, eventsKey).Result()
	if err != nil {
		return nil, fmt.Errorf("read event counters: %w", err)
	}
	counts := make(map[string]int64, len(raw))
	for name, value := range raw {
		var n int64
		if _, err := fmt.Sscanf(value, "%d", &n); err != nil {
			continue
		}
		counts[name] = n
	}
	return counts, nil
}

// SaveAdminToken stores an opaque admin session token with a fixed TTL.
func (s *RedisStore) SaveAdminToken(ctx context.Context, token string) error {
	if err := s.client.Set(ctx, adminKey(token), "1", adminTokenTTL).Err(); err != nil {
		return fmt.Errorf("save admin token: %w", err)
	}
	return nil
}

// CheckAdminToken reports whether a bearer token is a live admin session.
func (s *RedisStore) CheckAdminToken(ctx context.Context, token string) (bool, error) {
	err := s.client.Get(ctx, adminKey(token)).Err()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check admin token: %w", err)
	}
	return true, nil
}

// RevokeAdminToken deletes an admin session token.
func (s *RedisStore) RevokeAdminToken(ctx context.Context, token string) error {
	if err := s.client.Del(ctx, adminKey(token)).Err(); err != nil {
		return fmt.Errorf("revoke admin token: %w", err)
	}
	return nil
}

// Close closes the Redis connection
func (s *RedisStore) Close() error {
	return s.client.Close()
}

// Ping checks if Redis is reachable
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func adminKey(token string) string {
	return "admin:token:" + token
}
