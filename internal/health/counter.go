// Package health implements the upstream health monitor: a periodic probe
// of the policy portal, a consecutive-failure counter, and an
// edge-triggered operator alert when failures cross the threshold.
package health

import (
	"context"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"
)

// FailureCounter tracks consecutive probe failures for one source. The
// counter must survive between probe runs so short-lived worker processes
// (and multiple monitor instances) share the same incident state.
type FailureCounter interface {
	Get(ctx context.Context) (int, error)
	Increment(ctx context.Context) (int, error)
	Reset(ctx context.Context) error
}

// MemoryCounter is a process-local FailureCounter, used in tests and in
// single-instance deployments without Redis.
type MemoryCounter struct {
	mu sync.Mutex
	n  int
}

// NewMemoryCounter creates a MemoryCounter.
func NewMemoryCounter() *MemoryCounter { return &MemoryCounter{} }

func (c *MemoryCounter) Get(context.Context) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.n, nil
}

func (c *MemoryCounter) Increment(context.Context) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.n++
	return c.n, nil
}

func (c *MemoryCounter) Reset(context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.n = 0
	return nil
}

// RedisCounter is a FailureCounter backed by a Redis key, so every monitor
// instance observes the same consecutive-failure count and the alert fires
// exactly once per incident across the fleet.
type RedisCounter struct {
	client *redis.Client
	key    string
}

// NewRedisCounter creates a RedisCounter for the given source name.
func NewRedisCounter(client *redis.Client, source string) *RedisCounter {
	return &RedisCounter{
		client: client,
		key:    fmt.Sprintf("health:failures:%s", source),
	}
}

func (c *RedisCounter) Get(ctx context.Context) (int, error) {
	n, err := c.client.Get(ctx, c.key).Int()
	if err == redis.Nil {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("reading failure counter: %w", err)
	}
	return n, nil
}

func (c *RedisCounter) Increment(ctx context.Context) (int, error) {
	n, err := c.client.Incr(ctx, c.key).Result()
	if err != nil {
		return 0, fmt.Errorf("incrementing failure counter: %w", err)
	}
	return int(n), nil
}

func (c *RedisCounter) Reset(ctx context.Context) error {
	if err := c.client.Del(ctx, c.key).Err(); err != nil {
		return fmt.Errorf("resetting failure counter: %w", err)
	}
	return nil
}
