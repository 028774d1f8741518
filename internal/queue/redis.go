// Package queue wraps the Redis lists and channels the API shares with the workers.
package queue

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// Redis pushes JSON jobs onto worker queues, publishes monitor events and
// mirrors live answers into hashes.
type Redis struct {
	rdb *redis.Client
}

// New creates a Redis queue over an existing client.
func New(rdb *redis.Client) *Redis {
	return &Redis{rdb: rdb}
}

// Push appends v, JSON-encoded, to the tail of queue.
func (q *Redis) Push(ctx context.Context, queue string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s job: %w", queue, err)
	}
	if err := q.rdb.RPush(ctx, queue, raw).Err(); err != nil {
		return fmt.Errorf("push %s: %w", queue, err)
	}
	return nil
}

// Publish sends v, JSON-encoded, on channel.
func (q *Redis) Publish(ctx context.Context, channel string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s event: %w", channel, err)
	}
	return q.rdb.Publish(ctx, channel, raw).Err()
}

// SetField stores v, JSON-encoded, under field of the hash at key.
func (q *Redis) SetField(ctx context.Context, key, field string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s field: %w", key, err)
	}
	return q.rdb.HSet(ctx, key, field, raw).Err()
}

// Depths returns the length of each queue in one round trip.
func (q *Redis) Depths(ctx context.Context, queues ...string) (map[string]int64, error) {
	pipe := q.rdb.Pipeline()
	cmds := make(map[string]*redis.IntCmd, len(queues))
	for _, name := range queues {
		cmds[name] = pipe.LLen(ctx, name)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, fmt.Errorf("queue depths: %w", err)
	}

	out := make(map[string]int64, len(cmds))
	for name, cmd := range cmds {
		out[name] = cmd.Val()
	}
	return out, nil
}
