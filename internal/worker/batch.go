// Package worker drains the Redis persistence queues into PostgreSQL.
package worker

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const (
	BatchSize    = 50
	BatchTimeout = 2 * time.Second
	PollTimeout  = 1 * time.Second
	drainLimit   = 10 * BatchSize
)

// batchLoop pops JSON jobs from one queue and flushes them in batches.
// A failed bulk write falls back to one write per job; jobs that still
// fail are pushed back onto the queue.
type batchLoop[T any] struct {
	rdb    *redis.Client
	queue  string
	log    zerolog.Logger
	bulk   func(ctx context.Context, batch []T) error
	single func(ctx context.Context, job T) error
	// after runs once a batch is stored. Optional.
	after func(ctx context.Context, batch []T)
}

func (l *batchLoop[T]) run(ctx context.Context) {
	l.log.Info().Str("queue", l.queue).Msg("Worker started")

	batch := make([]T, 0, BatchSize)
	lastFlush := time.Now()

	for {
		if shouldFlush(len(batch), time.Since(lastFlush)) {
			l.flushSafe(ctx, batch)
			batch = batch[:0]
			lastFlush = time.Now()
		}

		select {
		case <-ctx.Done():
			l.log.Info().Msg("Shutdown requested. Flushing remaining batch...")
			l.flushSafe(context.Background(), batch)
			l.drain(context.Background())
			l.log.Info().Msg("Worker stopped")
			return

		default:
			item, err := l.rdb.BLPop(ctx, PollTimeout, l.queue).Result()
			if err != nil {
				if !errors.Is(err, redis.Nil) && ctx.Err() == nil {
					l.log.Error().Err(err).Msg("BLPop error")
				}
				continue
			}
			if len(item) < 2 {
				continue
			}

			job, err := decode[T](item[1])
			if err != nil {
				l.log.Error().Err(err).Msg("Invalid JSON payload")
				continue
			}
			batch = append(batch, job)
		}
	}
}

// drain persists whatever is still queued, bounded so shutdown cannot hang.
func (l *batchLoop[T]) drain(ctx context.Context) {
	batch := make([]T, 0, BatchSize)
	drained := 0
	for drained < drainLimit {
		raw, err := l.rdb.LPop(ctx, l.queue).Result()
		if err != nil {
			break
		}
		job, err := decode[T](raw)
		if err != nil {
			l.log.Error().Err(err).Msg("Drain unmarshal error")
			continue
		}
		batch = append(batch, job)
		drained++
		if len(batch) == BatchSize {
			l.flushSafe(ctx, batch)
			batch = batch[:0]
		}
	}
	l.flushSafe(ctx, batch)

	if drained > 0 {
		l.log.Info().Int("count", drained).Msg("Drained remaining items")
	}
}

func (l *batchLoop[T]) flushSafe(ctx context.Context, batch []T) {
	if len(batch) == 0 {
		return
	}

	if err := l.bulk(ctx, batch); err != nil {
		l.log.Warn().Err(err).Int("size", len(batch)).Msg("Bulk write failed, using fallback")

		stored := make([]T, 0, len(batch))
		for _, job := range batch {
			if err := l.single(ctx, job); err != nil {
				l.log.Error().Err(err).Msg("Single write failed, requeueing")
				l.requeue(ctx, job)
				continue
			}
			stored = append(stored, job)
		}
		batch = stored
	}

	if l.after != nil && len(batch) > 0 {
		l.after(ctx, batch)
	}
}

func (l *batchLoop[T]) requeue(ctx context.Context, job T) {
	raw, err := json.Marshal(job)
	if err != nil {
		l.log.Error().Err(err).Msg("Dropping job that cannot be encoded")
		return
	}
	if err := l.rdb.RPush(ctx, l.queue, raw).Err(); err != nil {
		l.log.Error().Err(err).Msg("Requeue failed, job lost")
	}
}

func shouldFlush(size int, sinceFlush time.Duration) bool {
	return size > 0 && (size >= BatchSize || sinceFlush >= BatchTimeout)
}

func decode[T any](raw string) (T, error) {
	var job T
	err := json.Unmarshal([]byte(raw), &job)
	return job, err
}
