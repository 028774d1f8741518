package database

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stemsi/recruit-backend/internal/config"
)

// minReadTimeout must stay above the workers' BLPOP poll so an idle queue is
// not reported as a network timeout.
const minReadTimeout = 5 * time.Second

// NewRedisClient connects the client that backs worker queues, the answer
// mirror and monitor Pub/Sub.
func NewRedisClient(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*redis.Client, error) {
	opt, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis URL: %w", err)
	}
	if opt.ReadTimeout >= 0 && opt.ReadTimeout < minReadTimeout {
		opt.ReadTimeout = minReadTimeout
	}

	rdb := redis.NewClient(opt)

	err = retry(ctx, log, "redis", func(ctx context.Context) error { return rdb.Ping(ctx).Err() })
	if err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	log.Info().
		Str("addr", opt.Addr).
		Int("db", opt.DB).
		Dur("read_timeout", opt.ReadTimeout).
		Msg("Redis connected")

	return rdb, nil
}
