package database

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
)

func TestRetry_StopsOnSuccess(t *testing.T) {
	calls := 0
	err := retry(context.Background(), zerolog.Nop(), "test", func(context.Context) error {
		calls++
		return nil
	})
	if err != nil || calls != 1 {
		t.Errorf("err = %v, calls = %d", err, calls)
	}
}

func TestRetry_RetriesUntilReady(t *testing.T) {
	calls := 0
	err := retry(context.Background(), zerolog.Nop(), "test", func(context.Context) error {
		calls++
		if calls < 2 {
			return errors.New("connection refused")
		}
		return nil
	})
	if err != nil || calls != 2 {
		t.Errorf("err = %v, calls = %d", err, calls)
	}
}

func TestRetry_HonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	err := retry(ctx, zerolog.Nop(), "test", func(context.Context) error {
		calls++
		cancel()
		return errors.New("connection refused")
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}
