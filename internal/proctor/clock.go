package proctor

import (
	"sync"
	"time"
)

// Clock schedules session callbacks.
type Clock interface {
	// Every calls fn repeatedly at interval d until stop is called.
	Every(d time.Duration, fn func()) (stop func())
	// After calls fn once after d unless stop is called first.
	After(d time.Duration, fn func()) (stop func())
}

// SystemClock is the wall-clock implementation.
var SystemClock Clock = systemClock{}

type systemClock struct{}

func (systemClock) Every(d time.Duration, fn func()) func() {
	ticker := time.NewTicker(d)
	done := make(chan struct{})
	var once sync.Once

	go func() {
		for {
			select {
			case <-ticker.C:
				fn()
			case <-done:
				return
			}
		}
	}()

	return func() {
		once.Do(func() {
			ticker.Stop()
			close(done)
		})
	}
}

func (systemClock) After(d time.Duration, fn func()) func() {
	t := time.AfterFunc(d, fn)
	return func() { t.Stop() }
}
