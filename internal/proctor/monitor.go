package proctor

import (
	"sync"

	"github.com/stemsi/recruit-backend/internal/model"
)

// IntegrityMonitor delivers browser integrity events to a session.
// The session subscribes once at start and unsubscribes on reaching a terminal state.
type IntegrityMonitor interface {
	OnViolation(fn func(model.ViolationKind)) (unsubscribe func())
}

// Feed is an in-process IntegrityMonitor. Transport handlers Report into it.
type Feed struct {
	mu       sync.Mutex
	nextID   int
	handlers map[int]func(model.ViolationKind)
}

// NewFeed creates an empty Feed.
func NewFeed() *Feed {
	return &Feed{handlers: make(map[int]func(model.ViolationKind))}
}

// OnViolation registers fn and returns its unsubscribe func.
func (f *Feed) OnViolation(fn func(model.ViolationKind)) func() {
	f.mu.Lock()
	id := f.nextID
	f.nextID++
	f.handlers[id] = fn
	f.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			f.mu.Lock()
			delete(f.handlers, id)
			f.mu.Unlock()
		})
	}
}

// Report fans kind out to current subscribers and returns how many received it.
// Handlers run outside the feed lock so they may unsubscribe.
func (f *Feed) Report(kind model.ViolationKind) int {
	f.mu.Lock()
	fns := make([]func(model.ViolationKind), 0, len(f.handlers))
	for _, fn := range f.handlers {
		fns = append(fns, fn)
	}
	f.mu.Unlock()

	for _, fn := range fns {
		fn(kind)
	}
	return len(fns)
}
