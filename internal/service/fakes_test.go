package service_test

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stemsi/recruit-backend/internal/model"
	"github.com/stemsi/recruit-backend/internal/repository"
)

type fakeApplicants struct {
	mu    sync.Mutex
	byID  map[uuid.UUID]*model.Applicant
	email map[string]bool
}

func newFakeApplicants(as ...*model.Applicant) *fakeApplicants {
	f := &fakeApplicants{byID: map[uuid.UUID]*model.Applicant{}, email: map[string]bool{}}
	for _, a := range as {
		f.byID[a.ID] = a
		f.email[a.Email] = true
	}
	return f
}

func (f *fakeApplicants) GetByID(_ context.Context, id uuid.UUID) (*model.Applicant, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.byID[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *a
	return &cp, nil
}

func (f *fakeApplicants) setStatus(id uuid.UUID, status model.ApplicantStatus) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.byID[id].Status = status
}

func (f *fakeApplicants) ListPaginated(_ context.Context, status *model.ApplicantStatus, limit, offset int) ([]model.Applicant, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.Applicant
	for _, a := range f.byID {
		if status == nil || a.Status == *status {
			out = append(out, *a)
		}
	}
	total := len(out)
	if offset > len(out) {
		offset = len(out)
	}
	out = out[offset:]
	if limit < len(out) {
		out = out[:limit]
	}
	return out, total, nil
}

func (f *fakeApplicants) Create(_ context.Context, a *model.Applicant) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.email[a.Email] {
		return repository.ErrDuplicateEmail
	}
	a.ID = uuid.New()
	a.Status = model.ApplicantStatusRegistered
	a.CreatedAt = time.Now()
	a.UpdatedAt = a.CreatedAt
	f.byID[a.ID] = a
	f.email[a.Email] = true
	return nil
}

func registered(name string) *model.Applicant {
	return &model.Applicant{
		ID:       uuid.New(),
		Name:     name,
		Email:    name + "@example.com",
		Position: "Backend Engineer",
		Status:   model.ApplicantStatusRegistered,
	}
}

type fakeResults struct {
	tested  map[uuid.UUID]bool
	results map[uuid.UUID]*model.TestResult
	answers map[uuid.UUID]model.AnswerRecord
}

func newFakeResults() *fakeResults {
	return &fakeResults{
		tested:  map[uuid.UUID]bool{},
		results: map[uuid.UUID]*model.TestResult{},
		answers: map[uuid.UUID]model.AnswerRecord{},
	}
}

func (f *fakeResults) Exists(_ context.Context, id uuid.UUID) (bool, error) {
	_, stored := f.results[id]
	return f.tested[id] || stored, nil
}

func (f *fakeResults) GetByApplicant(_ context.Context, id uuid.UUID) (*model.TestResult, error) {
	r, ok := f.results[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return r, nil
}

func (f *fakeResults) ListAnswers(_ context.Context, id uuid.UUID) (model.AnswerRecord, error) {
	if a, ok := f.answers[id]; ok {
		return a, nil
	}
	return model.AnswerRecord{}, nil
}

type pushed struct {
	queue string
	raw   []byte
}

// fakeQueue records every push, publish and hash write as JSON.
type fakeQueue struct {
	mu        sync.Mutex
	pushes    []pushed
	published []model.MonitorEvent
	fields    map[string]map[string][]byte
}

func newFakeQueue() *fakeQueue {
	return &fakeQueue{fields: map[string]map[string][]byte{}}
}

func (q *fakeQueue) Push(_ context.Context, queue string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	q.pushes = append(q.pushes, pushed{queue, raw})
	return nil
}

func (q *fakeQueue) Publish(_ context.Context, _ string, v any) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if ev, ok := v.(model.MonitorEvent); ok {
		q.published = append(q.published, ev)
	}
	return nil
}

func (q *fakeQueue) SetField(_ context.Context, key, field string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.fields[key] == nil {
		q.fields[key] = map[string][]byte{}
	}
	q.fields[key][field] = raw
	return nil
}

func (q *fakeQueue) on(queue string) [][]byte {
	q.mu.Lock()
	defer q.mu.Unlock()
	var out [][]byte
	for _, p := range q.pushes {
		if p.queue == queue {
			out = append(out, p.raw)
		}
	}
	return out
}

func (q *fakeQueue) events(t model.MonitorEventType) int {
	q.mu.Lock()
	defer q.mu.Unlock()
	n := 0
	for _, ev := range q.published {
		if ev.Type == t {
			n++
		}
	}
	return n
}

// manualClock fires scheduled callbacks only when the test asks.
type manualClock struct {
	mu      sync.Mutex
	tickers []*manualTimer
	timers  []*manualTimer
}

type manualTimer struct {
	d       time.Duration
	fn      func()
	stopped bool
	fired   bool
}

func (c *manualClock) Every(d time.Duration, fn func()) func() {
	return c.add(&c.tickers, d, fn)
}

func (c *manualClock) After(d time.Duration, fn func()) func() {
	return c.add(&c.timers, d, fn)
}

func (c *manualClock) add(list *[]*manualTimer, d time.Duration, fn func()) func() {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &manualTimer{d: d, fn: fn}
	*list = append(*list, t)
	return func() {
		c.mu.Lock()
		t.stopped = true
		c.mu.Unlock()
	}
}

func (c *manualClock) tick(n int) {
	for i := 0; i < n; i++ {
		c.mu.Lock()
		var fns []func()
		for _, t := range c.tickers {
			if !t.stopped {
				fns = append(fns, t.fn)
			}
		}
		c.mu.Unlock()
		for _, fn := range fns {
			fn()
		}
	}
}

func (c *manualClock) fire(d time.Duration) {
	c.mu.Lock()
	var fns []func()
	for _, t := range c.timers {
		if !t.stopped && !t.fired && t.d == d {
			t.fired = true
			fns = append(fns, t.fn)
		}
	}
	c.mu.Unlock()
	for _, fn := range fns {
		fn()
	}
}
