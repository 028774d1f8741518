package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stemsi/recruit-backend/internal/config"
	"github.com/stemsi/recruit-backend/internal/model"
	"github.com/stemsi/recruit-backend/internal/proctor"
	"github.com/stemsi/recruit-backend/internal/questionset"
	"github.com/stemsi/recruit-backend/internal/repository"
)

var (
	ErrApplicantNotFound = errors.New("applicant not found")
	ErrAlreadyTested     = errors.New("applicant already completed the test")
	ErrSessionExists     = errors.New("test session already running")
	ErrSessionNotFound   = errors.New("no live test session")
)

const sideEffectTimeout = 3 * time.Second

// ApplicantLookup loads applicants.
type ApplicantLookup interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.Applicant, error)
}

// ResultLookup checks for stored results.
type ResultLookup interface {
	Exists(ctx context.Context, applicantID uuid.UUID) (bool, error)
}

// JobQueue is the Redis side channel shared with the workers and the monitor.
type JobQueue interface {
	Push(ctx context.Context, queue string, v any) error
	Publish(ctx context.Context, channel string, v any) error
	SetField(ctx context.Context, key, field string, v any) error
}

// TestSessionService runs live proctored test sessions, one per applicant.
// It is the sessions' Submitter: results go onto the persistence queue.
type TestSessionService struct {
	applicants ApplicantLookup
	results    ResultLookup
	queue      JobQueue
	questions  *questionset.Set
	cfg        config.ProctorConfig
	clock      proctor.Clock
	log        zerolog.Logger

	mu       sync.Mutex
	sessions map[string]*liveSession
	// finished holds applicants whose result is queued but may not be
	// persisted yet. Entries go once the store reports the applicant tested.
	finished map[string]struct{}
}

// NewTestSessionService creates a new TestSessionService.
func NewTestSessionService(
	applicants ApplicantLookup,
	results ResultLookup,
	queue JobQueue,
	questions *questionset.Set,
	cfg config.ProctorConfig,
	clock proctor.Clock,
	log zerolog.Logger,
) *TestSessionService {
	if clock == nil {
		clock = proctor.SystemClock
	}
	return &TestSessionService{
		applicants: applicants,
		results:    results,
		queue:      queue,
		questions:  questions,
		cfg:        cfg,
		clock:      clock,
		log:        log.With().Str("component", "test_session_service").Logger(),
		sessions:   make(map[string]*liveSession),
		finished:   make(map[string]struct{}),
	}
}

// liveSession pairs a proctor session with its integrity feed and notice subscribers.
type liveSession struct {
	session *proctor.Session
	feed    *proctor.Feed

	mu      sync.Mutex
	nextSub int
	subs    map[int]func(proctor.Notice)
}

func (l *liveSession) subscribe(fn func(proctor.Notice)) func() {
	l.mu.Lock()
	id := l.nextSub
	l.nextSub++
	l.subs[id] = fn
	l.mu.Unlock()

	return func() {
		l.mu.Lock()
		delete(l.subs, id)
		l.mu.Unlock()
	}
}

func (l *liveSession) broadcast(n proctor.Notice) {
	l.mu.Lock()
	fns := make([]func(proctor.Notice), 0, len(l.subs))
	for _, fn := range l.subs {
		fns = append(fns, fn)
	}
	l.mu.Unlock()

	for _, fn := range fns {
		fn(n)
	}
}

// StartedTest is returned to the candidate when a session begins.
type StartedTest struct {
	ApplicantID     string                       `json:"applicant_id"`
	DurationSeconds int                          `json:"duration_seconds"`
	Questions       []model.QuestionForCandidate `json:"questions"`
	State           proctor.State                `json:"state"`
}

// Start begins a proctored session for an applicant who has not been tested yet.
func (s *TestSessionService) Start(ctx context.Context, applicantID uuid.UUID) (*StartedTest, error) {
	applicant, err := s.applicants.GetByID(ctx, applicantID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrApplicantNotFound
		}
		return nil, fmt.Errorf("get applicant: %w", err)
	}
	id := applicantID.String()
	if applicant.Status != model.ApplicantStatusRegistered {
		s.forget(id)
		return nil, ErrAlreadyTested
	}
	tested, err := s.results.Exists(ctx, applicantID)
	if err != nil {
		return nil, fmt.Errorf("check existing result: %w", err)
	}
	if tested {
		s.forget(id)
		return nil, ErrAlreadyTested
	}

	duration := int(s.cfg.TestDuration / time.Second)

	s.mu.Lock()
	if _, exists := s.sessions[id]; exists {
		s.mu.Unlock()
		return nil, ErrSessionExists
	}
	if _, done := s.finished[id]; done {
		s.mu.Unlock()
		return nil, ErrAlreadyTested
	}

	live := &liveSession{feed: proctor.NewFeed(), subs: make(map[int]func(proctor.Notice))}
	session, err := proctor.Start(id, s.questions.Questions(), duration, proctor.Config{
		Rules:     s.rules(),
		Clock:     s.clock,
		Monitor:   live.feed,
		Submitter: s,
		Notify:    func(n proctor.Notice) { s.onNotice(id, live, n) },
		Log:       s.log,
	})
	if err != nil {
		s.mu.Unlock()
		return nil, fmt.Errorf("start session: %w", err)
	}
	live.session = session
	s.sessions[id] = live
	s.mu.Unlock()

	go s.reap(id, live)

	s.publish(model.MonitorEvent{
		Type:        model.MonitorSessionStarted,
		ApplicantID: id,
		Data:        map[string]any{"name": applicant.Name, "position": applicant.Position},
		At:          time.Now(),
	})

	return &StartedTest{
		ApplicantID:     id,
		DurationSeconds: duration,
		Questions:       candidateQuestions(session.Questions()),
		State:           session.Snapshot(),
	}, nil
}

func (s *TestSessionService) rules() proctor.Rules {
	return proctor.Rules{
		TimeWarningAt:     int(s.cfg.TimeWarningAt / time.Second),
		TabSwitchLimit:    s.cfg.TabSwitchLimit,
		WarningClearDelay: s.cfg.WarningClearDelay,
		DisqualifyGrace:   s.cfg.DisqualifyGrace,
	}
}

// reap drops a finished session from the registry. A submitted session
// leaves a marker so the applicant cannot start again before the result
// worker has stored the result.
func (s *TestSessionService) reap(id string, live *liveSession) {
	<-live.session.Done()
	_, submitted := live.session.Result()

	s.mu.Lock()
	if submitted {
		s.finished[id] = struct{}{}
	}
	if s.sessions[id] == live {
		delete(s.sessions, id)
	}
	s.mu.Unlock()
	s.log.Debug().Str("applicant_id", id).Bool("submitted", submitted).Msg("Session removed from registry")
}

// forget drops the finished marker once the store has caught up.
func (s *TestSessionService) forget(id string) {
	s.mu.Lock()
	delete(s.finished, id)
	s.mu.Unlock()
}

func (s *TestSessionService) lookup(applicantID uuid.UUID) (*liveSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	live, ok := s.sessions[applicantID.String()]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return live, nil
}

// SessionView is the candidate-facing view of a live session.
type SessionView struct {
	Questions []model.QuestionForCandidate `json:"questions"`
	State     proctor.State                `json:"state"`
}

// State returns the live session's snapshot.
func (s *TestSessionService) State(applicantID uuid.UUID) (*SessionView, error) {
	live, err := s.lookup(applicantID)
	if err != nil {
		return nil, err
	}
	return &SessionView{
		Questions: candidateQuestions(live.session.Questions()),
		State:     live.session.Snapshot(),
	}, nil
}

// SelectAnswer records an answer and mirrors it to Redis for autosave.
func (s *TestSessionService) SelectAnswer(ctx context.Context, applicantID uuid.UUID, questionID int, value model.AnswerValue) (*proctor.State, error) {
	live, err := s.lookup(applicantID)
	if err != nil {
		return nil, err
	}
	if err := live.session.SelectAnswer(questionID, value); err != nil {
		return nil, err
	}

	id := applicantID.String()
	job := model.AnswerJob{ApplicantID: id, QuestionID: questionID, Answer: value, AnsweredAt: time.Now()}

	sctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sideEffectTimeout)
	defer cancel()
	if err := s.queue.SetField(sctx, config.CacheKey.ApplicantAnswersKey(id), strconv.Itoa(questionID), value); err != nil {
		s.log.Warn().Err(err).Str("applicant_id", id).Msg("Failed to mirror answer")
	}
	if err := s.queue.Push(sctx, config.WorkerKey.PersistAnswersQueue, job); err != nil {
		s.log.Error().Err(err).Str("applicant_id", id).Msg("Failed to queue answer")
	}
	s.publish(model.MonitorEvent{
		Type:        model.MonitorAnswer,
		ApplicantID: id,
		Data:        map[string]any{"question_id": questionID, "answered_count": len(live.session.Snapshot().Answers)},
		At:          job.AnsweredAt,
	})

	st := live.session.Snapshot()
	return &st, nil
}

// Navigate moves the candidate to another question.
func (s *TestSessionService) Navigate(applicantID uuid.UUID, index int) (*proctor.State, error) {
	live, err := s.lookup(applicantID)
	if err != nil {
		return nil, err
	}
	if err := live.session.GoTo(index); err != nil {
		return nil, err
	}
	st := live.session.Snapshot()
	return &st, nil
}

// ReportViolation feeds an integrity event to the session's monitor.
func (s *TestSessionService) ReportViolation(applicantID uuid.UUID, kind model.ViolationKind) (*proctor.State, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("unknown violation kind %q", kind)
	}
	live, err := s.lookup(applicantID)
	if err != nil {
		return nil, err
	}
	if live.feed.Report(kind) == 0 {
		return nil, proctor.ErrSessionClosed
	}
	st := live.session.Snapshot()
	return &st, nil
}

// Submit ends the session at the candidate's request and returns the final payload.
func (s *TestSessionService) Submit(applicantID uuid.UUID) (*model.TestData, error) {
	live, err := s.lookup(applicantID)
	if err != nil {
		return nil, err
	}
	if err := live.session.Submit(); err != nil {
		return nil, err
	}
	data, _ := live.session.Result()
	return &data, nil
}

// Subscribe streams a session's notices to fn until the returned func is called.
// The returned channel is closed when the session ends.
func (s *TestSessionService) Subscribe(applicantID uuid.UUID, fn func(proctor.Notice)) (unsubscribe func(), done <-chan struct{}, err error) {
	live, err := s.lookup(applicantID)
	if err != nil {
		return nil, nil, err
	}
	return live.subscribe(fn), live.session.Done(), nil
}

// ActiveSessions returns snapshots of every live session.
func (s *TestSessionService) ActiveSessions() []proctor.State {
	s.mu.Lock()
	lives := make([]*liveSession, 0, len(s.sessions))
	for _, l := range s.sessions {
		lives = append(lives, l)
	}
	s.mu.Unlock()

	states := make([]proctor.State, 0, len(lives))
	for _, l := range lives {
		states = append(states, l.session.Snapshot())
	}
	return states
}

// ActiveCount returns the number of live sessions.
func (s *TestSessionService) ActiveCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Shutdown discards every live session without submitting. Sessions already
// disqualified and waiting out their grace delay are submitted instead.
func (s *TestSessionService) Shutdown() {
	s.mu.Lock()
	lives := make([]*liveSession, 0, len(s.sessions))
	for _, l := range s.sessions {
		lives = append(lives, l)
	}
	s.mu.Unlock()

	for _, l := range lives {
		l.session.Abort()
	}
	if len(lives) > 0 {
		s.log.Warn().Int("count", len(lives)).Msg("Discarded live sessions on shutdown")
	}
}

// SubmitTestResult queues a finished session's result for persistence.
func (s *TestSessionService) SubmitTestResult(ctx context.Context, applicantID string, data model.TestData, reason model.SubmitReason) error {
	job := model.ResultJob{
		ApplicantID: applicantID,
		TestData:    data,
		Reason:      reason,
		SubmittedAt: time.Now(),
	}
	if err := s.queue.Push(ctx, config.WorkerKey.PersistResultsQueue, job); err != nil {
		return fmt.Errorf("queue result: %w", err)
	}

	s.publish(model.MonitorEvent{
		Type:        model.MonitorSubmitted,
		ApplicantID: applicantID,
		Data: map[string]any{
			"score":        data.Score,
			"total":        data.TotalQuestions,
			"percentage":   data.Percentage,
			"disqualified": data.Disqualified,
			"reason":       reason,
		},
		At: job.SubmittedAt,
	})
	return nil
}

// onNotice fans a session notice out to subscribers and records violations.
func (s *TestSessionService) onNotice(id string, live *liveSession, n proctor.Notice) {
	live.broadcast(n)

	if !n.IsViolation() {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), sideEffectTimeout)
	defer cancel()

	event := model.ViolationEvent{
		ApplicantID:      id,
		Kind:             n.Violation,
		TabSwitchCount:   n.State.TabSwitchCount,
		CopyAttemptCount: n.State.CopyAttemptCount,
		RecordedAt:       time.Now(),
	}
	if err := s.queue.Push(ctx, config.WorkerKey.PersistViolationsQueue, event); err != nil {
		s.log.Error().Err(err).Str("applicant_id", id).Msg("Failed to queue violation")
	}

	eventType := model.MonitorViolation
	if n.Kind == proctor.NoticeDisqualified {
		eventType = model.MonitorDisqualified
	}
	s.publish(model.MonitorEvent{
		Type:        eventType,
		ApplicantID: id,
		Data: map[string]any{
			"kind":               n.Violation,
			"tab_switch_count":   n.State.TabSwitchCount,
			"copy_attempt_count": n.State.CopyAttemptCount,
			"status":             n.State.Status,
		},
		At: event.RecordedAt,
	})
}

func (s *TestSessionService) publish(ev model.MonitorEvent) {
	ctx, cancel := context.WithTimeout(context.Background(), sideEffectTimeout)
	defer cancel()
	if err := s.queue.Publish(ctx, config.CacheKey.ProctorMonitorChannel(), ev); err != nil {
		s.log.Warn().Err(err).Str("event", string(ev.Type)).Msg("Failed to publish monitor event")
	}
}

func candidateQuestions(qs []model.Question) []model.QuestionForCandidate {
	out := make([]model.QuestionForCandidate, len(qs))
	for i, q := range qs {
		out[i] = q.ForCandidate()
	}
	return out
}
