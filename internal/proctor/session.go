// Package proctor implements the timed, monitored test session a candidate sits.
//
// A Session owns the countdown, the candidate's answers and the integrity
// counters. It reaches a terminal state exactly once and hands the tallied
// result to a Submitter at most once, whatever combination of manual submit,
// timeout and disqualification raced to end it.
package proctor

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/stemsi/recruit-backend/internal/model"
	"github.com/stemsi/recruit-backend/internal/scoring"
)

// Status is the lifecycle state of a session.
type Status string

const (
	StatusActive       Status = "ACTIVE"
	StatusWarned       Status = "WARNED"
	StatusDisqualified Status = "DISQUALIFIED"
	StatusSubmitted    Status = "SUBMITTED"
	// StatusDiscarded marks a session aborted without a submission.
	StatusDiscarded Status = "DISCARDED"
)

var (
	ErrNoQuestions       = errors.New("proctor: question set is empty")
	ErrInvalidDuration   = errors.New("proctor: duration must be positive")
	ErrMissingApplicant  = errors.New("proctor: applicant id is required")
	ErrDuplicateQuestion = errors.New("proctor: duplicate question id")
	ErrSessionClosed     = errors.New("proctor: session no longer accepts input")
	ErrUnknownQuestion   = errors.New("proctor: question is not part of this test")
	ErrInvalidAnswer     = errors.New("proctor: answer is not valid for this question")
	ErrInvalidIndex      = errors.New("proctor: question index out of range")
)

const submitTimeout = 10 * time.Second

// Submitter receives the final result of a session.
type Submitter interface {
	SubmitTestResult(ctx context.Context, applicantID string, data model.TestData, reason model.SubmitReason) error
}

// Rules holds the proctoring thresholds.
type Rules struct {
	TimeWarningAt     int // seconds remaining
	TabSwitchLimit    int
	WarningClearDelay time.Duration
	DisqualifyGrace   time.Duration
}

// DefaultRules returns the standard thresholds.
func DefaultRules() Rules {
	return Rules{
		TimeWarningAt:     300,
		TabSwitchLimit:    3,
		WarningClearDelay: 5 * time.Second,
		DisqualifyGrace:   3 * time.Second,
	}
}

func (r Rules) withDefaults() Rules {
	d := DefaultRules()
	if r.TimeWarningAt < 0 {
		r.TimeWarningAt = d.TimeWarningAt
	}
	if r.TabSwitchLimit <= 0 {
		r.TabSwitchLimit = d.TabSwitchLimit
	}
	if r.WarningClearDelay <= 0 {
		r.WarningClearDelay = d.WarningClearDelay
	}
	if r.DisqualifyGrace < 0 {
		r.DisqualifyGrace = d.DisqualifyGrace
	}
	return r
}

// Config wires a session to its collaborators. Only Rules is optional in spirit;
// nil Clock falls back to SystemClock and nil Submitter/Notify are skipped.
type Config struct {
	Rules     Rules
	Clock     Clock
	Monitor   IntegrityMonitor
	Submitter Submitter
	// Notify receives notices outside the session lock. It may be called
	// concurrently from timer goroutines.
	Notify func(Notice)
	Log    zerolog.Logger
}

// State is a point-in-time copy of the session.
type State struct {
	ApplicantID          string             `json:"applicant_id"`
	Status               Status             `json:"status"`
	TimeRemainingSeconds int                `json:"time_remaining_seconds"`
	DurationSeconds      int                `json:"duration_seconds"`
	Answers              model.AnswerRecord `json:"answers"`
	TabSwitchCount       int                `json:"tab_switch_count"`
	CopyAttemptCount     int                `json:"copy_attempt_count"`
	CurrentQuestionIndex int                `json:"current_question_index"`
}

type submission struct {
	data   model.TestData
	reason model.SubmitReason
}

// Session is a single candidate's live test. Safe for concurrent use.
type Session struct {
	mu sync.Mutex

	applicantID string
	questions   []model.Question
	positions   map[int]int
	duration    int

	rules     Rules
	clock     Clock
	submitter Submitter
	notify    func(Notice)
	log       zerolog.Logger

	status        Status
	remaining     int
	answers       model.AnswerRecord
	tabSwitches   int
	copyAttempts  int
	current       int
	timeWarned    bool
	finalized     bool
	result        *model.TestData
	stopTick      func()
	unsubscribe   func()
	cancelClear   func()
	cancelGrace   func()
	done          chan struct{}
	closeDoneOnce sync.Once
}

// Start validates the inputs, starts the countdown and subscribes to the monitor.
func Start(applicantID string, questions []model.Question, durationSeconds int, cfg Config) (*Session, error) {
	if applicantID == "" {
		return nil, ErrMissingApplicant
	}
	if len(questions) == 0 {
		return nil, ErrNoQuestions
	}
	if durationSeconds <= 0 {
		return nil, ErrInvalidDuration
	}

	positions := make(map[int]int, len(questions))
	for i, q := range questions {
		if _, dup := positions[q.ID]; dup {
			return nil, fmt.Errorf("%w: %d", ErrDuplicateQuestion, q.ID)
		}
		positions[q.ID] = i
	}

	clock := cfg.Clock
	if clock == nil {
		clock = SystemClock
	}

	s := &Session{
		applicantID: applicantID,
		questions:   append([]model.Question(nil), questions...),
		positions:   positions,
		duration:    durationSeconds,
		rules:       cfg.Rules.withDefaults(),
		clock:       clock,
		submitter:   cfg.Submitter,
		notify:      cfg.Notify,
		log:         cfg.Log.With().Str("applicant_id", applicantID).Logger(),
		status:      StatusActive,
		remaining:   durationSeconds,
		answers:     make(model.AnswerRecord),
		done:        make(chan struct{}),
	}

	s.mu.Lock()
	s.stopTick = clock.Every(time.Second, s.Tick)
	if cfg.Monitor != nil {
		s.unsubscribe = cfg.Monitor.OnViolation(s.handleViolation)
	}
	s.mu.Unlock()

	s.log.Info().
		Int("questions", len(questions)).
		Int("duration_seconds", durationSeconds).
		Msg("Test session started")
	return s, nil
}

// ApplicantID returns the candidate this session belongs to.
func (s *Session) ApplicantID() string { return s.applicantID }

// Questions returns the fixed question set in display order.
func (s *Session) Questions() []model.Question {
	return append([]model.Question(nil), s.questions...)
}

// Done is closed once the session has been submitted or discarded.
func (s *Session) Done() <-chan struct{} { return s.done }

// Snapshot returns a copy of the current state.
func (s *Session) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Result returns the submitted payload once the session has finalized with a submission.
func (s *Session) Result() (model.TestData, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.result == nil {
		return model.TestData{}, false
	}
	return *s.result, true
}

// Tick advances the countdown by one second.
func (s *Session) Tick() {
	s.mu.Lock()
	if !s.acceptingLocked() {
		s.mu.Unlock()
		return
	}

	prev := s.remaining
	if s.remaining > 0 {
		s.remaining--
	}

	var notices []Notice
	if !s.timeWarned && prev > s.rules.TimeWarningAt && s.remaining <= s.rules.TimeWarningAt && s.remaining > 0 {
		s.timeWarned = true
		notices = append(notices, s.noticeLocked(NoticeTimeWarning, "", fmt.Sprintf("%d minutes remaining", (s.remaining+59)/60)))
	}
	notices = append(notices, s.noticeLocked(NoticeTick, "", ""))

	var sub *submission
	if s.remaining == 0 {
		sub = s.finalizeLocked(model.SubmitReasonTimeout)
	}
	s.mu.Unlock()

	s.emit(notices...)
	if sub != nil {
		s.log.Info().Msg("Time expired, submitting")
		s.deliver(sub)
	}
}

// SelectAnswer records or overwrites the answer for questionID.
func (s *Session) SelectAnswer(questionID int, value model.AnswerValue) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.acceptingLocked() {
		return ErrSessionClosed
	}
	pos, ok := s.positions[questionID]
	if !ok {
		return fmt.Errorf("%w: %d", ErrUnknownQuestion, questionID)
	}
	if value.IsZero() {
		return ErrInvalidAnswer
	}
	if idx, isIndex := value.Index(); isIndex {
		if opts := s.questions[pos].Options; len(opts) > 0 && idx >= len(opts) {
			return fmt.Errorf("%w: option %d", ErrInvalidAnswer, idx)
		}
	}

	s.answers[questionID] = value
	s.current = pos
	return nil
}

// GoTo moves the candidate to the question at index.
func (s *Session) GoTo(index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.acceptingLocked() {
		return ErrSessionClosed
	}
	if index < 0 || index >= len(s.questions) {
		return ErrInvalidIndex
	}
	s.current = index
	return nil
}

// RecordVisibilityLoss counts a tab switch or window blur.
func (s *Session) RecordVisibilityLoss() {
	s.mu.Lock()
	if !s.acceptingLocked() {
		s.mu.Unlock()
		return
	}

	s.tabSwitches++
	n := s.tabSwitches
	limit := s.rules.TabSwitchLimit

	var notice Notice
	switch {
	case n >= limit:
		s.status = StatusDisqualified
		s.teardownLocked()
		s.cancelGrace = s.clock.After(s.rules.DisqualifyGrace, func() {
			s.forceSubmit(model.SubmitReasonDisqualified)
		})
		notice = s.noticeLocked(NoticeDisqualified, model.ViolationVisibility, "Disqualified for leaving the test window too many times")
	case n == limit-1:
		s.warnLocked()
		notice = s.noticeLocked(NoticeFinalWarning, model.ViolationVisibility, "Final warning: leaving the test window again will disqualify you")
	default:
		s.warnLocked()
		notice = s.noticeLocked(NoticeTabWarning, model.ViolationVisibility, fmt.Sprintf("Warning %d of %d: stay on the test window", n, limit-1))
	}
	s.mu.Unlock()

	if notice.Kind == NoticeDisqualified {
		s.log.Warn().Int("tab_switch_count", n).Msg("Candidate disqualified")
	} else {
		s.log.Info().Int("tab_switch_count", n).Msg("Visibility loss recorded")
	}
	s.emit(notice)
}

// RecordClipboardAttempt blocks a clipboard action. Copy and cut are counted, paste is not.
func (s *Session) RecordClipboardAttempt(kind model.ViolationKind) {
	s.mu.Lock()
	if !s.acceptingLocked() {
		s.mu.Unlock()
		return
	}

	switch kind {
	case model.ViolationCopy, model.ViolationCut:
		s.copyAttempts++
	case model.ViolationPaste:
	default:
		s.mu.Unlock()
		return
	}
	notice := s.noticeLocked(NoticeClipboardBlocked, kind, "Clipboard actions are disabled during the test")
	s.mu.Unlock()

	s.emit(notice)
}

// Submit ends the session at the candidate's request.
func (s *Session) Submit() error {
	s.mu.Lock()
	if !s.acceptingLocked() {
		s.mu.Unlock()
		return ErrSessionClosed
	}
	sub := s.finalizeLocked(model.SubmitReasonManual)
	s.mu.Unlock()

	s.deliver(sub)
	return nil
}

// Abort discards the session without submitting. A disqualified session
// still inside its grace delay is submitted at once instead.
func (s *Session) Abort() {
	s.mu.Lock()
	if s.finalized {
		s.mu.Unlock()
		return
	}
	if s.status == StatusDisqualified {
		sub := s.finalizeLocked(model.SubmitReasonDisqualified)
		s.mu.Unlock()

		s.log.Info().Msg("Aborted during disqualification grace, submitting now")
		s.deliver(sub)
		return
	}
	s.finalized = true
	s.status = StatusDiscarded
	s.teardownLocked()
	if s.cancelGrace != nil {
		s.cancelGrace()
		s.cancelGrace = nil
	}
	s.mu.Unlock()

	s.log.Info().Msg("Test session discarded")
	s.closeDone()
}

func (s *Session) forceSubmit(reason model.SubmitReason) {
	s.mu.Lock()
	sub := s.finalizeLocked(reason)
	s.mu.Unlock()

	if sub != nil {
		s.deliver(sub)
	}
}

func (s *Session) handleViolation(kind model.ViolationKind) {
	switch kind {
	case model.ViolationVisibility:
		s.RecordVisibilityLoss()
	case model.ViolationCopy, model.ViolationCut, model.ViolationPaste:
		s.RecordClipboardAttempt(kind)
	default:
		s.log.Debug().Str("kind", string(kind)).Msg("Ignoring unknown violation")
	}
}

func (s *Session) clearWarning() {
	s.mu.Lock()
	if s.finalized || s.status != StatusWarned {
		s.mu.Unlock()
		return
	}
	s.status = StatusActive
	s.cancelClear = nil
	notice := s.noticeLocked(NoticeWarningCleared, "", "")
	s.mu.Unlock()

	s.emit(notice)
}

func (s *Session) acceptingLocked() bool {
	return !s.finalized && (s.status == StatusActive || s.status == StatusWarned)
}

func (s *Session) warnLocked() {
	s.status = StatusWarned
	if s.cancelClear != nil {
		s.cancelClear()
	}
	s.cancelClear = s.clock.After(s.rules.WarningClearDelay, s.clearWarning)
}

// finalizeLocked moves the session to SUBMITTED and builds the payload.
// It returns nil when the session already finalized.
func (s *Session) finalizeLocked(reason model.SubmitReason) *submission {
	if s.finalized {
		return nil
	}
	s.finalized = true

	disqualified := s.status == StatusDisqualified
	s.status = StatusSubmitted
	s.teardownLocked()
	if s.cancelGrace != nil {
		s.cancelGrace()
		s.cancelGrace = nil
	}

	total := len(s.questions)
	correct, _ := scoring.Tally(s.questions, s.answers)
	data := model.TestData{
		Answers:        s.answers.Clone(),
		Score:          correct,
		TotalQuestions: total,
		Percentage:     scoring.Percentage(correct, total),
		TimeSpent:      s.duration - s.remaining,
		TabSwitchCount: s.tabSwitches,
		CopyAttempts:   s.copyAttempts,
		Disqualified:   disqualified,
	}
	s.result = &data
	return &submission{data: data, reason: reason}
}

// teardownLocked stops the countdown, the warning timer and the monitor subscription.
func (s *Session) teardownLocked() {
	if s.stopTick != nil {
		s.stopTick()
		s.stopTick = nil
	}
	if s.cancelClear != nil {
		s.cancelClear()
		s.cancelClear = nil
	}
	if s.unsubscribe != nil {
		s.unsubscribe()
		s.unsubscribe = nil
	}
}

func (s *Session) deliver(sub *submission) {
	defer s.closeDone()

	s.mu.Lock()
	state := s.snapshotLocked()
	s.mu.Unlock()

	if s.submitter != nil {
		ctx, cancel := context.WithTimeout(context.Background(), submitTimeout)
		err := s.submitter.SubmitTestResult(ctx, s.applicantID, sub.data, sub.reason)
		cancel()
		if err != nil {
			s.log.Error().Err(err).Str("reason", string(sub.reason)).Msg("Failed to submit test result")
			s.emit(Notice{Kind: NoticeSubmitFailed, Message: "Your answers were recorded but could not be sent. Please contact the recruiter.", State: state, Result: &sub.data})
			return
		}
	}

	s.log.Info().
		Str("reason", string(sub.reason)).
		Int("score", sub.data.Score).
		Int("total", sub.data.TotalQuestions).
		Bool("disqualified", sub.data.Disqualified).
		Msg("Test submitted")
	s.emit(Notice{Kind: NoticeSubmitted, State: state, Result: &sub.data})
}

func (s *Session) closeDone() {
	s.closeDoneOnce.Do(func() { close(s.done) })
}

func (s *Session) snapshotLocked() State {
	return State{
		ApplicantID:          s.applicantID,
		Status:               s.status,
		TimeRemainingSeconds: s.remaining,
		DurationSeconds:      s.duration,
		Answers:              s.answers.Clone(),
		TabSwitchCount:       s.tabSwitches,
		CopyAttemptCount:     s.copyAttempts,
		CurrentQuestionIndex: s.current,
	}
}

func (s *Session) noticeLocked(kind NoticeKind, violation model.ViolationKind, msg string) Notice {
	return Notice{Kind: kind, Violation: violation, Message: msg, State: s.snapshotLocked()}
}

func (s *Session) emit(notices ...Notice) {
	if s.notify == nil {
		return
	}
	for _, n := range notices {
		s.notify(n)
	}
}
