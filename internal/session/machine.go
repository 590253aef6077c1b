package session

import (
	"context"
	"strconv"
	"sync"
	"time"

	"trivia-service/internal/apperr"
	"trivia-service/internal/event"
	"trivia-service/internal/logger"
	"trivia-service/internal/models"
	"trivia-service/internal/repository"
	"trivia-service/internal/scoring"

	"github.com/facebookgo/clock"
	"github.com/google/uuid"
)

const DefaultTickInterval = time.Second

// Machine owns the quiz session of the active identity. All state changes go
// through its methods; the HTTP layer and the timer goroutine share it.
type Machine struct {
	mu sync.Mutex

	repo      *repository.SessionRepository
	log       *logger.Logger
	publisher event.Publisher
	clock     clock.Clock
	tickEvery time.Duration
	newID     func() string

	owner string
	state models.SessionState

	// generation is bumped on every transition that supersedes a running
	// timer; ticks carrying an older value are ignored.
	generation uint64
	stopTimer  func()

	subs    map[int]chan Snapshot
	nextSub int
	closed  bool
}

type Option func(*Machine)

func WithClock(c clock.Clock) Option {
	return func(m *Machine) { m.clock = c }
}

func WithTickInterval(d time.Duration) Option {
	return func(m *Machine) {
		if d > 0 {
			m.tickEvery = d
		}
	}
}

func WithPublisher(p event.Publisher) Option {
	return func(m *Machine) { m.publisher = p }
}

func WithIDGenerator(fn func() string) Option {
	return func(m *Machine) { m.newID = fn }
}

func NewMachine(repo *repository.SessionRepository, log *logger.Logger, opts ...Option) *Machine {
	m := &Machine{
		repo:      repo,
		log:       log.With("component", "SessionMachine"),
		publisher: event.NewLogPublisher(logger.Nop()),
		clock:     clock.New(),
		tickEvery: DefaultTickInterval,
		newID:     uuid.NewString,
		subs:      make(map[int]chan Snapshot),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Start begins a new attempt with the given questions. It is refused while
// another attempt is in progress.
func (m *Machine) Start(ctx context.Context, cfg models.QuizConfig, questions []models.Question) (Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.clock.Now()
	if err := m.requireOwnerLocked(); err != nil {
		return m.snapshotLocked(now), err
	}
	m.expireIfDueLocked(ctx, now)
	if m.state.Status(now) == models.StatusInProgress {
		return m.snapshotLocked(now), apperr.Invariant("quiz_in_progress", "A quiz is already in progress, reset it first")
	}
	if err := cfg.Validate(); err != nil {
		return m.snapshotLocked(now), err
	}
	if err := validateQuestions(questions); err != nil {
		return m.snapshotLocked(now), err
	}

	fresh := models.SessionState{
		SessionID:   m.newID(),
		Config:      &cfg,
		Questions:   questions,
		Answers:     []models.AnswerRecord{},
		StartedAtMs: models.EpochMs(now),
	}
	m.state = fresh.Clone()
	m.generation++
	m.persistLocked(ctx)
	m.startTimerLocked()

	m.log.Info("Quiz started", "owner", m.owner, "session_id", m.state.SessionID,
		"questions", len(questions), "time_limit_minutes", cfg.TimeLimitMinutes)
	m.publishLocked(event.SessionStarted, map[string]interface{}{
		"owner":              m.owner,
		"session_id":         m.state.SessionID,
		"question_count":     len(questions),
		"time_limit_minutes": cfg.TimeLimitMinutes,
	})
	return m.broadcastLocked(now), nil
}

// Answer records value for the current question.
func (m *Machine) Answer(ctx context.Context, value string) (Snapshot, error) {
	return m.answer(ctx, -1, value)
}

// AnswerQuestion is Answer guarded by the index the caller believes is
// current, so a repeated submission for an earlier question is refused.
func (m *Machine) AnswerQuestion(ctx context.Context, index int, value string) (Snapshot, error) {
	if index < 0 {
		return m.Snapshot(), apperr.Validation("invalid_question_index", "Question index must not be negative")
	}
	return m.answer(ctx, index, value)
}

func (m *Machine) answer(ctx context.Context, index int, value string) (Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.clock.Now()
	if err := m.requireOwnerLocked(); err != nil {
		return m.snapshotLocked(now), err
	}
	m.expireIfDueLocked(ctx, now)
	if m.state.Status(now) != models.StatusInProgress {
		return m.snapshotLocked(now), apperr.Invariant("not_in_progress", "No quiz is in progress")
	}
	current := m.state.CurrentIndex
	if index >= 0 && index != current {
		return m.snapshotLocked(now), apperr.Invariant("stale_answer", "That question has already been answered")
	}
	if len(m.state.Answers) > current {
		return m.snapshotLocked(now), apperr.Invariant("already_answered", "That question has already been answered")
	}

	m.state.Answers = append(m.state.Answers, models.AnswerRecord{
		QuestionIndex: current,
		Value:         value,
		AnsweredAtMs:  models.EpochMs(now),
	})
	if current+1 < len(m.state.Questions) {
		m.state.CurrentIndex = current + 1
	}
	m.publishLocked(event.AnswerRecorded, map[string]interface{}{
		"owner":          m.owner,
		"session_id":     m.state.SessionID,
		"question_index": current,
	})
	if m.state.AllAnswered() {
		m.completeLocked(models.CompletionAllAnswered, models.EpochMs(now))
	}
	m.persistLocked(ctx)
	return m.broadcastLocked(now), nil
}

// Resume switches the machine to identity and loads its saved session. A nil
// identity detaches the machine. Unreadable saved data resumes as Idle.
func (m *Machine) Resume(ctx context.Context, identity *models.Identity) Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.clock.Now()
	m.generation++
	m.stopTimerLocked()
	m.state = models.SessionState{}
	m.owner = ""
	if identity == nil {
		return m.broadcastLocked(now)
	}
	m.owner = identity.Name

	loaded, err := m.repo.Load(ctx, m.owner)
	switch {
	case apperr.IsKind(err, apperr.KindStoreCorrupt):
		m.log.Warn("Discarding unreadable session", "owner", m.owner, "error", err)
		if err := m.repo.Delete(ctx, m.owner); err != nil {
			m.log.Error("Failed to delete unreadable session", "owner", m.owner, "error", err)
		}
	case err != nil:
		m.log.Error("Failed to load session", "owner", m.owner, "error", err)
	case loaded != nil:
		m.state = *loaded
	}

	if !m.state.IsEmpty() {
		m.log.Info("Session resumed", "owner", m.owner, "session_id", m.state.SessionID,
			"answered", len(m.state.Answers), "remaining_seconds", m.state.RemainingSeconds(now))
		m.publishLocked(event.SessionResumed, map[string]interface{}{
			"owner":      m.owner,
			"session_id": m.state.SessionID,
		})
		if !m.expireIfDueLocked(ctx, now) && m.state.Status(now) == models.StatusInProgress {
			m.startTimerLocked()
		}
	}
	return m.broadcastLocked(now)
}

// Reset discards the current session, in memory and in the store.
func (m *Machine) Reset(ctx context.Context) (Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.clock.Now()
	if err := m.requireOwnerLocked(); err != nil {
		return m.snapshotLocked(now), err
	}
	sessionID := m.state.SessionID
	m.generation++
	m.stopTimerLocked()
	m.state = models.SessionState{}
	if err := m.repo.Delete(ctx, m.owner); err != nil {
		m.log.Error("Failed to delete session", "owner", m.owner, "error", err)
	}
	m.log.Info("Session reset", "owner", m.owner, "session_id", sessionID)
	m.publishLocked(event.SessionReset, map[string]interface{}{
		"owner":      m.owner,
		"session_id": sessionID,
	})
	return m.broadcastLocked(now), nil
}

// SetLoading flags an in-flight question fetch. The flag is never persisted.
func (m *Machine) SetLoading(loading bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state.Loading == loading {
		return
	}
	m.state.Loading = loading
	m.broadcastLocked(m.clock.Now())
}

func (m *Machine) RemainingSeconds() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.RemainingSeconds(m.clock.Now())
}

func (m *Machine) Status() models.Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.Status(m.clock.Now())
}

func (m *Machine) Score() models.Score {
	m.mu.Lock()
	defer m.mu.Unlock()
	return scoring.Calculate(m.state.Questions, m.state.Answers)
}

// Report scores the current session. It is available at any point after a
// start, not only once the quiz is complete.
func (m *Machine) Report() (models.QuizReport, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state.IsEmpty() {
		return models.QuizReport{}, apperr.Invariant("no_quiz", "There is no quiz to report on")
	}
	return scoring.Report(&m.state, models.EpochMs(m.clock.Now())), nil
}

func (m *Machine) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshotLocked(m.clock.Now())
}

func (m *Machine) Owner() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.owner
}

// Subscribe returns a channel receiving a snapshot after every change and on
// every timer tick. Slow readers only see the latest snapshot. The returned
// func unsubscribes and closes the channel.
func (m *Machine) Subscribe() (<-chan Snapshot, func()) {
	m.mu.Lock()
	defer m.mu.Unlock()

	ch := make(chan Snapshot, 1)
	if m.closed {
		close(ch)
		return ch, func() {}
	}
	id := m.nextSub
	m.nextSub++
	m.subs[id] = ch
	ch <- m.snapshotLocked(m.clock.Now())

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			m.mu.Lock()
			defer m.mu.Unlock()
			if sub, ok := m.subs[id]; ok {
				delete(m.subs, id)
				close(sub)
			}
		})
	}
}

// Close stops the timer and closes every subscription.
func (m *Machine) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	m.generation++
	m.stopTimerLocked()
	for id, ch := range m.subs {
		delete(m.subs, id)
		close(ch)
	}
}

func (m *Machine) requireOwnerLocked() error {
	if m.owner == "" {
		return apperr.Unauthenticated("Please log in first")
	}
	return nil
}

// expireIfDueLocked records the Complete transition for a session whose time
// ran out or whose answers are all in, if that has not been recorded yet.
func (m *Machine) expireIfDueLocked(ctx context.Context, now time.Time) bool {
	if m.state.IsEmpty() || m.state.Completion != nil {
		return false
	}
	switch {
	case m.state.AllAnswered():
		m.completeLocked(models.CompletionAllAnswered, m.lastAnswerMsLocked())
	case m.state.RemainingSeconds(now) == 0:
		deadline := m.state.StartedAtMs + m.state.Config.TimeLimit().Milliseconds()
		m.completeLocked(models.CompletionTimeExpired, deadline)
	default:
		return false
	}
	m.persistLocked(ctx)
	return true
}

func (m *Machine) completeLocked(kind models.CompletionType, atMs int64) {
	if m.state.Completion != nil {
		return
	}
	m.state.Completion = &models.Completion{Type: kind, AtMs: atMs}
	m.generation++
	m.stopTimerLocked()

	score := scoring.Calculate(m.state.Questions, m.state.Answers)
	m.log.Info("Quiz complete", "owner", m.owner, "session_id", m.state.SessionID,
		"completion", kind, "percentage", score.Percentage)
	m.publishLocked(event.SessionCompleted, map[string]interface{}{
		"owner":      m.owner,
		"session_id": m.state.SessionID,
		"completion": kind,
		"score":      score,
	})
}

func (m *Machine) lastAnswerMsLocked() int64 {
	if n := len(m.state.Answers); n > 0 {
		return m.state.Answers[n-1].AnsweredAtMs
	}
	return models.EpochMs(m.clock.Now())
}

func (m *Machine) persistLocked(ctx context.Context) {
	if m.state.IsEmpty() || m.owner == "" {
		return
	}
	if err := m.repo.Save(ctx, m.owner, &m.state); err != nil {
		m.log.Error("Failed to persist session", "owner", m.owner, "error", err)
	}
}

func (m *Machine) publishLocked(eventType string, payload interface{}) {
	if err := m.publisher.Publish(eventType, payload); err != nil {
		m.log.Warn("Failed to publish event", "type", eventType, "error", err)
	}
}

func (m *Machine) snapshotLocked(now time.Time) Snapshot {
	return buildSnapshot(m.owner, &m.state, now)
}

// broadcastLocked sends the current snapshot to every subscriber, replacing
// any snapshot they have not read yet, and returns it.
func (m *Machine) broadcastLocked(now time.Time) Snapshot {
	snap := m.snapshotLocked(now)
	for _, ch := range m.subs {
		select {
		case ch <- snap:
			continue
		default:
		}
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- snap:
		default:
		}
	}
	return snap
}

func validateQuestions(questions []models.Question) error {
	if len(questions) == 0 {
		return apperr.Validation("no_questions", "Could not fetch questions. Please try different settings.")
	}
	for i, q := range questions {
		count := 0
		for _, a := range q.Answers {
			if a == q.CorrectAnswer {
				count++
			}
		}
		if q.Text == "" || count != 1 {
			return apperr.Validation("invalid_question", "Question "+strconv.Itoa(i+1)+" is malformed")
		}
	}
	return nil
}
