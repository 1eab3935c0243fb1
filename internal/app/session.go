package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"examship-quiz-service/internal/domain"
	"github.com/google/uuid"
)

// Session drives one play-through of a fixed question list.
// Every transition (pick, tick, advance, exit) runs under mu, so the two event
// sources (learner actions and timer ticks) are serialized and whichever arrives
// first for a question wins.
type Session struct {
	id         string
	topic      string
	now        func() time.Time
	newID      func() string
	onComplete func(domain.QuizResult)
	onExit     func()
	timeLimit  int

	mu          sync.Mutex
	questions   []domain.Question
	rec         *answerRecorder
	current     int
	phase       domain.Phase
	selected    *int
	timer       *Timer
	subscribers map[chan domain.SessionView]struct{}
	done        chan struct{}
}

// SessionOption customizes a Session at construction.
type SessionOption func(*Session)

// WithClock allows deterministic timestamps in tests.
func WithClock(now func() time.Time) SessionOption {
	return func(s *Session) { s.now = now }
}

// WithTimeLimit overrides the per-question countdown.
func WithTimeLimit(seconds int) SessionOption {
	return func(s *Session) { s.timeLimit = seconds }
}

// WithIDGenerator overrides how session and quiz ids are minted.
func WithIDGenerator(fn func() string) SessionOption {
	return func(s *Session) { s.newID = fn }
}

// WithOnComplete registers the callback fired exactly once when the session completes.
func WithOnComplete(fn func(domain.QuizResult)) SessionOption {
	return func(s *Session) { s.onComplete = fn }
}

// WithOnExit registers the callback fired at most once when the session is abandoned.
func WithOnExit(fn func()) SessionOption {
	return func(s *Session) { s.onExit = fn }
}

// NewSession validates the questions and arms the timer on the first one.
// The caller's slice is copied; any pre-set user answers are cleared.
func NewSession(questions []domain.Question, topic string, opts ...SessionOption) (*Session, error) {
	if len(questions) == 0 {
		return nil, domain.ErrEmptySession
	}
	if err := domain.ValidateQuestions(questions); err != nil {
		return nil, err
	}

	s := &Session{
		topic:       topic,
		now:         time.Now,
		newID:       uuid.NewString,
		timeLimit:   DefaultTimeLimit,
		phase:       domain.PhaseAwaitingAnswer,
		subscribers: make(map[chan domain.SessionView]struct{}),
		done:        make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.questions = domain.CloneQuestions(questions)
	for i := range s.questions {
		s.questions[i].UserAnswer = nil
	}
	s.id = s.newID()
	s.rec = newAnswerRecorder(s.questions)
	s.timer = NewTimer(s.timeLimit)
	s.timer.Start()
	return s, nil
}

func (s *Session) ID() string { return s.id }

func (s *Session) Topic() string { return s.topic }

// Done is closed once the session completes or is exited.
func (s *Session) Done() <-chan struct{} { return s.done }

// View returns a snapshot of the current state.
func (s *Session) View() domain.SessionView {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.viewLocked()
}

// Closed reports whether the session has completed or been exited.
func (s *Session) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closedLocked()
}

// Select records the learner's pick for the current question.
func (s *Session) Select(option int) (domain.AnswerOutcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.phase {
	case domain.PhaseCompleted, domain.PhaseExited:
		return domain.AnswerOutcome{}, domain.ErrSessionClosed
	case domain.PhaseAnswered:
		return domain.AnswerOutcome{}, domain.ErrAlreadyAnswered
	}

	correct, err := s.rec.record(s.current, option)
	if err != nil {
		return domain.AnswerOutcome{}, err
	}
	s.timer.Stop()
	picked := option
	s.selected = &picked
	s.phase = domain.PhaseAnswered
	s.broadcastLocked()

	q := s.questions[s.current]
	return domain.AnswerOutcome{
		QuestionID:         q.ID,
		Option:             option,
		Correct:            correct,
		CorrectAnswerIndex: q.CorrectAnswerIndex,
		Explanation:        q.Explanation,
		Score:              s.rec.score,
		Missed:             s.rec.missed,
	}, nil
}

// Tick advances the countdown by one second. It returns true when this tick
// timed the current question out. Ticks outside AwaitingAnswer are inert.
func (s *Session) Tick() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase != domain.PhaseAwaitingAnswer {
		return false
	}
	expired := s.timer.Tick()
	if expired {
		if err := s.rec.recordTimeout(s.current); err == nil {
			s.phase = domain.PhaseAnswered
		}
	}
	s.broadcastLocked()
	return expired
}

// Advance moves past an answered question. On the last question it completes
// the session and returns the result; the view then reflects the final state.
func (s *Session) Advance() (domain.SessionView, *domain.QuizResult, error) {
	s.mu.Lock()

	switch s.phase {
	case domain.PhaseCompleted, domain.PhaseExited:
		s.mu.Unlock()
		return domain.SessionView{}, nil, domain.ErrSessionClosed
	case domain.PhaseAwaitingAnswer:
		s.mu.Unlock()
		return domain.SessionView{}, nil, domain.ErrNotAnswered
	}

	if s.current < len(s.questions)-1 {
		s.current++
		s.selected = nil
		s.phase = domain.PhaseAwaitingAnswer
		s.timer.Start()
		view := s.broadcastLocked()
		s.mu.Unlock()
		return view, nil, nil
	}

	result, err := BuildResult(s.newID(), s.questions, s.rec.score, s.topic, s.now())
	if err != nil {
		s.mu.Unlock()
		return domain.SessionView{}, nil, fmt.Errorf("build result: %w", err)
	}
	s.phase = domain.PhaseCompleted
	s.timer.Stop()
	view := s.broadcastLocked()
	close(s.done)
	onComplete := s.onComplete
	s.mu.Unlock()

	if onComplete != nil {
		onComplete(result)
	}
	return view, &result, nil
}

// Exit abandons the session without producing a result.
func (s *Session) Exit() error {
	s.mu.Lock()
	if s.closedLocked() {
		s.mu.Unlock()
		return domain.ErrSessionClosed
	}
	s.phase = domain.PhaseExited
	s.timer.Stop()
	s.broadcastLocked()
	close(s.done)
	onExit := s.onExit
	s.mu.Unlock()

	if onExit != nil {
		onExit()
	}
	return nil
}

// Run ticks the session every interval until it closes or ctx is canceled.
func (s *Session) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-s.done:
			return
		case <-ticker.C:
			s.Tick()
		}
	}
}

// Subscribe returns a channel of views, primed with the current one.
// The caller must invoke the returned cancel function to avoid leaks.
func (s *Session) Subscribe() (<-chan domain.SessionView, func()) {
	ch := make(chan domain.SessionView, 8)

	s.mu.Lock()
	s.subscribers[ch] = struct{}{}
	ch <- s.viewLocked()
	s.mu.Unlock()

	cancel := func() {
		s.mu.Lock()
		if _, ok := s.subscribers[ch]; ok {
			delete(s.subscribers, ch)
			close(ch)
		}
		s.mu.Unlock()
	}
	return ch, cancel
}

func (s *Session) closedLocked() bool {
	return s.phase == domain.PhaseCompleted || s.phase == domain.PhaseExited
}

func (s *Session) broadcastLocked() domain.SessionView {
	view := s.viewLocked()
	for ch := range s.subscribers {
		select {
		case ch <- view:
		default:
			// Slow subscriber: drop the stale view and keep only the newest.
			select {
			case <-ch:
			default:
			}
			ch <- view
		}
	}
	return view
}

func (s *Session) viewLocked() domain.SessionView {
	q := s.questions[s.current]
	view := domain.SessionView{
		SessionID:     s.id,
		Topic:         s.topic,
		Phase:         s.phase,
		Index:         s.current,
		Total:         len(s.questions),
		QuestionID:    q.ID,
		Text:          q.Text,
		Options:       append([]string(nil), q.Options...),
		TimedOut:      q.TimedOut(),
		Score:         s.rec.score,
		Missed:        s.rec.missed,
		TimeRemaining: s.timer.Remaining(),
		IsLast:        s.current == len(s.questions)-1,
	}
	if s.selected != nil {
		v := *s.selected
		view.SelectedOption = &v
	}
	if q.Answered() {
		idx := q.CorrectAnswerIndex
		view.CorrectAnswerIndex = &idx
		view.Explanation = q.Explanation
	}
	return view
}
