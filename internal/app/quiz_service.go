package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"examship-quiz-service/internal/domain"
	"examship-quiz-service/internal/logger"
	"golang.org/x/sync/singleflight"
)

// SessionRepository abstracts where live sessions are tracked (in-memory, Redis, etc).
type SessionRepository interface {
	// Create registers s for learnerID; it fails with domain.ErrSessionActive
	// if the learner already has an open session.
	Create(learnerID string, s *Session) error
	Get(learnerID string) (*Session, bool)
	// Delete drops the learner's session only if it is still sessionID.
	Delete(learnerID, sessionID string)
}

// LeaderboardStore ranks learners by experience.
type LeaderboardStore interface {
	// Upsert records xp for the learner. An empty name keeps the stored one.
	Upsert(ctx context.Context, learnerID, name string, xp int) error
	// Top returns up to limit entries, ranked from 1.
	Top(ctx context.Context, limit int) ([]domain.LeaderboardEntry, error)
	// Rank returns the learner's own entry, if recorded.
	Rank(ctx context.Context, learnerID string) (domain.LeaderboardEntry, bool, error)
}

// Completion is the outcome of Next: either the next question's view, or the
// final view together with the result and refreshed progress.
type Completion struct {
	View     domain.SessionView
	Result   *domain.QuizResult
	Progress *domain.ProgressReport
}

// QuizService contains the core quiz use cases.
type QuizService struct {
	sessions    SessionRepository
	resolver    *Resolver
	store       KVStore
	leaderboard LeaderboardStore
	log         *logger.Logger

	now          func() time.Time
	timeLimit    int
	tickInterval time.Duration

	runCtx    context.Context
	stopRuns  context.CancelFunc
	ledgerSF  singleflight.Group
	mu        sync.Mutex
	ledgers   map[string]*Ledger
	resolving map[string]struct{}
}

// ServiceOption customizes a QuizService.
type ServiceOption func(*QuizService)

func WithServiceClock(now func() time.Time) ServiceOption {
	return func(s *QuizService) { s.now = now }
}

func WithQuestionTimeLimit(seconds int) ServiceOption {
	return func(s *QuizService) { s.timeLimit = seconds }
}

// WithTickInterval sets how often running sessions tick. Zero leaves ticking
// to the caller via Tick.
func WithTickInterval(d time.Duration) ServiceOption {
	return func(s *QuizService) { s.tickInterval = d }
}

func WithLeaderboard(lb LeaderboardStore) ServiceOption {
	return func(s *QuizService) { s.leaderboard = lb }
}

func WithLogger(log *logger.Logger) ServiceOption {
	return func(s *QuizService) { s.log = logger.OrNop(log) }
}

func NewQuizService(sessions SessionRepository, resolver *Resolver, store KVStore, opts ...ServiceOption) *QuizService {
	ctx, cancel := context.WithCancel(context.Background())
	s := &QuizService{
		sessions:     sessions,
		resolver:     resolver,
		store:        store,
		log:          logger.Nop(),
		now:          time.Now,
		timeLimit:    DefaultTimeLimit,
		tickInterval: time.Second,
		runCtx:       ctx,
		stopRuns:     cancel,
		ledgers:      make(map[string]*Ledger),
		resolving:    make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Close stops every session timer started by the service.
func (s *QuizService) Close() {
	s.stopRuns()
}

// StartSession resolves content for topic and set and starts a session. While
// content resolves the learner is pending and no session exists yet.
func (s *QuizService) StartSession(ctx context.Context, learnerID, topic string, set int) (domain.SessionView, error) {
	if existing, ok := s.sessions.Get(learnerID); ok && !existing.Closed() {
		return domain.SessionView{}, domain.ErrSessionActive
	}
	if !s.beginResolving(learnerID) {
		return domain.SessionView{}, domain.ErrSessionPending
	}
	defer s.endResolving(learnerID)

	// Completion folds the result into the ledger without touching the store
	// again, so the ledger must be loaded before a session exists.
	if _, err := s.ledger(ctx, learnerID); err != nil {
		s.log.Warn("start session failed", "learner", learnerID, "error", err)
		return domain.SessionView{}, err
	}

	res, err := s.resolver.Resolve(ctx, topic, set)
	if err != nil {
		s.log.Warn("start session failed", "learner", learnerID, "topic", topic, "set", set, "error", err)
		return domain.SessionView{}, err
	}

	session, err := NewSession(res.Questions, res.Topic,
		WithClock(s.now),
		WithTimeLimit(s.timeLimit),
	)
	if err != nil {
		return domain.SessionView{}, err
	}
	if err := s.sessions.Create(learnerID, session); err != nil {
		return domain.SessionView{}, err
	}
	if s.tickInterval > 0 {
		go session.Run(s.runCtx, s.tickInterval)
	}

	s.log.Info("session started",
		"learner", learnerID,
		"session", session.ID(),
		"topic", res.Topic,
		"set", set,
		"source", string(res.Source),
		"questions", len(res.Questions),
	)
	return session.View(), nil
}

// Answer records the learner's pick for the current question.
func (s *QuizService) Answer(_ context.Context, learnerID string, option int) (domain.AnswerOutcome, error) {
	session, err := s.openSession(learnerID)
	if err != nil {
		return domain.AnswerOutcome{}, err
	}
	return session.Select(option)
}

// Tick advances the learner's countdown by one second.
func (s *QuizService) Tick(_ context.Context, learnerID string) (bool, error) {
	session, err := s.openSession(learnerID)
	if err != nil {
		return false, err
	}
	return session.Tick(), nil
}

// Next advances past an answered question. On the last question the result
// is folded into the learner's ledger. A persistence failure is returned
// alongside a populated Completion.
func (s *QuizService) Next(ctx context.Context, learnerID string) (Completion, error) {
	session, err := s.openSession(learnerID)
	if err != nil {
		return Completion{}, err
	}
	view, result, err := session.Advance()
	if err != nil {
		return Completion{}, err
	}
	if result == nil {
		return Completion{View: view}, nil
	}
	s.sessions.Delete(learnerID, session.ID())

	ledger, err := s.ledger(ctx, learnerID)
	if err != nil {
		return Completion{View: view, Result: result}, err
	}
	snap, applyErr := ledger.ApplyResult(ctx, *result)
	report := snap.Report(learnerID, s.now())
	s.updateLeaderboard(ctx, learnerID, "", snap.Experience)

	s.log.Info("session completed",
		"learner", learnerID,
		"quiz", result.QuizID,
		"score", result.Score,
		"total", result.TotalQuestions,
		"experience", snap.Experience,
	)
	return Completion{View: view, Result: result, Progress: &report}, applyErr
}

// Exit abandons the learner's session; progress is untouched.
func (s *QuizService) Exit(_ context.Context, learnerID string) error {
	session, ok := s.sessions.Get(learnerID)
	if !ok {
		return domain.ErrSessionNotFound
	}
	err := session.Exit()
	s.sessions.Delete(learnerID, session.ID())
	if err != nil {
		return err
	}
	s.log.Info("session exited", "learner", learnerID, "session", session.ID())
	return nil
}

// Current returns the view of the learner's open session.
func (s *QuizService) Current(_ context.Context, learnerID string) (domain.SessionView, error) {
	session, err := s.openSession(learnerID)
	if err != nil {
		return domain.SessionView{}, err
	}
	return session.View(), nil
}

// Subscribe returns a channel that receives session views for the learner.
// The caller must invoke the returned cancel function to avoid leaks.
func (s *QuizService) Subscribe(_ context.Context, learnerID string) (<-chan domain.SessionView, func(), error) {
	session, err := s.openSession(learnerID)
	if err != nil {
		return nil, nil, err
	}
	ch, cancel := session.Subscribe()
	return ch, cancel, nil
}

// Progress returns the learner's dashboard as of now.
func (s *QuizService) Progress(ctx context.Context, learnerID string, now time.Time) (domain.ProgressReport, error) {
	ledger, err := s.ledger(ctx, learnerID)
	if err != nil {
		return domain.ProgressReport{}, err
	}
	return ledger.Snapshot().Report(learnerID, now), nil
}

// History returns up to limit results, newest first. limit <= 0 returns all.
func (s *QuizService) History(ctx context.Context, learnerID string, limit int) ([]domain.QuizResult, error) {
	ledger, err := s.ledger(ctx, learnerID)
	if err != nil {
		return nil, err
	}
	history := ledger.Snapshot().History
	if limit > 0 && len(history) > limit {
		history = history[:limit]
	}
	return history, nil
}

// Review returns the per-question breakdown of one stored result.
func (s *QuizService) Review(ctx context.Context, learnerID, quizID string) (domain.ResultReview, error) {
	history, err := s.History(ctx, learnerID, 0)
	if err != nil {
		return domain.ResultReview{}, err
	}
	for _, r := range history {
		if r.QuizID == quizID {
			return r.Summarize(), nil
		}
	}
	return domain.ResultReview{}, domain.ErrResultNotFound
}

// Register records the learner's display name on the leaderboard.
func (s *QuizService) Register(ctx context.Context, learnerID, displayName string) error {
	if s.leaderboard == nil {
		return nil
	}
	ledger, err := s.ledger(ctx, learnerID)
	if err != nil {
		return err
	}
	return s.leaderboard.Upsert(ctx, learnerID, displayName, ledger.Snapshot().Experience)
}

// Leaderboard ranks learners by experience and flags the requesting learner.
// The learner is appended with their own rank when outside the top entries.
func (s *QuizService) Leaderboard(ctx context.Context, learnerID, displayName string, limit int) (domain.Leaderboard, error) {
	if s.leaderboard == nil {
		return domain.Leaderboard{Entries: []domain.LeaderboardEntry{}, UpdatedAt: s.now()}, nil
	}
	if learnerID != "" {
		if err := s.Register(ctx, learnerID, displayName); err != nil {
			return domain.Leaderboard{}, err
		}
	}
	entries, err := s.leaderboard.Top(ctx, limit)
	if err != nil {
		return domain.Leaderboard{}, fmt.Errorf("leaderboard: %w", err)
	}
	found := false
	for i := range entries {
		if entries[i].LearnerID == learnerID && learnerID != "" {
			entries[i].IsCurrentUser = true
			found = true
		}
	}
	if !found && learnerID != "" {
		own, ok, err := s.leaderboard.Rank(ctx, learnerID)
		if err != nil {
			return domain.Leaderboard{}, fmt.Errorf("leaderboard rank: %w", err)
		}
		if ok {
			own.IsCurrentUser = true
			entries = append(entries, own)
		}
	}
	return domain.Leaderboard{Entries: entries, UpdatedAt: s.now()}, nil
}

// Chapters lists the static bank's chapters in display order.
func (s *QuizService) Chapters(ctx context.Context) ([]string, error) {
	if s.resolver == nil || s.resolver.bank == nil {
		return []string{}, nil
	}
	return s.resolver.bank.Chapters(ctx)
}

// SetSize is the number of questions per practice set.
func (s *QuizService) SetSize() int {
	return s.resolver.SetSize()
}

func (s *QuizService) openSession(learnerID string) (*Session, error) {
	session, ok := s.sessions.Get(learnerID)
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return session, nil
}

func (s *QuizService) beginResolving(learnerID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.resolving[learnerID]; ok {
		return false
	}
	s.resolving[learnerID] = struct{}{}
	return true
}

func (s *QuizService) endResolving(learnerID string) {
	s.mu.Lock()
	delete(s.resolving, learnerID)
	s.mu.Unlock()
}

// ledger returns the learner's ledger, loading it once from the store.
// Ledgers are cached for the life of the process; the load runs detached
// from ctx so one canceled caller does not fail the others waiting on it.
func (s *QuizService) ledger(ctx context.Context, learnerID string) (*Ledger, error) {
	s.mu.Lock()
	if l, ok := s.ledgers[learnerID]; ok {
		s.mu.Unlock()
		return l, nil
	}
	s.mu.Unlock()

	v, err, _ := s.ledgerSF.Do(learnerID, func() (interface{}, error) {
		s.mu.Lock()
		if l, ok := s.ledgers[learnerID]; ok {
			s.mu.Unlock()
			return l, nil
		}
		s.mu.Unlock()

		l, err := LoadLedger(context.WithoutCancel(ctx), s.store, learnerID, s.log.With("component", "ledger"))
		if err != nil {
			return nil, err
		}
		s.mu.Lock()
		s.ledgers[learnerID] = l
		s.mu.Unlock()
		return l, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Ledger), nil
}

func (s *QuizService) updateLeaderboard(ctx context.Context, learnerID, name string, xp int) {
	if s.leaderboard == nil {
		return
	}
	if err := s.leaderboard.Upsert(ctx, learnerID, name, xp); err != nil {
		s.log.Warn("leaderboard update failed", "learner", learnerID, "error", err)
	}
}

// IsContentUnavailable reports whether err means no content could be supplied.
func IsContentUnavailable(err error) bool {
	return errors.Is(err, domain.ErrContentUnavailable)
}
