package app

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"sync"
	"time"

	"examship-quiz-service/internal/domain"
	"examship-quiz-service/internal/logger"
)

const (
	XPPerCorrect        = 10
	XPPerLevel          = 1000
	DailyQuestionTarget = 50
	TrendWindow         = 7
)

// Ledger holds a learner's cumulative experience and result history.
// ApplyResult is the only mutation; it swaps both values under one lock so
// readers never see one updated without the other.
type Ledger struct {
	learnerID string
	store     KVStore
	log       *logger.Logger

	mu         sync.RWMutex
	experience int
	history    []domain.QuizResult
}

// LedgerSnapshot is a consistent copy of the ledger's two aggregates.
type LedgerSnapshot struct {
	Experience int
	History    []domain.QuizResult
}

// LoadLedger reads persisted progress, defaulting corrupt or missing values.
func LoadLedger(ctx context.Context, store KVStore, learnerID string, log *logger.Logger) (*Ledger, error) {
	log = logger.OrNop(log)
	xp, history, err := loadProgress(ctx, store, learnerID, log)
	if err != nil {
		return nil, err
	}
	return &Ledger{
		learnerID:  learnerID,
		store:      store,
		log:        log,
		experience: xp,
		history:    history,
	}, nil
}

// ApplyResult adds score*10 experience, prepends the result and persists both.
// The in-memory update is kept even if persistence fails; the next successful
// write carries the full state.
func (l *Ledger) ApplyResult(ctx context.Context, result domain.QuizResult) (LedgerSnapshot, error) {
	if result.TotalQuestions <= 0 || result.Score < 0 || result.Score > result.TotalQuestions {
		return l.Snapshot(), fmt.Errorf("%w: result score %d of %d", domain.ErrInvalidSession, result.Score, result.TotalQuestions)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	history := make([]domain.QuizResult, 0, len(l.history)+1)
	history = append(history, result)
	history = append(history, l.history...)
	l.experience += result.Score * XPPerCorrect
	l.history = history

	snap := l.snapshotLocked()
	if err := saveProgress(ctx, l.store, l.learnerID, l.experience, l.history); err != nil {
		l.log.Error("persist progress failed", "learner", l.learnerID, "error", err)
		return snap, fmt.Errorf("persist progress: %w", err)
	}
	l.log.Debug("progress applied", "learner", l.learnerID, "experience", l.experience, "quiz", result.QuizID)
	return snap, nil
}

func (l *Ledger) Snapshot() LedgerSnapshot {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.snapshotLocked()
}

func (l *Ledger) snapshotLocked() LedgerSnapshot {
	return LedgerSnapshot{
		Experience: l.experience,
		History:    append([]domain.QuizResult(nil), l.history...),
	}
}

func (s LedgerSnapshot) Level() int { return LevelFor(s.Experience) }

// Report builds the dashboard view as of now.
func (s LedgerSnapshot) Report(learnerID string, now time.Time) domain.ProgressReport {
	return domain.ProgressReport{
		LearnerID:     learnerID,
		Experience:    s.Experience,
		Level:         LevelFor(s.Experience),
		LevelProgress: LevelProgress(s.Experience),
		DailyProgress: DailyProgress(s.History, now),
		Trend:         Trend(s.History),
		Completed:     len(s.History),
	}
}

// LevelFor derives the level from experience; it is never stored.
func LevelFor(experience int) int {
	return experience/XPPerLevel + 1
}

// LevelProgress is the percentage of the way to the next level.
func LevelProgress(experience int) float64 {
	return float64(experience%XPPerLevel) / 10
}

// DailyProgress sums totalQuestions of results completed on now's calendar day
// (in now's location) and returns the share of the daily target, capped at 100.
func DailyProgress(history []domain.QuizResult, now time.Time) float64 {
	y, m, d := now.Date()
	sum := 0
	for _, r := range history {
		ry, rm, rd := r.Date.In(now.Location()).Date()
		if ry == y && rm == m && rd == d {
			sum += r.TotalQuestions
		}
	}
	return math.Min(100, float64(sum*100)/DailyQuestionTarget)
}

// Trend maps the most recent results, oldest first, to rounded percentages.
// An empty history yields a flat two-point placeholder.
func Trend(history []domain.QuizResult) []domain.TrendPoint {
	if len(history) == 0 {
		return []domain.TrendPoint{{Name: "0", Score: 0}, {Name: "Now", Score: 0}}
	}
	n := len(history)
	if n > TrendWindow {
		n = TrendWindow
	}
	points := make([]domain.TrendPoint, 0, n)
	for i := n - 1; i >= 0; i-- {
		r := history[i]
		points = append(points, domain.TrendPoint{
			Name:  "T" + strconv.Itoa(len(points)+1),
			Score: domain.Percentage(r.Score, r.TotalQuestions),
		})
	}
	return points
}
