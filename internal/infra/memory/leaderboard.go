package memory

import (
	"context"
	"sort"
	"sync"

	"examship-quiz-service/internal/domain"
)

// Leaderboard ranks learners by experience in memory.
type Leaderboard struct {
	mu      sync.RWMutex
	entries map[string]*domain.LeaderboardEntry
}

func NewLeaderboard() *Leaderboard {
	return &Leaderboard{entries: make(map[string]*domain.LeaderboardEntry)}
}

func (l *Leaderboard) Upsert(_ context.Context, learnerID, name string, xp int) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	entry, ok := l.entries[learnerID]
	if !ok {
		entry = &domain.LeaderboardEntry{LearnerID: learnerID, Name: learnerID}
		l.entries[learnerID] = entry
	}
	if name != "" {
		entry.Name = name
	}
	entry.XP = xp
	return nil
}

func (l *Leaderboard) Top(_ context.Context, limit int) ([]domain.LeaderboardEntry, error) {
	ranked := l.ranked()
	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked, nil
}

func (l *Leaderboard) Rank(_ context.Context, learnerID string) (domain.LeaderboardEntry, bool, error) {
	for _, e := range l.ranked() {
		if e.LearnerID == learnerID {
			return e, true, nil
		}
	}
	return domain.LeaderboardEntry{}, false, nil
}

// ranked orders by xp desc, then name, then id.
func (l *Leaderboard) ranked() []domain.LeaderboardEntry {
	l.mu.RLock()
	out := make([]domain.LeaderboardEntry, 0, len(l.entries))
	for _, e := range l.entries {
		out = append(out, *e)
	}
	l.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].XP != out[j].XP {
			return out[i].XP > out[j].XP
		}
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].LearnerID < out[j].LearnerID
	})
	for i := range out {
		out[i].Rank = i + 1
	}
	return out
}
