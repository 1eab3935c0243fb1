package redis

import (
	"context"
	"errors"
	"sort"
	"strconv"

	"examship-quiz-service/internal/domain"
	"github.com/redis/go-redis/v9"
)

// Leaderboard ranks learners in a sorted set (member = learner id, score = xp)
// with display names kept in a side hash. Equal scores order by name, then id.
type Leaderboard struct {
	client *redis.Client
	key    string
}

func NewLeaderboard(client *redis.Client, key string) *Leaderboard {
	if key == "" {
		key = "examship:leaderboard"
	}
	return &Leaderboard{client: client, key: key}
}

func (l *Leaderboard) Upsert(ctx context.Context, learnerID, name string, xp int) error {
	_, err := l.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.ZAdd(ctx, l.key, redis.Z{Score: float64(xp), Member: learnerID})
		if name != "" {
			pipe.HSet(ctx, l.namesKey(), learnerID, name)
		}
		return nil
	})
	return err
}

func (l *Leaderboard) Top(ctx context.Context, limit int) ([]domain.LeaderboardEntry, error) {
	stop := int64(-1)
	if limit > 0 {
		stop = int64(limit - 1)
	}
	members, err := l.client.ZRevRangeWithScores(ctx, l.key, 0, stop).Result()
	if err != nil {
		return nil, err
	}
	if len(members) == 0 {
		return []domain.LeaderboardEntry{}, nil
	}

	// The cut may split a run of equal scores; pull the whole run so the
	// name order decides who makes the list.
	if limit > 0 && len(members) == limit {
		last := members[len(members)-1].Score
		run, err := l.equalScores(ctx, last)
		if err != nil {
			return nil, err
		}
		kept := members[:0]
		for _, m := range members {
			if m.Score != last {
				kept = append(kept, m)
			}
		}
		members = append(kept, run...)
	}

	entries, err := l.entries(ctx, members)
	if err != nil {
		return nil, err
	}
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}

func (l *Leaderboard) Rank(ctx context.Context, learnerID string) (domain.LeaderboardEntry, bool, error) {
	score, err := l.client.ZScore(ctx, l.key, learnerID).Result()
	if errors.Is(err, redis.Nil) {
		return domain.LeaderboardEntry{}, false, nil
	}
	if err != nil {
		return domain.LeaderboardEntry{}, false, err
	}
	above, err := l.client.ZCount(ctx, l.key, "("+formatScore(score), "+inf").Result()
	if err != nil {
		return domain.LeaderboardEntry{}, false, err
	}
	run, err := l.equalScores(ctx, score)
	if err != nil {
		return domain.LeaderboardEntry{}, false, err
	}
	entries, err := l.entries(ctx, run)
	if err != nil {
		return domain.LeaderboardEntry{}, false, err
	}
	for _, e := range entries {
		if e.LearnerID == learnerID {
			e.Rank += int(above)
			return e, true, nil
		}
	}
	return domain.LeaderboardEntry{}, false, nil
}

func (l *Leaderboard) equalScores(ctx context.Context, score float64) ([]redis.Z, error) {
	s := formatScore(score)
	return l.client.ZRangeByScoreWithScores(ctx, l.key, &redis.ZRangeBy{Min: s, Max: s}).Result()
}

// entries resolves names and orders members by score desc, name, id,
// ranking from 1.
func (l *Leaderboard) entries(ctx context.Context, members []redis.Z) ([]domain.LeaderboardEntry, error) {
	ids := make([]string, len(members))
	for i, m := range members {
		ids[i], _ = m.Member.(string)
	}
	names, err := l.names(ctx, ids)
	if err != nil {
		return nil, err
	}
	out := make([]domain.LeaderboardEntry, len(members))
	for i, m := range members {
		out[i] = domain.LeaderboardEntry{LearnerID: ids[i], Name: names[i], XP: int(m.Score)}
	}
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
	return out, nil
}

// names resolves display names, falling back to the learner id.
func (l *Leaderboard) names(ctx context.Context, ids []string) ([]string, error) {
	out := make([]string, len(ids))
	copy(out, ids)
	if len(ids) == 0 {
		return out, nil
	}
	values, err := l.client.HMGet(ctx, l.namesKey(), ids...).Result()
	if err != nil {
		return nil, err
	}
	for i, v := range values {
		if name, ok := v.(string); ok && name != "" {
			out[i] = name
		}
	}
	return out, nil
}

func (l *Leaderboard) namesKey() string {
	return l.key + ":names"
}

func formatScore(score float64) string {
	return strconv.FormatFloat(score, 'f', -1, 64)
}
