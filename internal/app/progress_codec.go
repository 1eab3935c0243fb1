package app

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"examship-quiz-service/internal/domain"
	"examship-quiz-service/internal/logger"
)

// KVStore is the durable key-value surface progress is persisted through.
type KVStore interface {
	// Get returns the values present for keys; missing keys are simply absent.
	Get(ctx context.Context, keys ...string) (map[string]string, error)
	// SetAll writes every pair, atomically where the backend supports it.
	SetAll(ctx context.Context, values map[string]string) error
}

const (
	experienceKeyBase = "examship_xp"
	historyKeyBase    = "examship_results"
)

// ExperienceKey is the storage key of a learner's experience total.
func ExperienceKey(learnerID string) string {
	if learnerID == "" {
		return experienceKeyBase
	}
	return experienceKeyBase + ":" + learnerID
}

// HistoryKey is the storage key of a learner's result history.
func HistoryKey(learnerID string) string {
	if learnerID == "" {
		return historyKeyBase
	}
	return historyKeyBase + ":" + learnerID
}

func encodeExperience(xp int) string {
	return strconv.Itoa(xp)
}

func decodeExperience(raw string) (int, error) {
	xp, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, err
	}
	if xp < 0 {
		return 0, fmt.Errorf("negative experience %d", xp)
	}
	return xp, nil
}

func encodeHistory(history []domain.QuizResult) (string, error) {
	if history == nil {
		history = []domain.QuizResult{}
	}
	data, err := json.Marshal(history)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func decodeHistory(raw string) ([]domain.QuizResult, error) {
	var history []domain.QuizResult
	if err := json.Unmarshal([]byte(raw), &history); err != nil {
		return nil, err
	}
	for i, r := range history {
		if r.TotalQuestions <= 0 || r.Score < 0 || r.Score > r.TotalQuestions {
			return nil, fmt.Errorf("result %d has score %d of %d", i, r.Score, r.TotalQuestions)
		}
	}
	if history == nil {
		history = []domain.QuizResult{}
	}
	return history, nil
}

// loadProgress reads both values. Missing or unreadable values fall back to
// zero experience and empty history independently; only store I/O fails.
func loadProgress(ctx context.Context, store KVStore, learnerID string, log *logger.Logger) (int, []domain.QuizResult, error) {
	xpKey, histKey := ExperienceKey(learnerID), HistoryKey(learnerID)
	values, err := store.Get(ctx, xpKey, histKey)
	if err != nil {
		return 0, nil, fmt.Errorf("load progress: %w", err)
	}

	xp := 0
	if raw, ok := values[xpKey]; ok {
		if xp, err = decodeExperience(raw); err != nil {
			log.Warn("discarding corrupt experience", "learner", learnerID, "error", err)
			xp = 0
		}
	}

	history := []domain.QuizResult{}
	if raw, ok := values[histKey]; ok {
		decoded, err := decodeHistory(raw)
		if err != nil {
			log.Warn("discarding corrupt history", "learner", learnerID, "error", err)
		} else {
			history = decoded
		}
	}
	return xp, history, nil
}

func saveProgress(ctx context.Context, store KVStore, learnerID string, xp int, history []domain.QuizResult) error {
	encoded, err := encodeHistory(history)
	if err != nil {
		return fmt.Errorf("encode history: %w", err)
	}
	return store.SetAll(ctx, map[string]string{
		ExperienceKey(learnerID): encodeExperience(xp),
		HistoryKey(learnerID):    encoded,
	})
}
