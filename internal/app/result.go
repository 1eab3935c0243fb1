package app

import (
	"fmt"
	"time"

	"examship-quiz-service/internal/domain"
)

// BuildResult aggregates a finished session into an immutable QuizResult.
// The question list is deep-copied so later mutation by the caller cannot leak in.
func BuildResult(quizID string, questions []domain.Question, score int, topic string, completedAt time.Time) (domain.QuizResult, error) {
	if len(questions) == 0 {
		return domain.QuizResult{}, domain.ErrEmptySession
	}
	if score < 0 || score > len(questions) {
		return domain.QuizResult{}, fmt.Errorf("%w: score %d outside [0,%d]", domain.ErrInvalidSession, score, len(questions))
	}
	return domain.QuizResult{
		QuizID:         quizID,
		Score:          score,
		TotalQuestions: len(questions),
		Date:           completedAt,
		Topic:          topic,
		Questions:      domain.CloneQuestions(questions),
	}, nil
}
