package app

import (
	"examship-quiz-service/internal/domain"
)

// answerRecorder stamps answers onto the session's questions and keeps the score buckets.
// Each question lands in exactly one bucket, once.
type answerRecorder struct {
	questions []domain.Question
	score     int
	missed    int
}

func newAnswerRecorder(questions []domain.Question) *answerRecorder {
	return &answerRecorder{questions: questions}
}

// record stamps option on question i. A second call for the same question changes nothing.
func (r *answerRecorder) record(i, option int) (correct bool, err error) {
	if i < 0 || i >= len(r.questions) {
		return false, domain.ErrInvalidSession
	}
	q := &r.questions[i]
	if q.Answered() {
		return false, domain.ErrAlreadyAnswered
	}
	if option < 0 || option >= len(q.Options) {
		return false, domain.ErrOptionOutOfRange
	}
	v := option
	q.UserAnswer = &v
	correct = option == q.CorrectAnswerIndex
	if correct {
		r.score++
	} else {
		r.missed++
	}
	return correct, nil
}

// recordTimeout marks question i as a forced no-answer.
func (r *answerRecorder) recordTimeout(i int) error {
	if i < 0 || i >= len(r.questions) {
		return domain.ErrInvalidSession
	}
	q := &r.questions[i]
	if q.Answered() {
		return domain.ErrAlreadyAnswered
	}
	v := domain.TimedOutAnswer
	q.UserAnswer = &v
	r.missed++
	return nil
}
