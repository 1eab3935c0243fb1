package domain

import (
	"fmt"
	"strings"
)

// Validate checks the structural invariants of a single question.
func (q Question) Validate() error {
	if strings.TrimSpace(q.ID) == "" {
		return fmt.Errorf("%w: missing id", ErrInvalidQuestion)
	}
	if strings.TrimSpace(q.Text) == "" {
		return fmt.Errorf("%w: question %s has no text", ErrInvalidQuestion, q.ID)
	}
	if len(q.Options) < 2 {
		return fmt.Errorf("%w: question %s has %d options", ErrInvalidQuestion, q.ID, len(q.Options))
	}
	if q.CorrectAnswerIndex < 0 || q.CorrectAnswerIndex >= len(q.Options) {
		return fmt.Errorf("%w: question %s correct index %d out of bounds", ErrInvalidQuestion, q.ID, q.CorrectAnswerIndex)
	}
	return nil
}

// ValidateQuestions checks every question and that ids are unique within the list.
func ValidateQuestions(questions []Question) error {
	seen := make(map[string]struct{}, len(questions))
	for i := range questions {
		if err := questions[i].Validate(); err != nil {
			return err
		}
		if _, dup := seen[questions[i].ID]; dup {
			return fmt.Errorf("%w: duplicate id %s", ErrInvalidQuestion, questions[i].ID)
		}
		seen[questions[i].ID] = struct{}{}
	}
	return nil
}
