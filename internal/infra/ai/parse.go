package ai

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"examship-quiz-service/internal/domain"
)

// ErrMalformedReply is returned when a model reply does not match the question schema.
var ErrMalformedReply = errors.New("malformed generator reply")

type questionsEnvelope struct {
	Questions []domain.Question `json:"questions"`
}

type chaptersEnvelope struct {
	Chapters []string `json:"chapters"`
}

// ParseQuestions decodes a model reply into exactly req.Count questions.
// Both a bare array and {"questions": [...]} are accepted; code fences are
// stripped. Missing ids are filled in, then every question is validated.
func ParseQuestions(content string, req domain.GenerationRequest) ([]domain.Question, error) {
	content = stripFences(content)

	var questions []domain.Question
	if strings.HasPrefix(content, "[") {
		if err := json.Unmarshal([]byte(content), &questions); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedReply, err)
		}
	} else {
		var env questionsEnvelope
		if err := json.Unmarshal([]byte(content), &env); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedReply, err)
		}
		questions = env.Questions
	}

	if len(questions) < req.Count {
		return nil, fmt.Errorf("%w: got %d of %d questions", ErrMalformedReply, len(questions), req.Count)
	}
	if req.Count > 0 {
		questions = questions[:req.Count]
	}

	seen := make(map[string]struct{}, len(questions))
	for i := range questions {
		q := &questions[i]
		q.UserAnswer = nil
		q.Text = strings.TrimSpace(q.Text)
		if _, dup := seen[q.ID]; q.ID == "" || dup {
			q.ID = fmt.Sprintf("gen-%d-%d", req.SetNumber, i)
		}
		seen[q.ID] = struct{}{}
	}
	if err := domain.ValidateQuestions(questions); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedReply, err)
	}
	return questions, nil
}

func parseChapters(content string) ([]string, error) {
	content = stripFences(content)

	var chapters []string
	if strings.HasPrefix(content, "[") {
		if err := json.Unmarshal([]byte(content), &chapters); err != nil {
			return nil, err
		}
	} else {
		var env chaptersEnvelope
		if err := json.Unmarshal([]byte(content), &env); err != nil {
			return nil, err
		}
		chapters = env.Chapters
	}

	out := make([]string, 0, len(chapters))
	for _, c := range chapters {
		if c = strings.TrimSpace(c); c != "" {
			out = append(out, c)
		}
	}
	return out, nil
}

func stripFences(content string) string {
	content = strings.TrimSpace(content)
	if strings.HasPrefix(content, "```") {
		content = strings.TrimPrefix(content, "```json")
		content = strings.TrimPrefix(content, "```")
		content = strings.TrimSuffix(content, "```")
	}
	return strings.TrimSpace(content)
}
