package memory

import (
	"context"
	"fmt"

	"examship-quiz-service/internal/domain"
)

// StaticBank serves bundled chapters from memory, in the order given.
type StaticBank struct {
	order    []string
	chapters map[string][]domain.Question
}

func NewStaticBank(chapters ...domain.Chapter) *StaticBank {
	b := &StaticBank{chapters: make(map[string][]domain.Question, len(chapters))}
	for _, c := range chapters {
		if _, dup := b.chapters[c.Name]; !dup {
			b.order = append(b.order, c.Name)
		}
		b.chapters[c.Name] = domain.CloneQuestions(c.Questions)
	}
	return b
}

func (b *StaticBank) Chapters(_ context.Context) ([]string, error) {
	return append([]string(nil), b.order...), nil
}

func (b *StaticBank) Questions(_ context.Context, chapter string) ([]domain.Question, error) {
	qs, ok := b.chapters[chapter]
	if !ok {
		return nil, fmt.Errorf("%w: unknown chapter %q", domain.ErrContentUnavailable, chapter)
	}
	return domain.CloneQuestions(qs), nil
}
