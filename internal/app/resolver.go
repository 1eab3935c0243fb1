package app

import (
	"context"
	"fmt"
	"strings"

	"examship-quiz-service/internal/domain"
	"examship-quiz-service/internal/logger"
)

// DefaultSetSize is the number of questions in one practice set.
const DefaultSetSize = 20

// StaticBank is a read-only mapping of chapter name to an ordered question list.
type StaticBank interface {
	Chapters(ctx context.Context) ([]string, error)
	Questions(ctx context.Context, chapter string) ([]domain.Question, error)
}

// Generator produces questions remotely. Any failure is treated the same way.
type Generator interface {
	Generate(ctx context.Context, req domain.GenerationRequest) ([]domain.Question, error)
}

// Resolution is a question list ready to seed a session.
type Resolution struct {
	Topic     string
	SetNumber int
	Source    domain.ContentSource
	Questions []domain.Question
}

// Resolver picks static content when a chapter matches the topic and falls
// back to the generator otherwise.
type Resolver struct {
	bank    StaticBank
	gen     Generator
	setSize int
	log     *logger.Logger
}

func NewResolver(bank StaticBank, gen Generator, setSize int, log *logger.Logger) *Resolver {
	if setSize <= 0 {
		setSize = DefaultSetSize
	}
	return &Resolver{bank: bank, gen: gen, setSize: setSize, log: logger.OrNop(log)}
}

func (r *Resolver) SetSize() int { return r.setSize }

// MatchChapter returns the first key that contains topic or is contained by it,
// compared case-insensitively. An empty topic matches nothing.
func MatchChapter(keys []string, topic string) (string, bool) {
	t := strings.ToLower(strings.TrimSpace(topic))
	if t == "" {
		return "", false
	}
	for _, key := range keys {
		k := strings.ToLower(key)
		if k == "" {
			continue
		}
		if strings.Contains(t, k) || strings.Contains(k, t) {
			return key, true
		}
	}
	return "", false
}

// Resolve returns the question list for topic and set. It never hands out a
// partial generated set; static sets may be shorter than the set size near the
// end of a bank.
func (r *Resolver) Resolve(ctx context.Context, topic string, set int) (Resolution, error) {
	if set < 1 {
		return Resolution{}, domain.ErrInvalidSet
	}

	if r.bank != nil {
		res, ok, err := r.resolveStatic(ctx, topic, set)
		if err != nil {
			return Resolution{}, err
		}
		if ok {
			return res, nil
		}
	}
	return r.resolveGenerated(ctx, topic, set)
}

func (r *Resolver) resolveStatic(ctx context.Context, topic string, set int) (Resolution, bool, error) {
	chapters, err := r.bank.Chapters(ctx)
	if err != nil {
		r.log.Warn("static bank unavailable, using generator", "topic", topic, "error", err)
		return Resolution{}, false, nil
	}
	chapter, ok := MatchChapter(chapters, topic)
	if !ok {
		return Resolution{}, false, nil
	}
	questions, err := r.bank.Questions(ctx, chapter)
	if err != nil {
		r.log.Warn("static chapter unreadable, using generator", "chapter", chapter, "error", err)
		return Resolution{}, false, nil
	}

	start := (set - 1) * r.setSize
	end := start + r.setSize
	if end > len(questions) {
		end = len(questions)
	}
	if start >= end {
		return Resolution{}, false, fmt.Errorf("%w: chapter %q has no set %d", domain.ErrContentUnavailable, chapter, set)
	}
	slice := domain.CloneQuestions(questions[start:end])
	for i := range slice {
		slice[i].UserAnswer = nil
	}
	r.log.Debug("resolved static set", "chapter", chapter, "set", set, "count", len(slice))
	return Resolution{Topic: chapter, SetNumber: set, Source: domain.SourceStatic, Questions: slice}, true, nil
}

func (r *Resolver) resolveGenerated(ctx context.Context, topic string, set int) (Resolution, error) {
	if r.gen == nil {
		return Resolution{}, fmt.Errorf("%w: no generator configured", domain.ErrContentUnavailable)
	}
	req := domain.GenerationRequest{
		Topic:      topic,
		Difficulty: domain.DifficultyMedium,
		Count:      r.setSize,
		SetNumber:  set,
	}
	questions, err := r.gen.Generate(ctx, req)
	if err != nil {
		r.log.Warn("generation failed", "topic", topic, "set", set, "error", err)
		return Resolution{}, fmt.Errorf("%w: %v", domain.ErrContentUnavailable, err)
	}
	if len(questions) < req.Count {
		return Resolution{}, fmt.Errorf("%w: generator returned %d of %d questions", domain.ErrContentUnavailable, len(questions), req.Count)
	}
	questions = domain.CloneQuestions(questions[:req.Count])
	for i := range questions {
		questions[i].UserAnswer = nil
	}
	if err := domain.ValidateQuestions(questions); err != nil {
		return Resolution{}, fmt.Errorf("%w: %v", domain.ErrContentUnavailable, err)
	}
	return Resolution{Topic: topic, SetNumber: set, Source: domain.SourceGenerated, Questions: questions}, nil
}
