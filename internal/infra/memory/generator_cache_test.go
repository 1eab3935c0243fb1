package memory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"examship-quiz-service/internal/domain"
)

func TestGeneratorCacheCaches(t *testing.T) {
	gen := &countingGenerator{questions: sampleQuestions(20)}
	cache := NewGeneratorCache(gen, time.Minute)
	req := domain.GenerationRequest{Topic: "Optics", Difficulty: domain.DifficultyMedium, Count: 20, SetNumber: 1}

	if _, err := cache.Generate(context.Background(), req); err != nil {
		t.Fatalf("generate: %v", err)
	}
	qs, err := cache.Generate(context.Background(), req)
	if err != nil {
		t.Fatalf("generate 2: %v", err)
	}
	if gen.count() != 1 {
		t.Fatalf("expected generator once, got %d", gen.count())
	}
	if len(qs) != 20 {
		t.Fatalf("expected 20 cached questions, got %d", len(qs))
	}

	req.SetNumber = 2
	if _, err := cache.Generate(context.Background(), req); err != nil {
		t.Fatalf("generate set 2: %v", err)
	}
	if gen.count() != 2 {
		t.Fatalf("different set must miss the cache, calls %d", gen.count())
	}
}

func TestGeneratorCacheExpires(t *testing.T) {
	gen := &countingGenerator{questions: sampleQuestions(20)}
	cache := NewGeneratorCache(gen, time.Minute)
	now := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	cache.clock = func() time.Time { return now }
	req := domain.GenerationRequest{Topic: "Optics", Count: 20, SetNumber: 1}

	_, _ = cache.Generate(context.Background(), req)
	now = now.Add(2 * time.Minute)
	_, _ = cache.Generate(context.Background(), req)
	if gen.count() != 2 {
		t.Fatalf("expected refetch after ttl, calls %d", gen.count())
	}
}

func TestGeneratorCacheDoesNotCacheFailures(t *testing.T) {
	gen := &countingGenerator{err: errors.New("quota exceeded")}
	cache := NewGeneratorCache(gen, time.Minute)
	req := domain.GenerationRequest{Topic: "Optics", Count: 20, SetNumber: 1}

	for i := 0; i < 2; i++ {
		if _, err := cache.Generate(context.Background(), req); err == nil {
			t.Fatalf("expected error")
		}
	}
	if gen.count() != 2 {
		t.Fatalf("failures must not be cached, calls %d", gen.count())
	}
}

type countingGenerator struct {
	mu        sync.Mutex
	calls     int
	questions []domain.Question
	err       error
}

func (g *countingGenerator) Generate(_ context.Context, _ domain.GenerationRequest) ([]domain.Question, error) {
	g.mu.Lock()
	g.calls++
	g.mu.Unlock()
	if g.err != nil {
		return nil, g.err
	}
	return domain.CloneQuestions(g.questions), nil
}

func (g *countingGenerator) count() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls
}
