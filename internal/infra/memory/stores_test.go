package memory

import (
	"context"
	"errors"
	"testing"

	"examship-quiz-service/internal/domain"
)

func TestKVStoreGetReturnsOnlyPresentKeys(t *testing.T) {
	ctx := context.Background()
	store := NewKVStore()

	if err := store.SetAll(ctx, map[string]string{"a": "1", "b": "[]"}); err != nil {
		t.Fatalf("set: %v", err)
	}
	got, err := store.Get(ctx, "a", "b", "missing")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(got) != 2 || got["a"] != "1" || got["b"] != "[]" {
		t.Fatalf("unexpected values %v", got)
	}
	if _, ok := got["missing"]; ok {
		t.Fatalf("missing key should be absent")
	}
}

func TestStaticBankKeepsOrderAndCopies(t *testing.T) {
	ctx := context.Background()
	bank := NewStaticBank(
		domain.Chapter{Name: "Physics", Questions: sampleQuestions(3)},
		domain.Chapter{Name: "Chemistry", Questions: sampleQuestions(2)},
	)

	chapters, _ := bank.Chapters(ctx)
	if len(chapters) != 2 || chapters[0] != "Physics" || chapters[1] != "Chemistry" {
		t.Fatalf("unexpected chapter order %v", chapters)
	}

	qs, err := bank.Questions(ctx, "Physics")
	if err != nil {
		t.Fatalf("questions: %v", err)
	}
	qs[0].Text = "mutated"
	again, _ := bank.Questions(ctx, "Physics")
	if again[0].Text == "mutated" {
		t.Fatalf("bank content must not be shared with callers")
	}

	if _, err := bank.Questions(ctx, "Biology"); !errors.Is(err, domain.ErrContentUnavailable) {
		t.Fatalf("expected content unavailable, got %v", err)
	}
}

func TestLeaderboardRanking(t *testing.T) {
	ctx := context.Background()
	lb := NewLeaderboard()
	_ = lb.Upsert(ctx, "u1", "Asha", 300)
	_ = lb.Upsert(ctx, "u2", "Bilal", 500)
	_ = lb.Upsert(ctx, "u3", "Chen", 300)
	_ = lb.Upsert(ctx, "u1", "", 320)

	top, err := lb.Top(ctx, 2)
	if err != nil {
		t.Fatalf("top: %v", err)
	}
	if len(top) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(top))
	}
	if top[0].LearnerID != "u2" || top[0].Rank != 1 {
		t.Fatalf("expected u2 first, got %+v", top[0])
	}
	if top[1].LearnerID != "u1" || top[1].Name != "Asha" || top[1].XP != 320 {
		t.Fatalf("expected u1 second with kept name, got %+v", top[1])
	}

	own, ok, _ := lb.Rank(ctx, "u3")
	if !ok || own.Rank != 3 {
		t.Fatalf("expected u3 at rank 3, got %+v ok=%v", own, ok)
	}
	if _, ok, _ := lb.Rank(ctx, "nobody"); ok {
		t.Fatalf("unknown learner should not be ranked")
	}
}
