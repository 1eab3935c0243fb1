package memory

import (
	"errors"
	"fmt"
	"testing"

	"examship-quiz-service/internal/app"
	"examship-quiz-service/internal/domain"
)

func TestSessionStoreLifecycle(t *testing.T) {
	store := NewSessionStore()
	session := newTestSession(t)

	if err := store.Create("learner-1", session); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, ok := store.Get("learner-1"); !ok {
		t.Fatalf("expected session present")
	}

	if err := store.Create("learner-1", newTestSession(t)); !errors.Is(err, domain.ErrSessionActive) {
		t.Fatalf("expected active error, got %v", err)
	}

	store.Delete("learner-1", "some-other-session")
	if _, ok := store.Get("learner-1"); !ok {
		t.Fatalf("delete with stale id must not remove the session")
	}

	store.Delete("learner-1", session.ID())
	if _, ok := store.Get("learner-1"); ok {
		t.Fatalf("expected session removed")
	}
}

func TestSessionStoreReplacesClosedSession(t *testing.T) {
	store := NewSessionStore()
	first := newTestSession(t)
	if err := store.Create("learner-1", first); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := first.Exit(); err != nil {
		t.Fatalf("exit: %v", err)
	}

	second := newTestSession(t)
	if err := store.Create("learner-1", second); err != nil {
		t.Fatalf("create after exit: %v", err)
	}
	got, _ := store.Get("learner-1")
	if got.ID() != second.ID() {
		t.Fatalf("expected replacement session %s, got %s", second.ID(), got.ID())
	}
}

func newTestSession(t *testing.T) *app.Session {
	t.Helper()
	s, err := app.NewSession(sampleQuestions(2), "Physics")
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	return s
}

func sampleQuestions(n int) []domain.Question {
	qs := make([]domain.Question, n)
	for i := range qs {
		qs[i] = domain.Question{
			ID:                 fmt.Sprintf("q%d", i+1),
			Text:               fmt.Sprintf("Question %d?", i+1),
			Options:            []string{"A", "B", "C", "D"},
			CorrectAnswerIndex: i % 4,
		}
	}
	return qs
}
