package app

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"examship-quiz-service/internal/domain"
)

func TestSessionScoresPicksAndTimeouts(t *testing.T) {
	var completed []domain.QuizResult
	at := time.Date(2024, 5, 2, 9, 0, 0, 0, time.UTC)
	s, err := NewSession(testQuestions(3), "Physics",
		WithClock(func() time.Time { return at }),
		WithOnComplete(func(r domain.QuizResult) { completed = append(completed, r) }),
	)
	if err != nil {
		t.Fatalf("new session: %v", err)
	}

	if out, err := s.Select(0); err != nil || !out.Correct {
		t.Fatalf("expected correct pick, got %+v err=%v", out, err)
	}
	mustAdvance(t, s)

	fired := false
	for i := 0; i < DefaultTimeLimit; i++ {
		fired = s.Tick()
	}
	if !fired {
		t.Fatalf("expected the last tick to time out")
	}
	if v := s.View(); v.Phase != domain.PhaseAnswered || !v.TimedOut {
		t.Fatalf("expected timed-out answered view, got %+v", v)
	}
	mustAdvance(t, s)

	if out, err := s.Select(2); err != nil || !out.Correct {
		t.Fatalf("expected correct pick, got %+v err=%v", out, err)
	}
	view, result, err := s.Advance()
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if result == nil {
		t.Fatalf("expected result on last advance")
	}
	if result.Score != 2 || result.TotalQuestions != 3 || view.Missed != 1 {
		t.Fatalf("expected score 2 of 3 with 1 missed, got %+v view=%+v", result, view)
	}
	if !result.Questions[1].TimedOut() {
		t.Fatalf("timeout must be recorded on question 2")
	}
	if !result.Date.Equal(at) || result.Topic != "Physics" {
		t.Fatalf("unexpected result metadata %+v", result)
	}
	if len(completed) != 1 {
		t.Fatalf("expected onComplete once, got %d", len(completed))
	}
	select {
	case <-s.Done():
	default:
		t.Fatalf("done channel should be closed")
	}
}

func TestSessionLateTickIsInert(t *testing.T) {
	s, _ := NewSession(testQuestions(2), "Physics", WithTimeLimit(2))
	s.Tick()
	if _, err := s.Select(1); err != nil {
		t.Fatalf("select: %v", err)
	}
	for i := 0; i < 5; i++ {
		if s.Tick() {
			t.Fatalf("tick after answer must not time out")
		}
	}
	v := s.View()
	if v.Score+v.Missed != 1 {
		t.Fatalf("question counted twice: score=%d missed=%d", v.Score, v.Missed)
	}
	if v.TimeRemaining != 1 {
		t.Fatalf("countdown must freeze after answer, got %d", v.TimeRemaining)
	}
	if v.CorrectAnswerIndex == nil || *v.CorrectAnswerIndex != 0 {
		t.Fatalf("expected correct index revealed after answer, got %v", v.CorrectAnswerIndex)
	}
}

func TestSessionRejectsInvalidTransitions(t *testing.T) {
	s, _ := NewSession(testQuestions(2), "Physics")

	if v := s.View(); v.CorrectAnswerIndex != nil || v.Explanation != "" {
		t.Fatalf("answer must stay hidden before a pick, got %+v", v)
	}
	if _, _, err := s.Advance(); !errors.Is(err, domain.ErrNotAnswered) {
		t.Fatalf("expected not answered, got %v", err)
	}
	if _, err := s.Select(0); err != nil {
		t.Fatalf("select: %v", err)
	}
	if _, err := s.Select(1); !errors.Is(err, domain.ErrAlreadyAnswered) {
		t.Fatalf("expected already answered, got %v", err)
	}
	if v := s.View(); v.Score != 1 || v.Missed != 0 || *v.SelectedOption != 0 {
		t.Fatalf("second pick changed state: %+v", v)
	}

	view := mustAdvance(t, s)
	if view.Index != 1 || view.SelectedOption != nil || view.TimeRemaining != DefaultTimeLimit || !view.IsLast {
		t.Fatalf("unexpected view after advance %+v", view)
	}
}

func TestSessionExit(t *testing.T) {
	exits := 0
	completes := 0
	s, _ := NewSession(testQuestions(2), "Physics",
		WithOnExit(func() { exits++ }),
		WithOnComplete(func(domain.QuizResult) { completes++ }),
	)
	if _, err := s.Select(3); err != nil {
		t.Fatalf("select: %v", err)
	}
	if err := s.Exit(); err != nil {
		t.Fatalf("exit: %v", err)
	}
	if err := s.Exit(); !errors.Is(err, domain.ErrSessionClosed) {
		t.Fatalf("expected closed on second exit, got %v", err)
	}
	if _, err := s.Select(0); !errors.Is(err, domain.ErrSessionClosed) {
		t.Fatalf("expected closed, got %v", err)
	}
	if _, _, err := s.Advance(); !errors.Is(err, domain.ErrSessionClosed) {
		t.Fatalf("expected closed, got %v", err)
	}
	if s.Tick() {
		t.Fatalf("exited session must not tick")
	}
	if exits != 1 || completes != 0 {
		t.Fatalf("expected one exit and no completion, got exits=%d completes=%d", exits, completes)
	}
}

func TestSessionRequiresQuestions(t *testing.T) {
	if _, err := NewSession(nil, "Physics"); !errors.Is(err, domain.ErrEmptySession) {
		t.Fatalf("expected empty session, got %v", err)
	}
	bad := testQuestions(1)
	bad[0].CorrectAnswerIndex = 9
	if _, err := NewSession(bad, "Physics"); !errors.Is(err, domain.ErrInvalidQuestion) {
		t.Fatalf("expected invalid question, got %v", err)
	}
}

func TestSessionClearsIncomingAnswers(t *testing.T) {
	qs := testQuestions(1)
	stale := 2
	qs[0].UserAnswer = &stale
	s, _ := NewSession(qs, "Physics")
	if _, err := s.Select(0); err != nil {
		t.Fatalf("pre-set answers must be cleared: %v", err)
	}
	if *qs[0].UserAnswer != 2 {
		t.Fatalf("caller's slice must not be modified")
	}
}

func TestSessionSubscribeReceivesUpdates(t *testing.T) {
	s, _ := NewSession(testQuestions(2), "Physics")
	ch, cancel := s.Subscribe()
	defer cancel()

	initial := <-ch
	if initial.Phase != domain.PhaseAwaitingAnswer || initial.TimeRemaining != DefaultTimeLimit {
		t.Fatalf("unexpected initial view %+v", initial)
	}

	s.Tick()
	if v := <-ch; v.TimeRemaining != DefaultTimeLimit-1 {
		t.Fatalf("expected tick update, got %+v", v)
	}

	if _, err := s.Select(0); err != nil {
		t.Fatalf("select: %v", err)
	}
	if v := <-ch; v.Phase != domain.PhaseAnswered || v.Score != 1 {
		t.Fatalf("expected answered update, got %+v", v)
	}
}

func TestSessionRunTicksUntilClosed(t *testing.T) {
	s, _ := NewSession(testQuestions(1), "Physics", WithTimeLimit(2))
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	done := make(chan struct{})
	go func() {
		s.Run(ctx, 5*time.Millisecond)
		close(done)
	}()

	deadline := time.After(time.Second)
	for s.View().Phase != domain.PhaseAnswered {
		select {
		case <-deadline:
			t.Fatalf("expected timeout from running ticker, view %+v", s.View())
		case <-time.After(5 * time.Millisecond):
		}
	}

	if _, _, err := s.Advance(); err != nil {
		t.Fatalf("advance: %v", err)
	}
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("run should stop once the session completes")
	}
}

func mustAdvance(t *testing.T, s *Session) domain.SessionView {
	t.Helper()
	view, result, err := s.Advance()
	if err != nil {
		t.Fatalf("advance: %v", err)
	}
	if result != nil {
		t.Fatalf("unexpected completion")
	}
	return view
}

func TestSessionSubscribeNeverDeliversOlderView(t *testing.T) {
	s, _ := NewSession(testQuestions(1), "Physics", WithTimeLimit(1<<30))
	stop := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-stop:
				return
			default:
				s.Tick()
			}
		}
	}()
	defer func() {
		close(stop)
		wg.Wait()
	}()

	for i := 0; i < 200; i++ {
		ch, cancel := s.Subscribe()
		last := <-ch
	drain:
		for {
			select {
			case v := <-ch:
				if v.TimeRemaining > last.TimeRemaining {
					cancel()
					t.Fatalf("view with %d remaining arrived after %d", v.TimeRemaining, last.TimeRemaining)
				}
				last = v
			default:
				break drain
			}
		}
		cancel()
	}
}
