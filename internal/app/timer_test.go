package app

import "testing"

func TestTimerFiresOnceAndHoldsAtZero(t *testing.T) {
	timer := NewTimer(3)
	timer.Start()

	fired := 0
	for i := 0; i < 10; i++ {
		if timer.Tick() {
			fired++
		}
	}
	if fired != 1 {
		t.Fatalf("expected exactly one timeout, got %d", fired)
	}
	if timer.Remaining() != 0 {
		t.Fatalf("expected remaining to hold at 0, got %d", timer.Remaining())
	}
}

func TestTimerStopCancelsAndStartRearms(t *testing.T) {
	timer := NewTimer(5)
	timer.Start()
	timer.Tick()
	timer.Stop()
	for i := 0; i < 10; i++ {
		if timer.Tick() {
			t.Fatalf("stopped timer must not fire")
		}
	}
	if timer.Remaining() != 4 {
		t.Fatalf("expected 4 remaining after stop, got %d", timer.Remaining())
	}

	timer.Start()
	if timer.Remaining() != 5 || !timer.Running() {
		t.Fatalf("expected re-armed at full limit, got %d running=%v", timer.Remaining(), timer.Running())
	}
}

func TestTimerDefaultsLimit(t *testing.T) {
	if got := NewTimer(0).Limit(); got != DefaultTimeLimit {
		t.Fatalf("expected default limit %d, got %d", DefaultTimeLimit, got)
	}
}
