package app

// DefaultTimeLimit is the per-question countdown in seconds.
const DefaultTimeLimit = 30

// Timer is a per-question countdown driven by explicit ticks.
// It never goes below zero and reports expiry exactly once per Start.
type Timer struct {
	limit     int
	remaining int
	running   bool
	fired     bool
}

func NewTimer(limit int) *Timer {
	if limit <= 0 {
		limit = DefaultTimeLimit
	}
	return &Timer{limit: limit, remaining: limit}
}

// Start re-arms the countdown at the full limit.
func (t *Timer) Start() {
	t.remaining = t.limit
	t.running = true
	t.fired = false
}

// Stop cancels further decrements. Remaining time is kept for display.
func (t *Timer) Stop() {
	t.running = false
}

// Tick decrements once and returns true only on the tick that reaches zero.
func (t *Timer) Tick() bool {
	if !t.running || t.fired {
		return false
	}
	if t.remaining > 0 {
		t.remaining--
	}
	if t.remaining == 0 {
		t.fired = true
		t.running = false
		return true
	}
	return false
}

func (t *Timer) Remaining() int { return t.remaining }

func (t *Timer) Running() bool { return t.running }

func (t *Timer) Limit() int { return t.limit }
