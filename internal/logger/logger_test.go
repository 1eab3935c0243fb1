package logger

import "testing"

func TestSanitizeRedactsSecrets(t *testing.T) {
	out := sanitizeKVs([]interface{}{"api_key", "sk-123", "topic", "Atomic", "dangling"})
	if len(out) != 5 {
		t.Fatalf("expected 5 items, got %d", len(out))
	}
	if out[1] != "[REDACTED]" {
		t.Fatalf("expected api_key redacted, got %v", out[1])
	}
	if out[3] != "Atomic" {
		t.Fatalf("expected topic untouched, got %v", out[3])
	}
	if out[4] != "dangling" {
		t.Fatalf("expected trailing key kept, got %v", out[4])
	}
}

func TestOrNop(t *testing.T) {
	if OrNop(nil) == nil {
		t.Fatalf("expected a usable logger")
	}
	OrNop(nil).Info("discarded", "k", "v")
}
