package instance

import "testing"

func TestIDPrecedence(t *testing.T) {
	t.Setenv("PLANTOPS_INSTANCE_ID", "api-2")
	t.Setenv("DYNO", "web.1")
	if got := ID(); got != "api-2" {
		t.Fatalf("expected api-2, got %q", got)
	}

	t.Setenv("PLANTOPS_INSTANCE_ID", "")
	if got := ID(); got != "web.1" {
		t.Fatalf("expected web.1, got %q", got)
	}

	t.Setenv("DYNO", "")
	if got := ID(); got == "" {
		t.Fatal("expected hostname fallback")
	}
}
