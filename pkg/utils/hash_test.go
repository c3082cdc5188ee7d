package utils

import "testing"

func TestHashStringDeterministic(t *testing.T) {
	a := HashString("call\x00proposal\x00question\x00model")
	b := HashString("call\x00proposal\x00question\x00model")
	if a != b {
		t.Fatalf("hash is not deterministic: %q vs %q", a, b)
	}
	if len(a) != 32 {
		t.Fatalf("expected 32 hex chars, got %d", len(a))
	}
	if HashString("other input") == a {
		t.Fatalf("different inputs produced the same hash")
	}
}

func TestShortToken(t *testing.T) {
	token := ShortToken("run-1:1700000000", 8)
	if len(token) != 8 {
		t.Fatalf("expected 8 chars, got %d", len(token))
	}
	if ShortToken("x", 100) != HashString("x") {
		t.Fatalf("oversized n should cap at full hash length")
	}
}
