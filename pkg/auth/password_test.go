package auth

import "testing"

func TestHashPasswordDeterministic(t *testing.T) {
	a := HashPassword("0811234567")
	b := HashPassword("0811234567")
	if a != b {
		t.Fatalf("same secret produced different digests: %s vs %s", a, b)
	}
	if len(a) != 64 {
		t.Fatalf("expected 64 hex chars, got %d", len(a))
	}
}

func TestVerifyPassword(t *testing.T) {
	digest := HashPassword("0811234567")

	if !VerifyPassword(digest, "0811234567") {
		t.Error("correct secret rejected")
	}
	if VerifyPassword(digest, "0811234568") {
		t.Error("wrong secret accepted")
	}
	if VerifyPassword(digest, "") {
		t.Error("empty secret accepted")
	}
}
