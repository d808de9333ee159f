package auth

import (
	"testing"
	"time"
)

func TestIssueAndResolve(t *testing.T) {
	m := NewManager("test-secret", time.Hour)

	token, err := m.Issue(42)
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	got := m.Resolve("Bearer " + token)
	if got.UserID != 42 {
		t.Errorf("Resolve().UserID = %d, want 42", got.UserID)
	}
	if !got.Authenticated() {
		t.Error("Authenticated() = false for a valid token")
	}

	// A raw token without the Bearer prefix resolves too.
	if got := m.Resolve(token); got.UserID != 42 {
		t.Errorf("Resolve(raw).UserID = %d, want 42", got.UserID)
	}
}

func TestResolve_AnonymousOnBadInput(t *testing.T) {
	m := NewManager("test-secret", time.Hour)

	cases := map[string]string{
		"empty":        "",
		"garbage":      "Bearer not.a.jwt",
		"wrong scheme": "Basic dXNlcjpwdw==",
	}
	for name, header := range cases {
		if got := m.Resolve(header); got.Authenticated() {
			t.Errorf("%s: Resolve(%q) authenticated as %d, want anonymous", name, header, got.UserID)
		}
	}
}

func TestResolve_WrongSecret(t *testing.T) {
	token, err := NewManager("secret-a", time.Hour).Issue(7)
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	if got := NewManager("secret-b", time.Hour).Resolve("Bearer " + token); got.Authenticated() {
		t.Errorf("token signed with another secret resolved to %d, want anonymous", got.UserID)
	}
}

func TestResolve_ExpiredToken(t *testing.T) {
	m := NewManager("test-secret", -time.Minute)

	token, err := m.Issue(7)
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}
	if got := m.Resolve("Bearer " + token); got.Authenticated() {
		t.Errorf("expired token resolved to %d, want anonymous", got.UserID)
	}
}
