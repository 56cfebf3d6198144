package auth

import (
	"testing"
	"time"
)

func newTestManager() *Manager {
	return NewManager("test-secret-key", time.Hour)
}

func TestIssueVerifyRoundTrip(t *testing.T) {
	m := newTestManager()

	raw, jti, err := m.Issue("user-123")
	if err != nil {
		t.Fatalf("Issue() unexpected error: %v", err)
	}
	if raw == "" || jti == "" {
		t.Fatalf("Issue() returned empty token or jti")
	}

	claims, err := m.Verify(raw)
	if err != nil {
		t.Fatalf("Verify() unexpected error: %v", err)
	}
	if claims.UserID != "user-123" {
		t.Errorf("claims.UserID = %q, want %q", claims.UserID, "user-123")
	}
	if claims.Kind != KindAuth {
		t.Errorf("claims.Kind = %q, want %q", claims.Kind, KindAuth)
	}
	if claims.JTI != jti {
		t.Errorf("claims.JTI = %q, want %q", claims.JTI, jti)
	}
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	m := newTestManager()
	other := NewManager("a-different-secret", time.Hour)

	raw, _, err := m.Issue("user-123")
	if err != nil {
		t.Fatalf("Issue() unexpected error: %v", err)
	}

	if _, err := other.Verify(raw); err == nil {
		t.Fatal("Verify() accepted token signed with a different secret")
	}
}

func TestVerifyRejectsExpired(t *testing.T) {
	m := NewManager("test-secret-key", -time.Minute)

	raw, _, err := m.Issue("user-123")
	if err != nil {
		t.Fatalf("Issue() unexpected error: %v", err)
	}

	if _, err := m.Verify(raw); err == nil {
		t.Fatal("Verify() accepted an expired token")
	}
}

func TestVerifyRejectsGarbage(t *testing.T) {
	m := newTestManager()

	if _, err := m.Verify("not-a-token"); err == nil {
		t.Fatal("Verify() accepted a malformed token")
	}
}

func TestHashSessionToken(t *testing.T) {
	m := newTestManager()

	h1 := m.HashSessionToken("token-a")
	h2 := m.HashSessionToken("token-a")
	h3 := m.HashSessionToken("token-b")

	if h1 != h2 {
		t.Error("HashSessionToken() is not deterministic for the same input")
	}
	if h1 == h3 {
		t.Error("HashSessionToken() collided for different inputs")
	}

	other := NewManager("a-different-secret", time.Hour)
	if other.HashSessionToken("token-a") == h1 {
		t.Error("HashSessionToken() ignored the secret")
	}
}
