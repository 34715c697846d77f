package auth

import (
	"testing"
	"time"
)

func TestPasswordHashRoundTrip(t *testing.T) {
	m := NewManager("test-secret", time.Minute)

	hash, err := m.HashPassword("hunter22")
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}
	if hash == "hunter22" {
		t.Fatal("password stored in plaintext")
	}

	if !m.CheckPassword(hash, "hunter22") {
		t.Error("correct password rejected")
	}
	if m.CheckPassword(hash, "hunter23") {
		t.Error("wrong password accepted")
	}
}

func TestTokenRoundTrip(t *testing.T) {
	m := NewManager("test-secret", time.Minute)

	token, err := m.IssueToken("user-42")
	if err != nil {
		t.Fatalf("IssueToken failed: %v", err)
	}

	userID, err := m.VerifyToken(token)
	if err != nil {
		t.Fatalf("VerifyToken failed: %v", err)
	}
	if userID != "user-42" {
		t.Errorf("expected user-42, got %s", userID)
	}
}

func TestTokenWrongSecret(t *testing.T) {
	issuer := NewManager("secret-a", time.Minute)
	verifier := NewManager("secret-b", time.Minute)

	token, err := issuer.IssueToken("user-42")
	if err != nil {
		t.Fatalf("IssueToken failed: %v", err)
	}

	if _, err := verifier.VerifyToken(token); err != ErrInvalidToken {
		t.Errorf("expected ErrInvalidToken, got %v", err)
	}
}

func TestTokenExpired(t *testing.T) {
	m := NewManager("test-secret", -time.Minute)

	token, err := m.IssueToken("user-42")
	if err != nil {
		t.Fatalf("IssueToken failed: %v", err)
	}

	if _, err := m.VerifyToken(token); err != ErrInvalidToken {
		t.Errorf("expected ErrInvalidToken for expired token, got %v", err)
	}
}

func TestTokenGarbage(t *testing.T) {
	m := NewManager("test-secret", time.Minute)

	for _, tok := range []string{"", "not.a.token", "aaaa.bbbb.cccc"} {
		if _, err := m.VerifyToken(tok); err != ErrInvalidToken {
			t.Errorf("VerifyToken(%q): expected ErrInvalidToken, got %v", tok, err)
		}
	}
}
