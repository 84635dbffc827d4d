package service

import (
	"os"
	"testing"
)

func initTestSecret(t *testing.T) {
	t.Helper()
	os.Setenv("JWT_SECRET", "test-secret")
	InitJWT()
}

func TestSessionTokenRoundTrip(t *testing.T) {
	initTestSecret(t)

	token, err := GenerateToken("a@example.com")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	email, err := ParseToken(token)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if email != "a@example.com" {
		t.Fatalf("subject = %q", email)
	}
}

func TestResetTokenIsNotASessionToken(t *testing.T) {
	initTestSecret(t)

	reset, err := GenerateResetToken("a@example.com")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if _, err := ParseToken(reset); err == nil {
		t.Fatal("reset token accepted as session token")
	}
	if email, err := ParseResetToken(reset); err != nil || email != "a@example.com" {
		t.Fatalf("reset parse: %q, %v", email, err)
	}

	session, _ := GenerateToken("a@example.com")
	if _, err := ParseResetToken(session); err == nil {
		t.Fatal("session token accepted for password reset")
	}
}

func TestParseRejectsGarbage(t *testing.T) {
	initTestSecret(t)

	for _, tok := range []string{"", "not-a-token", "a.b.c"} {
		if _, err := ParseToken(tok); err == nil {
			t.Fatalf("token %q accepted", tok)
		}
	}
}
