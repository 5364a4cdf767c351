package service

import (
	"testing"
	"time"
)

func TestTokenRoundTrip(t *testing.T) {
	tokens := NewTokenService("test-secret", time.Hour)

	signed, err := tokens.GenerateToken(42, "miner@example.com", "user")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	claims, err := tokens.ValidateToken(signed)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if claims.UserID != 42 {
		t.Fatalf("user id = %d, want 42", claims.UserID)
	}
	if claims.Email != "miner@example.com" {
		t.Fatalf("email = %q, want miner@example.com", claims.Email)
	}
	if claims.Role != "user" {
		t.Fatalf("role = %q, want user", claims.Role)
	}
}

func TestTokenRequiresUserID(t *testing.T) {
	tokens := NewTokenService("test-secret", time.Hour)
	if _, err := tokens.GenerateToken(0, "miner@example.com", "user"); err == nil {
		t.Fatal("expected error for zero user id")
	}
}

func TestTokenWrongSecret(t *testing.T) {
	issuer := NewTokenService("secret-a", time.Hour)
	verifier := NewTokenService("secret-b", time.Hour)

	signed, err := issuer.GenerateToken(7, "miner@example.com", "user")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if _, err := verifier.ValidateToken(signed); err == nil {
		t.Fatal("expected validation failure with wrong secret")
	}
}

func TestTokenExpired(t *testing.T) {
	tokens := NewTokenService("test-secret", time.Nanosecond)

	signed, err := tokens.GenerateToken(7, "miner@example.com", "user")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	time.Sleep(5 * time.Millisecond)
	if _, err := tokens.ValidateToken(signed); err == nil {
		t.Fatal("expected expired token to fail validation")
	}
}

func TestTokenGarbage(t *testing.T) {
	tokens := NewTokenService("test-secret", time.Hour)
	if _, err := tokens.ValidateToken("not.a.jwt"); err == nil {
		t.Fatal("expected validation failure for garbage token")
	}
}
