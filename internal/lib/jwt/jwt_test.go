package jwt

import (
	"testing"
	"time"
)

func TestTokenRoundTrip(t *testing.T) {
	token, err := NewToken("test_user2", "secret", time.Hour)
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}

	username, err := ParseToken(token, "secret")
	if err != nil {
		t.Fatalf("failed to parse token: %v", err)
	}
	if username != "test_user2" {
		t.Errorf("expected username 'test_user2', got %q", username)
	}
}

func TestParseTokenWrongSecret(t *testing.T) {
	token, err := NewToken("test_user2", "secret", time.Hour)
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}

	if _, err := ParseToken(token, "other"); err == nil {
		t.Error("expected error for token signed with another secret")
	}
}

func TestParseTokenExpired(t *testing.T) {
	token, err := NewToken("test_user2", "secret", -time.Minute)
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}

	if _, err := ParseToken(token, "secret"); err == nil {
		t.Error("expected error for expired token")
	}
}
