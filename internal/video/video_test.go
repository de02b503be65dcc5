package video

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

func testConfig() Config {
	return Config{
		AccountSID:   "AC123",
		APIKeySID:    "SK456",
		APIKeySecret: "shh",
		TTL:          time.Hour,
	}
}

func TestTokenForTown(t *testing.T) {
	p := NewJWTProvider(testConfig())
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	p.now = func() time.Time { return now }

	tok, err := p.TokenForTown(context.Background(), "town-1", "player-1")
	if err != nil {
		t.Fatalf("TokenForTown: %v", err)
	}
	if strings.Count(tok, ".") != 2 {
		t.Fatalf("token %q is not a JWS", tok)
	}

	claims, err := p.Parse(tok)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if claims.Grants.Identity != "player-1" || claims.Grants.Video.Room != "town-1" {
		t.Fatalf("grants = %+v", claims.Grants)
	}
	if claims.Issuer != "SK456" || claims.Subject != "AC123" {
		t.Fatalf("iss=%q sub=%q", claims.Issuer, claims.Subject)
	}
	if claims.ID != "SK456-1714564800" {
		t.Fatalf("jti = %q", claims.ID)
	}
	if got := claims.ExpiresAt.Time; !got.Equal(now.Add(time.Hour)) {
		t.Fatalf("exp = %v", got)
	}
}

func TestTokenRejectedWithWrongSecret(t *testing.T) {
	p := NewJWTProvider(testConfig())
	tok, err := p.TokenForTown(context.Background(), "town-1", "player-1")
	if err != nil {
		t.Fatalf("TokenForTown: %v", err)
	}

	cfg := testConfig()
	cfg.APIKeySecret = "other"
	if _, err := NewJWTProvider(cfg).Parse(tok); err == nil {
		t.Fatal("token verified with the wrong secret")
	}
}

func TestNotConfigured(t *testing.T) {
	cfg := testConfig()
	cfg.APIKeySecret = ""
	_, err := NewJWTProvider(cfg).TokenForTown(context.Background(), "t", "p")
	if !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("err = %v, want ErrNotConfigured", err)
	}
}

func TestDevProvider(t *testing.T) {
	tok, err := DevProvider{}.TokenForTown(context.Background(), "t", "p")
	if err != nil || tok != "dev:t:p" {
		t.Fatalf("token = %q, %v", tok, err)
	}
}
