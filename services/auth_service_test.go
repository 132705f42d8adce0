package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"quizdeck/models"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func TestValidateCredentials(t *testing.T) {
	cases := []struct {
		name     string
		password string
		ok       bool
	}{
		{"alice", "secret1", true},
		{"  alice  ", "secret1", true},
		{"a-b_c9", "secret1", true},
		{"ab", "secret1", false},
		{strings.Repeat("a", 51), "secret1", false},
		{"bad name", "secret1", false},
		{"bad!name", "secret1", false},
		{"alice", "short", false},
		{"alice", strings.Repeat("p", 101), false},
	}
	for _, c := range cases {
		err := ValidateCredentials(c.name, c.password)
		if c.ok && err != nil {
			t.Fatalf("ValidateCredentials(%q, %q) = %v, want nil", c.name, c.password, err)
		}
		if !c.ok {
			if err == nil {
				t.Fatalf("ValidateCredentials(%q, %q) = nil, want error", c.name, c.password)
			}
			if !errors.Is(err, ErrValidation) {
				t.Fatalf("expected a validation error, got %v", err)
			}
		}
	}
}

func TestTokenRoundTrip(t *testing.T) {
	svc := NewAuthService(nil, nil, "test-secret")
	user := &models.User{ID: "u-1", Name: "alice"}

	token, err := svc.GenerateToken(user)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	id, name, err := svc.ParseToken(token)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if id != "u-1" || name != "alice" {
		t.Fatalf("claims = (%q, %q), want (u-1, alice)", id, name)
	}
}

func TestTokenRejectsWrongSecret(t *testing.T) {
	issuer := NewAuthService(nil, nil, "secret-a")
	verifier := NewAuthService(nil, nil, "secret-b")

	token, err := issuer.GenerateToken(&models.User{ID: "u-1", Name: "alice"})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if _, _, err := verifier.ParseToken(token); err == nil {
		t.Fatalf("token signed with another secret must not parse")
	}
}

func TestTokenExpiry(t *testing.T) {
	svc := NewAuthService(nil, nil, "test-secret")

	issued := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return issued }
	token, err := svc.GenerateToken(&models.User{ID: "u-1", Name: "alice"})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	svc.now = func() time.Time { return issued.Add(6 * 24 * time.Hour) }
	if _, _, err := svc.ParseToken(token); err != nil {
		t.Fatalf("token must still be valid inside its lifetime: %v", err)
	}

	svc.now = func() time.Time { return issued.Add(8 * 24 * time.Hour) }
	if _, _, err := svc.ParseToken(token); err == nil {
		t.Fatalf("token must expire after its lifetime")
	}
}

func TestLogoutBlacklistsToken(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	t.Cleanup(mr.Close)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	svc := NewAuthService(nil, client, "test-secret")
	ctx := context.Background()

	token, err := svc.GenerateToken(&models.User{ID: "u-1", Name: "alice"})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	if svc.IsBlacklisted(ctx, token) {
		t.Fatalf("fresh token must not be blacklisted")
	}
	if err := svc.Logout(ctx, token); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if !svc.IsBlacklisted(ctx, token) {
		t.Fatalf("logged-out token must be blacklisted")
	}

	// The entry expires with the token, keeping the blacklist bounded.
	mr.FastForward(8 * 24 * time.Hour)
	if svc.IsBlacklisted(ctx, token) {
		t.Fatalf("blacklist entry must expire with the token")
	}
}
