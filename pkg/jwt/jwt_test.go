package jwt

import (
	"errors"
	"testing"
	"time"

	"github.com/johnquangdev/doorbell/pkg/config"
)

func newManager(secret, issuer string, expiry time.Duration) *Manager {
	return NewManager(config.JWTConfig{AccessSecret: secret, AccessExpiry: expiry, Issuer: issuer})
}

func TestRoundTrip(t *testing.T) {
	m := newManager("s3cret", "doorbell", time.Minute)

	token, err := m.GenerateAccessToken("host-1", "host")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	claims, err := m.ValidateAccessToken(token)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if claims.Identity() != "host-1" || claims.Role != "host" {
		t.Fatalf("unexpected claims %+v", claims)
	}
}

func TestRejectedTokens(t *testing.T) {
	good := newManager("s3cret", "doorbell", time.Minute)
	token, _ := good.GenerateAccessToken("host-1", "")
	expired, _ := newManager("s3cret", "doorbell", -time.Minute).GenerateAccessToken("host-1", "")

	tests := []struct {
		name  string
		m     *Manager
		token string
	}{
		{"wrong secret", newManager("other", "doorbell", time.Minute), token},
		{"wrong issuer", newManager("s3cret", "someone-else", time.Minute), token},
		{"expired", good, expired},
		{"garbage", good, "not-a-token"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := tt.m.ValidateAccessToken(tt.token); !errors.Is(err, ErrInvalidToken) {
				t.Fatalf("expected ErrInvalidToken, got %v", err)
			}
		})
	}
}
