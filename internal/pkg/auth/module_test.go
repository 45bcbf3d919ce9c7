package auth

import (
	"testing"
	"time"

	"github.com/polkiloo/dealerflow/internal/config"
)

func TestNewTokenStrategy(t *testing.T) {
	strategy := newTokenStrategy(strategyParams{Config: &config.Config{JWTSecret: "top-secret"}})
	jwtStrategy, ok := strategy.(*JWTStrategy)
	if !ok {
		t.Fatalf("expected *JWTStrategy, got %T", strategy)
	}
	if string(jwtStrategy.secret) != "top-secret" {
		t.Fatalf("unexpected secret: %q", string(jwtStrategy.secret))
	}
	if jwtStrategy.ttl != 24*time.Hour {
		t.Fatalf("unexpected ttl: %s", jwtStrategy.ttl)
	}
}

func TestNewCapabilities(t *testing.T) {
	caps := newCapabilities(strategyParams{Config: &config.Config{Roles: map[string][]string{"Admin": {"*"}}}})
	if len(caps.roles["admin"]) != 1 {
		t.Fatalf("expected role names to be normalized, got %v", caps.roles)
	}
}
