package auth

import (
	"github.com/polkiloo/dealerflow/internal/config"
	"go.uber.org/fx"
)

// Module provides authentication and authorization primitives via fx.
var Module = fx.Options(
	fx.Provide(newTokenStrategy),
	fx.Provide(newCapabilities),
)

type strategyParams struct {
	fx.In

	Config *config.Config
}

func newTokenStrategy(p strategyParams) Strategy {
	return NewJWTStrategy(p.Config.JWTSecret, Options{})
}

func newCapabilities(p strategyParams) *Capabilities {
	return NewCapabilities(p.Config.Roles)
}
