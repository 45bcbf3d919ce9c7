package locale

import (
	"go.uber.org/fx"

	"github.com/polkiloo/dealerflow/internal/config"
	"github.com/polkiloo/dealerflow/internal/usecase"
)

// Module provides the context-scoped Localizer.
var Module = fx.Provide(
	func(cfg *config.Config) (*Localizer, error) { return New(cfg.DefaultLocale) },
	func(l *Localizer) usecase.Localizer { return l },
)
