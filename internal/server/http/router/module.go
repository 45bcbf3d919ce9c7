package router

import (
	"go.uber.org/fx"

	"github.com/polkiloo/dealerflow/internal/app"
	"github.com/polkiloo/dealerflow/internal/pkg/auth"
	"github.com/polkiloo/dealerflow/internal/server/http/handlers"
	"github.com/polkiloo/dealerflow/internal/server/http/middleware"
)

// Module registers HTTP router construction for fx runtime.
var Module = fx.Options(
	fx.Provide(
		func(f *app.DealerFacade) handlers.DealerFacade { return f },
		func(s auth.Strategy) middleware.TokenParser { return s },
	),
	fx.Provide(Setup),
)
