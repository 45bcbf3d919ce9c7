package di

import (
	"github.com/polkiloo/dealerflow/internal/adapter/gcs"
	"github.com/polkiloo/dealerflow/internal/adapter/kv"
	"github.com/polkiloo/dealerflow/internal/adapter/locale"
	"github.com/polkiloo/dealerflow/internal/adapter/notify"
	"github.com/polkiloo/dealerflow/internal/adapter/renderer"
	"github.com/polkiloo/dealerflow/internal/app"
	"github.com/polkiloo/dealerflow/internal/config"
	"github.com/polkiloo/dealerflow/internal/logger"
	"github.com/polkiloo/dealerflow/internal/pkg/auth"
	"github.com/polkiloo/dealerflow/internal/server/http/router"
	"github.com/polkiloo/dealerflow/internal/storage/postgres"
	"github.com/polkiloo/dealerflow/internal/usecase"
	"go.uber.org/fx"
)

func Module(opts ...fx.Option) fx.Option {
	modules := []fx.Option{
		config.Module,
		logger.Module,
		auth.Module,
		fx.Provide(func(c *auth.Capabilities) usecase.Authorizer { return c }),
		postgres.Module,
		locale.Module,
		renderer.Module,
		gcs.Module,
		notify.Module,
		kv.Module,
		usecase.Module,
		router.Module,
		app.Module,
	}
	modules = append(modules, opts...)
	return fx.Options(modules...)
}
