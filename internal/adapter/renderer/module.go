package renderer

import (
	"log/slog"

	"go.uber.org/fx"

	"github.com/polkiloo/dealerflow/internal/config"
	"github.com/polkiloo/dealerflow/internal/usecase"
)

// Module exposes the renderer client to fx graph.
var Module = fx.Provide(newClient)

type clientParams struct {
	fx.In

	Config *config.Config
	Logger *slog.Logger
}

func newClient(p clientParams) (usecase.Renderer, error) {
	return NewHTTPClient(p.Config.RendererAddress, p.Logger)
}
