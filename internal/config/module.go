package config

import "go.uber.org/fx"

// Module loads and validates the service configuration once per graph.
var Module = fx.Provide(Load)
