package gcs

import (
	"context"
	"fmt"
	"log/slog"

	"cloud.google.com/go/storage"
	"go.uber.org/fx"
	"google.golang.org/api/option"

	"github.com/polkiloo/dealerflow/internal/config"
	"github.com/polkiloo/dealerflow/internal/usecase"
)

// Module wires the bucket backed FileStore.
var Module = fx.Options(
	fx.Provide(newClient, newFileStore),
	fx.Invoke(registerLifecycle),
)

type clientParams struct {
	fx.In

	Ctx    context.Context
	Config *config.Config
}

var newStorageClient = storage.NewClient

func newClient(p clientParams) (*storage.Client, error) {
	var opts []option.ClientOption
	if p.Config.GCSCredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(p.Config.GCSCredentialsFile))
	}
	client, err := newStorageClient(p.Ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create storage client: %w", err)
	}
	return client, nil
}

func newFileStore(client *storage.Client, cfg *config.Config, logger *slog.Logger) usecase.FileStore {
	return NewFileStore(client, cfg.GCSBucket, logger)
}

func registerLifecycle(lc fx.Lifecycle, client *storage.Client) {
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			return client.Close()
		},
	})
}
