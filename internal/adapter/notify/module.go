package notify

import (
	"context"
	"fmt"
	"log/slog"

	"cloud.google.com/go/pubsub"
	"go.uber.org/fx"
	"google.golang.org/api/option"

	"github.com/polkiloo/dealerflow/internal/config"
	"github.com/polkiloo/dealerflow/internal/usecase"
)

// Module provides the Notifier. Without a topic notifications go to the log.
var Module = fx.Provide(newNotifier)

type notifierParams struct {
	fx.In

	Ctx       context.Context
	Config    *config.Config
	Logger    *slog.Logger
	Lifecycle fx.Lifecycle
}

var newPubSubClient = pubsub.NewClient

func newNotifier(p notifierParams) (usecase.Notifier, error) {
	if p.Config.PubSubTopic == "" {
		p.Logger.Info("pubsub topic not configured, notifications are logged")
		return NewLogNotifier(p.Logger), nil
	}

	var opts []option.ClientOption
	if p.Config.GCSCredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(p.Config.GCSCredentialsFile))
	}
	client, err := newPubSubClient(p.Ctx, p.Config.GCPProjectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("create pubsub client: %w", err)
	}

	topic := client.Topic(p.Config.PubSubTopic)
	p.Lifecycle.Append(fx.Hook{
		OnStop: func(context.Context) error {
			topic.Stop()
			return client.Close()
		},
	})
	return NewNotifier(topic, p.Logger), nil
}
