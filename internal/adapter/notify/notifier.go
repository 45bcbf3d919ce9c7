// Package notify delivers user notifications through a Pub/Sub topic.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"cloud.google.com/go/pubsub"

	"github.com/polkiloo/dealerflow/internal/domain/model"
)

const publishTimeout = 10 * time.Second

// publisher sends one message and waits for the server id.
type publisher interface {
	Publish(ctx context.Context, data []byte, attrs map[string]string) (string, error)
}

type topicPublisher struct {
	topic *pubsub.Topic
}

func (p topicPublisher) Publish(ctx context.Context, data []byte, attrs map[string]string) (string, error) {
	return p.topic.Publish(ctx, &pubsub.Message{Data: data, Attributes: attrs}).Get(ctx)
}

// Notifier publishes notifications as JSON messages.
type Notifier struct {
	publisher publisher
	logger    *slog.Logger
}

// NewNotifier creates a Notifier on topic.
func NewNotifier(topic *pubsub.Topic, logger *slog.Logger) *Notifier {
	return &Notifier{publisher: topicPublisher{topic: topic}, logger: logger}
}

// Notify publishes n and waits for the broker to accept it.
func (n *Notifier) Notify(ctx context.Context, msg model.Notification) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("encode notification: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	id, err := n.publisher.Publish(ctx, data, map[string]string{"user_id": strconv.FormatInt(msg.UserID, 10)})
	if err != nil {
		return fmt.Errorf("publish notification: %w", err)
	}
	n.logger.Debug("notification published", slog.String("message_id", id), slog.Int64("user_id", msg.UserID))
	return nil
}

// LogNotifier writes notifications to the log when no topic is configured.
type LogNotifier struct {
	logger *slog.Logger
}

// NewLogNotifier creates a LogNotifier.
func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

// Notify logs msg.
func (n *LogNotifier) Notify(ctx context.Context, msg model.Notification) error {
	n.logger.InfoContext(ctx, "notification",
		slog.Int64("user_id", msg.UserID), slog.String("message", msg.Message), slog.String("link", msg.Link))
	return nil
}
