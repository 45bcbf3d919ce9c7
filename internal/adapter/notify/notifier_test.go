package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"go.uber.org/fx/fxtest"

	"github.com/polkiloo/dealerflow/internal/config"
	"github.com/polkiloo/dealerflow/internal/domain/model"
)

type publisherStub struct {
	err   error
	data  []byte
	attrs map[string]string
}

func (p *publisherStub) Publish(_ context.Context, data []byte, attrs map[string]string) (string, error) {
	p.data, p.attrs = data, attrs
	return "msg-1", p.err
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func TestNotifierPublishesJSON(t *testing.T) {
	pub := &publisherStub{}
	n := &Notifier{publisher: pub, logger: discardLogger()}

	msg := model.Notification{UserID: 7, Message: "purchase_order 3 moved to Approved", Link: "/purchase_order/3"}
	if err := n.Notify(context.Background(), msg); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var got model.Notification
	if err := json.Unmarshal(pub.data, &got); err != nil {
		t.Fatalf("invalid payload: %v", err)
	}
	if got != msg || pub.attrs["user_id"] != "7" {
		t.Fatalf("unexpected message: %+v attrs=%v", got, pub.attrs)
	}
}

func TestNotifierPublishError(t *testing.T) {
	boom := errors.New("boom")
	n := &Notifier{publisher: &publisherStub{err: boom}, logger: discardLogger()}
	if err := n.Notify(context.Background(), model.Notification{UserID: 1}); !errors.Is(err, boom) {
		t.Fatalf("expected publish error, got %v", err)
	}
}

func TestLogNotifier(t *testing.T) {
	var buf bytes.Buffer
	n := NewLogNotifier(slog.New(slog.NewJSONHandler(&buf, nil)))
	if err := n.Notify(context.Background(), model.Notification{UserID: 4, Message: "hello"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(buf.String(), `"user_id":4`) {
		t.Fatalf("expected notification in log, got %s", buf.String())
	}
}

func TestNewNotifierFallsBackToLog(t *testing.T) {
	lc := fxtest.NewLifecycle(t)
	n, err := newNotifier(notifierParams{Ctx: context.Background(), Config: &config.Config{}, Logger: discardLogger(), Lifecycle: lc})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := n.(*LogNotifier); !ok {
		t.Fatalf("expected log notifier, got %T", n)
	}
}
