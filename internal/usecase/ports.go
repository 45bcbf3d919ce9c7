package usecase

import (
	"context"
	"fmt"

	"github.com/polkiloo/dealerflow/internal/domain/model"
)

// Authorizer answers capability questions for an actor.
type Authorizer interface {
	Can(actor model.Actor, capability string) bool
}

// Renderer turns a template and its data into a PDF.
type Renderer interface {
	Render(ctx context.Context, template string, data map[string]any) ([]byte, error)
}

// FileStore persists generated files.
type FileStore interface {
	Store(ctx context.Context, content []byte, name, kind string) (model.FileHandle, error)
}

// Notifier delivers a message to a user.
type Notifier interface {
	Notify(ctx context.Context, n model.Notification) error
}

// Localizer runs fn with a temporary locale carried by the context.
type Localizer interface {
	WithLocale(ctx context.Context, code string, fn func(ctx context.Context) error) error
}

// Lock is a held distributed lock.
type Lock interface {
	Release(ctx context.Context) error
}

// Locker serializes work on a key across service instances.
type Locker interface {
	Obtain(ctx context.Context, key string) (Lock, error)
}

// Cache is a shared read-through cache.
type Cache interface {
	Get(ctx context.Context, key string, dest any) (bool, error)
	Set(ctx context.Context, key string, value any) error
	Delete(ctx context.Context, keys ...string) error
}

func orderCacheKey(kind model.ResourceKind, id int64) string {
	return fmt.Sprintf("order:%s:%d", kind, id)
}

func calculationCacheKey(vehicleID int64) string {
	return fmt.Sprintf("calculation:vehicle:%d", vehicleID)
}

func vehicleCacheKey(id int64) string {
	return fmt.Sprintf("vehicle:%d", id)
}

func transitionLockKey(kind model.ResourceKind, id int64) string {
	return fmt.Sprintf("transition:%s:%d", kind, id)
}
