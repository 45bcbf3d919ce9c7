package kv

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bsm/redislock"

	domainErrors "github.com/polkiloo/dealerflow/internal/domain/errors"
	"github.com/polkiloo/dealerflow/internal/usecase"
)

const lockPrefix = "lock:"

type obtainer interface {
	Obtain(ctx context.Context, key string, ttl time.Duration, opt *redislock.Options) (*redislock.Lock, error)
}

// Locker hands out redis locks with a fixed TTL.
type Locker struct {
	client obtainer
	ttl    time.Duration
	retry  redislock.RetryStrategy
}

// NewLocker creates a Locker. A contended key is retried briefly before giving up.
func NewLocker(client *redislock.Client, ttl time.Duration) *Locker {
	return &Locker{
		client: client,
		ttl:    ttl,
		retry:  redislock.LimitRetry(redislock.LinearBackoff(100*time.Millisecond), 5),
	}
}

// Obtain locks key or fails with ErrConcurrentTransition when someone else holds it.
func (l *Locker) Obtain(ctx context.Context, key string) (usecase.Lock, error) {
	lock, err := l.client.Obtain(ctx, lockPrefix+key, l.ttl, &redislock.Options{RetryStrategy: l.retry})
	if errors.Is(err, redislock.ErrNotObtained) {
		return nil, fmt.Errorf("%w: %s", domainErrors.ErrConcurrentTransition, key)
	}
	if err != nil {
		return nil, fmt.Errorf("obtain lock %s: %w", key, err)
	}
	return &redisLock{lock: lock}, nil
}

type redisLock struct {
	lock *redislock.Lock
}

// Release frees the lock. A lock that already expired is not an error.
func (l *redisLock) Release(ctx context.Context) error {
	if err := l.lock.Release(ctx); err != nil && !errors.Is(err, redislock.ErrLockNotHeld) {
		return err
	}
	return nil
}
