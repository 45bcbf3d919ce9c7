package test

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"sync"

	"github.com/polkiloo/dealerflow/internal/domain/model"
)

// AuthorizerStub grants every capability unless Denied lists it or CanFn says otherwise.
type AuthorizerStub struct {
	CanFn  func(model.Actor, string) bool
	Denied []string
}

// Can answers the capability question.
func (a AuthorizerStub) Can(actor model.Actor, capability string) bool {
	if a.CanFn != nil {
		return a.CanFn(actor, capability)
	}
	if actor.System {
		return true
	}
	return !slices.Contains(a.Denied, capability)
}

// RenderCall records one Render invocation.
type RenderCall struct {
	Template string
	Locale   string
	Data     map[string]any
}

// RendererStub returns fixed PDF bytes and records calls.
type RendererStub struct {
	RenderFn func(context.Context, string, map[string]any) ([]byte, error)
	// LocaleOf extracts the locale the call ran under, if set.
	LocaleOf func(context.Context) string

	mu    sync.Mutex
	Calls []RenderCall
}

// Render records the call and returns a minimal PDF.
func (r *RendererStub) Render(ctx context.Context, template string, data map[string]any) ([]byte, error) {
	call := RenderCall{Template: template, Data: data}
	if r.LocaleOf != nil {
		call.Locale = r.LocaleOf(ctx)
	}
	r.mu.Lock()
	r.Calls = append(r.Calls, call)
	r.mu.Unlock()
	if r.RenderFn != nil {
		return r.RenderFn(ctx, template, data)
	}
	return []byte("%PDF-1.4 " + template), nil
}

// FileStoreStub keeps stored files in memory.
type FileStoreStub struct {
	StoreFn func(context.Context, []byte, string, string) (model.FileHandle, error)

	mu    sync.Mutex
	Files map[string][]byte
}

// Store records the content under name.
func (f *FileStoreStub) Store(ctx context.Context, content []byte, name, kind string) (model.FileHandle, error) {
	if f.StoreFn != nil {
		return f.StoreFn(ctx, content, name, kind)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Files == nil {
		f.Files = make(map[string][]byte)
	}
	f.Files[name] = slices.Clone(content)
	return model.FileHandle{Name: name, Path: "memory://" + name, Kind: kind}, nil
}

// NotifierStub records delivered notifications.
type NotifierStub struct {
	Err error

	mu   sync.Mutex
	Sent []model.Notification
}

// Notify records n or returns Err.
func (n *NotifierStub) Notify(_ context.Context, msg model.Notification) error {
	if n.Err != nil {
		return n.Err
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	n.Sent = append(n.Sent, msg)
	return nil
}

// Notifications returns a copy of the recorded notifications.
func (n *NotifierStub) Notifications() []model.Notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	return slices.Clone(n.Sent)
}

type localeKey struct{}

// LocalizerStub carries the locale in the context without validation.
type LocalizerStub struct {
	mu   sync.Mutex
	Used []string
}

// WithLocale runs fn with the locale attached to ctx.
func (l *LocalizerStub) WithLocale(ctx context.Context, code string, fn func(ctx context.Context) error) error {
	l.mu.Lock()
	l.Used = append(l.Used, code)
	l.mu.Unlock()
	return fn(context.WithValue(ctx, localeKey{}, code))
}

// LocaleFrom returns the locale set by LocalizerStub.
func LocaleFrom(ctx context.Context) string {
	code, _ := ctx.Value(localeKey{}).(string)
	return code
}

// CacheStub is a JSON cache backed by a map.
type CacheStub struct {
	GetErr error

	mu      sync.Mutex
	Items   map[string][]byte
	Deleted []string
}

// Get decodes the cached value into dest.
func (c *CacheStub) Get(_ context.Context, key string, dest any) (bool, error) {
	if c.GetErr != nil {
		return false, c.GetErr
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	raw, ok := c.Items[key]
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return false, fmt.Errorf("decode %s: %w", key, err)
	}
	return true, nil
}

// Set encodes value under key.
func (c *CacheStub) Set(_ context.Context, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.Items == nil {
		c.Items = make(map[string][]byte)
	}
	c.Items[key] = raw
	return nil
}

// Delete drops keys and records them.
func (c *CacheStub) Delete(_ context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range keys {
		delete(c.Items, k)
	}
	c.Deleted = append(c.Deleted, keys...)
	return nil
}

// Has reports whether key is cached.
func (c *CacheStub) Has(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.Items[key]
	return ok
}
