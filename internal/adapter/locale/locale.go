// Package locale scopes a language tag to a context.
package locale

import (
	"context"
	"fmt"

	"golang.org/x/text/language"

	domainErrors "github.com/polkiloo/dealerflow/internal/domain/errors"
)

type ctxKey struct{}

// Localizer validates locale codes and binds them to a derived context.
type Localizer struct {
	fallback language.Tag
}

// New creates a Localizer whose From falls back to def.
func New(def string) (*Localizer, error) {
	tag, err := language.Parse(def)
	if err != nil {
		return nil, fmt.Errorf("parse default locale: %w", err)
	}
	return &Localizer{fallback: tag}, nil
}

// WithLocale runs fn with code attached to ctx. The caller's context is untouched,
// so the previous locale is in effect again once fn returns.
func (l *Localizer) WithLocale(ctx context.Context, code string, fn func(ctx context.Context) error) error {
	tag, err := language.Parse(code)
	if err != nil {
		return domainErrors.Precondition("invalid locale %q", code)
	}
	return fn(context.WithValue(ctx, ctxKey{}, tag))
}

// Tag returns the locale bound to ctx or the default one.
func (l *Localizer) Tag(ctx context.Context) language.Tag {
	if tag, ok := ctx.Value(ctxKey{}).(language.Tag); ok {
		return tag
	}
	return l.fallback
}

// From returns the locale bound to ctx, or "" when none is set.
func From(ctx context.Context) string {
	if tag, ok := ctx.Value(ctxKey{}).(language.Tag); ok {
		return tag.String()
	}
	return ""
}
