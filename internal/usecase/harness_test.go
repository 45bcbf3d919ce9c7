package usecase

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/polkiloo/dealerflow/internal/config"
	"github.com/polkiloo/dealerflow/internal/domain/model"
	testhelpers "github.com/polkiloo/dealerflow/internal/test"
)

type lockerStub struct {
	mu       sync.Mutex
	err      error
	obtained []string
	released int
}

type lockStub struct{ l *lockerStub }

func (l lockStub) Release(context.Context) error {
	l.l.mu.Lock()
	defer l.l.mu.Unlock()
	l.l.released++
	return nil
}

func (l *lockerStub) Obtain(_ context.Context, key string) (Lock, error) {
	if l.err != nil {
		return nil, l.err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.obtained = append(l.obtained, key)
	return lockStub{l}, nil
}

type harness struct {
	store     *testhelpers.MemoryStore
	auth      *testhelpers.AuthorizerStub
	renderer  *testhelpers.RendererStub
	files     *testhelpers.FileStoreStub
	notifier  *testhelpers.NotifierStub
	localizer *testhelpers.LocalizerStub
	cache     *testhelpers.CacheStub
	locker    *lockerStub

	calculations *CalculationUseCase
	stock        *StockUseCase
	workflow     *WorkflowUseCase
	ownerships   *OwnershipUseCase
	invitations  *InvitationUseCase
}

var fixedNow = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		store:     testhelpers.NewMemoryStore(),
		auth:      &testhelpers.AuthorizerStub{},
		renderer:  &testhelpers.RendererStub{LocaleOf: testhelpers.LocaleFrom},
		files:     &testhelpers.FileStoreStub{},
		notifier:  &testhelpers.NotifierStub{},
		localizer: &testhelpers.LocalizerStub{},
		cache:     &testhelpers.CacheStub{},
		locker:    &lockerStub{},
	}
	logger := discardLogger()
	auth := h.auth

	h.calculations = NewCalculationUseCase(h.store.Calculations(), h.cache, logger)
	h.calculations.now = func() time.Time { return fixedNow }
	h.stock = NewStockUseCase(h.store, h.store.Vehicles(), h.cache, logger)
	h.workflow = NewWorkflowUseCase(WorkflowParams{
		Tx:           h.store,
		Orders:       h.store.Orders(),
		History:      h.store.History(),
		Vehicles:     h.store.Vehicles(),
		Invitations:  h.store.Invitations(),
		Calculations: h.calculations,
		Stock:        h.stock,
		Auth:         auth,
		Renderer:     h.renderer,
		Files:        h.files,
		Localizer:    h.localizer,
		Locker:       h.locker,
		Cache:        h.cache,
		Notifier:     h.notifier,
		Config:       &config.Config{DefaultLocale: "nl"},
		Logger:       logger,
		Clock:        func() time.Time { return fixedNow },
	})
	registry := NewResourceRegistry(h.store.Orders(), h.store.Vehicles())
	h.ownerships = NewOwnershipUseCase(h.store, h.store.Ownerships(), registry, auth, h.notifier, logger)
	h.invitations = NewInvitationUseCase(h.store, h.store.Invitations(), h.store.Orders(), h.workflow, auth, h.notifier, logger)
	return h
}

// transition is a shorthand for a user driven transition.
func (h *harness) transition(kind model.ResourceKind, id int64, status model.Status, actor model.Actor) (*model.Order, error) {
	return h.workflow.Transition(context.Background(), TransitionCommand{Kind: kind, OrderID: id, Status: status, Actor: actor})
}

func (h *harness) mustTransition(t *testing.T, kind model.ResourceKind, id int64, actor model.Actor, statuses ...model.Status) {
	t.Helper()
	for _, s := range statuses {
		if _, err := h.transition(kind, id, s, actor); err != nil {
			t.Fatalf("transition %s %d to %d: %v", kind, id, s, err)
		}
	}
}

func historyStatuses(entries []model.StatusEntry) []model.Status {
	out := make([]model.Status, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.Status)
	}
	return out
}
