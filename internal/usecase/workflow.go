package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"

	"github.com/polkiloo/dealerflow/internal/config"
	domainErrors "github.com/polkiloo/dealerflow/internal/domain/errors"
	"github.com/polkiloo/dealerflow/internal/domain/model"
	"github.com/polkiloo/dealerflow/internal/domain/repository"
)

var tracer = otel.Tracer("github.com/polkiloo/dealerflow/internal/usecase")

// TransitionCommand requests an order to move to a new status.
type TransitionCommand struct {
	Kind    model.ResourceKind
	OrderID int64
	Status  model.Status
	Actor   model.Actor
}

// WorkflowParams lists the collaborators of WorkflowUseCase.
type WorkflowParams struct {
	fx.In

	Tx           repository.Transactor
	Orders       repository.OrderRepository
	History      repository.StatusHistoryRepository
	Vehicles     repository.VehicleRepository
	Invitations  repository.QuoteInvitationRepository
	Calculations *CalculationUseCase
	Stock        *StockUseCase
	Auth         Authorizer
	Renderer     Renderer
	Files        FileStore
	Localizer    Localizer
	Locker       Locker
	Cache        Cache
	Notifier     Notifier
	Config       *config.Config
	Logger       *slog.Logger
	Clock        func() time.Time `optional:"true"`
}

// WorkflowUseCase drives orders through their status machines.
type WorkflowUseCase struct {
	tx           repository.Transactor
	orders       repository.OrderRepository
	history      repository.StatusHistoryRepository
	vehicles     repository.VehicleRepository
	invitations  repository.QuoteInvitationRepository
	calculations *CalculationUseCase
	stock        *StockUseCase
	auth         Authorizer
	renderer     Renderer
	files        FileStore
	localizer    Localizer
	locker       Locker
	cache        Cache
	notifier     Notifier
	logger       *slog.Logger
	now          func() time.Time

	defaultLocale string
	machines      map[model.ResourceKind]*Machine
}

// NewWorkflowUseCase constructs WorkflowUseCase with the machines of every order kind.
func NewWorkflowUseCase(p WorkflowParams) *WorkflowUseCase {
	u := &WorkflowUseCase{
		tx:            p.Tx,
		orders:        p.Orders,
		history:       p.History,
		vehicles:      p.Vehicles,
		invitations:   p.Invitations,
		calculations:  p.Calculations,
		stock:         p.Stock,
		auth:          p.Auth,
		renderer:      p.Renderer,
		files:         p.Files,
		localizer:     p.Localizer,
		locker:        p.Locker,
		cache:         p.Cache,
		notifier:      p.Notifier,
		logger:        p.Logger,
		now:           p.Clock,
		defaultLocale: "nl",
	}
	if u.now == nil {
		u.now = time.Now
	}
	if p.Config != nil && p.Config.DefaultLocale != "" {
		u.defaultLocale = p.Config.DefaultLocale
	}
	u.machines = u.buildMachines()
	return u
}

// Machine returns the status machine of an order kind.
func (u *WorkflowUseCase) Machine(kind model.ResourceKind) (*Machine, error) {
	m, ok := u.machines[kind]
	if !ok {
		return nil, domainErrors.Precondition("%q has no status workflow", kind)
	}
	return m, nil
}

// Transition moves an order to the requested status. Permission is checked first, then the
// business preconditions; effects, status and history commit together or not at all.
func (u *WorkflowUseCase) Transition(ctx context.Context, cmd TransitionCommand) (*model.Order, error) {
	ctx, span := tracer.Start(ctx, "workflow.Transition", trace.WithAttributes(
		attribute.String("order.kind", string(cmd.Kind)),
		attribute.Int64("order.id", cmd.OrderID),
		attribute.Int("order.target_status", int(cmd.Status)),
	))
	defer span.End()

	machine, err := u.Machine(cmd.Kind)
	if err != nil {
		return nil, err
	}

	var result *model.Order
	err = u.runLocked(ctx, cmd.Kind, cmd.OrderID, func(ctx context.Context, order *model.Order, log *commitLog) error {
		if err := u.apply(ctx, machine, order, cmd.Status, cmd.Actor, log); err != nil {
			return err
		}
		result = order
		return nil
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	u.logger.Info("order transitioned",
		slog.String("kind", string(cmd.Kind)),
		slog.Int64("order_id", cmd.OrderID),
		slog.String("status", machine.Name(result.Status)),
		slog.Int64("actor", cmd.Actor.UserID),
	)
	return result, nil
}

// Get returns the order with its status history, reading through the cache.
func (u *WorkflowUseCase) Get(ctx context.Context, kind model.ResourceKind, id int64) (*model.Order, error) {
	if !kind.IsOrder() {
		return nil, domainErrors.ErrNotFound
	}
	key := orderCacheKey(kind, id)
	var cached model.Order
	if ok, err := u.cache.Get(ctx, key, &cached); err != nil {
		u.logger.Warn("order cache read failed", slog.String("key", key), slog.String("error", err.Error()))
	} else if ok {
		return &cached, nil
	}

	order, err := u.orders.FindByID(ctx, kind, id)
	if err != nil {
		return nil, err
	}
	if order.History, err = u.history.List(ctx, id); err != nil {
		return nil, fmt.Errorf("load status history: %w", err)
	}
	if err := u.cache.Set(ctx, key, order); err != nil {
		u.logger.Warn("order cache write failed", slog.String("key", key), slog.String("error", err.Error()))
	}
	return order, nil
}

// runLocked serializes work on one order: a distributed lock, then a transaction holding the
// order row lock. Post-commit work runs only when fn succeeds and the transaction commits.
func (u *WorkflowUseCase) runLocked(ctx context.Context, kind model.ResourceKind, id int64, fn func(ctx context.Context, order *model.Order, log *commitLog) error) error {
	lock, err := u.locker.Obtain(ctx, transitionLockKey(kind, id))
	if err != nil {
		return err
	}
	defer func() {
		if err := lock.Release(context.WithoutCancel(ctx)); err != nil {
			u.logger.Warn("release transition lock failed", slog.String("kind", string(kind)), slog.Int64("order_id", id), slog.String("error", err.Error()))
		}
	}()

	log := &commitLog{}
	err = u.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		order, err := u.orders.FindForUpdate(ctx, kind, id)
		if err != nil {
			return err
		}
		return fn(ctx, order, log)
	})
	if err != nil {
		return err
	}

	u.afterCommit(ctx, log)
	return nil
}

// apply performs a transition on an order already locked by the caller's transaction.
func (u *WorkflowUseCase) apply(ctx context.Context, m *Machine, order *model.Order, target model.Status, actor model.Actor, log *commitLog) error {
	rule, ok := m.Rule(target)
	if !ok {
		return domainErrors.Precondition("%s has no status %d", m.Kind, target)
	}
	if !u.auth.Can(actor, m.Capability(rule)) {
		return fmt.Errorf("%w: %s", domainErrors.ErrPermissionDenied, m.Capability(rule))
	}
	if err := m.checkEdge(order.Status, target); err != nil {
		return err
	}

	t := &transition{order: order, actor: actor, from: order.Status, target: target, log: log}
	for _, step := range rule.Require {
		if err := step(ctx, t); err != nil {
			return err
		}
	}
	for _, step := range rule.Before {
		if err := step(ctx, t); err != nil {
			return err
		}
	}

	written := []model.Status{rule.To}
	final := rule.To
	if rule.Retarget != 0 {
		written = append(written, rule.Retarget)
		final = rule.Retarget
	}
	if err := u.writeStatus(ctx, order, final, written...); err != nil {
		return err
	}

	for _, step := range rule.After {
		if err := step(ctx, t); err != nil {
			return err
		}
	}

	log.invalidate(orderCacheKey(order.Kind, order.ID))
	if actor.UserID != order.CreatorID && order.CreatorID != 0 {
		log.notify(model.Notification{
			UserID:  order.CreatorID,
			Message: fmt.Sprintf("%s %d moved to %s", order.Kind, order.ID, m.Name(final)),
			Link:    fmt.Sprintf("/orders/%s/%d", order.Kind, order.ID),
		})
	}
	return nil
}

// writeStatus persists the final status and appends one history row per written status.
// Concept is never written to history.
func (u *WorkflowUseCase) writeStatus(ctx context.Context, order *model.Order, final model.Status, written ...model.Status) error {
	if err := u.orders.UpdateStatus(ctx, order.Kind, order.ID, final); err != nil {
		return fmt.Errorf("update status: %w", err)
	}
	for _, s := range written {
		if s == model.StatusConcept {
			continue
		}
		at := u.now()
		if err := u.history.Append(ctx, order.ID, s, at); err != nil {
			return fmt.Errorf("append status history: %w", err)
		}
		order.History = append(order.History, model.StatusEntry{Status: s, CreatedAt: at})
	}
	order.Status = final
	return nil
}

func (u *WorkflowUseCase) afterCommit(ctx context.Context, log *commitLog) {
	ctx = context.WithoutCancel(ctx)
	if len(log.cacheKeys) > 0 {
		if err := u.cache.Delete(ctx, log.cacheKeys...); err != nil {
			u.logger.Warn("cache invalidation failed", slog.Any("keys", log.cacheKeys), slog.String("error", err.Error()))
		}
	}
	for _, n := range log.notifications {
		if err := u.notifier.Notify(ctx, n); err != nil {
			u.logger.Warn("notification failed", slog.Int64("user_id", n.UserID), slog.String("error", err.Error()))
		}
	}
}
