package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	domainErrors "github.com/polkiloo/dealerflow/internal/domain/errors"
	"github.com/polkiloo/dealerflow/internal/domain/model"
	"github.com/polkiloo/dealerflow/internal/pkg/auth"
)

const registerPaymentVerb = "register-payment"

// PaymentCommand registers payment amounts on a purchase or sales order.
// A nil amount keeps the stored value.
type PaymentCommand struct {
	Kind        model.ResourceKind
	OrderID     int64
	Total       *int64
	DownPayment *int64
	Actor       model.Actor
}

// RegisterPayment stores payment amounts and re-resolves the stock of the order's vehicles,
// since payment coverage decides whether a purchase order counts as paid.
func (u *WorkflowUseCase) RegisterPayment(ctx context.Context, cmd PaymentCommand) (*model.Order, error) {
	ctx, span := tracer.Start(ctx, "workflow.RegisterPayment", trace.WithAttributes(
		attribute.String("order.kind", string(cmd.Kind)),
		attribute.Int64("order.id", cmd.OrderID),
	))
	defer span.End()

	if cmd.Kind != model.ResourcePurchaseOrder && cmd.Kind != model.ResourceSalesOrder {
		return nil, domainErrors.Precondition("%s does not take payments", cmd.Kind)
	}
	if cmd.Total == nil && cmd.DownPayment == nil {
		return nil, domainErrors.Precondition("no payment amount given")
	}
	if (cmd.Total != nil && *cmd.Total < 0) || (cmd.DownPayment != nil && *cmd.DownPayment < 0) {
		return nil, fmt.Errorf("%w: negative payment", domainErrors.ErrInvalidAmount)
	}
	machine, err := u.Machine(cmd.Kind)
	if err != nil {
		return nil, err
	}

	var result *model.Order
	err = u.runLocked(ctx, cmd.Kind, cmd.OrderID, func(ctx context.Context, order *model.Order, log *commitLog) error {
		capability := auth.Capability(registerPaymentVerb, cmd.Kind)
		if !u.auth.Can(cmd.Actor, capability) {
			return fmt.Errorf("%w: %s", domainErrors.ErrPermissionDenied, capability)
		}
		if machine.Terminal(order.Status) {
			return domainErrors.Precondition("%s %d is %s", order.Kind, order.ID, machine.Name(order.Status))
		}

		if cmd.Total != nil {
			order.TotalPaymentAmount = *cmd.Total
		}
		if cmd.DownPayment != nil {
			order.DownPaymentAmount = *cmd.DownPayment
			order.DownPayment = *cmd.DownPayment > 0
		}
		if err := u.orders.UpdatePayments(ctx, order.ID, order.Payments()); err != nil {
			return fmt.Errorf("update payments: %w", err)
		}
		if err := u.resolveOrderStock(ctx, &transition{order: order, actor: cmd.Actor, from: order.Status, target: order.Status, log: log}); err != nil {
			return err
		}
		log.invalidate(orderCacheKey(order.Kind, order.ID))
		result = order
		return nil
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	u.logger.Info("order payments registered",
		slog.String("kind", string(cmd.Kind)),
		slog.Int64("order_id", cmd.OrderID),
		slog.Int64("total_payment_amount", result.TotalPaymentAmount),
		slog.Int64("down_payment_amount", result.DownPaymentAmount),
		slog.Int64("actor", cmd.Actor.UserID),
	)
	return result, nil
}
