package app

import (
	"context"

	"go.uber.org/fx"

	domainErrors "github.com/polkiloo/dealerflow/internal/domain/errors"
	"github.com/polkiloo/dealerflow/internal/domain/model"
	"github.com/polkiloo/dealerflow/internal/domain/repository"
	"github.com/polkiloo/dealerflow/internal/usecase"
)

// HealthChecker reports whether the backing database is reachable.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

type facadeParams struct {
	fx.In

	Workflow     *usecase.WorkflowUseCase
	Calculations *usecase.CalculationUseCase
	Stock        *usecase.StockUseCase
	Ownerships   *usecase.OwnershipUseCase
	Invitations  *usecase.InvitationUseCase
	Vehicles     repository.VehicleRepository
	Health       HealthChecker
}

type DealerFacade struct {
	workflow     *usecase.WorkflowUseCase
	calculations *usecase.CalculationUseCase
	stock        *usecase.StockUseCase
	ownerships   *usecase.OwnershipUseCase
	invitations  *usecase.InvitationUseCase
	vehicles     repository.VehicleRepository
	health       HealthChecker
}

func NewDealerFacade(p facadeParams) *DealerFacade {
	return &DealerFacade{
		workflow:     p.Workflow,
		calculations: p.Calculations,
		stock:        p.Stock,
		ownerships:   p.Ownerships,
		invitations:  p.Invitations,
		vehicles:     p.Vehicles,
		health:       p.Health,
	}
}

func (f *DealerFacade) Transition(ctx context.Context, kind model.ResourceKind, orderID int64, status string, actor model.Actor) (*model.Order, error) {
	machine, err := f.workflow.Machine(kind)
	if err != nil {
		return nil, err
	}
	target, ok := machine.StatusByName(status)
	if !ok {
		return nil, domainErrors.Precondition("%s has no status %q", kind, status)
	}
	return f.workflow.Transition(ctx, usecase.TransitionCommand{Kind: kind, OrderID: orderID, Status: target, Actor: actor})
}

func (f *DealerFacade) RegisterPayment(ctx context.Context, kind model.ResourceKind, orderID int64, total, downPayment *int64, actor model.Actor) (*model.Order, error) {
	return f.workflow.RegisterPayment(ctx, usecase.PaymentCommand{
		Kind:        kind,
		OrderID:     orderID,
		Total:       total,
		DownPayment: downPayment,
		Actor:       actor,
	})
}

func (f *DealerFacade) Order(ctx context.Context, kind model.ResourceKind, orderID int64) (*model.Order, error) {
	return f.workflow.Get(ctx, kind, orderID)
}

// StatusName returns the display name of status, or an empty string for kinds without a workflow.
func (f *DealerFacade) StatusName(kind model.ResourceKind, status model.Status) string {
	machine, err := f.workflow.Machine(kind)
	if err != nil {
		return ""
	}
	return machine.Name(status)
}

func (f *DealerFacade) Vehicle(ctx context.Context, vehicleID int64) (*model.Vehicle, error) {
	return f.stock.Get(ctx, vehicleID)
}

func (f *DealerFacade) Calculation(ctx context.Context, vehicleID int64) (*model.Calculation, error) {
	return f.calculations.Get(ctx, vehicleID)
}

func (f *DealerFacade) Calculations(ctx context.Context, vehicleIDs []int64) ([]model.Calculation, error) {
	return f.calculations.List(ctx, vehicleIDs)
}

func (f *DealerFacade) RecalculateStock(ctx context.Context, vehicleIDs []int64) (map[model.Stock][]int64, error) {
	return f.stock.Recalculate(ctx, vehicleIDs)
}

func (f *DealerFacade) VehicleIDs(ctx context.Context, afterID int64, limit int) ([]int64, error) {
	return f.vehicles.ListIDs(ctx, afterID, limit)
}

func (f *DealerFacade) ProposeOwnership(ctx context.Context, ownable model.ResourceRef, userID int64, actor model.Actor) (*model.Ownership, error) {
	return f.ownerships.Propose(ctx, ownable, userID, actor)
}

func (f *DealerFacade) AcceptOwnership(ctx context.Context, id int64, actor model.Actor) (*model.Ownership, error) {
	return f.ownerships.Accept(ctx, id, actor)
}

func (f *DealerFacade) RejectOwnership(ctx context.Context, id int64, actor model.Actor) (*model.Ownership, error) {
	return f.ownerships.Reject(ctx, id, actor)
}

func (f *DealerFacade) CreateInvitation(ctx context.Context, quoteID, customerID int64, companyID *int64, actor model.Actor) (*model.QuoteInvitation, error) {
	return f.invitations.Create(ctx, quoteID, customerID, companyID, actor)
}

func (f *DealerFacade) SendInvitation(ctx context.Context, id int64, actor model.Actor) (*model.QuoteInvitation, error) {
	return f.invitations.Send(ctx, id, actor)
}

func (f *DealerFacade) AcceptInvitation(ctx context.Context, id int64, actor model.Actor) (*model.QuoteInvitation, error) {
	return f.invitations.Accept(ctx, id, actor)
}

func (f *DealerFacade) RejectInvitation(ctx context.Context, id int64, actor model.Actor) (*model.QuoteInvitation, error) {
	return f.invitations.Reject(ctx, id, actor)
}

func (f *DealerFacade) Ping(ctx context.Context) error {
	return f.health.HealthCheck(ctx)
}
