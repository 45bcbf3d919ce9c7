package handlers

import (
	"context"

	"github.com/polkiloo/dealerflow/internal/domain/model"
)

// OrderFacade exposes order workflow operations.
type OrderFacade interface {
	Transition(ctx context.Context, kind model.ResourceKind, orderID int64, status string, actor model.Actor) (*model.Order, error)
	RegisterPayment(ctx context.Context, kind model.ResourceKind, orderID int64, total, downPayment *int64, actor model.Actor) (*model.Order, error)
	Order(ctx context.Context, kind model.ResourceKind, orderID int64) (*model.Order, error)
	StatusName(kind model.ResourceKind, status model.Status) string
}

// VehicleFacade provides stock and calculation reads.
type VehicleFacade interface {
	Vehicle(ctx context.Context, vehicleID int64) (*model.Vehicle, error)
	Calculation(ctx context.Context, vehicleID int64) (*model.Calculation, error)
	Calculations(ctx context.Context, vehicleIDs []int64) ([]model.Calculation, error)
	RecalculateStock(ctx context.Context, vehicleIDs []int64) (map[model.Stock][]int64, error)
}

// OwnershipFacade manages ownership claims.
type OwnershipFacade interface {
	ProposeOwnership(ctx context.Context, ownable model.ResourceRef, userID int64, actor model.Actor) (*model.Ownership, error)
	AcceptOwnership(ctx context.Context, id int64, actor model.Actor) (*model.Ownership, error)
	RejectOwnership(ctx context.Context, id int64, actor model.Actor) (*model.Ownership, error)
}

// InvitationFacade manages quote invitations.
type InvitationFacade interface {
	CreateInvitation(ctx context.Context, quoteID, customerID int64, companyID *int64, actor model.Actor) (*model.QuoteInvitation, error)
	SendInvitation(ctx context.Context, id int64, actor model.Actor) (*model.QuoteInvitation, error)
	AcceptInvitation(ctx context.Context, id int64, actor model.Actor) (*model.QuoteInvitation, error)
	RejectInvitation(ctx context.Context, id int64, actor model.Actor) (*model.QuoteInvitation, error)
}

// HealthFacade reports readiness of the backing services.
type HealthFacade interface {
	Ping(ctx context.Context) error
}

// DealerFacade aggregates the full set of operations used across handlers.
type DealerFacade interface {
	OrderFacade
	VehicleFacade
	OwnershipFacade
	InvitationFacade
	HealthFacade
}
