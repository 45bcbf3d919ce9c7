package test

import (
	"context"
	"slices"
	"sync"

	"github.com/polkiloo/dealerflow/internal/domain/model"
)

// StockFacadeStub serves vehicle IDs from a fixed sorted list and records recalculated batches.
type StockFacadeStub struct {
	IDs         []int64
	IDsErr      error
	RecalcFn    func(context.Context, []int64) (map[model.Stock][]int64, error)
	BeforeFirst chan struct{}

	mu      sync.Mutex
	once    sync.Once
	Batches [][]int64
}

// VehicleIDs pages through IDs after afterID.
func (s *StockFacadeStub) VehicleIDs(ctx context.Context, afterID int64, limit int) ([]int64, error) {
	if s.BeforeFirst != nil {
		s.once.Do(func() {
			select {
			case <-s.BeforeFirst:
			case <-ctx.Done():
			}
		})
	}
	if s.IDsErr != nil {
		return nil, s.IDsErr
	}
	out := make([]int64, 0, limit)
	for _, id := range s.IDs {
		if id > afterID && len(out) < limit {
			out = append(out, id)
		}
	}
	return out, nil
}

// RecalculateStock records the batch and classifies every vehicle as in stock by default.
func (s *StockFacadeStub) RecalculateStock(ctx context.Context, ids []int64) (map[model.Stock][]int64, error) {
	s.mu.Lock()
	s.Batches = append(s.Batches, slices.Clone(ids))
	s.mu.Unlock()
	if s.RecalcFn != nil {
		return s.RecalcFn(ctx, ids)
	}
	return map[model.Stock][]int64{model.StockInStock: ids}, nil
}

// Recalculated returns every vehicle passed to RecalculateStock, sorted.
func (s *StockFacadeStub) Recalculated() []int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []int64
	for _, b := range s.Batches {
		out = append(out, b...)
	}
	slices.Sort(out)
	return out
}

// DealerFacadeStub implements every HTTP facade with overridable functions.
type DealerFacadeStub struct {
	TransitionFn   func(context.Context, model.ResourceKind, int64, string, model.Actor) (*model.Order, error)
	PaymentFn      func(ctx context.Context, kind model.ResourceKind, id int64, total, downPayment *int64, actor model.Actor) (*model.Order, error)
	OrderFn        func(context.Context, model.ResourceKind, int64) (*model.Order, error)
	VehicleFn      func(context.Context, int64) (*model.Vehicle, error)
	CalculationFn  func(context.Context, int64) (*model.Calculation, error)
	CalculationsFn func(context.Context, []int64) ([]model.Calculation, error)
	RecalculateFn  func(context.Context, []int64) (map[model.Stock][]int64, error)
	OwnershipFn    func(ctx context.Context, op string, id int64, actor model.Actor) (*model.Ownership, error)
	ProposeFn      func(context.Context, model.ResourceRef, int64, model.Actor) (*model.Ownership, error)
	InvitationFn   func(ctx context.Context, op string, id int64, actor model.Actor) (*model.QuoteInvitation, error)
	CreateInvFn    func(context.Context, int64, int64, *int64, model.Actor) (*model.QuoteInvitation, error)
	PingErr        error
}

func (s DealerFacadeStub) Transition(ctx context.Context, kind model.ResourceKind, id int64, status string, actor model.Actor) (*model.Order, error) {
	if s.TransitionFn != nil {
		return s.TransitionFn(ctx, kind, id, status, actor)
	}
	return &model.Order{ID: id, Kind: kind, Status: model.StatusConcept}, nil
}

// RegisterPayment applies the given amounts to a Concept order by default.
func (s DealerFacadeStub) RegisterPayment(ctx context.Context, kind model.ResourceKind, id int64, total, downPayment *int64, actor model.Actor) (*model.Order, error) {
	if s.PaymentFn != nil {
		return s.PaymentFn(ctx, kind, id, total, downPayment, actor)
	}
	order := &model.Order{ID: id, Kind: kind, Status: model.StatusConcept}
	if total != nil {
		order.TotalPaymentAmount = *total
	}
	if downPayment != nil {
		order.DownPayment = *downPayment > 0
		order.DownPaymentAmount = *downPayment
	}
	return order, nil
}

func (s DealerFacadeStub) Order(ctx context.Context, kind model.ResourceKind, id int64) (*model.Order, error) {
	if s.OrderFn != nil {
		return s.OrderFn(ctx, kind, id)
	}
	return &model.Order{ID: id, Kind: kind, Status: model.StatusConcept}, nil
}

// StatusName names StatusConcept and calls every other status "other".
func (s DealerFacadeStub) StatusName(_ model.ResourceKind, status model.Status) string {
	if status == model.StatusConcept {
		return "Concept"
	}
	return "other"
}

func (s DealerFacadeStub) Vehicle(ctx context.Context, id int64) (*model.Vehicle, error) {
	if s.VehicleFn != nil {
		return s.VehicleFn(ctx, id)
	}
	return &model.Vehicle{ID: id, Stock: model.StockInStock}, nil
}

func (s DealerFacadeStub) Calculation(ctx context.Context, vehicleID int64) (*model.Calculation, error) {
	if s.CalculationFn != nil {
		return s.CalculationFn(ctx, vehicleID)
	}
	return &model.Calculation{Vehicle: model.VehicleRef(vehicleID)}, nil
}

func (s DealerFacadeStub) Calculations(ctx context.Context, vehicleIDs []int64) ([]model.Calculation, error) {
	if s.CalculationsFn != nil {
		return s.CalculationsFn(ctx, vehicleIDs)
	}
	out := make([]model.Calculation, 0, len(vehicleIDs))
	for _, id := range vehicleIDs {
		out = append(out, model.Calculation{Vehicle: model.VehicleRef(id)})
	}
	return out, nil
}

func (s DealerFacadeStub) RecalculateStock(ctx context.Context, ids []int64) (map[model.Stock][]int64, error) {
	if s.RecalculateFn != nil {
		return s.RecalculateFn(ctx, ids)
	}
	return map[model.Stock][]int64{model.StockInStock: ids}, nil
}

func (s DealerFacadeStub) ProposeOwnership(ctx context.Context, ownable model.ResourceRef, userID int64, actor model.Actor) (*model.Ownership, error) {
	if s.ProposeFn != nil {
		return s.ProposeFn(ctx, ownable, userID, actor)
	}
	return &model.Ownership{ID: 1, UserID: userID, Ownable: ownable, CreatorID: actor.UserID, Status: model.OwnershipPending}, nil
}

func (s DealerFacadeStub) AcceptOwnership(ctx context.Context, id int64, actor model.Actor) (*model.Ownership, error) {
	return s.ownership(ctx, "accept", id, actor, model.OwnershipAccepted)
}

func (s DealerFacadeStub) RejectOwnership(ctx context.Context, id int64, actor model.Actor) (*model.Ownership, error) {
	return s.ownership(ctx, "reject", id, actor, model.OwnershipRejected)
}

func (s DealerFacadeStub) ownership(ctx context.Context, op string, id int64, actor model.Actor, status model.OwnershipStatus) (*model.Ownership, error) {
	if s.OwnershipFn != nil {
		return s.OwnershipFn(ctx, op, id, actor)
	}
	return &model.Ownership{ID: id, UserID: actor.UserID, Status: status}, nil
}

func (s DealerFacadeStub) CreateInvitation(ctx context.Context, quoteID, customerID int64, companyID *int64, actor model.Actor) (*model.QuoteInvitation, error) {
	if s.CreateInvFn != nil {
		return s.CreateInvFn(ctx, quoteID, customerID, companyID, actor)
	}
	return &model.QuoteInvitation{ID: 1, QuoteID: quoteID, CustomerID: customerID, CustomerCompanyID: companyID, CreatorID: actor.UserID, Status: model.InvitationConcept}, nil
}

func (s DealerFacadeStub) SendInvitation(ctx context.Context, id int64, actor model.Actor) (*model.QuoteInvitation, error) {
	return s.invitation(ctx, "send", id, actor, model.InvitationSent)
}

func (s DealerFacadeStub) AcceptInvitation(ctx context.Context, id int64, actor model.Actor) (*model.QuoteInvitation, error) {
	return s.invitation(ctx, "accept", id, actor, model.InvitationAccepted)
}

func (s DealerFacadeStub) RejectInvitation(ctx context.Context, id int64, actor model.Actor) (*model.QuoteInvitation, error) {
	return s.invitation(ctx, "reject", id, actor, model.InvitationRejected)
}

func (s DealerFacadeStub) invitation(ctx context.Context, op string, id int64, actor model.Actor, status model.InvitationStatus) (*model.QuoteInvitation, error) {
	if s.InvitationFn != nil {
		return s.InvitationFn(ctx, op, id, actor)
	}
	return &model.QuoteInvitation{ID: id, CustomerID: actor.UserID, Status: status}, nil
}

func (s DealerFacadeStub) Ping(context.Context) error {
	return s.PingErr
}

// TokenParserStub returns a fixed actor or error.
type TokenParserStub struct {
	Actor model.Actor
	Err   error
	Seen  *string
}

// ParseToken records token when Seen is set.
func (s TokenParserStub) ParseToken(token string) (model.Actor, error) {
	if s.Seen != nil {
		*s.Seen = token
	}
	return s.Actor, s.Err
}
