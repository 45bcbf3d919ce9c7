package app

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/polkiloo/dealerflow/internal/config"
	domainErrors "github.com/polkiloo/dealerflow/internal/domain/errors"
	"github.com/polkiloo/dealerflow/internal/domain/model"
	testhelpers "github.com/polkiloo/dealerflow/internal/test"
	"github.com/polkiloo/dealerflow/internal/usecase"
)

type noopLock struct{}

func (noopLock) Release(context.Context) error { return nil }

type lockerStub struct{}

func (lockerStub) Obtain(context.Context, string) (usecase.Lock, error) { return noopLock{}, nil }

type healthStub struct{ err error }

func (h healthStub) HealthCheck(context.Context) error { return h.err }

func newFacade(t *testing.T, health HealthChecker) (*DealerFacade, *testhelpers.MemoryStore) {
	t.Helper()
	store := testhelpers.NewMemoryStore()
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	auth := testhelpers.AuthorizerStub{}
	cache := &testhelpers.CacheStub{}
	notifier := &testhelpers.NotifierStub{}

	calculations := usecase.NewCalculationUseCase(store.Calculations(), cache, logger)
	stock := usecase.NewStockUseCase(store, store.Vehicles(), cache, logger)
	workflow := usecase.NewWorkflowUseCase(usecase.WorkflowParams{
		Tx:           store,
		Orders:       store.Orders(),
		History:      store.History(),
		Vehicles:     store.Vehicles(),
		Invitations:  store.Invitations(),
		Calculations: calculations,
		Stock:        stock,
		Auth:         auth,
		Renderer:     &testhelpers.RendererStub{},
		Files:        &testhelpers.FileStoreStub{},
		Localizer:    &testhelpers.LocalizerStub{},
		Locker:       lockerStub{},
		Cache:        cache,
		Notifier:     notifier,
		Config:       &config.Config{DefaultLocale: "nl"},
		Logger:       logger,
	})
	registry := usecase.NewResourceRegistry(store.Orders(), store.Vehicles())

	facade := NewDealerFacade(facadeParams{
		Workflow:     workflow,
		Calculations: calculations,
		Stock:        stock,
		Ownerships:   usecase.NewOwnershipUseCase(store, store.Ownerships(), registry, auth, notifier, logger),
		Invitations:  usecase.NewInvitationUseCase(store, store.Invitations(), store.Orders(), workflow, auth, notifier, logger),
		Vehicles:     store.Vehicles(),
		Health:       health,
	})
	return facade, store
}

var manager = model.Actor{UserID: 1, Roles: []string{"manager"}}

func TestDealerFacadeTransitionByName(t *testing.T) {
	facade, store := newFacade(t, healthStub{})
	store.PutVehicle(model.Vehicle{ID: 7})
	store.PutOrder(model.Order{ID: 10, Kind: model.ResourcePurchaseOrder, CreatorID: 1, VehicleIDs: []int64{7}})
	ctx := context.Background()

	order, err := facade.Transition(ctx, model.ResourcePurchaseOrder, 10, "Submitted", manager)
	if err != nil {
		t.Fatalf("transition returned error: %v", err)
	}
	if order.Status != model.PurchaseOrderSubmitted {
		t.Fatalf("expected Submitted, got %d", order.Status)
	}
	if name := facade.StatusName(model.ResourcePurchaseOrder, order.Status); name != "Submitted" {
		t.Fatalf("unexpected status name %q", name)
	}

	read, err := facade.Order(ctx, model.ResourcePurchaseOrder, 10)
	if err != nil || read.Status != model.PurchaseOrderSubmitted || len(read.History) != 1 {
		t.Fatalf("unexpected order read %+v err=%v", read, err)
	}

	tests := []struct {
		name   string
		kind   model.ResourceKind
		status string
	}{
		{name: "unknown status name", kind: model.ResourcePurchaseOrder, status: "Stop_quote"},
		{name: "kind without workflow", kind: model.ResourceVehicle, status: "Concept"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := facade.Transition(ctx, tt.kind, 10, tt.status, manager)
			if !errors.Is(err, domainErrors.ErrPreconditionFailed) {
				t.Fatalf("expected precondition failure, got %v", err)
			}
		})
	}

	if name := facade.StatusName(model.ResourceVehicle, model.StatusConcept); name != "" {
		t.Fatalf("expected no name for vehicles, got %q", name)
	}
}

func TestDealerFacadeRegisterPayment(t *testing.T) {
	facade, store := newFacade(t, healthStub{})
	store.PutVehicle(model.Vehicle{ID: 7})
	store.PutOrder(model.Order{ID: 10, Kind: model.ResourcePurchaseOrder, Status: model.PurchaseOrderApproved, TotalPurchasePrice: 5000, VehicleIDs: []int64{7}})

	total := int64(5000)
	order, err := facade.RegisterPayment(context.Background(), model.ResourcePurchaseOrder, 10, &total, nil, manager)
	if err != nil || order.TotalPaymentAmount != 5000 {
		t.Fatalf("unexpected payment result %+v err=%v", order, err)
	}
	if v, _ := store.Vehicle(7); v.Stock != model.StockPipeline {
		t.Fatalf("expected paid purchase to move the vehicle into the pipeline, got %s", v.Stock)
	}
}

func TestDealerFacadeVehicles(t *testing.T) {
	facade, store := newFacade(t, healthStub{})
	for _, id := range []int64{3, 5, 9} {
		store.PutVehicle(model.Vehicle{ID: id})
	}
	ctx := context.Background()

	ids, err := facade.VehicleIDs(ctx, 3, 10)
	if err != nil || len(ids) != 2 || ids[0] != 5 {
		t.Fatalf("unexpected ids %v err=%v", ids, err)
	}

	groups, err := facade.RecalculateStock(ctx, []int64{3, 5})
	if err != nil {
		t.Fatalf("recalculate returned error: %v", err)
	}
	if len(groups[model.StockInStock]) != 2 {
		t.Fatalf("expected both vehicles in stock, got %v", groups)
	}

	v, err := facade.Vehicle(ctx, 9)
	if err != nil || v.Stock != model.StockInStock {
		t.Fatalf("unexpected vehicle %+v err=%v", v, err)
	}

	if _, err := facade.Calculation(ctx, 9); !errors.Is(err, domainErrors.ErrNotFound) {
		t.Fatalf("expected missing calculation, got %v", err)
	}

	store.PutCalculation(model.Calculation{Vehicle: model.VehicleRef(9), SalesPriceNet: 1000})
	calcs, err := facade.Calculations(ctx, []int64{5, 9})
	if err != nil || len(calcs) != 1 || calcs[0].SalesPriceNet != 1000 {
		t.Fatalf("unexpected calculations %+v err=%v", calcs, err)
	}
}

func TestDealerFacadeOwnershipAndInvitations(t *testing.T) {
	facade, store := newFacade(t, healthStub{})
	store.PutOrder(model.Order{ID: 20, Kind: model.ResourceSalesOrder, CreatorID: 1})
	store.PutOrder(model.Order{ID: 30, Kind: model.ResourceQuote, CreatorID: 1})
	ctx := context.Background()

	ref := model.ResourceRef{Kind: model.ResourceSalesOrder, ID: 20}
	own, err := facade.ProposeOwnership(ctx, ref, 4, manager)
	if err != nil || own.Status != model.OwnershipPending {
		t.Fatalf("unexpected proposal %+v err=%v", own, err)
	}
	if own, err = facade.AcceptOwnership(ctx, own.ID, model.Actor{UserID: 4}); err != nil || own.Status != model.OwnershipAccepted {
		t.Fatalf("unexpected acceptance %+v err=%v", own, err)
	}

	own, err = facade.ProposeOwnership(ctx, ref, 5, manager)
	if err != nil {
		t.Fatalf("unexpected proposal error: %v", err)
	}
	if own, err = facade.RejectOwnership(ctx, own.ID, model.Actor{UserID: 5}); err != nil || own.Status != model.OwnershipRejected {
		t.Fatalf("unexpected rejection %+v err=%v", own, err)
	}

	inv, err := facade.CreateInvitation(ctx, 30, 8, nil, manager)
	if err != nil || inv.Status != model.InvitationConcept {
		t.Fatalf("unexpected invitation %+v err=%v", inv, err)
	}
	if inv, err = facade.SendInvitation(ctx, inv.ID, manager); err != nil || inv.Status != model.InvitationSent {
		t.Fatalf("unexpected send %+v err=%v", inv, err)
	}
	if inv, err = facade.RejectInvitation(ctx, inv.ID, model.Actor{UserID: 8}); err != nil || inv.Status != model.InvitationRejected {
		t.Fatalf("unexpected reject %+v err=%v", inv, err)
	}
	if _, err := facade.AcceptInvitation(ctx, inv.ID, model.Actor{UserID: 8}); err == nil {
		t.Fatal("expected accepting a rejected invitation to fail")
	}
}

func TestDealerFacadePing(t *testing.T) {
	facade, _ := newFacade(t, healthStub{})
	if err := facade.Ping(context.Background()); err != nil {
		t.Fatalf("unexpected ping error: %v", err)
	}
	down := errors.New("down")
	facade, _ = newFacade(t, healthStub{err: down})
	if err := facade.Ping(context.Background()); !errors.Is(err, down) {
		t.Fatalf("expected ping error, got %v", err)
	}
}
