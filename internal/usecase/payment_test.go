package usecase

import (
	"context"
	"errors"
	"slices"
	"testing"

	domainErrors "github.com/polkiloo/dealerflow/internal/domain/errors"
	"github.com/polkiloo/dealerflow/internal/domain/model"
)

func amount(v int64) *int64 { return &v }

func TestRegisterPaymentMovesVehicleIntoPipeline(t *testing.T) {
	h := newHarness(t)
	h.store.PutVehicle(model.Vehicle{ID: 4})
	h.store.PutOrder(model.Order{
		ID:                 10,
		Kind:               model.ResourcePurchaseOrder,
		Status:             model.PurchaseOrderApproved,
		TotalPurchasePrice: 1500000,
		VehicleIDs:         []int64{4},
	})

	order, err := h.workflow.RegisterPayment(context.Background(), PaymentCommand{
		Kind:        model.ResourcePurchaseOrder,
		OrderID:     10,
		Total:       amount(1500000),
		DownPayment: amount(200000),
		Actor:       creator,
	})
	if err != nil {
		t.Fatalf("register payment: %v", err)
	}
	if order.TotalPaymentAmount != 1500000 || !order.DownPayment || order.DownPaymentAmount != 200000 {
		t.Fatalf("unexpected order payments %+v", order.Payments())
	}
	stored, _ := h.store.Order(10)
	if stored.TotalPaymentAmount != 1500000 || stored.Status != model.PurchaseOrderApproved {
		t.Fatalf("unexpected stored order %+v", stored)
	}
	if v, _ := h.store.Vehicle(4); v.Stock != model.StockPipeline {
		t.Fatalf("expected Stock_pipeline once covered, got %s", v.Stock)
	}
	for _, key := range []string{vehicleCacheKey(4), orderCacheKey(model.ResourcePurchaseOrder, 10)} {
		if !slices.Contains(h.cache.Deleted, key) {
			t.Fatalf("expected %s invalidated, got %v", key, h.cache.Deleted)
		}
	}

	order, err = h.workflow.RegisterPayment(context.Background(), PaymentCommand{
		Kind:    model.ResourcePurchaseOrder,
		OrderID: 10,
		Total:   amount(0),
		Actor:   creator,
	})
	if err != nil {
		t.Fatalf("register payment: %v", err)
	}
	if order.DownPaymentAmount != 200000 {
		t.Fatalf("nil down payment must keep the stored value, got %d", order.DownPaymentAmount)
	}
	if v, _ := h.store.Vehicle(4); v.Stock != model.StockInStock {
		t.Fatalf("expected Stock after payment reset, got %s", v.Stock)
	}
}

func TestRegisterPaymentRejections(t *testing.T) {
	tests := []struct {
		name   string
		cmd    PaymentCommand
		denied []string
		want   error
	}{
		{
			name: "kind without payments",
			cmd:  PaymentCommand{Kind: model.ResourceQuote, OrderID: 30, Total: amount(1)},
			want: domainErrors.ErrPreconditionFailed,
		},
		{
			name: "no amounts",
			cmd:  PaymentCommand{Kind: model.ResourcePurchaseOrder, OrderID: 10},
			want: domainErrors.ErrPreconditionFailed,
		},
		{
			name: "negative amount",
			cmd:  PaymentCommand{Kind: model.ResourcePurchaseOrder, OrderID: 10, DownPayment: amount(-1)},
			want: domainErrors.ErrInvalidAmount,
		},
		{
			name:   "permission",
			cmd:    PaymentCommand{Kind: model.ResourcePurchaseOrder, OrderID: 10, Total: amount(5)},
			denied: []string{"register-payment-purchase-order"},
			want:   domainErrors.ErrPermissionDenied,
		},
		{
			name: "terminal order",
			cmd:  PaymentCommand{Kind: model.ResourceSalesOrder, OrderID: 20, Total: amount(5)},
			want: domainErrors.ErrPreconditionFailed,
		},
		{
			name: "unknown order",
			cmd:  PaymentCommand{Kind: model.ResourcePurchaseOrder, OrderID: 99, Total: amount(5)},
			want: domainErrors.ErrNotFound,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			h.auth.Denied = tt.denied
			h.store.PutOrder(model.Order{ID: 10, Kind: model.ResourcePurchaseOrder, Status: model.PurchaseOrderApproved})
			h.store.PutOrder(model.Order{ID: 20, Kind: model.ResourceSalesOrder, Status: model.SalesOrderCancelled})
			h.store.PutOrder(model.Order{ID: 30, Kind: model.ResourceQuote})

			tt.cmd.Actor = manager
			_, err := h.workflow.RegisterPayment(context.Background(), tt.cmd)
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
			if o, _ := h.store.Order(10); o.TotalPaymentAmount != 0 || o.DownPaymentAmount != 0 {
				t.Fatalf("payments must not change, got %+v", o.Payments())
			}
		})
	}
}
