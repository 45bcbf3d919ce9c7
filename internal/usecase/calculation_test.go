package usecase

import (
	"context"
	"errors"
	"testing"

	domainErrors "github.com/polkiloo/dealerflow/internal/domain/errors"
	"github.com/polkiloo/dealerflow/internal/domain/model"
)

func TestComputeSplitsServiceItemsAcrossVehicles(t *testing.T) {
	order := &model.Order{
		ID:                          1,
		Kind:                        model.ResourceSalesOrder,
		VehicleIDs:                  []int64{2, 1},
		TotalSalesPriceServiceItems: 1001,
		Discount:                    -500,
		Items:                       []model.OrderItem{{PurchasePrice: 300}},
		Services:                    []model.OrderService{{PurchasePrice: 200}},
	}
	inputs := map[model.ResourceRef]model.Calculation{
		model.VehicleRef(1): {Vehicle: model.VehicleRef(1), SalesPriceNet: 10000, VATPercentage: 21, RestBPMIndication: 300, LegesVAT: 50},
		model.VehicleRef(2): {Vehicle: model.VehicleRef(2), SalesPriceNet: 20000, VATPercentage: 9},
	}

	calcs, err := Compute(order, inputs)
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	if len(calcs) != 2 || calcs[0].Vehicle.ID != 1 || calcs[1].Vehicle.ID != 2 {
		t.Fatalf("expected rows in ascending vehicle order, got %+v", calcs)
	}

	first := calcs[0]
	if first.SalePriceServicesAndProducts != 501 || first.SalePriceNetIncludingServicesAndProducts != 10001 {
		t.Fatalf("unexpected first share %+v", first)
	}
	if first.VAT != 2100 || first.SalesPriceInclVATOrMargin != 12101 || first.SalesPriceTotal != 12451 {
		t.Fatalf("unexpected first totals %+v", first)
	}
	second := calcs[1]
	if second.SalePriceServicesAndProducts != 500 || second.SalePriceNetIncludingServicesAndProducts != 20000 || second.VAT != 1800 {
		t.Fatalf("unexpected second row %+v", second)
	}
	if first.SalePriceServicesAndProducts+second.SalePriceServicesAndProducts != order.TotalSalesPriceServiceItems {
		t.Fatalf("shares must sum to the service item total")
	}
	for _, c := range calcs {
		if c.PurchaseCostItemsServices != 500 || c.Discount != -500 {
			t.Fatalf("unexpected order level figures %+v", c)
		}
		if !c.Balanced() {
			t.Fatalf("total does not balance: %+v", c)
		}
	}
}

func TestComputeWithoutVehicles(t *testing.T) {
	_, err := Compute(&model.Order{ID: 1, TotalSalesPriceServiceItems: 100}, nil)
	if !errors.Is(err, domainErrors.ErrDivideByZero) {
		t.Fatalf("expected divide by zero, got %v", err)
	}
}

func TestComputeMissingInput(t *testing.T) {
	_, err := Compute(&model.Order{ID: 1, VehicleIDs: []int64{3}}, map[model.ResourceRef]model.Calculation{})
	if !errors.Is(err, domainErrors.ErrPreconditionFailed) {
		t.Fatalf("expected precondition failure, got %v", err)
	}
}

func TestCalculationRunIsIdempotent(t *testing.T) {
	h := newHarness(t)
	h.store.PutCalculation(model.Calculation{Vehicle: model.VehicleRef(1), SalesPriceNet: 5000, VATPercentage: 21})
	h.store.PutCalculation(model.Calculation{Vehicle: model.VehicleRef(2), SalesPriceNet: 7000, VATPercentage: 21})
	order := &model.Order{ID: 1, VehicleIDs: []int64{1, 2}, TotalSalesPriceServiceItems: 999}

	ctx := context.Background()
	first, err := h.calculations.Run(ctx, order)
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	second, err := h.calculations.Run(ctx, order)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("run %d differs: %+v vs %+v", i, first[i], second[i])
		}
		stored, _ := h.store.Calculation(first[i].Vehicle.ID)
		if stored != second[i] {
			t.Fatalf("stored row differs: %+v", stored)
		}
	}
}

func TestCalculationGetReadsThroughCache(t *testing.T) {
	h := newHarness(t)
	h.store.PutCalculation(model.Calculation{Vehicle: model.VehicleRef(1), SalesPriceNet: 5000})
	ctx := context.Background()

	got, err := h.calculations.Get(ctx, 1)
	if err != nil || got.SalesPriceNet != 5000 {
		t.Fatalf("unexpected result %+v, %v", got, err)
	}
	if !h.cache.Has(calculationCacheKey(1)) {
		t.Fatalf("expected cached calculation")
	}
	h.store.PutCalculation(model.Calculation{Vehicle: model.VehicleRef(1), SalesPriceNet: 6000})
	if got, _ := h.calculations.Get(ctx, 1); got.SalesPriceNet != 5000 {
		t.Fatalf("expected cached value, got %+v", got)
	}

	if _, err := h.calculations.Get(ctx, 2); !errors.Is(err, domainErrors.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestCalculationList(t *testing.T) {
	h := newHarness(t)
	h.store.PutCalculation(model.Calculation{Vehicle: model.VehicleRef(3)})
	h.store.PutCalculation(model.Calculation{Vehicle: model.VehicleRef(1)})

	got, err := h.calculations.List(context.Background(), []int64{3, 2, 1, 3})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 2 || got[0].Vehicle.ID != 1 || got[1].Vehicle.ID != 3 {
		t.Fatalf("unexpected list %+v", got)
	}
}
