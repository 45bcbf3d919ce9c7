package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	domainErrors "github.com/polkiloo/dealerflow/internal/domain/errors"
	"github.com/polkiloo/dealerflow/internal/domain/model"
	"github.com/polkiloo/dealerflow/internal/domain/repository"
	"github.com/polkiloo/dealerflow/internal/pkg/money"
)

// CalculationUseCase derives per-vehicle financial figures of sales orders.
type CalculationUseCase struct {
	calculations repository.CalculationRepository
	cache        Cache
	logger       *slog.Logger
	now          func() time.Time
}

// NewCalculationUseCase constructs CalculationUseCase.
func NewCalculationUseCase(calculations repository.CalculationRepository, cache Cache, logger *slog.Logger) *CalculationUseCase {
	return &CalculationUseCase{calculations: calculations, cache: cache, logger: logger, now: time.Now}
}

// Run computes and upserts the calculation of every vehicle of the order.
// It must run inside the transaction of the triggering transition.
func (u *CalculationUseCase) Run(ctx context.Context, order *model.Order) ([]model.Calculation, error) {
	ctx, span := tracer.Start(ctx, "calculation.Run", trace.WithAttributes(
		attribute.Int64("order.id", order.ID),
		attribute.Int("order.vehicles", len(order.VehicleIDs)),
	))
	defer span.End()

	refs := make([]model.ResourceRef, 0, len(order.VehicleIDs))
	for _, id := range order.VehicleIDs {
		refs = append(refs, model.VehicleRef(id))
	}
	inputs, err := u.calculations.ListByVehicles(ctx, refs)
	if err != nil {
		return nil, fmt.Errorf("load calculations: %w", err)
	}

	calcs, err := Compute(order, inputs)
	if err != nil {
		return nil, err
	}

	at := u.now()
	for i := range calcs {
		calcs[i].UpdatedAt = at
		if err := u.calculations.Upsert(ctx, calcs[i]); err != nil {
			return nil, fmt.Errorf("upsert calculation %s: %w", calcs[i].Vehicle, err)
		}
	}
	return calcs, nil
}

// Compute derives the calculation rows of an order from the current vehicle inputs.
// Service item sales are split across vehicles in ascending id order; the first vehicles
// absorb the leftover cents.
func Compute(order *model.Order, inputs map[model.ResourceRef]model.Calculation) ([]model.Calculation, error) {
	vehicles := slices.Clone(order.VehicleIDs)
	slices.Sort(vehicles)
	vehicles = slices.Compact(vehicles)

	shares, err := money.Allocate(order.TotalSalesPriceServiceItems, len(vehicles))
	if err != nil {
		return nil, fmt.Errorf("sales order %d has no vehicles: %w", order.ID, err)
	}

	var purchaseCost int64
	for _, it := range order.Items {
		purchaseCost += it.PurchasePrice
	}
	for _, s := range order.Services {
		purchaseCost += s.PurchasePrice
	}

	out := make([]model.Calculation, 0, len(vehicles))
	for i, id := range vehicles {
		ref := model.VehicleRef(id)
		in, ok := inputs[ref]
		if !ok {
			return nil, domainErrors.Precondition("vehicle %d has no calculation", id)
		}

		priceNet := in.SalesPriceNet + order.Discount + shares[i]
		vat := money.Percent(priceNet, in.VATPercentage)

		out = append(out, model.Calculation{
			Vehicle:           ref,
			SalesPriceNet:     in.SalesPriceNet,
			VATPercentage:     in.VATPercentage,
			RestBPMIndication: in.RestBPMIndication,
			LegesVAT:          in.LegesVAT,

			PurchaseCostItemsServices:                purchaseCost,
			SalePriceNetIncludingServicesAndProducts: priceNet,
			SalePriceServicesAndProducts:             shares[i],
			Discount:                                 order.Discount,
			VAT:                                      vat,
			SalesPriceInclVATOrMargin:                priceNet + vat,
			SalesPriceTotal:                          priceNet + vat + in.RestBPMIndication + in.LegesVAT,
		})
	}
	return out, nil
}

// Get returns the calculation of a vehicle, reading through the cache.
func (u *CalculationUseCase) Get(ctx context.Context, vehicleID int64) (*model.Calculation, error) {
	key := calculationCacheKey(vehicleID)
	var cached model.Calculation
	if ok, err := u.cache.Get(ctx, key, &cached); err != nil {
		u.logger.Warn("calculation cache read failed", slog.String("key", key), slog.String("error", err.Error()))
	} else if ok {
		return &cached, nil
	}

	ref := model.VehicleRef(vehicleID)
	found, err := u.calculations.ListByVehicles(ctx, []model.ResourceRef{ref})
	if err != nil {
		return nil, err
	}
	calc, ok := found[ref]
	if !ok {
		return nil, domainErrors.ErrNotFound
	}
	if err := u.cache.Set(ctx, key, calc); err != nil {
		u.logger.Warn("calculation cache write failed", slog.String("key", key), slog.String("error", err.Error()))
	}
	return &calc, nil
}

// List returns calculations of the vehicles in ascending vehicle order. Vehicles without a row are skipped.
func (u *CalculationUseCase) List(ctx context.Context, vehicleIDs []int64) ([]model.Calculation, error) {
	if len(vehicleIDs) == 0 {
		return nil, nil
	}
	ids := slices.Clone(vehicleIDs)
	slices.Sort(ids)
	ids = slices.Compact(ids)

	refs := make([]model.ResourceRef, 0, len(ids))
	for _, id := range ids {
		refs = append(refs, model.VehicleRef(id))
	}
	found, err := u.calculations.ListByVehicles(ctx, refs)
	if err != nil {
		return nil, err
	}
	out := make([]model.Calculation, 0, len(found))
	for _, ref := range refs {
		if c, ok := found[ref]; ok {
			out = append(out, c)
		}
	}
	return out, nil
}
