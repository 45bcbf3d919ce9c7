package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"github.com/polkiloo/dealerflow/internal/domain/model"
	"github.com/polkiloo/dealerflow/internal/domain/repository"
)

// ResolveStock classifies a vehicle from its order facts.
func ResolveStock(f model.StockFacts) model.Stock {
	switch {
	case f.HasPurchaseOrder && f.HasSalesOrder:
		if f.PurchaseOrderPaid && !f.SalesDocumentPaid {
			return model.StockFinancial
		}
		return model.StockSold
	case f.HasPurchaseOrder:
		if f.PurchaseOrderPaid {
			return model.StockPipeline
		}
		return model.StockInStock
	case f.HasSalesOrder:
		return model.StockSold
	default:
		return model.StockInStock
	}
}

var stockOrder = []model.Stock{model.StockInStock, model.StockPipeline, model.StockFinancial, model.StockSold}

// StockUseCase keeps the derived stock classification of vehicles current.
type StockUseCase struct {
	tx       repository.Transactor
	vehicles repository.VehicleRepository
	cache    Cache
	logger   *slog.Logger
}

// NewStockUseCase constructs StockUseCase.
func NewStockUseCase(tx repository.Transactor, vehicles repository.VehicleRepository, cache Cache, logger *slog.Logger) *StockUseCase {
	return &StockUseCase{tx: tx, vehicles: vehicles, cache: cache, logger: logger}
}

// Recalculate re-resolves the stock of the vehicles and returns them grouped by result.
func (u *StockUseCase) Recalculate(ctx context.Context, vehicleIDs []int64) (map[model.Stock][]int64, error) {
	var (
		groups map[model.Stock][]int64
		keys   []string
	)
	err := u.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		groups, keys, err = u.apply(ctx, vehicleIDs)
		return err
	})
	if err != nil {
		return nil, err
	}
	if len(keys) > 0 {
		if err := u.cache.Delete(context.WithoutCancel(ctx), keys...); err != nil {
			u.logger.Warn("cache invalidation failed", slog.Any("keys", keys), slog.String("error", err.Error()))
		}
	}
	return groups, nil
}

// Get returns the vehicle with its stock classification, reading through the cache.
func (u *StockUseCase) Get(ctx context.Context, vehicleID int64) (*model.Vehicle, error) {
	key := vehicleCacheKey(vehicleID)
	var cached model.Vehicle
	if ok, err := u.cache.Get(ctx, key, &cached); err != nil {
		u.logger.Warn("vehicle cache read failed", slog.String("key", key), slog.String("error", err.Error()))
	} else if ok {
		return &cached, nil
	}

	v, err := u.vehicles.FindByID(ctx, vehicleID)
	if err != nil {
		return nil, err
	}
	if err := u.cache.Set(ctx, key, v); err != nil {
		u.logger.Warn("vehicle cache write failed", slog.String("key", key), slog.String("error", err.Error()))
	}
	return v, nil
}

// resolve runs inside the caller's transaction and returns cache keys to drop after commit.
func (u *StockUseCase) resolve(ctx context.Context, vehicleIDs []int64) ([]string, error) {
	_, keys, err := u.apply(ctx, vehicleIDs)
	return keys, err
}

func (u *StockUseCase) apply(ctx context.Context, vehicleIDs []int64) (map[model.Stock][]int64, []string, error) {
	ids := slices.Clone(vehicleIDs)
	slices.Sort(ids)
	ids = slices.Compact(ids)
	if len(ids) == 0 {
		return map[model.Stock][]int64{}, nil, nil
	}

	facts, err := u.vehicles.StockFacts(ctx, ids)
	if err != nil {
		return nil, nil, fmt.Errorf("load stock facts: %w", err)
	}

	groups := make(map[model.Stock][]int64)
	for _, f := range facts {
		s := ResolveStock(f)
		groups[s] = append(groups[s], f.VehicleID)
	}

	keys := make([]string, 0, len(facts))
	for _, s := range stockOrder {
		group := groups[s]
		if len(group) == 0 {
			continue
		}
		if err := u.vehicles.BulkUpdateStock(ctx, s, group); err != nil {
			return nil, nil, fmt.Errorf("update stock %s: %w", s, err)
		}
		for _, id := range group {
			keys = append(keys, vehicleCacheKey(id))
		}
	}
	return groups, keys, nil
}
