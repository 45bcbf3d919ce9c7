package repository

import (
	"context"

	"github.com/polkiloo/dealerflow/internal/domain/model"
)

// VehicleRepository exposes vehicle stock data.
type VehicleRepository interface {
	FindByID(ctx context.Context, id int64) (*model.Vehicle, error)
	StockFacts(ctx context.Context, vehicleIDs []int64) ([]model.StockFacts, error)
	BulkUpdateStock(ctx context.Context, stock model.Stock, vehicleIDs []int64) error
	// ListIDs pages through vehicle identifiers in ascending order.
	ListIDs(ctx context.Context, afterID int64, limit int) ([]int64, error)
	// VehiclesOfDocument returns the vehicles a document bills.
	VehiclesOfDocument(ctx context.Context, documentID int64) ([]int64, error)
	Exists(ctx context.Context, id int64) (bool, error)
}

// CalculationRepository persists per-vehicle calculations.
type CalculationRepository interface {
	ListByVehicles(ctx context.Context, refs []model.ResourceRef) (map[model.ResourceRef]model.Calculation, error)
	Upsert(ctx context.Context, calc model.Calculation) error
}
