package repository

import (
	"context"
	"time"

	"github.com/polkiloo/dealerflow/internal/domain/model"
)

// OrderRepository describes persistence operations with orders of every kind.
type OrderRepository interface {
	FindByID(ctx context.Context, kind model.ResourceKind, id int64) (*model.Order, error)
	// FindForUpdate loads the order and locks its row until the surrounding transaction ends.
	FindForUpdate(ctx context.Context, kind model.ResourceKind, id int64) (*model.Order, error)
	UpdateStatus(ctx context.Context, kind model.ResourceKind, id int64, status model.Status) error
	UpdateCustomer(ctx context.Context, id int64, customerID int64, companyID *int64) error
	UpdatePayments(ctx context.Context, id int64, p model.Payments) error
	AttachFile(ctx context.Context, id int64, group string, file model.FileHandle) error
	// ListQuotesSharingVehicles returns other quotes referencing any of the vehicles, locked for update.
	ListQuotesSharingVehicles(ctx context.Context, quoteID int64, vehicleIDs []int64) ([]model.Order, error)
	Exists(ctx context.Context, kind model.ResourceKind, id int64) (bool, error)
}

// StatusHistoryRepository stores the append-only transition log.
type StatusHistoryRepository interface {
	Append(ctx context.Context, orderID int64, status model.Status, at time.Time) error
	List(ctx context.Context, orderID int64) ([]model.StatusEntry, error)
}
