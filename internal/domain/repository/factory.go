package repository

import "context"

// Transactor runs fn inside a database transaction carried by the context.
// Nested calls join the outer transaction.
type Transactor interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// Factory describes access to different domain repositories.
type Factory interface {
	Orders() OrderRepository
	History() StatusHistoryRepository
	Vehicles() VehicleRepository
	Calculations() CalculationRepository
	Ownerships() OwnershipRepository
	Invitations() QuoteInvitationRepository
}
