package usecase

import (
	"context"
	"fmt"

	domainErrors "github.com/polkiloo/dealerflow/internal/domain/errors"
	"github.com/polkiloo/dealerflow/internal/domain/model"
	"github.com/polkiloo/dealerflow/internal/domain/repository"
)

// existenceCheck reports whether a resource with the id exists.
type existenceCheck func(ctx context.Context, id int64) (bool, error)

// ResourceRegistry maps every resource kind to the repository that owns it.
type ResourceRegistry struct {
	checks map[model.ResourceKind]existenceCheck
}

// NewResourceRegistry registers vehicles and every order kind.
func NewResourceRegistry(orders repository.OrderRepository, vehicles repository.VehicleRepository) *ResourceRegistry {
	r := &ResourceRegistry{checks: map[model.ResourceKind]existenceCheck{
		model.ResourceVehicle: vehicles.Exists,
	}}
	for _, kind := range model.OrderKinds() {
		r.checks[kind] = func(ctx context.Context, id int64) (bool, error) {
			return orders.Exists(ctx, kind, id)
		}
	}
	return r
}

// Ensure fails with ErrNotFound unless the referenced resource exists.
func (r *ResourceRegistry) Ensure(ctx context.Context, ref model.ResourceRef) error {
	check, ok := r.checks[ref.Kind]
	if !ok {
		return fmt.Errorf("%w: unknown resource kind %q", domainErrors.ErrNotFound, ref.Kind)
	}
	exists, err := check(ctx, ref.ID)
	if err != nil {
		return fmt.Errorf("lookup %s: %w", ref, err)
	}
	if !exists {
		return fmt.Errorf("%w: %s", domainErrors.ErrNotFound, ref)
	}
	return nil
}
