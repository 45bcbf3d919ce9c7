package usecase

import (
	"context"
	"fmt"
	"log/slog"

	domainErrors "github.com/polkiloo/dealerflow/internal/domain/errors"
	"github.com/polkiloo/dealerflow/internal/domain/model"
	"github.com/polkiloo/dealerflow/internal/domain/repository"
)

const manageOwnershipCapability = "manage-ownership"

// OwnershipUseCase manages who is responsible for a resource.
type OwnershipUseCase struct {
	tx         repository.Transactor
	ownerships repository.OwnershipRepository
	registry   *ResourceRegistry
	auth       Authorizer
	notifier   Notifier
	logger     *slog.Logger
}

// NewOwnershipUseCase constructs OwnershipUseCase.
func NewOwnershipUseCase(tx repository.Transactor, ownerships repository.OwnershipRepository, registry *ResourceRegistry, auth Authorizer, notifier Notifier, logger *slog.Logger) *OwnershipUseCase {
	return &OwnershipUseCase{tx: tx, ownerships: ownerships, registry: registry, auth: auth, notifier: notifier, logger: logger}
}

// Propose offers the resource to proposedOwnerID. Proposing yourself takes ownership directly.
// It returns the ownership of the proposed owner.
func (u *OwnershipUseCase) Propose(ctx context.Context, ownable model.ResourceRef, proposedOwnerID int64, actor model.Actor) (*model.Ownership, error) {
	if err := u.registry.Ensure(ctx, ownable); err != nil {
		return nil, err
	}

	var (
		result  *model.Ownership
		pending bool
	)
	err := u.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		existing, err := u.ownerships.ListByOwnable(ctx, ownable)
		if err != nil {
			return fmt.Errorf("list ownerships: %w", err)
		}

		if own := findOwnership(existing, proposedOwnerID, true); own != nil {
			result = own
			return nil
		}

		if actor.UserID == proposedOwnerID {
			result, err = u.acceptFor(ctx, ownable, existing, proposedOwnerID, actor.UserID, true)
			return err
		}

		if !hasAccepted(existing) {
			if _, err := u.acceptFor(ctx, ownable, existing, actor.UserID, actor.UserID, false); err != nil {
				return err
			}
		}

		result = &model.Ownership{UserID: proposedOwnerID, Ownable: ownable, CreatorID: actor.UserID, Status: model.OwnershipPending}
		if err := u.ownerships.Insert(ctx, result); err != nil {
			return fmt.Errorf("insert ownership: %w", err)
		}
		pending = true
		return nil
	})
	if err != nil {
		return nil, err
	}

	if pending {
		u.notify(ctx, model.Notification{
			UserID:  proposedOwnerID,
			Message: fmt.Sprintf("You have been proposed as owner of %s", ownable),
			Link:    fmt.Sprintf("/ownerships/%d", result.ID),
		})
	}
	return result, nil
}

// acceptFor makes userID the accepted owner, reusing a previous row of that user if any.
// Without cancelSiblings the caller guarantees no other ownership is accepted.
func (u *OwnershipUseCase) acceptFor(ctx context.Context, ownable model.ResourceRef, existing []model.Ownership, userID, creatorID int64, cancelSiblings bool) (*model.Ownership, error) {
	own := findOwnership(existing, userID, false)
	if cancelSiblings {
		var keep int64
		if own != nil {
			keep = own.ID
		}
		if err := u.ownerships.CancelSiblings(ctx, ownable, keep); err != nil {
			return nil, fmt.Errorf("cancel sibling ownerships: %w", err)
		}
	}
	if own == nil {
		own = &model.Ownership{UserID: userID, Ownable: ownable, CreatorID: creatorID, Status: model.OwnershipAccepted}
		if err := u.ownerships.Insert(ctx, own); err != nil {
			return nil, fmt.Errorf("insert ownership: %w", err)
		}
		return own, nil
	}
	if err := u.ownerships.UpdateStatus(ctx, own.ID, model.OwnershipAccepted); err != nil {
		return nil, fmt.Errorf("accept ownership: %w", err)
	}
	own.Status = model.OwnershipAccepted
	return own, nil
}

// Accept makes the ownership the accepted one and cancels all others of the resource.
func (u *OwnershipUseCase) Accept(ctx context.Context, id int64, actor model.Actor) (*model.Ownership, error) {
	return u.answer(ctx, id, actor, func(ctx context.Context, own *model.Ownership) error {
		if err := u.ownerships.CancelSiblings(ctx, own.Ownable, own.ID); err != nil {
			return fmt.Errorf("cancel sibling ownerships: %w", err)
		}
		if err := u.ownerships.UpdateStatus(ctx, own.ID, model.OwnershipAccepted); err != nil {
			return fmt.Errorf("accept ownership: %w", err)
		}
		own.Status = model.OwnershipAccepted
		return nil
	})
}

// Reject declines the ownership. Other ownerships are untouched.
func (u *OwnershipUseCase) Reject(ctx context.Context, id int64, actor model.Actor) (*model.Ownership, error) {
	return u.answer(ctx, id, actor, func(ctx context.Context, own *model.Ownership) error {
		if err := u.ownerships.UpdateStatus(ctx, own.ID, model.OwnershipRejected); err != nil {
			return fmt.Errorf("reject ownership: %w", err)
		}
		own.Status = model.OwnershipRejected
		return nil
	})
}

func (u *OwnershipUseCase) answer(ctx context.Context, id int64, actor model.Actor, fn func(ctx context.Context, own *model.Ownership) error) (*model.Ownership, error) {
	var result *model.Ownership
	err := u.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		own, err := u.ownerships.FindByID(ctx, id)
		if err != nil {
			return err
		}
		// Lock the resource's ownerships so concurrent answers see each other.
		locked, err := u.ownerships.ListByOwnable(ctx, own.Ownable)
		if err != nil {
			return fmt.Errorf("list ownerships: %w", err)
		}
		for i := range locked {
			if locked[i].ID == own.ID {
				own = &locked[i]
			}
		}
		if own.UserID != actor.UserID && !u.auth.Can(actor, manageOwnershipCapability) {
			return fmt.Errorf("%w: %s", domainErrors.ErrPermissionDenied, manageOwnershipCapability)
		}
		if own.Status == model.OwnershipCancelled {
			return domainErrors.ErrAlreadyCancelled
		}
		if err := fn(ctx, own); err != nil {
			return err
		}
		result = own
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (u *OwnershipUseCase) notify(ctx context.Context, n model.Notification) {
	if err := u.notifier.Notify(context.WithoutCancel(ctx), n); err != nil {
		u.logger.Warn("notification failed", slog.Int64("user_id", n.UserID), slog.String("error", err.Error()))
	}
}

// findOwnership returns the user's ownership. With activeOnly it ignores rejected and cancelled rows.
func findOwnership(list []model.Ownership, userID int64, activeOnly bool) *model.Ownership {
	for i := range list {
		if list[i].UserID != userID {
			continue
		}
		if activeOnly && !list[i].Active() {
			continue
		}
		return &list[i]
	}
	return nil
}

func hasAccepted(list []model.Ownership) bool {
	for _, o := range list {
		if o.Status == model.OwnershipAccepted {
			return true
		}
	}
	return false
}
