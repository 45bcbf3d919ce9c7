package usecase

import (
	"context"
	"fmt"
	"log/slog"

	domainErrors "github.com/polkiloo/dealerflow/internal/domain/errors"
	"github.com/polkiloo/dealerflow/internal/domain/model"
	"github.com/polkiloo/dealerflow/internal/domain/repository"
)

const manageInvitationCapability = "manage-invitation"

// InvitationUseCase manages customer invitations to approve a quote.
type InvitationUseCase struct {
	tx          repository.Transactor
	invitations repository.QuoteInvitationRepository
	orders      repository.OrderRepository
	workflow    *WorkflowUseCase
	auth        Authorizer
	notifier    Notifier
	logger      *slog.Logger
}

// NewInvitationUseCase constructs InvitationUseCase.
func NewInvitationUseCase(tx repository.Transactor, invitations repository.QuoteInvitationRepository, orders repository.OrderRepository, workflow *WorkflowUseCase, auth Authorizer, notifier Notifier, logger *slog.Logger) *InvitationUseCase {
	return &InvitationUseCase{
		tx:          tx,
		invitations: invitations,
		orders:      orders,
		workflow:    workflow,
		auth:        auth,
		notifier:    notifier,
		logger:      logger,
	}
}

// Create adds a Concept invitation for a customer to an open quote.
func (u *InvitationUseCase) Create(ctx context.Context, quoteID, customerID int64, companyID *int64, actor model.Actor) (*model.QuoteInvitation, error) {
	if !u.auth.Can(actor, manageInvitationCapability) {
		return nil, fmt.Errorf("%w: %s", domainErrors.ErrPermissionDenied, manageInvitationCapability)
	}
	if customerID <= 0 {
		return nil, domainErrors.Precondition("invitation needs a customer")
	}

	var inv *model.QuoteInvitation
	err := u.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		quote, err := u.orders.FindForUpdate(ctx, model.ResourceQuote, quoteID)
		if err != nil {
			return err
		}
		m, err := u.workflow.Machine(model.ResourceQuote)
		if err != nil {
			return err
		}
		if m.Terminal(quote.Status) {
			return domainErrors.Precondition("quote %d is %s", quote.ID, m.Name(quote.Status))
		}
		inv = &model.QuoteInvitation{
			QuoteID:           quoteID,
			CustomerID:        customerID,
			CustomerCompanyID: companyID,
			CreatorID:         actor.UserID,
			Status:            model.InvitationConcept,
		}
		if err := u.invitations.Insert(ctx, inv); err != nil {
			return fmt.Errorf("insert invitation: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return inv, nil
}

// Send moves a Concept invitation to Sent and notifies the customer.
func (u *InvitationUseCase) Send(ctx context.Context, id int64, actor model.Actor) (*model.QuoteInvitation, error) {
	if !u.auth.Can(actor, manageInvitationCapability) {
		return nil, fmt.Errorf("%w: %s", domainErrors.ErrPermissionDenied, manageInvitationCapability)
	}

	var inv *model.QuoteInvitation
	err := u.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		if inv, err = u.invitations.FindByID(ctx, id); err != nil {
			return err
		}
		if inv.Status != model.InvitationConcept {
			return domainErrors.Precondition("invitation %d is %s", inv.ID, inv.Status)
		}
		if err := u.invitations.UpdateStatus(ctx, inv.ID, model.InvitationSent); err != nil {
			return fmt.Errorf("send invitation: %w", err)
		}
		inv.Status = model.InvitationSent
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := u.notifier.Notify(context.WithoutCancel(ctx), model.Notification{
		UserID:  inv.CustomerID,
		Message: fmt.Sprintf("You have been invited to review quote %d", inv.QuoteID),
		Link:    fmt.Sprintf("/invitations/%d", inv.ID),
	}); err != nil {
		u.logger.Warn("notification failed", slog.Int64("user_id", inv.CustomerID), slog.String("error", err.Error()))
	}
	return inv, nil
}

// Reject declines an open invitation. Siblings are untouched.
func (u *InvitationUseCase) Reject(ctx context.Context, id int64, actor model.Actor) (*model.QuoteInvitation, error) {
	var inv *model.QuoteInvitation
	err := u.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		if inv, err = u.invitations.FindByID(ctx, id); err != nil {
			return err
		}
		if err := u.authorizeAnswer(inv, actor); err != nil {
			return err
		}
		if !inv.Open() {
			return domainErrors.Precondition("invitation %d is %s", inv.ID, inv.Status)
		}
		if err := u.invitations.UpdateStatus(ctx, inv.ID, model.InvitationRejected); err != nil {
			return fmt.Errorf("reject invitation: %w", err)
		}
		inv.Status = model.InvitationRejected
		return nil
	})
	if err != nil {
		return nil, err
	}
	return inv, nil
}

// Accept accepts the invitation, closes its Concept siblings and moves the quote to
// Accepted_by_client. At most one invitation of a quote is ever accepted.
func (u *InvitationUseCase) Accept(ctx context.Context, id int64, actor model.Actor) (*model.QuoteInvitation, error) {
	inv, err := u.invitations.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := u.authorizeAnswer(inv, actor); err != nil {
		return nil, err
	}
	quoteMachine, err := u.workflow.Machine(model.ResourceQuote)
	if err != nil {
		return nil, err
	}

	err = u.workflow.runLocked(ctx, model.ResourceQuote, inv.QuoteID, func(ctx context.Context, quote *model.Order, log *commitLog) error {
		siblings, err := u.invitations.ListByQuote(ctx, quote.ID)
		if err != nil {
			return fmt.Errorf("list invitations: %w", err)
		}
		for _, s := range siblings {
			if s.ID == inv.ID {
				inv.Status = s.Status
				continue
			}
			if s.Status == model.InvitationAccepted {
				return domainErrors.ErrQuoteAlreadyAccepted
			}
		}
		if !inv.Open() {
			return domainErrors.Precondition("invitation %d is %s", inv.ID, inv.Status)
		}

		if err := u.invitations.CloseByQuote(ctx, quote.ID, inv.ID, model.InvitationConcept); err != nil {
			return fmt.Errorf("close sibling invitations: %w", err)
		}
		if err := u.invitations.UpdateStatus(ctx, inv.ID, model.InvitationAccepted); err != nil {
			return fmt.Errorf("accept invitation: %w", err)
		}
		inv.Status = model.InvitationAccepted

		return u.workflow.apply(ctx, quoteMachine, quote, model.QuoteAcceptedByClient, model.SystemActor(actor.UserID), log)
	})
	if err != nil {
		return nil, err
	}
	return inv, nil
}

// authorizeAnswer lets the invited customer or an invitation manager answer.
func (u *InvitationUseCase) authorizeAnswer(inv *model.QuoteInvitation, actor model.Actor) error {
	if inv.CustomerID == actor.UserID || u.auth.Can(actor, manageInvitationCapability) {
		return nil
	}
	return fmt.Errorf("%w: %s", domainErrors.ErrPermissionDenied, manageInvitationCapability)
}
