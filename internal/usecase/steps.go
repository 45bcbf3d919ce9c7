package usecase

import (
	"context"
	"fmt"
	"slices"

	"github.com/google/uuid"

	domainErrors "github.com/polkiloo/dealerflow/internal/domain/errors"
	"github.com/polkiloo/dealerflow/internal/domain/model"
)

func requireVehicles(_ context.Context, t *transition) error {
	if len(t.order.VehicleIDs) == 0 {
		return domainErrors.Precondition("%s %d has no vehicles attached", t.order.Kind, t.order.ID)
	}
	return nil
}

func requireVehiclesOrServices(_ context.Context, t *transition) error {
	if len(t.order.VehicleIDs) == 0 && len(t.order.Services) == 0 {
		return domainErrors.Precondition("%s %d has no vehicles or services", t.order.Kind, t.order.ID)
	}
	return nil
}

func requireVehiclesOrItems(_ context.Context, t *transition) error {
	if len(t.order.VehicleIDs) == 0 && len(t.order.Items) == 0 {
		return domainErrors.Precondition("%s %d has no vehicles or items", t.order.Kind, t.order.ID)
	}
	return nil
}

func requireFiles(group string) Step {
	return func(_ context.Context, t *transition) error {
		if !t.order.HasFiles(group) {
			return domainErrors.Precondition("%s %d has no files in %s", t.order.Kind, t.order.ID, group)
		}
		return nil
	}
}

func requireDownPayment(_ context.Context, t *transition) error {
	if !t.order.DownPayment || t.order.DownPaymentAmount <= 0 {
		return domainErrors.Precondition("%s %d has no down payment amount", t.order.Kind, t.order.ID)
	}
	return nil
}

func requirePaymentAmount(_ context.Context, t *transition) error {
	if t.order.TotalPaymentAmount <= 0 {
		return domainErrors.Precondition("%s %d has no payment registered", t.order.Kind, t.order.ID)
	}
	return nil
}

func requirePaidAt(_ context.Context, t *transition) error {
	if t.order.PaidAt == nil {
		return domainErrors.Precondition("%s %d has no paid date", t.order.Kind, t.order.ID)
	}
	return nil
}

func requireLines(_ context.Context, t *transition) error {
	if len(t.order.Lines) == 0 {
		return domainErrors.Precondition("%s %d has no lines", t.order.Kind, t.order.ID)
	}
	return nil
}

func requireConsistentLines(ctx context.Context, t *transition) error {
	if err := requireLines(ctx, t); err != nil {
		return err
	}
	for i, l := range t.order.Lines {
		if !l.Consistent() {
			return domainErrors.Precondition("line %d of %s %d does not add up", i+1, t.order.Kind, t.order.ID)
		}
	}
	return nil
}

// renderDocument renders a PDF under the order's locale, stores it and attaches it to group.
func (u *WorkflowUseCase) renderDocument(template, group string) Step {
	return func(ctx context.Context, t *transition) error {
		locale := t.order.Locale
		if locale == "" {
			locale = u.defaultLocale
		}
		m := u.machines[t.order.Kind]
		return u.localizer.WithLocale(ctx, locale, func(ctx context.Context) error {
			content, err := u.renderer.Render(ctx, template, documentData(t.order, m.Name(t.target), locale))
			if err != nil {
				return fmt.Errorf("render %s: %w", template, err)
			}
			name := fmt.Sprintf("%s/%d/%s-%s.pdf", t.order.Kind, t.order.ID, template, uuid.NewString())
			handle, err := u.files.Store(ctx, content, name, template)
			if err != nil {
				return fmt.Errorf("store %s: %w", template, err)
			}
			if err := u.orders.AttachFile(ctx, t.order.ID, group, handle); err != nil {
				return fmt.Errorf("attach %s: %w", template, err)
			}
			t.order.AttachFile(group, handle)
			return nil
		})
	}
}

func (u *WorkflowUseCase) runCalculation(ctx context.Context, t *transition) error {
	calcs, err := u.calculations.Run(ctx, t.order)
	if err != nil {
		return err
	}
	for _, c := range calcs {
		t.log.invalidate(calculationCacheKey(c.Vehicle.ID))
	}
	return nil
}

func (u *WorkflowUseCase) resolveOrderStock(ctx context.Context, t *transition) error {
	keys, err := u.stock.resolve(ctx, t.order.VehicleIDs)
	if err != nil {
		return err
	}
	t.log.invalidate(keys...)
	return nil
}

func (u *WorkflowUseCase) resolveDocumentStock(ctx context.Context, t *transition) error {
	ids, err := u.vehicles.VehiclesOfDocument(ctx, t.order.ID)
	if err != nil {
		return fmt.Errorf("load document vehicles: %w", err)
	}
	keys, err := u.stock.resolve(ctx, ids)
	if err != nil {
		return err
	}
	t.log.invalidate(keys...)
	return nil
}

func (u *WorkflowUseCase) requireAcceptedInvitation(ctx context.Context, t *transition) error {
	inv, err := u.acceptedInvitation(ctx, t.order.ID)
	if err != nil {
		return err
	}
	if inv == nil {
		return domainErrors.Precondition("quote %d has no accepted invitation", t.order.ID)
	}
	return nil
}

func (u *WorkflowUseCase) acceptedInvitation(ctx context.Context, quoteID int64) (*model.QuoteInvitation, error) {
	invitations, err := u.invitations.ListByQuote(ctx, quoteID)
	if err != nil {
		return nil, fmt.Errorf("list invitations: %w", err)
	}
	idx := slices.IndexFunc(invitations, func(i model.QuoteInvitation) bool { return i.Status == model.InvitationAccepted })
	if idx < 0 {
		return nil, nil
	}
	return &invitations[idx], nil
}

func (u *WorkflowUseCase) adoptInvitationCustomer(ctx context.Context, t *transition) error {
	inv, err := u.acceptedInvitation(ctx, t.order.ID)
	if err != nil {
		return err
	}
	if inv == nil {
		return domainErrors.Precondition("quote %d has no accepted invitation", t.order.ID)
	}
	if err := u.orders.UpdateCustomer(ctx, t.order.ID, inv.CustomerID, inv.CustomerCompanyID); err != nil {
		return fmt.Errorf("update quote customer: %w", err)
	}
	customerID := inv.CustomerID
	t.order.CustomerID = &customerID
	t.order.CustomerCompanyID = inv.CustomerCompanyID
	return nil
}

func (u *WorkflowUseCase) closeOpenInvitations(ctx context.Context, t *transition) error {
	if err := u.invitations.CloseByQuote(ctx, t.order.ID, 0, model.InvitationConcept, model.InvitationSent); err != nil {
		return fmt.Errorf("close invitations: %w", err)
	}
	return nil
}

// closeCompetingQuotes closes every other open quote that offers one of this quote's vehicles.
func (u *WorkflowUseCase) closeCompetingQuotes(ctx context.Context, t *transition) error {
	if len(t.order.VehicleIDs) == 0 {
		return nil
	}
	others, err := u.orders.ListQuotesSharingVehicles(ctx, t.order.ID, t.order.VehicleIDs)
	if err != nil {
		return fmt.Errorf("list competing quotes: %w", err)
	}
	m := u.machines[model.ResourceQuote]
	for i := range others {
		other := &others[i]
		if other.ID == t.order.ID || m.Terminal(other.Status) || !t.order.SharesVehicle(other) {
			continue
		}
		if err := u.writeStatus(ctx, other, model.QuoteClosed, model.QuoteClosed); err != nil {
			return err
		}
		if err := u.invitations.CloseByQuote(ctx, other.ID, 0, model.InvitationConcept, model.InvitationSent); err != nil {
			return fmt.Errorf("close invitations: %w", err)
		}
		t.log.invalidate(orderCacheKey(model.ResourceQuote, other.ID))
	}
	return nil
}
