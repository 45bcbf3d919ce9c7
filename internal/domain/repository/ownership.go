package repository

import (
	"context"

	"github.com/polkiloo/dealerflow/internal/domain/model"
)

// OwnershipRepository persists ownership claims.
type OwnershipRepository interface {
	FindByID(ctx context.Context, id int64) (*model.Ownership, error)
	// ListByOwnable returns all ownerships of the resource and locks them for update.
	ListByOwnable(ctx context.Context, ownable model.ResourceRef) ([]model.Ownership, error)
	Insert(ctx context.Context, o *model.Ownership) error
	UpdateStatus(ctx context.Context, id int64, status model.OwnershipStatus) error
	// CancelSiblings cancels every pending or accepted ownership of the resource except exceptID.
	// Rejected rows keep their status.
	CancelSiblings(ctx context.Context, ownable model.ResourceRef, exceptID int64) error
}

// QuoteInvitationRepository persists quote invitations.
type QuoteInvitationRepository interface {
	FindByID(ctx context.Context, id int64) (*model.QuoteInvitation, error)
	ListByQuote(ctx context.Context, quoteID int64) ([]model.QuoteInvitation, error)
	Insert(ctx context.Context, inv *model.QuoteInvitation) error
	UpdateStatus(ctx context.Context, id int64, status model.InvitationStatus) error
	// CloseByQuote closes invitations of the quote whose status is one of from, except exceptID.
	CloseByQuote(ctx context.Context, quoteID, exceptID int64, from ...model.InvitationStatus) error
}
