package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/polkiloo/dealerflow/internal/domain/model"
)

type ownershipRepository struct {
	storage *Storage
}

type invitationRepository struct {
	storage *Storage
}

const ownershipColumns = `id, user_id, ownable_type, ownable_id, creator_id, status, created_at, updated_at`

func scanOwnership(row pgx.Row) (model.Ownership, error) {
	var o model.Ownership
	err := row.Scan(&o.ID, &o.UserID, &o.Ownable.Kind, &o.Ownable.ID, &o.CreatorID, &o.Status, &o.CreatedAt, &o.UpdatedAt)
	return o, err
}

func (r *ownershipRepository) FindByID(ctx context.Context, id int64) (*model.Ownership, error) {
	o, err := scanOwnership(r.storage.q(ctx).QueryRow(ctx, `SELECT `+ownershipColumns+` FROM ownerships WHERE id=$1`, id))
	if err != nil {
		return nil, mapError(err)
	}
	return &o, nil
}

func (r *ownershipRepository) ListByOwnable(ctx context.Context, ownable model.ResourceRef) ([]model.Ownership, error) {
	const query = `SELECT ` + ownershipColumns + ` FROM ownerships
                   WHERE ownable_type=$1 AND ownable_id=$2 ORDER BY id FOR UPDATE`
	rows, err := r.storage.q(ctx).Query(ctx, query, ownable.Kind, ownable.ID)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.Ownership, error) {
		return scanOwnership(row)
	})
}

func (r *ownershipRepository) Insert(ctx context.Context, o *model.Ownership) error {
	const query = `INSERT INTO ownerships (user_id, ownable_type, ownable_id, creator_id, status)
                   VALUES ($1, $2, $3, $4, $5) RETURNING id, created_at, updated_at`
	err := r.storage.q(ctx).QueryRow(ctx, query, o.UserID, o.Ownable.Kind, o.Ownable.ID, o.CreatorID, o.Status).
		Scan(&o.ID, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return mapError(err)
	}
	return nil
}

func (r *ownershipRepository) UpdateStatus(ctx context.Context, id int64, status model.OwnershipStatus) error {
	const query = `UPDATE ownerships SET status=$1, updated_at=NOW() WHERE id=$2`
	tag, err := r.storage.q(ctx).Exec(ctx, query, status, id)
	if err != nil {
		return mapError(err)
	}
	return expectAffected(tag)
}

func (r *ownershipRepository) CancelSiblings(ctx context.Context, ownable model.ResourceRef, exceptID int64) error {
	const query = `UPDATE ownerships SET status=$1, updated_at=NOW()
                   WHERE ownable_type=$2 AND ownable_id=$3 AND id<>$4 AND status IN ($5, $6)`
	_, err := r.storage.q(ctx).Exec(ctx, query, model.OwnershipCancelled, ownable.Kind, ownable.ID, exceptID,
		model.OwnershipPending, model.OwnershipAccepted)
	return err
}

const invitationColumns = `id, quote_id, customer_id, customer_company_id, creator_id, status, created_at, updated_at`

func scanInvitation(row pgx.Row) (model.QuoteInvitation, error) {
	var inv model.QuoteInvitation
	err := row.Scan(&inv.ID, &inv.QuoteID, &inv.CustomerID, &inv.CustomerCompanyID, &inv.CreatorID, &inv.Status, &inv.CreatedAt, &inv.UpdatedAt)
	return inv, err
}

func (r *invitationRepository) FindByID(ctx context.Context, id int64) (*model.QuoteInvitation, error) {
	inv, err := scanInvitation(r.storage.q(ctx).QueryRow(ctx, `SELECT `+invitationColumns+` FROM quote_invitations WHERE id=$1`, id))
	if err != nil {
		return nil, mapError(err)
	}
	return &inv, nil
}

func (r *invitationRepository) ListByQuote(ctx context.Context, quoteID int64) ([]model.QuoteInvitation, error) {
	const query = `SELECT ` + invitationColumns + ` FROM quote_invitations WHERE quote_id=$1 ORDER BY id`
	rows, err := r.storage.q(ctx).Query(ctx, query, quoteID)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.QuoteInvitation, error) {
		return scanInvitation(row)
	})
}

func (r *invitationRepository) Insert(ctx context.Context, inv *model.QuoteInvitation) error {
	const query = `INSERT INTO quote_invitations (quote_id, customer_id, customer_company_id, creator_id, status)
                   VALUES ($1, $2, $3, $4, $5) RETURNING id, created_at, updated_at`
	err := r.storage.q(ctx).QueryRow(ctx, query, inv.QuoteID, inv.CustomerID, inv.CustomerCompanyID, inv.CreatorID, inv.Status).
		Scan(&inv.ID, &inv.CreatedAt, &inv.UpdatedAt)
	if err != nil {
		return mapError(err)
	}
	return nil
}

func (r *invitationRepository) UpdateStatus(ctx context.Context, id int64, status model.InvitationStatus) error {
	const query = `UPDATE quote_invitations SET status=$1, updated_at=NOW() WHERE id=$2`
	tag, err := r.storage.q(ctx).Exec(ctx, query, status, id)
	if err != nil {
		return mapError(err)
	}
	return expectAffected(tag)
}

func (r *invitationRepository) CloseByQuote(ctx context.Context, quoteID, exceptID int64, from ...model.InvitationStatus) error {
	if len(from) == 0 {
		return nil
	}
	statuses := make([]string, len(from))
	for i, s := range from {
		statuses[i] = string(s)
	}
	const query = `UPDATE quote_invitations SET status=$1, updated_at=NOW()
                   WHERE quote_id=$2 AND id<>$3 AND status = ANY($4)`
	_, err := r.storage.q(ctx).Exec(ctx, query, model.InvitationClosed, quoteID, exceptID, statuses)
	return err
}
