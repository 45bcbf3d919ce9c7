package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	pgxmockv3 "github.com/pashagolub/pgxmock/v3"

	domainErrors "github.com/polkiloo/dealerflow/internal/domain/errors"
	"github.com/polkiloo/dealerflow/internal/domain/model"
)

var ownershipColumnNames = []string{"id", "user_id", "ownable_type", "ownable_id", "creator_id", "status", "created_at", "updated_at"}

func TestOwnershipRepository(t *testing.T) {
	storage, mock := newMockStorage(t)
	defer mock.Close()
	repo := &ownershipRepository{storage: storage}
	ctx := context.Background()
	now := time.Now()
	ref := model.ResourceRef{Kind: model.ResourceSalesOrder, ID: 5}

	mock.ExpectQuery("FROM ownerships WHERE id=").WithArgs(int64(1)).WillReturnRows(
		pgxmockv3.NewRows(ownershipColumnNames).AddRow(int64(1), int64(3), model.ResourceSalesOrder, int64(5), int64(2), model.OwnershipPending, now, now))
	o, err := repo.FindByID(ctx, 1)
	if err != nil || o.Ownable != ref || o.Status != model.OwnershipPending {
		t.Fatalf("unexpected ownership: %+v err=%v", o, err)
	}

	mock.ExpectQuery("FROM ownerships WHERE id=").WithArgs(int64(2)).WillReturnError(pgx.ErrNoRows)
	if _, err := repo.FindByID(ctx, 2); !errors.Is(err, domainErrors.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	mock.ExpectQuery("FROM ownerships").WithArgs(model.ResourceSalesOrder, int64(5)).WillReturnRows(
		pgxmockv3.NewRows(ownershipColumnNames).
			AddRow(int64(1), int64(3), model.ResourceSalesOrder, int64(5), int64(2), model.OwnershipAccepted, now, now).
			AddRow(int64(4), int64(6), model.ResourceSalesOrder, int64(5), int64(6), model.OwnershipPending, now, now))
	list, err := repo.ListByOwnable(ctx, ref)
	if err != nil || len(list) != 2 || list[1].UserID != 6 {
		t.Fatalf("unexpected list: %+v err=%v", list, err)
	}

	mock.ExpectQuery("FROM ownerships").WithArgs(model.ResourceSalesOrder, int64(5)).WillReturnError(errors.New("query"))
	if _, err := repo.ListByOwnable(ctx, ref); err == nil {
		t.Fatal("expected error")
	}

	insert := &model.Ownership{UserID: 3, Ownable: ref, CreatorID: 2, Status: model.OwnershipPending}
	mock.ExpectQuery("INSERT INTO ownerships").WithArgs(int64(3), model.ResourceSalesOrder, int64(5), int64(2), model.OwnershipPending).
		WillReturnRows(pgxmockv3.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(int64(9), now, now))
	if err := repo.Insert(ctx, insert); err != nil || insert.ID != 9 {
		t.Fatalf("unexpected insert: %+v err=%v", insert, err)
	}

	mock.ExpectQuery("INSERT INTO ownerships").WithArgs(anyArgs(5)...).WillReturnError(&pgconn.PgError{Code: "23505"})
	if err := repo.Insert(ctx, &model.Ownership{Ownable: ref}); !errors.Is(err, domainErrors.ErrAlreadyExists) {
		t.Fatalf("expected already exists, got %v", err)
	}

	mock.ExpectExec("UPDATE ownerships SET status").WithArgs(model.OwnershipAccepted, int64(9)).
		WillReturnResult(pgxmockv3.NewResult("UPDATE", 1))
	if err := repo.UpdateStatus(ctx, 9, model.OwnershipAccepted); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	mock.ExpectExec("UPDATE ownerships SET status").WithArgs(model.OwnershipAccepted, int64(4)).WillReturnError(&pgconn.PgError{Code: "23505"})
	if err := repo.UpdateStatus(ctx, 4, model.OwnershipAccepted); !errors.Is(err, domainErrors.ErrAlreadyExists) {
		t.Fatalf("expected already exists, got %v", err)
	}

	mock.ExpectExec("UPDATE ownerships SET status").WithArgs(model.OwnershipRejected, int64(99)).WillReturnResult(pgxmockv3.NewResult("UPDATE", 0))
	if err := repo.UpdateStatus(ctx, 99, model.OwnershipRejected); !errors.Is(err, domainErrors.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	mock.ExpectExec(`status IN \(\$5, \$6\)`).
		WithArgs(model.OwnershipCancelled, model.ResourceSalesOrder, int64(5), int64(9), model.OwnershipPending, model.OwnershipAccepted).
		WillReturnResult(pgxmockv3.NewResult("UPDATE", 1))
	if err := repo.CancelSiblings(ctx, ref, 9); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations not met: %v", err)
	}
}

var invitationColumnNames = []string{"id", "quote_id", "customer_id", "customer_company_id", "creator_id", "status", "created_at", "updated_at"}

func TestInvitationRepository(t *testing.T) {
	storage, mock := newMockStorage(t)
	defer mock.Close()
	repo := &invitationRepository{storage: storage}
	ctx := context.Background()
	now := time.Now()
	company := int64(70)

	mock.ExpectQuery("FROM quote_invitations WHERE id=").WithArgs(int64(1)).WillReturnRows(
		pgxmockv3.NewRows(invitationColumnNames).AddRow(int64(1), int64(30), int64(7), &company, int64(2), model.InvitationSent, now, now))
	inv, err := repo.FindByID(ctx, 1)
	if err != nil || inv.QuoteID != 30 || !inv.Open() || inv.CustomerCompanyID == nil {
		t.Fatalf("unexpected invitation: %+v err=%v", inv, err)
	}

	mock.ExpectQuery("FROM quote_invitations WHERE id=").WithArgs(int64(2)).WillReturnError(pgx.ErrNoRows)
	if _, err := repo.FindByID(ctx, 2); !errors.Is(err, domainErrors.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	mock.ExpectQuery("FROM quote_invitations WHERE quote_id=").WithArgs(int64(30)).WillReturnRows(
		pgxmockv3.NewRows(invitationColumnNames).
			AddRow(int64(1), int64(30), int64(7), (*int64)(nil), int64(2), model.InvitationSent, now, now).
			AddRow(int64(3), int64(30), int64(8), (*int64)(nil), int64(2), model.InvitationConcept, now, now))
	list, err := repo.ListByQuote(ctx, 30)
	if err != nil || len(list) != 2 || list[1].Status != model.InvitationConcept {
		t.Fatalf("unexpected list: %+v err=%v", list, err)
	}

	created := &model.QuoteInvitation{QuoteID: 30, CustomerID: 7, CustomerCompanyID: &company, CreatorID: 2, Status: model.InvitationConcept}
	mock.ExpectQuery("INSERT INTO quote_invitations").WithArgs(int64(30), int64(7), &company, int64(2), model.InvitationConcept).
		WillReturnRows(pgxmockv3.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(int64(5), now, now))
	if err := repo.Insert(ctx, created); err != nil || created.ID != 5 {
		t.Fatalf("unexpected insert: %+v err=%v", created, err)
	}

	mock.ExpectQuery("INSERT INTO quote_invitations").WithArgs(anyArgs(5)...).WillReturnError(errors.New("insert"))
	if err := repo.Insert(ctx, &model.QuoteInvitation{QuoteID: 30}); err == nil {
		t.Fatal("expected error")
	}

	mock.ExpectExec("UPDATE quote_invitations SET status").WithArgs(model.InvitationAccepted, int64(5)).
		WillReturnResult(pgxmockv3.NewResult("UPDATE", 1))
	if err := repo.UpdateStatus(ctx, 5, model.InvitationAccepted); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	mock.ExpectExec("UPDATE quote_invitations SET status").WithArgs(model.InvitationAccepted, int64(6)).WillReturnError(&pgconn.PgError{Code: "23505"})
	if err := repo.UpdateStatus(ctx, 6, model.InvitationAccepted); !errors.Is(err, domainErrors.ErrAlreadyExists) {
		t.Fatalf("expected already exists, got %v", err)
	}

	mock.ExpectExec("UPDATE quote_invitations SET status").
		WithArgs(model.InvitationClosed, int64(30), int64(5), []string{"Concept"}).
		WillReturnResult(pgxmockv3.NewResult("UPDATE", 1))
	if err := repo.CloseByQuote(ctx, 30, 5, model.InvitationConcept); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := repo.CloseByQuote(ctx, 30, 5); err != nil {
		t.Fatalf("closing without statuses must be a no-op: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations not met: %v", err)
	}
}
