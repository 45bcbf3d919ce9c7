package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	pgxmockv3 "github.com/pashagolub/pgxmock/v3"

	domainErrors "github.com/polkiloo/dealerflow/internal/domain/errors"
	"github.com/polkiloo/dealerflow/internal/domain/model"
)

var orderColumnNames = []string{
	"id", "kind", "creator_id", "status", "total_purchase_price", "total_sales_price",
	"total_sales_price_service_items", "total_payment_amount", "discount", "down_payment",
	"down_payment_amount", "paid_at", "customer_id", "customer_company_id", "locale", "documentable_kind", "created_at",
}

func addOrderRow(rows *pgxmockv3.Rows, id int64, kind model.ResourceKind, status model.Status, createdAt time.Time) *pgxmockv3.Rows {
	customer := int64(42)
	return rows.AddRow(
		id, kind, int64(1), status, int64(100000), int64(120000),
		int64(5000), int64(0), int64(0), false,
		int64(0), (*time.Time)(nil), &customer, (*int64)(nil), "nl", model.ResourceKind(""), createdAt,
	)
}

func expectOrderDetails(mock pgxmockv3.PgxPoolIface, id int64, createdAt time.Time) {
	mock.ExpectQuery("SELECT vehicle_id FROM order_vehicles WHERE order_id=").WithArgs(id).WillReturnRows(
		pgxmockv3.NewRows([]string{"vehicle_id"}).AddRow(int64(3)).AddRow(int64(5)))
	mock.ExpectQuery("FROM order_items WHERE order_id=").WithArgs(id).WillReturnRows(
		pgxmockv3.NewRows([]string{"id", "name", "purchase_price", "sale_price"}).AddRow(int64(1), "mats", int64(1000), int64(2500)))
	mock.ExpectQuery("FROM order_services WHERE order_id=").WithArgs(id).WillReturnRows(
		pgxmockv3.NewRows([]string{"id", "name", "purchase_price", "sale_price"}))
	mock.ExpectQuery("FROM order_files WHERE order_id=").WithArgs(id).WillReturnRows(
		pgxmockv3.NewRows([]string{"file_group", "name", "path", "kind", "created_at"}).
			AddRow(model.FileGroupSignedContract, "contract.pdf", "gs://bucket/contract.pdf", "application/pdf", createdAt))
}

func TestOrderRepositoryFind(t *testing.T) {
	storage, mock := newMockStorage(t)
	defer mock.Close()
	repo := &orderRepository{storage: storage}
	ctx := context.Background()
	now := time.Now()

	mock.ExpectQuery("FROM orders WHERE id=").WithArgs(int64(7), model.ResourcePurchaseOrder).WillReturnRows(
		addOrderRow(pgxmockv3.NewRows(orderColumnNames), 7, model.ResourcePurchaseOrder, model.PurchaseOrderSubmitted, now))
	expectOrderDetails(mock, 7, now)

	order, err := repo.FindByID(ctx, model.ResourcePurchaseOrder, 7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if order.ID != 7 || order.Status != model.PurchaseOrderSubmitted || order.CustomerID == nil || *order.CustomerID != 42 {
		t.Fatalf("unexpected order: %+v", order)
	}
	if len(order.VehicleIDs) != 2 || order.VehicleIDs[1] != 5 {
		t.Fatalf("unexpected vehicles: %v", order.VehicleIDs)
	}
	if len(order.Items) != 1 || order.Items[0].SalePrice != 2500 || len(order.Services) != 0 {
		t.Fatalf("unexpected lines: items=%v services=%v", order.Items, order.Services)
	}
	if !order.HasFiles(model.FileGroupSignedContract) {
		t.Fatalf("expected signed contract, got %v", order.Files)
	}

	mock.ExpectQuery("FROM orders WHERE id=.* FOR UPDATE").WithArgs(int64(8), model.ResourceQuote).WillReturnError(pgx.ErrNoRows)
	if _, err := repo.FindForUpdate(ctx, model.ResourceQuote, 8); !errors.Is(err, domainErrors.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	mock.ExpectQuery("FROM orders WHERE id=").WithArgs(int64(9), model.ResourceSalesOrder).WillReturnRows(
		addOrderRow(pgxmockv3.NewRows(orderColumnNames), 9, model.ResourceSalesOrder, model.SalesOrderConcept, now))
	mock.ExpectQuery("SELECT vehicle_id FROM order_vehicles").WithArgs(int64(9)).WillReturnError(errors.New("vehicles"))
	if _, err := repo.FindByID(ctx, model.ResourceSalesOrder, 9); err == nil {
		t.Fatal("expected error")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations not met: %v", err)
	}
}

func TestOrderRepositoryFindDocumentLoadsLines(t *testing.T) {
	storage, mock := newMockStorage(t)
	defer mock.Close()
	repo := &orderRepository{storage: storage}
	now := time.Now()

	mock.ExpectQuery("FROM orders WHERE id=.* FOR UPDATE").WithArgs(int64(11), model.ResourceDocument).WillReturnRows(
		addOrderRow(pgxmockv3.NewRows(orderColumnNames), 11, model.ResourceDocument, model.DocumentCreateInvoice, now))
	expectOrderDetails(mock, 11, now)
	mock.ExpectQuery("FROM document_lines WHERE order_id=").WithArgs(int64(11)).WillReturnRows(
		pgxmockv3.NewRows([]string{"name", "vat_percentage", "price_exclude_vat", "vat", "price_include_vat", "line_type"}).
			AddRow("vehicle", int64(21), int64(10000), int64(2100), int64(12100), "vehicle"))

	order, err := repo.FindForUpdate(context.Background(), model.ResourceDocument, 11)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(order.Lines) != 1 || !order.Lines[0].Consistent() {
		t.Fatalf("unexpected lines: %+v", order.Lines)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations not met: %v", err)
	}
}

func TestOrderRepositoryUpdates(t *testing.T) {
	storage, mock := newMockStorage(t)
	defer mock.Close()
	repo := &orderRepository{storage: storage}
	ctx := context.Background()

	mock.ExpectExec("UPDATE orders SET status").WithArgs(model.PurchaseOrderApproved, int64(1), model.ResourcePurchaseOrder).
		WillReturnResult(pgxmockv3.NewResult("UPDATE", 1))
	if err := repo.UpdateStatus(ctx, model.ResourcePurchaseOrder, 1, model.PurchaseOrderApproved); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	mock.ExpectExec("UPDATE orders SET status").WithArgs(model.PurchaseOrderApproved, int64(2), model.ResourcePurchaseOrder).
		WillReturnResult(pgxmockv3.NewResult("UPDATE", 0))
	if err := repo.UpdateStatus(ctx, model.ResourcePurchaseOrder, 2, model.PurchaseOrderApproved); !errors.Is(err, domainErrors.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	mock.ExpectExec("UPDATE orders SET status").WithArgs(model.PurchaseOrderApproved, int64(3), model.ResourcePurchaseOrder).WillReturnError(errors.New("update"))
	if err := repo.UpdateStatus(ctx, model.ResourcePurchaseOrder, 3, model.PurchaseOrderApproved); err == nil {
		t.Fatal("expected error")
	}

	company := int64(9)
	mock.ExpectExec("UPDATE orders SET customer_id").WithArgs(int64(5), &company, int64(30)).
		WillReturnResult(pgxmockv3.NewResult("UPDATE", 1))
	if err := repo.UpdateCustomer(ctx, 30, 5, &company); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	mock.ExpectExec("UPDATE orders SET customer_id").WithArgs(int64(5), (*int64)(nil), int64(31)).WillReturnResult(pgxmockv3.NewResult("UPDATE", 0))
	if err := repo.UpdateCustomer(ctx, 31, 5, nil); !errors.Is(err, domainErrors.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	mock.ExpectExec("UPDATE orders SET total_payment_amount").WithArgs(int64(250000), true, int64(50000), int64(10)).
		WillReturnResult(pgxmockv3.NewResult("UPDATE", 1))
	payments := model.Payments{TotalPaymentAmount: 250000, DownPayment: true, DownPaymentAmount: 50000}
	if err := repo.UpdatePayments(ctx, 10, payments); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	mock.ExpectExec("UPDATE orders SET total_payment_amount").WithArgs(anyArgs(4)...).WillReturnResult(pgxmockv3.NewResult("UPDATE", 0))
	if err := repo.UpdatePayments(ctx, 11, payments); !errors.Is(err, domainErrors.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	at := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	file := model.FileHandle{Name: "po.pdf", Path: "gs://bucket/po.pdf", Kind: "application/pdf", CreatedAt: at}
	mock.ExpectExec("INSERT INTO order_files").
		WithArgs(int64(1), "purchase_order_pdf", "po.pdf", "gs://bucket/po.pdf", "application/pdf", &at).
		WillReturnResult(pgxmockv3.NewResult("INSERT", 1))
	if err := repo.AttachFile(ctx, 1, "purchase_order_pdf", file); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	mock.ExpectExec("INSERT INTO order_files").WithArgs(anyArgs(6)...).WillReturnError(errors.New("insert"))
	if err := repo.AttachFile(ctx, 1, "purchase_order_pdf", model.FileHandle{Name: "x"}); err == nil {
		t.Fatal("expected error")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations not met: %v", err)
	}
}

func TestOrderRepositoryListQuotesSharingVehicles(t *testing.T) {
	storage, mock := newMockStorage(t)
	defer mock.Close()
	repo := &orderRepository{storage: storage}
	ctx := context.Background()
	now := time.Now()

	rows := pgxmockv3.NewRows(orderColumnNames)
	addOrderRow(rows, 31, model.ResourceQuote, model.QuoteSent, now)
	addOrderRow(rows, 33, model.ResourceQuote, model.QuoteConcept, now)
	mock.ExpectQuery("FROM orders o").WithArgs(model.ResourceQuote, int64(30), []int64{1, 2}).WillReturnRows(rows)
	mock.ExpectQuery("SELECT vehicle_id FROM order_vehicles").WithArgs(int64(31)).WillReturnRows(
		pgxmockv3.NewRows([]string{"vehicle_id"}).AddRow(int64(2)))
	mock.ExpectQuery("SELECT vehicle_id FROM order_vehicles").WithArgs(int64(33)).WillReturnRows(
		pgxmockv3.NewRows([]string{"vehicle_id"}).AddRow(int64(1)).AddRow(int64(4)))

	quotes, err := repo.ListQuotesSharingVehicles(ctx, 30, []int64{1, 2})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(quotes) != 2 || quotes[0].ID != 31 || len(quotes[1].VehicleIDs) != 2 {
		t.Fatalf("unexpected quotes: %+v", quotes)
	}

	mock.ExpectQuery("FROM orders o").WithArgs(model.ResourceQuote, int64(30), []int64{1}).WillReturnError(errors.New("query"))
	if _, err := repo.ListQuotesSharingVehicles(ctx, 30, []int64{1}); err == nil {
		t.Fatal("expected error")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations not met: %v", err)
	}
}

func TestOrderRepositoryListQuotesRowsError(t *testing.T) {
	storage := &Storage{pool: &rowsErrorPool{rows: &errorRows{err: errors.New("rows err")}}}
	repo := &orderRepository{storage: storage}
	if _, err := repo.ListQuotesSharingVehicles(context.Background(), 1, []int64{1}); err == nil {
		t.Fatal("expected rows error")
	}
}

func TestOrderRepositoryExists(t *testing.T) {
	storage, mock := newMockStorage(t)
	defer mock.Close()
	repo := &orderRepository{storage: storage}

	mock.ExpectQuery("SELECT EXISTS").WithArgs(int64(1), model.ResourceWorkOrder).WillReturnRows(
		pgxmockv3.NewRows([]string{"exists"}).AddRow(true))
	if ok, err := repo.Exists(context.Background(), model.ResourceWorkOrder, 1); err != nil || !ok {
		t.Fatalf("unexpected result: %v %v", ok, err)
	}

	mock.ExpectQuery("SELECT EXISTS").WithArgs(int64(2), model.ResourceWorkOrder).WillReturnError(errors.New("query"))
	if _, err := repo.Exists(context.Background(), model.ResourceWorkOrder, 2); err == nil {
		t.Fatal("expected error")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations not met: %v", err)
	}
}

func TestHistoryRepository(t *testing.T) {
	storage, mock := newMockStorage(t)
	defer mock.Close()
	repo := &historyRepository{storage: storage}
	ctx := context.Background()
	at := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	mock.ExpectExec("INSERT INTO status_history").WithArgs(int64(1), model.PurchaseOrderSubmitted, at).
		WillReturnResult(pgxmockv3.NewResult("INSERT", 1))
	if err := repo.Append(ctx, 1, model.PurchaseOrderSubmitted, at); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	mock.ExpectExec("INSERT INTO status_history").WithArgs(int64(1), model.PurchaseOrderApproved, at).WillReturnError(errors.New("insert"))
	if err := repo.Append(ctx, 1, model.PurchaseOrderApproved, at); err == nil {
		t.Fatal("expected error")
	}

	mock.ExpectQuery("SELECT status, created_at FROM status_history").WithArgs(int64(1)).WillReturnRows(
		pgxmockv3.NewRows([]string{"status", "created_at"}).
			AddRow(model.PurchaseOrderSubmitted, at).
			AddRow(model.PurchaseOrderApproved, at.Add(time.Minute)))
	entries, err := repo.List(ctx, 1)
	if err != nil || len(entries) != 2 || entries[1].Status != model.PurchaseOrderApproved {
		t.Fatalf("unexpected entries: %v err=%v", entries, err)
	}

	mock.ExpectQuery("SELECT status, created_at FROM status_history").WithArgs(int64(2)).WillReturnError(errors.New("query"))
	if _, err := repo.List(ctx, 2); err == nil {
		t.Fatal("expected error")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations not met: %v", err)
	}
}

func TestHistoryRepositoryListRowsError(t *testing.T) {
	storage := &Storage{pool: &rowsErrorPool{rows: &errorRows{err: errors.New("rows err")}}}
	repo := &historyRepository{storage: storage}
	if _, err := repo.List(context.Background(), 1); err == nil {
		t.Fatal("expected rows error")
	}
}
