package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/polkiloo/dealerflow/internal/domain/model"
)

type orderRepository struct {
	storage *Storage
}

type historyRepository struct {
	storage *Storage
}

const orderColumns = `id, kind, creator_id, status, total_purchase_price, total_sales_price,
        total_sales_price_service_items, total_payment_amount, discount, down_payment,
        down_payment_amount, paid_at, customer_id, customer_company_id, locale, documentable_kind, created_at`

func scanOrder(row pgx.Row) (*model.Order, error) {
	var o model.Order
	err := row.Scan(
		&o.ID, &o.Kind, &o.CreatorID, &o.Status, &o.TotalPurchasePrice, &o.TotalSalesPrice,
		&o.TotalSalesPriceServiceItems, &o.TotalPaymentAmount, &o.Discount, &o.DownPayment,
		&o.DownPaymentAmount, &o.PaidAt, &o.CustomerID, &o.CustomerCompanyID, &o.Locale, &o.DocumentableKind, &o.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *orderRepository) FindByID(ctx context.Context, kind model.ResourceKind, id int64) (*model.Order, error) {
	return r.find(ctx, `SELECT `+orderColumns+` FROM orders WHERE id=$1 AND kind=$2`, kind, id)
}

func (r *orderRepository) FindForUpdate(ctx context.Context, kind model.ResourceKind, id int64) (*model.Order, error) {
	return r.find(ctx, `SELECT `+orderColumns+` FROM orders WHERE id=$1 AND kind=$2 FOR UPDATE`, kind, id)
}

func (r *orderRepository) find(ctx context.Context, query string, kind model.ResourceKind, id int64) (*model.Order, error) {
	q := r.storage.q(ctx)
	order, err := scanOrder(q.QueryRow(ctx, query, id, kind))
	if err != nil {
		return nil, mapError(err)
	}
	if err := r.loadDetails(ctx, q, order); err != nil {
		return nil, err
	}
	return order, nil
}

// loadDetails fills vehicles, items, services, files and document lines of the order.
func (r *orderRepository) loadDetails(ctx context.Context, q querier, o *model.Order) error {
	var err error
	if o.VehicleIDs, err = loadVehicleIDs(ctx, q, o.ID); err != nil {
		return err
	}

	rows, err := q.Query(ctx, `SELECT id, name, purchase_price, sale_price FROM order_items WHERE order_id=$1 ORDER BY id`, o.ID)
	if err != nil {
		return fmt.Errorf("load items: %w", err)
	}
	o.Items, err = pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.OrderItem, error) {
		var it model.OrderItem
		err := row.Scan(&it.ID, &it.Name, &it.PurchasePrice, &it.SalePrice)
		return it, err
	})
	if err != nil {
		return fmt.Errorf("load items: %w", err)
	}

	rows, err = q.Query(ctx, `SELECT id, name, purchase_price, sale_price FROM order_services WHERE order_id=$1 ORDER BY id`, o.ID)
	if err != nil {
		return fmt.Errorf("load services: %w", err)
	}
	o.Services, err = pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.OrderService, error) {
		var s model.OrderService
		err := row.Scan(&s.ID, &s.Name, &s.PurchasePrice, &s.SalePrice)
		return s, err
	})
	if err != nil {
		return fmt.Errorf("load services: %w", err)
	}

	rows, err = q.Query(ctx, `SELECT file_group, name, path, kind, created_at FROM order_files WHERE order_id=$1 ORDER BY id`, o.ID)
	if err != nil {
		return fmt.Errorf("load files: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			group string
			f     model.FileHandle
		)
		if err := rows.Scan(&group, &f.Name, &f.Path, &f.Kind, &f.CreatedAt); err != nil {
			return fmt.Errorf("load files: %w", err)
		}
		o.AttachFile(group, f)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("load files: %w", err)
	}
	rows.Close()

	if o.Kind != model.ResourceDocument {
		return nil
	}
	rows, err = q.Query(ctx, `SELECT name, vat_percentage, price_exclude_vat, vat, price_include_vat, line_type
                   FROM document_lines WHERE order_id=$1 ORDER BY id`, o.ID)
	if err != nil {
		return fmt.Errorf("load lines: %w", err)
	}
	o.Lines, err = pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.DocumentLine, error) {
		var l model.DocumentLine
		err := row.Scan(&l.Name, &l.VATPercentage, &l.PriceExcludeVAT, &l.VAT, &l.PriceIncludeVAT, &l.Type)
		return l, err
	})
	if err != nil {
		return fmt.Errorf("load lines: %w", err)
	}
	return nil
}

func loadVehicleIDs(ctx context.Context, q querier, orderID int64) ([]int64, error) {
	rows, err := q.Query(ctx, `SELECT vehicle_id FROM order_vehicles WHERE order_id=$1 ORDER BY vehicle_id`, orderID)
	if err != nil {
		return nil, fmt.Errorf("load vehicles: %w", err)
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[int64])
	if err != nil {
		return nil, fmt.Errorf("load vehicles: %w", err)
	}
	return ids, nil
}

func (r *orderRepository) UpdateStatus(ctx context.Context, kind model.ResourceKind, id int64, status model.Status) error {
	const query = `UPDATE orders SET status=$1, updated_at=NOW() WHERE id=$2 AND kind=$3`
	tag, err := r.storage.q(ctx).Exec(ctx, query, status, id, kind)
	if err != nil {
		return err
	}
	return expectAffected(tag)
}

func (r *orderRepository) UpdateCustomer(ctx context.Context, id int64, customerID int64, companyID *int64) error {
	const query = `UPDATE orders SET customer_id=$1, customer_company_id=$2, updated_at=NOW() WHERE id=$3`
	tag, err := r.storage.q(ctx).Exec(ctx, query, customerID, companyID, id)
	if err != nil {
		return err
	}
	return expectAffected(tag)
}

func (r *orderRepository) UpdatePayments(ctx context.Context, id int64, p model.Payments) error {
	const query = `UPDATE orders SET total_payment_amount=$1, down_payment=$2, down_payment_amount=$3, updated_at=NOW() WHERE id=$4`
	tag, err := r.storage.q(ctx).Exec(ctx, query, p.TotalPaymentAmount, p.DownPayment, p.DownPaymentAmount, id)
	if err != nil {
		return err
	}
	return expectAffected(tag)
}

func (r *orderRepository) AttachFile(ctx context.Context, id int64, group string, file model.FileHandle) error {
	const query = `INSERT INTO order_files (order_id, file_group, name, path, kind, created_at)
                   VALUES ($1, $2, $3, $4, $5, COALESCE($6, NOW()))`
	var createdAt *time.Time
	if !file.CreatedAt.IsZero() {
		createdAt = &file.CreatedAt
	}
	if _, err := r.storage.q(ctx).Exec(ctx, query, id, group, file.Name, file.Path, file.Kind, createdAt); err != nil {
		return mapError(err)
	}
	return nil
}

func (r *orderRepository) ListQuotesSharingVehicles(ctx context.Context, quoteID int64, vehicleIDs []int64) ([]model.Order, error) {
	const query = `SELECT ` + orderColumns + ` FROM orders o
                   WHERE o.kind=$1 AND o.id<>$2
                     AND EXISTS (SELECT 1 FROM order_vehicles ov WHERE ov.order_id=o.id AND ov.vehicle_id = ANY($3))
                   ORDER BY o.id
                   FOR UPDATE`
	q := r.storage.q(ctx)
	rows, err := q.Query(ctx, query, model.ResourceQuote, quoteID, vehicleIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []model.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	rows.Close()

	for i := range result {
		if result[i].VehicleIDs, err = loadVehicleIDs(ctx, q, result[i].ID); err != nil {
			return nil, err
		}
	}
	return result, nil
}

func (r *orderRepository) Exists(ctx context.Context, kind model.ResourceKind, id int64) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM orders WHERE id=$1 AND kind=$2)`
	var exists bool
	if err := r.storage.q(ctx).QueryRow(ctx, query, id, kind).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func (r *historyRepository) Append(ctx context.Context, orderID int64, status model.Status, at time.Time) error {
	const query = `INSERT INTO status_history (order_id, status, created_at) VALUES ($1, $2, $3)`
	if _, err := r.storage.q(ctx).Exec(ctx, query, orderID, status, at); err != nil {
		return mapError(err)
	}
	return nil
}

func (r *historyRepository) List(ctx context.Context, orderID int64) ([]model.StatusEntry, error) {
	const query = `SELECT status, created_at FROM status_history WHERE order_id=$1 ORDER BY id`
	rows, err := r.storage.q(ctx).Query(ctx, query, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []model.StatusEntry
	for rows.Next() {
		var e model.StatusEntry
		if err := rows.Scan(&e.Status, &e.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
