package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/polkiloo/dealerflow/internal/domain/model"
)

type vehicleRepository struct {
	storage *Storage
}

type calculationRepository struct {
	storage *Storage
}

func (r *vehicleRepository) FindByID(ctx context.Context, id int64) (*model.Vehicle, error) {
	const query = `SELECT id, stock FROM vehicles WHERE id=$1`
	var v model.Vehicle
	if err := r.storage.q(ctx).QueryRow(ctx, query, id).Scan(&v.ID, &v.Stock); err != nil {
		return nil, mapError(err)
	}
	return &v, nil
}

// stockFactsQuery derives the facts per vehicle. An order counts once it left Concept
// and was not rejected or cancelled.
const stockFactsQuery = `SELECT v.id,
    EXISTS (SELECT 1 FROM orders o JOIN order_vehicles ov ON ov.order_id=o.id
            WHERE ov.vehicle_id=v.id AND o.kind='purchase_order' AND o.status NOT IN ($2, $3, $4)),
    EXISTS (SELECT 1 FROM orders o JOIN order_vehicles ov ON ov.order_id=o.id
            WHERE ov.vehicle_id=v.id AND o.kind='sales_order' AND o.status NOT IN ($2, $5, $6)),
    EXISTS (SELECT 1 FROM orders o JOIN order_vehicles ov ON ov.order_id=o.id
            WHERE ov.vehicle_id=v.id AND o.kind='purchase_order' AND o.status NOT IN ($2, $3, $4)
              AND (o.status IN ($7, $8)
                   OR (o.total_purchase_price > 0 AND o.total_payment_amount >= o.total_purchase_price))),
    EXISTS (SELECT 1 FROM orders o JOIN order_vehicles ov ON ov.order_id=o.id
            WHERE ov.vehicle_id=v.id AND o.kind='document' AND o.documentable_kind='sales_order' AND o.status=$9)
FROM vehicles v
WHERE v.id = ANY($1)
ORDER BY v.id`

func (r *vehicleRepository) StockFacts(ctx context.Context, vehicleIDs []int64) ([]model.StockFacts, error) {
	rows, err := r.storage.q(ctx).Query(ctx, stockFactsQuery,
		vehicleIDs,
		model.StatusConcept,
		model.PurchaseOrderRejected, model.PurchaseOrderCancelled,
		model.SalesOrderRejected, model.SalesOrderCancelled,
		model.PurchaseOrderPaymentDone, model.PurchaseOrderCompleted,
		model.DocumentPaid,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []model.StockFacts
	for rows.Next() {
		var f model.StockFacts
		if err := rows.Scan(&f.VehicleID, &f.HasPurchaseOrder, &f.HasSalesOrder, &f.PurchaseOrderPaid, &f.SalesDocumentPaid); err != nil {
			return nil, err
		}
		result = append(result, f)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *vehicleRepository) BulkUpdateStock(ctx context.Context, stock model.Stock, vehicleIDs []int64) error {
	const query = `UPDATE vehicles SET stock=$1, updated_at=NOW() WHERE id = ANY($2)`
	_, err := r.storage.q(ctx).Exec(ctx, query, stock, vehicleIDs)
	return err
}

func (r *vehicleRepository) ListIDs(ctx context.Context, afterID int64, limit int) ([]int64, error) {
	const query = `SELECT id FROM vehicles WHERE id>$1 ORDER BY id LIMIT $2`
	rows, err := r.storage.q(ctx).Query(ctx, query, afterID, limit)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowTo[int64])
}

func (r *vehicleRepository) VehiclesOfDocument(ctx context.Context, documentID int64) ([]int64, error) {
	return loadVehicleIDs(ctx, r.storage.q(ctx), documentID)
}

func (r *vehicleRepository) Exists(ctx context.Context, id int64) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM vehicles WHERE id=$1)`
	var exists bool
	if err := r.storage.q(ctx).QueryRow(ctx, query, id).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func (r *calculationRepository) ListByVehicles(ctx context.Context, refs []model.ResourceRef) (map[model.ResourceRef]model.Calculation, error) {
	const query = `SELECT ownable_type, ownable_id, sales_price_net, vat_percentage, rest_bpm_indication, leges_vat,
                          purchase_cost_items_services, sale_price_net_including_services_and_products,
                          sale_price_services_and_products, discount, vat, sales_price_incl_vat_or_margin,
                          sales_price_total, updated_at
                   FROM calculations WHERE ownable_type=$1 AND ownable_id = ANY($2)`

	byKind := make(map[model.ResourceKind][]int64)
	var kinds []model.ResourceKind
	for _, ref := range refs {
		if _, ok := byKind[ref.Kind]; !ok {
			kinds = append(kinds, ref.Kind)
		}
		byKind[ref.Kind] = append(byKind[ref.Kind], ref.ID)
	}

	result := make(map[model.ResourceRef]model.Calculation, len(refs))
	q := r.storage.q(ctx)
	for _, kind := range kinds {
		rows, err := q.Query(ctx, query, kind, byKind[kind])
		if err != nil {
			return nil, fmt.Errorf("query calculations: %w", err)
		}
		calcs, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.Calculation, error) {
			var c model.Calculation
			err := row.Scan(
				&c.Vehicle.Kind, &c.Vehicle.ID, &c.SalesPriceNet, &c.VATPercentage, &c.RestBPMIndication, &c.LegesVAT,
				&c.PurchaseCostItemsServices, &c.SalePriceNetIncludingServicesAndProducts,
				&c.SalePriceServicesAndProducts, &c.Discount, &c.VAT, &c.SalesPriceInclVATOrMargin,
				&c.SalesPriceTotal, &c.UpdatedAt,
			)
			return c, err
		})
		if err != nil {
			return nil, fmt.Errorf("scan calculations: %w", err)
		}
		for _, c := range calcs {
			result[c.Vehicle] = c
		}
	}
	return result, nil
}

func (r *calculationRepository) Upsert(ctx context.Context, c model.Calculation) error {
	const query = `INSERT INTO calculations (ownable_type, ownable_id, sales_price_net, vat_percentage, rest_bpm_indication,
                       leges_vat, purchase_cost_items_services, sale_price_net_including_services_and_products,
                       sale_price_services_and_products, discount, vat, sales_price_incl_vat_or_margin, sales_price_total, updated_at)
                   VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
                   ON CONFLICT (ownable_type, ownable_id) DO UPDATE SET
                       sales_price_net = EXCLUDED.sales_price_net,
                       vat_percentage = EXCLUDED.vat_percentage,
                       rest_bpm_indication = EXCLUDED.rest_bpm_indication,
                       leges_vat = EXCLUDED.leges_vat,
                       purchase_cost_items_services = EXCLUDED.purchase_cost_items_services,
                       sale_price_net_including_services_and_products = EXCLUDED.sale_price_net_including_services_and_products,
                       sale_price_services_and_products = EXCLUDED.sale_price_services_and_products,
                       discount = EXCLUDED.discount,
                       vat = EXCLUDED.vat,
                       sales_price_incl_vat_or_margin = EXCLUDED.sales_price_incl_vat_or_margin,
                       sales_price_total = EXCLUDED.sales_price_total,
                       updated_at = EXCLUDED.updated_at`
	_, err := r.storage.q(ctx).Exec(ctx, query,
		c.Vehicle.Kind, c.Vehicle.ID, c.SalesPriceNet, c.VATPercentage, c.RestBPMIndication,
		c.LegesVAT, c.PurchaseCostItemsServices, c.SalePriceNetIncludingServicesAndProducts,
		c.SalePriceServicesAndProducts, c.Discount, c.VAT, c.SalesPriceInclVATOrMargin, c.SalesPriceTotal, c.UpdatedAt,
	)
	return err
}
