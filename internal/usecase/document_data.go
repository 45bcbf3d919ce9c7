package usecase

import (
	"github.com/polkiloo/dealerflow/internal/domain/model"
	"github.com/polkiloo/dealerflow/internal/pkg/money"
)

// documentData builds the data bag handed to the PDF renderer. Amounts are rendered for display.
func documentData(o *model.Order, statusName, locale string) map[string]any {
	items := make([]map[string]any, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, map[string]any{
			"name":           it.Name,
			"purchase_price": money.Display(it.PurchasePrice),
			"sale_price":     money.Display(it.SalePrice),
		})
	}
	services := make([]map[string]any, 0, len(o.Services))
	for _, s := range o.Services {
		services = append(services, map[string]any{
			"name":           s.Name,
			"purchase_price": money.Display(s.PurchasePrice),
			"sale_price":     money.Display(s.SalePrice),
		})
	}
	lines := make([]map[string]any, 0, len(o.Lines))
	for _, l := range o.Lines {
		lines = append(lines, map[string]any{
			"name":              l.Name,
			"type":              l.Type,
			"vat_percentage":    l.VATPercentage,
			"price_exclude_vat": money.Display(l.PriceExcludeVAT),
			"vat":               money.Display(l.VAT),
			"price_include_vat": money.Display(l.PriceIncludeVAT),
		})
	}

	data := map[string]any{
		"id":                              o.ID,
		"kind":                            string(o.Kind),
		"status":                          statusName,
		"locale":                          locale,
		"created_at":                      o.CreatedAt,
		"vehicle_ids":                     o.VehicleIDs,
		"items":                           items,
		"services":                        services,
		"lines":                           lines,
		"total_purchase_price":            money.Display(o.TotalPurchasePrice),
		"total_sales_price":               money.Display(o.TotalSalesPrice),
		"total_sales_price_service_items": money.Display(o.TotalSalesPriceServiceItems),
		"total_payment_amount":            money.Display(o.TotalPaymentAmount),
		"discount":                        money.Display(o.Discount),
		"down_payment":                    o.DownPayment,
		"down_payment_amount":             money.Display(o.DownPaymentAmount),
	}
	if o.CustomerID != nil {
		data["customer_id"] = *o.CustomerID
	}
	if o.CustomerCompanyID != nil {
		data["customer_company_id"] = *o.CustomerCompanyID
	}
	if o.DocumentableKind != "" {
		data["documentable_type"] = string(o.DocumentableKind)
	}
	return data
}
