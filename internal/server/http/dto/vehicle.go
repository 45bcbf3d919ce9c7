package dto

import "time"

// StockRequest lists vehicles whose stock should be re-derived.
type StockRequest struct {
	VehicleIDs []int64 `json:"vehicle_ids" binding:"required,min=1,dive,gt=0" jsonschema:"required,minItems=1"`
}

// StockResponse groups vehicle identifiers by their new stock.
type StockResponse map[string][]int64

// VehicleResponse describes the stock classification of a vehicle.
type VehicleResponse struct {
	ID    int64  `json:"id"`
	Stock string `json:"stock"`
}

// CalculationResponse is the financial breakdown of a vehicle with decimal string amounts.
type CalculationResponse struct {
	VehicleID int64 `json:"vehicle_id"`

	SalesPriceNet     string `json:"sales_price_net"`
	VATPercentage     int64  `json:"vat_percentage"`
	RestBPMIndication string `json:"rest_bpm_indication"`
	LegesVAT          string `json:"leges_vat"`

	PurchaseCostItemsServices                string `json:"purchase_cost_items_services"`
	SalePriceNetIncludingServicesAndProducts string `json:"sale_price_net_including_services_and_products"`
	SalePriceServicesAndProducts             string `json:"sale_price_services_and_products"`
	Discount                                 string `json:"discount"`
	VAT                                      string `json:"vat"`
	SalesPriceInclVATOrMargin                string `json:"sales_price_incl_vat_or_margin"`
	SalesPriceTotal                          string `json:"sales_price_total"`

	UpdatedAt time.Time `json:"updated_at"`
}
