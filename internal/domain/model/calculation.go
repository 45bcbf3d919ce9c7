package model

import "time"

// Calculation is the per-vehicle financial breakdown. Derived fields are never edited by hand.
type Calculation struct {
	Vehicle ResourceRef

	SalesPriceNet     int64
	VATPercentage     int64
	RestBPMIndication int64
	LegesVAT          int64

	PurchaseCostItemsServices                int64
	SalePriceNetIncludingServicesAndProducts int64
	SalePriceServicesAndProducts             int64
	Discount                                 int64
	VAT                                      int64
	SalesPriceInclVATOrMargin                int64
	SalesPriceTotal                          int64

	UpdatedAt time.Time
}

// Balanced reports whether the total equals its components.
func (c Calculation) Balanced() bool {
	return c.SalesPriceTotal == c.SalePriceNetIncludingServicesAndProducts+c.VAT+c.RestBPMIndication+c.LegesVAT
}
