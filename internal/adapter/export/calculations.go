// Package export renders calculations as spreadsheets.
package export

import (
	"fmt"
	"io"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/polkiloo/dealerflow/internal/domain/model"
	"github.com/polkiloo/dealerflow/internal/pkg/money"
)

// ContentType of the produced workbook.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

const sheet = "Calculations"

var header = []any{
	"Vehicle",
	"Sales price net",
	"VAT %",
	"Rest BPM indication",
	"Leges VAT",
	"Purchase cost items/services",
	"Sale price net incl. services and products",
	"Sale price services and products",
	"Discount",
	"VAT",
	"Sales price incl. VAT or margin",
	"Sales price total",
	"Updated at",
}

// WriteCalculations writes one row per calculation to w as an xlsx workbook.
func WriteCalculations(w io.Writer, calcs []model.Calculation) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for i, c := range calcs {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []any{
			c.Vehicle.ID,
			amount(c.SalesPriceNet),
			c.VATPercentage,
			amount(c.RestBPMIndication),
			amount(c.LegesVAT),
			amount(c.PurchaseCostItemsServices),
			amount(c.SalePriceNetIncludingServicesAndProducts),
			amount(c.SalePriceServicesAndProducts),
			amount(c.Discount),
			amount(c.VAT),
			amount(c.SalesPriceInclVATOrMargin),
			amount(c.SalesPriceTotal),
			c.UpdatedAt,
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

// amount converts minor units to a spreadsheet number.
func amount(v int64) float64 {
	return decimal.New(v, -money.MinorDigits).InexactFloat64()
}
