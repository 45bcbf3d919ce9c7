package handlers

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/polkiloo/dealerflow/internal/adapter/export"
	"github.com/polkiloo/dealerflow/internal/domain/model"
	"github.com/polkiloo/dealerflow/internal/pkg/money"
	"github.com/polkiloo/dealerflow/internal/server/http/dto"
)

// VehicleHandler manages stock and calculation endpoints.
type VehicleHandler struct {
	facade VehicleFacade
	now    func() time.Time
}

// NewVehicleHandler constructs VehicleHandler.
func NewVehicleHandler(facade VehicleFacade) *VehicleHandler {
	return &VehicleHandler{facade: facade, now: time.Now}
}

// Get handles GET /api/vehicles/:id.
func (h *VehicleHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	v, err := h.facade.Vehicle(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.VehicleResponse{ID: v.ID, Stock: string(v.Stock)})
}

// Calculation handles GET /api/vehicles/:id/calculation.
func (h *VehicleHandler) Calculation(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	calc, err := h.facade.Calculation(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toCalculationResponse(*calc))
}

// RecalculateStock handles POST /api/vehicles/stock.
func (h *VehicleHandler) RecalculateStock(c *gin.Context) {
	var req dto.StockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Status(http.StatusBadRequest)
		return
	}
	groups, err := h.facade.RecalculateStock(c.Request.Context(), req.VehicleIDs)
	if err != nil {
		writeError(c, err)
		return
	}
	resp := make(dto.StockResponse, len(groups))
	for stock, ids := range groups {
		resp[string(stock)] = ids
	}
	c.JSON(http.StatusOK, resp)
}

// Export handles GET /api/calculations/export?vehicle_id=1&vehicle_id=2.
func (h *VehicleHandler) Export(c *gin.Context) {
	raw := c.QueryArray("vehicle_id")
	if len(raw) == 0 {
		c.Status(http.StatusBadRequest)
		return
	}
	ids := make([]int64, 0, len(raw))
	for _, r := range raw {
		id, err := strconv.ParseInt(r, 10, 64)
		if err != nil || id <= 0 {
			c.Status(http.StatusBadRequest)
			return
		}
		ids = append(ids, id)
	}

	calcs, err := h.facade.Calculations(c.Request.Context(), ids)
	if err != nil {
		writeError(c, err)
		return
	}
	if len(calcs) == 0 {
		c.Status(http.StatusNoContent)
		return
	}

	var buf bytes.Buffer
	if err := export.WriteCalculations(&buf, calcs); err != nil {
		writeError(c, err)
		return
	}
	name := fmt.Sprintf("calculations-%s.xlsx", h.now().UTC().Format("20060102-150405"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	c.Data(http.StatusOK, export.ContentType, buf.Bytes())
}

func toCalculationResponse(c model.Calculation) dto.CalculationResponse {
	return dto.CalculationResponse{
		VehicleID:         c.Vehicle.ID,
		SalesPriceNet:     money.ToDecimalString(c.SalesPriceNet),
		VATPercentage:     c.VATPercentage,
		RestBPMIndication: money.ToDecimalString(c.RestBPMIndication),
		LegesVAT:          money.ToDecimalString(c.LegesVAT),

		PurchaseCostItemsServices:                money.ToDecimalString(c.PurchaseCostItemsServices),
		SalePriceNetIncludingServicesAndProducts: money.ToDecimalString(c.SalePriceNetIncludingServicesAndProducts),
		SalePriceServicesAndProducts:             money.ToDecimalString(c.SalePriceServicesAndProducts),
		Discount:                                 money.ToDecimalString(c.Discount),
		VAT:                                      money.ToDecimalString(c.VAT),
		SalesPriceInclVATOrMargin:                money.ToDecimalString(c.SalesPriceInclVATOrMargin),
		SalesPriceTotal:                          money.ToDecimalString(c.SalesPriceTotal),

		UpdatedAt: c.UpdatedAt,
	}
}
