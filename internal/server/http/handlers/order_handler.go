package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/polkiloo/dealerflow/internal/domain/model"
	"github.com/polkiloo/dealerflow/internal/pkg/money"
	"github.com/polkiloo/dealerflow/internal/server/http/dto"
)

// OrderHandler manages order workflow endpoints.
type OrderHandler struct {
	facade OrderFacade
}

// NewOrderHandler constructs OrderHandler.
func NewOrderHandler(facade OrderFacade) *OrderHandler {
	return &OrderHandler{facade: facade}
}

// Transition handles POST /api/orders/:kind/:id/status.
func (h *OrderHandler) Transition(c *gin.Context) {
	kind, id, ok := orderPath(c)
	if !ok {
		return
	}
	var req dto.TransitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Status(http.StatusBadRequest)
		return
	}

	order, err := h.facade.Transition(c.Request.Context(), kind, id, req.Status, CurrentActor(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.toOrderResponse(order))
}

// RegisterPayment handles POST /api/orders/:kind/:id/payments.
func (h *OrderHandler) RegisterPayment(c *gin.Context) {
	kind, id, ok := orderPath(c)
	if !ok {
		return
	}
	var req dto.PaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Status(http.StatusBadRequest)
		return
	}
	total, err := optionalAmount(req.TotalPaymentAmount)
	if err != nil {
		writeError(c, err)
		return
	}
	downPayment, err := optionalAmount(req.DownPaymentAmount)
	if err != nil {
		writeError(c, err)
		return
	}

	order, err := h.facade.RegisterPayment(c.Request.Context(), kind, id, total, downPayment, CurrentActor(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.toOrderResponse(order))
}

func optionalAmount(s *string) (*int64, error) {
	if s == nil {
		return nil, nil
	}
	v, err := money.ToMinorUnits(*s)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", err, *s)
	}
	return &v, nil
}

// Get handles GET /api/orders/:kind/:id.
func (h *OrderHandler) Get(c *gin.Context) {
	kind, id, ok := orderPath(c)
	if !ok {
		return
	}
	order, err := h.facade.Order(c.Request.Context(), kind, id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.toOrderResponse(order))
}

func orderPath(c *gin.Context) (model.ResourceKind, int64, bool) {
	kind, err := model.ParseResourceKind(c.Param("kind"))
	if err != nil || !kind.IsOrder() {
		c.Status(http.StatusNotFound)
		return "", 0, false
	}
	id, ok := pathID(c, "id")
	return kind, id, ok
}

func (h *OrderHandler) toOrderResponse(order *model.Order) dto.OrderResponse {
	resp := dto.OrderResponse{
		ID:                 order.ID,
		Kind:               string(order.Kind),
		Status:             h.facade.StatusName(order.Kind, order.Status),
		CustomerID:         order.CustomerID,
		CustomerCompanyID:  order.CustomerCompanyID,
		VehicleIDs:         order.VehicleIDs,
		TotalPurchasePrice: money.ToDecimalString(order.TotalPurchasePrice),
		TotalSalesPrice:    money.ToDecimalString(order.TotalSalesPrice),
		TotalPaymentAmount: money.ToDecimalString(order.TotalPaymentAmount),
		DownPaymentAmount:  money.Display(order.DownPaymentAmount),
		History:            make([]dto.StatusEntryResponse, 0, len(order.History)),
		CreatedAt:          order.CreatedAt,
	}
	if resp.VehicleIDs == nil {
		resp.VehicleIDs = []int64{}
	}
	for _, e := range order.History {
		resp.History = append(resp.History, dto.StatusEntryResponse{
			Status:    h.facade.StatusName(order.Kind, e.Status),
			CreatedAt: e.CreatedAt,
		})
	}
	if len(order.Files) > 0 {
		resp.Files = make(map[string][]dto.FileResponse, len(order.Files))
		for group, files := range order.Files {
			for _, f := range files {
				resp.Files[group] = append(resp.Files[group], dto.FileResponse{Name: f.Name, Path: f.Path, CreatedAt: f.CreatedAt})
			}
		}
	}
	return resp
}
