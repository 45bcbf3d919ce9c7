package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/polkiloo/dealerflow/internal/domain/model"
	"github.com/polkiloo/dealerflow/internal/server/http/dto"
)

// InvitationHandler manages quote invitation endpoints.
type InvitationHandler struct {
	facade InvitationFacade
}

// NewInvitationHandler constructs InvitationHandler.
func NewInvitationHandler(facade InvitationFacade) *InvitationHandler {
	return &InvitationHandler{facade: facade}
}

// Create handles POST /api/quotes/:id/invitations.
func (h *InvitationHandler) Create(c *gin.Context) {
	quoteID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req dto.InvitationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Status(http.StatusBadRequest)
		return
	}

	inv, err := h.facade.CreateInvitation(c.Request.Context(), quoteID, req.CustomerID, req.CustomerCompanyID, CurrentActor(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toInvitationResponse(inv))
}

// Send handles POST /api/invitations/:id/send.
func (h *InvitationHandler) Send(c *gin.Context) {
	h.answer(c, h.facade.SendInvitation)
}

// Accept handles POST /api/invitations/:id/accept.
func (h *InvitationHandler) Accept(c *gin.Context) {
	h.answer(c, h.facade.AcceptInvitation)
}

// Reject handles POST /api/invitations/:id/reject.
func (h *InvitationHandler) Reject(c *gin.Context) {
	h.answer(c, h.facade.RejectInvitation)
}

func (h *InvitationHandler) answer(c *gin.Context, fn func(context.Context, int64, model.Actor) (*model.QuoteInvitation, error)) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	inv, err := fn(c.Request.Context(), id, CurrentActor(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toInvitationResponse(inv))
}

func toInvitationResponse(inv *model.QuoteInvitation) dto.InvitationResponse {
	return dto.InvitationResponse{
		ID:                inv.ID,
		QuoteID:           inv.QuoteID,
		CustomerID:        inv.CustomerID,
		CustomerCompanyID: inv.CustomerCompanyID,
		CreatorID:         inv.CreatorID,
		Status:            string(inv.Status),
		CreatedAt:         inv.CreatedAt,
	}
}
