package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/polkiloo/dealerflow/internal/domain/model"
	"github.com/polkiloo/dealerflow/internal/server/http/dto"
)

// OwnershipHandler manages ownership endpoints.
type OwnershipHandler struct {
	facade OwnershipFacade
}

// NewOwnershipHandler constructs OwnershipHandler.
func NewOwnershipHandler(facade OwnershipFacade) *OwnershipHandler {
	return &OwnershipHandler{facade: facade}
}

// Propose handles POST /api/ownerships.
func (h *OwnershipHandler) Propose(c *gin.Context) {
	var req dto.OwnershipRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Status(http.StatusBadRequest)
		return
	}
	kind, err := model.ParseResourceKind(req.OwnableType)
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
		return
	}

	own, err := h.facade.ProposeOwnership(c.Request.Context(), model.ResourceRef{Kind: kind, ID: req.OwnableID}, req.UserID, CurrentActor(c))
	if err != nil {
		writeError(c, err)
		return
	}
	status := http.StatusCreated
	if own.Status == model.OwnershipAccepted {
		status = http.StatusOK
	}
	c.JSON(status, toOwnershipResponse(own))
}

// Accept handles POST /api/ownerships/:id/accept.
func (h *OwnershipHandler) Accept(c *gin.Context) {
	h.answer(c, h.facade.AcceptOwnership)
}

// Reject handles POST /api/ownerships/:id/reject.
func (h *OwnershipHandler) Reject(c *gin.Context) {
	h.answer(c, h.facade.RejectOwnership)
}

func (h *OwnershipHandler) answer(c *gin.Context, fn func(context.Context, int64, model.Actor) (*model.Ownership, error)) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	own, err := fn(c.Request.Context(), id, CurrentActor(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toOwnershipResponse(own))
}

func toOwnershipResponse(o *model.Ownership) dto.OwnershipResponse {
	return dto.OwnershipResponse{
		ID:          o.ID,
		UserID:      o.UserID,
		OwnableType: string(o.Ownable.Kind),
		OwnableID:   o.Ownable.ID,
		CreatorID:   o.CreatorID,
		Status:      string(o.Status),
		CreatedAt:   o.CreatedAt,
	}
}
