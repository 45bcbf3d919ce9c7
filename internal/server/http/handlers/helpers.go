package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	domainErrors "github.com/polkiloo/dealerflow/internal/domain/errors"
	"github.com/polkiloo/dealerflow/internal/domain/model"
	"github.com/polkiloo/dealerflow/internal/server/http/dto"
	"github.com/polkiloo/dealerflow/internal/server/http/middleware"
)

// CurrentActor extracts the authenticated actor from context.
func CurrentActor(c *gin.Context) model.Actor {
	val, ok := c.Get(middleware.ActorContextKey)
	if !ok {
		return model.Actor{}
	}
	actor, _ := val.(model.Actor)
	return actor
}

// pathID parses a positive identifier path parameter, answering 400 otherwise.
func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		c.Status(http.StatusBadRequest)
		return 0, false
	}
	return id, true
}

// writeError maps domain errors to HTTP statuses.
func writeError(c *gin.Context, err error) {
	if reason, ok := domainErrors.Reason(err); ok {
		c.JSON(http.StatusUnprocessableEntity, dto.ErrorResponse{Error: reason})
		return
	}
	switch {
	case errors.Is(err, domainErrors.ErrPermissionDenied):
		c.Status(http.StatusForbidden)
	case errors.Is(err, domainErrors.ErrNotFound):
		c.Status(http.StatusNotFound)
	case errors.Is(err, domainErrors.ErrQuoteAlreadyAccepted),
		errors.Is(err, domainErrors.ErrAlreadyCancelled),
		errors.Is(err, domainErrors.ErrAlreadyExists),
		errors.Is(err, domainErrors.ErrConcurrentTransition):
		c.JSON(http.StatusConflict, dto.ErrorResponse{Error: err.Error()})
	case errors.Is(err, domainErrors.ErrInvalidAmount):
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
	case errors.Is(err, domainErrors.ErrDivideByZero),
		errors.Is(err, domainErrors.ErrPreconditionFailed):
		c.JSON(http.StatusUnprocessableEntity, dto.ErrorResponse{Error: err.Error()})
	default:
		_ = c.Error(err)
		c.Status(http.StatusInternalServerError)
	}
}
