// README: Base handler utilities (JSON helpers, error mapping).
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"khabar/internal/modules/dispatch"
	"khabar/internal/modules/order"
	"khabar/internal/modules/rider"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(c *gin.Context, status int, v any) {
	c.JSON(status, v)
}

func writeError(c *gin.Context, status int, msg string) {
	writeJSON(c, status, errorResponse{Error: msg})
}

func writeOrderError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, order.ErrBadRequest):
		writeError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, order.ErrNotFound):
		writeError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, order.ErrIllegalTransition),
		errors.Is(err, order.ErrTerminalOrder),
		errors.Is(err, order.ErrConflict):
		writeError(c, http.StatusConflict, err.Error())
	case errors.Is(err, order.ErrCancelNotAllowed):
		writeError(c, http.StatusForbidden, err.Error())
	default:
		writeError(c, http.StatusInternalServerError, "internal error")
	}
}

func writeRiderError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, rider.ErrBadRequest):
		writeError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, rider.ErrNotFound):
		writeError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, rider.ErrStatusNotAllowed):
		writeError(c, http.StatusConflict, err.Error())
	default:
		writeError(c, http.StatusInternalServerError, "internal error")
	}
}

// writeDispatchError maps dispatch outcomes to the client contract:
// no-rider-yet is a plain searching status, never an error banner, and an
// exhausted order is flagged for support while staying re-dispatchable.
func writeDispatchError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, dispatch.ErrNoEligibleRider):
		writeJSON(c, http.StatusOK, gin.H{"status": "searching_for_rider"})
	case errors.Is(err, dispatch.ErrDispatchExhausted):
		writeJSON(c, http.StatusServiceUnavailable, gin.H{
			"error":          "dispatch_exhausted",
			"redispatchable": true,
		})
	case errors.Is(err, dispatch.ErrInvalidDispatchState):
		writeError(c, http.StatusConflict, err.Error())
	case errors.Is(err, order.ErrNotFound):
		writeError(c, http.StatusNotFound, err.Error())
	default:
		writeError(c, http.StatusInternalServerError, "internal error")
	}
}
