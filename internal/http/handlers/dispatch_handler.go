// README: Dispatch trigger endpoint.
package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"khabar/internal/http/middleware"
	"khabar/internal/modules/dispatch"
	"khabar/internal/types"
)

// Dispatcher is what the handler needs from the coordinator.
type Dispatcher interface {
	DispatchReadyOrder(ctx context.Context, orderID types.ID) (*dispatch.Result, error)
}

type DispatchHandler struct {
	dispatcher Dispatcher
}

func NewDispatchHandler(d Dispatcher) *DispatchHandler {
	return &DispatchHandler{dispatcher: d}
}

// Dispatch runs one dispatch attempt for a ready order. Restaurant and admin
// callers only; riders accept through their own endpoint.
func (h *DispatchHandler) Dispatch(c *gin.Context) {
	switch middleware.CallerRole(c) {
	case "restaurant", "admin":
	default:
		writeError(c, http.StatusForbidden, "forbidden: restaurant or admin role required")
		return
	}
	id := c.Param("orderId")
	if id == "" {
		writeError(c, http.StatusBadRequest, "missing order id")
		return
	}

	res, err := h.dispatcher.DispatchReadyOrder(c.Request.Context(), types.ID(id))
	if err != nil {
		writeDispatchError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{
		"outcome":  res.Outcome,
		"order_id": res.OrderID,
		"rider_id": res.RiderID,
		"status":   res.Status,
	})
}
