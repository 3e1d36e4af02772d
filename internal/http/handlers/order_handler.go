// README: Order handlers for status reads, transitions, and cancellation.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"khabar/internal/http/middleware"
	"khabar/internal/modules/order"
	"khabar/internal/types"
)

type OrderHandler struct {
	order *order.Service
}

func NewOrderHandler(svc *order.Service) *OrderHandler {
	return &OrderHandler{order: svc}
}

func (h *OrderHandler) Get(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		writeError(c, http.StatusBadRequest, "missing order id")
		return
	}
	o, err := h.order.Get(c.Request.Context(), types.ID(id))
	if err != nil {
		writeOrderError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{
		"order_id":     o.ID,
		"order_number": o.OrderNumber,
		"status":       o.Status,
		"rider_id":     o.RiderID,
		"delivery_fee": o.DeliveryFee,
		"total":        o.Total,
		"history":      o.History,
	})
}

type updateStatusReq struct {
	Status string `json:"status"`
	Note   string `json:"note"`
}

// UpdateStatus applies a restaurant- or rider-driven transition
// (confirmed/preparing/ready/on_the_way/delivered). Rider assignment is not
// reachable here; that goes through dispatch.
func (h *OrderHandler) UpdateStatus(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		writeError(c, http.StatusBadRequest, "missing order id")
		return
	}
	var req updateStatusReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}

	actor, ok := actorForRole(middleware.CallerRole(c))
	if !ok {
		writeError(c, http.StatusForbidden, "forbidden")
		return
	}

	o, err := h.order.Transition(c.Request.Context(), order.TransitionCommand{
		OrderID: types.ID(id),
		Next:    order.Status(req.Status),
		Actor:   actor,
		Note:    req.Note,
	})
	if err != nil {
		writeOrderError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"order_id": o.ID, "status": o.Status})
}

type cancelReq struct {
	Reason string `json:"reason"`
}

func (h *OrderHandler) Cancel(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		writeError(c, http.StatusBadRequest, "missing order id")
		return
	}
	var req cancelReq
	_ = c.ShouldBindJSON(&req)

	actor, ok := actorForRole(middleware.CallerRole(c))
	if !ok {
		writeError(c, http.StatusForbidden, "forbidden")
		return
	}

	o, err := h.order.Cancel(c.Request.Context(), types.ID(id), actor, req.Reason)
	if err != nil {
		writeOrderError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"order_id": o.ID, "status": o.Status})
}

func actorForRole(role string) (order.Actor, bool) {
	switch role {
	case "customer":
		return order.ActorCustomer, true
	case "restaurant":
		return order.ActorRestaurant, true
	case "rider":
		return order.ActorRider, true
	case "admin":
		return order.ActorAdmin, true
	default:
		return "", false
	}
}
