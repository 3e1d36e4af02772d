// README: Rider handlers for the location stream and availability flips.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"khabar/internal/http/middleware"
	"khabar/internal/modules/rider"
	"khabar/internal/types"
)

type RiderHandler struct {
	rider *rider.Service
}

func NewRiderHandler(svc *rider.Service) *RiderHandler {
	return &RiderHandler{rider: svc}
}

type locationReq struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// UpdateLocation feeds the high-frequency location stream. Only the
// authenticated rider may report their own position.
func (h *RiderHandler) UpdateLocation(c *gin.Context) {
	id, ok := h.ownRiderID(c)
	if !ok {
		return
	}
	var req locationReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	err := h.rider.UpdateLocation(c.Request.Context(), rider.LocationUpdate{
		RiderID:  id,
		Position: types.Point{Lat: req.Lat, Lng: req.Lng},
	})
	if err != nil {
		writeRiderError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"status": "ok"})
}

type statusReq struct {
	Status string `json:"status"`
}

func (h *RiderHandler) SetStatus(c *gin.Context) {
	id, ok := h.ownRiderID(c)
	if !ok {
		return
	}
	var req statusReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	if err := h.rider.SetStatus(c.Request.Context(), id, rider.Status(req.Status)); err != nil {
		writeRiderError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"status": req.Status})
}

func (h *RiderHandler) ownRiderID(c *gin.Context) (types.ID, bool) {
	id := c.Param("id")
	if id == "" {
		writeError(c, http.StatusBadRequest, "missing rider id")
		return "", false
	}
	if middleware.CallerRole(c) != "rider" {
		writeError(c, http.StatusForbidden, "forbidden: rider role required")
		return "", false
	}
	if middleware.CallerUID(c) != id {
		writeError(c, http.StatusForbidden, "forbidden: id does not match authenticated user")
		return "", false
	}
	return types.ID(id), true
}
