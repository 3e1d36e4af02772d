// README: Delivery availability and fee/ETA quote endpoint.
package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"khabar/internal/geo"
	"khabar/internal/modules/zone"
	"khabar/internal/types"
)

// ZoneLookup maps a coordinate to its delivery zone.
type ZoneLookup interface {
	ZoneFor(p types.Point) (zone.Zone, bool)
}

type QuoteHandler struct {
	zones  ZoneLookup
	params geo.Params
}

func NewQuoteHandler(zones ZoneLookup, params geo.Params) *QuoteHandler {
	return &QuoteHandler{zones: zones, params: params}
}

// Quote answers "can we deliver here, for how much, and when". A point
// outside every zone is available=false, not an error.
func (h *QuoteHandler) Quote(c *gin.Context) {
	delivery, ok := pointParam(c, "lat", "lng")
	if !ok {
		return
	}
	restaurant, ok := pointParam(c, "restaurant_lat", "restaurant_lng")
	if !ok {
		return
	}

	z, found := h.zones.ZoneFor(delivery)
	if !found {
		writeJSON(c, http.StatusOK, gin.H{"available": false})
		return
	}

	distance := geo.DistanceKm(restaurant, delivery)
	fee := h.params.DeliveryFee(distance, z.Fees)
	eta := h.params.EstimateDelivery(distance)

	writeJSON(c, http.StatusOK, gin.H{
		"available":   true,
		"zone":        z.Name,
		"distance_km": distance,
		"fee":         fee,
		"eta_minutes": gin.H{"min": eta.MinMinutes, "max": eta.MaxMinutes},
	})
}

func pointParam(c *gin.Context, latKey, lngKey string) (types.Point, bool) {
	lat, err1 := strconv.ParseFloat(c.Query(latKey), 64)
	lng, err2 := strconv.ParseFloat(c.Query(lngKey), 64)
	if err1 != nil || err2 != nil {
		writeError(c, http.StatusBadRequest, "missing or malformed coordinates")
		return types.Point{}, false
	}
	return types.Point{Lat: lat, Lng: lng}, true
}
