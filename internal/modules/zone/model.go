// README: Delivery zone definitions; read-only to the dispatch core.
package zone

import (
	"khabar/internal/geo"
	"khabar/internal/types"
)

// Zone is an administratively defined polygon with its own fee schedule.
// Zones are created and edited elsewhere; this service only reads them.
type Zone struct {
	ID      types.ID
	Name    string
	Polygon []types.Point
	Fees    geo.FeeSchedule
	Active  bool
}
