// README: Rider state and availability definitions.
package rider

import (
	"time"

	"khabar/internal/types"
)

type Status string

const (
	StatusOffline   Status = "offline"
	StatusAvailable Status = "available"
	StatusBusy      Status = "busy"
	StatusOnBreak   Status = "on_break"
)

// Rider is a transient, non-authoritative copy used while computing a
// dispatch decision. The store re-validates at claim time.
type Rider struct {
	ID              types.ID
	Name            string
	Status          Status
	Rating          float64
	TotalDeliveries int
	Zone            string // optional assignment hint, e.g. "Gulshan"
	Location        types.Point
	LastSeen        time.Time
}

// LocationFresh reports whether the last location report is recent enough
// for the rider to be considered by matching.
func (r Rider) LocationFresh(threshold time.Duration, now time.Time) bool {
	return !r.LastSeen.IsZero() && now.Sub(r.LastSeen) <= threshold
}
