// README: Dispatch attempt outcomes, errors, and collaborator contracts.
package dispatch

import (
	"context"
	"errors"

	"khabar/internal/modules/order"
	"khabar/internal/modules/rider"
	"khabar/internal/modules/zone"
	"khabar/internal/types"
)

var (
	// ErrInvalidDispatchState: the order is not ready (still being prepared,
	// cancelled, or otherwise outside the dispatch window).
	ErrInvalidDispatchState = errors.New("order is not in a dispatchable state")
	// ErrNoEligibleRider: no candidate survived availability and freshness
	// filtering. An expected, frequent condition — callers re-poll, customers
	// see "searching for a rider", never an error banner.
	ErrNoEligibleRider = errors.New("no eligible rider")
	// ErrDispatchExhausted: the bounded claim-retry budget is spent. The
	// order stays valid and re-dispatchable; surfaces for manual attention.
	ErrDispatchExhausted = errors.New("dispatch retries exhausted")
)

// Outcome distinguishes "this attempt assigned the rider" from "someone
// already had": exactly one racing invocation reports OutcomeAssigned.
type Outcome string

const (
	OutcomeAssigned        Outcome = "assigned"
	OutcomeAlreadyAssigned Outcome = "already_assigned"
)

type Result struct {
	Outcome  Outcome
	OrderID  types.ID
	RiderID  types.ID
	Status   order.Status
	Attempts int
}

// OrderStore is the authoritative persistence collaborator. Claim must be a
// single atomic conditional write (order still ready and unassigned, rider
// still available), not a read-then-write pair.
type OrderStore interface {
	Load(ctx context.Context, id types.ID) (*order.Order, error)
	Claim(ctx context.Context, orderID, riderID types.ID) (*order.Order, bool, error)
	ListReadyUnassigned(ctx context.Context, limit int) ([]types.ID, error)
}

// RiderPool lists candidate riders near a point. Results are advisory and
// may be stale; the claim resolves staleness.
type RiderPool interface {
	ListAvailableNear(ctx context.Context, p types.Point, radiusKm float64) ([]rider.Rider, error)
}

// ZoneSource maps a coordinate to its delivery zone.
type ZoneSource interface {
	ZoneFor(p types.Point) (zone.Zone, bool)
}
