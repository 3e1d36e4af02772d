// README: Order aggregate, status graph, and history log.
package order

import (
	"time"

	"khabar/internal/types"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusPreparing Status = "preparing"
	StatusReady     Status = "ready"
	StatusPickedUp  Status = "picked_up"
	StatusOnTheWay  Status = "on_the_way"
	StatusDelivered Status = "delivered"
	StatusCancelled Status = "cancelled"
)

type Actor string

const (
	ActorCustomer   Actor = "customer"
	ActorRestaurant Actor = "restaurant"
	ActorRider      Actor = "rider"
	ActorSystem     Actor = "system"
	ActorAdmin      Actor = "admin"
)

// HistoryEntry is one append-only line of the status log. Entries are never
// removed or reordered.
type HistoryEntry struct {
	Status    Status    `json:"status"`
	Actor     Actor     `json:"actor"`
	Note      string    `json:"note,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// FeeBreakdown explains how the delivery fee was computed, in paisa.
type FeeBreakdown struct {
	Base     int64 `json:"base"`
	Distance int64 `json:"distance"`
}

type Order struct {
	ID                 types.ID
	OrderNumber        string
	CustomerID         types.ID
	RestaurantID       types.ID
	RiderID            *types.ID
	Status             Status
	StatusVersion      int
	RestaurantLocation types.Point
	DeliveryLocation   types.Point
	Subtotal           types.Money
	DeliveryFee        types.Money
	FeeBreakdown       FeeBreakdown
	Total              types.Money
	CreatedAt          time.Time
	ReadyAt            *time.Time
	AssignedAt         *time.Time
	DeliveredAt        *time.Time
	History            []HistoryEntry
}

// Terminal reports whether no further mutation of the order is permitted.
func (s Status) Terminal() bool {
	return s == StatusDelivered || s == StatusCancelled
}

// Assigned reports whether the status implies a non-null rider.
// The store enforces the converse: rider_id is set exactly when the order
// is in one of these states.
func (s Status) Assigned() bool {
	return s == StatusPickedUp || s == StatusOnTheWay || s == StatusDelivered
}
