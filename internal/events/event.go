// README: Typed dispatch events and topic naming.
package events

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"khabar/internal/types"
)

type Type string

const (
	TypeOrderReady         Type = "order_ready"
	TypeOrderStatusChanged Type = "order_status_changed"
	TypeRiderAssigned      Type = "rider_assigned"
	TypeRiderLocation      Type = "rider_location_update"
	TypeRiderStatusChanged Type = "rider_status_changed"
)

// AdminTopic receives every order and rider fact for observability.
const AdminTopic = "admin"

// Event is an immutable fact. Build one with New and never mutate it after
// publication.
type Event struct {
	ID        string         `json:"id"`
	Type      Type           `json:"type"`
	OrderID   types.ID       `json:"orderId,omitempty"`
	RiderID   types.ID       `json:"riderId,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
	Payload   map[string]any `json:"payload,omitempty"`
}

func New(t Type, orderID, riderID types.ID, payload map[string]any) Event {
	return Event{
		ID:        uuid.NewString(),
		Type:      t,
		OrderID:   orderID,
		RiderID:   riderID,
		Timestamp: time.Now().UTC(),
		Payload:   payload,
	}
}

func OrderTopic(id types.ID) string      { return fmt.Sprintf("order:%s", id) }
func RestaurantTopic(id types.ID) string { return fmt.Sprintf("restaurant:%s", id) }
func RiderTopic(id types.ID) string      { return fmt.Sprintf("rider:%s", id) }
