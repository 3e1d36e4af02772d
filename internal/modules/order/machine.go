// README: Pure order state machine; callers persist the returned value.
package order

import (
	"errors"
	"time"
)

var (
	ErrIllegalTransition = errors.New("illegal status transition")
	ErrTerminalOrder     = errors.New("order is in a terminal state")
)

// allowedTransitions represents the order status flow as code. Cancellation
// is reachable from every state except delivered; actor permission for a
// cancel (customers may not cancel past picked_up) is the caller's problem,
// the machine only enforces structural legality.
var allowedTransitions = map[Status][]Status{
	StatusPending:   {StatusConfirmed, StatusCancelled},
	StatusConfirmed: {StatusPreparing, StatusCancelled},
	StatusPreparing: {StatusReady, StatusCancelled},
	StatusReady:     {StatusPickedUp, StatusCancelled},
	StatusPickedUp:  {StatusOnTheWay, StatusCancelled},
	StatusOnTheWay:  {StatusDelivered, StatusCancelled},
}

func CanTransition(from, to Status) bool {
	for _, s := range allowedTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// ApplyTransition returns a copy of the order with the new status, the
// relevant timestamp set, and a history entry appended. The input order is
// never mutated, so a caller can validate a transition and then commit it
// atomically without a lost update.
func ApplyTransition(o Order, next Status, actor Actor, note string) (Order, error) {
	if o.Status.Terminal() {
		return Order{}, ErrTerminalOrder
	}
	if !CanTransition(o.Status, next) {
		return Order{}, ErrIllegalTransition
	}

	now := time.Now().UTC()
	updated := o
	updated.Status = next
	updated.History = append(append([]HistoryEntry(nil), o.History...), HistoryEntry{
		Status:    next,
		Actor:     actor,
		Note:      note,
		Timestamp: now,
	})

	switch next {
	case StatusReady:
		updated.ReadyAt = &now
	case StatusPickedUp:
		updated.AssignedAt = &now
	case StatusDelivered:
		updated.DeliveredAt = &now
	case StatusCancelled:
		// rider_id is non-null exactly while the order is assigned; a
		// cancelled order releases its rider.
		updated.RiderID = nil
	}
	return updated, nil
}
