// README: Order service applies state transitions, persists them, and fans out events.
package order

import (
	"context"
	"errors"

	log "github.com/sirupsen/logrus"

	"khabar/internal/events"
	"khabar/internal/types"
)

var (
	ErrNotFound         = errors.New("order not found")
	ErrConflict         = errors.New("order state conflict")
	ErrBadRequest       = errors.New("bad request")
	ErrCancelNotAllowed = errors.New("actor may not cancel this order")
)

type Service struct {
	store *Store
	bus   events.Publisher
}

func NewService(store *Store, bus events.Publisher) *Service {
	return &Service{store: store, bus: bus}
}

type TransitionCommand struct {
	OrderID types.ID
	Next    Status
	Actor   Actor
	Note    string
}

func (s *Service) Get(ctx context.Context, id types.ID) (*Order, error) {
	return s.store.Load(ctx, id)
}

// Transition validates and persists a status change requested by an actor.
// picked_up is unreachable here: rider assignment happens only through the
// dispatch claim.
func (s *Service) Transition(ctx context.Context, cmd TransitionCommand) (*Order, error) {
	if cmd.OrderID == "" || cmd.Next == "" {
		return nil, ErrBadRequest
	}
	if cmd.Next == StatusPickedUp {
		return nil, ErrBadRequest
	}
	if cmd.Next == StatusCancelled {
		return s.cancel(ctx, cmd)
	}

	o, err := s.store.Load(ctx, cmd.OrderID)
	if err != nil {
		return nil, err
	}
	updated, err := ApplyTransition(*o, cmd.Next, cmd.Actor, cmd.Note)
	if err != nil {
		return nil, err
	}
	return s.commit(ctx, o, updated)
}

// Cancel applies the cancellation policy: once the order is on the way,
// cancellation is an administrative action only.
func (s *Service) Cancel(ctx context.Context, id types.ID, actor Actor, reason string) (*Order, error) {
	return s.cancel(ctx, TransitionCommand{OrderID: id, Next: StatusCancelled, Actor: actor, Note: reason})
}

func (s *Service) cancel(ctx context.Context, cmd TransitionCommand) (*Order, error) {
	o, err := s.store.Load(ctx, cmd.OrderID)
	if err != nil {
		return nil, err
	}
	if (o.Status == StatusOnTheWay || o.Status == StatusDelivered) && cmd.Actor != ActorAdmin {
		return nil, ErrCancelNotAllowed
	}
	updated, err := ApplyTransition(*o, StatusCancelled, cmd.Actor, cmd.Note)
	if err != nil {
		return nil, err
	}
	return s.commit(ctx, o, updated)
}

func (s *Service) commit(ctx context.Context, prev *Order, updated Order) (*Order, error) {
	var released *types.ID
	if prev.RiderID != nil && (updated.Status == StatusDelivered || updated.Status == StatusCancelled) {
		released = prev.RiderID
	}
	ok, err := s.store.SaveTransition(ctx, &updated, released)
	if err != nil {
		return nil, err
	}
	if !ok {
		// Another writer advanced the order between our load and save.
		return nil, ErrConflict
	}
	updated.StatusVersion = prev.StatusVersion + 1

	s.publishStatusChange(ctx, &updated)
	return &updated, nil
}

func (s *Service) publishStatusChange(ctx context.Context, o *Order) {
	payload := map[string]any{"status": o.Status, "orderNumber": o.OrderNumber}
	e := events.New(events.TypeOrderStatusChanged, o.ID, riderOrEmpty(o), payload)
	s.bus.Publish(ctx, events.OrderTopic(o.ID), e)
	s.bus.Publish(ctx, events.RestaurantTopic(o.RestaurantID), e)
	s.bus.Publish(ctx, events.AdminTopic, e)

	if o.Status == StatusReady {
		ready := events.New(events.TypeOrderReady, o.ID, "", payload)
		s.bus.Publish(ctx, events.OrderTopic(o.ID), ready)
		s.bus.Publish(ctx, events.AdminTopic, ready)
		log.WithField("order_id", o.ID).Info("order ready for dispatch")
	}
}

func riderOrEmpty(o *Order) types.ID {
	if o.RiderID == nil {
		return ""
	}
	return *o.RiderID
}
