// README: Rider service: availability flips and the high-frequency location stream.
package rider

import (
	"context"
	"errors"
	"time"

	log "github.com/sirupsen/logrus"

	"khabar/internal/events"
	"khabar/internal/types"
)

var (
	ErrNotFound         = errors.New("rider not found")
	ErrBadRequest       = errors.New("bad request")
	ErrStatusNotAllowed = errors.New("status change not allowed")
)

type Service struct {
	store *Store
	bus   events.Publisher
}

func NewService(store *Store, bus events.Publisher) *Service {
	return &Service{store: store, bus: bus}
}

type LocationUpdate struct {
	RiderID  types.ID
	Position types.Point
}

// UpdateLocation records the rider's most recent position (last write wins)
// and, while the rider is on an active delivery, streams it to the order
// topic so the customer can follow along.
func (s *Service) UpdateLocation(ctx context.Context, u LocationUpdate) error {
	if u.RiderID == "" || !validPoint(u.Position) {
		return ErrBadRequest
	}
	if err := s.store.SetLocation(ctx, u.RiderID, u.Position, time.Now().UTC()); err != nil {
		return err
	}

	orderID, active, err := s.store.ActiveOrderID(ctx, u.RiderID)
	if err != nil {
		// The position is already recorded; losing one stream update is fine.
		log.WithError(err).WithField("rider_id", u.RiderID).Warn("lookup active order")
		return nil
	}
	if active {
		s.bus.Publish(ctx, events.OrderTopic(orderID), events.New(
			events.TypeRiderLocation, orderID, u.RiderID,
			map[string]any{"lat": u.Position.Lat, "lng": u.Position.Lng},
		))
	}
	return nil
}

// SetStatus flips availability. busy is unreachable by hand: it is entered
// only through a successful dispatch claim and left only when the order is
// delivered or reassigned away.
func (s *Service) SetStatus(ctx context.Context, id types.ID, status Status) error {
	switch status {
	case StatusAvailable, StatusOffline, StatusOnBreak:
	default:
		return ErrStatusNotAllowed
	}

	ok, err := s.store.SetStatus(ctx, id, status)
	if err != nil {
		return err
	}
	if !ok {
		// Either unknown, or busy with an active order.
		if _, err := s.store.Load(ctx, id); err != nil {
			return err
		}
		return ErrStatusNotAllowed
	}

	if status != StatusAvailable {
		if err := s.store.RemoveFromPool(ctx, id); err != nil {
			log.WithError(err).WithField("rider_id", id).Warn("remove rider from geo pool")
		}
	}

	s.bus.Publish(ctx, events.AdminTopic, events.New(
		events.TypeRiderStatusChanged, "", id,
		map[string]any{"status": status},
	))
	return nil
}

func (s *Service) Get(ctx context.Context, id types.ID) (*Rider, error) {
	return s.store.Load(ctx, id)
}

func validPoint(p types.Point) bool {
	return p.Lat >= -90 && p.Lat <= 90 && p.Lng >= -180 && p.Lng <= 180 &&
		!(p.Lat == 0 && p.Lng == 0)
}
