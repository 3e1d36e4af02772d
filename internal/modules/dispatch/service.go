// README: DispatchCoordinator: search, score, atomically claim, fan out events.
package dispatch

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"

	"khabar/internal/config"
	"khabar/internal/events"
	"khabar/internal/geo"
	"khabar/internal/modules/order"
	"khabar/internal/modules/rider"
	"khabar/internal/types"
)

// sweepBatchSize bounds how many ready orders one sweep tick picks up.
const sweepBatchSize = 50

type Coordinator struct {
	orders  OrderStore
	riders  RiderPool
	zones   ZoneSource
	bus     events.Publisher
	matcher Matcher
	cfg     config.DispatchConfig
	now     func() time.Time
}

func NewCoordinator(orders OrderStore, riders RiderPool, zones ZoneSource, bus events.Publisher, cfg config.DispatchConfig) *Coordinator {
	return &Coordinator{
		orders:  orders,
		riders:  riders,
		zones:   zones,
		bus:     bus,
		matcher: Matcher{DistanceWeight: cfg.DistanceWeight, RatingWeight: cfg.RatingWeight},
		cfg:     cfg,
		now:     time.Now,
	}
}

// DispatchReadyOrder runs one search→score→claim attempt for the order.
// Re-dispatching an order that already has its rider is a no-op success, so
// duplicate triggers from upstream retries are harmless. Coordinators for
// different orders share no mutable process state; the store's conditional
// claim is the only synchronization point, which keeps this correct across
// multiple server instances.
func (c *Coordinator) DispatchReadyOrder(ctx context.Context, orderID types.ID) (*Result, error) {
	o, err := c.orders.Load(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o.Status.Assigned() && o.RiderID != nil {
		return &Result{
			Outcome: OutcomeAlreadyAssigned,
			OrderID: o.ID,
			RiderID: *o.RiderID,
			Status:  o.Status,
		}, nil
	}
	if o.Status != order.StatusReady {
		return nil, ErrInvalidDispatchState
	}

	zoneName := ""
	if z, ok := c.zones.ZoneFor(o.DeliveryLocation); ok {
		zoneName = z.Name
	}

	excluded := exclusions{}
	for attempt := 1; attempt <= c.cfg.MaxClaimRetries; attempt++ {
		candidates, err := c.fetchCandidates(ctx, o, zoneName, excluded)
		if err != nil {
			return nil, err
		}
		if len(candidates) == 0 {
			if attempt == 1 {
				return nil, ErrNoEligibleRider
			}
			// Conflicts shrank the pool to nothing within this attempt's
			// budget; escalate rather than block.
			return nil, ErrDispatchExhausted
		}

		best, err := c.matcher.Select(candidates)
		if err != nil {
			return nil, err
		}

		updated, claimed, err := c.orders.Claim(ctx, o.ID, best.Rider.ID)
		if err != nil {
			return nil, err
		}
		if !claimed {
			// Lost the race: either the rider went away or the order moved.
			// The cancelled case must abort, not keep claiming.
			log.WithFields(log.Fields{
				"order_id": o.ID,
				"rider_id": best.Rider.ID,
				"attempt":  attempt,
			}).Info("claim conflict, retrying with shrunk pool")

			o, err = c.orders.Load(ctx, o.ID)
			if err != nil {
				return nil, err
			}
			if o.Status.Assigned() && o.RiderID != nil {
				return &Result{
					Outcome: OutcomeAlreadyAssigned,
					OrderID: o.ID,
					RiderID: *o.RiderID,
					Status:  o.Status,
				}, nil
			}
			if o.Status != order.StatusReady {
				return nil, ErrInvalidDispatchState
			}
			excluded.add(best.Rider.ID)
			continue
		}

		c.publishAssignment(ctx, updated, best)
		log.WithFields(log.Fields{
			"order_id": updated.ID,
			"rider_id": best.Rider.ID,
			"attempt":  attempt,
			"zone":     zoneName,
		}).Info("rider assigned")
		return &Result{
			Outcome:  OutcomeAssigned,
			OrderID:  updated.ID,
			RiderID:  best.Rider.ID,
			Status:   updated.Status,
			Attempts: attempt,
		}, nil
	}
	return nil, ErrDispatchExhausted
}

// fetchCandidates queries the pool around the restaurant, widening the
// radius once when the first pass comes back empty. Riders with stale
// locations are excluded, not scored; a rider pinned to a different zone is
// skipped when the order resolves to a zone.
func (c *Coordinator) fetchCandidates(ctx context.Context, o *order.Order, zoneName string, excluded exclusions) ([]Candidate, error) {
	for _, radius := range []float64{c.cfg.SearchRadiusKm, c.cfg.WideRadiusKm} {
		riders, err := c.riders.ListAvailableNear(ctx, o.RestaurantLocation, radius)
		if err != nil {
			return nil, err
		}
		candidates := c.filter(riders, o, zoneName, excluded)
		if len(candidates) > 0 {
			return candidates, nil
		}
	}
	return nil, nil
}

func (c *Coordinator) filter(riders []rider.Rider, o *order.Order, zoneName string, excluded exclusions) []Candidate {
	now := c.now()
	out := make([]Candidate, 0, len(riders))
	for _, r := range riders {
		if excluded.has(r.ID) {
			continue
		}
		if r.Status != rider.StatusAvailable {
			continue
		}
		if !r.LocationFresh(c.cfg.FreshnessThreshold, now) {
			continue
		}
		if zoneName != "" && r.Zone != "" && r.Zone != zoneName {
			continue
		}
		out = append(out, Candidate{
			Rider:      r,
			DistanceKm: geo.DistanceKm(r.Location, o.RestaurantLocation),
		})
	}
	return out
}

// publishAssignment fans the claim out to every interested party. Publish is
// fire-and-forget; a notification failure never unwinds a claim.
func (c *Coordinator) publishAssignment(ctx context.Context, o *order.Order, best Candidate) {
	assigned := events.New(events.TypeRiderAssigned, o.ID, best.Rider.ID, map[string]any{
		"riderName":   best.Rider.Name,
		"riderRating": best.Rider.Rating,
		"orderNumber": o.OrderNumber,
	})
	c.bus.Publish(ctx, events.OrderTopic(o.ID), assigned)
	c.bus.Publish(ctx, events.RiderTopic(best.Rider.ID), assigned)
	c.bus.Publish(ctx, events.AdminTopic, assigned)

	changed := events.New(events.TypeOrderStatusChanged, o.ID, best.Rider.ID, map[string]any{
		"status":      o.Status,
		"orderNumber": o.OrderNumber,
	})
	c.bus.Publish(ctx, events.OrderTopic(o.ID), changed)
	c.bus.Publish(ctx, events.RestaurantTopic(o.RestaurantID), changed)
	c.bus.Publish(ctx, events.AdminTopic, changed)
}

// RunSweep periodically re-dispatches ready orders that are still waiting
// for a rider. No-rider-yet is an expected condition, logged at debug only;
// an exhausted order is called out for manual attention.
func (c *Coordinator) RunSweep(ctx context.Context, tick time.Duration) {
	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			ids, err := c.orders.ListReadyUnassigned(ctx, sweepBatchSize)
			if err != nil {
				log.WithError(err).Warn("dispatch sweep: list ready orders")
				continue
			}
			for _, id := range ids {
				switch _, err := c.DispatchReadyOrder(ctx, id); err {
				case nil, ErrInvalidDispatchState:
				case ErrNoEligibleRider:
					log.WithField("order_id", id).Debug("dispatch sweep: still searching for a rider")
				case ErrDispatchExhausted:
					log.WithField("order_id", id).Warn("dispatch sweep: retries exhausted, needs attention")
				default:
					log.WithError(err).WithField("order_id", id).Error("dispatch sweep")
				}
			}
		}
	}
}
