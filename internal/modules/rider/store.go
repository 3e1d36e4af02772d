// README: Rider store: Postgres rows plus a Redis GEO pool with last-write-wins positions.
package rider

import (
	"context"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"

	"khabar/internal/types"
)

const (
	geoKey      = "riders:geo"
	lastSeenKey = "riders:last_seen"
)

type Store struct {
	db    *pgxpool.Pool
	redis *redis.Client
}

func NewStore(db *pgxpool.Pool, rdb *redis.Client) *Store {
	return &Store{db: db, redis: rdb}
}

func (s *Store) Load(ctx context.Context, id types.ID) (*Rider, error) {
	row := s.db.QueryRow(ctx, `
		SELECT id, name, status, rating, total_deliveries, zone
		FROM riders WHERE id = $1`, string(id))
	var r Rider
	err := row.Scan(&r.ID, &r.Name, &r.Status, &r.Rating, &r.TotalDeliveries, &r.Zone)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "scan rider")
	}
	return &r, nil
}

// SetStatus updates availability with a guard: a busy rider holds an active
// order, and only the delivered flow (or a reassignment) may release them,
// so manual flips away from busy are rejected at the row level.
func (s *Store) SetStatus(ctx context.Context, id types.ID, status Status) (bool, error) {
	tag, err := s.db.Exec(ctx, `
		UPDATE riders SET status = $1
		WHERE id = $2 AND status <> 'busy'`,
		string(status), string(id),
	)
	if err != nil {
		return false, errors.Wrap(err, "update rider status")
	}
	return tag.RowsAffected() == 1, nil
}

// SetLocation records the most recent position. Last write wins; ordering
// across riders is not coordinated.
func (s *Store) SetLocation(ctx context.Context, id types.ID, p types.Point, at time.Time) error {
	pipe := s.redis.Pipeline()
	pipe.GeoAdd(ctx, geoKey, &redis.GeoLocation{
		Name:      string(id),
		Longitude: p.Lng,
		Latitude:  p.Lat,
	})
	pipe.HSet(ctx, lastSeenKey, string(id), at.UnixMilli())
	_, err := pipe.Exec(ctx)
	return errors.Wrap(err, "record rider location")
}

// RemoveFromPool drops the rider from the geo pool (offline / on break).
func (s *Store) RemoveFromPool(ctx context.Context, id types.ID) error {
	pipe := s.redis.Pipeline()
	pipe.ZRem(ctx, geoKey, string(id))
	pipe.HDel(ctx, lastSeenKey, string(id))
	_, err := pipe.Exec(ctx)
	return errors.Wrap(err, "remove rider from pool")
}

// ListAvailableNear returns riders currently available within radiusKm of p,
// nearest first, with their last known position and last-seen timestamp.
// The result is advisory: staleness is resolved only at the claim.
func (s *Store) ListAvailableNear(ctx context.Context, p types.Point, radiusKm float64) ([]Rider, error) {
	locs, err := s.redis.GeoSearchLocation(ctx, geoKey, &redis.GeoSearchLocationQuery{
		GeoSearchQuery: redis.GeoSearchQuery{
			Longitude:  p.Lng,
			Latitude:   p.Lat,
			Radius:     radiusKm,
			RadiusUnit: "km",
			Sort:       "ASC",
		},
		WithCoord: true,
	}).Result()
	if err != nil {
		return nil, errors.Wrap(err, "geo search riders")
	}
	if len(locs) == 0 {
		return nil, nil
	}

	ids := make([]string, len(locs))
	positions := make(map[string]types.Point, len(locs))
	for i, loc := range locs {
		ids[i] = loc.Name
		positions[loc.Name] = types.Point{Lat: loc.Latitude, Lng: loc.Longitude}
	}

	lastSeen, err := s.redis.HMGet(ctx, lastSeenKey, ids...).Result()
	if err != nil {
		return nil, errors.Wrap(err, "load last seen")
	}
	seenAt := make(map[string]time.Time, len(ids))
	for i, v := range lastSeen {
		str, ok := v.(string)
		if !ok {
			continue
		}
		ms, err := strconv.ParseInt(str, 10, 64)
		if err != nil {
			continue
		}
		seenAt[ids[i]] = time.UnixMilli(ms)
	}

	rows, err := s.db.Query(ctx, `
		SELECT id, name, status, rating, total_deliveries, zone
		FROM riders
		WHERE id = ANY($1) AND status = 'available'`, ids)
	if err != nil {
		return nil, errors.Wrap(err, "load available riders")
	}
	defer rows.Close()

	byID := make(map[string]Rider)
	for rows.Next() {
		var r Rider
		if err := rows.Scan(&r.ID, &r.Name, &r.Status, &r.Rating, &r.TotalDeliveries, &r.Zone); err != nil {
			return nil, errors.Wrap(err, "scan rider")
		}
		byID[string(r.ID)] = r
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Preserve the nearest-first order from the geo search.
	out := make([]Rider, 0, len(byID))
	for _, id := range ids {
		r, ok := byID[id]
		if !ok {
			continue
		}
		r.Location = positions[id]
		r.LastSeen = seenAt[id]
		out = append(out, r)
	}
	return out, nil
}

// ActiveOrderID returns the non-terminal order currently assigned to the
// rider, if any.
func (s *Store) ActiveOrderID(ctx context.Context, riderID types.ID) (types.ID, bool, error) {
	row := s.db.QueryRow(ctx, `
		SELECT id FROM orders
		WHERE rider_id = $1 AND status IN ('picked_up', 'on_the_way')
		ORDER BY assigned_at DESC
		LIMIT 1`, string(riderID))
	var id string
	err := row.Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, errors.Wrap(err, "scan active order")
	}
	return types.ID(id), true, nil
}
