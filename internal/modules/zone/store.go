// README: Zone store backed by PostgreSQL.
package zone

import (
	"context"
	"encoding/json"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"
)

type Store struct {
	db *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

// ListActive returns active zones ordered by creation, which is the lookup
// priority the index relies on.
func (s *Store) ListActive(ctx context.Context) ([]Zone, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, name, polygon, base_fee, per_km_fee
		FROM zones
		WHERE active
		ORDER BY created_at, id`)
	if err != nil {
		return nil, errors.Wrap(err, "list active zones")
	}
	defer rows.Close()

	var zones []Zone
	for rows.Next() {
		var z Zone
		var polygon []byte
		if err := rows.Scan(&z.ID, &z.Name, &polygon, &z.Fees.BaseFee, &z.Fees.PerKm); err != nil {
			return nil, errors.Wrap(err, "scan zone")
		}
		if err := json.Unmarshal(polygon, &z.Polygon); err != nil {
			return nil, errors.Wrapf(err, "decode polygon for zone %s", z.ID)
		}
		z.Active = true
		zones = append(zones, z)
	}
	return zones, rows.Err()
}

// LoadIndex is a convenience for callers that want a ready-to-query index.
func (s *Store) LoadIndex(ctx context.Context) (*Index, error) {
	zones, err := s.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	return NewIndex(zones), nil
}
