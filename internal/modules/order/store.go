// README: Order store backed by PostgreSQL; the claim is the single atomic linearization point.
package order

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"

	"khabar/internal/types"
)

type Store struct {
	db *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

const orderColumns = `
	id, order_number, customer_id, restaurant_id, rider_id, status, status_version,
	restaurant_lat, restaurant_lng, delivery_lat, delivery_lng,
	subtotal, delivery_fee, fee_base, fee_distance, total, currency,
	created_at, ready_at, assigned_at, delivered_at`

func (s *Store) Load(ctx context.Context, id types.ID) (*Order, error) {
	row := s.db.QueryRow(ctx, `SELECT`+orderColumns+` FROM orders WHERE id = $1`, string(id))
	o, err := scanOrder(row)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.Query(ctx, `
		SELECT status, actor, note, created_at
		FROM order_status_history
		WHERE order_id = $1
		ORDER BY id`, string(id))
	if err != nil {
		return nil, errors.Wrap(err, "load status history")
	}
	defer rows.Close()
	for rows.Next() {
		var e HistoryEntry
		var note *string
		if err := rows.Scan(&e.Status, &e.Actor, &note, &e.Timestamp); err != nil {
			return nil, errors.Wrap(err, "scan history entry")
		}
		if note != nil {
			e.Note = *note
		}
		o.History = append(o.History, e)
	}
	return o, rows.Err()
}

// SaveTransition persists an order value produced by ApplyTransition. The
// update is guarded by the status_version the caller loaded, so a concurrent
// writer makes this return false instead of silently losing an update.
// releasedRider is the rider freed by this transition, if any: delivered
// returns them to the pool with a delivery credited, a cancel of an assigned
// order releases them without one. Both happen inside the same transaction.
func (s *Store) SaveTransition(ctx context.Context, o *Order, releasedRider *types.ID) (bool, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return false, errors.Wrap(err, "begin transition tx")
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `
		UPDATE orders
		SET status = $1,
		    status_version = status_version + 1,
		    rider_id = CASE WHEN $1 = 'cancelled' THEN NULL ELSE rider_id END,
		    ready_at = COALESCE($2, ready_at),
		    assigned_at = COALESCE($3, assigned_at),
		    delivered_at = COALESCE($4, delivered_at)
		WHERE id = $5 AND status_version = $6`,
		string(o.Status), o.ReadyAt, o.AssignedAt, o.DeliveredAt,
		string(o.ID), o.StatusVersion,
	)
	if err != nil {
		return false, errors.Wrap(err, "update order status")
	}
	if tag.RowsAffected() != 1 {
		return false, nil
	}

	if err := appendHistory(ctx, tx, o); err != nil {
		return false, err
	}

	if releasedRider != nil {
		credit := ""
		if o.Status == StatusDelivered {
			credit = ", total_deliveries = total_deliveries + 1"
		}
		_, err := tx.Exec(ctx, `
			UPDATE riders SET status = 'available'`+credit+`
			WHERE id = $1 AND status = 'busy'`,
			string(*releasedRider),
		)
		if err != nil {
			return false, errors.Wrap(err, "release rider")
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return false, errors.Wrap(err, "commit transition tx")
	}
	return true, nil
}

// Claim atomically assigns the rider to the order: the order must still be
// ready and unassigned, and the rider must still be available. Everything
// happens in one transaction with row-guarded updates, never as a
// read-then-write pair, so two racing dispatch attempts cannot both win —
// and a cancel racing the claim is caught by the status guard. Returns the
// updated order on success and ok=false when any guard failed.
func (s *Store) Claim(ctx context.Context, orderID, riderID types.ID) (*Order, bool, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, false, errors.Wrap(err, "begin claim tx")
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `
		UPDATE riders SET status = 'busy'
		WHERE id = $1 AND status = 'available'`,
		string(riderID),
	)
	if err != nil {
		return nil, false, errors.Wrap(err, "flip rider busy")
	}
	if tag.RowsAffected() != 1 {
		return nil, false, nil
	}

	now := time.Now().UTC()
	row := tx.QueryRow(ctx, `
		UPDATE orders
		SET rider_id = $1,
		    status = 'picked_up',
		    status_version = status_version + 1,
		    assigned_at = $2
		WHERE id = $3 AND status = 'ready' AND rider_id IS NULL
		RETURNING`+orderColumns,
		string(riderID), now, string(orderID),
	)
	o, err := scanOrder(row)
	if errors.Is(err, ErrNotFound) {
		// The guard matched no row: the order was claimed or cancelled
		// between candidate selection and this update. A conflict, not an
		// error.
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	o.History = append(o.History, HistoryEntry{
		Status:    StatusPickedUp,
		Actor:     ActorSystem,
		Note:      "rider assigned by dispatch",
		Timestamp: now,
	})
	if err := appendHistory(ctx, tx, o); err != nil {
		return nil, false, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, false, errors.Wrap(err, "commit claim tx")
	}
	return o, true, nil
}

// ListReadyUnassigned returns orders waiting for a rider, oldest first, for
// the periodic dispatch sweep.
func (s *Store) ListReadyUnassigned(ctx context.Context, limit int) ([]types.ID, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id FROM orders
		WHERE status = 'ready' AND rider_id IS NULL
		ORDER BY ready_at
		LIMIT $1`, limit)
	if err != nil {
		return nil, errors.Wrap(err, "list ready orders")
	}
	defer rows.Close()

	var ids []types.ID
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, errors.Wrap(err, "scan order id")
		}
		ids = append(ids, types.ID(id))
	}
	return ids, rows.Err()
}

func appendHistory(ctx context.Context, tx pgx.Tx, o *Order) error {
	if len(o.History) == 0 {
		return nil
	}
	last := o.History[len(o.History)-1]
	_, err := tx.Exec(ctx, `
		INSERT INTO order_status_history (order_id, status, actor, note, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		string(o.ID), string(last.Status), string(last.Actor), last.Note, last.Timestamp,
	)
	return errors.Wrap(err, "append status history")
}

func scanOrder(row pgx.Row) (*Order, error) {
	var o Order
	var riderID *string
	err := row.Scan(
		&o.ID, &o.OrderNumber, &o.CustomerID, &o.RestaurantID, &riderID,
		&o.Status, &o.StatusVersion,
		&o.RestaurantLocation.Lat, &o.RestaurantLocation.Lng,
		&o.DeliveryLocation.Lat, &o.DeliveryLocation.Lng,
		&o.Subtotal.Amount, &o.DeliveryFee.Amount,
		&o.FeeBreakdown.Base, &o.FeeBreakdown.Distance,
		&o.Total.Amount, &o.Subtotal.Currency,
		&o.CreatedAt, &o.ReadyAt, &o.AssignedAt, &o.DeliveredAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "scan order")
	}
	if riderID != nil {
		r := types.ID(*riderID)
		o.RiderID = &r
	}
	o.DeliveryFee.Currency = o.Subtotal.Currency
	o.Total.Currency = o.Subtotal.Currency
	return &o, nil
}
