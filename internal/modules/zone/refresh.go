// README: Periodically reloading zone index; lookups stay lock-free.
package zone

import (
	"context"
	"sync/atomic"
	"time"

	log "github.com/sirupsen/logrus"

	"khabar/internal/types"
)

// RefreshingIndex serves zone lookups from an immutable Index snapshot and
// swaps the snapshot in the background. Zones are edited by admin tooling
// out-of-process, so a stale snapshot for one refresh interval is fine.
type RefreshingIndex struct {
	store   *Store
	current atomic.Pointer[Index]
}

func NewRefreshingIndex(ctx context.Context, store *Store) (*RefreshingIndex, error) {
	ix, err := store.LoadIndex(ctx)
	if err != nil {
		return nil, err
	}
	r := &RefreshingIndex{store: store}
	r.current.Store(ix)
	return r, nil
}

func (r *RefreshingIndex) ZoneFor(p types.Point) (Zone, bool) {
	return r.current.Load().ZoneFor(p)
}

// Run reloads the snapshot on every tick until the context is cancelled.
// A failed reload keeps the previous snapshot.
func (r *RefreshingIndex) Run(ctx context.Context, tick time.Duration) {
	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			ix, err := r.store.LoadIndex(ctx)
			if err != nil {
				log.WithError(err).Warn("reload zone index")
				continue
			}
			r.current.Store(ix)
		}
	}
}
