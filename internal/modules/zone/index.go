// README: Point-to-zone lookup via ray casting, first match in registration order.
package zone

import "khabar/internal/types"

// Index answers "which delivery zone covers this point". Zones may overlap
// in storage; lookups are deterministic because zones are kept in
// registration order and the first containing polygon wins.
type Index struct {
	zones []Zone
}

// NewIndex builds an index over the given zones, skipping inactive ones and
// preserving the input (registration) order as lookup priority.
func NewIndex(zones []Zone) *Index {
	active := make([]Zone, 0, len(zones))
	for _, z := range zones {
		if z.Active && len(z.Polygon) >= 3 {
			active = append(active, z)
		}
	}
	return &Index{zones: active}
}

// ZoneFor returns the first active zone containing p, or ok=false when no
// zone covers it. A miss means "delivery unavailable", not an error.
func (ix *Index) ZoneFor(p types.Point) (Zone, bool) {
	for _, z := range ix.zones {
		if containsPoint(z.Polygon, p) {
			return z, true
		}
	}
	return Zone{}, false
}

// containsPoint is the standard even-odd ray cast with half-open edges: a
// point exactly on a boundary resolves by the parity of the east-pointing
// ray, which is the same answer on every call.
func containsPoint(polygon []types.Point, p types.Point) bool {
	inside := false
	for i, j := 0, len(polygon)-1; i < len(polygon); j, i = i, i+1 {
		vi, vj := polygon[i], polygon[j]
		if (vi.Lat > p.Lat) != (vj.Lat > p.Lat) &&
			p.Lng < (vj.Lng-vi.Lng)*(p.Lat-vi.Lat)/(vj.Lat-vi.Lat)+vi.Lng {
			inside = !inside
		}
	}
	return inside
}
