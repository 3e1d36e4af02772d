package zone

import (
	"testing"

	"khabar/internal/types"
)

func square(lat, lng, side float64) []types.Point {
	return []types.Point{
		{Lat: lat, Lng: lng},
		{Lat: lat + side, Lng: lng},
		{Lat: lat + side, Lng: lng + side},
		{Lat: lat, Lng: lng + side},
	}
}

func TestZoneFor(t *testing.T) {
	ix := NewIndex([]Zone{
		{ID: "z1", Name: "Gulshan", Active: true, Polygon: square(23.77, 90.40, 0.03)},
		{ID: "z2", Name: "Dhanmondi", Active: true, Polygon: square(23.73, 90.36, 0.03)},
	})

	cases := []struct {
		name string
		p    types.Point
		zone string
		ok   bool
	}{
		{"inside first zone", types.Point{Lat: 23.785, Lng: 90.415}, "Gulshan", true},
		{"inside second zone", types.Point{Lat: 23.745, Lng: 90.375}, "Dhanmondi", true},
		{"outside all zones", types.Point{Lat: 23.90, Lng: 90.50}, "", false},
		{"between the zones", types.Point{Lat: 23.765, Lng: 90.395}, "", false},
	}

	for _, c := range cases {
		z, ok := ix.ZoneFor(c.p)
		if ok != c.ok {
			t.Errorf("%s: ok = %v, want %v", c.name, ok, c.ok)
			continue
		}
		if ok && z.Name != c.zone {
			t.Errorf("%s: zone = %s, want %s", c.name, z.Name, c.zone)
		}
	}
}

func TestZoneFor_OverlapResolvesByRegistrationOrder(t *testing.T) {
	// Identical polygons; the first registered zone must win every lookup.
	poly := square(23.77, 90.40, 0.03)
	ix := NewIndex([]Zone{
		{ID: "z1", Name: "Gulshan", Active: true, Polygon: poly},
		{ID: "z2", Name: "Gulshan Overflow", Active: true, Polygon: poly},
	})

	p := types.Point{Lat: 23.78, Lng: 90.41}
	for i := 0; i < 10; i++ {
		z, ok := ix.ZoneFor(p)
		if !ok || z.ID != "z1" {
			t.Fatalf("lookup %d resolved to %v (ok=%v), want z1", i, z.ID, ok)
		}
	}
}

func TestNewIndex_SkipsInactiveAndDegenerate(t *testing.T) {
	ix := NewIndex([]Zone{
		{ID: "z1", Name: "Old Gulshan", Active: false, Polygon: square(23.77, 90.40, 0.03)},
		{ID: "z2", Name: "Line", Active: true, Polygon: square(23.77, 90.40, 0.03)[:2]},
	})

	if _, ok := ix.ZoneFor(types.Point{Lat: 23.785, Lng: 90.415}); ok {
		t.Error("inactive or degenerate zone matched a point")
	}
}

func TestContainsPoint_BoundaryIsDeterministic(t *testing.T) {
	poly := square(23.77, 90.40, 0.03)
	// A point on the western edge. Whichever side the parity rule picks,
	// it must pick the same side on every call.
	p := types.Point{Lat: 23.785, Lng: 90.40}
	first := containsPoint(poly, p)
	for i := 0; i < 100; i++ {
		if containsPoint(poly, p) != first {
			t.Fatal("boundary containment flapped between calls")
		}
	}
}

func TestContainsPoint_ConcaveNotch(t *testing.T) {
	// An L-shape: the notch in the upper-right is outside.
	poly := []types.Point{
		{Lat: 0, Lng: 0},
		{Lat: 2, Lng: 0},
		{Lat: 2, Lng: 1},
		{Lat: 1, Lng: 1},
		{Lat: 1, Lng: 2},
		{Lat: 0, Lng: 2},
	}
	if !containsPoint(poly, types.Point{Lat: 0.5, Lng: 1.5}) {
		t.Error("point in the base of the L reported outside")
	}
	if containsPoint(poly, types.Point{Lat: 1.5, Lng: 1.5}) {
		t.Error("point in the notch reported inside")
	}
}
