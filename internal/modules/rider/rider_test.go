package rider

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	"khabar/internal/types"
)

func TestLocationFresh(t *testing.T) {
	now := time.Now()
	threshold := 5 * time.Minute

	cases := []struct {
		name     string
		lastSeen time.Time
		want     bool
	}{
		{"just reported", now, true},
		{"within threshold", now.Add(-4 * time.Minute), true},
		{"exactly at threshold", now.Add(-5 * time.Minute), true},
		{"past threshold", now.Add(-5*time.Minute - time.Second), false},
		{"never reported", time.Time{}, false},
	}

	for _, c := range cases {
		r := Rider{LastSeen: c.lastSeen}
		if got := r.LocationFresh(threshold, now); got != c.want {
			t.Errorf("%s: fresh = %v, want %v", c.name, got, c.want)
		}
	}
}

func TestValidPoint(t *testing.T) {
	cases := []struct {
		name string
		p    types.Point
		want bool
	}{
		{"dhaka", types.Point{Lat: 23.78, Lng: 90.42}, true},
		{"lat out of range", types.Point{Lat: 91, Lng: 90.42}, false},
		{"lng out of range", types.Point{Lat: 23.78, Lng: 181}, false},
		{"null island", types.Point{}, false},
	}

	for _, c := range cases {
		if got := validPoint(c.p); got != c.want {
			t.Errorf("%s: valid = %v, want %v", c.name, got, c.want)
		}
	}
}

func TestSetLocationAndGeoPool(t *testing.T) {
	redisAddr := os.Getenv("KHABAR_REDIS_ADDR")
	if redisAddr == "" {
		t.Skip("KHABAR_REDIS_ADDR not set; skipping integration test")
	}

	rdb := redis.NewClient(&redis.Options{Addr: redisAddr})
	defer rdb.Close()

	// DB nil: only the Redis side of the store is exercised here.
	store := NewStore(nil, rdb)
	ctx := context.Background()

	id := types.ID(fmt.Sprintf("r_test_%d", time.Now().UnixNano()))
	at := time.Now().UTC()
	p := types.Point{Lat: 23.7808, Lng: 90.4199}

	if err := store.SetLocation(ctx, id, p, at); err != nil {
		t.Fatalf("set location: %v", err)
	}

	pos, err := rdb.GeoPos(ctx, geoKey, string(id)).Result()
	if err != nil {
		t.Fatalf("query redis geo: %v", err)
	}
	if len(pos) != 1 || pos[0] == nil {
		t.Fatal("rider missing from geo pool after update")
	}
	if diff := pos[0].Latitude - p.Lat; diff > 0.001 || diff < -0.001 {
		t.Errorf("stored lat = %v, want ~%v", pos[0].Latitude, p.Lat)
	}

	seen, err := rdb.HGet(ctx, lastSeenKey, string(id)).Result()
	if err != nil {
		t.Fatalf("query last seen: %v", err)
	}
	if seen != fmt.Sprintf("%d", at.UnixMilli()) {
		t.Errorf("last seen = %s, want %d", seen, at.UnixMilli())
	}

	if err := store.RemoveFromPool(ctx, id); err != nil {
		t.Fatalf("remove from pool: %v", err)
	}
	pos, err = rdb.GeoPos(ctx, geoKey, string(id)).Result()
	if err != nil {
		t.Fatalf("query redis geo: %v", err)
	}
	if len(pos) == 1 && pos[0] != nil {
		t.Error("rider still in geo pool after removal")
	}
}
