// README: Tests for the delivery quote endpoint.
package handlers_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"khabar/internal/geo"
	"khabar/internal/http/handlers"
	"khabar/internal/modules/zone"
	"khabar/internal/types"
)

type stubZones struct {
	zone zone.Zone
	hit  bool
}

func (s *stubZones) ZoneFor(types.Point) (zone.Zone, bool) { return s.zone, s.hit }

func quoteParams() geo.Params {
	return geo.Params{
		PrepMinutes:   15,
		AvgSpeedKmh:   25,
		BufferMinutes: 15,
		MinFee:        3000,
		MaxFee:        15000,
	}
}

func quoteRequest(t *testing.T, zones handlers.ZoneLookup, query string) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/api/delivery/quote", handlers.NewQuoteHandler(zones, quoteParams()).Quote)

	req := httptest.NewRequest(http.MethodGet, "/api/delivery/quote?"+query, nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestQuote_InsideZone(t *testing.T) {
	zones := &stubZones{
		zone: zone.Zone{Name: "Gulshan", Fees: geo.FeeSchedule{BaseFee: 3000, PerKm: 1000}},
		hit:  true,
	}
	// Restaurant and delivery at the same point: zero distance, base fee only.
	w := quoteRequest(t, zones, "lat=23.78&lng=90.42&restaurant_lat=23.78&restaurant_lng=90.42")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	body := w.Body.String()
	for _, want := range []string{`"available":true`, "Gulshan", `"amount":3000`, `"min":15`, `"max":30`} {
		if !strings.Contains(body, want) {
			t.Errorf("expected %q in body, got %s", want, body)
		}
	}
}

func TestQuote_OutsideEveryZone(t *testing.T) {
	w := quoteRequest(t, &stubZones{}, "lat=24.0&lng=91.0&restaurant_lat=23.78&restaurant_lng=90.42")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"available":false`) {
		t.Errorf("expected available:false, got %s", w.Body.String())
	}
}

func TestQuote_MalformedCoordinates(t *testing.T) {
	for _, query := range []string{
		"",
		"lat=abc&lng=90.42&restaurant_lat=23.78&restaurant_lng=90.42",
		"lat=23.78&lng=90.42&restaurant_lat=23.78",
	} {
		if w := quoteRequest(t, &stubZones{hit: true}, query); w.Code != http.StatusBadRequest {
			t.Errorf("query %q: expected 400, got %d", query, w.Code)
		}
	}
}
