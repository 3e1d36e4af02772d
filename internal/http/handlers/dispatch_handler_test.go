// README: Tests for the dispatch endpoint's role checks and outcome mapping.
package handlers_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"khabar/internal/http/handlers"
	"khabar/internal/http/middleware"
	"khabar/internal/infra"
	"khabar/internal/modules/dispatch"
	"khabar/internal/modules/order"
	"khabar/internal/types"
)

type stubVerifier struct {
	token *infra.AuthToken
}

func (s *stubVerifier) VerifyIDToken(_ context.Context, _ string) (*infra.AuthToken, error) {
	return s.token, nil
}

type stubDispatcher struct {
	result *dispatch.Result
	err    error
}

func (s *stubDispatcher) DispatchReadyOrder(_ context.Context, orderID types.ID) (*dispatch.Result, error) {
	if s.err != nil {
		return nil, s.err
	}
	res := *s.result
	res.OrderID = orderID
	return &res, nil
}

func dispatchRequest(t *testing.T, d handlers.Dispatcher, role string) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)
	verifier := &stubVerifier{token: &infra.AuthToken{
		UID:    "u1",
		Claims: map[string]interface{}{"role": role},
	}}
	r := gin.New()
	r.Use(middleware.Auth(verifier))
	r.POST("/api/dispatch/:orderId", handlers.NewDispatchHandler(d).Dispatch)

	req := httptest.NewRequest(http.MethodPost, "/api/dispatch/o1", nil)
	req.Header.Set("Authorization", "Bearer token")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestDispatchEndpoint_Assigned(t *testing.T) {
	d := &stubDispatcher{result: &dispatch.Result{
		Outcome: dispatch.OutcomeAssigned,
		RiderID: "r1",
		Status:  order.StatusPickedUp,
	}}
	w := dispatchRequest(t, d, "restaurant")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	body := w.Body.String()
	for _, want := range []string{"assigned", "r1", "picked_up", "o1"} {
		if !strings.Contains(body, want) {
			t.Errorf("expected %q in body, got %s", want, body)
		}
	}
}

func TestDispatchEndpoint_RoleForbidden(t *testing.T) {
	d := &stubDispatcher{result: &dispatch.Result{Outcome: dispatch.OutcomeAssigned}}
	for _, role := range []string{"customer", "rider", ""} {
		if w := dispatchRequest(t, d, role); w.Code != http.StatusForbidden {
			t.Errorf("role %q: expected 403, got %d", role, w.Code)
		}
	}
	if w := dispatchRequest(t, d, "admin"); w.Code != http.StatusOK {
		t.Errorf("admin: expected 200, got %d", w.Code)
	}
}

func TestDispatchEndpoint_NoRiderIsSearching(t *testing.T) {
	w := dispatchRequest(t, &stubDispatcher{err: dispatch.ErrNoEligibleRider}, "restaurant")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "searching_for_rider") {
		t.Errorf("expected searching_for_rider, got %s", w.Body.String())
	}
}

func TestDispatchEndpoint_Exhausted(t *testing.T) {
	w := dispatchRequest(t, &stubDispatcher{err: dispatch.ErrDispatchExhausted}, "admin")
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "redispatchable") {
		t.Errorf("expected redispatchable flag, got %s", w.Body.String())
	}
}

func TestDispatchEndpoint_InvalidState(t *testing.T) {
	w := dispatchRequest(t, &stubDispatcher{err: dispatch.ErrInvalidDispatchState}, "restaurant")
	if w.Code != http.StatusConflict {
		t.Errorf("expected 409, got %d", w.Code)
	}
}

func TestDispatchEndpoint_OrderNotFound(t *testing.T) {
	w := dispatchRequest(t, &stubDispatcher{err: order.ErrNotFound}, "restaurant")
	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
}
