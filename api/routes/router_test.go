package routes

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/countryharvest/storefront-backend/pkg/config"
)

func testRouter() http.Handler {
	return NewRouter(Deps{
		Config:   &config.Config{App: config.AppConfig{Env: "test"}},
		Gatherer: prometheus.NewRegistry(),
	})
}

func TestHealthLive(t *testing.T) {
	t.Parallel()

	w := httptest.NewRecorder()
	testRouter().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health/live", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if got := w.Header().Get("X-CountryHarvest-Env"); got != "test" {
		t.Fatalf("env header: %q", got)
	}
}

func TestOrdersRequireAuthentication(t *testing.T) {
	t.Parallel()

	w := httptest.NewRecorder()
	testRouter().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/orders/", nil))
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
}

func TestAdminSurfaceRequiresRole(t *testing.T) {
	t.Parallel()

	w := httptest.NewRecorder()
	testRouter().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/admin/v1/coupons/", nil))
	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", w.Code)
	}

	w = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/admin/v1/coupons/", nil)
	req.Header.Set("X-CH-Role", "admin")
	testRouter().ServeHTTP(w, req)
	// the stubless router panics past the gate only if the handler runs;
	// a 500 from the recoverer still proves the role header was accepted.
	if w.Code == http.StatusForbidden {
		t.Fatalf("admin header should pass the gate, got %d", w.Code)
	}
}

func TestMetricsEndpointServes(t *testing.T) {
	t.Parallel()

	w := httptest.NewRecorder()
	testRouter().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
}
