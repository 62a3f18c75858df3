package routes

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/shoptools/shoptools-go/internal/cart"
	"github.com/shoptools/shoptools-go/internal/catalogue"
	"github.com/shoptools/shoptools-go/internal/checkout"
	"github.com/shoptools/shoptools-go/internal/orders"
	"github.com/shoptools/shoptools-go/pkg/config"
	"github.com/shoptools/shoptools-go/pkg/db/models"
	pkgerrors "github.com/shoptools/shoptools-go/pkg/errors"
	"github.com/shoptools/shoptools-go/pkg/logger"
	"github.com/shoptools/shoptools-go/pkg/metrics"
	pkgredis "github.com/shoptools/shoptools-go/pkg/redis"
)

type stubPinger struct{}

func (stubPinger) Ping(context.Context) error {
	return nil
}

type failingPinger struct{}

func (failingPinger) Ping(context.Context) error {
	return context.DeadlineExceeded
}

type memoryKV struct {
	mu   sync.Mutex
	data map[string]string
}

func newMemoryKV() *memoryKV {
	return &memoryKV{data: map[string]string{}}
}

func (m *memoryKV) Set(_ context.Context, key string, value any, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value.(string)
	return nil
}

func (m *memoryKV) Get(_ context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	value, ok := m.data[key]
	if !ok {
		return "", pkgredis.Nil
	}
	return value, nil
}

func (m *memoryKV) Del(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, key := range keys {
		delete(m.data, key)
	}
	return nil
}

func (m *memoryKV) SessionCartKey(token string) string {
	return "session_cart:" + token
}

type stubCheckoutService struct{}

func (stubCheckoutService) SaveTo(context.Context, cart.Cart, *orders.Order) error {
	return pkgerrors.New(pkgerrors.CodeStateConflict, "cart is not valid for checkout")
}

func (stubCheckoutService) Checkout(context.Context, cart.Cart, checkout.CheckoutInput) (*orders.Order, error) {
	return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "cart is not valid for checkout")
}

func (stubCheckoutService) Order(record *models.Order) *orders.Order {
	return nil
}

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Env: "test", Port: "0"},
	}
}

func newTestRouter(t *testing.T, deps Deps) http.Handler {
	t.Helper()
	logg := logger.New(logger.Options{ServiceName: "test-routing", Level: logger.ParseLevel("debug"), Output: io.Discard})
	if deps.SessionStore == nil {
		deps.SessionStore = cart.NewSessionStore(newMemoryKV(), time.Hour, catalogue.NewRegistry())
	}
	if deps.CartMetrics == nil {
		deps.CartMetrics = metrics.NewCartMetrics(prometheus.NewRegistry())
	}
	return NewRouter(testConfig(), logg, deps)
}

func TestHealthLive(t *testing.T) {
	router := newTestRouter(t, Deps{})
	req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
}

func TestHealthReadyProbesDependencies(t *testing.T) {
	router := newTestRouter(t, Deps{DB: stubPinger{}, Redis: stubPinger{}})
	req := httptest.NewRequest(http.MethodGet, "/health/ready", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
}

func TestHealthReadyFailsWhenDependencyDown(t *testing.T) {
	router := newTestRouter(t, Deps{DB: stubPinger{}, Redis: failingPinger{}})
	req := httptest.NewRequest(http.MethodGet, "/health/ready", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 got %d", resp.Code)
	}
}

func TestCartFetchMintsSessionToken(t *testing.T) {
	router := newTestRouter(t, Deps{})
	req := httptest.NewRequest(http.MethodGet, "/api/v1/cart/", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
	if resp.Header().Get("X-Session-Token") == "" {
		t.Fatal("expected minted session token in response header")
	}

	var envelope struct {
		Data struct {
			Count int `json:"count"`
		} `json:"data"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decoding body: %v", err)
	}
	if envelope.Data.Count != 0 {
		t.Fatalf("expected empty cart, got count %d", envelope.Data.Count)
	}
}

func TestCartUpdateUnknownItemTypeIsNotFound(t *testing.T) {
	router := newTestRouter(t, Deps{})
	body := strings.NewReader(`{"type":"catalogue.bundle","id":"b1","quantity":1,"add":true}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/cart/update", body)
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d: %s", resp.Code, resp.Body.String())
	}
}

func TestCartUpdateRejectsMissingFields(t *testing.T) {
	router := newTestRouter(t, Deps{})
	body := strings.NewReader(`{"quantity":1}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/cart/update", body)
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestSessionTokenRoundTripsThroughHeader(t *testing.T) {
	kv := newMemoryKV()
	store := cart.NewSessionStore(kv, time.Hour, catalogue.NewRegistry())
	router := newTestRouter(t, Deps{SessionStore: store})

	first := httptest.NewRequest(http.MethodGet, "/api/v1/cart/", nil)
	firstResp := httptest.NewRecorder()
	router.ServeHTTP(firstResp, first)
	token := firstResp.Header().Get("X-Session-Token")
	if token == "" {
		t.Fatal("expected session token")
	}

	second := httptest.NewRequest(http.MethodGet, "/api/v1/cart/", nil)
	second.Header.Set("X-Session-Token", token)
	secondResp := httptest.NewRecorder()
	router.ServeHTTP(secondResp, second)
	if got := secondResp.Header().Get("X-Session-Token"); got != token {
		t.Fatalf("expected token %q echoed back, got %q", token, got)
	}
}

func TestOrderDetailRejectsInvalidID(t *testing.T) {
	router := newTestRouter(t, Deps{})
	req := httptest.NewRequest(http.MethodGet, "/api/v1/orders/not-a-uuid", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestCheckoutSurfacesStateConflict(t *testing.T) {
	router := newTestRouter(t, Deps{Checkout: stubCheckoutService{}})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/checkout", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 got %d: %s", resp.Code, resp.Body.String())
	}
}

func TestMetricsEndpointExposed(t *testing.T) {
	reg := prometheus.NewRegistry()
	router := newTestRouter(t, Deps{CartMetrics: metrics.NewCartMetrics(reg), Gatherer: reg})
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
}
