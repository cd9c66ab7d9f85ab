package routes

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/amglow-storefront/api/controllers"
	cartsvc "github.com/angelmondragon/amglow-storefront/internal/cart"
	"github.com/angelmondragon/amglow-storefront/internal/catalog"
	"github.com/angelmondragon/amglow-storefront/internal/checkout"
	"github.com/angelmondragon/amglow-storefront/internal/orders"
	"github.com/angelmondragon/amglow-storefront/internal/storage"
	"github.com/angelmondragon/amglow-storefront/pkg/config"
	pkgerrors "github.com/angelmondragon/amglow-storefront/pkg/errors"
	"github.com/angelmondragon/amglow-storefront/pkg/logger"
	pkgredis "github.com/angelmondragon/amglow-storefront/pkg/redis"
)

type stubPinger struct{}

func (stubPinger) Ping(context.Context) error {
	return nil
}

type stubCatalog struct{}

func (stubCatalog) List(context.Context, int64) ([]catalog.Product, error) {
	return []catalog.Product{{ID: "serum", Name: "Glow Serum", Price: decimal.RequireFromString("10.00"), Stock: 10}}, nil
}

func (stubCatalog) FindByID(_ context.Context, id string) (*catalog.Product, error) {
	switch id {
	case "serum":
		return &catalog.Product{ID: "serum", Name: "Glow Serum", Price: decimal.RequireFromString("10.00"), Stock: 10}, nil
	case "toner":
		return &catalog.Product{ID: "toner", Name: "Rose Toner", Price: decimal.RequireFromString("5.50"), Stock: 10}, nil
	}
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
}

type countingOrders struct {
	mu    sync.Mutex
	count int
}

func (c *countingOrders) Insert(context.Context, string, orders.Record) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.count++
	return fmt.Sprintf("order-%d", c.count), nil
}

func testConfig() *config.Config {
	return &config.Config{
		App:      config.AppConfig{Env: "dev", Port: "0"},
		Checkout: config.CheckoutConfig{ConfirmationRoute: "/order-confirmation", IdempotencyTTL: time.Hour},
		CORS:     config.CORSConfig{AllowedOrigins: []string{"http://localhost:5173"}},
	}
}

type testEnv struct {
	router http.Handler
	orders *countingOrders
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	logg := logger.New(logger.Options{ServiceName: "test-routing", Level: logger.ParseLevel("debug"), Output: io.Discard})

	mr := miniredis.RunT(t)
	client := pkgredis.Wrap(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { _ = client.Close() })

	sessions, err := cartsvc.NewSessions(func(sessionID string) (storage.Store, error) {
		return storage.NewRedisStore(client, sessionID, time.Hour)
	}, "", logg, nil)
	if err != nil {
		t.Fatalf("sessions: %v", err)
	}

	ord := &countingOrders{}
	svc, err := checkout.NewService(checkout.ServiceConfig{Sessions: sessions, Orders: ord, Logger: logg})
	if err != nil {
		t.Fatalf("checkout service: %v", err)
	}

	return &testEnv{
		orders: ord,
		router: NewRouter(Dependencies{
			Config:      testConfig(),
			Logger:      logg,
			Carts:       sessions,
			Catalog:     stubCatalog{},
			Checkout:    svc,
			Idempotency: client,
			Readiness:   []controllers.NamedPinger{{Name: "redis", Pinger: client}, {Name: "mongo", Pinger: stubPinger{}}},
		}),
	}
}

func (e *testEnv) do(method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func TestHealthRoutes(t *testing.T) {
	env := newTestEnv(t)
	for _, path := range []string{"/health/live", "/health/ready", "/metrics"} {
		if rec := env.do(http.MethodGet, path, "", nil); rec.Code != http.StatusOK {
			t.Fatalf("%s: expected 200 got %d", path, rec.Code)
		}
	}
}

func TestProductsArePublic(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(http.MethodGet, "/api/v1/products", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	if rec.Header().Get("Set-Cookie") != "" {
		t.Fatalf("catalog routes must not mint sessions")
	}
	if rec := env.do(http.MethodGet, "/api/v1/products/serum", "", nil); rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
}

func TestCartIsolatedPerSession(t *testing.T) {
	env := newTestEnv(t)
	a := map[string]string{"X-Session-Id": "session-a"}
	b := map[string]string{"X-Session-Id": "session-b"}

	if rec := env.do(http.MethodPost, "/api/v1/cart/items", `{"product_id":"serum","quantity":2}`, a); rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", rec.Code, rec.Body.String())
	}

	var cartA, cartB struct {
		Data struct {
			Count int `json:"count"`
		} `json:"data"`
	}
	_ = json.Unmarshal(env.do(http.MethodGet, "/api/v1/cart", "", a).Body.Bytes(), &cartA)
	_ = json.Unmarshal(env.do(http.MethodGet, "/api/v1/cart", "", b).Body.Bytes(), &cartB)
	if cartA.Data.Count != 2 || cartB.Data.Count != 0 {
		t.Fatalf("expected isolated carts, got a=%d b=%d", cartA.Data.Count, cartB.Data.Count)
	}
}

const checkoutBody = `{"firstName":"Ada","lastName":"Lovelace","email":"ada@example.com","phone":"5551234567","address":"12 Analytical Way","city":"London","state":"LDN","zip":"10001","paymentMethod":"cod"}`

func TestCheckoutFlowAndReplay(t *testing.T) {
	env := newTestEnv(t)
	headers := map[string]string{"X-Session-Id": "shopper", "Idempotency-Key": "attempt-1"}

	if rec := env.do(http.MethodPost, "/api/v1/checkout", checkoutBody, headers); rec.Code != http.StatusBadRequest {
		t.Fatalf("empty cart should be rejected, got %d", rec.Code)
	}

	env.do(http.MethodPost, "/api/v1/cart/items", `{"product_id":"serum","quantity":2}`, headers)
	env.do(http.MethodPost, "/api/v1/cart/items", `{"product_id":"toner"}`, headers)

	first := env.do(http.MethodPost, "/api/v1/checkout", checkoutBody, headers)
	if first.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", first.Code, first.Body.String())
	}
	var env1 struct {
		Data struct {
			OrderID string `json:"order_id"`
			Total   string `json:"total"`
		} `json:"data"`
		Redirect string `json:"redirect"`
	}
	if err := json.Unmarshal(first.Body.Bytes(), &env1); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if env1.Data.Total != "25.50" || env1.Redirect != "/order-confirmation" {
		t.Fatalf("unexpected checkout response %s", first.Body.String())
	}

	replay := env.do(http.MethodPost, "/api/v1/checkout", checkoutBody, headers)
	if replay.Code != http.StatusCreated || replay.Body.String() != first.Body.String() {
		t.Fatalf("expected identical replay, got %d %s", replay.Code, replay.Body.String())
	}
	if replay.Header().Get("Idempotent-Replay") != "true" {
		t.Fatalf("expected replay marker")
	}
	if env.orders.count != 1 {
		t.Fatalf("expected exactly one order write, got %d", env.orders.count)
	}

	headers["Idempotency-Key"] = "attempt-2"
	if rec := env.do(http.MethodPost, "/api/v1/checkout", checkoutBody, headers); rec.Code != http.StatusBadRequest {
		t.Fatalf("cart was cleared, a new attempt must be rejected, got %d", rec.Code)
	}
	if env.orders.count != 1 {
		t.Fatalf("expected no further writes, got %d", env.orders.count)
	}
}
