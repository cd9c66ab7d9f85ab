package config

import (
	"os"
	"testing"
	"time"
)

func TestLoad_Success(t *testing.T) {
	setMinimalEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned unexpected error: %v", err)
	}

	if cfg.App.Env != "prod" || !cfg.App.IsProd() {
		t.Fatalf("expected App.Env to be prod, got %q", cfg.App.Env)
	}
	if cfg.Cart.StorageKey != "amglow-cart" {
		t.Fatalf("unexpected cart storage key %q", cfg.Cart.StorageKey)
	}
	if cfg.Orders.Collection != "orders" || cfg.Orders.Driver != OrdersDriverMongo {
		t.Fatalf("unexpected orders config %+v", cfg.Orders)
	}
	if cfg.Checkout.ConfirmationRoute != "/order-confirmation" {
		t.Fatalf("unexpected confirmation route %q", cfg.Checkout.ConfirmationRoute)
	}
	if cfg.Checkout.ProcessingTTL != 30*time.Second {
		t.Fatalf("expected processing ttl 30s, got %v", cfg.Checkout.ProcessingTTL)
	}
	if len(cfg.CORS.AllowedOrigins) != 2 {
		t.Fatalf("expected two cors origins, got %v", cfg.CORS.AllowedOrigins)
	}
}

func TestLoad_MissingRequired(t *testing.T) {
	setMinimalEnv(t)
	if err := os.Unsetenv(EnvAppEnv); err != nil {
		t.Fatalf("failed to unset %s: %v", EnvAppEnv, err)
	}

	if _, err := Load(); err == nil {
		t.Fatal("expected missing required env to return an error")
	}
}

func TestLoad_RequiresMongoURI(t *testing.T) {
	for _, driver := range []string{OrdersDriverMongo, OrdersDriverSQL} {
		t.Run(driver, func(t *testing.T) {
			setMinimalEnv(t)
			t.Setenv(EnvMongoURI, "")
			t.Setenv(EnvOrdersDriver, driver)
			t.Setenv(EnvUseSQLite, "true")

			if _, err := Load(); err == nil {
				t.Fatal("expected missing mongo uri to fail")
			}
		})
	}
}

func TestLoad_UnknownDriver(t *testing.T) {
	setMinimalEnv(t)
	t.Setenv(EnvOrdersDriver, "firestore")

	if _, err := Load(); err == nil {
		t.Fatal("expected unknown orders driver to fail")
	}
}

func TestLoad_SQLDriverBuildsLegacyDSN(t *testing.T) {
	setMinimalEnv(t)
	t.Setenv(EnvOrdersDriver, "SQL")
	t.Setenv(EnvDBHost, "db.internal")
	t.Setenv(EnvDBUser, "amglow")
	t.Setenv(EnvDBName, "storefront")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned unexpected error: %v", err)
	}
	if cfg.Orders.Driver != OrdersDriverSQL {
		t.Fatalf("expected normalized sql driver, got %q", cfg.Orders.Driver)
	}
	want := "postgres://amglow@db.internal:5432/storefront?sslmode=disable"
	if cfg.DB.DSN != want {
		t.Fatalf("expected dsn %q, got %q", want, cfg.DB.DSN)
	}
}

func TestLoad_SQLDriverMissingDSN(t *testing.T) {
	setMinimalEnv(t)
	t.Setenv(EnvOrdersDriver, OrdersDriverSQL)

	if _, err := Load(); err == nil {
		t.Fatal("expected sql driver without dsn to fail")
	}

	t.Setenv(EnvUseSQLite, "true")
	if _, err := Load(); err != nil {
		t.Fatalf("sqlite flag should not need a dsn: %v", err)
	}
}

func setMinimalEnv(t *testing.T) {
	t.Helper()

	t.Setenv(EnvAppEnv, "prod")
	t.Setenv(EnvPort, "8081")
	t.Setenv(EnvRedisURL, "redis://localhost:6379/0")
	t.Setenv(EnvMongoURI, "mongodb://localhost:27017")
	t.Setenv(EnvOrdersDriver, OrdersDriverMongo)
	t.Setenv(EnvCORSOrigins, "http://localhost:5173,https://amglow.example")
	t.Setenv(EnvDBDSN, "")
	t.Setenv(EnvDBHost, "")
	t.Setenv(EnvDBUser, "")
	t.Setenv(EnvDBName, "")
	t.Setenv(EnvUseSQLite, "false")
}
