package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/multierr"

	"github.com/angelmondragon/amglow-storefront/api"
	"github.com/angelmondragon/amglow-storefront/api/controllers"
	"github.com/angelmondragon/amglow-storefront/api/routes"
	"github.com/angelmondragon/amglow-storefront/internal/cart"
	"github.com/angelmondragon/amglow-storefront/internal/catalog"
	"github.com/angelmondragon/amglow-storefront/internal/checkout"
	"github.com/angelmondragon/amglow-storefront/internal/orders"
	"github.com/angelmondragon/amglow-storefront/internal/storage"
	"github.com/angelmondragon/amglow-storefront/pkg/config"
	"github.com/angelmondragon/amglow-storefront/pkg/db"
	"github.com/angelmondragon/amglow-storefront/pkg/logger"
	"github.com/angelmondragon/amglow-storefront/pkg/metrics"
	"github.com/angelmondragon/amglow-storefront/pkg/migrate"
	pkgmongo "github.com/angelmondragon/amglow-storefront/pkg/mongo"
	"github.com/angelmondragon/amglow-storefront/pkg/redis"
)

const shutdownTimeout = 15 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
		Format:      cfg.App.LogFormat,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logg); err != nil {
		logg.Error(context.Background(), "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logg *logger.Logger) (err error) {
	redisClient, err := redis.New(ctx, cfg.Redis, logg)
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, redisClient.Close()) }()

	mongoClient, err := pkgmongo.New(ctx, cfg.Mongo, logg)
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, mongoClient.Close(context.Background())) }()

	readiness := []controllers.NamedPinger{
		{Name: "redis", Pinger: redisClient},
		{Name: "mongo", Pinger: mongoClient},
	}

	catalogRepo, err := catalog.NewMongoRepository(mongoClient.Database(), cfg.Mongo.ProductsCollection)
	if err != nil {
		return err
	}

	orderStore, dbClient, err := openOrderStore(ctx, cfg, logg, mongoClient)
	if err != nil {
		return err
	}
	if dbClient != nil {
		defer func() { err = multierr.Append(err, dbClient.Close()) }()
		readiness = append(readiness, controllers.NamedPinger{Name: "database", Pinger: dbClient})
	}

	cartMetrics := metrics.NewCartMetrics(prometheus.DefaultRegisterer)
	checkoutMetrics := metrics.NewCheckoutMetrics(prometheus.DefaultRegisterer)

	sessions, err := cart.NewSessions(func(sessionID string) (storage.Store, error) {
		return storage.NewRedisStore(redisClient, sessionID, cfg.Cart.SnapshotTTL)
	}, cfg.Cart.StorageKey, logg, cartMetrics)
	if err != nil {
		return err
	}

	guards, err := checkout.NewRedisGuardFactory(redisClient, cfg.Checkout.ProcessingTTL)
	if err != nil {
		return err
	}

	checkoutService, err := checkout.NewService(checkout.ServiceConfig{
		Sessions:          sessions,
		Orders:            orderStore,
		Guards:            guards,
		Collection:        cfg.Orders.Collection,
		ConfirmationRoute: cfg.Checkout.ConfirmationRoute,
		Logger:            logg,
		Metrics:           checkoutMetrics,
	})
	if err != nil {
		return err
	}

	server := api.NewServer(cfg, routes.NewRouter(routes.Dependencies{
		Config:      cfg,
		Logger:      logg,
		Carts:       sessions,
		Catalog:     catalogRepo,
		Checkout:    checkoutService,
		Idempotency: redisClient,
		Readiness:   readiness,
	}))

	logCtx := logg.WithFields(ctx, map[string]any{
		"env":           cfg.App.Env,
		"addr":          server.Addr,
		"orders_driver": cfg.Orders.Driver,
	})
	logg.Info(logCtx, "starting api server")

	serveErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		return err
	case <-ctx.Done():
	}

	logg.Info(logCtx, "shutting down api server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// openOrderStore picks the order backend. The returned db client is nil for
// the mongo driver.
func openOrderStore(ctx context.Context, cfg *config.Config, logg *logger.Logger, mongoClient *pkgmongo.Client) (orders.Store, *db.Client, error) {
	if cfg.Orders.Driver != config.OrdersDriverSQL {
		store, err := orders.NewMongoStore(mongoClient.Database())
		return store, nil, err
	}

	dbClient, err := db.New(ctx, cfg.DB, cfg.FeatureFlags.UseSQLite, logg)
	if err != nil {
		return nil, nil, err
	}
	if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
		_ = dbClient.Close()
		return nil, nil, err
	}
	store, err := orders.NewSQLStore(dbClient.DB())
	if err != nil {
		_ = dbClient.Close()
		return nil, nil, err
	}
	return store, dbClient, nil
}
