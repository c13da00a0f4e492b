package main

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/multierr"

	"github.com/angelmondragon/jewelry-miniapp/api/controllers"
	"github.com/angelmondragon/jewelry-miniapp/api/routes"
	"github.com/angelmondragon/jewelry-miniapp/internal/cart"
	"github.com/angelmondragon/jewelry-miniapp/internal/catalog"
	"github.com/angelmondragon/jewelry-miniapp/internal/checkout"
	"github.com/angelmondragon/jewelry-miniapp/internal/favorites"
	"github.com/angelmondragon/jewelry-miniapp/internal/orders"
	"github.com/angelmondragon/jewelry-miniapp/pkg/config"
	"github.com/angelmondragon/jewelry-miniapp/pkg/db"
	"github.com/angelmondragon/jewelry-miniapp/pkg/enums"
	"github.com/angelmondragon/jewelry-miniapp/pkg/kvstore"
	"github.com/angelmondragon/jewelry-miniapp/pkg/logger"
	"github.com/angelmondragon/jewelry-miniapp/pkg/metrics"
	"github.com/angelmondragon/jewelry-miniapp/pkg/migrate"
	"github.com/angelmondragon/jewelry-miniapp/pkg/redis"
	"github.com/angelmondragon/jewelry-miniapp/pkg/storefront"
	"github.com/angelmondragon/jewelry-miniapp/pkg/telegram"
)

const shutdownTimeout = 20 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "miniapp"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "miniapp",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logg); err != nil {
		logg.Error(context.Background(), "miniapp stopped unexpectedly", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logg *logger.Logger) (err error) {
	var closers []io.Closer
	defer func() {
		for i := len(closers) - 1; i >= 0; i-- {
			err = multierr.Append(err, closers[i].Close())
		}
	}()

	readiness := map[string]controllers.Pinger{}

	var redisClient *redis.Client
	if cfg.Redis.Enabled() {
		redisClient, err = redis.New(ctx, cfg.Redis, logg)
		if err != nil {
			return err
		}
		closers = append(closers, redisClient)
		readiness["redis"] = redisClient
	}

	store, err := openStore(ctx, cfg, logg, redisClient, &closers, readiness)
	if err != nil {
		return err
	}

	host := telegram.NewHost(cfg.API.TelegramInit)
	client, err := storefront.NewClient(
		storefront.WithBaseURL(cfg.API.BaseURL),
		storefront.WithHTTPClient(&http.Client{Timeout: cfg.API.Timeout}),
		storefront.WithInitDataSource(host.InitData),
		storefront.WithLogger(logg),
	)
	if err != nil {
		return err
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	cartCtl, err := cart.NewController(ctx, cart.Params{
		Store:  store,
		Remote: client,
		Observer: cart.Observers{
			cart.LoggingObserver{Logger: logg},
			cart.MetricsObserver{Metrics: metrics.NewSyncMetrics(registry)},
		},
		Logger:      logg,
		Policy:      cfg.Cart.ReconcilePolicy,
		SyncTimeout: cfg.Cart.SyncTimeout,
	})
	if err != nil {
		return err
	}
	defer cartCtl.Wait()

	favCtl, err := favorites.NewController(ctx, favorites.Params{Store: store, Logger: logg})
	if err != nil {
		return err
	}

	catalogParams := catalog.ServiceParams{Backend: client, Logger: logg}
	if redisClient != nil {
		catalogParams.Cache = redisClient
		catalogParams.CacheTTL = cfg.Catalog.CacheTTL
	}
	catalogSvc, err := catalog.NewService(catalogParams)
	if err != nil {
		return err
	}

	checkoutSvc, err := checkout.NewService(checkout.ServiceParams{
		Cart:   cartCtl,
		Orders: client,
		Config: cfg.Checkout,
		Logger: logg,
	})
	if err != nil {
		return err
	}

	orderSvc, err := orders.NewService(client, logg)
	if err != nil {
		return err
	}

	go func() {
		if err := cart.RunStartupSync(ctx, host, cartCtl); err != nil && !errors.Is(err, context.Canceled) {
			logg.WarnErr(ctx, "startup cart sync skipped", err)
		}
	}()

	addr := ":" + cfg.App.Port
	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.Deps{
			Config:    cfg,
			Logger:    logg,
			Host:      host,
			Cart:      cartCtl,
			Favorites: favCtl,
			Catalog:   catalogSvc,
			Checkout:  checkoutSvc,
			Orders:    orderSvc,
			Gatherer:  registry,
			Readiness: readiness,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	logCtx := logg.WithFields(ctx, map[string]any{
		"env":     cfg.App.Env,
		"addr":    addr,
		"storage": cfg.Storage.Driver.String(),
	})
	logg.Info(logCtx, "starting miniapp bridge")

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logg.Info(logCtx, "shutting down miniapp bridge")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// openStore picks the device-state backend for the configured driver.
func openStore(
	ctx context.Context,
	cfg *config.Config,
	logg *logger.Logger,
	redisClient *redis.Client,
	closers *[]io.Closer,
	readiness map[string]controllers.Pinger,
) (kvstore.Store, error) {
	switch cfg.Storage.Driver {
	case enums.StorageDriverMemory:
		return kvstore.NewMemory(), nil
	case enums.StorageDriverRedis:
		return redisClient, nil
	case enums.StorageDriverSQLite, enums.StorageDriverPostgres:
		client, err := db.New(ctx, cfg.Storage, logg)
		if err != nil {
			return nil, err
		}
		*closers = append(*closers, client)
		readiness["database"] = client
		if err := migrate.MaybeRun(ctx, cfg, logg, client); err != nil {
			return nil, err
		}
		return kvstore.NewGormStore(client.DB())
	default:
		return nil, errors.New("unsupported storage driver " + cfg.Storage.Driver.String())
	}
}
