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

	"github.com/countryharvest/storefront-backend/api/controllers"
	"github.com/countryharvest/storefront-backend/api/routes"
	"github.com/countryharvest/storefront-backend/internal/cart"
	"github.com/countryharvest/storefront-backend/internal/catalog"
	"github.com/countryharvest/storefront-backend/internal/checkout"
	"github.com/countryharvest/storefront-backend/internal/coupons"
	"github.com/countryharvest/storefront-backend/internal/notifications"
	"github.com/countryharvest/storefront-backend/internal/orders"
	"github.com/countryharvest/storefront-backend/internal/session"
	"github.com/countryharvest/storefront-backend/internal/shipping"
	"github.com/countryharvest/storefront-backend/internal/tax"
	"github.com/countryharvest/storefront-backend/pkg/config"
	"github.com/countryharvest/storefront-backend/pkg/db"
	"github.com/countryharvest/storefront-backend/pkg/logger"
	"github.com/countryharvest/storefront-backend/pkg/metrics"
	"github.com/countryharvest/storefront-backend/pkg/migrate"
	"github.com/countryharvest/storefront-backend/pkg/redis"
)

const shutdownGrace = 15 * time.Second

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
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}

	closers := func() error {
		return multierr.Combine(redisClient.Close(), dbClient.Close())
	}

	handler, err := buildHandler(cfg, logg, dbClient, redisClient)
	if err != nil {
		logg.Error(context.Background(), "failed to wire services", err)
		if cerr := closers(); cerr != nil {
			logg.Error(context.Background(), "error closing dependencies", cerr)
		}
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port

	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			if cerr := closers(); cerr != nil {
				logg.Error(ctx, "error closing dependencies", cerr)
			}
			os.Exit(1)
		}
	case sig := <-stop:
		logg.Info(logg.WithField(ctx, "signal", sig.String()), "shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		err := multierr.Append(server.Shutdown(shutdownCtx), closers())
		cancel()
		if err != nil {
			logg.Error(ctx, "shutdown finished with errors", err)
			os.Exit(1)
		}
	}

	logg.Info(ctx, "api server stopped")
}

func buildHandler(cfg *config.Config, logg *logger.Logger, dbClient *db.Client, redisClient *redis.Client) (http.Handler, error) {
	gormDB := dbClient.DB()

	cartRepo := cart.NewRepository(gormDB)
	catalogRepo := catalog.NewRepository(gormDB)
	couponsRepo := coupons.NewRepository(gormDB)
	ordersRepo := orders.NewRepository(gormDB)
	notificationsRepo := notifications.NewRepository(gormDB)

	catalogSvc, err := catalog.NewService(catalogRepo)
	if err != nil {
		return nil, err
	}
	couponsSvc, err := coupons.NewService(couponsRepo)
	if err != nil {
		return nil, err
	}

	taxRate, err := cfg.Cart.TaxRate()
	if err != nil {
		return nil, err
	}
	taxSvc, err := tax.NewService(taxRate)
	if err != nil {
		return nil, err
	}

	freeShipping, err := cfg.Shipping.FreeShippingThreshold()
	if err != nil {
		return nil, err
	}
	shippingSvc, err := shipping.NewService(freeShipping)
	if err != nil {
		return nil, err
	}

	cartSvc, err := cart.NewService(cartRepo, catalogSvc, couponsSvc, taxSvc, shippingSvc, cfg.Cart.TTL)
	if err != nil {
		return nil, err
	}

	notifySvc, err := notifications.NewService(
		notificationsRepo,
		notifications.NewSender(cfg.SMTP, logg.Base()),
		logg.Base(),
	)
	if err != nil {
		return nil, err
	}

	ordersSvc, err := orders.NewService(ordersRepo, dbClient, notifySvc)
	if err != nil {
		return nil, err
	}

	registry := prometheus.NewRegistry()
	checkoutSvc, err := checkout.NewService(
		dbClient,
		cartRepo,
		catalogRepo,
		couponsRepo,
		ordersRepo,
		taxSvc,
		shippingSvc,
		notifySvc,
		metrics.NewCheckoutMetrics(registry),
		logg.Base(),
	)
	if err != nil {
		return nil, err
	}

	sessions, err := session.NewManager(redisClient, cfg.Cart.SessionTTL)
	if err != nil {
		return nil, err
	}

	return routes.NewRouter(routes.Deps{
		Config:      cfg,
		Logger:      logg,
		Redis:       redisClient,
		Sessions:    sessions,
		Gatherer:    registry,
		HTTPMetrics: metrics.NewHTTPMetrics(registry),
		HealthPingers: map[string]controllers.Pinger{
			"database": dbClient,
			"redis":    redisClient,
		},
		Cart:     cartSvc,
		Catalog:  catalogSvc,
		Coupons:  couponsSvc,
		Orders:   ordersSvc,
		Checkout: checkoutSvc,
		Shipping: shippingSvc,
		Tax:      taxSvc,
	}), nil
}
