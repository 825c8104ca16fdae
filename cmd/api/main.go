package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/boxport/boxport-backend/api/routes"
	"github.com/boxport/boxport-backend/internal/auth"
	"github.com/boxport/boxport-backend/internal/cart"
	"github.com/boxport/boxport-backend/internal/catalog"
	checkoutsvc "github.com/boxport/boxport-backend/internal/checkout"
	"github.com/boxport/boxport-backend/internal/orders"
	"github.com/boxport/boxport-backend/internal/payments"
	"github.com/boxport/boxport-backend/internal/pricing"
	"github.com/boxport/boxport-backend/internal/users"
	"github.com/boxport/boxport-backend/pkg/config"
	"github.com/boxport/boxport-backend/pkg/db"
	"github.com/boxport/boxport-backend/pkg/logger"
	"github.com/boxport/boxport-backend/pkg/metrics"
	"github.com/boxport/boxport-backend/pkg/migrate"
	"github.com/boxport/boxport-backend/pkg/redis"
	pkgstripe "github.com/boxport/boxport-backend/pkg/stripe"
)

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
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	stripeClient, err := pkgstripe.NewClient(context.Background(), cfg.Stripe, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap stripe", err)
		os.Exit(1)
	}

	authService, err := auth.NewService(auth.ServiceParams{
		UserRepo:       users.NewRepository(dbClient.DB()),
		JWTConfig:      cfg.JWT,
		PasswordConfig: cfg.Password,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create auth service", err)
		os.Exit(1)
	}

	catalogService, err := catalog.NewService(catalog.NewRepository(dbClient.DB()))
	if err != nil {
		logg.Error(context.Background(), "failed to create catalog service", err)
		os.Exit(1)
	}

	userService, err := users.NewService(users.NewRepository(dbClient.DB()))
	if err != nil {
		logg.Error(context.Background(), "failed to create user service", err)
		os.Exit(1)
	}

	pricingRepo := pricing.NewRepository(dbClient.DB())
	pricingService, err := pricing.NewService(pricingRepo, cfg.Checkout)
	if err != nil {
		logg.Error(context.Background(), "failed to create pricing service", err)
		os.Exit(1)
	}

	pricingAdmin, err := pricing.NewAdmin(pricingRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create pricing admin", err)
		os.Exit(1)
	}

	cartService, err := cart.NewService(
		cart.NewRepository(dbClient.DB()),
		dbClient,
		catalog.NewRepository(dbClient.DB()),
		pricingService,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create cart service", err)
		os.Exit(1)
	}

	orderService, err := orders.NewService(orders.NewRepository(dbClient.DB()))
	if err != nil {
		logg.Error(context.Background(), "failed to create order service", err)
		os.Exit(1)
	}

	paymentService, err := payments.NewService(payments.NewStripeClient(stripeClient), logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create payment service", err)
		os.Exit(1)
	}

	paymentPoller, err := payments.NewPoller(paymentService, cfg.Checkout.PaymentPollInterval, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create payment poller", err)
		os.Exit(1)
	}

	checkoutService, err := checkoutsvc.NewService(checkoutsvc.ServiceParams{
		Repo:    checkoutsvc.NewRepository(dbClient.DB()),
		Orders:  orders.NewRepository(dbClient.DB()),
		Tx:      dbClient,
		Carts:   cartService,
		Pricing: pricingService,
		Logger:  logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create checkout service", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	checkoutWorkflow, err := checkoutsvc.NewWorkflow(checkoutsvc.WorkflowParams{
		Checkouts: checkoutService,
		Payments:  paymentService,
		Metrics:   metrics.NewWorkflowMetrics(registry),
		Logger:    logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create checkout workflow", err)
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
		Addr: addr,
		Handler: routes.NewRouter(routes.Deps{
			Config:           cfg,
			Logger:           logg,
			DB:               dbClient,
			Redis:            redisClient,
			Registry:         registry,
			AuthService:      authService,
			CatalogService:   catalogService,
			PricingAdmin:     pricingAdmin,
			CartService:      cartService,
			CheckoutService:  checkoutService,
			CheckoutWorkflow: checkoutWorkflow,
			PaymentService:   paymentService,
			PaymentPoller:    paymentPoller,
			OrderService:     orderService,
			UserService:      userService,
		}),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
