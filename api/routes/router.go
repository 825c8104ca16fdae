package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/boxport/boxport-backend/api/controllers"
	"github.com/boxport/boxport-backend/api/middleware"
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
	"github.com/boxport/boxport-backend/pkg/redis"
)

// Deps collects everything the HTTP surface needs. The struct keeps main's
// wiring readable as the service count grows.
type Deps struct {
	Config           *config.Config
	Logger           *logger.Logger
	DB               *db.Client
	Redis            *redis.Client
	Registry         *prometheus.Registry
	AuthService      auth.Service
	CatalogService   *catalog.Service
	PricingAdmin     *pricing.Admin
	CartService      *cart.Service
	CheckoutService  *checkoutsvc.Service
	CheckoutWorkflow *checkoutsvc.Workflow
	PaymentService   *payments.Service
	PaymentPoller    *payments.Poller
	OrderService     *orders.Service
	UserService      *users.Service
}

func NewRouter(d Deps) http.Handler {
	cfg := d.Config
	logg := d.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.App),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)
	registerPolicy := middleware.NewAuthRateLimitPolicy(
		"register",
		cfg.AuthRateLimit.RegisterWindow,
		cfg.AuthRateLimit.RegisterIPLimit,
		cfg.AuthRateLimit.RegisterEmailLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, d.DB, d.Redis))
	})

	if d.Registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(d.Registry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(loginPolicy, d.Redis, logg)).Post("/login", controllers.AuthLogin(d.AuthService, logg))
		r.With(
			middleware.AuthRateLimit(registerPolicy, d.Redis, logg),
			middleware.Idempotency(d.Redis, logg),
		).Post("/register", controllers.AuthRegister(d.AuthService, logg))
		r.Post("/guest", controllers.AuthGuest(d.AuthService, logg))
	})

	// Storefront browsing needs no identity at all.
	r.Route("/api/products", func(r chi.Router) {
		r.Get("/", controllers.ListProducts(d.CatalogService, logg))
		r.Get("/{id}", controllers.GetProduct(d.CatalogService, logg))
	})
	r.Get("/api/categories", controllers.ListCategories(d.CatalogService, logg))

	// Shopper routes accept either a logged-in user or a guest id header.
	r.Group(func(r chi.Router) {
		r.Use(middleware.OptionalAuth(cfg.JWT, logg))
		r.Use(middleware.ResolveOwner(logg))
		r.Use(middleware.Idempotency(d.Redis, logg))

		r.Route("/api/cart", func(r chi.Router) {
			r.Get("/", controllers.CartFetch(d.CartService, logg))
			r.Post("/", controllers.CartAddItem(d.CartService, logg))
			r.Put("/{productId}", controllers.CartUpdateItem(d.CartService, logg))
			r.Delete("/{productId}", controllers.CartRemoveItem(d.CartService, logg))
			r.Delete("/", controllers.CartClear(d.CartService, logg))
		})

		r.Route("/api/checkout", func(r chi.Router) {
			r.Post("/", controllers.CheckoutCreate(d.CheckoutService, logg))
			r.Post("/submit", controllers.CheckoutSubmit(d.CheckoutWorkflow, logg))
			r.Get("/{id}", controllers.CheckoutGet(d.CheckoutService, logg))
			r.Put("/{id}/pay", controllers.CheckoutPay(d.CheckoutService, logg))
			r.Post("/{id}/finalize", controllers.CheckoutFinalize(d.CheckoutService, logg))
		})

		r.Route("/api/stripe", func(r chi.Router) {
			r.Post("/create-payment-intent", controllers.CreatePaymentIntent(d.PaymentService, logg))
			r.Post("/confirm-payment", controllers.ConfirmPayment(d.PaymentService, logg))
			r.Get("/payment-status/{id}", controllers.PaymentStatus(d.PaymentService, d.PaymentPoller, logg))
			r.Post("/cancel-payment", controllers.CancelPayment(d.PaymentService, logg))
		})

		r.Route("/api/orders", func(r chi.Router) {
			r.Get("/", controllers.ListMyOrders(d.OrderService, logg))
			r.Get("/{id}", controllers.GetMyOrder(d.OrderService, logg))
		})
	})

	r.Route("/api/admin", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Use(middleware.RequireRole("admin", logg))

		r.Route("/products", func(r chi.Router) {
			r.Get("/", controllers.AdminListProducts(d.CatalogService, logg))
			r.Post("/", controllers.AdminCreateProduct(d.CatalogService, logg))
			r.Get("/{id}", controllers.AdminGetProduct(d.CatalogService, logg))
			r.Put("/{id}", controllers.AdminUpdateProduct(d.CatalogService, logg))
			r.Delete("/{id}", controllers.AdminDeleteProduct(d.CatalogService, logg))

			r.Route("/{id}/prices", func(r chi.Router) {
				r.Get("/", controllers.AdminListPrices(d.PricingAdmin, logg))
				r.Put("/", controllers.AdminUpsertPrice(d.PricingAdmin, logg))
				r.Delete("/{country}", controllers.AdminDeletePrice(d.PricingAdmin, logg))
			})
		})

		r.Route("/categories", func(r chi.Router) {
			r.Get("/", controllers.ListCategories(d.CatalogService, logg))
			r.Post("/", controllers.AdminCreateCategory(d.CatalogService, logg))
			r.Put("/{id}", controllers.AdminUpdateCategory(d.CatalogService, logg))
			r.Delete("/{id}", controllers.AdminDeleteCategory(d.CatalogService, logg))
		})

		r.Route("/users", func(r chi.Router) {
			r.Get("/", controllers.AdminListUsers(d.UserService, logg))
			r.Get("/{id}", controllers.AdminGetUser(d.UserService, logg))
			r.Put("/{id}", controllers.AdminUpdateUser(d.UserService, logg))
			r.Delete("/{id}", controllers.AdminDeleteUser(d.UserService, logg))
		})

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", controllers.AdminListOrders(d.OrderService, logg))
			r.Get("/{id}", controllers.AdminGetOrder(d.OrderService, logg))
			r.Put("/{id}/status", controllers.AdminUpdateOrderStatus(d.OrderService, logg))
			r.Delete("/{id}", controllers.AdminDeleteOrder(d.OrderService, logg))
		})
	})

	return r
}
