package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/countryharvest/storefront-backend/api/controllers"
	"github.com/countryharvest/storefront-backend/api/middleware"
	"github.com/countryharvest/storefront-backend/internal/cart"
	"github.com/countryharvest/storefront-backend/internal/catalog"
	checkoutsvc "github.com/countryharvest/storefront-backend/internal/checkout"
	"github.com/countryharvest/storefront-backend/internal/coupons"
	"github.com/countryharvest/storefront-backend/internal/orders"
	"github.com/countryharvest/storefront-backend/internal/session"
	"github.com/countryharvest/storefront-backend/internal/shipping"
	"github.com/countryharvest/storefront-backend/internal/tax"
	"github.com/countryharvest/storefront-backend/pkg/config"
	"github.com/countryharvest/storefront-backend/pkg/logger"
	"github.com/countryharvest/storefront-backend/pkg/metrics"
	"github.com/countryharvest/storefront-backend/pkg/redis"
)

// Deps bundles everything the router wires into handlers.
type Deps struct {
	Config      *config.Config
	Logger      *logger.Logger
	Redis       *redis.Client
	Sessions    *session.Manager
	Gatherer    prometheus.Gatherer
	HTTPMetrics *metrics.HTTPMetrics

	// HealthPingers feeds /health/ready; keys name the dependency.
	HealthPingers map[string]controllers.Pinger

	Cart     cart.Service
	Catalog  catalog.Service
	Coupons  coupons.Service
	Orders   orders.Service
	Checkout checkoutsvc.Service
	Shipping shipping.Service
	Tax      tax.Service
}

func NewRouter(deps Deps) http.Handler {
	r := chi.NewRouter()

	// Keep the interface nil when no client is wired so the idempotency
	// middleware can detect the absence.
	var idemStore redis.IdempotencyStore
	if deps.Redis != nil {
		idemStore = deps.Redis
	}

	r.Use(
		middleware.Recoverer(deps.Logger),
		middleware.RequestID(deps.Logger),
		middleware.Logging(deps.Logger),
		middleware.HTTPMetrics(deps.HTTPMetrics),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(deps.Config))
		r.Get("/ready", controllers.HealthReady(deps.Config, deps.Logger, deps.HealthPingers))
	})

	if deps.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Identity(deps.Logger))
		r.Use(middleware.CartSession(deps.Sessions, deps.Logger))
		r.Use(middleware.Idempotency(idemStore, deps.Logger))

		r.Route("/products", func(r chi.Router) {
			r.Get("/", controllers.ProductList(deps.Catalog, deps.Logger))
			r.Get("/{productRef}", controllers.ProductDetail(deps.Catalog, deps.Logger))
		})

		r.Get("/shipping/methods", controllers.ShippingMethods(deps.Shipping, deps.Logger))
		r.Post("/tax/quote", controllers.TaxQuote(deps.Tax, deps.Logger))

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", controllers.CartFetch(deps.Cart, deps.Logger))
			r.Post("/items", controllers.CartAddItem(deps.Cart, deps.Logger))
			r.Patch("/items/{itemId}", controllers.CartUpdateItem(deps.Cart, deps.Logger))
			r.Delete("/items/{itemId}", controllers.CartRemoveItem(deps.Cart, deps.Logger))
			r.Delete("/", controllers.CartClear(deps.Cart, deps.Logger))
			r.Post("/coupon", controllers.CartApplyCoupon(deps.Cart, deps.Logger))
			r.Delete("/coupon", controllers.CartRemoveCoupon(deps.Cart, deps.Logger))
			r.Post("/merge", controllers.CartMerge(deps.Cart, deps.Sessions, deps.Logger))
		})

		r.Post("/checkout", controllers.Checkout(deps.Checkout, deps.Logger))

		r.Route("/orders", func(r chi.Router) {
			r.Use(middleware.RequireUser(deps.Logger))
			r.Get("/", controllers.OrderList(deps.Orders, deps.Logger))
			r.Get("/{orderId}", controllers.OrderDetail(deps.Orders, deps.Logger))
			r.Post("/{orderId}/cancel", controllers.OrderCancel(deps.Orders, deps.Logger))
		})
	})

	r.Route("/api/admin/v1", func(r chi.Router) {
		r.Use(middleware.Identity(deps.Logger))
		r.Use(middleware.RequireAdmin(deps.Logger))
		r.Use(middleware.Idempotency(idemStore, deps.Logger))

		r.Route("/products", func(r chi.Router) {
			r.Post("/", controllers.AdminCreateProduct(deps.Catalog, deps.Logger))
			r.Patch("/{productId}", controllers.AdminUpdateProduct(deps.Catalog, deps.Logger))
		})
		r.Route("/coupons", func(r chi.Router) {
			r.Post("/", controllers.AdminCouponCreate(deps.Coupons, deps.Logger))
			r.Get("/", controllers.AdminCouponList(deps.Coupons, deps.Logger))
			r.Delete("/{couponId}", controllers.AdminCouponDeactivate(deps.Coupons, deps.Logger))
		})
		r.Route("/orders", func(r chi.Router) {
			r.Get("/", controllers.AdminOrderList(deps.Orders, deps.Logger))
			r.Post("/{orderId}/status", controllers.AdminOrderUpdateStatus(deps.Orders, deps.Logger))
		})
	})

	return r
}
