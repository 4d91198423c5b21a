// Package handler exposes the commerce engine over HTTP. Routing uses chi;
// business rules live in the domain packages and surface here only as DTO
// mapping and error taxonomy translation.
package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/gigamart/commerce-engine/internal/domain/cart"
	"github.com/gigamart/commerce-engine/internal/domain/order"
	"github.com/gigamart/commerce-engine/internal/domain/payment"
	"github.com/gigamart/commerce-engine/internal/domain/pricing"
	"github.com/gigamart/commerce-engine/internal/domain/product"
)

// Config holds non-dependency configuration for the Handler.
type Config struct {
	// ImageBaseURL is prepended to relative thumbnail paths in product
	// responses. When empty, paths are returned as stored.
	ImageBaseURL string
	// SessionTTL bounds how long an idle checkout session is kept.
	SessionTTL time.Duration
}

// Handler wires the storefront endpoints to the domain services.
type Handler struct {
	products   product.Repository
	orders     order.Repository
	orderSvc   *order.Service
	cart       *cart.Store
	validator  *payment.Validator
	pricingCfg pricing.Config
	sessions   *sessionRegistry

	imageBaseURL string
}

// New constructs a Handler with the required domain dependencies.
func New(
	cfg Config,
	products product.Repository,
	orders order.Repository,
	orderSvc *order.Service,
	cartStore *cart.Store,
	validator *payment.Validator,
	pricingCfg pricing.Config,
) *Handler {
	ttl := cfg.SessionTTL
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &Handler{
		products:     products,
		orders:       orders,
		orderSvc:     orderSvc,
		cart:         cartStore,
		validator:    validator,
		pricingCfg:   pricingCfg,
		sessions:     newSessionRegistry(ttl),
		imageBaseURL: cfg.ImageBaseURL,
	}
}

// Routes returns the API router.
func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()

	r.Route("/products", func(r chi.Router) {
		r.Get("/", h.listProducts)
		r.Get("/{productID}", h.getProduct)
	})
	r.Get("/categories", h.listCategories)

	r.Route("/cart", func(r chi.Router) {
		r.Get("/", h.getCart)
		r.Delete("/", h.clearCart)
		r.Post("/items", h.addCartItem)
		r.Patch("/items/{productID}", h.updateCartItem)
		r.Delete("/items/{productID}", h.removeCartItem)
	})

	r.Route("/checkout", func(r chi.Router) {
		r.Post("/", h.beginCheckout)
		r.Route("/{checkoutID}", func(r chi.Router) {
			r.Get("/", h.getCheckout)
			r.Post("/shipping", h.checkoutShipping)
			r.Post("/payment", h.checkoutPayment)
			r.Post("/back", h.checkoutBack)
			r.Post("/submit", h.checkoutSubmit)
			r.Post("/retry", h.checkoutRetry)
		})
	})

	r.Route("/orders", func(r chi.Router) {
		r.Get("/{orderID}", h.getOrder)
		r.Patch("/{orderID}/status", h.updateOrderStatus)
	})

	return r
}
