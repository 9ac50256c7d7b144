// Package handler exposes the HTTP API. Request parsing, validation, and
// error-to-status mapping live here; business rules stay in the domain
// services.
package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/Prathap331/GB-Backend/internal/auth"
	"github.com/Prathap331/GB-Backend/internal/domain/catalog"
	"github.com/Prathap331/GB-Backend/internal/domain/delivery"
	"github.com/Prathap331/GB-Backend/internal/domain/order"
	"github.com/Prathap331/GB-Backend/internal/domain/pricing"
	"github.com/Prathap331/GB-Backend/internal/domain/profile"
	"github.com/Prathap331/GB-Backend/internal/supplier"
)

// OrderService is the order orchestration surface the handler depends on.
type OrderService interface {
	PreviewPricing(ctx context.Context, items []order.LineItemRequest, method pricing.PaymentMethod) (*pricing.Result, error)
	CreateOrder(ctx context.Context, user uuid.UUID, email string, req order.CreateRequest) (*order.CreateResult, error)
	GetOrder(ctx context.Context, user uuid.UUID, orderID int64) (*order.Order, error)
	ListOrders(ctx context.Context, user uuid.UUID) ([]order.Order, error)
	SetDeliveryOptOut(ctx context.Context, user uuid.UUID, orderID int64, optOut bool) (*order.Order, error)
	VerifyPayment(ctx context.Context, user uuid.UUID, req order.VerifyRequest) error
}

// CatalogStore is the catalog surface for product endpoints: public reads
// plus the authenticated partial update.
type CatalogStore interface {
	ListProducts(ctx context.Context) ([]catalog.Product, error)
	GetProduct(ctx context.Context, id int64) (*catalog.Product, error)
	ListProductsByBase(ctx context.Context, baseProductID int64) ([]catalog.Product, error)
	UpdateProduct(ctx context.Context, id int64, upd catalog.ProductUpdate) (*catalog.Product, error)
}

// DeliveryPartnerLister lists the courier directory.
type DeliveryPartnerLister interface {
	ListPartners(ctx context.Context) ([]delivery.Partner, error)
}

// ProfileStore is the profile surface for the /profiles endpoints.
type ProfileStore interface {
	Get(ctx context.Context, id uuid.UUID) (*profile.Profile, error)
	Create(ctx context.Context, p *profile.Profile) error
	Update(ctx context.Context, p *profile.Profile) error
}

// SupplierSyncer triggers a catalog sync for one supplier.
type SupplierSyncer interface {
	Sync(ctx context.Context, supplierID string) (*supplier.Result, error)
}

// InvoiceRenderer renders a paid order as a PDF.
type InvoiceRenderer interface {
	Render(o *order.Order, customerName string) ([]byte, error)
}

// Handler wires the API routes to the domain services.
type Handler struct {
	orders   OrderService
	catalog  CatalogStore
	profiles ProfileStore
	syncer   SupplierSyncer
	invoices InvoiceRenderer
	partners DeliveryPartnerLister

	validate   *validator.Validate
	syncSecret string
}

// NewHandler constructs a Handler with the required domain dependencies.
func NewHandler(
	orders OrderService,
	cat CatalogStore,
	profiles ProfileStore,
	syncer SupplierSyncer,
	invoices InvoiceRenderer,
	partners DeliveryPartnerLister,
	syncSecret string,
) *Handler {
	return &Handler{
		orders:     orders,
		catalog:    cat,
		profiles:   profiles,
		syncer:     syncer,
		invoices:   invoices,
		partners:   partners,
		validate:   validator.New(),
		syncSecret: syncSecret,
	}
}

// Routes mounts the API on a chi router. The verifier guards every route
// except the public product listing, the pricing preview, and the sync
// webhook, which carries its own shared-secret check.
func (h *Handler) Routes(verifier auth.Verifier) chi.Router {
	r := chi.NewRouter()

	r.Route("/api", func(r chi.Router) {
		// Public surface.
		r.Get("/products", h.listProducts)
		r.Get("/products/{id}", h.getProduct)
		r.Get("/products/base/{id}", h.listProductsByBase)
		r.Post("/orders/price-preview", h.previewPricing)
		r.Post("/sync/supplier/{id}", h.syncSupplier)

		// Authenticated surface.
		r.Group(func(r chi.Router) {
			r.Use(auth.Middleware(verifier))

			r.Put("/products/{id}", h.updateProduct)
			r.Get("/delivery-partners", h.listDeliveryPartners)
			r.Post("/orders", h.createOrder)
			r.Get("/orders", h.listOrders)
			r.Get("/orders/{id}", h.getOrder)
			r.Put("/orders/{id}", h.updateOrder)
			r.Get("/orders/{id}/invoice", h.getInvoice)
			r.Post("/payment/verify", h.verifyPayment)
			r.Get("/profiles/me", h.getProfile)
			r.Put("/profiles/me", h.updateProfile)
		})
	})

	return r
}

func orderIDParam(r *http.Request) (int64, bool) {
	id, err := parseID(chi.URLParam(r, "id"))
	return id, err == nil
}
