package handler

import (
	"crypto/subtle"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/Prathap331/GB-Backend/internal/domain/catalog"
)

type productResp struct {
	ProductID     int64  `json:"product_id"`
	BaseProductID *int64 `json:"base_product_id,omitempty"`
	BrandID       int64  `json:"brand_id"`
	BrandName     string `json:"brand_name"`
	ProductName   string `json:"product_name"`
	Category      string `json:"category"`
	Description   string `json:"description"`
	Price         string `json:"price,omitempty"`
	MRP           string `json:"mrp,omitempty"`
	ImageURL      string `json:"image_url"`
	IsActive      bool   `json:"is_active"`
}

func (h *Handler) listProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.catalog.ListProducts(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toProductResps(products))
}

func (h *Handler) getProduct(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		writeErrorMessage(w, http.StatusBadRequest, "invalid product id")
		return
	}

	p, err := h.catalog.GetProduct(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toProductResp(*p))
}

func (h *Handler) listProductsByBase(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		writeErrorMessage(w, http.StatusBadRequest, "invalid base product id")
		return
	}

	products, err := h.catalog.ListProductsByBase(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toProductResps(products))
}

type updateProductReq struct {
	ProductName *string          `json:"product_name" validate:"omitempty,min=1,max=200"`
	Category    *string          `json:"category" validate:"omitempty,max=100"`
	Description *string          `json:"description"`
	Price       *decimal.Decimal `json:"price"`
	MRP         *decimal.Decimal `json:"mrp"`
	ImageURL    *string          `json:"image_url" validate:"omitempty,max=2000"`
	IsActive    *bool            `json:"is_active"`
}

// updateProduct applies a partial edit. Absent fields keep their current
// values; a body with no recognized fields is rejected.
func (h *Handler) updateProduct(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		writeErrorMessage(w, http.StatusBadRequest, "invalid product id")
		return
	}

	var req updateProductReq
	if err := h.decodeJSON(r, &req); err != nil {
		writeErrorMessage(w, http.StatusBadRequest, err.Error())
		return
	}
	if (req.Price != nil && req.Price.IsNegative()) || (req.MRP != nil && req.MRP.IsNegative()) {
		writeErrorMessage(w, http.StatusBadRequest, "price must not be negative")
		return
	}

	upd := catalog.ProductUpdate{
		Name:        req.ProductName,
		Category:    req.Category,
		Description: req.Description,
		Price:       req.Price,
		MRP:         req.MRP,
		ImageURL:    req.ImageURL,
		IsActive:    req.IsActive,
	}
	if upd.Empty() {
		writeErrorMessage(w, http.StatusBadRequest, "no update data provided")
		return
	}

	p, err := h.catalog.UpdateProduct(r.Context(), id, upd)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toProductResp(*p))
}

// syncSupplier is a webhook, not a user endpoint. It authenticates with a
// shared secret compared in constant time.
func (h *Handler) syncSupplier(w http.ResponseWriter, r *http.Request) {
	secret := r.Header.Get("X-Sync-Secret")
	if h.syncSecret == "" || subtle.ConstantTimeCompare([]byte(secret), []byte(h.syncSecret)) != 1 {
		writeErrorMessage(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	res, err := h.syncer.Sync(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{
		"fetched":  res.Fetched,
		"upserted": res.Upserted,
		"failed":   res.Failed,
	})
}

func toProductResps(products []catalog.Product) []productResp {
	out := make([]productResp, len(products))
	for i, p := range products {
		out[i] = toProductResp(p)
	}
	return out
}

func toProductResp(p catalog.Product) productResp {
	resp := productResp{
		ProductID:     p.ID,
		BaseProductID: p.BaseProductID,
		BrandID:       p.BrandID,
		BrandName:     p.BrandName,
		ProductName:   p.Name,
		Category:      p.Category,
		Description:   p.Description,
		ImageURL:      p.ImageURL,
		IsActive:      p.IsActive,
	}
	if p.Price != nil {
		resp.Price = p.Price.StringFixed(2)
	}
	if p.MRP != nil {
		resp.MRP = p.MRP.StringFixed(2)
	}
	return resp
}
