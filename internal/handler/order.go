package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/Prathap331/GB-Backend/internal/auth"
	"github.com/Prathap331/GB-Backend/internal/domain/order"
	"github.com/Prathap331/GB-Backend/internal/domain/pricing"
)

type lineItemReq struct {
	VariantID int64 `json:"variant_id" validate:"required,gt=0"`
	Quantity  int   `json:"quantity" validate:"required,gt=0"`
}

type previewReq struct {
	Items         []lineItemReq `json:"items" validate:"required,min=1,dive"`
	PaymentMethod string        `json:"payment_method" validate:"required,oneof=COD Online"`
}

type createOrderReq struct {
	Items          []lineItemReq `json:"items" validate:"required,min=1,dive"`
	PaymentMethod  string        `json:"payment_method" validate:"required,oneof=COD Online"`
	OptOutDelivery bool          `json:"opt_out_delivery"`
}

type updateOrderReq struct {
	OptOutDelivery *bool `json:"opt_out_delivery" validate:"required"`
}

type verifyPaymentReq struct {
	OrderID           int64  `json:"order_id" validate:"required,gt=0"`
	RazorpayOrderID   string `json:"razorpay_order_id" validate:"required"`
	RazorpayPaymentID string `json:"razorpay_payment_id" validate:"required"`
	RazorpaySignature string `json:"razorpay_signature" validate:"required"`
}

type brandBreakdownResp struct {
	BrandID  int64  `json:"brand_id"`
	Quantity int    `json:"quantity"`
	Subtotal string `json:"subtotal"`
	Discount string `json:"discount"`
	OfferID  *int64 `json:"offer_id,omitempty"`
}

type pricingResp struct {
	Subtotal         string               `json:"subtotal"`
	TotalDiscount    string               `json:"total_discount"`
	GSTAmount        string               `json:"gst_amount"`
	ShippingFee      string               `json:"shipping_fee"`
	CODFee           string               `json:"cod_fee"`
	TotalAmount      string               `json:"total_amount"`
	LuckyNumberCount int                  `json:"lucky_number_count"`
	Brands           []brandBreakdownResp `json:"brands"`
}

type orderItemResp struct {
	ProductID    int64  `json:"product_id"`
	VariantID    int64  `json:"variant_id"`
	ProductName  string `json:"product_name"`
	Category     string `json:"category"`
	ImageURL     string `json:"image_url"`
	Size         string `json:"size"`
	Color        string `json:"color"`
	Quantity     int    `json:"quantity"`
	PricePerUnit string `json:"price_per_unit"`
	Subtotal     string `json:"subtotal"`
}

type orderResp struct {
	OrderID         int64           `json:"order_id"`
	Subtotal        string          `json:"subtotal"`
	TotalDiscount   string          `json:"total_discount"`
	GSTAmount       string          `json:"gst_amount"`
	ShippingFee     string          `json:"shipping_fee"`
	CODFee          string          `json:"cod_fee"`
	TotalAmount     string          `json:"total_amount"`
	PaymentMethod   string          `json:"payment_method"`
	PaymentStatus   string          `json:"payment_status"`
	OrderStatus     string          `json:"order_status"`
	DeliveryAddress string          `json:"delivery_address"`
	ContestID       string          `json:"contest_id"`
	LuckyNumbers    []string        `json:"lucky_numbers"`
	OptOutDelivery  bool            `json:"opt_out_delivery"`
	CreatedAt       string          `json:"created_at"`
	Items           []orderItemResp `json:"items"`
}

type createOrderResp struct {
	Order           orderResp   `json:"order"`
	Pricing         pricingResp `json:"pricing"`
	RazorpayOrderID string      `json:"razorpay_order_id,omitempty"`
	RazorpayKeyID   string      `json:"razorpay_key_id,omitempty"`
}

func (h *Handler) previewPricing(w http.ResponseWriter, r *http.Request) {
	var req previewReq
	if err := h.decodeJSON(r, &req); err != nil {
		writeErrorMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	res, err := h.orders.PreviewPricing(r.Context(), toLineItems(req.Items), pricing.PaymentMethod(req.PaymentMethod))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toPricingResp(res))
}

func (h *Handler) createOrder(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFromContext(r.Context())

	var req createOrderReq
	if err := h.decodeJSON(r, &req); err != nil {
		writeErrorMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	res, err := h.orders.CreateOrder(r.Context(), user.ID, user.Email, order.CreateRequest{
		Items:          toLineItems(req.Items),
		PaymentMethod:  pricing.PaymentMethod(req.PaymentMethod),
		OptOutDelivery: req.OptOutDelivery,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, createOrderResp{
		Order:           toOrderResp(res.Order),
		Pricing:         toPricingResp(res.Pricing),
		RazorpayOrderID: res.Order.RazorpayOrderID,
		RazorpayKeyID:   res.RazorpayKeyID,
	})
}

func (h *Handler) listOrders(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFromContext(r.Context())

	orders, err := h.orders.ListOrders(r.Context(), user.ID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	resp := make([]orderResp, len(orders))
	for i := range orders {
		resp[i] = toOrderResp(&orders[i])
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) getOrder(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFromContext(r.Context())
	id, ok := orderIDParam(r)
	if !ok {
		writeErrorMessage(w, http.StatusBadRequest, "invalid order id")
		return
	}

	o, err := h.orders.GetOrder(r.Context(), user.ID, id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderResp(o))
}

func (h *Handler) updateOrder(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFromContext(r.Context())
	id, ok := orderIDParam(r)
	if !ok {
		writeErrorMessage(w, http.StatusBadRequest, "invalid order id")
		return
	}

	var req updateOrderReq
	if err := h.decodeJSON(r, &req); err != nil {
		writeErrorMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	o, err := h.orders.SetDeliveryOptOut(r.Context(), user.ID, id, *req.OptOutDelivery)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderResp(o))
}

func (h *Handler) verifyPayment(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFromContext(r.Context())

	var req verifyPaymentReq
	if err := h.decodeJSON(r, &req); err != nil {
		writeErrorMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	err := h.orders.VerifyPayment(r.Context(), user.ID, order.VerifyRequest{
		OrderID:           req.OrderID,
		RazorpayOrderID:   req.RazorpayOrderID,
		RazorpayPaymentID: req.RazorpayPaymentID,
		Signature:         req.RazorpaySignature,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "Payment verified successfully"})
}

func (h *Handler) getInvoice(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFromContext(r.Context())
	id, ok := orderIDParam(r)
	if !ok {
		writeErrorMessage(w, http.StatusBadRequest, "invalid order id")
		return
	}

	o, err := h.orders.GetOrder(r.Context(), user.ID, id)
	if err != nil {
		writeError(w, r, err)
		return
	}

	name := ""
	if p, err := h.profiles.Get(r.Context(), user.ID); err == nil {
		name = p.FullName
	}

	pdf, err := h.invoices.Render(o, name)
	if err != nil {
		writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="invoice-`+strconv.FormatInt(id, 10)+`.pdf"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(pdf)
}

func toLineItems(items []lineItemReq) []order.LineItemRequest {
	out := make([]order.LineItemRequest, len(items))
	for i, it := range items {
		out[i] = order.LineItemRequest{VariantID: it.VariantID, Quantity: it.Quantity}
	}
	return out
}

func toPricingResp(res *pricing.Result) pricingResp {
	brands := make([]brandBreakdownResp, len(res.Brands))
	for i, b := range res.Brands {
		brands[i] = brandBreakdownResp{
			BrandID:  b.BrandID,
			Quantity: b.Quantity,
			Subtotal: b.Subtotal.StringFixed(2),
			Discount: b.Discount.StringFixed(2),
		}
		if b.Offer != nil {
			id := b.Offer.ID
			brands[i].OfferID = &id
		}
	}
	return pricingResp{
		Subtotal:         res.Subtotal.StringFixed(2),
		TotalDiscount:    res.TotalDiscount.StringFixed(2),
		GSTAmount:        res.GSTAmount.StringFixed(2),
		ShippingFee:      res.ShippingFee.StringFixed(2),
		CODFee:           res.CODFee.StringFixed(2),
		TotalAmount:      res.GrandTotal.StringFixed(2),
		LuckyNumberCount: order.LuckyNumberCount(res.GrandTotal),
		Brands:           brands,
	}
}

func toOrderResp(o *order.Order) orderResp {
	items := make([]orderItemResp, len(o.Items))
	for i, it := range o.Items {
		items[i] = orderItemResp{
			ProductID:    it.ProductID,
			VariantID:    it.VariantID,
			ProductName:  it.ProductName,
			Category:     it.Category,
			ImageURL:     it.ImageURL,
			Size:         it.Size,
			Color:        it.Color,
			Quantity:     it.Quantity,
			PricePerUnit: it.PricePerUnit.StringFixed(2),
			Subtotal:     it.Subtotal.StringFixed(2),
		}
	}

	lucky := o.LuckyNumbers
	if lucky == nil {
		lucky = []string{}
	}

	return orderResp{
		OrderID:         o.ID,
		Subtotal:        o.Subtotal.StringFixed(2),
		TotalDiscount:   o.TotalDiscount.StringFixed(2),
		GSTAmount:       o.GSTAmount.StringFixed(2),
		ShippingFee:     o.ShippingFee.StringFixed(2),
		CODFee:          o.CODFee.StringFixed(2),
		TotalAmount:     o.TotalAmount.StringFixed(2),
		PaymentMethod:   string(o.PaymentMethod),
		PaymentStatus:   string(o.PaymentStatus),
		OrderStatus:     string(o.Status),
		DeliveryAddress: o.DeliveryAddress,
		ContestID:       o.ContestID,
		LuckyNumbers:    lucky,
		OptOutDelivery:  o.OptOutDelivery,
		CreatedAt:       o.CreatedAt.Format(time.RFC3339),
		Items:           items,
	}
}
