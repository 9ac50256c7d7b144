package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/Prathap331/GB-Backend/internal/domain/catalog"
	"github.com/Prathap331/GB-Backend/internal/domain/order"
	"github.com/Prathap331/GB-Backend/internal/domain/profile"
	"github.com/Prathap331/GB-Backend/internal/payment"
	"github.com/Prathap331/GB-Backend/internal/supplier"
)

type errorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErrorMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Code: status, Message: msg})
}

// writeError maps domain errors to HTTP statuses. Typed errors carry their
// own client-facing message; anything unmapped is a 500 with a generic body.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		incomplete *order.IncompleteProfileError
		badQty     *order.InvalidQuantityError
		noVariant  *order.VariantNotFoundError
		noStock    *order.InsufficientStockError
		noPrice    *order.MissingPriceError
		inactive   *order.ProductInactiveError
	)

	switch {
	case errors.As(err, &incomplete):
		writeErrorMessage(w, http.StatusBadRequest, incomplete.Error())
	case errors.As(err, &badQty):
		writeErrorMessage(w, http.StatusBadRequest, badQty.Error())
	case errors.Is(err, order.ErrEmptyCart):
		writeErrorMessage(w, http.StatusBadRequest, "order must contain at least one item")
	case errors.Is(err, payment.ErrInvalidSignature):
		writeErrorMessage(w, http.StatusBadRequest, "payment verification failed")
	case errors.As(err, &noVariant):
		writeErrorMessage(w, http.StatusUnprocessableEntity, noVariant.Error())
	case errors.As(err, &noStock):
		writeErrorMessage(w, http.StatusUnprocessableEntity, noStock.Error())
	case errors.As(err, &noPrice):
		writeErrorMessage(w, http.StatusUnprocessableEntity, noPrice.Error())
	case errors.As(err, &inactive):
		writeErrorMessage(w, http.StatusUnprocessableEntity, inactive.Error())
	case errors.Is(err, order.ErrNotFound):
		writeErrorMessage(w, http.StatusNotFound, "order not found")
	case errors.Is(err, catalog.ErrProductNotFound):
		writeErrorMessage(w, http.StatusNotFound, "product not found")
	case errors.Is(err, profile.ErrNotFound):
		writeErrorMessage(w, http.StatusNotFound, "profile not found")
	case errors.Is(err, order.ErrInvoiceNotReady):
		writeErrorMessage(w, http.StatusConflict, "invoice is available after payment completes")
	case errors.Is(err, supplier.ErrUnknownSupplier):
		writeErrorMessage(w, http.StatusNotFound, "unknown supplier")
	default:
		zctx.From(r.Context()).Error("request failed",
			zap.String("path", r.URL.Path), zap.Error(err))
		writeErrorMessage(w, http.StatusInternalServerError, "internal server error")
	}
}

// decodeJSON parses and validates a request body.
func (h *Handler) decodeJSON(r *http.Request, dst any) error {
	if err := json.NewDecoder(http.MaxBytesReader(nil, r.Body, 1<<20)).Decode(dst); err != nil {
		return errors.Wrap(err, "invalid request body")
	}
	if err := h.validate.Struct(dst); err != nil {
		return errors.Wrap(err, "validation failed")
	}
	return nil
}

func parseID(s string) (int64, error) {
	return strconv.ParseInt(s, 10, 64)
}
