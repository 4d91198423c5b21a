package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/gigamart/commerce-engine/internal/domain/checkout"
	"github.com/gigamart/commerce-engine/internal/domain/order"
	"github.com/gigamart/commerce-engine/internal/domain/payment"
	"github.com/gigamart/commerce-engine/internal/domain/product"
)

// errorResponse is the uniform error body.
type errorResponse struct {
	Code    int               `json:"code"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, errorResponse{Code: status, Message: message})
}

func respondFieldErrors(w http.ResponseWriter, fields map[string]string) {
	respondJSON(w, http.StatusUnprocessableEntity, errorResponse{
		Code:    http.StatusUnprocessableEntity,
		Message: "validation failed",
		Fields:  fields,
	})
}

// respondDomainError translates the domain error taxonomy to HTTP statuses:
// field validation -> 422 with a field map, not-found -> 404, invariant
// violations and wrong-state input -> 409, submission failure -> 502 with a
// retry hint. Anything unrecognized is logged and returned as 500.
func respondDomainError(w http.ResponseWriter, r *http.Request, err error) {
	var shippingErrs order.FieldErrors
	if errors.As(err, &shippingErrs) {
		respondFieldErrors(w, shippingErrs)
		return
	}
	var paymentErrs payment.FieldErrors
	if errors.As(err, &paymentErrs) {
		respondFieldErrors(w, paymentErrs)
		return
	}

	switch {
	case errors.Is(err, product.ErrNotFound):
		respondError(w, http.StatusNotFound, "product not found")
	case errors.Is(err, order.ErrNotFound):
		respondError(w, http.StatusNotFound, "order not found")
	case errors.Is(err, checkout.ErrEmptyCart):
		respondError(w, http.StatusConflict, "cart is empty")
	default:
		var tErr *checkout.TransitionError
		if errors.As(err, &tErr) {
			respondError(w, http.StatusConflict, tErr.Error())
			return
		}
		var itErr *order.InvalidTransitionError
		if errors.As(err, &itErr) {
			respondError(w, http.StatusConflict, itErr.Error())
			return
		}

		zctx.From(r.Context()).Error("request failed", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "internal error")
	}
}
