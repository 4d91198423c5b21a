package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/gigamart/commerce-engine/internal/domain/checkout"
	"github.com/gigamart/commerce-engine/internal/domain/order"
	"github.com/gigamart/commerce-engine/internal/domain/payment"
)

// checkoutResponse reports the session's progress.
type checkoutResponse struct {
	CheckoutID string           `json:"checkoutId"`
	State      checkout.State   `json:"state"`
	Payment    *payment.Summary `json:"payment,omitempty"`
	OrderID    string           `json:"orderId,omitempty"`
}

type paymentRequest struct {
	Method         string `json:"method"`
	CardholderName string `json:"cardholderName"`
	CardNumber     string `json:"cardNumber"`
	Expiry         string `json:"expiryDate"`
	CVV            string `json:"cvv"`
}

func (h *Handler) checkoutView(id string, f *checkout.Flow) checkoutResponse {
	resp := checkoutResponse{
		CheckoutID: id,
		State:      f.State(),
		OrderID:    f.OrderID(),
	}
	if s := f.PaymentSummary(); f.State() == checkout.StateReview && s.Method != "" {
		resp.Payment = &s
	}
	return resp
}

// beginCheckout opens a new checkout session over the current cart,
// superseding any earlier session still in flight.
func (h *Handler) beginCheckout(w http.ResponseWriter, r *http.Request) {
	flow, err := checkout.NewFlow(h.cart, h.validator, h.orderSvc, h.pricingCfg)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	id := h.sessions.replace(flow)
	respondJSON(w, http.StatusCreated, h.checkoutView(id, flow))
}

func (h *Handler) getCheckout(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "checkoutID")
	flow, ok := h.sessions.get(id)
	if !ok {
		respondError(w, http.StatusNotFound, "checkout session not found")
		return
	}
	respondJSON(w, http.StatusOK, h.checkoutView(id, flow))
}

func (h *Handler) checkoutShipping(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "checkoutID")
	flow, ok := h.sessions.get(id)
	if !ok {
		respondError(w, http.StatusNotFound, "checkout session not found")
		return
	}

	var profile order.ShippingProfile
	if err := json.NewDecoder(r.Body).Decode(&profile); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if err := flow.SubmitShipping(profile); err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, h.checkoutView(id, flow))
}

func (h *Handler) checkoutPayment(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "checkoutID")
	flow, ok := h.sessions.get(id)
	if !ok {
		respondError(w, http.StatusNotFound, "checkout session not found")
		return
	}

	var req paymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	inst := payment.Instrument{
		Method:         payment.Method(req.Method),
		CardholderName: req.CardholderName,
		CardNumber:     req.CardNumber,
		Expiry:         req.Expiry,
		CVV:            req.CVV,
	}
	if inst.Method == "" {
		inst.Method = payment.MethodCard
	}

	if err := flow.SubmitPayment(inst); err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, h.checkoutView(id, flow))
}

func (h *Handler) checkoutBack(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "checkoutID")
	flow, ok := h.sessions.get(id)
	if !ok {
		respondError(w, http.StatusNotFound, "checkout session not found")
		return
	}

	if err := flow.Back(); err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, h.checkoutView(id, flow))
}

// checkoutSubmit confirms the reviewed order. On success the session is
// retired and the confirmation reference returned; on failure the session
// stays alive in the failed state so the client can retry.
func (h *Handler) checkoutSubmit(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "checkoutID")
	flow, ok := h.sessions.get(id)
	if !ok {
		respondError(w, http.StatusNotFound, "checkout session not found")
		return
	}

	o, err := flow.Confirm(r.Context())
	if err != nil {
		// A placed order with a trailing error means only the cart clear
		// failed; the order stands.
		if o == nil {
			if flow.State() == checkout.StateFailed {
				respondJSON(w, http.StatusBadGateway, errorResponse{
					Code:    http.StatusBadGateway,
					Message: "order submission failed, retry available",
				})
				return
			}
			respondDomainError(w, r, err)
			return
		}
		zctx.From(r.Context()).Warn("cart not cleared after order", zap.Error(err))
	}

	h.sessions.remove(id)
	respondJSON(w, http.StatusCreated, orderDTOFrom(o))
}

func (h *Handler) checkoutRetry(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "checkoutID")
	flow, ok := h.sessions.get(id)
	if !ok {
		respondError(w, http.StatusNotFound, "checkout session not found")
		return
	}

	if err := flow.Retry(); err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, h.checkoutView(id, flow))
}
