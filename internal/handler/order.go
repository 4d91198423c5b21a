package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/gigamart/commerce-engine/internal/domain/cart"
	"github.com/gigamart/commerce-engine/internal/domain/order"
	"github.com/gigamart/commerce-engine/internal/domain/payment"
	"github.com/gigamart/commerce-engine/internal/domain/pricing"
)

type orderDTO struct {
	ID        string                `json:"id"`
	Items     []cart.LineItem       `json:"items"`
	Shipping  order.ShippingProfile `json:"shipping"`
	Payment   payment.Summary       `json:"payment"`
	Pricing   pricing.Snapshot      `json:"pricing"`
	Status    order.Status          `json:"status"`
	CreatedAt time.Time             `json:"createdAt"`
}

func orderDTOFrom(o *order.Order) orderDTO {
	items := o.Items
	if items == nil {
		// Stored orders without line items serialize as "items": [], not null.
		items = []cart.LineItem{}
	}
	return orderDTO{
		ID:        o.ID,
		Items:     items,
		Shipping:  o.Shipping,
		Payment:   o.Payment,
		Pricing:   o.Pricing,
		Status:    o.Status,
		CreatedAt: o.CreatedAt,
	}
}

func (h *Handler) getOrder(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "orderID")

	o, err := h.orders.GetByID(r.Context(), id)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, orderDTOFrom(o))
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

func (h *Handler) updateOrderStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "orderID")

	var req updateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	status, ok := order.ParseStatus(req.Status)
	if !ok {
		respondError(w, http.StatusBadRequest, "unknown order status")
		return
	}

	if err := h.orderSvc.UpdateStatus(r.Context(), id, status); err != nil {
		respondDomainError(w, r, err)
		return
	}

	o, err := h.orders.GetByID(r.Context(), id)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, orderDTOFrom(o))
}
