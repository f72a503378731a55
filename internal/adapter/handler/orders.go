package handler

import (
	"net/http"
	"strings"

	"github.com/rl1809/storefront/internal/core/domain"
)

// PlaceOrderRequest takes either a free-text address or the checkout form
// fields. The free-text address wins when both are sent.
type PlaceOrderRequest struct {
	ShippingAddress string                  `json:"shippingAddress"`
	Shipping        *domain.ShippingDetails `json:"shipping"`
}

func (req PlaceOrderRequest) address() string {
	if strings.TrimSpace(req.ShippingAddress) == "" && req.Shipping != nil {
		return req.Shipping.Compose()
	}
	return req.ShippingAddress
}

type StatusRequest struct {
	Status domain.OrderStatus `json:"status"`
}

func (h *HTTPHandler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	var req PlaceOrderRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	detail, err := h.svc.Orders.PlaceOrder(r.Context(), PrincipalFrom(r.Context()), req.address())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeOK(w, http.StatusCreated, "order placed successfully", detail)
}

func (h *HTTPHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.svc.Orders.ListMine(r.Context(), PrincipalFrom(r.Context()))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, "", orders)
}

func (h *HTTPHandler) ListAllOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.svc.Orders.ListAll(r.Context(), PrincipalFrom(r.Context()))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, "", orders)
}

func (h *HTTPHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	detail, err := h.svc.Orders.Get(r.Context(), PrincipalFrom(r.Context()), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, "", detail)
}

func (h *HTTPHandler) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	var req StatusRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	order, err := h.svc.Orders.UpdateStatus(r.Context(), PrincipalFrom(r.Context()), id, req.Status)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, "order status updated", order)
}
