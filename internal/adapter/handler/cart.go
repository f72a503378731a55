package handler

import (
	"net/http"
)

type CartRequest struct {
	ProductID int64 `json:"productId"`
	Quantity  *int  `json:"quantity"`
}

type QuantityRequest struct {
	Quantity int `json:"quantity"`
}

func (h *HTTPHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	cart, err := h.svc.Carts.Get(r.Context(), PrincipalFrom(r.Context()))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, "", cart)
}

// AddToCart defaults to a single unit when quantity is omitted.
func (h *HTTPHandler) AddToCart(w http.ResponseWriter, r *http.Request) {
	var req CartRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	quantity := 1
	if req.Quantity != nil {
		quantity = *req.Quantity
	}

	item, err := h.svc.Carts.Add(r.Context(), PrincipalFrom(r.Context()), req.ProductID, quantity)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, "item added to cart", item)
}

func (h *HTTPHandler) UpdateCartItem(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	var req QuantityRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	item, err := h.svc.Carts.UpdateQuantity(r.Context(), PrincipalFrom(r.Context()), id, req.Quantity)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, "cart updated", item)
}

func (h *HTTPHandler) RemoveCartItem(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	if err := h.svc.Carts.Remove(r.Context(), PrincipalFrom(r.Context()), id); err != nil {
		h.writeError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, "item removed", nil)
}

func (h *HTTPHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Carts.Clear(r.Context(), PrincipalFrom(r.Context())); err != nil {
		h.writeError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, "cart cleared", nil)
}
