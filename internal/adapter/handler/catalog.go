package handler

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/rl1809/storefront/internal/core/domain"
	"github.com/rl1809/storefront/internal/core/service"
)

// ProductRequest serves both create and partial update. Price is in minor units.
type ProductRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Price       *int64  `json:"price"`
	Category    *string `json:"category"`
	ImageURL    *string `json:"imageUrl"`
	Unit        *string `json:"unit"`
	Stock       *int    `json:"stock"`
}

func deref[T any](v *T) T {
	var zero T
	if v == nil {
		return zero
	}
	return *v
}

func (p ProductRequest) create() domain.NewProduct {
	return domain.NewProduct{
		Name:        deref(p.Name),
		Description: deref(p.Description),
		Price:       deref(p.Price),
		Category:    deref(p.Category),
		ImageURL:    deref(p.ImageURL),
		Unit:        deref(p.Unit),
		Stock:       deref(p.Stock),
	}
}

func (p ProductRequest) update() domain.ProductUpdate {
	return domain.ProductUpdate{
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		Category:    p.Category,
		ImageURL:    p.ImageURL,
		Unit:        p.Unit,
		Stock:       p.Stock,
	}
}

func productFilter(r *http.Request) (service.ProductFilter, error) {
	q := r.URL.Query()
	f := service.ProductFilter{
		Category: q.Get("category"),
		Query:    q.Get("q"),
		Sort:     service.SortOrder(q.Get("sort")),
	}

	if v := q.Get("maxPrice"); v != "" {
		price, err := strconv.ParseInt(v, 10, 64)
		if err != nil || price < 0 {
			return f, fmt.Errorf("%w: invalid maxPrice %q", domain.ErrValidation, v)
		}
		f.MaxPrice = &price
	}
	if v := q.Get("inStock"); v != "" {
		inStock, err := strconv.ParseBool(v)
		if err != nil {
			return f, fmt.Errorf("%w: invalid inStock %q", domain.ErrValidation, v)
		}
		f.InStockOnly = inStock
	}
	return f, nil
}

func (h *HTTPHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	filter, err := productFilter(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	products, err := h.svc.Catalog.List(r.Context(), filter)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, "", products)
}

func (h *HTTPHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	product, err := h.svc.Catalog.Get(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, "", product)
}

func (h *HTTPHandler) Categories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.svc.Catalog.Categories(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, "", categories)
}

func (h *HTTPHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var req ProductRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	product, err := h.svc.Catalog.Create(r.Context(), PrincipalFrom(r.Context()), req.create())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeOK(w, http.StatusCreated, "product created", product)
}

func (h *HTTPHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	var req ProductRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	product, err := h.svc.Catalog.Update(r.Context(), PrincipalFrom(r.Context()), id, req.update())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, "product updated", product)
}

func (h *HTTPHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	if err := h.svc.Catalog.Delete(r.Context(), PrincipalFrom(r.Context()), id); err != nil {
		h.writeError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, "product deleted", nil)
}

func (h *HTTPHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.svc.Catalog.Stats(r.Context(), PrincipalFrom(r.Context()))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, "", stats)
}
