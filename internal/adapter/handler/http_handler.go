package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/rl1809/storefront/internal/core/domain"
	"github.com/rl1809/storefront/internal/core/service"
)

const maxBodyBytes = 1 << 20

// Tokens issues and verifies the bearer tokens carried by API clients.
type Tokens interface {
	Issue(user domain.User) (string, time.Time, error)
	Principal(token string) (domain.Principal, error)
}

type Pinger interface {
	Ping(ctx context.Context) error
}

type Services struct {
	Users   *service.UserService
	Catalog *service.CatalogService
	Carts   *service.CartService
	Orders  *service.OrderService
	Contact *service.ContactService
}

type HTTPHandler struct {
	svc    Services
	tokens Tokens
	store  Pinger
	log    zerolog.Logger
}

type Response struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

func NewHTTPHandler(svc Services, tokens Tokens, store Pinger, log zerolog.Logger) *HTTPHandler {
	return &HTTPHandler{svc: svc, tokens: tokens, store: store, log: log}
}

func (h *HTTPHandler) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(h.accessLog)
	r.Use(h.recoverer)
	r.Use(middleware.RealIP)
	r.Use(h.authenticate)

	r.Get("/health", h.HealthCheck)

	r.Route("/api", func(r chi.Router) {
		r.Post("/register", h.Register)
		r.Post("/login", h.Login)
		r.Get("/user", h.CurrentUser)
		r.Patch("/user", h.UpdateProfile)
		r.Get("/users", h.ListUsers)
		r.Patch("/users/{id}/role", h.SetUserRole)

		r.Get("/products", h.ListProducts)
		r.Post("/products", h.CreateProduct)
		r.Get("/products/{id}", h.GetProduct)
		r.Patch("/products/{id}", h.UpdateProduct)
		r.Delete("/products/{id}", h.DeleteProduct)
		r.Get("/categories", h.Categories)

		r.Get("/cart", h.GetCart)
		r.Post("/cart", h.AddToCart)
		r.Delete("/cart", h.ClearCart)
		r.Patch("/cart/{id}", h.UpdateCartItem)
		r.Delete("/cart/{id}", h.RemoveCartItem)

		r.Post("/orders", h.PlaceOrder)
		r.Get("/orders", h.ListOrders)
		r.Get("/orders/admin", h.ListAllOrders)
		r.Get("/orders/{id}", h.GetOrder)
		r.Patch("/orders/{id}/status", h.UpdateOrderStatus)

		r.Post("/contact", h.SubmitContact)
		r.Get("/contact-messages", h.ListContactMessages)
		r.Patch("/contact-messages/{id}/read", h.MarkContactMessageRead)

		r.Get("/admin/stats", h.Stats)
	})
	return r
}

func (h *HTTPHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Ping(r.Context()); err != nil {
		h.log.Error().Err(err).Msg("storage health check failed")
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeOK(w http.ResponseWriter, status int, message string, data any) {
	writeJSON(w, status, Response{Success: true, Message: message, Data: data})
}

func statusOf(err error) int {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrConflict), errors.Is(err, domain.ErrCheckoutInProgress):
		return http.StatusConflict
	case errors.Is(err, domain.ErrEmptyCart), errors.Is(err, domain.ErrInvalidCartState):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func (h *HTTPHandler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusOf(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		h.log.Error().Err(err).Str("request_id", RequestIDFrom(r.Context())).Str("path", r.URL.Path).Msg("request failed")
		message = "internal error"
	}
	writeJSON(w, status, Response{Success: false, Message: message})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("%w: invalid request body", domain.ErrValidation)
	}
	return nil
}

func pathID(r *http.Request) (int64, error) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: invalid id %q", domain.ErrValidation, raw)
	}
	return id, nil
}
