package handler

import (
	"net/http"
	"time"

	"github.com/rl1809/storefront/internal/core/domain"
	"github.com/rl1809/storefront/internal/core/service"
)

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type Session struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expiresAt"`
	User      *domain.User `json:"user"`
}

type RoleRequest struct {
	Role domain.Role `json:"role"`
}

func (h *HTTPHandler) session(w http.ResponseWriter, r *http.Request, status int, message string, user *domain.User) {
	token, expiresAt, err := h.tokens.Issue(*user)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeOK(w, status, message, Session{Token: token, ExpiresAt: expiresAt, User: user})
}

func (h *HTTPHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req service.Registration
	if err := decodeJSON(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	user, err := h.svc.Users.Register(r.Context(), req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.session(w, r, http.StatusCreated, "registration successful", user)
}

func (h *HTTPHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	user, err := h.svc.Users.Authenticate(r.Context(), req.Username, req.Password)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.session(w, r, http.StatusOK, "login successful", user)
}

func (h *HTTPHandler) CurrentUser(w http.ResponseWriter, r *http.Request) {
	user, err := h.svc.Users.Current(r.Context(), PrincipalFrom(r.Context()))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, "", user)
}

func (h *HTTPHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req service.ProfileUpdate
	if err := decodeJSON(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	user, err := h.svc.Users.UpdateProfile(r.Context(), PrincipalFrom(r.Context()), req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, "profile updated", user)
}

func (h *HTTPHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.svc.Users.List(r.Context(), PrincipalFrom(r.Context()))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, "", users)
}

func (h *HTTPHandler) SetUserRole(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	var req RoleRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	user, err := h.svc.Users.SetRole(r.Context(), PrincipalFrom(r.Context()), id, req.Role)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, "role updated", user)
}
