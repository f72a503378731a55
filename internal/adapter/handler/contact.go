package handler

import (
	"net/http"

	"github.com/rl1809/storefront/internal/core/domain"
)

type ContactRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Subject string `json:"subject"`
	Message string `json:"message"`
}

func (h *HTTPHandler) SubmitContact(w http.ResponseWriter, r *http.Request) {
	var req ContactRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	msg, err := h.svc.Contact.Submit(r.Context(), domain.NewContactMessage{
		Name:    req.Name,
		Email:   req.Email,
		Subject: req.Subject,
		Message: req.Message,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeOK(w, http.StatusCreated, "thank you for your message, we will get back to you soon", msg)
}

func (h *HTTPHandler) ListContactMessages(w http.ResponseWriter, r *http.Request) {
	messages, err := h.svc.Contact.List(r.Context(), PrincipalFrom(r.Context()))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, "", messages)
}

func (h *HTTPHandler) MarkContactMessageRead(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	msg, err := h.svc.Contact.MarkRead(r.Context(), PrincipalFrom(r.Context()), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, "message marked as read", msg)
}
