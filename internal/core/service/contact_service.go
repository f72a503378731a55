package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/rl1809/storefront/internal/core/domain"
	"github.com/rl1809/storefront/internal/port"
)

type ContactService struct {
	store    port.Storage
	notifier port.Notifier
	log      zerolog.Logger
}

func NewContactService(store port.Storage, notifier port.Notifier, log zerolog.Logger) *ContactService {
	return &ContactService{store: store, notifier: notifier, log: log}
}

func (s *ContactService) Submit(ctx context.Context, in domain.NewContactMessage) (*domain.ContactMessage, error) {
	in = domain.NewContactMessage{
		Name:    strings.TrimSpace(in.Name),
		Email:   strings.TrimSpace(in.Email),
		Subject: strings.TrimSpace(in.Subject),
		Message: strings.TrimSpace(in.Message),
	}
	if err := required(
		field{"name", in.Name},
		field{"email", in.Email},
		field{"subject", in.Subject},
		field{"message", in.Message},
	); err != nil {
		return nil, err
	}
	if !validEmail(in.Email) {
		return nil, invalid("email %q is not valid", in.Email)
	}

	msg, err := s.store.CreateContactMessage(ctx, in)
	if err != nil {
		return nil, fmt.Errorf("save contact message: %w", err)
	}

	if err := s.notifier.NotifyContactMessage(ctx, *msg); err != nil {
		s.log.Warn().Err(notificationFailure(err)).Int64("message_id", msg.ID).Msg("contact notification not sent")
	}
	return msg, nil
}

func (s *ContactService) List(ctx context.Context, p domain.Principal) ([]domain.ContactMessage, error) {
	if err := requireAdmin(ctx, s.store, p); err != nil {
		return nil, err
	}
	messages, err := s.store.GetAllContactMessages(ctx)
	if err != nil {
		return nil, fmt.Errorf("load contact messages: %w", err)
	}
	return messages, nil
}

func (s *ContactService) MarkRead(ctx context.Context, p domain.Principal, id int64) (*domain.ContactMessage, error) {
	if err := requireAdmin(ctx, s.store, p); err != nil {
		return nil, err
	}
	msg, err := s.store.MarkContactMessageRead(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("mark message read: %w", err)
	}
	if msg == nil {
		return nil, fmt.Errorf("contact message %d: %w", id, domain.ErrNotFound)
	}
	return msg, nil
}
