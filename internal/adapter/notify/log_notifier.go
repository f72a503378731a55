package notify

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/rl1809/storefront/internal/core/domain"
	"github.com/rl1809/storefront/internal/port"
)

// LogNotifier writes notifications to the log instead of delivering them.
type LogNotifier struct {
	log zerolog.Logger
}

func NewLogNotifier(log zerolog.Logger) *LogNotifier {
	return &LogNotifier{log: log.With().Str("component", "notifier").Logger()}
}

func (n *LogNotifier) NotifyContactMessage(ctx context.Context, msg domain.ContactMessage) error {
	ev := NewContactEvent(msg)
	n.log.Info().
		Str("event", ev.Type).
		Int64("message_id", ev.MessageID).
		Str("from", ev.Email).
		Str("subject", ev.Subject).
		Msg("contact notification")
	return nil
}

func (n *LogNotifier) NotifyOrderConfirmation(ctx context.Context, user domain.User, order domain.Order, lines []domain.OrderLine) error {
	ev := NewOrderEvent(user, order, lines)
	n.log.Info().
		Str("event", ev.Type).
		Int64("order_id", ev.OrderID).
		Int64("user_id", ev.UserID).
		Str("to", ev.Recipient).
		Str("subject", ev.Subject).
		Str("total", ev.Total).
		Int("items", len(ev.Items)).
		Msg("order confirmation")
	return nil
}

var _ port.Notifier = (*LogNotifier)(nil)
