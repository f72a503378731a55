package port

import (
	"context"

	"github.com/rl1809/storefront/internal/core/domain"
)

type Notifier interface {
	NotifyContactMessage(ctx context.Context, msg domain.ContactMessage) error
	NotifyOrderConfirmation(ctx context.Context, user domain.User, order domain.Order, lines []domain.OrderLine) error
}

type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, hash string) bool
}
