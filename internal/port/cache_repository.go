package port

import (
	"context"

	"github.com/rl1809/storefront/internal/core/domain"
)

type CheckoutLocker interface {
	// Lock acquires the per-user checkout lock without waiting. It returns
	// domain.ErrCheckoutInProgress when another checkout holds it.
	Lock(ctx context.Context, userID int64) (unlock func(), err error)
}

type CatalogCache interface {
	// GetProducts returns false on a cache miss
	GetProducts(ctx context.Context) ([]domain.Product, bool, error)

	SetProducts(ctx context.Context, products []domain.Product) error

	Invalidate(ctx context.Context) error
}
