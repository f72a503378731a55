package storage

import (
	"context"
	"sync"

	"github.com/rl1809/storefront/internal/core/domain"
	"github.com/rl1809/storefront/internal/port"
)

// LocalLocker serialises checkouts per user inside a single process.
type LocalLocker struct {
	locks sync.Map // int64 -> *sync.Mutex
}

func NewLocalLocker() *LocalLocker {
	return &LocalLocker{}
}

func (l *LocalLocker) Lock(ctx context.Context, userID int64) (func(), error) {
	v, _ := l.locks.LoadOrStore(userID, &sync.Mutex{})
	mu := v.(*sync.Mutex)

	if !mu.TryLock() {
		return nil, domain.ErrCheckoutInProgress
	}
	return mu.Unlock, nil
}

// NopCatalogCache always misses.
type NopCatalogCache struct{}

func (NopCatalogCache) GetProducts(ctx context.Context) ([]domain.Product, bool, error) {
	return nil, false, nil
}

func (NopCatalogCache) SetProducts(ctx context.Context, products []domain.Product) error {
	return nil
}

func (NopCatalogCache) Invalidate(ctx context.Context) error {
	return nil
}

var (
	_ port.CheckoutLocker = (*LocalLocker)(nil)
	_ port.CatalogCache   = NopCatalogCache{}
)
