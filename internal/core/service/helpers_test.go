package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rl1809/storefront/internal/adapter/storage"
	"github.com/rl1809/storefront/internal/core/domain"
)

type recordingNotifier struct {
	mu       sync.Mutex
	contacts []domain.ContactMessage
	orders   []domain.Order
	lines    [][]domain.OrderLine
	err      error
}

func (n *recordingNotifier) NotifyContactMessage(ctx context.Context, msg domain.ContactMessage) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.err != nil {
		return n.err
	}
	n.contacts = append(n.contacts, msg)
	return nil
}

func (n *recordingNotifier) NotifyOrderConfirmation(ctx context.Context, user domain.User, order domain.Order, lines []domain.OrderLine) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.err != nil {
		return n.err
	}
	n.orders = append(n.orders, order)
	n.lines = append(n.lines, lines)
	return nil
}

func (n *recordingNotifier) orderCount() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.orders)
}

type busyLocker struct{}

func (busyLocker) Lock(ctx context.Context, userID int64) (func(), error) {
	return nil, domain.ErrCheckoutInProgress
}

type plainHasher struct{}

func (plainHasher) Hash(password string) (string, error) {
	if password == "" {
		return "", errors.New("empty password")
	}
	return "hashed:" + password, nil
}

func (plainHasher) Verify(password, hash string) bool {
	return hash == "hashed:"+password
}

func customer(t *testing.T, store *storage.MemoryAdapter, username string) domain.Principal {
	t.Helper()
	u, err := store.CreateUser(context.Background(), domain.NewUser{
		Username:  username,
		Email:     username + "@example.com",
		Password:  "hashed:secret1",
		FirstName: username,
	})
	require.NoError(t, err)
	return domain.Principal{UserID: u.ID, Role: u.Role}
}

func storedAdmin(t *testing.T, store *storage.MemoryAdapter) domain.Principal {
	t.Helper()
	u, err := store.CreateUser(context.Background(), domain.NewUser{
		Username: "root",
		Email:    "root@example.com",
		Password: "hashed:secret1",
		Role:     domain.RoleAdmin,
	})
	require.NoError(t, err)
	return domain.Principal{UserID: u.ID, Role: u.Role}
}

func product(t *testing.T, store *storage.MemoryAdapter, name string, price int64, category string, stock int) *domain.Product {
	t.Helper()
	p, err := store.CreateProduct(context.Background(), domain.NewProduct{
		Name:        name,
		Description: name,
		Price:       price,
		Category:    category,
		Unit:        "lb",
		Stock:       stock,
	})
	require.NoError(t, err)
	return p
}
