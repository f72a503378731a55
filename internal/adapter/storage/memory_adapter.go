package storage

import (
	"context"
	"sync"

	"github.com/rl1809/storefront/internal/core/domain"
	"github.com/rl1809/storefront/internal/port"
)

// MemoryAdapter is the process-local backend used for development and tests.
// Nothing survives a restart.
type MemoryAdapter struct {
	mu    sync.Mutex
	state *memState
}

func NewMemoryAdapter() *MemoryAdapter {
	return &MemoryAdapter{state: newMemState()}
}

// WithTx holds the store lock for the whole unit and restores the entity
// maps if fn fails. Calling methods on the adapter itself from inside fn
// deadlocks; use tx.
func (m *MemoryAdapter) WithTx(ctx context.Context, fn func(tx port.Store) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	snapshot := m.state.snapshot()
	if err := fn(m.state); err != nil {
		m.state = snapshot
		return err
	}
	return nil
}

func (m *MemoryAdapter) Ping(ctx context.Context) error {
	return nil
}

func (m *MemoryAdapter) Close() error {
	return nil
}

func (m *MemoryAdapter) GetUser(ctx context.Context, id int64) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.GetUser(ctx, id)
}

func (m *MemoryAdapter) GetUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.GetUserByUsername(ctx, username)
}

func (m *MemoryAdapter) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.GetUserByEmail(ctx, email)
}

func (m *MemoryAdapter) CreateUser(ctx context.Context, user domain.NewUser) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.CreateUser(ctx, user)
}

func (m *MemoryAdapter) UpdateUser(ctx context.Context, id int64, update domain.UserUpdate) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.UpdateUser(ctx, id, update)
}

func (m *MemoryAdapter) GetAllUsers(ctx context.Context) ([]domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.GetAllUsers(ctx)
}

func (m *MemoryAdapter) GetProduct(ctx context.Context, id int64) (*domain.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.GetProduct(ctx, id)
}

func (m *MemoryAdapter) GetAllProducts(ctx context.Context) ([]domain.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.GetAllProducts(ctx)
}

func (m *MemoryAdapter) GetProductsByCategory(ctx context.Context, category string) ([]domain.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.GetProductsByCategory(ctx, category)
}

func (m *MemoryAdapter) CreateProduct(ctx context.Context, product domain.NewProduct) (*domain.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.CreateProduct(ctx, product)
}

func (m *MemoryAdapter) UpdateProduct(ctx context.Context, id int64, update domain.ProductUpdate) (*domain.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.UpdateProduct(ctx, id, update)
}

func (m *MemoryAdapter) DeleteProduct(ctx context.Context, id int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.DeleteProduct(ctx, id)
}

func (m *MemoryAdapter) CountProducts(ctx context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.CountProducts(ctx)
}

func (m *MemoryAdapter) GetCartItems(ctx context.Context, userID int64) ([]domain.CartItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.GetCartItems(ctx, userID)
}

func (m *MemoryAdapter) AddToCart(ctx context.Context, item domain.NewCartItem) (*domain.CartItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.AddToCart(ctx, item)
}

func (m *MemoryAdapter) UpdateCartItemQuantity(ctx context.Context, id int64, quantity int) (*domain.CartItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.UpdateCartItemQuantity(ctx, id, quantity)
}

func (m *MemoryAdapter) RemoveFromCart(ctx context.Context, id int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.RemoveFromCart(ctx, id)
}

func (m *MemoryAdapter) ClearCart(ctx context.Context, userID int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.ClearCart(ctx, userID)
}

func (m *MemoryAdapter) CreateOrder(ctx context.Context, order domain.NewOrder, items []domain.NewOrderItem) (*domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.CreateOrder(ctx, order, items)
}

func (m *MemoryAdapter) GetOrder(ctx context.Context, id int64) (*domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.GetOrder(ctx, id)
}

func (m *MemoryAdapter) GetUserOrders(ctx context.Context, userID int64) ([]domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.GetUserOrders(ctx, userID)
}

func (m *MemoryAdapter) GetAllOrders(ctx context.Context) ([]domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.GetAllOrders(ctx)
}

func (m *MemoryAdapter) GetOrderItems(ctx context.Context, orderID int64) ([]domain.OrderItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.GetOrderItems(ctx, orderID)
}

func (m *MemoryAdapter) UpdateOrderStatus(ctx context.Context, id int64, status domain.OrderStatus) (*domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.UpdateOrderStatus(ctx, id, status)
}

func (m *MemoryAdapter) CreateContactMessage(ctx context.Context, msg domain.NewContactMessage) (*domain.ContactMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.CreateContactMessage(ctx, msg)
}

func (m *MemoryAdapter) GetAllContactMessages(ctx context.Context) ([]domain.ContactMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.GetAllContactMessages(ctx)
}

func (m *MemoryAdapter) MarkContactMessageRead(ctx context.Context, id int64) (*domain.ContactMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.MarkContactMessageRead(ctx, id)
}

var (
	_ port.Storage = (*MemoryAdapter)(nil)
	_ port.Store   = (*memState)(nil)
)
