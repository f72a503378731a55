package port

import (
	"context"

	"github.com/rl1809/storefront/internal/core/domain"
)

// Lookups by id return (nil, nil) when the row does not exist.

type UserRepository interface {
	GetUser(ctx context.Context, id int64) (*domain.User, error)

	// GetUserByUsername matches case-insensitively
	GetUserByUsername(ctx context.Context, username string) (*domain.User, error)

	// GetUserByEmail matches case-insensitively
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)

	// CreateUser lowercases username and email; duplicates fail with domain.ErrConflict
	CreateUser(ctx context.Context, user domain.NewUser) (*domain.User, error)

	UpdateUser(ctx context.Context, id int64, update domain.UserUpdate) (*domain.User, error)

	GetAllUsers(ctx context.Context) ([]domain.User, error)
}

type ProductRepository interface {
	GetProduct(ctx context.Context, id int64) (*domain.Product, error)

	// GetAllProducts returns products in insertion order
	GetAllProducts(ctx context.Context) ([]domain.Product, error)

	// GetProductsByCategory is an exact, case-sensitive match
	GetProductsByCategory(ctx context.Context, category string) ([]domain.Product, error)

	CreateProduct(ctx context.Context, product domain.NewProduct) (*domain.Product, error)

	UpdateProduct(ctx context.Context, id int64, update domain.ProductUpdate) (*domain.Product, error)

	// DeleteProduct reports whether a row was removed
	DeleteProduct(ctx context.Context, id int64) (bool, error)

	CountProducts(ctx context.Context) (int, error)
}

type CartRepository interface {
	GetCartItems(ctx context.Context, userID int64) ([]domain.CartItem, error)

	// AddToCart merges into the existing row for (userID, productID) by summing quantities
	AddToCart(ctx context.Context, item domain.NewCartItem) (*domain.CartItem, error)

	UpdateCartItemQuantity(ctx context.Context, id int64, quantity int) (*domain.CartItem, error)

	RemoveFromCart(ctx context.Context, id int64) (bool, error)

	// ClearCart always reports true, even when the cart was already empty
	ClearCart(ctx context.Context, userID int64) (bool, error)
}

type OrderRepository interface {
	// CreateOrder inserts the order and its items atomically
	CreateOrder(ctx context.Context, order domain.NewOrder, items []domain.NewOrderItem) (*domain.Order, error)

	GetOrder(ctx context.Context, id int64) (*domain.Order, error)

	// GetUserOrders returns newest first
	GetUserOrders(ctx context.Context, userID int64) ([]domain.Order, error)

	// GetAllOrders returns newest first
	GetAllOrders(ctx context.Context) ([]domain.Order, error)

	GetOrderItems(ctx context.Context, orderID int64) ([]domain.OrderItem, error)

	// UpdateOrderStatus also refreshes updatedAt
	UpdateOrderStatus(ctx context.Context, id int64, status domain.OrderStatus) (*domain.Order, error)
}

type ContactRepository interface {
	CreateContactMessage(ctx context.Context, msg domain.NewContactMessage) (*domain.ContactMessage, error)

	// GetAllContactMessages returns newest first
	GetAllContactMessages(ctx context.Context) ([]domain.ContactMessage, error)

	// MarkContactMessageRead sets readAt the first time only
	MarkContactMessageRead(ctx context.Context, id int64) (*domain.ContactMessage, error)
}

type Store interface {
	UserRepository
	ProductRepository
	CartRepository
	OrderRepository
	ContactRepository
}

// Storage is the persistence contract shared by the relational and in-memory backends.
type Storage interface {
	Store

	// WithTx runs fn against a transaction-bound Store. Every write made
	// through it is rolled back if fn returns an error. fn must only use the
	// Store it is given.
	WithTx(ctx context.Context, fn func(tx Store) error) error

	Ping(ctx context.Context) error
	Close() error
}
