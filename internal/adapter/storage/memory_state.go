package storage

import (
	"cmp"
	"context"
	"fmt"
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/rl1809/storefront/internal/core/domain"
)

// memSeq holds the per-entity id counters. They only ever grow, including
// across rolled back transactions.
type memSeq struct {
	user, product, cartItem, order, orderItem, message int64
}

// memState is the unsynchronized store behind MemoryAdapter. It implements
// port.Store and is handed out directly inside WithTx.
type memState struct {
	users      map[int64]domain.User
	products   map[int64]domain.Product
	cartItems  map[int64]domain.CartItem
	orders     map[int64]domain.Order
	orderItems map[int64]domain.OrderItem
	messages   map[int64]domain.ContactMessage
	seq        *memSeq
	now        func() time.Time
}

func newMemState() *memState {
	return &memState{
		users:      make(map[int64]domain.User),
		products:   make(map[int64]domain.Product),
		cartItems:  make(map[int64]domain.CartItem),
		orders:     make(map[int64]domain.Order),
		orderItems: make(map[int64]domain.OrderItem),
		messages:   make(map[int64]domain.ContactMessage),
		seq:        &memSeq{},
		now:        time.Now,
	}
}

func (s *memState) snapshot() *memState {
	return &memState{
		users:      maps.Clone(s.users),
		products:   maps.Clone(s.products),
		cartItems:  maps.Clone(s.cartItems),
		orders:     maps.Clone(s.orders),
		orderItems: maps.Clone(s.orderItems),
		messages:   maps.Clone(s.messages),
		seq:        s.seq,
		now:        s.now,
	}
}

func byID[T any](m map[int64]T) []T {
	out := make([]T, 0, len(m))
	for _, id := range slices.Sorted(maps.Keys(m)) {
		out = append(out, m[id])
	}
	return out
}

func newestFirst(a, b time.Time, aID, bID int64) int {
	if c := b.Compare(a); c != 0 {
		return c
	}
	return cmp.Compare(bID, aID)
}

func ptr[T any](v T) *T {
	return &v
}

// Users

func (s *memState) GetUser(ctx context.Context, id int64) (*domain.User, error) {
	u, ok := s.users[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (s *memState) GetUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	username = strings.TrimSpace(username)
	for _, u := range byID(s.users) {
		if strings.EqualFold(u.Username, username) {
			return &u, nil
		}
	}
	return nil, nil
}

func (s *memState) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	email = strings.TrimSpace(email)
	for _, u := range byID(s.users) {
		if strings.EqualFold(u.Email, email) {
			return &u, nil
		}
	}
	return nil, nil
}

func (s *memState) checkUserUnique(username, email string, except int64) error {
	for id, u := range s.users {
		if id == except {
			continue
		}
		if username != "" && u.Username == username {
			return fmt.Errorf("username %q: %w", username, domain.ErrConflict)
		}
		if email != "" && u.Email == email {
			return fmt.Errorf("email %q: %w", email, domain.ErrConflict)
		}
	}
	return nil
}

func (s *memState) CreateUser(ctx context.Context, user domain.NewUser) (*domain.User, error) {
	user = user.Normalize()
	if err := s.checkUserUnique(user.Username, user.Email, 0); err != nil {
		return nil, err
	}

	s.seq.user++
	u := domain.User{
		ID:        s.seq.user,
		Username:  user.Username,
		Email:     user.Email,
		Password:  user.Password,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Role:      user.Role,
	}
	s.users[u.ID] = u
	return &u, nil
}

func (s *memState) UpdateUser(ctx context.Context, id int64, update domain.UserUpdate) (*domain.User, error) {
	u, ok := s.users[id]
	if !ok {
		return nil, nil
	}

	update = update.Normalize()
	var username, email string
	if update.Username != nil {
		username = *update.Username
	}
	if update.Email != nil {
		email = *update.Email
	}
	if err := s.checkUserUnique(username, email, id); err != nil {
		return nil, err
	}

	if update.Username != nil {
		u.Username = *update.Username
	}
	if update.Email != nil {
		u.Email = *update.Email
	}
	if update.Password != nil {
		u.Password = *update.Password
	}
	if update.FirstName != nil {
		u.FirstName = *update.FirstName
	}
	if update.LastName != nil {
		u.LastName = *update.LastName
	}
	if update.Role != nil {
		u.Role = *update.Role
	}
	s.users[id] = u
	return &u, nil
}

func (s *memState) GetAllUsers(ctx context.Context) ([]domain.User, error) {
	return byID(s.users), nil
}

// Products

func (s *memState) GetProduct(ctx context.Context, id int64) (*domain.Product, error) {
	p, ok := s.products[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (s *memState) GetAllProducts(ctx context.Context) ([]domain.Product, error) {
	return byID(s.products), nil
}

func (s *memState) GetProductsByCategory(ctx context.Context, category string) ([]domain.Product, error) {
	out := []domain.Product{}
	for _, p := range byID(s.products) {
		if p.Category == category {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *memState) CreateProduct(ctx context.Context, product domain.NewProduct) (*domain.Product, error) {
	s.seq.product++
	p := domain.Product{
		ID:          s.seq.product,
		Name:        product.Name,
		Description: product.Description,
		Price:       product.Price,
		Category:    product.Category,
		ImageURL:    product.ImageURL,
		Unit:        product.Unit,
		Stock:       product.Stock,
		CreatedAt:   s.now(),
	}
	s.products[p.ID] = p
	return &p, nil
}

func (s *memState) UpdateProduct(ctx context.Context, id int64, update domain.ProductUpdate) (*domain.Product, error) {
	p, ok := s.products[id]
	if !ok {
		return nil, nil
	}
	update.Apply(&p)
	s.products[id] = p
	return &p, nil
}

func (s *memState) DeleteProduct(ctx context.Context, id int64) (bool, error) {
	if _, ok := s.products[id]; !ok {
		return false, nil
	}
	delete(s.products, id)
	return true, nil
}

func (s *memState) CountProducts(ctx context.Context) (int, error) {
	return len(s.products), nil
}

// Cart

func (s *memState) GetCartItems(ctx context.Context, userID int64) ([]domain.CartItem, error) {
	out := []domain.CartItem{}
	for _, item := range byID(s.cartItems) {
		if item.UserID == userID {
			out = append(out, item)
		}
	}
	return out, nil
}

func (s *memState) AddToCart(ctx context.Context, item domain.NewCartItem) (*domain.CartItem, error) {
	for id, existing := range s.cartItems {
		if existing.UserID == item.UserID && existing.ProductID == item.ProductID {
			existing.Quantity += item.Quantity
			s.cartItems[id] = existing
			return &existing, nil
		}
	}

	s.seq.cartItem++
	c := domain.CartItem{
		ID:        s.seq.cartItem,
		UserID:    item.UserID,
		ProductID: item.ProductID,
		Quantity:  item.Quantity,
		AddedAt:   s.now(),
	}
	s.cartItems[c.ID] = c
	return &c, nil
}

func (s *memState) UpdateCartItemQuantity(ctx context.Context, id int64, quantity int) (*domain.CartItem, error) {
	c, ok := s.cartItems[id]
	if !ok {
		return nil, nil
	}
	c.Quantity = quantity
	s.cartItems[id] = c
	return &c, nil
}

func (s *memState) RemoveFromCart(ctx context.Context, id int64) (bool, error) {
	if _, ok := s.cartItems[id]; !ok {
		return false, nil
	}
	delete(s.cartItems, id)
	return true, nil
}

func (s *memState) ClearCart(ctx context.Context, userID int64) (bool, error) {
	maps.DeleteFunc(s.cartItems, func(_ int64, c domain.CartItem) bool {
		return c.UserID == userID
	})
	return true, nil
}

// Orders

func (s *memState) CreateOrder(ctx context.Context, order domain.NewOrder, items []domain.NewOrderItem) (*domain.Order, error) {
	if order.Status == "" {
		order.Status = domain.OrderStatusPending
	}

	now := s.now()
	s.seq.order++
	o := domain.Order{
		ID:              s.seq.order,
		UserID:          order.UserID,
		TotalAmount:     order.TotalAmount,
		Status:          order.Status,
		ShippingAddress: order.ShippingAddress,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	s.orders[o.ID] = o

	for _, item := range items {
		s.seq.orderItem++
		s.orderItems[s.seq.orderItem] = domain.OrderItem{
			ID:        s.seq.orderItem,
			OrderID:   o.ID,
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			Price:     item.Price,
		}
	}
	return &o, nil
}

func (s *memState) GetOrder(ctx context.Context, id int64) (*domain.Order, error) {
	o, ok := s.orders[id]
	if !ok {
		return nil, nil
	}
	return &o, nil
}

func sortOrders(orders []domain.Order) []domain.Order {
	if orders == nil {
		return []domain.Order{}
	}
	slices.SortFunc(orders, func(a, b domain.Order) int {
		return newestFirst(a.CreatedAt, b.CreatedAt, a.ID, b.ID)
	})
	return orders
}

func (s *memState) GetUserOrders(ctx context.Context, userID int64) ([]domain.Order, error) {
	out := []domain.Order{}
	for _, o := range s.orders {
		if o.UserID == userID {
			out = append(out, o)
		}
	}
	return sortOrders(out), nil
}

func (s *memState) GetAllOrders(ctx context.Context) ([]domain.Order, error) {
	return sortOrders(slices.Collect(maps.Values(s.orders))), nil
}

func (s *memState) GetOrderItems(ctx context.Context, orderID int64) ([]domain.OrderItem, error) {
	out := []domain.OrderItem{}
	for _, item := range byID(s.orderItems) {
		if item.OrderID == orderID {
			out = append(out, item)
		}
	}
	return out, nil
}

func (s *memState) UpdateOrderStatus(ctx context.Context, id int64, status domain.OrderStatus) (*domain.Order, error) {
	o, ok := s.orders[id]
	if !ok {
		return nil, nil
	}
	o.Status = status
	o.UpdatedAt = s.now()
	s.orders[id] = o
	return &o, nil
}

// Contact messages

func (s *memState) CreateContactMessage(ctx context.Context, msg domain.NewContactMessage) (*domain.ContactMessage, error) {
	s.seq.message++
	m := domain.ContactMessage{
		ID:        s.seq.message,
		Name:      msg.Name,
		Email:     msg.Email,
		Subject:   msg.Subject,
		Message:   msg.Message,
		CreatedAt: s.now(),
	}
	s.messages[m.ID] = m
	return &m, nil
}

func (s *memState) GetAllContactMessages(ctx context.Context) ([]domain.ContactMessage, error) {
	out := slices.Collect(maps.Values(s.messages))
	slices.SortFunc(out, func(a, b domain.ContactMessage) int {
		return newestFirst(a.CreatedAt, b.CreatedAt, a.ID, b.ID)
	})
	if out == nil {
		out = []domain.ContactMessage{}
	}
	return out, nil
}

func (s *memState) MarkContactMessageRead(ctx context.Context, id int64) (*domain.ContactMessage, error) {
	m, ok := s.messages[id]
	if !ok {
		return nil, nil
	}
	if m.ReadAt == nil {
		m.ReadAt = ptr(s.now())
		s.messages[id] = m
	}
	return &m, nil
}
