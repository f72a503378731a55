package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"

	"github.com/rl1809/storefront/internal/core/domain"
	"github.com/rl1809/storefront/internal/port"
)

const errDuplicateEntry = 1062

const (
	userColumns    = "id, username, email, password, first_name, last_name, role"
	productColumns = "id, name, description, price, category, image_url, unit, stock, created_at"
	cartColumns    = "id, user_id, product_id, quantity, added_at"
	orderColumns   = "id, user_id, total_amount, status, shipping_address, created_at, updated_at"
	itemColumns    = "id, order_id, product_id, quantity, price"
	messageColumns = "id, name, email, subject, message, created_at, read_at"
)

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type scanner interface {
	Scan(dest ...any) error
}

type sqlStore struct {
	q   querier
	now func() time.Time
}

type MySQLAdapter struct {
	*sqlStore
	db *sql.DB
}

func NewMySQLAdapter(db *sql.DB) *MySQLAdapter {
	return &MySQLAdapter{
		sqlStore: &sqlStore{q: db, now: defaultNow},
		db:       db,
	}
}

// MySQL DATETIME(6) keeps microseconds.
func defaultNow() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}

func (m *MySQLAdapter) WithTx(ctx context.Context, fn func(tx port.Store) error) error {
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if err := fn(&sqlStore{q: tx, now: m.now}); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// CreateOrder wraps the order row and its items in one transaction.
func (m *MySQLAdapter) CreateOrder(ctx context.Context, order domain.NewOrder, items []domain.NewOrderItem) (*domain.Order, error) {
	var created *domain.Order
	err := m.WithTx(ctx, func(tx port.Store) error {
		var err error
		created, err = tx.CreateOrder(ctx, order, items)
		return err
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (m *MySQLAdapter) Ping(ctx context.Context) error {
	return m.db.PingContext(ctx)
}

func (m *MySQLAdapter) Close() error {
	return m.db.Close()
}

func isDuplicateEntry(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == errDuplicateEntry
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// setClause accumulates "col = ?" pairs for partial updates.
type setClause struct {
	cols []string
	args []any
}

func (c *setClause) add(col string, v any) {
	c.cols = append(c.cols, col+" = ?")
	c.args = append(c.args, v)
}

func (c *setClause) empty() bool {
	return len(c.cols) == 0
}

func (c *setClause) String() string {
	return strings.Join(c.cols, ", ")
}

// Users

func scanUser(row scanner) (*domain.User, error) {
	var (
		u           domain.User
		first, last sql.NullString
		role        string
	)
	if err := row.Scan(&u.ID, &u.Username, &u.Email, &u.Password, &first, &last, &role); err != nil {
		return nil, err
	}
	u.FirstName = first.String
	u.LastName = last.String
	u.Role = domain.Role(role)
	return &u, nil
}

func (s *sqlStore) queryUser(ctx context.Context, where string, arg any) (*domain.User, error) {
	u, err := scanUser(s.q.QueryRowContext(ctx, "SELECT "+userColumns+" FROM users WHERE "+where, arg))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query user: %w", err)
	}
	return u, nil
}

func (s *sqlStore) GetUser(ctx context.Context, id int64) (*domain.User, error) {
	return s.queryUser(ctx, "id = ?", id)
}

func (s *sqlStore) GetUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	return s.queryUser(ctx, "username = ?", strings.ToLower(strings.TrimSpace(username)))
}

func (s *sqlStore) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	return s.queryUser(ctx, "email = ?", strings.ToLower(strings.TrimSpace(email)))
}

func (s *sqlStore) CreateUser(ctx context.Context, user domain.NewUser) (*domain.User, error) {
	user = user.Normalize()

	result, err := s.q.ExecContext(ctx, `
		INSERT INTO users (username, email, password, first_name, last_name, role)
		VALUES (?, ?, ?, ?, ?, ?)`,
		user.Username, user.Email, user.Password,
		nullString(user.FirstName), nullString(user.LastName), string(user.Role),
	)
	if isDuplicateEntry(err) {
		return nil, fmt.Errorf("user %q: %w", user.Username, domain.ErrConflict)
	}
	if err != nil {
		return nil, fmt.Errorf("insert user: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("user id: %w", err)
	}

	return &domain.User{
		ID:        id,
		Username:  user.Username,
		Email:     user.Email,
		Password:  user.Password,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Role:      user.Role,
	}, nil
}

func (s *sqlStore) UpdateUser(ctx context.Context, id int64, update domain.UserUpdate) (*domain.User, error) {
	update = update.Normalize()

	var set setClause
	if update.Username != nil {
		set.add("username", *update.Username)
	}
	if update.Email != nil {
		set.add("email", *update.Email)
	}
	if update.Password != nil {
		set.add("password", *update.Password)
	}
	if update.FirstName != nil {
		set.add("first_name", nullString(*update.FirstName))
	}
	if update.LastName != nil {
		set.add("last_name", nullString(*update.LastName))
	}
	if update.Role != nil {
		set.add("role", string(*update.Role))
	}

	if !set.empty() {
		_, err := s.q.ExecContext(ctx, "UPDATE users SET "+set.String()+" WHERE id = ?", append(set.args, id)...)
		if isDuplicateEntry(err) {
			return nil, fmt.Errorf("user %d: %w", id, domain.ErrConflict)
		}
		if err != nil {
			return nil, fmt.Errorf("update user: %w", err)
		}
	}

	return s.GetUser(ctx, id)
}

func (s *sqlStore) GetAllUsers(ctx context.Context) ([]domain.User, error) {
	rows, err := s.q.QueryContext(ctx, "SELECT "+userColumns+" FROM users ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("query users: %w", err)
	}
	defer rows.Close()

	users := []domain.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}

// Products

func scanProduct(row scanner) (*domain.Product, error) {
	var p domain.Product
	err := row.Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.Category, &p.ImageURL, &p.Unit, &p.Stock, &p.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *sqlStore) queryProducts(ctx context.Context, query string, args ...any) ([]domain.Product, error) {
	rows, err := s.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query products: %w", err)
	}
	defer rows.Close()

	products := []domain.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, *p)
	}
	return products, rows.Err()
}

func (s *sqlStore) GetProduct(ctx context.Context, id int64) (*domain.Product, error) {
	p, err := scanProduct(s.q.QueryRowContext(ctx, "SELECT "+productColumns+" FROM products WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query product: %w", err)
	}
	return p, nil
}

func (s *sqlStore) GetAllProducts(ctx context.Context) ([]domain.Product, error) {
	return s.queryProducts(ctx, "SELECT "+productColumns+" FROM products ORDER BY id")
}

func (s *sqlStore) GetProductsByCategory(ctx context.Context, category string) ([]domain.Product, error) {
	// BINARY keeps the comparison case-sensitive under the default collation
	return s.queryProducts(ctx, "SELECT "+productColumns+" FROM products WHERE category = BINARY ? ORDER BY id", category)
}

func (s *sqlStore) CreateProduct(ctx context.Context, product domain.NewProduct) (*domain.Product, error) {
	createdAt := s.now()
	result, err := s.q.ExecContext(ctx, `
		INSERT INTO products (name, description, price, category, image_url, unit, stock, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		product.Name, product.Description, product.Price, product.Category,
		product.ImageURL, product.Unit, product.Stock, createdAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert product: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("product id: %w", err)
	}

	return &domain.Product{
		ID:          id,
		Name:        product.Name,
		Description: product.Description,
		Price:       product.Price,
		Category:    product.Category,
		ImageURL:    product.ImageURL,
		Unit:        product.Unit,
		Stock:       product.Stock,
		CreatedAt:   createdAt,
	}, nil
}

func (s *sqlStore) UpdateProduct(ctx context.Context, id int64, update domain.ProductUpdate) (*domain.Product, error) {
	var set setClause
	if update.Name != nil {
		set.add("name", *update.Name)
	}
	if update.Description != nil {
		set.add("description", *update.Description)
	}
	if update.Price != nil {
		set.add("price", *update.Price)
	}
	if update.Category != nil {
		set.add("category", *update.Category)
	}
	if update.ImageURL != nil {
		set.add("image_url", *update.ImageURL)
	}
	if update.Unit != nil {
		set.add("unit", *update.Unit)
	}
	if update.Stock != nil {
		set.add("stock", *update.Stock)
	}

	if !set.empty() {
		if _, err := s.q.ExecContext(ctx, "UPDATE products SET "+set.String()+" WHERE id = ?", append(set.args, id)...); err != nil {
			return nil, fmt.Errorf("update product: %w", err)
		}
	}

	return s.GetProduct(ctx, id)
}

func (s *sqlStore) DeleteProduct(ctx context.Context, id int64) (bool, error) {
	result, err := s.q.ExecContext(ctx, "DELETE FROM products WHERE id = ?", id)
	if err != nil {
		return false, fmt.Errorf("delete product: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete product: %w", err)
	}
	return rows > 0, nil
}

func (s *sqlStore) CountProducts(ctx context.Context) (int, error) {
	var n int
	if err := s.q.QueryRowContext(ctx, "SELECT COUNT(*) FROM products").Scan(&n); err != nil {
		return 0, fmt.Errorf("count products: %w", err)
	}
	return n, nil
}

// Cart

func scanCartItem(row scanner) (*domain.CartItem, error) {
	var c domain.CartItem
	if err := row.Scan(&c.ID, &c.UserID, &c.ProductID, &c.Quantity, &c.AddedAt); err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *sqlStore) queryCartItem(ctx context.Context, where string, args ...any) (*domain.CartItem, error) {
	c, err := scanCartItem(s.q.QueryRowContext(ctx, "SELECT "+cartColumns+" FROM cart_items WHERE "+where, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query cart item: %w", err)
	}
	return c, nil
}

func (s *sqlStore) GetCartItems(ctx context.Context, userID int64) ([]domain.CartItem, error) {
	rows, err := s.q.QueryContext(ctx, "SELECT "+cartColumns+" FROM cart_items WHERE user_id = ? ORDER BY id", userID)
	if err != nil {
		return nil, fmt.Errorf("query cart items: %w", err)
	}
	defer rows.Close()

	items := []domain.CartItem{}
	for rows.Next() {
		c, err := scanCartItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan cart item: %w", err)
		}
		items = append(items, *c)
	}
	return items, rows.Err()
}

// AddToCart relies on the (user_id, product_id) unique key to merge duplicates.
func (s *sqlStore) AddToCart(ctx context.Context, item domain.NewCartItem) (*domain.CartItem, error) {
	_, err := s.q.ExecContext(ctx, `
		INSERT INTO cart_items (user_id, product_id, quantity, added_at)
		VALUES (?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE quantity = quantity + VALUES(quantity)`,
		item.UserID, item.ProductID, item.Quantity, s.now(),
	)
	if err != nil {
		return nil, fmt.Errorf("upsert cart item: %w", err)
	}

	c, err := s.queryCartItem(ctx, "user_id = ? AND product_id = ?", item.UserID, item.ProductID)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, fmt.Errorf("cart item for product %d vanished after upsert", item.ProductID)
	}
	return c, nil
}

func (s *sqlStore) UpdateCartItemQuantity(ctx context.Context, id int64, quantity int) (*domain.CartItem, error) {
	if _, err := s.q.ExecContext(ctx, "UPDATE cart_items SET quantity = ? WHERE id = ?", quantity, id); err != nil {
		return nil, fmt.Errorf("update cart item: %w", err)
	}
	return s.queryCartItem(ctx, "id = ?", id)
}

func (s *sqlStore) RemoveFromCart(ctx context.Context, id int64) (bool, error) {
	result, err := s.q.ExecContext(ctx, "DELETE FROM cart_items WHERE id = ?", id)
	if err != nil {
		return false, fmt.Errorf("delete cart item: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete cart item: %w", err)
	}
	return rows > 0, nil
}

func (s *sqlStore) ClearCart(ctx context.Context, userID int64) (bool, error) {
	if _, err := s.q.ExecContext(ctx, "DELETE FROM cart_items WHERE user_id = ?", userID); err != nil {
		return false, fmt.Errorf("clear cart: %w", err)
	}
	return true, nil
}

// Orders

func scanOrder(row scanner) (*domain.Order, error) {
	var (
		o      domain.Order
		status string
	)
	if err := row.Scan(&o.ID, &o.UserID, &o.TotalAmount, &status, &o.ShippingAddress, &o.CreatedAt, &o.UpdatedAt); err != nil {
		return nil, err
	}
	o.Status = domain.OrderStatus(status)
	return &o, nil
}

func (s *sqlStore) queryOrders(ctx context.Context, query string, args ...any) ([]domain.Order, error) {
	rows, err := s.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query orders: %w", err)
	}
	defer rows.Close()

	orders := []domain.Order{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		orders = append(orders, *o)
	}
	return orders, rows.Err()
}

// CreateOrder on a bare sqlStore runs inside whatever transaction q belongs to.
func (s *sqlStore) CreateOrder(ctx context.Context, order domain.NewOrder, items []domain.NewOrderItem) (*domain.Order, error) {
	if order.Status == "" {
		order.Status = domain.OrderStatusPending
	}
	now := s.now()

	result, err := s.q.ExecContext(ctx, `
		INSERT INTO orders (user_id, total_amount, status, shipping_address, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		order.UserID, order.TotalAmount, string(order.Status), order.ShippingAddress, now, now,
	)
	if err != nil {
		return nil, fmt.Errorf("insert order: %w", err)
	}

	orderID, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("order id: %w", err)
	}

	for _, item := range items {
		_, err := s.q.ExecContext(ctx, `
			INSERT INTO order_items (order_id, product_id, quantity, price)
			VALUES (?, ?, ?, ?)`,
			orderID, item.ProductID, item.Quantity, item.Price,
		)
		if err != nil {
			return nil, fmt.Errorf("insert order item: %w", err)
		}
	}

	return &domain.Order{
		ID:              orderID,
		UserID:          order.UserID,
		TotalAmount:     order.TotalAmount,
		Status:          order.Status,
		ShippingAddress: order.ShippingAddress,
		CreatedAt:       now,
		UpdatedAt:       now,
	}, nil
}

func (s *sqlStore) GetOrder(ctx context.Context, id int64) (*domain.Order, error) {
	o, err := scanOrder(s.q.QueryRowContext(ctx, "SELECT "+orderColumns+" FROM orders WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query order: %w", err)
	}
	return o, nil
}

func (s *sqlStore) GetUserOrders(ctx context.Context, userID int64) ([]domain.Order, error) {
	return s.queryOrders(ctx, "SELECT "+orderColumns+" FROM orders WHERE user_id = ? ORDER BY created_at DESC, id DESC", userID)
}

func (s *sqlStore) GetAllOrders(ctx context.Context) ([]domain.Order, error) {
	return s.queryOrders(ctx, "SELECT "+orderColumns+" FROM orders ORDER BY created_at DESC, id DESC")
}

func (s *sqlStore) GetOrderItems(ctx context.Context, orderID int64) ([]domain.OrderItem, error) {
	rows, err := s.q.QueryContext(ctx, "SELECT "+itemColumns+" FROM order_items WHERE order_id = ? ORDER BY id", orderID)
	if err != nil {
		return nil, fmt.Errorf("query order items: %w", err)
	}
	defer rows.Close()

	items := []domain.OrderItem{}
	for rows.Next() {
		var i domain.OrderItem
		if err := rows.Scan(&i.ID, &i.OrderID, &i.ProductID, &i.Quantity, &i.Price); err != nil {
			return nil, fmt.Errorf("scan order item: %w", err)
		}
		items = append(items, i)
	}
	return items, rows.Err()
}

func (s *sqlStore) UpdateOrderStatus(ctx context.Context, id int64, status domain.OrderStatus) (*domain.Order, error) {
	_, err := s.q.ExecContext(ctx, "UPDATE orders SET status = ?, updated_at = ? WHERE id = ?", string(status), s.now(), id)
	if err != nil {
		return nil, fmt.Errorf("update order status: %w", err)
	}
	return s.GetOrder(ctx, id)
}

// Contact messages

func scanMessage(row scanner) (*domain.ContactMessage, error) {
	var (
		m      domain.ContactMessage
		readAt sql.NullTime
	)
	if err := row.Scan(&m.ID, &m.Name, &m.Email, &m.Subject, &m.Message, &m.CreatedAt, &readAt); err != nil {
		return nil, err
	}
	if readAt.Valid {
		m.ReadAt = ptr(readAt.Time)
	}
	return &m, nil
}

func (s *sqlStore) CreateContactMessage(ctx context.Context, msg domain.NewContactMessage) (*domain.ContactMessage, error) {
	createdAt := s.now()
	result, err := s.q.ExecContext(ctx, `
		INSERT INTO contact_messages (name, email, subject, message, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		msg.Name, msg.Email, msg.Subject, msg.Message, createdAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert contact message: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("contact message id: %w", err)
	}

	return &domain.ContactMessage{
		ID:        id,
		Name:      msg.Name,
		Email:     msg.Email,
		Subject:   msg.Subject,
		Message:   msg.Message,
		CreatedAt: createdAt,
	}, nil
}

func (s *sqlStore) GetAllContactMessages(ctx context.Context) ([]domain.ContactMessage, error) {
	rows, err := s.q.QueryContext(ctx, "SELECT "+messageColumns+" FROM contact_messages ORDER BY created_at DESC, id DESC")
	if err != nil {
		return nil, fmt.Errorf("query contact messages: %w", err)
	}
	defer rows.Close()

	messages := []domain.ContactMessage{}
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, fmt.Errorf("scan contact message: %w", err)
		}
		messages = append(messages, *m)
	}
	return messages, rows.Err()
}

func (s *sqlStore) MarkContactMessageRead(ctx context.Context, id int64) (*domain.ContactMessage, error) {
	_, err := s.q.ExecContext(ctx, "UPDATE contact_messages SET read_at = ? WHERE id = ? AND read_at IS NULL", s.now(), id)
	if err != nil {
		return nil, fmt.Errorf("mark contact message read: %w", err)
	}

	m, err := scanMessage(s.q.QueryRowContext(ctx, "SELECT "+messageColumns+" FROM contact_messages WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query contact message: %w", err)
	}
	return m, nil
}

var (
	_ port.Storage = (*MySQLAdapter)(nil)
	_ port.Store   = (*sqlStore)(nil)
)
