package storage

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rl1809/storefront/internal/core/domain"
	"github.com/rl1809/storefront/internal/port"
)

var fixedNow = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func newMockAdapter(t *testing.T) (*MySQLAdapter, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	adapter := NewMySQLAdapter(db)
	adapter.now = func() time.Time { return fixedNow }
	return adapter, mock
}

func TestMySQL_CreateUser_NormalizesIdentity(t *testing.T) {
	adapter, mock := newMockAdapter(t)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO users")).
		WithArgs("alice", "alice@example.com", "hash", "Alice", nil, "customer").
		WillReturnResult(sqlmock.NewResult(7, 1))

	user, err := adapter.CreateUser(context.Background(), domain.NewUser{
		Username:  "  Alice ",
		Email:     "Alice@Example.com",
		Password:  "hash",
		FirstName: "Alice",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(7), user.ID)
	assert.Equal(t, "alice", user.Username)
	assert.Equal(t, "alice@example.com", user.Email)
	assert.Equal(t, domain.RoleCustomer, user.Role)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMySQL_CreateUser_DuplicateIsConflict(t *testing.T) {
	adapter, mock := newMockAdapter(t)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO users")).
		WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry 'alice' for key 'username'"})

	_, err := adapter.CreateUser(context.Background(), domain.NewUser{Username: "ALICE", Email: "a@x.io", Password: "h"})
	assert.ErrorIs(t, err, domain.ErrConflict)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMySQL_GetUser_Absent(t *testing.T) {
	adapter, mock := newMockAdapter(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT " + userColumns + " FROM users WHERE id = ?")).
		WithArgs(int64(42)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "username", "email", "password", "first_name", "last_name", "role"}))

	user, err := adapter.GetUser(context.Background(), 42)
	require.NoError(t, err)
	assert.Nil(t, user)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMySQL_GetUserByUsername_LowercasesLookup(t *testing.T) {
	adapter, mock := newMockAdapter(t)

	rows := sqlmock.NewRows([]string{"id", "username", "email", "password", "first_name", "last_name", "role"}).
		AddRow(int64(1), "admin", "admin@fruitfresh.com", "hash", "Admin", nil, "admin")
	mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE username = ?")).
		WithArgs("admin").
		WillReturnRows(rows)

	user, err := adapter.GetUserByUsername(context.Background(), "ADMIN")
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, "Admin", user.FirstName)
	assert.Empty(t, user.LastName)
	assert.Equal(t, domain.RoleAdmin, user.Role)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMySQL_AddToCart_Upserts(t *testing.T) {
	adapter, mock := newMockAdapter(t)

	mock.ExpectExec(regexp.QuoteMeta("ON DUPLICATE KEY UPDATE quantity = quantity + VALUES(quantity)")).
		WithArgs(int64(3), int64(10), 2, fixedNow).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectQuery(regexp.QuoteMeta("FROM cart_items WHERE user_id = ? AND product_id = ?")).
		WithArgs(int64(3), int64(10)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "product_id", "quantity", "added_at"}).
			AddRow(int64(5), int64(3), int64(10), 5, fixedNow))

	item, err := adapter.AddToCart(context.Background(), domain.NewCartItem{UserID: 3, ProductID: 10, Quantity: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(5), item.ID)
	assert.Equal(t, 5, item.Quantity)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMySQL_DeleteProduct_Missing(t *testing.T) {
	adapter, mock := newMockAdapter(t)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM products WHERE id = ?")).
		WithArgs(int64(99)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	deleted, err := adapter.DeleteProduct(context.Background(), 99)
	require.NoError(t, err)
	assert.False(t, deleted)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMySQL_UpdateProduct_OnlyChangedColumns(t *testing.T) {
	adapter, mock := newMockAdapter(t)

	price := int64(450)
	mock.ExpectExec(regexp.QuoteMeta("UPDATE products SET price = ? WHERE id = ?")).
		WithArgs(int64(450), int64(2)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta("FROM products WHERE id = ?")).
		WithArgs(int64(2)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "description", "price", "category", "image_url", "unit", "stock", "created_at"}).
			AddRow(int64(2), "Organic Carrots", "Sweet", int64(450), "vegetables", "", "bunch", 40, fixedNow))

	p, err := adapter.UpdateProduct(context.Background(), 2, domain.ProductUpdate{Price: &price})
	require.NoError(t, err)
	assert.Equal(t, int64(450), p.Price)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMySQL_CreateOrder_Atomic(t *testing.T) {
	adapter, mock := newMockAdapter(t)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO orders")).
		WithArgs(int64(3), int64(1397), "pending", "addr", fixedNow, fixedNow).
		WillReturnResult(sqlmock.NewResult(11, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO order_items")).
		WithArgs(int64(11), int64(1), 2, int64(399)).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO order_items")).
		WithArgs(int64(11), int64(2), 1, int64(599)).
		WillReturnResult(sqlmock.NewResult(2, 1))
	mock.ExpectCommit()

	order, err := adapter.CreateOrder(context.Background(),
		domain.NewOrder{UserID: 3, TotalAmount: 1397, ShippingAddress: "addr"},
		[]domain.NewOrderItem{{ProductID: 1, Quantity: 2, Price: 399}, {ProductID: 2, Quantity: 1, Price: 599}},
	)
	require.NoError(t, err)
	assert.Equal(t, int64(11), order.ID)
	assert.Equal(t, domain.OrderStatusPending, order.Status)
	assert.Equal(t, order.CreatedAt, order.UpdatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMySQL_CreateOrder_RollsBackOnItemFailure(t *testing.T) {
	adapter, mock := newMockAdapter(t)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO orders")).
		WillReturnResult(sqlmock.NewResult(11, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO order_items")).
		WillReturnError(errors.New("connection reset"))
	mock.ExpectRollback()

	_, err := adapter.CreateOrder(context.Background(),
		domain.NewOrder{UserID: 3, TotalAmount: 399, ShippingAddress: "addr"},
		[]domain.NewOrderItem{{ProductID: 1, Quantity: 1, Price: 399}},
	)
	require.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMySQL_WithTx_RollsBackOnError(t *testing.T) {
	adapter, mock := newMockAdapter(t)
	errBoom := errors.New("boom")

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM cart_items WHERE user_id = ?")).
		WithArgs(int64(3)).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectRollback()

	err := adapter.WithTx(context.Background(), func(tx port.Store) error {
		if _, err := tx.ClearCart(context.Background(), 3); err != nil {
			return err
		}
		return errBoom
	})
	assert.ErrorIs(t, err, errBoom)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMySQL_UpdateOrderStatus_RefreshesUpdatedAt(t *testing.T) {
	adapter, mock := newMockAdapter(t)
	created := fixedNow.Add(-time.Hour)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE orders SET status = ?, updated_at = ? WHERE id = ?")).
		WithArgs("shipped", fixedNow, int64(4)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta("FROM orders WHERE id = ?")).
		WithArgs(int64(4)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "total_amount", "status", "shipping_address", "created_at", "updated_at"}).
			AddRow(int64(4), int64(3), int64(1397), "shipped", "addr", created, fixedNow))

	order, err := adapter.UpdateOrderStatus(context.Background(), 4, domain.OrderStatusShipped)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusShipped, order.Status)
	assert.Equal(t, created, order.CreatedAt)
	assert.Equal(t, fixedNow, order.UpdatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMySQL_GetUserOrders_NewestFirst(t *testing.T) {
	adapter, mock := newMockAdapter(t)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE user_id = ? ORDER BY created_at DESC, id DESC")).
		WithArgs(int64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "total_amount", "status", "shipping_address", "created_at", "updated_at"}))

	orders, err := adapter.GetUserOrders(context.Background(), 3)
	require.NoError(t, err)
	assert.NotNil(t, orders)
	assert.Empty(t, orders)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMySQL_MarkContactMessageRead(t *testing.T) {
	adapter, mock := newMockAdapter(t)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE contact_messages SET read_at = ? WHERE id = ? AND read_at IS NULL")).
		WithArgs(fixedNow, int64(8)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta("FROM contact_messages WHERE id = ?")).
		WithArgs(int64(8)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "email", "subject", "message", "created_at", "read_at"}).
			AddRow(int64(8), "Bob", "bob@x.io", "Hi", "Hello", fixedNow, fixedNow))

	msg, err := adapter.MarkContactMessageRead(context.Background(), 8)
	require.NoError(t, err)
	require.NotNil(t, msg.ReadAt)
	assert.Equal(t, fixedNow, *msg.ReadAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}
