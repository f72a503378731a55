package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rl1809/storefront/internal/core/domain"
)

type recordingWriter struct {
	msgs   []kafka.Message
	err    error
	closed bool
}

func (w *recordingWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *recordingWriter) Close() error {
	w.closed = true
	return nil
}

var (
	testUser  = domain.User{ID: 3, Username: "jane", Email: "jane@example.com", FirstName: "Jane"}
	testOrder = domain.Order{
		ID:              11,
		UserID:          3,
		TotalAmount:     1397,
		Status:          domain.OrderStatusPending,
		ShippingAddress: "Jane Doe, 1 Main St, Springfield, IL 62701. Phone: 555",
		CreatedAt:       time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC),
	}
	testLines = []domain.OrderLine{
		{
			OrderItem:   domain.OrderItem{ID: 1, OrderID: 11, ProductID: 1, Quantity: 2, Price: 399},
			ProductName: "Organic Apples",
			Category:    "fruits",
		},
		{OrderItem: domain.OrderItem{ID: 2, OrderID: 11, ProductID: 8, Quantity: 1, Price: 599}},
	}
)

func TestNewOrderEvent(t *testing.T) {
	ev := NewOrderEvent(testUser, testOrder, testLines)

	assert.Equal(t, EventOrderConfirmed, ev.Type)
	assert.Equal(t, "Order Confirmation #11", ev.Subject)
	assert.Equal(t, "Dear Jane,", ev.Greeting)
	assert.Equal(t, "$13.97", ev.Total)
	require.Len(t, ev.Items, 2)
	assert.Equal(t, "Organic Apples", ev.Items[0].ProductName)
	assert.Equal(t, "fruits", ev.Items[0].Category)
	assert.Equal(t, "$3.99", ev.Items[0].Price)
	assert.Equal(t, "$7.98", ev.Items[0].Total)
	assert.Empty(t, ev.Items[1].ProductName, "a deleted product leaves the name empty")
	assert.Equal(t, "$5.99", ev.Items[1].Total)
}

func TestNewOrderEvent_GreetsByUsername(t *testing.T) {
	user := testUser
	user.FirstName = ""
	assert.Equal(t, "Dear jane,", NewOrderEvent(user, testOrder, nil).Greeting)
}

func TestKafkaNotifier_OrderConfirmation(t *testing.T) {
	w := &recordingWriter{}
	n := NewKafkaNotifier(w)

	require.NoError(t, n.NotifyOrderConfirmation(context.Background(), testUser, testOrder, testLines))
	require.Len(t, w.msgs, 1)

	msg := w.msgs[0]
	assert.Equal(t, "11", string(msg.Key))
	require.Len(t, msg.Headers, 1)
	assert.Equal(t, EventOrderConfirmed, string(msg.Headers[0].Value))

	var ev OrderEvent
	require.NoError(t, json.Unmarshal(msg.Value, &ev))
	assert.Equal(t, int64(1397), ev.TotalCents)
	assert.Equal(t, "jane@example.com", ev.Recipient)
	require.Len(t, ev.Items, 2)
	assert.Equal(t, "Organic Apples", ev.Items[0].ProductName)
}

func TestKafkaNotifier_ContactMessage(t *testing.T) {
	w := &recordingWriter{}
	n := NewKafkaNotifier(w)

	msg := domain.ContactMessage{ID: 4, Name: "Bob", Email: "bob@x.io", Subject: "Delivery", Message: "When?"}
	require.NoError(t, n.NotifyContactMessage(context.Background(), msg))
	require.Len(t, w.msgs, 1)

	var ev ContactEvent
	require.NoError(t, json.Unmarshal(w.msgs[0].Value, &ev))
	assert.Equal(t, "Contact Form: Delivery", ev.Subject)
	assert.Equal(t, "When?", ev.Message)

	require.NoError(t, n.Close())
	assert.True(t, w.closed)
}

func TestKafkaNotifier_WriteError(t *testing.T) {
	errDown := errors.New("broker down")
	n := NewKafkaNotifier(&recordingWriter{err: errDown})

	err := n.NotifyContactMessage(context.Background(), domain.ContactMessage{ID: 1})
	assert.ErrorIs(t, err, errDown)
}

func TestLogNotifier(t *testing.T) {
	var buf bytes.Buffer
	n := NewLogNotifier(zerolog.New(&buf))

	require.NoError(t, n.NotifyOrderConfirmation(context.Background(), testUser, testOrder, testLines))
	assert.Contains(t, buf.String(), `"order_id":11`)
	assert.Contains(t, buf.String(), `"total":"$13.97"`)
}
