package domain

import (
	"fmt"
	"math"
	"time"
)

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
	OrderStatusCompleted  OrderStatus = "completed"
)

var orderStatuses = map[OrderStatus]struct{}{
	OrderStatusPending:    {},
	OrderStatusProcessing: {},
	OrderStatusShipped:    {},
	OrderStatusDelivered:  {},
	OrderStatusCancelled:  {},
	OrderStatusCompleted:  {},
}

func (s OrderStatus) Valid() bool {
	_, ok := orderStatuses[s]
	return ok
}

type Order struct {
	ID              int64       `json:"id"`
	UserID          int64       `json:"userId"`
	TotalAmount     int64       `json:"totalAmount"`
	Status          OrderStatus `json:"status"`
	ShippingAddress string      `json:"shippingAddress"`
	CreatedAt       time.Time   `json:"createdAt"`
	UpdatedAt       time.Time   `json:"updatedAt"`
}

type NewOrder struct {
	UserID          int64
	TotalAmount     int64
	Status          OrderStatus
	ShippingAddress string
}

type OrderItem struct {
	ID        int64 `json:"id"`
	OrderID   int64 `json:"orderId"`
	ProductID int64 `json:"productId"`
	Quantity  int   `json:"quantity"`
	Price     int64 `json:"price"` // snapshot at order time, minor units
}

func (i OrderItem) Total() int64 {
	total, ok := LineTotal(i.Price, i.Quantity)
	if !ok {
		return math.MaxInt64
	}
	return total
}

type NewOrderItem struct {
	ProductID int64
	Quantity  int
	Price     int64
}

// OrderLine is an order item with the product it refers to, as shown in
// confirmations. Name and category are empty once the product is deleted.
type OrderLine struct {
	OrderItem
	ProductName string `json:"productName,omitempty"`
	Category    string `json:"category,omitempty"`
}

type OrderDetail struct {
	Order
	Items []OrderItem `json:"items"`
}

// ShippingDetails are the checkout form fields folded into the free-text
// shipping address stored on the order.
type ShippingDetails struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Address   string `json:"address"`
	City      string `json:"city"`
	State     string `json:"state"`
	ZipCode   string `json:"zipCode"`
	Phone     string `json:"phone"`
}

func (d ShippingDetails) Compose() string {
	return fmt.Sprintf("%s %s, %s, %s, %s %s. Phone: %s",
		d.FirstName, d.LastName, d.Address, d.City, d.State, d.ZipCode, d.Phone)
}
