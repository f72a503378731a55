package notify

import (
	"fmt"
	"time"

	"github.com/rl1809/storefront/internal/core/domain"
)

const (
	EventContactCreated = "contact.created"
	EventOrderConfirmed = "order.confirmed"
)

type ContactEvent struct {
	Type      string    `json:"type"`
	Subject   string    `json:"subject"`
	MessageID int64     `json:"messageId"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Topic     string    `json:"topic"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"createdAt"`
}

type OrderEventItem struct {
	ProductID   int64  `json:"productId"`
	ProductName string `json:"productName,omitempty"`
	Category    string `json:"category,omitempty"`
	Quantity    int    `json:"quantity"`
	Price       string `json:"price"`
	Total       string `json:"total"`
}

type OrderEvent struct {
	Type            string           `json:"type"`
	Subject         string           `json:"subject"`
	OrderID         int64            `json:"orderId"`
	UserID          int64            `json:"userId"`
	Recipient       string           `json:"recipient"`
	Greeting        string           `json:"greeting"`
	Status          string           `json:"status"`
	ShippingAddress string           `json:"shippingAddress"`
	TotalCents      int64            `json:"totalCents"`
	Total           string           `json:"total"`
	Items           []OrderEventItem `json:"items"`
	CreatedAt       time.Time        `json:"createdAt"`
}

func NewContactEvent(msg domain.ContactMessage) ContactEvent {
	return ContactEvent{
		Type:      EventContactCreated,
		Subject:   "Contact Form: " + msg.Subject,
		MessageID: msg.ID,
		Name:      msg.Name,
		Email:     msg.Email,
		Topic:     msg.Subject,
		Message:   msg.Message,
		CreatedAt: msg.CreatedAt,
	}
}

func NewOrderEvent(user domain.User, order domain.Order, lines []domain.OrderLine) OrderEvent {
	items := make([]OrderEventItem, 0, len(lines))
	for _, line := range lines {
		items = append(items, OrderEventItem{
			ProductID:   line.ProductID,
			ProductName: line.ProductName,
			Category:    line.Category,
			Quantity:    line.Quantity,
			Price:       domain.FormatCents(line.Price),
			Total:       domain.FormatCents(line.Total()),
		})
	}

	return OrderEvent{
		Type:            EventOrderConfirmed,
		Subject:         fmt.Sprintf("Order Confirmation #%d", order.ID),
		OrderID:         order.ID,
		UserID:          user.ID,
		Recipient:       user.Email,
		Greeting:        "Dear " + user.DisplayName() + ",",
		Status:          string(order.Status),
		ShippingAddress: order.ShippingAddress,
		TotalCents:      order.TotalAmount,
		Total:           domain.FormatCents(order.TotalAmount),
		Items:           items,
		CreatedAt:       order.CreatedAt,
	}
}
