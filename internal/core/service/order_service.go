package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/rl1809/storefront/internal/core/domain"
	"github.com/rl1809/storefront/internal/port"
)

type OrderService struct {
	store    port.Storage
	locker   port.CheckoutLocker
	notifier port.Notifier
	log      zerolog.Logger
}

func NewOrderService(store port.Storage, locker port.CheckoutLocker, notifier port.Notifier, log zerolog.Logger) *OrderService {
	return &OrderService{
		store:    store,
		locker:   locker,
		notifier: notifier,
		log:      log,
	}
}

// PlaceOrder turns the caller's cart into a pending order. Prices are read
// from the catalog at this moment and copied onto the order items. The cart
// read, the order insert and the cart clear commit together, under a per-user
// lock that rejects a second concurrent checkout with ErrCheckoutInProgress.
func (s *OrderService) PlaceOrder(ctx context.Context, p domain.Principal, shippingAddress string) (*domain.OrderDetail, error) {
	if err := requireUser(p); err != nil {
		return nil, err
	}
	shippingAddress = strings.TrimSpace(shippingAddress)
	if shippingAddress == "" {
		return nil, invalid("shipping address is required")
	}

	unlock, err := s.locker.Lock(ctx, p.UserID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	var (
		order *domain.Order
		items []domain.OrderItem
	)
	err = s.store.WithTx(ctx, func(tx port.Store) error {
		cart, err := tx.GetCartItems(ctx, p.UserID)
		if err != nil {
			return fmt.Errorf("load cart: %w", err)
		}
		if len(cart) == 0 {
			return domain.ErrEmptyCart
		}

		lines := make([]domain.NewOrderItem, 0, len(cart))
		var total int64
		for _, item := range cart {
			product, err := tx.GetProduct(ctx, item.ProductID)
			if err != nil {
				return fmt.Errorf("load product %d: %w", item.ProductID, err)
			}
			if product == nil {
				return fmt.Errorf("product %d: %w", item.ProductID, domain.ErrInvalidCartState)
			}

			line, ok := domain.LineTotal(product.Price, item.Quantity)
			if ok {
				total, ok = domain.AddAmounts(total, line)
			}
			if !ok {
				return invalid("order total exceeds the supported amount")
			}

			lines = append(lines, domain.NewOrderItem{
				ProductID: item.ProductID,
				Quantity:  item.Quantity,
				Price:     product.Price,
			})
		}

		order, err = tx.CreateOrder(ctx, domain.NewOrder{
			UserID:          p.UserID,
			TotalAmount:     total,
			Status:          domain.OrderStatusPending,
			ShippingAddress: shippingAddress,
		}, lines)
		if err != nil {
			return fmt.Errorf("create order: %w", err)
		}

		if items, err = tx.GetOrderItems(ctx, order.ID); err != nil {
			return fmt.Errorf("load order items: %w", err)
		}

		if _, err := tx.ClearCart(ctx, p.UserID); err != nil {
			return fmt.Errorf("clear cart: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().
		Int64("order_id", order.ID).
		Int64("user_id", p.UserID).
		Int64("total_amount", order.TotalAmount).
		Int("items", len(items)).
		Msg("order placed")

	s.confirm(ctx, *order, items)

	return &domain.OrderDetail{Order: *order, Items: items}, nil
}

// confirm is best-effort; the order is already committed.
func (s *OrderService) confirm(ctx context.Context, order domain.Order, items []domain.OrderItem) {
	user, err := s.store.GetUser(ctx, order.UserID)
	if err == nil && user == nil {
		err = fmt.Errorf("user %d: %w", order.UserID, domain.ErrNotFound)
	}
	var lines []domain.OrderLine
	if err == nil {
		lines, err = s.orderLines(ctx, items)
	}
	if err == nil {
		err = s.notifier.NotifyOrderConfirmation(ctx, *user, order, lines)
	}
	if err != nil {
		s.log.Warn().Err(notificationFailure(err)).Int64("order_id", order.ID).Msg("order confirmation not sent")
	}
}

// orderLines attaches the product name and category to each item. A product
// deleted since checkout leaves both empty.
func (s *OrderService) orderLines(ctx context.Context, items []domain.OrderItem) ([]domain.OrderLine, error) {
	lines := make([]domain.OrderLine, 0, len(items))
	for _, item := range items {
		line := domain.OrderLine{OrderItem: item}
		product, err := s.store.GetProduct(ctx, item.ProductID)
		if err != nil {
			return nil, fmt.Errorf("load product %d: %w", item.ProductID, err)
		}
		if product != nil {
			line.ProductName = product.Name
			line.Category = product.Category
		}
		lines = append(lines, line)
	}
	return lines, nil
}

func (s *OrderService) Get(ctx context.Context, p domain.Principal, orderID int64) (*domain.OrderDetail, error) {
	if err := requireUser(p); err != nil {
		return nil, err
	}

	order, err := s.store.GetOrder(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("load order: %w", err)
	}
	if order == nil {
		return nil, fmt.Errorf("order %d: %w", orderID, domain.ErrNotFound)
	}
	if order.UserID != p.UserID {
		if err := requireAdmin(ctx, s.store, p); err != nil {
			return nil, err
		}
	}

	items, err := s.store.GetOrderItems(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("load order items: %w", err)
	}
	return &domain.OrderDetail{Order: *order, Items: items}, nil
}

func (s *OrderService) ListMine(ctx context.Context, p domain.Principal) ([]domain.Order, error) {
	if err := requireUser(p); err != nil {
		return nil, err
	}
	orders, err := s.store.GetUserOrders(ctx, p.UserID)
	if err != nil {
		return nil, fmt.Errorf("load orders: %w", err)
	}
	return orders, nil
}

func (s *OrderService) ListAll(ctx context.Context, p domain.Principal) ([]domain.Order, error) {
	if err := requireAdmin(ctx, s.store, p); err != nil {
		return nil, err
	}
	orders, err := s.store.GetAllOrders(ctx)
	if err != nil {
		return nil, fmt.Errorf("load orders: %w", err)
	}
	return orders, nil
}

func (s *OrderService) UpdateStatus(ctx context.Context, p domain.Principal, orderID int64, status domain.OrderStatus) (*domain.Order, error) {
	if err := requireAdmin(ctx, s.store, p); err != nil {
		return nil, err
	}
	if !status.Valid() {
		return nil, invalid("unknown order status %q", status)
	}

	order, err := s.store.UpdateOrderStatus(ctx, orderID, status)
	if err != nil {
		return nil, fmt.Errorf("update order status: %w", err)
	}
	if order == nil {
		return nil, fmt.Errorf("order %d: %w", orderID, domain.ErrNotFound)
	}

	s.log.Info().Int64("order_id", orderID).Str("status", string(status)).Msg("order status changed")
	return order, nil
}
