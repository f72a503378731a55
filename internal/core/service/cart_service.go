package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/rl1809/storefront/internal/core/domain"
	"github.com/rl1809/storefront/internal/port"
)

type CartService struct {
	store port.Storage
	log   zerolog.Logger
}

func NewCartService(store port.Storage, log zerolog.Logger) *CartService {
	return &CartService{store: store, log: log}
}

// Get joins every cart row with the live product, so totals follow the
// current catalog price until checkout.
func (s *CartService) Get(ctx context.Context, p domain.Principal) (*domain.Cart, error) {
	if err := requireUser(p); err != nil {
		return nil, err
	}

	items, err := s.store.GetCartItems(ctx, p.UserID)
	if err != nil {
		return nil, fmt.Errorf("load cart: %w", err)
	}

	lines := make([]domain.CartLine, 0, len(items))
	for _, item := range items {
		product, err := s.store.GetProduct(ctx, item.ProductID)
		if err != nil {
			return nil, fmt.Errorf("load product %d: %w", item.ProductID, err)
		}
		lines = append(lines, domain.CartLine{Item: item, Product: product})
	}

	return domain.NewCart(p.UserID, lines), nil
}

func validQuantity(quantity int) error {
	if quantity < 1 || quantity > domain.MaxItemQuantity {
		return invalid("quantity must be between 1 and %d", domain.MaxItemQuantity)
	}
	return nil
}

// Add merges into an existing line. The merged quantity is checked against
// MaxItemQuantity in the same unit of work as the write.
func (s *CartService) Add(ctx context.Context, p domain.Principal, productID int64, quantity int) (*domain.CartItem, error) {
	if err := requireUser(p); err != nil {
		return nil, err
	}
	if err := validQuantity(quantity); err != nil {
		return nil, err
	}

	var item *domain.CartItem
	err := s.store.WithTx(ctx, func(tx port.Store) error {
		product, err := tx.GetProduct(ctx, productID)
		if err != nil {
			return fmt.Errorf("load product %d: %w", productID, err)
		}
		if product == nil {
			return fmt.Errorf("product %d: %w", productID, domain.ErrNotFound)
		}

		items, err := tx.GetCartItems(ctx, p.UserID)
		if err != nil {
			return fmt.Errorf("load cart: %w", err)
		}
		for _, existing := range items {
			if existing.ProductID == productID && existing.Quantity > domain.MaxItemQuantity-quantity {
				return invalid("quantity must be between 1 and %d", domain.MaxItemQuantity)
			}
		}

		item, err = tx.AddToCart(ctx, domain.NewCartItem{UserID: p.UserID, ProductID: productID, Quantity: quantity})
		if err != nil {
			return fmt.Errorf("add to cart: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Debug().Int64("user_id", p.UserID).Int64("product_id", productID).Int("quantity", item.Quantity).Msg("cart updated")
	return item, nil
}

func (s *CartService) UpdateQuantity(ctx context.Context, p domain.Principal, itemID int64, quantity int) (*domain.CartItem, error) {
	if err := requireUser(p); err != nil {
		return nil, err
	}
	if err := validQuantity(quantity); err != nil {
		return nil, err
	}
	if err := s.checkOwner(ctx, p.UserID, itemID); err != nil {
		return nil, err
	}

	item, err := s.store.UpdateCartItemQuantity(ctx, itemID, quantity)
	if err != nil {
		return nil, fmt.Errorf("update cart item: %w", err)
	}
	if item == nil {
		return nil, fmt.Errorf("cart item %d: %w", itemID, domain.ErrNotFound)
	}
	return item, nil
}

func (s *CartService) Remove(ctx context.Context, p domain.Principal, itemID int64) error {
	if err := requireUser(p); err != nil {
		return err
	}
	if err := s.checkOwner(ctx, p.UserID, itemID); err != nil {
		return err
	}

	removed, err := s.store.RemoveFromCart(ctx, itemID)
	if err != nil {
		return fmt.Errorf("remove cart item: %w", err)
	}
	if !removed {
		return fmt.Errorf("cart item %d: %w", itemID, domain.ErrNotFound)
	}
	return nil
}

func (s *CartService) Clear(ctx context.Context, p domain.Principal) error {
	if err := requireUser(p); err != nil {
		return err
	}
	if _, err := s.store.ClearCart(ctx, p.UserID); err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}
	return nil
}

// checkOwner reports another user's cart item as not found.
func (s *CartService) checkOwner(ctx context.Context, userID, itemID int64) error {
	items, err := s.store.GetCartItems(ctx, userID)
	if err != nil {
		return fmt.Errorf("load cart: %w", err)
	}
	for _, item := range items {
		if item.ID == itemID {
			return nil
		}
	}
	return fmt.Errorf("cart item %d: %w", itemID, domain.ErrNotFound)
}
