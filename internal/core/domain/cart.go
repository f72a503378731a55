package domain

import (
	"math"
	"time"
)

// MaxItemQuantity bounds a single cart line, including merged additions.
const MaxItemQuantity = 999

type CartItem struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"userId"`
	ProductID int64     `json:"productId"`
	Quantity  int       `json:"quantity"`
	AddedAt   time.Time `json:"addedAt"`
}

type NewCartItem struct {
	UserID    int64
	ProductID int64
	Quantity  int
}

// CartLine joins a cart row with the live product. Product is nil when the
// referenced product has been deleted.
type CartLine struct {
	Item    CartItem `json:"item"`
	Product *Product `json:"product"`
}

func (l CartLine) Available() bool {
	return l.Product != nil
}

// Total saturates at math.MaxInt64 instead of wrapping.
func (l CartLine) Total() int64 {
	if l.Product == nil {
		return 0
	}
	total, ok := LineTotal(l.Product.Price, l.Item.Quantity)
	if !ok {
		return math.MaxInt64
	}
	return total
}

type Cart struct {
	UserID     int64      `json:"userId"`
	Lines      []CartLine `json:"lines"`
	TotalItems int        `json:"totalItems"`
	TotalPrice int64      `json:"totalPrice"`
}

// NewCart derives the aggregates. Lines whose product is gone still count
// toward TotalItems but contribute nothing to TotalPrice.
func NewCart(userID int64, lines []CartLine) *Cart {
	c := &Cart{UserID: userID, Lines: lines}
	for _, l := range lines {
		c.TotalItems += l.Item.Quantity
		if sum, ok := AddAmounts(c.TotalPrice, l.Total()); ok {
			c.TotalPrice = sum
		} else {
			c.TotalPrice = math.MaxInt64
		}
	}
	if c.Lines == nil {
		c.Lines = []CartLine{}
	}
	return c
}
