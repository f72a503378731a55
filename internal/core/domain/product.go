package domain

import "time"

const LowStockThreshold = 5

type StockStatus string

const (
	StockIn  StockStatus = "in_stock"
	StockLow StockStatus = "low_stock"
	StockOut StockStatus = "out_of_stock"
)

func StockStatusOf(stock int) StockStatus {
	switch {
	case stock <= 0:
		return StockOut
	case stock <= LowStockThreshold:
		return StockLow
	default:
		return StockIn
	}
}

type Product struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Price       int64     `json:"price"` // minor units
	Category    string    `json:"category"`
	ImageURL    string    `json:"imageUrl"`
	Unit        string    `json:"unit"`
	Stock       int       `json:"stock"`
	CreatedAt   time.Time `json:"createdAt"`
}

func (p Product) StockStatus() StockStatus {
	return StockStatusOf(p.Stock)
}

type NewProduct struct {
	Name        string
	Description string
	Price       int64
	Category    string
	ImageURL    string
	Unit        string
	Stock       int
}

// ProductUpdate is a partial update; nil fields are left untouched.
type ProductUpdate struct {
	Name        *string
	Description *string
	Price       *int64
	Category    *string
	ImageURL    *string
	Unit        *string
	Stock       *int
}

func (u ProductUpdate) Empty() bool {
	return u.Name == nil && u.Description == nil && u.Price == nil && u.Category == nil &&
		u.ImageURL == nil && u.Unit == nil && u.Stock == nil
}

func (u ProductUpdate) Apply(p *Product) {
	if u.Name != nil {
		p.Name = *u.Name
	}
	if u.Description != nil {
		p.Description = *u.Description
	}
	if u.Price != nil {
		p.Price = *u.Price
	}
	if u.Category != nil {
		p.Category = *u.Category
	}
	if u.ImageURL != nil {
		p.ImageURL = *u.ImageURL
	}
	if u.Unit != nil {
		p.Unit = *u.Unit
	}
	if u.Stock != nil {
		p.Stock = *u.Stock
	}
}
