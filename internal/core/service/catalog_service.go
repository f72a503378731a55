package service

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/rl1809/storefront/internal/core/domain"
	"github.com/rl1809/storefront/internal/port"
)

type SortOrder string

const (
	SortFeatured      SortOrder = "featured"
	SortPriceLowHigh  SortOrder = "price-low-high"
	SortPriceHighLow  SortOrder = "price-high-low"
	SortName          SortOrder = "name"
	allProductsFlight           = "products"
)

func (s SortOrder) Valid() bool {
	switch s {
	case "", SortFeatured, SortPriceLowHigh, SortPriceHighLow, SortName:
		return true
	}
	return false
}

type ProductFilter struct {
	Category    string
	MaxPrice    *int64
	InStockOnly bool
	Query       string
	Sort        SortOrder
}

type ProductListing struct {
	domain.Product
	StockStatus domain.StockStatus `json:"stockStatus"`
}

type Stats struct {
	Products       int    `json:"products"`
	LowStock       int    `json:"lowStock"`
	Orders         int    `json:"orders"`
	PendingOrders  int    `json:"pendingOrders"`
	Revenue        int64  `json:"revenue"`
	RevenueDisplay string `json:"revenueDisplay"`
	Users          int    `json:"users"`
	UnreadMessages int    `json:"unreadMessages"`
}

type CatalogService struct {
	store  port.Storage
	cache  port.CatalogCache
	flight singleflight.Group
	log    zerolog.Logger

	// generation counts product writes. cacheMu orders a load's cache fill
	// against a write's invalidation.
	cacheMu    sync.Mutex
	generation uint64
}

func NewCatalogService(store port.Storage, cache port.CatalogCache, log zerolog.Logger) *CatalogService {
	return &CatalogService{store: store, cache: cache, log: log}
}

// products is cache-aside over GetAllProducts. Cache errors only cost a
// storage read. A load that overlapped a product write does not fill the
// cache. The returned slice is shared and must not be modified.
func (s *CatalogService) products(ctx context.Context) ([]domain.Product, error) {
	cached, ok, err := s.cache.GetProducts(ctx)
	if err != nil {
		s.log.Warn().Err(err).Msg("catalog cache read failed")
	}
	if ok {
		return cached, nil
	}

	v, err, _ := s.flight.Do(allProductsFlight, func() (any, error) {
		s.cacheMu.Lock()
		gen := s.generation
		s.cacheMu.Unlock()

		products, err := s.store.GetAllProducts(ctx)
		if err != nil {
			return nil, fmt.Errorf("load products: %w", err)
		}

		s.cacheMu.Lock()
		defer s.cacheMu.Unlock()
		if gen != s.generation {
			s.log.Debug().Msg("catalog changed during load, cache not filled")
			return products, nil
		}
		if err := s.cache.SetProducts(ctx, products); err != nil {
			s.log.Warn().Err(err).Msg("catalog cache write failed")
		}
		return products, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]domain.Product), nil
}

// invalidate runs after every product write. Later readers start a fresh
// load instead of joining one that may have read the old rows.
func (s *CatalogService) invalidate(ctx context.Context) {
	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()

	s.generation++
	s.flight.Forget(allProductsFlight)
	if err := s.cache.Invalidate(ctx); err != nil {
		s.log.Warn().Err(err).Msg("catalog cache invalidate failed")
	}
}

func (s *CatalogService) List(ctx context.Context, f ProductFilter) ([]ProductListing, error) {
	if !f.Sort.Valid() {
		return nil, invalid("unknown sort order %q", f.Sort)
	}

	products, err := s.products(ctx)
	if err != nil {
		return nil, err
	}

	query := strings.ToLower(strings.TrimSpace(f.Query))
	out := make([]ProductListing, 0, len(products))
	for _, p := range products {
		if f.Category != "" && f.Category != "all" && p.Category != f.Category {
			continue
		}
		if f.MaxPrice != nil && p.Price > *f.MaxPrice {
			continue
		}
		if f.InStockOnly && p.Stock <= 0 {
			continue
		}
		if query != "" && !strings.Contains(strings.ToLower(p.Name), query) {
			continue
		}
		out = append(out, ProductListing{Product: p, StockStatus: p.StockStatus()})
	}

	switch f.Sort {
	case SortPriceLowHigh:
		slices.SortStableFunc(out, func(a, b ProductListing) int { return cmp.Compare(a.Price, b.Price) })
	case SortPriceHighLow:
		slices.SortStableFunc(out, func(a, b ProductListing) int { return cmp.Compare(b.Price, a.Price) })
	case SortName:
		slices.SortStableFunc(out, func(a, b ProductListing) int {
			return cmp.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name))
		})
	}
	return out, nil
}

func (s *CatalogService) Get(ctx context.Context, id int64) (*ProductListing, error) {
	p, err := s.store.GetProduct(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load product: %w", err)
	}
	if p == nil {
		return nil, fmt.Errorf("product %d: %w", id, domain.ErrNotFound)
	}
	return &ProductListing{Product: *p, StockStatus: p.StockStatus()}, nil
}

func (s *CatalogService) Categories(ctx context.Context) ([]string, error) {
	products, err := s.products(ctx)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{})
	out := []string{}
	for _, p := range products {
		if _, ok := seen[p.Category]; ok {
			continue
		}
		seen[p.Category] = struct{}{}
		out = append(out, p.Category)
	}
	slices.Sort(out)
	return out, nil
}

func validateProduct(p domain.NewProduct) error {
	if err := required(
		field{"name", p.Name},
		field{"description", p.Description},
		field{"category", p.Category},
		field{"unit", p.Unit},
	); err != nil {
		return err
	}
	if p.Price < 0 {
		return invalid("price must not be negative")
	}
	if p.Stock < 0 {
		return invalid("stock must not be negative")
	}
	return nil
}

func (s *CatalogService) Create(ctx context.Context, principal domain.Principal, in domain.NewProduct) (*domain.Product, error) {
	if err := requireAdmin(ctx, s.store, principal); err != nil {
		return nil, err
	}
	if err := validateProduct(in); err != nil {
		return nil, err
	}

	p, err := s.store.CreateProduct(ctx, in)
	if err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}
	s.invalidate(ctx)

	s.log.Info().Int64("product_id", p.ID).Str("name", p.Name).Msg("product created")
	return p, nil
}

func (s *CatalogService) Update(ctx context.Context, principal domain.Principal, id int64, update domain.ProductUpdate) (*domain.Product, error) {
	if err := requireAdmin(ctx, s.store, principal); err != nil {
		return nil, err
	}
	if update.Empty() {
		return nil, invalid("no fields to update")
	}

	current, err := s.store.GetProduct(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load product: %w", err)
	}
	if current == nil {
		return nil, fmt.Errorf("product %d: %w", id, domain.ErrNotFound)
	}

	merged := *current
	update.Apply(&merged)
	if err := validateProduct(domain.NewProduct{
		Name:        merged.Name,
		Description: merged.Description,
		Price:       merged.Price,
		Category:    merged.Category,
		Unit:        merged.Unit,
		Stock:       merged.Stock,
	}); err != nil {
		return nil, err
	}

	p, err := s.store.UpdateProduct(ctx, id, update)
	if err != nil {
		return nil, fmt.Errorf("update product: %w", err)
	}
	if p == nil {
		return nil, fmt.Errorf("product %d: %w", id, domain.ErrNotFound)
	}
	s.invalidate(ctx)
	return p, nil
}

func (s *CatalogService) Delete(ctx context.Context, principal domain.Principal, id int64) error {
	if err := requireAdmin(ctx, s.store, principal); err != nil {
		return err
	}

	deleted, err := s.store.DeleteProduct(ctx, id)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	if !deleted {
		return fmt.Errorf("product %d: %w", id, domain.ErrNotFound)
	}
	s.invalidate(ctx)

	s.log.Info().Int64("product_id", id).Msg("product deleted")
	return nil
}

// Stats backs the admin dashboard. Revenue excludes cancelled orders.
func (s *CatalogService) Stats(ctx context.Context, principal domain.Principal) (*Stats, error) {
	if err := requireAdmin(ctx, s.store, principal); err != nil {
		return nil, err
	}

	products, err := s.store.GetAllProducts(ctx)
	if err != nil {
		return nil, fmt.Errorf("load products: %w", err)
	}
	orders, err := s.store.GetAllOrders(ctx)
	if err != nil {
		return nil, fmt.Errorf("load orders: %w", err)
	}
	users, err := s.store.GetAllUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("load users: %w", err)
	}
	messages, err := s.store.GetAllContactMessages(ctx)
	if err != nil {
		return nil, fmt.Errorf("load messages: %w", err)
	}

	st := &Stats{Products: len(products), Orders: len(orders), Users: len(users)}
	for _, p := range products {
		if p.Stock <= domain.LowStockThreshold {
			st.LowStock++
		}
	}
	for _, o := range orders {
		if o.Status == domain.OrderStatusPending {
			st.PendingOrders++
		}
		if o.Status != domain.OrderStatusCancelled {
			st.Revenue += o.TotalAmount
		}
	}
	for _, m := range messages {
		if m.ReadAt == nil {
			st.UnreadMessages++
		}
	}
	st.RevenueDisplay = domain.FormatCents(st.Revenue)
	return st, nil
}
