package service

import (
	"context"
	"math"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rl1809/storefront/internal/adapter/storage"
	"github.com/rl1809/storefront/internal/core/domain"
)

func TestCart_AddMergesDuplicates(t *testing.T) {
	store := storage.NewMemoryAdapter()
	svc := NewCartService(store, zerolog.Nop())
	ctx := context.Background()
	user := customer(t, store, "jane")
	apples := product(t, store, "Organic Apples", 399, "fruits", 50)

	_, err := svc.Add(ctx, user, apples.ID, 2)
	require.NoError(t, err)
	item, err := svc.Add(ctx, user, apples.ID, 3)
	require.NoError(t, err)
	assert.Equal(t, 5, item.Quantity)

	cart, err := svc.Get(ctx, user)
	require.NoError(t, err)
	require.Len(t, cart.Lines, 1)
	assert.Equal(t, 5, cart.TotalItems)
}

func TestCart_TotalsFollowLivePrice(t *testing.T) {
	store := storage.NewMemoryAdapter()
	svc := NewCartService(store, zerolog.Nop())
	ctx := context.Background()
	user := customer(t, store, "jane")
	apples := product(t, store, "Organic Apples", 399, "fruits", 50)
	berries := product(t, store, "Organic Blueberries", 599, "fruits", 20)

	_, err := svc.Add(ctx, user, apples.ID, 2)
	require.NoError(t, err)
	_, err = svc.Add(ctx, user, berries.ID, 1)
	require.NoError(t, err)

	cart, err := svc.Get(ctx, user)
	require.NoError(t, err)
	assert.Equal(t, 3, cart.TotalItems)
	assert.Equal(t, int64(1397), cart.TotalPrice)

	price := int64(100)
	_, err = store.UpdateProduct(ctx, berries.ID, domain.ProductUpdate{Price: &price})
	require.NoError(t, err)

	cart, err = svc.Get(ctx, user)
	require.NoError(t, err)
	assert.Equal(t, int64(898), cart.TotalPrice)
}

func TestCart_DeletedProductStaysVisible(t *testing.T) {
	store := storage.NewMemoryAdapter()
	svc := NewCartService(store, zerolog.Nop())
	ctx := context.Background()
	user := customer(t, store, "jane")
	apples := product(t, store, "Organic Apples", 399, "fruits", 50)

	_, err := svc.Add(ctx, user, apples.ID, 2)
	require.NoError(t, err)
	_, err = store.DeleteProduct(ctx, apples.ID)
	require.NoError(t, err)

	cart, err := svc.Get(ctx, user)
	require.NoError(t, err)
	require.Len(t, cart.Lines, 1)
	assert.False(t, cart.Lines[0].Available())
	assert.Equal(t, 2, cart.TotalItems)
	assert.Equal(t, int64(0), cart.TotalPrice)
}

func TestCart_Validation(t *testing.T) {
	store := storage.NewMemoryAdapter()
	svc := NewCartService(store, zerolog.Nop())
	ctx := context.Background()
	user := customer(t, store, "jane")
	apples := product(t, store, "Organic Apples", 399, "fruits", 50)

	_, err := svc.Add(ctx, domain.Principal{}, apples.ID, 1)
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)

	_, err = svc.Add(ctx, user, apples.ID, 0)
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = svc.Add(ctx, user, apples.ID+100, 1)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	item, err := svc.Add(ctx, user, apples.ID, 1)
	require.NoError(t, err)

	_, err = svc.UpdateQuantity(ctx, user, item.ID, -1)
	assert.ErrorIs(t, err, domain.ErrValidation)

	items, err := store.GetCartItems(ctx, user.UserID)
	require.NoError(t, err)
	assert.Len(t, items, 1, "a non-positive quantity never deletes the row")

	_, err = svc.Get(ctx, domain.Principal{})
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)
}

func TestCart_OwnershipEnforced(t *testing.T) {
	store := storage.NewMemoryAdapter()
	svc := NewCartService(store, zerolog.Nop())
	ctx := context.Background()
	jane := customer(t, store, "jane")
	john := customer(t, store, "john")
	apples := product(t, store, "Organic Apples", 399, "fruits", 50)

	item, err := svc.Add(ctx, jane, apples.ID, 1)
	require.NoError(t, err)

	_, err = svc.UpdateQuantity(ctx, john, item.ID, 4)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.ErrorIs(t, svc.Remove(ctx, john, item.ID), domain.ErrNotFound)

	updated, err := svc.UpdateQuantity(ctx, jane, item.ID, 4)
	require.NoError(t, err)
	assert.Equal(t, 4, updated.Quantity)

	require.NoError(t, svc.Remove(ctx, jane, item.ID))
	assert.ErrorIs(t, svc.Remove(ctx, jane, item.ID), domain.ErrNotFound)
}

func TestCart_Clear(t *testing.T) {
	store := storage.NewMemoryAdapter()
	svc := NewCartService(store, zerolog.Nop())
	ctx := context.Background()
	user := customer(t, store, "jane")
	apples := product(t, store, "Organic Apples", 399, "fruits", 50)

	_, err := svc.Add(ctx, user, apples.ID, 1)
	require.NoError(t, err)

	require.NoError(t, svc.Clear(ctx, user))
	require.NoError(t, svc.Clear(ctx, user))

	cart, err := svc.Get(ctx, user)
	require.NoError(t, err)
	assert.Empty(t, cart.Lines)
	assert.Equal(t, 0, cart.TotalItems)
}

func TestCart_QuantityBounded(t *testing.T) {
	store := storage.NewMemoryAdapter()
	svc := NewCartService(store, zerolog.Nop())
	ctx := context.Background()
	user := customer(t, store, "jane")
	apples := product(t, store, "Organic Apples", 399, "fruits", 50)

	_, err := svc.Add(ctx, user, apples.ID, math.MaxInt)
	assert.ErrorIs(t, err, domain.ErrValidation)

	item, err := svc.Add(ctx, user, apples.ID, domain.MaxItemQuantity)
	require.NoError(t, err)
	assert.Equal(t, domain.MaxItemQuantity, item.Quantity)

	_, err = svc.Add(ctx, user, apples.ID, 1)
	assert.ErrorIs(t, err, domain.ErrValidation, "merging past the limit is rejected")

	_, err = svc.UpdateQuantity(ctx, user, item.ID, domain.MaxItemQuantity+1)
	assert.ErrorIs(t, err, domain.ErrValidation)

	items, err := store.GetCartItems(ctx, user.UserID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, domain.MaxItemQuantity, items[0].Quantity)

	updated, err := svc.UpdateQuantity(ctx, user, item.ID, 10)
	require.NoError(t, err)
	assert.Equal(t, 10, updated.Quantity)

	merged, err := svc.Add(ctx, user, apples.ID, domain.MaxItemQuantity-10)
	require.NoError(t, err)
	assert.Equal(t, domain.MaxItemQuantity, merged.Quantity)
}
