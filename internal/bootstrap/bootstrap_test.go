package bootstrap

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rl1809/storefront/internal/adapter/storage"
	"github.com/rl1809/storefront/internal/config"
	"github.com/rl1809/storefront/internal/core/domain"
)

func TestSeed_Idempotent(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryAdapter()

	require.NoError(t, Seed(ctx, store, zerolog.Nop()))
	require.NoError(t, Seed(ctx, store, zerolog.Nop()))

	users, err := store.GetAllUsers(ctx)
	require.NoError(t, err)
	require.Len(t, users, 2)
	for _, u := range users {
		assert.Equal(t, domain.RoleAdmin, u.Role)
	}
	assert.Equal(t, "admin", users[0].Username)
	assert.Equal(t, "admingmail", users[1].Username)

	products, err := store.GetAllProducts(ctx)
	require.NoError(t, err)
	require.Len(t, products, len(demoCatalog))
	assert.Equal(t, "Organic Apples", products[0].Name)
	assert.Equal(t, int64(399), products[0].Price)
	assert.Equal(t, "Organic Blueberries", products[7].Name)
}

func TestSeed_SkipsCatalogWhenProductsExist(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryAdapter()

	_, err := store.CreateProduct(ctx, domain.NewProduct{Name: "House Honey", Price: 899, Category: "pantry", Unit: "jar"})
	require.NoError(t, err)

	require.NoError(t, Seed(ctx, store, zerolog.Nop()))

	n, err := store.CountProducts(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestSeed_ExistingIdentitySuppressesAdmin(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryAdapter()

	_, err := store.CreateUser(ctx, domain.NewUser{Username: "someone", Email: "ADMIN@gmail.com", Password: "h"})
	require.NoError(t, err)

	require.NoError(t, Seed(ctx, store, zerolog.Nop()))

	users, err := store.GetAllUsers(ctx)
	require.NoError(t, err)
	require.Len(t, users, 2, "only the admin without a clashing identity is created")

	gmail, err := store.GetUserByUsername(ctx, "adminGmail")
	require.NoError(t, err)
	assert.Nil(t, gmail)
}

func TestOpenStorage_Memory(t *testing.T) {
	cfg := &config.Config{Storage: config.StorageConfig{Backend: "memory"}}

	store, err := OpenStorage(context.Background(), cfg, zerolog.Nop())
	require.NoError(t, err)
	defer store.Close()

	admin, err := store.GetUserByUsername(context.Background(), "ADMIN")
	require.NoError(t, err)
	require.NotNil(t, admin)
	assert.Equal(t, "admin@fruitfresh.com", admin.Email)
}

func TestOpenStorage_UnknownBackend(t *testing.T) {
	cfg := &config.Config{Storage: config.StorageConfig{Backend: "flatfile"}}

	_, err := OpenStorage(context.Background(), cfg, zerolog.Nop())
	assert.Error(t, err)
}
