package service

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rl1809/storefront/internal/adapter/storage"
	"github.com/rl1809/storefront/internal/core/domain"
)

func newUserService() (*storage.MemoryAdapter, *UserService) {
	store := storage.NewMemoryAdapter()
	return store, NewUserService(store, plainHasher{}, zerolog.Nop())
}

func TestUser_RegisterAndAuthenticate(t *testing.T) {
	_, svc := newUserService()
	ctx := context.Background()

	user, err := svc.Register(ctx, Registration{
		Username:  "Jane",
		Email:     "Jane@Example.com",
		Password:  "secret1",
		FirstName: " Jane ",
	})
	require.NoError(t, err)
	assert.Equal(t, "jane", user.Username)
	assert.Equal(t, "jane@example.com", user.Email)
	assert.Equal(t, "Jane", user.FirstName)
	assert.Equal(t, domain.RoleCustomer, user.Role)
	assert.Equal(t, "hashed:secret1", user.Password)

	authed, err := svc.Authenticate(ctx, "JANE", "secret1")
	require.NoError(t, err)
	assert.Equal(t, user.ID, authed.ID)

	_, err = svc.Authenticate(ctx, "jane", "wrong")
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)

	_, err = svc.Authenticate(ctx, "nobody", "secret1")
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)
}

func TestUser_RegisterValidation(t *testing.T) {
	_, svc := newUserService()
	ctx := context.Background()

	tests := []struct {
		name string
		reg  Registration
		want error
	}{
		{"missing username", Registration{Email: "a@b.io", Password: "secret1"}, domain.ErrValidation},
		{"bad email", Registration{Username: "a", Email: "not-an-email", Password: "secret1"}, domain.ErrValidation},
		{"short password", Registration{Username: "a", Email: "a@b.io", Password: "12345"}, domain.ErrValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Register(ctx, tt.reg)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestUser_RegisterDuplicate(t *testing.T) {
	_, svc := newUserService()
	ctx := context.Background()

	_, err := svc.Register(ctx, Registration{Username: "jane", Email: "jane@example.com", Password: "secret1"})
	require.NoError(t, err)

	_, err = svc.Register(ctx, Registration{Username: "JANE", Email: "other@example.com", Password: "secret1"})
	assert.ErrorIs(t, err, domain.ErrConflict)

	_, err = svc.Register(ctx, Registration{Username: "other", Email: "JANE@example.com", Password: "secret1"})
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestUser_UpdateProfile(t *testing.T) {
	store, svc := newUserService()
	ctx := context.Background()
	jane := customer(t, store, "jane")

	first := "Janet"
	password := "newsecret"
	user, err := svc.UpdateProfile(ctx, jane, ProfileUpdate{FirstName: &first, Password: &password})
	require.NoError(t, err)
	assert.Equal(t, "Janet", user.FirstName)
	assert.Equal(t, "hashed:newsecret", user.Password)

	_, err = svc.UpdateProfile(ctx, jane, ProfileUpdate{})
	assert.ErrorIs(t, err, domain.ErrValidation)

	bad := "nope"
	_, err = svc.UpdateProfile(ctx, jane, ProfileUpdate{Email: &bad})
	assert.ErrorIs(t, err, domain.ErrValidation)

	short := "123"
	_, err = svc.UpdateProfile(ctx, jane, ProfileUpdate{Password: &short})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = svc.UpdateProfile(ctx, domain.Principal{}, ProfileUpdate{FirstName: &first})
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)
}

func TestUser_Current(t *testing.T) {
	store, svc := newUserService()
	ctx := context.Background()
	jane := customer(t, store, "jane")

	user, err := svc.Current(ctx, jane)
	require.NoError(t, err)
	assert.Equal(t, "jane", user.Username)

	_, err = svc.Current(ctx, domain.Principal{UserID: 999, Role: domain.RoleCustomer})
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)
}

func TestUser_AdminOperations(t *testing.T) {
	store, svc := newUserService()
	ctx := context.Background()
	jane := customer(t, store, "jane")
	root, err := store.CreateUser(ctx, domain.NewUser{Username: "root", Email: "root@example.com", Password: "x", Role: domain.RoleAdmin})
	require.NoError(t, err)
	rootPrincipal := domain.Principal{UserID: root.ID, Role: root.Role}

	_, err = svc.List(ctx, jane)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	users, err := svc.List(ctx, rootPrincipal)
	require.NoError(t, err)
	assert.Len(t, users, 2)

	promoted, err := svc.SetRole(ctx, rootPrincipal, jane.UserID, domain.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, promoted.Role)

	_, err = svc.SetRole(ctx, rootPrincipal, root.ID, domain.RoleCustomer)
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = svc.SetRole(ctx, rootPrincipal, jane.UserID, "owner")
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = svc.SetRole(ctx, rootPrincipal, 999, domain.RoleCustomer)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = svc.SetRole(ctx, jane, root.ID, domain.RoleCustomer)
	assert.ErrorIs(t, err, domain.ErrForbidden, "a stale principal still carries the customer role")
}

func TestUser_DemotedAdminLosesAccess(t *testing.T) {
	store, svc := newUserService()
	ctx := context.Background()
	root := storedAdmin(t, store)
	jane := customer(t, store, "jane")

	_, err := svc.SetRole(ctx, root, jane.UserID, domain.RoleAdmin)
	require.NoError(t, err)
	janeAdmin := domain.Principal{UserID: jane.UserID, Role: domain.RoleAdmin}
	_, err = svc.List(ctx, janeAdmin)
	require.NoError(t, err)

	_, err = svc.SetRole(ctx, root, jane.UserID, domain.RoleCustomer)
	require.NoError(t, err)

	_, err = svc.List(ctx, janeAdmin)
	assert.ErrorIs(t, err, domain.ErrForbidden, "the token still claims admin")

	catalog := NewCatalogService(store, storage.NopCatalogCache{}, zerolog.Nop())
	_, err = catalog.Create(ctx, janeAdmin, domain.NewProduct{Name: "Pears", Description: "d", Price: 349, Category: "fruits", Unit: "lb", Stock: 1})
	assert.ErrorIs(t, err, domain.ErrForbidden)

	ghost := domain.Principal{UserID: 999, Role: domain.RoleAdmin}
	_, err = svc.List(ctx, ghost)
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)
}
