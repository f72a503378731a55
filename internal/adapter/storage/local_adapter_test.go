package storage

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rl1809/storefront/internal/core/domain"
)

func TestLocalLocker(t *testing.T) {
	ctx := context.Background()
	locker := NewLocalLocker()

	unlock, err := locker.Lock(ctx, 1)
	require.NoError(t, err)

	_, err = locker.Lock(ctx, 1)
	assert.ErrorIs(t, err, domain.ErrCheckoutInProgress)

	other, err := locker.Lock(ctx, 2)
	require.NoError(t, err, "locks are per user")
	other()

	unlock()
	unlock, err = locker.Lock(ctx, 1)
	require.NoError(t, err)
	unlock()
}

func TestLocalLocker_Concurrent(t *testing.T) {
	ctx := context.Background()
	locker := NewLocalLocker()

	var acquired atomic.Int32
	var wg sync.WaitGroup
	start := make(chan struct{})

	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			if _, err := locker.Lock(ctx, 7); err == nil {
				acquired.Add(1)
			}
		}()
	}

	close(start)
	wg.Wait()
	assert.Equal(t, int32(1), acquired.Load())
}

func TestNopCatalogCache(t *testing.T) {
	ctx := context.Background()
	var cache NopCatalogCache

	require.NoError(t, cache.SetProducts(ctx, []domain.Product{{ID: 1}}))
	_, ok, err := cache.GetProducts(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.NoError(t, cache.Invalidate(ctx))
}
