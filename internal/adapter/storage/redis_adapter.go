package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/rl1809/storefront/internal/core/domain"
	"github.com/rl1809/storefront/internal/port"
)

const (
	checkoutKeyPrefix = "checkout:"
	catalogKey        = "catalog:products"

	defaultLockTTL    = 30 * time.Second
	defaultCatalogTTL = 5 * time.Minute
)

// releaseLockScript deletes the lock only while it still carries our token,
// so an expired lock re-acquired by another checkout is left alone.
var releaseLockScript = redis.NewScript(`
local key = KEYS[1]
local token = ARGV[1]

if redis.call('GET', key) == token then
	return redis.call('DEL', key)
end

return 0
`)

type RedisAdapter struct {
	client     *redis.Client
	lockTTL    time.Duration
	catalogTTL time.Duration
	log        zerolog.Logger
}

func NewRedisAdapter(client *redis.Client, lockTTL, catalogTTL time.Duration, log zerolog.Logger) *RedisAdapter {
	if lockTTL <= 0 {
		lockTTL = defaultLockTTL
	}
	if catalogTTL <= 0 {
		catalogTTL = defaultCatalogTTL
	}
	return &RedisAdapter{client: client, lockTTL: lockTTL, catalogTTL: catalogTTL, log: log}
}

func checkoutKey(userID int64) string {
	return checkoutKeyPrefix + strconv.FormatInt(userID, 10)
}

func (r *RedisAdapter) Lock(ctx context.Context, userID int64) (func(), error) {
	key := checkoutKey(userID)
	token := uuid.NewString()

	ok, err := r.client.SetNX(ctx, key, token, r.lockTTL).Result()
	if err != nil {
		return nil, fmt.Errorf("acquire checkout lock: %w", err)
	}
	if !ok {
		return nil, domain.ErrCheckoutInProgress
	}

	return func() {
		// the request context may already be cancelled by the time we release
		if err := releaseLockScript.Run(context.Background(), r.client, []string{key}, token).Err(); err != nil {
			r.log.Error().Err(err).Int64("user_id", userID).Dur("lock_ttl", r.lockTTL).Msg("checkout lock release failed, held until expiry")
		}
	}, nil
}

func (r *RedisAdapter) GetProducts(ctx context.Context) ([]domain.Product, bool, error) {
	data, err := r.client.Get(ctx, catalogKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get cached catalog: %w", err)
	}

	var products []domain.Product
	if err := json.Unmarshal(data, &products); err != nil {
		return nil, false, fmt.Errorf("decode cached catalog: %w", err)
	}
	return products, true, nil
}

func (r *RedisAdapter) SetProducts(ctx context.Context, products []domain.Product) error {
	data, err := json.Marshal(products)
	if err != nil {
		return fmt.Errorf("encode catalog: %w", err)
	}
	return r.client.Set(ctx, catalogKey, data, r.catalogTTL).Err()
}

func (r *RedisAdapter) Invalidate(ctx context.Context) error {
	return r.client.Del(ctx, catalogKey).Err()
}

func (r *RedisAdapter) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

var (
	_ port.CheckoutLocker = (*RedisAdapter)(nil)
	_ port.CatalogCache   = (*RedisAdapter)(nil)
)
