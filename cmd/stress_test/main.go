package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/spf13/pflag"

	"github.com/rl1809/storefront/internal/adapter/notify"
	"github.com/rl1809/storefront/internal/adapter/storage"
	"github.com/rl1809/storefront/internal/bootstrap"
	"github.com/rl1809/storefront/internal/config"
	"github.com/rl1809/storefront/internal/core/domain"
	"github.com/rl1809/storefront/internal/core/service"
	"github.com/rl1809/storefront/internal/logger"
	"github.com/rl1809/storefront/internal/port"
)

var errChecksFailed = errors.New("stress checks failed")

func main() {
	configPath := pflag.StringP("config", "c", "", "path to a config file")
	totalRequests := pflag.IntP("requests", "n", 50, "number of concurrent checkouts")
	pflag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	log := logger.New("warn", "console")

	if err := run(cfg, log, *totalRequests); err != nil {
		if !errors.Is(err, errChecksFailed) {
			log.Error().Err(err).Msg("stress run aborted")
		}
		os.Exit(1)
	}
}

// run returns instead of exiting so the storage and redis handles are closed.
func run(cfg *config.Config, log zerolog.Logger, totalRequests int) error {
	ctx := context.Background()

	store, err := bootstrap.OpenStorage(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer store.Close()

	var locker port.CheckoutLocker = storage.NewLocalLocker()
	if cfg.Redis.Enabled {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr})
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("connect redis: %w", err)
		}
		locker = storage.NewRedisAdapter(rdb, cfg.Redis.LockTTL, cfg.Redis.CatalogTTL, log)
	}

	suffix := time.Now().UnixNano()
	user, err := store.CreateUser(ctx, domain.NewUser{
		Username: fmt.Sprintf("stress-%d", suffix),
		Email:    fmt.Sprintf("stress-%d@example.com", suffix),
		Password: "-",
	})
	if err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	products, err := store.GetAllProducts(ctx)
	if err != nil {
		return fmt.Errorf("load catalog: %w", err)
	}
	if len(products) < 2 {
		return fmt.Errorf("seeded catalog has %d products, need 2", len(products))
	}

	var expected int64
	for i, p := range products[:2] {
		qty := i + 1
		if _, err := store.AddToCart(ctx, domain.NewCartItem{UserID: user.ID, ProductID: p.ID, Quantity: qty}); err != nil {
			return fmt.Errorf("fill cart: %w", err)
		}
		expected += p.Price * int64(qty)
	}

	orders := service.NewOrderService(store, locker, notify.NewLogNotifier(zerolog.Nop()), log)
	principal := domain.Principal{UserID: user.ID, Role: user.Role}

	var successCount, emptyCount, busyCount, failCount atomic.Int32
	var wg sync.WaitGroup
	start := time.Now()

	for i := 0; i < totalRequests; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			_, err := orders.PlaceOrder(ctx, principal, "1 Stress Test Way")
			switch {
			case err == nil:
				successCount.Add(1)
			case errors.Is(err, domain.ErrEmptyCart):
				emptyCount.Add(1)
			case errors.Is(err, domain.ErrCheckoutInProgress):
				busyCount.Add(1)
			default:
				failCount.Add(1)
				log.Error().Err(err).Msg("unexpected checkout error")
			}
		}()
	}

	wg.Wait()
	elapsed := time.Since(start)

	placed, err := store.GetUserOrders(ctx, user.ID)
	if err != nil {
		return fmt.Errorf("load orders: %w", err)
	}

	fmt.Println("========== CHECKOUT STRESS RESULTS ==========")
	fmt.Printf("Backend:          %s\n", cfg.Storage.Backend)
	fmt.Printf("Total Requests:   %d\n", totalRequests)
	fmt.Printf("Successful:       %d\n", successCount.Load())
	fmt.Printf("Empty Cart:       %d\n", emptyCount.Load())
	fmt.Printf("Lock Busy:        %d\n", busyCount.Load())
	fmt.Printf("Failed:           %d\n", failCount.Load())
	fmt.Printf("Duration:         %v\n", elapsed)
	fmt.Println("=============================================")

	ok := true
	if successCount.Load() == 1 && len(placed) == 1 {
		fmt.Println("PASS: exactly one order was created")
	} else {
		fmt.Printf("FAIL: expected 1 order, got %d successes and %d stored orders\n", successCount.Load(), len(placed))
		ok = false
	}

	if len(placed) == 1 && placed[0].TotalAmount == expected {
		fmt.Printf("PASS: order total %s matches the cart\n", domain.FormatCents(expected))
	} else if len(placed) == 1 {
		fmt.Printf("FAIL: expected total %s, got %s\n", domain.FormatCents(expected), domain.FormatCents(placed[0].TotalAmount))
		ok = false
	}

	cart, err := store.GetCartItems(ctx, user.ID)
	if err == nil && len(cart) == 0 {
		fmt.Println("PASS: cart is empty")
	} else {
		fmt.Printf("FAIL: cart still holds %d items\n", len(cart))
		ok = false
	}

	if !ok {
		return errChecksFailed
	}
	return nil
}
