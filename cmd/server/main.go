package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/spf13/pflag"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"

	"github.com/rl1809/storefront/internal/adapter/auth"
	"github.com/rl1809/storefront/internal/adapter/handler"
	"github.com/rl1809/storefront/internal/adapter/notify"
	"github.com/rl1809/storefront/internal/adapter/storage"
	"github.com/rl1809/storefront/internal/bootstrap"
	"github.com/rl1809/storefront/internal/config"
	"github.com/rl1809/storefront/internal/core/service"
	"github.com/rl1809/storefront/internal/logger"
	"github.com/rl1809/storefront/internal/port"
)

const (
	shutdownTimeout     = 10 * time.Second
	healthProbeInterval = 15 * time.Second
)

func main() {
	configPath := pflag.StringP("config", "c", "", "path to a config file (yaml, json or toml)")
	pflag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.New("info", "console").Fatal().Err(err).Msg("failed to load config")
	}
	log := logger.New(cfg.Log.Level, cfg.Log.Format)

	if err := run(cfg, log); err != nil {
		log.Fatal().Err(err).Msg("server stopped with error")
	}
	log.Info().Msg("server stopped")
}

func run(cfg *config.Config, log zerolog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := bootstrap.OpenStorage(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer store.Close()

	var (
		locker port.CheckoutLocker = storage.NewLocalLocker()
		cache  port.CatalogCache   = storage.NopCatalogCache{}
	)
	if cfg.Redis.Enabled {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr, PoolSize: 100})
		defer rdb.Close()

		redisAdapter := storage.NewRedisAdapter(rdb, cfg.Redis.LockTTL, cfg.Redis.CatalogTTL, log)
		if err := redisAdapter.Ping(ctx); err != nil {
			return err
		}
		locker, cache = redisAdapter, redisAdapter
		log.Info().Str("addr", cfg.Redis.Addr).Msg("connected to redis")
	}

	sink, closeSink := newNotifier(cfg, log)
	defer closeSink()
	dispatcher := service.NewDispatcher(sink, cfg.Notify.QueueSize, cfg.Notify.Workers, log)
	defer dispatcher.Close()
	log.Info().Str("driver", cfg.Notify.Driver).Int("workers", cfg.Notify.Workers).Msg("notification dispatcher started")

	services := handler.Services{
		Users:   service.NewUserService(store, auth.NewPasswordHasher(bcrypt.DefaultCost), log),
		Catalog: service.NewCatalogService(store, cache, log),
		Carts:   service.NewCartService(store, log),
		Orders:  service.NewOrderService(store, locker, dispatcher, log),
		Contact: service.NewContactService(store, dispatcher, log),
	}
	tokens := auth.NewTokenManager(auth.TokenConfig{
		Secret: cfg.Auth.JWTSecret,
		TTL:    cfg.Auth.TokenTTL,
		Issuer: cfg.Auth.Issuer,
	})

	httpServer := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           handler.NewHTTPHandler(services, tokens, store, log).Routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	grpcServer := grpc.NewServer()
	health := handler.NewHealthServer(store, log)
	health.Register(grpcServer)

	lis, err := net.Listen("tcp", cfg.GRPC.Addr)
	if err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info().Str("addr", cfg.HTTP.Addr).Msg("HTTP server listening")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		log.Info().Str("addr", cfg.GRPC.Addr).Msg("gRPC server listening")
		return grpcServer.Serve(lis)
	})

	g.Go(func() error {
		health.Watch(gctx, healthProbeInterval)
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("shutting down")

		health.Shutdown()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("HTTP shutdown failed")
		}
		log.Info().Msg("HTTP server stopped")

		grpcServer.GracefulStop()
		log.Info().Msg("gRPC server stopped")
		return nil
	})

	return g.Wait()
}

// newNotifier builds the configured sink. The returned func releases it.
func newNotifier(cfg *config.Config, log zerolog.Logger) (port.Notifier, func()) {
	switch cfg.Notify.Driver {
	case "kafka":
		writer := notify.NewKafkaWriter(notify.KafkaConfig{Brokers: cfg.Kafka.Brokers, Topic: cfg.Kafka.Topic}, log)
		n := notify.NewKafkaNotifier(writer)
		return n, func() {
			if err := n.Close(); err != nil {
				log.Error().Err(err).Msg("failed to close kafka writer")
			}
		}
	default:
		return notify.NewLogNotifier(log), func() {}
	}
}
