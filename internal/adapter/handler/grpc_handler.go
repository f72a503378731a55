package handler

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

const ServiceName = "storefront"

// HealthServer reports storage reachability over the standard gRPC health
// protocol, both for the overall server ("") and for ServiceName.
type HealthServer struct {
	health *health.Server
	store  Pinger
	log    zerolog.Logger
}

func NewHealthServer(store Pinger, log zerolog.Logger) *HealthServer {
	return &HealthServer{
		health: health.NewServer(),
		store:  store,
		log:    log.With().Str("component", "grpc_health").Logger(),
	}
}

func (h *HealthServer) Register(s *grpc.Server) {
	healthpb.RegisterHealthServer(s, h.health)
}

func (h *HealthServer) set(status healthpb.HealthCheckResponse_ServingStatus) {
	h.health.SetServingStatus("", status)
	h.health.SetServingStatus(ServiceName, status)
}

// Probe pings storage once and publishes the result.
func (h *HealthServer) Probe(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := h.store.Ping(ctx); err != nil {
		h.log.Warn().Err(err).Msg("storage unreachable")
		h.set(healthpb.HealthCheckResponse_NOT_SERVING)
		return
	}
	h.set(healthpb.HealthCheckResponse_SERVING)
}

// Watch probes on every tick until ctx is done.
func (h *HealthServer) Watch(ctx context.Context, interval time.Duration) {
	h.Probe(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			h.Probe(ctx)
		}
	}
}

// Shutdown flips every service to NOT_SERVING and ignores later updates.
func (h *HealthServer) Shutdown() {
	h.health.Shutdown()
}
