package grpcserver

import (
	"fmt"
	"net"

	"github.com/rs/zerolog"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
)

// ServiceName is the name reported to the health checks.
const ServiceName = "garage.PvPService"

// HealthServer exposes the standard gRPC health check for the orchestrator.
type HealthServer struct {
	server   *grpc.Server
	health   *health.Server
	listener net.Listener
	log      zerolog.Logger
}

// NewHealthServer listens on the given port. Serving starts with Start.
func NewHealthServer(port string, log zerolog.Logger) (*HealthServer, error) {
	listener, err := net.Listen("tcp", ":"+port)
	if err != nil {
		return nil, fmt.Errorf("couldn't start the tcp server: %w", err)
	}

	grpcServer := grpc.NewServer()
	healthServer := health.NewServer()
	grpc_health_v1.RegisterHealthServer(grpcServer, healthServer)

	return &HealthServer{
		server:   grpcServer,
		health:   healthServer,
		listener: listener,
		log:      log,
	}, nil
}

// Addr is the address the server listens on.
func (h *HealthServer) Addr() net.Addr {
	return h.listener.Addr()
}

// Start serves in the background and reports the service as serving.
func (h *HealthServer) Start() {
	h.health.SetServingStatus(ServiceName, grpc_health_v1.HealthCheckResponse_SERVING)

	go func() {
		h.log.Info().Str("addr", h.listener.Addr().String()).Msg("running gRPC health server")
		if err := h.server.Serve(h.listener); err != nil {
			h.log.Error().Err(err).Msg("gRPC health server stopped")
		}
	}()
}

// Stop reports not serving, then waits for the pending calls.
func (h *HealthServer) Stop() {
	h.health.SetServingStatus(ServiceName, grpc_health_v1.HealthCheckResponse_NOT_SERVING)
	h.server.GracefulStop()
}
