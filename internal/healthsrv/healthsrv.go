// Package healthsrv exposes the sync loop state through the standard
// grpc.health.v1.Health service, for orchestrators that probe over gRPC.
package healthsrv

import (
	"context"
	"net"

	"cdr.dev/slog/v3"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/BrandonDHaskell/pdks-sync/internal/pdks/service"
)

// ServiceName is the health service key for the sync loop.
const ServiceName = "pdks.sync"

type Server struct {
	grpc   *grpc.Server
	health *health.Server
	logger slog.Logger
}

// New returns a server whose sync service is NOT_SERVING until the first
// clean pass is observed. The empty service name reports process
// liveness and is SERVING from the start.
func New(logger slog.Logger) *Server {
	hs := health.NewServer()
	hs.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	hs.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_NOT_SERVING)

	gs := grpc.NewServer()
	healthpb.RegisterHealthServer(gs, hs)

	return &Server{grpc: gs, health: hs, logger: logger}
}

// Observe is a service.Observer.
func (s *Server) Observe(res service.PassResult) {
	status := healthpb.HealthCheckResponse_SERVING
	if res.Err != nil {
		status = healthpb.HealthCheckResponse_NOT_SERVING
	}
	s.health.SetServingStatus(ServiceName, status)
}

// Serve blocks until Stop is called or lis fails.
func (s *Server) Serve(lis net.Listener) error {
	s.logger.Info(context.Background(), "grpc health listening", slog.F("addr", lis.Addr().String()))
	return s.grpc.Serve(lis)
}

// Stop marks every service NOT_SERVING and drains open streams.
func (s *Server) Stop() {
	s.health.Shutdown()
	s.grpc.GracefulStop()
}
