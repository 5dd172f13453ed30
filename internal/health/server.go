// Package health runs the admin gRPC listener: the standard health service
// plus reflection, with the catalog dependency reported from its breaker.
package health

import (
	"context"
	"log/slog"
	"net"
	"time"

	"github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

// CatalogService is the health service name reporting whether the remote
// catalog is reachable.
const CatalogService = "deisishop.catalog"

type BreakerStater interface {
	BreakerState() gobreaker.State
}

type Server struct {
	grpc     *grpc.Server
	health   *health.Server
	catalog  BreakerStater
	interval time.Duration
	logger   *slog.Logger
	last     healthpb.HealthCheckResponse_ServingStatus
}

func NewServer(catalog BreakerStater, interval time.Duration, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	grpcServer := grpc.NewServer(grpc.StatsHandler(otelgrpc.NewServerHandler()))
	hs := health.NewServer()
	healthpb.RegisterHealthServer(grpcServer, hs)

	// Enable reflection for grpcurl/grpcui
	reflection.Register(grpcServer)

	s := &Server{
		grpc:     grpcServer,
		health:   hs,
		catalog:  catalog,
		interval: interval,
		logger:   logger,
	}
	s.Update()
	return s
}

func (s *Server) Serve(lis net.Listener) error {
	return s.grpc.Serve(lis)
}

// Watch refreshes the catalog status until ctx is done.
func (s *Server) Watch(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			s.Update()
		case <-ctx.Done():
			return
		}
	}
}

// Update maps the breaker state onto the catalog health status. A half-open
// breaker is probing and still counts as serving.
func (s *Server) Update() {
	status := healthpb.HealthCheckResponse_SERVING
	if s.catalog != nil && s.catalog.BreakerState() == gobreaker.StateOpen {
		status = healthpb.HealthCheckResponse_NOT_SERVING
	}
	if status != s.last {
		s.logger.Info("catalog health changed", "status", status.String())
		s.last = status
	}
	s.health.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	s.health.SetServingStatus(CatalogService, status)
}

func (s *Server) GracefulStop() {
	s.health.Shutdown()
	s.grpc.GracefulStop()
}
