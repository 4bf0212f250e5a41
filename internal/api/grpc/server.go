package grpc

import (
	"context"
	"net"
	"sync"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"rental-mngt-admin/internal/api/grpc/interceptor"
	"rental-mngt-admin/internal/logger"
	"rental-mngt-admin/internal/security"
)

// ServiceName is the health service name reported for the whole process.
const ServiceName = "rental-mngt-admin"

// CheckFunc probes one dependency, such as the database or redis.
type CheckFunc func(ctx context.Context) error

// Server exposes grpc.health.v1 and reflection for orchestrators and grpcurl.
type Server struct {
	server *grpc.Server
	health *health.Server

	mu     sync.Mutex
	failed map[string]bool
}

func NewServer(inspector security.TokenInspector) *Server {
	auth := interceptor.NewAuthInterceptor(inspector)
	s := grpc.NewServer(
		grpc.ChainUnaryInterceptor(interceptor.Logging(), auth.Unary()),
		grpc.ChainStreamInterceptor(auth.Stream()),
	)

	hs := health.NewServer()
	healthpb.RegisterHealthServer(s, hs)
	hs.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_SERVING)

	// Register reflection service for grpcurl
	reflection.Register(s)

	return &Server{server: s, health: hs, failed: make(map[string]bool)}
}

// Serve blocks until the listener fails or the server is stopped.
func (s *Server) Serve(lis net.Listener) error {
	logger.Info("gRPC health server listening", "address", lis.Addr().String())
	return s.server.Serve(lis)
}

// GracefulStop reports NOT_SERVING to watchers, then drains in-flight calls.
func (s *Server) GracefulStop() {
	s.health.Shutdown()
	s.server.GracefulStop()
}

// Check runs every probe once and updates the reported status. The process
// is SERVING only while all probes pass.
func (s *Server) Check(ctx context.Context, checks map[string]CheckFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for name, check := range checks {
		err := check(ctx)
		switch {
		case err != nil && !s.failed[name]:
			logger.Warn("Dependency unhealthy", "dependency", name, "error", err)
			s.failed[name] = true
		case err == nil && s.failed[name]:
			logger.Info("Dependency recovered", "dependency", name)
			delete(s.failed, name)
		}
	}

	st := healthpb.HealthCheckResponse_SERVING
	if len(s.failed) > 0 {
		st = healthpb.HealthCheckResponse_NOT_SERVING
	}
	s.health.SetServingStatus(ServiceName, st)
	s.health.SetServingStatus("", st)
}

// Monitor runs Check every interval until ctx is done.
func (s *Server) Monitor(ctx context.Context, interval time.Duration, checks map[string]CheckFunc) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	s.Check(ctx, checks)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Check(ctx, checks)
		}
	}
}
