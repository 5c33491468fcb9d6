package grpc

import (
	"context"
	"time"

	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

const pingTimeout = 2 * time.Second

// watchStorage re-checks storage every interval until ctx is done.
func (s *GRPCServer) watchStorage(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.checkStorage(ctx)
		}
	}
}

// checkStorage pings storage once and publishes the result for both the
// overall and the named service.
func (s *GRPCServer) checkStorage(ctx context.Context) {
	status := healthpb.HealthCheckResponse_SERVING

	if s.ping != nil {
		pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
		err := s.ping(pingCtx)
		cancel()

		if err != nil && ctx.Err() == nil {
			s.logger.Warn(ctx, "storage ping failed", "error", err)
			status = healthpb.HealthCheckResponse_NOT_SERVING
		}
	}

	s.health.SetServingStatus("", status)
	s.health.SetServingStatus(ServiceName, status)
}
