// Package grpc serves the standard grpc.health.v1 service. Serving status
// follows periodic storage pings so orchestrators can probe the API without
// speaking GraphQL.
package grpc

import (
	"context"
	"net"
	"time"

	"github.com/dmitrijs2005/gophboard/internal/logging"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

// ServiceName is the health service name reported next to the overall ("") status.
const ServiceName = "gophboard.GraphQL"

const DefaultCheckInterval = 10 * time.Second

// PingFunc checks the storage backing the API.
type PingFunc func(ctx context.Context) error

type GRPCServer struct {
	address  string
	health   *health.Server
	ping     PingFunc
	interval time.Duration
	logger   logging.Logger
}

func NewGRPCServer(a string, l logging.Logger, ping PingFunc, interval time.Duration) *GRPCServer {
	if interval <= 0 {
		interval = DefaultCheckInterval
	}
	return &GRPCServer{
		address:  a,
		health:   health.NewServer(),
		ping:     ping,
		interval: interval,
		logger:   l.With("module", "grpc_server"),
	}
}

func (s *GRPCServer) Run(ctx context.Context) error {

	// announces address
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	s.logger.Info(ctx, "Starting gRPC server", "address", s.address)

	return s.Serve(ctx, listen)
}

// Serve accepts connections on lis until ctx is done.
func (s *GRPCServer) Serve(ctx context.Context, lis net.Listener) error {

	// creates gRPC-server
	srv := grpc.NewServer(
		grpc.ChainUnaryInterceptor(s.recoveryInterceptor, s.loggingInterceptor),
		grpc.ChainStreamInterceptor(s.streamRecoveryInterceptor),
	)

	// registers services
	healthpb.RegisterHealthServer(srv, s.health)
	reflection.Register(srv)

	s.checkStorage(ctx)
	go s.watchStorage(ctx)

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gRPC server...")
		// flips every status to NOT_SERVING and ends Watch streams
		s.health.Shutdown()
		srv.GracefulStop()
	}()

	// starts accepting incoming connections
	if err := srv.Serve(lis); err != nil {
		return err
	}

	return nil
}
