package gql

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/dmitrijs2005/gophboard/internal/common"
	"github.com/dmitrijs2005/gophboard/internal/logging"
	"github.com/dmitrijs2005/gophboard/internal/server/metrics"
	"github.com/gin-gonic/gin"
	graphql "github.com/graph-gophers/graphql-go"
	"github.com/graph-gophers/graphql-go/relay"
	"github.com/graph-gophers/graphql-transport-ws/graphqlws"
)

const (
	// AuthTokenParam carries the token for WebSocket clients that cannot set
	// headers on the upgrade request.
	AuthTokenParam = common.WebSocketTokenParam

	shutdownTimeout   = 5 * time.Second
	readHeaderTimeout = 10 * time.Second
)

// PingFunc reports whether the storage backing the API is reachable.
type PingFunc func(ctx context.Context) error

// Server serves the GraphQL endpoint plus /metrics and /healthz.
type Server struct {
	address string
	users   UserService
	schema  *graphql.Schema
	metrics *metrics.Metrics
	ping    PingFunc
	logger  logging.Logger
	router  *gin.Engine
}

func NewServer(address string, l logging.Logger, r *Resolver, m *metrics.Metrics, ping PingFunc) (*Server, error) {
	schema, err := NewSchema(r)
	if err != nil {
		return nil, err
	}

	s := &Server{
		address: address,
		users:   r.users,
		schema:  schema,
		metrics: m,
		ping:    ping,
		logger:  l.With("module", "http_server"),
		router:  gin.New(),
	}
	s.setupRoutes()

	return s, nil
}

func (s *Server) setupRoutes() {
	s.router.Use(s.recoveryMiddleware(), s.accessLogMiddleware(), corsMiddleware(), s.callerMiddleware())

	graphqlHandler := graphqlws.NewHandlerFunc(s.schema, &relay.Handler{Schema: s.schema},
		graphqlws.WithContextGenerator(graphqlws.ContextGeneratorFunc(s.connectionContext)))

	s.router.Any("/graphql", gin.WrapF(graphqlHandler))
	s.router.GET("/metrics", gin.WrapH(s.metrics.Handler()))
	s.router.GET("/healthz", s.handleHealth)
}

// connectionContext builds the context shared by every operation on one
// WebSocket connection. The header-resolved caller wins; otherwise the
// authToken query parameter is tried.
func (s *Server) connectionContext(ctx context.Context, r *http.Request) (context.Context, error) {
	caller := CallerFrom(r.Context())
	if caller == nil {
		if token := r.URL.Query().Get(AuthTokenParam); token != "" {
			caller = s.users.ResolveToken(ctx, token)
		}
	}
	return WithCaller(ctx, caller), nil
}

func (s *Server) handleHealth(c *gin.Context) {
	if s.ping != nil {
		if err := s.ping(c.Request.Context()); err != nil {
			s.logger.Warn(c.Request.Context(), "health check failed", "error", err)
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Handler exposes the router, mainly for httptest.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.address,
		Handler:           s.router,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(shutdownCtx, "HTTP server shutdown", "error", err)
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.address)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}
