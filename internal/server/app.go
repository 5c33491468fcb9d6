// Package server initializes and runs the gophboard server: storage and
// migrations, demo seeding, the GraphQL HTTP endpoint and the gRPC health
// service, with graceful shutdown on signals.
package server

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/gophboard/internal/logging"
	"github.com/dmitrijs2005/gophboard/internal/pubsub"
	"github.com/dmitrijs2005/gophboard/internal/server/config"
	"github.com/dmitrijs2005/gophboard/internal/server/gql"
	"github.com/dmitrijs2005/gophboard/internal/server/metrics"
	"github.com/dmitrijs2005/gophboard/internal/server/models"
	"github.com/dmitrijs2005/gophboard/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/gophboard/internal/server/services"
	"github.com/jmoiron/sqlx"

	gs "github.com/dmitrijs2005/gophboard/internal/server/grpc"
)

type App struct {
	config     *config.Config
	logger     logging.Logger
	syncLogger func() error
	db         *sqlx.DB
	bus        *pubsub.Bus[*models.Message]
	httpServer *gql.Server
	grpcServer *gs.GRPCServer
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	logger, syncLogger, err := newLogger(c.LogFormat, c.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("logger init error: %w", err)
	}

	if c.DatabaseDriver == repomanager.DriverSQLite {
		if err := ensureSQLiteDir(c.DatabaseDSN); err != nil {
			return nil, fmt.Errorf("db init error: %w", err)
		}
	}

	db, err := repomanager.Open(ctx, c.DatabaseDriver, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	app, err := newApp(ctx, c, logger, db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	app.syncLogger = syncLogger

	return app, nil
}

func newApp(ctx context.Context, c *config.Config, logger logging.Logger, db *sqlx.DB) (*App, error) {

	rm, err := repomanager.NewSQLRepositoryManager(c.DatabaseDriver)
	if err != nil {
		return nil, err
	}

	if err := rm.RunMigrations(ctx, db.DB); err != nil {
		return nil, fmt.Errorf("migrations error: %w", err)
	}

	if c.SeedDemoData {
		seeded, err := services.SeedDemoData(ctx, db, rm, c.PasswordHashCost, logger)
		if err != nil {
			return nil, fmt.Errorf("seed error: %w", err)
		}
		if seeded {
			logger.Info(ctx, "Seeded demo data", "password", services.DemoPassword)
		}
	}

	m := metrics.New()
	bus := pubsub.New[*models.Message](c.SubscriberBuffer)
	opts := []services.Option{services.WithLogger(logger), services.WithMetrics(m)}

	resolver := gql.NewResolver(
		services.NewUserService(db, rm, c, opts...),
		services.NewPostService(db, rm, opts...),
		services.NewMessageService(db, rm, bus, c, opts...),
		logger,
	)

	hs, err := gql.NewServer(c.EndpointAddrHTTP, logger, resolver, m, db.PingContext)
	if err != nil {
		return nil, fmt.Errorf("graphql init error: %w", err)
	}

	return &App{
		config:     c,
		logger:     logger,
		syncLogger: func() error { return nil },
		db:         db,
		bus:        bus,
		httpServer: hs,
		grpcServer: gs.NewGRPCServer(c.EndpointAddrGRPC, logger, db.PingContext, gs.DefaultCheckInterval),
	}, nil
}

// newLogger picks the logging backend: "zap", or slog with "json"/"text".
func newLogger(format, level string) (logging.Logger, func() error, error) {
	if strings.EqualFold(format, "zap") {
		z, err := logging.NewZap(level)
		if err != nil {
			return nil, nil, err
		}
		return z, z.Sync, nil
	}
	return logging.NewSlog(os.Stdout, format, level), func() error { return nil }, nil
}

// ensureSQLiteDir creates the parent directory of a file-backed sqlite DSN.
func ensureSQLiteDir(dsn string) error {
	path, _, _ := strings.Cut(strings.TrimPrefix(dsn, "file:"), "?")
	if path == "" || path == ":memory:" {
		return nil
	}
	dir := filepath.Dir(path)
	if dir == "." {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}

func (app *App) initSignalHandler(ctx context.Context, cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		defer signal.Stop(sigs)
		select {
		case s := <-sigs:
			app.logger.Info(ctx, "Received signal", "signal", s.String())
			cancelFunc()
		case <-ctx.Done():
		}
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	if err := app.httpServer.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) startGRPCServer(ctx context.Context, cancelFunc context.CancelFunc) {
	if err := app.grpcServer.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

// Run serves until ctx is cancelled, a signal arrives or a server fails,
// then drains both servers, ends live subscriptions and closes storage.
func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(ctx, cancelFunc)

	var wg sync.WaitGroup

	wg.Add(2)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()
	go func() {
		defer wg.Done()
		app.startGRPCServer(ctx, cancelFunc)
	}()

	<-ctx.Done()
	// subscriptions hold hijacked connections the HTTP shutdown does not wait for
	app.bus.Close()

	wg.Wait()

	if err := app.db.Close(); err != nil {
		app.logger.Error(ctx, "closing database", "error", err)
	}
	app.logger.Info(ctx, "App stopped")
	_ = app.syncLogger()
}
