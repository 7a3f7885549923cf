// Package server wires the todoapi application: database, migrations,
// storage backend, services, and the HTTP and gRPC servers. It handles
// graceful shutdown on SIGINT, SIGTERM and SIGQUIT.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/dmitrijs2005/todoapi/internal/filex"
	"github.com/dmitrijs2005/todoapi/internal/logging"
	"github.com/dmitrijs2005/todoapi/internal/server/config"
	"github.com/dmitrijs2005/todoapi/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/todoapi/internal/server/rest"
	"github.com/dmitrijs2005/todoapi/internal/server/services"
	"github.com/dmitrijs2005/todoapi/internal/server/storage"
	_ "github.com/jackc/pgx/v5/stdlib"

	gs "github.com/dmitrijs2005/todoapi/internal/server/grpc"
)

const dbCheckInterval = 5 * time.Second

type App struct {
	config *config.Config
	logger logging.Logger
	db     *sql.DB
	http   *rest.Server
	grpc   *gs.GRPCServer
}

// seams for tests
var (
	openDB     = func(dsn string) (*sql.DB, error) { return sql.Open("pgx", dsn) }
	newS3Store = func(ctx context.Context, c *config.Config) (storage.Store, error) { return storage.NewS3Store(ctx, c) }
)

func NewApp(ctx context.Context, c *config.Config) (*App, error) {

	logger := logging.NewJSONLogger(os.Stdout, c.LogLevel)

	db, err := openDB(c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db init error: %w", err)
	}

	store, err := newStore(ctx, c)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("storage init error: %w", err)
	}

	h := rest.NewHandler(rest.Services{
		Auth:  services.NewAuthService(db, rm, c),
		Todos: services.NewTodoService(db, rm, c),
		Users: services.NewUserService(db, rm, c),
		Roles: services.NewRoleService(db, rm, c),
		Files: services.NewFileService(db, rm, store),
	}, logger)
	router := rest.NewRouter(h, rest.NewHealthHandler(db, logger), logger)

	return &App{
		config: c,
		logger: logger,
		db:     db,
		http:   rest.NewServer(c.EndpointAddrHTTP, router, c.ShutdownTimeout, logger.With("module", "http_server")),
		grpc:   gs.NewGRPCServer(c.EndpointAddrGRPC, logger, db, dbCheckInterval),
	}, nil
}

// newStore picks the upload backend. The local directory is created when
// missing.
func newStore(ctx context.Context, c *config.Config) (storage.Store, error) {
	switch c.StorageBackend {
	case config.StorageLocal:
		dir, err := filex.EnsureDir(c.UploadDir)
		if err != nil {
			return nil, err
		}
		return storage.NewLocalStore(dir), nil
	case config.StorageS3:
		return newS3Store(ctx, c)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", c.StorageBackend)
	}
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

// runServer runs one server; a failure stops the whole app.
func (app *App) runServer(ctx context.Context, cancelFunc context.CancelFunc, name string, run func(context.Context) error) {
	if err := run(ctx); err != nil {
		app.logger.Error(ctx, "server failed", "server", name, "error", err)
		cancelFunc()
	}
}

// Run serves until a signal arrives or a server fails, then waits for both
// servers to stop and closes the database.
func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(2)
	go func() {
		defer wg.Done()
		app.runServer(ctx, cancelFunc, "http", app.http.Run)
	}()
	go func() {
		defer wg.Done()
		app.runServer(ctx, cancelFunc, "grpc", app.grpc.Run)
	}()

	wg.Wait()

	if err := app.db.Close(); err != nil {
		app.logger.Error(context.Background(), "closing database", "error", err)
	}
	app.logger.Info(context.Background(), "App stopped")
}
