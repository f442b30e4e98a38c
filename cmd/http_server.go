package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	gormPostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"github.com/frahmantamala/company-management/internal"
	"github.com/frahmantamala/company-management/internal/assetstore"
	"github.com/frahmantamala/company-management/internal/auth"
	authPostgres "github.com/frahmantamala/company-management/internal/auth/postgres"
	authzPostgres "github.com/frahmantamala/company-management/internal/authz/postgres"
	"github.com/frahmantamala/company-management/internal/branch"
	branchPostgres "github.com/frahmantamala/company-management/internal/branch/postgres"
	"github.com/frahmantamala/company-management/internal/company"
	companyPostgres "github.com/frahmantamala/company-management/internal/company/postgres"
	"github.com/frahmantamala/company-management/internal/core/events"
	"github.com/frahmantamala/company-management/internal/transport/rest"
	"github.com/frahmantamala/company-management/internal/user"
	userPostgres "github.com/frahmantamala/company-management/internal/user/postgres"
	"github.com/frahmantamala/company-management/pkg/logger"
)

var httpServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start HTTP server",
	Long:  `Start the HTTP server to handle API requests`,
	Run: func(cmd *cobra.Command, args []string) {
		startHTTPServer()
	},
}

type Dependencies struct {
	Config      *internal.Config
	DB          *sqlx.DB
	GormDB      *gorm.DB
	Router      *chi.Mux
	Logger      *slog.Logger
	CleanupPool *assetstore.CleanupPool

	AuthHandler    *auth.Handler
	UserHandler    *user.Handler
	CompanyHandler *company.Handler
	BranchHandler  *branch.Handler
}

func startHTTPServer() {
	deps, err := initializeDependencies()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}

	rest.RegisterAllRoutes(deps.Router, deps.DB.DB, deps.AuthHandler, deps.UserHandler, deps.CompanyHandler, deps.BranchHandler, deps.Logger)

	addr := fmt.Sprintf(":%d", deps.Config.Server.Port)
	deps.Logger.Info("starting HTTP server", "address", addr)

	server := &http.Server{
		Addr:              addr,
		Handler:           deps.Router,
		ReadHeaderTimeout: deps.Config.Server.ReadHeaderTimeout,
		ReadTimeout:       deps.Config.Server.ReadTimeout,
		WriteTimeout:      deps.Config.Server.WriteTimeout,
		IdleTimeout:       deps.Config.Server.IdleTimeout,
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		serverErrChan <- server.ListenAndServe()
	}()

	select {
	case sig := <-sigChan:
		deps.Logger.Info("received signal, shutting down", "signal", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			deps.Logger.Error("server shutdown error", "error", err)
		}
		deps.CleanupPool.Shutdown()
		if err := deps.DB.Close(); err != nil {
			deps.Logger.Error("database close error", "error", err)
		}
	case err := <-serverErrChan:
		if err != nil && err != http.ErrServerClosed {
			deps.Logger.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}

	deps.Logger.Info("server stopped")
}

func initializeDependencies() (*Dependencies, error) {
	config, err := loadConfig(".")
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger.Init(config.Observability.Logging.Level, config.Observability.Logging.Format)
	log := logger.LoggerWrapper()
	if log == nil {
		log = slog.Default()
	}

	sqlxDB, err := initDB(config.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	gormDB, err := gorm.Open(gormPostgres.New(gormPostgres.Config{Conn: sqlxDB.DB}), &gorm.Config{
		Logger:         gormLogger.Default.LogMode(gormLogger.Warn),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open gorm session: %w", err)
	}

	store, err := assetstore.NewS3Store(context.Background(), config.Storage, log)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize asset store: %w", err)
	}

	cleanupPool := assetstore.NewCleanupPool(store, assetstore.CleanupConfig{
		MaxWorkers:   config.Storage.CleanupWorker,
		JobQueueSize: config.Storage.CleanupQueue,
	}, log)

	bus := events.NewEventBus(log)
	events.RegisterAuditLogger(bus, log)

	lookup := authzPostgres.NewLookup(gormDB)

	tokenGen := auth.NewJWTTokenGenerator(config.Security.AccessTokenSecret, config.Security.RefreshTokenSecret)
	if config.Security.AccessTokenDuration > 0 {
		tokenGen.AccessTokenTTL = config.Security.AccessTokenDuration
	}
	if config.Security.RefreshTokenDuration > 0 {
		tokenGen.RefreshTokenTTL = config.Security.RefreshTokenDuration
	}

	authService := auth.NewService(authPostgres.NewRepository(gormDB), tokenGen)
	userService := user.NewService(userPostgres.NewRepository(gormDB), lookup, log)
	companyService := company.NewService(companyPostgres.NewRepository(gormDB), store, cleanupPool, bus, log)
	branchService := branch.NewService(branchPostgres.NewRepository(gormDB), lookup, log)

	return &Dependencies{
		Config:      config,
		DB:          sqlxDB,
		GormDB:      gormDB,
		Router:      chi.NewRouter(),
		Logger:      log,
		CleanupPool: cleanupPool,

		AuthHandler:    auth.NewHandler(authService),
		UserHandler:    user.NewHandler(userService),
		CompanyHandler: company.NewHandler(companyService),
		BranchHandler:  branch.NewHandler(branchService),
	}, nil
}

// initDB initializes the database connection
func initDB(cfg internal.DatabaseConfig) (*sqlx.DB, error) {
	const driver = "pgx"

	dbConn, err := sqlx.Connect(driver, cfg.Source)
	if err != nil {
		return nil, fmt.Errorf("failed to open db connection: %w", err)
	}

	dbConn.SetMaxIdleConns(cfg.MaxIdleConns)
	dbConn.SetMaxOpenConns(cfg.MaxOpenConns)
	dbConn.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	dbConn.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	if err := dbConn.Ping(); err != nil {
		_ = dbConn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return dbConn, nil
}
