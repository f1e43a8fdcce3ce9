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
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/user/blog-platform/internal"
	"github.com/user/blog-platform/internal/auth"
	authPostgres "github.com/user/blog-platform/internal/auth/postgres"
	"github.com/user/blog-platform/internal/blog"
	blogPostgres "github.com/user/blog-platform/internal/blog/postgres"
	"github.com/user/blog-platform/internal/category"
	categoryPostgres "github.com/user/blog-platform/internal/category/postgres"
	"github.com/user/blog-platform/internal/transport"
	"github.com/user/blog-platform/internal/transport/rest"
	"github.com/user/blog-platform/internal/user"
	userPostgres "github.com/user/blog-platform/internal/user/postgres"
	"github.com/user/blog-platform/pkg/logger"
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
	Config *internal.Config
	DB     *sqlx.DB
	Redis  *redis.Client
	Router *chi.Mux
	Logger *slog.Logger
}

func startHTTPServer() {
	deps, err := initializeDependencies()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}

	addr := fmt.Sprintf(":%d", deps.Config.Server.Port)
	deps.Logger.Info("starting HTTP server", "address", addr)

	server := &http.Server{
		Addr:         addr,
		Handler:      deps.Router,
		ReadTimeout:  deps.Config.Server.ReadTimeout,
		WriteTimeout: deps.Config.Server.WriteTimeout,
		IdleTimeout:  deps.Config.Server.IdleTimeout,
	}

	// Signal handling for graceful shutdown
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
		if err := deps.DB.Close(); err != nil {
			deps.Logger.Error("database close error", "error", err)
		}
		if deps.Redis != nil {
			if err := deps.Redis.Close(); err != nil {
				deps.Logger.Error("redis close error", "error", err)
			}
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

	logger.InitWithConfig(config.Observability.Logging.Level, config.Observability.Logging.Format)
	lg := logger.L()

	db, err := initDB(config.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	gormDB, err := gorm.Open(gormpostgres.New(gormpostgres.Config{Conn: db.DB}), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to open gorm over database connection: %w", err)
	}

	var redisClient *redis.Client
	var limiter auth.RateLimiter
	if config.RateLimit.Backend == "redis" {
		redisClient = redis.NewClient(&redis.Options{Addr: config.RateLimit.RedisAddr})
		limiter = auth.NewRedisRateLimiter(redisClient)
	} else {
		limiter = auth.NewMemoryRateLimiter()
	}

	// Auth wiring
	directory := authPostgres.NewRepository(gormDB, config.Database.QueryTimeout)
	tokenGen := auth.NewJWTTokenGenerator(config.Security.SessionSecret, config.Security.SessionMaxAge)
	authService := auth.NewService(directory, tokenGen, config.Security.BCryptCost, lg)
	rbac := auth.NewRBACAuthorization(authService, lg)

	var provider *auth.OAuthProvider
	if config.OAuth.GitHubEnabled() {
		provider, err = auth.NewGitHubProvider(config.OAuth)
		if err != nil {
			return nil, fmt.Errorf("failed to configure oauth provider: %w", err)
		}
	} else {
		lg.Info("github oauth not configured, provider sign-in disabled")
	}
	authHandler := auth.NewHandler(authService, provider)

	// User management
	userService := user.NewService(userPostgres.NewUserRepository(gormDB), config.Security.BCryptCost, lg)
	userHandler := user.NewHandler(userService, limiter, config.RateLimit.UserCreateMax, config.RateLimit.UserCreateWindow)

	// Content
	baseHandler := transport.NewBaseHandler(lg)
	categoryService := category.NewService(categoryPostgres.NewCategoryRepository(gormDB), lg)
	categoryHandler := category.NewHandler(baseHandler, categoryService)
	blogService := blog.NewService(blogPostgres.NewBlogRepository(gormDB), categoryService, lg)
	blogHandler := blog.NewHandler(baseHandler, blogService)

	router := chi.NewRouter()
	rest.RegisterAllRoutes(router, db.DB, redisClient, authHandler, rbac, userHandler, categoryHandler, blogHandler, lg)

	return &Dependencies{
		Config: config,
		DB:     db,
		Redis:  redisClient,
		Router: router,
		Logger: lg,
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
