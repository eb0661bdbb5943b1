package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/etendy/backend/docs"
	"github.com/etendy/backend/internal/auth"
	"github.com/etendy/backend/internal/config"
	"github.com/etendy/backend/internal/handlers"
	"github.com/etendy/backend/internal/logger"
	loggerMiddleware "github.com/etendy/backend/internal/logger/middleware"
	"github.com/etendy/backend/internal/middlewares"
	"github.com/etendy/backend/internal/models"
	"github.com/etendy/backend/internal/repositories"
	"github.com/etendy/backend/internal/services"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"
	"github.com/go-redis/redis/v8"
	_ "github.com/go-sql-driver/mysql"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/mysql"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	httpSwagger "github.com/swaggo/http-swagger"
	"go.uber.org/zap"
)

// @title Etendy Preset API
// @version 1.0
// @description API for canvas presets, their restrictions and admin roles

// @host localhost:8080
// @BasePath /api/v1
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v\n", err)
	}

	// Initialize logger
	if err := logger.Init(cfg.Logging.Level); err != nil {
		log.Fatalf("Failed to initialize logger: %v\n", err)
	}
	defer logger.Sync()

	logger.Logger.Info("Starting Etendy preset service")

	// Connect to database
	db, err := connectDB(cfg.DSN())
	if err != nil {
		logger.Logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	// Run migrations
	if err := runMigrations(db); err != nil {
		logger.Logger.Fatal("Failed to run migrations", zap.Error(err))
	}

	// Connect to Redis
	redisClient, err := connectRedis(cfg)
	if err != nil {
		logger.Logger.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	defer redisClient.Close()

	// Initialize JWT token validation
	tokenVerifier := auth.NewTokenVerifier(cfg.JWT.Secret, cfg.JWT.Issuer)
	denylist := repositories.NewTokenDenylist(redisClient)
	identityProvider := auth.NewIdentityProvider(denylist)

	// Initialize repositories
	roleStore := repositories.NewCachedRoleStore(
		repositories.NewUserRoleRepository(db, logger.Logger),
		redisClient,
		cfg.RoleCache.TTL,
		logger.Logger,
	)
	presetRepo := repositories.NewPresetRepository(db, logger.Logger)

	// Provision configured super admins
	if err := provisionSuperAdmins(context.Background(), roleStore, cfg.Bootstrap.SuperAdminIDs); err != nil {
		logger.Logger.Fatal("Failed to provision super admins", zap.Error(err))
	}

	// Initialize services
	roleService := services.NewRoleService(roleStore, identityProvider, logger.Logger)
	presetService := services.NewPresetService(presetRepo, roleService, cfg.PublicOrigin, logger.Logger)

	// Initialize handlers
	presetHandler := handlers.NewPresetHandler(presetService, logger.Logger)
	adminHandler := handlers.NewAdminHandler(roleService, logger.Logger)
	sessionHandler := handlers.NewSessionHandler(roleService, identityProvider, logger.Logger)
	schemaHandler := handlers.NewSchemaHandler(logger.Logger)

	// Initialize auth middleware
	authMiddleware := auth.AuthMiddleware(tokenVerifier, denylist, logger.Logger)
	superAdminMiddleware := auth.RoleMiddleware(roleService, logger.Logger)

	// Setup router
	r := chi.NewRouter()

	// Apply middleware
	r.Use(middlewares.RequestIDMiddleware)
	r.Use(loggerMiddleware.LoggerMiddleware(logger.Logger))
	r.Use(middlewares.RecoveryMiddleware(logger.Logger))
	r.Use(middlewares.CORSMiddleware(cfg.CORS.AllowedOrigins))
	r.Use(httprate.LimitByIP(100, time.Minute))
	r.Use(middlewares.RequestSizeLimitMiddleware(middlewares.DefaultMaxRequestSize))

	// Swagger documentation
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL(fmt.Sprintf("http://localhost:%d/swagger/doc.json", cfg.Server.Port)),
	))

	// Share links live next to the web client routes, outside of the API prefix
	presetHandler.RegisterPublicRoutes(r)

	// Scope router to /api/v1
	r.Route("/api/v1", func(r chi.Router) {
		schemaHandler.RegisterRoutes(r)
		// Register routes for signed in users
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware)
			sessionHandler.RegisterRoutes(r)
			presetHandler.RegisterRoutes(r)
			// Register admin routes with role middleware
			r.Group(func(r chi.Router) {
				r.Use(superAdminMiddleware)
				adminHandler.RegisterRoutes(r)
			})
		})
	})

	// Start server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		logger.Logger.Info("Server starting", zap.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Logger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Logger.Info("Shutting down server...")

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Logger.Error("Server forced to shutdown", zap.Error(err))
	}

	logger.Logger.Info("Server exited")
}

// connectDB connects to the database
func connectDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}

// connectRedis connects to Redis
func connectRedis(cfg *config.Config) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	return client, nil
}

// roleWriter writes role records unconditionally
type roleWriter interface {
	SetRole(ctx context.Context, userID string, role models.Role, grantedBy string) error
}

// provisionSuperAdmins grants super_admin to the configured users; it is the only path that does
func provisionSuperAdmins(ctx context.Context, store roleWriter, userIDs []string) error {
	for _, userID := range userIDs {
		if err := store.SetRole(ctx, userID, models.RoleSuperAdmin, ""); err != nil {
			return fmt.Errorf("failed to provision super admin %s: %w", userID, err)
		}
		logger.Logger.Info("super admin provisioned", zap.String("user_id", userID))
	}
	return nil
}

// runMigrations runs database migrations
func runMigrations(db *sql.DB) error {
	driver, err := mysql.WithInstance(db, &mysql.Config{
		MigrationsTable: "etendy_schema_migrations",
	})
	if err != nil {
		return fmt.Errorf("failed to create migration driver: %w", err)
	}

	// Get the working directory or use migrations folder relative to the binary
	migrationPath := "file://migrations"
	if _, err := os.Stat("migrations"); os.IsNotExist(err) {
		// Try parent directory if running from cmd
		if _, err := os.Stat("../migrations"); err == nil {
			migrationPath = "file://../migrations"
		}
	}

	m, err := migrate.NewWithDatabaseInstance(
		migrationPath,
		"mysql",
		driver,
	)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}
