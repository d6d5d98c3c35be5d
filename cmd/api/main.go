package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	_ "github.com/johnquangdev/doorbell/docs"
	pkgvalidator "github.com/johnquangdev/doorbell/pkg/validator"

	"github.com/johnquangdev/doorbell/internal/adapter/handler"
	"github.com/johnquangdev/doorbell/internal/adapter/repository"
	"github.com/johnquangdev/doorbell/internal/domain/repositories"
	"github.com/johnquangdev/doorbell/internal/infrastructure/cache"
	"github.com/johnquangdev/doorbell/internal/infrastructure/database"
	"github.com/johnquangdev/doorbell/internal/infrastructure/external/expo"
	"github.com/johnquangdev/doorbell/internal/usecase/contact"
	"github.com/johnquangdev/doorbell/internal/usecase/identity"
	"github.com/johnquangdev/doorbell/internal/usecase/notification"
	"github.com/johnquangdev/doorbell/internal/usecase/signaling"
	"github.com/johnquangdev/doorbell/pkg/config"
	"github.com/johnquangdev/doorbell/pkg/jwt"
)

// @title           Doorbell API
// @version         1.0
// @description     Real-time doorbell: contact requests between guests and hosts, live notification fan-out and WebRTC signaling relay

// @BasePath  /v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := newLogger(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	// Initialize Echo instance
	e := echo.New()

	// Register validator for request validation
	validator := pkgvalidator.New()
	e.Validator = validator

	// Configure Echo
	e.HideBanner = true
	e.HidePort = false

	e.Use(middleware.RequestID())

	// Custom logger format
	e.Use(middleware.LoggerWithConfig(middleware.LoggerConfig{
		Format: "${time_rfc3339} | ${status} | ${method} ${uri} | ${latency_human} | ${id}\n",
	}))

	// Recover from panics
	e.Use(middleware.Recover())

	// CORS middleware
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: cfg.Server.AllowedOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization, handler.GuestKeyHeader},
	}))

	// base is cancelled on shutdown and closes every websocket
	base, stop := context.WithCancel(context.Background())
	defer stop()

	log.Println("🔧 Initializing dependencies...")

	// Initialize repositories
	var (
		userRepo    repositories.UserRepository
		contactRepo repositories.ContactRequestRepository
	)
	switch cfg.Database.Driver {
	case "memory":
		log.Println("📦 Using in-memory storage (data is lost on restart)")
		users, err := repository.NewMemoryUserRepository(cfg.Database.SeedHosts)
		if err != nil {
			log.Fatalf("Failed to seed hosts: %v", err)
		}
		userRepo = users
		contactRepo = repository.NewMemoryContactRequestRepository()
	default:
		log.Println("📦 Connecting to database...")
		db := connectDatabase(cfg)
		defer database.CloseDB(db)
		userRepo = repository.NewUserRepository(db)
		contactRepo = repository.NewContactRequestRepository(db)
	}

	// Host lookup cache
	var hostCache identity.Cache
	if cfg.Redis.Enabled {
		log.Println("📦 Connecting to Redis...")
		redisClient, err := cache.NewRedisClient(cfg)
		if err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		defer redisClient.Close()
		hostCache = cache.NewRedisStore(redisClient, "doorbell:")
	} else {
		memoryCache := cache.NewMemoryStore()
		defer memoryCache.Close()
		hostCache = memoryCache
	}
	resolver := identity.NewResolver(userRepo, hostCache, cfg.Contact.IdentityCacheTTL, logger)

	// Signaling hub owns the connection registry and the rooms
	log.Println("📡 Starting signaling hub...")
	hub := signaling.NewHub(logger)
	go hub.Run(base)

	// Push gateway
	var push notification.PushGateway
	if cfg.Push.Enabled {
		log.Printf("🔔 Push notifications via %s", cfg.Push.URL)
		push = expo.NewGateway(cfg.Push, userRepo, logger)
	} else {
		log.Println("⚠️  Push notifications disabled")
	}
	fanout := notification.NewFanout(hub, push, contactRepo, logger, cfg.Push.Timeout)

	// Contact service and the deadline sweeper
	log.Println("🚪 Initializing contact service...")
	contactService := contact.NewContactService(
		contactRepo,
		resolver,
		fanout,
		contact.PolicyFromConfig(cfg.Contact),
		logger,
	)
	go contactService.RunSweeper(base, cfg.Contact.SweepInterval)

	log.Println("🔑 Initializing JWT manager...")
	jwtManager := jwt.NewManager(cfg.JWT)

	// Handlers
	dispatcher := handler.NewDispatcher(hub, contactService, validator, cfg.Auth.AllowAnonymousAnnounce, logger)
	if cfg.Auth.AllowAnonymousAnnounce {
		log.Println("⚠️  Anonymous host announce is enabled")
	}
	realtimeHandler := handler.NewRealtimeHandler(base, hub, dispatcher, jwtManager, cfg, logger)
	contactHandler := handler.NewContactHandler(contactService, logger)

	log.Println("🛣️  Setting up routes...")
	router := handler.NewRouter(cfg, jwtManager, contactHandler, realtimeHandler, hub)
	router.Setup(e)

	// Start server
	go func() {
		addr := cfg.GetServerAddr()
		log.Printf("🚀 Starting server on %s", addr)
		log.Printf("📝 Environment: %s", cfg.Server.Environment)
		log.Printf("🔗 Health check: http://%s/health", addr)

		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Println("🛑 Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		log.Printf("❌ Server forced to shutdown: %v", err)
	}

	// websockets close with base, then the hub drains
	stop()
	hub.Stop()
	select {
	case <-hub.Done():
	case <-ctx.Done():
		log.Println("⚠️  Hub did not stop in time")
	}

	pushesDone := make(chan struct{})
	go func() {
		fanout.Wait()
		close(pushesDone)
	}()
	select {
	case <-pushesDone:
	case <-ctx.Done():
		log.Println("⚠️  Abandoning in-flight push notifications")
	}

	log.Println("✅ Server stopped gracefully")
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	if cfg.IsProduction() {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}

func connectDatabase(cfg *config.Config) *gorm.DB {
	db, err := database.NewPostgresDB(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Production deployments should manage schema via sql-migrate.
	if cfg.Database.AutoMigrate {
		if cfg.IsProduction() {
			log.Fatalf("AutoMigrate is enabled in production. Disable DB_AUTO_MIGRATE or manage schema with sql-migrate.")
		}
		log.Println("🔄 Running embedded migrations (development only) ...")
		if err := database.AutoMigrate(db); err != nil {
			log.Fatalf("Failed to run AutoMigrate: %v", err)
		}
	} else {
		log.Println("🔄 Skipping AutoMigrate; use sql-migrate for schema migrations in CI/CD/production")
	}
	return db
}
