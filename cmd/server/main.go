package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	auditapp "github.com/crm/backend/internal/application/audit"
	crmapp "github.com/crm/backend/internal/application/crm"
	identityapp "github.com/crm/backend/internal/application/identity"
	orderingapp "github.com/crm/backend/internal/application/ordering"
	"github.com/crm/backend/internal/domain/identity"
	"github.com/crm/backend/internal/infrastructure/auth"
	"github.com/crm/backend/internal/infrastructure/config"
	"github.com/crm/backend/internal/infrastructure/logger"
	"github.com/crm/backend/internal/infrastructure/persistence"
	"github.com/crm/backend/internal/interfaces/http/handler"
	"github.com/crm/backend/internal/interfaces/http/middleware"
	"github.com/crm/backend/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

//	@title			CRM Backend API
//	@version		1.0
//	@description	Lead-to-order CRM backend with per-country order numbering

//	@contact.name	API Support
//	@contact.url	https://github.com/crm/backend

//	@host		localhost:8080
//	@BasePath	/api/v1

//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Bearer token authentication. Format: "Bearer {token}"

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting CRM Backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Create GORM logger backed by zap
	gormLogLevel := logger.MapGormLogLevel(cfg.Log.Level)
	gormLog := logger.NewGormLogger(log, gormLogLevel)

	// Initialize database connection with custom logger
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	// Initialize repositories
	staffRepo := persistence.NewGormStaffRepository(db.DB)
	customerRepo := persistence.NewGormCustomerRepository(db.DB)
	leadRepo := persistence.NewGormLeadRepository(db.DB)
	orderRepo := persistence.NewGormOrderRepository(db.DB)
	emSeriesRepo := persistence.NewGormEmSeriesRepository(db.DB)
	auditRepo := persistence.NewGormAuditEntryRepository(db.DB)

	// Transaction scope shared by conversion and round-robin assignment
	scope := persistence.NewGormTransactionScope(db.DB)

	// Token blacklist: Redis when configured, in-memory otherwise.
	// With the in-memory fallback, logout revocation does not survive a
	// restart and is not shared between instances.
	var blacklist auth.TokenBlacklist
	if cfg.Redis.Host != "" {
		redisBlacklist, err := auth.NewRedisTokenBlacklist(auth.RedisTokenBlacklistConfig{
			Host:     cfg.Redis.Host,
			Port:     cfg.Redis.Port,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			log.Warn("Redis unavailable, falling back to in-memory token blacklist", zap.Error(err))
			blacklist = auth.NewInMemoryTokenBlacklist()
		} else {
			defer func() {
				if err := redisBlacklist.Close(); err != nil {
					log.Error("Error closing Redis blacklist", zap.Error(err))
				}
			}()
			blacklist = redisBlacklist
			log.Info("Redis token blacklist connected",
				zap.String("host", cfg.Redis.Host),
				zap.Int("port", cfg.Redis.Port),
			)
		}
	} else {
		blacklist = auth.NewInMemoryTokenBlacklist()
		log.Info("Using in-memory token blacklist")
	}

	// Initialize application services
	jwtService := auth.NewJWTService(cfg.JWT)
	auditService := auditapp.NewAuditService(auditRepo, log)
	authService := identityapp.NewAuthService(staffRepo, jwtService, blacklist, identityapp.AuthServiceConfig{
		MaxLoginAttempts: cfg.Auth.MaxLoginAttempts,
		LockDuration:     cfg.Auth.LockDuration,
	}, log)
	staffService := identityapp.NewStaffService(staffRepo, auditService, log)
	assignmentService := crmapp.NewAssignmentService(scope, log)
	leadService := crmapp.NewLeadService(leadRepo, assignmentService, auditService, log)
	customerService := crmapp.NewCustomerService(customerRepo, auditService, log)
	conversionService := crmapp.NewConversionService(leadRepo, orderRepo, scope, auditService, cfg.App.DefaultCountry, log)
	orderService := orderingapp.NewOrderService(orderRepo, auditService, log)
	emSeriesService := orderingapp.NewEmSeriesService(emSeriesRepo, auditService, log)

	// Initialize HTTP handlers
	authHandler := handler.NewAuthHandler(authService)
	staffHandler := handler.NewStaffHandler(staffService)
	leadHandler := handler.NewLeadHandler(leadService, conversionService)
	customerHandler := handler.NewCustomerHandler(customerService)
	orderHandler := handler.NewOrderHandler(orderService)
	emSeriesHandler := handler.NewEmSeriesHandler(emSeriesService)
	auditHandler := handler.NewAuditHandler(auditService)
	systemHandler := handler.NewSystemHandler(db)

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Setup validation
	middleware.SetupValidator()

	// Initialize router with custom middleware
	engine := gin.New()

	// Configure trusted proxies
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	// Apply middleware stack in order:
	// 1. RequestID - Generate/propagate request ID
	// 2. Recovery - Catch panics
	// 3. Logger - Log requests
	// 4. Security - Add security headers
	// 5. CORS - Handle cross-origin requests
	// 6. BodyLimit - Limit request body size
	// 7. RateLimit - Apply rate limiting (if enabled)
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Secure())

	// Configure CORS from config
	corsConfig := middleware.CORSConfig{
		AllowOrigins:     cfg.HTTP.CORSAllowOrigins,
		AllowMethods:     cfg.HTTP.CORSAllowMethods,
		AllowHeaders:     cfg.HTTP.CORSAllowHeaders,
		ExposeHeaders:    []string{"X-Request-ID", "X-RateLimit-Limit", "X-RateLimit-Remaining"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	engine.Use(middleware.CORSWithConfig(corsConfig))

	// Body size limit
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	// Rate limiting (if enabled)
	if cfg.HTTP.RateLimitEnabled {
		rateLimiter := middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
		engine.Use(middleware.RateLimit(rateLimiter))
		log.Info("Rate limiting enabled",
			zap.Int("requests", cfg.HTTP.RateLimitRequests),
			zap.Duration("window", cfg.HTTP.RateLimitWindow),
		)
	}

	// Health check endpoint (outside API versioning)
	engine.GET("/health", systemHandler.Health)

	// Setup API routes using router
	r := router.NewRouter(engine, router.WithAPIVersion("v1"))

	// Apply JWT authentication middleware to API routes
	// Configure skip paths for public endpoints
	jwtConfig := middleware.JWTMiddlewareConfig{
		JWTService:     jwtService,
		TokenBlacklist: blacklist,
		SkipPaths: []string{
			"/api/v1/auth/login",
			"/api/v1/auth/refresh",
			"/api/v1/system/ping",
			"/api/v1/system/info",
		},
		Logger: log,
	}
	r.Use(middleware.JWTAuthMiddlewareWithConfig(jwtConfig))

	agentOrAdmin := middleware.RequireAnyRole(identity.RoleAdmin, identity.RoleAgent)

	// Auth routes. Login and refresh are public via JWT skip paths, the
	// rest require a valid access token.
	authRoutes := router.NewDomainGroup("auth", "/auth")
	if cfg.HTTP.AuthRateLimitEnabled {
		authLimiter := middleware.NewRateLimiter(cfg.HTTP.AuthRateLimitRequests, cfg.HTTP.AuthRateLimitWindow)
		authRoutes.Use(middleware.RateLimit(authLimiter))
		log.Info("Auth rate limiting enabled",
			zap.Int("requests", cfg.HTTP.AuthRateLimitRequests),
			zap.Duration("window", cfg.HTTP.AuthRateLimitWindow),
		)
	}
	authRoutes.POST("/login", authHandler.Login)
	authRoutes.POST("/refresh", authHandler.Refresh)
	authRoutes.POST("/logout", authHandler.Logout)
	authRoutes.GET("/me", authHandler.Me)
	authRoutes.PUT("/password", authHandler.ChangePassword)
	authRoutes.POST("/force-logout/:id", middleware.RequireAdmin(), authHandler.ForceLogout)

	// Staff management. Reads are open to any authenticated staff, writes
	// are admin only.
	staffRoutes := router.NewDomainGroup("staff", "/staff")
	staffRoutes.GET("", staffHandler.List)
	staffRoutes.GET("/:id", staffHandler.GetByID)
	staffRoutes.POST("", middleware.RequireAdmin(), staffHandler.Create)
	staffRoutes.PUT("/:id", middleware.RequireAdmin(), staffHandler.Update)
	staffRoutes.DELETE("/:id", middleware.RequireAdmin(), staffHandler.Deactivate)

	// Lead routes
	leadRoutes := router.NewDomainGroup("leads", "/leads")
	leadRoutes.GET("", leadHandler.List)
	leadRoutes.GET("/:id", leadHandler.GetByID)
	leadRoutes.GET("/:id/conversion-check", leadHandler.ConversionCheck)
	leadRoutes.POST("", agentOrAdmin, leadHandler.Create)
	leadRoutes.PUT("/:id", agentOrAdmin, leadHandler.Update)
	leadRoutes.PUT("/:id/status", agentOrAdmin, leadHandler.ChangeStatus)
	leadRoutes.POST("/:id/lost", agentOrAdmin, leadHandler.MarkLost)
	leadRoutes.POST("/:id/assign", agentOrAdmin, leadHandler.Assign)
	leadRoutes.PUT("/:id/intake-form", agentOrAdmin, leadHandler.SetIntakeForm)
	leadRoutes.PUT("/:id/products", agentOrAdmin, leadHandler.ReplaceProducts)
	leadRoutes.POST("/:id/convert", agentOrAdmin, leadHandler.Convert)

	// Customer routes
	customerRoutes := router.NewDomainGroup("customers", "/customers")
	customerRoutes.GET("", customerHandler.List)
	customerRoutes.GET("/by-phone", customerHandler.GetByPhone)
	customerRoutes.GET("/:id", customerHandler.GetByID)
	customerRoutes.POST("", agentOrAdmin, customerHandler.Create)
	customerRoutes.PUT("/:id", agentOrAdmin, customerHandler.Update)

	// Order routes. Delivery staff may mark orders delivered, everything
	// else that mutates is agent or admin.
	orderRoutes := router.NewDomainGroup("orders", "/orders")
	orderRoutes.GET("", orderHandler.List)
	orderRoutes.GET("/stats", orderHandler.Stats)
	orderRoutes.GET("/em/:emNumber", orderHandler.GetByEmNumber)
	orderRoutes.GET("/:id", orderHandler.GetByID)
	orderRoutes.PUT("/:id", agentOrAdmin, orderHandler.Update)
	orderRoutes.POST("/:id/deliver",
		middleware.RequireAnyRole(identity.RoleAdmin, identity.RoleAgent, identity.RoleDelivery),
		orderHandler.MarkDelivered)
	orderRoutes.POST("/:id/cancel", agentOrAdmin, orderHandler.Cancel)

	// EM series routes. Series administration is admin only.
	emSeriesRoutes := router.NewDomainGroup("em-series", "/em-series")
	emSeriesRoutes.GET("", emSeriesHandler.List)
	emSeriesRoutes.GET("/country/:country", emSeriesHandler.GetByCountry)
	emSeriesRoutes.POST("", middleware.RequireAdmin(), emSeriesHandler.Create)
	emSeriesRoutes.PUT("/:id", middleware.RequireAdmin(), emSeriesHandler.Update)

	// Audit routes. Entity history is visible to any authenticated staff,
	// the global and per-actor views are admin only.
	auditRoutes := router.NewDomainGroup("audit", "/audit")
	auditRoutes.GET("", middleware.RequireAdmin(), auditHandler.List)
	auditRoutes.GET("/entity/:type/:id", auditHandler.ListByEntity)
	auditRoutes.GET("/actor/:id", middleware.RequireAdmin(), auditHandler.ListByActor)

	// System routes
	systemRoutes := router.NewDomainGroup("system", "/system")
	systemRoutes.GET("/info", systemHandler.GetSystemInfo)
	systemRoutes.GET("/ping", systemHandler.Ping)

	// Register all domain groups
	r.Register(authRoutes).
		Register(staffRoutes).
		Register(leadRoutes).
		Register(customerRoutes).
		Register(orderRoutes).
		Register(emSeriesRoutes).
		Register(auditRoutes).
		Register(systemRoutes)

	// Setup routes
	r.Setup()

	// Create HTTP server with config
	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	// Start server in goroutine
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}
