package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"github.com/thikana-bd/app-thikana/internal/config"
	"github.com/thikana-bd/app-thikana/internal/handlers"
	"github.com/thikana-bd/app-thikana/internal/logging"
	"github.com/thikana-bd/app-thikana/internal/middleware"
	"github.com/thikana-bd/app-thikana/internal/observability"
	"github.com/thikana-bd/app-thikana/internal/services"
	"github.com/thikana-bd/app-thikana/internal/token"
	"github.com/thikana-bd/app-thikana/internal/utils"
	"github.com/thikana-bd/app-thikana/internal/utils/httpclient"
	"go.uber.org/zap"
)

// @title           Thikana API
// @version         1.0
// @description     Tenant registration and verification portal. Residents register with their national ID or birth certificate number, prove possession of their mobile number via OTP, and build a tenant profile (family, house workers, residence, landlord, documents) that is checked against the identity registry.

// @contact.name   API Support
// @contact.email  support@thikana.gov.bd

// @host      localhost:8080
// @BasePath  /v1

// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name Authorization

// @tag.name auth
// @tag.description Registration and login flows

// @tag.name tenant
// @tag.description Tenant profile operations

// @tag.name health
// @tag.description Health check operations

func main() {
	// Initialize logger first
	if err := logging.InitLogger(); err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}

	// Load configuration
	if err := config.LoadConfig(); err != nil {
		logging.Logger.Fatal("failed to load config", zap.Error(err))
	}
	cfg := config.AppConfig

	// Initialize observability
	observability.InitTracer()
	defer observability.ShutdownTracer()

	// Initialize database connections
	config.InitMongoDB()
	config.InitRedis()

	// Audit trail worker writes auth and profile events asynchronously
	utils.InitAuditWorker(
		config.MongoDB.Collection(cfg.AuditLogCollection),
		cfg.AuditWorkers,
		cfg.AuditBufferSize,
	)
	defer utils.ShutdownAuditWorker()

	// Identity registry: embedded mock dataset unless an upstream is configured
	var registry services.IdentityRegistry
	switch cfg.IdentityRegistryMode {
	case "http":
		registry = services.NewHTTPRegistry(cfg.IdentityRegistryURL, httpclient.GetGlobalPool(), logging.Logger)
	default:
		mock, err := services.NewMockRegistry()
		if err != nil {
			logging.Logger.Fatal("failed to load identity registry seed", zap.Error(err))
		}
		registry = mock
	}

	// SMS dispatcher: log-only when no gateway is configured
	var dispatcher services.SMSDispatcher
	if cfg.SMSGatewayURL != "" {
		dispatcher = services.NewGatewaySMSDispatcher(cfg.SMSGatewayURL, httpclient.GetGlobalPool(), logging.Logger)
	} else {
		dispatcher = services.NewLogSMSDispatcher(logging.Logger)
	}

	// Persistence
	otpStore := services.NewMongoOTPStore(config.MongoDB.Collection(cfg.OTPCollection))
	userStore := services.NewMongoUserStore(config.MongoDB.Collection(cfg.UserCollection))
	pendingStore := services.NewRedisPendingStore(config.Redis, cfg.PendingFlowTTL)
	profileStore := services.NewMongoProfileStore(config.MongoDB, services.MongoProfileCollections{
		EmergencyContacts: cfg.EmergencyContactCollection,
		FamilyMembers:     cfg.FamilyMemberCollection,
		HouseWorkers:      cfg.HouseWorkerCollection,
		Residences:        cfg.ResidenceCollection,
		Landlords:         cfg.LandlordCollection,
		PreviousLandlords: cfg.PreviousLandlordCollection,
		Documents:         cfg.DocumentCollection,
		Notifications:     cfg.NotificationCollection,
	})

	// Services
	issuer := token.NewIssuer(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTAudience, cfg.JWTExpiry)
	otpService := services.NewOTPService(otpStore, dispatcher, cfg.OTPExpiry, cfg.OTPResendCooldown, logging.Logger)
	registrationService := services.NewRegistrationService(
		registry,
		userStore,
		pendingStore,
		otpService,
		issuer,
		cfg.IdentityCrossCheckStrict,
		cfg.PasswordPolicyEnforced,
		logging.Logger,
	)
	profileService := services.NewProfileService(profileStore, userStore, registry, dispatcher, logging.Logger)

	// Handlers
	authHandler := handlers.NewAuthHandler(registrationService, otpService, cfg.OTPDemoMode, logging.Logger)
	profileHandler := handlers.NewProfileHandler(profileService, userStore)

	// Set Gin mode
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Create router with middleware
	router := gin.New()
	router.Use(
		gin.Recovery(),
		middleware.RequestID(),
		middleware.RequestLogger(),
		middleware.RequestTracker(),
		cors.Default(),
	)

	// Metrics endpoint
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// API v1 routes
	v1 := router.Group("/v1")
	{
		// Health check endpoint
		v1.GET("/health", handlers.Health(config.MongoDB, config.Redis))

		auth := v1.Group("/auth")
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
			auth.POST("/flow/:flow_id/otp", authHandler.RequestOTP)
			auth.GET("/flow/:flow_id/otp/wait", authHandler.OTPWait)
			auth.POST("/flow/:flow_id/verify", authHandler.VerifyOTP)
			auth.POST("/flow/:flow_id/finalize", authHandler.Finalize)
			auth.DELETE("/flow/:flow_id", authHandler.CancelFlow)
		}

		tenant := v1.Group("/tenant/:id", middleware.AuthMiddleware(issuer), middleware.RequireSelfOrAdmin())
		{
			tenant.GET("", profileHandler.GetTenant)
			tenant.POST("/emergency-contacts", profileHandler.AddEmergencyContact)
			tenant.GET("/emergency-contacts", profileHandler.ListEmergencyContacts)
			tenant.POST("/family-members", profileHandler.AddFamilyMember)
			tenant.GET("/family-members", profileHandler.ListFamilyMembers)
			tenant.POST("/house-workers", profileHandler.AddHouseWorker)
			tenant.GET("/house-workers", profileHandler.ListHouseWorkers)
			tenant.PUT("/residence", profileHandler.SaveResidence)
			tenant.GET("/residence", profileHandler.GetResidence)
			tenant.PUT("/landlord", profileHandler.SaveLandlord)
			tenant.GET("/landlord", profileHandler.GetLandlord)
			tenant.POST("/previous-landlords", profileHandler.AddPreviousLandlord)
			tenant.GET("/previous-landlords", profileHandler.ListPreviousLandlords)
			tenant.POST("/documents", profileHandler.AddDocument)
			tenant.GET("/documents", profileHandler.ListDocuments)
			tenant.GET("/verification-summary", profileHandler.VerificationSummary)
		}
	}

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Create server with timeouts
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logging.Logger.Info("starting server",
			zap.Int("port", cfg.Port),
			zap.String("environment", cfg.Environment),
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logging.Logger.Fatal("failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	// Graceful shutdown
	logging.Logger.Info("shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logging.Logger.Fatal("server forced to shutdown", zap.Error(err))
	}

	logging.Logger.Info("server exited gracefully")
}
