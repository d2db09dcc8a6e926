package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/resumatch/backend/auth"
	"github.com/resumatch/backend/config"
	_ "github.com/resumatch/backend/docs"
	"github.com/resumatch/backend/extract"
	"github.com/resumatch/backend/gemini"
	"github.com/resumatch/backend/handlers"
	"github.com/resumatch/backend/logger"
	"github.com/resumatch/backend/matcher"
	"github.com/resumatch/backend/storage"
	"github.com/resumatch/backend/ws"
)

// @title ResuMatch Backend API
// @version 1.0
// @description Resume-to-job matching service with LLM evaluation, job catalog and interview preparation.

// @contact.name API Support
// @contact.email support@resumatch.dev

// @host localhost:8080
// @BasePath /api

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	// Load .env file if present (for local development)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Configuration error: %v", err)
	}

	zlog, err := logger.New(cfg.Debug)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer zlog.Sync()

	if cfg.Debug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	zlog.Info("initializing Firestore client", zap.String("project", cfg.ProjectID))
	firestoreClient, err := storage.NewFirestoreClient(ctx, cfg)
	if err != nil {
		zlog.Fatal("failed to initialize Firestore client", zap.Error(err))
	}
	defer firestoreClient.Close()

	zlog.Info("initializing Cloud Storage client", zap.String("bucket", cfg.ResumeBucketName))
	storageClient, err := storage.NewCloudStorageClient(ctx, cfg)
	if err != nil {
		zlog.Fatal("failed to initialize Cloud Storage client", zap.Error(err))
	}
	defer storageClient.Close()

	zlog.Info("initializing Gemini client", zap.String("model", cfg.GeminiModel))
	geminiClient, err := gemini.NewClient(ctx, cfg, zlog)
	if err != nil {
		zlog.Fatal("failed to initialize Gemini client", zap.Error(err))
	}
	defer geminiClient.Close()

	jwtService := auth.NewJWTService(cfg)

	// Progress channel: one hub shared by every match run.
	hub := ws.NewHub(zlog)
	go hub.Run(ctx)

	extractor := extract.NewDocumentExtractor(storageClient)
	limiter := matcher.NewRateLimiter(
		cfg.RateLimitMaxCalls,
		time.Duration(cfg.RateLimitWindowSeconds)*time.Second,
		hub,
		zlog,
	)
	orchestrator := matcher.NewOrchestrator(
		firestoreClient,
		firestoreClient,
		firestoreClient,
		geminiClient,
		extractor,
		limiter,
		hub,
		zlog,
	)

	matcherHandler := handlers.NewMatcherHandler(orchestrator, firestoreClient, cfg.FitThreshold, zlog)
	jobsHandler := handlers.NewJobsHandler(firestoreClient, zlog)
	resumeHandler := handlers.NewResumeHandler(firestoreClient, storageClient, geminiClient, zlog)
	interviewHandler := handlers.NewInterviewHandler(geminiClient, zlog)
	authHandler := handlers.NewAuthHandler(firestoreClient, jwtService, zlog)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(gin.Logger())

	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000", "http://localhost:5173", "*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	router.GET("/health", handlers.HealthCheck)
	router.GET("/ws", hub.ServeWS)

	api := router.Group("/api")
	{
		authGroup := api.Group("/auth")
		{
			authGroup.POST("/register", authHandler.Register)
			authGroup.POST("/login", authHandler.Login)
		}

		jobs := api.Group("/jobs")
		{
			jobs.GET("", jobsHandler.List)
			jobs.GET("/search", jobsHandler.Search)
		}

		jobsProtected := api.Group("/jobs")
		jobsProtected.Use(auth.AuthMiddleware(jwtService))
		{
			jobsProtected.POST("", jobsHandler.Create)
			jobsProtected.DELETE("/:id", jobsHandler.Delete)
		}

		protected := api.Group("")
		protected.Use(auth.AuthMiddleware(jwtService))
		{
			protected.POST("/resume/matcher", matcherHandler.Matcher)
			protected.GET("/resume/matcher/results", matcherHandler.MatchResults)
			protected.POST("/resume/upload", resumeHandler.Upload)
			protected.GET("/resume", resumeHandler.List)
			protected.POST("/interview/prepare", interviewHandler.Prepare)
		}
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		zlog.Info("starting server", zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zlog.Fatal("server error", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zlog.Info("shutting down server")
	cancel()

	// Give outstanding requests 30 seconds to complete
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		zlog.Fatal("server forced to shutdown", zap.Error(err))
	}

	zlog.Info("server exited gracefully")
}
