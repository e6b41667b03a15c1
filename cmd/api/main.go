package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	pkgvalidator "github.com/rohannagpure45/universal-assistant-sub008/pkg/validator"

	"github.com/rohannagpure45/universal-assistant-sub008/internal/adapter/handler"
	"github.com/rohannagpure45/universal-assistant-sub008/internal/adapter/repository"
	"github.com/rohannagpure45/universal-assistant-sub008/internal/infrastructure/cache"
	"github.com/rohannagpure45/universal-assistant-sub008/internal/infrastructure/database"
	"github.com/rohannagpure45/universal-assistant-sub008/internal/infrastructure/external/livekit"
	"github.com/rohannagpure45/universal-assistant-sub008/internal/infrastructure/external/oauth"
	httpmw "github.com/rohannagpure45/universal-assistant-sub008/internal/infrastructure/http/middleware"
	"github.com/rohannagpure45/universal-assistant-sub008/internal/infrastructure/storage"
	aiuse "github.com/rohannagpure45/universal-assistant-sub008/internal/usecase/ai"
	"github.com/rohannagpure45/universal-assistant-sub008/internal/usecase/auth"
	"github.com/rohannagpure45/universal-assistant-sub008/internal/usecase/meeting"
	"github.com/rohannagpure45/universal-assistant-sub008/internal/usecase/voice"
	pkgai "github.com/rohannagpure45/universal-assistant-sub008/pkg/ai"
	"github.com/rohannagpure45/universal-assistant-sub008/pkg/config"
	"github.com/rohannagpure45/universal-assistant-sub008/pkg/jwt"
)

// @title           Universal Assistant API
// @version         1.0
// @description     AI-assisted meeting API with transcription, voice identification and multi-provider model routing

// @host      localhost:8080
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

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	// Initialize Echo instance
	e := echo.New()
	e.Validator = pkgvalidator.New()
	e.HideBanner = true
	e.HidePort = false

	e.Use(middleware.LoggerWithConfig(middleware.LoggerConfig{
		Format: "${time_rfc3339} | ${status} | ${method} ${uri} | ${latency_human}\n",
	}))
	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     cfg.Server.AllowedOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodPatch},
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
		AllowCredentials: true,
	}))

	log.Println("🔧 Initializing dependencies...")

	// Database
	log.Println("📦 Connecting to database...")
	db, err := database.NewPostgresDB(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.CloseDB(db)

	// Apply schema migrations at startup only when explicitly enabled.
	// Production deployments run sql-migrate out of band.
	if cfg.Database.AutoMigrate {
		if cfg.Server.Environment == "production" {
			log.Fatalf("DB_AUTO_MIGRATE is enabled in production. Disable it and run sql-migrate out of band.")
		}
		log.Println("🔄 Running sql-migrate schema migrations (development only) ...")
		if err := database.RunMigrations(db); err != nil {
			log.Fatalf("Failed to apply schema migrations: %v", err)
		}
	} else {
		log.Println("🔄 Skipping startup schema migrations; run sql-migrate in CI/CD/production")
	}

	// Redis
	log.Println("📦 Connecting to Redis...")
	redisClient, err := cache.NewRedisClient(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer redisClient.Close()
	store := cache.NewRedisStore(redisClient)

	// Object storage
	log.Println("📦 Connecting to object storage...")
	minioClient, err := storage.NewMinIOClient(&cfg.Storage)
	if err != nil {
		log.Fatalf("Failed to connect to object storage: %v", err)
	}

	// Repositories
	log.Println("⚙️  Initializing repositories...")
	userRepo := repository.NewUserRepository(db)
	sessionRepo := repository.NewSessionRepository(db)
	meetingRepo := repository.NewMeetingRepository(db)
	transcriptRepo := repository.NewTranscriptRepository(db)
	voiceRepo := repository.NewVoiceProfileRepository(db)
	jobRepo := repository.NewAIJobRepository(db)
	costRepo := repository.NewCostRepository(db)

	// AI provider clients. Only configured providers join the pool; the
	// router skips models whose provider has no client.
	log.Println("🤖 Initializing AI components...")
	var chatClients []pkgai.ChatClient
	var sttClients []pkgai.TranscriptionClient
	if cfg.OpenAI.APIKey != "" {
		chatClients = append(chatClients, pkgai.NewOpenAIClient(&cfg.OpenAI))
	}
	if cfg.Anthropic.APIKey != "" {
		chatClients = append(chatClients, pkgai.NewAnthropicClient(&cfg.Anthropic))
	}
	if cfg.Groq.APIKey != "" {
		chatClients = append(chatClients, pkgai.NewGroqClient(&cfg.Groq))
	}
	var deepgramClient *pkgai.DeepgramClient
	if cfg.Deepgram.APIKey != "" {
		deepgramClient = pkgai.NewDeepgramClient(&cfg.Deepgram)
		sttClients = append(sttClients, deepgramClient)
	}
	if cfg.Assembly.APIKey != "" {
		sttClients = append(sttClients, pkgai.NewAssemblyAIClient(&cfg.Assembly))
	}

	modelRouter := aiuse.NewModelRouter(logger)
	costManager := aiuse.NewCostManager(costRepo, cfg.Cost.DefaultDailyBudgetUSD, cfg.Cost.EnforceBudgets, logger)
	unifiedService := aiuse.NewUnifiedService(modelRouter, costManager, chatClients, sttClients, deepgramClient, store, cfg, logger)

	// OAuth + JWT
	log.Println("🔐 Initializing OAuth provider...")
	googleProvider := oauth.NewGoogleProvider(
		cfg.OAuth.Google.ClientID,
		cfg.OAuth.Google.ClientSecret,
		cfg.OAuth.Google.RedirectURL,
	)
	stateManager := oauth.NewStateManager(store)

	log.Println("🔑 Initializing JWT manager...")
	jwtManager := jwt.NewManager(
		cfg.JWT.AccessSecret,
		cfg.JWT.RefreshSecret,
		cfg.JWT.AccessExpiry,
		cfg.JWT.RefreshExpiry,
	)

	// Services
	log.Println("✨ Initializing services...")
	authService := auth.NewService(userRepo, sessionRepo, googleProvider, stateManager, jwtManager, store, cfg.Server.AdminEmails)
	voiceService := voice.NewService(voiceRepo, userRepo, minioClient, logger)
	processor := aiuse.NewProcessor(jobRepo, transcriptRepo, meetingRepo, unifiedService, voiceService, logger)

	// LiveKit
	log.Println("🎥 Initializing LiveKit client...")
	livekitClient := livekit.NewClient(
		cfg.LiveKit.URL,
		cfg.LiveKit.APIKey,
		cfg.LiveKit.APISecret,
		cfg.LiveKit.UseMock,
	)
	if cfg.LiveKit.UseMock {
		log.Println("⚠️  LiveKit running in MOCK mode (no real server needed)")
	} else {
		log.Printf("✅ LiveKit connected to: %s", cfg.LiveKit.URL)
	}
	meetingService := meeting.NewService(meetingRepo, transcriptRepo, livekitClient, processor, cfg, logger)

	// Handlers
	log.Println("🛣️  Setting up routes...")
	authHandler := handler.NewAuth(authService, userRepo, logger)
	meetingHandler := handler.NewMeeting(meetingService, logger)
	aiHandler := handler.NewAI(unifiedService, processor, jobRepo, logger)
	costHandler := handler.NewCost(costManager, costRepo, logger)
	voiceHandler := handler.NewVoice(voiceService, logger)
	webhookHandler := handler.NewWebhook(meetingService, &cfg.LiveKit, logger)

	authMW := httpmw.EchoAuth(authService)
	limiter := httpmw.NewLimiter(redisClient, &cfg.RateLimit)
	rateLimitMW := httpmw.RateLimit(limiter, logger)

	router := handler.NewRouter(cfg, authHandler, meetingHandler, aiHandler, costHandler, voiceHandler, webhookHandler, authMW, rateLimitMW)
	router.Setup(e)

	// Background workers
	workerCtx, stopWorkers := context.WithCancel(context.Background())
	defer stopWorkers()
	if err := processor.StartWorkerPool(workerCtx, 2); err != nil {
		log.Fatalf("Failed to start worker pool: %v", err)
	}

	// Start server
	go func() {
		addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
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

	stopWorkers()
	if err := processor.StopWorkerPool(); err != nil {
		log.Printf("⚠️  Worker pool shutdown: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		log.Fatalf("❌ Server forced to shutdown: %v", err)
	}

	log.Println("✅ Server stopped gracefully")
}
