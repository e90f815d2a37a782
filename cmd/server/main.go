package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"github.com/storyvouch/api/internal/client"
	"github.com/storyvouch/api/internal/config"
	"github.com/storyvouch/api/internal/handler"
	"github.com/storyvouch/api/internal/middleware"
	"github.com/storyvouch/api/internal/service"
	"github.com/storyvouch/api/internal/store"
	ws "github.com/storyvouch/api/internal/websocket"
	"github.com/storyvouch/api/internal/worker"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize Redis client
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	// Test Redis connection
	ctx := context.Background()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Printf("Warning: Redis not available: %v", err)
	}

	// Initialize Asynq client
	asynqClient := asynq.NewClient(asynq.RedisClientOpt{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer asynqClient.Close()

	// Initialize validator
	validate := validator.New()

	// Initialize WebSocket hub
	hub := ws.NewHub()
	go hub.Run()

	// Initialize external clients
	muxClient := client.NewMuxClient(&cfg.Mux)
	deepgramClient := client.NewDeepgramClient(&cfg.Deepgram)
	groqClient := client.NewGroqClient(&cfg.Groq)
	shotstackClient := client.NewShotstackClient(&cfg.Shotstack)

	// Initialize store (optional Postgres - falls back to in-memory)
	var st store.Store
	if cfg.Database.URL != "" {
		pgStore, err := store.NewPostgresStore(ctx, cfg.Database.URL)
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		defer pgStore.Close()
		st = pgStore
	} else {
		log.Println("Info: DATABASE_URL not set, using in-memory store")
		st = store.NewMemoryStore()
	}

	// Initialize services
	scheduler := service.NewAsynqScheduler(asynqClient)
	uploadService := service.NewUploadService(muxClient, st, scheduler)
	webhookService := service.NewWebhookService(st, scheduler)
	transcriptionService := service.NewTranscriptionService(muxClient, deepgramClient, st, &cfg.Pipeline)
	evaluationService := service.NewEvaluationService(groqClient)
	productionService := service.NewProductionService(shotstackClient, muxClient, st, scheduler)
	sessionService := service.NewSessionService(st)

	// Initialize handlers
	uploadHandler := handler.NewUploadHandler(uploadService, validate)
	webhookHandler := handler.NewWebhookHandler(webhookService, cfg.Mux.WebhookSecret)
	sessionHandler := handler.NewSessionHandler(sessionService, validate)
	evaluationHandler := handler.NewEvaluationHandler(evaluationService, validate)
	productionHandler := handler.NewProductionHandler(productionService, validate)

	// Initialize middleware
	authMiddleware := middleware.NewAuthMiddleware(cfg.JWT.Secret)
	rateLimiter := middleware.NewRateLimiter(redisClient)

	// Initialize Fiber app
	app := fiber.New(fiber.Config{
		ErrorHandler: customErrorHandler,
		BodyLimit:    10 * 1024 * 1024, // 10MB, uploads go direct to the host
	})

	// Global middleware
	app.Use(recover.New())
	isDebug := strings.EqualFold(cfg.Server.LogLevel, "debug")
	logFormat := "[${time}] ${status} - ${latency} ${method} ${path}\n"
	if isDebug {
		logFormat = "[${time}] ${status} - ${latency} ${method} ${path} ${queryParams} ${body} ${reqHeaders}\n"
		log.Println("Debug logging enabled")
	}
	app.Use(logger.New(logger.Config{
		Format: logFormat,
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,Authorization",
	}))

	// Base URL - timestamp
	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"timestamp": time.Now().Unix(),
		})
	})

	// Health check
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "ok",
			"services": fiber.Map{
				"mux":       muxClient.IsConfigured(),
				"deepgram":  deepgramClient.IsConfigured(),
				"groq":      groqClient.IsConfigured(),
				"shotstack": shotstackClient.IsConfigured(),
				"database":  cfg.Database.URL != "",
			},
		})
	})

	// Webhook routes (unauthenticated, signature-verified)
	app.Post("/webhooks/mux", webhookHandler.Receive)

	// API routes
	api := app.Group("/api", authMiddleware.Authenticate())

	// Upload routes
	uploads := api.Group("/uploads", rateLimiter.UploadLimit(cfg.RateLimit.UploadPerHour))
	uploads.Post("/", uploadHandler.Create)
	uploads.Post("/poll", uploadHandler.Poll)

	// Session routes
	sessions := api.Group("/sessions/:id", middleware.RequireSession)
	sessions.Put("/progress", sessionHandler.UpdateProgress)
	sessions.Post("/recordings", sessionHandler.CreateRecording)
	sessions.Get("/recordings", sessionHandler.ListRecordings)

	// Evaluation routes
	api.Post("/evaluate", rateLimiter.EvaluateLimit(cfg.RateLimit.EvaluatePerMin), evaluationHandler.Evaluate)

	// Production routes
	produce := api.Group("/produce")
	produce.Post("/", rateLimiter.ProduceLimit(cfg.RateLimit.ProducePerHour), productionHandler.Produce)
	produce.Get("/status/:renderId", productionHandler.Status)
	produce.Post("/upload-result", productionHandler.UploadResult)

	// WebSocket routes
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})

	app.Get("/ws/recordings/:recordingId", websocket.New(func(c *websocket.Conn) {
		recordingID := c.Params("recordingId")
		hub.HandleConnection(c, recordingID)
	}))

	// Start Asynq worker server
	go startWorkerServer(cfg, transcriptionService, shotstackClient, muxClient, st, hub)

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		log.Println("Shutting down server...")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			log.Printf("Server shutdown error: %v", err)
		}
	}()

	// Start server
	addr := ":" + cfg.Server.Port
	log.Printf("Server starting on %s", addr)
	if err := app.Listen(addr); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}

func startWorkerServer(
	cfg *config.Config,
	transcriptionService *service.TranscriptionService,
	renderFarm client.RenderFarm,
	videoHost client.VideoHost,
	st store.Store,
	hub *ws.Hub,
) {
	asynqLogLevel := asynq.InfoLevel
	if strings.EqualFold(cfg.Server.LogLevel, "debug") {
		asynqLogLevel = asynq.DebugLevel
	} else if strings.EqualFold(cfg.Server.LogLevel, "warn") {
		asynqLogLevel = asynq.WarnLevel
	} else if strings.EqualFold(cfg.Server.LogLevel, "error") {
		asynqLogLevel = asynq.ErrorLevel
	}

	srv := asynq.NewServer(
		asynq.RedisClientOpt{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		},
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				"transcribe": 6,
				"produce":    4,
			},
			LogLevel: asynqLogLevel,
		},
	)

	transcriptionWorker := worker.NewTranscriptionWorker(transcriptionService, hub)
	productionWorker := worker.NewProductionWorker(renderFarm, videoHost, st, hub, &cfg.Pipeline)

	mux := asynq.NewServeMux()
	mux.HandleFunc(service.TaskTypeTranscribe, transcriptionWorker.ProcessTask)
	mux.HandleFunc(service.TaskTypePublishWatch, productionWorker.ProcessTask)

	if err := srv.Run(mux); err != nil {
		log.Printf("Asynq worker error: %v", err)
	}
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal Server Error"

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}

	return c.Status(code).JSON(fiber.Map{
		"error": fiber.Map{
			"code":    "SERVICE_ERROR",
			"message": message,
		},
	})
}
