package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/jhimil-1/Interview/config"
	"github.com/jhimil-1/Interview/internal/api/handlers"
	"github.com/jhimil-1/Interview/internal/api/middleware"
	"github.com/jhimil-1/Interview/internal/api/routes"
	"github.com/jhimil-1/Interview/internal/cache"
	"github.com/jhimil-1/Interview/internal/interview"
	"github.com/jhimil-1/Interview/internal/logger"
	"github.com/jhimil-1/Interview/internal/models"
	"github.com/jhimil-1/Interview/internal/providers/llm"
	"github.com/jhimil-1/Interview/internal/providers/stt"
	"github.com/jhimil-1/Interview/internal/providers/tts"
	mongorepo "github.com/jhimil-1/Interview/internal/repositories/mongo"
	pgrepo "github.com/jhimil-1/Interview/internal/repositories/postgres"
	"github.com/jhimil-1/Interview/internal/services"
	"github.com/jhimil-1/Interview/internal/storage"
	"github.com/jhimil-1/Interview/internal/workers"
)

func main() {
	_ = godotenv.Load()

	lg := logger.New()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	ctx := context.Background()

	// Init PostgreSQL (users + response logs)
	if err := config.InitPostgres(); err != nil {
		log.Fatalf("PostgreSQL init error: %v", err)
	}
	fmt.Println("PostgreSQL connected")
	if err := config.PostgresDB.AutoMigrate(&models.User{}, &models.ResponseLog{}); err != nil {
		log.Fatalf("PostgreSQL migrate error: %v", err)
	}

	// Init MongoDB (session archive)
	if err := config.InitMongo(); err != nil {
		log.Fatalf("MongoDB init error: %v", err)
	}
	fmt.Println("MongoDB connected")
	if err := config.EnsureMongoIndexes(); err != nil {
		log.Fatalf("MongoDB index error: %v", err)
	}

	// Init Redis (TTS cache, answer stream, live events)
	if err := config.InitRedis(); err != nil {
		log.Fatalf("Redis init error: %v", err)
	}
	fmt.Println("Redis connected")

	// Providers
	gemini, err := llm.NewVertexGemini(ctx, cfg.GCPProject, cfg.GCPLocation, cfg.GeminiModel, cfg.EmbeddingModel)
	if err != nil {
		log.Fatalf("Vertex AI init error: %v", err)
	}
	defer gemini.Close()

	var sttProvider stt.Provider
	if cfg.STTProvider == "deepgram" {
		sttProvider = stt.NewDeepgram(cfg.DeepgramAPIKey)
	} else {
		gs, err := stt.NewGoogleSpeech(ctx)
		if err != nil {
			log.Fatalf("Speech-to-Text init error: %v", err)
		}
		sttProvider = gs
	}
	defer sttProvider.Close()

	ttsProvider := tts.NewElevenLabs(cfg.ElevenLabsAPIKey, cfg.ElevenLabsVoiceID)
	defer ttsProvider.Close()

	var uploader storage.Uploader
	staticAudioDir := ""
	if cfg.GCSBucket != "" {
		up, err := storage.NewGCSUploader(ctx, cfg.GCSBucket)
		if err != nil {
			log.Fatalf("GCS init error: %v", err)
		}
		uploader = up
	} else {
		up, err := storage.NewLocalUploader(cfg.LocalAudioDir)
		if err != nil {
			log.Fatalf("local audio dir error: %v", err)
		}
		uploader = up
		staticAudioDir = up.Dir()
	}

	// Repositories
	userRepo := pgrepo.NewUserRepo(config.PostgresDB)
	responseRepo := pgrepo.NewResponseLogRepo(config.PostgresDB)
	archiveRepo := mongorepo.NewSessionArchiveRepo(config.MongoDatabase())

	// Services
	archiveSvc := services.NewArchiveService(archiveRepo, responseRepo, gemini, lg)
	questionSvc := services.NewQuestionService(gemini)
	analysisSvc := services.NewAnalysisService(gemini)
	sessionSvc := services.NewSessionService(interview.NewRegistry(), questionSvc, analysisSvc, archiveSvc, lg)
	speechSvc := services.NewSpeechService(ttsProvider, uploader, cache.NewRedisCache(config.RedisClient))
	transcribeSvc := services.NewTranscriptionService(sttProvider, uploader, cfg.STTLanguage, lg)
	reportSvc := services.NewReportService(sessionSvc, gemini, archiveSvc, lg)
	authSvc := services.NewAuthService(userRepo, cfg.JWTSecret)

	// Answer worker pool (audio chunks arriving over the websocket)
	pool := &workers.AnswerWorkerPool{
		Redis:      config.RedisClient,
		Sessions:   sessionSvc,
		Transcribe: transcribeSvc,
		NumWorkers: cfg.AnswerWorkers,
		Logger:     lg,
	}
	if err := pool.Start(ctx); err != nil {
		log.Fatalf("worker pool error: %v", err)
	}

	r := gin.Default()
	r.Use(middleware.RequestLogger(lg))
	routes.RegisterRoutes(r, routes.Deps{
		JWTSecret:      cfg.JWTSecret,
		Auth:           handlers.NewAuthHandler(authSvc),
		Interview:      handlers.NewInterviewHandler(sessionSvc, speechSvc, transcribeSvc, reportSvc),
		Archive:        handlers.NewArchiveHandler(archiveSvc),
		WS:             handlers.NewWSHandler(sessionSvc, config.RedisClient),
		StaticAudioDir: staticAudioDir,
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.Port
	}
	if err := r.Run(":" + port); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
