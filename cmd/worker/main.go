package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/IloveChanel/visual-voicemail-app-sub001/internal/classify"
	"github.com/IloveChanel/visual-voicemail-app-sub001/internal/config"
	"github.com/IloveChanel/visual-voicemail-app-sub001/internal/langid"
	"github.com/IloveChanel/visual-voicemail-app-sub001/internal/pipeline"
	"github.com/IloveChanel/visual-voicemail-app-sub001/internal/queue"
	"github.com/IloveChanel/visual-voicemail-app-sub001/internal/spam"
	"github.com/IloveChanel/visual-voicemail-app-sub001/internal/storage"
	"github.com/IloveChanel/visual-voicemail-app-sub001/internal/stt"
	"github.com/IloveChanel/visual-voicemail-app-sub001/internal/summary"
	"github.com/IloveChanel/visual-voicemail-app-sub001/internal/transcribe"
	"github.com/IloveChanel/visual-voicemail-app-sub001/internal/translate"
	"github.com/IloveChanel/visual-voicemail-app-sub001/internal/worker"
	"github.com/IloveChanel/visual-voicemail-app-sub001/pkg/cache"
	"github.com/IloveChanel/visual-voicemail-app-sub001/pkg/logger"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	// Load .env file
	_ = godotenv.Load()

	// Initialize logger
	debug := os.Getenv("DEBUG") == "true"
	if err := logger.Init(debug); err != nil {
		panic("Failed to init logger: " + err.Error())
	}
	defer logger.Sync()

	logger.Info("Starting voicemail processing worker")

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
		return
	}

	// Connect to database
	db, err := storage.NewPostgresStorage(cfg.Postgres.DSN)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
		return
	}
	defer db.Close()

	// Initialize audio store
	audioStore, err := storage.NewAudioStore(
		cfg.S3.Endpoint,
		cfg.S3.AccessKey,
		cfg.S3.SecretKey,
		cfg.S3.Bucket,
		cfg.S3.Region,
	)
	if err != nil {
		logger.Fatal("Failed to initialize audio store", zap.Error(err))
		return
	}

	// Initialize Redis cache
	redisCache, err := cache.NewRedisCache(
		cfg.Redis.Addr,
		cfg.Redis.Password,
		cfg.Redis.DB,
		cfg.Translation.MemoryTTL,
	)
	if err != nil {
		logger.Fatal("Failed to connect to Redis", zap.Error(err))
		return
	}
	defer redisCache.Close()

	logger.Info("Redis cache connection established")

	// Speech-to-text client serves both language detection and transcription
	sttClient := stt.NewClient(cfg.STT.BaseURL, cfg.STT.APIKey, cfg.STT.CallTimeout)

	identifier := langid.NewIdentifier(sttClient, langid.DefaultConfig())
	transcriber := transcribe.NewTranscriber(sttClient, cfg.Pipeline.MinConfidence)

	spamConfig := spam.DefaultConfig()
	if cfg.Spam.Threshold > 0 {
		spamConfig.Threshold = cfg.Spam.Threshold
	}
	scorer := spam.NewScorer(spam.NewStaticRegistry(cfg.Spam.KnownNumbers), spamConfig)

	classifier := classify.NewClassifier(classify.DefaultConfig())
	summarizer := summary.NewSummarizer()

	// Translation orchestrator with memory and failover chain
	var memory *translate.Memory
	if cfg.Translation.MemoryEnabled {
		memory = translate.NewMemory(redisCache, cfg.Translation.MemoryTTL)
	}

	orchestratorConfig := translate.DefaultConfig()
	orchestratorConfig.CallTimeout = cfg.Translation.CallTimeout
	orchestratorConfig.MaxBatchSize = cfg.Translation.MaxBatchSize

	orchestrator := translate.NewOrchestrator(orchestratorConfig, memory, redisCache)
	for _, pc := range cfg.Translation.Providers {
		orchestrator.Register(pc.ProviderConfig, translate.NewRESTProvider(
			pc.Name,
			pc.BaseURL,
			pc.APIKey,
			cfg.Translation.CallTimeout,
		))
	}

	logger.Info("Translation orchestrator initialized",
		zap.Int("providers", len(cfg.Translation.Providers)))

	pipelineConfig := pipeline.DefaultConfig()
	pipelineConfig.SummaryThreshold = cfg.Pipeline.SummaryThreshold

	voicemailPipeline := pipeline.New(
		audioStore,
		identifier,
		transcriber,
		scorer,
		classifier,
		summarizer,
		orchestrator,
		pipelineConfig,
	)

	// Connect to RabbitMQ
	rabbitMQ, err := queue.NewRabbitMQ(cfg.RabbitMQ.URL)
	if err != nil {
		logger.Fatal("Failed to connect to RabbitMQ", zap.Error(err))
		return
	}
	defer rabbitMQ.Close()

	logger.Info("RabbitMQ connection established")

	processor := worker.NewProcessor(db, voicemailPipeline, redisCache, cfg.Pipeline.ProcessTimeout)

	// Graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		logger.Info("Starting to consume voicemail tasks")
		if err := rabbitMQ.Consume(queue.QueueNameVoicemailProcessing, cfg.Worker.Concurrency, processor.ProcessTask); err != nil {
			logger.Error("Failed to consume messages", zap.Error(err))
			cancel()
		}
	}()

	select {
	case sig := <-sigChan:
		logger.Info("Received shutdown signal", zap.String("signal", sig.String()))
	case <-ctx.Done():
		logger.Info("Context cancelled")
	}

	logger.Info("Worker service shutdown complete")
}
