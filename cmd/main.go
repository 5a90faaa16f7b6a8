package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"github.com/satriahrh/voicebridge/internal/api"
	"github.com/satriahrh/voicebridge/internal/audio"
	"github.com/satriahrh/voicebridge/internal/auth"
	"github.com/satriahrh/voicebridge/internal/config"
	"github.com/satriahrh/voicebridge/internal/metrics"
	"github.com/satriahrh/voicebridge/usecase"
)

func main() {
	// Initialize logger
	logger, _ := zap.NewProduction()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", zap.Error(err))
	}
	if cfg.IsDevelopment() {
		logger, _ = zap.NewDevelopment()
	}
	defer logger.Sync()

	ctx := context.Background()

	// Initialize adapters
	be, err := newBackends(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize backends", zap.Error(err))
	}
	defer be.Close()

	st, err := newStore(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize store", zap.Error(err))
	}
	defer st.Close()

	audioConfig := audio.TranscoderConfig{
		FFmpegPath: cfg.Audio.FFmpegPath,
		Timeout:    cfg.Audio.TranscodeTimeout,
		TempDir:    cfg.Audio.TempDir,
	}
	transcoder := audio.NewTranscoder(audioConfig, nil, logger)
	remuxConfig := audioConfig
	remuxConfig.Name = "whatsapp"
	remuxConfig.Strategies = audio.WhatsAppRemuxStrategies()
	whatsappTranscoder := audio.Chain{audio.NewTranscoder(remuxConfig, nil, logger), transcoder}
	encoder := audio.NewEncoder(audioConfig, nil, logger)

	// Initialize usecase services
	timeout := cfg.Gemini.BackendTimeout
	speechService := usecase.NewSpeechService(be.stt, be.translator, timeout, logger)
	conversationService := usecase.NewConversationService(be.generator, timeout, logger)
	chatService := usecase.NewChatService(be.generator, timeout, logger)
	synthesisService := usecase.NewSynthesisService(be.synthesizer, encoder, be.storage, timeout, logger)

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	handler := api.NewHandler(api.Dependencies{
		Speech:             speechService,
		Conversation:       conversationService,
		Chat:               chatService,
		Synthesis:          synthesisService,
		Transcoder:         transcoder,
		WhatsAppTranscoder: whatsappTranscoder,
		Storage:            be.storage,
		Messenger:          be.messenger,
		Fetcher:            be.fetcher,
		Interactions:       st.interactions,
		Lessons:            st.lessons,
		Profiles:           st.profiles,
		Metrics:            metrics.NewMetrics(registry),
	}, api.Config{
		IVRRecordAction:          cfg.Channels.IVRRecordAction,
		IVRMaxLength:             cfg.Channels.IVRMaxLength,
		WhatsAppVoiceReplyToText: cfg.Channels.WhatsAppVoiceReplyToText,
		HistoryLimit:             cfg.Store.HistoryPageSize,
		TwilioAuthToken:          cfg.Twilio.AuthToken,
		WebhookBaseURL:           cfg.Twilio.WebhookBaseURL,
	}, logger)

	// Create Echo instance
	e := echo.New()
	e.HideBanner = true
	e.Validator = api.NewValidator()

	// Middleware
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	// Initialize API routes
	api.InitRoutes(e, handler, auth.New(cfg.JWTSecret, 0), logger)

	port := strconv.Itoa(cfg.Port)

	// Graceful shutdown
	go func() {
		if err := e.Start(":" + port); err != nil && err != http.ErrServerClosed {
			logger.Fatal("shutting down the server", zap.Error(err))
		}
	}()

	logger.Info("Server started",
		zap.String("port", port),
		zap.String("store", cfg.Store.Driver),
		zap.Bool("mockBackends", cfg.MockBackends))

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	logger.Info("Server is shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}
