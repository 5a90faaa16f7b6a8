package main

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/satriahrh/voicebridge/adapters"
	"github.com/satriahrh/voicebridge/adapters/gormstore"
	"github.com/satriahrh/voicebridge/adapters/llm"
	"github.com/satriahrh/voicebridge/adapters/messaging"
	"github.com/satriahrh/voicebridge/adapters/mock"
	"github.com/satriahrh/voicebridge/adapters/mongo"
	"github.com/satriahrh/voicebridge/adapters/speech"
	"github.com/satriahrh/voicebridge/adapters/storage"
	"github.com/satriahrh/voicebridge/adapters/stt"
	"github.com/satriahrh/voicebridge/adapters/tts"
	"github.com/satriahrh/voicebridge/domain/repositories"
	"github.com/satriahrh/voicebridge/internal/config"
)

// backends are the external services the pipeline talks to
type backends struct {
	generator   repositories.Generator
	stt         repositories.SpeechToText
	translator  repositories.Translator
	synthesizer repositories.SpeechSynthesizer
	storage     repositories.ObjectStorage
	messenger   repositories.Messenger
	fetcher     repositories.MediaFetcher

	closers []func() error
}

func newBackends(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*backends, error) {
	twilioConfig := messaging.TwilioConfig{
		AccountSID:     cfg.Twilio.AccountSID,
		AuthToken:      cfg.Twilio.AuthToken,
		WhatsAppNumber: cfg.Twilio.WhatsAppNumber,
	}
	be := &backends{fetcher: messaging.NewMediaFetcher(twilioConfig, cfg.Gemini.BackendTimeout, logger)}

	if cfg.MockBackends {
		logger.Warn("Using mock backends for generation, speech, storage and messaging")
		be.generator = &mock.Generator{}
		be.stt = &mock.SpeechToText{}
		be.translator = &mock.Translator{}
		be.synthesizer = &mock.Synthesizer{}
		be.storage = &mock.Storage{}
		be.messenger = &mock.Messenger{}
		return be, nil
	}

	be.generator = llm.NewUnconfiguredGenerator()
	if cfg.Gemini.APIKey != "" {
		gemini, err := llm.NewGeminiLLM(llm.GeminiConfig{
			APIKey:  cfg.Gemini.APIKey,
			Model:   cfg.Gemini.Model,
			Timeout: cfg.Gemini.BackendTimeout,
		}, logger)
		if err != nil {
			return nil, err
		}
		be.generator = gemini
	} else {
		logger.Warn("GEMINI_API_KEY not set, conversations will degrade to apologies")
	}

	spitch := speech.NewSpitchClient(speech.SpitchConfig{
		APIKey:     cfg.Speech.SpitchAPIKey,
		APIBaseURL: cfg.Speech.SpitchBaseURL,
		Timeout:    cfg.Gemini.BackendTimeout,
	}, logger)
	be.stt = spitch
	be.translator = spitch
	be.synthesizer = spitch

	if cfg.Speech.STTProvider == "google" {
		recognizer, err := stt.NewGoogleSpeechToText(ctx, stt.GoogleConfig{
			APIKey:          cfg.Speech.GoogleAPIKey,
			CredentialsJSON: cfg.Speech.GoogleCredentialsJSON,
		}, logger)
		if err != nil {
			logger.Warn("Google speech client unavailable, keeping the Spitch transcriber", zap.Error(err))
		} else {
			be.stt = recognizer
			be.closers = append(be.closers, recognizer.Close)
		}
	}

	if cfg.Speech.TTSProvider == "google" {
		synthesizer, err := tts.NewGoogleTTS(ctx, tts.GoogleTTSConfig{
			APIKey:          cfg.Speech.GoogleAPIKey,
			CredentialsJSON: cfg.Speech.GoogleCredentialsJSON,
		}, logger)
		if err != nil {
			logger.Warn("Google text-to-speech client unavailable, keeping the Spitch synthesizer", zap.Error(err))
		} else {
			be.synthesizer = synthesizer
			be.closers = append(be.closers, synthesizer.Close)
		}
	}

	be.storage = storage.NewCloudinary(storage.CloudinaryConfig{
		CloudName: cfg.Cloudinary.CloudName,
		APIKey:    cfg.Cloudinary.APIKey,
		APISecret: cfg.Cloudinary.APISecret,
		BaseURL:   cfg.Cloudinary.BaseURL,
	}, logger)

	be.messenger = messaging.NewTwilioMessenger(twilioConfig, logger)

	return be, nil
}

func (b *backends) Close() error {
	var errs []error
	for _, closeFn := range b.closers {
		errs = append(errs, closeFn())
	}
	return errors.Join(errs...)
}

// store bundles the repositories for the configured driver
type store struct {
	interactions repositories.InteractionLogRepository
	lessons      repositories.LessonRepository
	profiles     repositories.ProfileRepository

	close func() error
}

func newStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*store, error) {
	st := &store{close: func() error { return nil }}

	switch cfg.Store.Driver {
	case "mongo":
		client, err := mongo.NewClient(ctx, mongo.Config{URI: cfg.Store.MongoURI, Database: cfg.Store.MongoDatabase}, logger)
		if err != nil {
			return nil, err
		}
		if err := client.EnsureIndexes(ctx); err != nil {
			logger.Warn("Failed to create MongoDB indexes", zap.Error(err))
		}
		st.interactions = mongo.NewInteractionLogRepository(client.Database)
		st.lessons = mongo.NewLessonRepository(client.Database)
		st.profiles = mongo.NewProfileRepository(client.Database)
		st.close = func() error { return client.Close(context.Background()) }

	case "postgres", "sqlite":
		dsn := cfg.Store.DatabaseURL
		if cfg.Store.Driver == "sqlite" {
			dsn = cfg.Store.SQLitePath
		}
		db, err := gormstore.Open(cfg.Store.Driver, dsn, logger)
		if err != nil {
			return nil, err
		}
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("failed to get sql handle: %w", err)
		}
		st.interactions = gormstore.NewInteractionLogRepository(db)
		st.lessons = gormstore.NewLessonRepository(db)
		st.profiles = gormstore.NewProfileRepository(db)
		st.close = sqlDB.Close

	default:
		logger.Info("Using in-memory store")
		st.interactions = adapters.NewMemoryInteractionLogRepository()
		st.lessons = adapters.NewMemoryLessonRepository()
		st.profiles = adapters.NewMemoryProfileRepository()
	}

	if cfg.Store.SeedLessons {
		if _, err := adapters.SeedLessons(ctx, st.lessons, adapters.DefaultLessons(), logger); err != nil {
			logger.Warn("Failed to seed lessons", zap.Error(err))
		}
	}
	return st, nil
}

func (s *store) Close() error {
	return s.close()
}
