package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/satriahrh/voicebridge/domain"
	"github.com/satriahrh/voicebridge/domain/entities"
	"github.com/satriahrh/voicebridge/domain/repositories"
)

const (
	defaultVoice    = "lucy"
	deliveryFormat  = "mp3"
	deliveryMIME    = "audio/mpeg"
	synthesisPrefix = "reply"
)

var defaultVoices = map[entities.LanguageCode]string{
	entities.LanguageEnglish: "lucy",
	entities.LanguageYoruba:  "sade",
	entities.LanguageIgbo:    "ngozi",
	entities.LanguageHausa:   "amina",
}

// SynthesisService renders reply text as a hosted audio file
type SynthesisService struct {
	synthesizer repositories.SpeechSynthesizer
	encoder     repositories.AudioEncoder
	storage     repositories.ObjectStorage
	timeout     time.Duration
	logger      *zap.Logger
}

// NewSynthesisService creates a new synthesis service
func NewSynthesisService(
	synthesizer repositories.SpeechSynthesizer,
	encoder repositories.AudioEncoder,
	storage repositories.ObjectStorage,
	timeout time.Duration,
	logger *zap.Logger,
) *SynthesisService {
	return &SynthesisService{
		synthesizer: synthesizer,
		encoder:     encoder,
		storage:     storage,
		timeout:     timeout,
		logger:      logger,
	}
}

// VoiceFor returns the synthesis voice for a language code
func VoiceFor(lang entities.LanguageCode) string {
	if voice, ok := defaultVoices[lang]; ok {
		return voice
	}
	return defaultVoice
}

// Synthesize runs voice selection, synthesis, mp3 encoding and upload. Any
// failure is returned wrapped in domain.ErrSynthesisFailed.
func (s *SynthesisService) Synthesize(ctx context.Context, text string, lang entities.LanguageCode, prefix string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("%w: empty text", domain.ErrSynthesisFailed)
	}
	if prefix == "" {
		prefix = synthesisPrefix
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	wav, err := s.synthesizer.Synthesize(ctx, text, lang.String(), VoiceFor(lang))
	if err != nil {
		return "", fmt.Errorf("%w: synthesis: %w", domain.ErrSynthesisFailed, err)
	}

	compressed, err := s.encoder.Encode(ctx, wav, deliveryFormat)
	if err != nil {
		return "", fmt.Errorf("%w: encoding: %w", domain.ErrSynthesisFailed, err)
	}

	filename := fmt.Sprintf("%s_%s.%s", prefix, strings.ReplaceAll(uuid.New().String(), "-", ""), deliveryFormat)
	url, err := s.storage.Upload(ctx, filename, compressed, deliveryMIME)
	if err != nil {
		return "", fmt.Errorf("%w: upload: %w", domain.ErrSynthesisFailed, err)
	}
	return url, nil
}

// SynthesizeURL is Synthesize for channel adapters: failures are logged and
// reported as an empty URL so the caller can deliver text only.
func (s *SynthesisService) SynthesizeURL(ctx context.Context, text string, lang entities.LanguageCode, prefix string) string {
	url, err := s.Synthesize(ctx, text, lang, prefix)
	if err != nil {
		s.logger.Warn("Speech synthesis failed, continuing without audio",
			zap.String("language", lang.String()),
			zap.String("prefix", prefix),
			zap.Error(err))
		return ""
	}
	return url
}
