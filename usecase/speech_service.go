package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/satriahrh/voicebridge/domain"
	"github.com/satriahrh/voicebridge/domain/entities"
	"github.com/satriahrh/voicebridge/domain/repositories"
)

// SpeechService turns canonical audio into an English transcript
type SpeechService struct {
	speechToText repositories.SpeechToText
	translator   repositories.Translator
	timeout      time.Duration
	logger       *zap.Logger
}

// NewSpeechService creates a new speech service
func NewSpeechService(stt repositories.SpeechToText, translator repositories.Translator, timeout time.Duration, logger *zap.Logger) *SpeechService {
	return &SpeechService{
		speechToText: stt,
		translator:   translator,
		timeout:      timeout,
		logger:       logger,
	}
}

// Transcribe recognizes speech in the hinted language and translates non-English
// transcripts to English. It makes a single attempt; every backend failure is
// reported as domain.ErrSTTUnavailable.
func (s *SpeechService) Transcribe(ctx context.Context, audio *entities.CanonicalAudio, hint entities.LanguageCode) (*entities.Transcript, error) {
	if audio == nil || len(audio.Data) == 0 {
		return nil, fmt.Errorf("%w: no audio", domain.ErrSTTUnavailable)
	}
	if !hint.IsSupported() {
		hint = entities.DefaultLanguage
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	text, err := s.speechToText.TranscribeAudio(ctx, audio.Data, repositories.AudioConfig{
		SampleRate: audio.SampleRate,
		Encoding:   "LINEAR16",
		Language:   hint.String(),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrSTTUnavailable, err)
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("%w: no speech detected", domain.ErrSTTUnavailable)
	}

	if hint != entities.LanguageEnglish {
		translated, err := s.translator.Translate(ctx, text, hint.String(), entities.LanguageEnglish.String())
		if err != nil {
			return nil, fmt.Errorf("%w: translation failed: %w", domain.ErrSTTUnavailable, err)
		}
		text = strings.TrimSpace(translated)
	}

	s.logger.Info("Transcription completed",
		zap.String("language", hint.String()),
		zap.Int("transcriptLength", len(text)))

	return &entities.Transcript{Text: text, SourceLanguage: hint}, nil
}
