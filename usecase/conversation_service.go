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

// languageMarker precedes the language code the backend appends to every reply
const languageMarker = "Language Code:"

const personaInstruction = "You're a friendly multilingual Health, Education, Finance and Entertainment assistant named VoiceBridge " +
	"who explains things clearly, simply, and respectfully. " +
	"Always answer like you're speaking directly to the person, not writing a formal essay. " +
	"Don't format text in any way (no double asterisks around words, no em dashes), just return plain text. "

const detectInstruction = "Please analyze the provided input. First, identify the language used. " +
	"Then, respond naturally and conversationally to the content in the exact same language you detected. " +
	"Finally, append a language code at the very end of your response, formatted as '" + languageMarker + " [code]'. " +
	"Use these specific codes: 'yo' for Yoruba, 'ig' for Igbo, 'ha' for Hausa, 'en' for English. " +
	"If the language is not Yoruba, Igbo, Hausa, or English, default the language code to 'en'. " +
	"Your conversational response should precede the language code. " + personaInstruction

// ConverseInput carries exactly one of Text or Audio
type ConverseInput struct {
	Text  string
	Audio *entities.AudioClip
}

// ConversationService produces a reply and detects its language in a single backend call
type ConversationService struct {
	generator repositories.Generator
	timeout   time.Duration
	logger    *zap.Logger
}

// NewConversationService creates a new conversation service. A non-positive timeout disables the per-call deadline.
func NewConversationService(generator repositories.Generator, timeout time.Duration, logger *zap.Logger) *ConversationService {
	return &ConversationService{
		generator: generator,
		timeout:   timeout,
		logger:    logger,
	}
}

// Converse returns the reply text and its language code. Backend failures
// surface as domain.ErrEngineUnavailable and replies with no text as domain.ErrEmptyReply.
func (s *ConversationService) Converse(ctx context.Context, in ConverseInput) (*entities.ReplyResult, error) {
	var parts []repositories.Part
	switch {
	case strings.TrimSpace(in.Text) != "":
		parts = append(parts, repositories.TextPart(in.Text))
	case in.Audio != nil && len(in.Audio.Data) > 0:
		parts = append(parts, repositories.InlinePart(in.Audio.Data, in.Audio.MIMEType))
	default:
		return nil, fmt.Errorf("no text or audio to converse with")
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	raw, err := s.generator.Generate(ctx, parts, detectInstruction)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrEngineUnavailable, err)
	}

	text, code, marked := parseReply(raw)
	if !marked {
		s.logger.Warn("Reply did not contain a language marker, defaulting to English",
			zap.Int("replyLength", len(raw)))
	}
	if text == "" {
		return nil, domain.ErrEmptyReply
	}

	s.logger.Info("Conversation reply generated",
		zap.Bool("audioInput", parts[0].IsInline()),
		zap.String("language", code.String()),
		zap.Int("replyLength", len(text)))

	return &entities.ReplyResult{Text: text, LanguageCode: code}, nil
}

// parseReply splits raw backend output on the last language marker
func parseReply(raw string) (string, entities.LanguageCode, bool) {
	raw = strings.TrimSpace(raw)
	idx := strings.LastIndex(raw, languageMarker)
	if idx < 0 {
		return raw, entities.DefaultLanguage, false
	}

	text := strings.TrimSpace(raw[:idx])
	code := entities.ParseLanguageCode(raw[idx+len(languageMarker):])
	return text, code, true
}
