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

// ChatService answers in a caller-chosen language without language detection
type ChatService struct {
	generator repositories.Generator
	timeout   time.Duration
	logger    *zap.Logger
}

// NewChatService creates a new chat service
func NewChatService(generator repositories.Generator, timeout time.Duration, logger *zap.Logger) *ChatService {
	return &ChatService{generator: generator, timeout: timeout, logger: logger}
}

// Ask sends a single prompt and instructs the backend to reply in lang
func (s *ChatService) Ask(ctx context.Context, prompt string, lang entities.LanguageCode) (*entities.ReplyResult, error) {
	if strings.TrimSpace(prompt) == "" {
		return nil, fmt.Errorf("prompt cannot be empty")
	}
	if !lang.IsSupported() {
		lang = entities.DefaultLanguage
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	instruction := personaInstruction + "Be short but descriptive, helpful, and human. " +
		"You MUST reply in this language: " + lang.Name() + "."

	raw, err := s.generator.Generate(ctx, []repositories.Part{repositories.TextPart(prompt)}, instruction)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrEngineUnavailable, err)
	}

	text := strings.TrimSpace(raw)
	if text == "" {
		return nil, domain.ErrEmptyReply
	}

	s.logger.Info("Chat reply generated",
		zap.String("language", lang.String()),
		zap.Int("replyLength", len(text)))

	return &entities.ReplyResult{Text: text, LanguageCode: lang}, nil
}
