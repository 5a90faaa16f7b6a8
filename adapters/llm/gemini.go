package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/satriahrh/voicebridge/domain/repositories"
)

const (
	defaultModel       = "gemini-2.0-flash"
	defaultTemperature = 0.7
	defaultMaxTokens   = 1024
	defaultTimeout     = 30 * time.Second
	defaultMaxAttempts = 1
)

// GeminiConfig holds configuration for the Gemini generation backend.
// APIKey is required; zero values of the other fields select defaults.
type GeminiConfig struct {
	APIKey          string
	Model           string
	Temperature     float32
	MaxOutputTokens int
	Timeout         time.Duration
	MaxAttempts     int
}

type generateContentFunc func(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)

// GeminiLLM implements the Generator interface using Google's Gemini API
type GeminiLLM struct {
	generate        generateContentFunc
	logger          *zap.Logger
	model           string
	temperature     float32
	maxOutputTokens int
	timeout         time.Duration
	maxAttempts     int
}

var _ repositories.Generator = (*GeminiLLM)(nil)

// ValidateGeminiConfig validates the GeminiConfig
func ValidateGeminiConfig(config GeminiConfig) error {
	if config.APIKey == "" {
		return fmt.Errorf("GEMINI_API_KEY is required")
	}
	if config.Temperature < 0 || config.Temperature > 2 {
		return fmt.Errorf("temperature must be between 0 and 2, got %f", config.Temperature)
	}
	if config.MaxOutputTokens < 0 {
		return fmt.Errorf("maxOutputTokens must be positive, got %d", config.MaxOutputTokens)
	}
	if config.Timeout < 0 {
		return fmt.Errorf("timeout must be positive, got %s", config.Timeout)
	}
	return nil
}

// NewGeminiLLM creates a new Gemini LLM instance
func NewGeminiLLM(config GeminiConfig, logger *zap.Logger) (*GeminiLLM, error) {
	if err := ValidateGeminiConfig(config); err != nil {
		return nil, err
	}

	client, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey:  config.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return newGeminiLLM(client.Models.GenerateContent, config, logger), nil
}

func newGeminiLLM(generate generateContentFunc, config GeminiConfig, logger *zap.Logger) *GeminiLLM {
	g := &GeminiLLM{
		generate:        generate,
		logger:          logger,
		model:           config.Model,
		temperature:     config.Temperature,
		maxOutputTokens: config.MaxOutputTokens,
		timeout:         config.Timeout,
		maxAttempts:     config.MaxAttempts,
	}

	if g.model == "" {
		g.model = defaultModel
		logger.Info("Using default model", zap.String("model", g.model))
	}
	if g.temperature == 0 {
		g.temperature = defaultTemperature
	}
	if g.maxOutputTokens == 0 {
		g.maxOutputTokens = defaultMaxTokens
	}
	if g.timeout == 0 {
		g.timeout = defaultTimeout
	}
	if g.maxAttempts <= 0 {
		g.maxAttempts = defaultMaxAttempts
	}
	return g
}

// Generate implements repositories.Generator
func (g *GeminiLLM) Generate(ctx context.Context, parts []repositories.Part, systemInstruction string) (string, error) {
	if len(parts) == 0 {
		return "", fmt.Errorf("no prompt parts")
	}

	contents := []*genai.Content{genai.NewContentFromParts(convertParts(parts), genai.RoleUser)}
	config := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(g.temperature),
		MaxOutputTokens: int32(g.maxOutputTokens),
	}
	if systemInstruction != "" {
		config.SystemInstruction = genai.NewContentFromText(systemInstruction, genai.RoleUser)
	}

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	var response *genai.GenerateContentResponse
	var err error
	for attempt := 0; attempt < g.maxAttempts; attempt++ {
		response, err = g.generate(ctx, g.model, contents, config)
		if err == nil {
			break
		}

		g.logger.Warn("Failed to generate content",
			zap.Int("attempt", attempt+1),
			zap.Int("maxAttempts", g.maxAttempts),
			zap.Error(err))

		if attempt < g.maxAttempts-1 {
			select {
			case <-ctx.Done():
				return "", fmt.Errorf("failed to generate content: %w", ctx.Err())
			case <-time.After(time.Duration(attempt+1) * time.Second):
			}
		}
	}
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}

	text := responseText(response)
	g.logger.Info("Gemini response received",
		zap.String("model", g.model),
		zap.Int("parts", len(parts)),
		zap.Int("responseLength", len(text)))
	return text, nil
}

func convertParts(parts []repositories.Part) []*genai.Part {
	converted := make([]*genai.Part, 0, len(parts))
	for _, p := range parts {
		if p.IsInline() {
			converted = append(converted, genai.NewPartFromBytes(p.Data, p.MIMEType))
			continue
		}
		converted = append(converted, genai.NewPartFromText(p.Text))
	}
	return converted
}

// responseText concatenates the text parts of the first candidate
func responseText(response *genai.GenerateContentResponse) string {
	if response == nil || len(response.Candidates) == 0 || response.Candidates[0].Content == nil {
		return ""
	}

	var sb strings.Builder
	for _, part := range response.Candidates[0].Content.Parts {
		if part != nil && part.Text != "" {
			sb.WriteString(part.Text)
		}
	}
	return sb.String()
}
