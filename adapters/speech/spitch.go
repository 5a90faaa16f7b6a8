// Package speech talks to the Spitch speech API, which covers transcription,
// translation and synthesis for English, Yoruba, Igbo and Hausa.
package speech

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/satriahrh/voicebridge/domain"
	"github.com/satriahrh/voicebridge/domain/repositories"
)

const (
	defaultAPIBaseURL = "https://api.spi-tch.com/v1"
	defaultTimeout    = 30 * time.Second
)

// SpitchConfig holds configuration for the Spitch client.
// An empty APIKey is accepted; every call then fails with domain.ErrNotConfigured.
type SpitchConfig struct {
	APIKey     string
	APIBaseURL string
	Timeout    time.Duration
}

// SpitchClient implements SpeechToText, Translator and SpeechSynthesizer
type SpitchClient struct {
	client *resty.Client
	apiKey string
	logger *zap.Logger
}

var (
	_ repositories.SpeechToText      = (*SpitchClient)(nil)
	_ repositories.Translator        = (*SpitchClient)(nil)
	_ repositories.SpeechSynthesizer = (*SpitchClient)(nil)
)

type textResponse struct {
	Text string `json:"text"`
}

type translateRequest struct {
	Text   string `json:"text"`
	Source string `json:"source"`
	Target string `json:"target"`
}

type speechRequest struct {
	Text     string `json:"text"`
	Language string `json:"language"`
	Voice    string `json:"voice"`
}

// NewSpitchClient creates a new Spitch client
func NewSpitchClient(config SpitchConfig, logger *zap.Logger) *SpitchClient {
	baseURL := config.APIBaseURL
	if baseURL == "" {
		baseURL = defaultAPIBaseURL
	}
	timeout := config.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	if config.APIKey == "" {
		logger.Warn("SPITCH_API_KEY not set, speech features are disabled")
	}

	client := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetTimeout(timeout).
		SetAuthToken(config.APIKey)

	return &SpitchClient{client: client, apiKey: config.APIKey, logger: logger}
}

// TranscribeAudio implements repositories.SpeechToText
func (s *SpitchClient) TranscribeAudio(ctx context.Context, audioData []byte, config repositories.AudioConfig) (string, error) {
	if s.apiKey == "" {
		return "", domain.ErrNotConfigured
	}

	var out textResponse
	resp, err := s.client.R().
		SetContext(ctx).
		SetFormData(map[string]string{"language": config.Language}).
		SetFileReader("content", "audio.wav", bytes.NewReader(audioData)).
		SetResult(&out).
		Post("/transcriptions")
	if err != nil {
		return "", fmt.Errorf("failed to call transcription API: %w", err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("transcription API returned %d: %s", resp.StatusCode(), truncate(resp.String(), 200))
	}

	s.logger.Info("Spitch transcription completed",
		zap.String("language", config.Language),
		zap.Int("audioSize", len(audioData)),
		zap.Int("transcriptLength", len(out.Text)))
	return out.Text, nil
}

// Translate implements repositories.Translator
func (s *SpitchClient) Translate(ctx context.Context, text, source, target string) (string, error) {
	if s.apiKey == "" {
		return "", domain.ErrNotConfigured
	}

	var out textResponse
	resp, err := s.client.R().
		SetContext(ctx).
		SetBody(translateRequest{Text: text, Source: source, Target: target}).
		SetResult(&out).
		Post("/translate")
	if err != nil {
		return "", fmt.Errorf("failed to call translation API: %w", err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("translation API returned %d: %s", resp.StatusCode(), truncate(resp.String(), 200))
	}
	return out.Text, nil
}

// Synthesize implements repositories.SpeechSynthesizer and returns a wav file
func (s *SpitchClient) Synthesize(ctx context.Context, text, language, voice string) ([]byte, error) {
	if s.apiKey == "" {
		return nil, domain.ErrNotConfigured
	}
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("text cannot be empty")
	}

	resp, err := s.client.R().
		SetContext(ctx).
		SetHeader("Accept", "audio/wav").
		SetBody(speechRequest{Text: text, Language: language, Voice: voice}).
		Post("/speech")
	if err != nil {
		return nil, fmt.Errorf("failed to call speech API: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("speech API returned %d: %s", resp.StatusCode(), truncate(resp.String(), 200))
	}
	if len(resp.Body()) == 0 {
		return nil, fmt.Errorf("speech API returned no audio")
	}

	s.logger.Info("Spitch synthesis completed",
		zap.String("language", language),
		zap.String("voice", voice),
		zap.Int("audioSize", len(resp.Body())))
	return resp.Body(), nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
