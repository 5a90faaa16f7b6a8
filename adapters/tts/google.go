package tts

import (
	"context"
	"fmt"
	"strings"

	texttospeech "cloud.google.com/go/texttospeech/apiv1"
	"cloud.google.com/go/texttospeech/apiv1/texttospeechpb"
	"go.uber.org/zap"
	"google.golang.org/api/option"

	"github.com/satriahrh/voicebridge/domain/repositories"
)

const defaultSampleRate = 16000

// GoogleTTSConfig holds configuration for the GoogleTTS adapter
// Optional fields:
// - APIKey: Google API key, used when CredentialsJSON is empty
// - CredentialsJSON: service account JSON; application default credentials are used when both are empty
// - SampleRate: output sample rate in Hz (default: 16000)
// - Voices: language code to Google voice name overrides
type GoogleTTSConfig struct {
	APIKey          string
	CredentialsJSON string
	SampleRate      int32
	Voices          map[string]string
}

type synthesizeFunc func(ctx context.Context, req *texttospeechpb.SynthesizeSpeechRequest) (*texttospeechpb.SynthesizeSpeechResponse, error)

// GoogleTTS implements SpeechSynthesizer using Google Cloud Text-to-Speech
type GoogleTTS struct {
	synthesize synthesizeFunc
	close      func() error
	sampleRate int32
	voices     map[string]string
	logger     *zap.Logger
}

var _ repositories.SpeechSynthesizer = (*GoogleTTS)(nil)

// googleLanguages maps gateway language codes to the locales Google voices are published under
var googleLanguages = map[string]string{
	"en": "en-NG",
	"yo": "yo-NG",
	"ig": "ig-NG",
	"ha": "ha-NG",
}

// NewGoogleTTS creates a new Google Cloud Text-to-Speech adapter
func NewGoogleTTS(ctx context.Context, config GoogleTTSConfig, logger *zap.Logger) (*GoogleTTS, error) {
	var opts []option.ClientOption
	switch {
	case config.CredentialsJSON != "":
		opts = append(opts, option.WithCredentialsJSON([]byte(config.CredentialsJSON)))
	case config.APIKey != "":
		opts = append(opts, option.WithAPIKey(config.APIKey))
	}

	client, err := texttospeech.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create text-to-speech client: %w", err)
	}

	synthesize := func(ctx context.Context, req *texttospeechpb.SynthesizeSpeechRequest) (*texttospeechpb.SynthesizeSpeechResponse, error) {
		return client.SynthesizeSpeech(ctx, req)
	}
	return newGoogleTTS(synthesize, client.Close, config, logger), nil
}

func newGoogleTTS(synthesize synthesizeFunc, closeFn func() error, config GoogleTTSConfig, logger *zap.Logger) *GoogleTTS {
	sampleRate := config.SampleRate
	if sampleRate <= 0 {
		sampleRate = defaultSampleRate
		logger.Info("Using default sample rate", zap.Int32("sampleRate", sampleRate))
	}
	return &GoogleTTS{
		synthesize: synthesize,
		close:      closeFn,
		sampleRate: sampleRate,
		voices:     config.Voices,
		logger:     logger,
	}
}

// Close releases the underlying gRPC connection
func (g *GoogleTTS) Close() error {
	if g.close == nil {
		return nil
	}
	return g.close()
}

// Synthesize renders text as a 16-bit PCM wav file. The voice argument is only
// honoured when it looks like a Google voice name (for example "yo-NG-Standard-A");
// otherwise the configured voice for the language is used, or Google picks one.
func (g *GoogleTTS) Synthesize(ctx context.Context, text, language, voice string) ([]byte, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("text cannot be empty")
	}

	locale, ok := googleLanguages[language]
	if !ok {
		locale = googleLanguages["en"]
	}

	selection := &texttospeechpb.VoiceSelectionParams{LanguageCode: locale}
	switch {
	case strings.Count(voice, "-") >= 2:
		selection.Name = voice
	case g.voices[language] != "":
		selection.Name = g.voices[language]
	}

	resp, err := g.synthesize(ctx, &texttospeechpb.SynthesizeSpeechRequest{
		Input: &texttospeechpb.SynthesisInput{
			InputSource: &texttospeechpb.SynthesisInput_Text{Text: text},
		},
		Voice: selection,
		AudioConfig: &texttospeechpb.AudioConfig{
			AudioEncoding:   texttospeechpb.AudioEncoding_LINEAR16,
			SampleRateHertz: g.sampleRate,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to synthesize speech: %w", err)
	}
	if len(resp.GetAudioContent()) == 0 {
		return nil, fmt.Errorf("text-to-speech returned no audio")
	}

	g.logger.Info("Google synthesis completed",
		zap.String("locale", locale),
		zap.String("voice", selection.Name),
		zap.Int("audioSize", len(resp.GetAudioContent())))
	return resp.GetAudioContent(), nil
}
