package stt

import (
	"context"
	"fmt"
	"strings"

	speech "cloud.google.com/go/speech/apiv1"
	"cloud.google.com/go/speech/apiv1/speechpb"
	"go.uber.org/zap"
	"google.golang.org/api/option"

	"github.com/satriahrh/voicebridge/domain/repositories"
)

// GoogleConfig holds configuration for Google Cloud Speech-to-Text.
// With neither field set, application default credentials are used.
type GoogleConfig struct {
	APIKey          string
	CredentialsJSON string
}

type recognizeFunc func(ctx context.Context, req *speechpb.RecognizeRequest) (*speechpb.RecognizeResponse, error)

// GoogleSpeechToText implements SpeechToText for Google Cloud
type GoogleSpeechToText struct {
	recognize recognizeFunc
	close     func() error
	logger    *zap.Logger
}

var _ repositories.SpeechToText = (*GoogleSpeechToText)(nil)

// languageCodes maps the short language codes used by the gateway to BCP-47 tags
var languageCodes = map[string]string{
	"en": "en-NG",
	"yo": "yo-NG",
	"ig": "ig-NG",
	"ha": "ha-NG",
}

// NewGoogleSpeechToText creates a Google Cloud Speech client
func NewGoogleSpeechToText(ctx context.Context, config GoogleConfig, logger *zap.Logger) (*GoogleSpeechToText, error) {
	var opts []option.ClientOption
	switch {
	case config.CredentialsJSON != "":
		opts = append(opts, option.WithCredentialsJSON([]byte(config.CredentialsJSON)))
	case config.APIKey != "":
		opts = append(opts, option.WithAPIKey(config.APIKey))
	}

	client, err := speech.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create speech client: %w", err)
	}

	recognize := func(ctx context.Context, req *speechpb.RecognizeRequest) (*speechpb.RecognizeResponse, error) {
		return client.Recognize(ctx, req)
	}
	return &GoogleSpeechToText{recognize: recognize, close: client.Close, logger: logger}, nil
}

// Close releases the underlying gRPC connection
func (g *GoogleSpeechToText) Close() error {
	if g.close == nil {
		return nil
	}
	return g.close()
}

// TranscribeAudio converts audio data to text using Google Cloud Speech-to-Text (non-streaming)
func (g *GoogleSpeechToText) TranscribeAudio(ctx context.Context, audioData []byte, config repositories.AudioConfig) (string, error) {
	if len(audioData) == 0 {
		return "", fmt.Errorf("no audio data received")
	}

	encoding, err := getAudioEncoding(config.Encoding)
	if err != nil {
		return "", err
	}

	req := &speechpb.RecognizeRequest{
		Config: &speechpb.RecognitionConfig{
			Encoding:        encoding,
			SampleRateHertz: int32(config.SampleRate),
			LanguageCode:    languageTag(config.Language),
		},
		Audio: &speechpb.RecognitionAudio{
			AudioSource: &speechpb.RecognitionAudio_Content{Content: audioData},
		},
	}

	resp, err := g.recognize(ctx, req)
	if err != nil {
		return "", fmt.Errorf("failed to recognize speech: %w", err)
	}

	var parts []string
	for _, result := range resp.GetResults() {
		if alternatives := result.GetAlternatives(); len(alternatives) > 0 {
			parts = append(parts, strings.TrimSpace(alternatives[0].GetTranscript()))
		}
	}
	transcript := strings.Join(parts, " ")

	g.logger.Info("Google transcription completed",
		zap.String("language", req.Config.LanguageCode),
		zap.Int("audioSize", len(audioData)),
		zap.Int("transcriptLength", len(transcript)))
	return transcript, nil
}

func languageTag(code string) string {
	if tag, ok := languageCodes[strings.ToLower(code)]; ok {
		return tag
	}
	if code == "" {
		return languageCodes["en"]
	}
	return code
}

// getAudioEncoding converts string encoding to Google Speech API enum
func getAudioEncoding(encoding string) (speechpb.RecognitionConfig_AudioEncoding, error) {
	switch strings.ToUpper(encoding) {
	case "", "WAV", "LINEAR16":
		return speechpb.RecognitionConfig_LINEAR16, nil
	case "FLAC":
		return speechpb.RecognitionConfig_FLAC, nil
	case "MULAW":
		return speechpb.RecognitionConfig_MULAW, nil
	case "AMR":
		return speechpb.RecognitionConfig_AMR, nil
	case "AMR_WB":
		return speechpb.RecognitionConfig_AMR_WB, nil
	case "OGG_OPUS":
		return speechpb.RecognitionConfig_OGG_OPUS, nil
	case "WEBM_OPUS":
		return speechpb.RecognitionConfig_WEBM_OPUS, nil
	default:
		return speechpb.RecognitionConfig_ENCODING_UNSPECIFIED, fmt.Errorf("unsupported encoding: %s", encoding)
	}
}
