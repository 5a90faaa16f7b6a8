package repositories

import "context"

// SpeechToText abstracts speech recognition services
type SpeechToText interface {
	// TranscribeAudio converts audio data to text
	TranscribeAudio(ctx context.Context, audioData []byte, config AudioConfig) (string, error)
}

// Translator abstracts machine translation between language codes
type Translator interface {
	Translate(ctx context.Context, text, source, target string) (string, error)
}

// AudioConfig represents audio configuration for speech recognition
type AudioConfig struct {
	SampleRate int    `json:"sample_rate"`
	Encoding   string `json:"encoding"`
	Language   string `json:"language"`
}
