package repositories

import "context"

// SpeechSynthesizer abstracts text-to-speech backends. The returned bytes are a
// complete waveform file.
type SpeechSynthesizer interface {
	Synthesize(ctx context.Context, text, language, voice string) ([]byte, error)
}
