package repositories

import (
	"context"

	"github.com/satriahrh/voicebridge/domain/entities"
)

// AudioTranscoder converts arbitrary input audio into canonical audio
type AudioTranscoder interface {
	// Transcode returns domain.ErrUnsupportedAudio when every strategy failed
	Transcode(ctx context.Context, raw []byte, declaredFormat string) (*entities.CanonicalAudio, error)
}

// AudioEncoder compresses a waveform into a delivery format such as mp3
type AudioEncoder interface {
	Encode(ctx context.Context, wav []byte, format string) ([]byte, error)
}
