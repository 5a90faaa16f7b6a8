package domain

import "errors"

// Pipeline failure taxonomy. Callers branch on these with errors.Is; adapters
// wrap their backend errors into one of them at the usecase boundary.
var (
	// ErrUnsupportedAudio is returned when no transcoding strategy produced output
	ErrUnsupportedAudio = errors.New("unsupported audio")
	// ErrSTTUnavailable is returned when the transcription backend failed
	ErrSTTUnavailable = errors.New("speech-to-text unavailable")
	// ErrEngineUnavailable is returned when the generation backend failed or timed out
	ErrEngineUnavailable = errors.New("conversational engine unavailable")
	// ErrEmptyReply is returned when the generation backend produced no usable text
	ErrEmptyReply = errors.New("empty reply")
	// ErrSynthesisFailed is returned when synthesis, encoding or upload failed.
	// It never escapes SynthesisService.SynthesizeURL.
	ErrSynthesisFailed = errors.New("speech synthesis failed")
	// ErrDeliveryFailed is returned when an outbound send to a channel failed
	ErrDeliveryFailed = errors.New("delivery failed")
	// ErrNotConfigured is returned by adapters whose credentials are absent
	ErrNotConfigured = errors.New("service credentials not configured")
)
