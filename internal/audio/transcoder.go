// Package audio turns heterogeneous inbound audio into canonical 16kHz mono
// waveforms and encodes synthesized speech for delivery. All work goes through
// ffmpeg; every invocation uses its own temporary directory that is removed on
// every exit path.
package audio

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/satriahrh/voicebridge/domain"
	"github.com/satriahrh/voicebridge/domain/entities"
	"github.com/satriahrh/voicebridge/domain/repositories"
)

const (
	defaultFFmpegPath = "ffmpeg"
	defaultTimeout    = 30 * time.Second
)

// TranscoderConfig holds configuration for a Transcoder.
// Zero values fall back to defaults.
type TranscoderConfig struct {
	Name       string        // label used in log lines
	FFmpegPath string        // default "ffmpeg"
	Timeout    time.Duration // per strategy, default 30s
	TempDir    string        // default os.TempDir()
	Strategies []Strategy    // default DefaultStrategies()
}

// Transcoder tries an ordered list of strategies and returns the first one
// that produced a non-empty waveform.
type Transcoder struct {
	name       string
	ffmpegPath string
	timeout    time.Duration
	tempDir    string
	strategies []Strategy
	runner     Runner
	logger     *zap.Logger
}

var _ repositories.AudioTranscoder = (*Transcoder)(nil)

// NewTranscoder creates a transcoder. A nil runner executes ffmpeg directly.
func NewTranscoder(config TranscoderConfig, runner Runner, logger *zap.Logger) *Transcoder {
	if runner == nil {
		runner = ExecRunner{}
	}
	t := &Transcoder{
		name:       config.Name,
		ffmpegPath: config.FFmpegPath,
		timeout:    config.Timeout,
		tempDir:    config.TempDir,
		strategies: config.Strategies,
		runner:     runner,
		logger:     logger,
	}
	if t.name == "" {
		t.name = "generic"
	}
	if t.ffmpegPath == "" {
		t.ffmpegPath = defaultFFmpegPath
	}
	if t.timeout <= 0 {
		t.timeout = defaultTimeout
	}
	if len(t.strategies) == 0 {
		t.strategies = DefaultStrategies()
	}
	return t
}

// Transcode implements repositories.AudioTranscoder
func (t *Transcoder) Transcode(ctx context.Context, raw []byte, declaredFormat string) (*entities.CanonicalAudio, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("%w: empty input", domain.ErrUnsupportedAudio)
	}

	dir, err := os.MkdirTemp(t.tempDir, "transcode-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp dir: %w", err)
	}
	defer os.RemoveAll(dir)

	ext := declaredFormat
	if ext == "" {
		ext = "bin"
	}
	input := filepath.Join(dir, "input."+ext)
	if err := os.WriteFile(input, raw, 0o600); err != nil {
		return nil, fmt.Errorf("failed to write transcoder input: %w", err)
	}

	for i, strategy := range t.strategies {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrUnsupportedAudio, ctx.Err())
		}

		output := filepath.Join(dir, fmt.Sprintf("output-%d.wav", i))
		audio, err := t.attempt(ctx, strategy, input, output, declaredFormat)
		if err != nil {
			t.logger.Warn("Transcode strategy failed",
				zap.String("transcoder", t.name),
				zap.String("strategy", strategy.Name()),
				zap.String("format", declaredFormat),
				zap.Error(err))
			continue
		}

		t.logger.Info("Transcode strategy succeeded",
			zap.String("transcoder", t.name),
			zap.String("strategy", strategy.Name()),
			zap.String("audio", audio.String()))
		return audio, nil
	}

	return nil, fmt.Errorf("%w: %d %s strategies failed for %q input",
		domain.ErrUnsupportedAudio, len(t.strategies), t.name, declaredFormat)
}

func (t *Transcoder) attempt(ctx context.Context, strategy Strategy, input, output, format string) (*entities.CanonicalAudio, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	if out, err := t.runner.Run(ctx, t.ffmpegPath, strategy.Args(input, output, format)...); err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("timed out after %s", t.timeout)
		}
		return nil, fmt.Errorf("%w: %s", err, truncate(out, 200))
	}

	data, err := os.ReadFile(output)
	if err != nil {
		return nil, fmt.Errorf("missing output: %w", err)
	}
	if len(data) == 0 {
		return nil, errors.New("empty output")
	}

	info, err := InspectWAV(data)
	if err != nil {
		return nil, fmt.Errorf("invalid output: %w", err)
	}

	audio := &entities.CanonicalAudio{Data: data, SampleRate: info.SampleRate, Channels: info.Channels}
	if !audio.IsCanonical() {
		t.logger.Warn("Transcoded audio is not 16kHz mono",
			zap.String("strategy", strategy.Name()),
			zap.String("wav", info.String()))
	}
	return audio, nil
}

// Chain tries several transcoders in order. It is used where a channel has a
// specialised repair list that falls back to the generic transcoder.
type Chain []repositories.AudioTranscoder

// Transcode implements repositories.AudioTranscoder
func (c Chain) Transcode(ctx context.Context, raw []byte, declaredFormat string) (*entities.CanonicalAudio, error) {
	var lastErr error = domain.ErrUnsupportedAudio
	for _, t := range c {
		audio, err := t.Transcode(ctx, raw, declaredFormat)
		if err == nil {
			return audio, nil
		}
		lastErr = err
	}
	return nil, lastErr
}
