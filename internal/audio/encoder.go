package audio

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/satriahrh/voicebridge/domain/repositories"
)

var encoderArgs = map[string][]string{
	"mp3": {"-codec:a", "libmp3lame", "-b:a", "64k", "-f", "mp3"},
	"ogg": {"-codec:a", "libopus", "-b:a", "32k", "-f", "ogg"},
}

// Encoder compresses synthesized waveforms for delivery
type Encoder struct {
	ffmpegPath string
	timeout    time.Duration
	tempDir    string
	runner     Runner
	logger     *zap.Logger
}

var _ repositories.AudioEncoder = (*Encoder)(nil)

// NewEncoder shares the transcoder configuration; strategies are ignored
func NewEncoder(config TranscoderConfig, runner Runner, logger *zap.Logger) *Encoder {
	if runner == nil {
		runner = ExecRunner{}
	}
	e := &Encoder{
		ffmpegPath: config.FFmpegPath,
		timeout:    config.Timeout,
		tempDir:    config.TempDir,
		runner:     runner,
		logger:     logger,
	}
	if e.ffmpegPath == "" {
		e.ffmpegPath = defaultFFmpegPath
	}
	if e.timeout <= 0 {
		e.timeout = defaultTimeout
	}
	return e
}

// Encode writes the waveform to a temporary file and converts it to format
func (e *Encoder) Encode(ctx context.Context, wav []byte, format string) ([]byte, error) {
	codecArgs, ok := encoderArgs[format]
	if !ok {
		return nil, fmt.Errorf("unsupported delivery format: %s", format)
	}
	if len(wav) == 0 {
		return nil, errors.New("empty waveform")
	}

	dir, err := os.MkdirTemp(e.tempDir, "encode-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp dir: %w", err)
	}
	defer os.RemoveAll(dir)

	input := filepath.Join(dir, "speech.wav")
	output := filepath.Join(dir, "speech."+format)
	if err := os.WriteFile(input, wav, 0o600); err != nil {
		return nil, fmt.Errorf("failed to write waveform: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	args := append([]string{"-y", "-hide_banner", "-loglevel", "error", "-i", input}, codecArgs...)
	args = append(args, output)
	if out, err := e.runner.Run(ctx, e.ffmpegPath, args...); err != nil {
		return nil, fmt.Errorf("failed to encode %s: %w: %s", format, err, truncate(out, 200))
	}

	data, err := os.ReadFile(output)
	if err != nil {
		return nil, fmt.Errorf("failed to read encoded audio: %w", err)
	}
	if len(data) == 0 {
		return nil, errors.New("encoder produced empty output")
	}

	e.logger.Debug("Encoded speech",
		zap.String("format", format),
		zap.Int("wavBytes", len(wav)),
		zap.Int("encodedBytes", len(data)))
	return data, nil
}
