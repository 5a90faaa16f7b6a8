package audio

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/satriahrh/voicebridge/domain"
)

// scriptedRunner fails or writes the given output for each successive call.
// The output path is the last argument of every strategy.
type scriptedRunner struct {
	mu      sync.Mutex
	outputs [][]byte // nil entry means the call fails
	calls   [][]string
}

func (r *scriptedRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	idx := len(r.calls)
	r.calls = append(r.calls, args)
	if idx >= len(r.outputs) || r.outputs[idx] == nil {
		return []byte("Invalid data found when processing input"), errors.New("exit status 1")
	}
	if err := os.WriteFile(args[len(args)-1], r.outputs[idx], 0o600); err != nil {
		return nil, err
	}
	return nil, nil
}

func canonicalWAV() []byte {
	return EncodeWAV(make([]byte, 3200), 16000, 1)
}

func assertEmptyDir(t *testing.T, dir string) {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries, "temporary files left behind")
}

func TestTranscoder_SecondStrategyWins(t *testing.T) {
	tmp := t.TempDir()
	runner := &scriptedRunner{outputs: [][]byte{nil, canonicalWAV(), canonicalWAV()}}
	tr := NewTranscoder(TranscoderConfig{TempDir: tmp}, runner, zaptest.NewLogger(t))

	audio, err := tr.Transcode(context.Background(), []byte("webm-bytes"), "webm")
	require.NoError(t, err)

	assert.Len(t, runner.calls, 2, "strategies after the winner must not run")
	assert.Equal(t, canonicalWAV(), audio.Data)
	assert.Equal(t, 16000, audio.SampleRate)
	assert.Equal(t, 1, audio.Channels)
	assertEmptyDir(t, tmp)
}

func TestTranscoder_AllStrategiesFail(t *testing.T) {
	tmp := t.TempDir()
	runner := &scriptedRunner{}
	tr := NewTranscoder(TranscoderConfig{TempDir: tmp}, runner, zaptest.NewLogger(t))

	_, err := tr.Transcode(context.Background(), []byte("garbage"), "ogg")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrUnsupportedAudio))
	assert.Len(t, runner.calls, len(DefaultStrategies()))
	assertEmptyDir(t, tmp)
}

func TestTranscoder_EmptyOutputIsFailure(t *testing.T) {
	tmp := t.TempDir()
	runner := &scriptedRunner{outputs: [][]byte{{}, []byte("not a wav"), canonicalWAV()}}
	tr := NewTranscoder(TranscoderConfig{TempDir: tmp}, runner, zaptest.NewLogger(t))

	audio, err := tr.Transcode(context.Background(), []byte("x"), "wav")
	require.NoError(t, err)
	assert.Len(t, runner.calls, 3)
	assert.True(t, audio.IsCanonical())
	assertEmptyDir(t, tmp)
}

func TestTranscoder_EmptyInput(t *testing.T) {
	tr := NewTranscoder(TranscoderConfig{TempDir: t.TempDir()}, &scriptedRunner{}, zaptest.NewLogger(t))
	_, err := tr.Transcode(context.Background(), nil, "wav")
	assert.ErrorIs(t, err, domain.ErrUnsupportedAudio)
}

func TestTranscoder_NonCanonicalOutputAccepted(t *testing.T) {
	runner := &scriptedRunner{outputs: [][]byte{EncodeWAV(make([]byte, 100), 48000, 2)}}
	tr := NewTranscoder(TranscoderConfig{TempDir: t.TempDir()}, runner, zaptest.NewLogger(t))

	audio, err := tr.Transcode(context.Background(), []byte("x"), "mp3")
	require.NoError(t, err)
	assert.False(t, audio.IsCanonical())
	assert.Equal(t, 48000, audio.SampleRate)
}

type blockingRunner struct{}

func (blockingRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func TestTranscoder_StrategyTimeout(t *testing.T) {
	tmp := t.TempDir()
	tr := NewTranscoder(TranscoderConfig{TempDir: tmp, Timeout: 10 * time.Millisecond}, blockingRunner{}, zaptest.NewLogger(t))

	start := time.Now()
	_, err := tr.Transcode(context.Background(), []byte("x"), "ogg")
	assert.ErrorIs(t, err, domain.ErrUnsupportedAudio)
	assert.Less(t, time.Since(start), 5*time.Second)
	assertEmptyDir(t, tmp)
}

func TestTranscoder_ExplicitStrategyUsesDemuxer(t *testing.T) {
	args := DefaultStrategies()[0].Args("in.webm", "out.wav", "webm")
	assert.Contains(t, args, "matroska")
	assert.Equal(t, "out.wav", args[len(args)-1])

	args = DefaultStrategies()[0].Args("in.bin", "out.wav", "")
	assert.Greater(t, indexOf(args, "-f"), indexOf(args, "-i"), "no input demuxer for unknown formats")
	assert.Equal(t, "in.bin", args[indexOf(args, "-i")+1])
}

func indexOf(args []string, s string) int {
	for i, a := range args {
		if a == s {
			return i
		}
	}
	return -1
}

func TestChain_FallsBackToNextTranscoder(t *testing.T) {
	logger := zaptest.NewLogger(t)
	remux := NewTranscoder(TranscoderConfig{Name: "whatsapp", TempDir: t.TempDir(), Strategies: WhatsAppRemuxStrategies()},
		&scriptedRunner{}, logger)
	generic := NewTranscoder(TranscoderConfig{TempDir: t.TempDir()},
		&scriptedRunner{outputs: [][]byte{canonicalWAV()}}, logger)

	audio, err := Chain{remux, generic}.Transcode(context.Background(), []byte("ogg"), "ogg")
	require.NoError(t, err)
	assert.True(t, audio.IsCanonical())

	_, err = Chain{remux}.Transcode(context.Background(), []byte("ogg"), "ogg")
	assert.ErrorIs(t, err, domain.ErrUnsupportedAudio)
}

func TestInspectWAV(t *testing.T) {
	info, err := InspectWAV(EncodeWAV(make([]byte, 10), 22050, 2))
	require.NoError(t, err)
	assert.Equal(t, 22050, info.SampleRate)
	assert.Equal(t, 2, info.Channels)
	assert.Equal(t, 16, info.BitsPerSample)
	assert.Equal(t, 1, info.AudioFormat)

	_, err = InspectWAV([]byte("OggS...."))
	assert.Error(t, err)
}

func TestEncoder_Encode(t *testing.T) {
	tmp := t.TempDir()
	runner := &scriptedRunner{outputs: [][]byte{[]byte("ID3mp3")}}
	enc := NewEncoder(TranscoderConfig{TempDir: tmp}, runner, zaptest.NewLogger(t))

	out, err := enc.Encode(context.Background(), canonicalWAV(), "mp3")
	require.NoError(t, err)
	assert.Equal(t, []byte("ID3mp3"), out)
	assert.Contains(t, runner.calls[0], "libmp3lame")
	assertEmptyDir(t, tmp)

	_, err = enc.Encode(context.Background(), canonicalWAV(), "aiff")
	assert.Error(t, err)
}
