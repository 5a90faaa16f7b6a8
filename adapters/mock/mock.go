// Package mock provides scripted in-process backends. They power the
// MOCK_BACKENDS mode of the server and the handler tests.
package mock

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/satriahrh/voicebridge/domain/entities"
	"github.com/satriahrh/voicebridge/domain/repositories"
	"github.com/satriahrh/voicebridge/internal/audio"
)

var (
	_ repositories.Generator         = (*Generator)(nil)
	_ repositories.SpeechToText      = (*SpeechToText)(nil)
	_ repositories.Translator        = (*Translator)(nil)
	_ repositories.SpeechSynthesizer = (*Synthesizer)(nil)
	_ repositories.ObjectStorage     = (*Storage)(nil)
	_ repositories.Messenger         = (*Messenger)(nil)
	_ repositories.MediaFetcher      = (*Fetcher)(nil)
	_ repositories.AudioTranscoder   = (*Transcoder)(nil)
	_ repositories.AudioEncoder      = (*Encoder)(nil)
)

// GenerateCall records one Generate invocation
type GenerateCall struct {
	Parts             []repositories.Part
	SystemInstruction string
}

// Generator returns scripted responses in order, repeating the last one.
// With no responses it echoes the prompt text and tags it as English.
// A non-nil Panic value is raised after the call is recorded.
type Generator struct {
	mu        sync.Mutex
	Responses []string
	Errors    []error
	Panic     any
	calls     []GenerateCall
}

func (g *Generator) Generate(ctx context.Context, parts []repositories.Part, systemInstruction string) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	i := len(g.calls)
	g.calls = append(g.calls, GenerateCall{Parts: parts, SystemInstruction: systemInstruction})

	if g.Panic != nil {
		panic(g.Panic)
	}

	if i < len(g.Errors) && g.Errors[i] != nil {
		return "", g.Errors[i]
	}
	if len(g.Responses) > 0 {
		if i >= len(g.Responses) {
			i = len(g.Responses) - 1
		}
		return g.Responses[i], nil
	}

	var text []string
	for _, p := range parts {
		if p.IsInline() {
			text = append(text, fmt.Sprintf("[%d bytes of %s]", len(p.Data), p.MIMEType))
			continue
		}
		text = append(text, p.Text)
	}
	return "You said: " + strings.Join(text, " ") + "\nLanguage Code: en", nil
}

// Calls returns a copy of the recorded invocations
func (g *Generator) Calls() []GenerateCall {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]GenerateCall(nil), g.calls...)
}

// SpeechToText returns Text for every clip
type SpeechToText struct {
	Text string
	Err  error

	mu      sync.Mutex
	configs []repositories.AudioConfig
}

func (s *SpeechToText) TranscribeAudio(ctx context.Context, audioData []byte, config repositories.AudioConfig) (string, error) {
	s.mu.Lock()
	s.configs = append(s.configs, config)
	s.mu.Unlock()

	if s.Err != nil {
		return "", s.Err
	}
	if s.Text == "" {
		return "transcribed speech", nil
	}
	return s.Text, nil
}

// Configs returns the recognition configs seen so far
func (s *SpeechToText) Configs() []repositories.AudioConfig {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]repositories.AudioConfig(nil), s.configs...)
}

// Translator prefixes text with the target language, or returns Err
type Translator struct {
	Err error
}

func (t *Translator) Translate(ctx context.Context, text, source, target string) (string, error) {
	if t.Err != nil {
		return "", t.Err
	}
	return fmt.Sprintf("[%s->%s] %s", source, target, text), nil
}

// Synthesizer returns a short silent canonical waveform
type Synthesizer struct {
	Err error

	mu     sync.Mutex
	voices []string
}

func (s *Synthesizer) Synthesize(ctx context.Context, text, language, voice string) ([]byte, error) {
	s.mu.Lock()
	s.voices = append(s.voices, voice)
	s.mu.Unlock()

	if s.Err != nil {
		return nil, s.Err
	}
	return audio.EncodeWAV(make([]byte, entities.CanonicalSampleRate/5), entities.CanonicalSampleRate, entities.CanonicalChannels), nil
}

// Voices returns the voice names requested so far
func (s *Synthesizer) Voices() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.voices...)
}

// Storage keeps uploads in memory and hands out mock:// URLs
type Storage struct {
	Err error

	mu    sync.Mutex
	files map[string][]byte
}

func (s *Storage) Upload(ctx context.Context, filename string, data []byte, contentType string) (string, error) {
	if s.Err != nil {
		return "", s.Err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.files == nil {
		s.files = make(map[string][]byte)
	}
	s.files[filename] = data
	return "https://mock.storage/" + filename, nil
}

// Files returns the names of every uploaded file
func (s *Storage) Files() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	names := make([]string, 0, len(s.files))
	for name := range s.files {
		names = append(names, name)
	}
	return names
}

// SentMessage is one message recorded by Messenger
type SentMessage struct {
	To       string
	Body     string
	MediaURL string
}

// Messenger records outbound messages. MediaErr fails only media sends.
type Messenger struct {
	Err      error
	MediaErr error

	mu   sync.Mutex
	sent []SentMessage
}

func (m *Messenger) SendText(ctx context.Context, to, body string) (string, error) {
	if m.Err != nil {
		return "", m.Err
	}
	return m.record(SentMessage{To: to, Body: body}), nil
}

func (m *Messenger) SendMedia(ctx context.Context, to, mediaURL, caption string) (string, error) {
	if m.Err != nil {
		return "", m.Err
	}
	if m.MediaErr != nil {
		return "", m.MediaErr
	}
	return m.record(SentMessage{To: to, Body: caption, MediaURL: mediaURL}), nil
}

func (m *Messenger) record(msg SentMessage) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, msg)
	return fmt.Sprintf("SM%04d", len(m.sent))
}

// Sent returns the recorded messages in send order
func (m *Messenger) Sent() []SentMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]SentMessage(nil), m.sent...)
}

// Fetcher serves media from an in-memory map
type Fetcher struct {
	Media map[string][]byte
}

func (f *Fetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	data, ok := f.Media[url]
	if !ok {
		return nil, fmt.Errorf("media not found: %s", url)
	}
	return data, nil
}

// Transcoder accepts wav input as is and wraps anything else as raw PCM.
// Formats listed in Reject fail with the mapped error.
type Transcoder struct {
	Reject map[string]error

	mu    sync.Mutex
	calls int
}

func (t *Transcoder) Transcode(ctx context.Context, raw []byte, declaredFormat string) (*entities.CanonicalAudio, error) {
	t.mu.Lock()
	t.calls++
	t.mu.Unlock()

	if err, ok := t.Reject[declaredFormat]; ok {
		return nil, err
	}
	if len(raw) == 0 {
		return nil, errors.New("empty audio input")
	}

	data := raw
	if info, err := audio.InspectWAV(raw); err != nil || info.SampleRate == 0 {
		data = audio.EncodeWAV(raw, entities.CanonicalSampleRate, entities.CanonicalChannels)
	}
	return &entities.CanonicalAudio{
		Data:       data,
		SampleRate: entities.CanonicalSampleRate,
		Channels:   entities.CanonicalChannels,
	}, nil
}

// Calls returns how many times Transcode ran
func (t *Transcoder) Calls() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.calls
}

// Encoder returns the waveform unchanged
type Encoder struct {
	Err error
}

func (e *Encoder) Encode(ctx context.Context, wav []byte, format string) ([]byte, error) {
	if e.Err != nil {
		return nil, e.Err
	}
	return wav, nil
}
