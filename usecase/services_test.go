package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/satriahrh/voicebridge/adapters/mock"
	"github.com/satriahrh/voicebridge/domain"
	"github.com/satriahrh/voicebridge/domain/entities"
)

func canonical() *entities.CanonicalAudio {
	return &entities.CanonicalAudio{Data: []byte("RIFF....WAVE"), SampleRate: 16000, Channels: 1}
}

func TestChatService_Ask(t *testing.T) {
	gen := &mock.Generator{Responses: []string{"  Ibà jẹ́ àrùn.  "}}
	svc := NewChatService(gen, 0, zaptest.NewLogger(t))

	reply, err := svc.Ask(context.Background(), "What is malaria?", entities.LanguageYoruba)
	require.NoError(t, err)
	assert.Equal(t, "Ibà jẹ́ àrùn.", reply.Text)
	assert.Equal(t, entities.LanguageYoruba, reply.LanguageCode)

	calls := gen.Calls()
	require.Len(t, calls, 1)
	assert.Contains(t, calls[0].SystemInstruction, "You MUST reply in this language: yoruba.")
	assert.NotContains(t, calls[0].SystemInstruction, languageMarker)
}

func TestChatService_Errors(t *testing.T) {
	logger := zaptest.NewLogger(t)

	_, err := NewChatService(&mock.Generator{}, 0, logger).Ask(context.Background(), " ", entities.LanguageEnglish)
	assert.Error(t, err)

	_, err = NewChatService(&mock.Generator{Errors: []error{domain.ErrNotConfigured}}, 0, logger).
		Ask(context.Background(), "hi", entities.LanguageEnglish)
	assert.ErrorIs(t, err, domain.ErrEngineUnavailable)
	assert.ErrorIs(t, err, domain.ErrNotConfigured)

	_, err = NewChatService(&mock.Generator{Responses: []string{""}}, 0, logger).
		Ask(context.Background(), "hi", entities.LanguageEnglish)
	assert.ErrorIs(t, err, domain.ErrEmptyReply)
}

func TestChatService_UnsupportedLanguageFallsBack(t *testing.T) {
	gen := &mock.Generator{Responses: []string{"ok"}}
	reply, err := NewChatService(gen, 0, zaptest.NewLogger(t)).Ask(context.Background(), "hi", "fr")
	require.NoError(t, err)
	assert.Equal(t, entities.LanguageEnglish, reply.LanguageCode)
	assert.Contains(t, gen.Calls()[0].SystemInstruction, "english")
}

func TestSpeechService_TranslatesNonEnglish(t *testing.T) {
	stt := &mock.SpeechToText{Text: "bawo ni"}
	svc := NewSpeechService(stt, &mock.Translator{}, 0, zaptest.NewLogger(t))

	transcript, err := svc.Transcribe(context.Background(), canonical(), entities.LanguageYoruba)
	require.NoError(t, err)
	assert.Equal(t, "[yo->en] bawo ni", transcript.Text)
	assert.Equal(t, entities.LanguageYoruba, transcript.SourceLanguage)

	configs := stt.Configs()
	require.Len(t, configs, 1)
	assert.Equal(t, "yo", configs[0].Language)
	assert.Equal(t, 16000, configs[0].SampleRate)
}

func TestSpeechService_EnglishSkipsTranslation(t *testing.T) {
	svc := NewSpeechService(&mock.SpeechToText{Text: "hello"}, &mock.Translator{Err: errors.New("unused")}, 0, zaptest.NewLogger(t))

	transcript, err := svc.Transcribe(context.Background(), canonical(), entities.LanguageEnglish)
	require.NoError(t, err)
	assert.Equal(t, "hello", transcript.Text)
}

func TestSpeechService_Failures(t *testing.T) {
	logger := zaptest.NewLogger(t)

	stt := &mock.SpeechToText{Err: errors.New("401 unauthorized")}
	_, err := NewSpeechService(stt, &mock.Translator{}, 0, logger).Transcribe(context.Background(), canonical(), entities.LanguageEnglish)
	assert.ErrorIs(t, err, domain.ErrSTTUnavailable)
	assert.Len(t, stt.Configs(), 1, "transcription must not be retried")

	_, err = NewSpeechService(&mock.SpeechToText{Text: "x"}, &mock.Translator{Err: errors.New("quota")}, 0, logger).
		Transcribe(context.Background(), canonical(), entities.LanguageIgbo)
	assert.ErrorIs(t, err, domain.ErrSTTUnavailable)

	_, err = NewSpeechService(&mock.SpeechToText{}, &mock.Translator{}, 0, logger).Transcribe(context.Background(), nil, entities.LanguageEnglish)
	assert.ErrorIs(t, err, domain.ErrSTTUnavailable)
}

func TestSynthesisService_Synthesize(t *testing.T) {
	synth := &mock.Synthesizer{}
	storage := &mock.Storage{}
	svc := NewSynthesisService(synth, &mock.Encoder{}, storage, 0, zaptest.NewLogger(t))

	url, err := svc.Synthesize(context.Background(), "Sannu", entities.LanguageHausa, "whatsapp")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "https://mock.storage/whatsapp_"))
	assert.True(t, strings.HasSuffix(url, ".mp3"))
	assert.Equal(t, []string{"amina"}, synth.Voices())
	assert.Len(t, storage.Files(), 1)
}

func TestSynthesisService_FailuresCollapseToEmptyURL(t *testing.T) {
	logger := zaptest.NewLogger(t)
	tests := map[string]*SynthesisService{
		"synthesis": NewSynthesisService(&mock.Synthesizer{Err: errors.New("503")}, &mock.Encoder{}, &mock.Storage{}, 0, logger),
		"encoding":  NewSynthesisService(&mock.Synthesizer{}, &mock.Encoder{Err: errors.New("ffmpeg missing")}, &mock.Storage{}, 0, logger),
		"upload":    NewSynthesisService(&mock.Synthesizer{}, &mock.Encoder{}, &mock.Storage{Err: domain.ErrNotConfigured}, 0, logger),
	}
	for name, svc := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := svc.Synthesize(context.Background(), "hello", entities.LanguageEnglish, "")
			assert.ErrorIs(t, err, domain.ErrSynthesisFailed)

			assert.Equal(t, "", svc.SynthesizeURL(context.Background(), "hello", entities.LanguageEnglish, ""))
		})
	}
}

func TestVoiceFor(t *testing.T) {
	assert.Equal(t, "lucy", VoiceFor(entities.LanguageEnglish))
	assert.Equal(t, "sade", VoiceFor(entities.LanguageYoruba))
	assert.Equal(t, "ngozi", VoiceFor(entities.LanguageIgbo))
	assert.Equal(t, "amina", VoiceFor(entities.LanguageHausa))
	assert.Equal(t, "lucy", VoiceFor(entities.LanguageUnknown))
}
