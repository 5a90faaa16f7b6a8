package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Port)
	assert.False(t, cfg.IsDevelopment())
	assert.Equal(t, "gemini-2.0-flash", cfg.Gemini.Model)
	assert.Equal(t, 30*time.Second, cfg.Gemini.BackendTimeout)
	assert.Equal(t, "spitch", cfg.Speech.STTProvider)
	assert.Equal(t, "memory", cfg.Store.Driver)
	assert.Equal(t, "ffmpeg", cfg.Audio.FFmpegPath)
	assert.Equal(t, 30*time.Second, cfg.Audio.TranscodeTimeout)
	assert.Equal(t, "/api/assistant/ivr-hook", cfg.Channels.IVRRecordAction)
	assert.Equal(t, 10, cfg.Channels.IVRMaxLength)
	assert.True(t, cfg.Channels.WhatsAppVoiceReplyToText)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("APP_ENV", "development")
	t.Setenv("PORT", "9000")
	t.Setenv("GEMINI_API_KEY", "g-key")
	t.Setenv("BACKEND_TIMEOUT", "5s")
	t.Setenv("TTS_PROVIDER", "google")
	t.Setenv("TWILIO_WHATSAPP_NUMBER", "+14155238886")
	t.Setenv("STORE_DRIVER", "sqlite")
	t.Setenv("SQLITE_PATH", "/tmp/voicebridge.db")
	t.Setenv("WHATSAPP_VOICE_REPLY_FOR_TEXT", "false")
	t.Setenv("TWILIO_WEBHOOK_BASE_URL", "https://voice.example.org")

	cfg, err := Load()
	require.NoError(t, err)

	assert.True(t, cfg.IsDevelopment())
	assert.Equal(t, 9000, cfg.Port)
	assert.Equal(t, "g-key", cfg.Gemini.APIKey)
	assert.Equal(t, 5*time.Second, cfg.Gemini.BackendTimeout)
	assert.Equal(t, "google", cfg.Speech.TTSProvider)
	assert.Equal(t, "+14155238886", cfg.Twilio.WhatsAppNumber)
	assert.Equal(t, "/tmp/voicebridge.db", cfg.Store.SQLitePath)
	assert.False(t, cfg.Channels.WhatsAppVoiceReplyToText)
	assert.Equal(t, "https://voice.example.org", cfg.Twilio.WebhookBaseURL)
}

func TestLoad_RequiresJWTSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWTSecret")

	t.Setenv("JWT_SECRET", "secret")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "secret", cfg.JWTSecret)
}

func TestLoad_Invalid(t *testing.T) {
	tests := map[string]map[string]string{
		"unknown driver":        {"STORE_DRIVER": "cassandra"},
		"postgres without dsn":  {"STORE_DRIVER": "postgres"},
		"unknown stt provider":  {"STT_PROVIDER": "whisper"},
		"port out of range":     {"PORT": "70000"},
		"non-positive timeout":  {"TRANSCODE_TIMEOUT": "0s"},
		"malformed spitch url":  {"SPITCH_BASE_URL": "not a url"},
		"malformed webhook url": {"TWILIO_WEBHOOK_BASE_URL": "not a url"},
	}
	for name, env := range tests {
		t.Run(name, func(t *testing.T) {
			t.Setenv("JWT_SECRET", "secret")
			for k, v := range env {
				t.Setenv(k, v)
			}
			_, err := Load()
			assert.Error(t, err)
		})
	}
}
