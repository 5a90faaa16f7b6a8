// Package config loads process configuration from the environment and an
// optional .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config is the full process configuration. Missing service credentials are
// allowed: the affected capability degrades instead of failing startup.
type Config struct {
	AppEnv       string `mapstructure:"app_env"`
	Port         int    `mapstructure:"port" validate:"min=1,max=65535"`
	JWTSecret    string `mapstructure:"jwt_secret" validate:"required"`
	MockBackends bool   `mapstructure:"mock_backends"`

	Gemini     GeminiConfig     `mapstructure:",squash"`
	Speech     SpeechConfig     `mapstructure:",squash"`
	Cloudinary CloudinaryConfig `mapstructure:",squash"`
	Twilio     TwilioConfig     `mapstructure:",squash"`
	Store      StoreConfig      `mapstructure:",squash"`
	Audio      AudioConfig      `mapstructure:",squash"`
	Channels   ChannelConfig    `mapstructure:",squash"`
}

type GeminiConfig struct {
	APIKey         string        `mapstructure:"gemini_api_key"`
	Model          string        `mapstructure:"gemini_model" validate:"required"`
	BackendTimeout time.Duration `mapstructure:"backend_timeout" validate:"gt=0"`
}

type SpeechConfig struct {
	STTProvider           string `mapstructure:"stt_provider" validate:"oneof=spitch google"`
	TTSProvider           string `mapstructure:"tts_provider" validate:"oneof=spitch google"`
	SpitchAPIKey          string `mapstructure:"spitch_api_key"`
	SpitchBaseURL         string `mapstructure:"spitch_base_url" validate:"omitempty,url"`
	GoogleAPIKey          string `mapstructure:"google_api_key"`
	GoogleCredentialsJSON string `mapstructure:"google_credentials_json"`
}

type CloudinaryConfig struct {
	CloudName string `mapstructure:"cloudinary_cloud_name"`
	APIKey    string `mapstructure:"cloudinary_api_key"`
	APISecret string `mapstructure:"cloudinary_api_secret"`
	BaseURL   string `mapstructure:"cloudinary_base_url" validate:"omitempty,url"`
}

type TwilioConfig struct {
	AccountSID     string `mapstructure:"twilio_sid"`
	AuthToken      string `mapstructure:"twilio_auth_token"`
	WhatsAppNumber string `mapstructure:"twilio_whatsapp_number"`
	WebhookBaseURL string `mapstructure:"twilio_webhook_base_url" validate:"omitempty,url"`
}

type StoreConfig struct {
	Driver          string `mapstructure:"store_driver" validate:"oneof=memory mongo postgres sqlite"`
	MongoURI        string `mapstructure:"mongodb_uri"`
	MongoDatabase   string `mapstructure:"mongodb_database"`
	DatabaseURL     string `mapstructure:"database_url" validate:"required_if=Driver postgres"`
	SQLitePath      string `mapstructure:"sqlite_path" validate:"required_if=Driver sqlite"`
	SeedLessons     bool   `mapstructure:"seed_lessons"`
	HistoryPageSize int    `mapstructure:"history_page_size" validate:"min=1"`
}

type AudioConfig struct {
	FFmpegPath       string        `mapstructure:"ffmpeg_path" validate:"required"`
	TranscodeTimeout time.Duration `mapstructure:"transcode_timeout" validate:"gt=0"`
	TempDir          string        `mapstructure:"temp_dir"`
}

type ChannelConfig struct {
	IVRRecordAction          string `mapstructure:"ivr_record_action" validate:"required"`
	IVRMaxLength             int    `mapstructure:"ivr_max_length" validate:"min=1"`
	WhatsAppVoiceReplyToText bool   `mapstructure:"whatsapp_voice_reply_for_text"`
}

// IsDevelopment reports whether development logging should be used
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

// Load reads .env (when present) and the environment, applies defaults and validates the result
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	v := viper.New()
	v.AutomaticEnv()
	setDefault(v)

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	if err := validator.New().Struct(&config); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &config, nil
}

// setDefault registers every key so AutomaticEnv can resolve it during Unmarshal
func setDefault(v *viper.Viper) {
	v.SetDefault("APP_ENV", "production")
	v.SetDefault("PORT", 8080)
	// no default: a missing secret must fail validation
	_ = v.BindEnv("JWT_SECRET")
	v.SetDefault("MOCK_BACKENDS", false)

	v.SetDefault("GEMINI_API_KEY", "")
	v.SetDefault("GEMINI_MODEL", "gemini-2.0-flash")
	v.SetDefault("BACKEND_TIMEOUT", "30s")

	v.SetDefault("STT_PROVIDER", "spitch")
	v.SetDefault("TTS_PROVIDER", "spitch")
	v.SetDefault("SPITCH_API_KEY", "")
	v.SetDefault("SPITCH_BASE_URL", "")
	v.SetDefault("GOOGLE_API_KEY", "")
	v.SetDefault("GOOGLE_CREDENTIALS_JSON", "")

	v.SetDefault("CLOUDINARY_CLOUD_NAME", "")
	v.SetDefault("CLOUDINARY_API_KEY", "")
	v.SetDefault("CLOUDINARY_API_SECRET", "")
	v.SetDefault("CLOUDINARY_BASE_URL", "")

	v.SetDefault("TWILIO_SID", "")
	v.SetDefault("TWILIO_AUTH_TOKEN", "")
	v.SetDefault("TWILIO_WHATSAPP_NUMBER", "")
	v.SetDefault("TWILIO_WEBHOOK_BASE_URL", "")

	v.SetDefault("STORE_DRIVER", "memory")
	v.SetDefault("MONGODB_URI", "")
	v.SetDefault("MONGODB_DATABASE", "voicebridge")
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("SQLITE_PATH", "")
	v.SetDefault("SEED_LESSONS", true)
	v.SetDefault("HISTORY_PAGE_SIZE", 50)

	v.SetDefault("FFMPEG_PATH", "ffmpeg")
	v.SetDefault("TRANSCODE_TIMEOUT", "30s")
	v.SetDefault("TEMP_DIR", "")

	v.SetDefault("IVR_RECORD_ACTION", "/api/assistant/ivr-hook")
	v.SetDefault("IVR_MAX_LENGTH", 10)
	v.SetDefault("WHATSAPP_VOICE_REPLY_FOR_TEXT", true)
}
