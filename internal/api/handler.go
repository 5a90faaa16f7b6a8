// Package api holds the HTTP surface: the REST assistant, the IVR and
// WhatsApp webhooks, and the catalog routes.
package api

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/satriahrh/voicebridge/domain"
	"github.com/satriahrh/voicebridge/domain/entities"
	"github.com/satriahrh/voicebridge/domain/repositories"
	"github.com/satriahrh/voicebridge/internal/metrics"
	"github.com/satriahrh/voicebridge/usecase"
)

const (
	channelREST     = "rest"
	channelIVR      = "ivr"
	channelWhatsApp = "whatsapp"
)

// Dependencies are the collaborators the handlers drive
type Dependencies struct {
	Speech       *usecase.SpeechService
	Conversation *usecase.ConversationService
	Chat         *usecase.ChatService
	Synthesis    *usecase.SynthesisService

	// Transcoder is the generic transcoder; WhatsAppTranscoder tries the
	// remux strategies first and then falls back to the generic one.
	Transcoder         repositories.AudioTranscoder
	WhatsAppTranscoder repositories.AudioTranscoder

	Storage   repositories.ObjectStorage
	Messenger repositories.Messenger
	Fetcher   repositories.MediaFetcher

	Interactions repositories.InteractionLogRepository
	Lessons      repositories.LessonRepository
	Profiles     repositories.ProfileRepository

	Metrics *metrics.Metrics
}

// Config tunes channel behaviour
type Config struct {
	IVRRecordAction          string
	IVRMaxLength             int
	WhatsAppVoiceReplyToText bool
	HistoryLimit             int

	// TwilioAuthToken enables webhook signature checks; WebhookBaseURL is the
	// public origin Twilio calls when it differs from the request host.
	TwilioAuthToken string
	WebhookBaseURL  string
}

// Handler implements every route
type Handler struct {
	Dependencies
	config Config
	logger *zap.Logger
}

// NewHandler creates a new handler
func NewHandler(deps Dependencies, config Config, logger *zap.Logger) *Handler {
	if config.IVRRecordAction == "" {
		config.IVRRecordAction = "/api/assistant/ivr-hook"
	}
	if config.IVRMaxLength <= 0 {
		config.IVRMaxLength = 10
	}
	if config.HistoryLimit <= 0 {
		config.HistoryLimit = 50
	}
	return &Handler{Dependencies: deps, config: config, logger: logger}
}

// transcode runs a transcoder and records the stage
func (h *Handler) transcode(ctx context.Context, channel string, t repositories.AudioTranscoder, raw []byte, format string) (*entities.CanonicalAudio, error) {
	started := time.Now()
	audio, err := t.Transcode(ctx, raw, format)
	h.Metrics.ObserveStage(channel, "transcode", started, err)
	return audio, err
}

func (h *Handler) converse(ctx context.Context, channel string, in usecase.ConverseInput) (*entities.ReplyResult, error) {
	started := time.Now()
	reply, err := h.Conversation.Converse(ctx, in)
	h.Metrics.ObserveStage(channel, "converse", started, err)
	return reply, err
}

func (h *Handler) synthesize(ctx context.Context, channel string, reply *entities.ReplyResult, prefix string) string {
	started := time.Now()
	url := h.Synthesis.SynthesizeURL(ctx, reply.Text, reply.LanguageCode, prefix)
	var err error
	if url == "" {
		err = domain.ErrSynthesisFailed
	}
	h.Metrics.ObserveStage(channel, "synthesize", started, err)
	return url
}

// sendText delivers a WhatsApp text message; failures are logged, never returned
func (h *Handler) sendText(ctx context.Context, to, body string) bool {
	sid, err := h.Messenger.SendText(ctx, to, body)
	return h.delivered(to, "text", sid, err)
}

// sendMedia delivers a WhatsApp media message; failures are logged, never returned
func (h *Handler) sendMedia(ctx context.Context, to, mediaURL, caption string) bool {
	sid, err := h.Messenger.SendMedia(ctx, to, mediaURL, caption)
	return h.delivered(to, "media", sid, err)
}

func (h *Handler) delivered(to, kind, sid string, err error) bool {
	h.Metrics.RecordDelivery(channelWhatsApp, kind, err)
	if err != nil {
		h.logger.Error("Failed to deliver WhatsApp reply",
			zap.String("to", maskAddress(to)),
			zap.String("kind", kind),
			zap.Error(fmt.Errorf("%w: %w", domain.ErrDeliveryFailed, err)))
		return false
	}
	h.logger.Info("WhatsApp reply delivered",
		zap.String("to", maskAddress(to)),
		zap.String("kind", kind),
		zap.String("sid", sid))
	return true
}

// maskAddress keeps only the last four characters of a phone address for logs
func maskAddress(addr string) string {
	r := []rune(addr)
	if len(r) <= 4 {
		return addr
	}
	return "***" + string(r[len(r)-4:])
}

// truncateText shortens user content for log fields
func truncateText(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
