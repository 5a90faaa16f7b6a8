package api

import (
	"context"
	"errors"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/satriahrh/voicebridge/domain"
	"github.com/satriahrh/voicebridge/domain/entities"
	"github.com/satriahrh/voicebridge/usecase"
)

const (
	waDownloadFailed = "Sorry, I couldn't access your audio message. Can you try again?"
	waAudioFormat    = "I couldn't process your audio format. Could you try sending a text message instead?"
	waAudioEngine    = "I had trouble understanding your audio. Could you try sending a text message instead?"
	waAudioEmpty     = "I couldn't understand anything in your audio message. Could you try speaking more clearly or send a text?"
	waTextFailed     = "Sorry, I couldn't understand your text message. Can you rephrase?"
	waNoInput        = "I didn't receive any message. Please send an audio or text message."
	waNoReply        = "I'm sorry, I couldn't generate a response at this time. Please try again."
	waUnexpected     = "An unexpected error occurred while trying to send my response. Please try again later."

	defaultWhatsAppFormat = "ogg"
)

// whatsappMessage is the subset of the inbound webhook form we consume
type whatsappMessage struct {
	From         string
	Body         string
	MessageSID   string
	MediaURL     string
	MediaType    string
	HasAudioNote bool
}

func parseWhatsAppMessage(c echo.Context) whatsappMessage {
	msg := whatsappMessage{
		From:       strings.TrimSpace(c.FormValue("From")),
		Body:       strings.TrimSpace(c.FormValue("Body")),
		MessageSID: c.FormValue("MessageSid"),
		MediaURL:   strings.TrimSpace(c.FormValue("MediaUrl0")),
		MediaType:  strings.TrimSpace(c.FormValue("MediaContentType0")),
	}
	if msg.From == "" {
		msg.From = "anonymous"
	}
	msg.HasAudioNote = msg.MediaURL != "" && strings.HasPrefix(msg.MediaType, "audio")
	return msg
}

// WhatsAppHook answers an inbound WhatsApp message through the messaging API.
// The webhook itself always acknowledges with an empty 200 document.
func (h *Handler) WhatsAppHook(c echo.Context) error {
	msg := parseWhatsAppMessage(c)
	ctx := context.WithoutCancel(c.Request().Context())
	logger := h.logger.With(
		zap.String("channel", channelWhatsApp),
		zap.String("messageSid", msg.MessageSID),
		zap.String("from", maskAddress(msg.From)))

	func() {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("WhatsApp turn panicked", zap.Any("panic", r))
				h.sendText(ctx, msg.From, waUnexpected)
			}
		}()
		h.whatsappTurn(ctx, logger, msg)
	}()

	return h.writeAck(c)
}

func (h *Handler) whatsappTurn(ctx context.Context, logger *zap.Logger, msg whatsappMessage) {
	var (
		reply     *entities.ReplyResult
		fromAudio bool
	)

	switch {
	case msg.HasAudioNote:
		h.Metrics.RecordRequest(channelWhatsApp, "audio")
		fromAudio = true
		var apology string
		reply, apology = h.whatsappAudioReply(ctx, logger, msg)
		if reply == nil {
			h.sendText(ctx, msg.From, apology)
			return
		}

	case msg.Body != "":
		h.Metrics.RecordRequest(channelWhatsApp, "text")
		var err error
		reply, err = h.converse(ctx, channelWhatsApp, usecase.ConverseInput{Text: msg.Body})
		if err != nil {
			logger.Warn("No reply for text message",
				zap.String("stage", "converse"),
				zap.String("text", truncateText(msg.Body, 50)),
				zap.Error(err))
			h.sendText(ctx, msg.From, waTextFailed)
			return
		}

	default:
		h.Metrics.RecordRequest(channelWhatsApp, "none")
		logger.Warn("WhatsApp message had no audio or text")
		h.sendText(ctx, msg.From, waNoInput)
		return
	}

	h.deliverWhatsAppReply(ctx, logger, msg.From, reply, fromAudio)
}

// whatsappAudioReply returns a reply, or nil and the apology to send instead
func (h *Handler) whatsappAudioReply(ctx context.Context, logger *zap.Logger, msg whatsappMessage) (*entities.ReplyResult, string) {
	raw, err := h.Fetcher.Fetch(ctx, msg.MediaURL)
	if err != nil {
		logger.Error("Failed to download voice note", zap.String("stage", "fetch"), zap.Error(err))
		return nil, waDownloadFailed
	}
	logger.Info("Downloaded voice note", zap.Int("size", len(raw)), zap.String("mediaType", msg.MediaType))

	format := entities.FormatForMIMEType(msg.MediaType)
	if format == "" {
		format = defaultWhatsAppFormat
	}

	canonical, err := h.transcode(ctx, channelWhatsApp, h.WhatsAppTranscoder, raw, format)
	if err != nil {
		logger.Error("Failed to process voice note",
			zap.String("stage", "transcode"),
			zap.String("format", format),
			zap.Error(err))
		return nil, waAudioFormat
	}

	clip := canonical.Clip()
	reply, err := h.converse(ctx, channelWhatsApp, usecase.ConverseInput{Audio: &clip})
	if errors.Is(err, domain.ErrEngineUnavailable) {
		logger.Warn("Engine rejected transcoded audio, retrying with original bytes",
			zap.String("stage", "converse"),
			zap.Error(err))
		h.Metrics.RecordFallback(channelWhatsApp, "raw_bytes")

		original := &entities.AudioClip{Data: raw, MIMEType: entities.MIMETypeForFormat(format)}
		reply, err = h.converse(ctx, channelWhatsApp, usecase.ConverseInput{Audio: original})
		if errors.Is(err, domain.ErrEngineUnavailable) {
			logger.Error("Engine failed on original bytes", zap.String("stage", "converse"), zap.Error(err))
			return nil, waAudioEngine
		}
	}
	if err != nil {
		logger.Warn("No reply for voice note", zap.String("stage", "converse"), zap.Error(err))
		return nil, waAudioEmpty
	}
	return reply, ""
}

// deliverWhatsAppReply sends audio plus text when synthesis succeeds and text only otherwise
func (h *Handler) deliverWhatsAppReply(ctx context.Context, logger *zap.Logger, to string, reply *entities.ReplyResult, fromAudio bool) {
	if reply == nil || reply.Validate() != nil {
		logger.Warn("Reply was empty, sending apology")
		h.sendText(ctx, to, waNoReply)
		return
	}

	audioURL := ""
	if fromAudio || h.config.WhatsAppVoiceReplyToText {
		audioURL = h.synthesize(ctx, channelWhatsApp, reply, "wa")
	}

	if audioURL != "" {
		h.sendMedia(ctx, to, audioURL, reply.Text)
		h.sendText(ctx, to, reply.Text)
		logger.Info("WhatsApp audio and text reply sent", zap.String("language", reply.LanguageCode.String()))
		return
	}

	h.sendText(ctx, to, reply.Text)
	logger.Info("WhatsApp text reply sent", zap.String("language", reply.LanguageCode.String()))
}
