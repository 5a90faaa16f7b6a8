package api

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/twilio/twilio-go/twiml"
	"go.uber.org/zap"

	"github.com/satriahrh/voicebridge/domain/entities"
	"github.com/satriahrh/voicebridge/usecase"
)

// IVRHook runs one call turn: prompt for a recording, or answer the recording
// with synthesized speech. Every outcome is a 200 voice document.
func (h *Handler) IVRHook(c echo.Context) (err error) {
	defer func() {
		if r := recover(); r != nil {
			h.logger.Error("IVR turn panicked",
				zap.String("channel", channelIVR),
				zap.Any("panic", r))
			err = h.writeVoice(c, []twiml.Element{sayElement(ivrUnexpectedErr)})
		}
	}()

	recordingURL := strings.TrimSpace(c.FormValue("RecordingUrl"))
	if recordingURL == "" {
		h.Metrics.RecordRequest(channelIVR, "none")
		return h.writeVoice(c, h.recordPrompt())
	}
	h.Metrics.RecordRequest(channelIVR, "audio")

	ctx := context.WithoutCancel(c.Request().Context())
	callSID := c.FormValue("CallSid")
	return h.writeVoice(c, h.ivrTurn(ctx, callSID, recordingURL))
}

func (h *Handler) ivrTurn(ctx context.Context, callSID, recordingURL string) []twiml.Element {
	logger := h.logger.With(zap.String("channel", channelIVR), zap.String("callSid", callSID))

	raw, err := h.Fetcher.Fetch(ctx, recordingURL)
	if err != nil {
		logger.Error("Failed to fetch recording", zap.String("stage", "fetch"), zap.Error(err))
		return []twiml.Element{sayElement(ivrUnexpectedErr)}
	}

	clip, err := h.ivrClip(ctx, raw)
	if err != nil {
		logger.Error("Failed to prepare recording", zap.String("stage", "transcode"), zap.Error(err))
		return []twiml.Element{sayElement(ivrUnexpectedErr)}
	}

	reply, err := h.converse(ctx, channelIVR, usecase.ConverseInput{Audio: clip})
	if err != nil {
		logger.Warn("No reply for recording", zap.String("stage", "converse"), zap.Error(err))
		return []twiml.Element{sayElement(ivrNoReply)}
	}

	audioURL := h.synthesize(ctx, channelIVR, reply, "ivr")
	if audioURL == "" {
		logger.Warn("No audio to play", zap.String("stage", "synthesize"))
		return []twiml.Element{sayElement(ivrNoAudio)}
	}

	logger.Info("IVR reply ready",
		zap.String("language", reply.LanguageCode.String()),
		zap.Int("replyLength", len(reply.Text)))
	return playElements(audioURL)
}

// ivrClip transcodes the recording, falling back to the original wav bytes
// when no strategy could decode it.
func (h *Handler) ivrClip(ctx context.Context, raw []byte) (*entities.AudioClip, error) {
	if len(raw) == 0 {
		return nil, errors.New("recording is empty")
	}

	canonical, err := h.transcode(ctx, channelIVR, h.Transcoder, raw, "wav")
	if err == nil {
		clip := canonical.Clip()
		return &clip, nil
	}

	h.Metrics.RecordFallback(channelIVR, "raw_bytes")
	h.logger.Warn("Transcoding failed, sending original recording",
		zap.String("channel", channelIVR),
		zap.Error(fmt.Errorf("transcode recording: %w", err)))
	return &entities.AudioClip{Data: raw, MIMEType: entities.WAVMIMEType}, nil
}
