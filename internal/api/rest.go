package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/satriahrh/voicebridge/domain"
	"github.com/satriahrh/voicebridge/domain/entities"
	"github.com/satriahrh/voicebridge/internal/auth"
)

const (
	defaultCategory     = "general"
	defaultUploadFormat = "webm"
	maxUploadSize       = 25 << 20
)

// Query answers a text question in the caller's language
func (h *Handler) Query(c echo.Context) error {
	ctx := c.Request().Context()
	userID := auth.UserID(c)
	h.Metrics.RecordRequest(channelREST, "text")

	var req QueryRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid request format",
		})
	}
	req.Text = strings.TrimSpace(req.Text)
	if req.Text == "" {
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "missing_text",
			Message: "Missing query text",
		})
	}

	lang := h.requestLanguage(ctx, userID, req.Language)
	category := categoryOrDefault(req.Category)

	reply, err := h.ask(ctx, req.Text, lang)
	if err != nil {
		return h.engineError(c, userID, err)
	}

	audioURL := h.synthesize(ctx, channelREST, reply, "assistant")
	h.logInteraction(ctx, userID, req.Text, reply, category)

	return c.JSON(http.StatusOK, QueryResponse{
		Query:    req.Text,
		Response: reply.Text,
		Language: reply.LanguageCode,
		AudioURL: nullable(audioURL),
	})
}

// VoiceUpload transcribes an uploaded recording and answers it in the caller's language
func (h *Handler) VoiceUpload(c echo.Context) error {
	ctx := c.Request().Context()
	userID := auth.UserID(c)
	h.Metrics.RecordRequest(channelREST, "audio")

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "missing_audio",
			Message: "No audio provided",
		})
	}
	if fileHeader.Size > maxUploadSize {
		return c.JSON(http.StatusRequestEntityTooLarge, ErrorResponse{
			Error:   "audio_too_large",
			Message: fmt.Sprintf("Audio must be smaller than %d MB", maxUploadSize>>20),
		})
	}

	file, err := fileHeader.Open()
	if err != nil {
		h.logger.Error("Failed to open uploaded audio", zap.Error(err))
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "missing_audio", Message: "No audio provided"})
	}
	defer file.Close()

	raw, err := io.ReadAll(file)
	if err != nil || len(raw) == 0 {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "missing_audio", Message: "No audio provided"})
	}

	lang := h.requestLanguage(ctx, userID, c.FormValue("language"))
	category := categoryOrDefault(c.FormValue("category"))
	format := uploadFormat(fileHeader.Filename)

	canonical, err := h.transcode(ctx, channelREST, h.Transcoder, raw, format)
	if err != nil {
		h.logger.Error("Failed to transcode uploaded audio",
			zap.String("channel", channelREST),
			zap.String("stage", "transcode"),
			zap.String("format", format),
			zap.Int("size", len(raw)),
			zap.Error(err))
		return c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "unsupported_audio",
			Message: "Audio format could not be processed",
		})
	}

	started := time.Now()
	transcript, err := h.Speech.Transcribe(ctx, canonical, lang)
	h.Metrics.ObserveStage(channelREST, "transcribe", started, err)
	if err != nil {
		h.logger.Error("Speech-to-text failed",
			zap.String("channel", channelREST),
			zap.String("stage", "transcribe"),
			zap.String("language", lang.String()),
			zap.Error(err))
		return c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "stt_failed",
			Message: "STT failed",
		})
	}

	reply, err := h.ask(ctx, transcript.Text, lang)
	if err != nil {
		return h.engineError(c, userID, err)
	}

	audioURL := h.synthesize(ctx, channelREST, reply, "voice")
	inputURL := h.uploadInput(ctx, raw, format, fileHeader.Header.Get(echo.HeaderContentType))
	h.logInteraction(ctx, userID, transcript.Text, reply, category)

	return c.JSON(http.StatusOK, QueryResponse{
		Query:                 transcript.Text,
		Response:              reply.Text,
		Language:              reply.LanguageCode,
		AudioURL:              nullable(audioURL),
		UploadedInputAudioURL: nullable(inputURL),
	})
}

func (h *Handler) ask(ctx context.Context, text string, lang entities.LanguageCode) (*entities.ReplyResult, error) {
	started := time.Now()
	reply, err := h.Chat.Ask(ctx, text, lang)
	h.Metrics.ObserveStage(channelREST, "ask", started, err)
	return reply, err
}

func (h *Handler) engineError(c echo.Context, userID string, err error) error {
	h.logger.Error("Conversational engine failed",
		zap.String("channel", channelREST),
		zap.String("stage", "ask"),
		zap.String("user", userID),
		zap.Bool("emptyReply", errors.Is(err, domain.ErrEmptyReply)),
		zap.Error(err))
	return c.JSON(http.StatusServiceUnavailable, ErrorResponse{
		Error:   "engine_unavailable",
		Message: "The assistant could not answer right now",
	})
}

// requestLanguage picks the explicit language, then the profile preference, then English
func (h *Handler) requestLanguage(ctx context.Context, userID, explicit string) entities.LanguageCode {
	if strings.TrimSpace(explicit) != "" {
		return entities.ParseLanguageCode(explicit)
	}
	if userID == "" || h.Profiles == nil {
		return entities.DefaultLanguage
	}

	profile, err := h.Profiles.GetByUserID(ctx, userID)
	if err != nil {
		h.logger.Warn("Failed to read profile language", zap.String("user", userID), zap.Error(err))
		return entities.DefaultLanguage
	}
	if profile == nil {
		return entities.DefaultLanguage
	}
	return entities.ParseLanguageCode(profile.Language.String())
}

// uploadInput stores the caller's original recording; failures only drop the URL
func (h *Handler) uploadInput(ctx context.Context, raw []byte, format, contentType string) string {
	if contentType == "" {
		contentType = entities.MIMETypeForFormat(format)
	}
	filename := fmt.Sprintf("input_%s.%s", strings.ReplaceAll(uuid.New().String(), "-", ""), format)

	url, err := h.Storage.Upload(ctx, filename, raw, contentType)
	if err != nil {
		h.logger.Warn("Failed to upload input audio",
			zap.String("channel", channelREST),
			zap.String("stage", "upload_input"),
			zap.Error(err))
		return ""
	}
	return url
}

func (h *Handler) logInteraction(ctx context.Context, userID, query string, reply *entities.ReplyResult, category string) {
	entry := &entities.InteractionLogEntry{
		UserID:   userID,
		Query:    query,
		Response: reply.Text,
		Category: category,
		Language: reply.LanguageCode,
	}
	if err := h.Interactions.Create(ctx, entry); err != nil {
		h.logger.Error("Failed to record interaction",
			zap.String("user", userID),
			zap.String("query", truncateText(query, 50)),
			zap.Error(err))
	}
}

func categoryOrDefault(category string) string {
	category = strings.TrimSpace(category)
	if category == "" {
		return defaultCategory
	}
	return category
}

func uploadFormat(filename string) string {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))
	if ext == "" {
		return defaultUploadFormat
	}
	return ext
}
