package api

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/satriahrh/voicebridge/internal/auth"
)

// InitRoutes initializes all HTTP routes
func InitRoutes(e *echo.Echo, h *Handler, authn *auth.Auth, logger *zap.Logger) {
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "ok",
			"service": "voicebridge",
		})
	})
	e.GET("/metrics", echo.WrapHandler(h.Metrics.Handler()))

	api := e.Group("/api")

	// Twilio webhooks and the public catalog
	assistant := api.Group("/assistant")
	assistant.GET("/topic-lessons", h.TopicLessons)
	signed := h.twilioSignature()
	assistant.POST("/ivr-hook", h.IVRHook, signed)
	assistant.POST("/whatsapp-hook", h.WhatsAppHook, signed)

	protected := authn.Middleware(logger)
	assistant.POST("/query", h.Query, protected)
	assistant.POST("/voice-upload", h.VoiceUpload, protected)

	api.GET("/logs/query-history", h.QueryHistory, protected)

	user := api.Group("/user", protected)
	user.GET("/profile", h.GetProfile)
	user.PUT("/profile", h.UpdateProfile)
}
