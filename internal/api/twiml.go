package api

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/twilio/twilio-go/twiml"
	"go.uber.org/zap"
)

const (
	sayVoice = "alice"

	ivrWelcome       = "Welcome to VoiceBridge. Please speak after the beep."
	ivrNoReply       = "Sorry, we couldn't hear you. Please try again."
	ivrNoAudio       = "Sorry, I'm having trouble responding right now."
	ivrUnexpectedErr = "Sorry, something went wrong. Please try again later."

	// fallbackVoiceDoc is served if the TwiML encoder itself fails
	fallbackVoiceDoc = `<?xml version="1.0" encoding="UTF-8"?><Response><Say voice="alice">Sorry, something went wrong. Please try again later.</Say></Response>`
	emptyMessagesDoc = `<?xml version="1.0" encoding="UTF-8"?><Response></Response>`
)

func sayElement(message string) twiml.Element {
	return &twiml.VoiceSay{Message: message, Voice: sayVoice}
}

func (h *Handler) recordPrompt() []twiml.Element {
	return []twiml.Element{
		sayElement(ivrWelcome),
		&twiml.VoiceRecord{
			Action:    h.config.IVRRecordAction,
			Method:    http.MethodPost,
			MaxLength: strconv.Itoa(h.config.IVRMaxLength),
		},
	}
}

func playElements(url string) []twiml.Element {
	return []twiml.Element{&twiml.VoicePlay{Url: url}}
}

// writeVoice renders a voice document and always answers 200
func (h *Handler) writeVoice(c echo.Context, elements []twiml.Element) error {
	doc, err := twiml.Voice(elements)
	if err != nil {
		h.logger.Error("Failed to render voice response", zap.Error(err))
		doc = fallbackVoiceDoc
	}
	return c.Blob(http.StatusOK, echo.MIMETextXML, []byte(doc))
}

// writeAck answers a messaging webhook with an empty response document
func (h *Handler) writeAck(c echo.Context) error {
	doc, err := twiml.Messages(nil)
	if err != nil {
		h.logger.Error("Failed to render messaging response", zap.Error(err))
		doc = emptyMessagesDoc
	}
	return c.Blob(http.StatusOK, echo.MIMETextXML, []byte(doc))
}
