// Package messaging delivers replies over Twilio and fetches inbound media.
package messaging

import (
	"context"
	"fmt"
	"strings"

	"github.com/twilio/twilio-go"
	openapi "github.com/twilio/twilio-go/rest/api/v2010"
	"go.uber.org/zap"

	"github.com/satriahrh/voicebridge/domain"
	"github.com/satriahrh/voicebridge/domain/repositories"
)

const whatsappPrefix = "whatsapp:"

// TwilioConfig holds the account credentials and the sender number
type TwilioConfig struct {
	AccountSID     string
	AuthToken      string
	WhatsAppNumber string
}

// Configured reports whether outbound messages can be sent
func (c TwilioConfig) Configured() bool {
	return c.AccountSID != "" && c.AuthToken != "" && c.WhatsAppNumber != ""
}

type messageCreator interface {
	CreateMessage(params *openapi.CreateMessageParams) (*openapi.ApiV2010Message, error)
}

// TwilioMessenger implements Messenger for WhatsApp over the Twilio REST API
type TwilioMessenger struct {
	api    messageCreator
	from   string
	logger *zap.Logger
}

var _ repositories.Messenger = (*TwilioMessenger)(nil)

// NewTwilioMessenger creates a messenger. Without credentials every send fails with domain.ErrNotConfigured.
func NewTwilioMessenger(config TwilioConfig, logger *zap.Logger) *TwilioMessenger {
	m := &TwilioMessenger{from: WhatsAppAddress(config.WhatsAppNumber), logger: logger}
	if !config.Configured() {
		logger.Warn("Twilio credentials incomplete, WhatsApp delivery is disabled")
		return m
	}

	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: config.AccountSID,
		Password: config.AuthToken,
	})
	m.api = client.Api
	return m
}

// SendText sends a plain text WhatsApp message and returns the message SID
func (m *TwilioMessenger) SendText(ctx context.Context, to, body string) (string, error) {
	params := &openapi.CreateMessageParams{}
	params.SetBody(body)
	return m.send(ctx, to, params)
}

// SendMedia sends a WhatsApp message carrying a media attachment
func (m *TwilioMessenger) SendMedia(ctx context.Context, to, mediaURL, caption string) (string, error) {
	params := &openapi.CreateMessageParams{}
	params.SetMediaUrl([]string{mediaURL})
	if caption != "" {
		params.SetBody(caption)
	}
	return m.send(ctx, to, params)
}

func (m *TwilioMessenger) send(ctx context.Context, to string, params *openapi.CreateMessageParams) (string, error) {
	if m.api == nil {
		return "", domain.ErrNotConfigured
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	params.SetFrom(m.from)
	params.SetTo(WhatsAppAddress(to))

	resp, err := m.api.CreateMessage(params)
	if err != nil {
		return "", fmt.Errorf("failed to send whatsapp message: %w", err)
	}

	sid := ""
	if resp != nil && resp.Sid != nil {
		sid = *resp.Sid
	}
	m.logger.Info("WhatsApp message sent",
		zap.String("to", *params.To),
		zap.String("sid", sid),
		zap.Bool("media", params.MediaUrl != nil))
	return sid, nil
}

// WhatsAppAddress ensures a number carries the whatsapp: channel prefix
func WhatsAppAddress(number string) string {
	number = strings.TrimSpace(number)
	if number == "" || strings.HasPrefix(number, whatsappPrefix) {
		return number
	}
	return whatsappPrefix + number
}
