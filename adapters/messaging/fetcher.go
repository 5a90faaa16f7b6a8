package messaging

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/satriahrh/voicebridge/domain/repositories"
)

const defaultFetchTimeout = 30 * time.Second

// MediaFetcher downloads inbound media. The Twilio account credentials are
// only attached to requests for Twilio hosts.
type MediaFetcher struct {
	client     *resty.Client
	accountSID string
	authToken  string
	trusted    func(host string) bool
	logger     *zap.Logger
}

var _ repositories.MediaFetcher = (*MediaFetcher)(nil)

// NewMediaFetcher creates a fetcher
func NewMediaFetcher(config TwilioConfig, timeout time.Duration, logger *zap.Logger) *MediaFetcher {
	if timeout <= 0 {
		timeout = defaultFetchTimeout
	}
	return &MediaFetcher{
		client:     resty.New().SetTimeout(timeout),
		accountSID: config.AccountSID,
		authToken:  config.AuthToken,
		trusted:    IsTwilioHost,
		logger:     logger,
	}
}

// IsTwilioHost reports whether host is api.twilio.com or a twilio.com subdomain
func IsTwilioHost(host string) bool {
	host = strings.ToLower(strings.TrimSuffix(host, "."))
	return host == "twilio.com" || strings.HasSuffix(host, ".twilio.com")
}

// Fetch returns the body at rawURL
func (f *MediaFetcher) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return nil, fmt.Errorf("invalid media URL: %q", rawURL)
	}

	req := f.client.R().SetContext(ctx)
	if f.accountSID != "" && f.authToken != "" {
		if f.trusted(u.Hostname()) {
			req.SetBasicAuth(f.accountSID, f.authToken)
		} else {
			f.logger.Warn("Fetching media from a non-Twilio host without credentials",
				zap.String("host", u.Hostname()))
		}
	}

	resp, err := req.Get(rawURL)
	if err != nil {
		return nil, fmt.Errorf("failed to download media: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("media download returned %d", resp.StatusCode())
	}
	if len(resp.Body()) == 0 {
		return nil, fmt.Errorf("media download returned an empty body")
	}

	f.logger.Debug("Downloaded media",
		zap.Int("size", len(resp.Body())),
		zap.String("contentType", resp.Header().Get("Content-Type")))
	return resp.Body(), nil
}
