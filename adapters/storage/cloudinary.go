// Package storage uploads generated audio to a public object store so that
// channels can hand a URL to the caller.
package storage

import (
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/satriahrh/voicebridge/domain"
	"github.com/satriahrh/voicebridge/domain/repositories"
)

const (
	defaultCloudinaryBaseURL = "https://api.cloudinary.com/v1_1"
	defaultUploadTimeout     = 60 * time.Second
	// audio assets are stored under the video resource type
	resourceType = "video"
)

// CloudinaryConfig holds configuration for the Cloudinary uploader
type CloudinaryConfig struct {
	CloudName string
	APIKey    string
	APISecret string
	BaseURL   string
	Timeout   time.Duration
}

// Configured reports whether every credential is present
func (c CloudinaryConfig) Configured() bool {
	return c.CloudName != "" && c.APIKey != "" && c.APISecret != ""
}

// Cloudinary implements ObjectStorage with signed uploads
type Cloudinary struct {
	config CloudinaryConfig
	client *resty.Client
	now    func() time.Time
	logger *zap.Logger
}

var _ repositories.ObjectStorage = (*Cloudinary)(nil)

type uploadResponse struct {
	SecureURL string `json:"secure_url"`
	PublicID  string `json:"public_id"`
	Error     *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// NewCloudinary creates a new Cloudinary uploader
func NewCloudinary(config CloudinaryConfig, logger *zap.Logger) *Cloudinary {
	if config.BaseURL == "" {
		config.BaseURL = defaultCloudinaryBaseURL
	}
	if config.Timeout <= 0 {
		config.Timeout = defaultUploadTimeout
	}
	if !config.Configured() {
		logger.Warn("Cloudinary credentials incomplete, uploads are disabled")
	}

	return &Cloudinary{
		config: config,
		client: resty.New().SetTimeout(config.Timeout),
		now:    time.Now,
		logger: logger,
	}
}

// Upload stores data and returns its secure URL
func (c *Cloudinary) Upload(ctx context.Context, filename string, data []byte, contentType string) (string, error) {
	if !c.config.Configured() {
		return "", domain.ErrNotConfigured
	}
	if len(data) == 0 {
		return "", fmt.Errorf("cannot upload empty file")
	}

	timestamp := strconv.FormatInt(c.now().Unix(), 10)
	endpoint := fmt.Sprintf("%s/%s/%s/upload", strings.TrimRight(c.config.BaseURL, "/"), c.config.CloudName, resourceType)

	var out uploadResponse
	resp, err := c.client.R().
		SetContext(ctx).
		SetFormData(map[string]string{
			"api_key":   c.config.APIKey,
			"timestamp": timestamp,
			"signature": sign(timestamp, c.config.APISecret),
		}).
		SetMultipartField("file", filename, contentType, bytes.NewReader(data)).
		SetResult(&out).
		SetError(&out).
		Post(endpoint)
	if err != nil {
		return "", fmt.Errorf("failed to upload to cloudinary: %w", err)
	}
	if resp.IsError() {
		msg := resp.Status()
		if out.Error != nil {
			msg = out.Error.Message
		}
		return "", fmt.Errorf("cloudinary upload rejected (%d): %s", resp.StatusCode(), msg)
	}
	if out.SecureURL == "" {
		return "", fmt.Errorf("cloudinary response missing secure_url")
	}

	c.logger.Info("Uploaded file",
		zap.String("filename", filename),
		zap.String("publicID", out.PublicID),
		zap.Int("size", len(data)))
	return out.SecureURL, nil
}

// sign computes the upload signature over the signed parameters followed by the secret
func sign(timestamp, secret string) string {
	sum := sha1.Sum([]byte("timestamp=" + timestamp + secret))
	return hex.EncodeToString(sum[:])
}
