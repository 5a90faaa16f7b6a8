package repositories

import "context"

// Messenger sends messages to a phone-number-addressed conversation
type Messenger interface {
	// SendText returns the transport message identifier
	SendText(ctx context.Context, to, body string) (string, error)
	// SendMedia sends a media message with a caption
	SendMedia(ctx context.Context, to, mediaURL, caption string) (string, error)
}

// MediaFetcher retrieves access-controlled media such as inbound voice notes
// and call recordings.
type MediaFetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}
