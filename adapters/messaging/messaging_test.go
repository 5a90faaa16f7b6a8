package messaging

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	openapi "github.com/twilio/twilio-go/rest/api/v2010"
	"go.uber.org/zap/zaptest"

	"github.com/satriahrh/voicebridge/domain"
)

type recordingCreator struct {
	params []*openapi.CreateMessageParams
	err    error
}

func (r *recordingCreator) CreateMessage(params *openapi.CreateMessageParams) (*openapi.ApiV2010Message, error) {
	r.params = append(r.params, params)
	if r.err != nil {
		return nil, r.err
	}
	sid := "SM123"
	return &openapi.ApiV2010Message{Sid: &sid}, nil
}

func TestTwilioMessenger_Send(t *testing.T) {
	creator := &recordingCreator{}
	m := &TwilioMessenger{api: creator, from: WhatsAppAddress("+14155238886"), logger: zaptest.NewLogger(t)}

	sid, err := m.SendText(context.Background(), "+2348012345678", "hello")
	require.NoError(t, err)
	assert.Equal(t, "SM123", sid)

	_, err = m.SendMedia(context.Background(), "whatsapp:+2348012345678", "https://cdn/reply.mp3", "")
	require.NoError(t, err)

	require.Len(t, creator.params, 2)
	text := creator.params[0]
	assert.Equal(t, "whatsapp:+14155238886", *text.From)
	assert.Equal(t, "whatsapp:+2348012345678", *text.To)
	assert.Equal(t, "hello", *text.Body)
	assert.Nil(t, text.MediaUrl)

	media := creator.params[1]
	assert.Equal(t, "whatsapp:+2348012345678", *media.To)
	assert.Equal(t, []string{"https://cdn/reply.mp3"}, *media.MediaUrl)
	assert.Nil(t, media.Body)
}

func TestTwilioMessenger_Errors(t *testing.T) {
	unconfigured := NewTwilioMessenger(TwilioConfig{}, zaptest.NewLogger(t))
	_, err := unconfigured.SendText(context.Background(), "+1", "hi")
	assert.ErrorIs(t, err, domain.ErrNotConfigured)

	m := &TwilioMessenger{api: &recordingCreator{err: errors.New("21211 invalid to")}, logger: zaptest.NewLogger(t)}
	_, err = m.SendText(context.Background(), "+1", "hi")
	assert.ErrorContains(t, err, "21211")
}

func TestWhatsAppAddress(t *testing.T) {
	assert.Equal(t, "whatsapp:+123", WhatsAppAddress("+123"))
	assert.Equal(t, "whatsapp:+123", WhatsAppAddress(" whatsapp:+123 "))
	assert.Equal(t, "", WhatsAppAddress(""))
}

func TestMediaFetcher_Fetch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		switch r.URL.Path {
		case "/media/ok":
			assert.True(t, ok)
			assert.Equal(t, "AC1", user)
			assert.Equal(t, "token", pass)
			w.Header().Set("Content-Type", "audio/ogg")
			w.Write([]byte("OggS"))
		case "/media/empty":
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	f := NewMediaFetcher(TwilioConfig{AccountSID: "AC1", AuthToken: "token"}, 0, zaptest.NewLogger(t))
	// the test server stands in for api.twilio.com
	f.trusted = func(string) bool { return true }

	data, err := f.Fetch(context.Background(), server.URL+"/media/ok")
	require.NoError(t, err)
	assert.Equal(t, "OggS", string(data))

	_, err = f.Fetch(context.Background(), server.URL+"/media/empty")
	assert.Error(t, err)

	_, err = f.Fetch(context.Background(), server.URL+"/media/missing")
	assert.ErrorContains(t, err, "404")
}

func TestMediaFetcher_CredentialsOnlyForTwilioHosts(t *testing.T) {
	var authHeader string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader = r.Header.Get("Authorization")
		w.Write([]byte("OggS"))
	}))
	defer server.Close()

	f := NewMediaFetcher(TwilioConfig{AccountSID: "ACsecret", AuthToken: "tok"}, 0, zaptest.NewLogger(t))

	data, err := f.Fetch(context.Background(), server.URL+"/not-twilio")
	require.NoError(t, err)
	assert.Equal(t, "OggS", string(data))
	assert.Empty(t, authHeader)

	_, err = f.Fetch(context.Background(), "not a url")
	assert.Error(t, err)
}

func TestIsTwilioHost(t *testing.T) {
	assert.True(t, IsTwilioHost("api.twilio.com"))
	assert.True(t, IsTwilioHost("API.Twilio.com."))
	assert.True(t, IsTwilioHost("media.us1.twilio.com"))
	assert.False(t, IsTwilioHost("twilio.com.attacker.net"))
	assert.False(t, IsTwilioHost("eviltwilio.com"))
	assert.False(t, IsTwilioHost("127.0.0.1"))
}
