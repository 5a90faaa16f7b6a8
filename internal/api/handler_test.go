package api

import (
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/satriahrh/voicebridge/adapters"
	"github.com/satriahrh/voicebridge/adapters/mock"
	"github.com/satriahrh/voicebridge/domain/entities"
	"github.com/satriahrh/voicebridge/internal/auth"
	"github.com/satriahrh/voicebridge/internal/metrics"
	"github.com/satriahrh/voicebridge/usecase"
)

const testUserID = "user-1"

type fixture struct {
	e      *echo.Echo
	authn  *auth.Auth
	config Config

	generator    *mock.Generator
	stt          *mock.SpeechToText
	synthesizer  *mock.Synthesizer
	storage      *mock.Storage
	messenger    *mock.Messenger
	fetcher      *mock.Fetcher
	transcoder   *mock.Transcoder
	waTranscoder *mock.Transcoder

	interactions *adapters.MemoryInteractionLogRepository
	lessons      *adapters.MemoryLessonRepository
	profiles     *adapters.MemoryProfileRepository
}

func newFixture(t *testing.T, lessons ...*entities.Lesson) *fixture {
	t.Helper()
	return &fixture{
		authn:        auth.New("test-secret", time.Hour),
		config:       Config{WhatsAppVoiceReplyToText: true},
		generator:    &mock.Generator{},
		stt:          &mock.SpeechToText{},
		synthesizer:  &mock.Synthesizer{},
		storage:      &mock.Storage{},
		messenger:    &mock.Messenger{},
		fetcher:      &mock.Fetcher{Media: map[string][]byte{}},
		transcoder:   &mock.Transcoder{},
		waTranscoder: &mock.Transcoder{},
		interactions: adapters.NewMemoryInteractionLogRepository(),
		lessons:      adapters.NewMemoryLessonRepository(lessons...),
		profiles:     adapters.NewMemoryProfileRepository(),
	}
}

// server builds the echo instance; call it after adjusting the fakes
func (f *fixture) server(t *testing.T) *echo.Echo {
	t.Helper()
	if f.e != nil {
		return f.e
	}
	logger := zaptest.NewLogger(t)

	deps := Dependencies{
		Speech:             usecase.NewSpeechService(f.stt, &mock.Translator{}, time.Second, logger),
		Conversation:       usecase.NewConversationService(f.generator, time.Second, logger),
		Chat:               usecase.NewChatService(f.generator, time.Second, logger),
		Synthesis:          usecase.NewSynthesisService(f.synthesizer, &mock.Encoder{}, f.storage, time.Second, logger),
		Transcoder:         f.transcoder,
		WhatsAppTranscoder: f.waTranscoder,
		Storage:            f.storage,
		Messenger:          f.messenger,
		Fetcher:            f.fetcher,
		Interactions:       f.interactions,
		Lessons:            f.lessons,
		Profiles:           f.profiles,
		Metrics:            metrics.NewMetrics(prometheus.NewRegistry()),
	}

	e := echo.New()
	e.Validator = NewValidator()
	InitRoutes(e, NewHandler(deps, f.config, logger), f.authn, logger)
	f.e = e
	return e
}

func (f *fixture) token(t *testing.T) string {
	t.Helper()
	token, err := f.authn.GenerateUserToken(testUserID)
	require.NoError(t, err)
	return token
}

func (f *fixture) do(t *testing.T, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	f.server(t).ServeHTTP(rec, req)
	return rec
}

func (f *fixture) postForm(t *testing.T, path string, form url.Values) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	return f.do(t, req)
}

func (f *fixture) authed(t *testing.T, method, path string, body io.Reader, contentType string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set(echo.HeaderContentType, contentType)
	}
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+f.token(t))
	return f.do(t, req)
}

func TestHealth(t *testing.T) {
	f := newFixture(t)
	rec := f.do(t, httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"status":"ok","service":"voicebridge"}`, rec.Body.String())
}

func TestMetricsRoute(t *testing.T) {
	f := newFixture(t)
	f.postForm(t, "/api/assistant/ivr-hook", url.Values{})

	rec := f.do(t, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `voicebridge_requests_total{channel="ivr",input="none"} 1`)
}

func TestMaskAddress(t *testing.T) {
	require.Equal(t, "***0001", maskAddress("whatsapp:+2348000000001"))
	require.Equal(t, "123", maskAddress("123"))
}

func TestTruncateText(t *testing.T) {
	require.Equal(t, "hello", truncateText("hello", 10))
	require.Equal(t, "hel...", truncateText("hello", 3))
}
