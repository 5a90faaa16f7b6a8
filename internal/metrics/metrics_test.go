package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics_Recording(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())

	m.RecordRequest("whatsapp", "audio")
	m.ObserveStage("whatsapp", "converse", time.Now(), nil)
	m.ObserveStage("whatsapp", "converse", time.Now(), errors.New("timeout"))
	m.RecordDelivery("whatsapp", "media", nil)
	m.RecordDelivery("whatsapp", "text", errors.New("21211"))
	m.RecordFallback("whatsapp", "raw_bytes")

	assert.Equal(t, 1.0, testutil.ToFloat64(m.RequestsTotal.WithLabelValues("whatsapp", "audio")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.StageFailures.WithLabelValues("whatsapp", "converse")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Deliveries.WithLabelValues("whatsapp", "media", "sent")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Deliveries.WithLabelValues("whatsapp", "text", "failed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.AudioFallbacks.WithLabelValues("whatsapp", "raw_bytes")))
}

func TestMetrics_Handler(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())
	m.RecordRequest("rest", "text")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `voicebridge_requests_total{channel="rest",input="text"} 1`)
}
