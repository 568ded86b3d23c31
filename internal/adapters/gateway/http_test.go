package gateway

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/secureguard/phishguard/internal/adapters/classifier"
	"github.com/secureguard/phishguard/internal/adapters/intel"
	"github.com/secureguard/phishguard/internal/adapters/storage"
	"github.com/secureguard/phishguard/internal/core"
)

func newTestHandler(t *testing.T) http.Handler {
	t.Helper()
	logger := zap.NewNop()

	engine := core.NewAnalysisEngine(
		classifier.NewBayesClassifier(logger),
		core.NewTyposquatDetector([]string{"google.com", "microsoft.com", "secureguard.ai"}),
		intel.NewSafeBrowsingProvider("", intel.FailClosed, 0, logger),
		logger,
		0,
	)
	service := core.NewAnalysisService(storage.NewMemoryRepository(logger), engine, nil, logger)

	return NewHTTPGateway(service, logger, "127.0.0.1:0", []string{"*"}).Handler()
}

func postAnalyze(t *testing.T, handler http.Handler, body, user string) incidentResponse {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/v1/analyze", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if user != "" {
		req.Header.Set("X-User-ID", user)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp incidentResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestHTTPGateway_Health(t *testing.T) {
	handler := newTestHandler(t)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestHTTPGateway_AnalyzePhishing(t *testing.T) {
	handler := newTestHandler(t)

	resp := postAnalyze(t, handler, `{
		"sender": "security-alert@paypal-support.com",
		"subject": "URGENT: verify your account",
		"body": "Your account has been suspended. Click http://g00gle.com/login to verify your password now."
	}`, "user-1")

	assert.NotEmpty(t, resp.ID)
	assert.Equal(t, "confirmed_phishing", resp.Status)
	assert.Equal(t, "critical", resp.ThreatLevel)
	assert.GreaterOrEqual(t, resp.Score, 0.95)

	labels := make([]string, 0, len(resp.Report.Indicators))
	for _, indicator := range resp.Report.Indicators {
		labels = append(labels, indicator.Label)
	}
	assert.Contains(t, labels, "Typosquatting Detected")
}

func TestHTTPGateway_AnalyzeBenign(t *testing.T) {
	handler := newTestHandler(t)

	resp := postAnalyze(t, handler, `{
		"sender": "colleague@company.com",
		"subject": "Lunch tomorrow?",
		"body": "Hey, are we still meeting for lunch today?"
	}`, "user-1")

	assert.Equal(t, "safe", resp.Status)
	assert.Equal(t, "low", resp.ThreatLevel)
}

func TestHTTPGateway_AnalyzeInvalidBody(t *testing.T) {
	handler := newTestHandler(t)

	req := httptest.NewRequest(http.MethodPost, "/v1/analyze", strings.NewReader("not json"))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHTTPGateway_GetIncident(t *testing.T) {
	handler := newTestHandler(t)

	created := postAnalyze(t, handler, `{"body": "plain text"}`, "user-1")

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/incidents/"+created.ID, nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var resp incidentResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, created.ID, resp.ID)
	assert.Equal(t, "unknown", resp.Sender)
	assert.Equal(t, "No Subject", resp.Subject)
}

func TestHTTPGateway_GetUnknownIncident(t *testing.T) {
	handler := newTestHandler(t)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/incidents/does-not-exist", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHTTPGateway_ListIncidents(t *testing.T) {
	handler := newTestHandler(t)

	postAnalyze(t, handler, `{"body": "first"}`, "user-1")
	postAnalyze(t, handler, `{"body": "second"}`, "user-1")
	postAnalyze(t, handler, `{"body": "third"}`, "user-2")

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/v1/incidents", nil)
	req.Header.Set("X-User-ID", "user-1")
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp []incidentResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Len(t, resp, 2)

	// user_id query overrides the header
	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/v1/incidents?user_id=user-2", nil)
	req.Header.Set("X-User-ID", "user-1")
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	resp = nil
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Len(t, resp, 1)
}

func TestHTTPGateway_FalsePositiveOverride(t *testing.T) {
	handler := newTestHandler(t)

	created := postAnalyze(t, handler, `{
		"sender": "security-alert@paypal-support.com",
		"subject": "URGENT: verify your account",
		"body": "Click http://g00gle.com/login to verify your account now"
	}`, "user-1")
	require.Equal(t, "confirmed_phishing", created.Status)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/incidents/"+created.ID+"/false-positive", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var resp incidentResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "false_positive", resp.Status)
	// The recorded evidence survives the override
	assert.Equal(t, "critical", resp.ThreatLevel)

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/incidents/nope/false-positive", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
