package intel

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/secureguard/phishguard/internal/core"
)

func TestParseFailPolicy(t *testing.T) {
	policy, err := ParseFailPolicy("open")
	require.NoError(t, err)
	assert.Equal(t, FailOpen, policy)

	policy, err = ParseFailPolicy("closed")
	require.NoError(t, err)
	assert.Equal(t, FailClosed, policy)

	_, err = ParseFailPolicy("maybe")
	assert.Error(t, err)
}

func TestSafeBrowsing_Heuristic(t *testing.T) {
	provider := NewSafeBrowsingProvider("", FailClosed, time.Second, zap.NewNop())

	tests := []struct {
		name       string
		url        string
		expectSafe bool
	}{
		{name: "Clean URL", url: "https://example.com/page", expectSafe: true},
		{name: "Malicious keyword", url: "http://malicious-site.example", expectSafe: false},
		{name: "Secure-login keyword", url: "http://secure-login.example/signin", expectSafe: false},
		{name: "Bank-verify keyword", url: "http://bank-verify.example", expectSafe: false},
		{name: "Phish keyword case insensitive", url: "http://PHISH.example", expectSafe: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := provider.CheckURL(context.Background(), tt.url)
			assert.Equal(t, tt.expectSafe, result.Safe)
			assert.Equal(t, "GoogleSB", result.Provider)
			if !tt.expectSafe {
				assert.Equal(t, "SOCIAL_ENGINEERING", result.ThreatType)
			}
		})
	}
}

func TestSafeBrowsing_HostedLookup(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		w.Write([]byte(`{"matches":[{"threatType":"SOCIAL_ENGINEERING"}]}`))
	}))
	defer server.Close()

	provider := NewSafeBrowsingProvider("test-key", FailClosed, time.Second, zap.NewNop())
	provider.endpoint = server.URL

	result := provider.CheckURL(context.Background(), "http://flagged.example")
	assert.False(t, result.Safe)
	assert.Equal(t, "SOCIAL_ENGINEERING", result.ThreatType)
}

func TestSafeBrowsing_NoMatches(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	provider := NewSafeBrowsingProvider("test-key", FailClosed, time.Second, zap.NewNop())
	provider.endpoint = server.URL

	result := provider.CheckURL(context.Background(), "http://clean.example")
	assert.True(t, result.Safe)
}

func TestSafeBrowsing_FailPolicy(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	tests := []struct {
		name       string
		policy     FailPolicy
		expectSafe bool
		threatType string
	}{
		{name: "Fail closed flags the URL", policy: FailClosed, expectSafe: false, threatType: "PROVIDER_UNREACHABLE"},
		{name: "Fail open clears the URL", policy: FailOpen, expectSafe: true, threatType: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider := NewSafeBrowsingProvider("test-key", tt.policy, time.Second, zap.NewNop())
			provider.endpoint = server.URL

			result := provider.CheckURL(context.Background(), "http://whatever.example")
			assert.Equal(t, tt.expectSafe, result.Safe)
			assert.Equal(t, tt.threatType, result.ThreatType)
		})
	}
}

func TestVirusTotal_Heuristic(t *testing.T) {
	provider := NewVirusTotalProvider("", FailClosed, time.Second, zap.NewNop())

	result := provider.CheckURL(context.Background(), "http://phishing-kit.example")
	assert.False(t, result.Safe)
	assert.Equal(t, "PHISHING", result.ThreatType)
	assert.Equal(t, "VirusTotal", result.Provider)

	result = provider.CheckURL(context.Background(), "http://example.com")
	assert.True(t, result.Safe)

	result = provider.CheckFileHash(context.Background(), "d41d8cd98f00b204e9800998ecf8427e")
	assert.True(t, result.Safe)
}

func TestVirusTotal_HostedLookup(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-key", r.Header.Get("x-apikey"))
		w.Write([]byte(`{"data":{"attributes":{"last_analysis_stats":{"malicious":3,"suspicious":1}}}}`))
	}))
	defer server.Close()

	provider := NewVirusTotalProvider("test-key", FailClosed, time.Second, zap.NewNop())
	provider.endpoint = server.URL

	result := provider.CheckURL(context.Background(), "http://flagged.example")
	assert.False(t, result.Safe)
	assert.Equal(t, "PHISHING", result.ThreatType)

	result = provider.CheckFileHash(context.Background(), "abc123")
	assert.False(t, result.Safe)
	assert.Equal(t, "MALWARE", result.ThreatType)
}

func TestVirusTotal_UnknownURLIsSafe(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	provider := NewVirusTotalProvider("test-key", FailClosed, time.Second, zap.NewNop())
	provider.endpoint = server.URL

	result := provider.CheckURL(context.Background(), "http://never-seen.example")
	assert.True(t, result.Safe)
}

type flaggingProvider struct {
	result core.ProviderResult
}

func (p flaggingProvider) CheckURL(context.Context, string) core.ProviderResult {
	return p.result
}

func (p flaggingProvider) CheckFileHash(context.Context, string) core.ProviderResult {
	return p.result
}

func TestMultiProvider_FirstUnsafeWins(t *testing.T) {
	safe := flaggingProvider{result: core.ProviderResult{Safe: true, Provider: "a"}}
	unsafe := flaggingProvider{result: core.ProviderResult{Safe: false, ThreatType: "MALWARE", Provider: "b"}}

	multi := NewMultiProvider(safe, unsafe)
	result := multi.CheckURL(context.Background(), "http://x.example")
	assert.False(t, result.Safe)
	assert.Equal(t, "b", result.Provider)

	allSafe := NewMultiProvider(safe, safe)
	assert.True(t, allSafe.CheckURL(context.Background(), "http://x.example").Safe)
}
