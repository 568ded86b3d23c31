package intel

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/secureguard/phishguard/internal/core"
)

const (
	virusTotalName     = "VirusTotal"
	virusTotalEndpoint = "https://www.virustotal.com/api/v3"
)

// VirusTotalProvider is a ThreatIntelProvider backed by the VirusTotal v3
// API. Without an API key it degrades to a local keyword heuristic.
type VirusTotalProvider struct {
	apiKey     string
	endpoint   string
	httpClient *http.Client
	failPolicy FailPolicy
	logger     *zap.Logger
}

// NewVirusTotalProvider creates a new VirusTotal provider
func NewVirusTotalProvider(apiKey string, failPolicy FailPolicy, timeout time.Duration, logger *zap.Logger) *VirusTotalProvider {
	logger.Info("Initialized VirusTotal provider",
		zap.Bool("api_key_configured", apiKey != ""),
		zap.String("fail_policy", string(failPolicy)))

	return &VirusTotalProvider{
		apiKey:     apiKey,
		endpoint:   virusTotalEndpoint,
		httpClient: &http.Client{Timeout: timeout},
		failPolicy: failPolicy,
		logger:     logger,
	}
}

// analysisStatsResponse is the subset of the v3 object wrapper we read
type analysisStatsResponse struct {
	Data struct {
		Attributes struct {
			LastAnalysisStats struct {
				Malicious  int `json:"malicious"`
				Suspicious int `json:"suspicious"`
			} `json:"last_analysis_stats"`
		} `json:"attributes"`
	} `json:"data"`
}

// CheckURL looks up the URL's reputation. An unknown URL (404) counts as
// safe; transport failures resolve through the configured fail policy.
func (p *VirusTotalProvider) CheckURL(ctx context.Context, url string) core.ProviderResult {
	if p.apiKey == "" {
		if strings.Contains(strings.ToLower(url), "phishing") {
			return core.ProviderResult{Safe: false, ThreatType: "PHISHING", Provider: virusTotalName}
		}
		return core.ProviderResult{Safe: true, Provider: virusTotalName}
	}

	// v3 addresses URLs by the unpadded base64 of the URL itself
	urlID := base64.RawURLEncoding.EncodeToString([]byte(url))
	return p.lookup(ctx, fmt.Sprintf("%s/urls/%s", p.endpoint, urlID), "PHISHING")
}

// CheckFileHash looks up a file hash's reputation
func (p *VirusTotalProvider) CheckFileHash(ctx context.Context, hash string) core.ProviderResult {
	if p.apiKey == "" {
		return core.ProviderResult{Safe: true, Provider: virusTotalName}
	}
	return p.lookup(ctx, fmt.Sprintf("%s/files/%s", p.endpoint, hash), "MALWARE")
}

func (p *VirusTotalProvider) lookup(ctx context.Context, requestURL, threatType string) core.ProviderResult {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return p.fail(err)
	}
	req.Header.Set("x-apikey", p.apiKey)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return p.fail(err)
	}
	defer resp.Body.Close()

	// Not in the corpus means no known verdict, not a failure
	if resp.StatusCode == http.StatusNotFound {
		return core.ProviderResult{Safe: true, Provider: virusTotalName}
	}
	if resp.StatusCode != http.StatusOK {
		return p.fail(fmt.Errorf("unexpected status %d from VirusTotal", resp.StatusCode))
	}

	var stats analysisStatsResponse
	if err := json.NewDecoder(resp.Body).Decode(&stats); err != nil {
		return p.fail(err)
	}

	if stats.Data.Attributes.LastAnalysisStats.Malicious > 0 {
		return core.ProviderResult{Safe: false, ThreatType: threatType, Provider: virusTotalName}
	}
	return core.ProviderResult{Safe: true, Provider: virusTotalName}
}

func (p *VirusTotalProvider) fail(err error) core.ProviderResult {
	p.logger.Warn("VirusTotal lookup failed, applying fail policy",
		zap.String("fail_policy", string(p.failPolicy)),
		zap.Error(err))
	return p.failPolicy.resolve(virusTotalName)
}
