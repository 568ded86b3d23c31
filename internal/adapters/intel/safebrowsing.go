package intel

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/secureguard/phishguard/internal/core"
)

const (
	safeBrowsingName     = "GoogleSB"
	safeBrowsingEndpoint = "https://safebrowsing.googleapis.com/v4/threatMatches:find"
)

// phishyKeywords drive the heuristic mode used when no API key is
// configured. Matches the patterns the hosted lookup would flag most often.
var phishyKeywords = []string{"malicious", "secure-login", "bank-verify", "account-update", "phish", "danger"}

// SafeBrowsingProvider is a ThreatIntelProvider backed by the Google Safe
// Browsing v4 Lookup API. Without an API key it degrades to a local keyword
// heuristic so the rest of the pipeline stays exercisable.
type SafeBrowsingProvider struct {
	apiKey     string
	endpoint   string
	httpClient *http.Client
	failPolicy FailPolicy
	logger     *zap.Logger
}

// NewSafeBrowsingProvider creates a new Safe Browsing provider. The active
// fail policy is logged at construction so operators can see which way
// lookups degrade.
func NewSafeBrowsingProvider(apiKey string, failPolicy FailPolicy, timeout time.Duration, logger *zap.Logger) *SafeBrowsingProvider {
	logger.Info("Initialized Safe Browsing provider",
		zap.Bool("api_key_configured", apiKey != ""),
		zap.String("fail_policy", string(failPolicy)))

	return &SafeBrowsingProvider{
		apiKey:     apiKey,
		endpoint:   safeBrowsingEndpoint,
		httpClient: &http.Client{Timeout: timeout},
		failPolicy: failPolicy,
		logger:     logger,
	}
}

// threatMatchesRequest is the v4 threatMatches:find request body
type threatMatchesRequest struct {
	Client struct {
		ClientID      string `json:"clientId"`
		ClientVersion string `json:"clientVersion"`
	} `json:"client"`
	ThreatInfo struct {
		ThreatTypes      []string `json:"threatTypes"`
		PlatformTypes    []string `json:"platformTypes"`
		ThreatEntryTypes []string `json:"threatEntryTypes"`
		ThreatEntries    []struct {
			URL string `json:"url"`
		} `json:"threatEntries"`
	} `json:"threatInfo"`
}

// threatMatchesResponse is the v4 threatMatches:find response body
type threatMatchesResponse struct {
	Matches []struct {
		ThreatType string `json:"threatType"`
	} `json:"matches"`
}

// CheckURL looks up the URL's reputation. Transport failures never escape:
// they resolve through the configured fail policy.
func (p *SafeBrowsingProvider) CheckURL(ctx context.Context, url string) core.ProviderResult {
	if p.apiKey == "" {
		return p.heuristicCheck(url)
	}

	reqBody := threatMatchesRequest{}
	reqBody.Client.ClientID = "phishguard"
	reqBody.Client.ClientVersion = "1.0"
	reqBody.ThreatInfo.ThreatTypes = []string{"MALWARE", "SOCIAL_ENGINEERING", "UNWANTED_SOFTWARE"}
	reqBody.ThreatInfo.PlatformTypes = []string{"ANY_PLATFORM"}
	reqBody.ThreatInfo.ThreatEntryTypes = []string{"URL"}
	reqBody.ThreatInfo.ThreatEntries = []struct {
		URL string `json:"url"`
	}{{URL: url}}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return p.fail(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		fmt.Sprintf("%s?key=%s", p.endpoint, p.apiKey), bytes.NewReader(payload))
	if err != nil {
		return p.fail(err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return p.fail(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return p.fail(fmt.Errorf("unexpected status %d from Safe Browsing", resp.StatusCode))
	}

	var matches threatMatchesResponse
	if err := json.NewDecoder(resp.Body).Decode(&matches); err != nil {
		return p.fail(err)
	}

	if len(matches.Matches) > 0 {
		return core.ProviderResult{
			Safe:       false,
			ThreatType: matches.Matches[0].ThreatType,
			Provider:   safeBrowsingName,
		}
	}
	return core.ProviderResult{Safe: true, Provider: safeBrowsingName}
}

// CheckFileHash conforms to the provider interface; Safe Browsing has no
// native file hash lookup, so hashes always resolve safe here.
func (p *SafeBrowsingProvider) CheckFileHash(_ context.Context, _ string) core.ProviderResult {
	return core.ProviderResult{Safe: true, Provider: safeBrowsingName}
}

// heuristicCheck flags URLs containing phishing-associated tokens. Used only
// when no API key is configured.
func (p *SafeBrowsingProvider) heuristicCheck(url string) core.ProviderResult {
	lowered := strings.ToLower(url)
	for _, keyword := range phishyKeywords {
		if strings.Contains(lowered, keyword) {
			return core.ProviderResult{
				Safe:       false,
				ThreatType: "SOCIAL_ENGINEERING",
				Provider:   safeBrowsingName,
			}
		}
	}
	return core.ProviderResult{Safe: true, Provider: safeBrowsingName}
}

func (p *SafeBrowsingProvider) fail(err error) core.ProviderResult {
	p.logger.Warn("Safe Browsing lookup failed, applying fail policy",
		zap.String("fail_policy", string(p.failPolicy)),
		zap.Error(err))
	return p.failPolicy.resolve(safeBrowsingName)
}
