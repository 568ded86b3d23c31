package core

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

// senderKeywords are official-sounding terms frequently used in spoofed
// sender addresses. Matching any of them adds an informational indicator
// that never affects the score.
var senderKeywords = []string{"support", "admin", "secure", "verify"}

// AnalysisEngine fuses the content classifier, the typosquatting detector
// and a threat intelligence provider into a single confidence score and a
// structured indicator report.
type AnalysisEngine struct {
	classifier   ContentClassifier
	typoDetector *TyposquatDetector
	intel        ThreatIntelProvider
	logger       *zap.Logger
	intelTimeout time.Duration
}

// NewAnalysisEngine creates a new analysis engine. intelTimeout bounds each
// threat intelligence call; expiry is treated as provider failure, not as a
// fault.
func NewAnalysisEngine(
	classifier ContentClassifier,
	typoDetector *TyposquatDetector,
	intel ThreatIntelProvider,
	logger *zap.Logger,
	intelTimeout time.Duration,
) *AnalysisEngine {
	if intelTimeout <= 0 {
		intelTimeout = 5 * time.Second
	}
	return &AnalysisEngine{
		classifier:   classifier,
		typoDetector: typoDetector,
		intel:        intel,
		logger:       logger,
		intelTimeout: intelTimeout,
	}
}

// urlFindings holds the outcome of both per-URL checks for one URL so that
// indicators can be reassembled in discovery order after concurrent lookups.
type urlFindings struct {
	typo  TyposquatResult
	intel ProviderResult
}

// Analyze scores the incident and records the verdict on it via MarkAnalyzed.
//
// Signal order in the report is fixed: content check first, then one block
// per URL in first-occurrence order (typosquat check immediately followed by
// the threat intel check for that URL), then the sender heuristic last.
func (e *AnalysisEngine) Analyze(ctx context.Context, incident *Incident) *Incident {
	mlScore := e.contentScore(ctx, incident)

	indicators := make([]Indicator, 0, len(incident.URLs)+2)
	if mlScore > 0.7 {
		indicators = append(indicators, Indicator{
			Type:     IndicatorContent,
			Severity: SeverityHigh,
			Label:    "Suspicious Content",
			Message:  fmt.Sprintf("AI detected high-risk language patterns (confidence: %.2f).", mlScore),
		})
	} else if mlScore > 0.4 {
		indicators = append(indicators, Indicator{
			Type:     IndicatorContent,
			Severity: SeverityMedium,
			Label:    "Cautionary Language",
			Message:  "Content contains patterns often used in social engineering.",
		})
	}

	highThreatFound := false
	for i, findings := range e.checkURLs(ctx, incident.URLs) {
		url := incident.URLs[i]
		if findings.typo.IsTyposquat {
			highThreatFound = true
			indicators = append(indicators, Indicator{
				Type:     IndicatorLink,
				Severity: SeverityCritical,
				Label:    "Typosquatting Detected",
				Message:  fmt.Sprintf("Fraudulent link '%s' mimics '%s'.", url, findings.typo.Target),
			})
		}
		if !findings.intel.Safe {
			highThreatFound = true
			indicators = append(indicators, Indicator{
				Type:     IndicatorLink,
				Severity: SeverityCritical,
				Label:    "Malicious URL",
				Message:  fmt.Sprintf("URL '%s' is blacklisted in security databases.", url),
			})
		}
	}

	if matchesSenderKeyword(incident.SenderEmail) {
		indicators = append(indicators, Indicator{
			Type:     IndicatorSender,
			Severity: SeverityLow,
			Label:    "Sender Profile",
			Message:  "Sender uses common official-sounding keywords.",
		})
	}

	// A single confirmed malicious link or typosquat dominates a low ML
	// score; the ML score alone can only reach CRITICAL on its own merits.
	score := mlScore
	if highThreatFound && score < 0.95 {
		score = 0.95
	}

	incident.MarkAnalyzed(score, AnalysisReport{Indicators: indicators})
	return incident
}

// contentScore runs the classifier over subject and body. An unavailable
// classifier degrades to the neutral score 0.5 with a warning; the analysis
// continues.
func (e *AnalysisEngine) contentScore(ctx context.Context, incident *Incident) float64 {
	text := incident.Subject + " " + incident.Body
	score, err := e.classifier.Score(ctx, text)
	if err != nil {
		e.logger.Warn("Classifier unavailable, using neutral score",
			zap.String("incident_id", incident.ID),
			zap.Error(err))
		return 0.5
	}
	return clampScore(score)
}

// checkURLs runs the typosquat and threat intel checks for every URL. The
// lookups run concurrently because threat intel is I/O bound, but results
// are returned indexed by discovery order, never completion order.
func (e *AnalysisEngine) checkURLs(ctx context.Context, urls []string) []urlFindings {
	findings := make([]urlFindings, len(urls))
	var wg sync.WaitGroup
	for i, url := range urls {
		wg.Add(1)
		go func(i int, url string) {
			defer wg.Done()
			findings[i].typo = e.typoDetector.CheckURL(url)

			intelCtx, cancel := context.WithTimeout(ctx, e.intelTimeout)
			defer cancel()
			findings[i].intel = e.intel.CheckURL(intelCtx, url)
		}(i, url)
	}
	wg.Wait()
	return findings
}

func matchesSenderKeyword(sender string) bool {
	lowered := strings.ToLower(sender)
	for _, keyword := range senderKeywords {
		if strings.Contains(lowered, keyword) {
			return true
		}
	}
	return false
}

func clampScore(score float64) float64 {
	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}
