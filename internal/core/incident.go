package core

import (
	"time"
)

// IncidentStatus represents the lifecycle state of an incident
type IncidentStatus string

const (
	// StatusPending indicates the incident has been created but not analyzed yet
	StatusPending IncidentStatus = "pending"
	// StatusAnalyzing indicates analysis ran but produced no terminal verdict
	StatusAnalyzing IncidentStatus = "analyzing"
	// StatusConfirmedPhishing indicates the engine confirmed the incident as phishing
	StatusConfirmedPhishing IncidentStatus = "confirmed_phishing"
	// StatusSafe indicates the engine cleared the incident
	StatusSafe IncidentStatus = "safe"
	// StatusFalsePositive is set only by an explicit human override, never by the engine
	StatusFalsePositive IncidentStatus = "false_positive"
)

// ThreatLevel is the ordered severity classification derived from the confidence score
type ThreatLevel string

const (
	ThreatLow      ThreatLevel = "low"
	ThreatMedium   ThreatLevel = "medium"
	ThreatHigh     ThreatLevel = "high"
	ThreatCritical ThreatLevel = "critical"
)

// Rank returns the position of the threat level in the LOW < MEDIUM < HIGH < CRITICAL ordering
func (t ThreatLevel) Rank() int {
	switch t {
	case ThreatMedium:
		return 1
	case ThreatHigh:
		return 2
	case ThreatCritical:
		return 3
	default:
		return 0
	}
}

// IndicatorType identifies which check produced an indicator
type IndicatorType string

const (
	IndicatorContent IndicatorType = "content"
	IndicatorLink    IndicatorType = "link"
	IndicatorSender  IndicatorType = "sender"
)

// Severity classifies a single indicator
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// Indicator is one discrete finding contributing to the analysis report
type Indicator struct {
	Type     IndicatorType `json:"type"`
	Severity Severity      `json:"severity"`
	Label    string        `json:"label"`
	Message  string        `json:"message"`
}

// AnalysisReport holds the ordered list of indicators discovered during analysis.
// Order is discovery order: content check first, then one block per URL, sender last.
type AnalysisReport struct {
	Indicators []Indicator `json:"indicators"`
}

// Incident is one submitted email under analysis, with its own lifecycle
// and indicator report
type Incident struct {
	ID          string
	UserID      string
	SenderEmail string
	Subject     string
	Body        string
	// URLs holds the links extracted from the body in first-occurrence order
	URLs []string

	Status          IncidentStatus
	ThreatLevel     ThreatLevel
	ConfidenceScore float64

	DetectedAt time.Time
	ResolvedAt *time.Time

	Report AnalysisReport
}

// NewIncident creates a pending incident ready for analysis
func NewIncident(id, userID, senderEmail, subject, body string, urls []string) *Incident {
	return &Incident{
		ID:          id,
		UserID:      userID,
		SenderEmail: senderEmail,
		Subject:     subject,
		Body:        body,
		URLs:        urls,
		Status:      StatusPending,
		ThreatLevel: ThreatLow,
		DetectedAt:  time.Now().UTC(),
	}
}

// EvaluateScore is the pure state-transition function mapping a confidence
// score to the resulting threat level and status.
//
// Mid-range scores (0.2 < score <= 0.8) deliberately leave the incident in
// ANALYZING with no automatic forward-progress path; resolving those requires
// an explicit policy (timeout-based auto-close or human review) that this
// engine does not impose.
func EvaluateScore(score float64) (ThreatLevel, IncidentStatus) {
	switch {
	case score > 0.8:
		return ThreatCritical, StatusConfirmedPhishing
	case score > 0.5:
		return ThreatHigh, StatusAnalyzing
	case score > 0.2:
		return ThreatMedium, StatusAnalyzing
	default:
		return ThreatLow, StatusSafe
	}
}

// MarkAnalyzed records the fused confidence score and indicator report and
// advances the lifecycle through EvaluateScore. The transition is idempotent
// for identical inputs.
func (i *Incident) MarkAnalyzed(score float64, report AnalysisReport) {
	i.ConfidenceScore = score
	i.Report = report
	i.ThreatLevel, i.Status = EvaluateScore(score)
}

// MarkFalsePositive applies the external human override. The engine itself
// never produces this status.
func (i *Incident) MarkFalsePositive() {
	now := time.Now().UTC()
	i.Status = StatusFalsePositive
	i.ResolvedAt = &now
}
