package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvaluateScore(t *testing.T) {
	tests := []struct {
		name          string
		score         float64
		expectedLevel ThreatLevel
		expectedState IncidentStatus
	}{
		{
			name:          "Above critical threshold",
			score:         0.81,
			expectedLevel: ThreatCritical,
			expectedState: StatusConfirmedPhishing,
		},
		{
			name:          "Exactly 0.8 stays high",
			score:         0.8,
			expectedLevel: ThreatHigh,
			expectedState: StatusAnalyzing,
		},
		{
			name:          "Above high threshold",
			score:         0.51,
			expectedLevel: ThreatHigh,
			expectedState: StatusAnalyzing,
		},
		{
			name:          "Exactly 0.5 stays medium",
			score:         0.5,
			expectedLevel: ThreatMedium,
			expectedState: StatusAnalyzing,
		},
		{
			name:          "Above medium threshold",
			score:         0.21,
			expectedLevel: ThreatMedium,
			expectedState: StatusAnalyzing,
		},
		{
			name:          "Exactly 0.2 is safe",
			score:         0.2,
			expectedLevel: ThreatLow,
			expectedState: StatusSafe,
		},
		{
			name:          "Low score is safe",
			score:         0.1,
			expectedLevel: ThreatLow,
			expectedState: StatusSafe,
		},
		{
			name:          "Maximum score",
			score:         1.0,
			expectedLevel: ThreatCritical,
			expectedState: StatusConfirmedPhishing,
		},
		{
			name:          "Zero score",
			score:         0.0,
			expectedLevel: ThreatLow,
			expectedState: StatusSafe,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			level, status := EvaluateScore(tt.score)
			assert.Equal(t, tt.expectedLevel, level)
			assert.Equal(t, tt.expectedState, status)
		})
	}
}

func TestNewIncident(t *testing.T) {
	incident := NewIncident("id-1", "user-1", "support@paypal.com", "Urgent", "body", []string{"http://a.example"})

	assert.Equal(t, StatusPending, incident.Status)
	assert.Equal(t, ThreatLow, incident.ThreatLevel)
	assert.Zero(t, incident.ConfidenceScore)
	assert.False(t, incident.DetectedAt.IsZero())
	assert.Nil(t, incident.ResolvedAt)
}

func TestIncident_MarkAnalyzed(t *testing.T) {
	incident := NewIncident("id-1", "user-1", "sender@example.com", "subject", "body", nil)
	report := AnalysisReport{Indicators: []Indicator{
		{Type: IndicatorContent, Severity: SeverityHigh, Label: "Suspicious Content", Message: "msg"},
	}}

	incident.MarkAnalyzed(0.95, report)

	assert.Equal(t, StatusConfirmedPhishing, incident.Status)
	assert.Equal(t, ThreatCritical, incident.ThreatLevel)
	assert.Equal(t, 0.95, incident.ConfidenceScore)
	require.Len(t, incident.Report.Indicators, 1)

	// Replaying the same verdict leaves the incident unchanged
	incident.MarkAnalyzed(0.95, report)
	assert.Equal(t, StatusConfirmedPhishing, incident.Status)
	assert.Equal(t, ThreatCritical, incident.ThreatLevel)
}

func TestIncident_MarkFalsePositive(t *testing.T) {
	incident := NewIncident("id-1", "user-1", "sender@example.com", "subject", "body", nil)
	incident.MarkAnalyzed(0.97, AnalysisReport{})
	require.Equal(t, StatusConfirmedPhishing, incident.Status)

	incident.MarkFalsePositive()

	assert.Equal(t, StatusFalsePositive, incident.Status)
	require.NotNil(t, incident.ResolvedAt)
	// The override changes the status, never the recorded evidence
	assert.Equal(t, ThreatCritical, incident.ThreatLevel)
	assert.Equal(t, 0.97, incident.ConfidenceScore)
}

func TestThreatLevel_Rank(t *testing.T) {
	assert.Less(t, ThreatLow.Rank(), ThreatMedium.Rank())
	assert.Less(t, ThreatMedium.Rank(), ThreatHigh.Rank())
	assert.Less(t, ThreatHigh.Rank(), ThreatCritical.Rank())
}
