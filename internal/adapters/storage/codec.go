package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/secureguard/phishguard/internal/core"
)

// incidentRow is the flattened database shape of an incident; URL lists and
// the indicator report travel as JSON text columns
type incidentRow struct {
	id         string
	userID     string
	sender     string
	subject    string
	body       string
	urls       string
	status     string
	threat     string
	score      float64
	detectedAt time.Time
	resolvedAt sql.NullTime
	report     string
}

func rowFromIncident(incident *core.Incident) (*incidentRow, error) {
	urls, err := json.Marshal(incident.URLs)
	if err != nil {
		return nil, fmt.Errorf("failed to encode urls: %w", err)
	}
	report, err := json.Marshal(incident.Report)
	if err != nil {
		return nil, fmt.Errorf("failed to encode report: %w", err)
	}

	row := &incidentRow{
		id:         incident.ID,
		userID:     incident.UserID,
		sender:     incident.SenderEmail,
		subject:    incident.Subject,
		body:       incident.Body,
		urls:       string(urls),
		status:     string(incident.Status),
		threat:     string(incident.ThreatLevel),
		score:      incident.ConfidenceScore,
		detectedAt: incident.DetectedAt,
		report:     string(report),
	}
	if incident.ResolvedAt != nil {
		row.resolvedAt = sql.NullTime{Time: *incident.ResolvedAt, Valid: true}
	}
	return row, nil
}

func (r *incidentRow) toIncident() (*core.Incident, error) {
	incident := &core.Incident{
		ID:              r.id,
		UserID:          r.userID,
		SenderEmail:     r.sender,
		Subject:         r.subject,
		Body:            r.body,
		Status:          core.IncidentStatus(r.status),
		ThreatLevel:     core.ThreatLevel(r.threat),
		ConfidenceScore: r.score,
		DetectedAt:      r.detectedAt,
	}
	if r.resolvedAt.Valid {
		resolved := r.resolvedAt.Time
		incident.ResolvedAt = &resolved
	}
	if r.urls != "" {
		if err := json.Unmarshal([]byte(r.urls), &incident.URLs); err != nil {
			return nil, fmt.Errorf("failed to decode urls: %w", err)
		}
	}
	if r.report != "" {
		if err := json.Unmarshal([]byte(r.report), &incident.Report); err != nil {
			return nil, fmt.Errorf("failed to decode report: %w", err)
		}
	}
	return incident, nil
}
