package core

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// urlPattern extracts http(s):// and www. prefixed tokens from a message body
var urlPattern = regexp.MustCompile(`(https?://[^\s<>"]+|www\.[^\s<>"]+)`)

// AnalysisRequest is the inbound boundary consumed from the web layer
type AnalysisRequest struct {
	Sender  string `json:"sender"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// alertMessage is the lightweight payload broadcast after an analysis completes
type alertMessage struct {
	Type   string `json:"type"`
	ID     string `json:"id"`
	Title  string `json:"title"`
	Level  string `json:"level"`
	Time   string `json:"time"`
	Detail string `json:"detail"`
}

// AnalysisService is the application use case: it creates an incident, runs
// the analysis engine, persists through the repository and fires an optional
// best-effort notification.
type AnalysisService struct {
	repository IncidentRepository
	engine     *AnalysisEngine
	notifier   Notifier
	logger     *zap.Logger
}

// NewAnalysisService creates a new analysis service. notifier may be nil when
// no alerting is configured.
func NewAnalysisService(
	repository IncidentRepository,
	engine *AnalysisEngine,
	notifier Notifier,
	logger *zap.Logger,
) *AnalysisService {
	return &AnalysisService{
		repository: repository,
		engine:     engine,
		notifier:   notifier,
		logger:     logger,
	}
}

// ExtractURLs scans a body for links, preserving first-occurrence order.
// Duplicates are kept and analyzed repeatedly.
func ExtractURLs(body string) []string {
	return urlPattern.FindAllString(body, -1)
}

// Analyze runs the full pipeline for one submitted email and returns the
// finalized incident. A failure to persist the pending incident is fatal;
// everything downstream degrades rather than failing the caller.
func (s *AnalysisService) Analyze(ctx context.Context, request AnalysisRequest, userID string) (*Incident, error) {
	sender := request.Sender
	if sender == "" {
		sender = "unknown"
	}
	subject := request.Subject
	if subject == "" {
		subject = "No Subject"
	}

	incident := NewIncident(
		uuid.NewString(),
		userID,
		sender,
		subject,
		request.Body,
		ExtractURLs(request.Body),
	)

	// Analysis must never run against state that was never durably recorded
	if err := s.repository.Save(ctx, incident); err != nil {
		return nil, fmt.Errorf("failed to save pending incident: %w", err)
	}

	incident = s.engine.Analyze(ctx, incident)

	if err := s.repository.Save(ctx, incident); err != nil {
		// The verdict is already computed; surface the result and let the
		// operator deal with the stale persisted copy
		s.logger.Error("Failed to persist analyzed incident",
			zap.String("incident_id", incident.ID),
			zap.Error(err))
	}

	if s.notifier != nil {
		s.broadcastAlert(ctx, incident)
	}

	return incident, nil
}

// GetIncident loads a single incident by id
func (s *AnalysisService) GetIncident(ctx context.Context, id string) (*Incident, error) {
	return s.repository.GetByID(ctx, id)
}

// ListIncidents returns all incidents belonging to a user
func (s *AnalysisService) ListIncidents(ctx context.Context, userID string) ([]*Incident, error) {
	return s.repository.ListByUser(ctx, userID)
}

// MarkFalsePositive applies the external admin override to an incident and
// persists it. This is the only path into the false_positive status.
func (s *AnalysisService) MarkFalsePositive(ctx context.Context, id string) (*Incident, error) {
	incident, err := s.repository.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	incident.MarkFalsePositive()
	if err := s.repository.Save(ctx, incident); err != nil {
		return nil, fmt.Errorf("failed to save false positive override: %w", err)
	}
	return incident, nil
}

// broadcastAlert fires the notification without blocking the caller's return
// path. Failures are logged and never surfaced or retried.
func (s *AnalysisService) broadcastAlert(ctx context.Context, incident *Incident) {
	alert := alertMessage{
		Type:   "phishing_alert",
		ID:     incident.ID,
		Title:  fmt.Sprintf("Phishing Attempt: %s...", truncate(incident.SenderEmail, 20)),
		Level:  capitalize(string(incident.ThreatLevel)),
		Time:   incident.DetectedAt.Format("2006-01-02T15:04:05Z07:00"),
		Detail: incident.Subject,
	}

	payload, err := json.Marshal(alert)
	if err != nil {
		s.logger.Warn("Failed to encode alert payload", zap.Error(err))
		return
	}

	// Detached from the request context so a returned caller does not cancel
	// the in-flight broadcast
	broadcastCtx := context.WithoutCancel(ctx)
	go func() {
		if err := s.notifier.Broadcast(broadcastCtx, string(payload)); err != nil {
			s.logger.Warn("Failed to broadcast alert",
				zap.String("incident_id", incident.ID),
				zap.Error(err))
		}
	}()
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
