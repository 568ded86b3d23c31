package gateway

import (
	"bytes"
	"context"
	"io"
	"net/mail"
	"time"

	"github.com/emersion/go-smtp"
	"go.uber.org/zap"

	"github.com/secureguard/phishguard/internal/core"
	"github.com/secureguard/phishguard/internal/whitelist"
)

// SMTPGateway is an ingestion sink that accepts email over SMTP and submits
// each message for phishing analysis. It never rejects mail; it only
// records incidents.
type SMTPGateway struct {
	service    *core.AnalysisService
	whitelist  *whitelist.Checker
	logger     *zap.Logger
	listenAddr string
	server     *smtp.Server
}

// NewSMTPGateway creates a new SMTP ingestion gateway
func NewSMTPGateway(
	service *core.AnalysisService,
	whitelistChecker *whitelist.Checker,
	logger *zap.Logger,
	listenAddr string,
) *SMTPGateway {
	return &SMTPGateway{
		service:    service,
		whitelist:  whitelistChecker,
		logger:     logger,
		listenAddr: listenAddr,
	}
}

// Start starts the SMTP server in the background
func (g *SMTPGateway) Start() error {
	g.server = smtp.NewServer(&smtpBackend{gateway: g})
	g.server.Addr = g.listenAddr
	g.server.Domain = "localhost"
	g.server.ReadTimeout = 30 * time.Second
	g.server.WriteTimeout = 30 * time.Second
	g.server.MaxMessageBytes = 30 * 1024 * 1024
	g.server.MaxRecipients = 50
	g.server.AllowInsecureAuth = true

	g.logger.Info("SMTP gateway starting", zap.String("address", g.listenAddr))
	go func() {
		if err := g.server.ListenAndServe(); err != nil && err != smtp.ErrServerClosed {
			g.logger.Error("SMTP server error", zap.Error(err))
		}
	}()
	return nil
}

// Stop shuts the SMTP server down
func (g *SMTPGateway) Stop() error {
	if g.server != nil {
		return g.server.Close()
	}
	return nil
}

// ingest analyzes one received message. Analysis failures are logged, never
// bounced back over SMTP.
func (g *SMTPGateway) ingest(sender string, recipients []string, rawData []byte) {
	if g.whitelist != nil && g.whitelist.IsWhitelisted(sender) {
		g.logger.Info("Skipping analysis for whitelisted sender",
			zap.String("sender", sender))
		return
	}

	msg, err := mail.ReadMessage(bytes.NewReader(rawData))
	if err != nil {
		g.logger.Error("Failed to parse email message", zap.Error(err))
		return
	}

	body, err := ExtractText(msg)
	if err != nil {
		g.logger.Error("Failed to extract message text", zap.Error(err))
		return
	}

	userID := "smtp"
	if len(recipients) > 0 {
		userID = recipients[0]
	}

	request := core.AnalysisRequest{
		Sender:  sender,
		Subject: DecodeSubject(msg.Header.Get("Subject")),
		Body:    body,
	}

	incident, err := g.service.Analyze(context.Background(), request, userID)
	if err != nil {
		g.logger.Error("Failed to analyze ingested email",
			zap.String("sender", sender),
			zap.Error(err))
		return
	}

	g.logger.Info("Ingested email analyzed",
		zap.String("incident_id", incident.ID),
		zap.String("status", string(incident.Status)),
		zap.String("threat_level", string(incident.ThreatLevel)),
		zap.Float64("score", incident.ConfidenceScore))
}

// smtpBackend implements the go-smtp Backend interface
type smtpBackend struct {
	gateway *SMTPGateway
}

// NewSession creates a new SMTP session
func (b *smtpBackend) NewSession(_ *smtp.Conn) (smtp.Session, error) {
	return &smtpSession{
		gateway:    b.gateway,
		recipients: make([]string, 0),
	}, nil
}

// smtpSession implements the go-smtp Session interface
type smtpSession struct {
	gateway    *SMTPGateway
	sender     string
	recipients []string
}

// Reset resets the session state
func (s *smtpSession) Reset() {
	s.sender = ""
	s.recipients = make([]string, 0)
}

// Logout ends the session
func (s *smtpSession) Logout() error {
	return nil
}

// AuthPlain handles PLAIN authentication (not needed for an ingestion sink)
func (s *smtpSession) AuthPlain(_, _ string) error {
	return smtp.ErrAuthUnsupported
}

// Mail sets the sender address
func (s *smtpSession) Mail(from string, _ *smtp.MailOptions) error {
	s.sender = from
	return nil
}

// Rcpt adds a recipient
func (s *smtpSession) Rcpt(to string, _ *smtp.RcptOptions) error {
	s.recipients = append(s.recipients, to)
	return nil
}

// Data receives the message body and hands it off for analysis
func (s *smtpSession) Data(r io.Reader) error {
	rawData, err := io.ReadAll(r)
	if err != nil {
		s.gateway.logger.Error("Failed to read message data", zap.Error(err))
		return err
	}

	s.gateway.ingest(s.sender, s.recipients, rawData)
	return nil
}
