package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/secureguard/phishguard/internal/core"
)

// incidentResponse is the outbound boundary shape for one incident
type incidentResponse struct {
	ID          string              `json:"id"`
	Status      string              `json:"status"`
	ThreatLevel string              `json:"threat_level"`
	Score       float64             `json:"score"`
	Sender      string              `json:"sender"`
	Subject     string              `json:"subject"`
	DetectedAt  string              `json:"detected_at"`
	Report      core.AnalysisReport `json:"report"`
}

func toIncidentResponse(incident *core.Incident) incidentResponse {
	return incidentResponse{
		ID:          incident.ID,
		Status:      string(incident.Status),
		ThreatLevel: string(incident.ThreatLevel),
		Score:       incident.ConfidenceScore,
		Sender:      incident.SenderEmail,
		Subject:     incident.Subject,
		DetectedAt:  incident.DetectedAt.Format(time.RFC3339),
		Report:      incident.Report,
	}
}

// HTTPGateway serves the analysis API
type HTTPGateway struct {
	service        *core.AnalysisService
	logger         *zap.Logger
	listenAddr     string
	allowedOrigins []string
	server         *http.Server
}

// NewHTTPGateway creates a new HTTP gateway
func NewHTTPGateway(
	service *core.AnalysisService,
	logger *zap.Logger,
	listenAddr string,
	allowedOrigins []string,
) *HTTPGateway {
	return &HTTPGateway{
		service:        service,
		logger:         logger,
		listenAddr:     listenAddr,
		allowedOrigins: allowedOrigins,
	}
}

// Handler builds the chi router for the gateway
func (g *HTTPGateway) Handler() http.Handler {
	mux := chi.NewRouter()
	mux.Use(cors.Handler(cors.Options{
		AllowedOrigins: g.allowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-User-ID"},
	}))

	mux.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})

	mux.Route("/v1", func(rt chi.Router) {
		rt.Post("/analyze", g.wrap(g.handleAnalyze))
		rt.Get("/incidents", g.wrap(g.handleList))
		rt.Get("/incidents/{id}", g.wrap(g.handleGet))
		rt.Post("/incidents/{id}/false-positive", g.wrap(g.handleFalsePositive))
	})

	return mux
}

// Start starts the HTTP server in the background
func (g *HTTPGateway) Start() error {
	g.server = &http.Server{
		Addr:    g.listenAddr,
		Handler: g.Handler(),
	}

	g.logger.Info("HTTP gateway starting", zap.String("address", g.listenAddr))
	go func() {
		if err := g.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			g.logger.Error("HTTP server error", zap.Error(err))
		}
	}()
	return nil
}

// Stop shuts the HTTP server down gracefully
func (g *HTTPGateway) Stop() error {
	if g.server == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return g.server.Shutdown(ctx)
}

type handlerFunc func(http.ResponseWriter, *http.Request) error

// wrap adapts error-returning handlers to http.HandlerFunc with uniform
// error mapping
func (g *HTTPGateway) wrap(h handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		if err := h(w, req); err != nil {
			if errors.Is(err, core.ErrIncidentNotFound) {
				http.Error(w, "incident not found", http.StatusNotFound)
				return
			}
			g.logger.Error("Request failed",
				zap.String("path", req.URL.Path),
				zap.Error(err))
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	}
}

// POST /v1/analyze
// Body: {"sender": "...", "subject": "...", "body": "..."}
func (g *HTTPGateway) handleAnalyze(w http.ResponseWriter, req *http.Request) error {
	var request core.AnalysisRequest
	if err := json.NewDecoder(req.Body).Decode(&request); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return nil
	}

	incident, err := g.service.Analyze(req.Context(), request, userID(req))
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, toIncidentResponse(incident))
}

// GET /v1/incidents/{id}
func (g *HTTPGateway) handleGet(w http.ResponseWriter, req *http.Request) error {
	incident, err := g.service.GetIncident(req.Context(), chi.URLParam(req, "id"))
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, toIncidentResponse(incident))
}

// GET /v1/incidents?user_id=...
func (g *HTTPGateway) handleList(w http.ResponseWriter, req *http.Request) error {
	user := req.URL.Query().Get("user_id")
	if user == "" {
		user = userID(req)
	}

	incidents, err := g.service.ListIncidents(req.Context(), user)
	if err != nil {
		return err
	}

	responses := make([]incidentResponse, 0, len(incidents))
	for _, incident := range incidents {
		responses = append(responses, toIncidentResponse(incident))
	}
	return writeJSON(w, http.StatusOK, responses)
}

// POST /v1/incidents/{id}/false-positive
// The only path into the false_positive status: an explicit human override.
func (g *HTTPGateway) handleFalsePositive(w http.ResponseWriter, req *http.Request) error {
	incident, err := g.service.MarkFalsePositive(req.Context(), chi.URLParam(req, "id"))
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, toIncidentResponse(incident))
}

func userID(req *http.Request) string {
	if user := req.Header.Get("X-User-ID"); user != "" {
		return user
	}
	return "anonymous"
}

func writeJSON(w http.ResponseWriter, status int, body any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(body)
}
