package core

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeRepository struct {
	mu        sync.Mutex
	incidents map[string]*Incident
	saveErr   error
	saveCalls int
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{incidents: make(map[string]*Incident)}
}

func (r *fakeRepository) GetByID(ctx context.Context, id string) (*Incident, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	incident, ok := r.incidents[id]
	if !ok {
		return nil, ErrIncidentNotFound
	}
	return incident, nil
}

func (r *fakeRepository) Save(ctx context.Context, incident *Incident) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.saveCalls++
	if r.saveErr != nil {
		return r.saveErr
	}
	r.incidents[incident.ID] = incident
	return nil
}

func (r *fakeRepository) ListByUser(ctx context.Context, userID string) ([]*Incident, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*Incident
	for _, incident := range r.incidents {
		if incident.UserID == userID {
			out = append(out, incident)
		}
	}
	return out, nil
}

type fakeNotifier struct {
	payloads chan string
	err      error
}

func newFakeNotifier() *fakeNotifier {
	return &fakeNotifier{payloads: make(chan string, 1)}
}

func (n *fakeNotifier) Broadcast(ctx context.Context, payload string) error {
	n.payloads <- payload
	return n.err
}

func newTestService(repo IncidentRepository, notifier Notifier) *AnalysisService {
	engine := newTestEngine(&stubClassifier{score: 0.85}, &stubIntel{})
	return NewAnalysisService(repo, engine, notifier, zap.NewNop())
}

func TestExtractURLs(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		expected []string
	}{
		{
			name:     "Single http URL",
			body:     "visit http://example.com/login now",
			expected: []string{"http://example.com/login"},
		},
		{
			name:     "Https and www mixed in order",
			body:     "see https://a.example and www.b.example too",
			expected: []string{"https://a.example", "www.b.example"},
		},
		{
			name:     "Duplicates are preserved",
			body:     "http://x.example then http://x.example again",
			expected: []string{"http://x.example", "http://x.example"},
		},
		{
			name:     "URL terminated by angle bracket",
			body:     `<a href="http://x.example/path">click</a>`,
			expected: []string{"http://x.example/path"},
		},
		{
			name:     "No URLs",
			body:     "just plain text",
			expected: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ExtractURLs(tt.body))
		})
	}
}

func TestAnalysisService_Analyze(t *testing.T) {
	repo := newFakeRepository()
	service := newTestService(repo, nil)

	incident, err := service.Analyze(context.Background(), AnalysisRequest{
		Sender:  "security-alert@paypal-support.com",
		Subject: "URGENT: verify your account",
		Body:    "Click http://g00gle.com/login now",
	}, "user-1")

	require.NoError(t, err)
	assert.NotEmpty(t, incident.ID)
	assert.Equal(t, "user-1", incident.UserID)
	assert.Equal(t, StatusConfirmedPhishing, incident.Status)
	assert.Equal(t, []string{"http://g00gle.com/login"}, incident.URLs)

	// Final state is what got persisted
	persisted, err := repo.GetByID(context.Background(), incident.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusConfirmedPhishing, persisted.Status)
	assert.Equal(t, 2, repo.saveCalls)
}

func TestAnalysisService_AnalyzeDefaults(t *testing.T) {
	repo := newFakeRepository()
	service := newTestService(repo, nil)

	incident, err := service.Analyze(context.Background(), AnalysisRequest{Body: "hello"}, "user-1")

	require.NoError(t, err)
	assert.Equal(t, "unknown", incident.SenderEmail)
	assert.Equal(t, "No Subject", incident.Subject)
}

func TestAnalysisService_InitialSaveFailureIsFatal(t *testing.T) {
	repo := newFakeRepository()
	repo.saveErr = errors.New("disk full")
	service := newTestService(repo, nil)

	incident, err := service.Analyze(context.Background(), AnalysisRequest{Body: "hello"}, "user-1")

	require.Error(t, err)
	assert.Nil(t, incident)
	assert.Contains(t, err.Error(), "failed to save pending incident")
	// The engine never ran: only the failed initial save touched the repository
	assert.Equal(t, 1, repo.saveCalls)
}

func TestAnalysisService_BroadcastsAlert(t *testing.T) {
	repo := newFakeRepository()
	notifier := newFakeNotifier()
	service := newTestService(repo, notifier)

	incident, err := service.Analyze(context.Background(), AnalysisRequest{
		Sender:  "security-alert@secureguard-phish.example",
		Subject: "Reset your password",
		Body:    "Click http://g00gle.com now",
	}, "user-1")
	require.NoError(t, err)

	select {
	case payload := <-notifier.payloads:
		var alert map[string]string
		require.NoError(t, json.Unmarshal([]byte(payload), &alert))
		assert.Equal(t, "phishing_alert", alert["type"])
		assert.Equal(t, incident.ID, alert["id"])
		assert.Equal(t, "Phishing Attempt: security-alert@secur...", alert["title"])
		assert.Equal(t, "Critical", alert["level"])
		assert.Equal(t, "Reset your password", alert["detail"])
	case <-time.After(2 * time.Second):
		t.Fatal("expected an alert broadcast")
	}
}

func TestAnalysisService_NotifierFailureIsSwallowed(t *testing.T) {
	repo := newFakeRepository()
	notifier := newFakeNotifier()
	notifier.err = errors.New("websocket closed")
	service := newTestService(repo, notifier)

	incident, err := service.Analyze(context.Background(), AnalysisRequest{
		Body: "Click http://g00gle.com now",
	}, "user-1")

	require.NoError(t, err)
	assert.NotNil(t, incident)
	<-notifier.payloads
}

func TestAnalysisService_MarkFalsePositive(t *testing.T) {
	repo := newFakeRepository()
	service := newTestService(repo, nil)

	created, err := service.Analyze(context.Background(), AnalysisRequest{
		Body: "Click http://g00gle.com now",
	}, "user-1")
	require.NoError(t, err)
	require.Equal(t, StatusConfirmedPhishing, created.Status)

	resolved, err := service.MarkFalsePositive(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusFalsePositive, resolved.Status)
	assert.NotNil(t, resolved.ResolvedAt)

	_, err = service.MarkFalsePositive(context.Background(), "missing-id")
	assert.ErrorIs(t, err, ErrIncidentNotFound)
}

func TestAnalysisService_GetIncident(t *testing.T) {
	repo := newFakeRepository()
	service := newTestService(repo, nil)

	_, err := service.GetIncident(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrIncidentNotFound)
}
