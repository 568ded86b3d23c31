package storage

import (
	"context"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/secureguard/phishguard/internal/core"
)

// MemoryRepository is an in-memory implementation of the IncidentRepository
// interface, suitable for tests and single-node deployments
type MemoryRepository struct {
	incidents map[string]core.Incident
	mu        sync.RWMutex
	logger    *zap.Logger
}

// NewMemoryRepository creates a new in-memory incident repository
func NewMemoryRepository(logger *zap.Logger) *MemoryRepository {
	return &MemoryRepository{
		incidents: make(map[string]core.Incident),
		logger:    logger,
	}
}

// GetByID retrieves an incident by id
func (r *MemoryRepository) GetByID(_ context.Context, id string) (*core.Incident, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	incident, ok := r.incidents[id]
	if !ok {
		return nil, core.ErrIncidentNotFound
	}
	return &incident, nil
}

// Save upserts an incident. The stored copy is detached from the caller's
// pointer so later mutations don't leak into the repository.
func (r *MemoryRepository) Save(_ context.Context, incident *core.Incident) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.incidents[incident.ID] = *incident
	return nil
}

// ListByUser returns all incidents belonging to a user, newest first
func (r *MemoryRepository) ListByUser(_ context.Context, userID string) ([]*core.Incident, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	results := make([]*core.Incident, 0)
	for id := range r.incidents {
		incident := r.incidents[id]
		if incident.UserID == userID {
			results = append(results, &incident)
		}
	}
	sort.Slice(results, func(i, j int) bool {
		return results[i].DetectedAt.After(results[j].DetectedAt)
	})
	return results, nil
}
