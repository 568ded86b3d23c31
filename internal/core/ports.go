package core

import (
	"context"
	"errors"
)

// ErrIncidentNotFound is returned by repositories when no incident exists for an id
var ErrIncidentNotFound = errors.New("incident not found")

// ContentClassifier scores raw text for phishing language patterns.
//
// Implementations must return a value in [0,1] and be deterministic for a
// fixed trained model and identical input. A classifier whose model is not
// yet initialized returns the neutral value 0.5; callers must treat that as
// "unknown", not "benign". An error marks the classifier as unavailable and
// the engine degrades to the neutral score.
type ContentClassifier interface {
	Score(ctx context.Context, text string) (float64, error)
}

// ProviderResult is the reputation verdict returned by every threat
// intelligence provider. The engine treats it as opaque beyond this shape.
type ProviderResult struct {
	Safe       bool   `json:"safe"`
	ThreatType string `json:"threat_type,omitempty"`
	Provider   string `json:"provider"`
}

// ThreatIntelProvider is the external URL/hash reputation lookup.
//
// Implementations must never let a transport failure escape into the engine:
// on failure they resolve to a ProviderResult according to their configured
// fail policy (fail-open: safe, fail-closed: unsafe).
type ThreatIntelProvider interface {
	CheckURL(ctx context.Context, url string) ProviderResult
	CheckFileHash(ctx context.Context, hash string) ProviderResult
}

// IncidentRepository persists incidents. Save has upsert semantics. Writes
// for a given incident are strictly sequential (create then update);
// concurrent writers to the same id must be serialized by the caller.
type IncidentRepository interface {
	GetByID(ctx context.Context, id string) (*Incident, error)
	Save(ctx context.Context, incident *Incident) error
	ListByUser(ctx context.Context, userID string) ([]*Incident, error)
}

// Notifier broadcasts an alert payload to interested parties. Delivery is
// best effort; callers swallow errors and never retry synchronously.
type Notifier interface {
	Broadcast(ctx context.Context, payload string) error
}
