package storage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/secureguard/phishguard/internal/core"
)

func TestMemoryRepository_SaveAndGet(t *testing.T) {
	repo := NewMemoryRepository(zap.NewNop())
	ctx := context.Background()

	incident := core.NewIncident("id-1", "user-1", "a@b.com", "subject", "body", nil)
	require.NoError(t, repo.Save(ctx, incident))

	loaded, err := repo.GetByID(ctx, "id-1")
	require.NoError(t, err)
	assert.Equal(t, "id-1", loaded.ID)
	assert.Equal(t, core.StatusPending, loaded.Status)

	_, err = repo.GetByID(ctx, "missing")
	assert.ErrorIs(t, err, core.ErrIncidentNotFound)
}

func TestMemoryRepository_SaveIsUpsert(t *testing.T) {
	repo := NewMemoryRepository(zap.NewNop())
	ctx := context.Background()

	incident := core.NewIncident("id-1", "user-1", "a@b.com", "subject", "body", nil)
	require.NoError(t, repo.Save(ctx, incident))

	incident.MarkAnalyzed(0.95, core.AnalysisReport{})
	require.NoError(t, repo.Save(ctx, incident))

	loaded, err := repo.GetByID(ctx, "id-1")
	require.NoError(t, err)
	assert.Equal(t, core.StatusConfirmedPhishing, loaded.Status)
	assert.Equal(t, 0.95, loaded.ConfidenceScore)
}

func TestMemoryRepository_StoredCopyIsDetached(t *testing.T) {
	repo := NewMemoryRepository(zap.NewNop())
	ctx := context.Background()

	incident := core.NewIncident("id-1", "user-1", "a@b.com", "subject", "body", nil)
	require.NoError(t, repo.Save(ctx, incident))

	// Mutating the caller's copy must not leak into the repository
	incident.Status = core.StatusConfirmedPhishing

	loaded, err := repo.GetByID(ctx, "id-1")
	require.NoError(t, err)
	assert.Equal(t, core.StatusPending, loaded.Status)
}

func TestMemoryRepository_ListByUser(t *testing.T) {
	repo := NewMemoryRepository(zap.NewNop())
	ctx := context.Background()

	older := core.NewIncident("id-1", "user-1", "a@b.com", "first", "body", nil)
	older.DetectedAt = time.Now().UTC().Add(-time.Hour)
	newer := core.NewIncident("id-2", "user-1", "a@b.com", "second", "body", nil)
	other := core.NewIncident("id-3", "user-2", "a@b.com", "third", "body", nil)

	require.NoError(t, repo.Save(ctx, older))
	require.NoError(t, repo.Save(ctx, newer))
	require.NoError(t, repo.Save(ctx, other))

	incidents, err := repo.ListByUser(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, incidents, 2)
	assert.Equal(t, "id-2", incidents[0].ID)
	assert.Equal(t, "id-1", incidents[1].ID)

	empty, err := repo.ListByUser(ctx, "nobody")
	require.NoError(t, err)
	assert.Empty(t, empty)
}
