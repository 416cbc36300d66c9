package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jcherranz/spain-power-grid-analysis/internal/core/domain"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func testRun(id string, startedAt time.Time) *domain.Run {
	plant := domain.InfrastructureRecord{
		ID:       1001,
		Element:  domain.ElementWay,
		Kind:     domain.KindPlant,
		Name:     "Central Solar Sur",
		Location: domain.GeoPoint{Lat: 40.40, Lon: -3.70},
		Tags:     map[string]string{"power": "plant", "plant:source": "solar"},
	}
	sub := domain.InfrastructureRecord{
		ID:       2001,
		Element:  domain.ElementWay,
		Kind:     domain.KindSubstation,
		Name:     "SET Villaverde",
		Location: domain.GeoPoint{Lat: 40.41, Lon: -3.69},
		Tags:     map[string]string{"power": "substation", "voltage": "220000"},
	}

	return &domain.Run{
		ID: id,
		Summary: domain.RunSummary{
			Area:        "Madrid_Metropolitan_Area",
			BBox:        domain.BoundingBox{South: 40.3, West: -3.8, North: 40.5, East: -3.6},
			Plants:      1,
			Substations: 1,
			PowerLines:  42,
			Likely:      1,
			StartedAt:   startedAt,
			Runtime:     3200 * time.Millisecond,
		},
		Plants:      []domain.InfrastructureRecord{plant},
		Substations: []domain.InfrastructureRecord{sub},
		Connections: []domain.Connection{
			{PlantKey: plant.Key(), SubstationKey: sub.Key(), DistanceKM: 1.41, Likelihood: domain.LikelihoodLikely},
		},
	}
}

// TestStore_SaveAndGet round-trips a full run through the archive.
func TestStore_SaveAndGet(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	started := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	run := testRun("run-1", started)
	require.NoError(t, store.Save(ctx, run))

	got, err := store.Get(ctx, "run-1")
	require.NoError(t, err)

	assert.Equal(t, run.ID, got.ID)
	assert.Equal(t, run.Summary.Area, got.Summary.Area)
	assert.Equal(t, run.Summary.BBox, got.Summary.BBox)
	assert.Equal(t, run.Summary.PowerLines, got.Summary.PowerLines)
	assert.Equal(t, run.Summary.Runtime, got.Summary.Runtime)
	assert.True(t, got.Summary.StartedAt.Equal(started))

	require.Len(t, got.Plants, 1)
	assert.Equal(t, run.Plants[0], got.Plants[0])
	require.Len(t, got.Substations, 1)
	assert.Equal(t, run.Substations[0], got.Substations[0])
	assert.Equal(t, run.Connections, got.Connections)
}

// TestStore_GetUnknown returns the not-found sentinel.
func TestStore_GetUnknown(t *testing.T) {
	store := setupTestStore(t)

	_, err := store.Get(context.Background(), "no-such-run")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrRunNotFound)
}

// TestStore_List returns summaries most recent first, without records.
func TestStore_List(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	older := testRun("run-old", time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC))
	newer := testRun("run-new", time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	require.NoError(t, store.Save(ctx, older))
	require.NoError(t, store.Save(ctx, newer))

	runs, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, runs, 2)

	assert.Equal(t, "run-new", runs[0].ID)
	assert.Equal(t, "run-old", runs[1].ID)
	assert.Empty(t, runs[0].Plants)
	assert.Empty(t, runs[0].Connections)
	assert.Equal(t, 1, runs[0].Summary.Plants)
}

// TestStore_ListEmpty is fine on a fresh archive.
func TestStore_ListEmpty(t *testing.T) {
	store := setupTestStore(t)

	runs, err := store.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, runs)
}

// TestStore_SaveDuplicateID rejects re-saving the same run id.
func TestStore_SaveDuplicateID(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	run := testRun("run-1", time.Now().UTC())
	require.NoError(t, store.Save(ctx, run))
	assert.Error(t, store.Save(ctx, run))
}

// TestStore_MigrationsIdempotent reopens the same database without
// reapplying migrations.
func TestStore_MigrationsIdempotent(t *testing.T) {
	dir := t.TempDir()

	store, err := NewStore(dir)
	require.NoError(t, err)
	require.NoError(t, store.Save(context.Background(), testRun("run-1", time.Now().UTC())))
	require.NoError(t, store.Close())

	reopened, err := NewStore(dir)
	require.NoError(t, err)
	defer reopened.Close()

	runs, err := reopened.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, runs, 1)
}
