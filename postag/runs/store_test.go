package runs

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNoopStore(t *testing.T) {
	ctx := context.Background()
	var s Store = NoopStore{}

	id, err := s.StartRun(ctx, Params{Epochs: 1})
	require.NoError(t, err)
	assert.Empty(t, id)

	require.NoError(t, s.RecordEpoch(ctx, id, EpochMetric{Epoch: 1}))
	require.NoError(t, s.FinishRun(ctx, id, 0.9, 0.8))
	require.NoError(t, s.Close())
}

func TestSQLiteStoreLifecycle(t *testing.T) {
	dsn := "file:" + filepath.Join(t.TempDir(), "runs.db")
	store, err := NewSQLiteStore(dsn)
	require.NoError(t, err)
	defer store.Close()

	ctx := context.Background()
	params := Params{
		Epochs:       3,
		BatchSize:    16,
		LearningRate: 0.1,
		Seed:         42,
		Provider:     "hash",
		Dimensions:   100,
	}

	runID, err := store.StartRun(ctx, params)
	require.NoError(t, err)
	require.NotEmpty(t, runID)

	for epoch := 1; epoch <= 3; epoch++ {
		err := store.RecordEpoch(ctx, runID, EpochMetric{
			Epoch:       epoch,
			Loss:        1.0 / float64(epoch),
			DevAccuracy: float64(epoch) * 0.2,
		})
		require.NoError(t, err)
	}

	require.NoError(t, store.FinishRun(ctx, runID, 0.6, 0.55))

	// Duplicate epoch rows violate the primary key
	err = store.RecordEpoch(ctx, runID, EpochMetric{Epoch: 1})
	require.Error(t, err)
}
