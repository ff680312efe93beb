package runs

import "context"

// Params records the hyperparameters a training run was started with.
type Params struct {
	Epochs       int
	BatchSize    int
	LearningRate float64
	Seed         int64
	Provider     string
	Dimensions   int
}

// EpochMetric is one epoch's training loss and dev accuracy.
type EpochMetric struct {
	Epoch       int
	Loss        float64
	DevAccuracy float64
}

// Store persists training runs and their per-epoch metrics.
type Store interface {
	StartRun(ctx context.Context, params Params) (string, error)
	RecordEpoch(ctx context.Context, runID string, m EpochMetric) error
	FinishRun(ctx context.Context, runID string, devAccuracy, testAccuracy float64) error
	Close() error
}

// NoopStore satisfies Store without persisting anything; used when the run
// database is disabled.
type NoopStore struct{}

func (NoopStore) StartRun(ctx context.Context, params Params) (string, error) { return "", nil }
func (NoopStore) RecordEpoch(ctx context.Context, runID string, m EpochMetric) error {
	return nil
}
func (NoopStore) FinishRun(ctx context.Context, runID string, devAccuracy, testAccuracy float64) error {
	return nil
}
func (NoopStore) Close() error { return nil }
