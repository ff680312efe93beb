package train

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/seqlab/postag/postag/config"
	"github.com/seqlab/postag/postag/corpus"
	"github.com/seqlab/postag/postag/model"
	"github.com/seqlab/postag/postag/runs"
)

// Result summarizes a finished training run.
type Result struct {
	RunID        string
	Epochs       []runs.EpochMetric
	DevAccuracy  float64
	TestAccuracy float64
	Duration     time.Duration
}

// Trainer drives the epoch loop: shuffle, batch, forward/backward/update,
// then dev evaluation after every epoch. Weight updates are batch-sequential
// on a single goroutine; only evaluation fans out.
type Trainer struct {
	model   *model.Tagger
	batcher *corpus.Batcher
	cfg     config.TrainingConfig
	store   runs.Store
	rng     *rand.Rand
}

// NewTrainer wires a trainer over the model and vocabularies. A nil store
// disables run recording.
func NewTrainer(t *model.Tagger, batcher *corpus.Batcher, cfg config.TrainingConfig, store runs.Store) *Trainer {
	if store == nil {
		store = runs.NoopStore{}
	}
	return &Trainer{
		model:   t,
		batcher: batcher,
		cfg:     cfg,
		store:   store,
		rng:     rand.New(rand.NewPCG(uint64(cfg.Seed), uint64(cfg.Seed)+1)),
	}
}

// Run trains for the configured number of epochs and evaluates on the dev
// split after each one. The test split, when present, is scored once at the
// end. The run and its per-epoch metrics go to the run store.
func (tr *Trainer) Run(ctx context.Context, params runs.Params, splits *corpus.Splits) (*Result, error) {
	start := time.Now()

	runID, err := tr.store.StartRun(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("start run: %w", err)
	}

	devBatches := tr.batcher.Batches(splits.Dev)
	result := &Result{RunID: runID}

	for epoch := 1; epoch <= tr.cfg.Epochs; epoch++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		loss, err := tr.runEpoch(splits.Train)
		if err != nil {
			return nil, fmt.Errorf("epoch %d: %w", epoch, err)
		}

		devAcc := 0.0
		if len(devBatches) > 0 {
			devAcc, err = Evaluate(ctx, tr.model, devBatches, tr.cfg.EvalWorkers)
			if err != nil {
				return nil, fmt.Errorf("epoch %d dev evaluation: %w", epoch, err)
			}
		}

		metric := runs.EpochMetric{Epoch: epoch, Loss: loss, DevAccuracy: devAcc}
		result.Epochs = append(result.Epochs, metric)
		if err := tr.store.RecordEpoch(ctx, runID, metric); err != nil {
			slog.Warn("Failed to record epoch metrics", "run", runID, "epoch", epoch, "error", err)
		}

		slog.Info("Epoch complete",
			"epoch", epoch,
			"of", tr.cfg.Epochs,
			"loss", fmt.Sprintf("%.4f", loss),
			"devAccuracy", fmt.Sprintf("%.4f", devAcc))
	}

	if len(result.Epochs) > 0 {
		result.DevAccuracy = result.Epochs[len(result.Epochs)-1].DevAccuracy
	}

	if len(splits.Test) > 0 {
		testBatches := tr.batcher.Batches(splits.Test)
		result.TestAccuracy, err = Evaluate(ctx, tr.model, testBatches, tr.cfg.EvalWorkers)
		if err != nil {
			return nil, fmt.Errorf("test evaluation: %w", err)
		}
		slog.Info("Test evaluation complete", "testAccuracy", fmt.Sprintf("%.4f", result.TestAccuracy))
	}

	if err := tr.store.FinishRun(ctx, runID, result.DevAccuracy, result.TestAccuracy); err != nil {
		slog.Warn("Failed to finish run record", "run", runID, "error", err)
	}

	result.Duration = time.Since(start)
	return result, nil
}

// runEpoch performs one seeded-shuffle pass over the training split and
// returns the mean batch loss.
func (tr *Trainer) runEpoch(train []corpus.Sample) (float64, error) {
	shuffled := corpus.Shuffled(train, tr.rng)
	batches := tr.batcher.Batches(shuffled)
	if len(batches) == 0 {
		return 0, fmt.Errorf("no trainable batches")
	}

	totalLoss := 0.0
	for _, b := range batches {
		loss, err := tr.model.TrainBatch(b, tr.cfg.LearningRate)
		if err != nil {
			return 0, err
		}
		totalLoss += loss
	}
	return totalLoss / float64(len(batches)), nil
}
