package train

import (
	"context"
	"runtime"
	"sync/atomic"

	"github.com/seqlab/postag/postag/corpus"
	"github.com/seqlab/postag/postag/model"

	"github.com/sourcegraph/conc/pool"
)

// Evaluate computes token-level accuracy over the given batches. Padded
// positions never count toward either side of the ratio: only the first
// Lengths[i] positions of each sequence are scored.
//
// Batches are scored concurrently with a bounded conc pool; prediction is
// read-only on the model so this is safe while no training step runs.
func Evaluate(ctx context.Context, t *model.Tagger, batches []*corpus.Batch, workers int) (float64, error) {
	if len(batches) == 0 {
		return 0, nil
	}
	if workers <= 0 {
		workers = min(max(runtime.NumCPU(), 2), 16)
	}

	var correct, total atomic.Int64

	p := pool.New().WithMaxGoroutines(workers).WithContext(ctx)
	for _, b := range batches {
		batch := b
		p.Go(func(ctx context.Context) error {
			c, n := scoreBatch(t, batch)
			correct.Add(c)
			total.Add(n)
			return ctx.Err()
		})
	}
	if err := p.Wait(); err != nil {
		return 0, err
	}

	if total.Load() == 0 {
		return 0, nil
	}
	return float64(correct.Load()) / float64(total.Load()), nil
}

func scoreBatch(t *model.Tagger, b *corpus.Batch) (correct, total int64) {
	for i, seq := range b.TokenIDs {
		n := b.Lengths[i]
		predicted := t.Predict(seq[:n])
		for j := 0; j < n; j++ {
			if predicted[j] == b.LabelIDs[i][j] {
				correct++
			}
		}
		total += int64(n)
	}
	return correct, total
}
