package corpus

import (
	"math/rand/v2"

	"github.com/seqlab/postag/postag/vocab"
)

// PadLabelID marks padded label positions. It is never a valid class index,
// so loss and accuracy code can assert it is masked out.
const PadLabelID = -1

// Batch is a rectangular, length-padded block of token indices, label
// indices, and the true (pre-padding) sequence lengths.
type Batch struct {
	TokenIDs [][]int
	LabelIDs [][]int
	Lengths  []int
}

// Size returns the number of sequences in the batch.
func (b *Batch) Size() int { return len(b.TokenIDs) }

// Width returns the padded sequence length.
func (b *Batch) Width() int {
	if len(b.TokenIDs) == 0 {
		return 0
	}
	return len(b.TokenIDs[0])
}

// Tokens returns the total number of real (non-padding) token positions.
func (b *Batch) Tokens() int {
	total := 0
	for _, n := range b.Lengths {
		total += n
	}
	return total
}

// Batcher groups samples into fixed-size padded batches.
type Batcher struct {
	vocab     *vocab.Vocabulary
	labels    *vocab.LabelSet
	batchSize int
}

// NewBatcher creates a batcher over the given vocabularies.
func NewBatcher(v *vocab.Vocabulary, l *vocab.LabelSet, batchSize int) *Batcher {
	if batchSize <= 0 {
		batchSize = 32
	}
	return &Batcher{vocab: v, labels: l, batchSize: batchSize}
}

// Batches converts samples to index batches in order. The final short batch
// is emitted rather than dropped. Samples whose tags are missing from the
// label set are skipped; the label set has no unknown sentinel.
func (bt *Batcher) Batches(samples []Sample) []*Batch {
	var batches []*Batch
	for start := 0; start < len(samples); start += bt.batchSize {
		end := min(start+bt.batchSize, len(samples))
		if b := bt.pad(samples[start:end]); b.Size() > 0 {
			batches = append(batches, b)
		}
	}
	return batches
}

// Shuffled returns a seeded permutation of samples for one training epoch.
// The input slice is not modified.
func Shuffled(samples []Sample, rng *rand.Rand) []Sample {
	out := make([]Sample, len(samples))
	copy(out, samples)
	rng.Shuffle(len(out), func(i, j int) {
		out[i], out[j] = out[j], out[i]
	})
	return out
}

// pad builds one rectangular batch, padding token rows with the PAD index
// and label rows with PadLabelID.
func (bt *Batcher) pad(samples []Sample) *Batch {
	kept := make([]Sample, 0, len(samples))
	maxLen := 0
	for _, s := range samples {
		if !bt.labels.Contains(s.Tags...) {
			continue
		}
		kept = append(kept, s)
		if len(s.Tokens) > maxLen {
			maxLen = len(s.Tokens)
		}
	}

	b := &Batch{
		TokenIDs: make([][]int, len(kept)),
		LabelIDs: make([][]int, len(kept)),
		Lengths:  make([]int, len(kept)),
	}
	for i, s := range kept {
		tokens := make([]int, maxLen)
		labels := make([]int, maxLen)
		for j := 0; j < maxLen; j++ {
			if j < len(s.Tokens) {
				tokens[j] = bt.vocab.ID(s.Tokens[j])
				labels[j], _ = bt.labels.ID(s.Tags[j])
			} else {
				tokens[j] = vocab.PadID
				labels[j] = PadLabelID
			}
		}
		b.TokenIDs[i] = tokens
		b.LabelIDs[i] = labels
		b.Lengths[i] = len(s.Tokens)
	}
	return b
}
