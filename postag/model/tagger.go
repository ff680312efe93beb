package model

import (
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/seqlab/postag/postag/corpus"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Tagger is a two-layer token classifier: an embedding lookup into a frozen
// pretrained table followed by a trainable linear layer producing one logit
// per tag class. Only W and B receive gradient updates.
type Tagger struct {
	dims      int
	numLabels int

	emb *mat.Dense // (vocabSize x dims), frozen
	w   *mat.Dense // (dims x numLabels)
	b   []float64  // (numLabels)
}

// NewTagger initializes the linear layer with small seeded random weights
// over the given frozen embedding table.
func NewTagger(emb *mat.Dense, numLabels int, seed int64) (*Tagger, error) {
	if emb == nil {
		return nil, fmt.Errorf("embedding table is required")
	}
	if numLabels <= 0 {
		return nil, fmt.Errorf("need at least one label class, got %d", numLabels)
	}
	_, dims := emb.Dims()

	rng := rand.New(rand.NewPCG(uint64(seed), uint64(seed)+1))
	scale := 1.0 / math.Sqrt(float64(dims))
	wData := make([]float64, dims*numLabels)
	for i := range wData {
		wData[i] = (rng.Float64()*2 - 1) * scale
	}

	return &Tagger{
		dims:      dims,
		numLabels: numLabels,
		emb:       emb,
		w:         mat.NewDense(dims, numLabels, wData),
		b:         make([]float64, numLabels),
	}, nil
}

// Dims returns the embedding dimension.
func (t *Tagger) Dims() int { return t.dims }

// NumLabels returns the number of tag classes.
func (t *Tagger) NumLabels() int { return t.numLabels }

// inputs gathers the embedding rows of every real (non-padded) token of the
// batch into an (n x dims) design matrix, plus the flat gold label ids.
func (t *Tagger) inputs(batch *corpus.Batch) (*mat.Dense, []int, error) {
	n := batch.Tokens()
	if n == 0 {
		return nil, nil, fmt.Errorf("empty batch")
	}
	vocabSize, _ := t.emb.Dims()

	x := mat.NewDense(n, t.dims, nil)
	labels := make([]int, 0, n)
	row := 0
	for i, seq := range batch.TokenIDs {
		for j := 0; j < batch.Lengths[i]; j++ {
			id := seq[j]
			if id < 0 || id >= vocabSize {
				return nil, nil, fmt.Errorf("token id %d outside embedding table of %d rows", id, vocabSize)
			}
			x.SetRow(row, t.emb.RawRowView(id))
			labels = append(labels, batch.LabelIDs[i][j])
			row++
		}
	}
	return x, labels, nil
}

// Forward computes per-token logits Z = XW + b for the real tokens of a
// batch. The returned matrix has one row of width NumLabels per token.
func (t *Tagger) Forward(batch *corpus.Batch) (*mat.Dense, error) {
	x, _, err := t.inputs(batch)
	if err != nil {
		return nil, err
	}
	return t.logits(x), nil
}

func (t *Tagger) logits(x *mat.Dense) *mat.Dense {
	n, _ := x.Dims()
	var z mat.Dense
	z.Mul(x, t.w)
	for i := 0; i < n; i++ {
		row := z.RawRowView(i)
		floats.Add(row, t.b)
	}
	return &z
}

// softmaxInPlace normalizes each row of z into a probability distribution,
// shifted by the row max for numeric stability.
func softmaxInPlace(z *mat.Dense) {
	n, _ := z.Dims()
	for i := 0; i < n; i++ {
		row := z.RawRowView(i)
		max := floats.Max(row)
		sum := 0.0
		for j, v := range row {
			e := math.Exp(v - max)
			row[j] = e
			sum += e
		}
		floats.Scale(1/sum, row)
	}
}

// TrainBatch runs forward, cross-entropy loss, the closed-form gradient for
// the linear layer, and one in-place SGD step. The frozen embedding table is
// never updated. Returns the mean loss over the batch's real tokens.
func (t *Tagger) TrainBatch(batch *corpus.Batch, learningRate float64) (float64, error) {
	x, labels, err := t.inputs(batch)
	if err != nil {
		return 0, err
	}
	n := len(labels)

	probs := t.logits(x)
	softmaxInPlace(probs)

	// Loss and dZ = (softmax(z) - onehot(y)) / n, reusing the probs storage.
	loss := 0.0
	for i, y := range labels {
		if y == corpus.PadLabelID {
			return 0, fmt.Errorf("padded label leaked into real token position %d", i)
		}
		if y < 0 || y >= t.numLabels {
			return 0, fmt.Errorf("label id %d outside %d classes", y, t.numLabels)
		}
		p := probs.At(i, y)
		loss += -math.Log(math.Max(p, 1e-12))
		probs.Set(i, y, p-1)
	}
	loss /= float64(n)
	probs.Scale(1/float64(n), probs)

	// dW = X^T dZ ; db = column sums of dZ
	var dw mat.Dense
	dw.Mul(x.T(), probs)

	db := make([]float64, t.numLabels)
	for i := 0; i < n; i++ {
		floats.Add(db, probs.RawRowView(i))
	}

	// SGD step
	dw.Scale(learningRate, &dw)
	t.w.Sub(t.w, &dw)
	floats.AddScaled(t.b, -learningRate, db)

	return loss, nil
}

// Predict maps token ids to tag class ids by greedy per-token argmax.
func (t *Tagger) Predict(tokenIDs []int) []int {
	if len(tokenIDs) == 0 {
		return nil
	}
	x := mat.NewDense(len(tokenIDs), t.dims, nil)
	vocabSize, _ := t.emb.Dims()
	for i, id := range tokenIDs {
		if id < 0 || id >= vocabSize {
			id = 0
		}
		x.SetRow(i, t.emb.RawRowView(id))
	}
	z := t.logits(x)
	out := make([]int, len(tokenIDs))
	for i := range out {
		out[i] = floats.MaxIdx(z.RawRowView(i))
	}
	return out
}
