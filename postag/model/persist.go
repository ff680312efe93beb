package model

import (
	"encoding/gob"
	"fmt"
	"os"

	"github.com/seqlab/postag/postag/vocab"

	"gonum.org/v1/gonum/mat"
)

// snapshot is the gob wire form of a trained tagger together with the
// vocabularies it was trained against, so the predictor can restore the
// exact token and tag indexing.
type snapshot struct {
	Dims      int
	NumLabels int
	VocabSize int
	Emb       []float64
	W         []float64
	B         []float64
	Vocab     *vocab.Vocabulary
	Labels    *vocab.LabelSet
}

// Save writes the model and its vocabularies to a single gob file.
func Save(path string, t *Tagger, v *vocab.Vocabulary, l *vocab.LabelSet) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create model file: %w", err)
	}
	defer f.Close()

	vocabSize, _ := t.emb.Dims()
	snap := snapshot{
		Dims:      t.dims,
		NumLabels: t.numLabels,
		VocabSize: vocabSize,
		Emb:       append([]float64(nil), t.emb.RawMatrix().Data...),
		W:         append([]float64(nil), t.w.RawMatrix().Data...),
		B:         append([]float64(nil), t.b...),
		Vocab:     v,
		Labels:    l,
	}
	if err := gob.NewEncoder(f).Encode(&snap); err != nil {
		return fmt.Errorf("encode model: %w", err)
	}
	return nil
}

// Load restores a model and its vocabularies from a gob file.
func Load(path string) (*Tagger, *vocab.Vocabulary, *vocab.LabelSet, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("open model file: %w", err)
	}
	defer f.Close()

	var snap snapshot
	if err := gob.NewDecoder(f).Decode(&snap); err != nil {
		return nil, nil, nil, fmt.Errorf("decode model: %w", err)
	}
	if snap.Dims <= 0 || snap.NumLabels <= 0 || snap.VocabSize <= 0 {
		return nil, nil, nil, fmt.Errorf("model file %s has invalid shape %dx%dx%d", path, snap.VocabSize, snap.Dims, snap.NumLabels)
	}
	if len(snap.Emb) != snap.VocabSize*snap.Dims || len(snap.W) != snap.Dims*snap.NumLabels || len(snap.B) != snap.NumLabels {
		return nil, nil, nil, fmt.Errorf("model file %s has inconsistent weight sizes", path)
	}

	t := &Tagger{
		dims:      snap.Dims,
		numLabels: snap.NumLabels,
		emb:       mat.NewDense(snap.VocabSize, snap.Dims, snap.Emb),
		w:         mat.NewDense(snap.Dims, snap.NumLabels, snap.W),
		b:         snap.B,
	}
	return t, snap.Vocab, snap.Labels, nil
}
