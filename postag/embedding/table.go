package embedding

import (
	"context"
	"fmt"

	"github.com/seqlab/postag/postag/vocab"

	"gonum.org/v1/gonum/mat"
)

// BuildTable embeds every vocabulary token once and assembles the frozen
// (vocabSize x dims) lookup table. The PAD row stays all zeros so padded
// positions contribute nothing downstream.
func BuildTable(ctx context.Context, p Provider, v *vocab.Vocabulary) (*mat.Dense, error) {
	dims := p.Dimensions()
	table := mat.NewDense(v.Size(), dims, nil)

	tokens := v.Tokens()
	vecs, err := p.Embed(ctx, tokens[vocab.UnkID:])
	if err != nil {
		return nil, fmt.Errorf("embed vocabulary: %w", err)
	}
	for i, vec := range vecs {
		if len(vec) != dims {
			return nil, fmt.Errorf("provider returned %d dims for %q, want %d", len(vec), tokens[vocab.UnkID+i], dims)
		}
		row := vocab.UnkID + i
		for j, val := range vec {
			table.Set(row, j, float64(val))
		}
	}
	return table, nil
}
