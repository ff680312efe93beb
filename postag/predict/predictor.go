package predict

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/seqlab/postag/postag/model"
	"github.com/seqlab/postag/postag/vocab"
)

// TokenTag pairs a surface token with its predicted tag.
type TokenTag struct {
	Token string
	Tag   string
}

// Predictor tags free-text input with a trained model.
type Predictor struct {
	model  *model.Tagger
	vocab  *vocab.Vocabulary
	labels *vocab.LabelSet
}

// NewPredictor wires a predictor over a trained model and its vocabularies.
func NewPredictor(t *model.Tagger, v *vocab.Vocabulary, l *vocab.LabelSet) *Predictor {
	return &Predictor{model: t, vocab: v, labels: l}
}

// Tag tokenizes the text, maps tokens through the vocabulary (unknowns to
// UNK), and decodes the per-token argmax predictions back to tag strings.
func (p *Predictor) Tag(text string) []TokenTag {
	tokens := Tokenize(text)
	if len(tokens) == 0 {
		return nil
	}
	ids := make([]int, len(tokens))
	for i, tok := range tokens {
		ids[i] = p.vocab.ID(tok)
	}
	classIDs := p.model.Predict(ids)

	out := make([]TokenTag, len(tokens))
	for i, tok := range tokens {
		tag, ok := p.labels.Tag(classIDs[i])
		if !ok {
			tag = "?"
		}
		out[i] = TokenTag{Token: tok, Tag: tag}
	}
	return out
}

// REPL reads sentences from r and writes aligned token/tag pairs to w until
// EOF or a blank line.
func (p *Predictor) REPL(r io.Reader, w io.Writer) error {
	scanner := bufio.NewScanner(r)
	for {
		fmt.Fprint(w, "> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			break
		}
		for _, tt := range p.Tag(line) {
			fmt.Fprintf(w, "%-20s %s\n", tt.Token, tt.Tag)
		}
	}
	return scanner.Err()
}
