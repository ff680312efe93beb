package predict

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/seqlab/postag/postag/corpus"
	"github.com/seqlab/postag/postag/embedding"
	"github.com/seqlab/postag/postag/model"
	"github.com/seqlab/postag/postag/vocab"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{"SimpleSentence", "The dog barks", []string{"the", "dog", "barks"}},
		{"TrailingPunctuation", "The dog barks.", []string{"the", "dog", "barks", "."}},
		{"InnerPunctuation", "don't stop", []string{"don", "'", "t", "stop"}},
		{"ExtraWhitespace", "  a\tb  ", []string{"a", "b"}},
		{"Empty", "", nil},
		{"OnlyPunctuation", "?!", []string{"?", "!"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Tokenize(tt.in))
		})
	}
}

func trainedPredictor(t *testing.T) *Predictor {
	t.Helper()
	samples := []corpus.Sample{
		{Tokens: []string{"the", "dog", "barks"}, Tags: []string{"DET", "NOUN", "VERB"}},
		{Tokens: []string{"the", "cat", "sleeps"}, Tags: []string{"DET", "NOUN", "VERB"}},
	}
	tokenSeqs := make([][]string, len(samples))
	tagSeqs := make([][]string, len(samples))
	for i, s := range samples {
		tokenSeqs[i] = s.Tokens
		tagSeqs[i] = s.Tags
	}
	v := vocab.BuildVocabulary(tokenSeqs)
	l := vocab.BuildLabelSet(tagSeqs)

	table, err := embedding.BuildTable(context.Background(), embedding.NewHashProvider(16), v)
	require.NoError(t, err)
	tagger, err := model.NewTagger(table, l.Size(), 5)
	require.NoError(t, err)

	batcher := corpus.NewBatcher(v, l, 2)
	for epoch := 0; epoch < 200; epoch++ {
		for _, b := range batcher.Batches(samples) {
			_, err := tagger.TrainBatch(b, 0.5)
			require.NoError(t, err)
		}
	}

	return NewPredictor(tagger, v, l)
}

func TestPredictorTag(t *testing.T) {
	p := trainedPredictor(t)

	tagged := p.Tag("The dog barks")
	require.Len(t, tagged, 3)

	assert.Equal(t, TokenTag{Token: "the", Tag: "DET"}, tagged[0])
	assert.Equal(t, TokenTag{Token: "dog", Tag: "NOUN"}, tagged[1])
	assert.Equal(t, TokenTag{Token: "barks", Tag: "VERB"}, tagged[2])
}

func TestPredictorTagUnknownToken(t *testing.T) {
	p := trainedPredictor(t)

	// Unknown tokens go through the UNK embedding and still get some tag
	tagged := p.Tag("zyzzyva")
	require.Len(t, tagged, 1)
	assert.Equal(t, "zyzzyva", tagged[0].Token)
	assert.NotEmpty(t, tagged[0].Tag)
}

func TestPredictorTagEmptyInput(t *testing.T) {
	p := trainedPredictor(t)
	assert.Nil(t, p.Tag("   "))
}

func TestPredictorREPL(t *testing.T) {
	p := trainedPredictor(t)

	in := strings.NewReader("the dog barks\n\n")
	var out bytes.Buffer

	require.NoError(t, p.REPL(in, &out))

	text := out.String()
	assert.Contains(t, text, "dog")
	assert.Contains(t, text, "NOUN")
	// Two prompts: the sentence and the terminating blank line
	assert.Equal(t, 2, strings.Count(text, "> "))
}
