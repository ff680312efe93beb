package vocab

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVocabulary(t *testing.T) {
	tests := []struct {
		name string
		test func(t *testing.T)
	}{
		{"ReservedEntries", testVocabReservedEntries},
		{"RoundTrip", testVocabRoundTrip},
		{"UnknownToken", testVocabUnknownToken},
		{"Persistence", testVocabPersistence},
	}

	for _, tt := range tests {
		t.Run(tt.name, tt.test)
	}
}

func testVocabReservedEntries(t *testing.T) {
	v := NewVocabulary()

	assert.Equal(t, 2, v.Size())
	assert.Equal(t, PadID, v.ID(PadToken))
	assert.Equal(t, UnkID, v.ID(UnkToken))
}

func testVocabRoundTrip(t *testing.T) {
	v := BuildVocabulary([][]string{
		{"the", "dog", "barks"},
		{"the", "cat", "sleeps"},
	})

	// 2 reserved + 5 distinct tokens
	assert.Equal(t, 7, v.Size())

	for _, tok := range []string{"the", "dog", "barks", "cat", "sleeps"} {
		id := v.ID(tok)
		assert.GreaterOrEqual(t, id, 2, "real tokens start after the reserved ids")

		back, ok := v.Token(id)
		require.True(t, ok)
		assert.Equal(t, tok, back)
	}
}

func testVocabUnknownToken(t *testing.T) {
	v := BuildVocabulary([][]string{{"known"}})

	assert.Equal(t, UnkID, v.ID("never-seen"))

	_, ok := v.Token(v.Size())
	assert.False(t, ok)
	_, ok = v.Token(-1)
	assert.False(t, ok)
}

func testVocabPersistence(t *testing.T) {
	v := BuildVocabulary([][]string{{"alpha", "beta"}})
	path := filepath.Join(t.TempDir(), "vocab.json")

	require.NoError(t, SaveJSON(path, v))

	var loaded Vocabulary
	require.NoError(t, LoadJSON(path, &loaded))

	assert.Equal(t, v.Size(), loaded.Size())
	assert.Equal(t, v.ID("beta"), loaded.ID("beta"))
}

func TestLabelSet(t *testing.T) {
	tests := []struct {
		name string
		test func(t *testing.T)
	}{
		{"StableOrdering", testLabelSetStableOrdering},
		{"NoUnknownSentinel", testLabelSetNoUnknownSentinel},
		{"Contains", testLabelSetContains},
	}

	for _, tt := range tests {
		t.Run(tt.name, tt.test)
	}
}

func testLabelSetStableOrdering(t *testing.T) {
	a := BuildLabelSet([][]string{{"NOUN", "VERB"}, {"DET"}})
	b := BuildLabelSet([][]string{{"DET"}, {"VERB", "NOUN"}})

	require.Equal(t, a.Size(), b.Size())
	for _, tag := range []string{"DET", "NOUN", "VERB"} {
		idA, okA := a.ID(tag)
		idB, okB := b.ID(tag)
		require.True(t, okA)
		require.True(t, okB)
		assert.Equal(t, idA, idB, "class indexing should not depend on sample order")
	}
}

func testLabelSetNoUnknownSentinel(t *testing.T) {
	l := BuildLabelSet([][]string{{"NOUN"}})

	_, ok := l.ID("ADJ")
	assert.False(t, ok)

	tag, ok := l.Tag(0)
	require.True(t, ok)
	assert.Equal(t, "NOUN", tag)

	_, ok = l.Tag(l.Size())
	assert.False(t, ok)
}

func testLabelSetContains(t *testing.T) {
	l := BuildLabelSet([][]string{{"NOUN", "VERB", "DET"}})

	assert.True(t, l.Contains("NOUN", "DET"))
	assert.False(t, l.Contains("NOUN", "ADJ"))
}
