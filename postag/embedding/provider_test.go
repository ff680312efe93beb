package embedding

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashProvider(t *testing.T) {
	p := NewHashProvider(16)
	ctx := context.Background()

	vecsA, err := p.Embed(ctx, []string{"dog", "cat"})
	require.NoError(t, err)
	vecsB, err := p.Embed(ctx, []string{"dog", "cat"})
	require.NoError(t, err)

	require.Len(t, vecsA, 2)
	assert.Len(t, vecsA[0], 16)
	assert.Equal(t, vecsA, vecsB, "hash embeddings must be deterministic")
	assert.NotEqual(t, vecsA[0], vecsA[1], "distinct tokens should not collide")
}

func TestNewProviderSelection(t *testing.T) {
	tests := []struct {
		name     string
		provider string
		wantHash bool
	}{
		{"Default", "", true},
		{"Hash", "hash", true},
		{"Dev", "dev", true},
		{"Unknown", "bogus", true},
		{"Cache", "cache", false},
		{"Glove", "glove", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewProvider(tt.provider, 8, "")
			require.NotNil(t, p)
			assert.Equal(t, 8, p.Dimensions())

			_, isHash := p.(*hashProvider)
			assert.Equal(t, tt.wantHash, isHash)
		})
	}
}

func TestAdjustToDims(t *testing.T) {
	vec := []float32{1, 2, 3}

	assert.Equal(t, vec, AdjustToDims(vec, 0), "non-positive target returns input")
	assert.Equal(t, vec, AdjustToDims(vec, 3))
	assert.Equal(t, []float32{1, 2}, AdjustToDims(vec, 2))
	assert.Equal(t, []float32{1, 2, 3, 0, 0}, AdjustToDims(vec, 5))
}

func TestCacheProvider(t *testing.T) {
	dir := t.TempDir()
	vectorFile := filepath.Join(dir, "vectors.txt")
	content := `3 4
the 0.1 0.2 0.3 0.4
dog -1.0 0.5 0.25 0.125
Cat 1 2 3 4
`
	require.NoError(t, os.WriteFile(vectorFile, []byte(content), 0o644))

	p := newCacheProvider(4, vectorFile)
	ctx := context.Background()

	vecs, err := p.Embed(ctx, []string{"the", "dog", "missing"})
	require.NoError(t, err)
	require.Len(t, vecs, 3)

	assert.InDeltaSlice(t, []float32{0.1, 0.2, 0.3, 0.4}, vecs[0], 1e-6)
	assert.InDeltaSlice(t, []float32{-1.0, 0.5, 0.25, 0.125}, vecs[1], 1e-6)
	// Tokens without a pretrained vector get the zero vector
	assert.Equal(t, []float32{0, 0, 0, 0}, vecs[2])
}

func TestCacheProviderDimensionAdjustment(t *testing.T) {
	dir := t.TempDir()
	vectorFile := filepath.Join(dir, "vectors.txt")
	// Vectors on disk are 3-dimensional, provider wants 5
	content := "dog 1 2 3\n"
	require.NoError(t, os.WriteFile(vectorFile, []byte(content), 0o644))

	p := newCacheProvider(5, vectorFile)
	vecs, err := p.Embed(context.Background(), []string{"dog"})
	require.NoError(t, err)
	assert.Equal(t, []float32{1, 2, 3, 0, 0}, vecs[0])
}

func TestCacheProviderErrors(t *testing.T) {
	t.Run("MissingPath", func(t *testing.T) {
		p := newCacheProvider(4, "")
		_, err := p.Embed(context.Background(), []string{"x"})
		require.Error(t, err)
	})

	t.Run("MalformedComponent", func(t *testing.T) {
		dir := t.TempDir()
		vectorFile := filepath.Join(dir, "vectors.txt")
		require.NoError(t, os.WriteFile(vectorFile, []byte("dog 1 two 3\n"), 0o644))

		p := newCacheProvider(3, vectorFile)
		_, err := p.Embed(context.Background(), []string{"dog"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), ":1:")
	})
}
