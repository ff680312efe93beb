package embedding

import (
	"context"
	"strings"
)

// Provider produces fixed-dimension embeddings for input tokens
type Provider interface {
	Dimensions() int
	Embed(ctx context.Context, tokens []string) ([][]float32, error)
}

// NewProvider selects an embedding provider by name (e.g., "hash", "cache", "onnx").
// "cache" loads pretrained word vectors from a local cache directory; unknown
// providers fall back to a deterministic hash-based embedder.
func NewProvider(providerName string, dims int, path string) Provider {
	if dims <= 0 {
		dims = 100
	}
	name := strings.ToLower(strings.TrimSpace(providerName))
	switch name {
	case "hash", "", "dev":
		return NewHashProvider(dims)
	case "cache", "glove", "word2vec":
		return newCacheProvider(dims, path)
	default:
		if strings.HasPrefix(name, "onnx") {
			return newONNXProvider(dims, path)
		}
		return NewHashProvider(dims)
	}
}
