package embedding

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"sync"
)

// cacheProvider serves pretrained word vectors loaded from a text file in
// the local cache directory. The format is the word2vec/GloVe text layout:
// one token per line followed by its vector components. An optional
// "<count> <dims>" header line is tolerated and skipped.
type cacheProvider struct {
	dims    int
	path    string
	mu      sync.Mutex
	vectors map[string][]float32
}

func newCacheProvider(dims int, path string) Provider {
	return &cacheProvider{dims: dims, path: path}
}

func (c *cacheProvider) Dimensions() int { return c.dims }

func (c *cacheProvider) ensureLoaded() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.vectors != nil {
		return nil
	}
	if c.path == "" {
		return fmt.Errorf("vector file path is required for the cache provider")
	}
	f, err := os.Open(c.path)
	if err != nil {
		return fmt.Errorf("open vector file: %w", err)
	}
	defer f.Close()

	vectors := make(map[string][]float32, 1<<16)
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		if lineNo == 1 && len(fields) == 2 {
			// word2vec header: "<vocab count> <dims>"
			continue
		}
		if len(fields) < 2 {
			return fmt.Errorf("%s:%d: malformed vector line", c.path, lineNo)
		}
		vec := make([]float32, 0, len(fields)-1)
		for _, fs := range fields[1:] {
			v, err := strconv.ParseFloat(fs, 32)
			if err != nil {
				return fmt.Errorf("%s:%d: parse component: %w", c.path, lineNo, err)
			}
			vec = append(vec, float32(v))
		}
		vectors[fields[0]] = AdjustToDims(vec, c.dims)
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read vector file: %w", err)
	}
	slog.Info("Loaded pretrained vectors", "path", c.path, "entries", len(vectors), "dims", c.dims)
	c.vectors = vectors
	return nil
}

// Embed looks each token up in the vector table. Tokens without a
// pretrained vector get the zero vector.
func (c *cacheProvider) Embed(ctx context.Context, tokens []string) ([][]float32, error) {
	if err := c.ensureLoaded(); err != nil {
		return nil, err
	}
	out := make([][]float32, len(tokens))
	for i, tok := range tokens {
		if vec, ok := c.vectors[tok]; ok {
			out[i] = vec
		} else if vec, ok := c.vectors[strings.ToLower(tok)]; ok {
			out[i] = vec
		} else {
			out[i] = make([]float32, c.dims)
		}
	}
	return out, nil
}
