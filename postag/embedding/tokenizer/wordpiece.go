package tokenizer

import (
	"bufio"
	"os"
	"strings"
)

// WordPiece is a minimal vocab-file tokenizer used when the sugarme-backed
// one cannot be built. Whole-word lookups only, no subword merging.
type WordPiece struct {
	vocab     map[string]int64
	unkID     int64
	clsID     int64
	sepID     int64
	maxSeqLen int
}

// LoadWordPieceFromVocab reads a BERT-style vocab.txt, one token per line.
func LoadWordPieceFromVocab(path string, maxSeq int) (*WordPiece, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	vocab := make(map[string]int64, 60000)
	var idx int64
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		tok := strings.TrimSpace(scanner.Text())
		if tok == "" {
			continue
		}
		vocab[tok] = idx
		idx++
	}
	wp := &WordPiece{vocab: vocab, maxSeqLen: maxSeq}
	wp.unkID = idOrDefault(vocab, "[UNK]", 100)
	wp.clsID = idOrDefault(vocab, "[CLS]", 101)
	wp.sepID = idOrDefault(vocab, "[SEP]", 102)
	return wp, scanner.Err()
}

func idOrDefault(vocab map[string]int64, token string, fallback int64) int64 {
	if id, ok := vocab[token]; ok {
		return id
	}
	return fallback
}

func (w *WordPiece) Tokenize(texts []string) ([][]int64, [][]int64, error) {
	ids := make([][]int64, len(texts))
	masks := make([][]int64, len(texts))
	for i, t := range texts {
		tokens := strings.Fields(t)
		seq := make([]int64, 0, w.maxSeqLen)
		mask := make([]int64, 0, w.maxSeqLen)
		seq = append(seq, w.clsID)
		mask = append(mask, 1)
		for _, tk := range tokens {
			id, ok := w.vocab[tk]
			if !ok {
				id = w.unkID
			}
			seq = append(seq, id)
			mask = append(mask, 1)
			if len(seq) >= w.maxSeqLen-1 {
				break
			}
		}
		seq = append(seq, w.sepID)
		mask = append(mask, 1)
		// pad
		for len(seq) < w.maxSeqLen {
			seq = append(seq, 0)
			mask = append(mask, 0)
		}
		ids[i] = seq
		masks[i] = mask
	}
	return ids, masks, nil
}
