package tokenizer

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"

	tk "github.com/sugarme/tokenizer"
	"github.com/sugarme/tokenizer/model/wordpiece"
	"github.com/sugarme/tokenizer/normalizer"
	"github.com/sugarme/tokenizer/pretokenizer"
	"github.com/sugarme/tokenizer/processor"
)

// SugarWordPiece wraps sugarme/tokenizer WordPiece (BERT-style)
type SugarWordPiece struct {
	t         *tk.Tokenizer
	maxSeqLen int
}

// NewSugarWordPiece loads vocab.txt and builds a BERT WordPiece tokenizer
func NewSugarWordPiece(vocabPath string, maxSeq int) (*SugarWordPiece, error) {
	if fi, err := os.Stat(vocabPath); err != nil || fi.IsDir() {
		candidate := filepath.Join(vocabPath, "vocab.txt")
		if fi2, err2 := os.Stat(candidate); err2 == nil && !fi2.IsDir() {
			vocabPath = candidate
		}
	}

	var wp wordpiece.WordPiece
	if nw, err := wordpiece.NewWordPieceFromFile(vocabPath, "[UNK]"); err == nil {
		wp = nw
	} else {
		builder := wordpiece.NewWordPieceBuilder().Files(vocabPath)
		wp = builder.Build()
	}

	t := tk.NewTokenizer(wp)

	// Basic normalizer and pre-tokenizer similar to BERT
	t.WithNormalizer(normalizer.NewBertNormalizer(true, true, true, true))
	t.WithPreTokenizer(pretokenizer.NewBertPreTokenizer())

	clsID, sepID := specialTokenIDs(vocabPath)
	template := processor.NewBertProcessing(
		processor.PostToken{Value: "[SEP]", Id: sepID},
		processor.PostToken{Value: "[CLS]", Id: clsID})
	t.WithPostProcessor(template)
	t.WithTruncation(&tk.TruncationParams{MaxLength: maxSeq})
	t.WithPadding(&tk.PaddingParams{})
	return &SugarWordPiece{t: t, maxSeqLen: maxSeq}, nil
}

// specialTokenIDs scans the vocab file for [CLS]/[SEP] line indices,
// defaulting to the standard BERT ids when absent.
func specialTokenIDs(vocabPath string) (clsID, sepID int) {
	clsID, sepID = 101, 102
	f, err := os.Open(vocabPath)
	if err != nil {
		return clsID, sepID
	}
	defer f.Close()
	idx := 0
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		switch strings.TrimSpace(scanner.Text()) {
		case "[CLS]":
			clsID = idx
		case "[SEP]":
			sepID = idx
		}
		idx++
	}
	return clsID, sepID
}

func (s *SugarWordPiece) Tokenize(texts []string) ([][]int64, [][]int64, error) {
	ids := make([][]int64, len(texts))
	masks := make([][]int64, len(texts))
	for i, txt := range texts {
		enc, err := s.t.Encode(tk.NewSingleEncodeInput(tk.NewInputSequence(txt)), true)
		if err != nil {
			return nil, nil, err
		}
		uids := enc.GetIds()
		umask := enc.GetAttentionMask()

		// enforce fixed-length output (pad/truncate to maxSeqLen)
		rowIDs := make([]int64, s.maxSeqLen)
		rowMask := make([]int64, s.maxSeqLen)
		n := min(len(uids), s.maxSeqLen)
		for j := 0; j < n; j++ {
			rowIDs[j] = int64(uids[j])
			if j < len(umask) {
				rowMask[j] = int64(umask[j])
			} else {
				rowMask[j] = 1
			}
		}
		ids[i] = rowIDs
		masks[i] = rowMask
	}
	return ids, masks, nil
}
