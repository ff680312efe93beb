package corpus

import "fmt"

// Sample is one labeled sentence: a token sequence and a parallel tag
// sequence of equal length.
type Sample struct {
	Tokens []string `json:"tokens"`
	Tags   []string `json:"tags"`
}

// Validate checks the per-sample alignment invariant.
func (s *Sample) Validate() error {
	if len(s.Tokens) == 0 {
		return fmt.Errorf("sample has no tokens")
	}
	if len(s.Tokens) != len(s.Tags) {
		return fmt.Errorf("token/tag length mismatch: %d tokens, %d tags", len(s.Tokens), len(s.Tags))
	}
	return nil
}

// Splits holds the three dataset splits.
type Splits struct {
	Train []Sample
	Dev   []Sample
	Test  []Sample
}
