package vocab

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
)

// Reserved vocabulary indices. PAD fills rectangular batches and owns the
// all-zero embedding row; UNK absorbs out-of-vocabulary tokens.
const (
	PadID = 0
	UnkID = 1

	PadToken = "<pad>"
	UnkToken = "<unk>"
)

// Vocabulary is a bidirectional mapping between tokens and dense integer
// indices with reserved PAD and UNK entries.
type Vocabulary struct {
	TokenToID map[string]int `json:"token_to_id"`
	IDToToken []string       `json:"id_to_token"`
}

// NewVocabulary returns a vocabulary containing only the reserved entries.
func NewVocabulary() *Vocabulary {
	v := &Vocabulary{TokenToID: make(map[string]int)}
	v.add(PadToken)
	v.add(UnkToken)
	return v
}

// BuildVocabulary collects every distinct token from the training samples,
// in first-seen order after the reserved entries.
func BuildVocabulary(tokenSeqs [][]string) *Vocabulary {
	v := NewVocabulary()
	for _, tokens := range tokenSeqs {
		for _, tok := range tokens {
			v.add(tok)
		}
	}
	return v
}

func (v *Vocabulary) add(token string) int {
	if id, ok := v.TokenToID[token]; ok {
		return id
	}
	id := len(v.IDToToken)
	v.TokenToID[token] = id
	v.IDToToken = append(v.IDToToken, token)
	return id
}

// ID maps a token to its index, returning UnkID for unseen tokens.
func (v *Vocabulary) ID(token string) int {
	if id, ok := v.TokenToID[token]; ok {
		return id
	}
	return UnkID
}

// Token maps an index back to its token string.
func (v *Vocabulary) Token(id int) (string, bool) {
	if id < 0 || id >= len(v.IDToToken) {
		return "", false
	}
	return v.IDToToken[id], true
}

// Size returns the number of entries including the reserved ones.
func (v *Vocabulary) Size() int { return len(v.IDToToken) }

// Tokens returns all tokens in index order.
func (v *Vocabulary) Tokens() []string {
	out := make([]string, len(v.IDToToken))
	copy(out, v.IDToToken)
	return out
}

// LabelSet is a bidirectional mapping between tag strings and dense indices.
// Unlike the token vocabulary it has no unknown sentinel: a tag either
// exists or the lookup reports false.
type LabelSet struct {
	TagToID map[string]int `json:"tag_to_id"`
	IDToTag []string       `json:"id_to_tag"`
}

// BuildLabelSet collects every distinct tag from the training samples.
// Tags are sorted so the class indexing is stable across runs.
func BuildLabelSet(tagSeqs [][]string) *LabelSet {
	seen := make(map[string]struct{})
	for _, tags := range tagSeqs {
		for _, tag := range tags {
			seen[tag] = struct{}{}
		}
	}
	sorted := make([]string, 0, len(seen))
	for tag := range seen {
		sorted = append(sorted, tag)
	}
	sort.Strings(sorted)

	l := &LabelSet{TagToID: make(map[string]int, len(sorted))}
	for _, tag := range sorted {
		l.TagToID[tag] = len(l.IDToTag)
		l.IDToTag = append(l.IDToTag, tag)
	}
	return l
}

// ID maps a tag to its class index.
func (l *LabelSet) ID(tag string) (int, bool) {
	id, ok := l.TagToID[tag]
	return id, ok
}

// Tag maps a class index back to its tag string.
func (l *LabelSet) Tag(id int) (string, bool) {
	if id < 0 || id >= len(l.IDToTag) {
		return "", false
	}
	return l.IDToTag[id], true
}

// Contains reports whether every given tag is in the set.
func (l *LabelSet) Contains(tags ...string) bool {
	for _, tag := range tags {
		if _, ok := l.TagToID[tag]; !ok {
			return false
		}
	}
	return true
}

// Size returns the number of classes.
func (l *LabelSet) Size() int { return len(l.IDToTag) }

// SaveJSON writes a vocabulary or label set to disk.
func SaveJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// LoadJSON reads a vocabulary or label set from disk.
func LoadJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}
