// Package vocab counts word occurrences across a corpus and freezes them into
// a rank ordered word-to-index Vocabulary.
package vocab

import (
	"errors"
	"fmt"
)

// ErrNonContiguous is returned by New when indices do not cover [0, n) exactly once.
var ErrNonContiguous = errors.New("vocabulary indices must be contiguous from zero")

// Vocabulary is an immutable mapping from word to a position in [0, Len()).
// It is safe for concurrent readers. A nil *Vocabulary behaves as empty.
type Vocabulary struct {
	index map[string]int
	words []string
}

// New builds a Vocabulary from an explicit word-to-index mapping. The map is
// copied, so later changes to it are not observed.
func New(index map[string]int) (*Vocabulary, error) {
	words := make([]string, len(index))
	seen := make([]bool, len(index))
	for w, i := range index {
		if i < 0 || i >= len(index) || seen[i] {
			return nil, fmt.Errorf("%w: word %q has index %d", ErrNonContiguous, w, i)
		}
		seen[i] = true
		words[i] = w
	}
	return fromWords(words), nil
}

func fromWords(words []string) *Vocabulary {
	index := make(map[string]int, len(words))
	for i, w := range words {
		index[w] = i
	}
	return &Vocabulary{index: index, words: words}
}

// Len returns the number of words.
func (v *Vocabulary) Len() int {
	if v == nil {
		return 0
	}
	return len(v.words)
}

// Index returns the position of word and whether it is present.
func (v *Vocabulary) Index(word string) (int, bool) {
	if v == nil {
		return 0, false
	}
	i, ok := v.index[word]
	return i, ok
}

// Word returns the word stored at position i.
func (v *Vocabulary) Word(i int) (string, bool) {
	if i < 0 || i >= v.Len() {
		return "", false
	}
	return v.words[i], true
}

// Words returns the words in index order.
func (v *Vocabulary) Words() []string {
	out := make([]string, v.Len())
	if v != nil {
		copy(out, v.words)
	}
	return out
}

// Map returns a copy of the word-to-index mapping.
func (v *Vocabulary) Map() map[string]int {
	out := make(map[string]int, v.Len())
	if v != nil {
		for w, i := range v.index {
			out[w] = i
		}
	}
	return out
}
