// Package bow encodes text as bag-of-words presence vectors over a frozen
// vocabulary.
package bow

import (
	"errors"

	"gorgonia.org/tensor"

	"github.com/knowledge-engine/featurizer/internal/vocab"
)

// ErrEmptyBatch is returned by EncodeBatch when the batch would have a zero
// dimension.
var ErrEmptyBatch = errors.New("bow: batch has no rows or vocabulary is empty")

// Encoder maps text to a vector with one position per vocabulary word. It
// only reads the vocabulary, so one Encoder may serve many goroutines.
type Encoder struct {
	vocab *vocab.Vocabulary
}

// NewEncoder returns an Encoder over v. Vocabularies are immutable, so the
// encoder keeps using v even if the builder that produced it keeps counting.
func NewEncoder(v *vocab.Vocabulary) *Encoder {
	return &Encoder{vocab: v}
}

// Len returns the length of every vector produced by Encode.
func (e *Encoder) Len() int {
	return e.vocab.Len()
}

// Vocabulary returns the vocabulary the encoder was built with.
func (e *Encoder) Vocabulary() *vocab.Vocabulary {
	return e.vocab
}

// Encode splits text with vocab.Fields and returns a freshly allocated vector
// holding 1 at the index of every vocabulary word present and 0 elsewhere.
// Words outside the vocabulary are ignored.
func (e *Encoder) Encode(text string) []float32 {
	vector := make([]float32, e.Len())
	e.encodeInto(vector, text)
	return vector
}

func (e *Encoder) encodeInto(dst []float32, text string) {
	for _, word := range vocab.Fields(text) {
		if idx, ok := e.vocab.Index(word); ok {
			dst[idx] = 1
		}
	}
}

// EncodeBatch encodes every text into one row of a (len(texts), Len()) dense
// float32 tensor.
func (e *Encoder) EncodeBatch(texts []string) (*tensor.Dense, error) {
	n := e.Len()
	if len(texts) == 0 || n == 0 {
		return nil, ErrEmptyBatch
	}

	backing := make([]float32, len(texts)*n)
	for i, text := range texts {
		e.encodeInto(backing[i*n:(i+1)*n], text)
	}
	return tensor.New(tensor.WithShape(len(texts), n), tensor.WithBacking(backing)), nil
}
