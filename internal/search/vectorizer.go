package search

import (
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/knowledge-engine/featurizer/internal/bow"
	"github.com/knowledge-engine/featurizer/internal/textnorm"
	"github.com/knowledge-engine/featurizer/internal/vocab"
)

// Vectorizer turns text into a vector
type Vectorizer interface {
	Fit(docs []string)
	Transform(text string) []float32
}

// VocabularyEntry is one ranked vocabulary word with its corpus count
type VocabularyEntry struct {
	Word  string `json:"word"`
	Index int    `json:"index"`
	Count int    `json:"count"`
}

// BagOfWordsVectorizer normalizes text, ranks a vocabulary over the fitted
// corpus and encodes presence vectors against it.
type BagOfWordsVectorizer struct {
	Pipeline textnorm.Pipeline
	Limit    int

	logger  *logrus.Entry
	mu      sync.RWMutex
	builder *vocab.Builder
	encoder *bow.Encoder
}

func NewBagOfWordsVectorizer(pipeline textnorm.Pipeline, limit int, logger *logrus.Entry) *BagOfWordsVectorizer {
	return &BagOfWordsVectorizer{
		Pipeline: pipeline,
		Limit:    limit,
		logger:   logger,
		builder:  vocab.NewBuilder(),
		encoder:  bow.NewEncoder(nil),
	}
}

// Fit replaces the vocabulary with one counted over docs
func (v *BagOfWordsVectorizer) Fit(docs []string) {
	builder := vocab.NewBuilder()
	for _, doc := range docs {
		builder.Feed(v.Pipeline.Apply(doc))
	}
	encoder := bow.NewEncoder(builder.ToVocabulary(v.Limit))

	v.mu.Lock()
	v.builder = builder
	v.encoder = encoder
	v.mu.Unlock()

	if v.logger != nil {
		v.logger.WithFields(logrus.Fields{
			"documents":      len(docs),
			"distinct_words": builder.Len(),
			"vocabulary":     encoder.Len(),
		}).Debug("Fitted bag-of-words vocabulary")
	}
}

// Transform normalizes text and encodes it against the fitted vocabulary.
// Before the first Fit the vector is empty.
func (v *BagOfWordsVectorizer) Transform(text string) []float32 {
	return v.Encoder().Encode(v.Pipeline.Apply(text))
}

// Encoder returns the encoder built by the last Fit
func (v *BagOfWordsVectorizer) Encoder() *bow.Encoder {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.encoder
}

// Vocabulary returns up to limit ranked entries (all when limit <= 0)
func (v *BagOfWordsVectorizer) Vocabulary(limit int) []VocabularyEntry {
	v.mu.RLock()
	builder, voc := v.builder, v.encoder.Vocabulary()
	v.mu.RUnlock()

	words := voc.Words()
	if limit > 0 && limit < len(words) {
		words = words[:limit]
	}
	entries := make([]VocabularyEntry, len(words))
	for i, w := range words {
		entries[i] = VocabularyEntry{Word: w, Index: i, Count: builder.Count(w)}
	}
	return entries
}
