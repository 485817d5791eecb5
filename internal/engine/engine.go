package engine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/knowledge-engine/featurizer/internal/config"
	"github.com/knowledge-engine/featurizer/internal/search"
	"github.com/knowledge-engine/featurizer/internal/storage"
	"github.com/knowledge-engine/featurizer/internal/textnorm"
)

// Engine wires normalization, vocabulary fitting, encoding and storage
type Engine struct {
	Config      *config.Config
	Logger      *logrus.Entry
	Storage     storage.DocumentStorage
	Pipeline    textnorm.Pipeline
	Vectorizer  *search.BagOfWordsVectorizer
	VectorStore *search.VectorStore

	mu    sync.RWMutex
	stats EngineStats
}

type EngineStats struct {
	DocumentsIndexed int64
	VocabularySize   int
	StartTime        time.Time
}

func NewEngine(cfg *config.Config, logger *logrus.Entry, store storage.DocumentStorage) (*Engine, error) {
	pipeline, err := cfg.Pipeline()
	if err != nil {
		return nil, fmt.Errorf("build normalizer pipeline: %w", err)
	}

	vectorizer := search.NewBagOfWordsVectorizer(pipeline, cfg.Featurizer.VocabLimit, logger)

	return &Engine{
		Config:      cfg,
		Logger:      logger,
		Storage:     store,
		Pipeline:    pipeline,
		Vectorizer:  vectorizer,
		VectorStore: search.NewVectorStore(vectorizer),
		stats:       EngineStats{StartTime: time.Now()},
	}, nil
}

// LoadExisting indexes every document already in storage
func (e *Engine) LoadExisting(ctx context.Context) (int, error) {
	docs, err := e.Storage.List()
	if err != nil {
		return 0, fmt.Errorf("list stored documents: %w", err)
	}
	if len(docs) == 0 {
		return 0, nil
	}
	if err := e.addToIndex(ctx, docs); err != nil {
		return 0, err
	}
	e.Logger.Infof("Pre-loaded %d documents into search index", len(docs))
	return len(docs), nil
}

// IndexDocuments refits the index over the corpus with docs merged in, then
// persists them. Documents without an ID get a random one; a document whose
// ID is already indexed replaces the earlier version. Nothing is written when
// indexing fails. A save failure leaves the documents indexed but not stored,
// so they will be missing after a restart unless indexed again.
func (e *Engine) IndexDocuments(ctx context.Context, docs []*search.Document) error {
	for _, doc := range docs {
		if doc.ID == "" {
			doc.ID = uuid.NewString()
		}
	}
	if err := e.addToIndex(ctx, docs); err != nil {
		return err
	}
	for _, doc := range docs {
		if err := e.Storage.Save(doc); err != nil {
			return fmt.Errorf("save document %s: %w", doc.ID, err)
		}
	}
	return nil
}

func (e *Engine) addToIndex(ctx context.Context, docs []*search.Document) error {
	if err := e.VectorStore.AddDocuments(ctx, docs); err != nil {
		return fmt.Errorf("index documents: %w", err)
	}

	total := e.VectorStore.Len()
	size := e.Vectorizer.Encoder().Len()
	e.mu.Lock()
	e.stats.DocumentsIndexed = int64(total)
	e.stats.VocabularySize = size
	e.mu.Unlock()

	e.Logger.WithFields(logrus.Fields{
		"added":      len(docs),
		"total":      total,
		"vocabulary": size,
	}).Info("Index updated")
	return nil
}

// Search returns the configured number of best matches for query
func (e *Engine) Search(query string) []search.SearchResult {
	return e.VectorStore.Search(query, e.Config.Server.SearchTopK)
}

// Normalize runs text through the configured pipeline
func (e *Engine) Normalize(text string) string {
	return e.Pipeline.Apply(text)
}

// Encode normalizes text and returns its bag-of-words vector
func (e *Engine) Encode(text string) []float32 {
	return e.Vectorizer.Transform(text)
}

// Vocabulary returns up to limit ranked vocabulary entries
func (e *Engine) Vocabulary(limit int) []search.VocabularyEntry {
	return e.Vectorizer.Vocabulary(limit)
}

func (e *Engine) Stats() EngineStats {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.stats
}
