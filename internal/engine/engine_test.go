package engine_test

import (
	"context"
	"errors"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/knowledge-engine/featurizer/internal/config"
	"github.com/knowledge-engine/featurizer/internal/engine"
	"github.com/knowledge-engine/featurizer/internal/search"
)

// Mocks

type MockStorage struct {
	mock.Mock
}

func (m *MockStorage) Save(doc *search.Document) error {
	args := m.Called(doc)
	return args.Error(0)
}

func (m *MockStorage) Get(id string) (*search.Document, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*search.Document), args.Error(1)
}

func (m *MockStorage) List() ([]*search.Document, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*search.Document), args.Error(1)
}

func (m *MockStorage) Close() error {
	args := m.Called()
	return args.Error(0)
}

func newTestEngine(t *testing.T) (*engine.Engine, *MockStorage) {
	t.Helper()
	cfg := config.Load()
	cfg.Featurizer.Normalizers = "lower,url,tags,alphanum"
	cfg.Featurizer.Transliterate = true
	cfg.Featurizer.VocabLimit = 0
	cfg.Server.SearchTopK = 2

	logger := logrus.New()
	logger.SetLevel(logrus.WarnLevel)
	store := new(MockStorage)

	eng, err := engine.NewEngine(cfg, logger.WithField("test", "engine"), store)
	require.NoError(t, err)
	return eng, store
}

func TestNewEngine(t *testing.T) {
	eng, _ := newTestEngine(t)
	assert.NotNil(t, eng.VectorStore)
	assert.Len(t, eng.Pipeline, 5)
	assert.False(t, eng.Stats().StartTime.IsZero())
}

func TestNewEngine_BadPipeline(t *testing.T) {
	cfg := config.Load()
	cfg.Featurizer.Normalizers = "stem"

	_, err := engine.NewEngine(cfg, logrus.New().WithField("test", "engine"), new(MockStorage))
	assert.ErrorContains(t, err, "normalizer pipeline")
}

func TestEngine_IndexAndSearch(t *testing.T) {
	eng, store := newTestEngine(t)
	store.On("Save", mock.AnythingOfType("*search.Document")).Return(nil)

	docs := []*search.Document{
		{ID: "doc1", Content: "Go is a statically typed, compiled programming language designed at Google."},
		{ID: "doc2", Content: "Concurrency in #Go is a first-class citizen."},
		{Content: "Bananas are yellow."},
	}
	require.NoError(t, eng.IndexDocuments(context.Background(), docs))

	assert.NotEmpty(t, docs[2].ID)
	store.AssertNumberOfCalls(t, "Save", 3)

	stats := eng.Stats()
	assert.Equal(t, int64(3), stats.DocumentsIndexed)
	assert.Equal(t, eng.Vectorizer.Encoder().Len(), stats.VocabularySize)

	results := eng.Search("concurrency in go")
	require.NotEmpty(t, results)
	assert.LessOrEqual(t, len(results), 2)
	assert.Equal(t, "doc2", results[0].Document.ID)
}

func TestEngine_IndexSaveError(t *testing.T) {
	eng, store := newTestEngine(t)
	store.On("Save", mock.Anything).Return(errors.New("disk full"))

	err := eng.IndexDocuments(context.Background(), []*search.Document{{ID: "x", Content: "text"}})
	assert.ErrorContains(t, err, "disk full")
	// Indexing happens before persistence
	assert.Equal(t, 1, eng.VectorStore.Len())
}

func TestEngine_IndexCanceledDoesNotPersist(t *testing.T) {
	eng, store := newTestEngine(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := eng.IndexDocuments(ctx, []*search.Document{{ID: "x", Content: "text"}})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, eng.VectorStore.Len())
	store.AssertNotCalled(t, "Save", mock.Anything)
}

func TestEngine_ReindexSameID(t *testing.T) {
	eng, store := newTestEngine(t)
	store.On("Save", mock.Anything).Return(nil)
	ctx := context.Background()

	require.NoError(t, eng.IndexDocuments(ctx, []*search.Document{{ID: "doc", Content: "stale words"}}))
	require.NoError(t, eng.IndexDocuments(ctx, []*search.Document{{ID: "doc", Content: "fresh content"}}))

	assert.Equal(t, 1, eng.VectorStore.Len())
	assert.Equal(t, int64(1), eng.Stats().DocumentsIndexed)
	assert.Empty(t, eng.Search("stale"))

	results := eng.Search("fresh")
	require.Len(t, results, 1)
	assert.Equal(t, "doc", results[0].Document.ID)

	for _, entry := range eng.Vocabulary(0) {
		assert.NotEqual(t, "stale", entry.Word)
	}
}

func TestEngine_LoadExisting(t *testing.T) {
	eng, store := newTestEngine(t)
	store.On("List").Return([]*search.Document{
		{ID: "a", Content: "alpha beta"},
		{ID: "b", Content: "beta gamma"},
	}, nil)

	n, err := eng.LoadExisting(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, 2, eng.VectorStore.Len())

	entries := eng.Vocabulary(0)
	require.Len(t, entries, 3)
	assert.Equal(t, search.VocabularyEntry{Word: "beta", Index: 0, Count: 2}, entries[0])
	store.AssertNotCalled(t, "Save", mock.Anything)
}

func TestEngine_LoadExistingError(t *testing.T) {
	eng, store := newTestEngine(t)
	store.On("List").Return(nil, errors.New("permission denied"))

	_, err := eng.LoadExisting(context.Background())
	assert.ErrorContains(t, err, "permission denied")
}

func TestEngine_NormalizeAndEncode(t *testing.T) {
	eng, store := newTestEngine(t)
	store.On("Save", mock.Anything).Return(nil)

	assert.Equal(t, "cafe __URL__ golang", eng.Normalize("Café https://go.dev/doc #golang!"))

	require.NoError(t, eng.IndexDocuments(context.Background(), []*search.Document{
		{ID: "1", Content: "cat cat dog"},
	}))
	assert.Equal(t, []float32{1, 0}, eng.Encode("The CAT sat"))
}
