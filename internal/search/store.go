package search

import (
	"context"
	"math"
	"runtime"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"
)

// SearchResult holds a matching document and its score
type SearchResult struct {
	Document *Document
	Score    float64
}

// VectorStore holds the indexed documents. Documents with a non-empty ID
// are unique: adding one whose ID is already indexed replaces it in place.
type VectorStore struct {
	Vectorizer Vectorizer

	mu        sync.RWMutex
	documents []*Document
	byID      map[string]int
}

func NewVectorStore(vectorizer Vectorizer) *VectorStore {
	return &VectorStore{
		Vectorizer: vectorizer,
		documents:  make([]*Document, 0),
		byID:       make(map[string]int),
	}
}

// AddDocuments merges docs into the index, refits the vectorizer on the whole
// corpus and re-encodes every document so all vectors share one vocabulary.
// Within one call a later document wins over an earlier one with the same ID.
func (vs *VectorStore) AddDocuments(ctx context.Context, docs []*Document) error {
	vs.mu.Lock()
	defer vs.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	all := make([]*Document, len(vs.documents), len(vs.documents)+len(docs))
	copy(all, vs.documents)
	byID := make(map[string]int, len(vs.byID)+len(docs))
	for id, i := range vs.byID {
		byID[id] = i
	}
	for _, d := range docs {
		if i, ok := byID[d.ID]; ok {
			all[i] = d
			continue
		}
		if d.ID != "" {
			byID[d.ID] = len(all)
		}
		all = append(all, d)
	}

	vs.Vectorizer.Fit(contents(all))

	vectors := make([][]float32, len(all))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, d := range all {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			vectors[i] = vs.Vectorizer.Transform(d.Content)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		// Restore the vocabulary the existing vectors were encoded with.
		vs.Vectorizer.Fit(contents(vs.documents))
		return err
	}

	for i, d := range all {
		d.Vector = vectors[i]
	}
	vs.documents = all
	vs.byID = byID
	return nil
}

func contents(docs []*Document) []string {
	texts := make([]string, len(docs))
	for i, d := range docs {
		texts[i] = d.Content
	}
	return texts
}

// Search finds the most similar documents to the query
func (vs *VectorStore) Search(query string, topK int) []SearchResult {
	vs.mu.RLock()
	defer vs.mu.RUnlock()

	queryVector := vs.Vectorizer.Transform(query)
	var results []SearchResult

	for _, doc := range vs.documents {
		score := CosineSimilarity(queryVector, doc.Vector)
		if score > 0 {
			results = append(results, SearchResult{
				Document: doc,
				Score:    score,
			})
		}
	}

	// Sort by descending score, then ID for stable output
	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].Document.ID < results[j].Document.ID
	})

	if topK > 0 && len(results) > topK {
		return results[:topK]
	}
	return results
}

// Len returns the number of indexed documents
func (vs *VectorStore) Len() int {
	vs.mu.RLock()
	defer vs.mu.RUnlock()
	return len(vs.documents)
}

// CosineSimilarity calculates the cosine similarity between two vectors
func CosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0
	}
	var dotProduct, normA, normB float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dotProduct += x * y
		normA += x * x
		normB += y * y
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dotProduct / (math.Sqrt(normA) * math.Sqrt(normB))
}
