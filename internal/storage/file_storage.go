package storage

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/knowledge-engine/featurizer/internal/search"
)

// DocumentStorage defines the interface for persisting indexed documents
type DocumentStorage interface {
	Save(doc *search.Document) error
	Get(id string) (*search.Document, error)
	List() ([]*search.Document, error)
	Close() error
}

// FileStorage implements DocumentStorage using the local file system
type FileStorage struct {
	baseDir string
	mu      sync.RWMutex
}

// NewFileStorage creates a new file-based storage
func NewFileStorage(baseDir string) (*FileStorage, error) {
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}
	return &FileStorage{
		baseDir: baseDir,
	}, nil
}

// Save writes the document to a JSON file
func (fs *FileStorage) Save(doc *search.Document) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	path := filepath.Join(fs.baseDir, safeFilename(doc.ID))

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal document: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}

	return nil
}

// Get retrieves a document from disk
func (fs *FileStorage) Get(id string) (*search.Document, error) {
	fs.mu.RLock()
	defer fs.mu.RUnlock()

	return readDocument(filepath.Join(fs.baseDir, safeFilename(id)))
}

// List loads every stored document, ordered by file name
func (fs *FileStorage) List() ([]*search.Document, error) {
	fs.mu.RLock()
	defer fs.mu.RUnlock()

	entries, err := os.ReadDir(fs.baseDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read storage directory: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".json" {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	docs := make([]*search.Document, 0, len(names))
	for _, name := range names {
		doc, err := readDocument(filepath.Join(fs.baseDir, name))
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

// Close is a no-op for file storage
func (fs *FileStorage) Close() error {
	return nil
}

func readDocument(path string) (*search.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	var doc search.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to unmarshal %s: %w", filepath.Base(path), err)
	}
	return &doc, nil
}

// safeFilename keeps ASCII alphanumerics of the ID for readability and
// appends a hash of the raw ID, so IDs that sanitize alike stay distinct
func safeFilename(id string) string {
	var b strings.Builder
	for _, r := range id {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		} else {
			b.WriteByte('_')
		}
		// Limit length
		if b.Len() >= 64 {
			break
		}
	}
	sum := sha256.Sum256([]byte(id))
	return b.String() + "-" + hex.EncodeToString(sum[:8]) + ".json"
}
