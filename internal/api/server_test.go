package api_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/knowledge-engine/featurizer/internal/api"
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

func setupServer(t *testing.T) (*api.Server, *MockStorage) {
	t.Helper()
	cfg := config.Load()
	cfg.Featurizer.Normalizers = "lower,url,tags,alphanum"
	cfg.Featurizer.Transliterate = true
	cfg.Featurizer.VocabLimit = 0
	cfg.Server.SearchTopK = 5

	logger := logrus.New()
	logger.SetLevel(logrus.WarnLevel)
	entry := logger.WithField("test", "api")
	store := new(MockStorage)

	eng, err := engine.NewEngine(cfg, entry, store)
	require.NoError(t, err)

	return api.NewServer(eng, entry), store
}

func do(server *api.Server, method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	rr := httptest.NewRecorder()
	server.Router.ServeHTTP(rr, req)
	return rr
}

func TestHandleStatus(t *testing.T) {
	server, _ := setupServer(t)

	rr := do(server, http.MethodGet, "/api/v1/status", "")
	assert.Equal(t, http.StatusOK, rr.Code)

	var resp api.StatusResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, int64(0), resp.Documents)
	assert.Equal(t, 0, resp.VocabularySize)
}

func TestHandleDocuments(t *testing.T) {
	server, store := setupServer(t)
	store.On("Save", mock.Anything).Return(nil)

	rr := do(server, http.MethodPost, "/api/v1/documents",
		`{"documents": [{"id": "doc1", "content": "Hello world"}, {"content": "Goodbye world"}]}`)
	assert.Equal(t, http.StatusCreated, rr.Code)

	var resp api.DocumentsResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.Indexed)
	require.Len(t, resp.IDs, 2)
	assert.Equal(t, "doc1", resp.IDs[0])
	assert.NotEmpty(t, resp.IDs[1])

	rr = do(server, http.MethodGet, "/api/v1/status", "")
	var status api.StatusResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &status))
	assert.Equal(t, int64(2), status.Documents)
	assert.Equal(t, 3, status.VocabularySize)
}

func TestHandleDocuments_BadRequests(t *testing.T) {
	server, _ := setupServer(t)

	tests := []struct {
		name   string
		method string
		body   string
		code   int
	}{
		{"Wrong method", http.MethodGet, "", http.StatusMethodNotAllowed},
		{"Invalid JSON", http.MethodPost, "{", http.StatusBadRequest},
		{"No documents", http.MethodPost, `{"documents": []}`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := do(server, tt.method, "/api/v1/documents", tt.body)
			assert.Equal(t, tt.code, rr.Code)
		})
	}
}

func TestHandleDocuments_StorageError(t *testing.T) {
	server, store := setupServer(t)
	store.On("Save", mock.Anything).Return(errors.New("disk full"))

	rr := do(server, http.MethodPost, "/api/v1/documents", `{"documents": [{"content": "x"}]}`)
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Contains(t, rr.Body.String(), "disk full")
}

func TestHandleSearch(t *testing.T) {
	server, store := setupServer(t)
	store.On("Save", mock.Anything).Return(nil)

	rr := do(server, http.MethodPost, "/api/v1/documents",
		`{"documents": [{"id": "doc1", "content": "Hello world testing search."}, {"id": "doc2", "content": "Unrelated text"}]}`)
	require.Equal(t, http.StatusCreated, rr.Code)

	rr = do(server, http.MethodGet, "/api/v1/search?q=hello", "")
	assert.Equal(t, http.StatusOK, rr.Code)

	var resp api.SearchResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "hello", resp.Query)
	require.Len(t, resp.Results, 1)
	assert.Equal(t, "doc1", resp.Results[0].ID)

	rr = do(server, http.MethodGet, "/api/v1/search", "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestHandleEncode(t *testing.T) {
	server, store := setupServer(t)
	store.On("Save", mock.Anything).Return(nil)

	rr := do(server, http.MethodPost, "/api/v1/documents",
		`{"documents": [{"content": "cat cat cat dog dog bird"}]}`)
	require.Equal(t, http.StatusCreated, rr.Code)

	rr = do(server, http.MethodPost, "/api/v1/encode", `{"text": "The Cat sat on the cat mat"}`)
	assert.Equal(t, http.StatusOK, rr.Code)

	var resp api.EncodeResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "the cat sat on the cat mat", resp.Normalized)
	assert.Equal(t, 3, resp.Size)
	assert.Equal(t, []float32{1, 0, 0}, resp.Vector)
}

func TestHandleNormalize(t *testing.T) {
	server, _ := setupServer(t)

	rr := do(server, http.MethodPost, "/api/v1/normalize", `{"text": "Visit https://example.com/path now #Señor"}`)
	assert.Equal(t, http.StatusOK, rr.Code)

	var resp api.NormalizeResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "visit __URL__ now senor", resp.Text)

	rr = do(server, http.MethodPost, "/api/v1/normalize", "not json")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestHandleVocabulary(t *testing.T) {
	server, store := setupServer(t)
	store.On("Save", mock.Anything).Return(nil)

	rr := do(server, http.MethodPost, "/api/v1/documents",
		`{"documents": [{"content": "a a b b b c"}]}`)
	require.Equal(t, http.StatusCreated, rr.Code)

	rr = do(server, http.MethodGet, "/api/v1/vocabulary?limit=2", "")
	assert.Equal(t, http.StatusOK, rr.Code)

	var resp api.VocabularyResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, 3, resp.Size)
	assert.Equal(t, []search.VocabularyEntry{
		{Word: "b", Index: 0, Count: 3},
		{Word: "a", Index: 1, Count: 2},
	}, resp.Entries)

	rr = do(server, http.MethodGet, "/api/v1/vocabulary?limit=-1", "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestHandleSearch_SnippetKeepsRunesWhole(t *testing.T) {
	server, store := setupServer(t)
	store.On("Save", mock.Anything).Return(nil)

	// "é" is two bytes, so byte 200 falls inside a rune
	content := "needle " + strings.Repeat("é", 150)
	body, err := json.Marshal(api.DocumentsRequest{Documents: []api.DocumentView{{ID: "doc", Content: content}}})
	require.NoError(t, err)
	rr := do(server, http.MethodPost, "/api/v1/documents", string(body))
	require.Equal(t, http.StatusCreated, rr.Code)

	rr = do(server, http.MethodGet, "/api/v1/search?q=needle", "")
	require.Equal(t, http.StatusOK, rr.Code)

	var resp api.SearchResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.Len(t, resp.Results, 1)

	text := resp.Results[0].Text
	assert.True(t, utf8.ValidString(text))
	assert.NotContains(t, text, "\uFFFD")
	assert.True(t, strings.HasSuffix(text, "é..."))
	assert.LessOrEqual(t, len(strings.TrimSuffix(text, "...")), 200)
}
