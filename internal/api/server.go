package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"
	"unicode/utf8"

	"github.com/sirupsen/logrus"

	"github.com/knowledge-engine/featurizer/internal/engine"
	"github.com/knowledge-engine/featurizer/internal/search"
)

const (
	maxBodyBytes = 10 << 20
	snippetBytes = 200
)

type Server struct {
	Engine *engine.Engine
	Logger *logrus.Entry
	Router *http.ServeMux
}

func NewServer(eng *engine.Engine, logger *logrus.Entry) *Server {
	s := &Server{
		Engine: eng,
		Logger: logger,
		Router: http.NewServeMux(),
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.Router.HandleFunc("/api/v1/documents", s.handleDocuments)
	s.Router.HandleFunc("/api/v1/search", s.handleSearch)
	s.Router.HandleFunc("/api/v1/encode", s.handleEncode)
	s.Router.HandleFunc("/api/v1/normalize", s.handleNormalize)
	s.Router.HandleFunc("/api/v1/vocabulary", s.handleVocabulary)
	s.Router.HandleFunc("/api/v1/status", s.handleStatus)
}

func (s *Server) Start(addr string) error {
	s.Logger.Infof("Starting API Server on %s", addr)
	srv := &http.Server{
		Addr:        addr,
		Handler:     s.Router,
		ReadTimeout: s.Engine.Config.Server.ReadTimeout,
	}
	return srv.ListenAndServe()
}

// Requests

type DocumentsRequest struct {
	Documents []DocumentView `json:"documents"`
}

type DocumentView struct {
	ID      string `json:"id,omitempty"`
	Title   string `json:"title,omitempty"`
	Content string `json:"content"`
}

type TextRequest struct {
	Text string `json:"text"`
}

// Responses

type ErrorResponse struct {
	Error string `json:"error"`
}

type DocumentsResponse struct {
	Indexed int      `json:"indexed"`
	IDs     []string `json:"ids"`
}

type SearchResponse struct {
	Query   string             `json:"query"`
	Results []SearchResultView `json:"results"`
}

type SearchResultView struct {
	ID    string  `json:"id"`
	Title string  `json:"title,omitempty"`
	Score float64 `json:"score"`
	Text  string  `json:"snippet"`
}

type EncodeResponse struct {
	Normalized string    `json:"normalized"`
	Size       int       `json:"size"`
	Vector     []float32 `json:"vector"`
}

type NormalizeResponse struct {
	Text string `json:"text"`
}

type VocabularyResponse struct {
	Size    int                      `json:"size"`
	Entries []search.VocabularyEntry `json:"entries"`
}

type StatusResponse struct {
	Documents      int64  `json:"documents"`
	VocabularySize int    `json:"vocabulary_size"`
	Uptime         string `json:"uptime"`
}

// Handlers

func (s *Server) handleDocuments(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req DocumentsRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if len(req.Documents) == 0 {
		jsonResponse(w, http.StatusBadRequest, ErrorResponse{Error: "At least one document is required"})
		return
	}

	docs := make([]*search.Document, len(req.Documents))
	for i, d := range req.Documents {
		docs[i] = &search.Document{ID: d.ID, Title: d.Title, Content: d.Content}
	}

	if err := s.Engine.IndexDocuments(r.Context(), docs); err != nil {
		s.Logger.WithError(err).Error("Failed to index documents")
		jsonResponse(w, http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}

	ids := make([]string, len(docs))
	for i, d := range docs {
		ids[i] = d.ID
	}
	jsonResponse(w, http.StatusCreated, DocumentsResponse{Indexed: len(docs), IDs: ids})
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	query := r.URL.Query().Get("q")
	if query == "" {
		jsonResponse(w, http.StatusBadRequest, ErrorResponse{Error: "Query 'q' is required"})
		return
	}

	hits := s.Engine.Search(query)

	response := SearchResponse{
		Query:   query,
		Results: make([]SearchResultView, len(hits)),
	}

	for i, hit := range hits {
		txt := snippet(hit.Document.Content, snippetBytes)
		response.Results[i] = SearchResultView{
			ID:    hit.Document.ID,
			Title: hit.Document.Title,
			Score: hit.Score,
			Text:  txt,
		}
	}

	jsonResponse(w, http.StatusOK, response)
}

func (s *Server) handleEncode(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req TextRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	vector := s.Engine.Encode(req.Text)
	jsonResponse(w, http.StatusOK, EncodeResponse{
		Normalized: s.Engine.Normalize(req.Text),
		Size:       len(vector),
		Vector:     vector,
	})
}

func (s *Server) handleNormalize(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req TextRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	jsonResponse(w, http.StatusOK, NormalizeResponse{Text: s.Engine.Normalize(req.Text)})
}

func (s *Server) handleVocabulary(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			jsonResponse(w, http.StatusBadRequest, ErrorResponse{Error: "Query 'limit' must be a non-negative integer"})
			return
		}
		limit = n
	}

	entries := s.Engine.Vocabulary(limit)
	jsonResponse(w, http.StatusOK, VocabularyResponse{
		Size:    s.Engine.Vectorizer.Encoder().Len(),
		Entries: entries,
	})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	stats := s.Engine.Stats()

	jsonResponse(w, http.StatusOK, StatusResponse{
		Documents:      stats.DocumentsIndexed,
		VocabularySize: stats.VocabularySize,
		Uptime:         time.Since(stats.StartTime).Round(time.Second).String(),
	})
}

// snippet cuts text to at most max bytes without splitting a rune
func snippet(text string, max int) string {
	if len(text) <= max {
		return text
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(text[cut]) {
		cut--
	}
	return text[:cut] + "..."
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		jsonResponse(w, http.StatusBadRequest, ErrorResponse{Error: "Invalid JSON"})
		return false
	}
	return true
}

func jsonResponse(w http.ResponseWriter, code int, payload interface{}) {
	response, _ := json.Marshal(payload)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}
