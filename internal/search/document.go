package search

// Document represents a searchable item
type Document struct {
	ID      string    `json:"id"`
	Title   string    `json:"title,omitempty"` // Metadata
	Content string    `json:"content"`
	Vector  []float32 `json:"-"`
}
