package vocab

import (
	"sort"
	"strings"
	"unicode"
)

// Builder accumulates word occurrence counts. The zero value is ready to use.
//
// Feed mutates the builder; callers sharing one across goroutines must
// serialize Feed against every other method.
type Builder struct {
	counts map[string]int
}

// NewBuilder returns an empty Builder.
func NewBuilder() *Builder {
	return &Builder{counts: make(map[string]int)}
}

// Fields splits text into words at runs of whitespace. Besides Unicode
// white space, the ASCII file, group, record and unit separators
// (0x1c-0x1f) also split words.
func Fields(text string) []string {
	return strings.FieldsFunc(text, isSeparator)
}

func isSeparator(r rune) bool {
	return unicode.IsSpace(r) || (r >= 0x1c && r <= 0x1f)
}

// Feed splits text with Fields and counts every word. No normalization is
// applied here; run text through textnorm first if needed.
func (b *Builder) Feed(text string) {
	for _, word := range Fields(text) {
		if b.counts == nil {
			b.counts = make(map[string]int)
		}
		b.counts[word]++
	}
}

// Count returns how many times word has been fed.
func (b *Builder) Count(word string) int {
	return b.counts[word]
}

// Len returns the number of distinct words fed so far.
func (b *Builder) Len() int {
	return len(b.counts)
}

type wordCount struct {
	word  string
	count int
}

// ToVocabulary ranks the observed words by descending count, breaking ties by
// descending lexicographic order, and assigns indices in that order. A
// positive limit keeps only the first limit words.
//
// The builder is not modified; the returned Vocabulary is a snapshot that
// later Feed calls do not affect.
func (b *Builder) ToVocabulary(limit int) *Vocabulary {
	ranked := make([]wordCount, 0, len(b.counts))
	for w, c := range b.counts {
		ranked = append(ranked, wordCount{word: w, count: c})
	}

	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].count != ranked[j].count {
			return ranked[i].count > ranked[j].count
		}
		return ranked[i].word > ranked[j].word
	})

	if limit > 0 && limit < len(ranked) {
		ranked = ranked[:limit]
	}

	words := make([]string, len(ranked))
	for i, wc := range ranked {
		words[i] = wc.word
	}
	return fromWords(words)
}
