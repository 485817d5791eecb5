package textnorm

import (
	"fmt"
	"sort"
	"strings"
)

// Func is a single string-to-string normalizer.
type Func func(string) string

// Pipeline applies normalizers left to right.
type Pipeline []Func

var registry = map[string]Func{
	"lower":    ToLower,
	"translit": transliterateLossy,
	"alphanum": Alphanum,
	"url":      TokenizeURL,
	"tags":     RemoveTags,
	"markup":   stripMarkupLossy,
}

// Apply runs text through every step of the pipeline. An empty pipeline
// returns text unchanged.
func (p Pipeline) Apply(text string) string {
	for _, fn := range p {
		text = fn(text)
	}
	return text
}

// ParsePipeline resolves a comma separated list of normalizer names, such as
// "lower,url,tags,alphanum", into a Pipeline. Blank entries are skipped.
func ParsePipeline(names string) (Pipeline, error) {
	var p Pipeline
	for _, name := range strings.Split(names, ",") {
		name = strings.ToLower(strings.TrimSpace(name))
		if name == "" {
			continue
		}
		fn, ok := registry[name]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownNormalizer, name)
		}
		p = append(p, fn)
	}
	return p, nil
}

// Names lists the normalizers ParsePipeline accepts.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
