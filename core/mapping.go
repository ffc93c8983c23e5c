package core

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// snippetLimit bounds the excerpt taken from source text for fallback suggestions
const snippetLimit = 50

// Suggestion proposes a link between a text excerpt and a compliance standard
type Suggestion struct {
	// Identifier into the catalog of standards
	StandardID string

	// Heuristic score in [0,1]; not a calibrated probability
	Confidence float64

	// Excerpt or canned label justifying the suggestion
	Snippet string
}

// Suggester heuristically associates free text with entries from a
// standards catalog. It is safe for concurrent use: the catalog is
// read-only after construction.
type Suggester struct {
	catalog *Catalog
}

// NewSuggester creates a suggester over the given catalog. A nil catalog
// falls back to the built-in default.
func NewSuggester(catalog *Catalog) *Suggester {
	if catalog == nil {
		catalog = DefaultCatalog()
	}
	return &Suggester{catalog: catalog}
}

// Catalog returns the catalog this suggester scores against
func (s *Suggester) Catalog() *Catalog {
	return s.catalog
}

// Suggest returns at least one suggestion for any input, including empty.
// One suggestion is emitted per firing trigger, in trigger declaration
// order; duplicates are kept when several triggers map to the same
// standard. When nothing fires, the catalog's fallback standard is
// suggested with a snippet derived from the start of the text.
func (s *Suggester) Suggest(text string) []Suggestion {
	lowered := strings.ToLower(text)

	var suggestions []Suggestion
	for _, trigger := range s.catalog.Triggers {
		if !strings.Contains(lowered, strings.ToLower(trigger.Keyword)) {
			continue
		}

		snippet := trigger.Snippet
		if snippet == "" {
			snippet = fmt.Sprintf("Text mentions %q", trigger.Keyword)
		}

		suggestions = append(suggestions, Suggestion{
			StandardID: trigger.StandardID,
			Confidence: trigger.Confidence,
			Snippet:    snippet,
		})
	}

	if len(suggestions) == 0 {
		suggestions = append(suggestions, Suggestion{
			StandardID: s.catalog.Fallback.StandardID,
			Confidence: s.catalog.Fallback.Confidence,
			Snippet:    excerpt(text, snippetLimit),
		})
	}

	return suggestions
}

// SuggestMappings scores text against the built-in default catalog
func SuggestMappings(text string) []Suggestion {
	return NewSuggester(nil).Suggest(text)
}

// excerpt returns the first limit bytes of text without splitting a rune
func excerpt(text string, limit int) string {
	if len(text) <= limit {
		return text
	}

	cut := limit
	for cut > 0 && !utf8.RuneStart(text[cut]) {
		cut--
	}
	return text[:cut] + "..."
}
