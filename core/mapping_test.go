package core

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSuggestEmptyText(t *testing.T) {
	suggestions := SuggestMappings("")

	require.Len(t, suggestions, 1)
	assert.Equal(t, "0.0.0", suggestions[0].StandardID)
	assert.Equal(t, 0.1, suggestions[0].Confidence)
	assert.Equal(t, "", suggestions[0].Snippet)
}

func TestSuggestKeywordTriggers(t *testing.T) {
	suggestions := SuggestMappings("Our safety policy requires annual review")

	require.Len(t, suggestions, 2)

	// Trigger declaration order: safety before review
	assert.Equal(t, "1.A.1", suggestions[0].StandardID)
	assert.Equal(t, "1.B.2", suggestions[1].StandardID)

	fallback := DefaultCatalog().Fallback.Confidence
	for _, s := range suggestions {
		assert.Greater(t, s.Confidence, fallback)
		assert.NotEmpty(t, s.Snippet)
	}
}

func TestSuggestCaseInsensitive(t *testing.T) {
	suggestions := SuggestMappings("ANNUAL SAFETY REVIEW")

	require.Len(t, suggestions, 2)
	assert.Equal(t, "1.A.1", suggestions[0].StandardID)
}

func TestSuggestFallbackSnippetTruncation(t *testing.T) {
	text := strings.Repeat("the quick brown fox jumps over a log ", 4)
	suggestions := SuggestMappings(text)

	require.Len(t, suggestions, 1)
	assert.Equal(t, "0.0.0", suggestions[0].StandardID)
	assert.True(t, strings.HasSuffix(suggestions[0].Snippet, "..."))
	assert.LessOrEqual(t, len(suggestions[0].Snippet), snippetLimit+3)
	assert.True(t, strings.HasPrefix(text, strings.TrimSuffix(suggestions[0].Snippet, "...")))
}

// Duplicates are kept when several triggers map to one standard; each
// trigger produces its own suggestion
func TestSuggestDuplicateStandards(t *testing.T) {
	catalog := NewCatalogBuilder().
		WithMetadata("1.0.0", "Test Catalog", "Test Author").
		AddStandard("3.A.4", "Privacy and Confidentiality of Health Information").
		AddStandard("0.0.0", "General Compliance Documentation").
		AddTrigger("privacy", "3.A.4", 0.8).
		AddTrigger("confidential", "3.A.4", 0.7).
		WithFallback("0.0.0", 0.1).
		Build()

	suggestions := NewSuggester(catalog).Suggest("privacy rules keep records confidential")

	require.Len(t, suggestions, 2)
	assert.Equal(t, "3.A.4", suggestions[0].StandardID)
	assert.Equal(t, "3.A.4", suggestions[1].StandardID)
	assert.Equal(t, 0.8, suggestions[0].Confidence)
	assert.Equal(t, 0.7, suggestions[1].Confidence)
}

func TestSuggestIdempotent(t *testing.T) {
	text := "incident response training for staff"

	first := SuggestMappings(text)
	second := SuggestMappings(text)

	assert.Equal(t, first, second)
}

func TestSuggesterNilCatalogUsesDefault(t *testing.T) {
	s := NewSuggester(nil)

	assert.NotNil(t, s.Catalog())
	assert.NotEmpty(t, s.Suggest("anything"))
}
