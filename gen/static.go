package gen

import (
	"context"
	"fmt"
	"strings"
)

// maxStaticSections caps how many document paragraphs become course sections
const maxStaticSections = 5

// StaticGenerator builds a deterministic template draft without calling
// any model. It backs tests, demos, and deployments where generation is
// disabled.
type StaticGenerator struct{}

// NewStaticGenerator creates a template-based generator
func NewStaticGenerator() *StaticGenerator {
	return &StaticGenerator{}
}

// GenerateDraft derives a title from the document's first line, one
// section per paragraph, and a comprehension question per section.
// Identical requests yield identical drafts.
func (g *StaticGenerator) GenerateDraft(ctx context.Context, req DraftRequest) (*Draft, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	draft := &Draft{
		Title:   fmt.Sprintf("Draft course for document %s", req.DocumentVersionID),
		Summary: "Auto-generated draft. Review before publishing.",
	}

	if title := firstLine(req.DocumentText); title != "" {
		draft.Title = title
	}

	for _, para := range strings.Split(req.DocumentText, "\n\n") {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}
		draft.Sections = append(draft.Sections, para)
		if len(draft.Sections) == maxStaticSections {
			break
		}
	}

	for i := range draft.Sections {
		draft.Quiz = append(draft.Quiz, QuizQuestion{
			Prompt:  fmt.Sprintf("Does your organization follow the policy described in section %d?", i+1),
			Choices: []string{"Yes", "No"},
			Answer:  0,
		})
	}

	return draft, nil
}

// firstLine returns the first non-empty line of text, trimmed, or ""
func firstLine(text string) string {
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			return line
		}
	}
	return ""
}
