// Package gen produces draft course content from policy documents. The
// generation call is an opaque collaborator behind the Generator
// interface; the rest of the system only sees the Draft it returns.
package gen

import (
	"context"
)

// DraftRequest describes the document a draft course should be generated from
type DraftRequest struct {
	// Identifier of the document version being turned into a course
	DocumentVersionID string

	// Full text of the document, when the caller has it loaded
	DocumentText string

	// User the resulting course will be attributed to
	RequestedBy string
}

// QuizQuestion is one question in a generated quiz
type QuizQuestion struct {
	Prompt  string   `json:"prompt"`
	Choices []string `json:"choices"`
	Answer  int      `json:"answer"`
}

// Draft is the generated course content before any human review
type Draft struct {
	Title    string         `json:"title"`
	Summary  string         `json:"summary"`
	Sections []string       `json:"sections,omitempty"`
	Quiz     []QuizQuestion `json:"quiz,omitempty"`
}

// Generator turns a policy document into a draft course
type Generator interface {
	GenerateDraft(ctx context.Context, req DraftRequest) (*Draft, error)
}
