package document

import (
	"fmt"
	"strings"
)

// HeadroomRatio is the share of the embedding model's token window a document may use.
// Words stand in for tokens, so the ceiling keeps a 20% margin.
const HeadroomRatio = 0.80

// DefaultMaxTokens is the input window of the default embedding model.
const DefaultMaxTokens = 8192

// Rejection names why a submission was not admitted. Empty means admitted.
type Rejection string

// Rejection reasons.
const (
	Admitted       Rejection = ""
	MissingContent Rejection = "missing_content"
	BlankContent   Rejection = "blank_content"
	TooLong        Rejection = "too_long"
)

// WordCeiling returns the maximum admitted word count for a model window of maxTokens.
func WordCeiling(maxTokens int) int {
	return int(float64(maxTokens) * HeadroomRatio)
}

// WordCount counts maximal runs of non-whitespace characters.
func WordCount(s string) int {
	return len(strings.Fields(s))
}

// Admission decides which submissions may be embedded and stored.
type Admission struct {
	maxWords int
}

// NewAdmission creates admission rules for a model window of maxTokens.
func NewAdmission(maxTokens int) (Admission, error) {
	if maxTokens <= 0 {
		return Admission{}, fmt.Errorf("max tokens must be positive, got %d", maxTokens)
	}
	words := WordCeiling(maxTokens)
	if words < 1 {
		return Admission{}, fmt.Errorf("max tokens %d leaves no room for content", maxTokens)
	}
	return Admission{maxWords: words}, nil
}

// MaxWords returns the word ceiling.
func (a Admission) MaxWords() int { return a.maxWords }

// Admit checks s and, if it passes, returns the canonical document.
// Checks run in order and stop at the first failure.
func (a Admission) Admit(s *Submission) (Document, Rejection) {
	if s == nil || s.Content == nil {
		return Document{}, MissingContent
	}
	if strings.TrimSpace(*s.Content) == "" {
		return Document{}, BlankContent
	}
	doc := New(*s.Content, s.Metadata)
	if WordCount(doc.content) > a.maxWords {
		return Document{}, TooLong
	}
	return doc, Admitted
}
