package result

import "github.com/kailas-cloud/semdex/internal/domain/metadata"

// Match is a single raw record returned by the store, best first.
type Match struct {
	id       string
	score    float64
	content  string
	metadata metadata.Map
}

// NewMatch creates a raw match.
func NewMatch(id string, score float64, content string, meta metadata.Map) Match {
	return Match{id: id, score: score, content: content, metadata: meta}
}

// ID returns the store identifier of the matched document.
func (m *Match) ID() string { return m.id }

// Score returns the similarity score.
func (m *Match) Score() float64 { return m.score }

// Content returns the document content.
func (m *Match) Content() string { return m.content }

// Metadata returns the document metadata.
func (m *Match) Metadata() metadata.Map { return m.metadata }

// Hit is the caller-facing view of a match: content and metadata only.
type Hit struct {
	Content  string       `json:"content"`
	Metadata metadata.Map `json:"metadata"`
}

// Project maps matches to hits in store order. The result is never nil.
func Project(matches []Match) []Hit {
	hits := make([]Hit, len(matches))
	for i := range matches {
		meta := matches[i].metadata
		if meta == nil {
			meta = metadata.Map{}
		}
		hits[i] = Hit{Content: matches[i].content, Metadata: meta}
	}
	return hits
}
