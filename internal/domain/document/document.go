package document

import (
	"github.com/google/uuid"

	"github.com/kailas-cloud/semdex/internal/domain/metadata"
)

// Submission is raw caller input. Content may be absent.
type Submission struct {
	Content  *string      `json:"content"`
	Metadata metadata.Map `json:"metadata"`
}

// Document is a canonical, admitted document (immutable value object).
type Document struct {
	id       string
	content  string
	metadata metadata.Map
}

// New creates a Document with a fresh random identifier.
// Content is kept exactly as given; admission rules live in Admission.
func New(content string, meta metadata.Map) Document {
	return Reconstruct(uuid.New().String(), content, meta.Clone())
}

// Reconstruct creates a Document without validation (storage hydration).
func Reconstruct(id, content string, meta metadata.Map) Document {
	if meta == nil {
		meta = metadata.Map{}
	}
	return Document{id: id, content: content, metadata: meta}
}

// ID returns the document identifier.
func (d *Document) ID() string { return d.id }

// Content returns the document text content.
func (d *Document) Content() string { return d.content }

// Metadata returns the document metadata. Never nil.
func (d *Document) Metadata() metadata.Map { return d.metadata }
