package semdex

import (
	"fmt"

	domdoc "github.com/kailas-cloud/semdex/internal/domain/document"
	"github.com/kailas-cloud/semdex/internal/domain/metadata"
	"github.com/kailas-cloud/semdex/internal/domain/search/result"
	documentrepo "github.com/kailas-cloud/semdex/internal/repository/document"
)

// FieldType defines how a filterable metadata key is indexed.
type FieldType string

// Field type constants.
const (
	FieldTag     FieldType = "tag"
	FieldNumeric FieldType = "numeric"
)

// Field is a filterable metadata key.
type Field struct {
	Name string
	Type FieldType
}

// Submission is a candidate document. A nil Content means the content was absent.
// Metadata values may be strings, numbers, bools, nil or nested maps.
type Submission struct {
	Content  *string
	Metadata map[string]any
}

// Text builds a Submission with the given content.
func Text(content string, meta map[string]any) Submission {
	return Submission{Content: &content, Metadata: meta}
}

// Document is a stored document.
type Document struct {
	ID       string
	Content  string
	Metadata map[string]any
}

// Hit is a single search result.
type Hit struct {
	Content  string
	Metadata map[string]any
}

// toInternalSubmissions leaves a submission nil when its metadata cannot be
// converted, so admission drops it and the rest of the batch goes on.
func toInternalSubmissions(subs []Submission) []*domdoc.Submission {
	out := make([]*domdoc.Submission, len(subs))
	for i := range subs {
		meta, err := metadata.MapFromAny(subs[i].Metadata)
		if err != nil {
			continue
		}
		out[i] = &domdoc.Submission{Content: subs[i].Content, Metadata: meta}
	}
	return out
}

func fromInternalDocuments(docs []domdoc.Document) []Document {
	out := make([]Document, len(docs))
	for i := range docs {
		out[i] = Document{
			ID:       docs[i].ID(),
			Content:  docs[i].Content(),
			Metadata: docs[i].Metadata().Any(),
		}
	}
	return out
}

func fromInternalHits(hits []result.Hit) []Hit {
	out := make([]Hit, len(hits))
	for i, h := range hits {
		out[i] = Hit{Content: h.Content, Metadata: h.Metadata.Any()}
	}
	return out
}

func toRepoFields(fields []Field) ([]documentrepo.FilterField, error) {
	out := make([]documentrepo.FilterField, 0, len(fields))
	seen := make(map[string]bool, len(fields))
	for _, f := range fields {
		if f.Name == "" {
			return nil, fmt.Errorf("semdex: filter field name is required")
		}
		if seen[f.Name] {
			continue
		}
		seen[f.Name] = true
		switch f.Type {
		case FieldTag, "":
			out = append(out, documentrepo.FilterField{Name: f.Name, Kind: documentrepo.FieldTag})
		case FieldNumeric:
			out = append(out, documentrepo.FilterField{Name: f.Name, Kind: documentrepo.FieldNumeric})
		default:
			return nil, fmt.Errorf("semdex: filter field %q: unknown type %q", f.Name, f.Type)
		}
	}
	return out, nil
}
