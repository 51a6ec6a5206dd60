package document

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/kailas-cloud/semdex/internal/db"
	dbRedis "github.com/kailas-cloud/semdex/internal/db/redis"
	domdoc "github.com/kailas-cloud/semdex/internal/domain/document"
	"github.com/kailas-cloud/semdex/internal/domain/metadata"
)

const (
	fieldContent  = "__content"
	fieldMetadata = "__metadata"
	fieldVector   = "__vector"
	vectorAttr    = "vector"

	// filterFieldPrefix namespaces indexed copies of metadata values in the hash.
	filterFieldPrefix = "m:"
)

// buildHashFields converts a Document into a flat map[string]string for HSET.
// Metadata is stored whole as JSON; values of indexed keys are also copied
// into their own fields so FT can filter on them.
func buildHashFields(doc *domdoc.Document, vec []float32, idx *db.IndexDefinition) (map[string]string, error) {
	meta := doc.Metadata()
	if meta == nil {
		meta = metadata.Map{}
	}
	raw, err := json.Marshal(meta)
	if err != nil {
		return nil, fmt.Errorf("marshal metadata: %w", err)
	}

	m := make(map[string]string, 3+len(meta))
	m[fieldContent] = doc.Content()
	m[fieldMetadata] = string(raw)
	m[fieldVector] = dbRedis.EncodeVector(vec)

	for k, v := range meta {
		f, ok := idx.Field(k)
		if !ok || f.Type == db.IndexFieldVector {
			continue
		}
		if s, ok := indexedValue(f.Type, v); ok {
			m[f.Name] = s
		}
	}
	return m, nil
}

// indexedValue renders v for a field of type t. Values the field cannot hold are skipped.
func indexedValue(t db.IndexFieldType, v metadata.Value) (string, bool) {
	switch v.Kind() {
	case metadata.KindString:
		if t != db.IndexFieldTag {
			return "", false
		}
		s, _ := v.AsString()
		return db.TagValue(s), true
	case metadata.KindBool:
		if t != db.IndexFieldTag {
			return "", false
		}
		b, _ := v.AsBool()
		return strconv.FormatBool(b), true
	case metadata.KindNumber:
		f, _ := v.AsNumber()
		return strconv.FormatFloat(f, 'g', -1, 64), true
	default:
		return "", false
	}
}

// parseHashFields reads content and metadata back from search reply fields.
func parseHashFields(fields map[string]string) (string, metadata.Map, error) {
	meta := metadata.Map{}
	if raw := fields[fieldMetadata]; raw != "" {
		if err := json.Unmarshal([]byte(raw), &meta); err != nil {
			return "", nil, fmt.Errorf("unmarshal metadata: %w", err)
		}
	}
	return fields[fieldContent], meta, nil
}
