package db

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrInvalidIndex marks an index definition refused before it is sent.
var ErrInvalidIndex = errors.New("db: invalid index definition")

// TagSeparator splits multi-valued TAG fields. It is a control byte so a
// tag value is always one whole string, commas included.
const TagSeparator = "\x1f"

// TagValue drops TagSeparator from s. Stored values and query values both
// go through it so they stay comparable.
func TagValue(s string) string {
	return strings.ReplaceAll(s, TagSeparator, "")
}

// IndexFieldType enumerates the FT schema field types semdex uses.
type IndexFieldType int

const (
	IndexFieldNumeric IndexFieldType = iota
	IndexFieldTag
	IndexFieldVector
)

func (t IndexFieldType) String() string {
	switch t {
	case IndexFieldNumeric:
		return "NUMERIC"
	case IndexFieldTag:
		return "TAG"
	case IndexFieldVector:
		return "VECTOR"
	default:
		return fmt.Sprintf("IndexFieldType(%d)", int(t))
	}
}

// HNSW describes a FLOAT32 cosine vector field. Zero M or EFConstruct keeps
// the server default.
type HNSW struct {
	Dim         int
	M           int
	EFConstruct int
}

// IndexField is one attribute of the schema. Name is the HASH field; Alias,
// when set, is what queries refer to.
type IndexField struct {
	Name             string
	Alias            string
	Type             IndexFieldType
	TagCaseSensitive bool
	Vector           HNSW // IndexFieldVector only
}

// Attribute returns the name queries refer to.
func (f *IndexField) Attribute() string {
	if f.Alias != "" {
		return f.Alias
	}
	return f.Name
}

// IndexDefinition is an FT index over HASH keys under Prefixes.
type IndexDefinition struct {
	Name     string
	Prefixes []string
	Fields   []IndexField
}

var identifierRE = regexp.MustCompile(`^[A-Za-z0-9_:-]+$`)

// Validate reports the first structural problem, wrapped in ErrInvalidIndex.
func (idx *IndexDefinition) Validate() error {
	switch {
	case idx.Name == "":
		return fmt.Errorf("%w: index name is required", ErrInvalidIndex)
	case !identifierRE.MatchString(idx.Name):
		return fmt.Errorf("%w: index name %q contains invalid characters", ErrInvalidIndex, idx.Name)
	case len(idx.Fields) == 0:
		return fmt.Errorf("%w: at least one field is required", ErrInvalidIndex)
	}

	seen := make(map[string]struct{}, len(idx.Fields))
	for i := range idx.Fields {
		f := &idx.Fields[i]
		if f.Name == "" {
			return fmt.Errorf("%w: field name is required at position %d", ErrInvalidIndex, i)
		}
		attr := f.Attribute()
		if _, dup := seen[attr]; dup {
			return fmt.Errorf("%w: duplicate field name: %s", ErrInvalidIndex, attr)
		}
		seen[attr] = struct{}{}

		switch f.Type {
		case IndexFieldTag, IndexFieldNumeric:
		case IndexFieldVector:
			if f.Vector.Dim <= 0 {
				return fmt.Errorf("%w: vector field %s requires positive DIM", ErrInvalidIndex, attr)
			}
		default:
			return fmt.Errorf("%w: field %s has unsupported type %s", ErrInvalidIndex, attr, f.Type)
		}
	}
	return nil
}

// Field returns the field whose attribute name is attr.
func (idx *IndexDefinition) Field(attr string) (IndexField, bool) {
	for _, f := range idx.Fields {
		if f.Attribute() == attr {
			return f, true
		}
	}
	return IndexField{}, false
}
