package request

import (
	"fmt"

	"github.com/kailas-cloud/semdex/internal/domain/search/filter"
)

// Query is an immutable similarity search request.
// topK and threshold are passed through as given; range checks belong to the store.
type Query struct {
	text      string
	topK      int
	threshold float64
	filter    filter.Expression
}

// Option sets an optional Query field.
type Option func(*Query)

// WithFilter restricts the search to documents matching e. A nil e means no filter.
func WithFilter(e filter.Expression) Option {
	return func(q *Query) { q.filter = e }
}

// New assembles a Query.
func New(text string, topK int, threshold float64, opts ...Option) Query {
	q := Query{text: text, topK: topK, threshold: threshold}
	for _, opt := range opts {
		opt(&q)
	}
	return q
}

// Text returns the natural-language query.
func (q *Query) Text() string { return q.text }

// TopK returns the maximum number of matches.
func (q *Query) TopK() int { return q.topK }

// Threshold returns the minimum similarity score.
func (q *Query) Threshold() float64 { return q.threshold }

// Filter returns the metadata predicate, or nil.
func (q *Query) Filter() filter.Expression { return q.filter }

// HasFilter reports whether a predicate is attached.
func (q *Query) HasFilter() bool { return q.filter != nil }

func (q Query) String() string {
	s := fmt.Sprintf("query=%q topK=%d threshold=%g", q.text, q.topK, q.threshold)
	if q.filter != nil {
		s += " filter=" + q.filter.String()
	}
	return s
}
