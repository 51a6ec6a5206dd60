package qdrant

import (
	"fmt"

	qc "github.com/qdrant/go-client/qdrant"

	"github.com/kailas-cloud/semdex/internal/db"
	"github.com/kailas-cloud/semdex/internal/domain/metadata"
	"github.com/kailas-cloud/semdex/internal/domain/search/filter"
)

// buildFilter translates a filter tree into a Qdrant filter. Keys get prefix prepended.
func buildFilter(expr filter.Expression, prefix string) (*qc.Filter, error) {
	switch n := expr.(type) {
	case nil:
		return nil, nil
	case filter.Conjunction:
		conds, err := buildConditions(n.Operands(), prefix)
		if err != nil {
			return nil, err
		}
		return &qc.Filter{Must: conds}, nil
	case filter.Disjunction:
		conds, err := buildConditions(n.Operands(), prefix)
		if err != nil {
			return nil, err
		}
		return &qc.Filter{Should: conds}, nil
	case filter.Negation:
		cond, err := buildCondition(n.Operand(), prefix)
		if err != nil {
			return nil, err
		}
		return &qc.Filter{MustNot: []*qc.Condition{cond}}, nil
	default:
		cond, err := buildCondition(expr, prefix)
		if err != nil {
			return nil, err
		}
		return &qc.Filter{Must: []*qc.Condition{cond}}, nil
	}
}

func buildConditions(ops []filter.Expression, prefix string) ([]*qc.Condition, error) {
	conds := make([]*qc.Condition, 0, len(ops))
	for _, op := range ops {
		c, err := buildCondition(op, prefix)
		if err != nil {
			return nil, err
		}
		conds = append(conds, c)
	}
	return conds, nil
}

func buildCondition(expr filter.Expression, prefix string) (*qc.Condition, error) {
	eq, ok := expr.(filter.Equal)
	if !ok {
		nested, err := buildFilter(expr, prefix)
		if err != nil {
			return nil, err
		}
		return qc.NewFilterAsCondition(nested), nil
	}

	if eq.Key() == "" {
		return nil, fmt.Errorf("%w: filter key is required", db.ErrInvalidQuery)
	}
	key := prefix + eq.Key()

	v := eq.Value()
	switch v.Kind() {
	case metadata.KindString:
		s, _ := v.AsString()
		return qc.NewMatch(key, s), nil
	case metadata.KindBool:
		b, _ := v.AsBool()
		return qc.NewMatchBool(key, b), nil
	case metadata.KindNumber:
		f, _ := v.AsNumber()
		return qc.NewRange(key, &qc.Range{Gte: qc.PtrOf(f), Lte: qc.PtrOf(f)}), nil
	case metadata.KindNull:
		return qc.NewIsNull(key), nil
	default:
		return nil, fmt.Errorf("%w: cannot filter %s on a %s value", db.ErrInvalidQuery, eq.Key(), v.Kind())
	}
}
