// Package filter describes metadata predicates as an immutable boolean tree.
//
// The node set is closed: Equal, Conjunction, Disjunction and Negation.
// Backends translate a tree by switching on the node type.
package filter

import (
	"fmt"
	"strings"

	"github.com/kailas-cloud/semdex/internal/domain/metadata"
)

// MaxOperands is the maximum number of operands in a single and/or node.
const MaxOperands = 32

// MaxDepth is the maximum nesting depth of a tree.
const MaxDepth = 8

// Expression is a node of the predicate tree.
type Expression interface {
	fmt.Stringer
	node()
}

// Equal matches documents whose metadata key equals a literal value.
type Equal struct {
	key   string
	value metadata.Value
}

// Conjunction matches when every operand matches.
type Conjunction struct {
	operands []Expression
}

// Disjunction matches when at least one operand matches.
type Disjunction struct {
	operands []Expression
}

// Negation matches when its operand does not.
type Negation struct {
	operand Expression
}

func (Equal) node()       {}
func (Conjunction) node() {}
func (Disjunction) node() {}
func (Negation) node()    {}

// Eq builds an equality predicate.
func Eq(key string, value metadata.Value) Equal {
	return Equal{key: key, value: value}
}

// And combines operands with logical AND. Nil operands are skipped;
// a single remaining operand is returned as is, none yields nil.
func And(operands ...Expression) Expression {
	ops := compact(operands)
	switch len(ops) {
	case 0:
		return nil
	case 1:
		return ops[0]
	}
	return Conjunction{operands: ops}
}

// Or combines operands with logical OR, with the same collapsing rules as And.
func Or(operands ...Expression) Expression {
	ops := compact(operands)
	switch len(ops) {
	case 0:
		return nil
	case 1:
		return ops[0]
	}
	return Disjunction{operands: ops}
}

// Not negates e. Not(nil) is nil.
func Not(e Expression) Expression {
	if e == nil {
		return nil
	}
	return Negation{operand: e}
}

func compact(in []Expression) []Expression {
	out := make([]Expression, 0, len(in))
	for _, e := range in {
		if e != nil {
			out = append(out, e)
		}
	}
	return out
}

// Key returns the metadata key.
func (e Equal) Key() string { return e.key }

// Value returns the literal the key is compared against.
func (e Equal) Value() metadata.Value { return e.value }

func (e Equal) String() string {
	return e.key + " == " + e.value.String()
}

// Operands returns a copy of the child expressions.
func (c Conjunction) Operands() []Expression { return append([]Expression(nil), c.operands...) }

func (c Conjunction) String() string { return join(c.operands, " && ") }

// Operands returns a copy of the child expressions.
func (d Disjunction) Operands() []Expression { return append([]Expression(nil), d.operands...) }

func (d Disjunction) String() string { return join(d.operands, " || ") }

// Operand returns the negated expression.
func (n Negation) Operand() Expression { return n.operand }

func (n Negation) String() string { return "!(" + n.operand.String() + ")" }

func join(ops []Expression, sep string) string {
	parts := make([]string, len(ops))
	for i, op := range ops {
		parts[i] = op.String()
	}
	return "(" + strings.Join(parts, sep) + ")"
}

// Validate checks structural limits: non-empty keys, operand count and depth.
func Validate(e Expression) error {
	return validate(e, 1)
}

func validate(e Expression, depth int) error {
	if depth > MaxDepth {
		return fmt.Errorf("filter nested too deep (max %d)", MaxDepth)
	}
	switch n := e.(type) {
	case nil:
		return nil
	case Equal:
		if n.key == "" {
			return fmt.Errorf("filter key is required")
		}
		return nil
	case Conjunction:
		return validateOperands(n.operands, depth)
	case Disjunction:
		return validateOperands(n.operands, depth)
	case Negation:
		if n.operand == nil {
			return fmt.Errorf("negation requires an operand")
		}
		return validate(n.operand, depth+1)
	default:
		return fmt.Errorf("unknown filter node %T", e)
	}
}

func validateOperands(ops []Expression, depth int) error {
	if len(ops) > MaxOperands {
		return fmt.Errorf("too many operands (max %d)", MaxOperands)
	}
	for _, op := range ops {
		if err := validate(op, depth+1); err != nil {
			return err
		}
	}
	return nil
}

// Keys returns the distinct metadata keys referenced by e, in first-seen order.
func Keys(e Expression) []string {
	seen := make(map[string]struct{})
	var keys []string
	var walk func(Expression)
	walk = func(e Expression) {
		switch n := e.(type) {
		case Equal:
			if _, ok := seen[n.key]; !ok {
				seen[n.key] = struct{}{}
				keys = append(keys, n.key)
			}
		case Conjunction:
			for _, op := range n.operands {
				walk(op)
			}
		case Disjunction:
			for _, op := range n.operands {
				walk(op)
			}
		case Negation:
			walk(n.operand)
		}
	}
	walk(e)
	return keys
}
