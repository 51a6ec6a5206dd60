package redis

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/kailas-cloud/semdex/internal/db"
	"github.com/kailas-cloud/semdex/internal/domain/metadata"
	"github.com/kailas-cloud/semdex/internal/domain/search/filter"
)

// buildFilter translates a filter tree into an FT.SEARCH pre-filter query string.
// Strings and booleans match TAG attributes, numbers match NUMERIC attributes.
func buildFilter(expr filter.Expression) (string, error) {
	switch n := expr.(type) {
	case nil:
		return "", nil
	case filter.Equal:
		return buildEqual(n)
	case filter.Conjunction:
		return buildGroup(n.Operands(), " ")
	case filter.Disjunction:
		return buildGroup(n.Operands(), " | ")
	case filter.Negation:
		inner, err := buildFilter(n.Operand())
		if err != nil {
			return "", err
		}
		return "-(" + inner + ")", nil
	default:
		return "", fmt.Errorf("%w: unknown filter node %T", db.ErrInvalidQuery, expr)
	}
}

func buildGroup(ops []filter.Expression, sep string) (string, error) {
	parts := make([]string, 0, len(ops))
	for _, op := range ops {
		p, err := buildFilter(op)
		if err != nil {
			return "", err
		}
		parts = append(parts, p)
	}
	return "(" + strings.Join(parts, sep) + ")", nil
}

func buildEqual(eq filter.Equal) (string, error) {
	key := eq.Key()
	if !isAttributeName(key) {
		return "", fmt.Errorf("%w: filter key %q is not a valid attribute name", db.ErrInvalidQuery, key)
	}

	v := eq.Value()
	switch v.Kind() {
	case metadata.KindString:
		s, _ := v.AsString()
		return buildTagFilter(key, s), nil
	case metadata.KindBool:
		b, _ := v.AsBool()
		return buildTagFilter(key, strconv.FormatBool(b)), nil
	case metadata.KindNumber:
		f, _ := v.AsNumber()
		return buildNumericFilter(key, f), nil
	default:
		return "", fmt.Errorf("%w: cannot filter %s on a %s value", db.ErrInvalidQuery, key, v.Kind())
	}
}

func buildTagFilter(key, value string) string {
	return fmt.Sprintf("@%s:{%s}", key, tagEscaper.Replace(db.TagValue(value)))
}

func buildNumericFilter(key string, v float64) string {
	s := strconv.FormatFloat(v, 'g', -1, 64)
	return fmt.Sprintf("@%s:[%s %s]", key, s, s)
}

func isAttributeName(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		isAlpha := (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
		isDigit := r >= '0' && r <= '9'
		if !isAlpha && !isDigit && r != '_' {
			return false
		}
	}
	return true
}

var tagEscaper = strings.NewReplacer(
	`\`, `\\`,
	",", "\\,",
	".", "\\.",
	"<", "\\<",
	">", "\\>",
	"{", "\\{",
	"}", "\\}",
	"[", "\\[",
	"]", "\\]",
	"\"", "\\\"",
	"'", "\\'",
	":", "\\:",
	";", "\\;",
	"!", "\\!",
	"@", "\\@",
	"#", "\\#",
	"$", "\\$",
	"%", "\\%",
	"^", "\\^",
	"&", "\\&",
	"*", "\\*",
	"(", "\\(",
	")", "\\)",
	"-", "\\-",
	"+", "\\+",
	"=", "\\=",
	"~", "\\~",
	"|", "\\|",
	"/", "\\/",
	" ", "\\ ",
)
