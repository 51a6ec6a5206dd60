package filter

import (
	"strings"
	"testing"

	"github.com/kailas-cloud/semdex/internal/domain/metadata"
)

func TestEq(t *testing.T) {
	e := Eq("artist", metadata.String("X"))
	if e.Key() != "artist" {
		t.Errorf("Key() = %q", e.Key())
	}
	if !e.Value().Equal(metadata.String("X")) {
		t.Errorf("Value() = %s", e.Value())
	}
	if e.String() != `artist == "X"` {
		t.Errorf("String() = %q", e.String())
	}
}

func TestEq_FreshTreePerCall(t *testing.T) {
	a := Eq("artist", metadata.String("A"))
	b := Eq("artist", metadata.String("B"))
	if a.String() == b.String() {
		t.Fatal("independent builds must not share state")
	}
	if a.String() != `artist == "A"` {
		t.Errorf("first tree changed after second build: %s", a)
	}
}

func TestAnd_Collapsing(t *testing.T) {
	if And() != nil {
		t.Error("And() must be nil")
	}
	if And(nil, nil) != nil {
		t.Error("And(nil, nil) must be nil")
	}

	single := Eq("a", metadata.Number(1))
	got, ok := And(nil, single).(Equal)
	if !ok || got.String() != single.String() {
		t.Errorf("And(single) = %v, want the operand itself", got)
	}

	both := And(Eq("a", metadata.Number(1)), Eq("b", metadata.Bool(true)))
	c, ok := both.(Conjunction)
	if !ok {
		t.Fatalf("expected Conjunction, got %T", both)
	}
	if len(c.Operands()) != 2 {
		t.Errorf("operands = %d, want 2", len(c.Operands()))
	}
	if both.String() != "(a == 1 && b == true)" {
		t.Errorf("String() = %q", both.String())
	}
}

func TestOrNot_String(t *testing.T) {
	e := Or(
		Eq("artist", metadata.String("X")),
		Not(Eq("explicit", metadata.Bool(true))),
	)
	want := `(artist == "X" || !(explicit == true))`
	if e.String() != want {
		t.Errorf("String() = %q, want %q", e.String(), want)
	}
	if Not(nil) != nil {
		t.Error("Not(nil) must be nil")
	}
}

func TestOperands_ReturnsCopy(t *testing.T) {
	e := And(Eq("a", metadata.Null()), Eq("b", metadata.Null())).(Conjunction)
	ops := e.Operands()
	ops[0] = Eq("mutated", metadata.Null())
	if strings.Contains(e.String(), "mutated") {
		t.Error("mutating Operands() result must not affect the tree")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		expr    Expression
		wantErr string
	}{
		{"nil", nil, ""},
		{"eq", Eq("artist", metadata.String("X")), ""},
		{"empty key", Eq("", metadata.String("X")), "key is required"},
		{"nested empty key", And(Eq("a", metadata.Null()), Not(Eq("", metadata.Null()))), "key is required"},
		{"too many operands", And(manyEq(MaxOperands + 1)...), "too many operands"},
		{"too deep", deepNot(MaxDepth), "too deep"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.expr)
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestKeys(t *testing.T) {
	e := And(
		Eq("artist", metadata.String("X")),
		Or(Eq("year", metadata.Number(1999)), Not(Eq("artist", metadata.String("Y")))),
	)
	keys := Keys(e)
	if strings.Join(keys, ",") != "artist,year" {
		t.Errorf("Keys() = %v", keys)
	}
	if len(Keys(nil)) != 0 {
		t.Error("Keys(nil) must be empty")
	}
}

func manyEq(n int) []Expression {
	out := make([]Expression, n)
	for i := range out {
		out[i] = Eq("k", metadata.Number(float64(i)))
	}
	return out
}

func deepNot(n int) Expression {
	var e Expression = Eq("k", metadata.Null())
	for range n {
		e = Not(e)
	}
	return e
}
