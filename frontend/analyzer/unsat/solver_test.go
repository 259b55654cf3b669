package unsat

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func x(op Op, v any) Atom {
	return Atom{Op: op, Left: Field("x"), Right: Literal(v)}
}

func TestUnsat(t *testing.T) {
	cases := []struct {
		name  string
		atoms []Atom
		unsat bool
	}{
		{"empty", nil, false},
		{"disjoint interval", []Atom{x(OpGt, int64(10)), x(OpLt, int64(5))}, true},
		{"overlapping interval", []Atom{x(OpGt, int64(10)), x(OpLt, int64(20))}, false},
		{"touching strict", []Atom{x(OpGte, int64(10)), x(OpLt, int64(10))}, true},
		{"touching inclusive", []Atom{x(OpGte, int64(10)), x(OpLte, int64(10))}, false},
		{"single point excluded", []Atom{x(OpGte, int64(10)), x(OpLte, int64(10)), x(OpNeq, int64(10))}, true},
		{"mixed numbers", []Atom{x(OpGt, 2.5), x(OpLt, int64(2))}, true},
		{"two equalities", []Atom{x(OpEq, "gold"), x(OpEq, "silver")}, true},
		{"equality against bound", []Atom{x(OpEq, int64(3)), x(OpGt, int64(5))}, true},
		{"equality against disequality", []Atom{x(OpEq, true), x(OpNeq, true)}, true},
		{"literal on the left", []Atom{{Op: OpLt, Left: Literal(int64(10)), Right: Field("x")}, x(OpLt, int64(5))}, true},
		{"different fields", []Atom{x(OpGt, int64(10)), {Op: OpLt, Left: Field("y"), Right: Literal(int64(5))}}, false},
		{"unknown term", []Atom{x(OpGt, int64(10)), {Op: OpLt, Left: Field("x"), Right: Unknown()}}, false},
		{"incomparable types", []Atom{x(OpGt, int64(10)), x(OpLt, "a")}, false},
		{"false constant", []Atom{{Op: OpGt, Left: Literal(int64(1)), Right: Literal(int64(2))}}, true},
		{"self comparison", []Atom{{Op: OpLt, Left: Field("x"), Right: Field("x")}}, true},
		{"enum excludes equality", []Atom{x(OpIn, []any{"a", "b"}), x(OpEq, "c")}, true},
		{"enum within bounds", []Atom{x(OpIn, []any{int64(1), int64(50)}), x(OpGt, int64(10))}, false},
		{"enum outside bounds", []Atom{x(OpIn, []any{int64(1), int64(2)}), x(OpGt, int64(10))}, true},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			unsat, detail := Unsat(c.atoms)
			assert.Equal(t, c.unsat, unsat, detail)
			if c.unsat {
				assert.NotEmpty(t, detail)
			}
		})
	}
}

func TestUnsatDetail(t *testing.T) {
	_, detail := Unsat([]Atom{x(OpGt, int64(10)), x(OpLt, int64(5))})
	assert.Equal(t, "input.x > 10 contradicts input.x < 5", detail)
}

func TestParseOp(t *testing.T) {
	op, ok := ParseOp(">=")
	assert.True(t, ok)
	assert.Equal(t, OpGte, op)
	op, _ = ParseOp("lt")
	assert.Equal(t, OpGt, op.Flip())
	_, ok = ParseOp("add")
	assert.False(t, ok)
}
