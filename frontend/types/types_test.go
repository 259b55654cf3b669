package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParse(t *testing.T) {
	cases := map[string]Type{
		"integer":             Integer,
		" float ":             Float,
		"array":               Array{Elem: Any},
		"array<integer>":      Array{Elem: Integer},
		"array<array<float>>": Array{Elem: Array{Elem: Float}},
		"intger":              Invalid{Name: "intger"},
		"array<intger>":       Invalid{Name: "array<intger>"},
		"array<integer":       Invalid{Name: "array<integer"},
	}
	for name, expected := range cases {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, expected, Parse(name))
		})
	}
}

func TestPromote(t *testing.T) {
	promoted, ok := Promote(Integer, Float)
	assert.True(t, ok)
	assert.Equal(t, Float, promoted)

	promoted, ok = Promote(Integer, Integer)
	assert.True(t, ok)
	assert.Equal(t, Integer, promoted)

	promoted, ok = Promote(Decimal, Integer)
	assert.True(t, ok)
	assert.Equal(t, Decimal, promoted)

	_, ok = Promote(Integer, String)
	assert.False(t, ok)
}

func TestUnifyAll(t *testing.T) {
	assert.Equal(t, Float, UnifyAll(Integer, Float, Integer))
	assert.Equal(t, Any, UnifyAll(Integer, String))
	assert.Equal(t, Any, UnifyAll())
	assert.Equal(t, String, UnifyAll(Any, String))
	assert.Equal(t, Array{Elem: Float}, UnifyAll(Array{Elem: Integer}, Array{Elem: Float}))
}

func TestRankAndWrap(t *testing.T) {
	nested := Wrap(Float, 2)
	assert.Equal(t, 2, Rank(nested))
	assert.Equal(t, Float, Elem(nested))
	assert.Equal(t, Array{Elem: Float}, Unwrap(nested))
	assert.Equal(t, "array<array<float>>", nested.TypeName())
}

func TestConstraintSatisfied(t *testing.T) {
	assert.True(t, NumericConstraint.Satisfied(Integer))
	assert.True(t, NumericConstraint.Satisfied(Any))
	assert.False(t, NumericConstraint.Satisfied(String))
	assert.True(t, ArrayConstraint.Satisfied(Array{Elem: Integer}))
	assert.False(t, ComparableConstraint.Satisfied(Array{Elem: Integer}))
	assert.False(t, Constraint("numbr").Valid())
}

func TestAssignable(t *testing.T) {
	assert.True(t, Assignable(Float, Integer))
	assert.False(t, Assignable(Integer, Float))
	assert.True(t, Assignable(Array{Elem: Float}, Array{Elem: Integer}))
	assert.False(t, Assignable(Boolean, String))
}
