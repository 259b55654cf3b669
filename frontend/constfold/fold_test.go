package constfold

import (
	"math"
	"testing"

	"github.com/cottand/tenet/frontend/ast"
	"github.com/stretchr/testify/assert"
)

func TestFold(t *testing.T) {
	cases := map[string]struct {
		expr     ast.Expr
		expected any
		constant bool
	}{
		"int addition":       {ast.CallOf("add", ast.Lit(5), ast.Lit(3)), int64(8), true},
		"mixed promotes":     {ast.CallOf("+", ast.Lit(1), ast.Lit(0.5)), 1.5, true},
		"division is float":  {ast.CallOf("divide", ast.Lit(3), ast.Lit(2)), 1.5, true},
		"division by zero":   {ast.CallOf("divide", ast.Lit(3), ast.Lit(0)), nil, false},
		"modulo by zero":     {ast.CallOf("modulo", ast.Lit(3), ast.Lit(0)), nil, false},
		"comparison":         {ast.CallOf("gt", ast.Lit(10), ast.Lit(5)), true, true},
		"string equality":    {ast.CallOf("eq", ast.Lit("a"), ast.Lit("a")), true, true},
		"int float equality": {ast.CallOf("eq", ast.Lit(1), ast.Lit(1.0)), true, true},
		"and":                {ast.CallOf("and", ast.Lit(true), ast.Lit(false)), false, true},
		"not":                {ast.CallOf("not", ast.Lit(false)), true, true},
		"input":              {ast.CallOf("add", ast.Input("x"), ast.Lit(1)), nil, false},
		"mismatched types":   {ast.CallOf("add", ast.Lit("a"), ast.Lit(1)), nil, false},
		"unknown function":   {ast.CallOf("frobnicate", ast.Lit(1)), nil, false},
		"nil literal":        {ast.Lit(nil), nil, false},
		"add overflow":       {ast.CallOf("add", ast.Lit(int64(math.MaxInt64)), ast.Lit(1)), nil, false},
		"subtract overflow":  {ast.CallOf("subtract", ast.Lit(int64(math.MinInt64)), ast.Lit(1)), nil, false},
		"multiply overflow":  {ast.CallOf("multiply", ast.Lit(int64(math.MaxInt64)), ast.Lit(2)), nil, false},
		"negative product":   {ast.CallOf("multiply", ast.Lit(-3), ast.Lit(4)), int64(-12), true},
		"abs overflow":       {ast.CallOf("abs", ast.Lit(int64(math.MinInt64))), nil, false},
		"float overflow":     {ast.CallOf("multiply", ast.Lit(math.MaxFloat64), ast.Lit(2.0)), nil, false},
	}
	for name, c := range cases {
		t.Run(name, func(t *testing.T) {
			v, ok := Fold(c.expr, nil)
			assert.Equal(t, c.constant, ok)
			if c.constant {
				assert.Equal(t, c.expected, v)
			}
		})
	}
}

func TestFoldFollowsDeclarations(t *testing.T) {
	decls := map[string]ast.Expr{
		"base":  ast.Lit(10),
		"twice": ast.CallOf("multiply", ast.Ref("base"), ast.Lit(2)),
		"loopA": ast.Ref("loopB"),
		"loopB": ast.Ref("loopA"),
	}
	lookup := func(name string) (ast.Expr, bool) {
		e, ok := decls[name]
		return e, ok
	}

	v, ok := Fold(ast.Ref("twice"), lookup)
	assert.True(t, ok)
	assert.Equal(t, int64(20), v)

	_, ok = Fold(ast.Ref("loopA"), lookup)
	assert.False(t, ok, "cyclic references are not constant")

	_, ok = Fold(ast.Ref("missing"), lookup)
	assert.False(t, ok)
}

func TestSimplifyIsIdempotent(t *testing.T) {
	expr := ast.CallOf("add",
		ast.Input("x"),
		ast.CallOf("multiply", ast.CallOf("add", ast.Lit(1), ast.Lit(2)), ast.Lit(4)),
	)
	once := Simplify(expr, nil)
	twice := Simplify(once, nil)
	assert.Equal(t, "input.x + 12", ast.ExprString(once))
	assert.Equal(t, ast.ExprString(once), ast.ExprString(twice))
	assert.Equal(t, once.Hash(), twice.Hash())
}

func TestEqual(t *testing.T) {
	assert.True(t, Equal(int64(1), 1.0))
	assert.False(t, Equal("a", int64(1)))
	assert.True(t, Equal([]any{int64(1), "a"}, []any{1.0, "a"}))
	assert.False(t, Equal([]any{int64(1)}, []any{int64(1), int64(2)}))
	assert.False(t, Equal([]any{int64(1)}, int64(1)))
	assert.True(t, Equal(true, true))
	assert.True(t, Equal(nil, nil))
}
