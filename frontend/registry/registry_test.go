package registry

import (
	"strings"
	"testing"

	"github.com/cottand/tenet/frontend/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuiltinsLookup(t *testing.T) {
	r := Builtins()

	add, ok := r.Lookup("+")
	require.True(t, ok)
	assert.Equal(t, "add", add.Name)
	assert.Equal(t, "add", r.Canonical("+"))
	assert.Equal(t, "nope", r.Canonical("nope"))

	assert.True(t, r.IsReducer("sum"))
	assert.True(t, r.IsReducer("size"))
	assert.False(t, r.IsReducer("add"))
	assert.False(t, r.IsReducer("nope"))

	sum, _ := r.Lookup("sum")
	require.Len(t, sum.ParsedSignatures(), 1)
	assert.Equal(t, "(i)->()", sum.ParsedSignatures()[0].String())
}

func TestReturnType(t *testing.T) {
	r := Builtins()
	add, _ := r.Lookup("add")
	assert.Equal(t, types.Float, add.ReturnType([]types.Type{types.Integer, types.Float}))
	assert.Equal(t, types.Integer, add.ReturnType([]types.Type{types.Integer, types.Integer}))

	gt, _ := r.Lookup("gt")
	assert.Equal(t, types.Boolean, gt.ReturnType([]types.Type{types.Integer, types.Float}))

	sum, _ := r.Lookup("sum")
	assert.Equal(t, types.Float, sum.ReturnType([]types.Type{types.Float}))
}

func TestArity(t *testing.T) {
	r := Builtins()
	and, _ := r.Lookup("and")
	assert.True(t, and.AcceptsArity(3))
	assert.False(t, and.AcceptsArity(1))
	assert.Equal(t, "at least 2", and.ArityString())
	assert.Equal(t, types.BooleanConstraint, and.Param(5))

	add, _ := r.Lookup("add")
	assert.False(t, add.AcceptsArity(3))
	assert.Equal(t, "2", add.ArityString())
}

func TestRegisterValidates(t *testing.T) {
	cases := map[string]*Function{
		"parameter constraints": {Name: "f", Arity: 2, Params: []types.Constraint{types.NumericConstraint}, Return: "float"},
		"unknown parameter":     {Name: "f", Arity: 1, Params: []types.Constraint{"numbr"}, Return: "float"},
		"unknown return":        {Name: "f", Arity: 1, Return: "flaot"},
		"has 1 inputs":          {Name: "f", Arity: 2, Return: "float", Signatures: []string{"(i)->()"}},
		"missing '->'":          {Name: "f", Arity: 1, Return: "float", Signatures: []string{"(i)"}},
	}
	for expected, fn := range cases {
		t.Run(expected, func(t *testing.T) {
			err := New().Register(fn)
			require.Error(t, err)
			assert.Contains(t, err.Error(), expected)
		})
	}
}

func TestLoadYAML(t *testing.T) {
	src := `
functions:
  - name: discount
    aliases: [disc]
    arity: 2
    params: [numeric, numeric]
    return: float
    signatures: ["(i),(i|1)->(i)"]
  - name: join_all
    min_arity: 1
    return: string
`
	fns, err := LoadYAML(strings.NewReader(src))
	require.NoError(t, err)
	require.Len(t, fns, 2)
	assert.Equal(t, Variadic, fns[1].Arity)

	r, err := Builtins().With(fns...)
	require.NoError(t, err)
	disc, ok := r.Lookup("disc")
	require.True(t, ok)
	assert.Equal(t, "discount", disc.Name)
	assert.Len(t, disc.ParsedSignatures(), 1)

	_, ok = Builtins().Lookup("discount")
	assert.False(t, ok, "With must not modify the original registry")
}

func TestLoadYAMLUnknownField(t *testing.T) {
	_, err := LoadYAML(strings.NewReader("functions:\n  - name: f\n    arty: 2\n"))
	assert.Error(t, err)
}

func TestRegisterRejectsDuplicates(t *testing.T) {
	_, err := Builtins().With(&Function{Name: "sum", Arity: 1, Return: "float"})
	assert.ErrorContains(t, err, "function 'sum' is already registered")

	_, err = Builtins().With(&Function{Name: "plus", Aliases: []string{"+"}, Arity: 2, Return: "float"})
	assert.ErrorContains(t, err, "function '+' is already registered")

	_, err = Builtins().With(&Function{Name: "avg", Arity: 1, Return: "float"})
	assert.Error(t, err, "aliases of builtins are taken too")
}
