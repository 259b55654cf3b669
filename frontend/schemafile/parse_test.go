package schemafile

import (
	"testing"

	"github.com/cottand/tenet/frontend/ast"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const orders = `
inputs:
  - name: age
    type: integer
    domain: {min: 0, max: 150}
  - name: tier
    type: string
    domain: {enum: [gold, silver]}
  - name: items
    type: array
    fields:
      - {name: price, type: float}
      - {name: quantity, type: integer}
traits:
  - name: adult
    expr: {call: gte, args: [{input: age}, 18]}
values:
  - name: line_totals
    expr:
      call: multiply
      args: [{input: items.price}, {input: [items, quantity]}]
  - name: total
    type: float
    expr: {call: sum, args: [{ref: line_totals}]}
  - name: discount
    expr:
      cascade:
        - when: {ref: adult}
          then: 0.1
      else: {lit: 0}
  - name: codes
    expr: [1, "two", true, ~]
`

func TestParse(t *testing.T) {
	schema, fset, err := Parse("orders.yaml", []byte(orders))
	require.NoError(t, err)

	require.Len(t, schema.Inputs, 3)
	age := schema.Inputs[0]
	assert.Equal(t, "age", age.Name)
	assert.Equal(t, "integer", age.Type)
	require.NotNil(t, age.Domain)
	assert.Equal(t, 150.0, *age.Domain.Max)
	assert.Equal(t, []any{"gold", "silver"}, schema.Inputs[1].Domain.Enum)
	items := schema.Inputs[2]
	require.Len(t, items.Children, 2)
	assert.Equal(t, "quantity", items.Children[1].Name)

	names := make([]string, len(schema.Declarations))
	for i, d := range schema.Declarations {
		names[i] = d.Name
	}
	assert.Equal(t, []string{"adult", "line_totals", "total", "discount", "codes"}, names, "file order is kept")

	adult := schema.Declarations[0]
	assert.True(t, adult.IsTrait())
	assert.Equal(t, "input.age >= 18", ast.ExprString(adult.E))
	assert.Equal(t, int64(18), adult.E.(*ast.Call).Args[1].(*ast.Literal).Value)

	lineTotals := schema.Declarations[1].E.(*ast.Call)
	assert.Equal(t, []string{"items", "quantity"}, lineTotals.Args[1].(*ast.InputRef).Path)
	assert.Equal(t, "input.items.price * input.items.quantity", ast.ExprString(lineTotals))

	total := schema.Declarations[2]
	assert.Equal(t, "float", total.TypeAnn)
	assert.Equal(t, ast.KindValue, total.Kind)

	assert.Equal(t, "cascade { on adult => 0.1; else 0 }", ast.ExprString(schema.Declarations[3].E))
	assert.Equal(t, `[1, "two", true, nil]`, ast.ExprString(schema.Declarations[4].E))

	pos := fset.Position(total.Pos())
	assert.Equal(t, "orders.yaml", pos.Filename)
	assert.Equal(t, 22, pos.Line)
	assert.Equal(t, 5, pos.Column)

	lit := adult.E.(*ast.Call).Args[1]
	assert.Equal(t, 16, fset.Position(lit.Pos()).Line)
	assert.Equal(t, 2, int(lit.End()-lit.Pos()))
}

func TestParseEmpty(t *testing.T) {
	schema, _, err := Parse("empty.yaml", nil)
	require.NoError(t, err)
	assert.Empty(t, schema.Inputs)
	assert.Empty(t, schema.Declarations)
}

func TestParseMissingExpression(t *testing.T) {
	schema, _, err := Parse("s.yaml", []byte("values:\n  - name: nothing\n"))
	require.NoError(t, err)
	require.Len(t, schema.Declarations, 1)
	assert.Nil(t, schema.Declarations[0].E)
}

func TestParseErrors(t *testing.T) {
	cases := []struct {
		name     string
		input    string
		expected string
	}{
		{"unknown section", "outputs: []", `s.yaml:1:1: unknown key "outputs" in schema`},
		{"trait with type", "traits:\n  - {name: t, type: integer, expr: true}", `unknown key "type" in trait`},
		{"two kinds", "values:\n  - {name: v, expr: {ref: a, lit: 1}}", "exactly one of"},
		{"args without call", "values:\n  - {name: v, expr: {args: [1]}}", "exactly one of"},
		{"branch without result", "values:\n  - {name: v, expr: {cascade: [{when: true}]}}", "needs both when and then"},
		{"inputs not a list", "inputs: {a: 1}", "input fields must be a list"},
		{"bad yaml", "values: [", "could not parse s.yaml"},
		{"empty path", "values:\n  - {name: v, expr: {input: ''}}", "empty input path"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, _, err := Parse("s.yaml", []byte(c.input))
			assert.ErrorContains(t, err, c.expected)
		})
	}
}
