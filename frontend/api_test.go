package frontend_test

import (
	"testing"

	"github.com/cottand/tenet/frontend"
	"github.com/cottand/tenet/frontend/analyzer"
	"github.com/cottand/tenet/frontend/ilerr"
	"github.com/cottand/tenet/frontend/registry"
	"github.com/cottand/tenet/frontend/schemafile"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const payroll = `
inputs:
  - name: regions
    type: array
    fields:
      - name: offices
        type: array
        fields:
          - {name: headcount, type: integer}
          - {name: salary, type: float}
  - name: bonus_rate
    type: float
    domain: {min: 0, max: 1}
values:
  - name: office_cost
    expr: {call: multiply, args: [{input: regions.offices.headcount}, {input: regions.offices.salary}]}
  - name: region_cost
    expr: {call: sum, args: [{ref: office_cost}]}
  - name: bonus
    expr: {call: "*", args: [{ref: region_cost}, {input: bonus_rate}]}
traits:
  - name: generous
    expr: {call: ">", args: [{input: bonus_rate}, 0.5]}
`

func analyze(t *testing.T, source string, settings frontend.Settings) (*frontend.Result, *ilerr.Errors) {
	t.Helper()
	schema, _, err := schemafile.Parse("test.yaml", []byte(source))
	require.NoError(t, err)
	res, errs, err := frontend.Analyze(schema, settings)
	require.NoError(t, err)
	return res, errs
}

func TestAnalyze(t *testing.T) {
	res, errs := analyze(t, payroll, frontend.Settings{})
	require.False(t, errs.HasError(), errs.Errors())

	assert.Equal(t, analyzer.EvaluationOrder{"office_cost", "region_cost", "bonus", "generous"}, res.EvaluationOrder())
	assert.Len(t, res.Completed, len(analyzer.DefaultPasses(nil)))

	officeCost, ok := res.TypeOf("office_cost")
	require.True(t, ok)
	assert.Equal(t, "array<array<float>>", officeCost.TypeName())
	regionCost, _ := res.TypeOf("region_cost")
	assert.Equal(t, "array<float>", regionCost.TypeName())

	broadcasts := res.Broadcasts()
	assert.Equal(t, []string{"regions", "regions.offices"}, broadcasts.ArrayFields)
	assert.Equal(t, analyzer.Classification{
		Kind:     analyzer.Vectorized,
		Source:   "regions",
		Dims:     []string{"regions"},
		Function: "sum",
	}, broadcasts.Classifications["region_cost"], "one cost per region")
	assert.Equal(t, analyzer.Scalar, broadcasts.Classifications["generous"].Kind)

	contexts := res.ExecutionContexts()
	assert.Equal(t, 2, contexts["office_cost"].Depth)
	assert.Equal(t, 1, contexts["bonus"].Depth)
	bonus, _ := res.TypeOf("bonus")
	assert.Equal(t, "array<float>", bonus.TypeName())

	graph := res.DependencyGraph()
	require.Len(t, graph["bonus"], 2)
	assert.Equal(t, "*", graph["bonus"][0].Via)
}

func TestAnalyzeReportsPositions(t *testing.T) {
	source := `
inputs:
  - {name: x, type: integer, domain: {min: 0, max: 10}}
traits:
  - name: huge
    expr: {call: gt, args: [{input: x}, 100]}
`
	schema, fset, err := schemafile.Parse("limits.yaml", []byte(source))
	require.NoError(t, err)
	res, errs, err := frontend.Analyze(schema, frontend.Settings{})
	require.NoError(t, err)

	require.Equal(t, 1, errs.Len())
	e := errs.Errors()[0]
	assert.Equal(t, ilerr.KindUnsat, e.Code().Kind())
	assert.Contains(t, ilerr.FormatWithPosition(e, fset), "limits.yaml:5:5: ")
	assert.Contains(t, e.Error(), "conjunction in 'huge' is impossible")
	assert.Equal(t, "UnsatDetector", res.Completed[len(res.Completed)-1])
	assert.Empty(t, res.EvaluationOrder(), "analysis halted before ordering")
}

func TestAnalyzeSettings(t *testing.T) {
	var seen []string
	_, errs := analyze(t, payroll, frontend.Settings{
		StopAfter: "Toposorter",
		Hooks: frontend.Hooks{
			AfterPass: func(_ int, pass string, _ analyzer.State) { seen = append(seen, pass) },
		},
	})
	assert.False(t, errs.HasError())
	assert.Equal(t, []string{"NameIndexer", "InputCollector", "DependencyResolver", "UnsatDetector", "Toposorter"}, seen)

	source := `
inputs:
  - {name: x, type: float}
values:
  - name: y
    expr: {call: halve, args: [{input: x}]}
`
	_, errs = analyze(t, source, frontend.Settings{})
	assert.True(t, errs.HasKind(ilerr.KindType))

	reg, err := registry.Builtins().With(&registry.Function{
		Name:   "halve",
		Arity:  1,
		Return: string(registry.ReturnFirst),
	})
	require.NoError(t, err)
	res, errs := analyze(t, source, frontend.Settings{Registry: reg})
	require.False(t, errs.HasError(), errs.Errors())
	y, _ := res.TypeOf("y")
	assert.Equal(t, "float", y.TypeName())
}

func TestAnalyzeNilSchema(t *testing.T) {
	_, _, err := frontend.Analyze(nil, frontend.Settings{})
	assert.Error(t, err)
}
