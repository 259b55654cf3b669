package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/cottand/tenet/frontend"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

const schema = `
inputs:
  - name: items
    type: array
    fields:
      - {name: price, type: float}
values:
  - name: doubled
    expr: {call: multiply, args: [{input: items.price}, 2]}
  - name: total
    expr: {call: sum, args: [{ref: doubled}]}
`

func TestPlan(t *testing.T) {
	a, err := analyzeSource("s.yaml", []byte(schema), frontend.Settings{})
	require.NoError(t, err)
	require.False(t, a.errs.HasError())

	report := buildPlan(a.result)
	assert.Equal(t, []string{"doubled", "total"}, report.EvaluationOrder)
	require.Len(t, report.Declarations, 2)
	assert.Equal(t, declPlan{
		Name:      "doubled",
		Type:      "array<float>",
		Broadcast: "vectorized",
		Source:    "items",
		Dims:      []string{"items"},
		Loops:     []string{"items"},
		DependsOn: []string{"items.price"},
	}, report.Declarations[0])
	assert.Equal(t, "sum", report.Declarations[1].Reducer)

	buf := &bytes.Buffer{}
	require.NoError(t, writePlan(buf, report, "yaml"))
	var decoded planReport
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, report, decoded)

	buf.Reset()
	require.NoError(t, writePlan(buf, report, "text"))
	assert.Contains(t, buf.String(), "vectorized[items]")
	assert.Contains(t, buf.String(), "reduction[items] by sum")

	assert.Error(t, writePlan(buf, report, "json"))
}

func TestCheckCommand(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.yaml")
	require.NoError(t, os.WriteFile(good, []byte(schema), 0o644))
	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("values:\n  - {name: a, expr: {ref: missing}}\n"), 0o644))

	out, errOut := &bytes.Buffer{}, &bytes.Buffer{}
	CheckCmd.SetOut(out)
	CheckCmd.SetErr(errOut)

	require.NoError(t, runCheck(CheckCmd, []string{good}))
	assert.Contains(t, out.String(), "ok (2 declarations)")

	err := runCheck(CheckCmd, []string{bad})
	assert.ErrorContains(t, err, "1 errors found")
	assert.Contains(t, errOut.String(), "bad.yaml:2:")
	assert.Contains(t, errOut.String(), "undefined reference to 'missing' in 'a'")
}

func TestLoadRegistry(t *testing.T) {
	path := filepath.Join(t.TempDir(), "functions.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
functions:
  - name: discount
    arity: 2
    params: [numeric, numeric]
    return: float
    signatures: ["(i),(i|1)->(i)"]
`), 0o644))
	reg, err := loadRegistry(path)
	require.NoError(t, err)
	_, ok := reg.Lookup("discount")
	assert.True(t, ok)
	_, ok = reg.Lookup("sum")
	assert.True(t, ok, "builtins are kept")

	_, err = loadRegistry(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
