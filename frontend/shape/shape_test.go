package shape

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSignature(t *testing.T) {
	cases := []string{
		"(i),(i)->(i)",
		"(i,j)->(i)",
		"(m?,n),(n,p?)->(m?,p?)",
		"(3),(3)->(3)@product",
		"(i),(j)->(i,j)@zip",
		"(),()->()",
		"(n|1),(n)->(n)",
	}
	for _, text := range cases {
		t.Run(text, func(t *testing.T) {
			sig, err := ParseSignature(text)
			require.NoError(t, err)
			assert.Equal(t, text, sig.String())
		})
	}

	sig := MustParseSignature("(m?, n), (n, p?) -> (m?, p?)")
	assert.Equal(t, 2, sig.Arity())
	assert.True(t, sig.In[0][0].Flexible)
	assert.Equal(t, "n", sig.In[0][1].Name)
}

func TestParseSignatureErrors(t *testing.T) {
	cases := map[string]string{
		"(i),(i)":           "missing '->'",
		"(i,i)->(i)":        "more than once",
		"(3?)->(3)":         "cannot be flexible",
		"(i|1)->(i|1)":      "cannot appear in the output",
		"(i)->(j)":          "not bound",
		"(i)->(i)@cartesian": "unknown join policy",
		"(i->(i)":           "unclosed",
		"(0)->()":           "must be positive",
		"(i)(j)->()":        "expected ','",
		"(i)->(i),(i)":      "exactly one output",
	}
	for text, expected := range cases {
		t.Run(text, func(t *testing.T) {
			_, err := ParseSignature(text)
			require.Error(t, err)
			assert.Contains(t, err.Error(), expected)
		})
	}
}

func TestFixedOutputIsNew(t *testing.T) {
	_, err := ParseSignature("(i)->(2)")
	assert.NoError(t, err)
}

func TestMatchCosts(t *testing.T) {
	elementWise := MustParseSignature("(i),(i)->(i)")

	plan, ok := Match(elementWise, []Shape{Of("items"), Of("items")})
	require.True(t, ok)
	assert.Equal(t, 0, plan.Cost)
	assert.Equal(t, "(items)", plan.Result.String())

	_, ok = Match(elementWise, []Shape{Of("items"), Of("orders")})
	assert.False(t, ok, "different axes need a join policy")

	_, ok = Match(elementWise, []Shape{Of("items")})
	assert.False(t, ok, "arity mismatch")

	_, ok = Match(elementWise, []Shape{Of("items"), Of()})
	assert.False(t, ok, "scalar against a plain dimension")

	broadcasting := MustParseSignature("(i),(i|1)->(i)")
	plan, ok = Match(broadcasting, []Shape{Of("items"), Of()})
	require.True(t, ok)
	assert.Equal(t, 1, plan.Cost)

	plan, ok = Match(broadcasting, []Shape{Of("items"), Of("1")})
	require.True(t, ok)
	assert.Equal(t, 1, plan.Cost)

	plan, ok = Match(elementWise, []Shape{Of("3"), Of("3")})
	require.True(t, ok)
	assert.Equal(t, 2, plan.Cost, "named dimension bound to a fixed size")
	assert.Equal(t, "(3)", plan.Result.String())
}

func TestMatchFlexible(t *testing.T) {
	matmul := MustParseSignature("(m?,n),(n,p?)->(m?,p?)")

	plan, ok := Match(matmul, []Shape{Of("a", "k"), Of("k", "b")})
	require.True(t, ok)
	assert.Equal(t, "(a,b)", plan.Result.String())

	plan, ok = Match(matmul, []Shape{Of("k"), Of("k", "b")})
	require.True(t, ok)
	assert.Equal(t, "(b)", plan.Result.String())

	plan, ok = Match(matmul, []Shape{Of("k"), Of("k")})
	require.True(t, ok)
	assert.True(t, plan.Result.Scalar())

	_, ok = Match(matmul, []Shape{Of("a", "k"), Of("j", "b")})
	assert.False(t, ok)
}

func TestMatchJoinPolicies(t *testing.T) {
	zip := MustParseSignature("(i),(i)->(i)@zip")
	plan, ok := Match(zip, []Shape{Of("items"), Of("orders")})
	require.True(t, ok)
	assert.Equal(t, "(items)", plan.Result.String())

	product := MustParseSignature("(i),(i)->(i)@product")
	plan, ok = Match(product, []Shape{Of("items"), Of("orders")})
	require.True(t, ok)
	assert.Equal(t, "(items,orders)", plan.Result.String())
}

func TestResolvePicksCheapest(t *testing.T) {
	candidates := []Signature{
		MustParseSignature("(i),(i)->(i)"),
		MustParseSignature("(3),(3)->(3)@product"),
	}
	plan, err := Resolve(candidates, []Shape{Of("3"), Of("3")})
	require.NoError(t, err)
	assert.Equal(t, "(3),(3)->(3)@product", plan.Signature.String())
	assert.Equal(t, 0, plan.Cost)

	plan, err = Resolve(candidates, []Shape{Of("items"), Of("items")})
	require.NoError(t, err)
	assert.Equal(t, "(i),(i)->(i)", plan.Signature.String())
}

func TestResolveTieBreakIsLexicographic(t *testing.T) {
	a := MustParseSignature("(j)->(j)")
	b := MustParseSignature("(i)->(i)")
	for _, candidates := range [][]Signature{{a, b}, {b, a}} {
		plan, err := Resolve(candidates, []Shape{Of("items")})
		require.NoError(t, err)
		assert.Equal(t, "(i)->(i)", plan.Signature.String())
	}
}

func TestResolveErrors(t *testing.T) {
	_, err := Resolve([]Signature{MustParseSignature("(i)->()")}, []Shape{Of("a", "b")})
	var noMatch *NoMatchError
	require.ErrorAs(t, err, &noMatch)
	assert.Contains(t, err.Error(), "(a,b)")

	_, err = Resolve([]Signature{
		MustParseSignature("(i)->()"),
		MustParseSignature("(j)->(j)"),
	}, []Shape{Of("items")})
	var ambiguous *AmbiguousError
	require.ErrorAs(t, err, &ambiguous)
	assert.Len(t, ambiguous.Plans, 2)
}
