package analyzer

import (
	"context"
	"log/slog"
	"slices"
	"testing"

	"github.com/cottand/tenet/frontend/ast"
	"github.com/cottand/tenet/frontend/ilerr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePass struct {
	name string
	run  func(State) (State, *ilerr.Errors)
}

func (p fakePass) Name() string { return p.name }

func (p fakePass) Run(_ *ast.Schema, state State) (State, *ilerr.Errors) {
	return p.run(state)
}

func adding(name string, k Key) fakePass {
	return fakePass{name: name, run: func(s State) (State, *ilerr.Errors) {
		return s.With(k, name), nil
	}}
}

func TestStateIsPersistent(t *testing.T) {
	s0 := NewState()
	s1 := s0.With(KeyDefinitions, Definitions{})
	s2 := s1.With(KeyEvaluationOrder, EvaluationOrder{"a"})

	assert.False(t, s0.Has(KeyDefinitions))
	assert.False(t, s1.Has(KeyEvaluationOrder))
	assert.Equal(t, []Key{KeyDefinitions, KeyEvaluationOrder}, s2.Keys())

	order, ok := Lookup[EvaluationOrder](s2, KeyEvaluationOrder)
	assert.True(t, ok)
	assert.Equal(t, EvaluationOrder{"a"}, order)

	_, ok = Lookup[DeclTypes](s2, KeyEvaluationOrder)
	assert.False(t, ok, "wrong type")

	assert.Panics(t, func() { MustLookup[DeclTypes](s2, KeyDeclTypes) })
	assert.False(t, State{}.Valid())
	assert.True(t, State{}.With(KeyDefinitions, nil).Valid())
}

func TestManagerRunsInOrder(t *testing.T) {
	var seen []string
	m := NewManager(adding("first", "one"), adding("second", "two"))
	res, err := m.Run(&ast.Schema{}, NewState(), Options{
		BeforePass: func(phase int, pass string, _ State) { seen = append(seen, "before "+pass) },
		AfterPass:  func(phase int, pass string, _ State) { seen = append(seen, "after "+pass) },
	})
	require.NoError(t, err)
	assert.False(t, res.Failed)
	assert.Equal(t, []string{"first", "second"}, res.Completed)
	assert.Equal(t, []string{"before first", "after first", "before second", "after second"}, seen)
	assert.Equal(t, []Key{"one", "two"}, res.State.Keys())
}

func TestManagerHaltsOnErrors(t *testing.T) {
	failing := fakePass{name: "failing", run: func(s State) (State, *ilerr.Errors) {
		var errs *ilerr.Errors
		return s.With("partial", true), errs.With(ilerr.New(ilerr.NewDuplicateDeclaration{Name: "a"}))
	}}
	m := NewManager(adding("first", "one"), failing, adding("never", "three"))
	res, err := m.Run(&ast.Schema{}, NewState(), Options{})
	require.NoError(t, err)

	assert.True(t, res.Failed)
	assert.Equal(t, "failing", res.FailedPass)
	assert.Equal(t, 1, res.Phase)
	assert.Nil(t, res.Failure)
	assert.Equal(t, []string{"first", "failing"}, res.Completed)
	assert.True(t, res.Errors.HasKind(ilerr.KindStructural))
	assert.True(t, res.State.Has("partial"))
	assert.False(t, res.State.Has("three"))
}

func TestManagerRecoversPanics(t *testing.T) {
	panicking := fakePass{name: "panicking", run: func(s State) (State, *ilerr.Errors) {
		panic("boom")
	}}
	m := NewManager(adding("first", "one"), panicking)
	res, err := m.Run(&ast.Schema{}, NewState(), Options{})
	require.NoError(t, err)

	require.NotNil(t, res.Failure)
	assert.True(t, res.Failed)
	assert.Equal(t, "panicking", res.Failure.Pass)
	assert.Equal(t, 1, res.Failure.Phase)
	assert.Contains(t, res.Failure.Error(), "boom")
	assert.True(t, res.Errors.HasKind(ilerr.KindInternal))
	assert.True(t, res.State.Has("one"), "state before the failing pass is kept")
}

func TestManagerStopAfter(t *testing.T) {
	m := NewManager(adding("first", "one"), adding("second", "two"))
	res, err := m.Run(&ast.Schema{}, NewState(), Options{StopAfter: "first"})
	require.NoError(t, err)
	assert.False(t, res.Failed)
	assert.Equal(t, []string{"first"}, res.Completed)

	_, err = m.Run(&ast.Schema{}, NewState(), Options{StopAfter: "third"})
	assert.ErrorContains(t, err, "unknown pass")
}

func TestManagerRejectsBrokenContract(t *testing.T) {
	invalid := fakePass{name: "invalid", run: func(State) (State, *ilerr.Errors) { return State{}, nil }}
	_, err := NewManager(invalid).Run(&ast.Schema{}, NewState(), Options{})
	assert.ErrorContains(t, err, "invalid state")

	forgetful := fakePass{name: "forgetful", run: func(State) (State, *ilerr.Errors) {
		return NewState(), nil
	}}
	_, err = NewManager(adding("first", "one"), forgetful).Run(&ast.Schema{}, NewState(), Options{})
	assert.ErrorContains(t, err, "without")

	_, err = NewManager().Run(&ast.Schema{}, State{}, Options{})
	assert.Error(t, err)
}

// recorder keeps the attributes of every record it handles
type recorder struct {
	attrs   []slog.Attr
	records *[][]slog.Attr
}

func (r recorder) Enabled(context.Context, slog.Level) bool { return true }

func (r recorder) Handle(_ context.Context, record slog.Record) error {
	attrs := slices.Clone(r.attrs)
	record.Attrs(func(a slog.Attr) bool {
		attrs = append(attrs, a)
		return true
	})
	*r.records = append(*r.records, attrs)
	return nil
}

func (r recorder) WithAttrs(attrs []slog.Attr) slog.Handler {
	return recorder{attrs: append(slices.Clone(r.attrs), attrs...), records: r.records}
}

func (r recorder) WithGroup(string) slog.Handler { return r }

func TestLogRecordsCarryOneSection(t *testing.T) {
	var records [][]slog.Attr
	previous := logger
	logger = slog.New(recorder{records: &records}).With("section", "analyzer")
	t.Cleanup(func() { logger = previous })

	analyze(t, orderInputs, orderDecls...)
	require.NotEmpty(t, records)
	for _, attrs := range records {
		sections := slices.DeleteFunc(slices.Clone(attrs), func(a slog.Attr) bool { return a.Key != "section" })
		assert.Len(t, sections, 1, attrs)
	}
}
