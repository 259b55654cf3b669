package analyzer

import (
	"fmt"
	"strings"

	"github.com/benbjohnson/immutable"
)

// Key names an artifact stored in a State
type Key string

const (
	KeyDefinitions          Key = "definitions"
	KeyInputMetadata        Key = "input_metadata"
	KeyDependencyGraph      Key = "dependency_graph"
	KeyLeafMap              Key = "leaf_map"
	KeyTransitiveDependents Key = "transitive_dependents"
	KeyCascades             Key = "cascades"
	KeyEvaluationOrder      Key = "evaluation_order"
	KeyBroadcasts           Key = "broadcasts"
	KeyExecutionContexts    Key = "execution_contexts"
	KeyDeclTypes            Key = "decl_types"
)

type keyComparer struct{}

func (keyComparer) Compare(a, b Key) int {
	return strings.Compare(string(a), string(b))
}

// State is the immutable store threaded through every Pass.
// Adding a key returns a new State sharing structure with the previous one,
// which stays untouched.
//
// The zero State is not valid: use NewState.
type State struct {
	m *immutable.SortedMap[Key, any]
}

func NewState() State {
	return State{m: immutable.NewSortedMap[Key, any](keyComparer{})}
}

// Valid reports whether s was built through NewState
func (s State) Valid() bool {
	return s.m != nil
}

// With returns a new State where k is set to v
func (s State) With(k Key, v any) State {
	m := s.m
	if m == nil {
		m = NewState().m
	}
	return State{m: m.Set(k, v)}
}

func (s State) Get(k Key) (any, bool) {
	if s.m == nil {
		return nil, false
	}
	return s.m.Get(k)
}

func (s State) Has(k Key) bool {
	_, ok := s.Get(k)
	return ok
}

func (s State) Len() int {
	if s.m == nil {
		return 0
	}
	return s.m.Len()
}

// Keys returns every key present in s, sorted
func (s State) Keys() []Key {
	if s.m == nil {
		return nil
	}
	keys := make([]Key, 0, s.m.Len())
	itr := s.m.Iterator()
	for !itr.Done() {
		k, _, _ := itr.Next()
		keys = append(keys, k)
	}
	return keys
}

// Lookup returns the value of k in s, if it is present and of type T
func Lookup[T any](s State, k Key) (T, bool) {
	v, ok := s.Get(k)
	if !ok {
		var zero T
		return zero, false
	}
	typed, ok := v.(T)
	return typed, ok
}

// MustLookup is like Lookup, but panics when k is missing or has the wrong type.
// Passes use it for the keys they require earlier passes to have produced.
func MustLookup[T any](s State, k Key) T {
	v, ok := s.Get(k)
	if !ok {
		panic(fmt.Errorf("state has no %q: the pass producing it must run first", k))
	}
	typed, ok := v.(T)
	if !ok {
		panic(fmt.Errorf("state key %q holds %T, not %T", k, v, typed))
	}
	return typed
}
