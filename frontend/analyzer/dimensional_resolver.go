package analyzer

import (
	"strings"

	"github.com/cottand/tenet/frontend/ast"
	"github.com/cottand/tenet/frontend/ilerr"
)

// DimensionalResolver computes the execution context of each declaration: the most
// deeply nested array path among its dependencies, which lowering turns into loops
type DimensionalResolver struct{}

func (DimensionalResolver) Name() string { return "DimensionalResolver" }

func (DimensionalResolver) Run(_ *ast.Schema, state State) (State, *ilerr.Errors) {
	order := MustLookup[EvaluationOrder](state, KeyEvaluationOrder)
	graph := MustLookup[DependencyGraph](state, KeyDependencyGraph)
	inputs := MustLookup[InputMetadata](state, KeyInputMetadata)
	broadcasts := MustLookup[Broadcasts](state, KeyBroadcasts)

	contexts := make(ExecutionContexts, len(order))
	for _, name := range order {
		var deepest []string
		for _, e := range graph[name] {
			var candidate []string
			switch e.Kind {
			case EdgeKey:
				meta, _, _ := inputs.Resolve(strings.Split(e.To, "."))
				if meta == nil {
					continue
				}
				candidate = meta.DimensionalScope
			case EdgeRef:
				// a reference iterates over the levels its value still has,
				// and reductions have none left
				class, classified := broadcasts.Classifications[e.To]
				switch {
				case class.Kind == Reduction:
					continue
				case classified && class.Kind == Vectorized:
					candidate = class.Dims
				default:
					candidate = contexts[e.To].Dims
				}
			}
			if deeper(candidate, deepest) {
				deepest = candidate
			}
		}
		dims := append([]string{}, deepest...)
		contexts[name] = ExecutionContext{Dims: dims, Depth: len(dims)}
	}
	return state.With(KeyExecutionContexts, contexts), nil
}

// deeper orders paths by depth, then lexicographically on the
// joined path so that the outcome does not depend on edge order
func deeper(candidate, current []string) bool {
	if len(candidate) != len(current) {
		return len(candidate) > len(current)
	}
	if len(candidate) == 0 {
		return false
	}
	return strings.Join(candidate, ".") < strings.Join(current, ".")
}
