package analyzer

import (
	"github.com/cottand/tenet/frontend/analyzer/unsat"
	"github.com/cottand/tenet/frontend/ast"
	"github.com/cottand/tenet/frontend/ilerr"
	"github.com/cottand/tenet/util"
	"github.com/hashicorp/go-set/v3"
)

// Toposorter computes an evaluation order where every declaration comes after
// the declarations it depends on.
//
// Cycles are errors unless every edge on them sits in a branch of a cascade whose
// conditions exclude each other, and the branch conditions guarding the edges can
// never hold together. Such a cycle is never followed at runtime, and its closing
// edge is left out of the ordering.
type Toposorter struct{}

func (Toposorter) Name() string { return "Toposorter" }

type mark int

const (
	unvisited mark = iota
	// onStack nodes are being visited
	onStack
	done
)

type frame struct {
	name string
	// next is the index of the next edge of name to follow
	next int
	// via is the edge that led to this frame
	via Edge
}

func (Toposorter) Run(schema *ast.Schema, state State) (State, *ilerr.Errors) {
	graph := MustLookup[DependencyGraph](state, KeyDependencyGraph)
	cascades, _ := Lookup[Cascades](state, KeyCascades)
	g := gatherer{
		defs:   MustLookup[Definitions](state, KeyDefinitions),
		inputs: MustLookup[InputMetadata](state, KeyInputMetadata),
	}
	logger := logger.With("pass", "Toposorter")

	var errs *ilerr.Errors
	marks := make(map[string]mark, len(graph))
	order := make(EvaluationOrder, 0, len(graph))

	for _, decl := range schema.Declarations {
		if _, ok := graph[decl.Name]; !ok || marks[decl.Name] != unvisited {
			continue
		}
		stack := &util.Stack[*frame]{}
		stack.Push(&frame{name: decl.Name})
		marks[decl.Name] = onStack

		for stack.Len() > 0 {
			top, _ := stack.Peek()
			edges := graph[top.name]
			if top.next >= len(edges) {
				stack.Pop()
				marks[top.name] = done
				order = append(order, top.name)
				continue
			}
			e := edges[top.next]
			top.next++
			if e.Kind != EdgeRef {
				continue
			}
			if _, declared := graph[e.To]; !declared {
				continue
			}

			switch marks[e.To] {
			case unvisited:
				marks[e.To] = onStack
				stack.Push(&frame{name: e.To, via: e})
			case onStack:
				path, cycle := cycleFrom(stack.Items(), e)
				if safeCycle(cycle, cascades, g) {
					logger.Debug("skipping safe conditional cycle", "path", path)
					continue
				}
				errs = errs.With(ilerr.New(ilerr.NewCycleDetected{Range: e.Range, Path: path}))
			case done:
			}
		}
	}
	return state.With(KeyEvaluationOrder, order), errs
}

// cycleFrom returns the names and edges of the cycle closed by back, given
// the frames currently being visited
func cycleFrom(frames []*frame, back Edge) (path []string, edges []Edge) {
	start := 0
	for i, f := range frames {
		if f.name == back.To {
			start = i
			break
		}
	}
	for i, f := range frames[start:] {
		path = append(path, f.name)
		if i > 0 {
			edges = append(edges, f.via)
		}
	}
	return append(path, back.To), append(edges, back)
}

func safeCycle(edges []Edge, cascades Cascades, g gatherer) bool {
	var atoms []unsat.Atom
	for _, e := range edges {
		if !e.Conditional || e.CascadeOwner == "" {
			return false
		}
		if info, ok := cascades[e.CascadeOwner]; !ok || !info.MutuallyExclusive {
			return false
		}
		for _, guard := range e.Guards {
			atoms = append(atoms, g.gather(guard, set.From([]string{e.From}))...)
		}
	}
	impossible, _ := unsat.Unsat(g.withDomains(atoms))
	return impossible
}
