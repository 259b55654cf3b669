package analyzer

import (
	"cmp"
	"slices"

	"github.com/cottand/tenet/frontend/ast"
	"github.com/cottand/tenet/frontend/ilerr"
	"github.com/cottand/tenet/util"
)

// DependencyResolver builds the dependency graph, the leaves of every
// declaration and who transitively depends on whom.
// Undefined references are reported all at once, without stopping the walk.
type DependencyResolver struct{}

func (DependencyResolver) Name() string { return "DependencyResolver" }

func (DependencyResolver) Run(schema *ast.Schema, state State) (State, *ilerr.Errors) {
	defs := MustLookup[Definitions](state, KeyDefinitions)
	inputs := MustLookup[InputMetadata](state, KeyInputMetadata)

	var errs *ilerr.Errors
	graph := make(DependencyGraph, len(defs))
	leaves := make(LeafMap, len(defs))
	w := dependencyWalker{defs: defs, inputs: inputs}
	for i := range schema.Declarations {
		decl := &schema.Declarations[i]
		// duplicates were reported already
		if defs[decl.Name] != decl {
			continue
		}
		deps, walkErrs := w.walk(decl.E, walkContext{decl: decl.Name})
		errs = errs.Merge(walkErrs)
		graph[decl.Name] = deps.edges
		leaves[decl.Name] = sortLeaves(deps.leaves)
	}

	state = state.
		With(KeyDependencyGraph, graph).
		With(KeyLeafMap, leaves).
		With(KeyTransitiveDependents, transitiveDependents(graph))
	return state, errs
}

type walkContext struct {
	decl string
	// via is the nearest enclosing call
	via string
	// guards are the branch conditions that must hold for the walked
	// expression to be evaluated
	guards []ast.Expr
}

type dependencies struct {
	edges  []Edge
	leaves []Leaf
}

func (d dependencies) merge(other dependencies) dependencies {
	return dependencies{
		edges:  append(d.edges, other.edges...),
		leaves: append(d.leaves, other.leaves...),
	}
}

type dependencyWalker struct {
	defs   Definitions
	inputs InputMetadata
}

func (w dependencyWalker) walk(expr ast.Expr, ctx walkContext) (dependencies, *ilerr.Errors) {
	var deps dependencies
	var errs *ilerr.Errors
	switch expr := expr.(type) {
	case nil:
	case *ast.Literal:
		deps.leaves = append(deps.leaves, Leaf{Kind: LeafLiteral, Text: ast.LiteralString(expr.Value)})
	case *ast.ListLit:
		for _, elem := range expr.Elems {
			elemDeps, elemErrs := w.walk(elem, ctx)
			deps, errs = deps.merge(elemDeps), errs.Merge(elemErrs)
		}
	case *ast.DeclRef:
		if _, ok := w.defs[expr.Name]; !ok {
			errs = errs.With(ilerr.New(ilerr.NewUndefinedDeclaration{
				Range: expr.Range,
				Name:  expr.Name,
				From:  ctx.decl,
			}))
			break
		}
		deps.edges = append(deps.edges, ctx.edge(expr.Name, EdgeRef, expr.Range))
	case *ast.InputRef:
		if _, _, missing := w.inputs.Resolve(expr.Path); missing != "" || len(expr.Path) == 0 {
			errs = errs.With(ilerr.New(ilerr.NewUndefinedInputField{
				Range:   expr.Range,
				Path:    expr.Name(),
				Missing: missing,
				From:    ctx.decl,
			}))
			break
		}
		deps.edges = append(deps.edges, ctx.edge(expr.Name(), EdgeKey, expr.Range))
		deps.leaves = append(deps.leaves, Leaf{Kind: LeafInput, Text: expr.Name()})
	case *ast.Call:
		inner := ctx
		inner.via = expr.Fn
		for _, arg := range expr.Args {
			argDeps, argErrs := w.walk(arg, inner)
			deps, errs = deps.merge(argDeps), errs.Merge(argErrs)
		}
	case *ast.Cascade:
		// conditions are evaluated in order until one holds, while results
		// only when their branch is taken. The default is taken whenever no
		// condition holds, so it adds no guard.
		for _, c := range expr.Cases {
			branch := ctx
			branch.guards = slices.Concat(ctx.guards, []ast.Expr{c.Condition})
			condDeps, condErrs := w.walk(c.Condition, ctx)
			resDeps, resErrs := w.walk(c.Result, branch)
			deps = deps.merge(condDeps).merge(resDeps)
			errs = errs.Merge(condErrs).Merge(resErrs)
		}
		defDeps, defErrs := w.walk(expr.Default, ctx)
		deps, errs = deps.merge(defDeps), errs.Merge(defErrs)
	default:
		panic(ast.UnknownExpr(expr))
	}
	return deps, errs
}

func (ctx walkContext) edge(to string, kind EdgeKind, r ast.Range) Edge {
	e := Edge{
		From:        ctx.decl,
		To:          to,
		Kind:        kind,
		Via:         ctx.via,
		Conditional: len(ctx.guards) > 0,
		Guards:      ctx.guards,
		Range:       r,
	}
	if e.Conditional {
		e.CascadeOwner = ctx.decl
	}
	return e
}

func sortLeaves(leaves []Leaf) []Leaf {
	slices.SortFunc(leaves, func(a, b Leaf) int {
		if c := cmp.Compare(a.Kind, b.Kind); c != 0 {
			return c
		}
		return cmp.Compare(a.Text, b.Text)
	})
	return slices.Compact(leaves)
}

// transitiveDependents inverts the declaration edges of graph and
// computes, for every declaration, all the declarations reaching it
func transitiveDependents(graph DependencyGraph) TransitiveDependents {
	direct := make(map[string][]string)
	for _, from := range util.SortedKeys(graph) {
		for _, e := range graph[from] {
			if e.Kind == EdgeRef {
				direct[e.To] = append(direct[e.To], from)
			}
		}
	}

	result := make(TransitiveDependents, len(graph))
	for _, name := range util.SortedKeys(graph) {
		seen := util.NewOrderedSet[string]()
		pending := util.Stack[string]{}
		for _, d := range direct[name] {
			pending.Push(d)
		}
		for pending.Len() > 0 {
			next, _ := pending.Pop()
			if !seen.Insert(next) {
				continue
			}
			for _, d := range direct[next] {
				pending.Push(d)
			}
		}
		result[name] = seen.Slice()
	}
	return result
}
