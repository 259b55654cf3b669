package analyzer

import (
	"github.com/cottand/tenet/frontend/ast"
	"github.com/cottand/tenet/frontend/ilerr"
	"github.com/cottand/tenet/frontend/registry"
	"github.com/cottand/tenet/frontend/types"
)

// TypeInferencer infers the type of every declaration, in evaluation order.
// It never fails: whatever cannot be inferred is typed any.
type TypeInferencer struct {
	Registry *registry.Registry
}

func (TypeInferencer) Name() string { return "TypeInferencer" }

func (i TypeInferencer) Run(_ *ast.Schema, state State) (State, *ilerr.Errors) {
	order := MustLookup[EvaluationOrder](state, KeyEvaluationOrder)
	defs := MustLookup[Definitions](state, KeyDefinitions)
	t := typer{
		registry:  i.Registry,
		inputs:    MustLookup[InputMetadata](state, KeyInputMetadata),
		declTypes: make(DeclTypes, len(order)),
	}
	for _, name := range order {
		t.declTypes[name] = t.typeOf(defs[name].E)
	}
	return state.With(KeyDeclTypes, t.declTypes), nil
}

// typer computes the type of expressions, given the types of the
// declarations they may refer to
type typer struct {
	registry  *registry.Registry
	inputs    InputMetadata
	declTypes DeclTypes
}

func (t typer) typeOf(expr ast.Expr) types.Type {
	switch expr := expr.(type) {
	case nil:
		return types.Any
	case *ast.Literal:
		return literalType(expr.Value)
	case *ast.ListLit:
		elems := make([]types.Type, len(expr.Elems))
		for i, e := range expr.Elems {
			elems[i] = t.typeOf(e)
		}
		return types.Array{Elem: types.UnifyAll(elems...)}
	case *ast.DeclRef:
		if declType, ok := t.declTypes[expr.Name]; ok {
			return declType
		}
		return types.Any
	case *ast.InputRef:
		meta, exact, _ := t.inputs.Resolve(expr.Path)
		switch {
		case meta == nil:
			return types.Any
		case !exact:
			return types.Wrap(types.Any, len(meta.DimensionalScope))
		}
		return meta.ValueType()
	case *ast.Call:
		args := make([]types.Type, len(expr.Args))
		for i, arg := range expr.Args {
			args[i] = t.typeOf(arg)
		}
		return t.callType(expr.Fn, args)
	case *ast.Cascade:
		var branches []types.Type
		for _, c := range expr.Cases {
			branches = append(branches, t.typeOf(c.Result))
		}
		if expr.Default != nil {
			branches = append(branches, t.typeOf(expr.Default))
		}
		return types.UnifyAll(branches...)
	default:
		panic(ast.UnknownExpr(expr))
	}
}

// callType applies the return rule of fn to the element types of args.
// Reducers consume one array level and return a scalar, while other
// functions are applied element-wise and keep the nesting of their arguments.
func (t typer) callType(fn string, args []types.Type) types.Type {
	f, ok := t.registry.Lookup(fn)
	if !ok {
		return types.Any
	}
	elems := elementTypes(f, args)
	if f.Reducer {
		return f.ReturnType(elems)
	}
	rank := 0
	for i, arg := range args {
		r := types.Rank(arg)
		if f.Param(i) == types.ArrayConstraint && r > 0 {
			r--
		}
		rank = max(rank, r)
	}
	return types.Wrap(f.ReturnType(elems), rank)
}

// elementTypes returns the types the parameter constraints of f apply to.
// Parameters constrained to arrays take the innermost array whole.
func elementTypes(f *registry.Function, args []types.Type) []types.Type {
	elems := make([]types.Type, len(args))
	for i, arg := range args {
		switch {
		case f.Param(i) == types.ArrayConstraint:
			elems[i] = innermostArray(arg)
		case f.Reducer:
			elems[i] = types.Unwrap(arg)
		default:
			elems[i] = types.Elem(arg)
		}
	}
	return elems
}

func innermostArray(t types.Type) types.Type {
	if types.Rank(t) == 0 {
		return t
	}
	return types.Array{Elem: types.Elem(t)}
}

func literalType(v any) types.Type {
	switch v.(type) {
	case int64:
		return types.Integer
	case float64:
		return types.Float
	case string:
		return types.String
	case bool:
		return types.Boolean
	}
	return types.Any
}
