package analyzer

import (
	"slices"

	"github.com/cottand/tenet/frontend/ast"
	"github.com/cottand/tenet/frontend/ilerr"
	"github.com/cottand/tenet/frontend/registry"
	"github.com/cottand/tenet/frontend/shape"
	"github.com/cottand/tenet/frontend/types"
	"github.com/cottand/tenet/util"
)

// BroadcastDetector classifies every declaration as scalar, vectorized over
// an input array, or a reduction of one, and rejects operations combining
// values from unrelated arrays
type BroadcastDetector struct {
	Registry *registry.Registry
}

func (BroadcastDetector) Name() string { return "BroadcastDetector" }

func (d BroadcastDetector) Run(schema *ast.Schema, state State) (State, *ilerr.Errors) {
	order := MustLookup[EvaluationOrder](state, KeyEvaluationOrder)
	defs := MustLookup[Definitions](state, KeyDefinitions)
	inputs := MustLookup[InputMetadata](state, KeyInputMetadata)
	logger := logger.With("pass", "BroadcastDetector")

	var errs *ilerr.Errors
	b := broadcaster{
		registry: d.Registry,
		inputs:   inputs,
		classes:  make(map[string]Classification, len(order)),
	}
	result := Broadcasts{
		ArrayFields:     arrayFields(schema, inputs),
		Vectorized:      make(map[string]Classification),
		Reductions:      make(map[string]Classification),
		Classifications: b.classes,
	}
	for _, name := range order {
		decl := defs[name]
		class, declErrs := b.classify(decl.E, name)
		errs = errs.Merge(declErrs)
		b.classes[name] = class
		logger.Debug("classified", "decl", name, "kind", class.Kind, "dims", class.Dims)

		switch class.Kind {
		case Vectorized:
			result.Vectorized[name] = class
		case Reduction:
			result.Reductions[name] = class
		}
	}
	return state.With(KeyBroadcasts, result), errs
}

func arrayFields(schema *ast.Schema, inputs InputMetadata) []string {
	fields := util.NewOrderedSet[string]()
	roots := util.MapSlice(schema.Inputs, func(f ast.InputField) string { return f.Name })
	inputs.Walk(roots, func(meta *InputMeta) {
		if meta.IsArray() {
			fields.Insert(meta.Dotted())
		}
	})
	return fields.Slice()
}

type broadcaster struct {
	registry *registry.Registry
	inputs   InputMetadata
	// classes holds the declarations classified so far
	classes map[string]Classification
}

// operand is a classified sub-expression
type operand struct {
	expr  ast.Expr
	class Classification
}

func (b broadcaster) classify(expr ast.Expr, decl string) (Classification, *ilerr.Errors) {
	switch expr := expr.(type) {
	case nil, *ast.Literal:
		return Classification{}, nil
	case *ast.ListLit:
		ops, errs := b.classifyAll(expr.Elems, decl)
		class, combineErrs := combine(ops, "list", decl, expr.Range)
		return class, errs.Merge(combineErrs)
	case *ast.DeclRef:
		// unclassified references only occur through safe conditional cycles
		return b.classes[expr.Name], nil
	case *ast.InputRef:
		meta, _, _ := b.inputs.Resolve(expr.Path)
		if meta == nil || len(meta.DimensionalScope) == 0 {
			return Classification{}, nil
		}
		return Classification{
			Kind:   Vectorized,
			Source: meta.DimensionalScope[0],
			Dims:   slices.Clone(meta.DimensionalScope),
		}, nil
	case *ast.Call:
		ops, errs := b.classifyAll(expr.Args, decl)
		class, callErrs := b.classifyCall(expr, ops, decl)
		return class, errs.Merge(callErrs)
	case *ast.Cascade:
		var parts []ast.Expr
		for _, c := range expr.Cases {
			parts = append(parts, c.Condition, c.Result)
		}
		if expr.Default != nil {
			parts = append(parts, expr.Default)
		}
		ops, errs := b.classifyAll(parts, decl)
		class, combineErrs := combine(ops, "cascade", decl, expr.Range)
		return class, errs.Merge(combineErrs)
	default:
		panic(ast.UnknownExpr(expr))
	}
}

func (b broadcaster) classifyAll(exprs []ast.Expr, decl string) ([]operand, *ilerr.Errors) {
	var errs *ilerr.Errors
	ops := make([]operand, len(exprs))
	for i, e := range exprs {
		class, classErrs := b.classify(e, decl)
		errs = errs.Merge(classErrs)
		ops[i] = operand{expr: e, class: class}
	}
	return ops, errs
}

func (b broadcaster) classifyCall(call *ast.Call, ops []operand, decl string) (Classification, *ilerr.Errors) {
	vectors := slices.DeleteFunc(slices.Clone(ops), func(o operand) bool { return !o.class.vector() })
	if len(vectors) == 0 {
		return Classification{}, nil
	}
	fn, known := b.registry.Lookup(call.Fn)
	if !known {
		// reported by the TypeChecker
		return combine(ops, call.Fn, decl, call.Range)
	}
	if len(vectors) == 1 {
		i := slices.IndexFunc(ops, func(o operand) bool { return o.class.vector() })
		if consumesArray(fn, i) {
			return reduce(vectors[0].class, fn.Name), nil
		}
	}
	if len(fn.ParsedSignatures()) > 0 {
		return resolveSignature(fn, call, ops, vectors[0].class, decl)
	}
	return combine(ops, fn.Name, decl, call.Range)
}

// consumesArray reports whether fn takes the whole array passed as argument i,
// rather than being applied to each of its elements
func consumesArray(fn *registry.Function, i int) bool {
	return fn.Reducer || fn.Param(i) == types.ArrayConstraint
}

// reduce classifies a call consuming the innermost array level of class.
// Over nested arrays, the result stays vectorized over the outer levels.
func reduce(class Classification, fn string) Classification {
	if len(class.Dims) > 1 {
		return Classification{
			Kind:     Vectorized,
			Source:   class.Source,
			Dims:     slices.Clone(class.Dims[:len(class.Dims)-1]),
			Function: fn,
		}
	}
	return Classification{
		Kind:     Reduction,
		Source:   class.Source,
		Dims:     class.Dims,
		Function: fn,
	}
}

// resolveSignature picks the signature of fn fitting the shapes of ops
func resolveSignature(fn *registry.Function, call *ast.Call, ops []operand, anchor Classification, decl string) (Classification, *ilerr.Errors) {
	shapes := make([]shape.Shape, len(ops))
	for i, o := range ops {
		if o.class.vector() {
			shapes[i] = shape.Of(o.class.Dims...)
		} else {
			shapes[i] = shape.Shape{}
		}
	}
	plan, err := shape.Resolve(fn.ParsedSignatures(), shapes)
	switch err := err.(type) {
	case nil:
	case *shape.AmbiguousError:
		return anchor, single(ilerr.New(ilerr.NewAmbiguousOverload{
			Range:      call.Range,
			Decl:       decl,
			Fn:         fn.Name,
			Signatures: util.MapSlice(err.Plans, func(p shape.Plan) string { return p.Signature.String() }),
		}))
	default:
		return anchor, single(ilerr.New(ilerr.NewSignatureMismatch{
			Range:      call.Range,
			Decl:       decl,
			Fn:         fn.Name,
			Shapes:     util.MapSlice(shapes, shape.Shape.String),
			Signatures: util.MapSlice(fn.ParsedSignatures(), shape.Signature.String),
		}))
	}

	if plan.Result.Scalar() {
		return reduce(anchor, fn.Name), nil
	}
	return Classification{
		Kind:   Vectorized,
		Source: anchor.Source,
		Dims:   plan.Result.Axes(),
	}, nil
}

// combine merges the lineages of the vectorized operands in ops: they must all lie
// along the same array path, and the result iterates over the deepest one
func combine(ops []operand, fn, decl string, r ast.Range) (Classification, *ilerr.Errors) {
	var acc Classification
	compatible := true
	for _, o := range ops {
		if !o.class.vector() {
			continue
		}
		switch {
		case !acc.vector():
			acc = o.class
		case util.IsPrefix(acc.Dims, o.class.Dims):
			acc = o.class
		case util.IsPrefix(o.class.Dims, acc.Dims):
		default:
			compatible = false
		}
	}
	if compatible {
		return Classification{Kind: acc.Kind, Source: acc.Source, Dims: acc.Dims}, nil
	}

	var operands []ilerr.Operand
	for _, o := range ops {
		if o.class.vector() {
			operands = append(operands, ilerr.Operand{
				Expr:   ast.ExprString(o.expr),
				Source: o.class.Source,
				Dims:   o.class.Dims,
			})
		}
	}
	return acc, single(ilerr.New(ilerr.NewDimensionMismatch{
		Range:    r,
		Decl:     decl,
		Fn:       fn,
		Operands: operands,
	}))
}

func single(err ilerr.IleError) *ilerr.Errors {
	var errs *ilerr.Errors
	return errs.With(err)
}
