package analyzer

import (
	"fmt"

	"github.com/cottand/tenet/frontend/ast"
	"github.com/cottand/tenet/frontend/ilerr"
	"github.com/cottand/tenet/frontend/registry"
	"github.com/cottand/tenet/frontend/types"
)

// TypeChecker validates every call against the function registry, and the
// inferred type of every declaration against what it declares
type TypeChecker struct {
	Registry *registry.Registry
}

func (TypeChecker) Name() string { return "TypeChecker" }

func (c TypeChecker) Run(schema *ast.Schema, state State) (State, *ilerr.Errors) {
	defs := MustLookup[Definitions](state, KeyDefinitions)
	t := typer{
		registry:  c.Registry,
		inputs:    MustLookup[InputMetadata](state, KeyInputMetadata),
		declTypes: MustLookup[DeclTypes](state, KeyDeclTypes),
	}

	var errs *ilerr.Errors
	for i := range schema.Declarations {
		decl := &schema.Declarations[i]
		if defs[decl.Name] != decl {
			continue
		}
		errs = errs.Merge(t.check(decl.E, decl.Name))
		errs = errs.Merge(t.checkDeclared(decl))
	}
	return state, errs
}

func (t typer) check(expr ast.Expr, decl string) *ilerr.Errors {
	var errs *ilerr.Errors
	ast.Inspect(expr, func(e ast.Expr) bool {
		switch e := e.(type) {
		case *ast.Call:
			errs = errs.Merge(t.checkCall(e, decl))
		case *ast.Cascade:
			for i, c := range e.Cases {
				condType := t.typeOf(c.Condition)
				if types.BooleanConstraint.Satisfied(types.Elem(condType)) {
					continue
				}
				errs = errs.With(ilerr.New(ilerr.NewArgumentType{
					Range:    ast.RangeOf(c.Condition),
					Fn:       "cascade",
					Index:    i + 1,
					Expected: string(types.BooleanConstraint),
					Actual:   condType.TypeName(),
					Origin:   origin(c.Condition),
				}))
			}
		}
		return true
	})
	return errs
}

func (t typer) checkCall(call *ast.Call, decl string) *ilerr.Errors {
	var errs *ilerr.Errors
	fn, ok := t.registry.Lookup(call.Fn)
	if !ok {
		return errs.With(ilerr.New(ilerr.NewUnknownFunction{Range: call.Range, Name: call.Fn, Decl: decl}))
	}
	if !fn.AcceptsArity(len(call.Args)) {
		return errs.With(ilerr.New(ilerr.NewArityMismatch{
			Range:    call.Range,
			Fn:       call.Fn,
			Expected: fn.ArityString(),
			Got:      len(call.Args),
		}))
	}

	args := make([]types.Type, len(call.Args))
	for i, arg := range call.Args {
		args[i] = t.typeOf(arg)
	}
	for i, elem := range elementTypes(fn, args) {
		constraint := fn.Param(i)
		if constraint != types.ArrayConstraint {
			// reducers over nested arrays reduce the innermost level
			elem = types.Elem(elem)
		}
		if constraint.Satisfied(elem) {
			continue
		}
		errs = errs.With(ilerr.New(ilerr.NewArgumentType{
			Range:    ast.RangeOf(call.Args[i]),
			Fn:       call.Fn,
			Index:    i + 1,
			Expected: string(constraint),
			Actual:   elem.TypeName(),
			Origin:   origin(call.Args[i]),
		}))
	}
	return errs
}

// checkDeclared compares the inferred type of decl with the one it declares.
// For vectorized declarations, the declared type may be that of the elements.
func (t typer) checkDeclared(decl *ast.Declaration) *ilerr.Errors {
	var errs *ilerr.Errors
	inferred, ok := t.declTypes[decl.Name]
	if !ok {
		return nil
	}
	if decl.IsTrait() && !types.BooleanConstraint.Satisfied(types.Elem(inferred)) {
		errs = errs.With(ilerr.New(ilerr.NewDeclaredTypeMismatch{
			Range:    decl.Range,
			Decl:     decl.Name,
			Declared: types.Boolean.TypeName(),
			Inferred: inferred.TypeName(),
		}))
	}
	if decl.TypeAnn == "" {
		return errs
	}
	declared := types.Parse(decl.TypeAnn)
	if !types.IsValid(declared) {
		// reported by the TypeConsistencyChecker
		return errs
	}
	if !types.Assignable(declared, inferred) && !types.Assignable(declared, types.Elem(inferred)) {
		errs = errs.With(ilerr.New(ilerr.NewDeclaredTypeMismatch{
			Range:    decl.Range,
			Decl:     decl.Name,
			Declared: declared.TypeName(),
			Inferred: inferred.TypeName(),
		}))
	}
	return errs
}

// origin describes where an argument comes from, for diagnostics
func origin(expr ast.Expr) string {
	switch expr := expr.(type) {
	case *ast.Literal:
		return "literal " + ast.LiteralString(expr.Value)
	case *ast.InputRef:
		return fmt.Sprintf("input field '%s'", expr.Name())
	case *ast.DeclRef:
		return fmt.Sprintf("declaration '%s'", expr.Name)
	}
	return fmt.Sprintf("expression '%s'", ast.ExprString(expr))
}
