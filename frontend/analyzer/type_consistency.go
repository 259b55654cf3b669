package analyzer

import (
	"fmt"

	"github.com/cottand/tenet/frontend/ast"
	"github.com/cottand/tenet/frontend/ilerr"
	"github.com/cottand/tenet/frontend/types"
	"github.com/cottand/tenet/util"
)

// TypeConsistencyChecker rejects declared type names the type system does not know,
// whether or not inference needed them
type TypeConsistencyChecker struct{}

func (TypeConsistencyChecker) Name() string { return "TypeConsistencyChecker" }

func (TypeConsistencyChecker) Run(schema *ast.Schema, state State) (State, *ilerr.Errors) {
	inputs := MustLookup[InputMetadata](state, KeyInputMetadata)

	var errs *ilerr.Errors
	roots := util.MapSlice(schema.Inputs, func(f ast.InputField) string { return f.Name })
	inputs.Walk(roots, func(meta *InputMeta) {
		if !types.IsValid(meta.Type) {
			errs = errs.With(ilerr.New(ilerr.NewInvalidDeclaredType{
				Range:   meta.Pos,
				Subject: fmt.Sprintf("input field '%s'", meta.Dotted()),
				Name:    meta.TypeName,
			}))
		}
	})
	for _, decl := range schema.Declarations {
		if decl.TypeAnn != "" && !types.IsValid(types.Parse(decl.TypeAnn)) {
			errs = errs.With(ilerr.New(ilerr.NewInvalidDeclaredType{
				Range:   decl.Range,
				Subject: fmt.Sprintf("%s '%s'", decl.Kind, decl.Name),
				Name:    decl.TypeAnn,
			}))
		}
	}
	return state, errs
}
