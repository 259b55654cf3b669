package analyzer

import (
	"github.com/cottand/tenet/frontend/ast"
	"github.com/cottand/tenet/frontend/ilerr"
)

// NameIndexer builds the declaration table
type NameIndexer struct{}

func (NameIndexer) Name() string { return "NameIndexer" }

func (NameIndexer) Run(schema *ast.Schema, state State) (State, *ilerr.Errors) {
	var errs *ilerr.Errors
	defs := make(Definitions, len(schema.Declarations))
	for i := range schema.Declarations {
		decl := &schema.Declarations[i]
		switch {
		case decl.Name == "":
			errs = errs.With(ilerr.New(ilerr.NewMalformedDeclaration{
				Range:  decl.Range,
				Reason: decl.Kind.String() + " has no name",
			}))
			continue
		case decl.E == nil:
			errs = errs.With(ilerr.New(ilerr.NewMalformedDeclaration{
				Range:  decl.Range,
				Name:   decl.Name,
				Reason: decl.Kind.String() + " has no expression",
			}))
		}
		if _, exists := defs[decl.Name]; exists {
			errs = errs.With(ilerr.New(ilerr.NewDuplicateDeclaration{
				Range: decl.Range,
				Name:  decl.Name,
			}))
			continue
		}
		defs[decl.Name] = decl
	}
	return state.With(KeyDefinitions, defs), errs
}
