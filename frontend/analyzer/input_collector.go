package analyzer

import (
	"fmt"
	"slices"
	"strings"

	"github.com/cottand/tenet/frontend/ast"
	"github.com/cottand/tenet/frontend/ilerr"
	"github.com/cottand/tenet/frontend/types"
)

// InputCollector builds the metadata of every input field,
// including the dimensional scope of fields nested in arrays
type InputCollector struct{}

func (InputCollector) Name() string { return "InputCollector" }

func (InputCollector) Run(schema *ast.Schema, state State) (State, *ilerr.Errors) {
	meta, _, errs := collectFields(schema.Inputs, nil, nil)
	return state.With(KeyInputMetadata, InputMetadata(meta)), errs
}

// collectFields returns the metadata of fields, keyed by name, and their order
func collectFields(fields []ast.InputField, parentPath, parentScope []string) (map[string]*InputMeta, []string, *ilerr.Errors) {
	var errs *ilerr.Errors
	byName := make(map[string]*InputMeta, len(fields))
	order := make([]string, 0, len(fields))
	for _, field := range fields {
		path := append(slices.Clone(parentPath), field.Name)
		dotted := strings.Join(path, ".")
		if field.Name == "" {
			errs = errs.With(ilerr.New(ilerr.NewInvalidInputField{
				Range:  field.Range,
				Path:   dotted,
				Reason: "field has no name",
			}))
			continue
		}
		if _, exists := byName[field.Name]; exists {
			errs = errs.With(ilerr.New(ilerr.NewDuplicateInputField{Range: field.Range, Path: dotted}))
			continue
		}

		meta, fieldErrs := collectField(field, path, parentScope)
		errs = errs.Merge(fieldErrs)
		byName[field.Name] = meta
		order = append(order, field.Name)
	}
	return byName, order, errs
}

func collectField(field ast.InputField, path, parentScope []string) (*InputMeta, *ilerr.Errors) {
	var errs *ilerr.Errors
	typeName := field.Type
	if typeName == "" {
		typeName = types.Any.TypeName()
	}
	meta := &InputMeta{
		Name:             field.Name,
		Path:             path,
		TypeName:         typeName,
		Type:             types.Parse(typeName),
		Domain:           field.Domain,
		DimensionalScope: parentScope,
		Pos:              field.Range,
	}
	if meta.IsArray() {
		meta.DimensionalScope = append(slices.Clone(parentScope), field.Name)
	}

	if len(field.Children) > 0 && types.IsValid(meta.Type) {
		elem := types.Elem(meta.Type)
		if !types.IsAny(elem) && !types.Equal(elem, types.Hash) {
			errs = errs.With(ilerr.New(ilerr.NewInvalidInputField{
				Range:  field.Range,
				Path:   meta.Dotted(),
				Reason: fmt.Sprintf("type %s cannot declare nested fields", typeName),
			}))
		}
	}
	if d := field.Domain; d != nil {
		if d.Min != nil && d.Max != nil && *d.Min > *d.Max {
			errs = errs.With(ilerr.New(ilerr.NewInvalidInputField{
				Range:  field.Range,
				Path:   meta.Dotted(),
				Reason: fmt.Sprintf("domain minimum %v is greater than its maximum %v", *d.Min, *d.Max),
			}))
		}
		if len(d.Enum) > 0 && (d.Min != nil || d.Max != nil) {
			errs = errs.With(ilerr.New(ilerr.NewInvalidInputField{
				Range:  field.Range,
				Path:   meta.Dotted(),
				Reason: "domain declares both a range and an enumeration",
			}))
		}
	}

	children, order, childErrs := collectFields(field.Children, path, meta.DimensionalScope)
	meta.Children = children
	meta.ChildOrder = order
	return meta, errs.Merge(childErrs)
}
