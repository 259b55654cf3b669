package analyzer

import (
	"strings"

	"github.com/cottand/tenet/frontend/ast"
	"github.com/cottand/tenet/frontend/types"
)

// Definitions maps declaration names to their declaration
type Definitions map[string]*ast.Declaration

// InputMeta describes one declared input field
type InputMeta struct {
	Name string
	// Path is the full path from the root field, Name included
	Path     []string
	TypeName string
	Type     types.Type
	Domain   *ast.Domain
	Children map[string]*InputMeta
	// ChildOrder lists Children in declaration order
	ChildOrder []string
	// DimensionalScope lists the enclosing arrays from the root, this field included if it is one
	DimensionalScope []string
	Pos              ast.Range
}

func (m *InputMeta) Dotted() string {
	return strings.Join(m.Path, ".")
}

func (m *InputMeta) IsArray() bool {
	_, ok := m.Type.(types.Array)
	return ok
}

// open fields accept paths into them that were not declared as children
func (m *InputMeta) open() bool {
	if len(m.Children) > 0 {
		return false
	}
	elem := types.Elem(m.Type)
	return types.IsAny(elem) || types.Equal(elem, types.Hash)
}

// ValueType is the type of a reference to m: its declared type,
// wrapped once for every enclosing array
func (m *InputMeta) ValueType() types.Type {
	t := m.Type
	if !types.IsValid(t) {
		t = types.Any
	}
	enclosing := len(m.DimensionalScope)
	if m.IsArray() {
		enclosing--
	}
	return types.Wrap(t, enclosing)
}

// InputMetadata holds the root input fields by name
type InputMetadata map[string]*InputMeta

// Resolve finds the field at path. exact is false when path continues past a
// field declared without children whose elements may be anything: field is then
// the deepest declared field on the path. missing names the first segment
// that could not be resolved, in which case field is nil.
func (m InputMetadata) Resolve(path []string) (field *InputMeta, exact bool, missing string) {
	if len(path) == 0 {
		return nil, false, ""
	}
	field, ok := m[path[0]]
	if !ok {
		return nil, false, path[0]
	}
	for i, segment := range path[1:] {
		child, ok := field.Children[segment]
		if !ok {
			if field.open() {
				return field, false, ""
			}
			return nil, false, strings.Join(path[:i+2], ".")
		}
		field = child
	}
	return field, true, ""
}

// Walk calls f for every field, parents before children, in declaration order
func (m InputMetadata) Walk(order []string, f func(*InputMeta)) {
	var walk func(*InputMeta)
	walk = func(meta *InputMeta) {
		f(meta)
		for _, name := range meta.ChildOrder {
			walk(meta.Children[name])
		}
	}
	for _, name := range order {
		if meta, ok := m[name]; ok {
			walk(meta)
		}
	}
}

type EdgeKind int

const (
	// EdgeRef points to another declaration
	EdgeRef EdgeKind = iota
	// EdgeKey points to an input field
	EdgeKey
)

func (k EdgeKind) String() string {
	if k == EdgeKey {
		return "field-key"
	}
	return "reference"
}

// Edge is a dependency of declaration From on To, which is either a
// declaration name or the dotted path of an input field
type Edge struct {
	From string
	To   string
	Kind EdgeKind
	// Via is the name of the nearest call enclosing the reference, if any
	Via string
	// Conditional edges are only followed when the cascade branch they sit in
	// is taken. Edges in a cascade default are not conditional.
	Conditional  bool
	CascadeOwner string
	// Guards are the branch conditions that all hold whenever the edge is followed
	Guards []ast.Expr
	Range  ast.Range
}

// DependencyGraph maps each declaration to its edges, in expression order
type DependencyGraph map[string][]Edge

type LeafKind int

const (
	LeafLiteral LeafKind = iota
	LeafInput
)

// Leaf is a literal value or an input field an expression bottoms out in
type Leaf struct {
	Kind LeafKind
	Text string
}

// LeafMap maps each declaration to its leaves, sorted and without duplicates
type LeafMap map[string][]Leaf

// TransitiveDependents maps each declaration to every declaration depending on it, sorted
type TransitiveDependents map[string][]string

// CascadeInfo describes the cascade at the root of a declaration
type CascadeInfo struct {
	Branches int
	// MutuallyExclusive is true when no two branch conditions can hold together
	MutuallyExclusive bool
}

type Cascades map[string]CascadeInfo

// EvaluationOrder lists declarations so that dependencies come first
type EvaluationOrder []string

func (o EvaluationOrder) Index(name string) int {
	for i, n := range o {
		if n == name {
			return i
		}
	}
	return -1
}

type ClassKind int

const (
	Scalar ClassKind = iota
	Vectorized
	Reduction
)

func (k ClassKind) String() string {
	switch k {
	case Vectorized:
		return "vectorized"
	case Reduction:
		return "reduction"
	}
	return "scalar"
}

// Classification tells how an expression relates to the input arrays
type Classification struct {
	Kind ClassKind
	// Source is the root array the values are anchored to (empty for Scalar)
	Source string
	// Dims is the array path the values iterate over, root first
	Dims []string
	// Function is the reducing function, for Reduction and for Vectorized
	// values reducing the innermost level of a nested array
	Function string
}

func (c Classification) vector() bool {
	return c.Kind == Vectorized
}

// Broadcasts is the outcome of broadcast detection for the whole schema
type Broadcasts struct {
	// ArrayFields lists the dotted paths of every array input field, sorted
	ArrayFields     []string
	Vectorized      map[string]Classification
	Reductions      map[string]Classification
	Classifications map[string]Classification
}

// ExecutionContext is the iteration a declaration needs when lowered
type ExecutionContext struct {
	Dims  []string
	Depth int
}

type ExecutionContexts map[string]ExecutionContext

// DeclTypes maps each declaration to its inferred type
type DeclTypes map[string]types.Type
