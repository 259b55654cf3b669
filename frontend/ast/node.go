package ast

import (
	"encoding/binary"
	"hash/fnv"
)

// Node is the base interface for all AST nodes.
type Node interface {
	Positioner
	Hash() uint64
}

var _ Node = (*Schema)(nil)
var _ Node = (*Declaration)(nil)
var _ Node = (*InputField)(nil)

// Schema is the syntax tree of a whole rule definition, as handed over by a front end.
// The analyzer never modifies it.
type Schema struct {
	Range
	Inputs       []InputField
	Declarations []Declaration
}

// Hash returns a hash value for the Schema, based on its structural characteristics
func (s *Schema) Hash() uint64 {
	h := fnv.New64a()
	arr := []byte("Schema")
	arr = binary.LittleEndian.AppendUint64(arr, s.Range.Hash())
	for _, in := range s.Inputs {
		arr = binary.LittleEndian.AppendUint64(arr, (&in).Hash())
	}
	for _, decl := range s.Declarations {
		arr = binary.LittleEndian.AppendUint64(arr, (&decl).Hash())
	}
	_, _ = h.Write(arr)
	return h.Sum64()
}

type DeclKind int

const (
	KindValue DeclKind = iota
	KindTrait
)

func (k DeclKind) String() string {
	switch k {
	case KindValue:
		return "value"
	case KindTrait:
		return "trait"
	}
	return "unknown"
}

// Declaration is a named value or trait, owning exactly one expression
type Declaration struct {
	Range
	Kind DeclKind
	Name string
	E    Expr
	// TypeAnn is the optional declared type of the result, as a type name
	// (eg: "integer" or "array<float>"). Traits are always boolean.
	TypeAnn string
}

func (d *Declaration) IsTrait() bool { return d.Kind == KindTrait }

// Hash returns a hash value for the Declaration, based on its structural characteristics
func (d *Declaration) Hash() uint64 {
	h := fnv.New64a()
	arr := []byte("Declaration")
	_, _ = h.Write([]byte(d.Name))
	_, _ = h.Write([]byte(d.Kind.String()))
	_, _ = h.Write([]byte(d.TypeAnn))
	arr = binary.LittleEndian.AppendUint64(arr, d.Range.Hash())
	if d.E != nil {
		arr = binary.LittleEndian.AppendUint64(arr, d.E.Hash())
	}
	_, _ = h.Write(arr)
	return h.Sum64()
}

// InputField declares a field of the input data. Fields of array or hash type
// may declare Children, which describe each element (arrays) or the entries (hashes).
type InputField struct {
	Range
	Name     string
	Type     string
	Domain   *Domain
	Children []InputField
}

// Hash returns a hash value for the InputField, based on its structural characteristics
func (f *InputField) Hash() uint64 {
	h := fnv.New64a()
	arr := []byte("InputField")
	_, _ = h.Write([]byte(f.Name))
	_, _ = h.Write([]byte(f.Type))
	arr = binary.LittleEndian.AppendUint64(arr, f.Range.Hash())
	for _, child := range f.Children {
		arr = binary.LittleEndian.AppendUint64(arr, (&child).Hash())
	}
	_, _ = h.Write(arr)
	return h.Sum64()
}

// Domain constrains the values an input field may take.
// Either a range (Min and/or Max) or an Enum may be set.
type Domain struct {
	Min          *float64
	Max          *float64
	ExclusiveMax bool
	Enum         []any
}
