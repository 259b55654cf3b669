// Package types is the closed world of types a schema can be checked against:
// a handful of scalars, hashes and (nested) arrays.
package types

import (
	"strings"
)

// Type is either a Basic, an Array or an Invalid type
type Type interface {
	TypeName() string
	isType()
}

// Basic is a non-container type, or hash
type Basic struct {
	Name string
}

func (Basic) isType()            {}
func (t Basic) TypeName() string { return t.Name }

// Array is a homogeneous list whose elements are of type Elem
type Array struct {
	Elem Type
}

func (Array) isType() {}
func (t Array) TypeName() string {
	if t.Elem == nil {
		return "array<any>"
	}
	return "array<" + t.Elem.TypeName() + ">"
}

// Invalid is the result of parsing a type name the type system does not recognise
type Invalid struct {
	Name string
}

func (Invalid) isType()            {}
func (t Invalid) TypeName() string { return t.Name }

var (
	Integer = Basic{Name: "integer"}
	Float   = Basic{Name: "float"}
	Decimal = Basic{Name: "decimal"}
	String  = Basic{Name: "string"}
	Boolean = Basic{Name: "boolean"}
	Symbol  = Basic{Name: "symbol"}
	Time    = Basic{Name: "time"}
	Date    = Basic{Name: "date"}
	Hash    = Basic{Name: "hash"}
	Any     = Basic{Name: "any"}
)

var basics = map[string]Basic{
	"integer": Integer,
	"float":   Float,
	"decimal": Decimal,
	"string":  String,
	"boolean": Boolean,
	"symbol":  Symbol,
	"time":    Time,
	"date":    Date,
	"hash":    Hash,
	"any":     Any,
}

// Parse turns a type name such as "integer" or "array<array<float>>" into a Type.
// Unrecognised names yield Invalid rather than an error, so that callers can keep
// going and report every bad name at once.
func Parse(name string) Type {
	name = strings.TrimSpace(name)
	if b, ok := basics[name]; ok {
		return b
	}
	if name == "array" {
		return Array{Elem: Any}
	}
	if inner, ok := strings.CutPrefix(name, "array<"); ok {
		inner, ok = strings.CutSuffix(inner, ">")
		if !ok {
			return Invalid{Name: name}
		}
		elem := Parse(inner)
		if _, invalid := elem.(Invalid); invalid {
			return Invalid{Name: name}
		}
		return Array{Elem: elem}
	}
	return Invalid{Name: name}
}

// IsValid reports whether t is made only of recognised types
func IsValid(t Type) bool {
	switch t := t.(type) {
	case Basic:
		return true
	case Array:
		return t.Elem == nil || IsValid(t.Elem)
	}
	return false
}

func Equal(a, b Type) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.TypeName() == b.TypeName()
}

func IsAny(t Type) bool {
	return t == nil || Equal(t, Any)
}

func IsNumeric(t Type) bool {
	return Equal(t, Integer) || Equal(t, Float) || Equal(t, Decimal)
}

// Rank is the number of array levels wrapping the element type of t
func Rank(t Type) int {
	if arr, ok := t.(Array); ok {
		return 1 + Rank(arr.Elem)
	}
	return 0
}

// Elem strips every array level off t
func Elem(t Type) Type {
	if arr, ok := t.(Array); ok {
		if arr.Elem == nil {
			return Any
		}
		return Elem(arr.Elem)
	}
	return t
}

// Unwrap strips a single array level off t. Non-array types are returned unchanged.
func Unwrap(t Type) Type {
	if arr, ok := t.(Array); ok {
		if arr.Elem == nil {
			return Any
		}
		return arr.Elem
	}
	return t
}

// Wrap nests t inside rank arrays
func Wrap(t Type, rank int) Type {
	for range rank {
		t = Array{Elem: t}
	}
	return t
}

// Promote returns the type of a numeric operation over a and b:
// float dominates decimal, which dominates integer
func Promote(a, b Type) (Type, bool) {
	if !IsNumeric(a) || !IsNumeric(b) {
		return nil, false
	}
	switch {
	case Equal(a, Float) || Equal(b, Float):
		return Float, true
	case Equal(a, Decimal) || Equal(b, Decimal):
		return Decimal, true
	default:
		return Integer, true
	}
}

// Unify finds the common type of a and b, falling back to Any when there is none
func Unify(a, b Type) Type {
	switch {
	case IsAny(a):
		if b == nil {
			return Any
		}
		return b
	case IsAny(b):
		return a
	case Equal(a, b):
		return a
	}
	if promoted, ok := Promote(a, b); ok {
		return promoted
	}
	arrA, okA := a.(Array)
	arrB, okB := b.(Array)
	if okA && okB {
		return Array{Elem: Unify(arrA.Elem, arrB.Elem)}
	}
	return Any
}

// UnifyAll folds Unify over ts. An empty ts yields Any, and so does
// any pair of types without a common type.
func UnifyAll(ts ...Type) Type {
	if len(ts) == 0 {
		return Any
	}
	result := ts[0]
	for _, t := range ts[1:] {
		next := Unify(result, t)
		if IsAny(next) && !(IsAny(result) && IsAny(t)) {
			return Any
		}
		result = next
	}
	if result == nil {
		return Any
	}
	return result
}

// Assignable reports whether a value of type actual may be used where expected is declared
func Assignable(expected, actual Type) bool {
	if IsAny(expected) || IsAny(actual) || Equal(expected, actual) {
		return true
	}
	if IsNumeric(expected) && Equal(actual, Integer) {
		return true
	}
	arrE, okE := expected.(Array)
	arrA, okA := actual.(Array)
	if okE && okA {
		return Assignable(arrE.Elem, arrA.Elem)
	}
	return false
}
