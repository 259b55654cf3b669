package ast

import (
	"encoding/binary"
	"fmt"
	"hash/fnv"
	"strings"
)

// Expr is implemented by exactly the expression nodes in this file.
// Code switching over an Expr is expected to handle all of them.
type Expr interface {
	Node
	exprNode()
}

var (
	_ Expr = (*Literal)(nil)
	_ Expr = (*ListLit)(nil)
	_ Expr = (*DeclRef)(nil)
	_ Expr = (*InputRef)(nil)
	_ Expr = (*Call)(nil)
	_ Expr = (*Cascade)(nil)
)

// Literal is a constant. Value is one of int64, float64, string, bool or nil.
type Literal struct {
	Range
	Value any
}

func (e *Literal) exprNode() {}

// Hash returns a hash value for the Literal, based on its structural characteristics
func (e *Literal) Hash() uint64 {
	h := fnv.New64a()
	arr := []byte("Literal")
	_, _ = h.Write([]byte(fmt.Sprintf("%T:%v", e.Value, e.Value)))
	arr = binary.LittleEndian.AppendUint64(arr, e.Range.Hash())
	_, _ = h.Write(arr)
	return h.Sum64()
}

// ListLit is a list of expressions, eg: [1, 2, x]
type ListLit struct {
	Range
	Elems []Expr
}

func (e *ListLit) exprNode() {}

// Hash returns a hash value for the ListLit, based on its structural characteristics
func (e *ListLit) Hash() uint64 {
	h := fnv.New64a()
	arr := []byte("ListLit")
	arr = binary.LittleEndian.AppendUint64(arr, e.Range.Hash())
	for _, elem := range e.Elems {
		if elem != nil {
			arr = binary.LittleEndian.AppendUint64(arr, elem.Hash())
		}
	}
	_, _ = h.Write(arr)
	return h.Sum64()
}

// DeclRef refers to another value or trait declaration by name
type DeclRef struct {
	Range
	Name string
}

func (e *DeclRef) exprNode() {}

// Hash returns a hash value for the DeclRef, based on its structural characteristics
func (e *DeclRef) Hash() uint64 {
	h := fnv.New64a()
	arr := []byte("DeclRef")
	_, _ = h.Write([]byte(e.Name))
	arr = binary.LittleEndian.AppendUint64(arr, e.Range.Hash())
	_, _ = h.Write(arr)
	return h.Sum64()
}

// InputRef refers to an input field. Path has more than one element when
// the field is nested inside arrays or hashes, eg: ["items", "price"]
type InputRef struct {
	Range
	Path []string
}

func (e *InputRef) exprNode() {}

// Name is the dotted path of the referenced field
func (e *InputRef) Name() string {
	return strings.Join(e.Path, ".")
}

// Root is the top-level input field the reference starts at
func (e *InputRef) Root() string {
	if len(e.Path) == 0 {
		return ""
	}
	return e.Path[0]
}

// Hash returns a hash value for the InputRef, based on its structural characteristics
func (e *InputRef) Hash() uint64 {
	h := fnv.New64a()
	arr := []byte("InputRef")
	_, _ = h.Write([]byte(e.Name()))
	arr = binary.LittleEndian.AppendUint64(arr, e.Range.Hash())
	_, _ = h.Write(arr)
	return h.Sum64()
}

// Call applies a registered function to Args. Operators are calls too:
// 'a + b' is Call{Fn: "add", ...}
type Call struct {
	Range
	Fn   string
	Args []Expr
}

func (e *Call) exprNode() {}

// Hash returns a hash value for the Call, based on its structural characteristics
func (e *Call) Hash() uint64 {
	h := fnv.New64a()
	arr := []byte("Call")
	_, _ = h.Write([]byte(e.Fn))
	arr = binary.LittleEndian.AppendUint64(arr, e.Range.Hash())
	for _, arg := range e.Args {
		if arg != nil {
			arr = binary.LittleEndian.AppendUint64(arr, arg.Hash())
		}
	}
	_, _ = h.Write(arr)
	return h.Sum64()
}

// CascadeCase is a single condition -> result branch of a Cascade
type CascadeCase struct {
	Range
	Condition Expr
	Result    Expr
}

// Cascade is a multi-branch conditional: the Result of the first case whose
// Condition holds, or Default if none does. Default may be nil.
type Cascade struct {
	Range
	Cases   []CascadeCase
	Default Expr
}

func (e *Cascade) exprNode() {}

// Hash returns a hash value for the Cascade, based on its structural characteristics
func (e *Cascade) Hash() uint64 {
	h := fnv.New64a()
	arr := []byte("Cascade")
	arr = binary.LittleEndian.AppendUint64(arr, e.Range.Hash())
	for _, c := range e.Cases {
		arr = binary.LittleEndian.AppendUint64(arr, c.Range.Hash())
		if c.Condition != nil {
			arr = binary.LittleEndian.AppendUint64(arr, c.Condition.Hash())
		}
		if c.Result != nil {
			arr = binary.LittleEndian.AppendUint64(arr, c.Result.Hash())
		}
	}
	if e.Default != nil {
		arr = binary.LittleEndian.AppendUint64(arr, e.Default.Hash())
	}
	_, _ = h.Write(arr)
	return h.Sum64()
}

// Lit builds a Literal, normalising Go numeric types to int64 and float64
func Lit(v any) *Literal {
	switch v := v.(type) {
	case int:
		return &Literal{Value: int64(v)}
	case int32:
		return &Literal{Value: int64(v)}
	case float32:
		return &Literal{Value: float64(v)}
	}
	return &Literal{Value: v}
}

func List(elems ...Expr) *ListLit { return &ListLit{Elems: elems} }

func Ref(name string) *DeclRef { return &DeclRef{Name: name} }

func Input(path ...string) *InputRef { return &InputRef{Path: path} }

func CallOf(fn string, args ...Expr) *Call { return &Call{Fn: fn, Args: args} }

func When(condition, result Expr) CascadeCase {
	return CascadeCase{Condition: condition, Result: result}
}

func NewCascade(defaultExpr Expr, cases ...CascadeCase) *Cascade {
	return &Cascade{Cases: cases, Default: defaultExpr}
}
