// Package unsat decides whether a conjunction of simple comparisons can never hold.
//
// Atoms are plain data. The solver keeps no state between calls.
package unsat

import (
	"fmt"
	"strings"

	"github.com/cottand/tenet/frontend/ast"
)

// Op is a comparison operator
type Op string

const (
	OpEq  Op = "=="
	OpNeq Op = "!="
	OpLt  Op = "<"
	OpLte Op = "<="
	OpGt  Op = ">"
	OpGte Op = ">="
	// OpIn restricts a term to one of the values of a literal list (Right.Value is []any)
	OpIn Op = "in"
)

// ParseOp maps a comparator function name or alias to an Op
func ParseOp(fn string) (Op, bool) {
	switch fn {
	case "eq", "==":
		return OpEq, true
	case "neq", "!=":
		return OpNeq, true
	case "lt", "<":
		return OpLt, true
	case "lte", "<=":
		return OpLte, true
	case "gt", ">":
		return OpGt, true
	case "gte", ">=":
		return OpGte, true
	}
	return "", false
}

// Flip returns the operator that holds when the operands are swapped
func (o Op) Flip() Op {
	switch o {
	case OpLt:
		return OpGt
	case OpLte:
		return OpGte
	case OpGt:
		return OpLt
	case OpGte:
		return OpLte
	}
	return o
}

type TermKind int

const (
	TermUnknown TermKind = iota
	TermLiteral
	TermField
	TermDecl
)

// Term is one side of an Atom: a constant, an input field (by dotted path),
// a declaration whose value is not known statically, or something unknown
type Term struct {
	Kind  TermKind
	Name  string
	Value any
}

func Literal(v any) Term     { return Term{Kind: TermLiteral, Value: v} }
func Field(path string) Term { return Term{Kind: TermField, Name: path} }
func Decl(name string) Term  { return Term{Kind: TermDecl, Name: name} }
func Unknown() Term          { return Term{Kind: TermUnknown} }

// IsVariable reports whether t stands for a value the solver can reason about
func (t Term) IsVariable() bool {
	return t.Kind == TermField || t.Kind == TermDecl
}

func (t Term) key() string {
	return fmt.Sprint(t.Kind, ":", t.Name)
}

func (t Term) String() string {
	switch t.Kind {
	case TermLiteral:
		if values, ok := t.Value.([]any); ok {
			shown := make([]string, len(values))
			for i, v := range values {
				shown[i] = ast.LiteralString(v)
			}
			return "[" + strings.Join(shown, ", ") + "]"
		}
		return ast.LiteralString(t.Value)
	case TermField:
		return "input." + t.Name
	case TermDecl:
		return t.Name
	}
	return ":unknown"
}

// Atom is a single comparison fact
type Atom struct {
	Op    Op
	Left  Term
	Right Term
}

func (a Atom) String() string {
	return fmt.Sprintf("%s %s %s", a.Left, a.Op, a.Right)
}

// normalise puts the variable on the left, when there is one
func (a Atom) normalise() Atom {
	if !a.Left.IsVariable() && a.Right.IsVariable() {
		return Atom{Op: a.Op.Flip(), Left: a.Right, Right: a.Left}
	}
	return a
}
