package ast

import "fmt"

// Inspect traverses expr depth-first, calling f for each node before its children.
// If f returns false, the children of that node are skipped.
func Inspect(expr Expr, f func(Expr) bool) {
	if expr == nil || !f(expr) {
		return
	}
	switch expr := expr.(type) {
	case *Literal, *DeclRef, *InputRef:
	case *ListLit:
		for _, elem := range expr.Elems {
			Inspect(elem, f)
		}
	case *Call:
		for _, arg := range expr.Args {
			Inspect(arg, f)
		}
	case *Cascade:
		for _, c := range expr.Cases {
			Inspect(c.Condition, f)
			Inspect(c.Result, f)
		}
		Inspect(expr.Default, f)
	default:
		panic(UnknownExpr(expr))
	}
}

// UnknownExpr is the panic value used when an Expr outside of this package's
// node set is encountered
func UnknownExpr(expr Expr) error {
	return fmt.Errorf("unknown expression node %T", expr)
}
