// Package constfold evaluates expressions that only involve literals.
//
// Folding never fails loudly: anything that cannot be folded (runtime inputs,
// division by zero, mismatched operand types...) is simply reported as not constant.
package constfold

import (
	"math"

	"github.com/cottand/tenet/frontend/ast"
	"github.com/google/go-cmp/cmp"
)

// Lookup resolves a declaration name to its expression
type Lookup func(name string) (ast.Expr, bool)

// Fold evaluates expr to an int64, float64, string or bool, if it is constant.
// lookup may be nil, in which case declaration references are never constant.
func Fold(expr ast.Expr, lookup Lookup) (any, bool) {
	f := folder{lookup: lookup, visiting: make(map[string]bool)}
	return f.fold(expr)
}

// Simplify returns expr with every constant call replaced by a Literal.
// Simplify(Simplify(e)) is structurally equal to Simplify(e).
func Simplify(expr ast.Expr, lookup Lookup) ast.Expr {
	f := folder{lookup: lookup, visiting: make(map[string]bool)}
	return f.simplify(expr)
}

type folder struct {
	lookup   Lookup
	visiting map[string]bool
}

func (f folder) simplify(expr ast.Expr) ast.Expr {
	if expr == nil {
		return nil
	}
	if _, isLit := expr.(*ast.Literal); !isLit {
		if _, isRef := expr.(*ast.DeclRef); !isRef {
			if v, ok := f.fold(expr); ok {
				return &ast.Literal{Range: ast.RangeOf(expr), Value: v}
			}
		}
	}
	switch expr := expr.(type) {
	case *ast.Literal, *ast.DeclRef, *ast.InputRef:
		return expr
	case *ast.ListLit:
		elems := make([]ast.Expr, len(expr.Elems))
		for i, elem := range expr.Elems {
			elems[i] = f.simplify(elem)
		}
		return &ast.ListLit{Range: expr.Range, Elems: elems}
	case *ast.Call:
		args := make([]ast.Expr, len(expr.Args))
		for i, arg := range expr.Args {
			args[i] = f.simplify(arg)
		}
		return &ast.Call{Range: expr.Range, Fn: expr.Fn, Args: args}
	case *ast.Cascade:
		cases := make([]ast.CascadeCase, len(expr.Cases))
		for i, c := range expr.Cases {
			cases[i] = ast.CascadeCase{Range: c.Range, Condition: f.simplify(c.Condition), Result: f.simplify(c.Result)}
		}
		return &ast.Cascade{Range: expr.Range, Cases: cases, Default: f.simplify(expr.Default)}
	default:
		panic(ast.UnknownExpr(expr))
	}
}

func (f folder) fold(expr ast.Expr) (any, bool) {
	switch expr := expr.(type) {
	case nil:
		return nil, false
	case *ast.Literal:
		switch expr.Value.(type) {
		case int64, float64, string, bool:
			return expr.Value, true
		}
		return nil, false
	case *ast.DeclRef:
		if f.lookup == nil || f.visiting[expr.Name] {
			return nil, false
		}
		target, ok := f.lookup(expr.Name)
		if !ok {
			return nil, false
		}
		f.visiting[expr.Name] = true
		defer delete(f.visiting, expr.Name)
		return f.fold(target)
	case *ast.InputRef, *ast.ListLit, *ast.Cascade:
		return nil, false
	case *ast.Call:
		args := make([]any, len(expr.Args))
		for i, arg := range expr.Args {
			v, ok := f.fold(arg)
			if !ok {
				return nil, false
			}
			args[i] = v
		}
		return apply(expr.Fn, args)
	default:
		panic(ast.UnknownExpr(expr))
	}
}

func apply(fn string, args []any) (any, bool) {
	switch fn {
	case "add", "+", "subtract", "-", "multiply", "*", "divide", "/", "modulo", "%":
		if len(args) != 2 {
			return nil, false
		}
		return arithmetic(fn, args[0], args[1])
	case "gt", ">", "gte", ">=", "lt", "<", "lte", "<=":
		if len(args) != 2 {
			return nil, false
		}
		c, ok := Compare(args[0], args[1])
		if !ok {
			return nil, false
		}
		switch fn {
		case "gt", ">":
			return c > 0, true
		case "gte", ">=":
			return c >= 0, true
		case "lt", "<":
			return c < 0, true
		default:
			return c <= 0, true
		}
	case "eq", "==", "neq", "!=":
		if len(args) != 2 {
			return nil, false
		}
		eq := Equal(args[0], args[1])
		if fn == "eq" || fn == "==" {
			return eq, true
		}
		return !eq, true
	case "and", "&&", "or", "||":
		isAnd := fn == "and" || fn == "&&"
		result := isAnd
		for _, arg := range args {
			b, ok := arg.(bool)
			if !ok {
				return nil, false
			}
			if isAnd {
				result = result && b
			} else {
				result = result || b
			}
		}
		return result, true
	case "not", "!":
		if len(args) != 1 {
			return nil, false
		}
		b, ok := args[0].(bool)
		return !b, ok
	case "abs":
		if len(args) != 1 {
			return nil, false
		}
		switch v := args[0].(type) {
		case int64:
			if v == math.MinInt64 {
				return nil, false
			}
			if v < 0 {
				return -v, true
			}
			return v, true
		case float64:
			return math.Abs(v), true
		}
	}
	return nil, false
}

func arithmetic(fn string, a, b any) (any, bool) {
	ai, aIsInt := a.(int64)
	bi, bIsInt := b.(int64)
	if aIsInt && bIsInt && fn != "divide" && fn != "/" {
		switch fn {
		case "add", "+":
			sum := ai + bi
			if (sum > ai) != (bi > 0) {
				return nil, false
			}
			return sum, true
		case "subtract", "-":
			diff := ai - bi
			if (diff < ai) != (bi > 0) {
				return nil, false
			}
			return diff, true
		case "multiply", "*":
			if ai == 0 || bi == 0 {
				return int64(0), true
			}
			product := ai * bi
			if product/bi != ai || (ai == -1 && bi == math.MinInt64) || (bi == -1 && ai == math.MinInt64) {
				return nil, false
			}
			return product, true
		case "modulo", "%":
			if bi == 0 {
				return nil, false
			}
			return ai % bi, true
		}
	}
	af, aOk := toFloat(a)
	bf, bOk := toFloat(b)
	if !aOk || !bOk {
		return nil, false
	}
	result, ok := floatArithmetic(fn, af, bf)
	if !ok || math.IsInf(result, 0) || math.IsNaN(result) {
		return nil, false
	}
	return result, true
}

func floatArithmetic(fn string, af, bf float64) (float64, bool) {
	switch fn {
	case "add", "+":
		return af + bf, true
	case "subtract", "-":
		return af - bf, true
	case "multiply", "*":
		return af * bf, true
	case "divide", "/":
		if bf == 0 {
			return 0, false
		}
		return af / bf, true
	case "modulo", "%":
		if bf == 0 {
			return 0, false
		}
		return math.Mod(af, bf), true
	}
	return 0, false
}

func toFloat(v any) (float64, bool) {
	switch v := v.(type) {
	case int64:
		return float64(v), true
	case float64:
		return v, true
	}
	return 0, false
}

// Compare orders two constants: numbers numerically and strings lexicographically.
// It reports false when a and b are not comparable with each other.
func Compare(a, b any) (int, bool) {
	if af, ok := toFloat(a); ok {
		bf, ok := toFloat(b)
		if !ok {
			return 0, false
		}
		switch {
		case af < bf:
			return -1, true
		case af > bf:
			return 1, true
		}
		return 0, true
	}
	as, aOk := a.(string)
	bs, bOk := b.(string)
	if !aOk || !bOk {
		return 0, false
	}
	switch {
	case as < bs:
		return -1, true
	case as > bs:
		return 1, true
	}
	return 0, true
}

// Equal compares two constants, treating integers and floats of the same value as equal
func Equal(a, b any) bool {
	if c, ok := Compare(a, b); ok {
		return c == 0
	}
	as, aIsList := a.([]any)
	bs, bIsList := b.([]any)
	if aIsList && bIsList {
		if len(as) != len(bs) {
			return false
		}
		for i := range as {
			if !Equal(as[i], bs[i]) {
				return false
			}
		}
		return true
	}
	return cmp.Equal(a, b)
}
