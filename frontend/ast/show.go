package ast

import (
	"fmt"
	"strconv"
	"strings"
)

var infixOperators = map[string]string{
	"add":      "+",
	"subtract": "-",
	"multiply": "*",
	"divide":   "/",
	"modulo":   "%",
	"gt":       ">",
	"gte":      ">=",
	"lt":       "<",
	"lte":      "<=",
	"eq":       "==",
	"neq":      "!=",
	"and":      "&&",
	"or":       "||",
}

// ExprString renders expr in a compact, human-readable syntax, used for diagnostics and logs
func ExprString(expr Expr) string {
	sb := &strings.Builder{}
	showExpr(sb, expr, false)
	return sb.String()
}

func showExpr(sb *strings.Builder, expr Expr, nested bool) {
	if expr == nil {
		sb.WriteString("nil")
		return
	}
	switch expr := expr.(type) {
	case *Literal:
		sb.WriteString(LiteralString(expr.Value))
	case *ListLit:
		sb.WriteString("[")
		for i, elem := range expr.Elems {
			if i > 0 {
				sb.WriteString(", ")
			}
			showExpr(sb, elem, false)
		}
		sb.WriteString("]")
	case *DeclRef:
		sb.WriteString(expr.Name)
	case *InputRef:
		sb.WriteString("input." + expr.Name())
	case *Call:
		if op, ok := infixOperators[expr.Fn]; ok && len(expr.Args) == 2 {
			if nested {
				sb.WriteString("(")
			}
			showExpr(sb, expr.Args[0], true)
			sb.WriteString(" " + op + " ")
			showExpr(sb, expr.Args[1], true)
			if nested {
				sb.WriteString(")")
			}
			return
		}
		sb.WriteString(expr.Fn)
		sb.WriteString("(")
		for i, arg := range expr.Args {
			if i > 0 {
				sb.WriteString(", ")
			}
			showExpr(sb, arg, false)
		}
		sb.WriteString(")")
	case *Cascade:
		sb.WriteString("cascade {")
		for _, c := range expr.Cases {
			sb.WriteString(" on ")
			showExpr(sb, c.Condition, false)
			sb.WriteString(" => ")
			showExpr(sb, c.Result, false)
			sb.WriteString(";")
		}
		if expr.Default != nil {
			sb.WriteString(" else ")
			showExpr(sb, expr.Default, false)
		}
		sb.WriteString(" }")
	default:
		panic(UnknownExpr(expr))
	}
}

// LiteralString renders the value of a Literal
func LiteralString(v any) string {
	switch v := v.(type) {
	case nil:
		return "nil"
	case string:
		return strconv.Quote(v)
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64)
	default:
		return fmt.Sprint(v)
	}
}
