package registry

import (
	"github.com/cottand/tenet/frontend/types"
)

var (
	numeric = types.NumericConstraint
	ordered = types.ComparableConstraint
	boolean = types.BooleanConstraint
	str     = types.StringConstraint
	anyC    = types.AnyConstraint
)

func builtinFunctions() []*Function {
	return []*Function{
		// arithmetic
		{Name: "add", Aliases: []string{"+"}, Arity: 2, Params: cs(numeric, numeric), Return: string(ReturnPromote)},
		{Name: "subtract", Aliases: []string{"-"}, Arity: 2, Params: cs(numeric, numeric), Return: string(ReturnPromote)},
		{Name: "multiply", Aliases: []string{"*"}, Arity: 2, Params: cs(numeric, numeric), Return: string(ReturnPromote)},
		{Name: "divide", Aliases: []string{"/"}, Arity: 2, Params: cs(numeric, numeric), Return: "float"},
		{Name: "modulo", Aliases: []string{"%"}, Arity: 2, Params: cs(numeric, numeric), Return: string(ReturnPromote)},
		{Name: "power", Aliases: []string{"**"}, Arity: 2, Params: cs(numeric, numeric), Return: string(ReturnPromote)},
		{Name: "abs", Arity: 1, Params: cs(numeric), Return: string(ReturnFirst)},
		{Name: "round", Arity: 1, Params: cs(numeric), Return: "integer"},
		{Name: "floor", Arity: 1, Params: cs(numeric), Return: "integer"},
		{Name: "ceil", Arity: 1, Params: cs(numeric), Return: "integer"},
		{Name: "clamp", Arity: 3, Params: cs(numeric, numeric, numeric), Return: string(ReturnPromote)},

		// comparison
		{Name: "gt", Aliases: []string{">"}, Arity: 2, Params: cs(ordered, ordered), Return: "boolean"},
		{Name: "gte", Aliases: []string{">="}, Arity: 2, Params: cs(ordered, ordered), Return: "boolean"},
		{Name: "lt", Aliases: []string{"<"}, Arity: 2, Params: cs(ordered, ordered), Return: "boolean"},
		{Name: "lte", Aliases: []string{"<="}, Arity: 2, Params: cs(ordered, ordered), Return: "boolean"},
		{Name: "eq", Aliases: []string{"=="}, Arity: 2, Params: cs(anyC, anyC), Return: "boolean"},
		{Name: "neq", Aliases: []string{"!="}, Arity: 2, Params: cs(anyC, anyC), Return: "boolean"},
		{Name: "between", Arity: 3, Params: cs(ordered, ordered, ordered), Return: "boolean"},

		// logic
		{Name: "and", Aliases: []string{"&&"}, Arity: Variadic, MinArity: 2, Params: cs(boolean), Return: "boolean"},
		{Name: "or", Aliases: []string{"||"}, Arity: Variadic, MinArity: 2, Params: cs(boolean), Return: "boolean"},
		{Name: "not", Aliases: []string{"!"}, Arity: 1, Params: cs(boolean), Return: "boolean"},

		// strings
		{Name: "concat", Arity: Variadic, MinArity: 1, Params: cs(anyC), Return: "string"},
		{Name: "upcase", Arity: 1, Params: cs(str), Return: "string"},
		{Name: "downcase", Arity: 1, Params: cs(str), Return: "string"},
		{Name: "strlen", Arity: 1, Params: cs(str), Return: "integer"},

		// reducers, whose first parameter constraint applies to the array elements
		{Name: "sum", Arity: 1, Params: cs(numeric), Return: string(ReturnElement), Reducer: true, Signatures: []string{"(i)->()"}},
		{Name: "count", Aliases: []string{"size"}, Arity: 1, Params: cs(anyC), Return: "integer", Reducer: true, Signatures: []string{"(i)->()"}},
		{Name: "max", Arity: 1, Params: cs(ordered), Return: string(ReturnElement), Reducer: true, Signatures: []string{"(i)->()"}},
		{Name: "min", Arity: 1, Params: cs(ordered), Return: string(ReturnElement), Reducer: true, Signatures: []string{"(i)->()"}},
		{Name: "mean", Aliases: []string{"avg"}, Arity: 1, Params: cs(numeric), Return: "float", Reducer: true, Signatures: []string{"(i)->()"}},
		{Name: "all?", Aliases: []string{"all"}, Arity: 1, Params: cs(boolean), Return: "boolean", Reducer: true, Signatures: []string{"(i)->()"}},
		{Name: "any?", Aliases: []string{"any"}, Arity: 1, Params: cs(boolean), Return: "boolean", Reducer: true, Signatures: []string{"(i)->()"}},
		{Name: "none?", Aliases: []string{"none"}, Arity: 1, Params: cs(boolean), Return: "boolean", Reducer: true, Signatures: []string{"(i)->()"}},
		{Name: "first", Arity: 1, Params: cs(anyC), Return: string(ReturnElement), Reducer: true},
		{Name: "last", Arity: 1, Params: cs(anyC), Return: string(ReturnElement), Reducer: true},
		{Name: "include?", Arity: 2, Params: cs(anyC, anyC), Return: "boolean", Reducer: true},
		{Name: "dot", Arity: 2, Params: cs(numeric, numeric), Return: string(ReturnPromote), Reducer: true, Signatures: []string{"(i),(i)->()"}},
	}
}

func cs(constraints ...types.Constraint) []types.Constraint {
	return constraints
}

// Builtins returns a new Registry holding every builtin function
func Builtins() *Registry {
	r := New()
	if err := r.Register(builtinFunctions()...); err != nil {
		// builtins are hardcoded: failing to register them is a bug
		panic(err)
	}
	return r
}
