// Package registry describes the functions a schema may call: their arity, parameter
// constraints, return-type rule, whether they reduce arrays, and their shape signatures.
package registry

import (
	"fmt"
	"slices"
	"sort"

	"github.com/cottand/tenet/frontend/shape"
	"github.com/cottand/tenet/frontend/types"
)

// Variadic is the Arity of functions accepting any number of arguments
const Variadic = -1

// ReturnRule names how the result type of a call is computed from its argument types
type ReturnRule string

const (
	// ReturnPromote is the numeric promotion of every argument (float dominates integer)
	ReturnPromote ReturnRule = "promote"
	// ReturnFirst is the type of the first argument
	ReturnFirst ReturnRule = "first"
	// ReturnUnify is the unification of every argument type
	ReturnUnify ReturnRule = "unify"
	// ReturnElement is the element type of the reduced array. Reducers get
	// their array arguments unwrapped by one level, so this is the first argument.
	ReturnElement ReturnRule = "element"
	// ReturnArray wraps the unification of every argument type in an array
	ReturnArray ReturnRule = "array"
)

// Function is a single registry entry
type Function struct {
	Name    string
	Aliases []string
	// Arity is the exact number of arguments, or Variadic
	Arity int
	// MinArity is the minimum number of arguments of a Variadic function
	MinArity int
	// Params holds one constraint per parameter. Variadic functions
	// have a single constraint that applies to every argument.
	Params []types.Constraint
	// Return is either a ReturnRule or the name of a fixed type (eg: "boolean")
	Return string
	// Reducer functions consume an array (their first argument) and produce a scalar
	Reducer bool
	// Signatures optionally describe the shapes the function accepts, see package shape
	Signatures []string

	parsedSignatures []shape.Signature
}

// Param returns the constraint on argument i
func (f *Function) Param(i int) types.Constraint {
	if len(f.Params) == 0 {
		return types.AnyConstraint
	}
	if f.Arity == Variadic || i >= len(f.Params) {
		return f.Params[len(f.Params)-1]
	}
	return f.Params[i]
}

// AcceptsArity reports whether calling f with n arguments is valid
func (f *Function) AcceptsArity(n int) bool {
	if f.Arity == Variadic {
		return n >= f.MinArity
	}
	return n == f.Arity
}

// ArityString describes the accepted number of arguments, for diagnostics
func (f *Function) ArityString() string {
	if f.Arity == Variadic {
		return fmt.Sprintf("at least %d", f.MinArity)
	}
	return fmt.Sprint(f.Arity)
}

// ParsedSignatures returns the parsed form of Signatures. It is only populated
// for functions that went through Registry.Register.
func (f *Function) ParsedSignatures() []shape.Signature {
	return f.parsedSignatures
}

// ReturnType applies the return rule of f to the types of its arguments.
// Callers pass element types: arrays broadcast over by a call, or reduced by a reducer,
// are unwrapped first.
func (f *Function) ReturnType(args []types.Type) types.Type {
	switch ReturnRule(f.Return) {
	case ReturnPromote:
		if len(args) == 0 {
			return types.Any
		}
		result := args[0]
		for _, arg := range args[1:] {
			promoted, ok := types.Promote(result, arg)
			if !ok {
				return types.UnifyAll(args...)
			}
			result = promoted
		}
		return result
	case ReturnFirst:
		if len(args) == 0 {
			return types.Any
		}
		return args[0]
	case ReturnUnify:
		return types.UnifyAll(args...)
	case ReturnElement:
		if len(args) == 0 {
			return types.Any
		}
		return args[0]
	case ReturnArray:
		return types.Array{Elem: types.UnifyAll(args...)}
	}
	t := types.Parse(f.Return)
	if !types.IsValid(t) {
		return types.Any
	}
	return t
}

func (f *Function) validate() error {
	if f.Name == "" {
		return fmt.Errorf("function without a name")
	}
	if f.Arity < Variadic {
		return fmt.Errorf("function %s: invalid arity %d", f.Name, f.Arity)
	}
	if f.Arity != Variadic && len(f.Params) != 0 && len(f.Params) != f.Arity {
		return fmt.Errorf("function %s: %d parameter constraints for arity %d", f.Name, len(f.Params), f.Arity)
	}
	for _, p := range f.Params {
		if !p.Valid() {
			return fmt.Errorf("function %s: unknown parameter constraint %q", f.Name, p)
		}
	}
	switch ReturnRule(f.Return) {
	case ReturnPromote, ReturnFirst, ReturnUnify, ReturnElement, ReturnArray:
	default:
		if !types.IsValid(types.Parse(f.Return)) {
			return fmt.Errorf("function %s: unknown return rule or type %q", f.Name, f.Return)
		}
	}
	f.parsedSignatures = make([]shape.Signature, 0, len(f.Signatures))
	for _, text := range f.Signatures {
		sig, err := shape.ParseSignature(text)
		if err != nil {
			return fmt.Errorf("function %s: %w", f.Name, err)
		}
		if f.Arity != Variadic && sig.Arity() != f.Arity {
			return fmt.Errorf("function %s: signature %s has %d inputs, but arity is %d", f.Name, text, sig.Arity(), f.Arity)
		}
		f.parsedSignatures = append(f.parsedSignatures, sig)
	}
	return nil
}

// Registry is a read-only (once built) lookup of functions by name or alias
type Registry struct {
	functions map[string]*Function
	aliases   map[string]string
}

func New() *Registry {
	return &Registry{
		functions: make(map[string]*Function),
		aliases:   make(map[string]string),
	}
}

// Register adds functions to r. It fails on names or aliases already registered.
func (r *Registry) Register(fns ...*Function) error {
	for _, fn := range fns {
		if err := fn.validate(); err != nil {
			return err
		}
		for _, name := range append([]string{fn.Name}, fn.Aliases...) {
			if _, taken := r.Lookup(name); taken {
				return fmt.Errorf("function '%s' is already registered", name)
			}
		}
		r.functions[fn.Name] = fn
		for _, alias := range fn.Aliases {
			r.aliases[alias] = fn.Name
		}
	}
	return nil
}

// With returns a copy of r with fns registered on top. Functions whose
// name or aliases are already registered are rejected.
func (r *Registry) With(fns ...*Function) (*Registry, error) {
	next := New()
	for name, fn := range r.functions {
		next.functions[name] = fn
	}
	for alias, name := range r.aliases {
		next.aliases[alias] = name
	}
	return next, next.Register(fns...)
}

// Lookup finds a function by name or alias
func (r *Registry) Lookup(name string) (*Function, bool) {
	if fn, ok := r.functions[name]; ok {
		return fn, true
	}
	if canonical, ok := r.aliases[name]; ok {
		fn, ok := r.functions[canonical]
		return fn, ok
	}
	return nil, false
}

// IsReducer reports whether name is a registered reducer
func (r *Registry) IsReducer(name string) bool {
	fn, ok := r.Lookup(name)
	return ok && fn.Reducer
}

// Names returns the canonical names of every function, sorted
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.functions))
	for name := range r.functions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Canonical resolves an alias to the canonical function name. Unknown names are returned as is.
func (r *Registry) Canonical(name string) string {
	if fn, ok := r.Lookup(name); ok {
		return fn.Name
	}
	return name
}

// HasAlias reports whether fn is known as name (either canonical or alias)
func (f *Function) HasAlias(name string) bool {
	return f.Name == name || slices.Contains(f.Aliases, name)
}
