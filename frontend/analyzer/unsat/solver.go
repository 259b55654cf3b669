package unsat

import (
	"fmt"
	"slices"

	"github.com/cottand/tenet/frontend/constfold"
)

type bound struct {
	value  any
	strict bool
	atom   Atom
}

// variable collects what the atoms say about a single term
type variable struct {
	lower, upper *bound
	eq           *bound
	neq          []bound
	enum         *bound
}

// Unsat reports whether atoms can never hold at the same time. When they cannot,
// detail names the atoms that contradict each other.
//
// The solver is sound but incomplete: atoms it does not understand (unknown terms,
// comparisons between two variables, values of incompatible types) are ignored,
// so a false result only means no contradiction was found.
func Unsat(atoms []Atom) (bool, string) {
	vars := make(map[string]*variable)
	for _, atom := range atoms {
		atom = atom.normalise()
		if atom.Left.Kind == TermUnknown || atom.Right.Kind == TermUnknown {
			continue
		}
		if atom.Left.Kind == TermLiteral && atom.Right.Kind == TermLiteral {
			if holds, ok := evaluate(atom); ok && !holds {
				return true, fmt.Sprintf("%s is always false", atom)
			}
			continue
		}
		if atom.Right.IsVariable() {
			if atom.Left.key() == atom.Right.key() && (atom.Op == OpLt || atom.Op == OpGt || atom.Op == OpNeq) {
				return true, fmt.Sprintf("%s is always false", atom)
			}
			continue
		}
		v, ok := vars[atom.Left.key()]
		if !ok {
			v = &variable{}
			vars[atom.Left.key()] = v
		}
		if conflict := v.add(atom); conflict != "" {
			return true, conflict
		}
	}
	return false, ""
}

func evaluate(a Atom) (holds bool, ok bool) {
	l, r := a.Left.Value, a.Right.Value
	switch a.Op {
	case OpEq:
		return constfold.Equal(l, r), true
	case OpNeq:
		return !constfold.Equal(l, r), true
	case OpIn:
		values, isList := r.([]any)
		if !isList {
			return false, false
		}
		return slices.ContainsFunc(values, func(v any) bool { return constfold.Equal(l, v) }), true
	}
	c, ok := constfold.Compare(l, r)
	if !ok {
		return false, false
	}
	switch a.Op {
	case OpLt:
		return c < 0, true
	case OpLte:
		return c <= 0, true
	case OpGt:
		return c > 0, true
	case OpGte:
		return c >= 0, true
	}
	return false, false
}

func contradiction(a, b Atom) string {
	return fmt.Sprintf("%s contradicts %s", a, b)
}

// add records atom (a variable compared to a literal) and returns a
// description of the contradiction it introduces, if any
func (v *variable) add(atom Atom) string {
	value := atom.Right.Value
	switch atom.Op {
	case OpGt, OpGte:
		b := &bound{value: value, strict: atom.Op == OpGt, atom: atom}
		if v.lower == nil || tighterLower(b, v.lower) {
			v.lower = b
		}
	case OpLt, OpLte:
		b := &bound{value: value, strict: atom.Op == OpLt, atom: atom}
		if v.upper == nil || tighterUpper(b, v.upper) {
			v.upper = b
		}
	case OpEq:
		if v.eq != nil && !constfold.Equal(v.eq.value, value) {
			return contradiction(v.eq.atom, atom)
		}
		v.eq = &bound{value: value, atom: atom}
	case OpNeq:
		v.neq = append(v.neq, bound{value: value, atom: atom})
	case OpIn:
		if _, ok := value.([]any); !ok {
			return ""
		}
		v.enum = &bound{value: value, atom: atom}
	}
	return v.check()
}

func tighterLower(candidate, current *bound) bool {
	c, ok := constfold.Compare(candidate.value, current.value)
	return ok && (c > 0 || (c == 0 && candidate.strict && !current.strict))
}

func tighterUpper(candidate, current *bound) bool {
	c, ok := constfold.Compare(candidate.value, current.value)
	return ok && (c < 0 || (c == 0 && candidate.strict && !current.strict))
}

// admits reports whether value is allowed by the bounds of v, and
// otherwise which atom excludes it
func (v *variable) admits(value any) (bool, Atom) {
	if v.lower != nil {
		if c, ok := constfold.Compare(value, v.lower.value); ok && (c < 0 || (c == 0 && v.lower.strict)) {
			return false, v.lower.atom
		}
	}
	if v.upper != nil {
		if c, ok := constfold.Compare(value, v.upper.value); ok && (c > 0 || (c == 0 && v.upper.strict)) {
			return false, v.upper.atom
		}
	}
	for _, n := range v.neq {
		if constfold.Equal(value, n.value) {
			return false, n.atom
		}
	}
	return true, Atom{}
}

func (v *variable) check() string {
	if v.lower != nil && v.upper != nil {
		c, ok := constfold.Compare(v.lower.value, v.upper.value)
		if ok && (c > 0 || (c == 0 && (v.lower.strict || v.upper.strict))) {
			return contradiction(v.lower.atom, v.upper.atom)
		}
		// x >= 5 AND x <= 5 AND x != 5
		if ok && c == 0 {
			if admitted, by := v.admits(v.lower.value); !admitted {
				return fmt.Sprintf("%s and %s leave only %s, which %s excludes",
					v.lower.atom, v.upper.atom, literalString(v.lower.value), by)
			}
		}
	}
	if v.eq != nil {
		if admitted, by := v.admits(v.eq.value); !admitted {
			return contradiction(v.eq.atom, by)
		}
	}
	if v.enum != nil {
		values := v.enum.value.([]any)
		if v.eq != nil && !slices.ContainsFunc(values, func(e any) bool { return constfold.Equal(e, v.eq.value) }) {
			return contradiction(v.eq.atom, v.enum.atom)
		}
		anyAdmitted := false
		for _, candidate := range values {
			if admitted, _ := v.admits(candidate); admitted {
				anyAdmitted = true
				break
			}
		}
		if !anyAdmitted {
			return fmt.Sprintf("no value of %s satisfies the other conditions on %s", v.enum.atom, v.enum.atom.Left)
		}
	}
	return ""
}

func literalString(v any) string {
	return Literal(v).String()
}
