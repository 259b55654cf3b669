package types

// Constraint restricts the types a function parameter accepts
type Constraint string

const (
	AnyConstraint        Constraint = "any"
	NumericConstraint    Constraint = "numeric"
	BooleanConstraint    Constraint = "boolean"
	StringConstraint     Constraint = "string"
	ComparableConstraint Constraint = "comparable"
	ArrayConstraint      Constraint = "array"
	HashConstraint       Constraint = "hash"
)

var knownConstraints = map[Constraint]bool{
	AnyConstraint:        true,
	NumericConstraint:    true,
	BooleanConstraint:    true,
	StringConstraint:     true,
	ComparableConstraint: true,
	ArrayConstraint:      true,
	HashConstraint:       true,
}

func (c Constraint) Valid() bool {
	return knownConstraints[c]
}

// Satisfied reports whether t meets c. Any satisfies every constraint,
// since nothing more is known statically.
func (c Constraint) Satisfied(t Type) bool {
	if IsAny(t) {
		return true
	}
	switch c {
	case AnyConstraint, "":
		return true
	case NumericConstraint:
		return IsNumeric(t)
	case BooleanConstraint:
		return Equal(t, Boolean)
	case StringConstraint:
		return Equal(t, String) || Equal(t, Symbol)
	case ComparableConstraint:
		_, isArray := t.(Array)
		return !isArray && !Equal(t, Hash)
	case ArrayConstraint:
		_, isArray := t.(Array)
		return isArray
	case HashConstraint:
		return Equal(t, Hash)
	}
	return false
}
