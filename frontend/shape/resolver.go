package shape

import (
	"fmt"
	"slices"
	"strings"
)

// Plan is the outcome of matching a Signature against concrete argument shapes
type Plan struct {
	Signature Signature
	// Cost is 0 when every axis matches exactly, and grows with every
	// broadcast or fixed/named pairing needed to make the arguments fit
	Cost int
	// Bindings maps each signature dimension name to the argument axes it was bound to.
	// More than one axis is only bound under JoinZip or JoinProduct.
	Bindings map[string][]Dimension
	Result   Shape
}

const (
	costBroadcast      = 1
	costFixedNamedPair = 2
)

// NoMatchError is returned by Resolve when no candidate accepts the arguments
type NoMatchError struct {
	Args       []Shape
	Candidates []Signature
}

func (e *NoMatchError) Error() string {
	return fmt.Sprintf("no signature accepts arguments %s (candidates: %s)", shapesString(e.Args), signaturesString(e.Candidates))
}

// AmbiguousError is returned by Resolve when the cheapest candidates disagree on the result shape
type AmbiguousError struct {
	Plans []Plan
}

func (e *AmbiguousError) Error() string {
	sigs := make([]Signature, len(e.Plans))
	for i, p := range e.Plans {
		sigs[i] = p.Signature
	}
	return fmt.Sprintf("ambiguous signatures %s at cost %d", signaturesString(sigs), e.Plans[0].Cost)
}

// Resolve picks the cheapest candidate accepting args.
//
// Ties between equally cheap candidates are broken by the lexicographic order of
// their text, unless they produce different result shapes, in which case the call
// is reported as ambiguous.
func Resolve(candidates []Signature, args []Shape) (Plan, error) {
	var plans []Plan
	for _, sig := range candidates {
		if plan, ok := Match(sig, args); ok {
			plans = append(plans, plan)
		}
	}
	if len(plans) == 0 {
		return Plan{}, &NoMatchError{Args: args, Candidates: candidates}
	}
	slices.SortStableFunc(plans, func(a, b Plan) int {
		if a.Cost != b.Cost {
			return a.Cost - b.Cost
		}
		return strings.Compare(a.Signature.String(), b.Signature.String())
	})
	best := plans[0]
	tied := []Plan{best}
	for _, p := range plans[1:] {
		if p.Cost != best.Cost {
			break
		}
		if p.Result.String() != best.Result.String() {
			tied = append(tied, p)
		}
	}
	if len(tied) > 1 {
		return Plan{}, &AmbiguousError{Plans: tied}
	}
	return best, nil
}

// Match checks whether args fit sig, returning the resulting Plan
func Match(sig Signature, args []Shape) (Plan, bool) {
	if len(sig.In) != len(args) {
		return Plan{}, false
	}
	m := &matcher{join: sig.Join, bindings: make(map[string][]Dimension)}
	for i, param := range sig.In {
		if !m.matchShape(param, args[i]) {
			return Plan{}, false
		}
	}
	result, ok := m.resultShape(sig.Out)
	if !ok {
		return Plan{}, false
	}
	return Plan{
		Signature: sig,
		Cost:      m.cost,
		Bindings:  m.bindings,
		Result:    result,
	}, true
}

type matcher struct {
	join     JoinPolicy
	cost     int
	bindings map[string][]Dimension
}

func (m *matcher) matchShape(param, arg Shape) bool {
	if arg.Scalar() && !param.Scalar() {
		for _, d := range param {
			if !d.Broadcastable && !d.Flexible {
				return false
			}
		}
		m.cost += costBroadcast
		return true
	}
	param = dropFlexible(param, len(arg))
	if len(param) != len(arg) {
		return false
	}
	for i, p := range param {
		if !m.matchDimension(p, arg[i]) {
			return false
		}
	}
	return true
}

func (m *matcher) matchDimension(p, a Dimension) bool {
	if a.Fixed() && a.Size == 1 && p.Broadcastable && !(p.Fixed() && p.Size == 1) {
		m.cost += costBroadcast
		return true
	}
	if p.Fixed() {
		if a.Fixed() {
			return a.Size == p.Size
		}
		// the named axis is assumed to have exactly p.Size elements
		m.cost += costFixedNamedPair
		return true
	}

	bound, isBound := m.bindings[p.Name]
	axis := Dimension{Name: a.Name, Size: a.Size}
	if !isBound {
		m.bindings[p.Name] = []Dimension{axis}
		if a.Fixed() {
			m.cost += costFixedNamedPair
		}
		return true
	}
	if slices.ContainsFunc(bound, func(b Dimension) bool { return sameAxis(b, axis) }) {
		return true
	}
	if bound[0].Fixed() != axis.Fixed() {
		m.cost += costFixedNamedPair
		return true
	}
	if m.join == JoinNone {
		return false
	}
	m.bindings[p.Name] = append(bound, axis)
	return true
}

func (m *matcher) resultShape(out Shape) (Shape, bool) {
	result := Shape{}
	for _, d := range out {
		if d.Fixed() {
			result = append(result, Dimension{Size: d.Size})
			continue
		}
		bound, ok := m.bindings[d.Name]
		switch {
		case !ok && d.Flexible:
			continue
		case !ok:
			return nil, false
		case m.join == JoinProduct:
			result = append(result, bound...)
		default:
			result = append(result, bound[0])
		}
	}
	return result, true
}

// dropFlexible removes flexible dimensions from the front of s until it has length n
// (or no flexible dimensions are left)
func dropFlexible(s Shape, n int) Shape {
	if len(s) <= n {
		return s
	}
	excess := len(s) - n
	dropped := make(Shape, 0, len(s))
	for _, d := range s {
		if excess > 0 && d.Flexible {
			excess--
			continue
		}
		dropped = append(dropped, d)
	}
	return dropped
}

func shapesString(shapes []Shape) string {
	strs := make([]string, len(shapes))
	for i, s := range shapes {
		strs[i] = s.String()
	}
	return strings.Join(strs, ",")
}

func signaturesString(sigs []Signature) string {
	strs := make([]string, len(sigs))
	for i, s := range sigs {
		strs[i] = s.String()
	}
	return strings.Join(strs, " | ")
}
