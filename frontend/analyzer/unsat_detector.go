package analyzer

import (
	"slices"
	"strings"

	"github.com/cottand/tenet/frontend/analyzer/unsat"
	"github.com/cottand/tenet/frontend/ast"
	"github.com/cottand/tenet/frontend/constfold"
	"github.com/cottand/tenet/frontend/ilerr"
	"github.com/cottand/tenet/util"
	"github.com/hashicorp/go-set/v3"
)

// UnsatDetector reports conjunctions of comparisons that can never hold, and
// records which cascades have mutually exclusive branches
type UnsatDetector struct{}

func (UnsatDetector) Name() string { return "UnsatDetector" }

func (UnsatDetector) Run(schema *ast.Schema, state State) (State, *ilerr.Errors) {
	defs := MustLookup[Definitions](state, KeyDefinitions)
	inputs := MustLookup[InputMetadata](state, KeyInputMetadata)
	g := gatherer{defs: defs, inputs: inputs}
	logger := logger.With("pass", "UnsatDetector")

	type finding struct {
		decl     *ast.Declaration
		detail   string
		followed *set.Set[string]
	}
	var findings []finding
	unsatDecls := set.New[string](0)
	var errs *ilerr.Errors
	cascades := make(Cascades)

	for i := range schema.Declarations {
		decl := &schema.Declarations[i]
		if defs[decl.Name] != decl {
			continue
		}
		if cascade, ok := decl.E.(*ast.Cascade); ok {
			cascadeErrs, info := g.checkCascade(decl, cascade)
			errs = errs.Merge(cascadeErrs)
			cascades[decl.Name] = info
			continue
		}
		visited := set.From([]string{decl.Name})
		atoms := g.withDomains(g.gather(decl.E, visited))
		if impossible, detail := unsat.Unsat(atoms); impossible {
			logger.Debug("unsatisfiable conjunction", "decl", decl.Name, "expr", decl.E, "detail", detail)
			unsatDecls.Insert(decl.Name)
			findings = append(findings, finding{decl: decl, detail: detail, followed: visited})
		}
	}

	// a declaration that is impossible only because it refers to
	// another impossible one is not reported twice
	for _, f := range findings {
		f.followed.Remove(f.decl.Name)
		if slices.ContainsFunc(f.followed.Slice(), unsatDecls.Contains) {
			continue
		}
		errs = errs.With(ilerr.New(ilerr.NewUnsatisfiable{
			Range:  f.decl.Range,
			Decl:   f.decl.Name,
			Detail: f.detail,
		}))
	}
	return state.With(KeyCascades, cascades), errs
}

type gatherer struct {
	defs   Definitions
	inputs InputMetadata
}

func (g gatherer) lookup(name string) (ast.Expr, bool) {
	decl, ok := g.defs[name]
	if !ok || decl.E == nil {
		return nil, false
	}
	return decl.E, true
}

// gather returns the comparisons expr is a conjunction of, following
// references to other declarations. visited holds the declarations
// already followed, and is updated.
func (g gatherer) gather(expr ast.Expr, visited *set.Set[string]) []unsat.Atom {
	switch expr := expr.(type) {
	case *ast.Literal:
		if b, ok := expr.Value.(bool); ok {
			return []unsat.Atom{{Op: unsat.OpEq, Left: unsat.Literal(b), Right: unsat.Literal(true)}}
		}
	case *ast.DeclRef:
		if !visited.Insert(expr.Name) {
			return nil
		}
		target, ok := g.lookup(expr.Name)
		if !ok {
			return nil
		}
		if _, isCascade := target.(*ast.Cascade); isCascade {
			return nil
		}
		return g.gather(target, visited)
	case *ast.Call:
		switch expr.Fn {
		case "and", "&&":
			var atoms []unsat.Atom
			for _, arg := range expr.Args {
				atoms = append(atoms, g.gather(arg, visited)...)
			}
			return atoms
		case "between":
			if len(expr.Args) != 3 {
				return nil
			}
			subject := g.term(expr.Args[0])
			return []unsat.Atom{
				{Op: unsat.OpGte, Left: subject, Right: g.term(expr.Args[1])},
				{Op: unsat.OpLte, Left: subject, Right: g.term(expr.Args[2])},
			}
		}
		if op, ok := unsat.ParseOp(expr.Fn); ok && len(expr.Args) == 2 {
			return []unsat.Atom{{Op: op, Left: g.term(expr.Args[0]), Right: g.term(expr.Args[1])}}
		}
	case *ast.ListLit, *ast.InputRef, *ast.Cascade, nil:
	default:
		panic(ast.UnknownExpr(expr))
	}
	return nil
}

// term resolves an operand through constant folding
func (g gatherer) term(expr ast.Expr) unsat.Term {
	if v, ok := constfold.Fold(expr, g.lookup); ok {
		return unsat.Literal(v)
	}
	switch expr := expr.(type) {
	case *ast.InputRef:
		return unsat.Field(expr.Name())
	case *ast.DeclRef:
		return unsat.Decl(expr.Name)
	}
	return unsat.Unknown()
}

// withDomains adds the domain constraints of every input field in atoms
func (g gatherer) withDomains(atoms []unsat.Atom) []unsat.Atom {
	fields := make(map[string]bool)
	for _, a := range atoms {
		for _, t := range []unsat.Term{a.Left, a.Right} {
			if t.Kind == unsat.TermField {
				fields[t.Name] = true
			}
		}
	}
	for _, path := range util.SortedKeys(fields) {
		meta, exact, _ := g.inputs.Resolve(strings.Split(path, "."))
		if meta == nil || !exact || meta.Domain == nil {
			continue
		}
		field := unsat.Field(path)
		d := meta.Domain
		if d.Min != nil {
			atoms = append(atoms, unsat.Atom{Op: unsat.OpGte, Left: field, Right: unsat.Literal(*d.Min)})
		}
		if d.Max != nil {
			op := unsat.OpLte
			if d.ExclusiveMax {
				op = unsat.OpLt
			}
			atoms = append(atoms, unsat.Atom{Op: op, Left: field, Right: unsat.Literal(*d.Max)})
		}
		if len(d.Enum) > 0 {
			values := make([]any, len(d.Enum))
			for i, v := range d.Enum {
				values[i] = ast.Lit(v).Value
			}
			atoms = append(atoms, unsat.Atom{Op: unsat.OpIn, Left: field, Right: unsat.Literal(values)})
		}
	}
	return atoms
}

// checkCascade checks every branch condition on its own, and whether
// the branches exclude each other
func (g gatherer) checkCascade(decl *ast.Declaration, cascade *ast.Cascade) (*ilerr.Errors, CascadeInfo) {
	var errs *ilerr.Errors
	branchAtoms := make([][]unsat.Atom, len(cascade.Cases))
	for i, c := range cascade.Cases {
		branchAtoms[i] = g.withDomains(g.gather(c.Condition, set.From([]string{decl.Name})))
		if _, singleTrait := c.Condition.(*ast.DeclRef); singleTrait {
			continue
		}
		impossible, detail := unsat.Unsat(branchAtoms[i])
		if !impossible {
			continue
		}
		r := c.Range
		if r == (ast.Range{}) {
			r = ast.RangeOf(c.Condition)
		}
		errs = errs.With(ilerr.New(ilerr.NewUnsatisfiable{
			Range:  r,
			Decl:   decl.Name,
			Traits: g.traitConjunction(c.Condition),
			Detail: detail,
		}))
	}

	exclusive := true
	for i := 0; i < len(branchAtoms) && exclusive; i++ {
		for j := i + 1; j < len(branchAtoms); j++ {
			joint := append(slices.Clone(branchAtoms[i]), branchAtoms[j]...)
			if impossible, _ := unsat.Unsat(joint); !impossible {
				exclusive = false
				break
			}
		}
	}
	return errs, CascadeInfo{Branches: len(cascade.Cases), MutuallyExclusive: exclusive}
}

// traitConjunction returns the names of the traits cond is the conjunction of,
// or nil if it is something else
func (g gatherer) traitConjunction(cond ast.Expr) []string {
	call, ok := cond.(*ast.Call)
	if !ok || (call.Fn != "and" && call.Fn != "&&") {
		return nil
	}
	names := make([]string, 0, len(call.Args))
	for _, arg := range call.Args {
		ref, ok := arg.(*ast.DeclRef)
		if !ok {
			return nil
		}
		decl, ok := g.defs[ref.Name]
		if !ok || !decl.IsTrait() {
			return nil
		}
		names = append(names, ref.Name)
	}
	return names
}
