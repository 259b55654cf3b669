// Package schemafile reads schemas written as YAML, such as
//
//	inputs:
//	  - name: items
//	    type: array
//	    fields:
//	      - {name: price, type: float}
//	  - {name: age, type: integer, domain: {min: 0, max: 150}}
//	values:
//	  - name: total
//	    expr: {call: sum, args: [{input: items.price}]}
//	traits:
//	  - name: adult
//	    expr: {call: gte, args: [{input: age}, 18]}
//
// Expressions are maps with exactly one of lit, list, ref, input, call (with
// optional args) or cascade (a list of when/then branches, with an optional else).
// Plain scalars are literals. Declarations keep their order in the file, whether
// they are values or traits.
package schemafile

import (
	"fmt"
	"go/token"
	"slices"
	"strings"

	"github.com/cottand/tenet/frontend/ast"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Parse reads the schema in data. name is only used for positions, which
// are recorded in the returned token.FileSet.
func Parse(name string, data []byte) (*ast.Schema, *token.FileSet, error) {
	fset := token.NewFileSet()
	file := fset.AddFile(name, -1, len(data))
	file.SetLinesForContent(data)
	p := &parser{name: name, file: file}

	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fset, errors.Wrapf(err, "could not parse %s", name)
	}
	schema := &ast.Schema{Range: ast.Range{PosStart: file.Pos(0), PosEnd: file.Pos(len(data))}}
	if doc.Kind == 0 || len(doc.Content) == 0 {
		return schema, fset, nil
	}
	if err := p.schema(doc.Content[0], schema); err != nil {
		return nil, fset, err
	}
	return schema, fset, nil
}

type parser struct {
	name string
	file *token.File
}

func (p *parser) errorf(n *yaml.Node, format string, args ...any) error {
	return errors.Errorf("%s:%d:%d: %s", p.name, n.Line, n.Column, fmt.Sprintf(format, args...))
}

func (p *parser) pos(n *yaml.Node) token.Pos {
	if n.Line < 1 || n.Line > p.file.LineCount() {
		return token.NoPos
	}
	offset := p.file.Offset(p.file.LineStart(n.Line)) + n.Column - 1
	return p.file.Pos(min(offset, p.file.Size()))
}

func (p *parser) rangeOf(n *yaml.Node) ast.Range {
	start := p.pos(n)
	end := start
	if n.Kind == yaml.ScalarNode && start.IsValid() {
		offset := min(p.file.Offset(start)+len(n.Value), p.file.Size())
		end = p.file.Pos(offset)
	}
	return ast.Range{PosStart: start, PosEnd: end}
}

// pairs returns the key/value pairs of a mapping node, rejecting unknown keys
func (p *parser) pairs(n *yaml.Node, what string, known ...string) (map[string]*yaml.Node, error) {
	if n.Kind != yaml.MappingNode {
		return nil, p.errorf(n, "%s must be a map", what)
	}
	fields := make(map[string]*yaml.Node, len(n.Content)/2)
	for i := 0; i+1 < len(n.Content); i += 2 {
		key, value := n.Content[i], n.Content[i+1]
		if !slices.Contains(known, key.Value) {
			return nil, p.errorf(key, "unknown key %q in %s", key.Value, what)
		}
		if _, dup := fields[key.Value]; dup {
			return nil, p.errorf(key, "key %q repeated in %s", key.Value, what)
		}
		fields[key.Value] = value
	}
	return fields, nil
}

func (p *parser) sequence(n *yaml.Node, what string) ([]*yaml.Node, error) {
	if n.Kind != yaml.SequenceNode {
		return nil, p.errorf(n, "%s must be a list", what)
	}
	return n.Content, nil
}

func (p *parser) str(n *yaml.Node, what string) (string, error) {
	if n.Kind != yaml.ScalarNode {
		return "", p.errorf(n, "%s must be a string", what)
	}
	return n.Value, nil
}

type located struct {
	decl ast.Declaration
	line int
}

func (p *parser) schema(n *yaml.Node, schema *ast.Schema) error {
	top, err := p.pairs(n, "schema", "inputs", "values", "traits")
	if err != nil {
		return err
	}
	if in, ok := top["inputs"]; ok {
		if schema.Inputs, err = p.inputs(in); err != nil {
			return err
		}
	}

	var decls []located
	for _, kind := range []ast.DeclKind{ast.KindValue, ast.KindTrait} {
		section, ok := top[kind.String()+"s"]
		if !ok {
			continue
		}
		items, err := p.sequence(section, kind.String()+"s")
		if err != nil {
			return err
		}
		for _, item := range items {
			decl, err := p.declaration(item, kind)
			if err != nil {
				return err
			}
			decls = append(decls, located{decl: decl, line: item.Line})
		}
	}
	slices.SortStableFunc(decls, func(a, b located) int { return a.line - b.line })
	for _, d := range decls {
		schema.Declarations = append(schema.Declarations, d.decl)
	}
	return nil
}

func (p *parser) inputs(n *yaml.Node) ([]ast.InputField, error) {
	items, err := p.sequence(n, "input fields")
	if err != nil {
		return nil, err
	}
	fields := make([]ast.InputField, 0, len(items))
	for _, item := range items {
		f, err := p.pairs(item, "input field", "name", "type", "domain", "fields")
		if err != nil {
			return nil, err
		}
		field := ast.InputField{Range: p.rangeOf(item)}
		if name, ok := f["name"]; ok {
			if field.Name, err = p.str(name, "field name"); err != nil {
				return nil, err
			}
		}
		if typ, ok := f["type"]; ok {
			if field.Type, err = p.str(typ, "field type"); err != nil {
				return nil, err
			}
		}
		if domain, ok := f["domain"]; ok {
			if field.Domain, err = p.domain(domain); err != nil {
				return nil, err
			}
		}
		if children, ok := f["fields"]; ok {
			if field.Children, err = p.inputs(children); err != nil {
				return nil, err
			}
		}
		fields = append(fields, field)
	}
	return fields, nil
}

type domainFile struct {
	Min          *float64 `yaml:"min"`
	Max          *float64 `yaml:"max"`
	ExclusiveMax bool     `yaml:"exclusive_max"`
	Enum         []any    `yaml:"enum"`
}

func (p *parser) domain(n *yaml.Node) (*ast.Domain, error) {
	if _, err := p.pairs(n, "domain", "min", "max", "exclusive_max", "enum"); err != nil {
		return nil, err
	}
	var d domainFile
	if err := n.Decode(&d); err != nil {
		return nil, p.errorf(n, "invalid domain: %v", err)
	}
	domain := &ast.Domain{Min: d.Min, Max: d.Max, ExclusiveMax: d.ExclusiveMax}
	for _, v := range d.Enum {
		domain.Enum = append(domain.Enum, ast.Lit(v).Value)
	}
	return domain, nil
}

func (p *parser) declaration(n *yaml.Node, kind ast.DeclKind) (ast.Declaration, error) {
	decl := ast.Declaration{Range: p.rangeOf(n), Kind: kind}
	known := []string{"name", "expr", "type"}
	if kind == ast.KindTrait {
		known = known[:2]
	}
	f, err := p.pairs(n, kind.String(), known...)
	if err != nil {
		return decl, err
	}
	if name, ok := f["name"]; ok {
		if decl.Name, err = p.str(name, kind.String()+" name"); err != nil {
			return decl, err
		}
	}
	if typ, ok := f["type"]; ok {
		if decl.TypeAnn, err = p.str(typ, "declared type"); err != nil {
			return decl, err
		}
	}
	// a missing expression is reported by the analyzer
	if e, ok := f["expr"]; ok {
		if decl.E, err = p.expr(e); err != nil {
			return decl, err
		}
	}
	return decl, nil
}

func (p *parser) expr(n *yaml.Node) (ast.Expr, error) {
	switch n.Kind {
	case yaml.ScalarNode:
		return p.literal(n)
	case yaml.SequenceNode:
		return p.list(n)
	case yaml.AliasNode:
		return p.expr(n.Alias)
	case yaml.MappingNode:
	default:
		return nil, p.errorf(n, "invalid expression")
	}

	f, err := p.pairs(n, "expression", "lit", "list", "ref", "input", "call", "args", "cascade", "else")
	if err != nil {
		return nil, err
	}
	r := p.rangeOf(n)
	switch {
	case f["lit"] != nil && len(f) == 1:
		return p.literal(f["lit"])
	case f["list"] != nil && len(f) == 1:
		return p.list(f["list"])
	case f["ref"] != nil && len(f) == 1:
		name, err := p.str(f["ref"], "reference")
		if err != nil {
			return nil, err
		}
		return &ast.DeclRef{Range: r, Name: name}, nil
	case f["input"] != nil && len(f) == 1:
		path, err := p.inputPath(f["input"])
		if err != nil {
			return nil, err
		}
		return &ast.InputRef{Range: r, Path: path}, nil
	case f["call"] != nil && (len(f) == 1 || len(f) == 2 && f["args"] != nil):
		return p.call(f, r)
	case f["cascade"] != nil && (len(f) == 1 || len(f) == 2 && f["else"] != nil):
		return p.cascade(f, r)
	}
	return nil, p.errorf(n, "expression must have exactly one of lit, list, ref, input, call or cascade")
}

func (p *parser) literal(n *yaml.Node) (ast.Expr, error) {
	if n.Kind != yaml.ScalarNode {
		return nil, p.errorf(n, "literal must be a scalar")
	}
	var v any
	if err := n.Decode(&v); err != nil {
		return nil, p.errorf(n, "invalid literal: %v", err)
	}
	lit := ast.Lit(v)
	lit.Range = p.rangeOf(n)
	return lit, nil
}

func (p *parser) list(n *yaml.Node) (ast.Expr, error) {
	items, err := p.sequence(n, "list")
	if err != nil {
		return nil, err
	}
	list := &ast.ListLit{Range: p.rangeOf(n), Elems: make([]ast.Expr, 0, len(items))}
	for _, item := range items {
		elem, err := p.expr(item)
		if err != nil {
			return nil, err
		}
		list.Elems = append(list.Elems, elem)
	}
	return list, nil
}

// inputPath accepts either a dotted path or a list of segments
func (p *parser) inputPath(n *yaml.Node) ([]string, error) {
	if n.Kind == yaml.ScalarNode {
		if n.Value == "" {
			return nil, p.errorf(n, "empty input path")
		}
		return strings.Split(n.Value, "."), nil
	}
	items, err := p.sequence(n, "input path")
	if err != nil {
		return nil, err
	}
	path := make([]string, len(items))
	for i, item := range items {
		if path[i], err = p.str(item, "input path segment"); err != nil {
			return nil, err
		}
	}
	return path, nil
}

func (p *parser) call(f map[string]*yaml.Node, r ast.Range) (ast.Expr, error) {
	fn, err := p.str(f["call"], "function name")
	if err != nil {
		return nil, err
	}
	call := &ast.Call{Range: r, Fn: fn}
	if args, ok := f["args"]; ok {
		list, err := p.list(args)
		if err != nil {
			return nil, err
		}
		call.Args = list.(*ast.ListLit).Elems
	}
	return call, nil
}

func (p *parser) cascade(f map[string]*yaml.Node, r ast.Range) (ast.Expr, error) {
	branches, err := p.sequence(f["cascade"], "cascade")
	if err != nil {
		return nil, err
	}
	cascade := &ast.Cascade{Range: r}
	for _, branch := range branches {
		b, err := p.pairs(branch, "cascade branch", "when", "then")
		if err != nil {
			return nil, err
		}
		if b["when"] == nil || b["then"] == nil {
			return nil, p.errorf(branch, "cascade branch needs both when and then")
		}
		c := ast.CascadeCase{Range: p.rangeOf(branch)}
		if c.Condition, err = p.expr(b["when"]); err != nil {
			return nil, err
		}
		if c.Result, err = p.expr(b["then"]); err != nil {
			return nil, err
		}
		cascade.Cases = append(cascade.Cases, c)
	}
	if def, ok := f["else"]; ok {
		if cascade.Default, err = p.expr(def); err != nil {
			return nil, err
		}
	}
	return cascade, nil
}
