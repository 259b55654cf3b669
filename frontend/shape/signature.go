package shape

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// JoinPolicy says how operands with different axes are combined
type JoinPolicy int

const (
	// JoinNone requires a dimension name to bind to the same axis in every operand
	JoinNone JoinPolicy = iota
	// JoinZip pairs up elements of different axes positionally
	JoinZip
	// JoinProduct combines every element of one axis with every element of the other
	JoinProduct
)

func (j JoinPolicy) String() string {
	switch j {
	case JoinZip:
		return "zip"
	case JoinProduct:
		return "product"
	}
	return "none"
}

// Signature maps the shapes of a function's inputs to the shape of its output
type Signature struct {
	In   []Shape
	Out  Shape
	Join JoinPolicy
}

func (s Signature) Arity() int { return len(s.In) }

func (s Signature) String() string {
	in := make([]string, len(s.In))
	for i, shape := range s.In {
		in[i] = shape.String()
	}
	str := strings.Join(in, ",") + "->" + s.Out.String()
	if s.Join != JoinNone {
		str += "@" + s.Join.String()
	}
	return str
}

// ParseSignature parses text such as "(i),(i)->(i)" or "(3),(3)->(3)@product"
func ParseSignature(text string) (Signature, error) {
	compact := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, text)

	lhs, rhs, found := strings.Cut(compact, "->")
	if !found {
		return Signature{}, fmt.Errorf("signature %q: missing '->'", text)
	}
	sig := Signature{}
	if out, join, hasJoin := strings.Cut(rhs, "@"); hasJoin {
		switch join {
		case "zip":
			sig.Join = JoinZip
		case "product":
			sig.Join = JoinProduct
		default:
			return Signature{}, fmt.Errorf("signature %q: unknown join policy %q", text, join)
		}
		rhs = out
	}

	in, err := parseShapeList(lhs)
	if err != nil {
		return Signature{}, fmt.Errorf("signature %q: %w", text, err)
	}
	out, err := parseShapeList(rhs)
	if err != nil {
		return Signature{}, fmt.Errorf("signature %q: %w", text, err)
	}
	if len(out) != 1 {
		return Signature{}, fmt.Errorf("signature %q: expected exactly one output shape, found %d", text, len(out))
	}
	sig.In = in
	sig.Out = out[0]
	if err := sig.Validate(); err != nil {
		return Signature{}, fmt.Errorf("signature %q: %w", text, err)
	}
	return sig, nil
}

// MustParseSignature is like ParseSignature but panics on malformed text.
// It is meant for signatures hardcoded in Go source.
func MustParseSignature(text string) Signature {
	sig, err := ParseSignature(text)
	if err != nil {
		panic(err)
	}
	return sig
}

// Validate checks every shape, and that every output dimension is either
// fixed-size (explicitly new) or bound by some input
func (s Signature) Validate() error {
	inputNames := make(map[string]bool)
	for _, in := range s.In {
		if err := in.Validate(); err != nil {
			return err
		}
		for _, d := range in {
			if !d.Fixed() {
				inputNames[d.Name] = true
			}
		}
	}
	if err := s.Out.Validate(); err != nil {
		return err
	}
	for _, d := range s.Out {
		if d.Broadcastable {
			return fmt.Errorf("broadcastable dimension %s cannot appear in the output", d.Axis())
		}
		if !d.Fixed() && !inputNames[d.Name] {
			return fmt.Errorf("output dimension %s is not bound by any input", d.Name)
		}
	}
	return nil
}

// parseShapeList parses "(a,b),(c),()"
func parseShapeList(text string) ([]Shape, error) {
	var shapes []Shape
	rest := text
	for {
		if !strings.HasPrefix(rest, "(") {
			return nil, fmt.Errorf("expected '(' at %q", rest)
		}
		closing := strings.IndexByte(rest, ')')
		if closing < 0 {
			return nil, fmt.Errorf("unclosed '(' at %q", rest)
		}
		shape, err := parseShape(rest[1:closing])
		if err != nil {
			return nil, err
		}
		shapes = append(shapes, shape)
		rest = rest[closing+1:]
		if rest == "" {
			return shapes, nil
		}
		if rest[0] != ',' {
			return nil, fmt.Errorf("expected ',' between shapes at %q", rest)
		}
		rest = rest[1:]
	}
}

func parseShape(text string) (Shape, error) {
	if text == "" {
		return Shape{}, nil
	}
	tokens := strings.Split(text, ",")
	shape := make(Shape, 0, len(tokens))
	for _, token := range tokens {
		d, err := parseDimension(token)
		if err != nil {
			return nil, err
		}
		shape = append(shape, d)
	}
	return shape, nil
}

func parseDimension(token string) (Dimension, error) {
	d := Dimension{}
	if base, ok := strings.CutSuffix(token, "?"); ok {
		d.Flexible = true
		token = base
	} else if base, ok := strings.CutSuffix(token, "|1"); ok {
		d.Broadcastable = true
		token = base
	}
	if token == "" {
		return Dimension{}, fmt.Errorf("empty dimension")
	}
	if size, err := strconv.Atoi(token); err == nil {
		if size <= 0 {
			return Dimension{}, fmt.Errorf("fixed-size dimension must be positive, got %d", size)
		}
		d.Size = size
		return d, nil
	}
	for i, r := range token {
		if !(r == '_' || unicode.IsLetter(r) || i > 0 && unicode.IsDigit(r)) {
			return Dimension{}, fmt.Errorf("invalid dimension name %q", token)
		}
	}
	d.Name = token
	return d, nil
}
