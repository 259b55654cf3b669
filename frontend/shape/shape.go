// Package shape implements generalised broadcasting over function signatures such as
// "(i),(i)->(i)" or "(m?,n),(n,p?)->(m?,p?)": dimensions are symbolic or fixed-size
// and may be flexible (omissible) or broadcastable (may unify with a scalar or a size-1 axis).
package shape

import (
	"fmt"
	"strconv"
	"strings"
)

// Dimension is a single axis of a Shape.
// Fixed-size dimensions have Size > 0 and no Name.
type Dimension struct {
	Name          string
	Size          int
	Flexible      bool
	Broadcastable bool
}

func Named(name string) Dimension { return Dimension{Name: name} }

func FixedSize(size int) Dimension { return Dimension{Size: size} }

func (d Dimension) Fixed() bool { return d.Size > 0 }

// Axis renders the dimension without its modifiers
func (d Dimension) Axis() string {
	if d.Fixed() {
		return strconv.Itoa(d.Size)
	}
	return d.Name
}

func (d Dimension) String() string {
	switch {
	case d.Flexible:
		return d.Axis() + "?"
	case d.Broadcastable:
		return d.Axis() + "|1"
	}
	return d.Axis()
}

// sameAxis compares dimensions ignoring their modifiers
func sameAxis(a, b Dimension) bool {
	return a.Fixed() == b.Fixed() && a.Size == b.Size && a.Name == b.Name
}

// Shape is an ordered list of dimensions. The empty Shape is a scalar.
type Shape []Dimension

// Of builds the Shape of an operand whose axes are the given array names
func Of(axes ...string) Shape {
	s := make(Shape, len(axes))
	for i, axis := range axes {
		if size, err := strconv.Atoi(axis); err == nil && size > 0 {
			s[i] = FixedSize(size)
		} else {
			s[i] = Named(axis)
		}
	}
	return s
}

func (s Shape) Scalar() bool { return len(s) == 0 }

func (s Shape) String() string {
	dims := make([]string, len(s))
	for i, d := range s {
		dims[i] = d.String()
	}
	return "(" + strings.Join(dims, ",") + ")"
}

// Axes returns the dimension names (or sizes) without modifiers
func (s Shape) Axes() []string {
	axes := make([]string, len(s))
	for i, d := range s {
		axes[i] = d.Axis()
	}
	return axes
}

// Validate checks that names are unique within s and that no
// fixed-size dimension is marked flexible
func (s Shape) Validate() error {
	seen := make(map[string]bool, len(s))
	for _, d := range s {
		if d.Fixed() && d.Flexible {
			return fmt.Errorf("fixed-size dimension %d cannot be flexible", d.Size)
		}
		if d.Flexible && d.Broadcastable {
			return fmt.Errorf("dimension %s cannot be both flexible and broadcastable", d.Axis())
		}
		if d.Fixed() {
			continue
		}
		if d.Name == "" {
			return fmt.Errorf("dimension without name or size")
		}
		if seen[d.Name] {
			return fmt.Errorf("dimension %s appears more than once in %v", d.Name, s)
		}
		seen[d.Name] = true
	}
	return nil
}
