package ilerr

import (
	"fmt"
	"go/token"
	"runtime/debug"
	"strings"

	"github.com/cottand/tenet/frontend/ast"
)

// enableDebugErrorPrinting makes errors include the line that created them when printed
const enableDebugErrorPrinting bool = false
const enableDebugFullStacktrace bool = false

type ErrCode int

const (
	None ErrCode = iota
	DuplicateDeclaration
	MalformedDeclaration
	DuplicateInputField
	InvalidInputField
	UndefinedDeclaration
	UndefinedInputField
	CycleDetected
	DimensionMismatch
	SignatureMismatch
	UnknownFunction
	ArityMismatch
	ArgumentType
	InvalidDeclaredType
	DeclaredTypeMismatch
	AmbiguousOverload
	Unsatisfiable
	InternalFailure
)

// Kind groups error codes by what went wrong
type Kind int

const (
	KindStructural Kind = iota
	KindReference
	KindCycle
	KindDimensionMismatch
	KindType
	KindUnsat
	KindInternal
)

func (k Kind) String() string {
	switch k {
	case KindStructural:
		return "structural"
	case KindReference:
		return "reference"
	case KindCycle:
		return "cycle"
	case KindDimensionMismatch:
		return "dimension-mismatch"
	case KindType:
		return "type"
	case KindUnsat:
		return "unsat"
	case KindInternal:
		return "internal"
	}
	return "unknown"
}

func (c ErrCode) Kind() Kind {
	switch c {
	case DuplicateDeclaration, MalformedDeclaration, DuplicateInputField, InvalidInputField:
		return KindStructural
	case UndefinedDeclaration, UndefinedInputField:
		return KindReference
	case CycleDetected:
		return KindCycle
	case DimensionMismatch, SignatureMismatch:
		return KindDimensionMismatch
	case UnknownFunction, ArityMismatch, ArgumentType, InvalidDeclaredType, DeclaredTypeMismatch, AmbiguousOverload:
		return KindType
	case Unsatisfiable:
		return KindUnsat
	}
	return KindInternal
}

type IleError interface {
	Error() string
	Code() ErrCode
	ast.Positioner

	withStack([]byte) IleError
	getStack() []byte
}

func FormatWithCode(e IleError) string {
	if enableDebugErrorPrinting && e.getStack() != nil {
		stack := string(e.getStack())
		if !enableDebugFullStacktrace {
			lines := strings.Split(stack, "\n")
			if len(lines) > 6 {
				stack = lines[6]
			}
		}
		return fmt.Sprintf("%s:(E%03d) %s", stack, e.Code(), e.Error())
	}
	return fmt.Sprintf("(E%03d) %s", e.Code(), e.Error())
}

// FormatWithPosition prefixes FormatWithCode with the source position of e, when
// it is known in fset. fset may be nil.
func FormatWithPosition(e IleError, fset *token.FileSet) string {
	if fset == nil || !e.Pos().IsValid() {
		return FormatWithCode(e)
	}
	return fmt.Sprintf("%v: %s", fset.Position(e.Pos()), FormatWithCode(e))
}

func New[E IleError](err E) IleError {
	return err.withStack(debug.Stack())
}

type NewDuplicateDeclaration struct {
	ast.Range
	Name  string
	stack []byte
}

func (e NewDuplicateDeclaration) Error() string {
	return fmt.Sprintf("duplicated definition '%s'", e.Name)
}
func (e NewDuplicateDeclaration) Code() ErrCode    { return DuplicateDeclaration }
func (e NewDuplicateDeclaration) getStack() []byte { return e.stack }
func (e NewDuplicateDeclaration) withStack(stack []byte) IleError {
	e.stack = stack
	return e
}

type NewMalformedDeclaration struct {
	ast.Range
	Name   string
	Reason string
	stack  []byte
}

func (e NewMalformedDeclaration) Error() string {
	if e.Name == "" {
		return fmt.Sprintf("malformed declaration: %s", e.Reason)
	}
	return fmt.Sprintf("malformed declaration '%s': %s", e.Name, e.Reason)
}
func (e NewMalformedDeclaration) Code() ErrCode    { return MalformedDeclaration }
func (e NewMalformedDeclaration) getStack() []byte { return e.stack }
func (e NewMalformedDeclaration) withStack(stack []byte) IleError {
	e.stack = stack
	return e
}

type NewDuplicateInputField struct {
	ast.Range
	Path  string
	stack []byte
}

func (e NewDuplicateInputField) Error() string {
	return fmt.Sprintf("input field '%s' is declared more than once", e.Path)
}
func (e NewDuplicateInputField) Code() ErrCode    { return DuplicateInputField }
func (e NewDuplicateInputField) getStack() []byte { return e.stack }
func (e NewDuplicateInputField) withStack(stack []byte) IleError {
	e.stack = stack
	return e
}

type NewInvalidInputField struct {
	ast.Range
	Path   string
	Reason string
	stack  []byte
}

func (e NewInvalidInputField) Error() string {
	return fmt.Sprintf("invalid input field '%s': %s", e.Path, e.Reason)
}
func (e NewInvalidInputField) Code() ErrCode    { return InvalidInputField }
func (e NewInvalidInputField) getStack() []byte { return e.stack }
func (e NewInvalidInputField) withStack(stack []byte) IleError {
	e.stack = stack
	return e
}

type NewUndefinedDeclaration struct {
	ast.Range
	Name string
	// From is the declaration containing the reference
	From  string
	stack []byte
}

func (e NewUndefinedDeclaration) Error() string {
	return fmt.Sprintf("undefined reference to '%s' in '%s'", e.Name, e.From)
}
func (e NewUndefinedDeclaration) Code() ErrCode    { return UndefinedDeclaration }
func (e NewUndefinedDeclaration) getStack() []byte { return e.stack }
func (e NewUndefinedDeclaration) withStack(stack []byte) IleError {
	e.stack = stack
	return e
}

type NewUndefinedInputField struct {
	ast.Range
	Path string
	// Missing is the first segment of Path that could not be resolved
	Missing string
	From    string
	stack   []byte
}

func (e NewUndefinedInputField) Error() string {
	if e.Missing != "" && e.Missing != e.Path {
		return fmt.Sprintf("undefined input field '%s' in '%s' ('%s' is not declared)", e.Path, e.From, e.Missing)
	}
	return fmt.Sprintf("undefined input field '%s' in '%s'", e.Path, e.From)
}
func (e NewUndefinedInputField) Code() ErrCode    { return UndefinedInputField }
func (e NewUndefinedInputField) getStack() []byte { return e.stack }
func (e NewUndefinedInputField) withStack(stack []byte) IleError {
	e.stack = stack
	return e
}

type NewCycleDetected struct {
	ast.Range
	// Path lists the declarations in the cycle, ending where it started
	Path  []string
	stack []byte
}

func (e NewCycleDetected) Error() string {
	return fmt.Sprintf("cycle detected: %s", strings.Join(e.Path, " -> "))
}
func (e NewCycleDetected) Code() ErrCode    { return CycleDetected }
func (e NewCycleDetected) getStack() []byte { return e.stack }
func (e NewCycleDetected) withStack(stack []byte) IleError {
	e.stack = stack
	return e
}

// Operand describes one side of a dimension mismatch
type Operand struct {
	Expr   string
	Source string
	Dims   []string
}

func (o Operand) String() string {
	return fmt.Sprintf("'%s' from array '%s' with shape [%s]", o.Expr, o.Source, strings.Join(o.Dims, ", "))
}

type NewDimensionMismatch struct {
	ast.Range
	Decl     string
	Fn       string
	Operands []Operand
	stack    []byte
}

func (e NewDimensionMismatch) Error() string {
	operands := make([]string, len(e.Operands))
	for i, o := range e.Operands {
		operands[i] = o.String()
	}
	return fmt.Sprintf("dimension mismatch in '%s': '%s' combines operands from incompatible arrays: %s. "+
		"Element-wise operations need operands from the same array (or one nested inside the other)",
		e.Decl, e.Fn, strings.Join(operands, "; "))
}
func (e NewDimensionMismatch) Code() ErrCode    { return DimensionMismatch }
func (e NewDimensionMismatch) getStack() []byte { return e.stack }
func (e NewDimensionMismatch) withStack(stack []byte) IleError {
	e.stack = stack
	return e
}

type NewSignatureMismatch struct {
	ast.Range
	Decl       string
	Fn         string
	Shapes     []string
	Signatures []string
	stack      []byte
}

func (e NewSignatureMismatch) Error() string {
	return fmt.Sprintf("no signature of '%s' accepts argument shapes %s in '%s' (candidates: %s)",
		e.Fn, strings.Join(e.Shapes, ","), e.Decl, strings.Join(e.Signatures, " | "))
}
func (e NewSignatureMismatch) Code() ErrCode    { return SignatureMismatch }
func (e NewSignatureMismatch) getStack() []byte { return e.stack }
func (e NewSignatureMismatch) withStack(stack []byte) IleError {
	e.stack = stack
	return e
}

type NewAmbiguousOverload struct {
	ast.Range
	Decl       string
	Fn         string
	Signatures []string
	stack      []byte
}

func (e NewAmbiguousOverload) Error() string {
	return fmt.Sprintf("ambiguous call to '%s' in '%s': signatures %s match equally well",
		e.Fn, e.Decl, strings.Join(e.Signatures, " and "))
}
func (e NewAmbiguousOverload) Code() ErrCode    { return AmbiguousOverload }
func (e NewAmbiguousOverload) getStack() []byte { return e.stack }
func (e NewAmbiguousOverload) withStack(stack []byte) IleError {
	e.stack = stack
	return e
}

type NewUnknownFunction struct {
	ast.Range
	Name  string
	Decl  string
	stack []byte
}

func (e NewUnknownFunction) Error() string {
	return fmt.Sprintf("unknown function '%s' in '%s'", e.Name, e.Decl)
}
func (e NewUnknownFunction) Code() ErrCode    { return UnknownFunction }
func (e NewUnknownFunction) getStack() []byte { return e.stack }
func (e NewUnknownFunction) withStack(stack []byte) IleError {
	e.stack = stack
	return e
}

type NewArityMismatch struct {
	ast.Range
	Fn       string
	Expected string
	Got      int
	stack    []byte
}

func (e NewArityMismatch) Error() string {
	return fmt.Sprintf("function '%s' expects %s arguments, got %d", e.Fn, e.Expected, e.Got)
}
func (e NewArityMismatch) Code() ErrCode    { return ArityMismatch }
func (e NewArityMismatch) getStack() []byte { return e.stack }
func (e NewArityMismatch) withStack(stack []byte) IleError {
	e.stack = stack
	return e
}

type NewArgumentType struct {
	ast.Range
	Fn string
	// Index is 1-based
	Index    int
	Expected string
	Actual   string
	// Origin describes where the argument comes from, eg: "input field 'age'"
	Origin string
	stack  []byte
}

func (e NewArgumentType) Error() string {
	return fmt.Sprintf("argument %d of '%s' expects %s, got %s of type %s", e.Index, e.Fn, e.Expected, e.Origin, e.Actual)
}
func (e NewArgumentType) Code() ErrCode    { return ArgumentType }
func (e NewArgumentType) getStack() []byte { return e.stack }
func (e NewArgumentType) withStack(stack []byte) IleError {
	e.stack = stack
	return e
}

type NewInvalidDeclaredType struct {
	ast.Range
	// Subject is what the type was declared for, eg: "input field 'age'"
	Subject string
	Name    string
	stack   []byte
}

func (e NewInvalidDeclaredType) Error() string {
	return fmt.Sprintf("invalid type '%s' declared for %s", e.Name, e.Subject)
}
func (e NewInvalidDeclaredType) Code() ErrCode    { return InvalidDeclaredType }
func (e NewInvalidDeclaredType) getStack() []byte { return e.stack }
func (e NewInvalidDeclaredType) withStack(stack []byte) IleError {
	e.stack = stack
	return e
}

type NewDeclaredTypeMismatch struct {
	ast.Range
	Decl     string
	Declared string
	Inferred string
	stack    []byte
}

func (e NewDeclaredTypeMismatch) Error() string {
	return fmt.Sprintf("type mismatch: '%s' is declared as '%s', but its expression has type '%s'", e.Decl, e.Declared, e.Inferred)
}
func (e NewDeclaredTypeMismatch) Code() ErrCode    { return DeclaredTypeMismatch }
func (e NewDeclaredTypeMismatch) getStack() []byte { return e.stack }
func (e NewDeclaredTypeMismatch) withStack(stack []byte) IleError {
	e.stack = stack
	return e
}

type NewUnsatisfiable struct {
	ast.Range
	Decl string
	// Traits is set when the impossible condition is a conjunction of named traits
	Traits []string
	Detail string
	stack  []byte
}

func (e NewUnsatisfiable) Error() string {
	if len(e.Traits) > 0 {
		return fmt.Sprintf("conjunction of traits %s is impossible: %s", strings.Join(e.Traits, " AND "), e.Detail)
	}
	return fmt.Sprintf("conjunction in '%s' is impossible: %s", e.Decl, e.Detail)
}
func (e NewUnsatisfiable) Code() ErrCode    { return Unsatisfiable }
func (e NewUnsatisfiable) getStack() []byte { return e.stack }
func (e NewUnsatisfiable) withStack(stack []byte) IleError {
	e.stack = stack
	return e
}

// PassFailure is an internal fault of the analyzer itself (rather than a problem
// with the schema) caught while running a pass
type PassFailure struct {
	ast.Range
	Pass  string
	Phase int
	Cause error
	stack []byte
}

func (e PassFailure) Error() string {
	return fmt.Sprintf("internal failure in pass %s (phase %d): %v", e.Pass, e.Phase, e.Cause)
}
func (e PassFailure) Unwrap() error     { return e.Cause }
func (e PassFailure) Code() ErrCode    { return InternalFailure }
func (e PassFailure) getStack() []byte { return e.stack }
func (e PassFailure) withStack(stack []byte) IleError {
	e.stack = stack
	return e
}
