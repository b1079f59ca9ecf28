// Package cell defines the value model for the Sema assembler language.
//
// Every value that flows through the pipeline — source trees produced by the
// parser, bound trees produced by the binder, and runtime values produced by
// the virtual machine — is a [Cell]. Cells form acyclic graphs and are shared
// by reference; no operation mutates a published cell.
//
// Key components:
//   - [Cell] interface: the base interface for all values
//   - Scalar variants ([NilCell], [Boolean], [Char], [StringCell], [AtomCell], [Number])
//   - Structural variants ([List], [BTree], [BitCodeCell])
//   - Compile-time variants ([FrameReference], [Syntax], [BoundSyntax])
//   - Runtime variants ([Monad], [FrameMonadCell], [AnyCell])
//   - [Frame]: the activation record of the stack machine
//
// The binder, the compiler, the VM and the bit-code assembler all manipulate
// values exclusively through this package.
package cell

import (
	"fmt"
	"strings"
)

//nolint:revive
const (
	NIL_CELL          = "NIL"
	BOOLEAN_CELL      = "BOOLEAN"
	CHAR_CELL         = "CHAR"
	STRING_CELL       = "STRING"
	ATOM_CELL         = "ATOM"
	NUMBER_CELL       = "NUMBER"
	LIST_CELL         = "LIST"
	FRAME_REF_CELL    = "FRAME_REFERENCE"
	MONAD_CELL        = "MONAD"
	FRAME_MONAD_CELL  = "FRAME_MONAD"
	SYNTAX_CELL       = "SYNTAX"
	BOUND_SYNTAX_CELL = "BOUND_SYNTAX"
	BITCODE_CELL      = "BITCODE"
	BTREE_CELL        = "BTREE"
	ANY_CELL          = "ANY"
)

// Type represents the type of a cell.
type Type string

// Cell is the interface that wraps the basic operations of all Sema values.
// All Sema values implement this interface.
type Cell interface {
	// Type returns the type of the cell as a value of Type.
	Type() Type

	// Inspect returns a string representation of the cell.
	Inspect() string
}

// ReferenceType describes how the binder treats a use site of a value:
// as a plain value, as a monad that use sites must flat-map over, or as a
// function that returns a monad when called.
type ReferenceType int

const (
	// ValueReference is an ordinary value.
	ValueReference ReferenceType = iota

	// MonadReference is a value that should be treated as a monad.
	MonadReference

	// ReturnsMonadReference is a value that returns a monad when called.
	ReturnsMonadReference
)

// NilCell represents the nil value (also the empty list).
type NilCell struct{}

// Nil is the shared nil value.
var Nil Cell = &NilCell{}

// Type returns the type of the cell.
func (n *NilCell) Type() Type { return NIL_CELL }

// Inspect returns a string representation of the cell.
func (n *NilCell) Inspect() string { return "()" }

// IsNil reports whether a cell is the nil value.
func IsNil(c Cell) bool {
	_, ok := c.(*NilCell)
	return ok
}

// Boolean represents a boolean value. Booleans print in their literal
// form, "=t" and "=f".
type Boolean struct {
	Value bool
}

var (
	// True is the shared true value.
	True = &Boolean{Value: true}

	// False is the shared false value.
	False = &Boolean{Value: false}
)

// BooleanFor returns the shared boolean for a Go bool.
func BooleanFor(v bool) *Boolean {
	if v {
		return True
	}
	return False
}

// Type returns the type of the cell.
func (b *Boolean) Type() Type { return BOOLEAN_CELL }

// Inspect returns a string representation of the cell.
func (b *Boolean) Inspect() string {
	if b.Value {
		return "=t"
	}
	return "=f"
}

// IsTruthy reports how a cell behaves as a condition: false and nil are
// falsy, everything else is truthy.
func IsTruthy(c Cell) bool {
	switch c := c.(type) {
	case *Boolean:
		return c.Value
	case *NilCell:
		return false
	default:
		return true
	}
}

// Char represents a character value.
type Char struct {
	Value rune
}

// Type returns the type of the cell.
func (c *Char) Type() Type { return CHAR_CELL }

// Inspect returns a string representation of the cell.
func (c *Char) Inspect() string { return fmt.Sprintf("'%c'", c.Value) }

// StringCell represents a string value.
type StringCell struct {
	Value string
}

// Type returns the type of the cell.
func (s *StringCell) Type() Type { return STRING_CELL }

// Inspect returns a string representation of the cell.
func (s *StringCell) Inspect() string { return fmt.Sprintf("%q", s.Value) }

// AtomCell represents an interned identifier. Two atoms are equal exactly
// when their interned ids are equal.
type AtomCell struct {
	ID uint64
}

// Atom returns the atom cell for a name, interning the name as needed.
func Atom(name string) *AtomCell {
	return &AtomCell{ID: AtomID(name)}
}

// Type returns the type of the cell.
func (a *AtomCell) Type() Type { return ATOM_CELL }

// Inspect returns a string representation of the cell.
func (a *AtomCell) Inspect() string { return AtomName(a.ID) }

// List represents an ordered pair. A NIL-terminated cdr chain encodes a
// proper list. Lists never form cycles.
type List struct {
	Car Cell
	Cdr Cell
}

// NewList creates a pair cell.
func NewList(car, cdr Cell) *List {
	return &List{Car: car, Cdr: cdr}
}

// Type returns the type of the cell.
func (l *List) Type() Type { return LIST_CELL }

// Inspect returns a string representation of the cell.
func (l *List) Inspect() string {
	var out strings.Builder

	out.WriteString("(")
	out.WriteString(l.Car.Inspect())

	next := l.Cdr
	for {
		switch cdr := next.(type) {
		case *NilCell:
			out.WriteString(")")
			return out.String()
		case *List:
			out.WriteString(" ")
			out.WriteString(cdr.Car.Inspect())
			next = cdr.Cdr
		default:
			out.WriteString(" . ")
			out.WriteString(cdr.Inspect())
			out.WriteString(")")
			return out.String()
		}
	}
}

// FrameReference is a compile-time name resolved to a cell located on the
// current frame (FrameDepth 0) or an enclosing frame (positive FrameDepth).
type FrameReference struct {
	// CellIndex is the index of the cell within its frame.
	CellIndex int

	// FrameDepth is the number of frame boundaries between the use site and
	// the frame holding the cell.
	FrameDepth int

	// Kind informs the binder whether use sites require automatic
	// flat-mapping.
	Kind ReferenceType
}

// Type returns the type of the cell.
func (r *FrameReference) Type() Type { return FRAME_REF_CELL }

// Inspect returns a string representation of the cell.
func (r *FrameReference) Inspect() string {
	switch r.Kind {
	case MonadReference:
		return fmt.Sprintf("monadcell#(%d,%d)", r.CellIndex, r.FrameDepth)
	case ReturnsMonadReference:
		return fmt.Sprintf("monadfncell#(%d,%d)", r.CellIndex, r.FrameDepth)
	default:
		return fmt.Sprintf("cell#(%d,%d)", r.CellIndex, r.FrameDepth)
	}
}

// MonadType describes the flavor of a monad cell: its flat_map function,
// stored as a cell holding a frame monad.
type MonadType struct {
	// FlatMapFn is the flat_map function. When applied it must return a
	// monad of the same flavor, or a wrapped value.
	FlatMapFn Cell
}

// NewMonadType creates a monad type from a flat_map function cell.
func NewMonadType(flatMap Cell) *MonadType {
	return &MonadType{FlatMapFn: flatMap}
}

// Inspect returns a string representation of the monad type.
func (m *MonadType) Inspect() string {
	return fmt.Sprintf("(flat_map: %s)", m.FlatMapFn.Inspect())
}

// Monad represents a runtime-visible monadic wrapper around a value.
type Monad struct {
	Value Cell
	Monad *MonadType
}

// Type returns the type of the cell.
func (m *Monad) Type() Type { return MONAD_CELL }

// Inspect returns a string representation of the cell.
func (m *Monad) Inspect() string {
	return fmt.Sprintf("monad#%s#%s", m.Value.Inspect(), m.Monad.Inspect())
}

// FrameMonad is a function callable by the stack machine. Argument parsing
// is the function's own responsibility: the caller places the argument list
// in cell 0 of the frame before resolving.
type FrameMonad interface {
	// Resolve runs the function against a frame.
	Resolve(frame *Frame) (Cell, error)

	// Description returns a string shown when the value is displayed.
	Description() string
}

// MonadReturning is implemented by frame monads whose return value should be
// treated as a monad by the binder.
type MonadReturning interface {
	ReturnsMonad() bool
}

// FrameMonadCell wraps a frame monad as a value.
type FrameMonadCell struct {
	Fn FrameMonad
}

// Type returns the type of the cell.
func (f *FrameMonadCell) Type() Type { return FRAME_MONAD_CELL }

// Inspect returns a string representation of the cell.
func (f *FrameMonadCell) Inspect() string { return f.Fn.Description() }

// FnReturnsMonad reports whether a frame monad flags its return value as a
// monad.
func FnReturnsMonad(fn FrameMonad) bool {
	if r, ok := fn.(MonadReturning); ok {
		return r.ReturnsMonad()
	}
	return false
}

// SyntaxBinder is the narrow view of a syntax compiler needed by the value
// model: a description for display and the reference type of an expression
// headed by the syntax. The binding layer asserts the full compiler
// interface at its point of use.
type SyntaxBinder interface {
	Description() string

	// ReferenceType returns the reference kind of an invocation of this
	// syntax with the given (unbound) arguments.
	ReferenceType(args Cell) ReferenceType
}

// Syntax represents an unresolved syntactic keyword reference: a binder plus
// a parameter cell the binder can use to carry state (for user-defined
// syntax, the user-visible pattern table).
type Syntax struct {
	Binder SyntaxBinder
	Param  Cell
}

// Type returns the type of the cell.
func (s *Syntax) Type() Type { return SYNTAX_CELL }

// Inspect returns a string representation of the cell.
func (s *Syntax) Inspect() string {
	return fmt.Sprintf("compile#%s#%s", s.Binder.Description(), s.Param.Inspect())
}

// BoundCompiler is the narrow view of a resolved syntax invocation awaiting
// code generation. The compile step asserts the full action-generating
// interface at its point of use.
type BoundCompiler interface {
	Description() string

	// ReferenceType returns the reference kind of the generated expression.
	ReferenceType() ReferenceType

	// SubstituteFrameRefs rewrites the frame references captured by the
	// compiler, returning a new compiler. Used when bound trees are copied
	// between frames (macro expansion, monad lifting).
	SubstituteFrameRefs(sub func(FrameReference) Cell) BoundCompiler
}

// BoundSyntax represents a resolved syntax invocation, awaiting code
// generation.
type BoundSyntax struct {
	Compiler BoundCompiler
}

// Type returns the type of the cell.
func (b *BoundSyntax) Type() Type { return BOUND_SYNTAX_CELL }

// Inspect returns a string representation of the cell.
func (b *BoundSyntax) Inspect() string { return b.Compiler.Description() }

// AnyCell is an opaque runtime box. Kernel types that are not part of the
// cell union proper (such as the bit-emission monad and label handles) are
// stored in this variant.
type AnyCell struct {
	Value any
}

// Type returns the type of the cell.
func (a *AnyCell) Type() Type { return ANY_CELL }

// Inspect returns a string representation of the cell.
func (a *AnyCell) Inspect() string { return fmt.Sprintf("any#%p", a.Value) }

// RefTypeOf computes the reference kind of a cell as seen by the binder.
//
// Calling something that returns a monad evaluates to a monad; "calling" a
// monad evaluates to a function that returns a monad (the bind of a monad is
// a function of its value).
func RefTypeOf(c Cell) ReferenceType {
	switch c := c.(type) {
	case *Monad:
		return MonadReference
	case *FrameReference:
		return c.Kind
	case *FrameMonadCell:
		if FnReturnsMonad(c.Fn) {
			return ReturnsMonadReference
		}
		return ValueReference
	case *BoundSyntax:
		return c.Compiler.ReferenceType()
	case *List:
		if syntax, ok := c.Car.(*Syntax); ok {
			return syntax.Binder.ReferenceType(c.Cdr)
		}
		switch RefTypeOf(c.Car) {
		case ReturnsMonadReference:
			return MonadReference
		case MonadReference:
			return ReturnsMonadReference
		default:
			return ValueReference
		}
	default:
		return ValueReference
	}
}
