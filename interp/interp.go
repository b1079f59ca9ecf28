// Package interp drives the compile-and-evaluate pipeline: it owns the
// top-level frame and bindings, installs the standard environment, and
// evaluates parsed statement lists through pre-bind, bind, compile and the
// VM. It also implements the file import mechanism.
package interp

import (
	"github.com/dr8co/sema/bind"
	"github.com/dr8co/sema/bitcode"
	"github.com/dr8co/sema/cell"
	"github.com/dr8co/sema/code"
	"github.com/dr8co/sema/functions"
	"github.com/dr8co/sema/lexer"
	"github.com/dr8co/sema/library"
	"github.com/dr8co/sema/parser"
	"github.com/dr8co/sema/syntax"
	"github.com/dr8co/sema/vm"
)

// Session holds the state that persists across top-level statements: the
// global frame and the symbol bindings.
type Session struct {
	Frame    *cell.Frame
	Bindings *bind.SymbolBindings
}

// NewSession creates a session with the standard environment installed.
func NewSession() *Session {
	b := bind.NewBindings()
	syntax.Install(b)
	functions.Install(b)
	bitcode.Install(b)

	b.SetSymbol(cell.AtomID("built_ins"), library.BuiltIns())

	frame := cell.NewFrame(b.NumCells(), nil)
	return &Session{Frame: frame, Bindings: b}
}

// Eval parses and evaluates a source string, returning the value of the
// final statement.
func (s *Session) Eval(source string) (cell.Cell, error) {
	p := parser.New(lexer.New(source))
	statements, err := p.ParseProgram()
	if err != nil {
		return nil, err
	}
	return s.EvalStatements(statements, cell.Nil)
}

// EvalStatements evaluates a list of parsed statements against the
// session's frame and bindings. When any statement evaluates to a monad,
// the statement results are combined monadically: non-monad results are
// wrapped, and each result sequences with the previous via the monad's
// flat_map. The initial value is `monad` (pass nil or cell.Nil for none).
func (s *Session) EvalStatements(statements cell.Cell, monad cell.Cell) (cell.Cell, error) {
	return s.evalWithBindings(statements, monad, s.Bindings)
}

func (s *Session) evalWithBindings(statements cell.Cell, monad cell.Cell, b *bind.SymbolBindings) (cell.Cell, error) {
	if monad == nil {
		monad = cell.Nil
	}

	items, ok := cell.ListToSlice(statements)
	if !ok {
		return nil, bind.NewError(bind.SYNTAX_EXPECTING_LIST, statements)
	}

	// Pre-bind everything first so forward references resolve.
	for _, statement := range items {
		bind.PreBindStatement(statement, b)
	}

	// Bind and compile each statement. Imports run during binding because
	// they introduce bindings; their value is carried through precomputed.
	type pendingStatement struct {
		actions       code.Compiled
		precomputed   cell.Cell
		isPrecomputed bool
	}

	monadicResult := cell.RefTypeOf(monad) == cell.MonadReference
	pending := make([]pendingStatement, 0, len(items))

	for _, statement := range items {
		if handled, result, err := s.maybeImport(statement, b); handled {
			if err != nil {
				return nil, err
			}
			pending = append(pending, pendingStatement{precomputed: result, isPrecomputed: true})
			continue
		}

		bound, err := bind.BindStatement(statement, b)
		if err != nil {
			return nil, err
		}
		if cell.RefTypeOf(bound) == cell.MonadReference {
			monadicResult = true
		}

		actions, err := bind.CompileStatement(bound)
		if err != nil {
			return nil, err
		}
		pending = append(pending, pendingStatement{actions: actions})
	}

	// Execute.
	result := monad

	for _, item := range pending {
		s.Frame.Allocate(b.NumCells())

		var exprResult cell.Cell
		if item.isPrecomputed {
			exprResult = item.precomputed
		} else {
			value, err := vm.Exec(item.actions.ToActions(), s.Frame)
			if err != nil {
				return nil, err
			}
			exprResult = value
		}

		if monadicResult {
			exprMonad, ok := exprResult.(*cell.Monad)
			if !ok {
				exprMonad = vm.WrapValue(exprResult)
			}

			prior, ok := result.(*cell.Monad)
			if !ok {
				result = exprMonad
				continue
			}

			combined, err := vm.NextMonad(prior, exprMonad, s.Frame)
			if err != nil {
				return nil, err
			}
			result = combined
		} else {
			result = exprResult
		}
	}

	return result, nil
}
