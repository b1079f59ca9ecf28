package bind

import (
	"fmt"

	"github.com/dr8co/sema/cell"
)

// ErrorCode identifies a class of binding error.
type ErrorCode string

// Binding error codes. Binding errors abort the current top-level statement;
// previously committed bindings remain.
const (
	UNKNOWN_SYMBOL          ErrorCode = "unknown-symbol"              //nolint:revive
	UNBOUND_SYMBOL          ErrorCode = "unbound-symbol"              //nolint:revive
	CONSTANTS_NOT_CALLABLE  ErrorCode = "constants-cannot-be-called"  //nolint:revive
	ARGUMENTS_NOT_SUPPLIED  ErrorCode = "arguments-were-not-supplied" //nolint:revive
	MISSING_ARGUMENT        ErrorCode = "missing-argument"            //nolint:revive
	TOO_MANY_ARGUMENTS      ErrorCode = "too-many-arguments"          //nolint:revive
	VARIABLES_MUST_BE_ATOMS ErrorCode = "variables-must-be-atoms"     //nolint:revive
	SYNTAX_EXPECTING_LIST   ErrorCode = "syntax-expecting-list"       //nolint:revive
	SYNTAX_EXPECTING_ATOM   ErrorCode = "syntax-expecting-atom"       //nolint:revive
	SYNTAX_MATCH_FAILED     ErrorCode = "syntax-match-failed"         //nolint:revive
	SYNTAX_MISSING_BRACKET  ErrorCode = "syntax-missing-bracket"      //nolint:revive
	FORWARD_REFERENCE       ErrorCode = "forward-reference-not-allowed" //nolint:revive
	CANNOT_EXTEND_SYNTAX    ErrorCode = "cannot-extend-syntax"        //nolint:revive
	CELL_IN_OTHER_FRAME     ErrorCode = "cannot-load-cell-in-other-frame" //nolint:revive
)

// Error is a typed binding error carrying the offending cell or symbol name
// where one exists.
type Error struct {
	Code   ErrorCode
	Cell   cell.Cell
	Detail string
}

// Error implements the error interface.
func (e *Error) Error() string {
	switch {
	case e.Cell != nil && e.Detail != "":
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.Detail, e.Cell.Inspect())
	case e.Cell != nil:
		return fmt.Sprintf("%s: %s", e.Code, e.Cell.Inspect())
	case e.Detail != "":
		return fmt.Sprintf("%s: %s", e.Code, e.Detail)
	default:
		return string(e.Code)
	}
}

// NewError creates a binding error for a cell.
func NewError(code ErrorCode, c cell.Cell) *Error {
	return &Error{Code: code, Cell: c}
}

// Errorf creates a binding error with a formatted detail message.
func Errorf(code ErrorCode, format string, args ...any) *Error {
	return &Error{Code: code, Detail: fmt.Sprintf(format, args...)}
}
