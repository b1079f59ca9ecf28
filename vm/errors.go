package vm

import (
	"fmt"

	"github.com/dr8co/sema/cell"
)

// ErrorCode identifies a class of runtime error.
type ErrorCode string

// Runtime error codes. Runtime errors abort the current top-level statement
// and leave the calling frame intact.
const (
	NOT_A_FUNCTION       ErrorCode = "not-a-function"       //nolint:revive
	TYPE_MISMATCH        ErrorCode = "type-mismatch"        //nolint:revive
	STACK_IS_EMPTY       ErrorCode = "stack-is-empty"       //nolint:revive
	NOT_A_MONAD          ErrorCode = "not-a-monad"          //nolint:revive
	MISMATCHED_MONAD     ErrorCode = "mismatched-monad"     //nolint:revive
	NOT_A_LABEL          ErrorCode = "not-a-label"          //nolint:revive
	NOT_A_NUMBER         ErrorCode = "not-a-number"         //nolint:revive
	NOT_A_BTREE          ErrorCode = "not-a-btree"          //nolint:revive
	NOT_BITCODE          ErrorCode = "not-bitcode"          //nolint:revive
	BEFORE_START_OF_FILE ErrorCode = "before-start-of-file" //nolint:revive
	TOO_MANY_PASSES      ErrorCode = "too-many-passes"      //nolint:revive
	LABELS_IN_ASSEMBLY   ErrorCode = "cannot-allocate-labels-during-assembly" //nolint:revive
	TOO_MANY_ARGUMENTS   ErrorCode = "too-many-arguments"   //nolint:revive
	NOT_ENOUGH_ARGUMENTS ErrorCode = "not-enough-arguments" //nolint:revive
	CANNOT_COMPARE       ErrorCode = "cannot-compare"       //nolint:revive
	CELL_OUT_OF_BOUNDS   ErrorCode = "cell-out-of-bounds"   //nolint:revive
	IO_ERROR             ErrorCode = "io-error"             //nolint:revive
	FILE_NOT_FOUND       ErrorCode = "file-not-found"       //nolint:revive
)

// Error is a typed runtime error carrying the offending cell where one
// exists.
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

// NewError creates a runtime error for a cell.
func NewError(code ErrorCode, c cell.Cell) *Error {
	return &Error{Code: code, Cell: c}
}

// Errorf creates a runtime error with a formatted detail message.
func Errorf(code ErrorCode, format string, args ...any) *Error {
	return &Error{Code: code, Detail: fmt.Sprintf(format, args...)}
}
