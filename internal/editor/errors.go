package editor

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidInstruction is returned for empty or whitespace-only instructions.
	// No interpreter call is made.
	ErrInvalidInstruction = errors.New("instruction is empty")

	// ErrNothingToUndo is returned when the cursor is at the original upload.
	ErrNothingToUndo = errors.New("nothing to undo")

	// ErrNothingToRedo is returned when the cursor is at the newest record.
	ErrNothingToRedo = errors.New("nothing to redo")

	// ErrInterpreterFailure matches every *InterpreterError.
	ErrInterpreterFailure = errors.New("instruction interpreter failed")

	// ErrSessionBusy is returned for mutations attempted while an edit is in flight.
	ErrSessionBusy = errors.New("an edit is already in progress for this session")

	// ErrCorruptHistory is returned when restoring records that do not chain.
	ErrCorruptHistory = errors.New("edit history does not chain")

	errEmptyProposal = errors.New("interpreter returned an empty document")
)

// InterpreterError carries the cause of a failed ProposeEdit call.
// Session state is never modified when one is returned.
type InterpreterError struct {
	Instruction string
	Err         error
}

func (e *InterpreterError) Error() string {
	return fmt.Sprintf("interpreting %q: %v", e.Instruction, e.Err)
}

func (e *InterpreterError) Unwrap() error { return e.Err }

// Is lets callers test with errors.Is(err, ErrInterpreterFailure).
func (e *InterpreterError) Is(target error) bool {
	return target == ErrInterpreterFailure
}
