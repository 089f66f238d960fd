package workflow

import (
	"errors"
	"fmt"
)

// ErrBusy indicates an upload or submission is already in flight. The
// original interface silently let a second upload win the shared state; here
// concurrent operations are rejected instead.
var ErrBusy = errors.New("another operation is in progress")

// ErrAborted indicates an in-flight operation was discarded because the
// machine was reset underneath it.
var ErrAborted = errors.New("operation aborted by reset")

// ErrNoResult indicates a view or export was requested before any
// optimization result exists. The request is a no-op.
var ErrNoResult = errors.New("no optimization result available")

// FileTypeError indicates a file whose declared type is not PDF was
// selected. The current state is left unchanged.
type FileTypeError struct {
	Mime string
}

func (e *FileTypeError) Error() string {
	return fmt.Sprintf("rejected file of type %q: only application/pdf is accepted", e.Mime)
}

// ValidationError indicates a submission with missing or blank inputs. No
// optimizer call is made and the state is unchanged.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}
