package extraction

import "fmt"

// Error represents a failure to extract text from an uploaded document.
// The public message is fixed; the original parser diagnostic is retained
// only as the wrapped cause, for logging.
type Error struct {
	Cause error
}

func (e *Error) Error() string {
	return "failed to extract text"
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// UnsupportedTypeError indicates an upload with a declared MIME type the
// extractor does not handle.
type UnsupportedTypeError struct {
	Mime string
}

func (e *UnsupportedTypeError) Error() string {
	return fmt.Sprintf("unsupported file type: %s", e.Mime)
}
