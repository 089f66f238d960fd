package optimizer

// Error represents a failure of the remote optimizer pipeline. Network and
// service errors are collapsed into this single kind; the cause is kept for
// logging only.
type Error struct {
	Cause error
}

func (e *Error) Error() string {
	return "optimizer request failed"
}

func (e *Error) Unwrap() error {
	return e.Cause
}
