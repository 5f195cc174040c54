package reference

import "fmt"

// MalformedReferenceError is returned when a reference string cannot be split
// into book, chapter and verse parts, or when its verse part is not a valid list.
type MalformedReferenceError struct {
	Input  string
	Reason string
	Err    error
}

func (e *MalformedReferenceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("malformed reference %q: %s: %v", e.Input, e.Reason, e.Err)
	}
	return fmt.Sprintf("malformed reference %q: %s", e.Input, e.Reason)
}

func (e *MalformedReferenceError) Unwrap() error { return e.Err }

// UnknownBookError is returned when the book token is not in the 66-book catalog.
type UnknownBookError struct {
	Book string
}

func (e *UnknownBookError) Error() string {
	return fmt.Sprintf("unknown book %q", e.Book)
}

func malformed(input, reason string, err error) error {
	return &MalformedReferenceError{Input: input, Reason: reason, Err: err}
}
