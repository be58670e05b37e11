package domain

import (
	"errors"
	"fmt"
)

// ErrAborted is returned when the operator stops a session.
var ErrAborted = errors.New("session aborted by operator")

// LoadError reports an unusable stimulus file. Line is 0 for file-level problems.
type LoadError struct {
	Path   string
	Line   int
	Reason string
	Err    error
}

func (e *LoadError) Error() string {
	msg := e.Reason
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", e.Reason, e.Err)
	}
	if e.Line > 0 {
		return fmt.Sprintf("load %s:%d: %s", e.Path, e.Line, msg)
	}
	return fmt.Sprintf("load %s: %s", e.Path, msg)
}

func (e *LoadError) Unwrap() error { return e.Err }

// WriteError reports a result that could not be persisted. It ends the session.
type WriteError struct {
	Path string
	Op   string
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("write %s (%s): %v", e.Path, e.Op, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }
