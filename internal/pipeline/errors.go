package pipeline

import "fmt"

// TransportError wraps a download or extraction failure. It aborts the
// current agency task, never the run.
type TransportError struct {
	Source string
	Err    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport failure for %s: %v", e.Source, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// ParseError wraps a malformed csv stream.
type ParseError struct {
	File string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse failure in %s.txt: %v", e.File, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// ValidationError reports an unusable agency descriptor. It is raised while
// expanding the configuration, before anything is enqueued.
type ValidationError struct {
	Key    string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Key == "" {
		return "invalid agency descriptor: " + e.Reason
	}
	return fmt.Sprintf("invalid agency descriptor %q: %s", e.Key, e.Reason)
}
