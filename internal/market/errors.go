package market

import (
	"errors"
	"fmt"
)

// ErrBusy rejects an attempt requested while another one is in flight.
// Rejected attempts are dropped, never queued.
var ErrBusy = errors.New("another transaction is already in flight")

// ValidationError reports malformed user input caught before any ledger
// call is made.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// LoadError reports an aborted catalog rebuild. The store keeps its
// prior view; nothing partial is ever published.
type LoadError struct {
	View string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("catalog %s rebuild failed: %v", e.View, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }
