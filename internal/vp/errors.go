package vp

import (
	"errors"
	"strings"
)

// Error kinds for topology updates.
var (
	// ErrBadProperty indicates a requested value that is arithmetically
	// inconsistent with the process topology.
	ErrBadProperty = errors.New("vp: bad property")

	// ErrPreconditions indicates a topology change forbidden by current
	// kernel state.
	ErrPreconditions = errors.New("vp: kernel state forbids thread change")
)

// PropertyError reports an invalid requested value. The prior configuration
// is left untouched; the caller may retry with corrected values.
type PropertyError struct {
	Property string
	Reason   string
}

func (e *PropertyError) Error() string {
	return "bad property " + e.Property + ": " + e.Reason
}

func (e *PropertyError) Unwrap() error {
	return ErrBadProperty
}

// GateError reports every precondition violated by a topology change, not
// just the first, so the caller does not discover them one retry at a time.
type GateError struct {
	Violations []string
}

func (e *GateError) Error() string {
	var b strings.Builder
	b.WriteString("number of threads unchanged, error conditions:")
	for _, v := range e.Violations {
		b.WriteString(" ")
		b.WriteString(v)
		b.WriteString(".")
	}
	return b.String()
}

func (e *GateError) Unwrap() error {
	return ErrPreconditions
}
