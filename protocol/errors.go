package protocol

import (
	"errors"
	"fmt"
)

// ChecksumError indicates that a line's checksum character does not match
// the checksum computed over the preceding characters.
type ChecksumError struct {
	// Line is the offending line, checksum included
	Line string

	// Expected is the computed checksum
	Expected byte

	// Actual is the checksum character received
	Actual byte
}

func (e *ChecksumError) Error() string {
	if e.Expected == 0 && e.Actual == 0 {
		return fmt.Sprintf("checksum mismatch: line %q too short to carry a checksum", e.Line)
	}
	return fmt.Sprintf("checksum mismatch in line %q: expected %q, got %q", e.Line, e.Expected, e.Actual)
}

// DesyncError indicates that the response stream no longer lines up with
// the command exchange: wrong echo, lost frame terminator, malformed
// payload or a frame arriving when none was expected. Callers should
// consider reconnecting.
type DesyncError struct {
	// Expected describes what the reader was waiting for (may be empty)
	Expected string

	// Got is the line or data actually received (may be empty)
	Got string

	// Reason is a short description of the failure
	Reason string
}

func (e *DesyncError) Error() string {
	msg := "protocol desynchronized: " + e.Reason
	if e.Expected != "" {
		msg += fmt.Sprintf(" (expected %q, got %q)", e.Expected, e.Got)
	} else if e.Got != "" {
		msg += fmt.Sprintf(" (got %q)", e.Got)
	}
	return msg
}

// StatusError represents a non-success status returned by the sensor.
type StatusError struct {
	// Operation is the client operation that failed
	Operation string

	// Command is the command mnemonic the status belongs to
	Command string

	// Code is the two-character status code
	Code string
}

func (e *StatusError) Error() string {
	op := e.Operation
	if op == "" {
		op = e.Command
	}
	return fmt.Sprintf("%s failed: %s (%s)", op, e.Description(), e.Code)
}

// Description returns the human-readable status description from the
// status table.
func (e *StatusError) Description() string {
	return LookupStatus(e.Command, e.Code).Description
}

// TransportError wraps an error returned by the transport. The wrapped
// error is kept unchanged and is reachable through errors.Is and errors.As.
type TransportError struct {
	// Op is "read" or "write"
	Op string

	// Err is the transport error
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// IsChecksumError returns true if err is or wraps a *ChecksumError.
func IsChecksumError(err error) bool {
	var target *ChecksumError
	return errors.As(err, &target)
}

// IsDesyncError returns true if err is or wraps a *DesyncError.
func IsDesyncError(err error) bool {
	var target *DesyncError
	return errors.As(err, &target)
}

// IsStatusError returns true if err is or wraps a *StatusError.
func IsStatusError(err error) bool {
	var target *StatusError
	return errors.As(err, &target)
}

// IsTransportError returns true if err is or wraps a *TransportError.
func IsTransportError(err error) bool {
	var target *TransportError
	return errors.As(err, &target)
}
