package lidar

import (
	"errors"
	"fmt"
)

var (
	// ErrStreamActive is returned for commands issued while a continuous
	// measurement is armed. Stop the stream first.
	ErrStreamActive = errors.New("continuous measurement in progress")

	// ErrScansRunning is returned by Stream.Stop while the goroutine
	// started by Stream.Scans has not finished. Cancel its context and
	// drain the channel first.
	ErrScansRunning = errors.New("stream is still read by Scans")

	// ErrClockDrift is returned by Clock.Time when a converted timestamp
	// is further from the local clock than the configured tolerance.
	ErrClockDrift = errors.New("sensor clock drifted beyond tolerance")

	// ErrNotSynchronized is returned by Clock.Time before the first
	// successful time synchronization.
	ErrNotSynchronized = errors.New("sensor clock not synchronized")
)

// StateError indicates that the sensor is in a state the requested
// operation cannot start from.
type StateError struct {
	Operation string
	Code      string
	State     string
}

func (e *StateError) Error() string {
	return fmt.Sprintf("%s: unexpected laser state %s (%s)", e.Operation, e.Code, e.State)
}

// RebootError indicates that one step of the two-step reboot sequence got
// an unexpected status.
type RebootError struct {
	Step     int
	Expected string
	Actual   string
}

func (e *RebootError) Error() string {
	return fmt.Sprintf("reboot step %d: got status %s, expected %s", e.Step, e.Actual, e.Expected)
}
