package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for classifying inverter failures with errors.Is.
var (
	ErrConnection = errors.New("connection error")
	ErrTimeout    = errors.New("timeout")
	ErrNoData     = errors.New("no data received from inverter")
)

// ConnectionError is a failure talking to the inverter.
// A timeout is a ConnectionError too: errors.Is matches ErrConnection for
// every ConnectionError and ErrTimeout only for timeouts.
type ConnectionError struct {
	Op      string
	Addr    string
	Err     error
	timeout bool
}

// NewConnectionError creates a non-timeout connection error.
func NewConnectionError(op, addr string, err error) *ConnectionError {
	return &ConnectionError{Op: op, Addr: addr, Err: err}
}

// NewTimeoutError creates a connection error classified as a timeout.
func NewTimeoutError(op, addr string, err error) *ConnectionError {
	return &ConnectionError{Op: op, Addr: addr, Err: err, timeout: true}
}

// Error implements the error interface.
func (e *ConnectionError) Error() string {
	kind := ErrConnection.Error()
	if e.timeout {
		kind = ErrTimeout.Error()
	}
	if e.Err == nil {
		return fmt.Sprintf("%s %s: %s", e.Op, e.Addr, kind)
	}
	return fmt.Sprintf("%s %s: %s: %v", e.Op, e.Addr, kind, e.Err)
}

// Timeout reports whether the failure was a timeout.
func (e *ConnectionError) Timeout() bool {
	return e.timeout
}

// Unwrap returns the underlying cause.
func (e *ConnectionError) Unwrap() error {
	return e.Err
}

// Is matches the classification sentinels.
func (e *ConnectionError) Is(target error) bool {
	switch target {
	case ErrConnection:
		return true
	case ErrTimeout:
		return e.timeout
	}
	return false
}

// UpdateFailed is the single failure kind returned by a poll cycle.
type UpdateFailed struct {
	Message string
	Err     error
}

// Error implements the error interface.
func (e *UpdateFailed) Error() string {
	return e.Message
}

// Unwrap returns the underlying cause.
func (e *UpdateFailed) Unwrap() error {
	return e.Err
}
