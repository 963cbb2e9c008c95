// Package domain provides core domain models and interfaces for the go-solarmax application
package domain

import (
	"context"
	"time"
)

// ScaledReading is one decoded telemetry value together with the raw integer it came from.
type ScaledReading struct {
	Value    float64 `json:"value"`
	RawValue uint64  `json:"raw_value"`
}

// DataSnapshot maps field codes to the readings produced by one successful poll.
// A snapshot is never mutated once returned; use Clone to derive a modified copy.
type DataSnapshot map[FieldCode]ScaledReading

// Clone returns a copy of the snapshot.
func (s DataSnapshot) Clone() DataSnapshot {
	if s == nil {
		return nil
	}
	out := make(DataSnapshot, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// Value returns the scaled value of a field and whether it was present.
func (s DataSnapshot) Value(code FieldCode) (float64, bool) {
	r, ok := s[code]
	return r.Value, ok
}

// InverterClient is the collaborator-facing surface of an inverter connection.
type InverterClient interface {
	// TestConnection reports whether the inverter answers a minimal request. It never fails.
	TestConnection(ctx context.Context) bool

	// GetData polls every known field and returns the decoded snapshot
	GetData(ctx context.Context) (DataSnapshot, error)

	// LastSuccessfulConnection returns the time of the last successful GetData, zero if none.
	LastSuccessfulConnection() time.Time
}

// SunPositionProvider is an external day/night signal.
type SunPositionProvider interface {
	// IsBelowHorizon reports whether the sun is below the horizon.
	// known is false when the provider has no answer yet.
	IsBelowHorizon() (below bool, known bool)
}

// StateUpdate is the outcome of one poll cycle as handed to publishers.
type StateUpdate struct {
	Timestamp            time.Time
	Success              bool
	Snapshot             DataSnapshot
	ExpectedOffline      bool
	ConsecutiveFailures  int
	LastSuccessfulUpdate time.Time
	Error                string
}

// UnavailableAfterFailures is the number of consecutive daytime failures the
// measurement sensors ride out with their last values.
const UnavailableAfterFailures = 5

// Available reports whether the measurement sensors should be shown as available.
// Expected-offline failures make them unavailable at once.
func (u *StateUpdate) Available() bool {
	if u.Success {
		return true
	}
	return !u.ExpectedOffline && u.ConsecutiveFailures <= UnavailableAfterFailures
}

// MessagePublisher defines the interface for publishing poll results.
type MessagePublisher interface {
	// Connect establishes a connection to the messaging system
	Connect(ctx context.Context) error

	// Publish sends the outcome of a poll cycle
	Publish(ctx context.Context, update *StateUpdate) error

	// Close terminates the connection to the messaging system
	Close() error
}

// MonitoringService defines the interface for external monitoring services.
type MonitoringService interface {
	// Send publishes a snapshot to the monitoring service
	Send(ctx context.Context, snapshot DataSnapshot) error

	// Connect establishes a connection to the service
	Connect() error

	// Close terminates the connection to the service
	Close() error
}

// ConnectionStats counts transport activity against the inverter.
type ConnectionStats struct {
	ConnectionAttempts int64 `json:"connection_attempts"`
	ConnectionErrors   int64 `json:"connection_errors"`
	TimeoutErrors      int64 `json:"timeout_errors"`
	BytesSent          int64 `json:"bytes_sent"`
	BytesReceived      int64 `json:"bytes_received"`
}

// ValidationStats counts plausibility checks on inverter responses.
type ValidationStats struct {
	ValidationsPerformed int64  `json:"validations_performed"`
	ErrorsFound          int64  `json:"errors_found"`
	WarningsFound        int64  `json:"warnings_found"`
	Level                string `json:"validation_level"`
}

// StateReader exposes the current device state to readers outside the poll loop.
type StateReader interface {
	Current() DeviceState
}
