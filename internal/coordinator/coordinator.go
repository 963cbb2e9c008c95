// Package coordinator drives inverter polls and classifies their failures.
package coordinator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/resident-x/go-solarmax/internal/domain"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// persistentFailureThreshold is the number of daytime failures after which
// a connection problem is reported as persistent.
const persistentFailureThreshold = 3

// FailureState is the bookkeeping carried from one poll to the next.
type FailureState struct {
	ConsecutiveFailures  int       `json:"consecutive_failures"`
	ExpectedOffline      bool      `json:"expected_offline"`
	LastSuccessfulUpdate time.Time `json:"last_successful_update"`
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithSunPosition sets the day/night signal used to classify failures.
func WithSunPosition(provider domain.SunPositionProvider) Option {
	return func(c *Coordinator) {
		c.sun = provider
	}
}

// WithLocation sets the time zone of the clock fallback.
func WithLocation(loc *time.Location) Option {
	return func(c *Coordinator) {
		c.location = loc
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(c *Coordinator) {
		c.now = now
	}
}

// Coordinator polls one inverter and tracks consecutive failures.
//
// Poll must not be called concurrently; the caller schedules polls one at a time.
type Coordinator struct {
	api      domain.InverterClient
	sun      domain.SunPositionProvider
	location *time.Location
	now      func() time.Time
	state    FailureState
	logger   zerolog.Logger
}

// New creates a coordinator for api.
func New(api domain.InverterClient, opts ...Option) *Coordinator {
	c := &Coordinator{
		api:      api,
		location: time.Local,
		now:      time.Now,
		logger:   log.With().Str("component", "coordinator").Logger(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Poll fetches one snapshot. Every failure is returned as *domain.UpdateFailed.
func (c *Coordinator) Poll(ctx context.Context) (domain.DataSnapshot, error) {
	next := c.state

	snapshot, err := c.api.GetData(ctx)
	if err == nil && len(snapshot) == 0 {
		err = domain.ErrNoData
	}

	if err == nil {
		next = FailureState{LastSuccessfulUpdate: c.now()}
		c.state = next

		c.logger.Debug().Int("fields", len(snapshot)).Msg("Successfully updated data from inverter")
		return snapshot, nil
	}

	next.ConsecutiveFailures++

	var failure *domain.UpdateFailed
	if errors.Is(err, domain.ErrConnection) {
		night := c.isNightTime()
		next.ExpectedOffline = night
		failure = c.connectionFailure(next.ConsecutiveFailures, night, err)
	} else {
		next.ExpectedOffline = false
		c.logger.Error().Err(err).Int("failures", next.ConsecutiveFailures).
			Msg("Unexpected error communicating with inverter")
		failure = &domain.UpdateFailed{Message: fmt.Sprintf("unexpected error: %v", err), Err: err}
	}

	c.state = next
	return nil, failure
}

// connectionFailure logs a transport failure at a severity matching its context.
func (c *Coordinator) connectionFailure(failures int, night bool, err error) *domain.UpdateFailed {
	switch {
	case night:
		c.logger.Debug().Err(err).Msg("Inverter offline during night time (expected)")
		return &domain.UpdateFailed{Message: fmt.Sprintf("inverter offline (night time): %v", err), Err: err}

	case failures <= persistentFailureThreshold:
		c.logger.Warn().Err(err).Int("failures", failures).Msg("Connection failure during day time")
		return &domain.UpdateFailed{
			Message: fmt.Sprintf("connection failed (attempt %d): %v", failures, err),
			Err:     err,
		}

	default:
		c.logger.Error().Err(err).Int("failures", failures).Msg("Persistent connection failure during day time")
		return &domain.UpdateFailed{Message: fmt.Sprintf("persistent connection failure: %v", err), Err: err}
	}
}

// State returns the failure bookkeeping after the last poll.
func (c *Coordinator) State() FailureState {
	return c.state
}

// ConsecutiveFailures returns the number of failed polls since the last success.
func (c *Coordinator) ConsecutiveFailures() int {
	return c.state.ConsecutiveFailures
}

// IsExpectedOffline reports whether the last failure happened at night.
func (c *Coordinator) IsExpectedOffline() bool {
	return c.state.ExpectedOffline
}

// LastSuccessfulUpdate returns the time of the last successful poll, zero if none.
func (c *Coordinator) LastSuccessfulUpdate() time.Time {
	return c.state.LastSuccessfulUpdate
}

// LastSuccessfulConnection returns the inverter's last successful data exchange.
func (c *Coordinator) LastSuccessfulConnection() time.Time {
	return c.api.LastSuccessfulConnection()
}
