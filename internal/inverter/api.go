// Package inverter implements the request/response exchange with a Solarmax inverter.
package inverter

import (
	"context"
	"sync"
	"time"

	"github.com/resident-x/go-solarmax/internal/domain"
	"github.com/resident-x/go-solarmax/internal/protocol"
	"github.com/resident-x/go-solarmax/internal/transport"
	"github.com/resident-x/go-solarmax/internal/validation"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	// getDataAttempts is the number of full connect/request cycles per GetData call.
	getDataAttempts = 3
	// connectRetries is the connect budget of each cycle.
	connectRetries = 2
	// testConnectionTimeout bounds the read of a connection test.
	testConnectionTimeout = 2 * time.Second
)

// Option configures an API.
type Option func(*API)

// WithValidator logs plausibility findings for every response.
func WithValidator(v *validation.Validator) Option {
	return func(a *API) {
		a.validator = v
	}
}

// WithSleeper replaces the wait between GetData attempts.
func WithSleeper(sleep transport.SleepFunc) Option {
	return func(a *API) {
		a.sleep = sleep
	}
}

// WithFields limits the fields requested by GetData.
func WithFields(fields []domain.FieldCode) Option {
	return func(a *API) {
		a.fields = fields
	}
}

// API reads telemetry from one inverter.
type API struct {
	client    *transport.Client
	validator *validation.Validator
	fields    []domain.FieldCode
	sleep     transport.SleepFunc
	logger    zerolog.Logger

	lastSuccess time.Time
	mutex       sync.RWMutex
}

// NewAPI creates an inverter API on top of a transport client.
func NewAPI(client *transport.Client, opts ...Option) *API {
	a := &API{
		client: client,
		fields: domain.FieldCodes(domain.InverterFields),
		sleep:  transport.SleepContext,
		logger: log.With().Str("component", "inverter").Str("address", client.Addr()).Logger(),
	}

	for _, opt := range opts {
		opt(a)
	}

	return a
}

// TestConnection sends a single-field request and reports whether anything came back.
func (a *API) TestConnection(ctx context.Context) bool {
	conn, err := a.client.Connect(ctx, 1)
	if err != nil {
		a.logger.Debug().Err(err).Msg("Connection test failed to connect")
		return false
	}
	defer a.client.Close(conn)

	request := protocol.BuildRequest([]domain.FieldCode{domain.FieldPAC})
	response, err := a.client.SendAndReceive(conn, request, testConnectionTimeout)
	if err != nil {
		a.logger.Debug().Err(err).Msg("Connection test got no response")
		return false
	}

	return response != ""
}

// GetData polls all configured fields.
// It makes up to three connect/request cycles, waiting 2s and then 3s between them.
func (a *API) GetData(ctx context.Context) (domain.DataSnapshot, error) {
	if err := protocol.CheckRequestFields(a.fields); err != nil {
		return nil, err
	}
	request := protocol.BuildRequest(a.fields)

	var lastErr error
	for attempt := 0; attempt < getDataAttempts; attempt++ {
		snapshot, err := a.fetch(ctx, request)
		if err == nil {
			a.mutex.Lock()
			a.lastSuccess = time.Now()
			a.mutex.Unlock()
			return snapshot, nil
		}
		lastErr = err

		a.logger.Debug().
			Err(err).
			Int("attempt", attempt+1).
			Int("attempts", getDataAttempts).
			Msg("Data request failed")

		if attempt == getDataAttempts-1 {
			break
		}
		delay := time.Duration(2+attempt) * time.Second
		if err := a.sleep(ctx, delay); err != nil {
			break
		}
	}

	return nil, lastErr
}

// fetch runs one connect, request and receive cycle. The connection is always closed.
func (a *API) fetch(ctx context.Context, request string) (domain.DataSnapshot, error) {
	conn, err := a.client.Connect(ctx, connectRetries)
	if err != nil {
		return nil, err
	}
	defer a.client.Close(conn)

	response, err := a.client.SendAndReceive(conn, request, a.client.Timeout())
	if err != nil {
		return nil, err
	}
	if response == "" {
		return nil, domain.NewTimeoutError("read", a.client.Addr(), nil)
	}

	a.validateFrame(response)

	snapshot := protocol.ParseResponse(response)
	a.validateSnapshot(snapshot)

	a.logger.Debug().
		Int("fields", len(snapshot)).
		Int("response_length", len(response)).
		Msg("Data received")

	return snapshot, nil
}

func (a *API) validateFrame(response string) {
	if a.validator == nil {
		if err := protocol.ValidateResponse(response); err != nil {
			a.logger.Warn().Err(err).Msg("Response could not be decoded")
		}
		return
	}

	result := a.validator.ValidateFrame(response)
	if !result.Valid || result.HasWarnings() {
		event := a.logger.Warn()
		if result.HasCriticalErrors() {
			event = a.logger.Error()
		}
		for _, e := range append(result.Errors, result.Warnings...) {
			event = event.Str(e.Field, e.Message)
		}
		event.Str("summary", result.Summary()).Msg("Response frame failed validation")
	}
}

func (a *API) validateSnapshot(snapshot domain.DataSnapshot) {
	if a.validator == nil || len(snapshot) == 0 {
		return
	}

	result := a.validator.ValidateSnapshot(snapshot)
	if !result.Valid || result.HasWarnings() {
		event := a.logger.Warn()
		for _, e := range append(result.Errors, result.Warnings...) {
			event = event.Str(e.Field, e.Message)
		}
		event.Str("summary", result.Summary()).Msg("Implausible inverter values")
	}
}

// LastSuccessfulConnection returns the time of the last successful GetData, zero if none.
func (a *API) LastSuccessfulConnection() time.Time {
	a.mutex.RLock()
	defer a.mutex.RUnlock()
	return a.lastSuccess
}

// Stats returns the transport counters.
func (a *API) Stats() domain.ConnectionStats {
	return a.client.Stats()
}

// ValidationStats returns the validator counters, zero when no validator is set.
func (a *API) ValidationStats() domain.ValidationStats {
	if a.validator == nil {
		return domain.ValidationStats{}
	}
	return a.validator.GetStatistics()
}

// Addr returns the inverter address.
func (a *API) Addr() string {
	return a.client.Addr()
}
