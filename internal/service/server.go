// Package service provides the long-running inverter monitoring daemon.
package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"
	"github.com/resident-x/go-solarmax/internal/api"
	"github.com/resident-x/go-solarmax/internal/config"
	"github.com/resident-x/go-solarmax/internal/coordinator"
	"github.com/resident-x/go-solarmax/internal/domain"
	"github.com/resident-x/go-solarmax/internal/inverter"
	"github.com/resident-x/go-solarmax/internal/sun"
	"github.com/resident-x/go-solarmax/internal/transport"
	"github.com/resident-x/go-solarmax/internal/validation"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Subscriber is implemented by publishers that can also receive messages.
type Subscriber interface {
	Subscribe(topic string, handler mqtt.MessageHandler) error
}

// Option configures a MonitorService.
type Option func(*MonitorService)

// WithVersion sets the version reported by the HTTP API.
func WithVersion(version string) Option {
	return func(s *MonitorService) {
		s.version = version
	}
}

// WithSleeper replaces the retry waits of the inverter exchange.
func WithSleeper(sleep transport.SleepFunc) Option {
	return func(s *MonitorService) {
		s.sleep = sleep
	}
}

// MonitorService polls the inverter on a fixed interval and hands every result to the
// state store, the message publisher and the monitoring service.
type MonitorService struct {
	config      *config.Config
	inverter    *inverter.API
	coordinator *coordinator.Coordinator
	publisher   domain.MessagePublisher
	monitoring  domain.MonitoringService
	state       *domain.StateStore
	apiServer   *api.Server
	sunState    *sun.MQTTStateProvider
	version     string
	sleep       transport.SleepFunc
	logger      zerolog.Logger

	// inverterMutex serializes access to the inverter between the poll loop and
	// connection tests triggered over HTTP.
	inverterMutex sync.Mutex

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewMonitorService creates a new monitoring service.
func NewMonitorService(cfg *config.Config, publisher domain.MessagePublisher,
	monitoring domain.MonitoringService, opts ...Option) (*MonitorService, error) {
	s := &MonitorService{
		config:     cfg,
		publisher:  publisher,
		monitoring: monitoring,
		state:      domain.NewStateStore(),
		version:    "dev",
		logger:     log.With().Str("component", "service").Logger(),
	}

	for _, opt := range opts {
		opt(s)
	}

	level, err := validation.ParseLevel(cfg.ValidationLevel)
	if err != nil {
		return nil, err
	}

	location, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	var transportOpts []transport.Option
	inverterOpts := []inverter.Option{
		inverter.WithValidator(validation.NewValidator(level, log.With().Str("component", "validation").Logger())),
	}
	if s.sleep != nil {
		transportOpts = append(transportOpts, transport.WithSleeper(s.sleep))
		inverterOpts = append(inverterOpts, inverter.WithSleeper(s.sleep))
	}

	client := transport.NewClient(cfg.Inverter.Host, cfg.Inverter.Port, cfg.Timeout(), transportOpts...)
	s.inverter = inverter.NewAPI(client, inverterOpts...)

	coordinatorOpts := []coordinator.Option{coordinator.WithLocation(location)}
	if provider := s.sunProviders(); len(provider) > 0 {
		coordinatorOpts = append(coordinatorOpts, coordinator.WithSunPosition(provider))
	}
	s.coordinator = coordinator.New(s.inverter, coordinatorOpts...)

	if cfg.API.Enabled {
		s.apiServer = api.NewServer(cfg, s.state, s, s.version)
	}

	return s, nil
}

// sunProviders assembles the day/night signals available with this configuration.
// Home Assistant's sun entity wins over the computed sun position when both are known.
func (s *MonitorService) sunProviders() sun.Chain {
	var chain sun.Chain

	if _, ok := s.publisher.(Subscriber); ok && s.config.MQTT.Enabled && s.config.Sun.MQTTStateTopic != "" {
		s.sunState = sun.NewMQTTStateProvider(s.config.Sun.MQTTStateTopic)
		chain = append(chain, s.sunState)
	}

	if s.config.HasLocation() {
		chain = append(chain, sun.NewAstronomicalProvider(s.config.Sun.Latitude, s.config.Sun.Longitude))
	}

	return chain
}

// State returns the state store shared with the HTTP API.
func (s *MonitorService) State() domain.StateReader {
	return s.state
}

// APIAddr returns the HTTP API address, empty when the API is disabled or not started.
func (s *MonitorService) APIAddr() string {
	if s.apiServer == nil {
		return ""
	}
	return s.apiServer.Addr()
}

// Start connects the publishers, starts the HTTP API and launches the poll loop.
// The first poll runs immediately.
func (s *MonitorService) Start(ctx context.Context) error {
	if err := s.publisher.Connect(ctx); err != nil {
		// The MQTT client keeps reconnecting in the background.
		s.logger.Warn().Err(err).Msg("Message publisher not connected")
	}

	if s.sunState != nil {
		if err := s.publisher.(Subscriber).Subscribe(s.sunState.Topic(), s.sunState.HandleMessage); err != nil {
			s.logger.Warn().Err(err).Str("topic", s.sunState.Topic()).Msg("Failed to subscribe to sun state")
		}
	}

	if err := s.monitoring.Connect(); err != nil {
		return fmt.Errorf("failed to connect monitoring service: %w", err)
	}

	if s.apiServer != nil {
		if err := s.apiServer.Start(ctx); err != nil {
			return fmt.Errorf("failed to start API server: %w", err)
		}
	}

	loopCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	s.wg.Add(1)
	go s.run(loopCtx)

	s.logger.Info().
		Str("inverter", s.inverter.Addr()).
		Dur("interval", s.config.UpdateInterval()).
		Msg("Monitoring started")

	return nil
}

// run is the poll loop. Polls never overlap: a tick that arrives while a poll is
// running is dropped by the ticker.
func (s *MonitorService) run(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.config.UpdateInterval())
	defer ticker.Stop()

	s.PollOnce(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.PollOnce(ctx)
		}
	}
}

// PollOnce runs one poll cycle and distributes its outcome.
func (s *MonitorService) PollOnce(ctx context.Context) {
	logger := s.logger.With().Str("cycle", uuid.NewString()[:8]).Logger()
	start := time.Now()

	s.inverterMutex.Lock()
	snapshot, err := s.coordinator.Poll(ctx)
	failures := s.coordinator.State()
	lastConnection := s.inverter.LastSuccessfulConnection()
	stats := s.inverter.Stats()
	validationStats := s.inverter.ValidationStats()
	s.inverterMutex.Unlock()

	if err != nil && ctx.Err() != nil {
		logger.Debug().Msg("Poll interrupted by shutdown")
		return
	}

	update := &domain.StateUpdate{
		Timestamp:            time.Now(),
		Success:              err == nil,
		Snapshot:             snapshot,
		ExpectedOffline:      failures.ExpectedOffline,
		ConsecutiveFailures:  failures.ConsecutiveFailures,
		LastSuccessfulUpdate: failures.LastSuccessfulUpdate,
	}
	if err != nil {
		update.Error = err.Error()
	}

	s.state.Update(func(state *domain.DeviceState) {
		// The last good snapshot stays available after a failure and rides along
		// with the update so publishers can keep showing it.
		if update.Success {
			state.Snapshot = snapshot
			state.LastError = ""
		} else {
			state.LastError = update.Error
			update.Snapshot = state.Snapshot.Clone()
		}
		state.LastUpdate = update.Timestamp
		state.LastUpdateSuccess = update.Success
		state.ConsecutiveFailures = update.ConsecutiveFailures
		state.ExpectedOffline = update.ExpectedOffline
		state.LastSuccessfulUpdate = update.LastSuccessfulUpdate
		state.LastSuccessfulConnection = lastConnection
		state.Connection = stats
		state.Validation = validationStats
	})

	logger.Debug().
		Bool("success", update.Success).
		Int("fields", len(snapshot)).
		Dur("duration", time.Since(start)).
		Msg("Poll completed")

	if err := s.publisher.Publish(ctx, update); err != nil {
		logger.Warn().Err(err).Msg("Failed to publish inverter state")
	}

	if update.Success {
		if err := s.monitoring.Send(ctx, snapshot); err != nil {
			logger.Warn().Err(err).Msg("Failed to send data to monitoring service")
		}
	}
}

// TestConnection runs a connection test between polls.
func (s *MonitorService) TestConnection(ctx context.Context) bool {
	s.inverterMutex.Lock()
	defer s.inverterMutex.Unlock()

	return s.inverter.TestConnection(ctx)
}

// Stop gracefully shuts down all service components.
func (s *MonitorService) Stop(ctx context.Context) error {
	s.logger.Info().Msg("Stopping monitoring")

	if s.cancel != nil {
		s.cancel()
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	var errs []error

	select {
	case <-done:
	case <-ctx.Done():
		errs = append(errs, fmt.Errorf("poll loop did not stop: %w", ctx.Err()))
	}

	if s.apiServer != nil {
		if err := s.apiServer.Stop(ctx); err != nil {
			s.logger.Error().Err(err).Msg("Failed to stop API server")
			errs = append(errs, err)
		}
	}

	if err := s.publisher.Close(); err != nil {
		s.logger.Error().Err(err).Msg("Failed to close message publisher")
		errs = append(errs, err)
	}

	if err := s.monitoring.Close(); err != nil {
		s.logger.Error().Err(err).Msg("Failed to close monitoring service")
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}
