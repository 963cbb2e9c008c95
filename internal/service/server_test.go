package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/resident-x/go-solarmax/internal/config"
	"github.com/resident-x/go-solarmax/internal/domain"
	"github.com/resident-x/go-solarmax/internal/simulator"
	"github.com/resident-x/go-solarmax/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func noSleep(context.Context, time.Duration) error { return nil }

func startSimulator(t *testing.T) *simulator.Simulator {
	t.Helper()

	sim := simulator.New()
	require.NoError(t, sim.Start("127.0.0.1:0"))
	t.Cleanup(func() { _ = sim.Close() })
	return sim
}

func testConfig(port int) *config.Config {
	cfg := config.DefaultConfig()
	cfg.Inverter.Host = "127.0.0.1"
	cfg.Inverter.Port = port
	cfg.Inverter.TimeoutSeconds = 1
	cfg.API.Enabled = false
	return cfg
}

func newTestService(t *testing.T, cfg *config.Config) (*MonitorService, *mocks.MockMessagePublisher, *mocks.MockMonitoringService) {
	t.Helper()

	publisher := mocks.NewMockMessagePublisher(t)
	monitoring := mocks.NewMockMonitoringService(t)

	svc, err := NewMonitorService(cfg, publisher, monitoring, WithSleeper(noSleep))
	require.NoError(t, err)
	return svc, publisher, monitoring
}

func TestNewMonitorService(t *testing.T) {
	cfg := testConfig(12345)

	publisher := mocks.NewMockMessagePublisher(t)
	monitoring := mocks.NewMockMonitoringService(t)

	svc, err := NewMonitorService(cfg, publisher, monitoring, WithVersion("1.2.3"))

	require.NoError(t, err)
	assert.Equal(t, cfg, svc.config)
	assert.Equal(t, publisher, svc.publisher)
	assert.Equal(t, monitoring, svc.monitoring)
	assert.Equal(t, "1.2.3", svc.version)
	assert.NotNil(t, svc.coordinator)
	assert.NotNil(t, svc.state)
	assert.Nil(t, svc.apiServer, "API server should not be created when disabled")
	assert.Nil(t, svc.sunState, "sun state needs an MQTT subscriber")
	assert.Equal(t, "127.0.0.1:12345", svc.inverter.Addr())
	assert.Empty(t, svc.APIAddr())
}

func TestNewMonitorService_WithAPIEnabled(t *testing.T) {
	cfg := testConfig(12345)
	cfg.API.Enabled = true
	cfg.API.Host = "127.0.0.1"
	cfg.API.Port = 0

	svc, _, _ := newTestService(t, cfg)

	assert.NotNil(t, svc.apiServer, "API server should be created when enabled")
}

func TestNewMonitorService_InvalidConfig(t *testing.T) {
	tests := []struct {
		name      string
		configure func(cfg *config.Config)
	}{
		{"unknown validation level", func(cfg *config.Config) { cfg.ValidationLevel = "paranoid" }},
		{"unknown timezone", func(cfg *config.Config) { cfg.TimeZone = "Mars/Olympus_Mons" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig(12345)
			tt.configure(cfg)

			svc, err := NewMonitorService(cfg, mocks.NewMockMessagePublisher(t), mocks.NewMockMonitoringService(t))
			assert.Error(t, err)
			assert.Nil(t, svc)
		})
	}
}

func TestMonitorService_SunProviders(t *testing.T) {
	cfg := testConfig(12345)
	cfg.Sun.Latitude = 52.52
	cfg.Sun.Longitude = 13.40

	svc, _, _ := newTestService(t, cfg)

	chain := svc.sunProviders()
	assert.Len(t, chain, 1, "only the astronomical provider without an MQTT subscriber")
}

func TestMonitorService_PollOnce_Success(t *testing.T) {
	sim := startSimulator(t)
	svc, publisher, monitoring := newTestService(t, testConfig(sim.Port()))
	ctx := context.Background()

	publisher.EXPECT().
		Publish(mock.Anything, mock.MatchedBy(func(update *domain.StateUpdate) bool {
			return update.Success && update.ConsecutiveFailures == 0 && update.Error == "" &&
				len(update.Snapshot) == len(domain.InverterFields)
		})).
		Return(nil).
		Once()
	monitoring.EXPECT().
		Send(mock.Anything, mock.MatchedBy(func(snapshot domain.DataSnapshot) bool {
			_, ok := snapshot[domain.FieldPAC]
			return ok
		})).
		Return(nil).
		Once()

	svc.PollOnce(ctx)

	state := svc.State().Current()
	assert.True(t, state.LastUpdateSuccess)
	assert.Empty(t, state.LastError)
	assert.Len(t, state.Snapshot, len(domain.InverterFields))
	assert.Equal(t, 0, state.ConsecutiveFailures)
	assert.False(t, state.LastSuccessfulUpdate.IsZero())
	assert.False(t, state.LastSuccessfulConnection.IsZero())
	assert.Equal(t, int64(1), state.Connection.ConnectionAttempts)
	assert.Equal(t, int64(2), state.Validation.ValidationsPerformed)
	assert.Equal(t, "standard", state.Validation.Level)
}

func TestMonitorService_PollOnce_FailureKeepsLastSnapshot(t *testing.T) {
	sim := startSimulator(t)
	svc, publisher, monitoring := newTestService(t, testConfig(sim.Port()))
	ctx := context.Background()

	publisher.EXPECT().
		Publish(mock.Anything, mock.MatchedBy(func(update *domain.StateUpdate) bool { return update.Success })).
		Return(nil).
		Once()
	monitoring.EXPECT().Send(mock.Anything, mock.Anything).Return(nil).Once()

	svc.PollOnce(ctx)

	sim.SetBehavior(simulator.BehaviorHangUp)

	var failed []*domain.StateUpdate
	publisher.EXPECT().
		Publish(mock.Anything, mock.MatchedBy(func(update *domain.StateUpdate) bool { return !update.Success })).
		RunAndReturn(func(_ context.Context, update *domain.StateUpdate) error {
			failed = append(failed, update)
			return nil
		}).
		Twice()

	svc.PollOnce(ctx)
	svc.PollOnce(ctx)

	require.Len(t, failed, 2)
	assert.Equal(t, 1, failed[0].ConsecutiveFailures)
	assert.Equal(t, 2, failed[1].ConsecutiveFailures)
	assert.Len(t, failed[1].Snapshot, len(domain.InverterFields), "last good snapshot rides along")
	assert.Equal(t, !failed[1].ExpectedOffline, failed[1].Available())
	assert.NotEmpty(t, failed[1].Error)
	assert.False(t, failed[1].LastSuccessfulUpdate.IsZero())

	state := svc.State().Current()
	assert.False(t, state.LastUpdateSuccess)
	assert.Equal(t, failed[1].Error, state.LastError)
	assert.Equal(t, 2, state.ConsecutiveFailures)
	assert.Len(t, state.Snapshot, len(domain.InverterFields), "last good snapshot is kept")
}

func TestMonitorService_PollOnce_PublishErrorsAreNotFatal(t *testing.T) {
	sim := startSimulator(t)
	svc, publisher, monitoring := newTestService(t, testConfig(sim.Port()))

	publisher.EXPECT().Publish(mock.Anything, mock.Anything).Return(errors.New("broker gone")).Once()
	monitoring.EXPECT().Send(mock.Anything, mock.Anything).Return(errors.New("rate limited")).Once()

	svc.PollOnce(context.Background())

	assert.True(t, svc.State().Current().LastUpdateSuccess)
}

func TestMonitorService_PollOnce_Cancelled(t *testing.T) {
	sim := startSimulator(t)
	sim.SetBehavior(simulator.BehaviorHangUp)
	svc, _, _ := newTestService(t, testConfig(sim.Port()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// Nothing is published for a poll interrupted by shutdown.
	svc.PollOnce(ctx)

	assert.True(t, svc.State().Current().LastUpdate.IsZero())
}

func TestMonitorService_TestConnection(t *testing.T) {
	sim := startSimulator(t)
	svc, _, _ := newTestService(t, testConfig(sim.Port()))

	assert.True(t, svc.TestConnection(context.Background()))

	sim.SetBehavior(simulator.BehaviorHangUp)
	assert.False(t, svc.TestConnection(context.Background()))
}

func TestMonitorService_StartStop(t *testing.T) {
	sim := startSimulator(t)
	cfg := testConfig(sim.Port())
	cfg.API.Enabled = true
	cfg.API.Host = "127.0.0.1"
	cfg.API.Port = 0

	svc, publisher, monitoring := newTestService(t, cfg)

	publisher.EXPECT().Connect(mock.Anything).Return(nil).Once()
	publisher.EXPECT().Publish(mock.Anything, mock.Anything).Return(nil).Maybe()
	publisher.EXPECT().Close().Return(nil).Once()
	monitoring.EXPECT().Connect().Return(nil).Once()
	monitoring.EXPECT().Send(mock.Anything, mock.Anything).Return(nil).Maybe()
	monitoring.EXPECT().Close().Return(nil).Once()

	ctx := context.Background()
	require.NoError(t, svc.Start(ctx))
	assert.NotEmpty(t, svc.APIAddr())

	// The first poll runs without waiting for the interval.
	assert.Eventually(t, func() bool {
		return svc.State().Current().LastUpdateSuccess
	}, 5*time.Second, 10*time.Millisecond)

	stopCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	assert.NoError(t, svc.Stop(stopCtx))
}

func TestMonitorService_Start_PublisherNotConnected(t *testing.T) {
	sim := startSimulator(t)
	svc, publisher, monitoring := newTestService(t, testConfig(sim.Port()))

	publisher.EXPECT().Connect(mock.Anything).Return(errors.New("connection refused")).Once()
	publisher.EXPECT().Publish(mock.Anything, mock.Anything).Return(nil).Maybe()
	publisher.EXPECT().Close().Return(nil).Once()
	monitoring.EXPECT().Connect().Return(nil).Once()
	monitoring.EXPECT().Send(mock.Anything, mock.Anything).Return(nil).Maybe()
	monitoring.EXPECT().Close().Return(nil).Once()

	require.NoError(t, svc.Start(context.Background()), "an unreachable broker does not stop monitoring")
	assert.NoError(t, svc.Stop(context.Background()))
}

func TestMonitorService_Start_MonitoringError(t *testing.T) {
	svc, publisher, monitoring := newTestService(t, testConfig(12345))

	publisher.EXPECT().Connect(mock.Anything).Return(nil).Once()
	monitoring.EXPECT().Connect().Return(errors.New("boom")).Once()

	err := svc.Start(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to connect monitoring service")
}

func TestMonitorService_Stop_CollectsErrors(t *testing.T) {
	svc, publisher, monitoring := newTestService(t, testConfig(12345))

	publisher.EXPECT().Close().Return(errors.New("publisher close")).Once()
	monitoring.EXPECT().Close().Return(errors.New("monitoring close")).Once()

	err := svc.Stop(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "publisher close")
	assert.Contains(t, err.Error(), "monitoring close")
}
