package inverter

import (
	"context"
	"errors"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/resident-x/go-solarmax/internal/domain"
	"github.com/resident-x/go-solarmax/internal/protocol"
	"github.com/resident-x/go-solarmax/internal/simulator"
	"github.com/resident-x/go-solarmax/internal/transport"
	"github.com/resident-x/go-solarmax/internal/validation"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSleeper struct {
	mu     sync.Mutex
	delays []time.Duration
}

func (r *recordingSleeper) sleep(_ context.Context, d time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.delays = append(r.delays, d)
	return nil
}

func noSleep(context.Context, time.Duration) error { return nil }

func startSimulator(t *testing.T) *simulator.Simulator {
	t.Helper()

	sim := simulator.New()
	require.NoError(t, sim.Start("127.0.0.1:0"))
	t.Cleanup(func() { _ = sim.Close() })
	return sim
}

func newAPI(t *testing.T, port int, timeout time.Duration, opts ...Option) *API {
	t.Helper()

	client := transport.NewClient("127.0.0.1", port, timeout, transport.WithSleeper(noSleep))
	return NewAPI(client, opts...)
}

func unusedPort(t *testing.T) int {
	t.Helper()

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := listener.Addr().(*net.TCPAddr).Port
	require.NoError(t, listener.Close())
	return port
}

func TestGetData(t *testing.T) {
	sim := startSimulator(t)
	api := newAPI(t, sim.Port(), time.Second,
		WithValidator(validation.NewValidator(validation.ValidationLevelStrict, zerolog.Nop())))

	assert.True(t, api.LastSuccessfulConnection().IsZero())

	start := time.Now()
	snapshot, err := api.GetData(context.Background())
	require.NoError(t, err)

	assert.Len(t, snapshot, len(domain.InverterFields))
	assert.Equal(t, domain.ScaledReading{Value: 1500, RawValue: 3000}, snapshot[domain.FieldPAC])
	assert.Equal(t, 230.5, snapshot[domain.FieldUL1].Value)
	assert.Equal(t, 2.18, snapshot[domain.FieldIL1].Value)
	assert.Equal(t, 20019.0, snapshot[domain.FieldSYS].Value)

	last := api.LastSuccessfulConnection()
	assert.False(t, last.Before(start))
	assert.False(t, last.After(time.Now()))

	stats := api.Stats()
	assert.Equal(t, int64(1), stats.ConnectionAttempts)
	assert.Positive(t, stats.BytesSent)
	assert.Positive(t, stats.BytesReceived)
}

func TestGetDataWithFieldSubset(t *testing.T) {
	sim := startSimulator(t)
	api := newAPI(t, sim.Port(), time.Second, WithFields([]domain.FieldCode{domain.FieldPAC, domain.FieldKDY}))

	snapshot, err := api.GetData(context.Background())
	require.NoError(t, err)
	assert.Len(t, snapshot, 2)
	assert.Contains(t, snapshot, domain.FieldKDY)
}

func TestGetDataRejectsOversizeFieldList(t *testing.T) {
	sim := startSimulator(t)
	all := domain.FieldCodes(domain.InverterFields)
	fields := append(append(append([]domain.FieldCode{}, all...), all...), all...)
	api := newAPI(t, sim.Port(), time.Second, WithFields(fields))

	_, err := api.GetData(context.Background())
	require.ErrorIs(t, err, protocol.ErrRequestTooLong)
	assert.Equal(t, int64(0), sim.Requests())
	assert.Equal(t, int64(0), api.Stats().ConnectionAttempts)
}

func TestValidationStats(t *testing.T) {
	sim := startSimulator(t)

	assert.Equal(t, domain.ValidationStats{}, newAPI(t, sim.Port(), time.Second).ValidationStats())

	api := newAPI(t, sim.Port(), time.Second,
		WithValidator(validation.NewValidator(validation.ValidationLevelStrict, zerolog.Nop())))
	_, err := api.GetData(context.Background())
	require.NoError(t, err)

	stats := api.ValidationStats()
	// One frame check and one snapshot check per response.
	assert.Equal(t, int64(2), stats.ValidationsPerformed)
	assert.Equal(t, int64(0), stats.ErrorsFound)
	assert.Equal(t, "strict", stats.Level)
}

func TestGetDataUndecodableResponseIsEmptySuccess(t *testing.T) {
	sim := startSimulator(t)
	sim.SetBehavior(simulator.BehaviorGarbage)

	api := newAPI(t, sim.Port(), time.Second)

	snapshot, err := api.GetData(context.Background())
	require.NoError(t, err)
	assert.Empty(t, snapshot)
	assert.False(t, api.LastSuccessfulConnection().IsZero())
}

func TestGetDataSilentInverterTimesOut(t *testing.T) {
	sim := startSimulator(t)
	sim.SetBehavior(simulator.BehaviorSilent)

	sleeper := &recordingSleeper{}
	api := newAPI(t, sim.Port(), 150*time.Millisecond, WithSleeper(sleeper.sleep))

	_, err := api.GetData(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrTimeout))

	assert.Equal(t, []time.Duration{2 * time.Second, 3 * time.Second}, sleeper.delays)
	assert.Equal(t, int64(3), sim.Requests())
	assert.True(t, api.LastSuccessfulConnection().IsZero())
}

func TestGetDataUnreachableInverter(t *testing.T) {
	sleeper := &recordingSleeper{}
	api := newAPI(t, unusedPort(t), 200*time.Millisecond, WithSleeper(sleeper.sleep))

	_, err := api.GetData(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrConnection))
	assert.False(t, errors.Is(err, domain.ErrTimeout))

	// three cycles with two connect attempts each
	assert.Equal(t, int64(6), api.Stats().ConnectionAttempts)
	assert.Len(t, sleeper.delays, 2)
}

func TestGetDataRecoversOnLaterAttempt(t *testing.T) {
	sim := startSimulator(t)
	sim.SetBehavior(simulator.BehaviorHangUp)

	sleeper := func(ctx context.Context, d time.Duration) error {
		sim.SetBehavior(simulator.BehaviorNormal)
		return nil
	}
	api := newAPI(t, sim.Port(), time.Second, WithSleeper(sleeper))

	snapshot, err := api.GetData(context.Background())
	require.NoError(t, err)
	assert.NotEmpty(t, snapshot)
	assert.Equal(t, int64(2), sim.Requests())
}

func TestGetDataStopsWhenContextCanceled(t *testing.T) {
	sim := startSimulator(t)
	sim.SetBehavior(simulator.BehaviorHangUp)

	ctx, cancel := context.WithCancel(context.Background())
	sleeper := func(ctx context.Context, d time.Duration) error {
		cancel()
		return ctx.Err()
	}
	api := newAPI(t, sim.Port(), time.Second, WithSleeper(sleeper))

	_, err := api.GetData(ctx)
	require.Error(t, err)
	assert.Equal(t, int64(1), sim.Requests())
}

func TestTestConnection(t *testing.T) {
	t.Run("answering inverter", func(t *testing.T) {
		sim := startSimulator(t)
		api := newAPI(t, sim.Port(), time.Second)

		assert.True(t, api.TestConnection(context.Background()))
		assert.True(t, api.LastSuccessfulConnection().IsZero(), "a connection test is not a data poll")
	})

	t.Run("inverter hangs up", func(t *testing.T) {
		sim := startSimulator(t)
		sim.SetBehavior(simulator.BehaviorHangUp)
		api := newAPI(t, sim.Port(), time.Second)

		assert.False(t, api.TestConnection(context.Background()))
	})

	t.Run("nothing listening", func(t *testing.T) {
		api := newAPI(t, unusedPort(t), 200*time.Millisecond)

		assert.False(t, api.TestConnection(context.Background()))
		assert.Equal(t, int64(1), api.Stats().ConnectionAttempts)
	})
}
