package simulator

import (
	"net"
	"testing"
	"time"

	"github.com/resident-x/go-solarmax/internal/domain"
	"github.com/resident-x/go-solarmax/internal/protocol"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startSimulator(t *testing.T) *Simulator {
	t.Helper()

	sim := New()
	require.NoError(t, sim.Start("127.0.0.1:0"))
	t.Cleanup(func() { _ = sim.Close() })
	return sim
}

func exchange(t *testing.T, conn net.Conn, request string, wait time.Duration) (string, error) {
	t.Helper()

	_, err := conn.Write([]byte(request))
	require.NoError(t, err)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(wait)))
	buf := make([]byte, 1024)
	n, err := conn.Read(buf)
	return string(buf[:n]), err
}

func TestSimulatorAnswersRequests(t *testing.T) {
	sim := startSimulator(t)

	conn, err := net.Dial("tcp", sim.Addr())
	require.NoError(t, err)
	defer conn.Close()

	request := protocol.BuildRequest([]domain.FieldCode{domain.FieldPAC, domain.FieldSYS})
	response, err := exchange(t, conn, request, time.Second)
	require.NoError(t, err)
	assert.Equal(t, "{01;FB;25|64:PAC=BB8;SYS=4E33,0|07E1}", response)

	sim.SetValue(domain.FieldPAC, 0)
	response, err = exchange(t, conn, request, time.Second)
	require.NoError(t, err)

	snapshot := protocol.ParseResponse(response)
	assert.Equal(t, 0.0, snapshot[domain.FieldPAC].Value)
	assert.Equal(t, int64(2), sim.Requests())
}

func TestSimulatorServesAllFields(t *testing.T) {
	sim := startSimulator(t)

	conn, err := net.Dial("tcp", sim.Addr())
	require.NoError(t, err)
	defer conn.Close()

	response, err := exchange(t, conn, protocol.BuildRequest(domain.FieldCodes(domain.InverterFields)), time.Second)
	require.NoError(t, err)

	_, err = protocol.ParseFrame(response)
	require.NoError(t, err)
	assert.Len(t, protocol.ParseResponse(response), len(domain.InverterFields))
}

func TestSimulatorBehaviors(t *testing.T) {
	request := protocol.BuildRequest([]domain.FieldCode{domain.FieldPAC})

	t.Run("silent", func(t *testing.T) {
		sim := startSimulator(t)
		sim.SetBehavior(BehaviorSilent)

		conn, err := net.Dial("tcp", sim.Addr())
		require.NoError(t, err)
		defer conn.Close()

		_, err = exchange(t, conn, request, 100*time.Millisecond)
		var netErr net.Error
		require.ErrorAs(t, err, &netErr)
		assert.True(t, netErr.Timeout())
	})

	t.Run("hangup", func(t *testing.T) {
		sim := startSimulator(t)
		sim.SetBehavior(BehaviorHangUp)

		conn, err := net.Dial("tcp", sim.Addr())
		require.NoError(t, err)
		defer conn.Close()

		response, err := exchange(t, conn, request, time.Second)
		assert.Error(t, err)
		assert.Empty(t, response)
	})

	t.Run("garbage", func(t *testing.T) {
		sim := startSimulator(t)
		sim.SetBehavior(BehaviorGarbage)

		conn, err := net.Dial("tcp", sim.Addr())
		require.NoError(t, err)
		defer conn.Close()

		response, err := exchange(t, conn, request, time.Second)
		require.NoError(t, err)
		assert.Empty(t, protocol.ParseResponse(response))
	})
}

func TestParseBehavior(t *testing.T) {
	b, err := ParseBehavior("silent")
	require.NoError(t, err)
	assert.Equal(t, BehaviorSilent, b)

	_, err = ParseBehavior("sleepy")
	assert.Error(t, err)
}

func TestCloseIsIdempotent(t *testing.T) {
	sim := New()
	require.NoError(t, sim.Start("127.0.0.1:0"))

	require.NoError(t, sim.Close())
	assert.NoError(t, sim.Close())
}
