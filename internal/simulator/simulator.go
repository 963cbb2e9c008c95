// Package simulator provides a TCP server that answers Solarmax read requests like an inverter would.
package simulator

import (
	"errors"
	"net"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/resident-x/go-solarmax/internal/domain"
	"github.com/resident-x/go-solarmax/internal/protocol"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Behavior selects how the simulator reacts to a request.
type Behavior int32

const (
	// BehaviorNormal answers every request with the current values.
	BehaviorNormal Behavior = iota
	// BehaviorSilent accepts requests but never answers, like an inverter that went to sleep.
	BehaviorSilent
	// BehaviorHangUp closes the connection after reading the request.
	BehaviorHangUp
	// BehaviorGarbage answers with a frame that cannot be decoded.
	BehaviorGarbage
)

// String returns the behavior name.
func (b Behavior) String() string {
	switch b {
	case BehaviorNormal:
		return "normal"
	case BehaviorSilent:
		return "silent"
	case BehaviorHangUp:
		return "hangup"
	case BehaviorGarbage:
		return "garbage"
	default:
		return "unknown"
	}
}

// ParseBehavior converts a behavior name.
func ParseBehavior(s string) (Behavior, error) {
	for _, b := range []Behavior{BehaviorNormal, BehaviorSilent, BehaviorHangUp, BehaviorGarbage} {
		if b.String() == s {
			return b, nil
		}
	}
	return BehaviorNormal, errors.New("unknown behavior " + strconv.Quote(s))
}

const readTimeout = 30 * time.Second

// DefaultValues returns raw register values of an inverter feeding in at midday.
func DefaultValues() map[domain.FieldCode]uint64 {
	return map[domain.FieldCode]uint64{
		domain.FieldKDY:  12,
		domain.FieldKMT:  212,   // kWh
		domain.FieldKYR:  1843,  // kWh
		domain.FieldKT0:  31260, // kWh
		domain.FieldPDC:  3200,  // 1600 W
		domain.FieldPD01: 1700,
		domain.FieldPD02: 1500,
		domain.FieldUD01: 3420, // 342.0 V
		domain.FieldUD02: 3390,
		domain.FieldIDC:  470, // 4.70 A
		domain.FieldID01: 250,
		domain.FieldID02: 220,
		domain.FieldPAC:  3000, // 1500 W
		domain.FieldUL1:  2305, // 230.5 V
		domain.FieldUL2:  2298,
		domain.FieldUL3:  2311,
		domain.FieldIL1:  218, // 2.18 A
		domain.FieldIL2:  216,
		domain.FieldIL3:  217,
		domain.FieldCAC:  4127,
		domain.FieldKHR:  28410,
		domain.FieldTKK:  41,
		domain.FieldSAL:  0,
		domain.FieldSYS:  20019, // feed-in operation
	}
}

// Simulator is a fake Solarmax inverter listening on TCP.
type Simulator struct {
	listener net.Listener
	logger   zerolog.Logger

	values     map[domain.FieldCode]uint64
	valueMutex sync.RWMutex

	behavior atomic.Int32
	requests atomic.Int64

	conns     map[net.Conn]struct{}
	connMutex sync.Mutex
	wg        sync.WaitGroup
	done      chan struct{}
}

// New creates a simulator serving DefaultValues.
func New() *Simulator {
	return &Simulator{
		logger: log.With().Str("component", "simulator").Logger(),
		values: DefaultValues(),
		conns:  make(map[net.Conn]struct{}),
		done:   make(chan struct{}),
	}
}

// Start listens on addr and serves connections in the background.
func (s *Simulator) Start(addr string) error {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	s.listener = listener

	s.logger.Info().Str("address", listener.Addr().String()).Msg("Simulator listening")

	s.wg.Add(1)
	go s.acceptConnections()
	return nil
}

// Addr returns the listening address.
func (s *Simulator) Addr() string {
	return s.listener.Addr().String()
}

// Port returns the listening port.
func (s *Simulator) Port() int {
	return s.listener.Addr().(*net.TCPAddr).Port
}

// SetBehavior changes how subsequent requests are answered.
func (s *Simulator) SetBehavior(b Behavior) {
	s.behavior.Store(int32(b))
}

// Behavior returns the current behavior.
func (s *Simulator) Behavior() Behavior {
	return Behavior(s.behavior.Load())
}

// SetValue changes one raw value.
func (s *Simulator) SetValue(field domain.FieldCode, raw uint64) {
	s.valueMutex.Lock()
	defer s.valueMutex.Unlock()
	s.values[field] = raw
}

// Values returns a copy of the raw values.
func (s *Simulator) Values() map[domain.FieldCode]uint64 {
	s.valueMutex.RLock()
	defer s.valueMutex.RUnlock()

	out := make(map[domain.FieldCode]uint64, len(s.values))
	for k, v := range s.values {
		out[k] = v
	}
	return out
}

// Requests returns the number of read requests received.
func (s *Simulator) Requests() int64 {
	return s.requests.Load()
}

// Close stops the listener and drops all connections.
func (s *Simulator) Close() error {
	select {
	case <-s.done:
		return nil
	default:
		close(s.done)
	}

	var err error
	if s.listener != nil {
		err = s.listener.Close()
	}

	s.connMutex.Lock()
	for conn := range s.conns {
		_ = conn.Close()
	}
	s.connMutex.Unlock()

	s.wg.Wait()
	return err
}

func (s *Simulator) acceptConnections() {
	defer s.wg.Done()

	for {
		conn, err := s.listener.Accept()
		if err != nil {
			select {
			case <-s.done:
				return
			default:
			}
			if errors.Is(err, net.ErrClosed) {
				return
			}
			s.logger.Error().Err(err).Msg("Failed to accept connection")
			continue
		}

		s.connMutex.Lock()
		s.conns[conn] = struct{}{}
		s.connMutex.Unlock()

		s.wg.Add(1)
		go s.handleConnection(conn)
	}
}

func (s *Simulator) handleConnection(conn net.Conn) {
	defer s.wg.Done()
	defer func() {
		s.connMutex.Lock()
		delete(s.conns, conn)
		s.connMutex.Unlock()
		_ = conn.Close()
	}()

	buf := make([]byte, 1024)
	for {
		if err := conn.SetReadDeadline(time.Now().Add(readTimeout)); err != nil {
			return
		}
		n, err := conn.Read(buf)
		if err != nil {
			return
		}

		request := string(buf[:n])
		s.requests.Add(1)

		fields, err := protocol.ParseRequest(request)
		if err != nil {
			s.logger.Warn().Err(err).Str("request", request).Msg("Ignoring malformed request")
			continue
		}

		s.logger.Debug().
			Str("remote", conn.RemoteAddr().String()).
			Int("fields", len(fields)).
			Str("behavior", s.Behavior().String()).
			Msg("Request received")

		switch s.Behavior() {
		case BehaviorSilent:
			continue
		case BehaviorHangUp:
			return
		case BehaviorGarbage:
			_, _ = conn.Write([]byte("invalid_response"))
		default:
			response := protocol.BuildResponse(fields, s.Values())
			if _, err := conn.Write([]byte(response)); err != nil {
				s.logger.Debug().Err(err).Msg("Failed to write response")
				return
			}
		}
	}
}
