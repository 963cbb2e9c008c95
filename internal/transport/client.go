// Package transport provides the TCP client used to talk to a Solarmax inverter.
package transport

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/resident-x/go-solarmax/internal/domain"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	// defaultReadSlice is how long a single read waits before the total timeout is rechecked.
	defaultReadSlice = time.Second

	readBufferSize = 4096
)

// DialFunc opens a network connection.
type DialFunc func(ctx context.Context, network, address string) (net.Conn, error)

// SleepFunc waits for d or until ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

// Option configures a Client.
type Option func(*Client)

// WithDialer replaces the network dialer.
func WithDialer(dial DialFunc) Option {
	return func(c *Client) {
		c.dial = dial
	}
}

// WithSleeper replaces the function used to wait between connection attempts.
func WithSleeper(sleep SleepFunc) Option {
	return func(c *Client) {
		c.sleep = sleep
	}
}

// Client opens connections to one inverter and exchanges single request/response pairs.
// A Client performs one operation at a time; callers serialize access.
type Client struct {
	addr      string
	timeout   time.Duration
	readSlice time.Duration
	dial      DialFunc
	sleep     SleepFunc
	logger    zerolog.Logger

	stats      domain.ConnectionStats
	statsMutex sync.Mutex
}

// NewClient creates a client for host:port using timeout for connects and reads.
func NewClient(host string, port int, timeout time.Duration, opts ...Option) *Client {
	dialer := &net.Dialer{}
	c := &Client{
		addr:      net.JoinHostPort(host, strconv.Itoa(port)),
		timeout:   timeout,
		readSlice: defaultReadSlice,
		dial:      dialer.DialContext,
		sleep:     SleepContext,
		logger:    log.With().Str("component", "transport").Logger(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Addr returns the inverter address as host:port.
func (c *Client) Addr() string {
	return c.addr
}

// Timeout returns the configured connect and read timeout.
func (c *Client) Timeout() time.Duration {
	return c.timeout
}

// Connect dials the inverter, trying up to retries times.
// Failed attempts are followed by a 1s, 2s, ... pause, except the last one.
func (c *Client) Connect(ctx context.Context, retries int) (net.Conn, error) {
	if retries < 1 {
		retries = 1
	}

	var lastErr error
	for attempt := 0; attempt < retries; attempt++ {
		conn, err := c.dialOnce(ctx)
		if err == nil {
			c.logger.Debug().
				Str("address", c.addr).
				Int("attempt", attempt+1).
				Msg("Connected to inverter")
			return conn, nil
		}
		lastErr = err

		c.logger.Debug().
			Str("address", c.addr).
			Int("attempt", attempt+1).
			Int("retries", retries).
			Err(err).
			Msg("Connection attempt failed")

		if attempt == retries-1 {
			break
		}

		delay := time.Duration(1+attempt) * time.Second
		if err := c.sleep(ctx, delay); err != nil {
			break
		}
	}

	return nil, lastErr
}

func (c *Client) dialOnce(ctx context.Context) (net.Conn, error) {
	c.recordAttempt()

	if err := ctx.Err(); err != nil {
		return nil, c.classify("dial", err)
	}

	dialCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	conn, err := c.dial(dialCtx, "tcp", c.addr)
	if err != nil {
		if conn != nil {
			c.Close(conn)
		}
		return nil, c.classify("dial", err)
	}

	return conn, nil
}

// SendAndReceive writes request and returns the first non-empty chunk the inverter sends back.
// Reads are retried in short slices until timeout has elapsed.
func (c *Client) SendAndReceive(conn net.Conn, request string, timeout time.Duration) (string, error) {
	if conn == nil {
		return "", c.classify("write", errors.New("not connected"))
	}

	if err := conn.SetWriteDeadline(time.Now().Add(timeout)); err != nil {
		return "", c.classify("write", err)
	}

	n, err := io.WriteString(conn, request)
	c.addBytes(int64(n), 0)
	if err != nil {
		return "", c.classify("write", err)
	}

	c.logger.Debug().
		Str("address", c.addr).
		Str("request", request).
		Msg("Request sent")

	buf := make([]byte, readBufferSize)
	start := time.Now()
	for {
		remaining := timeout - time.Since(start)
		if remaining <= 0 {
			break
		}

		slice := c.readSlice
		if remaining < slice {
			slice = remaining
		}
		if err := conn.SetReadDeadline(time.Now().Add(slice)); err != nil {
			return "", c.classify("read", err)
		}

		n, err := conn.Read(buf)
		if n > 0 {
			c.addBytes(0, int64(n))
			response := string(buf[:n])
			c.logger.Debug().
				Str("address", c.addr).
				Str("response", response).
				Msg("Response received")
			return response, nil
		}

		if err == nil || isTimeout(err) {
			continue
		}
		if errors.Is(err, io.EOF) {
			// Peer closed without answering.
			break
		}
		return "", c.classify("read", err)
	}

	return "", c.timeoutError("read", fmt.Errorf("no response within %s", timeout))
}

// Close closes conn, ignoring errors.
func (c *Client) Close(conn net.Conn) {
	if conn == nil {
		return
	}
	if err := conn.Close(); err != nil {
		c.logger.Debug().Err(err).Str("address", c.addr).Msg("Error closing connection")
	}
}

// Stats returns a copy of the transport counters.
func (c *Client) Stats() domain.ConnectionStats {
	c.statsMutex.Lock()
	defer c.statsMutex.Unlock()
	return c.stats
}

// classify wraps err as a timeout or connection error and counts it.
func (c *Client) classify(op string, err error) *domain.ConnectionError {
	c.statsMutex.Lock()
	defer c.statsMutex.Unlock()

	if isTimeout(err) {
		c.stats.TimeoutErrors++
		return domain.NewTimeoutError(op, c.addr, err)
	}
	c.stats.ConnectionErrors++
	return domain.NewConnectionError(op, c.addr, err)
}

func (c *Client) timeoutError(op string, err error) *domain.ConnectionError {
	c.statsMutex.Lock()
	defer c.statsMutex.Unlock()

	c.stats.TimeoutErrors++
	return domain.NewTimeoutError(op, c.addr, err)
}

func (c *Client) recordAttempt() {
	c.statsMutex.Lock()
	defer c.statsMutex.Unlock()
	c.stats.ConnectionAttempts++
}

func (c *Client) addBytes(sent, received int64) {
	c.statsMutex.Lock()
	defer c.statsMutex.Unlock()
	c.stats.BytesSent += sent
	c.stats.BytesReceived += received
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, os.ErrDeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// SleepContext waits for d or until ctx is done.
func SleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
